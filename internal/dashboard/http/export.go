package dashboardhttp

import (
	"bytes"
	"context"
	"net/http"

	"github.com/webhooks-analytics/console/internal/dashboard"
	"github.com/webhooks-analytics/console/internal/platform/httpx"
	"github.com/webhooks-analytics/console/internal/widget"
)

func (h *Handler) handleRegistryCSV(w http.ResponseWriter, r *http.Request) {
	exportCSV(h, w, r, "schema-registry.csv", h.service.Registry, registryColumns)
}

func (h *Handler) handleSubscriptionsCSV(w http.ResponseWriter, r *http.Request) {
	exportCSV(h, w, r, "subscriptions.csv", h.service.Subscriptions, subscriptionColumns)
}

func (h *Handler) handleDeliveryCSV(w http.ResponseWriter, r *http.Request) {
	exportCSV(h, w, r, "delivery-performance.csv", h.service.DeliveryPerformance, partnerColumns)
}

func (h *Handler) handleAuditCSV(w http.ResponseWriter, r *http.Request) {
	exportCSV(h, w, r, "audit-log.csv", h.service.AuditLog, auditColumns)
}

// exportCSV streams the table rendering of a view. Stale copies are exported with a
// warning header rather than refused.
func exportCSV[R any](h *Handler, w http.ResponseWriter, r *http.Request, filename string, load func(context.Context) (dashboard.Result[[]R], error), table widget.Table[R]) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res, err := load(ctx)
	if err != nil {
		h.logError("load "+filename, err)
		httpx.RespondError(w, err, problemMappings...)
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	if err := table.Render(res.Value).WriteCSV(buf); err != nil {
		h.handleServerError(w, "write "+filename, err)
		return
	}

	attachment(w, filename)
	if res.Stale {
		w.Header().Set("Warning", `110 - "Response is Stale"`)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}
