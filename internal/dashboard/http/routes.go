package dashboardhttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/webhooks-analytics/console/internal/platform/httpx"
)

// MountRoutes registers the console pages, CSV exports and the JSON snapshot.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(h.opts.ExportLimit, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusTooManyRequests, "Too Many Exports", "CSV export rate limit reached, retry in a minute")
		}),
	)

	r.Get("/", h.handleOverview)
	r.Get("/ingestion", h.handleIngestion)
	r.Get("/registry", h.handleRegistry)
	r.Get("/subscriptions", h.handleSubscriptions)
	r.Get("/delivery", h.handleDelivery)
	r.Get("/retries", h.handleRetries)
	r.Get("/partners", h.handlePartners)
	r.Get("/partners/{partner}", h.handlePartner)
	r.Get("/audit", h.handleAudit)
	r.Get("/alerts", h.handleAlerts)
	r.Get("/api/mock", h.handleSnapshot)

	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/registry/export.csv", h.handleRegistryCSV)
		gr.Get("/subscriptions/export.csv", h.handleSubscriptionsCSV)
		gr.Get("/delivery/export.csv", h.handleDeliveryCSV)
		gr.Get("/audit/export.csv", h.handleAuditCSV)
	})
}
