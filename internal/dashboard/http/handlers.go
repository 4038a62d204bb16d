package dashboardhttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/webhooks-analytics/console/internal/dashboard"
	"github.com/webhooks-analytics/console/internal/platform/httpx"
	"github.com/webhooks-analytics/console/internal/shared"
	"github.com/webhooks-analytics/console/internal/theme"
	"github.com/webhooks-analytics/console/internal/view"
	"github.com/webhooks-analytics/console/internal/widget"
	"github.com/webhooks-analytics/console/internal/widget/svg"
)

const requestTimeout = 2 * time.Second

// DashboardService is the read contract used by the handler.
type DashboardService interface {
	Overview(ctx context.Context) (dashboard.Result[dashboard.Overview], error)
	Ingestion(ctx context.Context) (dashboard.Result[dashboard.IngestionDetail], error)
	Registry(ctx context.Context) (dashboard.Result[[]dashboard.SchemaEntry], error)
	Subscriptions(ctx context.Context) (dashboard.Result[[]dashboard.Subscription], error)
	DeliveryPerformance(ctx context.Context) (dashboard.Result[[]dashboard.PartnerPerformance], error)
	Retries(ctx context.Context) (dashboard.Result[[]dashboard.RetryStage], error)
	AuditLog(ctx context.Context) (dashboard.Result[[]dashboard.AuditEntry], error)
	Alerts(ctx context.Context) (dashboard.Result[[]dashboard.Alert], error)
	Snapshot(ctx context.Context) (dashboard.Snapshot, error)
}

// Options carries the header labels shown on every page and the CSV export budget.
type Options struct {
	Environment string
	Range       string
	// ExportLimit caps CSV exports per client IP per minute.
	ExportLimit int
}

// Handler serves the console pages.
type Handler struct {
	logger    *slog.Logger
	service   DashboardService
	templates *view.Engine
	csrf      *shared.CSRFManager
	opts      Options
	csvPool   sync.Pool
}

// NewHandler constructs the dashboard HTTP handler.
func NewHandler(logger *slog.Logger, service DashboardService, templates *view.Engine, csrf *shared.CSRFManager, opts Options) *Handler {
	if opts.Environment == "" {
		opts.Environment = "Dev Tenant"
	}
	if opts.Range == "" {
		opts.Range = "Last 24h"
	}
	if opts.ExportLimit <= 0 {
		opts.ExportLimit = 10
	}
	h := &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		csrf:      csrf,
		opts:      opts,
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

type overviewPage struct {
	Kpis         []widget.KpiCardView
	Chart        template.HTML
	AverageRPS   string
	Partners     widget.Grid
	FiringAlerts int
	Loaded       bool
}

type failureView struct {
	Schema string
	Rate   string
	Reason string
}

type ingestionPage struct {
	Chart       template.HTML
	AverageRPS  string
	P95Latency  int
	ConsumerLag string
	Failures    []failureView
	Loaded      bool
}

type tablePage struct {
	Heading    string
	Subheading string
	Chart      template.HTML
	Grid       widget.Grid
	ExportHref string
	Loaded     bool
}

type stageView struct {
	Stage string
	Count string
}

type retriesPage struct {
	Stages []stageView
	Chart  template.HTML
	Loaded bool
}

type partnerCard struct {
	Partner string
	Success int
	Failure int
	Href    string
}

type partnersPage struct {
	Partners []partnerCard
	Loaded   bool
}

type partnerPage struct {
	Partner       dashboard.PartnerPerformance
	Subscriptions widget.Grid
	Loaded        bool
}

type alertsPage struct {
	Alerts []dashboard.Alert
	Loaded bool
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var (
		overview dashboard.Result[dashboard.Overview]
		alerts   dashboard.Result[[]dashboard.Alert]
		errOver  error
		errAlert error
	)
	// sections fail independently; goroutines never return an error
	var g errgroup.Group
	g.Go(func() error {
		overview, errOver = h.service.Overview(ctx)
		return nil
	})
	g.Go(func() error {
		alerts, errAlert = h.service.Alerts(ctx)
		return nil
	})
	_ = g.Wait()

	var banners []view.Banner
	page := overviewPage{}
	if b, ok := h.banner("Overview", overview.Stale, overview.Cause, errOver); ok {
		banners = append(banners, b)
	}
	if errOver == nil {
		page.Loaded = true
		page.Kpis = widget.KpiCards(overview.Value.Kpis)
		page.Partners = partnerColumns.Render(overview.Value.PartnerPerformance)
		page.Chart, page.AverageRPS = h.ingestionChart(overview.Value.IngestionSeries, "Ingress RPS")
	}
	if b, ok := h.banner("Alerts", alerts.Stale, alerts.Cause, errAlert); ok {
		banners = append(banners, b)
	}
	for _, a := range alerts.Value {
		if strings.EqualFold(a.Status, "firing") {
			page.FiringAlerts++
		}
	}
	h.render(w, r, "pages/overview.html", "Overview", banners, page)
}

func (h *Handler) handleIngestion(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res, err := h.service.Ingestion(ctx)
	page := ingestionPage{}
	if err == nil {
		detail := res.Value
		page.Loaded = true
		page.Chart, page.AverageRPS = h.ingestionChart(detail.Series, "API Throughput")
		page.P95Latency = detail.P95LatencyMillis
		page.ConsumerLag = widget.FormatCount(detail.ConsumerLag)
		for _, f := range detail.ValidationFailures {
			rate := strconv.FormatFloat(f.Rate, 'f', -1, 64)
			page.Failures = append(page.Failures, failureView{Schema: f.Schema, Rate: rate + "%", Reason: f.Reason})
		}
	}
	h.render(w, r, "pages/ingestion.html", "Ingestion Health", h.banners("Ingestion", res.Stale, res.Cause, err), page)
}

func (h *Handler) handleRegistry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res, err := h.service.Registry(ctx)
	page := tablePage{Heading: "Schema Registry", ExportHref: "/registry/export.csv", Grid: registryColumns.Render(res.Value), Loaded: err == nil}
	h.render(w, r, "pages/table.html", "Schema Registry", h.banners("Schema registry", res.Stale, res.Cause, err), page)
}

func (h *Handler) handleSubscriptions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res, err := h.service.Subscriptions(ctx)
	page := tablePage{Heading: "Partner Subscriptions", ExportHref: "/subscriptions/export.csv", Grid: subscriptionColumns.Render(res.Value), Loaded: err == nil}
	h.render(w, r, "pages/table.html", "Partner Subscriptions", h.banners("Subscriptions", res.Stale, res.Cause, err), page)
}

func (h *Handler) handleDelivery(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res, err := h.service.DeliveryPerformance(ctx)
	page := tablePage{
		Heading:    "Delivery Performance",
		Subheading: "Success/failure rates and latency per partner",
		ExportHref: "/delivery/export.csv",
		Grid:       partnerColumns.Render(res.Value),
		Loaded:     err == nil,
	}
	if len(res.Value) > 0 {
		chart, chartErr := widget.DeliveryChart(res.Value)
		if chartErr != nil {
			h.logError("render delivery chart", chartErr)
		}
		page.Chart = chart
	}
	h.render(w, r, "pages/table.html", "Delivery Performance", h.banners("Delivery", res.Stale, res.Cause, err), page)
}

func (h *Handler) handleAudit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res, err := h.service.AuditLog(ctx)
	page := tablePage{Heading: "Audit & Governance", ExportHref: "/audit/export.csv", Grid: auditColumns.Render(res.Value), Loaded: err == nil}
	h.render(w, r, "pages/table.html", "Audit & Governance", h.banners("Audit log", res.Stale, res.Cause, err), page)
}

func (h *Handler) handleRetries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res, err := h.service.Retries(ctx)
	page := retriesPage{Loaded: err == nil}
	for _, st := range res.Value {
		page.Stages = append(page.Stages, stageView{Stage: st.Stage, Count: widget.FormatCount(st.Count)})
	}
	if len(res.Value) > 0 {
		chart, chartErr := widget.RetryChart(res.Value)
		if chartErr != nil {
			h.logError("render retry chart", chartErr)
		}
		page.Chart = chart
	}
	h.render(w, r, "pages/retries.html", "Retry & DLQ Pipeline", h.banners("Retry pipeline", res.Stale, res.Cause, err), page)
}

func (h *Handler) handlePartners(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res, err := h.service.DeliveryPerformance(ctx)
	page := partnersPage{Loaded: err == nil}
	for _, p := range res.Value {
		page.Partners = append(page.Partners, partnerCard{
			Partner: p.Partner,
			Success: p.Success,
			Failure: p.Failure,
			Href:    "/partners/" + url.PathEscape(p.Partner),
		})
	}
	h.render(w, r, "pages/partners.html", "Partner Drill-down", h.banners("Partners", res.Stale, res.Cause, err), page)
}

func (h *Handler) handlePartner(w http.ResponseWriter, r *http.Request) {
	name, err := partnerParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var (
		perf    dashboard.Result[[]dashboard.PartnerPerformance]
		subs    dashboard.Result[[]dashboard.Subscription]
		errPerf error
		errSubs error
	)
	var g errgroup.Group
	g.Go(func() error {
		perf, errPerf = h.service.DeliveryPerformance(ctx)
		return nil
	})
	g.Go(func() error {
		subs, errSubs = h.service.Subscriptions(ctx)
		return nil
	})
	_ = g.Wait()

	page := partnerPage{Loaded: errPerf == nil}
	found := false
	for _, p := range perf.Value {
		if p.Partner == name {
			page.Partner = p
			found = true
			break
		}
	}
	if errPerf == nil && !found {
		http.NotFound(w, r)
		return
	}
	if !found {
		page.Partner.Partner = name
	}
	var owned []dashboard.Subscription
	for _, s := range subs.Value {
		if s.Partner == name {
			owned = append(owned, s)
		}
	}
	page.Subscriptions = subscriptionColumns.Render(owned)

	banners := h.banners("Delivery", perf.Stale, perf.Cause, errPerf)
	banners = append(banners, h.banners("Subscriptions", subs.Stale, subs.Cause, errSubs)...)
	h.render(w, r, "pages/partner.html", name, banners, page)
}

// partnerParam returns the decoded partner name. chi matches against RawPath when the
// request path carries escapes such as %2F, leaving the parameter escaped.
func partnerParam(r *http.Request) (string, error) {
	name := chi.URLParam(r, "partner")
	if r.URL.RawPath == "" {
		return name, nil
	}
	return url.PathUnescape(name)
}

func (h *Handler) handleAlerts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res, err := h.service.Alerts(ctx)
	page := alertsPage{Alerts: res.Value, Loaded: err == nil}
	h.render(w, r, "pages/alerts.html", "Alerts", h.banners("Alerts", res.Stale, res.Cause, err), page)
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	snap, err := h.service.Snapshot(ctx)
	if err != nil {
		h.logError("load snapshot", err)
		httpx.RespondError(w, err, problemMappings...)
		return
	}
	httpx.JSON(w, http.StatusOK, snap)
}

var problemMappings = []httpx.Mapping{
	{Err: dashboard.ErrProviderUnavailable, Status: http.StatusServiceUnavailable, Title: "Provider Unavailable"},
	{Err: dashboard.ErrMalformedRow, Status: http.StatusBadGateway, Title: "Malformed Data"},
}

// ingestionChart renders the area chart and the rounded average rate.
func (h *Handler) ingestionChart(points []dashboard.ChartPoint, title string) (template.HTML, string) {
	avg, err := widget.Average(points)
	if err != nil {
		return "", "n/a"
	}
	chart, err := widget.AreaChart(points, svg.AreaOpts{
		Title:       title,
		Description: "Events per second over the selected range",
	})
	if err != nil {
		h.logError("render ingestion chart", err)
	}
	return chart, widget.FormatCount(int(math.Round(avg)))
}

// banner describes a section failure. Stale data keeps rendering with a warning.
func (h *Handler) banner(section string, stale bool, cause, err error) (view.Banner, bool) {
	switch {
	case err != nil:
		h.logError("load "+section, err)
		if errors.Is(err, dashboard.ErrMalformedRow) {
			return view.Banner{Tone: "error", Message: section + " data failed validation and was not rendered."}, true
		}
		return view.Banner{Tone: "error", Message: section + " data is unavailable right now."}, true
	case stale:
		if h.logger != nil {
			h.logger.Warn("rendering stale section", slog.String("section", section), slog.Any("cause", cause))
		}
		return view.Banner{Tone: "warning", Message: section + " is showing the last known good data while the source recovers."}, true
	default:
		return view.Banner{}, false
	}
}

func (h *Handler) banners(section string, stale bool, cause, err error) []view.Banner {
	if b, ok := h.banner(section, stale, cause, err); ok {
		return []view.Banner{b}
	}
	return nil
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name, title string, banners []view.Banner, data any) {
	csrfToken := ""
	if h.csrf != nil {
		if token, err := h.csrf.EnsureToken(shared.SessionFromContext(r.Context())); err == nil {
			csrfToken = token
		}
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		CurrentPath: r.URL.Path,
		Theme:       theme.Current(r.Context()),
		Environment: h.opts.Environment,
		Range:       h.opts.Range,
		Banners:     banners,
		Data:        data,
	}
	if err := h.templates.Render(w, name, viewData); err != nil {
		h.handleServerError(w, "render template", err)
	}
}

func (h *Handler) handleServerError(w http.ResponseWriter, context string, err error) {
	h.logError(context, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}

func attachment(w http.ResponseWriter, name string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", name))
}
