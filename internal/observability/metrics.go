package observability

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/webhooks-analytics/console/internal/dashboard"
	jobmetrics "github.com/webhooks-analytics/console/internal/jobs"
	"github.com/webhooks-analytics/console/internal/theme"
)

// Metrics collects the console's Prometheus metrics.
type Metrics struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	providerFailures *prometheus.CounterVec
	themeToggles     *prometheus.CounterVec
	jobs             *jobmetrics.Metrics
}

// NewMetrics initialises the registry and the console collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_http_requests_total",
		Help: "HTTP requests by route pattern and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "console_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_provider_failures_total",
		Help: "Dashboard data provider failures by view and reason.",
	}, []string{"view", "reason"})
	toggles := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_theme_toggles_total",
		Help: "Theme toggles by resulting preference.",
	}, []string{"theme"})
	registry.MustRegister(requests, duration, failures, toggles)
	return &Metrics{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:    requests,
		requestDuration:  duration,
		providerFailures: failures,
		themeToggles:     toggles,
		jobs:             jobmetrics.NewMetrics(registry),
	}
}

// Handler returns the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records a request counter and latency per route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveProviderFailure implements dashboard.FailureObserver.
func (m *Metrics) ObserveProviderFailure(view string, err error) {
	if m == nil {
		return
	}
	m.providerFailures.WithLabelValues(view, failureReason(err)).Inc()
}

// ObserveThemeToggle implements theme.ToggleObserver.
func (m *Metrics) ObserveThemeToggle(p theme.Preference) {
	if m == nil {
		return
	}
	m.themeToggles.WithLabelValues(string(p)).Inc()
}

// Jobs exposes the job collectors registered on this registry.
func (m *Metrics) Jobs() *jobmetrics.Metrics {
	if m == nil {
		return nil
	}
	return m.jobs
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, dashboard.ErrProviderUnavailable):
		return "unavailable"
	case errors.Is(err, dashboard.ErrMalformedRow):
		return "malformed"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "other"
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
