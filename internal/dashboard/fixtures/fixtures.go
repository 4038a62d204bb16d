// Package fixtures serves the static sample data used when no metrics store is configured.
package fixtures

import (
	"context"
	"fmt"

	"github.com/webhooks-analytics/console/internal/dashboard"
)

var overviewKpis = []dashboard.KpiCard{
	{Title: "Delivery Success", Value: "99.2%", Delta: "+0.4%", Trend: dashboard.TrendUp},
	{Title: "Retry Volume", Value: "1,240", Delta: "-12%", Trend: dashboard.TrendDown},
	{Title: "Avg E2E Latency", Value: "1.3s", Delta: "+100ms", Trend: dashboard.TrendDown},
	{Title: "Schemas Updated", Value: "12", Delta: "+2", Trend: dashboard.TrendUp},
}

// hourly ingress samples, events/sec
var ingestionValues = []float64{
	612, 587, 540, 523, 518, 534, 601, 688,
	742, 781, 796, 772, 765, 779, 790, 768,
	735, 704, 690, 671, 655, 642, 630, 618,
}

var partnerPerformance = []dashboard.PartnerPerformance{
	{Partner: "Acme CRM", Success: 99, Failure: 1},
	{Partner: "PaymentsCo", Success: 94, Failure: 6},
	{Partner: "MarketingCloud", Success: 97, Failure: 3},
}

var schemaCatalog = []dashboard.SchemaEntry{
	{Domain: "crm.accounts", Event: "CustomerUpdated", Version: "v3", Status: "ACTIVE", EventsPerDay: 12000},
	{Domain: "billing.invoice", Event: "InvoicePaid", Version: "v2", Status: "ACTIVE", EventsPerDay: 4800},
	{Domain: "support.tickets", Event: "TicketOpened", Version: "v1", Status: "PENDING", EventsPerDay: 900},
}

var subscriptionRows = []dashboard.Subscription{
	{Partner: "Acme CRM", Event: "CustomerUpdated", Status: "Approved", DeliveryURL: "https://hooks.acmecrm.com/customer"},
	{Partner: "PaymentsCo", Event: "InvoicePaid", Status: "Pending", DeliveryURL: "https://hooks.paymentsco.com/invoice"},
}

var retryPipeline = []dashboard.RetryStage{
	{Stage: "Immediate", Count: 120},
	{Stage: "5m", Count: 60},
	{Stage: "30m", Count: 25},
	{Stage: "DLQ", Count: 8},
}

var auditLog = []dashboard.AuditEntry{
	{Actor: "alice", Action: "Approved subscription for Acme CRM", Timestamp: "2024-05-02T11:00:00Z"},
	{Actor: "bob", Action: "Updated schema billing.invoice v2", Timestamp: "2024-05-02T09:30:00Z"},
}

var alerts = []dashboard.Alert{
	{Name: "Retry queue spike", Status: "firing", Severity: "high"},
	{Name: "Partner down: PaymentsCo", Status: "acknowledged", Severity: "medium"},
}

var validationFailures = []dashboard.ValidationFailure{
	{Schema: "crm.accounts.CustomerUpdated.v3", Rate: 0.3, Reason: "missing address"},
	{Schema: "billing.invoice.InvoicePaid.v2", Rate: 0.1, Reason: "type mismatch"},
}

// Provider returns copies of the package fixtures so callers cannot mutate shared state.
type Provider struct{}

// New constructs the fixture provider.
func New() *Provider {
	return &Provider{}
}

// IngestionSeries returns the 24 hourly samples labelled "0:00" through "23:00".
func IngestionSeries() []dashboard.ChartPoint {
	points := make([]dashboard.ChartPoint, 0, len(ingestionValues))
	for idx, value := range ingestionValues {
		points = append(points, dashboard.ChartPoint{Timestamp: fmt.Sprintf("%d:00", idx), Value: value})
	}
	return points
}

// Overview implements dashboard.Provider.
func (p *Provider) Overview(ctx context.Context) (dashboard.Overview, error) {
	if err := ctx.Err(); err != nil {
		return dashboard.Overview{}, err
	}
	return dashboard.Overview{
		Kpis:               clone(overviewKpis),
		IngestionSeries:    IngestionSeries(),
		PartnerPerformance: clone(partnerPerformance),
	}, nil
}

// Ingestion implements dashboard.Provider.
func (p *Provider) Ingestion(ctx context.Context) (dashboard.IngestionDetail, error) {
	if err := ctx.Err(); err != nil {
		return dashboard.IngestionDetail{}, err
	}
	return dashboard.IngestionDetail{
		Series:             IngestionSeries(),
		P95LatencyMillis:   82,
		ValidationFailures: clone(validationFailures),
		ConsumerLag:        215,
	}, nil
}

// Registry implements dashboard.Provider.
func (p *Provider) Registry(ctx context.Context) ([]dashboard.SchemaEntry, error) {
	return cloneCtx(ctx, schemaCatalog)
}

// Subscriptions implements dashboard.Provider.
func (p *Provider) Subscriptions(ctx context.Context) ([]dashboard.Subscription, error) {
	return cloneCtx(ctx, subscriptionRows)
}

// DeliveryPerformance implements dashboard.Provider.
func (p *Provider) DeliveryPerformance(ctx context.Context) ([]dashboard.PartnerPerformance, error) {
	return cloneCtx(ctx, partnerPerformance)
}

// Retries implements dashboard.Provider.
func (p *Provider) Retries(ctx context.Context) ([]dashboard.RetryStage, error) {
	return cloneCtx(ctx, retryPipeline)
}

// AuditLog implements dashboard.Provider.
func (p *Provider) AuditLog(ctx context.Context) ([]dashboard.AuditEntry, error) {
	return cloneCtx(ctx, auditLog)
}

// Alerts implements dashboard.Provider.
func (p *Provider) Alerts(ctx context.Context) ([]dashboard.Alert, error) {
	return cloneCtx(ctx, alerts)
}

func cloneCtx[T any](ctx context.Context, rows []T) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return clone(rows), nil
}

func clone[T any](rows []T) []T {
	out := make([]T, len(rows))
	copy(out, rows)
	return out
}
