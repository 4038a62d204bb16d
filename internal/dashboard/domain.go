package dashboard

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrProviderUnavailable indicates the backing data source could not be reached.
	ErrProviderUnavailable = errors.New("dashboard: provider unavailable")
	// ErrMalformedRow indicates a row failed validation before reaching the views.
	ErrMalformedRow = errors.New("dashboard: malformed row")
)

// Trend describes the direction of a KPI movement.
type Trend string

// Supported trend directions.
const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// Trends lists every known trend value.
var Trends = []Trend{TrendUp, TrendDown, TrendFlat}

// ParseTrend maps free-form input onto a Trend. Unknown values resolve to TrendFlat.
func ParseTrend(value string) Trend {
	switch Trend(strings.ToLower(strings.TrimSpace(value))) {
	case TrendUp:
		return TrendUp
	case TrendDown:
		return TrendDown
	default:
		return TrendFlat
	}
}

// KpiCard is a single headline metric.
type KpiCard struct {
	Title string `json:"title" validate:"required"`
	Value string `json:"value" validate:"required"`
	Delta string `json:"delta"`
	Trend Trend  `json:"trend"`
}

// ChartPoint is one sample of a time series.
type ChartPoint struct {
	Timestamp string  `json:"timestamp" validate:"required"`
	Value     float64 `json:"value"`
}

// PartnerPerformance holds delivery success and failure rates for a partner.
type PartnerPerformance struct {
	Partner string `json:"partner" validate:"required"`
	Success int    `json:"success" validate:"gte=0,lte=100"`
	Failure int    `json:"failure" validate:"gte=0,lte=100"`
}

// SchemaEntry is a row of the schema registry catalog.
type SchemaEntry struct {
	Domain       string `json:"domain" validate:"required"`
	Event        string `json:"event" validate:"required"`
	Version      string `json:"version" validate:"required"`
	Status       string `json:"status" validate:"required"`
	EventsPerDay int    `json:"eventsPerDay" validate:"gte=0"`
}

// Subscription binds a partner to an event type and delivery endpoint.
type Subscription struct {
	Partner     string `json:"partner" validate:"required"`
	Event       string `json:"event" validate:"required"`
	Status      string `json:"status" validate:"required"`
	DeliveryURL string `json:"deliveryUrl" validate:"required,url"`
}

// RetryStage reports the number of deliveries waiting at a retry tier.
type RetryStage struct {
	Stage string `json:"stage" validate:"required"`
	Count int    `json:"count" validate:"gte=0"`
}

// AuditEntry records an operator action.
type AuditEntry struct {
	Actor     string `json:"actor" validate:"required"`
	Action    string `json:"action" validate:"required"`
	Timestamp string `json:"timestamp" validate:"required"`
}

// Alert is an alerting rule state.
type Alert struct {
	Name     string `json:"name" validate:"required"`
	Status   string `json:"status" validate:"required"`
	Severity string `json:"severity" validate:"required"`
}

// ValidationFailure summarises schema validation rejects for one event type.
type ValidationFailure struct {
	Schema string  `json:"schema" validate:"required"`
	Rate   float64 `json:"rate" validate:"gte=0"`
	Reason string  `json:"reason"`
}

// IngestionDetail carries the ingress health figures shown next to the throughput chart.
type IngestionDetail struct {
	Series             []ChartPoint        `json:"series" validate:"dive"`
	P95LatencyMillis   int                 `json:"p95LatencyMillis" validate:"gte=0"`
	ValidationFailures []ValidationFailure `json:"validationFailures" validate:"dive"`
	ConsumerLag        int                 `json:"consumerLag" validate:"gte=0"`
}

// Overview groups the collections rendered on the landing page.
type Overview struct {
	Kpis               []KpiCard            `json:"overviewKpis" validate:"dive"`
	IngestionSeries    []ChartPoint         `json:"ingestionSeries" validate:"dive"`
	PartnerPerformance []PartnerPerformance `json:"partnerPerformance" validate:"dive"`
}

// Snapshot is the complete read model echoed by the JSON endpoint.
type Snapshot struct {
	OverviewKpis       []KpiCard            `json:"overviewKpis"`
	IngestionSeries    []ChartPoint         `json:"ingestionSeries"`
	PartnerPerformance []PartnerPerformance `json:"partnerPerformance"`
	SchemaCatalog      []SchemaEntry        `json:"schemaCatalog"`
	SubscriptionRows   []Subscription       `json:"subscriptionRows"`
	RetryPipeline      []RetryStage         `json:"retryPipeline"`
	AuditLog           []AuditEntry         `json:"auditLog"`
	Alerts             []Alert              `json:"alerts"`
}

// Provider exposes one read operation per dashboard view.
type Provider interface {
	Overview(ctx context.Context) (Overview, error)
	Ingestion(ctx context.Context) (IngestionDetail, error)
	Registry(ctx context.Context) ([]SchemaEntry, error)
	Subscriptions(ctx context.Context) ([]Subscription, error)
	DeliveryPerformance(ctx context.Context) ([]PartnerPerformance, error)
	Retries(ctx context.Context) ([]RetryStage, error)
	AuditLog(ctx context.Context) ([]AuditEntry, error)
	Alerts(ctx context.Context) ([]Alert, error)
}
