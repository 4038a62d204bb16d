package fixtures

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webhooks-analytics/console/internal/dashboard"
)

func TestOverviewContainsDeliverySuccessKPI(t *testing.T) {
	overview, err := New().Overview(context.Background())
	require.NoError(t, err)

	var found *dashboard.KpiCard
	for i := range overview.Kpis {
		if overview.Kpis[i].Title == "Delivery Success" {
			found = &overview.Kpis[i]
		}
	}
	require.NotNil(t, found, "expected Delivery Success KPI")
	assert.NotEmpty(t, found.Value)
}

func TestIngestionSeriesIsHourly(t *testing.T) {
	series := IngestionSeries()
	require.Len(t, series, 24)
	assert.Equal(t, "0:00", series[0].Timestamp)
	assert.Equal(t, "23:00", series[23].Timestamp)
	for _, point := range series {
		assert.GreaterOrEqual(t, point.Value, 500.0)
		assert.LessOrEqual(t, point.Value, 800.0)
	}
}

func TestFixturesPassValidation(t *testing.T) {
	ctx := context.Background()
	p := New()

	overview, err := p.Overview(ctx)
	require.NoError(t, err)
	assert.NoError(t, dashboard.ValidateValue(dashboard.ViewOverview, overview))

	ingestion, err := p.Ingestion(ctx)
	require.NoError(t, err)
	assert.NoError(t, dashboard.ValidateValue(dashboard.ViewIngestion, ingestion))

	registry, err := p.Registry(ctx)
	require.NoError(t, err)
	assert.NoError(t, dashboard.ValidateRows(dashboard.ViewRegistry, registry))

	subs, err := p.Subscriptions(ctx)
	require.NoError(t, err)
	assert.NoError(t, dashboard.ValidateRows(dashboard.ViewSubscriptions, subs))

	retries, err := p.Retries(ctx)
	require.NoError(t, err)
	assert.NoError(t, dashboard.ValidateRows(dashboard.ViewRetries, retries))

	audit, err := p.AuditLog(ctx)
	require.NoError(t, err)
	assert.NoError(t, dashboard.ValidateRows(dashboard.ViewAudit, audit))

	alerts, err := p.Alerts(ctx)
	require.NoError(t, err)
	assert.NoError(t, dashboard.ValidateRows(dashboard.ViewAlerts, alerts))
}

func TestProviderReturnsCopies(t *testing.T) {
	ctx := context.Background()
	p := New()

	first, err := p.DeliveryPerformance(ctx)
	require.NoError(t, err)
	first[0].Partner = "mutated"

	second, err := p.DeliveryPerformance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Acme CRM", second[0].Partner)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Alerts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
