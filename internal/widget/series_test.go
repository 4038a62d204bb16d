package widget

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webhooks-analytics/console/internal/dashboard"
	"github.com/webhooks-analytics/console/internal/widget/svg"
)

func TestPrepareSeriesEmpty(t *testing.T) {
	_, err := PrepareSeries(nil)
	assert.ErrorIs(t, err, ErrNoPoints)
	_, err = Average(nil)
	assert.ErrorIs(t, err, ErrNoPoints)
}

func TestPrepareSeriesCollapsesDuplicates(t *testing.T) {
	out, err := PrepareSeries([]dashboard.ChartPoint{
		{Timestamp: "b", Value: 1},
		{Timestamp: "a", Value: 2},
		{Timestamp: "b", Value: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, []dashboard.ChartPoint{{Timestamp: "b", Value: 3}, {Timestamp: "a", Value: 2}}, out)
}

func TestPrepareSeriesSortsParsableTimestamps(t *testing.T) {
	out, err := PrepareSeries([]dashboard.ChartPoint{
		{Timestamp: "10:00", Value: 3},
		{Timestamp: "09:00", Value: 1},
		{Timestamp: "09:30", Value: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "09:00", out[0].Timestamp)
	assert.Equal(t, "09:30", out[1].Timestamp)
	assert.Equal(t, "10:00", out[2].Timestamp)
}

func TestAverage(t *testing.T) {
	avg, err := Average([]dashboard.ChartPoint{{Timestamp: "a", Value: 500}, {Timestamp: "b", Value: 700}})
	require.NoError(t, err)
	assert.InDelta(t, 600, avg, 0.0001)
}

func TestAreaChartRenders(t *testing.T) {
	html, err := AreaChart([]dashboard.ChartPoint{{Timestamp: "0:00", Value: 510}, {Timestamp: "1:00", Value: 640}}, svg.AreaOpts{Title: "Ingress"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(html), "<svg"))

	_, err = AreaChart(nil, svg.AreaOpts{})
	assert.ErrorIs(t, err, ErrNoPoints)
}

func TestRetryChart(t *testing.T) {
	html, err := RetryChart([]dashboard.RetryStage{{Stage: "Immediate", Count: 120}, {Stage: "DLQ", Count: 8}})
	require.NoError(t, err)
	assert.Contains(t, string(html), "DLQ")
}

func TestDeliveryChart(t *testing.T) {
	html, err := DeliveryChart([]dashboard.PartnerPerformance{
		{Partner: "Acme CRM", Success: 99, Failure: 1},
		{Partner: "PaymentsCo", Success: 94, Failure: 6},
	})
	require.NoError(t, err)
	out := string(html)
	assert.Contains(t, out, `aria-label="Success % Acme CRM"`)
	assert.Contains(t, out, `aria-label="Failure % PaymentsCo"`)
	assert.Equal(t, 2, strings.Count(out, `class="legend"`))

	_, err = DeliveryChart(nil)
	assert.ErrorIs(t, err, ErrNoPoints)
}
