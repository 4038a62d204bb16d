package widget

import (
	"errors"
	"html/template"
	"sort"
	"time"

	"github.com/webhooks-analytics/console/internal/dashboard"
	"github.com/webhooks-analytics/console/internal/widget/svg"
)

// ErrNoPoints is returned when a series has nothing to render or aggregate.
var ErrNoPoints = errors.New("widget: series has no points")

var timestampLayouts = []string{time.RFC3339, "2006-01-02", "15:04"}

// PrepareSeries normalises a series for charting. Duplicate timestamps collapse into the
// first position carrying the last value. When every timestamp parses as a time the points
// are sorted chronologically; otherwise caller order is kept.
func PrepareSeries(points []dashboard.ChartPoint) ([]dashboard.ChartPoint, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	index := make(map[string]int, len(points))
	out := make([]dashboard.ChartPoint, 0, len(points))
	for _, p := range points {
		if i, seen := index[p.Timestamp]; seen {
			out[i].Value = p.Value
			continue
		}
		index[p.Timestamp] = len(out)
		out = append(out, p)
	}

	parsed := make([]time.Time, len(out))
	for i, p := range out {
		t, ok := parseTimestamp(p.Timestamp)
		if !ok {
			return out, nil
		}
		parsed[i] = t
	}
	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return parsed[order[a]].Before(parsed[order[b]])
	})
	sorted := make([]dashboard.ChartPoint, len(out))
	for i, idx := range order {
		sorted[i] = out[idx]
	}
	return sorted, nil
}

func parseTimestamp(value string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Average returns the arithmetic mean of the series values.
func Average(points []dashboard.ChartPoint) (float64, error) {
	if len(points) == 0 {
		return 0, ErrNoPoints
	}
	var sum float64
	for _, p := range points {
		sum += p.Value
	}
	return sum / float64(len(points)), nil
}

// AreaChart prepares the series and renders it as an SVG area chart.
func AreaChart(points []dashboard.ChartPoint, opts svg.AreaOpts) (template.HTML, error) {
	prepared, err := PrepareSeries(points)
	if err != nil {
		return "", err
	}
	values := make([]float64, 0, len(prepared))
	labels := make([]string, 0, len(prepared))
	for _, p := range prepared {
		values = append(values, p.Value)
		labels = append(labels, p.Timestamp)
	}
	return svg.Area(svg.DefaultWidth, svg.DefaultHeight, values, labels, opts)
}

// RetryChart renders retry stage counts as bars in pipeline order.
func RetryChart(stages []dashboard.RetryStage) (template.HTML, error) {
	if len(stages) == 0 {
		return "", ErrNoPoints
	}
	counts := make([]float64, 0, len(stages))
	labels := make([]string, 0, len(stages))
	for _, st := range stages {
		counts = append(counts, float64(st.Count))
		labels = append(labels, st.Stage)
	}
	return svg.Bars(svg.DefaultWidth, svg.DefaultHeight, labels, []svg.BarSeries{
		{Name: "Pending", Values: counts},
	}, svg.BarOpts{
		Title:       "Retry pipeline",
		Description: "Deliveries pending at each retry tier",
	})
}

// DeliveryChart renders success and failure rates side by side for each partner.
func DeliveryChart(partners []dashboard.PartnerPerformance) (template.HTML, error) {
	if len(partners) == 0 {
		return "", ErrNoPoints
	}
	labels := make([]string, 0, len(partners))
	success := make([]float64, 0, len(partners))
	failure := make([]float64, 0, len(partners))
	for _, p := range partners {
		labels = append(labels, p.Partner)
		success = append(success, float64(p.Success))
		failure = append(failure, float64(p.Failure))
	}
	return svg.Bars(svg.DefaultWidth, svg.DefaultHeight, labels, []svg.BarSeries{
		{Name: "Success %", Color: "#16a34a", Values: success},
		{Name: "Failure %", Color: "#dc2626", Values: failure},
	}, svg.BarOpts{
		Title:       "Delivery performance",
		Description: "Success and failure rate per partner",
	})
}
