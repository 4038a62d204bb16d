package widget

import (
	"html/template"

	"github.com/webhooks-analytics/console/internal/dashboard"
)

// Indicator is the directional marker rendered next to a KPI delta.
type Indicator struct {
	Trend dashboard.Trend
	Tone  string
	Label string
	Icon  template.HTML
}

const (
	iconTrendUp   = `<svg class="icon" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5" aria-hidden="true"><path stroke-linecap="round" stroke-linejoin="round" d="M2.25 18 9 11.25l4.306 4.306a11.95 11.95 0 0 1 5.814-5.518l2.74-1.22m0 0-5.94-2.281m5.94 2.28-2.28 5.941"/></svg>`
	iconTrendDown = `<svg class="icon" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5" aria-hidden="true"><path stroke-linecap="round" stroke-linejoin="round" d="M2.25 6 9 12.75l4.286-4.286a11.948 11.948 0 0 1 4.306 6.43l.776 2.898m0 0 3.182-5.511m-3.182 5.51-5.511-3.181"/></svg>`
	iconMinus     = `<svg class="icon" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5" aria-hidden="true"><path stroke-linecap="round" stroke-linejoin="round" d="M5 12h14"/></svg>`
)

// IndicatorFor maps every trend onto its indicator. Unknown values render as flat.
func IndicatorFor(trend dashboard.Trend) Indicator {
	switch trend {
	case dashboard.TrendUp:
		return Indicator{Trend: dashboard.TrendUp, Tone: "trend-up", Label: "Trending up", Icon: template.HTML(iconTrendUp)}
	case dashboard.TrendDown:
		return Indicator{Trend: dashboard.TrendDown, Tone: "trend-down", Label: "Trending down", Icon: template.HTML(iconTrendDown)}
	case dashboard.TrendFlat:
		return flatIndicator()
	default:
		return flatIndicator()
	}
}

func flatIndicator() Indicator {
	return Indicator{Trend: dashboard.TrendFlat, Tone: "trend-flat", Label: "No change", Icon: template.HTML(iconMinus)}
}

// KpiCardView is the render model of a KPI card.
type KpiCardView struct {
	Title     string
	Value     string
	Delta     string
	Indicator Indicator
}

// KpiCards projects KPI entities into card view models, preserving order.
func KpiCards(cards []dashboard.KpiCard) []KpiCardView {
	views := make([]KpiCardView, 0, len(cards))
	for _, card := range cards {
		views = append(views, KpiCardView{
			Title:     card.Title,
			Value:     card.Value,
			Delta:     card.Delta,
			Indicator: IndicatorFor(card.Trend),
		})
	}
	return views
}
