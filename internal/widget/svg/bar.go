package svg

import (
	"errors"
	"fmt"
	"html/template"
	"strings"
)

// BarSeries is one set of bars. Values line up with the chart labels.
type BarSeries struct {
	Name   string
	Color  string
	Values []float64
}

var seriesPalette = []string{"#2563eb", "#dc2626", "#16a34a", "#f97316"}

// Bars renders grouped vertical bars for non-negative values, one group per label and one bar
// per series inside each group. A legend is drawn when more than one series is present.
func Bars(width, height int, labels []string, series []BarSeries, opts BarOpts) (template.HTML, error) {
	if len(series) == 0 {
		return "", errors.New("svg: at least one series required")
	}
	if len(labels) == 0 {
		return "", errors.New("svg: labels required")
	}
	peak := 0.0
	for _, s := range series {
		if len(s.Values) != len(labels) {
			return "", fmt.Errorf("svg: series %q has %d values for %d labels", s.Name, len(s.Values), len(labels))
		}
		for _, v := range s.Values {
			if v < 0 {
				return "", fmt.Errorf("svg: series %q has negative value %v", s.Name, v)
			}
			if v > peak {
				peak = v
			}
		}
	}
	if peak == 0 {
		peak = 1
	}

	f := newFrame(width, height, opts.Padding)
	if f.w <= 0 || f.h <= 0 {
		return "", errors.New("svg: viewport too small")
	}
	ticks := opts.TickCount
	if ticks <= 0 {
		ticks = DefaultTicks
	}
	axis := fallback(opts.AxisColor, "#64748b")
	grid := fallback(opts.GridColor, "#cbd5e1")

	titleID := makeID(opts.Title, "bar-title")
	descID := makeID(opts.Title, "bar-desc")

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-labelledby="%s %s">`, f.width, f.height, titleID, descID)
	fmt.Fprintf(&b, `<title id="%s">%s</title>`, titleID, template.HTMLEscapeString(fallback(opts.Title, "Bar chart")))
	fmt.Fprintf(&b, `<desc id="%s">%s</desc>`, descID, template.HTMLEscapeString(fallback(opts.Description, "Bar comparison")))

	for i := 0; i <= ticks; i++ {
		ratio := float64(i) / float64(ticks)
		y := f.bottom() - ratio*f.h
		fmt.Fprintf(&b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="0.5" stroke-dasharray="2,4" aria-hidden="true"></line>`, f.pad, y, f.right(), y, grid)
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="end">%s</text>`, f.pad-6, y+4, axis, template.HTMLEscapeString(formatTick(peak*ratio)))
	}
	fmt.Fprintf(&b, `<path d="M%.2f %.2f V%.2f H%.2f" fill="none" stroke="%s" aria-hidden="true"></path>`, f.pad, f.pad, f.bottom(), f.right(), axis)

	slot := f.w / float64(len(labels))
	// Bars fill two thirds of each slot; the rest is the gap between groups.
	barWidth := slot * 2 / 3 / float64(len(series))
	groupStart := (slot - barWidth*float64(len(series))) / 2

	for i, label := range labels {
		left := f.pad + float64(i)*slot + groupStart
		for n, s := range series {
			value := s.Values[i]
			barHeight := value / peak * f.h
			fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" aria-label="%s %s"><title>%s</title></rect>`,
				left+float64(n)*barWidth, f.bottom()-barHeight, barWidth, barHeight, seriesColor(s, n),
				template.HTMLEscapeString(s.Name), template.HTMLEscapeString(label), template.HTMLEscapeString(formatTick(value)))
		}
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="middle">%s</text>`, f.pad+(float64(i)+0.5)*slot, f.bottom()+14, axis, template.HTMLEscapeString(label))
	}

	if len(series) > 1 {
		x := f.pad
		y := f.pad - 10
		if y < 12 {
			y = 12
		}
		for n, s := range series {
			fmt.Fprintf(&b, `<g class="legend"><rect x="%.2f" y="%.2f" width="10" height="10" fill="%s"></rect><text x="%.2f" y="%.2f" fill="%s" font-size="10">%s</text></g>`,
				x, y-8, seriesColor(s, n), x+14, y, axis, template.HTMLEscapeString(s.Name))
			x += 14 + 7*float64(len(s.Name)) + 16
		}
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func seriesColor(s BarSeries, n int) string {
	if s.Color != "" {
		return s.Color
	}
	return seriesPalette[n%len(seriesPalette)]
}

// frame is the plotting area inside the padded viewport.
type frame struct {
	width, height int
	pad, w, h     float64
}

func newFrame(width, height int, padding float64) frame {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	if padding <= 0 {
		padding = DefaultPadding
	}
	return frame{
		width:  width,
		height: height,
		pad:    padding,
		w:      float64(width) - 2*padding,
		h:      float64(height) - 2*padding,
	}
}

func (f frame) bottom() float64 { return f.pad + f.h }

func (f frame) right() float64 { return f.pad + f.w }
