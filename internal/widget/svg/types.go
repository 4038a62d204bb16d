package svg

// AreaOpts customises the area chart renderer.
type AreaOpts struct {
	Title       string
	Description string
	StrokeColor string
	AxisColor   string
	GridColor   string
	Padding     float64
	ShowDots    bool
	TickCount   int
	// LabelEvery prints every n-th x-axis label; 0 picks a value that keeps labels readable.
	LabelEvery int
}

// BarOpts customises the bar chart renderer.
type BarOpts struct {
	Title       string
	Description string
	AxisColor   string
	GridColor   string
	Padding     float64
	TickCount   int
}

// Defaults for the dashboard charts.
const (
	DefaultWidth   = 720
	DefaultHeight  = 256
	DefaultPadding = 28.0
	DefaultTicks   = 5

	maxXLabels = 12
)
