package svg

// LineOpts customises the line chart renderer.
type LineOpts struct {
	Title       string
	Description string
	SeriesLabel string
	StrokeColor string
	FillColor   string
	AxisColor   string
	GridColor   string
	Padding     float64
	ShowDots    bool
	ShowTitle   bool
	ShowLegend  bool
	TickCount   int
}

// BarOpts customises the bar chart renderer.
type BarOpts struct {
	Title       string
	Description string
	SeriesLabel string
	Color       string
	BorderColor string
	AxisColor   string
	GridColor   string
	Padding     float64
	ShowLegend  bool
	TickCount   int
}

// PieOpts customises the pie chart renderer.
type PieOpts struct {
	Title       string
	Description string
	Colors      []string
	Borders     []string
	TextColor   string
}

// Defaults for the lead charts.
const (
	DefaultWidth   = 720
	DefaultHeight  = 280
	DefaultPadding = 32.0
	DefaultTicks   = 5

	// maxAxisLabels bounds how many x-axis labels are printed before
	// thinning kicks in.
	maxAxisLabels = 20
)

// Palette used by categorical charts, cycled when there are more slices
// than colours.
var (
	PaletteFill = []string{
		"rgba(54, 162, 235, 0.6)",
		"rgba(255, 206, 86, 0.6)",
		"rgba(75, 192, 192, 0.6)",
		"rgba(153, 102, 255, 0.6)",
		"rgba(255, 159, 64, 0.6)",
		"rgba(201, 203, 207, 0.6)",
	}
	PaletteBorder = []string{
		"rgba(54, 162, 235, 1)",
		"rgba(255, 206, 86, 1)",
		"rgba(75, 192, 192, 1)",
		"rgba(153, 102, 255, 1)",
		"rgba(255, 159, 64, 1)",
		"rgba(201, 203, 207, 1)",
	}
)
