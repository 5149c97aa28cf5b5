package export

import (
	"errors"
	"fmt"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/leadboard/lead-dashboard/internal/leads"
)

// PNG canvas size for chart downloads.
const (
	PNGWidth  = 1024
	PNGHeight = 512

	maxPNGLabels = 25
)

var (
	scoreFill    = drawing.ColorFromHex("8884d8")
	stageFill    = drawing.Color{R: 255, G: 99, B: 132, A: 153}
	stageStroke  = drawing.Color{R: 255, G: 99, B: 132, A: 255}
	activityLine = drawing.Color{R: 75, G: 192, B: 192, A: 255}

	pieFill = []drawing.Color{
		{R: 54, G: 162, B: 235, A: 153},
		{R: 255, G: 206, B: 86, A: 153},
		{R: 75, G: 192, B: 192, A: 153},
		{R: 153, G: 102, B: 255, A: 153},
		{R: 255, G: 159, B: 64, A: 153},
		{R: 201, G: 203, B: 207, A: 153},
	}
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("export: no data to chart")

// RenderScorePNG draws the per-lead score bar chart.
func RenderScorePNG(w io.Writer, title string, points []leads.ScorePoint) error {
	if len(points) == 0 {
		return ErrNoData
	}
	labels, values := leads.ScoreLabels(points)
	return renderBars(w, title, labels, values, chart.Style{FillColor: scoreFill, StrokeColor: scoreFill})
}

// RenderFrequencyBarPNG draws a frequency mapping as a bar chart.
func RenderFrequencyBarPNG(w io.Writer, title string, freq leads.Frequency) error {
	if freq.Len() == 0 {
		return ErrNoData
	}
	return renderBars(w, title, freq.Labels(), freq.Series(), chart.Style{FillColor: stageFill, StrokeColor: stageStroke, StrokeWidth: 1})
}

// RenderFrequencyPiePNG draws a frequency mapping as a pie chart.
func RenderFrequencyPiePNG(w io.Writer, title string, freq leads.Frequency) error {
	if freq.Total() == 0 {
		return ErrNoData
	}
	values := make([]chart.Value, 0, freq.Len())
	for i, bucket := range freq.Buckets() {
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%d)", bucket.Label, bucket.Count),
			Value: float64(bucket.Count),
			Style: chart.Style{FillColor: pieFill[i%len(pieFill)]},
		})
	}
	pie := chart.PieChart{
		Title:  title,
		Width:  PNGHeight,
		Height: PNGHeight,
		Values: values,
	}
	if err := pie.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("export: render pie: %w", err)
	}
	return nil
}

// RenderFrequencyLinePNG draws a frequency mapping as a line over its
// categories.
func RenderFrequencyLinePNG(w io.Writer, title string, freq leads.Frequency) error {
	if freq.Len() == 0 {
		return ErrNoData
	}
	labels := freq.Labels()
	xs := make([]float64, len(labels))
	ticks := make([]chart.Tick, 0, len(labels))
	step := tickStep(len(labels))
	for i, label := range labels {
		xs[i] = float64(i)
		if i%step == 0 {
			ticks = append(ticks, chart.Tick{Value: float64(i), Label: label})
		}
	}
	ys := freq.Series()
	xRange := &chart.ContinuousRange{Min: 0, Max: float64(len(labels) - 1)}
	if len(labels) == 1 {
		// go-chart needs two distinct x values; flatten the lone bucket
		// across its slot.
		xs = []float64{-0.5, 0, 0.5}
		ys = []float64{ys[0], ys[0], ys[0]}
		xRange = &chart.ContinuousRange{Min: -0.5, Max: 0.5}
	}

	graph := chart.Chart{
		Title:  title,
		Width:  PNGWidth,
		Height: PNGHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 48, Left: 16, Right: 24, Bottom: 16},
		},
		XAxis: chart.XAxis{
			Ticks: ticks,
			Range: xRange,
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxFloat(maxOf(ys), 1)},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    title,
				XValues: xs,
				YValues: ys,
				Style:   chart.Style{StrokeColor: activityLine, StrokeWidth: 2, DotColor: activityLine, DotWidth: 3},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.LegendThin(&graph)}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("export: render line: %w", err)
	}
	return nil
}

func renderBars(w io.Writer, title string, labels []string, values []float64, style chart.Style) error {
	step := tickStep(len(labels))
	bars := make([]chart.Value, len(values))
	for i, v := range values {
		label := ""
		if i%step == 0 {
			label = labels[i]
		}
		bars[i] = chart.Value{Label: label, Value: v, Style: style}
	}
	spacing := 4
	barWidth := (PNGWidth-120)/len(bars) - spacing
	if barWidth < 2 {
		barWidth = 2
		spacing = 1
	}
	graph := chart.BarChart{
		Title:  title,
		Width:  PNGWidth,
		Height: PNGHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 48},
		},
		BarWidth:   barWidth,
		BarSpacing: spacing,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxFloat(maxOf(values), 1)},
		},
		Bars: bars,
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("export: render bars: %w", err)
	}
	return nil
}

func tickStep(n int) int {
	if n <= maxPNGLabels {
		return 1
	}
	return (n + maxPNGLabels - 1) / maxPNGLabels
}

func maxOf(values []float64) float64 {
	m := 0.0
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
