package app

import (
	"html/template"

	"github.com/leadboard/lead-dashboard/internal/leads/svg"
)

// BarRenderer adapts svg.Bars to the dashboard renderer contract.
type BarRenderer struct{}

// Bars renders a single series bar chart.
func (BarRenderer) Bars(width, height int, series []float64, labels []string, opts svg.BarOpts) (template.HTML, error) {
	return svg.Bars(width, height, series, labels, opts)
}

// LineRenderer adapts svg.Line.
type LineRenderer struct{}

// Line renders a line chart.
func (LineRenderer) Line(width, height int, series []float64, labels []string, opts svg.LineOpts) (template.HTML, error) {
	return svg.Line(width, height, series, labels, opts)
}

// PieRenderer adapts svg.Pie.
type PieRenderer struct{}

// Pie renders a pie chart.
func (PieRenderer) Pie(width, height int, values []float64, labels []string, opts svg.PieOpts) (template.HTML, error) {
	return svg.Pie(width, height, values, labels, opts)
}
