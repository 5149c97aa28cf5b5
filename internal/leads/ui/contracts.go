package ui

import (
	"html/template"

	"github.com/leadboard/lead-dashboard/internal/leads"
	"github.com/leadboard/lead-dashboard/internal/leads/svg"
)

// ChartKind names one of the four dashboard charts.
type ChartKind string

// Chart kinds, also used as PNG download slugs.
const (
	ChartScore    ChartKind = "score"
	ChartSource   ChartKind = "source"
	ChartStage    ChartKind = "stage"
	ChartActivity ChartKind = "activity"
)

// ChartKinds lists the charts in page order.
var ChartKinds = []ChartKind{ChartScore, ChartStage, ChartSource, ChartActivity}

// Chart is one rendered chart card. An empty SVG means the placeholder shows.
type Chart struct {
	Kind    ChartKind
	Title   string
	SVG     template.HTML
	PNGPath string
	CSVPath string
}

// Ready reports whether the chart has content.
func (c Chart) Ready() bool { return c.SVG != "" }

// Table is the lead table as displayed.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Empty reports whether there is nothing to show yet.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// Messages carries the localised strings a page needs.
type Messages struct {
	LoadingData  string
	LoadingChart string
}

// ChartsViewModel backs the charts page.
type ChartsViewModel struct {
	Heading  string
	Charts   []Chart
	Table    Table
	Messages Messages
	Count    int
}

// TableViewModel backs the table page.
type TableViewModel struct {
	Table    Table
	Messages Messages
	Count    int
}

// ScoringViewModel backs the scoring page.
type ScoringViewModel struct {
	Heading string
	Pretty  string
}

// UploadViewModel backs the upload page.
type UploadViewModel struct {
	Heading string
	Button  string
	Message string
	Field   string
}

// BarRenderer abstracts SVG bar chart rendering.
type BarRenderer interface {
	Bars(width, height int, series []float64, labels []string, opts svg.BarOpts) (template.HTML, error)
}

// LineRenderer abstracts SVG line chart rendering.
type LineRenderer interface {
	Line(width, height int, series []float64, labels []string, opts svg.LineOpts) (template.HTML, error)
}

// PieRenderer abstracts SVG pie chart rendering.
type PieRenderer interface {
	Pie(width, height int, values []float64, labels []string, opts svg.PieOpts) (template.HTML, error)
}

// ToTable converts a grid into its display form.
func ToTable(grid leads.Grid) Table {
	return Table{Columns: grid.Columns, Rows: grid.Rows}
}
