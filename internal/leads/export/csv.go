package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/leadboard/lead-dashboard/internal/leads"
)

// WriteLeadsCSV serialises the lead table as CSV: one header row with the
// column union, then one row per lead.
func WriteLeadsCSV(w io.Writer, collection leads.Collection) error {
	grid := leads.BuildGrid(collection)
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(grid.Columns); err != nil {
		return err
	}
	for _, row := range grid.Rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteFrequencyCSV emits a frequency mapping as label/count rows.
func WriteFrequencyCSV(w io.Writer, heading string, freq leads.Frequency) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{heading, "Count"}); err != nil {
		return err
	}
	for _, bucket := range freq.Buckets() {
		if err := writer.Write([]string{bucket.Label, formatInt(bucket.Count)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteScoreCSV emits the score series as label/score rows.
func WriteScoreCSV(w io.Writer, points []leads.ScorePoint) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Lead", "Score"}); err != nil {
		return err
	}
	for _, p := range points {
		if err := writer.Write([]string{p.Label, formatInt(p.Value)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatInt(v int) string {
	return strconv.Itoa(v)
}
