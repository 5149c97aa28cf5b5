package export

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/leadboard/lead-dashboard/internal/leads"
)

// SheetName is the worksheet holding the lead table.
const SheetName = "Leads"

// WriteLeadsXLSX writes the lead table as a single-sheet workbook.
// Numeric cells are stored as numbers so spreadsheets can sort them.
func WriteLeadsXLSX(w io.Writer, collection leads.Collection) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}

	grid := leads.BuildGrid(collection)
	header := make([]interface{}, len(grid.Columns))
	for i, col := range grid.Columns {
		header[i] = col
	}
	if len(header) > 0 {
		if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
			return fmt.Errorf("export: header row: %w", err)
		}
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("export: header style: %w", err)
		}
		last, err := excelize.CoordinatesToCellName(len(header), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetName, "A1", last, style); err != nil {
			return fmt.Errorf("export: apply header style: %w", err)
		}
	}

	for r, row := range grid.Rows {
		values := make([]interface{}, len(row))
		for i, cell := range row {
			values[i] = cellValue(cell)
		}
		start, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, start, &values); err != nil {
			return fmt.Errorf("export: row %d: %w", r+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

// cellValue keeps text that only looks numeric (leading zeros, signs,
// exponents) as text so identifiers survive the round trip.
func cellValue(text string) interface{} {
	if n, err := strconv.ParseInt(text, 10, 64); err == nil && strconv.FormatInt(n, 10) == text {
		return n
	}
	if v, err := strconv.ParseFloat(text, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) &&
		strconv.FormatFloat(v, 'f', -1, 64) == text {
		return v
	}
	return text
}
