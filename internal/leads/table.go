package leads

// Columns returns the union of field names across all records, in the
// order each name is first seen.
func Columns(leads Collection) []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, lead := range leads {
		for _, key := range lead.keys {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			cols = append(cols, key)
		}
	}
	return cols
}

// Cell returns the display text of a column, empty when the record does
// not carry it.
func Cell(lead Lead, column string) string {
	v, _ := lead.Value(column)
	return v
}

// Row returns the cells of a record aligned with cols.
func Row(lead Lead, cols []string) []string {
	row := make([]string, len(cols))
	for i, col := range cols {
		row[i] = Cell(lead, col)
	}
	return row
}

// Grid is the tabular projection of a collection.
type Grid struct {
	Columns []string
	Rows    [][]string
}

// BuildGrid projects the collection onto its column union.
func BuildGrid(leads Collection) Grid {
	cols := Columns(leads)
	rows := make([][]string, 0, len(leads))
	for _, lead := range leads {
		rows = append(rows, Row(lead, cols))
	}
	return Grid{Columns: cols, Rows: rows}
}
