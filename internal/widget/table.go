// Package widget holds the presentational building blocks shared by dashboard pages.
package widget

import (
	"encoding/csv"
	"io"
)

// AbsentPlaceholder is displayed for cells whose row has no value for the column.
const AbsentPlaceholder = "—"

// Column projects one field of a row of type R into a displayed column.
type Column[R any] struct {
	Key   string
	Label string
	value func(R) any
}

// Col declares a column. The accessor returns nil when the row has no value for it.
func Col[R any](key, label string, value func(R) any) Column[R] {
	return Column[R]{Key: key, Label: label, value: value}
}

// Table renders rows of type R through an ordered column set.
type Table[R any] struct {
	columns []Column[R]
}

// NewTable builds a table from columns in display order.
func NewTable[R any](columns ...Column[R]) Table[R] {
	return Table[R]{columns: columns}
}

// Header is a rendered column heading.
type Header struct {
	Key   string
	Label string
}

// Cell is a rendered table cell. Text is the display form; Raw is the ungrouped machine
// form used for exports.
type Cell struct {
	Text    string
	Raw     string
	Absent  bool
	Numeric bool
}

// Grid is the rendered table: one header row and one body row per input row.
type Grid struct {
	Headers []Header
	Rows    [][]Cell
}

// Render projects rows into a Grid, preserving row order.
func (t Table[R]) Render(rows []R) Grid {
	grid := Grid{
		Headers: make([]Header, 0, len(t.columns)),
		Rows:    make([][]Cell, 0, len(rows)),
	}
	for _, col := range t.columns {
		grid.Headers = append(grid.Headers, Header{Key: col.Key, Label: col.Label})
	}
	for _, row := range rows {
		cells := make([]Cell, 0, len(t.columns))
		for _, col := range t.columns {
			cells = append(cells, renderCell(col, row))
		}
		grid.Rows = append(grid.Rows, cells)
	}
	return grid
}

func renderCell[R any](col Column[R], row R) Cell {
	if col.value == nil {
		return Cell{Text: AbsentPlaceholder, Absent: true}
	}
	value := col.value(row)
	text, ok := FormatValue(value)
	if !ok {
		return Cell{Text: AbsentPlaceholder, Absent: true}
	}
	return Cell{Text: text, Raw: RawValue(value), Numeric: isNumeric(value)}
}

// Empty reports whether the grid has no body rows.
func (g Grid) Empty() bool {
	return len(g.Rows) == 0
}

// WriteCSV writes the header labels and raw cell values as CSV. Absent cells are written empty.
func (g Grid) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := make([]string, 0, len(g.Headers))
	for _, h := range g.Headers {
		header = append(header, h.Label)
	}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, row := range g.Rows {
		record := make([]string, 0, len(row))
		for _, cell := range row {
			if cell.Absent {
				record = append(record, "")
				continue
			}
			record = append(record, cell.Raw)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// MapRow is an open row shape for data whose columns are only known at runtime.
type MapRow map[string]any

// Field declares a MapRow column reading the value stored under key.
func Field(key, label string) Column[MapRow] {
	return Col(key, label, func(row MapRow) any {
		value, ok := row[key]
		if !ok {
			return nil
		}
		return value
	})
}
