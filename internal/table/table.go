// Package table holds the raw, untyped tabular snapshot handed to the
// pipeline by a loader.
package table

import (
	"fmt"
	"strings"
)

// Table is a rectangular grid of string cells with a header row.
// Rows shorter than the header are padded with empty cells on access.
type Table struct {
	Columns []string
	Rows    [][]string
}

// New creates a table, copying the header.
func New(columns []string, rows [][]string) Table {
	return Table{
		Columns: append([]string(nil), columns...),
		Rows:    rows,
	}
}

// Len returns the number of data rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of a column or -1.
func (t Table) Index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Has reports whether the column is present.
func (t Table) Has(column string) bool {
	return t.Index(column) >= 0
}

// Cell returns the trimmed cell at (row, col) or "" when the row is short.
func (t Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// Value returns the cell of a named column, or "" if absent.
func (t Table) Value(row int, column string) string {
	return t.Cell(row, t.Index(column))
}

// Rename returns a table with new column names; len(names) must equal the
// number of columns.
func (t Table) Rename(names []string) (Table, error) {
	if len(names) != len(t.Columns) {
		return Table{}, fmt.Errorf("rename: got %d names for %d columns", len(names), len(t.Columns))
	}
	return Table{Columns: append([]string(nil), names...), Rows: t.Rows}, nil
}

// Drop returns a table without the given column positions.
func (t Table) Drop(positions map[int]bool) Table {
	if len(positions) == 0 {
		return t
	}

	keep := make([]int, 0, len(t.Columns))
	for i := range t.Columns {
		if !positions[i] {
			keep = append(keep, i)
		}
	}

	columns := make([]string, len(keep))
	for j, i := range keep {
		columns[j] = t.Columns[i]
	}

	rows := make([][]string, len(t.Rows))
	for r := range t.Rows {
		row := make([]string, len(keep))
		for j, i := range keep {
			if i < len(t.Rows[r]) {
				row[j] = t.Rows[r][i]
			}
		}
		rows[r] = row
	}

	return Table{Columns: columns, Rows: rows}
}
