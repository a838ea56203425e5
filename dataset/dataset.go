// Package dataset holds the in-memory table that questions are asked
// against, the loaders that produce it, and the builder that renders it
// into a bounded prompt context.
//
// A Dataset is loaded once per session and never mutated afterwards:
// every accessor hands out copies so callers cannot alter shared state.
package dataset

import "fmt"

// Dataset is an ordered set of named columns and an ordered set of rows.
// Cells are kept as their textual scalar value, aligned with Columns.
type Dataset struct {
	name    string
	columns []string
	rows    [][]string
	index   map[string]int
}

// New builds a Dataset. Every row must have exactly len(columns) cells.
func New(name string, columns []string, rows [][]string) (*Dataset, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; !dup {
			index[c] = i
		}
	}

	copied := make([][]string, len(rows))
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, fmt.Errorf("row %d has %d fields, want %d", i+1, len(r), len(columns))
		}
		copied[i] = append([]string(nil), r...)
	}

	return &Dataset{
		name:    name,
		columns: append([]string(nil), columns...),
		rows:    copied,
		index:   index,
	}, nil
}

// Name returns the label the dataset was loaded under (file path or table).
func (d *Dataset) Name() string { return d.name }

// Columns returns the column names in order.
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.columns...)
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Row returns a copy of row i.
func (d *Dataset) Row(i int) []string {
	return append([]string(nil), d.rows[i]...)
}

// Value returns the cell of row i under the named column.
func (d *Dataset) Value(i int, column string) (string, bool) {
	j, ok := d.index[column]
	if !ok || i < 0 || i >= len(d.rows) {
		return "", false
	}
	return d.rows[i][j], true
}

// Head returns a dataset holding the first n rows (all rows when n exceeds Len).
func (d *Dataset) Head(n int) *Dataset {
	if n < 0 {
		n = 0
	}
	if n > len(d.rows) {
		n = len(d.rows)
	}
	return &Dataset{
		name:    d.name,
		columns: d.columns,
		rows:    d.rows[:n:n],
		index:   d.index,
	}
}

// Summary is a one-line description for status bars.
func (d *Dataset) Summary() string {
	return fmt.Sprintf("%s (%d row%s × %d column%s)",
		d.name, len(d.rows), plural(len(d.rows)), len(d.columns), plural(len(d.columns)))
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
