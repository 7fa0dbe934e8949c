// Package dataset loads tabular sources (xlsx or csv) and matches customer keys against them.
package dataset

import (
	"fmt"
	"strings"
)

// Table is an in-memory sheet: a header row and string cells aligned to it.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
	index   map[string]int
}

// NewTable builds a table, padding short rows and naming blank or repeated headers.
func NewTable(name string, header []string, rows [][]string) *Table {
	t := &Table{Name: name, index: make(map[string]int, len(header))}
	seen := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = fmt.Sprintf("%s.%d", h, n+1)
		} else {
			seen[h] = 0
		}
		t.index[h] = len(t.Columns)
		t.Columns = append(t.Columns, h)
	}
	for _, row := range rows {
		t.Rows = append(t.Rows, t.align(row))
	}
	return t
}

func (t *Table) align(row []string) []string {
	out := make([]string, len(t.Columns))
	copy(out, row)
	return out
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn reports whether column exists, compared exactly.
func (t *Table) HasColumn(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Value returns the trimmed cell of row i under column, "" when absent.
func (t *Table) Value(i int, column string) string {
	c, ok := t.index[column]
	if !ok || i < 0 || i >= len(t.Rows) {
		return ""
	}
	return strings.TrimSpace(t.Rows[i][c])
}

// Record returns row i keyed by column name.
func (t *Table) Record(i int) map[string]string {
	rec := make(map[string]string, len(t.Columns))
	for c, name := range t.Columns {
		rec[name] = t.Rows[i][c]
	}
	return rec
}

// subset returns a table sharing the header with only the given rows.
func (t *Table) subset(rows []int) *Table {
	out := &Table{Name: t.Name, Columns: append([]string(nil), t.Columns...), index: make(map[string]int, len(t.index))}
	for k, v := range t.index {
		out.index[k] = v
	}
	for _, i := range rows {
		out.Rows = append(out.Rows, append([]string(nil), t.Rows[i]...))
	}
	return out
}

// WithColumn returns a copy with column set to value on every row, appending the column if needed.
func (t *Table) WithColumn(column, value string) *Table {
	all := make([]int, len(t.Rows))
	for i := range all {
		all[i] = i
	}
	out := t.subset(all)
	c, ok := out.index[column]
	if !ok {
		c = len(out.Columns)
		out.index[column] = c
		out.Columns = append(out.Columns, column)
		for i := range out.Rows {
			out.Rows[i] = append(out.Rows[i], "")
		}
	}
	for i := range out.Rows {
		out.Rows[i][c] = value
	}
	return out
}
