package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrColumnNotFound marks a lookup whose join column is absent. Callers treat it as no match.
var ErrColumnNotFound = errors.New("column not found")

// Filter keeps rows whose Column cell contains Contains, case-insensitively.
// A zero Filter keeps every row.
type Filter struct {
	Column   string
	Contains string
}

func (f Filter) active() bool {
	return f.Column != ""
}

// FindRows returns the rows whose joinColumn cell equals key once both are trimmed,
// in source order. A missing join column yields an empty table and ErrColumnNotFound.
func FindRows(t *Table, joinColumn, key string, filter Filter) (*Table, error) {
	if t == nil {
		return NewTable("", nil, nil), nil
	}
	if !t.HasColumn(joinColumn) {
		return t.subset(nil), fmt.Errorf("%w: %q in %s", ErrColumnNotFound, joinColumn, t.Name)
	}
	if filter.active() && !t.HasColumn(filter.Column) {
		return t.subset(nil), fmt.Errorf("%w: %q in %s", ErrColumnNotFound, filter.Column, t.Name)
	}

	key = strings.TrimSpace(key)
	needle := strings.ToUpper(filter.Contains)
	var matched []int
	for i := range t.Rows {
		if t.Value(i, joinColumn) != key {
			continue
		}
		if filter.active() && !strings.Contains(strings.ToUpper(t.Value(i, filter.Column)), needle) {
			continue
		}
		matched = append(matched, i)
	}
	return t.subset(matched), nil
}

// First returns the first row matching key, keyed by column name.
func First(t *Table, joinColumn, key string) (map[string]string, bool) {
	rows, err := FindRows(t, joinColumn, key, Filter{})
	if err != nil || rows.Len() == 0 {
		return nil, false
	}
	return rows.Record(0), true
}
