package dataset

import "strings"

// ColumnPredicate decides whether a header names the column being looked for.
type ColumnPredicate func(column string) bool

// Exact matches the header byte for byte.
func Exact(name string) ColumnPredicate {
	return func(column string) bool { return column == name }
}

// EqualFold matches the trimmed header case-insensitively.
func EqualFold(name string) ColumnPredicate {
	return func(column string) bool { return strings.EqualFold(strings.TrimSpace(column), name) }
}

// Contains matches headers containing every fragment, case-insensitively.
func Contains(fragments ...string) ColumnPredicate {
	return func(column string) bool {
		upper := strings.ToUpper(column)
		for _, f := range fragments {
			if !strings.Contains(upper, strings.ToUpper(f)) {
				return false
			}
		}
		return true
	}
}

var separatorStripper = strings.NewReplacer("_", "", "-", "", " ", "", ".", "")

// Compact matches the header once separators are stripped, so numero_celular, NUMERO CELULAR
// and Numero-Celular are the same column.
func Compact(name string) ColumnPredicate {
	want := strings.ToUpper(separatorStripper.Replace(name))
	return func(column string) bool {
		return strings.ToUpper(separatorStripper.Replace(strings.TrimSpace(column))) == want
	}
}

// ResolveColumn returns the first header accepted by the earliest predicate that accepts any.
func ResolveColumn(t *Table, predicates ...ColumnPredicate) (string, bool) {
	if t == nil {
		return "", false
	}
	for _, accept := range predicates {
		for _, column := range t.Columns {
			if accept(column) {
				return column, true
			}
		}
	}
	return "", false
}
