package dataset

import (
	"fmt"
	"os"
)

type resolved struct {
	column string
	ok     bool
}

// Cache holds the tables and resolved column names of one batch run.
// It is owned by a single run and is not safe for concurrent use.
type Cache struct {
	tables  map[string]*Table
	columns map[string]resolved
	loader  func(path string) (*Table, error)
}

func NewCache() *Cache {
	return &Cache{
		tables:  make(map[string]*Table),
		columns: make(map[string]resolved),
		loader:  Load,
	}
}

// Reset forgets every table and column; called at the start of each run.
func (c *Cache) Reset() {
	c.tables = make(map[string]*Table)
	c.columns = make(map[string]resolved)
}

// Table loads path once under role. An empty path means the source is not configured
// and returns (nil, nil).
func (c *Cache) Table(role, path string) (*Table, error) {
	if t, ok := c.tables[role]; ok {
		return t, nil
	}
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%s source %s: %w", role, path, err)
	}
	t, err := c.loader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s source: %w", role, err)
	}
	c.tables[role] = t
	return t, nil
}

// Put registers an already loaded table under role.
func (c *Cache) Put(role string, t *Table) {
	c.tables[role] = t
}

// Loaded returns the table cached under role, nil when absent.
func (c *Cache) Loaded(role string) *Table {
	return c.tables[role]
}

// Column resolves a column of t once per key and remembers the answer, including misses.
func (c *Cache) Column(key string, t *Table, predicates ...ColumnPredicate) (string, bool) {
	if r, ok := c.columns[key]; ok {
		return r.column, r.ok
	}
	column, ok := ResolveColumn(t, predicates...)
	if t != nil {
		c.columns[key] = resolved{column: column, ok: ok}
	}
	return column, ok
}
