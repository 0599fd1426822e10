// Package schema provides a read-only snapshot of the database schema that
// migrations run against, loaded from db/schema.rb, db/structure.sql or a
// live PostgreSQL catalog.
package schema

import (
	"slices"
	"sort"
	"strings"
)

// Index is one index of a table.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// Table is one table of the snapshot.
type Table struct {
	Name    string
	Columns []string
	Indexes []Index
}

// Snapshot is an immutable view of tables and their indexes. The zero value
// and a nil *Snapshot are empty.
type Snapshot struct {
	tables map[string]*Table
}

// NewSnapshot builds a snapshot from tables. Indexes of a table listed twice
// are merged.
func NewSnapshot(tables ...Table) *Snapshot {
	s := &Snapshot{tables: make(map[string]*Table, len(tables))}

	for _, t := range tables {
		s.addTable(t.Name, t.Columns...)

		for _, idx := range t.Indexes {
			s.addIndex(t.Name, idx)
		}
	}

	return s
}

// Empty returns a snapshot with no tables.
func Empty() *Snapshot { return &Snapshot{} }

func (s *Snapshot) table(name string) *Table {
	if s == nil {
		return nil
	}

	return s.tables[normalize(name)]
}

func (s *Snapshot) addTable(name string, columns ...string) *Table {
	if s.tables == nil {
		s.tables = make(map[string]*Table)
	}

	name = normalize(name)

	t, ok := s.tables[name]
	if !ok {
		t = &Table{Name: name}
		s.tables[name] = t
	}

	for _, c := range columns {
		if !slices.Contains(t.Columns, c) {
			t.Columns = append(t.Columns, c)
		}
	}

	return t
}

func (s *Snapshot) addIndex(table string, idx Index) {
	t := s.addTable(table)
	idx.Columns = slices.Clone(idx.Columns)
	t.Indexes = append(t.Indexes, idx)
}

// normalize drops the default public schema so that names from pg_dump and
// schema.rb agree.
func normalize(name string) string {
	return strings.TrimPrefix(name, "public.")
}

// TableExists reports whether the snapshot knows the table.
func (s *Snapshot) TableExists(name string) bool {
	return s.table(name) != nil
}

// Table returns a copy of the named table.
func (s *Snapshot) Table(name string) (Table, bool) {
	t := s.table(name)
	if t == nil {
		return Table{}, false
	}

	out := Table{Name: t.Name, Columns: slices.Clone(t.Columns), Indexes: make([]Index, len(t.Indexes))}
	for i, idx := range t.Indexes {
		out.Indexes[i] = Index{Name: idx.Name, Columns: slices.Clone(idx.Columns), Unique: idx.Unique}
	}

	return out, true
}

// IndexedColumnSets returns the ordered column lists of every index on table.
func (s *Snapshot) IndexedColumnSets(table string) [][]string {
	t := s.table(table)
	if t == nil {
		return nil
	}

	sets := make([][]string, 0, len(t.Indexes))
	for _, idx := range t.Indexes {
		sets = append(sets, slices.Clone(idx.Columns))
	}

	return sets
}

// Tables returns the table names in sorted order.
func (s *Snapshot) Tables() []string {
	if s == nil {
		return nil
	}

	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Len returns the number of tables.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}

	return len(s.tables)
}
