package schema

import (
	"context"
	"fmt"
	"os"

	"github.com/aqasim81/migrationcop/internal/parser"
	"github.com/aqasim81/migrationcop/internal/pattern"
	"github.com/aqasim81/migrationcop/internal/syntax"
)

var (
	identifier = pattern.Type(syntax.Str, syntax.Sym)
	columnList = pattern.Or(identifier, pattern.Node(syntax.Array, pattern.RestOf(identifier)))

	createTable = pattern.MustCompile(pattern.Node(syntax.Block,
		pattern.Call([]string{"create_table"}, pattern.Capture("table", identifier), pattern.Rest()),
		pattern.Any(),
		pattern.CaptureRest("body", pattern.Any()),
	))

	tableIndex = pattern.MustCompile(pattern.Send(
		pattern.Type(syntax.Lvar), []string{"index"},
		pattern.Capture("columns", columnList),
		pattern.CaptureRest("options", pattern.Type(syntax.Hash)),
	))

	tableColumn = pattern.MustCompile(pattern.Send(
		pattern.Type(syntax.Lvar), nil,
		pattern.Capture("column", identifier),
		pattern.Rest(),
	))

	addIndex = pattern.MustCompile(pattern.Call([]string{"add_index"},
		pattern.Capture("table", identifier),
		pattern.Capture("columns", columnList),
		pattern.CaptureRest("options", pattern.Type(syntax.Hash)),
	))
)

// RubyFile reads db/schema.rb.
type RubyFile struct {
	Path string
}

func (f *RubyFile) String() string { return f.Path }

// Load parses the schema file.
func (f *RubyFile) Load(ctx context.Context) (*Snapshot, error) {
	src, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	return ParseRubySchema(ctx, src)
}

// ParseRubySchema builds a snapshot from the text of a schema.rb file.
func ParseRubySchema(ctx context.Context, src []byte) (*Snapshot, error) {
	root, err := parser.ParseRuby(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	s := Empty()

	root.Walk(func(n *syntax.Node) bool {
		if r := createTable.Match(n); r.Matched {
			table := s.addTable(r.Node("table").Value())
			s.tableBody(table, r.List("body"))

			return false
		}

		if r := addIndex.Match(n); r.Matched {
			s.addIndex(r.Node("table").Value(), rubyIndex(r))
		}

		return true
	})

	return s, nil
}

func (s *Snapshot) tableBody(t *Table, body []*syntax.Node) {
	for _, stmt := range body {
		if r := tableIndex.Match(stmt); r.Matched {
			s.addIndex(t.Name, rubyIndex(r))

			continue
		}

		switch {
		case stmt.IsMethod("check_constraint", "foreign_key", "remove"):
		case stmt.IsMethod("timestamps"):
			s.addTable(t.Name, "created_at", "updated_at")
		case stmt.IsMethod("references", "belongs_to"):
			if r := tableColumn.Match(stmt); r.Matched {
				s.addTable(t.Name, r.Node("column").Value()+"_id")
			}
		default:
			if r := tableColumn.Match(stmt); r.Matched {
				s.addTable(t.Name, r.Node("column").Value())
			}
		}
	}
}

func rubyIndex(r pattern.Result) Index {
	idx := Index{}

	cols := r.Node("columns")
	if cols.Is(syntax.Array) {
		for _, c := range cols.Children() {
			idx.Columns = append(idx.Columns, c.Value())
		}
	} else {
		idx.Columns = []string{cols.Value()}
	}

	for _, opts := range r.List("options") {
		for _, pair := range opts.Pairs() {
			key, value := pair.Key(), pair.PairValue()
			if !key.Is(syntax.Sym) {
				continue
			}

			switch key.Value() {
			case "name":
				if value.Is(syntax.Str, syntax.Sym) {
					idx.Name = value.Value()
				}
			case "unique":
				idx.Unique = value.Is(syntax.True)
			}
		}
	}

	return idx
}
