package rules

import (
	"fmt"

	"github.com/aqasim81/migrationcop/internal/analyzer"
	"github.com/aqasim81/migrationcop/internal/pattern"
	"github.com/aqasim81/migrationcop/internal/syntax"
)

// DefaultMaxColumnsCount is the widest non-unique index allowed by default.
const DefaultMaxColumnsCount = 3

const maxColumnsCountKey = "max_columns_count"

var (
	uniqueIndex = pattern.MustCompile(pattern.Send(nil, nil,
		pattern.Rest(),
		pattern.HashIncluding(pattern.Option("unique", pattern.Type(syntax.True))),
	))

	indexColumnList = pattern.Type(syntax.Array, syntax.Str, syntax.Sym)

	addIndexColumns = pattern.MustCompile(pattern.Call([]string{"add_index"},
		pattern.Any(),
		pattern.Capture("columns", indexColumnList),
		pattern.Rest(),
	))

	tableIndexColumns = pattern.MustCompile(pattern.Send(pattern.Type(syntax.Lvar), []string{"index"},
		pattern.Capture("columns", indexColumnList),
		pattern.Rest(),
	))
)

// AddIndexColumnsCountRule flags non-unique indexes over too many columns.
type AddIndexColumnsCountRule struct {
	meta
	max int
}

// NewAddIndexColumnsCountRule creates a new AddIndexColumnsCountRule.
func NewAddIndexColumnsCountRule() *AddIndexColumnsCountRule {
	return &AddIndexColumnsCountRule{
		meta: meta{
			id:          "add-index-columns-count",
			description: "Keep non-unique index columns count small",
			severity:    analyzer.Low,
			triggers:    []analyzer.Trigger{analyzer.OnSend("add_index", "index")},
		},
		max: DefaultMaxColumnsCount,
	}
}

// MaxColumnsCount returns the configured limit.
func (r *AddIndexColumnsCountRule) MaxColumnsCount() int { return r.max }

// DefaultSettings returns the options in effect before configuration.
func (r *AddIndexColumnsCountRule) DefaultSettings() map[string]any {
	return map[string]any{maxColumnsCountKey: DefaultMaxColumnsCount}
}

// ApplySettings reads max_columns_count.
func (r *AddIndexColumnsCountRule) ApplySettings(settings map[string]any) error {
	for key, value := range settings {
		if key != maxColumnsCountKey {
			return fmt.Errorf("%w: %s: unknown option %q", analyzer.ErrInvalidOption, r.id, key)
		}

		n, ok := value.(int)
		if !ok || n < 1 {
			return fmt.Errorf("%w: %s: %s must be a positive integer, got %v",
				analyzer.ErrInvalidOption, r.id, key, value)
		}

		r.max = n
	}

	return nil
}

// Check examines add_index and `t.index` calls.
func (r *AddIndexColumnsCountRule) Check(n *syntax.Node, _ *analyzer.RuleContext) []analyzer.Offense {
	if uniqueIndex.Matches(n) {
		return nil
	}

	m := addIndexColumns.Match(n)
	if !m.Matched {
		m = tableIndexColumns.Match(n)
	}

	if !m.Matched {
		return nil
	}

	columns := m.Node("columns")
	if columnCount(columns) <= r.max {
		return nil
	}

	return []analyzer.Offense{{
		Span:    columns.Span(),
		Message: fmt.Sprintf("Keep unique index columns count less than %d.", r.max),
	}}
}

func columnCount(n *syntax.Node) int {
	if n.Is(syntax.Array) {
		return n.Len()
	}

	return 1
}
