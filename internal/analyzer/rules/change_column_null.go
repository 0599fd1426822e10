package rules

import (
	"fmt"

	"github.com/aqasim81/migrationcop/internal/analyzer"
	"github.com/aqasim81/migrationcop/internal/patch"
	"github.com/aqasim81/migrationcop/internal/pattern"
	"github.com/aqasim81/migrationcop/internal/syntax"
)

var validateConstraint = pattern.MustCompile(pattern.Call([]string{"validate_constraint"}, pattern.Rest()))

// ChangeColumnNullRule flags NOT NULL constraints set directly on existing
// columns, which scan the table under an exclusive lock. The fix adds an
// unvalidated check constraint instead.
type ChangeColumnNullRule struct{ meta }

// NewChangeColumnNullRule creates a new ChangeColumnNullRule.
func NewChangeColumnNullRule() *ChangeColumnNullRule {
	return &ChangeColumnNullRule{meta{
		id:          "change-column-null",
		description: "Add NOT NULL through a check constraint validated separately",
		severity:    analyzer.High,
		triggers:    []analyzer.Trigger{analyzer.OnSend("change_column_null", "change_null")},
	}}
}

// Check examines change_column_null and `t.change_null` calls.
func (r *ChangeColumnNullRule) Check(n *syntax.Node, _ *analyzer.RuleContext) []analyzer.Offense {
	var (
		anchor, tableNode, columnNode *syntax.Node
		replace                       syntax.Span
		rewrite                       func(table, arguments string) string
	)

	switch {
	case n.IsMethod("change_column_null") && n.Receiver() == nil:
		anchor, tableNode, columnNode = n, n.Child(0), n.Child(1)
		replace = n.Span()
		rewrite = func(table, arguments string) string {
			return "add_check_constraint :" + table + ", " + arguments
		}
	case n.IsMethod("change_null") && tableDefinition(n):
		anchor = changeTableAncestor(n)
		if anchor == nil {
			return nil
		}

		tableNode, columnNode = anchor.BlockCall().FirstArgument(), n.FirstArgument()
		replace = syntax.Span{Start: n.Selector().Start, End: n.Span().End}
		rewrite = func(_, arguments string) string {
			return "check_constraint " + arguments
		}
	default:
		return nil
	}

	for _, sibling := range anchor.LeftSiblings() {
		if validateConstraint.Matches(sibling) {
			return nil
		}
	}

	offense := analyzer.Offense{
		Span:    n.Span(),
		Message: "Avoid simply setting `NOT NULL` constraint on an existing column in PostgreSQL.",
	}

	table, tableOK := identifierName(tableNode)
	column, columnOK := identifierName(columnNode)

	if tableOK && columnOK {
		arguments := fmt.Sprintf("'%[1]s IS NOT NULL', name: '%[2]s_%[1]s_is_not_null', validate: false", column, table)
		text := rewrite(table, arguments)
		offense.Correct = func(b *patch.Builder) { b.Replace(replace, text) }
	}

	return []analyzer.Offense{offense}
}

func changeTableAncestor(n *syntax.Node) *syntax.Node {
	for _, a := range n.Ancestors() {
		if a.BlockCall().IsMethod("change_table") {
			return a
		}
	}

	return nil
}
