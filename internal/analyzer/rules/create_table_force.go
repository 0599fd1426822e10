package rules

import (
	"github.com/aqasim81/migrationcop/internal/analyzer"
	"github.com/aqasim81/migrationcop/internal/patch"
	"github.com/aqasim81/migrationcop/internal/pattern"
	"github.com/aqasim81/migrationcop/internal/syntax"
)

var createTableForce = pattern.MustCompile(pattern.Call([]string{"create_table"},
	pattern.Any(),
	pattern.HashIncluding(pattern.Capture("force", pattern.Option("force", pattern.Type(syntax.True)))),
))

// CreateTableForceRule flags `force: true` on create_table, which silently
// drops an existing table of the same name.
type CreateTableForceRule struct{ meta }

// NewCreateTableForceRule creates a new CreateTableForceRule.
func NewCreateTableForceRule() *CreateTableForceRule {
	return &CreateTableForceRule{meta{
		id:          "create-table-force",
		description: "Create tables without `force: true`",
		severity:    analyzer.Medium,
		triggers:    []analyzer.Trigger{analyzer.OnSend("create_table")},
	}}
}

// Check examines a create_table call.
func (r *CreateTableForceRule) Check(n *syntax.Node, ctx *analyzer.RuleContext) []analyzer.Offense {
	m := createTableForce.Match(n)
	if !m.Matched {
		return nil
	}

	pair := m.Node("force")

	return []analyzer.Offense{{
		Span:    pair.Span(),
		Message: "Create tables without `force: true` option.",
		Correct: func(b *patch.Builder) { removeOption(b, ctx, pair) },
	}}
}
