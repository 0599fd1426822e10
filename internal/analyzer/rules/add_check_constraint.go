package rules

import (
	"github.com/aqasim81/migrationcop/internal/analyzer"
	"github.com/aqasim81/migrationcop/internal/patch"
	"github.com/aqasim81/migrationcop/internal/pattern"
	"github.com/aqasim81/migrationcop/internal/syntax"
)

var unvalidatedCheckConstraint = pattern.MustCompile(pattern.Call(
	[]string{"add_check_constraint"},
	pattern.Any(),
	pattern.Any(),
	pattern.HashIncluding(pattern.Option("validate", pattern.Type(syntax.False))),
))

// AddCheckConstraintRule flags check constraints added without
// `validate: false`, which scan the table under an exclusive lock.
type AddCheckConstraintRule struct{ meta }

// NewAddCheckConstraintRule creates a new AddCheckConstraintRule.
func NewAddCheckConstraintRule() *AddCheckConstraintRule {
	return &AddCheckConstraintRule{meta{
		id:          "add-check-constraint",
		description: "Add check constraints with `validate: false` and validate them separately",
		severity:    analyzer.Medium,
		triggers:    []analyzer.Trigger{analyzer.OnSend("add_check_constraint")},
	}}
}

// Check examines an add_check_constraint call.
func (r *AddCheckConstraintRule) Check(n *syntax.Node, _ *analyzer.RuleContext) []analyzer.Offense {
	if n.Receiver() != nil || n.Len() == 0 || unvalidatedCheckConstraint.Matches(n) {
		return nil
	}

	return []analyzer.Offense{{
		Span:    n.Span(),
		Message: "Activate a check constraint in a separate migration in PostgreSQL.",
		Correct: func(b *patch.Builder) {
			appendOption(b, n, "validate: false")
		},
	}}
}
