package rules

import (
	"github.com/aqasim81/migrationcop/internal/analyzer"
	"github.com/aqasim81/migrationcop/internal/patch"
	"github.com/aqasim81/migrationcop/internal/pattern"
	"github.com/aqasim81/migrationcop/internal/syntax"
)

var (
	foreignKeyWithoutValidate = pattern.MustCompile(pattern.Or(
		pattern.Call([]string{"add_foreign_key"}, pattern.Any(), pattern.Any()),
		pattern.Call([]string{"add_foreign_key"}, pattern.Any(), pattern.Any(),
			pattern.Hash(pattern.RestOf(pattern.Pair(pattern.Not(pattern.Sym("validate")), pattern.Any())))),
	))

	foreignKeyValidateTrue = pattern.MustCompile(pattern.Call(
		[]string{"add_foreign_key"},
		pattern.Any(),
		pattern.Any(),
		pattern.HashIncluding(pattern.Option("validate", pattern.Capture("value", pattern.Type(syntax.True)))),
	))

	referenceWithForeignKey = pattern.MustCompile(pattern.Call(
		[]string{"add_reference"},
		pattern.Any(),
		pattern.Any(),
		pattern.HashIncluding(pattern.Capture("pair", pattern.Option("foreign_key", pattern.Type(syntax.True)))),
	))
)

// AddForeignKeyRule flags foreign keys that are validated in the migration
// that adds them, blocking writes on both tables while existing rows are
// checked.
type AddForeignKeyRule struct{ meta }

// NewAddForeignKeyRule creates a new AddForeignKeyRule.
func NewAddForeignKeyRule() *AddForeignKeyRule {
	return &AddForeignKeyRule{meta{
		id:          "add-foreign-key",
		description: "Add foreign keys with `validate: false` and validate them separately",
		severity:    analyzer.Medium,
		triggers:    []analyzer.Trigger{analyzer.OnSend("add_foreign_key", "add_reference")},
	}}
}

// Check examines add_foreign_key and add_reference calls.
func (r *AddForeignKeyRule) Check(n *syntax.Node, ctx *analyzer.RuleContext) []analyzer.Offense {
	var correct func(b *patch.Builder)

	if foreignKeyWithoutValidate.Matches(n) {
		correct = func(b *patch.Builder) { appendOption(b, n, "validate: false") }
	} else if m := foreignKeyValidateTrue.Match(n); m.Matched {
		value := m.Node("value")
		correct = func(b *patch.Builder) { b.Replace(value.Span(), "false") }
	} else if m := referenceWithForeignKey.Match(n); m.Matched {
		pair := m.Node("pair")
		correct = func(b *patch.Builder) { removeOption(b, ctx, pair) }
	} else {
		return nil
	}

	return []analyzer.Offense{{
		Span:    n.Span(),
		Message: "Activate foreign key validation in a separate migration in PostgreSQL.",
		Correct: correct,
	}}
}
