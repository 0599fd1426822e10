package rules

import (
	"github.com/aqasim81/migrationcop/internal/analyzer"
	"github.com/aqasim81/migrationcop/internal/patch"
	"github.com/aqasim81/migrationcop/internal/pattern"
	"github.com/aqasim81/migrationcop/internal/syntax"
)

var (
	concurrently = pattern.HashIncluding(pattern.Option("algorithm", pattern.Sym("concurrently")))

	addIndex = pattern.MustCompile(pattern.Call([]string{"add_index"},
		pattern.Any(), pattern.Any(), pattern.Rest()))

	addIndexConcurrently = pattern.MustCompile(pattern.Call([]string{"add_index"},
		pattern.Any(), pattern.Any(), concurrently))

	tableIndex = pattern.MustCompile(pattern.Send(pattern.Type(syntax.Lvar), []string{"index"},
		pattern.Any(), pattern.Rest()))

	tableIndexConcurrently = pattern.MustCompile(pattern.Send(pattern.Type(syntax.Lvar), []string{"index"},
		pattern.Any(), concurrently))
)

// AddIndexConcurrentlyRule flags indexes built without
// `algorithm: :concurrently`, which block writes for the whole build, and
// repeated disable_ddl_transaction! declarations.
type AddIndexConcurrentlyRule struct{ meta }

// NewAddIndexConcurrentlyRule creates a new AddIndexConcurrentlyRule.
func NewAddIndexConcurrentlyRule() *AddIndexConcurrentlyRule {
	return &AddIndexConcurrentlyRule{meta{
		id:          "add-index-concurrently",
		description: "Add indexes to existing tables with `algorithm: :concurrently`",
		severity:    analyzer.High,
		triggers:    []analyzer.Trigger{analyzer.OnSend("add_index", "index")},
	}}
}

// Check examines add_index and `t.index` calls.
func (r *AddIndexConcurrentlyRule) Check(n *syntax.Node, ctx *analyzer.RuleContext) []analyzer.Offense {
	var out []analyzer.Offense

	if r.withoutConcurrency(n) {
		out = append(out, analyzer.Offense{
			Span:    n.Span(),
			Message: "Use `algorithm: :concurrently` on adding indexes to existing tables in PostgreSQL.",
			Correct: func(b *patch.Builder) {
				if !withinDisableDDLTransaction(n) {
					insertDisableDDLTransaction(b, ctx, n)
				}

				appendOption(b, n, "algorithm: :concurrently")
			},
		})
	}

	if declared := disableDDLTransactions(n); len(declared) > 1 {
		for _, dup := range declared[1:] {
			out = append(out, analyzer.Offense{
				Span:     n.Span(),
				Message:  "Remove duplicated `disable_ddl_transaction!`.",
				Severity: analyzer.Low,
				Correct: func(b *patch.Builder) {
					b.Remove(patch.WithSurroundingSpace(ctx.Text(), dup.Span(), patch.Left))
				},
			})
		}
	}

	return out
}

func (r *AddIndexConcurrentlyRule) withoutConcurrency(n *syntax.Node) bool {
	switch n.Method() {
	case "add_index":
		return addIndex.Matches(n) && !addIndexConcurrently.Matches(n)
	case "index":
		return tableIndex.Matches(n) && inChangeTable(n) && !tableIndexConcurrently.Matches(n)
	default:
		return false
	}
}
