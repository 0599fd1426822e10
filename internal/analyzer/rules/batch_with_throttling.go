package rules

import (
	"github.com/aqasim81/migrationcop/internal/analyzer"
	"github.com/aqasim81/migrationcop/internal/patch"
	"github.com/aqasim81/migrationcop/internal/pattern"
	"github.com/aqasim81/migrationcop/internal/syntax"
)

var sleepCall = pattern.MustCompile(pattern.Call([]string{"sleep"}, pattern.Rest()))

// BatchWithThrottlingRule flags batch statements in a block body that never
// pause between batches.
type BatchWithThrottlingRule struct{ meta }

// NewBatchWithThrottlingRule creates a new BatchWithThrottlingRule.
func NewBatchWithThrottlingRule() *BatchWithThrottlingRule {
	return &BatchWithThrottlingRule{meta{
		id:          "batch-with-throttling",
		description: "Sleep between batches",
		severity:    analyzer.Medium,
		triggers:    []analyzer.Trigger{analyzer.OnSend(batchMethods...)},
	}}
}

// Check examines update_all and delete_all calls.
func (r *BatchWithThrottlingRule) Check(n *syntax.Node, ctx *analyzer.RuleContext) []analyzer.Offense {
	if !batchProcessing(n) || !inBlockBody(n) {
		return nil
	}

	for _, stmt := range n.Parent().Body() {
		if sleepCall.Matches(stmt) {
			return nil
		}
	}

	return []analyzer.Offense{{
		Span:    n.Span(),
		Message: "Use throttling in batch processing.",
		Correct: func(b *patch.Builder) {
			b.InsertAfter(n.Span(), "\n"+indentation(ctx, n)+"sleep(0.01)")
		},
	}}
}

// inBlockBody reports whether n is a statement of a block body, as opposed
// to the call the block is attached to.
func inBlockBody(n *syntax.Node) bool {
	p := n.Parent()

	return p.Is(syntax.Block) && p.BlockCall() != n
}
