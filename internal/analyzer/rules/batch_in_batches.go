package rules

import (
	"github.com/aqasim81/migrationcop/internal/analyzer"
	"github.com/aqasim81/migrationcop/internal/patch"
	"github.com/aqasim81/migrationcop/internal/syntax"
)

// BatchInBatchesRule flags relation-wide updates and deletes that do not go
// through in_batches.
type BatchInBatchesRule struct{ meta }

// NewBatchInBatchesRule creates a new BatchInBatchesRule.
func NewBatchInBatchesRule() *BatchInBatchesRule {
	return &BatchInBatchesRule{meta{
		id:          "batch-in-batches",
		description: "Use `in_batches` for relation-wide updates and deletes",
		severity:    analyzer.Medium,
		triggers:    []analyzer.Trigger{analyzer.OnSend(batchMethods...)},
	}}
}

// Check examines update_all and delete_all calls.
func (r *BatchInBatchesRule) Check(n *syntax.Node, _ *analyzer.RuleContext) []analyzer.Offense {
	if !batchProcessing(n) || inBatches(n) {
		return nil
	}

	return []analyzer.Offense{{
		Span:    n.Span(),
		Message: "Use `in_batches` in batch processing.",
		Correct: func(b *patch.Builder) {
			b.InsertBefore(n.Selector(), "in_batches.")
		},
	}}
}

func inBatches(n *syntax.Node) bool {
	if n.Receiver().IsMethod("in_batches") {
		return true
	}

	for _, a := range n.Ancestors() {
		if a.BlockCall().IsMethod("in_batches") {
			return true
		}
	}

	return false
}
