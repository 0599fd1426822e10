package rules

import (
	"github.com/aqasim81/migrationcop/internal/analyzer"
	"github.com/aqasim81/migrationcop/internal/patch"
	"github.com/aqasim81/migrationcop/internal/syntax"
)

// BatchInTransactionRule flags batch processing inside the migration
// transaction, which holds row locks until every batch is done.
type BatchInTransactionRule struct{ meta }

// NewBatchInTransactionRule creates a new BatchInTransactionRule.
func NewBatchInTransactionRule() *BatchInTransactionRule {
	return &BatchInTransactionRule{meta{
		id:          "batch-in-transaction",
		description: "Disable the DDL transaction around batch processing",
		severity:    analyzer.Medium,
		triggers:    []analyzer.Trigger{analyzer.OnSend(batchMethods...)},
	}}
}

// Check examines update_all and delete_all calls.
func (r *BatchInTransactionRule) Check(n *syntax.Node, ctx *analyzer.RuleContext) []analyzer.Offense {
	if !batchProcessing(n) || withinDisableDDLTransaction(n) {
		return nil
	}

	var correct func(*patch.Builder)
	if n.FirstAncestor(syntax.Def) != nil {
		correct = func(b *patch.Builder) { insertDisableDDLTransaction(b, ctx, n) }
	}

	return []analyzer.Offense{{
		Span:    n.Span(),
		Message: "Disable transaction in batch processing.",
		Correct: correct,
	}}
}
