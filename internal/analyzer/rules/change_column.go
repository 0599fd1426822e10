package rules

import (
	"github.com/aqasim81/migrationcop/internal/analyzer"
	"github.com/aqasim81/migrationcop/internal/syntax"
)

// ChangeColumnRule flags column type changes, which rewrite the table under
// an exclusive lock and break the running application.
type ChangeColumnRule struct{ meta }

// NewChangeColumnRule creates a new ChangeColumnRule.
func NewChangeColumnRule() *ChangeColumnRule {
	return &ChangeColumnRule{meta{
		id:          "change-column",
		description: "Avoid changing the type of a column that is in use",
		severity:    analyzer.High,
		triggers:    []analyzer.Trigger{analyzer.OnSend("change", "change_column")},
	}}
}

// Check examines change_column and `t.change` calls.
func (r *ChangeColumnRule) Check(n *syntax.Node, _ *analyzer.RuleContext) []analyzer.Offense {
	switch {
	case n.IsMethod("change_column") && n.Receiver() == nil:
	case n.IsMethod("change") && tableDefinition(n):
	default:
		return nil
	}

	return []analyzer.Offense{{Span: n.Span(), Message: "Avoid changing column type that is in use."}}
}
