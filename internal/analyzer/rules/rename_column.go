package rules

import (
	"github.com/aqasim81/migrationcop/internal/analyzer"
	"github.com/aqasim81/migrationcop/internal/syntax"
)

// RenameColumnRule flags column renames, which break application code that
// still reads the old name.
type RenameColumnRule struct{ meta }

// NewRenameColumnRule creates a new RenameColumnRule.
func NewRenameColumnRule() *RenameColumnRule {
	return &RenameColumnRule{meta{
		id:          "rename-column",
		description: "Avoid renaming columns that are in use",
		severity:    analyzer.High,
		triggers:    []analyzer.Trigger{analyzer.OnSend("rename_column")},
	}}
}

// Check examines a rename_column call.
func (r *RenameColumnRule) Check(n *syntax.Node, _ *analyzer.RuleContext) []analyzer.Offense {
	if n.Receiver() != nil {
		return nil
	}

	return []analyzer.Offense{{Span: n.Span(), Message: "Avoid renaming columns that are in use."}}
}
