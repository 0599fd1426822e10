package rules

import (
	"github.com/aqasim81/migrationcop/internal/analyzer"
	"github.com/aqasim81/migrationcop/internal/syntax"
)

// RenameTableRule flags table renames.
type RenameTableRule struct{ meta }

// NewRenameTableRule creates a new RenameTableRule.
func NewRenameTableRule() *RenameTableRule {
	return &RenameTableRule{meta{
		id:          "rename-table",
		description: "Avoid renaming tables that are in use",
		severity:    analyzer.High,
		triggers:    []analyzer.Trigger{analyzer.OnSend("rename_table")},
	}}
}

// Check examines a rename_table call.
func (r *RenameTableRule) Check(n *syntax.Node, _ *analyzer.RuleContext) []analyzer.Offense {
	if n.Receiver() != nil {
		return nil
	}

	return []analyzer.Offense{{Span: n.Span(), Message: "Avoid renaming tables that are in use."}}
}
