package rules

import (
	"github.com/aqasim81/migrationcop/internal/analyzer"
	"github.com/aqasim81/migrationcop/internal/model"
	"github.com/aqasim81/migrationcop/internal/syntax"
)

// RemoveColumnRule flags columns removed before the running application
// stopped reading them through `self.ignored_columns`.
type RemoveColumnRule struct {
	meta
	models *model.Catalog
}

// NewRemoveColumnRule creates a new RemoveColumnRule consulting models. A nil
// catalog treats every model as ignoring nothing.
func NewRemoveColumnRule(models *model.Catalog) *RemoveColumnRule {
	return &RemoveColumnRule{
		meta: meta{
			id:          "remove-column",
			description: "Ignore columns in the model before removing them",
			severity:    analyzer.High,
			triggers:    []analyzer.Trigger{analyzer.OnSend("remove_column")},
		},
		models: models,
	}
}

// Check examines a remove_column call.
func (r *RemoveColumnRule) Check(n *syntax.Node, ctx *analyzer.RuleContext) []analyzer.Offense {
	if n.Receiver() != nil {
		return nil
	}

	table, ok := identifierName(n.Child(0))
	if !ok {
		return nil
	}

	column, _ := identifierName(n.Child(1))

	if r.models != nil && r.models.IsIgnored(ctx.Ctx(), table, column) {
		return nil
	}

	return []analyzer.Offense{{
		Span:    n.Span(),
		Message: "Make sure the column is already ignored by the running app before removing it.",
	}}
}
