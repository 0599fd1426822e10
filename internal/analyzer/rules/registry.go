package rules

import (
	"github.com/aqasim81/migrationcop/internal/analyzer"
	"github.com/aqasim81/migrationcop/internal/model"
	"github.com/aqasim81/migrationcop/internal/schema"
)

// Deps is the external state rules may consult. Nil fields disable the
// checks that need them.
type Deps struct {
	Schema *schema.Cache
	Models *model.Catalog
}

// NewDefaultRegistry returns a Registry with all built-in rules in
// alphabetical order of their IDs.
func NewDefaultRegistry(deps Deps) *analyzer.Registry {
	r := analyzer.NewRegistry()
	r.MustRegister(
		NewAddCheckConstraintRule(),
		NewAddColumnWithDefaultValueRule(),
		NewAddForeignKeyRule(),
		NewAddIndexColumnsCountRule(),
		NewAddIndexConcurrentlyRule(),
		NewAddIndexDuplicateRule(deps.Schema),
		NewBatchInBatchesRule(),
		NewBatchInTransactionRule(),
		NewBatchWithThrottlingRule(),
		NewChangeColumnRule(),
		NewChangeColumnNullRule(),
		NewCreateTableForceRule(),
		NewExecuteSQLRule(),
		NewJsonbRule(),
		NewRemoveColumnRule(deps.Models),
		NewRenameColumnRule(),
		NewRenameTableRule(),
		NewReservedWordMySQLRule(),
	)

	return r
}
