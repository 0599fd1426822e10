package rules_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/migrationcop/internal/analyzer"
	"github.com/aqasim81/migrationcop/internal/analyzer/rules"
)

func TestNewDefaultRegistry_registersAllRules(t *testing.T) {
	t.Parallel()

	r := rules.NewDefaultRegistry(rules.Deps{})
	require.NotNil(t, r)
	assert.Len(t, r.Rules(), 18)
	assert.IsIncreasing(t, r.IDs())
}

func TestNewDefaultRegistry_rulesDescribeThemselves(t *testing.T) {
	t.Parallel()

	for _, rule := range rules.NewDefaultRegistry(rules.Deps{}).Rules() {
		assert.NotEmpty(t, rule.Description(), rule.ID())
		assert.NotEmpty(t, rule.Triggers(), rule.ID())
		assert.NotEqual(t, analyzer.Safe, rule.DefaultSeverity(), rule.ID())
	}
}

func TestNewDefaultRegistry_configurableRules(t *testing.T) {
	t.Parallel()

	var ids []string

	for _, rule := range rules.NewDefaultRegistry(rules.Deps{}).Rules() {
		if c, ok := rule.(analyzer.Configurable); ok {
			ids = append(ids, rule.ID())
			assert.NotEmpty(t, c.DefaultSettings())
		}
	}

	assert.Equal(t, []string{"add-index-columns-count", "execute-sql"}, ids)
}

func TestNewDefaultRegistry_correctsBackfill(t *testing.T) {
	t.Parallel()

	a := analyzer.New(analyzer.WithRegistry(rules.NewDefaultRegistry(rules.Deps{})))

	result, err := a.Correct(context.Background(), newMigration(backfill))
	require.NoError(t, err)

	assert.Equal(t, `class BackfillUsersSomeColumn < ActiveRecord::Migration[7.0]
  disable_ddl_transaction!

  def change
    User.in_batches.update_all(some_column: 'some value')
  end
end
`, result.Corrected)
	assert.Equal(t, 1, result.Passes)
	assert.Empty(t, result.Remaining())

	var fixed []string
	for _, d := range result.Diagnostics {
		assert.True(t, d.Corrected)
		fixed = append(fixed, d.Rule)
	}

	assert.ElementsMatch(t, []string{"batch-in-batches", "batch-in-transaction"}, fixed)
}

func TestNewDefaultRegistry_correctsIndexMigration(t *testing.T) {
	t.Parallel()

	src := `class AddAdminToUsers < ActiveRecord::Migration[7.0]
  def change
    add_column :users, :admin, :boolean, default: false
    add_index :users, :name
  end
end
`

	a := analyzer.New(analyzer.WithRegistry(rules.NewDefaultRegistry(rules.Deps{})))

	result, err := a.Correct(context.Background(), newMigration(src))
	require.NoError(t, err)

	assert.Equal(t, `class AddAdminToUsers < ActiveRecord::Migration[7.0]
  disable_ddl_transaction!

  def change
    add_column :users, :admin, :boolean
    change_column_default :users, :admin, false
    add_index :users, :name, algorithm: :concurrently
  end
end
`, result.Corrected)
	assert.False(t, result.HasHighOrCritical())
}

func TestNewDefaultRegistry_withModelCatalog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		model string
		want  []string
	}{
		{
			name:  "column ignored by the model",
			model: "class User < ApplicationRecord\n  self.ignored_columns += %w[some_column]\nend\n",
		},
		{
			name:  "column still used",
			model: "class User < ApplicationRecord\nend\n",
			want:  []string{"remove-column"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			deps := rules.Deps{Models: modelCatalog(t, map[string]string{"user.rb": tt.model})}
			a := analyzer.New(analyzer.WithRegistry(rules.NewDefaultRegistry(deps)))

			result, err := a.Analyze(context.Background(), newMigration(removeSomeColumn))
			require.NoError(t, err)

			var got []string
			for _, d := range result.Diagnostics {
				got = append(got, d.Rule)
			}

			assert.Equal(t, tt.want, got)
		})
	}
}
