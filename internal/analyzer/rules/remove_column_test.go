package rules_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/migrationcop/internal/analyzer/rules"
	"github.com/aqasim81/migrationcop/internal/model"
)

const removeSomeColumn = `class RemoveUsersSomeColumn < ActiveRecord::Migration[7.0]
  def change
    remove_column :users, :some_column
  end
end
`

func modelCatalog(t *testing.T, files map[string]string) *model.Catalog {
	t.Helper()

	dir := t.TempDir()
	for name, src := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o600))
	}

	return model.NewCatalog(dir, nil)
}

func TestRemoveColumnRule_Check(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		files   map[string]string
		src     string
		offends bool
	}{
		{
			name:  "ignored with +=",
			files: map[string]string{"user.rb": "class User < ApplicationRecord\n  self.ignored_columns += %w[some_column]\nend\n"},
			src:   removeSomeColumn,
		},
		{
			name:  "ignored with =",
			files: map[string]string{"user.rb": "class User < ApplicationRecord\n  self.ignored_columns = %w[some_column]\nend\n"},
			src:   removeSomeColumn,
		},
		{
			name:  "ignored as symbols",
			files: map[string]string{"user.rb": "class User < ApplicationRecord\n  self.ignored_columns = %i[some_column]\nend\n"},
			src:   removeSomeColumn,
		},
		{
			name:    "model file missing",
			files:   map[string]string{"some_model.rb": "class SomeModel < ApplicationRecord\n  self.ignored_columns = %w[some_column]\nend\n"},
			src:     removeSomeColumn,
			offends: true,
		},
		{
			name:    "other column ignored",
			files:   map[string]string{"user.rb": "class User < ApplicationRecord\n  self.ignored_columns = %w[other_column]\nend\n"},
			src:     removeSomeColumn,
			offends: true,
		},
		{
			name: "table name is not a literal",
			src:  "remove_column table_name, :some_column\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := inspect(t, rules.NewRemoveColumnRule(modelCatalog(t, tt.files)), tt.src)
			if !tt.offends {
				assert.Empty(t, got)

				return
			}

			require.Len(t, got, 1)
			assert.Equal(t, offense{
				"remove_column :users, :some_column",
				"Make sure the column is already ignored by the running app before removing it.",
			}, got[0])
		})
	}
}

func TestRemoveColumnRule_withoutCatalog(t *testing.T) {
	t.Parallel()

	assert.Len(t, inspect(t, rules.NewRemoveColumnRule(nil), "remove_column :users, :some_column\n"), 1)
}
