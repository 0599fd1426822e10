package rules_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/migrationcop/internal/analyzer/rules"
	"github.com/aqasim81/migrationcop/internal/schema"
)

const usersSchema = `ActiveRecord::Schema[7.0].define(version: 2024_01_01_000000) do
  create_table "users", force: :cascade do |t|
    t.string "name"
    t.string "email"
    t.index ["name", "email"], name: "index_users_on_name_and_email"
  end
end
`

func schemaCache(t *testing.T, src string) *schema.Cache {
	t.Helper()

	path := filepath.Join(t.TempDir(), "schema.rb")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))

	return schema.NewCache(&schema.RubyFile{Path: path}, 0, nil)
}

func TestAddIndexDuplicateRule_Check(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{name: "leftmost column", src: "add_index :users, :name\n", want: "add_index :users, :name"},
		{name: "whole index", src: "add_index :users, %i[name email]\n", want: "add_index :users, %i[name email]"},
		{name: "string columns", src: "add_index 'users', ['name']\n", want: "add_index 'users', ['name']"},
		{
			name: "index in change_table",
			src:  "change_table :users do |t|\n  t.index :name\nend\n",
			want: "t.index :name",
		},
		{name: "second column only", src: "add_index :users, :email\n"},
		{name: "wider than existing", src: "add_index :users, %i[name email foo]\n"},
		{name: "unknown table", src: "add_index :accounts, :name\n"},
		{name: "column name prefix is not a column prefix", src: "add_index :users, :nam\n"},
	}

	rule := rules.NewAddIndexDuplicateRule(schemaCache(t, usersSchema))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := inspect(t, rule, tt.src)
			if tt.want == "" {
				assert.Empty(t, got)

				return
			}

			require.Len(t, got, 1)
			assert.Equal(t, offense{tt.want, "Avoid adding duplicate indexes."}, got[0])
		})
	}
}

func TestAddIndexDuplicateRule_withoutSchema(t *testing.T) {
	t.Parallel()

	assert.Empty(t, inspect(t, rules.NewAddIndexDuplicateRule(nil), "add_index :users, :name\n"))

	missing := schema.NewCache(&schema.RubyFile{Path: filepath.Join(t.TempDir(), "schema.rb")}, 0, nil)
	assert.Empty(t, inspect(t, rules.NewAddIndexDuplicateRule(missing), "add_index :users, :name\n"))
}
