package parser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/migrationcop/internal/parser"
	"github.com/aqasim81/migrationcop/internal/syntax"
)

func parseRuby(t *testing.T, src string) *syntax.Node {
	t.Helper()

	root, err := parser.ParseRuby(context.Background(), []byte(src))
	require.NoError(t, err)
	require.Equal(t, syntax.Program, root.Kind())

	return root
}

func TestParseRuby_sendWithKeywordOptions(t *testing.T) {
	t.Parallel()

	src := "add_index :users, :name, algorithm: :concurrently\n"
	root := parseRuby(t, src)

	require.Equal(t, 1, root.Len())

	send := root.Child(0)
	require.True(t, send.IsMethod("add_index"))
	assert.Nil(t, send.Receiver())
	assert.Equal(t, "add_index", src[send.Selector().Start:send.Selector().End])

	args := send.Arguments()
	require.Len(t, args, 3)
	assert.Equal(t, "users", args[0].Value())
	assert.Equal(t, ":users", args[0].Text(src))
	assert.Equal(t, syntax.Hash, args[2].Kind())
	assert.Equal(t, "algorithm: :concurrently", args[2].Text(src))

	value := send.Option("algorithm")
	require.NotNil(t, value)
	assert.Equal(t, syntax.Sym, value.Kind())
	assert.Equal(t, "concurrently", value.Value())
}

func TestParseRuby_blockWithLocalReceiver(t *testing.T) {
	t.Parallel()

	src := "change_table :users do |t|\n  t.index :name\nend\n"
	root := parseRuby(t, src)

	block := root.Child(0)
	require.Equal(t, syntax.Block, block.Kind())
	assert.Equal(t, src[:len(src)-1], block.Text(src))

	call := block.BlockCall()
	require.True(t, call.IsMethod("change_table"))
	assert.Equal(t, "change_table :users", call.Text(src))

	params := block.Child(1)
	require.Equal(t, syntax.Args, params.Kind())
	require.Equal(t, 1, params.Len())
	assert.Equal(t, "t", params.Child(0).Value())

	body := block.Body()
	require.Len(t, body, 1)
	require.True(t, body[0].IsMethod("index"))
	assert.Equal(t, syntax.Lvar, body[0].Receiver().Kind())
	assert.Same(t, block, body[0].FirstAncestor(syntax.Block))
}

func TestParseRuby_migrationClass(t *testing.T) {
	t.Parallel()

	src := `class AddIndexToUsersName < ActiveRecord::Migration[7.0]
  disable_ddl_transaction!

  def change
    add_index :users, :name
  end
end
`
	root := parseRuby(t, src)

	class := root.Child(0)
	require.Equal(t, syntax.Class, class.Kind())
	assert.Equal(t, "AddIndexToUsersName", class.Value())
	require.Equal(t, 2, class.Len())

	assert.True(t, class.Child(0).IsMethod("disable_ddl_transaction!"))

	def := class.Child(1)
	require.Equal(t, syntax.Def, def.Kind())
	assert.Equal(t, "change", def.Value())
	require.Len(t, def.Body(), 1)
	assert.True(t, def.Body()[0].IsMethod("add_index"))
	assert.Len(t, def.LeftSiblings(), 1)
}

func TestParseRuby_ignoredColumnsAssignment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		src    string
		kind   syntax.Kind
		op     string
		values []string
		item   syntax.Kind
	}{
		{"append word array", "self.ignored_columns += %w[some_column other]\n", syntax.OpAsgn, "+=", []string{"some_column", "other"}, syntax.Str},
		{"assign symbol array", "self.ignored_columns = %i[some_column]\n", syntax.Asgn, "=", []string{"some_column"}, syntax.Sym},
		{"assign literal array", "self.ignored_columns = [\"some_column\"]\n", syntax.Asgn, "=", []string{"some_column"}, syntax.Str},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			asgn := parseRuby(t, tt.src).Child(0)
			require.Equal(t, tt.kind, asgn.Kind())
			assert.Equal(t, tt.op, asgn.Value())

			target := asgn.Child(0)
			require.True(t, target.IsMethod("ignored_columns"))
			assert.Equal(t, syntax.Self, target.Receiver().Kind())

			array := asgn.Child(1)
			require.Equal(t, syntax.Array, array.Kind())

			var got []string
			for _, item := range array.Children() {
				assert.Equal(t, tt.item, item.Kind())
				got = append(got, item.Value())
			}

			assert.Equal(t, tt.values, got)
		})
	}
}

func TestParseRuby_localVariables(t *testing.T) {
	t.Parallel()

	src := "relation = User.where(active: false)\nrelation.update_all(active: true)\n"
	root := parseRuby(t, src)

	require.Equal(t, 2, root.Len())

	update := root.Child(1)
	require.True(t, update.IsMethod("update_all"))
	assert.Equal(t, syntax.Lvar, update.Receiver().Kind())
	assert.Equal(t, syntax.Hash, update.FirstArgument().Kind())
}

func TestParseRuby_heredoc(t *testing.T) {
	t.Parallel()

	src := "execute <<~SQL\n  CREATE INDEX index_users_on_name ON users (name);\nSQL\n"
	root := parseRuby(t, src)

	send := root.Child(0)
	require.True(t, send.IsMethod("execute"))

	arg := send.FirstArgument()
	require.Equal(t, syntax.Str, arg.Kind())
	assert.Contains(t, arg.Value(), "CREATE INDEX index_users_on_name ON users (name);")
	assert.NotContains(t, arg.Value(), "  CREATE")
}

func TestParseRuby_interpolatedString(t *testing.T) {
	t.Parallel()

	root := parseRuby(t, "execute \"DROP TABLE #{name}\"\n")
	assert.Equal(t, syntax.DStr, root.Child(0).FirstArgument().Kind())
}

func TestParseRuby_syntaxError(t *testing.T) {
	t.Parallel()

	_, err := parser.ParseRuby(context.Background(), []byte("def change\n  add_index :users, [:a\nend\n"))
	require.ErrorIs(t, err, parser.ErrSyntax)
}
