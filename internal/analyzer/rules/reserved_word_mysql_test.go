package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aqasim81/migrationcop/internal/analyzer/rules"
)

func TestIsMySQLReservedWord(t *testing.T) {
	t.Parallel()

	assert.True(t, rules.IsMySQLReservedWord("integer"))
	assert.True(t, rules.IsMySQLReservedWord("ORDER"))
	assert.True(t, rules.IsMySQLReservedWord("Key"))
	assert.False(t, rules.IsMySQLReservedWord("name"))
	assert.False(t, rules.IsMySQLReservedWord(""))
}

func TestReservedWordMySQLRule_Check(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want []string
	}{
		{name: "good name", src: "add_column :users, :some_other_good_name, :string\n"},
		{name: "add_column", src: "add_column :users, :integer, :string\n", want: []string{":integer"}},
		{name: "add_index name", src: "add_index :foo, :bar, name: :integer\n", want: []string{":integer"}},
		{name: "add_reference index name", src: "add_reference :foo, :bar, index: { name: :integer }\n", want: []string{":integer"}},
		{name: "rename_column", src: "rename_column :foo, :bar, :integer\n", want: []string{":integer"}},
		{name: "rename_index", src: "rename_index :foo, :bar, :integer\n", want: []string{":integer"}},
		{name: "rename_table", src: "rename_table :foo, :integer\n", want: []string{":integer"}},
		{name: "create_table", src: "create_table :integer do |t|\nend\n", want: []string{":integer"}},
		{name: "create_join_table", src: "create_join_table :foo, :bar, table_name: :integer\n", want: []string{":integer"}},
		{name: "t.string", src: "create_table :foo do |t|\n  t.string :integer\nend\n", want: []string{":integer"}},
		{name: "t.text", src: "create_table :foo do |t|\n  t.text :integer\nend\n", want: []string{":integer"}},
		{name: "t.rename", src: "change_table :foo do |t|\n  t.rename :bar, :integer\nend\n", want: []string{":integer"}},
		{
			name: "column index name",
			src:  "create_table :foo do |t|\n  t.string :bar, index: { name: :integer }\nend\n",
			want: []string{":integer"},
		},
		{
			name: "one offense per identifier",
			src:  "create_table :order do |t|\n  t.string :key, index: { name: :select }\nend\n",
			want: []string{":order", ":key", ":select"},
		},
		{name: "string identifier", src: "add_column 'users', 'Group', :string\n", want: []string{"'Group'"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := inspect(t, rules.NewReservedWordMySQLRule(), tt.src)
			assert.Len(t, got, len(tt.want))

			for i, o := range got {
				assert.Equal(t, tt.want[i], o.text)
				assert.Equal(t, "Avoid using MySQL reserved words as identifiers.", o.message)
			}
		})
	}
}
