package schema_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/migrationcop/internal/schema"
)

const schemaRB = `ActiveRecord::Schema[7.1].define(version: 2024_01_01_000000) do
  enable_extension "plpgsql"

  create_table "users", force: :cascade do |t|
    t.string "email", null: false
    t.string "name"
    t.references "account"
    t.timestamps
    t.index ["email"], name: "index_users_on_email", unique: true
    t.index ["name", "created_at"], name: "index_users_on_name_and_created_at"
  end

  create_table "posts" do |t|
    t.bigint "user_id"
  end

  add_index "posts", "user_id", name: "index_posts_on_user_id"
end
`

const structureSQL = `--
-- PostgreSQL database dump
--
\restrict abc123

SET statement_timeout = 0;
SELECT pg_catalog.set_config('search_path', '', false);

CREATE TABLE public.users (
    id bigint NOT NULL,
    email character varying NOT NULL,
    name character varying
);

CREATE TABLE public.posts (
    id bigint NOT NULL,
    user_id bigint
);

CREATE UNIQUE INDEX index_users_on_email ON public.users USING btree (email);
CREATE INDEX index_users_on_name_and_id ON public.users USING btree (name, id);
CREATE INDEX index_users_on_lower_email ON public.users USING btree (lower((email)::text));

\unrestrict abc123
`

func TestParseRubySchema(t *testing.T) {
	t.Parallel()

	s, err := schema.ParseRubySchema(context.Background(), []byte(schemaRB))
	require.NoError(t, err)

	assert.Equal(t, []string{"posts", "users"}, s.Tables())
	assert.True(t, s.TableExists("users"))
	assert.True(t, s.TableExists("public.users"))
	assert.False(t, s.TableExists("comments"))

	users, ok := s.Table("users")
	require.True(t, ok)
	assert.Equal(t, []string{"email", "name", "account_id", "created_at", "updated_at"}, users.Columns)
	require.Len(t, users.Indexes, 2)
	assert.Equal(t, schema.Index{Name: "index_users_on_email", Columns: []string{"email"}, Unique: true}, users.Indexes[0])

	assert.Equal(t, [][]string{{"email"}, {"name", "created_at"}}, s.IndexedColumnSets("users"))
	assert.Equal(t, [][]string{{"user_id"}}, s.IndexedColumnSets("posts"))
	assert.Nil(t, s.IndexedColumnSets("comments"))
}

func TestParseStructure(t *testing.T) {
	t.Parallel()

	s, err := schema.ParseStructure([]byte(structureSQL))
	require.NoError(t, err)

	assert.Equal(t, []string{"posts", "users"}, s.Tables())

	users, ok := s.Table("users")
	require.True(t, ok)
	assert.Equal(t, []string{"id", "email", "name"}, users.Columns)
	assert.Equal(t, [][]string{{"email"}, {"name", "id"}}, s.IndexedColumnSets("users"))
	assert.True(t, users.Indexes[0].Unique)
}

func TestParseStructure_invalidSQL(t *testing.T) {
	t.Parallel()

	_, err := schema.ParseStructure([]byte("CREATE TABLE ("))
	require.ErrorIs(t, err, schema.ErrLoadFailed)
}

func TestSnapshot_nilIsEmpty(t *testing.T) {
	t.Parallel()

	var s *schema.Snapshot

	assert.False(t, s.TableExists("users"))
	assert.Zero(t, s.Len())
	assert.Empty(t, s.Tables())
}

func TestNewSnapshot_mergesTables(t *testing.T) {
	t.Parallel()

	s := schema.NewSnapshot(
		schema.Table{Name: "users", Columns: []string{"id"}},
		schema.Table{Name: "public.users", Columns: []string{"id", "email"}, Indexes: []schema.Index{{Columns: []string{"email"}}}},
	)

	users, ok := s.Table("users")
	require.True(t, ok)
	assert.Equal(t, []string{"id", "email"}, users.Columns)
	assert.Len(t, users.Indexes, 1)
}

func TestSourceFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		url    string
		path   string
		expect any
	}{
		{"database wins", "postgres://localhost/app", "db/schema.rb", &schema.Database{}},
		{"structure file", "", "db/structure.sql", &schema.StructureFile{}},
		{"ruby file", "", "db/schema.rb", &schema.RubyFile{}},
		{"nothing", "", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := schema.SourceFor(tt.url, tt.path)
			if tt.expect == nil {
				assert.Nil(t, src)

				return
			}

			assert.IsType(t, tt.expect, src)
		})
	}
}

func TestFileSources_Load(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rb := filepath.Join(dir, "schema.rb")
	sql := filepath.Join(dir, "structure.sql")

	require.NoError(t, os.WriteFile(rb, []byte(schemaRB), 0o600))
	require.NoError(t, os.WriteFile(sql, []byte(structureSQL), 0o600))

	for _, src := range []schema.Source{&schema.RubyFile{Path: rb}, &schema.StructureFile{Path: sql}} {
		s, err := src.Load(context.Background())
		require.NoError(t, err, src.String())
		assert.True(t, s.TableExists("users"), src.String())
	}

	_, err := (&schema.RubyFile{Path: filepath.Join(dir, "missing.rb")}).Load(context.Background())
	require.ErrorIs(t, err, schema.ErrLoadFailed)
}
