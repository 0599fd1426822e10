package migration_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/migrationcop/internal/migration"
)

const addIndexSource = `class AddIndexToUsersName < ActiveRecord::Migration[7.0]
  def change
    add_index :users, :name
  end
end
`

func TestLoadFromDir(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		setup       func(t *testing.T) string
		wantErr     bool
		errContains string
		check       func(t *testing.T, ms []migration.Migration)
	}{
		{
			name: "loads rails migrations",
			setup: func(t *testing.T) string {
				t.Helper()
				dir := t.TempDir()
				writeFile(t, dir, "20240101120000_add_index_to_users_name.rb", addIndexSource)

				return dir
			},
			check: func(t *testing.T, ms []migration.Migration) {
				t.Helper()
				require.Len(t, ms, 1)
				assert.Equal(t, "20240101120000", ms[0].Version)
				assert.Equal(t, "add_index_to_users_name", ms[0].Name)
				assert.Equal(t, addIndexSource, ms[0].Source)
				assert.Equal(t, migration.ComputeChecksum(addIndexSource), ms[0].Checksum)
			},
		},
		{
			name: "missing directory returns error",
			setup: func(t *testing.T) string {
				t.Helper()

				return filepath.Join(t.TempDir(), "nonexistent")
			},
			wantErr:     true,
			errContains: "reading migrations directory",
		},
		{
			name: "non-migration files are skipped",
			setup: func(t *testing.T) string {
				t.Helper()
				dir := t.TempDir()
				writeFile(t, dir, "README.md", "# readme")
				writeFile(t, dir, "helper.rb", "module Helper; end")

				return dir
			},
			check: func(t *testing.T, ms []migration.Migration) {
				t.Helper()
				assert.Empty(t, ms)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ms, err := migration.LoadFromDir(tt.setup(t))

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)

				return
			}

			require.NoError(t, err)

			if tt.check != nil {
				tt.check(t, ms)
			}
		})
	}
}

func TestLoad_unversionedFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "snippet.rb", "rename_table :users, :accounts\n")

	m, err := migration.Load(filepath.Join(dir, "snippet.rb"))
	require.NoError(t, err)
	assert.Empty(t, m.Version)
	assert.Equal(t, "snippet.rb", m.Name)
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "db", "migrate"), "20240101120000_a.rb", addIndexSource)
	writeFile(t, filepath.Join(root, "db", "migrate"), "20240102120000_b.rb", addIndexSource)
	writeFile(t, filepath.Join(root, "db", "migrate", "legacy"), "20100101120000_old.rb", addIndexSource)
	writeFile(t, filepath.Join(root, "db"), "schema.rb", "")

	paths, err := migration.Discover(migration.Options{
		BaseDir: root,
		Include: []string{"db/migrate/**/*.rb", "db/migrate/*.rb"},
		Exclude: []string{"db/migrate/legacy/**"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "db", "migrate", "20240101120000_a.rb"),
		filepath.Join(root, "db", "migrate", "20240102120000_b.rb"),
	}, paths)
}

func TestDiscover_invalidPattern(t *testing.T) {
	t.Parallel()

	_, err := migration.Discover(migration.Options{BaseDir: t.TempDir(), Include: []string{"db/[migrate"}})
	require.ErrorIs(t, err, migration.ErrInvalidPattern)
}

func TestExpand(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "20240101120000_a.rb", addIndexSource)
	writeFile(t, filepath.Join(root, "nested"), "20240102120000_b.rb", addIndexSource)

	single := filepath.Join(root, "20240101120000_a.rb")

	paths, err := migration.Expand([]string{single, filepath.Join(root, "nested")}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{single, filepath.Join(root, "nested", "20240102120000_b.rb")}, paths)

	_, err = migration.Expand([]string{filepath.Join(root, "missing.rb")}, nil)
	require.Error(t, err)
}

func TestIsStale(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "20240101120000_a.rb", addIndexSource)

	m, err := migration.Load(filepath.Join(dir, "20240101120000_a.rb"))
	require.NoError(t, err)

	stale, err := migration.IsStale(m)
	require.NoError(t, err)
	assert.False(t, stale)

	writeFile(t, dir, "20240101120000_a.rb", "# edited\n")

	stale, err = migration.IsStale(m)
	require.NoError(t, err)
	assert.True(t, stale)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
