package model_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/aqasim81/migrationcop/internal/model"
	"github.com/aqasim81/migrationcop/internal/parser"
)

func TestModelName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"users":      "user",
		"categories": "category",
		"people":     "person",
		"statuses":   "status",
	}

	for table, want := range tests {
		assert.Equal(t, want, model.ModelName(table), table)
	}
}

func TestParseIgnoredColumns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"append word array", "class User < ApplicationRecord\n  self.ignored_columns += %w[some_column]\nend\n", []string{"some_column"}},
		{"assign word array", "class User < ApplicationRecord\n  self.ignored_columns = %w[a b]\nend\n", []string{"a", "b"}},
		{"assign symbol array", "class User < ApplicationRecord\n  self.ignored_columns = %i[some_column]\nend\n", []string{"some_column"}},
		{"assign literal strings", "class User < ApplicationRecord\n  self.ignored_columns = [\"some_column\"]\nend\n", []string{"some_column"}},
		{"subtraction is not ignoring", "class User < ApplicationRecord\n  self.ignored_columns -= %w[some_column]\nend\n", nil},
		{"no ignored columns", "class User < ApplicationRecord\nend\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cols, err := model.ParseIgnoredColumns(context.Background(), []byte(tt.src))
			require.NoError(t, err)

			var got []string
			for _, w := range tt.want {
				if _, ok := cols[w]; ok {
					got = append(got, w)
				}
			}

			assert.Equal(t, tt.want, got)
			assert.Len(t, cols, len(tt.want))
		})
	}
}

func TestParseIgnoredColumns_syntaxError(t *testing.T) {
	t.Parallel()

	_, err := model.ParseIgnoredColumns(context.Background(), []byte("class User <\n"))
	require.ErrorIs(t, err, parser.ErrSyntax)
}

func TestCatalog_IgnoredColumns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeModel(t, dir, "user.rb", "class User < ApplicationRecord\n  self.ignored_columns += %w[some_column]\nend\n")
	writeModel(t, dir, "broken.rb", "class Broken <\n")

	core, logs := observer.New(zap.InfoLevel)
	c := model.NewCatalog(dir, zap.New(core))
	ctx := context.Background()

	assert.True(t, c.IsIgnored(ctx, "users", "some_column"))
	assert.False(t, c.IsIgnored(ctx, "users", "other_column"))
	assert.Empty(t, c.IgnoredColumns(ctx, "posts"))
	assert.Empty(t, c.IgnoredColumns(ctx, "brokens"))
	assert.Equal(t, 1, logs.FilterMessageSnippet("model unavailable").Len())

	// Cached per model: a later change on disk is not observed within a run.
	writeModel(t, dir, "user.rb", "class User < ApplicationRecord\nend\n")
	assert.True(t, c.IsIgnored(ctx, "users", "some_column"))
}

func writeModel(t *testing.T, dir, name, content string) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}
