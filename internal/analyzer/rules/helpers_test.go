package rules_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/migrationcop/internal/analyzer"
	"github.com/aqasim81/migrationcop/internal/migration"
)

// offense is a reported diagnostic reduced to the text it covers.
type offense struct {
	text    string
	message string
}

func newAnalyzer(t *testing.T, rule analyzer.Rule) *analyzer.Analyzer {
	t.Helper()

	r := analyzer.NewRegistry()
	require.NoError(t, r.Register(rule))

	return analyzer.New(analyzer.WithRegistry(r))
}

func newMigration(src string) *migration.Migration {
	return &migration.Migration{
		Version:  "20240101000000",
		Name:     "test_migration",
		Source:   src,
		FilePath: "db/migrate/20240101000000_test_migration.rb",
	}
}

// inspect returns the offenses rule reports on src, in document order.
func inspect(t *testing.T, rule analyzer.Rule, src string) []offense {
	t.Helper()

	result, err := newAnalyzer(t, rule).Analyze(context.Background(), newMigration(src))
	require.NoError(t, err)

	var out []offense
	for _, d := range result.Diagnostics {
		out = append(out, offense{text: src[d.Span.Start:d.Span.End], message: d.Message})
	}

	return out
}

// expectCorrection corrects src with rule, compares the result with want and
// checks that correcting it again changes nothing.
func expectCorrection(t *testing.T, rule analyzer.Rule, src, want string) {
	t.Helper()

	a := newAnalyzer(t, rule)

	result, err := a.Correct(context.Background(), newMigration(src))
	require.NoError(t, err)
	assert.Equal(t, want, result.Corrected)
	assert.Empty(t, result.Conflicts)

	again, err := a.Correct(context.Background(), newMigration(result.Corrected))
	require.NoError(t, err)
	assert.Equal(t, result.Corrected, again.Corrected, "correction is not idempotent")
	assert.Zero(t, again.Passes)
}
