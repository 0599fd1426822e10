package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/migrationcop/internal/analyzer"
	"github.com/aqasim81/migrationcop/internal/analyzer/rules"
	"github.com/aqasim81/migrationcop/internal/config"
)

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	known := []string{"jsonb", "rename-table"}

	tests := []struct {
		name    string
		mutate  func(cfg *config.Config)
		wantErr error
	}{
		{name: "defaults", mutate: func(*config.Config) {}},
		{
			name: "known rules",
			mutate: func(cfg *config.Config) {
				cfg.Rules["jsonb"] = config.RuleConfig{Enabled: true, Severity: "critical"}
				cfg.Rules["rename-table"] = config.RuleConfig{}
			},
		},
		{
			name:    "unknown rule",
			mutate:  func(cfg *config.Config) { cfg.Rules["no-such-rule"] = config.RuleConfig{} },
			wantErr: config.ErrUnknownRule,
		},
		{
			name: "bad severity",
			mutate: func(cfg *config.Config) {
				cfg.Rules["jsonb"] = config.RuleConfig{Enabled: true, Severity: "scary"}
			},
			wantErr: config.ErrInvalidSeverity,
		},
		{
			name:    "bad format",
			mutate:  func(cfg *config.Config) { cfg.Format = "xml" },
			wantErr: config.ErrInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.New()
			tt.mutate(cfg)

			err := cfg.Validate(known)
			if tt.wantErr == nil {
				require.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConfig_Apply(t *testing.T) {
	t.Parallel()

	cfg := config.New()
	cfg.Rules["rename-table"] = config.RuleConfig{Enabled: false}
	cfg.Rules["jsonb"] = config.RuleConfig{Enabled: true, Severity: "high"}
	cfg.Rules["add-index-columns-count"] = config.RuleConfig{
		Enabled:  true,
		Settings: map[string]any{"max_columns_count": 2},
	}

	reg, severities, err := cfg.Apply(rules.NewDefaultRegistry(rules.Deps{}))
	require.NoError(t, err)

	_, ok := reg.Lookup("rename-table")
	assert.False(t, ok)
	assert.Len(t, reg.Rules(), 17)
	assert.Equal(t, map[string]analyzer.Severity{"jsonb": analyzer.High}, severities)

	rule, ok := reg.Lookup("add-index-columns-count")
	require.True(t, ok)
	assert.Equal(t, 2, rule.(*rules.AddIndexColumnsCountRule).MaxColumnsCount())
}

func TestConfig_Apply_rejectsOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		id   string
		opts map[string]any
	}{
		{name: "rule without options", id: "jsonb", opts: map[string]any{"strict": true}},
		{name: "unknown option", id: "execute-sql", opts: map[string]any{"dialect": "mysql"}},
		{name: "wrong type", id: "add-index-columns-count", opts: map[string]any{"max_columns_count": "three"}},
		{name: "out of range", id: "add-index-columns-count", opts: map[string]any{"max_columns_count": 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.New()
			cfg.Rules[tt.id] = config.RuleConfig{Enabled: true, Settings: tt.opts}

			_, _, err := cfg.Apply(rules.NewDefaultRegistry(rules.Deps{}))
			require.ErrorIs(t, err, config.ErrInvalidOption)
		})
	}
}
