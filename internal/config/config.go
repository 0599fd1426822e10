// Package config loads .migrationcop.yml and applies it to the rule registry.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the working directory.
const FileName = ".migrationcop.yml"

// Default values for configuration fields.
const (
	DefaultSchemaPath    = "db/schema.rb"
	DefaultModelsDir     = "app/models"
	DefaultSchemaTimeout = 10 * time.Second
	DefaultFormat        = "text"
	DefaultLogLevel      = "info"
)

// DefaultInclude is the glob of Rails migrations analyzed when no paths are given.
var DefaultInclude = []string{"db/migrate/**/*.rb"} //nolint:gochecknoglobals // read-only default

// Config holds the application configuration loaded from file, environment, and flags.
type Config struct {
	Include       []string
	Exclude       []string
	SchemaPath    string
	ModelsDir     string
	DatabaseURL   string
	SchemaTimeout time.Duration
	Format        string
	MaxPasses     int
	LogLevel      string
	Rules         map[string]RuleConfig
}

// RuleConfig is the per-rule entry of the rules map. In YAML it is either a
// bool that enables or disables the rule, or a mapping with optional enabled
// and severity keys; every other key is passed to the rule as an option.
type RuleConfig struct {
	Enabled  bool
	Severity string
	Settings map[string]any
}

// UnmarshalYAML accepts the bool and mapping forms of a rule entry.
func (r *RuleConfig) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind { //nolint:exhaustive // other node kinds are rejected below
	case yaml.ScalarNode:
		var enabled bool
		if err := value.Decode(&enabled); err != nil {
			return fmt.Errorf("rule config must be a bool or a mapping: %w", err)
		}

		*r = RuleConfig{Enabled: enabled}

		return nil
	case yaml.MappingNode:
		var m map[string]any
		if err := value.Decode(&m); err != nil {
			return fmt.Errorf("invalid rule config: %w", err)
		}

		*r = RuleConfig{Enabled: true}

		if v, ok := m["enabled"]; ok {
			enabled, isBool := v.(bool)
			if !isBool {
				return fmt.Errorf("rule config: enabled must be a bool, got %v", v)
			}

			r.Enabled = enabled

			delete(m, "enabled")
		}

		if v, ok := m["severity"]; ok {
			r.Severity = fmt.Sprint(v)

			delete(m, "severity")
		}

		if len(m) > 0 {
			r.Settings = m
		}

		return nil
	default:
		return fmt.Errorf("rule config must be a bool or a mapping, got line %d", value.Line)
	}
}

// yamlConfig is the raw YAML file representation with a string duration.
type yamlConfig struct {
	Include       []string              `yaml:"include"`
	Exclude       []string              `yaml:"exclude"`
	SchemaPath    string                `yaml:"schema_path"`
	ModelsDir     string                `yaml:"models_dir"`
	DatabaseURL   string                `yaml:"database_url"`
	SchemaTimeout string                `yaml:"schema_timeout"`
	Format        string                `yaml:"format"`
	MaxPasses     int                   `yaml:"max_passes"`
	LogLevel      string                `yaml:"log_level"`
	Rules         map[string]RuleConfig `yaml:"rules"`
}

// New returns a Config populated with default values.
func New() *Config {
	return &Config{
		Include:       append([]string(nil), DefaultInclude...),
		SchemaPath:    DefaultSchemaPath,
		ModelsDir:     DefaultModelsDir,
		SchemaTimeout: DefaultSchemaTimeout,
		Format:        DefaultFormat,
		LogLevel:      DefaultLogLevel,
		Rules:         map[string]RuleConfig{},
	}
}

// Load reads a YAML configuration file and returns a Config.
// If allowMissing is true and the file does not exist, defaults are returned.
func Load(path string, allowMissing bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && allowMissing {
			return New(), nil
		}

		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return fromYAML(&raw)
}

// fromYAML converts the raw YAML representation to a Config with defaults applied.
func fromYAML(raw *yamlConfig) (*Config, error) {
	cfg := New()

	if len(raw.Include) > 0 {
		cfg.Include = raw.Include
	}

	cfg.Exclude = raw.Exclude

	if raw.SchemaPath != "" {
		cfg.SchemaPath = raw.SchemaPath
	}

	if raw.ModelsDir != "" {
		cfg.ModelsDir = raw.ModelsDir
	}

	cfg.DatabaseURL = raw.DatabaseURL

	if raw.SchemaTimeout != "" {
		d, err := time.ParseDuration(raw.SchemaTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing schema_timeout %q: %w", raw.SchemaTimeout, err)
		}

		cfg.SchemaTimeout = d
	}

	if raw.Format != "" {
		cfg.Format = raw.Format
	}

	cfg.MaxPasses = raw.MaxPasses

	if raw.LogLevel != "" {
		cfg.LogLevel = raw.LogLevel
	}

	for id, rc := range raw.Rules {
		cfg.Rules[id] = rc
	}

	return cfg, nil
}

// MergeEnv overrides config fields from MIGRATIONCOP_* environment variables.
// Values that do not parse are ignored.
func MergeEnv(cfg *Config) {
	if v := os.Getenv("MIGRATIONCOP_DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}

	if v := os.Getenv("MIGRATIONCOP_SCHEMA_PATH"); v != "" {
		cfg.SchemaPath = v
	}

	if v := os.Getenv("MIGRATIONCOP_MODELS_DIR"); v != "" {
		cfg.ModelsDir = v
	}

	if v := os.Getenv("MIGRATIONCOP_SCHEMA_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SchemaTimeout = d
		}
	}

	if v := os.Getenv("MIGRATIONCOP_FORMAT"); v != "" {
		cfg.Format = v
	}

	if v := os.Getenv("MIGRATIONCOP_MAX_PASSES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxPasses = n
		}
	}

	if v := os.Getenv("MIGRATIONCOP_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
}
