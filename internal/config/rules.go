package config

import (
	"fmt"
	"sort"

	"github.com/aqasim81/migrationcop/internal/analyzer"
)

// Validate checks the parts of cfg that do not depend on rule internals:
// rule ids must be among known, severities must parse and the output
// format must be supported.
func (c *Config) Validate(known []string) error {
	if c.Format != "text" && c.Format != "json" {
		return fmt.Errorf("%w: %q (want text or json)", ErrInvalidFormat, c.Format)
	}

	if c.MaxPasses < 0 {
		return fmt.Errorf("max_passes must not be negative, got %d", c.MaxPasses)
	}

	ids := make(map[string]bool, len(known))
	for _, id := range known {
		ids[id] = true
	}

	for _, id := range c.ruleIDs() {
		if !ids[id] {
			return fmt.Errorf("%w: %s", ErrUnknownRule, id)
		}

		if s := c.Rules[id].Severity; s != "" {
			if _, err := analyzer.ParseSeverity(s); err != nil {
				return fmt.Errorf("%w: rule %s: %w", ErrInvalidSeverity, id, err)
			}
		}
	}

	return nil
}

// ruleIDs returns the configured rule ids sorted, so errors are deterministic.
func (c *Config) ruleIDs() []string {
	ids := make([]string, 0, len(c.Rules))
	for id := range c.Rules {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// Apply configures the rules of reg: disabled rules are dropped, options are
// passed to configurable rules and severity overrides are collected for the
// analyzer. Rules absent from the configuration keep their defaults.
func (c *Config) Apply(reg *analyzer.Registry) (*analyzer.Registry, map[string]analyzer.Severity, error) {
	if err := c.Validate(reg.IDs()); err != nil {
		return nil, nil, err
	}

	severities := make(map[string]analyzer.Severity)

	for _, id := range c.ruleIDs() {
		rc := c.Rules[id]
		if !rc.Enabled {
			continue
		}

		if rc.Severity != "" {
			sev, _ := analyzer.ParseSeverity(rc.Severity) // validated above
			severities[id] = sev
		}

		if len(rc.Settings) == 0 {
			continue
		}

		rule, _ := reg.Lookup(id)

		configurable, ok := rule.(analyzer.Configurable)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s takes no options", ErrInvalidOption, id)
		}

		if err := configurable.ApplySettings(rc.Settings); err != nil {
			return nil, nil, err
		}
	}

	filtered := reg.Filter(func(r analyzer.Rule) bool {
		rc, ok := c.Rules[r.ID()]

		return !ok || rc.Enabled
	})

	return filtered, severities, nil
}
