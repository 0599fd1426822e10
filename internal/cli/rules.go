package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aqasim81/migrationcop/internal/analyzer"
	"github.com/aqasim81/migrationcop/internal/analyzer/rules"
	"github.com/aqasim81/migrationcop/internal/config"
)

var rulesCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "rules",
	Short: "List the available rules",
	Long: `List every built-in rule with its severity and whether the configuration
enables it. Options of configurable rules are shown with their effective values.`,
	Args: cobra.NoArgs,
	RunE: runRules,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, _ []string) error {
	return printRules(cmd.OutOrStdout(), AppConfig)
}

func printRules(w io.Writer, cfg *config.Config) error {
	all := rules.NewDefaultRegistry(rules.Deps{})

	enabled, severities, err := cfg.Apply(all)
	if err != nil {
		return fmt.Errorf("configuring rules: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RULE\tSEVERITY\tENABLED\tDESCRIPTION")

	for _, r := range all.Rules() {
		sev, ok := severities[r.ID()]
		if !ok {
			sev = r.DefaultSeverity()
		}

		_, on := enabled.Lookup(r.ID())

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID(), sev, yesNo(on), r.Description())

		if c, ok := r.(analyzer.Configurable); ok {
			settings := c.DefaultSettings()
			maps.Copy(settings, cfg.Rules[r.ID()].Settings)

			for _, key := range slices.Sorted(maps.Keys(settings)) {
				fmt.Fprintf(tw, "  %s\t%v\t\t\n", key, settings[key])
			}
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}

	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}
