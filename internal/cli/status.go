package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aqasim81/migrationcop/internal/config"
	"github.com/aqasim81/migrationcop/internal/database"
	"github.com/aqasim81/migrationcop/internal/migration"
	"github.com/aqasim81/migrationcop/internal/tracker"
)

var statusCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "status [path...]",
	Short: "Show which migrations are applied",
	Long: `Compare the migration files with the versions recorded in Rails'
schema_migrations table and show each as up or down. analyze --pending-only
inspects exactly the migrations shown as down.`,
	RunE: runStatus,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := AppConfig
	if cfg.DatabaseURL == "" {
		return errDatabaseURLRequired
	}

	migrations, err := loadMigrations(cfg, args)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "database: %s\n\n", config.RedactURL(cfg.DatabaseURL))

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	applied, err := tracker.New(pool).AppliedVersions(ctx)
	if err != nil {
		return fmt.Errorf("reading applied migrations: %w", err)
	}

	return printStatus(out, migrations, applied)
}

func printStatus(w io.Writer, migrations []migration.Migration, applied map[string]struct{}) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tMIGRATION ID\tMIGRATION NAME")

	pending := 0

	for _, m := range migrations {
		state := "up"
		if _, ok := applied[m.Version]; !ok {
			state = "down"
			pending++
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\n", state, m.Version, humanize(m.Name))
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("writing status: %w", err)
	}

	fmt.Fprintf(w, "\n%d migration(s), %d pending\n", len(migrations), pending)

	return nil
}

// humanize turns add_index_to_users_name into "Add index to users name", the
// way Rails prints migration names.
func humanize(name string) string {
	s := strings.ReplaceAll(name, "_", " ")
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
