package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aqasim81/migrationcop/internal/analyzer"
	"github.com/aqasim81/migrationcop/internal/analyzer/rules"
	"github.com/aqasim81/migrationcop/internal/config"
	"github.com/aqasim81/migrationcop/internal/database"
	"github.com/aqasim81/migrationcop/internal/migration"
	"github.com/aqasim81/migrationcop/internal/model"
	"github.com/aqasim81/migrationcop/internal/schema"
	"github.com/aqasim81/migrationcop/internal/tracker"
)

var analyzeCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "analyze [path...]",
	Short: "Inspect migrations for unsafe operations",
	Long: `Inspect Rails migration files for operations that lock tables, rewrite
data or break running code. Paths may be files or directories; without paths
the include globs of the configuration are used (db/migrate/**/*.rb).

With --autocorrect the safe rewrite of each correctable offense is written
back to the migration file.`,
	RunE: runAnalyze,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	analyzeCmd.Flags().BoolP("autocorrect", "a", false, "rewrite correctable offenses in place")
	analyzeCmd.Flags().String("format", "", "output format (text, json)")
	analyzeCmd.Flags().Bool("fail-on-high", false, "exit with non-zero code if high/critical offenses remain")
	analyzeCmd.Flags().Bool("pending-only", false, "skip migrations recorded in schema_migrations (needs --database-url)")
	rootCmd.AddCommand(analyzeCmd)
}

var (
	// errHighSeverityFindings is returned when --fail-on-high is set and high/critical offenses remain.
	errHighSeverityFindings = errors.New("high or critical severity offenses detected")
	// errMigrationsFailed is returned after reporting when some migrations could not be processed.
	errMigrationsFailed = errors.New("some migrations could not be analyzed")
	// errStaleMigration marks a corrected migration whose file changed while it was analyzed.
	errStaleMigration = errors.New("migration changed on disk during analysis")
	// errDatabaseURLRequired is returned when a command needs the database and none is configured.
	errDatabaseURLRequired = errors.New(
		"database URL is required (set --database-url, MIGRATIONCOP_DATABASE_URL, or database_url in config)",
	)
)

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := AppConfig
	ctx := commandContext(cmd)

	if cmd.Flags().Changed("format") {
		cfg.Format, _ = cmd.Flags().GetString("format")
	}

	a, err := newAnalyzer(cfg, AppLogger)
	if err != nil {
		return err
	}

	migrations, err := loadMigrations(cfg, args)
	if err != nil {
		return err
	}

	if pendingOnly, _ := cmd.Flags().GetBool("pending-only"); pendingOnly {
		migrations, err = pendingMigrations(ctx, cfg, migrations)
		if err != nil {
			return err
		}
	}

	autocorrect, _ := cmd.Flags().GetBool("autocorrect")
	results := a.AnalyzeAll(ctx, migrations, autocorrect)

	if autocorrect {
		writeCorrections(results, AppLogger)
	}

	if err := report(cmd.OutOrStdout(), cfg.Format, results); err != nil {
		return err
	}

	for _, r := range results {
		if r.Err != nil {
			return errMigrationsFailed
		}
	}

	if failOnHigh, _ := cmd.Flags().GetBool("fail-on-high"); failOnHigh && anyHighOrCritical(results) {
		return errHighSeverityFindings
	}

	return nil
}

// newAnalyzer builds the analyzer for one run. The schema cache and model
// catalog live only as long as the returned analyzer.
func newAnalyzer(cfg *config.Config, logger *zap.Logger) (*analyzer.Analyzer, error) {
	deps := rules.Deps{
		Schema: schema.NewCache(schema.SourceFor(cfg.DatabaseURL, cfg.SchemaPath), cfg.SchemaTimeout, logger),
		Models: model.NewCatalog(cfg.ModelsDir, logger),
	}

	reg, severities, err := cfg.Apply(rules.NewDefaultRegistry(deps))
	if err != nil {
		return nil, fmt.Errorf("configuring rules: %w", err)
	}

	return analyzer.New(
		analyzer.WithRegistry(reg),
		analyzer.WithSeverityOverrides(severities),
		analyzer.WithMaxPasses(cfg.MaxPasses),
		analyzer.WithLogger(logger),
	), nil
}

// loadMigrations reads the migrations named by args, or those matched by the
// configured include globs, in version order.
func loadMigrations(cfg *config.Config, args []string) ([]migration.Migration, error) {
	var (
		paths []string
		err   error
	)

	if len(args) > 0 {
		paths, err = migration.Expand(args, cfg.Exclude)
	} else {
		paths, err = migration.Discover(migration.Options{Include: cfg.Include, Exclude: cfg.Exclude})
	}

	if err != nil {
		return nil, fmt.Errorf("finding migrations: %w", err)
	}

	migrations := make([]migration.Migration, 0, len(paths))

	for _, p := range paths {
		m, err := migration.Load(p)
		if err != nil {
			return nil, fmt.Errorf("loading migrations: %w", err)
		}

		migrations = append(migrations, m)
	}

	return migration.Sort(migrations), nil
}

func pendingMigrations(ctx context.Context, cfg *config.Config, ms []migration.Migration) ([]migration.Migration, error) {
	if cfg.DatabaseURL == "" {
		return nil, errDatabaseURLRequired
	}

	AppLogger.Debug("reading applied migrations", zap.String("database", config.RedactURL(cfg.DatabaseURL)))

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	pending, err := tracker.New(pool).Pending(ctx, ms)
	if err != nil {
		return nil, fmt.Errorf("reading applied migrations: %w", err)
	}

	return pending, nil
}

// writeCorrections saves corrected sources. A file modified on disk since it
// was read is left alone and its result marked as failed.
func writeCorrections(results []analyzer.AnalysisResult, logger *zap.Logger) {
	for i := range results {
		r := &results[i]
		if !r.Changed() {
			continue
		}

		if err := writeCorrection(r); err != nil {
			logger.Warn("correction not written", zap.String("migration", r.Migration.FilePath), zap.Error(err))
			r.Err = err
		}
	}
}

func writeCorrection(r *analyzer.AnalysisResult) error {
	m := r.Migration

	stale, err := migration.IsStale(*m)
	if err != nil {
		return err
	}

	if stale {
		return fmt.Errorf("%w: %s", errStaleMigration, m.FilePath)
	}

	info, err := os.Stat(m.FilePath)
	if err != nil {
		return fmt.Errorf("writing %s: %w", m.FilePath, err)
	}

	if err := os.WriteFile(m.FilePath, []byte(r.Corrected), info.Mode().Perm()); err != nil {
		return fmt.Errorf("writing %s: %w", m.FilePath, err)
	}

	return nil
}

func anyHighOrCritical(results []analyzer.AnalysisResult) bool {
	for i := range results {
		if results[i].HasHighOrCritical() {
			return true
		}
	}

	return false
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
