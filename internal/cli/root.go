package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aqasim81/migrationcop/internal/config"
	"github.com/aqasim81/migrationcop/internal/logging"
)

const version = "0.1.0"

// AppConfig holds the loaded configuration, set during PersistentPreRunE.
var AppConfig *config.Config //nolint:gochecknoglobals // standard Cobra pattern for shared config

// AppLogger is the logger built from the configuration, set during PersistentPreRunE.
var AppLogger = zap.NewNop() //nolint:gochecknoglobals // standard Cobra pattern for shared config

// rootCmd is the base command for the migrationcop CLI.
var rootCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:     "migrationcop",
	Version: version,
	Short:   "Lint and autocorrect Rails migrations",
	Long: `migrationcop inspects Rails migrations for operations that lock tables,
rewrite data or break running code during a deploy, and rewrites them into
their safe form with --autocorrect.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.PersistentFlags().String("config", config.FileName, "path to configuration file")
	rootCmd.PersistentFlags().String("database-url", "", "PostgreSQL connection string for the live schema")
	rootCmd.PersistentFlags().String("schema", "", "path to db/schema.rb or db/structure.sql")
	rootCmd.PersistentFlags().String("models-dir", "", "path to the application models")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

// Execute runs the root command. Called from main.
func Execute() {
	err := rootCmd.Execute()

	_ = AppLogger.Sync()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads configuration with precedence: flag > env > file.
func loadConfig(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	allowMissing := !cmd.Flags().Changed("config")

	cfg, err := config.Load(configPath, allowMissing)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	config.MergeEnv(cfg)
	mergeFlags(cmd, cfg)

	level, err := logLevel(cmd, cfg)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	AppConfig = cfg
	AppLogger = logging.New(cmd.ErrOrStderr(), level)

	AppLogger.Debug("configuration loaded",
		zap.String("config", configPath),
		zap.String("schema", cfg.SchemaPath),
		zap.String("database", config.RedactURL(cfg.DatabaseURL)),
	)

	return nil
}

// mergeFlags overrides config with explicitly-set CLI flags.
func mergeFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("database-url") {
		cfg.DatabaseURL, _ = cmd.Flags().GetString("database-url")
	}

	if cmd.Flags().Changed("schema") {
		cfg.SchemaPath, _ = cmd.Flags().GetString("schema")
	}

	if cmd.Flags().Changed("models-dir") {
		cfg.ModelsDir, _ = cmd.Flags().GetString("models-dir")
	}
}

func logLevel(cmd *cobra.Command, cfg *config.Config) (zapcore.Level, error) {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		return zapcore.DebugLevel, nil
	}

	return logging.ParseLevel(cfg.LogLevel)
}
