package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pablasso/oracle/internal/config"
	"github.com/pablasso/oracle/internal/logging"
	"github.com/pablasso/oracle/internal/state"
	"github.com/pablasso/oracle/internal/version"
)

var (
	configFile string

	// cfg and logger are populated before any command runs.
	cfg    = config.Default()
	logger = logging.NopLogger()
)

var rootCmd = &cobra.Command{
	Use:   "oracle",
	Short: "Self-reporting task runner with a live status page",
	Long: `Oracle works through a queue of tasks in the background, records every
outcome in a JSON state file, and serves a live-refreshing dashboard of its
progress at http://localhost:9000.`,
	Version:           version.Version,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
	RunE:              runServe,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default ./oracle.yaml if present)")
	flags.String("state-file", cfg.StateFile, "path of the state document")
	flags.String("addr", cfg.ListenAddr, "dashboard listen address")
	flags.String("log-level", cfg.Logging.Level, "log level: debug|info|warn|error")

	_ = viper.BindPFlag("state_file", flags.Lookup("state-file"))
	_ = viper.BindPFlag("listen_addr", flags.Lookup("addr"))
	_ = viper.BindPFlag("logging.level", flags.Lookup("log-level"))

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// initConfig resolves configuration and sets up logging.
func initConfig(cmd *cobra.Command, args []string) error {
	if err := config.Init(configFile); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	cfg = loaded
	logger = logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)
	return nil
}

// newStore returns the store for the configured state file.
func newStore() *state.Store {
	return state.NewStore(cfg.StateFile)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
