// Package root contains the root command for the application
package root

import (
	"fmt"

	"fjacquet/budget-monitor/internal/config"
	"fjacquet/budget-monitor/internal/container"
	"fjacquet/budget-monitor/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Config       string
	LogLevel     string
	LogFormat    string
	Delimiter    string
	Encoding     string
	Transactions string
	Output       string
}

var (
	// Log is the shared logger instance for commands
	Log = logging.NewLogrusAdapter("info", "text")

	// AppContainer is built by PersistentPreRunE from the loaded configuration.
	AppContainer *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "budget-monitor",
		Short: "Reconcile ledger spend against budget.",
		Long: `budget-monitor reads a ledger export, removes charge/reversal pairs,
classifies every line by process and site, spreads overhead over the other
processes and compares the resulting monthly spend with the budget.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to budget-monitor!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if AppContainer != nil {
				if err := AppContainer.Close(); err != nil {
					Log.WithError(err).Warn("Failed to close container")
				}
			}
		},
	}

	// SharedFlags holds the persistent flag values.
	SharedFlags = CommonFlags{}
)

// Init initializes the root command and all flags
func Init() {
	flags := Cmd.PersistentFlags()
	flags.StringVar(&SharedFlags.Config, "config", "", "Config file (default searches ./config.yaml, .budget-monitor/, $HOME/.budget-monitor/)")
	flags.StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&SharedFlags.LogFormat, "log-format", "", "Log format (text, json)")
	flags.StringVar(&SharedFlags.Delimiter, "csv-delimiter", "", "Input CSV delimiter")
	flags.StringVar(&SharedFlags.Encoding, "encoding", "", "Input encoding (latin1, utf8)")
	flags.StringVarP(&SharedFlags.Transactions, "transactions", "t", "", "Ledger transactions CSV file")
	flags.StringVarP(&SharedFlags.Output, "output", "o", "", "Output directory")
}

// setup loads the configuration, applies flag overrides and builds the
// container.
func setup() error {
	config.LoadEnv()
	config.BootstrapLogLevel()

	cfg, err := config.InitializeConfigFrom(SharedFlags.Config)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	ApplyOverrides(cfg, SharedFlags)

	c, err := container.NewContainer(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	AppContainer = c
	Log = c.GetLogger()
	return nil
}

// ApplyOverrides copies the non-empty persistent flags onto cfg.
func ApplyOverrides(cfg *config.Config, flags CommonFlags) {
	if flags.LogLevel != "" {
		cfg.Log.Level = flags.LogLevel
	}
	if flags.LogFormat != "" {
		cfg.Log.Format = flags.LogFormat
	}
	if flags.Delimiter != "" {
		cfg.CSV.Delimiter = flags.Delimiter
	}
	if flags.Encoding != "" {
		cfg.CSV.Encoding = flags.Encoding
	}
}

// GetContainer returns the container built for the running command.
func GetContainer() (*container.Container, error) {
	if AppContainer == nil {
		return nil, fmt.Errorf("application container is not initialized")
	}
	return AppContainer, nil
}
