package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/aevum/internal/config"
	"github.com/oshokin/aevum/internal/logger"
	"github.com/oshokin/aevum/internal/service/store"
	"github.com/oshokin/aevum/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// storage overrides the configured persistence backend.
	storage string
	// statePath overrides the JSON file or SQLite database path.
	statePath string
	// logLevel is the minimum level of emitted log messages.
	logLevel string

	// rootCmd represents the base command for running the alarm store.
	rootCmd = &cobra.Command{
		Use:   "alarmd [listen-address]",
		Short: "Run the alarm store daemon.",
		Long: `Starts the gRPC alarm store that keeps the scheduled alarms and rings them.

The daemon listens on the port of server_addr from the configuration file, on the
loopback interface when server_addr is a loopback address and on all interfaces
otherwise. A listen address argument overrides it (e.g., :9090, 0.0.0.0:8080).
Alarms are persisted to a JSON file or a SQLite database for recovery across restarts.`,
		Args: cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Without the flag the configured level applies once settings are loaded.
			if !cmd.Flags().Changed("log-level") {
				logLevel = ""

				return nil
			}

			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("unknown log level %q", logLevel)
			}

			logger.SetLevel(level)

			return nil
		},
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &store.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				Storage:       storage,
				StatePath:     statePath,
				LogLevel:      logLevel,
			}

			return store.Run(ctx, options)
		},
	}
)

// Execute runs the alarmd CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVar(&storage, "storage", "", "storage backend override: file or sqlite")
	rootCmd.Flags().StringVarP(&statePath, "state", "s", "", "path of the alarm state file or database")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "minimum log level, overrides log_level from the configuration")
}
