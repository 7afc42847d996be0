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
	"github.com/oshokin/aevum/internal/service/client"
	"github.com/oshokin/aevum/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// serverAddress overrides the alarm store address from the configuration.
	serverAddress string
	// logFile overrides the log file from the configuration.
	logFile string
	// logLevel is the minimum level of emitted log messages.
	logLevel string

	// rootCmd represents the base command for the alarm clock.
	rootCmd = &cobra.Command{
		Use:   "aevum",
		Short: "Touchscreen alarm clock.",
		Long: `Shows the alarm clock in the terminal and keeps it in sync with the alarm store.

Touch (or click) an alarm's delete button to remove it, the plus button to schedule a
new one. When an alarm rings the sound loops until "Stop Alarm" is pressed.
Press q or Escape to quit. Logs are written to a file because the terminal is taken
by the clock.`,
		Args: cobra.NoArgs,
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
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &client.Options{
				ConfigPath:    configPath,
				ServerAddress: serverAddress,
				LogFile:       logFile,
				LogLevel:      logLevel,
			}

			return client.Run(ctx, options)
		},
	}
)

// Execute runs the aevum CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&serverAddress, "server", "s", "", "alarm store address override")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "log file override")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "minimum log level, overrides log_level from the configuration")
}
