package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/service/daemon"
	"github.com/oshokin/alarm-clock/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// stateFile path where pending wakes are persisted.
	stateFile string
	// logLevel overrides the configured log level.
	logLevel string

	// rootCmd represents the base command for running the daemon.
	rootCmd = &cobra.Command{
		Use:   "alarm-daemon [listen-address]",
		Short: "Run the alarm daemon that fires scheduled alarms.",
		Long: `Starts the alarm daemon that keeps the scheduled alarm and shows it when it fires.

The daemon owns the exact wake registry, the notification center and the
full-screen alert. The alarm-clock command talks to it over gRPC.
Listen address can be provided as argument to override config (e.g., 127.0.0.1:9090).
Pending wakes are persisted to a JSON file and re-armed after a restart.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &daemon.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				StateFile:     stateFile,
				LogLevel:      logLevel,
			}

			return daemon.Run(ctx, options)
		},
	}
)

// Execute runs the alarm-daemon CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "",
		"path to configuration file (default alarm-clock-settings.yaml)")
	rootCmd.Flags().StringVarP(&stateFile, "state-file", "s", "",
		"path to persist pending wakes (default from config)")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "log level (debug, info, warn, error)")
}
