package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/clock"
	"github.com/oshokin/alarm-clock/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// serverAddress overrides the daemon address.
	serverAddress string
	// logLevel is the CLI log level.
	logLevel string

	// rootCmd represents the base command of the alarm clock.
	rootCmd = &cobra.Command{
		Use:   "alarm-clock",
		Short: "Schedule a one-shot alarm on the alarm daemon.",
		Long: `Schedules, cancels and stops a single one-shot alarm.

Pick a date and time with --date and --time (or a delay with --in) and an
optional message. When the alarm fires the daemon posts a notification and
shows a full-screen alert until it is dismissed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("unknown log level %q", logLevel)
			}

			logger.SetLevel(level)

			return nil
		},
	}
)

// Execute runs the alarm-clock CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, clock.Describe(err))
		os.Exit(1)
	}
}

// withApp connects to the daemon, runs fn and closes the connection.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *clock.App) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	ctx = logger.WithName(ctx, "alarm-clock")

	app, closeFn, err := clock.Connect(ctx, &clock.Options{
		ConfigPath:    cfgPath,
		ServerAddress: serverAddress,
	}, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	defer closeFn()

	return fn(ctx, app)
}

func newScheduleCommand() *cobra.Command {
	var (
		pick    clock.Pick
		message string
	)

	c := &cobra.Command{
		Use:   "schedule [message]",
		Short: "Schedule the alarm.",
		Long: `Schedules the alarm. Without --date, --time or --in it fires one minute from now.
Scheduling again replaces the previous alarm. An empty message shows "Alarm!".`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				message = strings.Join(args, " ")
			}

			return withApp(cmd, func(ctx context.Context, app *clock.App) error {
				return app.Schedule(ctx, pick, message)
			})
		},
	}

	c.Flags().StringVarP(&pick.Date, "date", "d", "", "alarm date in dd/MM/yyyy")
	c.Flags().StringVarP(&pick.Time, "time", "t", "", "alarm time in HH:mm")
	c.Flags().DurationVar(&pick.In, "in", 0, "fire after a delay instead of at a date and time")
	c.Flags().StringVarP(&message, "message", "m", "", "alarm message")

	return c
}

func newSimpleCommand(use, short string, action func(*clock.App, context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, app *clock.App) error {
				return action(app, ctx)
			})
		},
	}
}

func newWatchCommand() *cobra.Command {
	var interval time.Duration

	c := &cobra.Command{
		Use:   "watch",
		Short: "Print alarms as they fire.",
		Long:  "Polls the daemon and prints every alarm that starts firing until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, app *clock.App) error {
				return app.Watch(ctx, interval)
			})
		},
	}

	c.Flags().DurationVarP(&interval, "interval", "i", clock.DefaultWatchInterval, "polling interval")

	return c
}

func newPermissionCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "permission",
		Short: "Inspect or change the daemon's permissions.",
		Long: `Lists, grants or revokes the daemon permissions.

exact_alarm allows scheduling alarms; post_notifications allows posting the
alarm notification.`,
	}

	c.AddCommand(
		newSimpleCommand("list", "List the permissions.", (*clock.App).Permissions),
		newSetPermissionCommand("grant", "Grant a permission.", true),
		newSetPermissionCommand("revoke", "Revoke a permission.", false),
	)

	return c
}

func newSetPermissionCommand(use, short string, granted bool) *cobra.Command {
	return &cobra.Command{
		Use:       use + " <exact_alarm|post_notifications>",
		Short:     short,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"exact_alarm", "post_notifications"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *clock.App) error {
				return app.SetPermission(ctx, args[0], granted)
			})
		},
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "",
		"path to configuration file (default alarm-clock-settings.yaml)")
	rootCmd.PersistentFlags().StringVarP(&serverAddress, "server", "a", "", "daemon address (default from config)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newScheduleCommand(),
		newSimpleCommand("cancel", "Cancel the alarm.", (*clock.App).Cancel),
		newSimpleCommand("status", "Show the scheduled alarm.", (*clock.App).Status),
		newSimpleCommand("alert", "Show the alert if one is firing.", (*clock.App).Alert),
		newSimpleCommand("dismiss", "Stop the firing alarm.", (*clock.App).Dismiss),
		newWatchCommand(),
		newPermissionCommand(),
	)
}
