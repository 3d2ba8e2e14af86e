package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"google.golang.org/grpc"

	"github.com/oshokin/alarm-clock/internal/api/grpc/alarmclock"
	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/platform/notification"
	"github.com/oshokin/alarm-clock/internal/platform/permission"
	"github.com/oshokin/alarm-clock/internal/platform/power"
	"github.com/oshokin/alarm-clock/internal/platform/screen"
	"github.com/oshokin/alarm-clock/internal/platform/wakeup"
	"github.com/oshokin/alarm-clock/internal/repository/wakes"
	"github.com/oshokin/alarm-clock/internal/service/delivery"
	"github.com/oshokin/alarm-clock/internal/service/orchestrator"
	"github.com/oshokin/alarm-clock/internal/service/presenter"
	"github.com/oshokin/alarm-clock/internal/service/receiver"
	"github.com/oshokin/alarm-clock/internal/service/scheduler"
)

// Options controls the alarm-daemon process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// StateFile specifies the path to persist pending wakes.
	StateFile string
	// LogLevel overrides the configured log level.
	LogLevel string
	// Output receives the terminal alert banner. Defaults to stdout.
	Output io.Writer
}

var (
	// ErrNoServerAddress indicates missing server configuration.
	ErrNoServerAddress = errors.New("no server address configured")
	// errUnknownLogLevel is returned for an unparsable log level.
	errUnknownLogLevel = errors.New("unknown log level")
)

// Run starts the gRPC server and blocks until context is canceled or server stops.
// Loads configuration first, then determines listen address from config or override.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "alarm-daemon")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	levelName := settings.LogLevel
	if opts.LogLevel != "" {
		levelName = opts.LogLevel
	}

	level, ok := logger.ParseLogLevel(levelName)
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, levelName)
	}

	logger.SetLevel(level)

	if opts.StateFile != "" {
		settings.StateFile = opts.StateFile
	}

	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	app, err := assemble(ctx, settings, output)
	if err != nil {
		return err
	}

	defer app.registry.Close()

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer()
	alarmclock.RegisterAlarmClockServiceServer(grpcServer, alarmclock.NewServer(app.service))

	logger.InfoKV(ctx, "Alarm daemon listening",
		"listen_address", listenAddress,
		"state_file", settings.StateFile,
		"pending_wakes", len(app.registry.Pending()))

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "GRPC server stopped")

	return nil
}

// app is the assembled daemon.
type app struct {
	// registry delivers exact wakes.
	registry *wakeup.Registry
	// service backs the gRPC API.
	service *service
}

// assemble wires the platform, the alarm pipeline and the orchestrator.
func assemble(ctx context.Context, settings *config.Config, output io.Writer) (*app, error) {
	grants := permission.NewGrants(grantedPermissions(settings.Permissions)...)

	var sinks []notification.Sink
	if len(settings.Notification.Command) > 0 {
		sinks = append(sinks, notification.NewCommandSink(settings.Notification.Command))
	}

	center := notification.NewCenter(sinks...)

	var surface screen.Screen = screen.NewTerminal(output)
	if len(settings.Alert.Command) > 0 {
		surface = screen.NewCommand(settings.Alert.Command, screen.WithOrphanReaping())
	}

	alerts := presenter.New(surface, center)
	center.SetFullScreenHandler(alerts.Show)

	alertDelivery := delivery.New(
		delivery.NewDirectLaunch(alerts, *settings.Alert.BackgroundLaunch),
		delivery.NewFullScreenIntent(center),
	)

	onReceive := receiver.New(power.NewInhibitor(), grants, center, alertDelivery, receiver.Options{
		Channel: notification.Channel{
			ID:         settings.Notification.ChannelID,
			Name:       settings.Notification.ChannelName,
			Importance: notification.PriorityHigh,
		},
		WakeLockDuration: settings.WakeLockDuration,
	})

	registry := wakeup.NewRegistry(ctx, onReceive, wakes.NewFileRepository(settings.StateFile),
		wakeup.WithWallClockCheck(settings.WakeCheckInterval))
	if err := registry.Restore(ctx); err != nil {
		registry.Close()

		return nil, fmt.Errorf("restore pending wakes: %w", err)
	}

	var orchestratorOptions []orchestrator.Option
	if restored, ok := adoptRestoredWake(ctx, registry); ok {
		orchestratorOptions = append(orchestratorOptions, orchestrator.WithArmed(restored))
	}

	orch := orchestrator.New(scheduler.NewExactScheduler(registry, grants), orchestratorOptions...)

	return &app{
		registry: registry,
		service: &service{
			orchestrator: orch,
			presenter:    alerts,
			grants:       grants,
		},
	}, nil
}

// adoptRestoredWake turns the wake kept across a restart back into the armed
// record. Only one alarm may be pending: the earliest restored wake is adopted
// and any other restored wake is cancelled.
func adoptRestoredWake(ctx context.Context, registry *wakeup.Registry) (domain.Record, bool) {
	var (
		adopted domain.Record
		found   bool
	)

	for _, w := range registry.Pending() {
		record := domain.NewRecord(w.At, w.Message)
		if found || record.Key() != w.Key {
			registry.Cancel(ctx, w.Key)
			logger.WarnKV(ctx, "Dropped extra restored wake", "key", w.Key, "at", w.At, "message", w.Message)

			continue
		}

		adopted, found = record, true
	}

	if found {
		logger.InfoKV(ctx, "Restored armed alarm", "alarm", adopted.String())
	}

	return adopted, found
}

// grantedPermissions lists the permissions enabled in the settings.
func grantedPermissions(p config.Permissions) []permission.Permission {
	var granted []permission.Permission

	if p.ExactAlarm != nil && *p.ExactAlarm {
		granted = append(granted, permission.ExactAlarm)
	}

	if p.PostNotifications != nil && *p.PostNotifications {
		granted = append(granted, permission.PostNotifications)
	}

	return granted
}

// resolveListenAddress determines the listen address for the gRPC server.
// An override is used as is; otherwise the configured address is used, so a
// loopback address keeps the daemon local.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	if _, _, err := net.SplitHostPort(configAddr); err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	return configAddr, nil
}
