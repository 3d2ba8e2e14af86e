package clock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/oshokin/alarm-clock/internal/api/grpc/alarmclock"
	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/platform/permission"
	"github.com/oshokin/alarm-clock/internal/service/common"
)

// Daemon is the subset of the daemon client used by the CLI.
type Daemon interface {
	Schedule(ctx context.Context, fireAt time.Time, message string) (*domain.State, error)
	Cancel(ctx context.Context) (domain.Record, bool, error)
	Status(ctx context.Context) (*domain.State, error)
	Alert(ctx context.Context) (*alarmclock.Alert, error)
	Dismiss(ctx context.Context) (bool, error)
	Permissions(ctx context.Context) ([]alarmclock.PermissionLine, error)
	SetPermission(ctx context.Context, p permission.Permission, granted bool) ([]alarmclock.PermissionLine, error)
}

// Options configures the connection to the daemon.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides server address from config when specified.
	ServerAddress string
}

// App runs CLI actions against the daemon and prints their outcome.
type App struct {
	// daemon is the connected daemon.
	daemon Daemon
	// out receives user facing messages.
	out io.Writer
	// now is the clock used for picks.
	now func() time.Time
}

// New creates an App over an existing daemon connection.
func New(daemon Daemon, out io.Writer) *App {
	return &App{daemon: daemon, out: out, now: time.Now}
}

// Connect loads settings, dials the daemon and returns an App with a close function.
func Connect(ctx context.Context, opts *Options, out io.Writer) (*App, func(), error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, nil, err
	}

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return nil, nil, err
	}

	logger.DebugKV(ctx, "Connected to alarm daemon", "server_address", serverAddress)

	closeFn := func() {
		_ = client.Close()
	}

	return New(client, out), closeFn, nil
}

// Schedule arms an alarm for the picked instant.
func (a *App) Schedule(ctx context.Context, pick Pick, message string) error {
	fireAt, err := pick.Resolve(a.now())
	if err != nil {
		return err
	}

	state, err := a.daemon.Schedule(ctx, fireAt, message)
	if err != nil {
		return err
	}

	if state.Armed != nil {
		fireAt = state.Armed.FireAt
	}

	return a.printf("Alarm scheduled for %s!\n", fireAt.Local().Format(domain.DisplayLayout))
}

// Cancel disarms the alarm. Cancelling with nothing armed still succeeds.
func (a *App) Cancel(ctx context.Context) error {
	record, cancelled, err := a.daemon.Cancel(ctx)
	if err != nil {
		return err
	}

	if cancelled {
		logger.DebugKV(ctx, "Alarm disarmed", "alarm", record.String())
	}

	return a.printf("Alarm cancelled!\n")
}

// Status prints the armed alarm, if any.
func (a *App) Status(ctx context.Context) error {
	state, err := a.daemon.Status(ctx)
	if err != nil {
		return err
	}

	if state.Armed == nil {
		return a.printf("No alarm is set.\n")
	}

	return a.printf("Alarm set for %s: %s\n",
		state.Armed.FireAt.Local().Format(domain.DisplayLayout),
		state.Armed.Message)
}

// Alert prints the alert surface.
func (a *App) Alert(ctx context.Context) error {
	alert, err := a.daemon.Alert(ctx)
	if err != nil {
		return err
	}

	if !alert.Open {
		return a.printf("No alert is showing.\n")
	}

	return a.printf("ALARM since %s: %s\n", alert.ShownAt.Local().Format(domain.DisplayLayout), alert.Message)
}

// Dismiss stops the alert.
func (a *App) Dismiss(ctx context.Context) error {
	dismissed, err := a.daemon.Dismiss(ctx)
	if err != nil {
		return err
	}

	if !dismissed {
		return a.printf("No alert is showing.\n")
	}

	return a.printf("Alarm stopped.\n")
}

// Permissions lists the daemon's permission grants.
func (a *App) Permissions(ctx context.Context) error {
	lines, err := a.daemon.Permissions(ctx)
	if err != nil {
		return err
	}

	return a.printPermissions(lines)
}

// SetPermission grants or revokes a permission by name.
func (a *App) SetPermission(ctx context.Context, name string, granted bool) error {
	p, err := permission.Parse(name)
	if err != nil {
		return err
	}

	lines, err := a.daemon.SetPermission(ctx, p, granted)
	if err != nil {
		return err
	}

	switch {
	case p == permission.PostNotifications && granted:
		err = a.printf("Notification permission granted!\n")
	case p == permission.PostNotifications:
		err = a.printf("Notification permission denied. Alarms may not work properly.\n")
	case granted:
		err = a.printf("Exact alarm permission granted!\n")
	default:
		err = a.printf("Exact alarm permission denied. Alarms cannot be scheduled.\n")
	}

	if err != nil {
		return err
	}

	return a.printPermissions(lines)
}

// Describe renders an action error for the user.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrValidation):
		return "Please select a future date and time"
	case errors.Is(err, domain.ErrPermissionDenied):
		return "Error: " + err.Error() + " (run: alarm-clock permission grant " + string(permission.ExactAlarm) + ")"
	default:
		return "Error: " + err.Error()
	}
}

func (a *App) printPermissions(lines []alarmclock.PermissionLine) error {
	for _, line := range lines {
		outcome := permission.Denied
		if line.Granted {
			outcome = permission.Granted
		}

		if err := a.printf("%-20s %s\n", line.Permission, outcome); err != nil {
			return err
		}
	}

	return nil
}

func (a *App) printf(format string, args ...any) error {
	if _, err := fmt.Fprintf(a.out, format, args...); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}
