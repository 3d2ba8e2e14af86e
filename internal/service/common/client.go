//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/oshokin/alarm-clock/internal/api/grpc/alarmclock"
	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/platform/permission"
)

// Client wraps the AlarmClockService gRPC client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the daemon.
	conn *grpc.ClientConn
	// api is the raw AlarmClockService client.
	api *alarmclock.AlarmClockServiceClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial establishes a gRPC connection to the alarm-clock daemon.
// The daemon listens on loopback by default, so transport credentials are insecure.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial alarm daemon: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         alarmclock.NewAlarmClockServiceClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// Schedule arms an alarm and returns the daemon's state afterwards.
func (c *Client) Schedule(ctx context.Context, fireAt time.Time, message string) (*domain.State, error) {
	req, err := alarmclock.EncodeScheduleRequest(fireAt, message)
	if err != nil {
		return nil, fmt.Errorf("encode schedule request: %w", err)
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Schedule(callCtx, req)
	if err != nil {
		return nil, fmt.Errorf("schedule alarm: %w", alarmclock.FromStatus(err))
	}

	return alarmclock.DecodeState(resp)
}

// Cancel disarms the current alarm. The boolean reports whether one was armed.
func (c *Client) Cancel(ctx context.Context) (domain.Record, bool, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Cancel(callCtx)
	if err != nil {
		return domain.Record{}, false, fmt.Errorf("cancel alarm: %w", alarmclock.FromStatus(err))
	}

	return alarmclock.DecodeCancelResult(resp)
}

// Status retrieves the orchestrator state.
func (c *Client) Status(ctx context.Context) (*domain.State, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetStatus(callCtx)
	if err != nil {
		return nil, fmt.Errorf("get status: %w", alarmclock.FromStatus(err))
	}

	return alarmclock.DecodeState(resp)
}

// Alert describes the alert surface.
func (c *Client) Alert(ctx context.Context) (*alarmclock.Alert, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetAlert(callCtx)
	if err != nil {
		return nil, fmt.Errorf("get alert: %w", alarmclock.FromStatus(err))
	}

	return alarmclock.DecodeAlert(resp)
}

// Dismiss closes the alert surface. The boolean reports whether it was open.
func (c *Client) Dismiss(ctx context.Context) (bool, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Dismiss(callCtx)
	if err != nil {
		return false, fmt.Errorf("dismiss alert: %w", alarmclock.FromStatus(err))
	}

	return alarmclock.DecodeDismissResult(resp), nil
}

// Permissions lists the daemon's permission grants.
func (c *Client) Permissions(ctx context.Context) ([]alarmclock.PermissionLine, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetPermissions(callCtx)
	if err != nil {
		return nil, fmt.Errorf("get permissions: %w", alarmclock.FromStatus(err))
	}

	return alarmclock.DecodePermissions(resp), nil
}

// SetPermission grants or revokes a permission and returns the updated grants.
func (c *Client) SetPermission(
	ctx context.Context,
	p permission.Permission,
	granted bool,
) ([]alarmclock.PermissionLine, error) {
	req, err := alarmclock.EncodePermissionRequest(p, granted)
	if err != nil {
		return nil, fmt.Errorf("encode permission request: %w", err)
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.SetPermission(callCtx, req)
	if err != nil {
		return nil, fmt.Errorf("set permission: %w", alarmclock.FromStatus(err))
	}

	return alarmclock.DecodePermissions(resp), nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
