// Package delivery brings the alert surface up for a fired alarm.
//
// Delivery tries its backends in priority order and stops at the first one
// that succeeds: a direct launch of the surface first, then the full-screen
// launch attached to the alarm notification. Both open the same single
// surface, so the user never sees two alerts.
package delivery

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/platform/notification"
)

// Backend is one way of opening the alert surface.
type Backend interface {
	Name() string
	Launch(ctx context.Context, message string) error
}

// errNoBackends is returned when delivery has nothing to try.
var errNoBackends = errors.New("no delivery backends configured")

// Delivery opens the alert surface through the first backend that works.
type Delivery struct {
	// backends are tried in order.
	backends []Backend
}

// New creates a delivery trying backends in the given order.
func New(backends ...Backend) *Delivery {
	return &Delivery{backends: backends}
}

// Deliver opens the alert surface with message and returns the name of the
// backend that succeeded. When every backend fails the error wraps
// domain.ErrLaunchFailure.
func (d *Delivery) Deliver(ctx context.Context, message string) (string, error) {
	if len(d.backends) == 0 {
		return "", fmt.Errorf("%w: %w", domain.ErrLaunchFailure, errNoBackends)
	}

	errs := make([]error, 0, len(d.backends))

	for _, backend := range d.backends {
		err := backend.Launch(ctx, message)
		if err == nil {
			logger.DebugKV(ctx, "Alert delivered", "backend", backend.Name())
			return backend.Name(), nil
		}

		logger.WarnKV(ctx, "Alert backend failed, trying next", "backend", backend.Name(), "error", err)

		errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), err))
	}

	return "", fmt.Errorf("%w: %w", domain.ErrLaunchFailure, errors.Join(errs...))
}

// Surface is the alert surface a direct launch opens.
type Surface interface {
	Show(ctx context.Context, message string) error
}

// errBackgroundStartRestricted is returned when direct launches are disabled.
var errBackgroundStartRestricted = errors.New("background start of the alert surface is restricted")

// DirectLaunch opens the surface from the receiver itself.
type DirectLaunch struct {
	// surface is opened directly.
	surface Surface
	// allowed is false when background starts are restricted.
	allowed bool
}

// NewDirectLaunch creates the direct backend. When allowed is false every
// launch fails and delivery falls back.
func NewDirectLaunch(surface Surface, allowed bool) *DirectLaunch {
	return &DirectLaunch{surface: surface, allowed: allowed}
}

// Name implements Backend.
func (*DirectLaunch) Name() string {
	return "direct"
}

// Launch implements Backend.
func (b *DirectLaunch) Launch(ctx context.Context, message string) error {
	if !b.allowed {
		return fmt.Errorf("%w: %w", domain.ErrLaunchFailure, errBackgroundStartRestricted)
	}

	return b.surface.Show(ctx, message)
}

// FullScreenLauncher launches the surface attached to a posted notification.
type FullScreenLauncher interface {
	LaunchFullScreen(ctx context.Context, id int) error
}

// FullScreenIntent opens the surface through the alarm notification.
type FullScreenIntent struct {
	// launcher is the notification center.
	launcher FullScreenLauncher
}

// NewFullScreenIntent creates the notification-driven backend.
func NewFullScreenIntent(launcher FullScreenLauncher) *FullScreenIntent {
	return &FullScreenIntent{launcher: launcher}
}

// Name implements Backend.
func (*FullScreenIntent) Name() string {
	return "full_screen_intent"
}

// Launch implements Backend. The message travels with the notification.
func (b *FullScreenIntent) Launch(ctx context.Context, _ string) error {
	return b.launcher.LaunchFullScreen(ctx, notification.AlarmNotificationID)
}
