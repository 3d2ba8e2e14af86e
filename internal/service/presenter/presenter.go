// Package presenter implements the full-screen alert surface.
//
// There is only ever one surface. Showing a message while the surface is open
// replaces its content in place; the device policy flags are applied when the
// surface is created and again on every Resume. Dismiss clears the alarm
// notification and closes the surface.
package presenter

import (
	"context"
	"fmt"
	"sync"
	"time"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/platform/notification"
	"github.com/oshokin/alarm-clock/internal/platform/screen"
)

// Notifications clears the notification that triggered the alert.
type Notifications interface {
	Cancel(ctx context.Context, id int) bool
}

// Snapshot describes the surface at a point in time.
type Snapshot struct {
	// Open is true while the surface is shown.
	Open bool
	// Message is the displayed message.
	Message string
	// ShownAt is when the current message was displayed.
	ShownAt time.Time
	// Instances counts surfaces created since start.
	Instances int
	// Redeliveries counts messages replaced in an open surface.
	Redeliveries int
}

// Presenter owns the alert surface.
type Presenter struct {
	// screen draws the surface.
	screen screen.Screen
	// notifications is used to clear the alarm notification on dismiss.
	notifications Notifications
	// state is the current surface state.
	state Snapshot
	// mu serializes every surface operation.
	mu sync.Mutex
}

// New creates a presenter drawing on s.
func New(s screen.Screen, notifications Notifications) *Presenter {
	return &Presenter{
		screen:        s,
		notifications: notifications,
	}
}

// Show displays message, replacing the content of an already open surface.
func (p *Presenter) Show(ctx context.Context, message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	message = domain.NormalizeMessage(message)

	if p.state.Open && p.screen.Alive() {
		if err := p.screen.Update(ctx, message); err != nil {
			return fmt.Errorf("%w: update surface: %w", domain.ErrLaunchFailure, err)
		}

		p.state.Message = message
		p.state.ShownAt = time.Now()
		p.state.Redeliveries++

		logger.InfoKV(ctx, "Alert message replaced", "message", message)

		return nil
	}

	if err := p.screen.Open(ctx, message); err != nil {
		return fmt.Errorf("%w: open surface: %w", domain.ErrLaunchFailure, err)
	}

	p.state.Open = true
	p.state.Message = message
	p.state.ShownAt = time.Now()
	p.state.Instances++

	p.applyFlagsLocked(ctx)

	logger.InfoKV(ctx, "Alert shown", "message", message)

	return nil
}

// Resume re-applies the device policy flags to an open surface.
func (p *Presenter) Resume(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.state.Open {
		return
	}

	p.applyFlagsLocked(ctx)
}

// Dismiss clears the alarm notification and closes the surface.
// It reports whether an open surface was closed.
func (p *Presenter) Dismiss(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.notifications != nil {
		p.notifications.Cancel(ctx, notification.AlarmNotificationID)
	}

	if !p.state.Open {
		return false
	}

	if err := p.screen.Close(ctx); err != nil {
		logger.WarnKV(ctx, "Failed to close alert surface", "error", err)
	}

	p.state.Open = false

	logger.InfoKV(ctx, "Alert dismissed", "message", p.state.Message)

	return true
}

// Snapshot returns the surface state.
func (p *Presenter) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.state
	if s.Open && !p.screen.Alive() {
		s.Open = false
	}

	return s
}

func (p *Presenter) applyFlagsLocked(ctx context.Context) {
	if err := p.screen.ApplyFlags(ctx, screen.AlarmFlags()); err != nil {
		logger.WarnKV(ctx, "Failed to apply alert policy", "error", err)
	}
}
