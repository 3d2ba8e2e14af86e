// Package receiver handles a fired alarm.
//
// OnReceive runs on the registry's timer goroutine, outside any request. It
// holds a bounded wake guarantee for the whole pass, makes sure the alarm
// channel exists, posts the alarm notification and brings the alert surface
// up. Each step runs even if an earlier one failed; failures and panics are
// logged and never leave the handler. Nothing is retried.
package receiver

import (
	"context"
	"fmt"
	"time"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/platform/notification"
	"github.com/oshokin/alarm-clock/internal/platform/permission"
	"github.com/oshokin/alarm-clock/internal/platform/power"
)

// notificationTitle is the headline of the alarm notification.
const notificationTitle = "Alarm"

// WakeLocker takes a bounded wake guarantee.
type WakeLocker interface {
	Acquire(ctx context.Context, d time.Duration) (power.Releaser, error)
}

// Notifier is the notification center.
type Notifier interface {
	EnsureChannel(ctx context.Context, ch notification.Channel) bool
	Post(ctx context.Context, n notification.Notification) error
}

// AlertDelivery opens the alert surface.
type AlertDelivery interface {
	Deliver(ctx context.Context, message string) (string, error)
}

// Options configures the receiver.
type Options struct {
	// Channel is the notification channel for alarms.
	Channel notification.Channel
	// WakeLockDuration bounds the wake guarantee.
	WakeLockDuration time.Duration
}

// Receiver handles delivered wakes.
type Receiver struct {
	// locker provides the wake guarantee.
	locker WakeLocker
	// gate answers the post-notifications check.
	gate permission.Gate
	// notifier posts the alarm notification.
	notifier Notifier
	// delivery opens the alert surface.
	delivery AlertDelivery
	// opts holds channel and wake lock settings.
	opts Options
}

// New creates a receiver.
func New(
	locker WakeLocker,
	gate permission.Gate,
	notifier Notifier,
	delivery AlertDelivery,
	opts Options,
) *Receiver {
	return &Receiver{
		locker:   locker,
		gate:     gate,
		notifier: notifier,
		delivery: delivery,
		opts:     opts,
	}
}

// OnReceive handles one delivered wake. It never panics and never returns an error.
func (r *Receiver) OnReceive(ctx context.Context, key domain.Key, message string) {
	ctx = logger.WithKV(logger.WithName(ctx, "receiver"), "alarm_key", key)
	message = domain.NormalizeMessage(message)

	logger.InfoKV(ctx, "Alarm triggered", "message", message)

	hold := r.acquireWake(ctx)
	defer hold.Release()

	r.step(ctx, "ensure_channel", func(ctx context.Context) error {
		r.notifier.EnsureChannel(ctx, r.opts.Channel)
		return nil
	})

	r.step(ctx, "post_notification", func(ctx context.Context) error {
		return r.postNotification(ctx, message)
	})

	r.step(ctx, "deliver_alert", func(ctx context.Context) error {
		backend, err := r.delivery.Deliver(ctx, message)
		if err != nil {
			return err
		}

		logger.InfoKV(ctx, "Alert surface launched", "backend", backend)

		return nil
	})
}

// acquireWake never fails: without a hold the handler still runs.
//
//nolint:ireturn // Only Release is needed.
func (r *Receiver) acquireWake(ctx context.Context) (hold power.Releaser) {
	defer func() {
		if p := recover(); p != nil {
			logger.ErrorKV(ctx, "Wake hold panicked", "panic", p)

			hold = noopRelease{}
		}
	}()

	hold, err := r.locker.Acquire(ctx, r.opts.WakeLockDuration)
	if err != nil {
		logger.WarnKV(ctx, "Wake hold unavailable", "error", err)
	}

	if hold == nil {
		hold = noopRelease{}
	}

	return hold
}

func (r *Receiver) postNotification(ctx context.Context, message string) error {
	if r.gate.Check(ctx, permission.PostNotifications) != permission.Granted {
		return fmt.Errorf("%w: %s", domain.ErrPermissionDenied, permission.PostNotifications)
	}

	return r.notifier.Post(ctx, notification.Notification{
		ID:         notification.AlarmNotificationID,
		ChannelID:  r.opts.Channel.ID,
		Title:      notificationTitle,
		Message:    message,
		Priority:   notification.PriorityHigh,
		Category:   notification.CategoryAlarm,
		FullScreen: true,
	})
}

// step runs fn, logging its error or panic.
func (r *Receiver) step(ctx context.Context, name string, fn func(ctx context.Context) error) {
	defer func() {
		if p := recover(); p != nil {
			logger.ErrorKV(ctx, "Alarm step panicked", "step", name, "panic", p)
		}
	}()

	if err := fn(ctx); err != nil {
		logger.ErrorKV(ctx, "Alarm step failed", "step", name, "error", err)
	}
}

// noopRelease stands in for a hold that could not be taken.
type noopRelease struct{}

func (noopRelease) Release() {}
