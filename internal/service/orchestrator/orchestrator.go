// Package orchestrator implements the alarm clock's main screen logic: a
// state machine over a single armed slot.
//
// Empty --schedule(future)--> Armed --cancel--> Empty. Scheduling while armed
// replaces the slot; when the new record has a different key the previous
// platform timer is cancelled, so at most one alarm is ever pending. Firing
// is handled elsewhere and does not touch the slot.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/scheduler"
)

// Orchestrator owns the armed slot.
type Orchestrator struct {
	// scheduler arms and disarms platform timers.
	scheduler scheduler.Scheduler
	// now returns the current time.
	now func() time.Time
	// armed is the armed record, nil when empty.
	armed *domain.Record
	// mu serializes transitions.
	mu sync.Mutex
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithArmed starts the orchestrator with record already armed, for a wake
// the platform kept across a restart.
func WithArmed(record domain.Record) Option {
	return func(o *Orchestrator) {
		o.armed = &record
	}
}

// New creates an orchestrator, empty unless WithArmed is given.
func New(s scheduler.Scheduler, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		scheduler: s,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Schedule arms an alarm at fireAt with message.
//
// A fireAt that is not strictly in the future fails with domain.ErrValidation
// before the scheduler is called. A scheduler failure leaves the slot as it was.
func (o *Orchestrator) Schedule(ctx context.Context, fireAt time.Time, message string) (domain.Record, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	// The raw instant is checked; the record rounds it up to the second.
	if now := o.now(); !fireAt.After(now) {
		logger.WarnKV(ctx, "Rejected alarm in the past", "fire_at", fireAt, "now", now)

		return domain.Record{}, fmt.Errorf("%w: %s is not after %s",
			domain.ErrValidation, fireAt.Format(domain.DisplayLayout), now.Format(domain.DisplayLayout))
	}

	record := domain.NewRecord(fireAt, message)

	if err := o.scheduler.Schedule(ctx, record); err != nil {
		return domain.Record{}, fmt.Errorf("schedule alarm: %w", err)
	}

	previous := o.armed
	o.armed = &record

	if previous != nil && previous.Key() != record.Key() {
		if err := o.scheduler.Cancel(ctx, *previous); err != nil {
			logger.ErrorKV(ctx, "Failed to cancel superseded alarm", "alarm", previous.String(), "error", err)
		} else {
			logger.InfoKV(ctx, "Superseded alarm cancelled", "alarm", previous.String())
		}
	}

	logger.InfoKV(ctx, "Alarm armed", "alarm", record.String())

	return record, nil
}

// Cancel disarms the armed alarm. It returns the cancelled record and whether
// one was armed; cancelling an empty slot succeeds and does nothing.
// A scheduler failure keeps the alarm armed.
func (o *Orchestrator) Cancel(ctx context.Context) (domain.Record, bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.armed == nil {
		return domain.Record{}, false, nil
	}

	record := *o.armed

	if err := o.scheduler.Cancel(ctx, record); err != nil {
		return domain.Record{}, false, fmt.Errorf("cancel alarm: %w", err)
	}

	o.armed = nil

	logger.InfoKV(ctx, "Alarm disarmed", "alarm", record.String())

	return record, true, nil
}

// Status returns a snapshot of the slot.
func (o *Orchestrator) Status(context.Context) *domain.State {
	o.mu.Lock()
	defer o.mu.Unlock()

	state := &domain.State{
		Phase: domain.PhaseEmpty,
		Armed: o.armed,
	}

	if o.armed != nil {
		state.Phase = domain.PhaseArmed
	}

	return state.Clone()
}
