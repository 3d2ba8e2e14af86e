// Package wakeup implements the exact-wake registry: one-shot timers keyed by
// a content-derived key, delivered to a Receiver on their own goroutine.
//
// The registry keeps at most one pending wake per key. Pending wakes are
// written to a Store after every change and re-armed by Restore, so they
// outlive a daemon restart; overdue wakes are delivered immediately.
//
// Timers measure monotonic time, which stops while the machine is suspended.
// With WithWallClockCheck the registry also compares pending wakes against the
// wall clock and delivers the overdue ones, so a wake is not late by the
// length of a suspend.
package wakeup

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// Receiver is invoked once per delivered wake.
type Receiver interface {
	OnReceive(ctx context.Context, key domain.Key, message string)
}

// Store persists the pending wakes.
type Store interface {
	Load(ctx context.Context) ([]domain.Wake, error)
	Save(ctx context.Context, wakes []domain.Wake) error
}

// ErrNotFound is returned by a Store that has nothing saved yet.
var ErrNotFound = errors.New("no pending wakes saved")

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the wall clock used by the wall clock check and for arming.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithWallClockCheck checks pending wakes against the wall clock every interval.
// A non-positive interval disables the check.
func WithWallClockCheck(interval time.Duration) Option {
	return func(r *Registry) {
		r.checkInterval = interval
	}
}

// entry is one armed timer.
type entry struct {
	wake  domain.Wake
	timer *time.Timer
}

// Registry is the exact-wake registry.
type Registry struct {
	// baseCtx is passed to the receiver on delivery.
	baseCtx context.Context
	// receiver gets every delivered wake.
	receiver Receiver
	// store persists pending wakes, may be nil.
	store Store
	// now reads the wall clock.
	now func() time.Time
	// checkInterval is the wall clock check period, zero when disabled.
	checkInterval time.Duration
	// stop ends the wall clock check.
	stop chan struct{}
	// stopOnce guards closing stop.
	stopOnce sync.Once
	// pending maps keys to armed timers.
	pending map[domain.Key]*entry
	// mu protects pending and serializes store writes.
	mu sync.Mutex
}

// NewRegistry creates an empty registry delivering to receiver.
// baseCtx carries the logger used for deliveries; it is not used for cancellation.
// The wall clock check, when enabled, runs until Close.
func NewRegistry(baseCtx context.Context, receiver Receiver, store Store, opts ...Option) *Registry {
	r := &Registry{
		baseCtx:  context.WithoutCancel(baseCtx),
		receiver: receiver,
		store:    store,
		now:      time.Now,
		stop:     make(chan struct{}),
		pending:  make(map[domain.Key]*entry),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.checkInterval > 0 {
		go r.checkWallClock()
	}

	return r
}

// Restore loads the saved wakes and arms them.
func (r *Registry) Restore(ctx context.Context) error {
	if r.store == nil {
		return nil
	}

	wakes, err := r.store.Load(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		return nil
	default:
		return fmt.Errorf("load pending wakes: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, w := range wakes {
		r.armLocked(w)
	}

	logger.InfoKV(ctx, "Pending wakes restored", "count", len(wakes))

	return nil
}

// ScheduleExactWake arms a wake at the given instant. A pending wake with the
// same key is replaced.
func (r *Registry) ScheduleExactWake(ctx context.Context, key domain.Key, at time.Time, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	replaced := r.stopLocked(key)
	r.armLocked(domain.Wake{Key: key, At: at, Message: message})
	r.persistLocked(ctx)

	logger.DebugKV(ctx, "Exact wake armed", "key", key, "at", at, "replaced", replaced)
}

// Cancel removes the pending wake with the given key.
// It reports whether a wake was removed; a missing key is not an error.
func (r *Registry) Cancel(ctx context.Context, key domain.Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.stopLocked(key) {
		return false
	}

	r.persistLocked(ctx)

	logger.DebugKV(ctx, "Exact wake cancelled", "key", key)

	return true
}

// Pending returns the pending wakes ordered by delivery time.
func (r *Registry) Pending() []domain.Wake {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.snapshotLocked()
}

// Close stops every timer and the wall clock check without forgetting the saved wakes.
func (r *Registry) Close() {
	r.stopOnce.Do(func() {
		close(r.stop)
	})

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.pending {
		e.timer.Stop()
	}

	clear(r.pending)
}

func (r *Registry) armLocked(w domain.Wake) {
	e := &entry{wake: w}
	e.timer = time.AfterFunc(w.At.Sub(r.now()), func() {
		r.deliver(e)
	})
	r.pending[w.Key] = e
}

func (r *Registry) stopLocked(key domain.Key) bool {
	e, ok := r.pending[key]
	if !ok {
		return false
	}

	e.timer.Stop()
	delete(r.pending, key)

	return true
}

// deliver runs on the timer goroutine.
func (r *Registry) deliver(e *entry) {
	r.mu.Lock()

	// The entry may have been replaced or cancelled after the timer fired.
	if current, ok := r.pending[e.wake.Key]; !ok || current != e {
		r.mu.Unlock()
		return
	}

	e.timer.Stop()
	delete(r.pending, e.wake.Key)
	r.persistLocked(r.baseCtx)
	r.mu.Unlock()

	if r.receiver != nil {
		r.receiver.OnReceive(r.baseCtx, e.wake.Key, e.wake.Message)
	}
}

func (r *Registry) checkWallClock() {
	ticker := time.NewTicker(r.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			for _, e := range r.overdue() {
				logger.WarnKV(r.baseCtx, "Exact wake overdue by wall clock", "key", e.wake.Key, "at", e.wake.At)
				go r.deliver(e)
			}
		}
	}
}

// overdue returns the entries whose instant has passed on the wall clock.
func (r *Registry) overdue() []*entry {
	// Round(0) drops the monotonic reading so the comparison uses wall time.
	now := r.now().Round(0)

	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*entry

	for _, e := range r.pending {
		if !now.Before(e.wake.At) {
			result = append(result, e)
		}
	}

	return result
}

func (r *Registry) persistLocked(ctx context.Context) {
	if r.store == nil {
		return
	}

	if err := r.store.Save(ctx, r.snapshotLocked()); err != nil {
		logger.ErrorKV(ctx, "Failed to persist pending wakes", "error", err)
	}
}

func (r *Registry) snapshotLocked() []domain.Wake {
	result := make([]domain.Wake, 0, len(r.pending))
	for _, e := range r.pending {
		result = append(result, e.wake)
	}

	slices.SortFunc(result, func(a, b domain.Wake) int {
		return a.At.Compare(b.At)
	})

	return result
}
