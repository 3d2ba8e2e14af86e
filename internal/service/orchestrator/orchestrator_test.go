package orchestrator

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/platform/permission"
	"github.com/oshokin/alarm-clock/internal/platform/wakeup"
	"github.com/oshokin/alarm-clock/internal/service/scheduler"
)

var errTestCancel = errors.New("test cancel error")

// fakeScheduler records calls and can fail on demand.
type fakeScheduler struct {
	scheduled   []domain.Record
	cancelled   []domain.Record
	scheduleErr error
	cancelErr   error
}

func (s *fakeScheduler) Schedule(_ context.Context, r domain.Record) error {
	if s.scheduleErr != nil {
		return s.scheduleErr
	}

	s.scheduled = append(s.scheduled, r)

	return nil
}

func (s *fakeScheduler) Cancel(_ context.Context, r domain.Record) error {
	if s.cancelErr != nil {
		return s.cancelErr
	}

	s.cancelled = append(s.cancelled, r)

	return nil
}

// fixedClock returns a constant time source.
func fixedClock(now time.Time) Option {
	return WithClock(func() time.Time { return now })
}

// TestSchedule_RejectsPast never calls the scheduler for a past or present fire time.
func TestSchedule_RejectsPast(t *testing.T) {
	t.Parallel()

	now := time.Date(2030, time.January, 1, 8, 0, 0, 0, time.Local)
	s := new(fakeScheduler)
	o := New(s, fixedClock(now))

	_, err := o.Schedule(context.Background(), now.Add(-time.Second), "Wake up")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = o.Schedule(context.Background(), now, "Wake up")
	require.ErrorIs(t, err, domain.ErrValidation)

	require.Empty(t, s.scheduled)
	require.Equal(t, domain.PhaseEmpty, o.Status(context.Background()).Phase)
}

// TestSchedule_PermissionDeniedLeavesSlotEmpty keeps the slot when the grant is missing.
func TestSchedule_PermissionDeniedLeavesSlotEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	registry := wakeup.NewRegistry(ctx, nil, nil)
	o := New(scheduler.NewExactScheduler(registry, permission.NewGrants()))

	_, err := o.Schedule(ctx, time.Now().Add(time.Hour), "Wake up")
	require.ErrorIs(t, err, domain.ErrPermissionDenied)

	state := o.Status(ctx)
	require.Equal(t, domain.PhaseEmpty, state.Phase)
	require.Nil(t, state.Armed)
	require.Empty(t, registry.Pending())
}

// TestScheduleCancel_RoundTrip arms and disarms leaving nothing pending.
func TestScheduleCancel_RoundTrip(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := context.Background()
		registry := wakeup.NewRegistry(ctx, nil, nil)
		o := New(scheduler.NewExactScheduler(registry, permission.NewGrants(permission.ExactAlarm)))

		record, err := o.Schedule(ctx, time.Now().Add(time.Hour), "")
		require.NoError(t, err)
		require.Equal(t, domain.DefaultMessage, record.Message)
		require.Len(t, registry.Pending(), 1)

		state := o.Status(ctx)
		require.Equal(t, domain.PhaseArmed, state.Phase)
		require.True(t, state.Armed.Equal(record))

		cancelled, ok, err := o.Cancel(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		require.True(t, cancelled.Equal(record))
		require.Empty(t, registry.Pending())
		require.Equal(t, domain.PhaseEmpty, o.Status(ctx).Phase)

		registry.Close()
	})
}

// TestCancel_EmptyIsNoop succeeds without calling the scheduler.
func TestCancel_EmptyIsNoop(t *testing.T) {
	t.Parallel()

	s := new(fakeScheduler)
	o := New(s)

	_, ok, err := o.Cancel(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, s.cancelled)
}

// TestCancel_FailureKeepsArmed leaves the slot armed when disarming fails.
func TestCancel_FailureKeepsArmed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := new(fakeScheduler)
	o := New(s)

	_, err := o.Schedule(ctx, time.Now().Add(time.Hour), "Wake up")
	require.NoError(t, err)

	s.cancelErr = errTestCancel

	_, _, err = o.Cancel(ctx)
	require.ErrorIs(t, err, errTestCancel)
	require.Equal(t, domain.PhaseArmed, o.Status(ctx).Phase)
}

// TestSchedule_ReplaceCancelsPreviousTimer keeps a single pending wake when rescheduling.
func TestSchedule_ReplaceCancelsPreviousTimer(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := context.Background()
		registry := wakeup.NewRegistry(ctx, nil, nil)
		o := New(scheduler.NewExactScheduler(registry, permission.NewGrants(permission.ExactAlarm)))

		at := time.Now().Add(time.Hour)

		_, err := o.Schedule(ctx, at, "first")
		require.NoError(t, err)

		second, err := o.Schedule(ctx, at, "second")
		require.NoError(t, err)

		pending := registry.Pending()
		require.Len(t, pending, 1)
		require.Equal(t, second.Key(), pending[0].Key)

		// Same content again is a dedup, not a cancel.
		_, err = o.Schedule(ctx, at, "second")
		require.NoError(t, err)
		require.Len(t, registry.Pending(), 1)

		registry.Close()
	})
}

// TestSchedule_SupersedeCancelFailureIsLogged arms the new alarm even if the old one lingers.
func TestSchedule_SupersedeCancelFailureIsLogged(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := new(fakeScheduler)
	o := New(s)

	_, err := o.Schedule(ctx, time.Now().Add(time.Hour), "first")
	require.NoError(t, err)

	s.cancelErr = errTestCancel

	second, err := o.Schedule(ctx, time.Now().Add(2*time.Hour), "second")
	require.NoError(t, err)
	require.True(t, o.Status(ctx).Armed.Equal(second))
}

// TestFiringDoesNotTouchSlot keeps the slot armed after the wake is delivered.
func TestFiringDoesNotTouchSlot(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := context.Background()
		registry := wakeup.NewRegistry(ctx, nil, nil)
		o := New(scheduler.NewExactScheduler(registry, permission.NewGrants(permission.ExactAlarm)))

		_, err := o.Schedule(ctx, time.Now().Add(time.Minute), "Wake up")
		require.NoError(t, err)

		time.Sleep(2 * time.Minute)
		synctest.Wait()

		require.Empty(t, registry.Pending())
		require.Equal(t, domain.PhaseArmed, o.Status(ctx).Phase)

		// Cancelling a fired alarm is still a clean no-op at the platform level.
		_, ok, err := o.Cancel(ctx)
		require.NoError(t, err)
		require.True(t, ok)
	})
}

// TestSchedule_SubSecondFuture accepts a fire time less than a second ahead and
// rounds it up, while a fractional past instant is still rejected.
func TestSchedule_SubSecondFuture(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2030, time.January, 1, 8, 0, 0, 200*int(time.Millisecond), time.Local)
	s := new(fakeScheduler)
	o := New(s, fixedClock(now))

	record, err := o.Schedule(ctx, now.Add(500*time.Millisecond), "soon")
	require.NoError(t, err)
	require.True(t, record.FireAt.Equal(time.Date(2030, time.January, 1, 8, 0, 1, 0, time.Local)))
	require.Len(t, s.scheduled, 1)

	_, err = o.Schedule(ctx, now.Add(-100*time.Millisecond), "late")
	require.ErrorIs(t, err, domain.ErrValidation)
	require.Len(t, s.scheduled, 1)
}

// TestWithArmed_AdoptsRestoredWake cancels a wake armed before a restart and
// supersedes it when a new alarm is scheduled.
func TestWithArmed_AdoptsRestoredWake(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := context.Background()
		registry := wakeup.NewRegistry(ctx, nil, nil)
		gate := permission.NewGrants(permission.ExactAlarm)

		old := domain.NewRecord(time.Now().Add(time.Hour), "old")
		registry.ScheduleExactWake(ctx, old.Key(), old.FireAt, old.Message)

		o := New(scheduler.NewExactScheduler(registry, gate), WithArmed(old))

		state := o.Status(ctx)
		require.Equal(t, domain.PhaseArmed, state.Phase)
		require.True(t, state.Armed.Equal(old))

		fresh, err := o.Schedule(ctx, time.Now().Add(2*time.Hour), "new")
		require.NoError(t, err)

		pending := registry.Pending()
		require.Len(t, pending, 1)
		require.Equal(t, fresh.Key(), pending[0].Key)

		_, ok, err := o.Cancel(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		require.Empty(t, registry.Pending())

		registry.Close()
	})
}
