package receiver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/platform/notification"
	"github.com/oshokin/alarm-clock/internal/platform/permission"
	"github.com/oshokin/alarm-clock/internal/platform/power"
	"github.com/oshokin/alarm-clock/internal/platform/screen"
	"github.com/oshokin/alarm-clock/internal/service/delivery"
	"github.com/oshokin/alarm-clock/internal/service/presenter"
)

var errTestAcquire = errors.New("test acquire error")

// fakeHold counts releases.
type fakeHold struct {
	releases int
}

func (h *fakeHold) Release() { h.releases++ }

// fakeLocker hands out fakeHold values.
type fakeLocker struct {
	hold     *fakeHold
	duration time.Duration
	err      error
}

//nolint:ireturn // Mirrors WakeLocker.
func (l *fakeLocker) Acquire(_ context.Context, d time.Duration) (power.Releaser, error) {
	l.duration = d
	if l.err != nil {
		return nil, l.err
	}

	l.hold = new(fakeHold)

	return l.hold, nil
}

// panickingNotifier blows up on Post.
type panickingNotifier struct {
	channels int
}

func (n *panickingNotifier) EnsureChannel(context.Context, notification.Channel) bool {
	n.channels++
	return true
}

func (n *panickingNotifier) Post(context.Context, notification.Notification) error {
	panic("notifier exploded")
}

// memoryScreen is a screen that remembers what it displays.
type memoryScreen struct {
	opens   int
	updates int
	message string
	alive   bool
}

func (s *memoryScreen) Open(_ context.Context, message string) error {
	s.opens++
	s.message = message
	s.alive = true

	return nil
}

func (s *memoryScreen) Update(_ context.Context, message string) error {
	s.updates++
	s.message = message

	return nil
}

func (s *memoryScreen) ApplyFlags(context.Context, []screen.Flag) error { return nil }

func (s *memoryScreen) Alive() bool { return s.alive }

func (s *memoryScreen) Close(context.Context) error {
	s.alive = false
	return nil
}

// harness wires a receiver to real collaborators.
type harness struct {
	receiver  *Receiver
	center    *notification.Center
	presenter *presenter.Presenter
	screen    *memoryScreen
	locker    *fakeLocker
	grants    *permission.Grants
}

func newHarness(backgroundLaunch bool) *harness {
	h := &harness{
		center: notification.NewCenter(),
		screen: new(memoryScreen),
		locker: new(fakeLocker),
		grants: permission.NewGrants(permission.ExactAlarm, permission.PostNotifications),
	}

	h.presenter = presenter.New(h.screen, h.center)
	h.center.SetFullScreenHandler(h.presenter.Show)

	alerts := delivery.New(
		delivery.NewDirectLaunch(h.presenter, backgroundLaunch),
		delivery.NewFullScreenIntent(h.center),
	)

	h.receiver = New(h.locker, h.grants, h.center, alerts, Options{
		Channel:          notification.Channel{ID: "alarm_channel", Name: "Alarm Notifications"},
		WakeLockDuration: time.Minute,
	})

	return h
}

// TestOnReceive_OneNotificationOneAlert posts one notification and opens one surface.
func TestOnReceive_OneNotificationOneAlert(t *testing.T) {
	t.Parallel()

	for _, background := range []bool{true, false} {
		h := newHarness(background)

		h.receiver.OnReceive(context.Background(), "k", "Wake up")

		active := h.center.Active()
		require.Len(t, active, 1)
		require.Equal(t, "Wake up", active[0].Message)
		require.True(t, active[0].FullScreen)
		require.Equal(t, notification.PriorityHigh, active[0].Priority)
		require.Equal(t, notification.CategoryAlarm, active[0].Category)

		snap := h.presenter.Snapshot()
		require.True(t, snap.Open)
		require.Equal(t, "Wake up", snap.Message)
		require.Equal(t, 1, snap.Instances)
		require.Equal(t, 1, h.screen.opens)

		require.Equal(t, time.Minute, h.locker.duration)
		require.Equal(t, 1, h.locker.hold.releases)
	}
}

// TestOnReceive_SecondSignalReplacesMessage keeps one surface across two deliveries.
func TestOnReceive_SecondSignalReplacesMessage(t *testing.T) {
	t.Parallel()

	h := newHarness(true)

	h.receiver.OnReceive(context.Background(), "k1", "Wake up")
	h.receiver.OnReceive(context.Background(), "k2", "Second")

	require.Equal(t, 1, h.screen.opens)
	require.Equal(t, 1, h.screen.updates)
	require.Equal(t, "Second", h.presenter.Snapshot().Message)
	require.Len(t, h.center.Active(), 1)
}

// TestOnReceive_NotificationDenied still opens the surface directly.
func TestOnReceive_NotificationDenied(t *testing.T) {
	t.Parallel()

	h := newHarness(true)
	h.grants.Set(permission.PostNotifications, false)

	h.receiver.OnReceive(context.Background(), "k", "")

	require.Empty(t, h.center.Active())
	require.Equal(t, "Alarm!", h.presenter.Snapshot().Message)
	require.Equal(t, 1, h.locker.hold.releases)
}

// TestOnReceive_NothingDelivers survives a denied notification with restricted launches.
func TestOnReceive_NothingDelivers(t *testing.T) {
	t.Parallel()

	h := newHarness(false)
	h.grants.Set(permission.PostNotifications, false)

	require.NotPanics(t, func() {
		h.receiver.OnReceive(context.Background(), "k", "Wake up")
	})

	require.False(t, h.presenter.Snapshot().Open)
	require.Equal(t, 1, h.locker.hold.releases)
}

// TestOnReceive_PanicReleasesWake releases the hold even when a step panics.
func TestOnReceive_PanicReleasesWake(t *testing.T) {
	t.Parallel()

	locker := new(fakeLocker)
	notifier := new(panickingNotifier)
	s := new(memoryScreen)
	p := presenter.New(s, nil)

	r := New(locker, permission.NewGrants(permission.PostNotifications), notifier,
		delivery.New(delivery.NewDirectLaunch(p, true)), Options{WakeLockDuration: time.Second})

	require.NotPanics(t, func() {
		r.OnReceive(context.Background(), "k", "Wake up")
	})

	require.Equal(t, 1, notifier.channels)
	require.Equal(t, 1, locker.hold.releases)
	require.True(t, p.Snapshot().Open)
}

// TestOnReceive_WakeUnavailable continues without a hold.
func TestOnReceive_WakeUnavailable(t *testing.T) {
	t.Parallel()

	h := newHarness(true)
	h.locker.err = errTestAcquire

	h.receiver.OnReceive(context.Background(), "k", "Wake up")

	require.Len(t, h.center.Active(), 1)
	require.True(t, h.presenter.Snapshot().Open)
}
