package notification

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"
)

var errTestSink = errors.New("test sink error")

// recordingSink remembers published and withdrawn notifications.
type recordingSink struct {
	published []Notification
	withdrawn []int
	err       error
}

func (s *recordingSink) Publish(_ context.Context, n Notification) error {
	s.published = append(s.published, n)
	return s.err
}

func (s *recordingSink) Withdraw(_ context.Context, id int) error {
	s.withdrawn = append(s.withdrawn, id)
	return s.err
}

func alarmNotification(message string) Notification {
	return Notification{
		ID:         AlarmNotificationID,
		ChannelID:  "alarm_channel",
		Title:      "Alarm",
		Message:    message,
		Priority:   PriorityHigh,
		Category:   CategoryAlarm,
		FullScreen: true,
	}
}

// TestCenter_EnsureChannelIsIdempotent registers a channel only once.
func TestCenter_EnsureChannelIsIdempotent(t *testing.T) {
	t.Parallel()

	c := NewCenter()
	ch := Channel{ID: "alarm_channel", Name: "Alarm Notifications", Importance: PriorityHigh}

	require.True(t, c.EnsureChannel(context.Background(), ch))
	require.False(t, c.EnsureChannel(context.Background(), ch))
}

// TestCenter_PostRequiresChannel rejects posts to unknown channels.
func TestCenter_PostRequiresChannel(t *testing.T) {
	t.Parallel()

	c := NewCenter()
	err := c.Post(context.Background(), alarmNotification("Wake up"))
	require.ErrorIs(t, err, ErrChannelMissing)
	require.Empty(t, c.Active())
}

// TestCenter_FixedIDReplaces ensures reposting the same ID does not stack.
func TestCenter_FixedIDReplaces(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sink := &recordingSink{err: errTestSink}
	c := NewCenter(sink)
	c.EnsureChannel(ctx, Channel{ID: "alarm_channel"})

	require.NoError(t, c.Post(ctx, alarmNotification("first")))
	require.NoError(t, c.Post(ctx, alarmNotification("second")))

	active := c.Active()
	require.Len(t, active, 1)
	require.Equal(t, "second", active[0].Message)
	require.False(t, active[0].PostedAt.IsZero())
	require.Len(t, sink.published, 2)

	require.True(t, c.Cancel(ctx, AlarmNotificationID))
	require.False(t, c.Cancel(ctx, AlarmNotificationID))
	require.Empty(t, c.Active())
	require.Equal(t, []int{AlarmNotificationID}, sink.withdrawn)
}

// TestCenter_LaunchFullScreen hands the notification message to the handler.
func TestCenter_LaunchFullScreen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewCenter()
	c.EnsureChannel(ctx, Channel{ID: "alarm_channel"})

	require.ErrorIs(t, c.LaunchFullScreen(ctx, AlarmNotificationID), ErrNotActive)

	require.NoError(t, c.Post(ctx, alarmNotification("Wake up")))
	require.ErrorIs(t, c.LaunchFullScreen(ctx, AlarmNotificationID), ErrNotFullScreen)

	var launched []string

	c.SetFullScreenHandler(func(_ context.Context, message string) error {
		launched = append(launched, message)
		return nil
	})

	require.NoError(t, c.LaunchFullScreen(ctx, AlarmNotificationID))
	require.Equal(t, []string{"Wake up"}, launched)

	plain := alarmNotification("quiet")
	plain.ID = 2
	plain.FullScreen = false
	require.NoError(t, c.Post(ctx, plain))
	require.ErrorIs(t, c.LaunchFullScreen(ctx, 2), ErrNotFullScreen)
}

// TestCommandSink substitutes placeholders and reports failures.
func TestCommandSink(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, NewCommandSink(nil).Publish(context.Background(), Notification{}), errEmptyCommand)

	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true is not available")
	}

	sink := NewCommandSink([]string{"true", "{title}", "{message}"})
	require.NoError(t, sink.Publish(context.Background(), alarmNotification("Wake up")))
	require.NoError(t, sink.Withdraw(context.Background(), AlarmNotificationID))

	sink = NewCommandSink([]string{"false"})
	require.Error(t, sink.Publish(context.Background(), alarmNotification("Wake up")))
}
