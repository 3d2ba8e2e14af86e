package notification

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/oshokin/alarm-clock/internal/logger"
)

// AlarmNotificationID is the fixed identifier shared by every alarm notification.
const AlarmNotificationID = 1

// Priority orders notifications by how intrusive they may be.
type Priority int

const (
	// PriorityDefault is a regular notification.
	PriorityDefault Priority = iota
	// PriorityHigh interrupts the user with sound and a heads-up display.
	PriorityHigh
)

// CategoryAlarm marks notifications raised by an alarm clock.
const CategoryAlarm = "alarm"

// Channel groups notifications that share behavior.
type Channel struct {
	// ID identifies the channel.
	ID string
	// Name is the visible channel name.
	Name string
	// Importance is applied to every notification of the channel.
	Importance Priority
}

// Notification is one posted notification.
type Notification struct {
	// ID identifies the notification; reposting an ID replaces it.
	ID int
	// ChannelID must reference a registered channel.
	ChannelID string
	// Title is the notification headline.
	Title string
	// Message is the notification body.
	Message string
	// Priority controls intrusiveness.
	Priority Priority
	// Category describes the notification purpose.
	Category string
	// FullScreen allows the center to launch the alert surface for this notification.
	FullScreen bool
	// PostedAt is set by the center.
	PostedAt time.Time
}

// FullScreenHandler opens the alert surface for a full-screen notification.
type FullScreenHandler func(ctx context.Context, message string) error

// Sink mirrors posted notifications somewhere visible to the user.
type Sink interface {
	Publish(ctx context.Context, n Notification) error
	Withdraw(ctx context.Context, id int) error
}

var (
	// ErrChannelMissing is returned when posting to an unregistered channel.
	ErrChannelMissing = errors.New("notification channel is not registered")
	// ErrNotActive is returned when no notification with the ID is active.
	ErrNotActive = errors.New("notification is not active")
	// ErrNotFullScreen is returned when the notification has no full-screen launch.
	ErrNotFullScreen = errors.New("notification has no full-screen launch")
)

// Center keeps registered channels and active notifications.
type Center struct {
	// fullScreen opens the alert surface for full-screen notifications.
	fullScreen FullScreenHandler
	// channels are the registered channels.
	channels map[string]Channel
	// active are the currently shown notifications.
	active map[int]Notification
	// sinks receive every post and cancel.
	sinks []Sink
	// mu protects the maps and fullScreen.
	mu sync.RWMutex
}

// NewCenter creates a center mirroring to the provided sinks.
func NewCenter(sinks ...Sink) *Center {
	return &Center{
		channels: make(map[string]Channel),
		active:   make(map[int]Notification),
		sinks:    sinks,
	}
}

// SetFullScreenHandler wires the alert surface launcher.
func (c *Center) SetFullScreenHandler(h FullScreenHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fullScreen = h
}

// EnsureChannel registers ch unless a channel with the same ID exists.
// It reports whether the channel was created.
func (c *Center) EnsureChannel(ctx context.Context, ch Channel) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.channels[ch.ID]; ok {
		return false
	}

	c.channels[ch.ID] = ch

	logger.DebugKV(ctx, "Notification channel registered", "channel_id", ch.ID, "name", ch.Name)

	return true
}

// Post shows n, replacing any active notification with the same ID.
// Sink failures are logged; the notification stays active.
func (c *Center) Post(ctx context.Context, n Notification) error {
	c.mu.Lock()

	if _, ok := c.channels[n.ChannelID]; !ok {
		c.mu.Unlock()
		return fmt.Errorf("post notification %d to %q: %w", n.ID, n.ChannelID, ErrChannelMissing)
	}

	n.PostedAt = time.Now()
	c.active[n.ID] = n
	c.mu.Unlock()

	logger.InfoKV(ctx, "Notification posted", "id", n.ID, "message", n.Message, "full_screen", n.FullScreen)

	for _, sink := range c.sinks {
		if err := sink.Publish(ctx, n); err != nil {
			logger.WarnKV(ctx, "Notification sink failed", "id", n.ID, "error", err)
		}
	}

	return nil
}

// Cancel removes the active notification with the given ID.
// It reports whether a notification was removed.
func (c *Center) Cancel(ctx context.Context, id int) bool {
	c.mu.Lock()

	_, ok := c.active[id]
	delete(c.active, id)
	c.mu.Unlock()

	if !ok {
		return false
	}

	for _, sink := range c.sinks {
		if err := sink.Withdraw(ctx, id); err != nil {
			logger.WarnKV(ctx, "Notification sink failed to withdraw", "id", id, "error", err)
		}
	}

	logger.DebugKV(ctx, "Notification cancelled", "id", id)

	return true
}

// LaunchFullScreen opens the alert surface for the active notification with the given ID.
func (c *Center) LaunchFullScreen(ctx context.Context, id int) error {
	c.mu.RLock()
	n, ok := c.active[id]
	handler := c.fullScreen
	c.mu.RUnlock()

	switch {
	case !ok:
		return fmt.Errorf("full-screen launch of %d: %w", id, ErrNotActive)
	case !n.FullScreen || handler == nil:
		return fmt.Errorf("full-screen launch of %d: %w", id, ErrNotFullScreen)
	}

	return handler(ctx, n.Message)
}

// Active returns the active notifications ordered by ID.
func (c *Center) Active() []Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]Notification, 0, len(c.active))
	for _, n := range c.active {
		result = append(result, n)
	}

	slices.SortFunc(result, func(a, b Notification) int {
		return a.ID - b.ID
	})

	return result
}
