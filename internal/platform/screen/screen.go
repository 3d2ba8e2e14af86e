// Package screen provides the backends the alert presenter draws on.
//
// Terminal writes the alert to the daemon's console. Command starts an
// external viewer program and keeps at most one instance of it running.
package screen

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Flag is a device policy applied to the alert surface.
type Flag string

const (
	// ShowWhenLocked keeps the surface visible above the lock screen.
	ShowWhenLocked Flag = "show_when_locked"
	// DismissKeyguard asks the OS to drop the keyguard.
	DismissKeyguard Flag = "dismiss_keyguard"
	// TurnScreenOn wakes the display.
	TurnScreenOn Flag = "turn_screen_on"
	// KeepScreenOn prevents the display from dimming.
	KeepScreenOn Flag = "keep_screen_on"
)

// AlarmFlags are the policies every alarm surface needs.
func AlarmFlags() []Flag {
	return []Flag{ShowWhenLocked, DismissKeyguard, TurnScreenOn, KeepScreenOn}
}

// Screen draws the alert surface.
type Screen interface {
	// Open shows a new surface with the message.
	Open(ctx context.Context, message string) error
	// Update replaces the message of the open surface.
	Update(ctx context.Context, message string) error
	// ApplyFlags applies device policies to the open surface.
	ApplyFlags(ctx context.Context, flags []Flag) error
	// Alive reports whether the surface is still shown.
	Alive() bool
	// Close hides the surface.
	Close(ctx context.Context) error
}

// Terminal draws the alert as a banner on a writer.
type Terminal struct {
	// out receives the banners.
	out io.Writer
	// open is true between Open and Close.
	open bool
	// mu serializes writes.
	mu sync.Mutex
}

// NewTerminal creates a terminal screen writing to out.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

// Open implements Screen.
func (t *Terminal) Open(_ context.Context, message string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.open = true

	return t.banner(message)
}

// Update implements Screen.
func (t *Terminal) Update(_ context.Context, message string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.banner(message)
}

// ApplyFlags implements Screen.
func (t *Terminal) ApplyFlags(_ context.Context, flags []Flag) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	names := make([]string, 0, len(flags))
	for _, f := range flags {
		names = append(names, string(f))
	}

	_, err := fmt.Fprintf(t.out, "[alert] policy: %s\n", strings.Join(names, ", "))

	return err
}

// Alive implements Screen.
func (t *Terminal) Alive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.open
}

// Close implements Screen.
func (t *Terminal) Close(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.open {
		return nil
	}

	t.open = false

	_, err := fmt.Fprintln(t.out, "[alert] dismissed")

	return err
}

func (t *Terminal) banner(message string) error {
	line := strings.Repeat("*", 40)

	_, err := fmt.Fprintf(t.out, "%s\n  ALARM!  %s\n  %s\n  run `alarm-clock dismiss` to stop\n%s\n",
		line, time.Now().Format("15:04"), message, line)

	return err
}
