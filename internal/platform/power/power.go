// Package power provides the wake guarantee: a bounded hold that keeps the
// machine from suspending while a fired alarm is being handled.
//
// The hold is an OS inhibitor process using common, built-in tools:
//   - Linux: `systemd-inhibit --what=idle:sleep ... sleep <seconds>`
//   - macOS: `caffeinate -dis -t <seconds>`
//
// The process exits by itself when the duration elapses, so a crashed holder
// never leaks the hold. Release kills it earlier.
package power

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/oshokin/alarm-clock/internal/logger"
)

// inhibitReason is shown by the OS for the active hold.
const inhibitReason = "alarm-clock: handling a fired alarm"

// ErrUnsupportedOS indicates the current OS has no known inhibitor tool.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// Releaser ends a hold. Release is safe to call more than once.
type Releaser interface {
	Release()
}

// CommandFunc returns the inhibitor command line for a hold of the given length.
type CommandFunc func(seconds int) (name string, args []string, err error)

// Inhibitor acquires wake holds by starting an inhibitor process.
type Inhibitor struct {
	// command builds the inhibitor command line.
	command CommandFunc
}

// NewInhibitor creates an inhibitor for the current OS.
func NewInhibitor() *Inhibitor {
	return &Inhibitor{command: osCommand}
}

// NewInhibitorWithCommand creates an inhibitor with a custom command line builder.
func NewInhibitorWithCommand(command CommandFunc) *Inhibitor {
	return &Inhibitor{command: command}
}

// Acquire starts a hold bounded by d.
// On an unsupported OS it returns a no-op hold together with ErrUnsupportedOS.
//
//nolint:ireturn // Callers only need Release.
func (i *Inhibitor) Acquire(ctx context.Context, d time.Duration) (Releaser, error) {
	seconds := int(math.Ceil(d.Seconds()))
	if seconds < 1 {
		seconds = 1
	}

	name, args, err := i.command(seconds)
	if err != nil {
		return noopHold{}, err
	}

	// The hold must not end with the caller's context; Release ends it.
	cmd := exec.CommandContext(context.WithoutCancel(ctx), name, args...)
	if err = cmd.Start(); err != nil {
		return noopHold{}, fmt.Errorf("start inhibitor %s: %w", name, err)
	}

	h := &hold{cmd: cmd, done: make(chan struct{})}

	go func() {
		//nolint:errcheck // Exit status of a killed inhibitor is meaningless.
		_ = cmd.Wait()
		close(h.done)
	}()

	logger.DebugKV(ctx, "Wake hold acquired", "pid", cmd.Process.Pid, "seconds", seconds)

	return h, nil
}

// hold is an active inhibitor process.
type hold struct {
	cmd  *exec.Cmd
	done chan struct{}
	once sync.Once
}

// Release kills the inhibitor and waits for it to exit.
func (h *hold) Release() {
	h.once.Do(func() {
		select {
		case <-h.done:
			return
		default:
		}

		//nolint:errcheck // The process may have exited between the check and the kill.
		_ = h.cmd.Process.Kill()
		<-h.done
	})
}

// noopHold is returned when no hold could be taken.
type noopHold struct{}

// Release implements Releaser.
func (noopHold) Release() {}

func osCommand(seconds int) (string, []string, error) {
	duration := strconv.Itoa(seconds)

	switch runtime.GOOS {
	case "linux":
		return "systemd-inhibit", []string{
			"--what=idle:sleep",
			"--who=alarm-clock",
			"--why=" + inhibitReason,
			"--mode=block",
			"sleep", duration,
		}, nil
	case "darwin":
		return "caffeinate", []string{"-dis", "-t", duration}, nil
	default:
		return "", nil, fmt.Errorf("wake hold on %s: %w", runtime.GOOS, ErrUnsupportedOS)
	}
}
