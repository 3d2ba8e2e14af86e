package screen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/alarm-clock/internal/logger"
)

// initProcessID adopts processes whose parent died.
const initProcessID = 1

// errEmptyCommand is returned when the viewer command is not configured.
var errEmptyCommand = errors.New("alert viewer command is empty")

// Command draws the alert with an external viewer program.
// The placeholder {message} is substituted in each argument. Updating the
// message restarts the viewer so only one instance is ever running.
type Command struct {
	// argv is the viewer command template.
	argv []string
	// reapOrphans kills orphaned viewers before opening a new one.
	reapOrphans bool
	// process is the running viewer, nil when closed.
	process *os.Process
	// exited is closed when the running viewer exits.
	exited chan struct{}
	// mu protects process and exited.
	mu sync.Mutex
}

// CommandOption configures a Command screen.
type CommandOption func(*Command)

// WithOrphanReaping kills viewers orphaned by an earlier daemon before opening.
func WithOrphanReaping() CommandOption {
	return func(c *Command) {
		c.reapOrphans = true
	}
}

// NewCommand creates a viewer screen for the command template.
func NewCommand(argv []string, opts ...CommandOption) *Command {
	c := &Command{argv: slices.Clone(argv)}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Open implements Screen.
func (c *Command) Open(ctx context.Context, message string) error {
	if len(c.argv) == 0 {
		return errEmptyCommand
	}

	if c.reapOrphans {
		if err := terminateOrphanedViewers(filepath.Base(c.argv[0])); err != nil {
			logger.WarnKV(ctx, "Failed to terminate orphaned alert viewers", "error", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.startLocked(ctx, message)
}

// Update implements Screen.
func (c *Command) Update(ctx context.Context, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	return c.startLocked(ctx, message)
}

// ApplyFlags implements Screen. External viewers manage their own window
// policy, so the flags are only logged.
func (c *Command) ApplyFlags(ctx context.Context, flags []Flag) error {
	logger.DebugKV(ctx, "Alert viewer policy", "flags", flags)

	return nil
}

// Alive implements Screen.
func (c *Command) Alive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.process == nil {
		return false
	}

	select {
	case <-c.exited:
		return false
	default:
	}

	p, err := ps.FindProcess(c.process.Pid)

	return err == nil && p != nil
}

// Close implements Screen.
func (c *Command) Close(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	return nil
}

func (c *Command) startLocked(ctx context.Context, message string) error {
	args := make([]string, 0, len(c.argv)-1)
	for _, arg := range c.argv[1:] {
		args = append(args, strings.ReplaceAll(arg, "{message}", message))
	}

	// The viewer outlives the request that opened it.
	//nolint:gosec // The command comes from the operator's own settings file.
	cmd := exec.CommandContext(context.WithoutCancel(ctx), c.argv[0], args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start alert viewer %s: %w", c.argv[0], err)
	}

	exited := make(chan struct{})

	go func() {
		//nolint:errcheck // The viewer's exit status carries no information.
		_ = cmd.Wait()
		close(exited)
	}()

	c.process = cmd.Process
	c.exited = exited

	return nil
}

func (c *Command) stopLocked() {
	if c.process == nil {
		return
	}

	select {
	case <-c.exited:
	default:
		//nolint:errcheck // The viewer may have exited on its own.
		_ = c.process.Kill()
		<-c.exited
	}

	c.process = nil
	c.exited = nil
}

// terminateOrphanedViewers kills processes with the viewer's executable name
// whose parent died and that were re-parented to init.
func terminateOrphanedViewers(executable string) error {
	processList, err := ps.Processes()
	if err != nil {
		return err
	}

	for _, process := range processList {
		if process.PPid() != initProcessID || process.Executable() != executable {
			continue
		}

		runningProcess, err := os.FindProcess(process.Pid())
		if err != nil {
			return err
		}

		if err = runningProcess.Kill(); err != nil {
			return err
		}
	}

	return nil
}
