package notification

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"slices"
	"strings"
)

// errEmptyCommand is returned when a command sink has no program.
var errEmptyCommand = errors.New("notification command is empty")

// CommandSink runs a desktop notifier (for example notify-send) for every post.
// The placeholders {title} and {message} are substituted in each argument.
type CommandSink struct {
	// argv is the command template.
	argv []string
}

// NewCommandSink creates a sink for the command template.
func NewCommandSink(argv []string) *CommandSink {
	return &CommandSink{argv: slices.Clone(argv)}
}

// Publish runs the notifier and waits for it to exit.
func (s *CommandSink) Publish(ctx context.Context, n Notification) error {
	if len(s.argv) == 0 {
		return errEmptyCommand
	}

	replacer := strings.NewReplacer("{title}", n.Title, "{message}", n.Message)

	args := make([]string, 0, len(s.argv)-1)
	for _, arg := range s.argv[1:] {
		args = append(args, replacer.Replace(arg))
	}

	//nolint:gosec // The command comes from the operator's own settings file.
	output, err := exec.CommandContext(ctx, s.argv[0], args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("run %s: %w: %s", s.argv[0], err, strings.TrimSpace(string(output)))
	}

	return nil
}

// Withdraw is a no-op: desktop notifiers expire on their own.
func (s *CommandSink) Withdraw(context.Context, int) error {
	return nil
}
