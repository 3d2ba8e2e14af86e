package screen

import (
	"bytes"
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestTerminal_Lifecycle checks banners, flags, and idempotent close.
func TestTerminal_Lifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	var out bytes.Buffer

	s := NewTerminal(&out)
	require.False(t, s.Alive())

	require.NoError(t, s.Open(ctx, "Wake up"))
	require.True(t, s.Alive())
	require.NoError(t, s.ApplyFlags(ctx, AlarmFlags()))
	require.NoError(t, s.Update(ctx, "Still sleeping?"))

	require.NoError(t, s.Close(ctx))
	require.NoError(t, s.Close(ctx))
	require.False(t, s.Alive())

	text := out.String()
	require.Contains(t, text, "Wake up")
	require.Contains(t, text, "Still sleeping?")
	require.Contains(t, text, string(ShowWhenLocked))
	require.Contains(t, text, string(KeepScreenOn))
	require.Equal(t, 1, bytes.Count(out.Bytes(), []byte("dismissed")))
}

// TestCommand_SingleViewer restarts the viewer on update and stops it on close.
func TestCommand_SingleViewer(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep is not available")
	}

	ctx := context.Background()
	s := NewCommand([]string{"sleep", "30"})

	require.NoError(t, s.Open(ctx, "Wake up"))
	require.True(t, s.Alive())

	first := s.process.Pid

	require.NoError(t, s.Update(ctx, "Again"))
	require.True(t, s.Alive())
	require.NotEqual(t, first, s.process.Pid)

	require.NoError(t, s.ApplyFlags(ctx, AlarmFlags()))
	require.NoError(t, s.Close(ctx))
	require.False(t, s.Alive())
}

// TestCommand_ViewerExitClosesSurface reports a viewer closed by the user as not alive.
func TestCommand_ViewerExitClosesSurface(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true is not available")
	}

	s := NewCommand([]string{"true", "{message}"})
	require.NoError(t, s.Open(context.Background(), "Wake up"))

	require.Eventually(t, func() bool { return !s.Alive() }, 5*time.Second, 10*time.Millisecond)
}

// TestCommand_Empty rejects an unconfigured viewer.
func TestCommand_Empty(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, NewCommand(nil).Open(context.Background(), "x"), errEmptyCommand)
}
