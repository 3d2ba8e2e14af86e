package version

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// TestFull_IncludesBuildDetails checks the release line shows the release and runtime.
func TestFull_IncludesBuildDetails(t *testing.T) {
	t.Parallel()

	full := Full()
	require.Contains(t, full, "alarm-clock "+Short())
	require.Contains(t, full, runtime.GOOS+"/"+runtime.GOARCH)
}

// TestAttachCobraVersionCommand runs the subcommand on a throwaway root.
func TestAttachCobraVersionCommand(t *testing.T) {
	t.Parallel()

	root := &cobra.Command{Use: "alarm-clock"}
	AttachCobraVersionCommand(root)

	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	require.Equal(t, Full()+"\n", out.String())
}
