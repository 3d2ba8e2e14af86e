package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the alarm-clock release. Set with -ldflags "-X".
	Version = "0.1.0-dev"
	// Commit is the source revision of the build, "unknown" for local builds.
	Commit = "unknown"
	// BuildTime is when the binary was built, "unknown" for local builds.
	BuildTime = "unknown"
)

// Short returns only the release string.
func Short() string {
	return Version
}

// Full returns the release with its revision, build time and Go runtime.
func Full() string {
	return fmt.Sprintf("alarm-clock %s (commit %s, built %s, %s %s/%s)",
		Version, Commit, BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
