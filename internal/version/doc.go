// Package version reports which alarm-clock build is running.
//
// Both binaries, alarm-daemon and alarm-clock, print the same Version, Commit
// and BuildTime through their `version` subcommand. The values are set with
// -ldflags "-X" at release time and keep development placeholders otherwise.
package version
