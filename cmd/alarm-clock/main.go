// Command alarm-clock schedules, cancels and stops alarms on the alarm daemon.
package main

import "github.com/oshokin/alarm-clock/cmd/alarm-clock/cmd"

func main() {
	cmd.Execute()
}
