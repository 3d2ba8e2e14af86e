// Command alarm-daemon keeps the exact-wake registry and shows fired alarms.
package main

import "github.com/oshokin/alarm-clock/cmd/alarm-daemon/cmd"

func main() {
	cmd.Execute()
}
