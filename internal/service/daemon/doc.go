// Package daemon runs the alarm-clock daemon.
//
// The daemon plays the part of the device: it owns the exact-wake registry,
// the permission grants, the notification center and the alert surface, and it
// hosts the orchestrator so the armed slot outlives individual CLI calls. All
// of it is exposed over gRPC.
package daemon
