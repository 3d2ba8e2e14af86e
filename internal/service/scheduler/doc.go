// Package scheduler implements the alarm scheduler on top of the exact-wake
// registry. Every operation asks the permission gate for the exact-alarm
// capability first and does nothing when it is denied.
package scheduler
