// Package alarm contains the core domain types of the alarm clock.
//
// It defines Record (one scheduled wake-up: a fire time and a message), the
// content-derived Key used by the wake registry for dedup and cancellation,
// the armed-slot snapshot State, and the error taxonomy shared by every layer.
package alarm
