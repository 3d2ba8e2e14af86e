package alarm

import "time"

// Wake is a pending entry of the exact-wake registry.
type Wake struct {
	// Key identifies the wake for dedup and cancellation.
	Key Key
	// At is the instant the wake is delivered.
	At time.Time
	// Message is handed to the receiver on delivery.
	Message string
}

// WakeFor builds the registry entry for a record.
func WakeFor(r Record) Wake {
	return Wake{
		Key:     r.Key(),
		At:      r.FireAt,
		Message: r.Message,
	}
}
