// Package permission models the runtime capability grants the alarm clock
// depends on and exposes them through a single Gate queried once per operation.
package permission

import (
	"context"
	"fmt"
	"sync"
)

// Permission names a runtime capability.
type Permission string

const (
	// ExactAlarm allows scheduling exact, idle-tolerant wakes.
	ExactAlarm Permission = "exact_alarm"
	// PostNotifications allows posting the alarm notification.
	PostNotifications Permission = "post_notifications"
)

// Outcome is the typed answer of a permission check.
type Outcome int

const (
	// Denied means the capability is not held.
	Denied Outcome = iota
	// Granted means the capability is held.
	Granted
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	if o == Granted {
		return "granted"
	}

	return "denied"
}

// Gate answers permission checks.
type Gate interface {
	Check(ctx context.Context, p Permission) Outcome
}

// Parse converts user input into a known Permission.
func Parse(s string) (Permission, error) {
	switch p := Permission(s); p {
	case ExactAlarm, PostNotifications:
		return p, nil
	default:
		return "", fmt.Errorf("unknown permission %q", s)
	}
}

// Grants is an in-memory Gate whose grants can change at runtime.
// The zero value denies everything.
type Grants struct {
	// granted holds the currently granted capabilities.
	granted map[Permission]bool
	// mu protects granted.
	mu sync.RWMutex
}

// NewGrants returns a Gate granting the provided permissions.
func NewGrants(granted ...Permission) *Grants {
	g := &Grants{granted: make(map[Permission]bool, len(granted))}
	for _, p := range granted {
		g.granted[p] = true
	}

	return g
}

// Check implements Gate.
func (g *Grants) Check(_ context.Context, p Permission) Outcome {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.granted[p] {
		return Granted
	}

	return Denied
}

// Set grants or revokes a permission.
func (g *Grants) Set(p Permission, granted bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.granted == nil {
		g.granted = make(map[Permission]bool)
	}

	g.granted[p] = granted
}

// Snapshot returns the state of every known permission.
func (g *Grants) Snapshot() map[Permission]Outcome {
	g.mu.RLock()
	defer g.mu.RUnlock()

	result := make(map[Permission]Outcome, 2)
	for _, p := range []Permission{ExactAlarm, PostNotifications} {
		result[p] = Denied
		if g.granted[p] {
			result[p] = Granted
		}
	}

	return result
}
