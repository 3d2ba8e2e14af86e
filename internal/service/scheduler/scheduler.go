package scheduler

import (
	"context"
	"fmt"
	"time"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/platform/permission"
)

// Scheduler arms and disarms alarms.
type Scheduler interface {
	Schedule(ctx context.Context, record domain.Record) error
	Cancel(ctx context.Context, record domain.Record) error
}

// Registry is the exact-wake facility the scheduler drives.
type Registry interface {
	ScheduleExactWake(ctx context.Context, key domain.Key, at time.Time, message string)
	Cancel(ctx context.Context, key domain.Key) bool
}

// ExactScheduler schedules idle-tolerant exact wakes.
type ExactScheduler struct {
	// registry holds the pending wakes.
	registry Registry
	// gate answers the exact-alarm permission check.
	gate permission.Gate
}

// NewExactScheduler creates a scheduler over the registry guarded by gate.
func NewExactScheduler(registry Registry, gate permission.Gate) *ExactScheduler {
	return &ExactScheduler{
		registry: registry,
		gate:     gate,
	}
}

// Schedule arms a wake at record.FireAt carrying record.Message.
// A pending wake for the same record is replaced.
func (s *ExactScheduler) Schedule(ctx context.Context, record domain.Record) error {
	logger.DebugKV(ctx, "Scheduling alarm", "message", record.Message, "fire_at", record.FireAt)

	if err := s.authorize(ctx); err != nil {
		logger.ErrorKV(ctx, "Exact alarms are not allowed", "error", err)
		return err
	}

	key := record.Key()
	s.registry.ScheduleExactWake(ctx, key, record.FireAt, record.Message)

	logger.InfoKV(ctx, "Alarm scheduled", "key", key, "fire_at", record.FireAt)

	return nil
}

// Cancel removes the pending wake for record. A record that is not pending
// is not an error.
func (s *ExactScheduler) Cancel(ctx context.Context, record domain.Record) error {
	logger.DebugKV(ctx, "Cancelling alarm", "message", record.Message)

	if err := s.authorize(ctx); err != nil {
		logger.ErrorKV(ctx, "Failed to cancel alarm", "error", err)
		return err
	}

	key := record.Key()
	removed := s.registry.Cancel(ctx, key)

	logger.InfoKV(ctx, "Alarm cancelled", "key", key, "was_pending", removed)

	return nil
}

func (s *ExactScheduler) authorize(ctx context.Context) error {
	if s.gate.Check(ctx, permission.ExactAlarm) != permission.Granted {
		return fmt.Errorf("%w: %s", domain.ErrPermissionDenied, permission.ExactAlarm)
	}

	return nil
}
