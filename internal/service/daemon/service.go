package daemon

import (
	"context"
	"time"

	"github.com/oshokin/alarm-clock/internal/api/grpc/alarmclock"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/platform/permission"
	"github.com/oshokin/alarm-clock/internal/service/orchestrator"
	"github.com/oshokin/alarm-clock/internal/service/presenter"
)

// service adapts the daemon components to the transport.
// It is unexported to keep the transport decoupled from the implementation.
type service struct {
	// orchestrator owns the armed slot.
	orchestrator *orchestrator.Orchestrator
	// presenter owns the alert surface.
	presenter *presenter.Presenter
	// grants are the runtime permission grants.
	grants *permission.Grants
}

// Schedule arms an alarm.
func (s *service) Schedule(ctx context.Context, fireAt time.Time, message string) (domain.Record, error) {
	return s.orchestrator.Schedule(ctx, fireAt, message)
}

// Cancel disarms the current alarm.
func (s *service) Cancel(ctx context.Context) (domain.Record, bool, error) {
	return s.orchestrator.Cancel(ctx)
}

// Status returns the orchestrator state.
func (s *service) Status(ctx context.Context) *domain.State {
	return s.orchestrator.Status(ctx)
}

// Alert describes the surface. Looking at an open surface brings it to the
// foreground, so the device policy flags are applied again.
func (s *service) Alert(ctx context.Context) alarmclock.Alert {
	s.presenter.Resume(ctx)

	snap := s.presenter.Snapshot()

	return alarmclock.Alert{
		Open:         snap.Open,
		Message:      snap.Message,
		ShownAt:      snap.ShownAt,
		Instances:    snap.Instances,
		Redeliveries: snap.Redeliveries,
	}
}

// Dismiss closes the surface.
func (s *service) Dismiss(ctx context.Context) bool {
	return s.presenter.Dismiss(ctx)
}

// Permissions lists the grants.
func (s *service) Permissions(context.Context) map[permission.Permission]permission.Outcome {
	return s.grants.Snapshot()
}

// SetPermission grants or revokes p.
func (s *service) SetPermission(
	ctx context.Context,
	p permission.Permission,
	granted bool,
) map[permission.Permission]permission.Outcome {
	s.grants.Set(p, granted)
	logger.InfoKV(ctx, "Permission changed", "permission", p, "granted", granted)

	return s.grants.Snapshot()
}
