package daemon

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/platform/permission"
	"github.com/oshokin/alarm-clock/internal/platform/wakeup"
	"github.com/oshokin/alarm-clock/internal/repository/wakes"
)

// TestResolveListenAddress covers overrides, configured addresses and errors.
func TestResolveListenAddress(t *testing.T) {
	t.Parallel()

	addr, err := resolveListenAddress("127.0.0.1:50515", "")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:50515", addr)

	addr, err = resolveListenAddress("127.0.0.1:50515", ":9090")
	require.NoError(t, err)
	require.Equal(t, ":9090", addr)

	_, err = resolveListenAddress("", "")
	require.ErrorIs(t, err, ErrNoServerAddress)

	_, err = resolveListenAddress("no-port", "")
	require.Error(t, err)
}

// TestGrantedPermissions maps config switches to grants.
func TestGrantedPermissions(t *testing.T) {
	t.Parallel()

	yes, no := true, false

	require.Empty(t, grantedPermissions(config.Permissions{}))
	require.Equal(t,
		[]permission.Permission{permission.ExactAlarm, permission.PostNotifications},
		grantedPermissions(config.Permissions{ExactAlarm: &yes, PostNotifications: &yes}))
	require.Equal(t,
		[]permission.Permission{permission.PostNotifications},
		grantedPermissions(config.Permissions{ExactAlarm: &no, PostNotifications: &yes}))
}

// TestAssemble_ServiceLifecycle drives the assembled service without a transport.
func TestAssemble_ServiceLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	settings := config.Default()
	settings.StateFile = filepath.Join(t.TempDir(), "state.json")

	app, err := assemble(ctx, settings, new(bytes.Buffer))
	require.NoError(t, err)

	t.Cleanup(app.registry.Close)

	svc := app.service

	record, err := svc.Schedule(ctx, time.Now().Add(time.Hour), "Meeting")
	require.NoError(t, err)
	require.Len(t, app.registry.Pending(), 1)
	require.Equal(t, domain.PhaseArmed, svc.Status(ctx).Phase)

	svc.SetPermission(ctx, permission.ExactAlarm, false)

	_, err = svc.Schedule(ctx, time.Now().Add(2*time.Hour), "Other")
	require.ErrorIs(t, err, domain.ErrPermissionDenied)
	require.True(t, svc.Status(ctx).Armed.Equal(record))

	svc.SetPermission(ctx, permission.ExactAlarm, true)

	cancelled, ok, err := svc.Cancel(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, cancelled.Equal(record))
	require.Empty(t, app.registry.Pending())

	require.False(t, svc.Alert(ctx).Open)
	require.False(t, svc.Dismiss(ctx))
}

// TestAssemble_FireOpensAlert fires a wake through the real pipeline onto a terminal surface.
func TestAssemble_FireOpensAlert(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	settings := config.Default()
	settings.StateFile = filepath.Join(t.TempDir(), "state.json")

	var out syncBuffer

	app, err := assemble(ctx, settings, &out)
	require.NoError(t, err)

	t.Cleanup(app.registry.Close)

	_, err = app.service.Schedule(ctx, time.Now().Add(1100*time.Millisecond), "Take a break")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return app.service.Alert(ctx).Open
	}, 5*time.Second, 20*time.Millisecond)

	alert := app.service.Alert(ctx)
	require.Equal(t, "Take a break", alert.Message)
	require.Equal(t, 1, alert.Instances)
	require.Contains(t, out.String(), "Take a break")

	// Firing leaves the slot armed until it is cancelled.
	require.Equal(t, domain.PhaseArmed, app.service.Status(ctx).Phase)

	require.True(t, app.service.Dismiss(ctx))
	require.False(t, app.service.Alert(ctx).Open)
}

// TestAssemble_AdoptsRestoredWake arms the slot from the saved wake so it can be
// cancelled or superseded after a restart.
func TestAssemble_AdoptsRestoredWake(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	settings := config.Default()
	settings.StateFile = filepath.Join(t.TempDir(), "state.json")

	old := domain.NewRecord(time.Now().Add(time.Hour), "old")
	require.NoError(t, wakes.NewFileRepository(settings.StateFile).Save(ctx, []domain.Wake{domain.WakeFor(old)}))

	app, err := assemble(ctx, settings, new(bytes.Buffer))
	require.NoError(t, err)

	t.Cleanup(app.registry.Close)

	svc := app.service

	state := svc.Status(ctx)
	require.Equal(t, domain.PhaseArmed, state.Phase)
	require.True(t, state.Armed.Equal(old))

	fresh, err := svc.Schedule(ctx, time.Now().Add(2*time.Hour), "new")
	require.NoError(t, err)
	require.Len(t, app.registry.Pending(), 1)
	require.Equal(t, fresh.Key(), app.registry.Pending()[0].Key)

	_, ok, err := svc.Cancel(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, app.registry.Pending())
}

// TestAdoptRestoredWake keeps the earliest wake and cancels the rest.
func TestAdoptRestoredWake(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	registry := wakeup.NewRegistry(ctx, nil, nil)

	t.Cleanup(registry.Close)

	_, ok := adoptRestoredWake(ctx, registry)
	require.False(t, ok)

	first := domain.NewRecord(time.Now().Add(time.Hour), "first")
	second := domain.NewRecord(time.Now().Add(2*time.Hour), "second")

	registry.ScheduleExactWake(ctx, second.Key(), second.FireAt, second.Message)
	registry.ScheduleExactWake(ctx, first.Key(), first.FireAt, first.Message)
	registry.ScheduleExactWake(ctx, "foreign", time.Now().Add(30*time.Minute), "not ours")

	adopted, ok := adoptRestoredWake(ctx, registry)
	require.True(t, ok)
	require.True(t, adopted.Equal(first))

	pending := registry.Pending()
	require.Len(t, pending, 1)
	require.Equal(t, first.Key(), pending[0].Key)
}
