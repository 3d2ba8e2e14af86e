package clock

import (
	"context"
	"time"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// DefaultWatchInterval is the polling interval of Watch.
const DefaultWatchInterval = 2 * time.Second

// Watch polls the alert surface and prints every alarm that starts firing
// until ctx is cancelled. Poll failures are logged and polling continues.
func (a *App) Watch(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}

	logger.InfoKV(ctx, "Watching for alarms", "interval", interval.String())

	if err := a.printf("Waiting for alarms...\n"); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var seen time.Time

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")
			return nil
		case <-ticker.C:
			alert, err := a.daemon.Alert(ctx)
			if err != nil {
				logger.ErrorKV(ctx, "Check alert failed", "error", err)
				continue
			}

			if !alert.Open || alert.ShownAt.Equal(seen) {
				continue
			}

			seen = alert.ShownAt

			if err := a.printf("ALARM at %s: %s\n",
				alert.ShownAt.Local().Format(domain.DisplayLayout), alert.Message); err != nil {
				return err
			}
		}
	}
}
