package pipeline

import (
	"context"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"
)

// initialRetryBackoff is the first retry delay after a failed run. It doubles
// on each consecutive failure, capped at the run interval.
const initialRetryBackoff = 30 * time.Second

// Run executes RunOnce immediately and then every interval until the context
// is cancelled. Failed runs are retried with exponential backoff.
func (r *Runner) Run(ctx context.Context, interval time.Duration) error {
	r.logger.Info("scheduler started", "interval", interval, "triggered_by", r.runCtx.Actor)
	r.metrics.SchedulerRunning.Set(1)
	defer r.metrics.SchedulerRunning.Set(0)

	backoff := initialRetryBackoff
	for {
		wait := interval
		if _, err := r.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				r.logger.Info("scheduler stopping", "reason", ctx.Err())
				return nil
			}
			wait = min(backoff, interval)
			backoff = retry.NextBackoff(backoff, interval)
			r.logger.Info("retrying run", "after", wait)
		} else {
			backoff = initialRetryBackoff
		}

		if !sleepWithContext(ctx, r.runCtx.Clock, wait) {
			r.logger.Info("scheduler stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// sleepWithContext mirrors retry.SleepWithContext on an injectable clock.
func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
