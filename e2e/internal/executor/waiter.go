package executor

import (
	"context"
	"time"
)

// WaitUntil sleeps until targetSeconds after start, or until ctx is
// cancelled. Returns immediately when that moment has already
// passed, so back-to-back steps at the same second run without
// drift.
func WaitUntil(ctx context.Context, startTime time.Time, targetSeconds int) error {
	remaining := time.Until(startTime.Add(time.Duration(targetSeconds) * time.Second))
	if remaining <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetElapsed returns elapsed seconds since start
func GetElapsed(startTime time.Time) float64 {
	return time.Since(startTime).Seconds()
}
