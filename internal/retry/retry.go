package retry

import (
	"context"
	"errors"
	"time"

	"fitify/internal/db"
)

// DefaultAttempts bounds blind retries of version-conflicted operations.
// Unbounded retries risk live-lock under contention.
const DefaultAttempts = 3

const backoffStep = 25 * time.Millisecond

// Do runs fn until it succeeds, fails with a non-retryable error, or the
// attempt budget runs out. Only db.ErrVersionConflict is retried; each retry
// re-executes the whole operation from a fresh read.
func Do(ctx context.Context, attempts int, fn func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * backoffStep):
			}
		}

		err = fn(ctx)
		if err == nil || !errors.Is(err, db.ErrVersionConflict) {
			return err
		}
	}

	return err
}
