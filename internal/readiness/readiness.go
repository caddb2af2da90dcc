// Package readiness waits for lazily initialized external dependencies.
package readiness

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultInterval is the poll interval used when none is configured.
const DefaultInterval = 50 * time.Millisecond

// Check reports nil once the dependency is ready.
type Check func(ctx context.Context) error

// Wait calls check every interval until it succeeds or ctx ends.
// The returned error wraps the context error together with the last check failure.
func Wait(ctx context.Context, interval time.Duration, check Check) error {
	if interval <= 0 {
		interval = DefaultInterval
	}

	var lastErr error
	operation := func() error {
		lastErr = check(ctx)
		return lastErr
	}

	policy := backoff.WithContext(backoff.NewConstantBackOff(interval), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		if lastErr != nil && lastErr != err {
			return fmt.Errorf("dependency not ready: %w (last error: %v)", err, lastErr)
		}
		return fmt.Errorf("dependency not ready: %w", err)
	}

	return nil
}

// WaitTimeout is Wait bounded by timeout.
func WaitTimeout(ctx context.Context, interval, timeout time.Duration, check Check) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return Wait(ctx, interval, check)
}
