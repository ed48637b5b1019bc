// Package retry wraps flaky boolean-returning browser actions in a bounded
// retry loop with jittered backoff.
package retry

import (
	"context"
	"math/rand"
	"time"
)

const (
	// baseBackoff is both the fixed floor of the backoff and the span of
	// the random jitter added on top, spreading retries against a flaky
	// UI target.
	baseBackoff = 400 * time.Millisecond
)

// Action reports success as a boolean. An error is not a retryable failure
// signal: it aborts the loop and propagates to the caller unchanged.
type Action func() (bool, error)

// Do calls action up to retries+1 times, returning true on the first
// success. Between failed attempts it sleeps for baseBackoff plus a random
// jitter of up to baseBackoff, honoring context cancellation during the
// wait. It returns false when every attempt fails.
func Do(ctx context.Context, retries int, action Action) (bool, error) {
	if retries < 0 {
		retries = 0
	}

	for attempt := 0; attempt <= retries; attempt++ {
		ok, err := action()
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}

		if attempt == retries {
			break
		}

		jitter := time.Duration(rand.Int63n(int64(baseBackoff) + 1))
		if err := waitFor(ctx, baseBackoff+jitter); err != nil {
			return false, err
		}
	}

	return false, nil
}

var sleep = time.Sleep

func waitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sleep(d)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}
