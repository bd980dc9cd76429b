// Package retry provides bounded retry with exponential backoff for
// collaborator calls. Retries happen at the collaborator boundary, never
// inside the matching pipeline.
package retry

import (
	"context"
	"time"
)

// Do invokes fn up to attempts times, doubling the delay between attempts.
// It stops early when fn succeeds or the context is done. The last error is
// returned when every attempt fails.
func Do(ctx context.Context, attempts int, baseDelay time.Duration, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	delay := baseDelay
	for i := 0; i < attempts; i++ {
		if err = fn(ctx); err == nil {
			return nil
		}

		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
