package client

import (
	"context"
	"fmt"
	"log"
	"time"
)

// RetryOptions configures WithRetry.
type RetryOptions struct {
	MaxAttempts int           // default 3
	Delay       time.Duration // base delay, grows linearly per attempt; default 1s
	Context     string        // label used in logs
}

// WithRetry runs fn up to MaxAttempts times, waiting Delay*attempt between
// attempts. It is an opt-in helper for flaky calls, not mandatory transport
// infrastructure; nothing in the client retries implicitly.
func WithRetry[T any](ctx context.Context, fn func() (T, error), opts RetryOptions) (T, error) {
	var zero T

	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	delay := opts.Delay
	if delay <= 0 {
		delay = time.Second
	}
	label := opts.Context
	if label == "" {
		label = "operation"
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			if attempt > 1 {
				log.Printf("[Client] %s succeeded on attempt %d", label, attempt)
			}
			return result, nil
		}
		lastErr = err
		log.Printf("[Client] %s attempt %d/%d failed: %v", label, attempt, maxAttempts, err)

		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay * time.Duration(attempt)):
		}
	}
	return zero, fmt.Errorf("%s failed after %d attempts: %w", label, maxAttempts, lastErr)
}
