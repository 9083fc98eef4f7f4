package services

import (
	"context"
	"fmt"
	"time"

	"sentiment-edge/observability"
)

// RetryConfig controls WithRetry's attempt count and backoff schedule.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

var DefaultRetryConfig = RetryConfig{
	MaxRetries:     3,
	InitialBackoff: 100 * time.Millisecond,
	MaxBackoff:     5 * time.Second,
}

// WithRetry calls fn up to MaxRetries+1 times with doubling backoff
// between attempts, capped at MaxBackoff. Context cancellation during a
// backoff wait aborts immediately. The last error is wrapped so callers
// can still classify it with errors.Is.
func WithRetry(ctx context.Context, config RetryConfig, fn func() error) error {
	backoff := config.InitialBackoff

	var lastErr error
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == config.MaxRetries {
			break
		}
		observability.Warn("retry attempt failed",
			"attempt", attempt+1,
			"max_retries", config.MaxRetries,
			"error", err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, config.MaxBackoff)
	}

	return fmt.Errorf("failed after %d retries: %w", config.MaxRetries, lastErr)
}
