package retry

import (
	"context"
	"fmt"
	"time"
)

// Config bounds a retried operation.
type Config struct {
	Attempts  int           // total attempts, including the first
	BaseDelay time.Duration // delay before the second attempt, doubled each retry
}

// Do runs fn until it succeeds, the attempt budget is exhausted, or the
// context is cancelled. The delay between attempts grows exponentially.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}

	var lastErr error
	delay := cfg.BaseDelay

	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		if err := fn(); err != nil {
			lastErr = err

			if attempt == cfg.Attempts {
				return fmt.Errorf("failed after %d attempts: %w", cfg.Attempts, err)
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			continue
		}
		return nil
	}

	return lastErr
}
