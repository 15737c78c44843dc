// Package retry runs an operation under an explicit, fixed-backoff policy.
package retry

import (
	"context"
	"time"
)

// Policy describes how an operation is retried. The zero value makes a
// single attempt.
type Policy struct {
	MaxAttempts int
	Backoff     time.Duration
	// Retryable decides whether an error is worth another attempt.
	// A nil predicate retries every error.
	Retryable func(error) bool
}

// Default is three attempts with a fixed 100ms pause, retrying everything.
func Default() Policy {
	return Policy{MaxAttempts: 3, Backoff: 100 * time.Millisecond}
}

// WithMaxAttempts returns a copy of p with a different attempt budget.
func (p Policy) WithMaxAttempts(n int) Policy {
	p.MaxAttempts = n
	return p
}

// Do calls fn until it succeeds, the error is not retryable, attempts are
// exhausted, or ctx is done. fn receives the 1-based attempt number. The last
// error is returned unchanged.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx, attempt); err == nil {
			return nil
		}
		if attempt == attempts || !p.retryable(err) {
			return err
		}
		if p.Backoff > 0 {
			timer := time.NewTimer(p.Backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return err
			case <-timer.C:
			}
		} else if ctx.Err() != nil {
			return err
		}
	}
	return err
}

func (p Policy) retryable(err error) bool {
	if p.Retryable == nil {
		return true
	}
	return p.Retryable(err)
}
