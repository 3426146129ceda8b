package common

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RetryPolicy is a bounded exponential backoff: BaseDelay, 2*BaseDelay, 4*BaseDelay...
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy matches the structuring service's rate limits.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 2 * time.Second, MaxDelay: 30 * time.Second}
}

// Delay returns the wait before attempt+1 (attempt is zero-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := p.BaseDelay << attempt
	if p.MaxDelay > 0 && (d > p.MaxDelay || d <= 0) {
		d = p.MaxDelay
	}
	return d
}

// permanentError stops Retry immediately.
type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// Retry runs fn up to MaxAttempts times. onRetry (optional) is called before each wait.
func Retry(ctx context.Context, p RetryPolicy, fn func(attempt int) error, onRetry func(attempt int, delay time.Duration, err error)) error {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	var last error
	for attempt := range p.MaxAttempts {
		err := fn(attempt)
		if err == nil {
			return nil
		}
		last = err
		var perm permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if attempt == p.MaxAttempts-1 {
			break
		}
		delay := p.Delay(attempt)
		if onRetry != nil {
			onRetry(attempt, delay, err)
		}
		if err := SleepCtx(ctx, delay); err != nil {
			return fmt.Errorf("context cancelled during retry: %w", err)
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", p.MaxAttempts, last)
}

// SleepCtx waits for d or until ctx is done.
func SleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
