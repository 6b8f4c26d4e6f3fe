package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
)

// RetryPolicy decides how long to wait before the next attempt and whether
// an error is worth another attempt. Attempts are numbered from 1.
type RetryPolicy interface {
	NextDelay(attempt int) time.Duration
	ShouldRetry(err error, attempt int) bool
}

// LinearBackoffPolicy waits BaseDelay * attempt between attempts. This is
// the dispatcher's policy: attempt 1 waits one base delay, attempt 2 two,
// and so on, capped at MaxDelay when set.
type LinearBackoffPolicy struct {
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxAttempts int
	RetryIf     func(error) bool
}

// NextDelay calculates the wait after the given attempt.
func (p *LinearBackoffPolicy) NextDelay(attempt int) time.Duration {
	delay := p.BaseDelay * time.Duration(attempt)
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// ShouldRetry reports whether another attempt is allowed.
func (p *LinearBackoffPolicy) ShouldRetry(err error, attempt int) bool {
	if attempt >= p.MaxAttempts {
		return false
	}
	if p.RetryIf != nil {
		return p.RetryIf(err)
	}
	return IsRetryable(err)
}

// IsRetryable is the default retry predicate: everything except context
// cancellation is retried.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// ErrMaxRetriesExceeded is returned when every attempt failed with a
// retryable error.
type ErrMaxRetriesExceeded struct {
	Attempts int
	LastErr  error
}

func (e ErrMaxRetriesExceeded) Error() string {
	if e.LastErr != nil {
		return "max retries exceeded: " + e.LastErr.Error()
	}
	return "max retries exceeded"
}

func (e ErrMaxRetriesExceeded) Unwrap() error {
	return e.LastErr
}

// RetryWithPolicy executes fn until it succeeds, the policy stops the loop,
// or the context ends. The clock indirection keeps backoff observable in
// tests without real sleeps.
func RetryWithPolicy(ctx context.Context, clock clockwork.Clock, policy RetryPolicy, fn func() error) error {
	var lastErr error

	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			if !policy.ShouldRetry(err, attempt) {
				if !IsRetryable(err) || ctx.Err() != nil {
					return err
				}
				return ErrMaxRetriesExceeded{Attempts: attempt, LastErr: lastErr}
			}
		}

		if err := Sleep(ctx, clock, policy.NextDelay(attempt)); err != nil {
			return err
		}
	}
}

// Sleep waits for d, returning early if the context ends first.
func Sleep(ctx context.Context, clock clockwork.Clock, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-clock.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
