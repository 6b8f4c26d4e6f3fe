package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestLinearBackoffNextDelay(t *testing.T) {
	policy := &LinearBackoffPolicy{BaseDelay: time.Second, MaxAttempts: 5}

	for attempt := 1; attempt <= 4; attempt++ {
		want := time.Duration(attempt) * time.Second
		if got := policy.NextDelay(attempt); got != want {
			t.Errorf("NextDelay(%d) = %v, want %v", attempt, got, want)
		}
	}
}

func TestLinearBackoffMaxDelayCap(t *testing.T) {
	policy := &LinearBackoffPolicy{BaseDelay: time.Second, MaxDelay: 2 * time.Second, MaxAttempts: 10}

	if got := policy.NextDelay(5); got != 2*time.Second {
		t.Errorf("NextDelay(5) = %v, want the 2s cap", got)
	}
	if got := policy.NextDelay(1); got != time.Second {
		t.Errorf("NextDelay(1) = %v, want 1s", got)
	}
}

func TestLinearBackoffShouldRetry(t *testing.T) {
	policy := &LinearBackoffPolicy{BaseDelay: time.Second, MaxAttempts: 3}
	err := errors.New("boom")

	if !policy.ShouldRetry(err, 1) || !policy.ShouldRetry(err, 2) {
		t.Error("attempts below the ceiling should retry")
	}
	if policy.ShouldRetry(err, 3) {
		t.Error("the final attempt must not retry")
	}
	if policy.ShouldRetry(context.Canceled, 1) {
		t.Error("cancellation is never retried")
	}
}

func TestShouldRetryCustomPredicate(t *testing.T) {
	sentinel := errors.New("retry me")
	policy := &LinearBackoffPolicy{
		BaseDelay:   time.Second,
		MaxAttempts: 5,
		RetryIf:     func(err error) bool { return errors.Is(err, sentinel) },
	}

	if !policy.ShouldRetry(sentinel, 1) {
		t.Error("predicate match should retry")
	}
	if policy.ShouldRetry(errors.New("other"), 1) {
		t.Error("predicate miss should not retry")
	}
}

func TestRetryWithPolicySucceedsEventually(t *testing.T) {
	clock := clockwork.NewFakeClock()
	policy := &LinearBackoffPolicy{BaseDelay: time.Second, MaxAttempts: 5}

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- RetryWithPolicy(context.Background(), clock, policy, func() error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})
	}()

	for i := 1; i <= 2; i++ {
		clock.BlockUntil(1)
		clock.Advance(time.Duration(i) * time.Second)
	}

	if err := <-done; err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetryWithPolicyExhaustsAttempts(t *testing.T) {
	clock := clockwork.NewFakeClock()
	policy := &LinearBackoffPolicy{BaseDelay: time.Second, MaxAttempts: 3}

	calls := 0
	boom := errors.New("boom")
	done := make(chan error, 1)
	go func() {
		done <- RetryWithPolicy(context.Background(), clock, policy, func() error {
			calls++
			return boom
		})
	}()

	for i := 1; i <= 2; i++ {
		clock.BlockUntil(1)
		clock.Advance(time.Duration(i) * time.Second)
	}

	err := <-done
	var exhausted ErrMaxRetriesExceeded
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ErrMaxRetriesExceeded, got %v", err)
	}
	if exhausted.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", exhausted.Attempts)
	}
	if !errors.Is(err, boom) {
		t.Error("expected the last error preserved via Unwrap")
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetryWithPolicyStopsOnCancel(t *testing.T) {
	clock := clockwork.NewFakeClock()
	policy := &LinearBackoffPolicy{BaseDelay: time.Second, MaxAttempts: 5}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- RetryWithPolicy(ctx, clock, policy, func() error {
			return errors.New("transient")
		})
	}()

	clock.BlockUntil(1)
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSleepZeroDuration(t *testing.T) {
	if err := Sleep(context.Background(), clockwork.NewFakeClock(), 0); err != nil {
		t.Fatalf("zero sleep should return immediately, got %v", err)
	}
}

func TestSleepCancelled(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Sleep(ctx, clock, time.Minute) }()

	clock.BlockUntil(1)
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
