package resilience

import (
	"context"
)

// FirstOf races two independent tasks and returns whichever result arrives
// first. The loser is NOT cancelled: it keeps running in its goroutine and
// its result is discarded. Callers whose fallback wins must therefore
// assume the superseded task may still observe and mutate shared state
// (e.g. the persisted session) after FirstOf returns. Pass tasks that are
// read-only, or derive a cancellable context inside the task, if that
// matters.
func FirstOf[T any](ctx context.Context, primary, fallback func(context.Context) T) (T, bool) {
	results := make(chan T, 2)

	go func() { results <- primary(ctx) }()
	go func() { results <- fallback(ctx) }()

	select {
	case r := <-results:
		return r, true
	case <-ctx.Done():
		var zero T
		return zero, false
	}
}
