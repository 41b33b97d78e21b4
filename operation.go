package aiosqlite3

import (
	"context"
	"fmt"

	"github.com/zfl1011/aiosqlite3/workerpool"
)

// Operation is the suspension handle for one unit of blocking work
// submitted to a worker pool. It resolves exactly once, to the work's
// value or to its error, and is not reusable. The zero value is not
// usable; Operations come from Submit.
type Operation[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Submit hands a fully bound blocking operation to the pool and returns
// an Operation that resolves when the work completes. Submit never runs
// the operation on the calling goroutine and returns without waiting.
//
// No ordering holds between independently submitted operations; a caller
// needing ordering awaits each Operation before submitting the next.
func Submit[T any](pool *workerpool.Pool, op func() (T, error)) *Operation[T] {
	o := &Operation[T]{done: make(chan struct{})}

	if err := pool.Submit(func() {
		o.value, o.err = op()
		close(o.done)
	}); err != nil {
		o.err = fmt.Errorf("failed to submit operation: %w", err)
		close(o.done)
	}

	return o
}

// resolved builds an already-resolved Operation. Used for failures that
// must surface through the suspension path without touching the pool.
func resolved[T any](value T, err error) *Operation[T] {
	o := &Operation[T]{done: make(chan struct{}), value: value, err: err}
	close(o.done)
	return o
}

// Await suspends the caller until the operation resolves or ctx is done.
// The operation's error comes back exactly as the blocking work raised
// it. If ctx expires first, the work keeps running in the pool and its
// eventual result is still observable through another Await.
func (o *Operation[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-o.done:
		return o.value, o.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done returns a channel that is closed once the operation has resolved.
func (o *Operation[T]) Done() <-chan struct{} {
	return o.done
}
