package aiosqlite3

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Future pairs one pending Operation with an optional finalizing
// transform and a release callback. It supports two consumption modes
// that produce the identical value:
//
//   - Suspend mode: Await resolves the operation, applies the transform,
//     and returns the result. Failures come back untransformed.
//   - Scoped mode: With performs the same resolution, hands the value to
//     the body, and releases the produced resource on every exit path,
//     including a panicking body.
//
// A Future may be consumed exactly once, through either mode.
type Future[T any] struct {
	op       *Operation[any]
	finalize func(any) (T, error)
	release  func(context.Context, T) error
	consumed atomic.Bool
}

func newFuture[T any](
	op *Operation[any],
	finalize func(any) (T, error),
	release func(context.Context, T) error,
) *Future[T] {
	return &Future[T]{
		op:       op,
		finalize: finalize,
		release:  release,
	}
}

// Await suspends until the underlying operation resolves and returns the
// finalized value. Consuming an already-consumed future is a usage fault.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	var zero T

	if !f.consumed.CompareAndSwap(false, true) {
		return zero, ErrFutureConsumed
	}

	raw, err := f.op.Await(ctx)
	if err != nil {
		return zero, err
	}

	if f.finalize == nil {
		value, _ := raw.(T)
		return value, nil
	}
	return f.finalize(raw)
}

// With resolves the future and hands the value to body, releasing the
// produced resource when body returns. A body error takes precedence
// over a release error; a release error after a successful body is still
// surfaced. The release runs at most once per future.
func (f *Future[T]) With(ctx context.Context, body func(T) error) (err error) {
	value, err := f.Await(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if f.release == nil {
			return
		}
		relErr := f.release(ctx, value)
		if err == nil && relErr != nil {
			err = fmt.Errorf("failed to release resource: %w", relErr)
		}
	}()

	err = body(value)
	return err
}
