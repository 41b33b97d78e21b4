package aiosqlite3

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/zfl1011/aiosqlite3/workerpool"
)

func newTestPool(t *testing.T) *workerpool.Pool {
	t.Helper()
	pool, err := workerpool.NewPool(workerpool.Config{Workers: 1})
	assert.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })
	return pool
}

func TestSubmit(t *testing.T) {
	t.Run("ResolvesValue", func(t *testing.T) {
		pool := newTestPool(t)

		op := Submit(pool, func() (int, error) {
			return 42, nil
		})

		value, err := op.Await(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 42, value)
	})

	t.Run("ResolvesError", func(t *testing.T) {
		pool := newTestPool(t)
		boom := errors.New("disk is full")

		op := Submit(pool, func() (string, error) {
			return "", boom
		})

		_, err := op.Await(context.Background())
		assert.ErrorIs(t, err, boom)
	})

	t.Run("RunsOffCallerGoroutine", func(t *testing.T) {
		pool := newTestPool(t)
		release := make(chan struct{})

		op := Submit(pool, func() (int, error) {
			<-release
			return 1, nil
		})

		select {
		case <-op.Done():
			t.Fatal("operation resolved before the blocking work was released")
		case <-time.After(20 * time.Millisecond):
		}

		close(release)
		value, err := op.Await(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 1, value)
	})

	t.Run("AfterPoolClose", func(t *testing.T) {
		pool, err := workerpool.NewPool(workerpool.Config{Workers: 1})
		assert.NoError(t, err)
		assert.NoError(t, pool.Close())

		op := Submit(pool, func() (int, error) {
			return 1, nil
		})

		_, err = op.Await(context.Background())
		assert.ErrorIs(t, err, workerpool.ErrPoolClosed)
	})
}

func TestOperationAwait(t *testing.T) {
	t.Run("ContextCancel", func(t *testing.T) {
		pool := newTestPool(t)
		release := make(chan struct{})

		op := Submit(pool, func() (int, error) {
			<-release
			return 7, nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := op.Await(ctx)
		assert.ErrorIs(t, err, context.Canceled)

		// The work keeps running; the result stays observable.
		close(release)
		value, err := op.Await(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 7, value)
	})

	t.Run("RepeatedAwaitSameResult", func(t *testing.T) {
		pool := newTestPool(t)

		op := Submit(pool, func() (string, error) {
			return "stable", nil
		})

		for i := 0; i < 3; i++ {
			value, err := op.Await(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "stable", value)
		}
	})
}
