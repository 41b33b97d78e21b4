package syncutil

import (
	"sync/atomic"
)

// Atomic is a typed cell that can be loaded, stored, and swapped by
// multiple goroutines safely.
type Atomic[T any] struct {
	value atomic.Value
}

// NewAtomic creates a new Atomic instance initialized with the given value.
func NewAtomic[T any](initial T) *Atomic[T] {
	a := &Atomic[T]{}
	a.Store(initial)
	return a
}

// Load returns the current value of the Atomic instance.
func (a *Atomic[T]) Load() T {
	val := a.value.Load()

	switch v := val.(type) {
	case T:
		return v
	default:
		var zero T
		return zero
	}
}

// Store sets the value of the Atomic instance.
func (a *Atomic[T]) Store(value T) {
	a.value.Store(value)
}

// Swap stores the given value and returns the previous one, in a single
// atomic step.
func (a *Atomic[T]) Swap(value T) T {
	prev := a.value.Swap(value)

	switch v := prev.(type) {
	case T:
		return v
	default:
		var zero T
		return zero
	}
}
