package aiosqlite3

import "errors"

// Usage faults. They are raised synchronously at the call site, before
// anything reaches the worker pool.
var (
	// ErrConnClosed is returned when a dispatched operation, property
	// read, or setting write is attempted while the connection is not
	// open.
	ErrConnClosed = errors.New("aiosqlite3: connection is not open")

	// ErrConnAlreadyOpen is returned by Connect on a connection that is
	// not in the unconnected state.
	ErrConnAlreadyOpen = errors.New("aiosqlite3: connection is already open")

	// ErrCheckSameThread is returned at construction when the
	// check-same-thread option is set: the worker pool, not the caller's
	// goroutine, drives the handle, so thread-origin affinity can never
	// be enforced.
	ErrCheckSameThread = errors.New("aiosqlite3: check_same_thread must be false")

	// ErrFutureConsumed is returned when a Future is awaited or entered
	// a second time. A future resolves exactly once, in one mode.
	ErrFutureConsumed = errors.New("aiosqlite3: future already consumed")

	// ErrCursorClosed is returned when an operation is attempted on a
	// closed cursor.
	ErrCursorClosed = errors.New("aiosqlite3: cursor is closed")
)
