package sqlitedrv

import (
	"errors"
	"time"
)

// DefaultTimeout is the busy timeout applied when Options.Timeout is zero.
const DefaultTimeout = 5 * time.Second

// ErrNotSupported is returned by operations the underlying driver cannot
// express. It propagates through the bridge like any other driver fault.
var ErrNotSupported = errors.New("sqlitedrv: operation not supported by driver")

// Options configures the blocking open call.
type Options struct {
	// Timeout is the SQLite busy timeout. Defaults to DefaultTimeout.
	Timeout time.Duration
	// IsolationLevel selects the implicit transaction mode: "" for
	// autocommit, or one of "DEFERRED", "IMMEDIATE", "EXCLUSIVE".
	IsolationLevel string
	// Params holds extra DSN query parameters passed through to the
	// driver, e.g. "_journal_mode": "WAL".
	Params map[string]string
}

// OpenFunc is the signature of the blocking open capability. The bridge
// depends on this type so tests can substitute a fake driver.
type OpenFunc func(database string, o Options) (Handle, error)

// RowFactory transforms a fetched row before it is handed to the caller.
type RowFactory func(columns []string, row []any) any

// TextFactory transforms raw TEXT column bytes. When unset, TEXT values
// come back as string.
type TextFactory func([]byte) any

// Authorizer mirrors the sqlite3 authorizer callback: it receives the
// action code and its arguments and returns SQLITE_OK, SQLITE_DENY or
// SQLITE_IGNORE.
type Authorizer func(action int, arg1, arg2, dbName string) int

// Column describes one column of a result set.
type Column struct {
	Name     string
	DeclType string
}

// Handle is the blocking, thread-affine-free connection capability that
// the async bridge wraps. None of its methods are safe for concurrent use
// on one Handle; the bridge's callers serialize access.
type Handle interface {
	// Execute runs a single statement, returning a cursor positioned
	// over its result set (empty for non-read statements).
	Execute(sql string, params []any) (RawCursor, error)
	// ExecuteMany runs a DML statement once per parameter set.
	ExecuteMany(sql string, paramSets [][]any) (RawCursor, error)
	// ExecuteScript commits any pending transaction and runs a
	// multi-statement script.
	ExecuteScript(script string) (RawCursor, error)
	// Cursor returns a cursor with no statement executed yet.
	Cursor() (RawCursor, error)

	Commit() error
	Rollback() error

	CreateFunction(name string, nArgs int, fn any) error
	CreateAggregate(name string, nArgs int, agg any) error
	CreateCollation(name string, cmp func(string, string) int) error
	Interrupt() error
	SetAuthorizer(cb Authorizer) error
	SetProgressHandler(handler func() bool) error
	SetTraceCallback(trace func(sql string)) error
	EnableLoadExtension(enable bool) error
	LoadExtension(path string, entry string) error
	// IterDump returns the SQL text lines that reconstruct the database.
	IterDump() ([]string, error)

	// InTransaction reports whether a transaction is open. In-process
	// read, no I/O.
	InTransaction() bool
	// TotalChanges returns the number of rows modified, inserted, or
	// deleted since the connection was opened.
	TotalChanges() (int64, error)

	IsolationLevel() string
	SetIsolationLevel(level string) error
	RowFactory() RowFactory
	SetRowFactory(f RowFactory)
	TextFactory() TextFactory
	SetTextFactory(f TextFactory)

	Close() error
}

// RawCursor is the blocking cursor capability. A cursor is owned by the
// Handle that produced it and must not outlive it.
type RawCursor interface {
	// Execute runs a new statement on this cursor, discarding any
	// previous result set.
	Execute(sql string, params []any) error
	// ExecuteMany runs a DML statement once per parameter set. Read
	// statements are rejected.
	ExecuteMany(sql string, paramSets [][]any) error

	// FetchOne returns the next row, or nil when the result set is
	// exhausted or the statement produced none.
	FetchOne() (any, error)
	// FetchMany returns up to n next rows.
	FetchMany(n int) ([]any, error)
	// FetchAll returns all remaining rows.
	FetchAll() ([]any, error)

	Columns() []string
	Description() []Column
	// RowCount returns the affected-row count of the last DML statement,
	// or -1 for read statements.
	RowCount() int64
	LastInsertID() int64

	Close() error
}
