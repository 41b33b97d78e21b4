// Package sqlitedrv implements the blocking SQLite handle capability on
// top of the raw mattn/go-sqlite3 driver connection.
//
// Everything in this package blocks the calling goroutine; the async
// bridge in the parent package is responsible for keeping these calls off
// the caller's scheduling context.
package sqlitedrv

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"database/sql/driver"

	"github.com/mattn/go-sqlite3"
)

var validIsolationLevels = map[string]bool{
	"":          true,
	"DEFERRED":  true,
	"IMMEDIATE": true,
	"EXCLUSIVE": true,
}

// Conn implements Handle over one raw *sqlite3.SQLiteConn. A Conn is not
// safe for concurrent use; callers serialize access to it.
type Conn struct {
	database string
	raw      *sqlite3.SQLiteConn

	isolationLevel       string
	rowFactory           RowFactory
	textFactory          TextFactory
	loadExtensionEnabled bool
}

var _ Handle = (*Conn)(nil)

// buildDSN assembles the file: DSN for the raw driver. The busy timeout
// and any extra params are carried as query parameters.
func buildDSN(database string, o Options) string {
	qp := url.Values{}
	qp.Set("_busy_timeout", strconv.FormatInt(o.Timeout.Milliseconds(), 10))

	for key, value := range o.Params {
		qp.Set(key, value)
	}

	return fmt.Sprintf("file:%s?%s", database, qp.Encode())
}

// Open opens a new blocking connection to the SQLite database. The raw
// mattn connection has no thread-origin affinity, so the returned Handle
// may be driven from any single goroutine at a time.
func Open(database string, o Options) (Handle, error) {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	level := strings.ToUpper(strings.TrimSpace(o.IsolationLevel))
	if !validIsolationLevels[level] {
		return nil, fmt.Errorf("invalid isolation level %q", o.IsolationLevel)
	}

	drv := &sqlite3.SQLiteDriver{}
	ci, err := drv.Open(buildDSN(database, o))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	raw, ok := ci.(*sqlite3.SQLiteConn)
	if !ok {
		_ = ci.Close()
		return nil, errors.New("failed to open database: unexpected driver connection type")
	}

	return &Conn{
		database:       database,
		raw:            raw,
		isolationLevel: level,
	}, nil
}

// execSimple runs a statement for its side effect only.
func (c *Conn) execSimple(query string) error {
	_, err := c.raw.Exec(query, nil)
	return err
}

// maybeBegin opens an implicit transaction before a write statement when
// the isolation level asks for one and none is open yet.
func (c *Conn) maybeBegin() error {
	if c.isolationLevel == "" || !c.raw.AutoCommit() {
		return nil
	}
	return c.execSimple("BEGIN " + c.isolationLevel)
}

// Execute runs a single statement and returns a cursor over its result.
func (c *Conn) Execute(query string, params []any) (RawCursor, error) {
	cur := newRawCursor(c)
	if err := cur.Execute(query, params); err != nil {
		return nil, err
	}
	return cur, nil
}

// ExecuteMany runs a DML statement once per parameter set.
func (c *Conn) ExecuteMany(query string, paramSets [][]any) (RawCursor, error) {
	cur := newRawCursor(c)
	if err := cur.ExecuteMany(query, paramSets); err != nil {
		return nil, err
	}
	return cur, nil
}

// ExecuteScript commits any pending transaction and runs a multi-statement
// script. The returned cursor carries no result set.
func (c *Conn) ExecuteScript(script string) (RawCursor, error) {
	if !c.raw.AutoCommit() {
		if err := c.execSimple("COMMIT"); err != nil {
			return nil, err
		}
	}
	if _, err := c.raw.Exec(script, nil); err != nil {
		return nil, err
	}
	return newRawCursor(c), nil
}

// Cursor returns a cursor with no statement executed yet.
func (c *Conn) Cursor() (RawCursor, error) {
	return newRawCursor(c), nil
}

// Commit commits the open transaction. In autocommit mode it is a no-op.
func (c *Conn) Commit() error {
	if c.raw.AutoCommit() {
		return nil
	}
	return c.execSimple("COMMIT")
}

// Rollback rolls back the open transaction. In autocommit mode it is a
// no-op.
func (c *Conn) Rollback() error {
	if c.raw.AutoCommit() {
		return nil
	}
	return c.execSimple("ROLLBACK")
}

// CreateFunction registers a scalar function. The argument count is
// inferred from fn's signature; nArgs is accepted for parity with the
// sqlite3 API and ignored when negative.
func (c *Conn) CreateFunction(name string, nArgs int, fn any) error {
	_ = nArgs
	return c.raw.RegisterFunc(name, fn, false)
}

// CreateAggregate registers an aggregate. agg must follow the driver's
// aggregator contract: a constructor returning a stepper with Step and
// Done methods.
func (c *Conn) CreateAggregate(name string, nArgs int, agg any) error {
	_ = nArgs
	return c.raw.RegisterAggregator(name, agg, false)
}

// CreateCollation registers a collation sequence.
func (c *Conn) CreateCollation(name string, cmp func(string, string) int) error {
	return c.raw.RegisterCollation(name, cmp)
}

// Interrupt is not expressible through the raw driver's public surface;
// the driver interrupts in-flight work via context internally.
func (c *Conn) Interrupt() error {
	return fmt.Errorf("%w: Interrupt", ErrNotSupported)
}

// SetAuthorizer registers the authorizer callback.
func (c *Conn) SetAuthorizer(cb Authorizer) error {
	c.raw.RegisterAuthorizer(func(action int, arg1, arg2, dbName string) int {
		return cb(action, arg1, arg2, dbName)
	})
	return nil
}

// SetProgressHandler is not expressible through the raw driver's public
// surface.
func (c *Conn) SetProgressHandler(handler func() bool) error {
	return fmt.Errorf("%w: SetProgressHandler", ErrNotSupported)
}

// SetTraceCallback is not expressible through the raw driver's public
// surface.
func (c *Conn) SetTraceCallback(trace func(sql string)) error {
	return fmt.Errorf("%w: SetTraceCallback", ErrNotSupported)
}

// EnableLoadExtension toggles whether LoadExtension is permitted.
func (c *Conn) EnableLoadExtension(enable bool) error {
	c.loadExtensionEnabled = enable
	return nil
}

// LoadExtension loads a shared-library extension. Loading must have been
// enabled first with EnableLoadExtension.
func (c *Conn) LoadExtension(path string, entry string) error {
	if !c.loadExtensionEnabled {
		return errors.New("sqlitedrv: extension loading is disabled")
	}
	return c.raw.LoadExtension(path, entry)
}

// InTransaction reports whether a transaction is open.
func (c *Conn) InTransaction() bool {
	return !c.raw.AutoCommit()
}

// TotalChanges returns the number of rows modified, inserted, or deleted
// since the connection was opened. The read stays in-process.
func (c *Conn) TotalChanges() (int64, error) {
	rows, err := c.raw.Query("SELECT total_changes()", nil)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	dest := make([]driver.Value, 1)
	if err := rows.Next(dest); err != nil {
		if err == io.EOF {
			return 0, errors.New("sqlitedrv: total_changes returned no row")
		}
		return 0, err
	}

	changes, ok := dest[0].(int64)
	if !ok {
		return 0, fmt.Errorf("sqlitedrv: unexpected total_changes type %T", dest[0])
	}
	return changes, nil
}

// IsolationLevel returns the implicit transaction mode.
func (c *Conn) IsolationLevel() string {
	return c.isolationLevel
}

// SetIsolationLevel sets the implicit transaction mode: "" for
// autocommit, or one of "DEFERRED", "IMMEDIATE", "EXCLUSIVE".
func (c *Conn) SetIsolationLevel(level string) error {
	normalized := strings.ToUpper(strings.TrimSpace(level))
	if !validIsolationLevels[normalized] {
		return fmt.Errorf("invalid isolation level %q", level)
	}
	c.isolationLevel = normalized
	return nil
}

// RowFactory returns the current row factory, or nil.
func (c *Conn) RowFactory() RowFactory {
	return c.rowFactory
}

// SetRowFactory sets the transform applied to every fetched row.
func (c *Conn) SetRowFactory(f RowFactory) {
	c.rowFactory = f
}

// TextFactory returns the current text factory, or nil.
func (c *Conn) TextFactory() TextFactory {
	return c.textFactory
}

// SetTextFactory sets the transform applied to TEXT column values.
func (c *Conn) SetTextFactory(f TextFactory) {
	c.textFactory = f
}

// Close finalizes the underlying connection.
func (c *Conn) Close() error {
	if c.raw == nil {
		return nil
	}
	if err := c.raw.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	c.raw = nil
	return nil
}
