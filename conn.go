package aiosqlite3

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/orsinium-labs/enum"
	"github.com/zfl1011/aiosqlite3/internal/delegate"
	"github.com/zfl1011/aiosqlite3/internal/log"
	"github.com/zfl1011/aiosqlite3/internal/util/syncutil"
	"github.com/zfl1011/aiosqlite3/sqlitedrv"
	"github.com/zfl1011/aiosqlite3/workerpool"
)

// connState represents the lifecycle state of a Conn.
type connState enum.Member[string]

var (
	stateUnconnected = connState{Value: "unconnected"}
	stateConnecting  = connState{Value: "connecting"}
	stateOpen        = connState{Value: "open"}
	stateClosing     = connState{Value: "closing"}
	stateClosed      = connState{Value: "closed"}
)

// connDelegatedMethods are the handle methods forwarded through the
// dispatcher. The delegation table binds them once, at connect time;
// a handle missing any of them fails the connect.
var connDelegatedMethods = []string{
	"Commit",
	"Rollback",
	"CreateFunction",
	"CreateAggregate",
	"CreateCollation",
	"Interrupt",
	"SetAuthorizer",
	"SetProgressHandler",
	"SetTraceCallback",
	"EnableLoadExtension",
	"LoadExtension",
	"IterDump",
}

// connDirectProps are in-process state reads passed through without
// dispatch.
var connDirectProps = []string{
	"InTransaction",
	"TotalChanges",
}

// Config represents the configuration for a Conn instance.
type Config struct {
	// Database is the resource locator, e.g. a file path or ":memory:".
	Database string
	// Pool is an optional external worker pool. When nil the connection
	// owns a private pool and closes it on Close.
	Pool *workerpool.Pool
	// Workers sizes the owned pool when Pool is nil. Zero means the
	// platform default.
	Workers int
	// Timeout is the driver busy timeout for the open call. Defaults
	// to 5 seconds.
	Timeout time.Duration
	// Echo enables structured tracing of dispatched calls.
	Echo bool
	// IsolationLevel is the implicit transaction mode: "" (autocommit,
	// the default), "DEFERRED", "IMMEDIATE", or "EXCLUSIVE".
	IsolationLevel string
	// CheckSameThread must be false: the worker pool, not the caller's
	// goroutine, drives the handle. Present for sqlite3 API parity.
	CheckSameThread bool
	// Logger is an optional echo-trace sink. Defaults to stdout when
	// Echo is on.
	Logger log.Logger
	// Params holds extra driver options passed through to the open call.
	Params map[string]string
	// Open overrides the blocking open capability. Defaults to
	// sqlitedrv.Open.
	Open sqlitedrv.OpenFunc
}

// Conn is the async proxy that owns at most one underlying blocking
// handle. The handle is created off-thread during Connect and destroyed
// off-thread during Close.
//
// A Conn is not safe for overlapping dispatched operations: await each
// operation before submitting the next.
type Conn struct {
	conf     Config
	pool     *workerpool.Pool
	ownsPool bool
	logger   log.Logger
	state    *syncutil.Atomic[connState]
	handle   sqlitedrv.Handle
	table    *delegate.Table
}

// NewConn creates a Conn in the unconnected state. No I/O happens until
// Connect.
func NewConn(conf Config) (*Conn, error) {
	if conf.CheckSameThread {
		return nil, ErrCheckSameThread
	}
	if conf.Database == "" {
		return nil, fmt.Errorf("database is required")
	}
	if conf.Timeout == 0 {
		conf.Timeout = sqlitedrv.DefaultTimeout
	}
	if conf.Open == nil {
		conf.Open = sqlitedrv.Open
	}

	logger := log.NewNopLogger()
	if conf.Echo {
		logger = conf.Logger
		if !logger.IsInitialized() {
			logger = log.NewLogger(os.Stdout)
		}
	}

	pool := conf.Pool
	ownsPool := false
	if pool == nil {
		var err error
		pool, err = workerpool.NewPool(workerpool.Config{Workers: conf.Workers})
		if err != nil {
			return nil, fmt.Errorf("failed to create worker pool: %w", err)
		}
		ownsPool = true
	}

	return &Conn{
		conf:     conf,
		pool:     pool,
		ownsPool: ownsPool,
		logger:   logger,
		state:    syncutil.NewAtomic(stateUnconnected),
	}, nil
}

// Connect submits the blocking open and returns a dual-mode future
// resolving to this Conn. Permitted only from the unconnected state.
func (c *Conn) Connect() (*Future[*Conn], error) {
	if c.state.Load() != stateUnconnected {
		return nil, ErrConnAlreadyOpen
	}
	c.state.Store(stateConnecting)

	opID := uuid.NewString()
	c.logger.DebugNs(log.NsConn, "connect", log.KV{
		"database": c.conf.Database,
		"op":       opID,
	})

	op := Submit(c.pool, func() (any, error) {
		handle, err := c.conf.Open(c.conf.Database, sqlitedrv.Options{
			Timeout:        c.conf.Timeout,
			IsolationLevel: c.conf.IsolationLevel,
			Params:         c.conf.Params,
		})
		if err != nil {
			c.state.Store(stateUnconnected)
			c.logger.ErrorNs(log.NsConn, "connect failed", log.KV{
				"database": c.conf.Database,
				"op":       opID,
				"error":    err.Error(),
			})
			return nil, err
		}
		return handle, nil
	})

	finalize := func(raw any) (*Conn, error) {
		handle := raw.(sqlitedrv.Handle)
		table, err := delegate.NewTable(handle, connDelegatedMethods, connDirectProps)
		if err != nil {
			_ = handle.Close()
			c.state.Store(stateUnconnected)
			return nil, fmt.Errorf("failed to build delegation table: %w", err)
		}
		c.handle = handle
		c.table = table
		c.state.Store(stateOpen)
		c.logger.DebugNs(log.NsConn, "connect ok", log.KV{
			"database": c.conf.Database,
			"op":       opID,
		})
		return c, nil
	}

	release := func(ctx context.Context, conn *Conn) error {
		return conn.Close(ctx)
	}

	return newFuture(op, finalize, release), nil
}

// Connect creates a Conn from conf and starts connecting. The returned
// future is dual mode: await it for the open Conn, or enter it as a
// scope that closes the Conn on exit.
func Connect(conf Config) (*Future[*Conn], error) {
	conn, err := NewConn(conf)
	if err != nil {
		return nil, err
	}
	return conn.Connect()
}

// Closed reports whether no successful Connect has occurred since
// construction or since the last Close.
func (c *Conn) Closed() bool {
	return c.state.Load() != stateOpen
}

// Database returns the resource locator this Conn was built for.
func (c *Conn) Database() string {
	return c.conf.Database
}

// Echo reports whether echo tracing is enabled.
func (c *Conn) Echo() bool {
	return c.conf.Echo
}

// Timeout returns the configured open timeout.
func (c *Conn) Timeout() time.Duration {
	return c.conf.Timeout
}

// Pool returns the worker pool dispatched operations run on.
func (c *Conn) Pool() *workerpool.Pool {
	return c.pool
}

// Close dispatches the blocking close and waits for it. It is a no-op
// when the connection is not open. The handle reference is cleared and
// the state becomes closed regardless of the close outcome.
func (c *Conn) Close(ctx context.Context) error {
	if c.state.Load() != stateOpen {
		return nil
	}
	c.state.Store(stateClosing)

	handle := c.handle
	op := Submit(c.pool, func() (any, error) {
		return nil, handle.Close()
	})
	_, err := op.Await(ctx)

	c.handle = nil
	c.table = nil
	c.state.Store(stateClosed)

	c.logger.DebugNs(log.NsConn, "close", log.KV{
		"database": c.conf.Database,
		"ok":       err == nil,
	})

	if c.ownsPool {
		if poolErr := c.pool.Close(); err == nil {
			err = poolErr
		}
	}
	return err
}

// dispatch forwards a delegated method call through the worker pool.
// Calling it while not open is a usage fault raised before any dispatch.
func (c *Conn) dispatch(name string, args ...any) (*Operation[any], error) {
	if c.state.Load() != stateOpen {
		return nil, ErrConnClosed
	}

	c.logger.InfoNs(log.NsConn, "connection."+name, log.KV{
		"op": uuid.NewString(),
	})

	table := c.table
	return Submit(c.pool, func() (any, error) {
		return table.Call(name, args...)
	}), nil
}

// prop reads a direct-passthrough property on the calling goroutine.
func (c *Conn) prop(name string) (any, error) {
	if c.state.Load() != stateOpen {
		return nil, ErrConnClosed
	}
	return c.table.Prop(name)
}

// Commit commits the current transaction.
func (c *Conn) Commit() (*Operation[any], error) {
	return c.dispatch("Commit")
}

// Rollback rolls back the current transaction.
func (c *Conn) Rollback() (*Operation[any], error) {
	return c.dispatch("Rollback")
}

// CreateFunction registers a scalar SQL function on the handle.
func (c *Conn) CreateFunction(name string, nArgs int, fn any) (*Operation[any], error) {
	return c.dispatch("CreateFunction", name, nArgs, fn)
}

// CreateAggregate registers an aggregate SQL function on the handle.
func (c *Conn) CreateAggregate(name string, nArgs int, agg any) (*Operation[any], error) {
	return c.dispatch("CreateAggregate", name, nArgs, agg)
}

// CreateCollation registers a collation sequence on the handle.
func (c *Conn) CreateCollation(name string, cmp func(string, string) int) (*Operation[any], error) {
	return c.dispatch("CreateCollation", name, cmp)
}

// Interrupt asks the handle to abort any in-progress statement.
func (c *Conn) Interrupt() (*Operation[any], error) {
	return c.dispatch("Interrupt")
}

// SetAuthorizer registers the authorizer callback.
func (c *Conn) SetAuthorizer(cb sqlitedrv.Authorizer) (*Operation[any], error) {
	return c.dispatch("SetAuthorizer", cb)
}

// SetProgressHandler registers the progress callback.
func (c *Conn) SetProgressHandler(handler func() bool) (*Operation[any], error) {
	return c.dispatch("SetProgressHandler", handler)
}

// SetTraceCallback registers the statement trace callback.
func (c *Conn) SetTraceCallback(trace func(sql string)) (*Operation[any], error) {
	return c.dispatch("SetTraceCallback", trace)
}

// EnableLoadExtension toggles extension loading on the handle.
func (c *Conn) EnableLoadExtension(enable bool) (*Operation[any], error) {
	return c.dispatch("EnableLoadExtension", enable)
}

// LoadExtension loads a shared-library extension into the handle.
func (c *Conn) LoadExtension(path string, entry string) (*Operation[any], error) {
	return c.dispatch("LoadExtension", path, entry)
}

// IterDump produces the SQL text that reconstructs the database. The
// operation resolves to a []string of statements.
func (c *Conn) IterDump() (*Operation[any], error) {
	return c.dispatch("IterDump")
}

// InTransaction reports whether the handle has an open transaction.
// Direct read, no dispatch; requires the open state.
func (c *Conn) InTransaction() (bool, error) {
	value, err := c.prop("InTransaction")
	if err != nil {
		return false, err
	}
	return value.(bool), nil
}

// TotalChanges returns the total number of rows modified, inserted, or
// deleted since the handle was opened. Direct read, no dispatch.
func (c *Conn) TotalChanges() (int64, error) {
	value, err := c.prop("TotalChanges")
	if err != nil {
		return 0, err
	}
	return value.(int64), nil
}

// IsolationLevel returns the handle's implicit transaction mode.
func (c *Conn) IsolationLevel() (string, error) {
	if c.state.Load() != stateOpen {
		return "", ErrConnClosed
	}
	return c.handle.IsolationLevel(), nil
}

// SetIsolationLevel sets the implicit transaction mode. Applied
// synchronously: it is pure in-process metadata with no blocking cost.
func (c *Conn) SetIsolationLevel(level string) error {
	if c.state.Load() != stateOpen {
		return ErrConnClosed
	}
	return c.handle.SetIsolationLevel(level)
}

// RowFactory returns the handle's row factory.
func (c *Conn) RowFactory() (sqlitedrv.RowFactory, error) {
	if c.state.Load() != stateOpen {
		return nil, ErrConnClosed
	}
	return c.handle.RowFactory(), nil
}

// SetRowFactory sets the transform applied to fetched rows. Applied
// synchronously.
func (c *Conn) SetRowFactory(f sqlitedrv.RowFactory) error {
	if c.state.Load() != stateOpen {
		return ErrConnClosed
	}
	c.handle.SetRowFactory(f)
	return nil
}

// TextFactory returns the handle's text factory.
func (c *Conn) TextFactory() (sqlitedrv.TextFactory, error) {
	if c.state.Load() != stateOpen {
		return nil, ErrConnClosed
	}
	return c.handle.TextFactory(), nil
}

// SetTextFactory sets the transform applied to TEXT values. Applied
// synchronously.
func (c *Conn) SetTextFactory(f sqlitedrv.TextFactory) error {
	if c.state.Load() != stateOpen {
		return ErrConnClosed
	}
	c.handle.SetTextFactory(f)
	return nil
}

// newCursorFuture wraps a pending raw-cursor operation into the dual-mode
// future whose finalize builds the Cursor proxy, capturing this Conn and
// its echo flag, and whose scoped-mode release closes that cursor.
func (c *Conn) newCursorFuture(op *Operation[any]) *Future[*Cursor] {
	finalize := func(raw any) (*Cursor, error) {
		return newCursor(raw.(sqlitedrv.RawCursor), c, c.conf.Echo), nil
	}
	release := func(ctx context.Context, cur *Cursor) error {
		return cur.Close(ctx)
	}
	return newFuture(op, finalize, release)
}

// Execute binds the statement and parameters to the handle's blocking
// execute, submits it, and returns a dual-mode future resolving to a
// Cursor over the result. Parameters default to none when omitted.
func (c *Conn) Execute(sql string, params ...any) (*Future[*Cursor], error) {
	if c.state.Load() != stateOpen {
		return nil, ErrConnClosed
	}
	if params == nil {
		params = []any{}
	}

	c.logger.InfoNs(log.NsConn, "connection.execute", log.KV{
		"sql":    sql,
		"params": fmt.Sprint(params),
		"op":     uuid.NewString(),
	})

	handle := c.handle
	op := Submit(c.pool, func() (any, error) {
		cur, err := handle.Execute(sql, params)
		if err != nil {
			return nil, err
		}
		return cur, nil
	})
	return c.newCursorFuture(op), nil
}

// ExecuteMany binds the DML statement and every parameter set to the
// handle's blocking executemany and returns a dual-mode cursor future.
func (c *Conn) ExecuteMany(sql string, paramSets [][]any) (*Future[*Cursor], error) {
	if c.state.Load() != stateOpen {
		return nil, ErrConnClosed
	}

	c.logger.InfoNs(log.NsConn, "connection.executemany", log.KV{
		"sql":    sql,
		"params": fmt.Sprint(paramSets),
		"op":     uuid.NewString(),
	})

	handle := c.handle
	op := Submit(c.pool, func() (any, error) {
		cur, err := handle.ExecuteMany(sql, paramSets)
		if err != nil {
			return nil, err
		}
		return cur, nil
	})
	return c.newCursorFuture(op), nil
}

// ExecuteScript submits a multi-statement script and returns a dual-mode
// cursor future.
func (c *Conn) ExecuteScript(script string) (*Future[*Cursor], error) {
	if c.state.Load() != stateOpen {
		return nil, ErrConnClosed
	}

	c.logger.InfoNs(log.NsConn, "connection.executescript", log.KV{
		"sql": script,
		"op":  uuid.NewString(),
	})

	handle := c.handle
	op := Submit(c.pool, func() (any, error) {
		cur, err := handle.ExecuteScript(script)
		if err != nil {
			return nil, err
		}
		return cur, nil
	})
	return c.newCursorFuture(op), nil
}

// Cursor obtains a cursor with no statement executed, following the same
// dispatch pattern as Execute.
func (c *Conn) Cursor() (*Future[*Cursor], error) {
	if c.state.Load() != stateOpen {
		return nil, ErrConnClosed
	}

	c.logger.InfoNs(log.NsConn, "connection.cursor", log.KV{
		"op": uuid.NewString(),
	})

	handle := c.handle
	op := Submit(c.pool, func() (any, error) {
		cur, err := handle.Cursor()
		if err != nil {
			return nil, err
		}
		return cur, nil
	})
	return c.newCursorFuture(op), nil
}
