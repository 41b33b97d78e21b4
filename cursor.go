package aiosqlite3

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/zfl1011/aiosqlite3/internal/log"
	"github.com/zfl1011/aiosqlite3/sqlitedrv"
)

// Cursor is the async proxy over one blocking raw cursor. Statement
// execution and row fetching are dispatched through the owning
// connection's worker pool; result-shape reads are direct in-process
// passthroughs.
type Cursor struct {
	raw    sqlitedrv.RawCursor
	conn   *Conn
	logger log.Logger
	echo   bool
	closed atomic.Bool
}

func newCursor(raw sqlitedrv.RawCursor, conn *Conn, echo bool) *Cursor {
	return &Cursor{
		raw:    raw,
		conn:   conn,
		logger: conn.logger,
		echo:   echo,
	}
}

// Conn returns the connection this cursor belongs to.
func (c *Cursor) Conn() *Conn {
	return c.conn
}

// Closed reports whether the cursor has been closed.
func (c *Cursor) Closed() bool {
	return c.closed.Load()
}

// Execute dispatches the statement on this cursor and returns a
// dual-mode future resolving to this same cursor.
func (c *Cursor) Execute(sql string, params ...any) (*Future[*Cursor], error) {
	if c.closed.Load() {
		return nil, ErrCursorClosed
	}
	if params == nil {
		params = []any{}
	}

	c.logger.InfoNs(log.NsCursor, "cursor.execute", log.KV{
		"sql":    sql,
		"params": fmt.Sprint(params),
		"op":     uuid.NewString(),
	})

	raw := c.raw
	op := Submit(c.conn.pool, func() (any, error) {
		if err := raw.Execute(sql, params); err != nil {
			return nil, err
		}
		return nil, nil
	})

	finalize := func(any) (*Cursor, error) { return c, nil }
	release := func(ctx context.Context, cur *Cursor) error { return cur.Close(ctx) }
	return newFuture(op, finalize, release), nil
}

// ExecuteMany dispatches the DML statement once per parameter set and
// returns a dual-mode future resolving to this same cursor.
func (c *Cursor) ExecuteMany(sql string, paramSets [][]any) (*Future[*Cursor], error) {
	if c.closed.Load() {
		return nil, ErrCursorClosed
	}

	c.logger.InfoNs(log.NsCursor, "cursor.executemany", log.KV{
		"sql":    sql,
		"params": fmt.Sprint(paramSets),
		"op":     uuid.NewString(),
	})

	raw := c.raw
	op := Submit(c.conn.pool, func() (any, error) {
		if err := raw.ExecuteMany(sql, paramSets); err != nil {
			return nil, err
		}
		return nil, nil
	})

	finalize := func(any) (*Cursor, error) { return c, nil }
	release := func(ctx context.Context, cur *Cursor) error { return cur.Close(ctx) }
	return newFuture(op, finalize, release), nil
}

// FetchOne dispatches a single-row fetch. The operation resolves to the
// next row, or to nil once the result set is exhausted.
func (c *Cursor) FetchOne() (*Operation[any], error) {
	if c.closed.Load() {
		return nil, ErrCursorClosed
	}

	c.logger.InfoNs(log.NsCursor, "cursor.fetchone", log.KV{
		"op": uuid.NewString(),
	})

	raw := c.raw
	return Submit(c.conn.pool, func() (any, error) {
		return raw.FetchOne()
	}), nil
}

// FetchMany dispatches a fetch of up to size rows. The operation
// resolves to a []any of rows, empty once the result set is exhausted.
func (c *Cursor) FetchMany(size int) (*Operation[any], error) {
	if c.closed.Load() {
		return nil, ErrCursorClosed
	}

	c.logger.InfoNs(log.NsCursor, "cursor.fetchmany", log.KV{
		"op":   uuid.NewString(),
		"size": size,
	})

	raw := c.raw
	return Submit(c.conn.pool, func() (any, error) {
		return raw.FetchMany(size)
	}), nil
}

// FetchAll dispatches a fetch of all remaining rows. The operation
// resolves to a []any of rows.
func (c *Cursor) FetchAll() (*Operation[any], error) {
	if c.closed.Load() {
		return nil, ErrCursorClosed
	}

	c.logger.InfoNs(log.NsCursor, "cursor.fetchall", log.KV{
		"op": uuid.NewString(),
	})

	raw := c.raw
	return Submit(c.conn.pool, func() (any, error) {
		return raw.FetchAll()
	}), nil
}

// Columns returns the column names of the current result set. Direct
// passthrough, no dispatch.
func (c *Cursor) Columns() []string {
	return c.raw.Columns()
}

// Description returns the column names and declared types of the current
// result set. Direct passthrough, no dispatch.
func (c *Cursor) Description() []sqlitedrv.Column {
	return c.raw.Description()
}

// RowCount returns the affected-row count of the last DML statement, or
// -1 after a read statement. Direct passthrough, no dispatch.
func (c *Cursor) RowCount() int64 {
	return c.raw.RowCount()
}

// LastInsertID returns the rowid of the last inserted row. Direct
// passthrough, no dispatch.
func (c *Cursor) LastInsertID() int64 {
	return c.raw.LastInsertID()
}

// Close dispatches the blocking cursor close and waits for it. Closing
// an already-closed cursor is a no-op.
func (c *Cursor) Close(ctx context.Context) error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.logger.InfoNs(log.NsCursor, "cursor.close", log.KV{
		"op": uuid.NewString(),
	})

	raw := c.raw
	op := Submit(c.conn.pool, func() (any, error) {
		return nil, raw.Close()
	})
	_, err := op.Await(ctx)
	return err
}
