package aiosqlite3

import (
	"github.com/zfl1011/aiosqlite3/sqlitedrv"
)

// fakeHandle records every call it receives so tests can assert what
// reached the blocking layer and what was rejected before dispatch.
type fakeHandle struct {
	calls []string

	cursor   *fakeRawCursor
	execErr  error
	closeErr error

	inTxn        bool
	totalChanges int64
	isolation    string
	rowFactory   sqlitedrv.RowFactory
	textFactory  sqlitedrv.TextFactory
	dump         []string
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{cursor: newFakeRawCursor()}
}

func (h *fakeHandle) record(name string) {
	h.calls = append(h.calls, name)
}

func (h *fakeHandle) Execute(sql string, params []any) (sqlitedrv.RawCursor, error) {
	h.record("Execute:" + sql)
	if h.execErr != nil {
		return nil, h.execErr
	}
	return h.cursor, nil
}

func (h *fakeHandle) ExecuteMany(sql string, paramSets [][]any) (sqlitedrv.RawCursor, error) {
	h.record("ExecuteMany:" + sql)
	if h.execErr != nil {
		return nil, h.execErr
	}
	return h.cursor, nil
}

func (h *fakeHandle) ExecuteScript(script string) (sqlitedrv.RawCursor, error) {
	h.record("ExecuteScript:" + script)
	if h.execErr != nil {
		return nil, h.execErr
	}
	return h.cursor, nil
}

func (h *fakeHandle) Cursor() (sqlitedrv.RawCursor, error) {
	h.record("Cursor")
	return h.cursor, nil
}

func (h *fakeHandle) Commit() error {
	h.record("Commit")
	return nil
}

func (h *fakeHandle) Rollback() error {
	h.record("Rollback")
	return nil
}

func (h *fakeHandle) CreateFunction(name string, nArgs int, fn any) error {
	h.record("CreateFunction:" + name)
	return nil
}

func (h *fakeHandle) CreateAggregate(name string, nArgs int, agg any) error {
	h.record("CreateAggregate:" + name)
	return nil
}

func (h *fakeHandle) CreateCollation(name string, cmp func(string, string) int) error {
	h.record("CreateCollation:" + name)
	return nil
}

func (h *fakeHandle) Interrupt() error {
	h.record("Interrupt")
	return nil
}

func (h *fakeHandle) SetAuthorizer(cb sqlitedrv.Authorizer) error {
	h.record("SetAuthorizer")
	return nil
}

func (h *fakeHandle) SetProgressHandler(handler func() bool) error {
	h.record("SetProgressHandler")
	return nil
}

func (h *fakeHandle) SetTraceCallback(trace func(sql string)) error {
	h.record("SetTraceCallback")
	return nil
}

func (h *fakeHandle) EnableLoadExtension(enable bool) error {
	h.record("EnableLoadExtension")
	return nil
}

func (h *fakeHandle) LoadExtension(path string, entry string) error {
	h.record("LoadExtension:" + path)
	return nil
}

func (h *fakeHandle) IterDump() ([]string, error) {
	h.record("IterDump")
	return h.dump, nil
}

func (h *fakeHandle) InTransaction() bool {
	return h.inTxn
}

func (h *fakeHandle) TotalChanges() (int64, error) {
	return h.totalChanges, nil
}

func (h *fakeHandle) IsolationLevel() string {
	return h.isolation
}

func (h *fakeHandle) SetIsolationLevel(level string) error {
	h.isolation = level
	return nil
}

func (h *fakeHandle) RowFactory() sqlitedrv.RowFactory {
	return h.rowFactory
}

func (h *fakeHandle) SetRowFactory(f sqlitedrv.RowFactory) {
	h.rowFactory = f
}

func (h *fakeHandle) TextFactory() sqlitedrv.TextFactory {
	return h.textFactory
}

func (h *fakeHandle) SetTextFactory(f sqlitedrv.TextFactory) {
	h.textFactory = f
}

func (h *fakeHandle) Close() error {
	h.record("Close")
	return h.closeErr
}

// fakeRawCursor serves a fixed slice of rows.
type fakeRawCursor struct {
	rows    []any
	next    int
	columns []string
	decls   []sqlitedrv.Column

	rowCount     int64
	lastInsertID int64

	executed []string
	execErr  error
	closes   int
}

func newFakeRawCursor() *fakeRawCursor {
	return &fakeRawCursor{rowCount: -1}
}

func (c *fakeRawCursor) Execute(sql string, params []any) error {
	c.executed = append(c.executed, sql)
	if c.execErr != nil {
		return c.execErr
	}
	c.next = 0
	return nil
}

func (c *fakeRawCursor) ExecuteMany(sql string, paramSets [][]any) error {
	c.executed = append(c.executed, sql)
	return c.execErr
}

func (c *fakeRawCursor) FetchOne() (any, error) {
	if c.next >= len(c.rows) {
		return nil, nil
	}
	row := c.rows[c.next]
	c.next++
	return row, nil
}

func (c *fakeRawCursor) FetchMany(n int) ([]any, error) {
	out := []any{}
	for len(out) < n && c.next < len(c.rows) {
		out = append(out, c.rows[c.next])
		c.next++
	}
	return out, nil
}

func (c *fakeRawCursor) FetchAll() ([]any, error) {
	return c.FetchMany(len(c.rows) - c.next)
}

func (c *fakeRawCursor) Columns() []string {
	return c.columns
}

func (c *fakeRawCursor) Description() []sqlitedrv.Column {
	return c.decls
}

func (c *fakeRawCursor) RowCount() int64 {
	return c.rowCount
}

func (c *fakeRawCursor) LastInsertID() int64 {
	return c.lastInsertID
}

func (c *fakeRawCursor) Close() error {
	c.closes++
	return nil
}
