package sqlitedrv

import (
	"errors"
	"io"

	"database/sql/driver"

	"github.com/mattn/go-sqlite3"
)

// rawCursor implements RawCursor over one prepared statement at a time.
// Read statements keep their statement and row iterator open for
// incremental fetching; write statements are executed to completion.
type rawCursor struct {
	conn *Conn

	stmt driver.Stmt
	rows driver.Rows

	columns      []string
	decls        []string
	rowCount     int64
	lastInsertID int64
	closed       bool
}

var _ RawCursor = (*rawCursor)(nil)

func newRawCursor(conn *Conn) *rawCursor {
	return &rawCursor{
		conn:     conn,
		rowCount: -1,
	}
}

// reset discards the previous result set, if any.
func (cur *rawCursor) reset() error {
	var err error
	if cur.rows != nil {
		err = cur.rows.Close()
		cur.rows = nil
	}
	if cur.stmt != nil {
		if closeErr := cur.stmt.Close(); err == nil {
			err = closeErr
		}
		cur.stmt = nil
	}
	cur.columns = nil
	cur.decls = nil
	cur.rowCount = -1
	return err
}

// Execute runs a new statement on this cursor. Read statements leave the
// cursor positioned over their rows; write statements run inside the
// implicit transaction the connection's isolation level asks for.
func (cur *rawCursor) Execute(query string, params []any) error {
	if cur.closed {
		return errors.New("sqlitedrv: cursor is closed")
	}
	if err := cur.reset(); err != nil {
		return err
	}

	stmt, err := cur.conn.raw.Prepare(query)
	if err != nil {
		return err
	}

	vals, err := driverValues(params)
	if err != nil {
		_ = stmt.Close()
		return err
	}

	if sqlStmt, ok := stmt.(*sqlite3.SQLiteStmt); ok && sqlStmt.Readonly() {
		rows, err := stmt.Query(vals)
		if err != nil {
			_ = stmt.Close()
			return err
		}
		cur.stmt = stmt
		cur.rows = rows
		cur.columns = rows.Columns()
		if sqlRows, ok := rows.(*sqlite3.SQLiteRows); ok {
			cur.decls = sqlRows.DeclTypes()
		}
		return nil
	}

	if err := cur.conn.maybeBegin(); err != nil {
		_ = stmt.Close()
		return err
	}

	res, err := stmt.Exec(vals)
	if closeErr := stmt.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	cur.lastInsertID, _ = res.LastInsertId()
	cur.rowCount, _ = res.RowsAffected()
	return nil
}

// ExecuteMany runs a DML statement once per parameter set, inside a single
// implicit transaction when one is configured. Read statements are
// rejected.
func (cur *rawCursor) ExecuteMany(query string, paramSets [][]any) error {
	if cur.closed {
		return errors.New("sqlitedrv: cursor is closed")
	}
	if err := cur.reset(); err != nil {
		return err
	}

	stmt, err := cur.conn.raw.Prepare(query)
	if err != nil {
		return err
	}
	defer func() {
		_ = stmt.Close()
	}()

	if sqlStmt, ok := stmt.(*sqlite3.SQLiteStmt); ok && sqlStmt.Readonly() {
		return errors.New("sqlitedrv: ExecuteMany can only execute DML statements")
	}

	if err := cur.conn.maybeBegin(); err != nil {
		return err
	}

	var affected int64
	for _, params := range paramSets {
		vals, err := driverValues(params)
		if err != nil {
			return err
		}
		res, err := stmt.Exec(vals)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil {
			affected += n
		}
		cur.lastInsertID, _ = res.LastInsertId()
	}

	cur.rowCount = affected
	return nil
}

// FetchOne returns the next row, or nil when there is nothing to fetch.
func (cur *rawCursor) FetchOne() (any, error) {
	if cur.closed {
		return nil, errors.New("sqlitedrv: cursor is closed")
	}
	if cur.rows == nil {
		return nil, nil
	}

	dest := make([]driver.Value, len(cur.columns))
	if err := cur.rows.Next(dest); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}

	row := make([]any, len(dest))
	for i, value := range dest {
		row[i] = cur.convertValue(value, cur.declType(i))
	}

	if factory := cur.conn.rowFactory; factory != nil {
		return factory(cur.columns, row), nil
	}
	return row, nil
}

// FetchMany returns up to n next rows.
func (cur *rawCursor) FetchMany(n int) ([]any, error) {
	rows := []any{}
	for i := 0; i < n; i++ {
		row, err := cur.FetchOne()
		if err != nil {
			return nil, err
		}
		if row == nil {
			break
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// FetchAll returns all remaining rows.
func (cur *rawCursor) FetchAll() ([]any, error) {
	rows := []any{}
	for {
		row, err := cur.FetchOne()
		if err != nil {
			return nil, err
		}
		if row == nil {
			return rows, nil
		}
		rows = append(rows, row)
	}
}

func (cur *rawCursor) declType(i int) string {
	if i < len(cur.decls) {
		return cur.decls[i]
	}
	return ""
}

// convertValue normalizes one driver value, routing TEXT data through the
// connection's text factory. The declared type disambiguates []byte
// payloads between TEXT and BLOB columns.
func (cur *rawCursor) convertValue(value driver.Value, decl string) any {
	factory := cur.conn.textFactory

	switch v := value.(type) {
	case string:
		if factory != nil {
			return factory([]byte(v))
		}
		return v
	case []byte:
		if !hasTextAffinity(decl) {
			return v
		}
		if factory != nil {
			return factory(v)
		}
		return string(v)
	default:
		return v
	}
}

// Columns returns the column names of the current result set.
func (cur *rawCursor) Columns() []string {
	return cur.columns
}

// Description returns the column names and declared types of the current
// result set.
func (cur *rawCursor) Description() []Column {
	desc := make([]Column, len(cur.columns))
	for i, name := range cur.columns {
		desc[i] = Column{Name: name, DeclType: cur.declType(i)}
	}
	return desc
}

// RowCount returns the affected-row count of the last DML statement, or
// -1 for read statements.
func (cur *rawCursor) RowCount() int64 {
	return cur.rowCount
}

// LastInsertID returns the rowid of the last successful INSERT through
// this cursor.
func (cur *rawCursor) LastInsertID() int64 {
	return cur.lastInsertID
}

// Close releases the statement and row iterator. Safe to call twice.
func (cur *rawCursor) Close() error {
	if cur.closed {
		return nil
	}
	cur.closed = true
	return cur.reset()
}
