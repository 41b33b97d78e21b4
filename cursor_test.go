package aiosqlite3

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zfl1011/aiosqlite3/sqlitedrv"
)

// openFakeCursor obtains a Cursor over the fake handle's raw cursor.
func openFakeCursor(t *testing.T) (*Cursor, *fakeHandle) {
	t.Helper()
	conn, handle := openFakeConn(t)

	fut, err := conn.Cursor()
	assert.NoError(t, err)
	cur, err := fut.Await(context.Background())
	assert.NoError(t, err)
	return cur, handle
}

func TestCursorExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("ResolvesToSameCursor", func(t *testing.T) {
		cur, handle := openFakeCursor(t)

		fut, err := cur.Execute("SELECT id FROM users")
		assert.NoError(t, err)
		got, err := fut.Await(ctx)
		assert.NoError(t, err)
		assert.Same(t, cur, got)
		assert.Equal(t, []string{"SELECT id FROM users"}, handle.cursor.executed)
	})

	t.Run("ExecuteMany", func(t *testing.T) {
		cur, handle := openFakeCursor(t)

		fut, err := cur.ExecuteMany("INSERT INTO t VALUES (?)", [][]any{{1}, {2}})
		assert.NoError(t, err)
		got, err := fut.Await(ctx)
		assert.NoError(t, err)
		assert.Same(t, cur, got)
		assert.Equal(t, []string{"INSERT INTO t VALUES (?)"}, handle.cursor.executed)
	})
}

func TestCursorFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("FetchOne", func(t *testing.T) {
		cur, handle := openFakeCursor(t)
		handle.cursor.rows = []any{[]any{int64(1)}, []any{int64(2)}}

		op, err := cur.FetchOne()
		assert.NoError(t, err)
		row, err := op.Await(ctx)
		assert.NoError(t, err)
		assert.Equal(t, []any{int64(1)}, row)

		op, err = cur.FetchOne()
		assert.NoError(t, err)
		row, err = op.Await(ctx)
		assert.NoError(t, err)
		assert.Equal(t, []any{int64(2)}, row)

		// Exhausted result set resolves to nil.
		op, err = cur.FetchOne()
		assert.NoError(t, err)
		row, err = op.Await(ctx)
		assert.NoError(t, err)
		assert.Nil(t, row)
	})

	t.Run("FetchMany", func(t *testing.T) {
		cur, handle := openFakeCursor(t)
		handle.cursor.rows = []any{"a", "b", "c"}

		op, err := cur.FetchMany(2)
		assert.NoError(t, err)
		rows, err := op.Await(ctx)
		assert.NoError(t, err)
		assert.Equal(t, []any{"a", "b"}, rows)
	})

	t.Run("FetchAll", func(t *testing.T) {
		cur, handle := openFakeCursor(t)
		handle.cursor.rows = []any{"a", "b", "c"}

		op, err := cur.FetchAll()
		assert.NoError(t, err)
		rows, err := op.Await(ctx)
		assert.NoError(t, err)
		assert.Equal(t, []any{"a", "b", "c"}, rows)
	})
}

func TestCursorDirectPassthroughs(t *testing.T) {
	cur, handle := openFakeCursor(t)
	handle.cursor.columns = []string{"id", "name"}
	handle.cursor.decls = []sqlitedrv.Column{
		{Name: "id", DeclType: "INTEGER"},
		{Name: "name", DeclType: "TEXT"},
	}
	handle.cursor.rowCount = 3
	handle.cursor.lastInsertID = 9

	assert.Equal(t, []string{"id", "name"}, cur.Columns())
	assert.Equal(t, "TEXT", cur.Description()[1].DeclType)
	assert.Equal(t, int64(3), cur.RowCount())
	assert.Equal(t, int64(9), cur.LastInsertID())
	assert.Same(t, cur.Conn(), cur.Conn())
}

func TestCursorClose(t *testing.T) {
	ctx := context.Background()

	t.Run("Idempotent", func(t *testing.T) {
		cur, handle := openFakeCursor(t)

		assert.NoError(t, cur.Close(ctx))
		assert.NoError(t, cur.Close(ctx))
		assert.True(t, cur.Closed())
		assert.Equal(t, 1, handle.cursor.closes)
	})

	t.Run("UsageFaultsAfterClose", func(t *testing.T) {
		cur, _ := openFakeCursor(t)
		assert.NoError(t, cur.Close(ctx))

		_, err := cur.Execute("SELECT 1")
		assert.ErrorIs(t, err, ErrCursorClosed)
		_, err = cur.ExecuteMany("INSERT INTO t VALUES (?)", nil)
		assert.ErrorIs(t, err, ErrCursorClosed)
		_, err = cur.FetchOne()
		assert.ErrorIs(t, err, ErrCursorClosed)
		_, err = cur.FetchMany(1)
		assert.ErrorIs(t, err, ErrCursorClosed)
		_, err = cur.FetchAll()
		assert.ErrorIs(t, err, ErrCursorClosed)
	})
}
