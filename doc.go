// Package aiosqlite3 bridges the blocking SQLite handle into asynchronous
// Go code. Every operation that touches the underlying handle is
// dispatched to a worker pool and surfaces as a suspension handle the
// caller awaits; pure in-process state reads and writes stay synchronous.
//
// A Connection owns at most one underlying handle. The handle is not safe
// for concurrent use, so callers keep at most one dispatched operation in
// flight per Connection: await each operation before submitting the next.
//
//	fut, err := aiosqlite3.Connect(aiosqlite3.Config{Database: "app.db"})
//	if err != nil {
//		return err
//	}
//	conn, err := fut.Await(ctx)
//	if err != nil {
//		return err
//	}
//	defer conn.Close(ctx)
//
//	cursorFut, err := conn.Execute("SELECT name FROM users WHERE id = ?", 1)
//	if err != nil {
//		return err
//	}
//	err = cursorFut.With(ctx, func(cur *aiosqlite3.Cursor) error {
//		op, err := cur.FetchOne()
//		if err != nil {
//			return err
//		}
//		row, err := op.Await(ctx)
//		...
//	})
//
// Futures returned by Execute and friends are dual mode: Await resolves
// them directly, With additionally guarantees the produced cursor is
// closed on every exit path.
package aiosqlite3
