package shell

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/zfl1011/aiosqlite3"
)

func cmdQuery(s *Shell, input string) {
	tw := newTableWriter()

	fut, err := s.conn.Execute(input)
	if err != nil {
		tw.AppendHeader(table.Row{"Error"})
		tw.AppendRow(table.Row{err.Error()})
		fmt.Println(tw.Render())
		return
	}

	err = fut.With(s.ctx, func(cur *aiosqlite3.Cursor) error {
		// A negative row count marks a read statement.
		if cur.RowCount() < 0 {
			header := table.Row{}
			for _, col := range cur.Columns() {
				header = append(header, col)
			}
			tw.AppendHeader(header)

			op, err := cur.FetchAll()
			if err != nil {
				return err
			}
			value, err := op.Await(s.ctx)
			if err != nil {
				return err
			}

			for _, row := range value.([]any) {
				tw.AppendRow(table.Row(row.([]any)))
			}
			return nil
		}

		tw.AppendHeader(table.Row{"-", "Rows Affected", "Last Insert ID"})
		tw.AppendRow(table.Row{"OK", cur.RowCount(), cur.LastInsertID()})
		return nil
	})
	if err != nil {
		tw = newTableWriter()
		tw.AppendHeader(table.Row{"Error"})
		tw.AppendRow(table.Row{err.Error()})
	}

	fmt.Println(tw.Render())
}

func cmdChanges(s *Shell) {
	changes, err := s.conn.TotalChanges()
	if err != nil {
		fmt.Println("Failed to get total changes:", err)
		return
	}

	tw := newTableWriter()
	tw.AppendHeader(table.Row{"Total Changes"})
	tw.AppendRow(table.Row{changes})
	fmt.Println(tw.Render())
}
