package sqlitedrv

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"database/sql/driver"
)

// IterDump returns the SQL text lines that reconstruct the database:
// schema first, table data as INSERT statements, then indexes, triggers
// and views, all wrapped in one transaction.
func (c *Conn) IterDump() ([]string, error) {
	lines := []string{"BEGIN TRANSACTION;"}

	tables, err := c.queryAll(
		`SELECT name, sql FROM sqlite_master WHERE sql NOT NULL AND type == 'table' ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}

	for _, table := range tables {
		name := asString(table[0])
		if strings.HasPrefix(name, "sqlite_") {
			continue
		}
		lines = append(lines, asString(table[1])+";")

		rows, err := c.queryAll(`SELECT * FROM ` + quoteIdent(name))
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			literals := make([]string, len(row))
			for i, value := range row {
				literals[i] = sqlLiteral(value)
			}
			lines = append(lines, fmt.Sprintf(
				"INSERT INTO %s VALUES(%s);", quoteIdent(name), strings.Join(literals, ","),
			))
		}
	}

	objects, err := c.queryAll(
		`SELECT sql FROM sqlite_master WHERE sql NOT NULL AND type IN ('index','trigger','view') ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	for _, object := range objects {
		lines = append(lines, asString(object[0])+";")
	}

	lines = append(lines, "COMMIT;")
	return lines, nil
}

// queryAll runs a read statement and materializes every row.
func (c *Conn) queryAll(query string) ([][]driver.Value, error) {
	rows, err := c.raw.Query(query, nil)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	width := len(rows.Columns())
	result := [][]driver.Value{}
	for {
		dest := make([]driver.Value, width)
		if err := rows.Next(dest); err != nil {
			if err == io.EOF {
				return result, nil
			}
			return nil, err
		}
		result = append(result, dest)
	}
}

func asString(value driver.Value) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// quoteIdent quotes an identifier for embedding into SQL text.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// sqlLiteral renders one value as a SQL literal.
func sqlLiteral(value driver.Value) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case bool:
		if v {
			return "1"
		}
		return "0"
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case []byte:
		return "X'" + hex.EncodeToString(v) + "'"
	case time.Time:
		return "'" + v.Format("2006-01-02 15:04:05") + "'"
	default:
		return "'" + strings.ReplaceAll(fmt.Sprint(v), "'", "''") + "'"
	}
}
