package sqlitedrv

import (
	"fmt"
	"strings"
	"time"

	"database/sql/driver"
)

// driverValues converts bound parameters into the value set the raw
// driver accepts. Integer and float widths are normalized; anything else
// is an unsupported-parameter error.
func driverValues(params []any) ([]driver.Value, error) {
	vals := make([]driver.Value, len(params))
	for i, param := range params {
		switch v := param.(type) {
		case nil:
			vals[i] = nil
		case bool:
			vals[i] = v
		case int:
			vals[i] = int64(v)
		case int8:
			vals[i] = int64(v)
		case int16:
			vals[i] = int64(v)
		case int32:
			vals[i] = int64(v)
		case int64:
			vals[i] = v
		case uint:
			vals[i] = int64(v)
		case uint8:
			vals[i] = int64(v)
		case uint16:
			vals[i] = int64(v)
		case uint32:
			vals[i] = int64(v)
		case float32:
			vals[i] = float64(v)
		case float64:
			vals[i] = v
		case string:
			vals[i] = v
		case []byte:
			vals[i] = v
		case time.Time:
			vals[i] = v
		default:
			return nil, fmt.Errorf("unsupported parameter type %T at index %d", param, i)
		}
	}
	return vals, nil
}

// hasTextAffinity reports whether a declared column type carries TEXT
// affinity per the SQLite affinity rules.
func hasTextAffinity(decl string) bool {
	upper := strings.ToUpper(decl)
	return strings.Contains(upper, "CHAR") ||
		strings.Contains(upper, "CLOB") ||
		strings.Contains(upper, "TEXT")
}
