// Package sqlutil holds small helpers shared by the SQLite export.
package sqlutil

import (
	"database/sql"
	"fmt"
	"strings"
)

// InClauseArgs returns a comma-separated list of "?" placeholders and the
// matching args, formatting each item with fmt.Sprint so UUIDs bind as text.
//
// If items is empty, it returns "NULL" and no args, so `IN (NULL)` matches nothing.
func InClauseArgs[T any](items []T) (placeholders string, args []any) {
	if len(items) == 0 {
		return "NULL", nil
	}
	ph := make([]string, len(items))
	args = make([]any, len(items))
	for i, item := range items {
		ph[i] = "?"
		args[i] = fmt.Sprint(item)
	}
	return strings.Join(ph, ", "), args
}

// ScanRows scans all rows into a slice using the provided scanner and closes
// rows.
func ScanRows[T any](rows *sql.Rows, scan func(*sql.Rows) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// Bool converts the 0/1 integers SQLite stores for booleans.
func Bool(b bool) int {
	if b {
		return 1
	}
	return 0
}
