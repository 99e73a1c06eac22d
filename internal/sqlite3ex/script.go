package sqlite3ex

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nsqlite/sqlite3"
	"github.com/nsqlite/sqlite3/ffi"
)

// Result is the outcome of one statement of a script.
type Result struct {
	SQL          string
	Columns      []string
	Rows         [][]any
	Write        bool
	Changes      int
	LastInsertID int64
}

// RunScript runs the statements of script one after the other and collects
// their results. It stops at the first failure and returns the results of
// the statements that completed before it.
func RunScript(ctx context.Context, conn *sqlite3.Conn, script string) ([]Result, error) {
	results := []Result{}

	for strings.TrimSpace(script) != "" {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		stmt, n, err := conn.PrepareWithOffset(script)
		if errors.Is(err, sqlite3.ErrNoStatement) {
			break
		}
		if err != nil {
			return results, err
		}

		res, err := runStatement(conn, stmt)
		stmt.Close()
		if err != nil {
			return results, fmt.Errorf("%s: %w", stmt.SQL(), err)
		}
		results = append(results, res)

		script = script[n:]
	}

	return results, nil
}

func runStatement(conn *sqlite3.Conn, stmt *sqlite3.Stmt) (Result, error) {
	res := Result{SQL: stmt.SQL()}

	rs, err := stmt.Execute(sqlite3.WantChanges())
	if err != nil {
		return res, err
	}
	defer rs.Close()

	res.Columns = rs.ColumnNames()
	for {
		row, err := rs.Step()
		if err != nil {
			return res, err
		}
		if row == nil {
			break
		}
		res.Rows = append(res.Rows, rowValues(row))
	}

	if len(res.Columns) == 0 && isWrite(res.SQL) {
		res.Write = true
		res.Changes, _ = rs.Changes()
		res.LastInsertID = conn.LastInsertRowID()
	}

	return res, nil
}

// rowValues decodes every column of row by its storage class.
func rowValues(row *sqlite3.Row) []any {
	values := make([]any, row.ColumnCount())
	for i := range values {
		switch row.ColumnType(i) {
		case ffi.SQLITE_INTEGER:
			values[i] = row.ColumnInt64(i)
		case ffi.SQLITE_FLOAT:
			values[i] = row.ColumnDouble(i)
		case ffi.SQLITE_TEXT:
			values[i], _ = row.ColumnText(i)
		case ffi.SQLITE_BLOB:
			b, _ := row.ColumnBlob(i)
			values[i] = fmt.Sprintf("x'%X'", b)
		default:
			values[i] = "NULL"
		}
	}
	return values
}

// isWrite reports whether sql is a statement the engine counts changes for.
func isWrite(sql string) bool {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return false
	}

	switch strings.ToUpper(fields[0]) {
	case "INSERT", "UPDATE", "DELETE", "REPLACE":
		return true
	case "WITH":
		upper := strings.ToUpper(sql)
		return strings.Contains(upper, "INSERT") ||
			strings.Contains(upper, "UPDATE") ||
			strings.Contains(upper, "DELETE")
	}
	return false
}
