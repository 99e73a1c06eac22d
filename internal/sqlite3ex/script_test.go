package sqlite3ex

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/nsqlite/sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMem(t *testing.T) *sqlite3.Conn {
	t.Helper()
	conn, err := sqlite3.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, conn.Close()) })
	return conn
}

func TestRunScript(t *testing.T) {
	t.Run("MixedStatements", func(t *testing.T) {
		conn := openMem(t)

		results, err := RunScript(context.Background(), conn, `
			CREATE TABLE t (x INTEGER, y TEXT, z BLOB, w REAL);
			INSERT INTO t VALUES (1, 'one', x'0102', 1.5), (2, NULL, NULL, NULL);
			SELECT x, y, z, w FROM t ORDER BY x;
		`)
		require.NoError(t, err)
		require.Len(t, results, 3)

		assert.Equal(t, "CREATE TABLE t (x INTEGER, y TEXT, z BLOB, w REAL);", results[0].SQL)
		assert.Empty(t, results[0].Columns)
		assert.False(t, results[0].Write)

		assert.True(t, results[1].Write)
		assert.Equal(t, 2, results[1].Changes)
		assert.Equal(t, int64(2), results[1].LastInsertID)

		assert.Equal(t, []string{"x", "y", "z", "w"}, results[2].Columns)
		assert.Equal(t, [][]any{
			{int64(1), "one", "x'0102'", 1.5},
			{int64(2), "NULL", "NULL", "NULL"},
		}, results[2].Rows)
	})

	t.Run("StopsAtFirstFailure", func(t *testing.T) {
		conn := openMem(t)

		results, err := RunScript(context.Background(), conn, `
			CREATE TABLE t (x);
			INSERT INTO nowhere VALUES (1);
			INSERT INTO t VALUES (1);
		`)
		require.Error(t, err)
		assert.Len(t, results, 1)

		var sqlErr *sqlite3.Error
		require.True(t, errors.As(err, &sqlErr))
		assert.Equal(t, sqlite3.Code(1), sqlErr.Code)

		results, err = RunScript(context.Background(), conn, "SELECT count(*) FROM t")
		require.NoError(t, err)
		assert.Equal(t, [][]any{{int64(0)}}, results[0].Rows)
	})

	t.Run("RuntimeFailureNamesStatement", func(t *testing.T) {
		conn := openMem(t)

		_, err := RunScript(context.Background(), conn, `
			CREATE TABLE t (x UNIQUE);
			INSERT INTO t VALUES (1);
			INSERT INTO t VALUES (1);
		`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "INSERT INTO t VALUES (1);")
	})

	t.Run("EmptyAndCommentOnly", func(t *testing.T) {
		conn := openMem(t)

		results, err := RunScript(context.Background(), conn, "   ")
		require.NoError(t, err)
		assert.Empty(t, results)

		results, err = RunScript(context.Background(), conn, "SELECT 1; -- trailing comment")
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("EmptyStatementsBetween", func(t *testing.T) {
		conn := openMem(t)

		results, err := RunScript(context.Background(), conn, "SELECT 1;; SELECT 2")
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "SELECT 1;", results[0].SQL)
		assert.Equal(t, "SELECT 2", results[1].SQL)
		assert.Equal(t, [][]any{{int64(2)}}, results[1].Rows)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		conn := openMem(t)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		results, err := RunScript(ctx, conn, "SELECT 1")
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, results)
	})
}

func Test_isWrite(t *testing.T) {
	tests := []struct {
		sql  string
		want bool
	}{
		{sql: "INSERT INTO t VALUES (1)", want: true},
		{sql: "update t set x = 1", want: true},
		{sql: "DELETE FROM t", want: true},
		{sql: "REPLACE INTO t VALUES (1)", want: true},
		{sql: "WITH c AS (SELECT 1) INSERT INTO t SELECT * FROM c", want: true},
		{sql: "WITH c AS (SELECT 1) SELECT * FROM c", want: false},
		{sql: "CREATE TABLE t (x)", want: false},
		{sql: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			assert.Equal(t, tt.want, isWrite(tt.sql))
		})
	}
}

func TestRenderResult(t *testing.T) {
	t.Run("Read", func(t *testing.T) {
		var buf bytes.Buffer
		renderResult(&buf, Result{
			Columns: []string{"id", "name"},
			Rows:    [][]any{{int64(1), "Steven"}},
		}, true)

		out := buf.String()
		assert.Contains(t, out, "id")
		assert.Contains(t, out, "Steven")
		assert.Contains(t, out, "1 row")
	})

	t.Run("Write", func(t *testing.T) {
		var buf bytes.Buffer
		renderResult(&buf, Result{Write: true, Changes: 1500, LastInsertID: 1500}, true)

		out := buf.String()
		assert.Contains(t, out, "Rows Affected")
		assert.Contains(t, out, "1,500")
	})

	t.Run("Other", func(t *testing.T) {
		var buf bytes.Buffer
		renderResult(&buf, Result{}, true)
		assert.Contains(t, buf.String(), "OK")
	})

	t.Run("Error", func(t *testing.T) {
		var buf bytes.Buffer
		renderError(&buf, sqlite3.ErrNoStatement)
		assert.Contains(t, buf.String(), "Error: ")
	})
}

func Test_rowCount(t *testing.T) {
	assert.Equal(t, "0 rows", rowCount(0))
	assert.Equal(t, "1 row", rowCount(1))
	assert.Equal(t, "12,000 rows", rowCount(12000))
}
