package sqlite3

import (
	"testing"

	"github.com/google/uuid"
	"github.com/nsqlite/sqlite3/ffi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prepare(t *testing.T, conn *Conn, sql string) *Stmt {
	t.Helper()
	stmt, err := conn.Prepare(sql)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stmt.Close() })
	return stmt
}

// single executes stmt and returns the first row with its result set.
func single(t *testing.T, stmt *Stmt) (*ResultSet, *Row) {
	t.Helper()
	rs, err := stmt.Execute()
	require.NoError(t, err)
	t.Cleanup(func() { _ = rs.Close() })
	row, err := rs.Step()
	require.NoError(t, err)
	require.NotNil(t, row)
	return rs, row
}

func TestStmtBind(t *testing.T) {
	t.Run("AllTypes", func(t *testing.T) {
		conn := openMem(t)
		stmt := prepare(t, conn, "SELECT ?1, ?2, ?3, ?4, ?5, ?6")
		text := uuid.NewString()

		assert.Equal(t, 6, stmt.BindParameterCount())
		assert.NoError(t, stmt.BindInt(1, 7))
		assert.NoError(t, stmt.BindInt64(2, 1<<40))
		assert.NoError(t, stmt.BindDouble(3, 3.14))
		assert.NoError(t, stmt.BindText(4, text))
		assert.NoError(t, stmt.BindBlob(5, []byte("raw")))
		assert.NoError(t, stmt.BindNull(6))

		_, row := single(t, stmt)
		assert.Equal(t, ffi.SQLITE_INTEGER, row.ColumnType(0))
		assert.Equal(t, int32(7), row.ColumnInt(0))
		assert.Equal(t, int64(1<<40), row.ColumnInt64(1))
		assert.InDelta(t, 3.14, row.ColumnDouble(2), 1e-9)
		got, ok := row.ColumnText(3)
		assert.True(t, ok)
		assert.Equal(t, text, got)
		blob, ok := row.ColumnBlob(4)
		assert.True(t, ok)
		assert.Equal(t, []byte("raw"), blob)
		assert.Equal(t, ffi.SQLITE_NULL, row.ColumnType(5))
	})

	t.Run("UnboundIsNull", func(t *testing.T) {
		conn := openMem(t)
		stmt := prepare(t, conn, "SELECT ?1")
		_, row := single(t, stmt)
		assert.Equal(t, ffi.SQLITE_NULL, row.ColumnType(0))
	})

	t.Run("BufferNotAliased", func(t *testing.T) {
		conn := openMem(t)
		stmt := prepare(t, conn, "SELECT ?1")
		buf := []byte("before")
		require.NoError(t, stmt.BindBlob(1, buf))
		copy(buf, "after!")

		_, row := single(t, stmt)
		blob, _ := row.ColumnBlob(0)
		assert.Equal(t, []byte("before"), blob)
	})

	t.Run("EmptyBlobIsNotNull", func(t *testing.T) {
		conn := openMem(t)
		stmt := prepare(t, conn, "SELECT ?1, typeof(?1)")
		require.NoError(t, stmt.BindBlob(1, nil))

		_, row := single(t, stmt)
		blob, ok := row.ColumnBlob(0)
		assert.True(t, ok)
		assert.Equal(t, []byte{}, blob)
		kind, _ := row.ColumnText(1)
		assert.Equal(t, "blob", kind)
	})

	t.Run("IndexZero", func(t *testing.T) {
		conn := openMem(t)
		stmt := prepare(t, conn, "SELECT ?1")
		err := stmt.BindInt(0, 1)
		assert.ErrorIs(t, err, &Error{Code: ffi.SQLITE_RANGE})
	})

	t.Run("IndexPastEnd", func(t *testing.T) {
		conn := openMem(t)
		stmt := prepare(t, conn, "SELECT ?1")
		err := stmt.BindText(2, "x")
		assert.ErrorIs(t, err, &Error{Code: ffi.SQLITE_RANGE})
	})

	t.Run("EmbeddedNul", func(t *testing.T) {
		conn := openMem(t)
		stmt := prepare(t, conn, "SELECT ?1")
		assert.ErrorIs(t, stmt.BindText(1, "a\x00b"), ErrEmbeddedNul)
	})

	t.Run("Overwrite", func(t *testing.T) {
		conn := openMem(t)
		stmt := prepare(t, conn, "SELECT ?1")
		require.NoError(t, stmt.BindInt(1, 1))
		require.NoError(t, stmt.BindText(1, "second"))

		_, row := single(t, stmt)
		got, _ := row.ColumnText(0)
		assert.Equal(t, "second", got)
	})

	t.Run("PersistAcrossExecutions", func(t *testing.T) {
		conn := openMem(t)
		stmt := prepare(t, conn, "SELECT ?1")
		require.NoError(t, stmt.BindInt(1, 5))

		for i := 0; i < 3; i++ {
			rs, err := stmt.Execute()
			require.NoError(t, err)
			row, err := rs.Step()
			require.NoError(t, err)
			assert.Equal(t, int32(5), row.ColumnInt(0))
			require.NoError(t, rs.Close())
		}
	})

	t.Run("ClearBindings", func(t *testing.T) {
		conn := openMem(t)
		stmt := prepare(t, conn, "SELECT ?1")
		require.NoError(t, stmt.BindInt(1, 5))
		require.NoError(t, stmt.ClearBindings())

		_, row := single(t, stmt)
		assert.Equal(t, ffi.SQLITE_NULL, row.ColumnType(0))
	})

	t.Run("BindAll", func(t *testing.T) {
		conn := openMem(t)
		stmt := prepare(t, conn, "SELECT ?1 || ?2, ?3")
		require.NoError(t, stmt.BindAll(Text("a"), Text("b"), Null{}))

		_, row := single(t, stmt)
		got, _ := row.ColumnText(0)
		assert.Equal(t, "ab", got)
		assert.Equal(t, ffi.SQLITE_NULL, row.ColumnType(1))
	})
}

func TestStmtLiveness(t *testing.T) {
	t.Run("BusyWhileResultSetOpen", func(t *testing.T) {
		conn := openMem(t)
		stmt := prepare(t, conn, "SELECT ?1")
		rs, err := stmt.Execute()
		require.NoError(t, err)

		assert.ErrorIs(t, stmt.BindInt(1, 1), ErrStatementBusy)
		assert.ErrorIs(t, stmt.ClearBindings(), ErrStatementBusy)
		_, err = stmt.Execute()
		assert.ErrorIs(t, err, ErrStatementBusy)

		require.NoError(t, rs.Close())
		assert.NoError(t, stmt.BindInt(1, 1))
		_, err = stmt.Execute()
		assert.NoError(t, err)
	})

	t.Run("CloseTwice", func(t *testing.T) {
		conn := openMem(t)
		stmt, err := conn.Prepare("SELECT 1")
		require.NoError(t, err)
		assert.NoError(t, stmt.Close())
		assert.NoError(t, stmt.Close())
		assert.Equal(t, 0, stmt.BindParameterCount())

		_, err = stmt.Execute()
		assert.ErrorIs(t, err, ErrFinalized)
	})

	t.Run("CloseWithOpenResultSet", func(t *testing.T) {
		conn := openMem(t)
		stmt, err := conn.Prepare("SELECT 1")
		require.NoError(t, err)
		rs, row := single(t, stmt)

		assert.NoError(t, stmt.Close())
		assert.Equal(t, StateClosed, rs.State())
		assert.Panics(t, func() { row.ColumnInt(0) })
	})
}

func TestStmtUpdate(t *testing.T) {
	conn := openMem(t)
	require.NoError(t, conn.Exec("CREATE TABLE t (id INTEGER PRIMARY KEY, name TEXT)"))

	insert := prepare(t, conn, "INSERT INTO t (name) VALUES (?1)")
	for _, name := range []string{"a", "b", "c"} {
		n, err := insert.Update(Text(name))
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	}
	assert.Equal(t, int64(3), conn.LastInsertRowID())

	rename := prepare(t, conn, "UPDATE t SET name = ?1 WHERE id >= ?2")
	n, err := rename.Update(Text("z"), Int(2))
	assert.NoError(t, err)
	assert.Equal(t, 2, n)

	t.Run("RowsAreMisuse", func(t *testing.T) {
		sel := prepare(t, conn, "SELECT * FROM t")
		_, err := sel.Update()
		assert.ErrorIs(t, err, &Error{Code: ffi.SQLITE_MISUSE})
		assert.ErrorContains(t, err, "update statement returned rows")
	})

	t.Run("Constraint", func(t *testing.T) {
		dup := prepare(t, conn, "INSERT INTO t (id, name) VALUES (?1, ?2)")
		_, err := dup.Update(Int(1), Text("again"))
		assert.ErrorIs(t, err, &Error{Code: ffi.SQLITE_CONSTRAINT})
	})
}

func TestStmtQuery(t *testing.T) {
	conn := openMem(t)
	require.NoError(t, conn.Exec(`
		CREATE TABLE t (x INTEGER);
		INSERT INTO t VALUES (1), (2), (3), (4);
	`))

	stmt := prepare(t, conn, "SELECT x FROM t WHERE x > ?1 ORDER BY x")

	var got []int32
	err := stmt.Query([]ToSql{Int(1)}, func(r *Row) error {
		got = append(got, r.ColumnInt(0))
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, []int32{2, 3, 4}, got)

	t.Run("StopsOnCallbackError", func(t *testing.T) {
		stop := &Error{Code: ffi.SQLITE_ABORT, Desc: "stop"}
		calls := 0
		err := stmt.Query([]ToSql{Int(0)}, func(r *Row) error {
			calls++
			return stop
		})
		assert.ErrorIs(t, err, stop)
		assert.Equal(t, 1, calls)

		// The result set was closed, the statement is usable again.
		_, err = stmt.Execute()
		assert.NoError(t, err)
	})
}
