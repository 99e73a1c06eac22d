package ffi

import (
	"unsafe"

	"modernc.org/libc"
	"modernc.org/libc/sys/types"
	sqlite3 "modernc.org/sqlite/lib"
)

const ptrSize = unsafe.Sizeof(uintptr(0))

// transient is SQLITE_TRANSIENT, the engine copies bound text and blobs
// before the bind call returns.
const transient = ^uintptr(0)

// DB wraps a native database handle together with the thread-local state
// the transpiled engine runs on.
//
// https://www.sqlite.org/c3ref/sqlite3.html
type DB struct {
	tls *libc.TLS
	db  uintptr // *sqlite3.Xsqlite3
}

// Stmt wraps a native compiled-statement handle.
//
// https://www.sqlite.org/c3ref/stmt.html
type Stmt struct {
	db   *DB
	stmt uintptr // *sqlite3.Xsqlite3_stmt
}

// OpenV2 opens the database at filename with the given flags. The returned
// handle may be non-nil even when the code is not SQLITE_OK, in which case
// the caller must still Close it.
//
// https://www.sqlite.org/c3ref/open.html
func OpenV2(filename string, flags OpenFlags) (*DB, Code) {
	tls := libc.NewTLS()

	cName, err := libc.CString(filename)
	if err != nil {
		tls.Close()
		return nil, SQLITE_NOMEM
	}
	defer libc.Xfree(tls, cName)

	pp := libc.Xmalloc(tls, types.Size_t(ptrSize))
	if pp == 0 {
		tls.Close()
		return nil, SQLITE_NOMEM
	}
	defer libc.Xfree(tls, pp)
	*(*uintptr)(unsafe.Pointer(pp)) = 0

	rc := Code(sqlite3.Xsqlite3_open_v2(tls, cName, pp, int32(flags), 0))
	handle := *(*uintptr)(unsafe.Pointer(pp))
	if handle == 0 {
		tls.Close()
		if rc == SQLITE_OK {
			rc = SQLITE_NOMEM
		}
		return nil, rc
	}

	return &DB{tls: tls, db: handle}, rc
}

// Close closes the database handle. It fails with SQLITE_BUSY if any
// statement created from it is still alive.
//
// https://www.sqlite.org/c3ref/close.html
func (db *DB) Close() Code {
	rc := Code(sqlite3.Xsqlite3_close(db.tls, db.db))
	if rc == SQLITE_OK {
		db.db = 0
		db.tls.Close()
	}
	return rc
}

// ErrMsg returns the English-language text of the most recent error. The
// second value is false when the engine returned a null pointer.
//
// https://www.sqlite.org/c3ref/errcode.html
func (db *DB) ErrMsg() (string, bool) {
	p := sqlite3.Xsqlite3_errmsg(db.tls, db.db)
	if p == 0 {
		return "", false
	}
	return libc.GoString(p), true
}

// ErrStr returns the static English description of a result code.
//
// https://www.sqlite.org/c3ref/errcode.html
func ErrStr(code Code) string {
	tls := libc.NewTLS()
	defer tls.Close()
	return libc.GoString(sqlite3.Xsqlite3_errstr(tls, int32(code)))
}

// Changes returns the number of rows modified by the most recently
// completed INSERT, UPDATE or DELETE.
//
// https://www.sqlite.org/c3ref/changes.html
func (db *DB) Changes() int {
	return int(sqlite3.Xsqlite3_changes(db.tls, db.db))
}

// LastInsertRowID returns the rowid of the most recent successful INSERT.
//
// https://www.sqlite.org/c3ref/last_insert_rowid.html
func (db *DB) LastInsertRowID() int64 {
	return int64(sqlite3.Xsqlite3_last_insert_rowid(db.tls, db.db))
}

// BusyTimeout installs a busy handler that sleeps up to ms milliseconds.
// A value <= 0 removes any busy handler.
//
// https://www.sqlite.org/c3ref/busy_timeout.html
func (db *DB) BusyTimeout(ms int) Code {
	return Code(sqlite3.Xsqlite3_busy_timeout(db.tls, db.db, int32(ms)))
}

// Exec runs zero or more semicolon-separated statements without a row
// callback. On failure the engine-allocated error message is returned.
//
// https://www.sqlite.org/c3ref/exec.html
func (db *DB) Exec(sql string) (Code, string) {
	cSQL, err := libc.CString(sql)
	if err != nil {
		return SQLITE_NOMEM, ""
	}
	defer libc.Xfree(db.tls, cSQL)

	pErr := libc.Xmalloc(db.tls, types.Size_t(ptrSize))
	if pErr == 0 {
		return SQLITE_NOMEM, ""
	}
	defer libc.Xfree(db.tls, pErr)
	*(*uintptr)(unsafe.Pointer(pErr)) = 0

	rc := Code(sqlite3.Xsqlite3_exec(db.tls, db.db, cSQL, 0, 0, pErr))
	var msg string
	if p := *(*uintptr)(unsafe.Pointer(pErr)); p != 0 {
		msg = libc.GoString(p)
		sqlite3.Xsqlite3_free(db.tls, p)
	}
	return rc, msg
}

// Prepare compiles the first statement in sql. It returns the number of
// bytes of sql consumed. The statement is nil when sql holds no statement
// (only whitespace or comments) and the code is SQLITE_OK.
//
// https://www.sqlite.org/c3ref/prepare.html
func (db *DB) Prepare(sql string) (*Stmt, int, Code) {
	cSQL, err := libc.CString(sql)
	if err != nil {
		return nil, 0, SQLITE_NOMEM
	}
	defer libc.Xfree(db.tls, cSQL)

	out := libc.Xmalloc(db.tls, types.Size_t(2*ptrSize))
	if out == 0 {
		return nil, 0, SQLITE_NOMEM
	}
	defer libc.Xfree(db.tls, out)
	ppStmt, pzTail := out, out+ptrSize
	*(*uintptr)(unsafe.Pointer(ppStmt)) = 0
	*(*uintptr)(unsafe.Pointer(pzTail)) = 0

	rc := Code(sqlite3.Xsqlite3_prepare_v2(db.tls, db.db, cSQL, int32(len(sql)+1), ppStmt, pzTail))

	consumed := len(sql)
	if tail := *(*uintptr)(unsafe.Pointer(pzTail)); tail != 0 {
		consumed = int(tail - cSQL)
	}
	handle := *(*uintptr)(unsafe.Pointer(ppStmt))
	if rc != SQLITE_OK || handle == 0 {
		return nil, consumed, rc
	}
	return &Stmt{db: db, stmt: handle}, consumed, rc
}

// Finalize destroys the statement.
//
// https://www.sqlite.org/c3ref/finalize.html
func (s *Stmt) Finalize() Code {
	rc := Code(sqlite3.Xsqlite3_finalize(s.db.tls, s.stmt))
	s.stmt = 0
	return rc
}

// Reset returns the statement to its initial state, keeping bindings.
//
// https://www.sqlite.org/c3ref/reset.html
func (s *Stmt) Reset() Code {
	return Code(sqlite3.Xsqlite3_reset(s.db.tls, s.stmt))
}

// Step evaluates the statement up to the next row.
//
// https://www.sqlite.org/c3ref/step.html
func (s *Stmt) Step() Code {
	return Code(sqlite3.Xsqlite3_step(s.db.tls, s.stmt))
}

// ClearBindings sets every parameter back to NULL.
//
// https://www.sqlite.org/c3ref/clear_bindings.html
func (s *Stmt) ClearBindings() Code {
	return Code(sqlite3.Xsqlite3_clear_bindings(s.db.tls, s.stmt))
}

// BindParameterCount returns the largest parameter index.
//
// https://www.sqlite.org/c3ref/bind_parameter_count.html
func (s *Stmt) BindParameterCount() int {
	return int(sqlite3.Xsqlite3_bind_parameter_count(s.db.tls, s.stmt))
}

// BindNull binds NULL at the 1-based index i.
//
// https://www.sqlite.org/c3ref/bind_blob.html
func (s *Stmt) BindNull(i int) Code {
	return Code(sqlite3.Xsqlite3_bind_null(s.db.tls, s.stmt, int32(i)))
}

// BindInt binds a 32-bit integer at the 1-based index i.
//
// https://www.sqlite.org/c3ref/bind_blob.html
func (s *Stmt) BindInt(i int, v int32) Code {
	return Code(sqlite3.Xsqlite3_bind_int(s.db.tls, s.stmt, int32(i), v))
}

// BindInt64 binds a 64-bit integer at the 1-based index i.
//
// https://www.sqlite.org/c3ref/bind_blob.html
func (s *Stmt) BindInt64(i int, v int64) Code {
	return Code(sqlite3.Xsqlite3_bind_int64(s.db.tls, s.stmt, int32(i), v))
}

// BindDouble binds a float at the 1-based index i.
//
// https://www.sqlite.org/c3ref/bind_blob.html
func (s *Stmt) BindDouble(i int, v float64) Code {
	return Code(sqlite3.Xsqlite3_bind_double(s.db.tls, s.stmt, int32(i), v))
}

// BindText binds v at the 1-based index i. The engine keeps its own copy.
//
// https://www.sqlite.org/c3ref/bind_blob.html
func (s *Stmt) BindText(i int, v string) Code {
	p, err := libc.CString(v)
	if err != nil {
		return SQLITE_NOMEM
	}
	defer libc.Xfree(s.db.tls, p)
	return Code(sqlite3.Xsqlite3_bind_text(s.db.tls, s.stmt, int32(i), p, int32(len(v)), transient))
}

// BindBlob binds v at the 1-based index i. The engine keeps its own copy.
// An empty slice binds a zero-length blob, never NULL.
//
// https://www.sqlite.org/c3ref/bind_blob.html
func (s *Stmt) BindBlob(i int, v []byte) Code {
	if len(v) == 0 {
		return Code(sqlite3.Xsqlite3_bind_zeroblob(s.db.tls, s.stmt, int32(i), 0))
	}

	p := libc.Xmalloc(s.db.tls, types.Size_t(len(v)))
	if p == 0 {
		return SQLITE_NOMEM
	}
	defer libc.Xfree(s.db.tls, p)
	copy((*libc.RawMem)(unsafe.Pointer(p))[:len(v):len(v)], v)
	return Code(sqlite3.Xsqlite3_bind_blob(s.db.tls, s.stmt, int32(i), p, int32(len(v)), transient))
}

// ColumnCount returns the number of columns in the result set.
//
// https://www.sqlite.org/c3ref/column_count.html
func (s *Stmt) ColumnCount() int {
	return int(sqlite3.Xsqlite3_column_count(s.db.tls, s.stmt))
}

// ColumnName returns the name of column i. The second value is false when
// the engine returned a null pointer.
//
// https://www.sqlite.org/c3ref/column_name.html
func (s *Stmt) ColumnName(i int) (string, bool) {
	p := sqlite3.Xsqlite3_column_name(s.db.tls, s.stmt, int32(i))
	if p == 0 {
		return "", false
	}
	return libc.GoString(p), true
}

// ColumnType returns the datatype of column i in the current row.
//
// https://www.sqlite.org/c3ref/column_blob.html
func (s *Stmt) ColumnType(i int) ColumnType {
	return ColumnType(sqlite3.Xsqlite3_column_type(s.db.tls, s.stmt, int32(i)))
}

// ColumnInt returns column i as a 32-bit integer.
//
// https://www.sqlite.org/c3ref/column_blob.html
func (s *Stmt) ColumnInt(i int) int32 {
	return sqlite3.Xsqlite3_column_int(s.db.tls, s.stmt, int32(i))
}

// ColumnInt64 returns column i as a 64-bit integer.
//
// https://www.sqlite.org/c3ref/column_blob.html
func (s *Stmt) ColumnInt64(i int) int64 {
	return int64(sqlite3.Xsqlite3_column_int64(s.db.tls, s.stmt, int32(i)))
}

// ColumnDouble returns column i as a float.
//
// https://www.sqlite.org/c3ref/column_blob.html
func (s *Stmt) ColumnDouble(i int) float64 {
	return sqlite3.Xsqlite3_column_double(s.db.tls, s.stmt, int32(i))
}

// ColumnText returns a copy of column i as text. The second value is false
// when the engine returned a null pointer, which happens for NULL values.
//
// https://www.sqlite.org/c3ref/column_blob.html
func (s *Stmt) ColumnText(i int) (string, bool) {
	p := sqlite3.Xsqlite3_column_text(s.db.tls, s.stmt, int32(i))
	if p == 0 {
		return "", false
	}
	n := int(sqlite3.Xsqlite3_column_bytes(s.db.tls, s.stmt, int32(i)))
	if n == 0 {
		return "", true
	}
	return string((*libc.RawMem)(unsafe.Pointer(p))[:n:n]), true
}

// ColumnBlob returns a copy of column i as a blob. It returns nil when the
// engine returned a null pointer, which happens for NULL values and for
// zero-length blobs alike.
//
// https://www.sqlite.org/c3ref/column_blob.html
func (s *Stmt) ColumnBlob(i int) []byte {
	p := sqlite3.Xsqlite3_column_blob(s.db.tls, s.stmt, int32(i))
	if p == 0 {
		return nil
	}
	n := int(sqlite3.Xsqlite3_column_bytes(s.db.tls, s.stmt, int32(i)))
	b := make([]byte, n)
	copy(b, (*libc.RawMem)(unsafe.Pointer(p))[:n:n])
	return b
}

// LibVersion returns the version of the engine, e.g. "3.49.2".
//
// https://www.sqlite.org/c3ref/libversion.html
func LibVersion() string {
	tls := libc.NewTLS()
	defer tls.Close()
	return libc.GoString(sqlite3.Xsqlite3_libversion(tls))
}
