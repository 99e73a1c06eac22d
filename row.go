package sqlite3

import (
	"strconv"
	"unicode/utf8"

	"github.com/nsqlite/sqlite3/ffi"
)

// Row is the current row of a ResultSet. It is valid until the result set
// steps again or is closed; accessors on an invalid row panic with
// ErrStaleRow.
//
// Column indices are 0-based.
type Row struct {
	rs  *ResultSet
	gen uint64
}

// Index selects a column of a Row, by position or by name.
type Index interface {
	// column resolves the index against the row. The caller holds the
	// connection lock.
	column(r *Row) (int, bool)
	String() string
}

// Col selects a column by its 0-based position.
type Col int

func (c Col) column(r *Row) (int, bool) {
	i := int(c)
	return i, i >= 0 && i < r.rs.stmt.handle.ColumnCount()
}

func (c Col) String() string {
	return strconv.Itoa(int(c))
}

// Name selects the first column whose name equals the given string. The
// lookup scans the columns in order on every use.
type Name string

func (n Name) column(r *Row) (int, bool) {
	count := r.rs.stmt.handle.ColumnCount()
	for i := 0; i < count; i++ {
		if name, ok := r.columnName(i); ok && name == string(n) {
			return i, true
		}
	}
	return 0, false
}

func (n Name) String() string {
	return string(n)
}

// lock acquires the connection lock and checks the row is current. The
// returned function releases the lock.
func (r *Row) lock() (func(), error) {
	conn := r.rs.stmt.conn
	conn.mu.Lock()
	if r.rs.state != StateRow || r.rs.gen != r.gen {
		conn.mu.Unlock()
		return nil, ErrStaleRow
	}
	return conn.mu.Unlock, nil
}

func (r *Row) mustLock() func() {
	unlock, err := r.lock()
	if err != nil {
		panic(err)
	}
	return unlock
}

func (r *Row) handle() *ffi.Stmt {
	return r.rs.stmt.handle
}

// ColumnCount returns the number of columns in the row.
//
// https://www.sqlite.org/c3ref/column_count.html
func (r *Row) ColumnCount() int {
	defer r.mustLock()()
	return r.handle().ColumnCount()
}

func (r *Row) columnName(i int) (string, bool) {
	if i < 0 || i >= r.handle().ColumnCount() {
		return "", false
	}
	name, ok := r.handle().ColumnName(i)
	if !ok || !utf8.ValidString(name) {
		return "", false
	}
	return name, true
}

// ColumnName returns the name of column i. The second value is false when
// i is out of range or the engine has no valid UTF-8 name for it.
//
// https://www.sqlite.org/c3ref/column_name.html
func (r *Row) ColumnName(i int) (string, bool) {
	defer r.mustLock()()
	return r.columnName(i)
}

// WithColumnName calls f with the name of column i, or returns def without
// calling f when there is no usable name.
func WithColumnName[T any](r *Row, i int, def T, f func(name string) T) T {
	name, ok := r.ColumnName(i)
	if !ok {
		return def
	}
	return f(name)
}

// ColumnType returns the datatype of column i.
//
// The result is undefined once a typed accessor converted the value of the
// same column in this row, for example ColumnText on an INTEGER.
//
// https://www.sqlite.org/c3ref/column_blob.html
func (r *Row) ColumnType(i int) ColumnType {
	defer r.mustLock()()
	return r.handle().ColumnType(i)
}

// ColumnInt returns column i converted to a 32-bit integer.
//
// https://www.sqlite.org/c3ref/column_blob.html
func (r *Row) ColumnInt(i int) int32 {
	defer r.mustLock()()
	return r.handle().ColumnInt(i)
}

// ColumnInt64 returns column i converted to a 64-bit integer.
//
// https://www.sqlite.org/c3ref/column_blob.html
func (r *Row) ColumnInt64(i int) int64 {
	defer r.mustLock()()
	return r.handle().ColumnInt64(i)
}

// ColumnDouble returns column i converted to a float.
//
// https://www.sqlite.org/c3ref/column_blob.html
func (r *Row) ColumnDouble(i int) float64 {
	defer r.mustLock()()
	return r.handle().ColumnDouble(i)
}

// ColumnText returns a copy of column i as text. The second value is false
// for NULL, which is distinct from "".
//
// https://www.sqlite.org/c3ref/column_blob.html
func (r *Row) ColumnText(i int) (string, bool) {
	defer r.mustLock()()
	return r.handle().ColumnText(i)
}

// ColumnBlob returns a copy of column i as a blob. The second value is false
// for NULL; a zero-length blob is returned as an empty, non-nil slice.
//
// https://www.sqlite.org/c3ref/column_blob.html
func (r *Row) ColumnBlob(i int) ([]byte, bool) {
	defer r.mustLock()()
	return r.columnBlob(i)
}

func (r *Row) columnBlob(i int) ([]byte, bool) {
	if r.handle().ColumnType(i) == ffi.SQLITE_NULL {
		return nil, false
	}
	b := r.handle().ColumnBlob(i)
	if b == nil {
		b = []byte{}
	}
	return b, true
}

// Get decodes the column selected by idx into dest. It fails with MISUSE
// when the row is no longer valid or no column matches idx. A row that goes
// stale while dest decodes it is reported as ErrStaleRow.
func (r *Row) Get(idx Index, dest FromSql) (err error) {
	col, err := r.resolve(idx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			if p != ErrStaleRow {
				panic(p)
			}
			err = ErrStaleRow
		}
	}()
	return dest.ScanSQL(r, col)
}

// MustGet is like Get but panics on failure.
func (r *Row) MustGet(idx Index, dest FromSql) {
	if err := r.Get(idx, dest); err != nil {
		panic(err)
	}
}

func (r *Row) resolve(idx Index) (int, error) {
	unlock, err := r.lock()
	if err != nil {
		return 0, err
	}
	defer unlock()

	col, ok := idx.column(r)
	if !ok {
		return 0, noSuchColumn(idx)
	}
	return col, nil
}

// Get decodes the column selected by idx as a T.
func Get[T any, P interface {
	*T
	FromSql
}](r *Row, idx Index) (T, error) {
	var v T
	err := r.Get(idx, P(&v))
	return v, err
}
