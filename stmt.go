package sqlite3

import (
	"fmt"
	"strings"

	"github.com/nsqlite/sqlite3/ffi"
)

// Stmt is a compiled statement owned by a Conn.
//
// Bindings persist across executions. While a ResultSet from Execute is
// open the statement refuses to be bound, executed or cleared.
//
// https://www.sqlite.org/c3ref/stmt.html
type Stmt struct {
	conn     *Conn
	handle   *ffi.Stmt
	sql      string
	detailed bool
	rs       *ResultSet
}

// SQL returns the text of the statement.
func (stmt *Stmt) SQL() string {
	return stmt.sql
}

// SetDetailed changes whether errors of this statement carry the engine
// message.
func (stmt *Stmt) SetDetailed(detailed bool) {
	stmt.conn.mu.Lock()
	defer stmt.conn.mu.Unlock()
	stmt.detailed = detailed
}

// Close finalizes the statement, closing its open result set first.
// Calling it again is a no-op.
//
// https://www.sqlite.org/c3ref/finalize.html
func (stmt *Stmt) Close() error {
	stmt.conn.mu.Lock()
	defer stmt.conn.mu.Unlock()
	stmt.finalizeLocked()
	return nil
}

func (stmt *Stmt) finalizeLocked() {
	if stmt.handle == nil {
		return
	}
	if stmt.rs != nil {
		stmt.rs.closeLocked()
	}
	_ = stmt.handle.Finalize()
	stmt.handle = nil
	delete(stmt.conn.stmts, stmt)
}

// idleLocked reports whether the statement may be bound or executed.
func (stmt *Stmt) idleLocked() error {
	if stmt.handle == nil {
		return ErrFinalized
	}
	if stmt.rs != nil {
		return ErrStatementBusy
	}
	return nil
}

func (stmt *Stmt) errorLocked(rc Code) error {
	return engineError(stmt.conn.db, rc, stmt.detailed)
}

// bind runs fn on the engine after the liveness and index checks.
func (stmt *Stmt) bind(i int, fn func(h *ffi.Stmt) Code) error {
	stmt.conn.mu.Lock()
	defer stmt.conn.mu.Unlock()

	if err := stmt.idleLocked(); err != nil {
		return err
	}
	if i < 1 {
		return &Error{
			Code:   ffi.SQLITE_RANGE,
			Desc:   ffi.ErrStr(ffi.SQLITE_RANGE),
			Detail: fmt.Sprintf("parameter index %d, indices start at 1", i),
		}
	}
	if rc := fn(stmt.handle); rc != ffi.SQLITE_OK {
		return stmt.errorLocked(rc)
	}
	return nil
}

// BindNull binds NULL at the 1-based parameter index i.
//
// https://www.sqlite.org/c3ref/bind_blob.html
func (stmt *Stmt) BindNull(i int) error {
	return stmt.bind(i, func(h *ffi.Stmt) Code { return h.BindNull(i) })
}

// BindInt binds a 32-bit integer at the 1-based parameter index i.
//
// https://www.sqlite.org/c3ref/bind_blob.html
func (stmt *Stmt) BindInt(i int, v int32) error {
	return stmt.bind(i, func(h *ffi.Stmt) Code { return h.BindInt(i, v) })
}

// BindInt64 binds a 64-bit integer at the 1-based parameter index i.
//
// https://www.sqlite.org/c3ref/bind_blob.html
func (stmt *Stmt) BindInt64(i int, v int64) error {
	return stmt.bind(i, func(h *ffi.Stmt) Code { return h.BindInt64(i, v) })
}

// BindDouble binds a float at the 1-based parameter index i.
//
// https://www.sqlite.org/c3ref/bind_blob.html
func (stmt *Stmt) BindDouble(i int, v float64) error {
	return stmt.bind(i, func(h *ffi.Stmt) Code { return h.BindDouble(i, v) })
}

// BindText binds v at the 1-based parameter index i. The engine keeps its
// own copy of v.
//
// https://www.sqlite.org/c3ref/bind_blob.html
func (stmt *Stmt) BindText(i int, v string) error {
	if strings.IndexByte(v, 0) >= 0 {
		return ErrEmbeddedNul
	}
	return stmt.bind(i, func(h *ffi.Stmt) Code { return h.BindText(i, v) })
}

// BindBlob binds v at the 1-based parameter index i. The engine keeps its
// own copy of v. A nil or empty v binds a zero-length blob, not NULL.
//
// https://www.sqlite.org/c3ref/bind_blob.html
func (stmt *Stmt) BindBlob(i int, v []byte) error {
	return stmt.bind(i, func(h *ffi.Stmt) Code { return h.BindBlob(i, v) })
}

// Bind binds v at the 1-based parameter index i.
func (stmt *Stmt) Bind(i int, v ToSql) error {
	return v.BindSQL(stmt, i)
}

// BindAll binds values to parameters 1 through len(values).
func (stmt *Stmt) BindAll(values ...ToSql) error {
	for i, v := range values {
		if err := stmt.Bind(i+1, v); err != nil {
			return err
		}
	}
	return nil
}

// ClearBindings resets every parameter to NULL. Only liveness errors are
// reported; the engine's own result is ignored.
//
// https://www.sqlite.org/c3ref/clear_bindings.html
func (stmt *Stmt) ClearBindings() error {
	stmt.conn.mu.Lock()
	defer stmt.conn.mu.Unlock()

	if err := stmt.idleLocked(); err != nil {
		return err
	}
	_ = stmt.handle.ClearBindings()
	return nil
}

// BindParameterCount returns the largest parameter index of the statement.
//
// https://www.sqlite.org/c3ref/bind_parameter_count.html
func (stmt *Stmt) BindParameterCount() int {
	stmt.conn.mu.Lock()
	defer stmt.conn.mu.Unlock()

	if stmt.handle == nil {
		return 0
	}
	return stmt.handle.BindParameterCount()
}

type executeOptions struct {
	wantChanges bool
}

// ExecuteOption configures a single Execute call.
type ExecuteOption func(*executeOptions)

// WantChanges makes the result set capture Conn.Changes when the statement
// completes. See ResultSet.Changes.
func WantChanges() ExecuteOption {
	return func(o *executeOptions) {
		o.wantChanges = true
	}
}

// Execute starts a new pass over the statement. The returned ResultSet
// must be closed before the statement can be used again.
func (stmt *Stmt) Execute(opts ...ExecuteOption) (*ResultSet, error) {
	var o executeOptions
	for _, opt := range opts {
		opt(&o)
	}

	stmt.conn.mu.Lock()
	defer stmt.conn.mu.Unlock()

	if err := stmt.idleLocked(); err != nil {
		return nil, err
	}

	rs := &ResultSet{
		stmt:        stmt,
		state:       StateReady,
		wantChanges: o.wantChanges,
	}
	stmt.rs = rs
	return rs, nil
}

// Update binds values, runs the statement to completion and returns the
// number of rows it changed. A statement yielding rows is a misuse.
func (stmt *Stmt) Update(values ...ToSql) (int, error) {
	if err := stmt.BindAll(values...); err != nil {
		return 0, err
	}

	rs, err := stmt.Execute(WantChanges())
	if err != nil {
		return 0, err
	}
	defer rs.Close()

	row, err := rs.Step()
	if err != nil {
		return 0, err
	}
	if row != nil {
		return 0, &Error{
			Code:   ffi.SQLITE_MISUSE,
			Desc:   "update statement returned rows",
			Detail: stmt.sql,
		}
	}

	changes, _ := rs.Changes()
	return changes, nil
}

// Query binds values and calls fn for every row. Iteration stops at the
// first error, from the engine or from fn.
func (stmt *Stmt) Query(values []ToSql, fn func(*Row) error) error {
	if err := stmt.BindAll(values...); err != nil {
		return err
	}

	rs, err := stmt.Execute()
	if err != nil {
		return err
	}
	defer rs.Close()

	for {
		row, err := rs.Step()
		if err != nil {
			return err
		}
		if row == nil {
			return nil
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}
