package sqlite3

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nsqlite/sqlite3/ffi"
)

type connOptions struct {
	detailed        bool
	busyTimeout     time.Duration
	postOpenQueries []string
}

// Option configures a connection created by Open.
type Option func(*connOptions)

// WithDetailedErrors makes errors carry a copy of the engine's error
// message as their Detail. Statements inherit the setting when prepared.
func WithDetailedErrors(detailed bool) Option {
	return func(o *connOptions) {
		o.detailed = detailed
	}
}

// WithBusyTimeout sets the busy timeout right after opening.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *connOptions) {
		o.busyTimeout = d
	}
}

// WithPostOpenQueries sets a slice of queries to be executed after the
// database is opened, typically PRAGMA statements.
func WithPostOpenQueries(queries []string) Option {
	return func(o *connOptions) {
		o.postOpenQueries = queries
	}
}

// Conn is an open database connection.
//
// All engine calls made through a Conn, including those of its statements,
// result sets and rows, are serialized by the connection.
//
// https://www.sqlite.org/c3ref/sqlite3.html
type Conn struct {
	mu       sync.Mutex
	db       *ffi.DB
	detailed bool
	stmts    map[*Stmt]struct{}
}

// Open opens a connection using the given access capability. On failure no
// handle is leaked and the error always carries the engine's message.
func Open(access Access, opts ...Option) (*Conn, error) {
	var o connOptions
	for _, opt := range opts {
		opt(&o)
	}

	if byName, ok := access.(ByFilename); ok && strings.IndexByte(byName.Filename, 0) >= 0 {
		return nil, ErrEmbeddedNul
	}

	db, rc := access.Open()
	if rc != ffi.SQLITE_OK {
		err := codeError(rc)
		if db != nil {
			err.Detail = validMsg(db.ErrMsg())
			_ = db.Close()
		}
		return nil, err
	}
	if db == nil {
		return nil, codeError(ffi.SQLITE_CANTOPEN)
	}

	conn := &Conn{
		db:       db,
		detailed: o.detailed,
		stmts:    make(map[*Stmt]struct{}),
	}

	if o.busyTimeout > 0 {
		if err := conn.BusyTimeout(o.busyTimeout); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}

	for _, query := range o.postOpenQueries {
		if err := conn.Exec(query); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf(`failed to execute "%s" post-open query: %w`, query, err)
		}
	}

	return conn, nil
}

// Close finalizes every statement still alive, then closes the handle.
// Calling it again is a no-op.
//
// It panics if the engine refuses to close, which can only mean the
// connection's own bookkeeping is broken.
//
// https://www.sqlite.org/c3ref/close.html
func (conn *Conn) Close() error {
	conn.mu.Lock()
	defer conn.mu.Unlock()

	if conn.db == nil {
		return nil
	}

	for stmt := range conn.stmts {
		stmt.finalizeLocked()
	}

	if rc := conn.db.Close(); rc != ffi.SQLITE_OK {
		panic(engineError(conn.db, rc, true))
	}
	conn.db = nil

	return nil
}

// SetDetailed changes whether errors of this connection, and of statements
// prepared from now on, carry the engine message.
func (conn *Conn) SetDetailed(detailed bool) {
	conn.mu.Lock()
	defer conn.mu.Unlock()
	conn.detailed = detailed
}

// Detailed reports whether detailed errors are enabled.
func (conn *Conn) Detailed() bool {
	conn.mu.Lock()
	defer conn.mu.Unlock()
	return conn.detailed
}

// Prepare compiles the first statement of sql.
//
// https://www.sqlite.org/c3ref/prepare.html
func (conn *Conn) Prepare(sql string) (*Stmt, error) {
	stmt, _, err := conn.PrepareWithOffset(sql)
	return stmt, err
}

// PrepareWithOffset compiles the first statement of sql and also returns
// the number of bytes of sql it consumed, so that sql[n:] holds the rest of
// a multi-statement script.
//
// https://www.sqlite.org/c3ref/prepare.html
func (conn *Conn) PrepareWithOffset(sql string) (*Stmt, int, error) {
	if strings.IndexByte(sql, 0) >= 0 {
		return nil, 0, ErrEmbeddedNul
	}

	conn.mu.Lock()
	defer conn.mu.Unlock()

	if conn.db == nil {
		return nil, 0, ErrConnClosed
	}

	handle, n, rc := conn.db.Prepare(sql)
	if rc != ffi.SQLITE_OK {
		return nil, n, engineError(conn.db, rc, conn.detailed)
	}
	if handle == nil {
		return nil, n, ErrNoStatement
	}

	stmt := &Stmt{
		conn:     conn,
		handle:   handle,
		sql:      strings.TrimSpace(strings.TrimLeft(sql[:n], "; \t\n\v\f\r")),
		detailed: conn.detailed,
	}
	conn.stmts[stmt] = struct{}{}

	return stmt, n, nil
}

// Exec runs sql, which may hold several statements, without returning rows.
// It is meant for DDL and scripts.
//
// https://www.sqlite.org/c3ref/exec.html
func (conn *Conn) Exec(sql string) error {
	if strings.IndexByte(sql, 0) >= 0 {
		return ErrEmbeddedNul
	}

	conn.mu.Lock()
	defer conn.mu.Unlock()

	if conn.db == nil {
		return ErrConnClosed
	}

	rc, msg := conn.db.Exec(sql)
	if rc != ffi.SQLITE_OK {
		err := codeError(rc)
		if conn.detailed {
			err.Detail = validMsg(msg, true)
		}
		return err
	}
	return nil
}

// Query prepares sql, binds values, calls fn for every row and finalizes
// the statement.
func (conn *Conn) Query(sql string, values []ToSql, fn func(*Row) error) error {
	stmt, err := conn.Prepare(sql)
	if err != nil {
		return err
	}
	defer stmt.Close()

	return stmt.Query(values, fn)
}

// Changes returns the number of rows modified by the most recently
// completed INSERT, UPDATE or DELETE.
//
// https://www.sqlite.org/c3ref/changes.html
func (conn *Conn) Changes() int {
	conn.mu.Lock()
	defer conn.mu.Unlock()

	if conn.db == nil {
		return 0
	}
	return conn.db.Changes()
}

// LastInsertRowID returns the row ID of the most recent successful INSERT
// into the database from the current connection.
//
// https://www.sqlite.org/c3ref/last_insert_rowid.html
func (conn *Conn) LastInsertRowID() int64 {
	conn.mu.Lock()
	defer conn.mu.Unlock()

	if conn.db == nil {
		return 0
	}
	return conn.db.LastInsertRowID()
}

// BusyTimeout makes the engine retry for up to d when a table is locked.
// A d <= 0 turns the busy handler off.
//
// https://www.sqlite.org/c3ref/busy_timeout.html
func (conn *Conn) BusyTimeout(d time.Duration) error {
	conn.mu.Lock()
	defer conn.mu.Unlock()

	if conn.db == nil {
		return ErrConnClosed
	}

	ms := 0
	if d > 0 {
		ms = int(d / time.Millisecond)
	}
	if rc := conn.db.BusyTimeout(ms); rc != ffi.SQLITE_OK {
		return engineError(conn.db, rc, conn.detailed)
	}
	return nil
}

// ErrMsg returns the engine's most recent error message, or "" when there
// is none or it is not valid UTF-8.
//
// https://www.sqlite.org/c3ref/errcode.html
func (conn *Conn) ErrMsg() string {
	conn.mu.Lock()
	defer conn.mu.Unlock()

	if conn.db == nil {
		return ""
	}
	return validMsg(conn.db.ErrMsg())
}
