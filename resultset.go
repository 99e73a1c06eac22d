package sqlite3

import (
	"github.com/nsqlite/sqlite3/ffi"
	"github.com/orsinium-labs/enum"
)

// State is the position of a ResultSet in its step state machine.
type State enum.Member[string]

var (
	StateReady  = State{Value: "ready"}
	StateRow    = State{Value: "row"}
	StateDone   = State{Value: "done"}
	StateFailed = State{Value: "failed"}
	StateClosed = State{Value: "closed"}

	States = enum.New(StateReady, StateRow, StateDone, StateFailed, StateClosed)
)

func (s State) String() string {
	return s.Value
}

// ResultSet is one in-progress execution of a Stmt.
//
// Step moves from ready to row, done or failed. Done and failed are final:
// further calls return the same outcome without touching the engine. Close
// resets the statement, keeping its bindings, and invalidates any Row.
//
// https://www.sqlite.org/c3ref/step.html
type ResultSet struct {
	stmt        *Stmt
	state       State
	gen         uint64
	wantChanges bool
	changes     int
	hasChanges  bool
	err         error
}

// Step advances to the next row. It returns (row, nil) when a row is
// available, (nil, nil) when the statement completed and (nil, err) on
// failure. The previous Row becomes invalid.
func (rs *ResultSet) Step() (*Row, error) {
	conn := rs.stmt.conn
	conn.mu.Lock()
	defer conn.mu.Unlock()

	switch rs.state {
	case StateDone:
		return nil, nil
	case StateFailed:
		return nil, rs.err
	case StateClosed:
		return nil, ErrResultSetClosed
	}

	rs.gen++
	switch rc := rs.stmt.handle.Step(); rc {
	case ffi.SQLITE_ROW:
		rs.state = StateRow
		return &Row{rs: rs, gen: rs.gen}, nil
	case ffi.SQLITE_DONE:
		rs.state = StateDone
		if rs.wantChanges {
			rs.changes = conn.db.Changes()
			rs.hasChanges = true
		}
		return nil, nil
	default:
		rs.state = StateFailed
		rs.err = rs.stmt.errorLocked(rc)
		return nil, rs.err
	}
}

// Changes returns the number of rows changed, captured when the statement
// completed. The second value is false until then, or when the result set
// was not created with WantChanges.
func (rs *ResultSet) Changes() (int, bool) {
	conn := rs.stmt.conn
	conn.mu.Lock()
	defer conn.mu.Unlock()
	return rs.changes, rs.hasChanges
}

// State returns the current state.
func (rs *ResultSet) State() State {
	conn := rs.stmt.conn
	conn.mu.Lock()
	defer conn.mu.Unlock()
	return rs.state
}

// ColumnCount returns the number of columns the statement yields.
//
// https://www.sqlite.org/c3ref/column_count.html
func (rs *ResultSet) ColumnCount() int {
	conn := rs.stmt.conn
	conn.mu.Lock()
	defer conn.mu.Unlock()

	if rs.state == StateClosed {
		return 0
	}
	return rs.stmt.handle.ColumnCount()
}

// ColumnNames returns the names of all columns, "" where the engine has
// none.
//
// https://www.sqlite.org/c3ref/column_name.html
func (rs *ResultSet) ColumnNames() []string {
	conn := rs.stmt.conn
	conn.mu.Lock()
	defer conn.mu.Unlock()

	if rs.state == StateClosed {
		return nil
	}
	n := rs.stmt.handle.ColumnCount()
	names := make([]string, n)
	for i := range names {
		names[i] = validMsg(rs.stmt.handle.ColumnName(i))
	}
	return names
}

// Close resets the statement and releases it for reuse. Calling it again
// is a no-op.
//
// https://www.sqlite.org/c3ref/reset.html
func (rs *ResultSet) Close() error {
	conn := rs.stmt.conn
	conn.mu.Lock()
	defer conn.mu.Unlock()
	rs.closeLocked()
	return nil
}

func (rs *ResultSet) closeLocked() {
	if rs.state == StateClosed {
		return
	}
	_ = rs.stmt.handle.Reset()
	rs.state = StateClosed
	rs.gen++
	rs.stmt.rs = nil
}
