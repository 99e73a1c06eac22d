package sqlite3

import (
	"fmt"
	"unicode/utf8"

	"github.com/nsqlite/sqlite3/ffi"
)

// Code, ColumnType and OpenFlags are the engine's constant spaces. See the
// ffi package for their values.
type (
	Code       = ffi.Code
	ColumnType = ffi.ColumnType
	OpenFlags  = ffi.OpenFlags
)

// Error is a failure reported by the engine or by this package.
//
// Desc is a static description of Code. Detail is a copy of the engine's
// last error message at the moment the error was built, and is empty unless
// detailed errors are enabled on the connection or statement.
type Error struct {
	Code   Code
	Desc   string
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" || e.Detail == e.Desc {
		return fmt.Sprintf("%s (%v)", e.Desc, e.Code)
	}
	return fmt.Sprintf("%s: %s (%v)", e.Desc, e.Detail, e.Code)
}

// Is reports whether target is an *Error with the same code. When target
// carries a description, it must match as well, which lets callers test for
// the package sentinels below or for any error of a given code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != e.Code {
		return false
	}
	return t.Desc == "" || t.Desc == e.Desc
}

var (
	// ErrNoStatement is returned by Prepare when the input holds only
	// whitespace or comments.
	ErrNoStatement = &Error{Code: ffi.SQLITE_MISUSE, Desc: "no SQL statement"}

	// ErrEmbeddedNul is returned when text, SQL or a filename holds a NUL
	// byte. No engine call is made.
	ErrEmbeddedNul = &Error{Code: ffi.SQLITE_MISUSE, Desc: "string contains an embedded nul byte"}

	// ErrStatementBusy is returned when a statement is bound, executed or
	// cleared while one of its result sets is still open.
	ErrStatementBusy = &Error{Code: ffi.SQLITE_MISUSE, Desc: "statement has an open result set"}

	// ErrFinalized is returned by any use of a closed statement.
	ErrFinalized = &Error{Code: ffi.SQLITE_MISUSE, Desc: "statement is finalized"}

	// ErrResultSetClosed is returned by Step on a closed result set.
	ErrResultSetClosed = &Error{Code: ffi.SQLITE_MISUSE, Desc: "result set is closed"}

	// ErrConnClosed is returned by any use of a closed connection.
	ErrConnClosed = &Error{Code: ffi.SQLITE_MISUSE, Desc: "connection is closed"}

	// ErrStaleRow is returned, or panicked with, when a row is used after
	// its result set stepped again or was closed.
	ErrStaleRow = &Error{Code: ffi.SQLITE_MISUSE, Desc: "row is no longer valid"}
)

// codeError builds an error for code with its static description.
func codeError(code Code) *Error {
	return &Error{Code: code, Desc: ffi.ErrStr(code)}
}

// engineError builds an error for code, copying the connection's last
// error message into Detail when detailed is set. The caller holds the
// connection lock.
func engineError(db *ffi.DB, code Code, detailed bool) *Error {
	err := codeError(code)
	if detailed && db != nil {
		err.Detail = validMsg(db.ErrMsg())
	}
	return err
}

func noSuchColumn(idx Index) *Error {
	return &Error{Code: ffi.SQLITE_MISUSE, Desc: "no such column", Detail: idx.String()}
}

func mismatch(detail string) *Error {
	return &Error{Code: ffi.SQLITE_MISMATCH, Desc: ffi.ErrStr(ffi.SQLITE_MISMATCH), Detail: detail}
}

func validMsg(msg string, ok bool) string {
	if !ok || !utf8.ValidString(msg) {
		return ""
	}
	return msg
}
