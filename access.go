package sqlite3

import (
	"strings"

	"github.com/nsqlite/sqlite3/ffi"
)

// Access is the capability to open a database. Open may return a non-nil
// handle together with a failure code; Open in this package closes it.
type Access interface {
	Open() (*ffi.DB, Code)
}

// ByFilename opens the database file at Filename. A zero Flags means
// ffi.OpenFlagsDefault.
//
// https://www.sqlite.org/c3ref/open.html
type ByFilename struct {
	Filename string
	Flags    OpenFlags
}

func (a ByFilename) Open() (*ffi.DB, Code) {
	if strings.IndexByte(a.Filename, 0) >= 0 {
		return nil, ffi.SQLITE_MISUSE
	}
	flags := a.Flags
	if flags == 0 {
		flags = ffi.OpenFlagsDefault
	}
	return ffi.OpenV2(a.Filename, flags)
}

// InMemory opens a private, temporary in-memory database.
//
// https://www.sqlite.org/inmemorydb.html
type InMemory struct{}

func (InMemory) Open() (*ffi.DB, Code) {
	return ffi.OpenV2(":memory:", ffi.OpenFlagsDefault)
}

// OpenFile is a shorthand for Open(ByFilename{filename, flags}, opts...).
func OpenFile(filename string, flags OpenFlags, opts ...Option) (*Conn, error) {
	return Open(ByFilename{Filename: filename, Flags: flags}, opts...)
}

// OpenInMemory is a shorthand for Open(InMemory{}, opts...).
func OpenInMemory(opts ...Option) (*Conn, error) {
	return Open(InMemory{}, opts...)
}
