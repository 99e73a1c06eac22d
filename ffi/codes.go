package ffi

import "strconv"

// Code is an SQLite primary result code.
//
// https://www.sqlite.org/rescode.html
type Code int

const (
	SQLITE_OK         Code = 0
	SQLITE_ERROR      Code = 1
	SQLITE_INTERNAL   Code = 2
	SQLITE_PERM       Code = 3
	SQLITE_ABORT      Code = 4
	SQLITE_BUSY       Code = 5
	SQLITE_LOCKED     Code = 6
	SQLITE_NOMEM      Code = 7
	SQLITE_READONLY   Code = 8
	SQLITE_INTERRUPT  Code = 9
	SQLITE_IOERR      Code = 10
	SQLITE_CORRUPT    Code = 11
	SQLITE_NOTFOUND   Code = 12
	SQLITE_FULL       Code = 13
	SQLITE_CANTOPEN   Code = 14
	SQLITE_PROTOCOL   Code = 15
	SQLITE_EMPTY      Code = 16
	SQLITE_SCHEMA     Code = 17
	SQLITE_TOOBIG     Code = 18
	SQLITE_CONSTRAINT Code = 19
	SQLITE_MISMATCH   Code = 20
	SQLITE_MISUSE     Code = 21
	SQLITE_NOLFS      Code = 22
	SQLITE_AUTH       Code = 23
	SQLITE_FORMAT     Code = 24
	SQLITE_RANGE      Code = 25
	SQLITE_NOTADB     Code = 26
	SQLITE_NOTICE     Code = 27
	SQLITE_WARNING    Code = 28
	SQLITE_ROW        Code = 100
	SQLITE_DONE       Code = 101
)

var codeNames = map[Code]string{
	SQLITE_OK:         "SQLITE_OK",
	SQLITE_ERROR:      "SQLITE_ERROR",
	SQLITE_INTERNAL:   "SQLITE_INTERNAL",
	SQLITE_PERM:       "SQLITE_PERM",
	SQLITE_ABORT:      "SQLITE_ABORT",
	SQLITE_BUSY:       "SQLITE_BUSY",
	SQLITE_LOCKED:     "SQLITE_LOCKED",
	SQLITE_NOMEM:      "SQLITE_NOMEM",
	SQLITE_READONLY:   "SQLITE_READONLY",
	SQLITE_INTERRUPT:  "SQLITE_INTERRUPT",
	SQLITE_IOERR:      "SQLITE_IOERR",
	SQLITE_CORRUPT:    "SQLITE_CORRUPT",
	SQLITE_NOTFOUND:   "SQLITE_NOTFOUND",
	SQLITE_FULL:       "SQLITE_FULL",
	SQLITE_CANTOPEN:   "SQLITE_CANTOPEN",
	SQLITE_PROTOCOL:   "SQLITE_PROTOCOL",
	SQLITE_EMPTY:      "SQLITE_EMPTY",
	SQLITE_SCHEMA:     "SQLITE_SCHEMA",
	SQLITE_TOOBIG:     "SQLITE_TOOBIG",
	SQLITE_CONSTRAINT: "SQLITE_CONSTRAINT",
	SQLITE_MISMATCH:   "SQLITE_MISMATCH",
	SQLITE_MISUSE:     "SQLITE_MISUSE",
	SQLITE_NOLFS:      "SQLITE_NOLFS",
	SQLITE_AUTH:       "SQLITE_AUTH",
	SQLITE_FORMAT:     "SQLITE_FORMAT",
	SQLITE_RANGE:      "SQLITE_RANGE",
	SQLITE_NOTADB:     "SQLITE_NOTADB",
	SQLITE_NOTICE:     "SQLITE_NOTICE",
	SQLITE_WARNING:    "SQLITE_WARNING",
	SQLITE_ROW:        "SQLITE_ROW",
	SQLITE_DONE:       "SQLITE_DONE",
}

// Primary returns the primary result code, dropping any extended bits.
func (code Code) Primary() Code {
	return code & 0xff
}

func (code Code) String() string {
	if name, ok := codeNames[code]; ok {
		return name
	}
	if name, ok := codeNames[code.Primary()]; ok {
		return name + "(" + strconv.Itoa(int(code)) + ")"
	}
	return "SQLITE_UNKNOWN(" + strconv.Itoa(int(code)) + ")"
}

// ColumnType are constants for each of the SQLite fundamental datatypes.
//
// https://www.sqlite.org/c3ref/c_blob.html
type ColumnType int

const (
	SQLITE_INTEGER ColumnType = 1
	SQLITE_FLOAT   ColumnType = 2
	SQLITE_TEXT    ColumnType = 3
	SQLITE_BLOB    ColumnType = 4
	SQLITE_NULL    ColumnType = 5
)

func (t ColumnType) String() string {
	switch t {
	case SQLITE_INTEGER:
		return "INTEGER"
	case SQLITE_FLOAT:
		return "FLOAT"
	case SQLITE_TEXT:
		return "TEXT"
	case SQLITE_BLOB:
		return "BLOB"
	case SQLITE_NULL:
		return "NULL"
	default:
		return "UNKNOWN(" + strconv.Itoa(int(t)) + ")"
	}
}

// OpenFlags are flags used when opening a database.
//
// https://www.sqlite.org/c3ref/c_open_autoproxy.html
type OpenFlags int

const (
	SQLITE_OPEN_READONLY     OpenFlags = 0x00000001
	SQLITE_OPEN_READWRITE    OpenFlags = 0x00000002
	SQLITE_OPEN_CREATE       OpenFlags = 0x00000004
	SQLITE_OPEN_URI          OpenFlags = 0x00000040
	SQLITE_OPEN_MEMORY       OpenFlags = 0x00000080
	SQLITE_OPEN_NOMUTEX      OpenFlags = 0x00008000
	SQLITE_OPEN_FULLMUTEX    OpenFlags = 0x00010000
	SQLITE_OPEN_SHAREDCACHE  OpenFlags = 0x00020000
	SQLITE_OPEN_PRIVATECACHE OpenFlags = 0x00040000

	// OpenFlagsDefault is used when no flags are given.
	OpenFlagsDefault = SQLITE_OPEN_READWRITE | SQLITE_OPEN_CREATE | SQLITE_OPEN_NOMUTEX
)

var openFlagNames = []struct {
	flag OpenFlags
	name string
}{
	{SQLITE_OPEN_READONLY, "READONLY"},
	{SQLITE_OPEN_READWRITE, "READWRITE"},
	{SQLITE_OPEN_CREATE, "CREATE"},
	{SQLITE_OPEN_URI, "URI"},
	{SQLITE_OPEN_MEMORY, "MEMORY"},
	{SQLITE_OPEN_NOMUTEX, "NOMUTEX"},
	{SQLITE_OPEN_FULLMUTEX, "FULLMUTEX"},
	{SQLITE_OPEN_SHAREDCACHE, "SHAREDCACHE"},
	{SQLITE_OPEN_PRIVATECACHE, "PRIVATECACHE"},
}

// String renders the set flags joined by "|", e.g. "READWRITE|CREATE".
// Bits without a name are rendered as a single hex remainder.
func (o OpenFlags) String() string {
	var out []byte
	rest := o
	for _, f := range openFlagNames {
		if o&f.flag == 0 {
			continue
		}
		if len(out) > 0 {
			out = append(out, '|')
		}
		out = append(out, f.name...)
		rest &^= f.flag
	}
	if rest != 0 {
		if len(out) > 0 {
			out = append(out, '|')
		}
		out = append(out, "0x"...)
		out = strconv.AppendInt(out, int64(rest), 16)
	}
	if len(out) == 0 {
		return "0"
	}
	return string(out)
}
