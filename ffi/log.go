package ffi

import (
	"unsafe"

	"github.com/nsqlite/sqlite3/internal/util/syncutil"
	"modernc.org/libc"
	"modernc.org/libc/sys/types"
	sqlite3 "modernc.org/sqlite/lib"
)

// LogHandler receives messages written to the engine error log.
type LogHandler func(code Code, msg string)

var logHandler = syncutil.NewAtomic[LogHandler](nil)

// logTrampoline is the C-ABI callback installed with SQLITE_CONFIG_LOG.
func logTrampoline(tls *libc.TLS, _ uintptr, code int32, zMsg uintptr) {
	if h := logHandler.Load(); h != nil {
		h(Code(code), libc.GoString(zMsg))
	}
}

// Initialize initializes the engine library.
//
// https://www.sqlite.org/c3ref/initialize.html
func Initialize() Code {
	tls := libc.NewTLS()
	defer tls.Close()
	return Code(sqlite3.Xsqlite3_initialize(tls))
}

// Shutdown deallocates the resources acquired by Initialize. It must not be
// called while database handles are open.
//
// https://www.sqlite.org/c3ref/initialize.html
func Shutdown() Code {
	tls := libc.NewTLS()
	defer tls.Close()
	return Code(sqlite3.Xsqlite3_shutdown(tls))
}

// ConfigLog installs h as the engine error-log callback; a nil h removes
// it. The engine only accepts configuration while it is shut down, which
// is the caller's responsibility.
//
// https://www.sqlite.org/c3ref/config.html
// https://www.sqlite.org/errlog.html
func ConfigLog(h LogHandler) Code {
	tls := libc.NewTLS()
	defer tls.Close()

	var fn uintptr
	if h != nil {
		fn = *(*uintptr)(unsafe.Pointer(&struct {
			f func(*libc.TLS, uintptr, int32, uintptr)
		}{logTrampoline}))
	}

	va := libc.Xmalloc(tls, types.Size_t(2*ptrSize))
	if va == 0 {
		return SQLITE_NOMEM
	}
	defer libc.Xfree(tls, va)

	rc := Code(sqlite3.Xsqlite3_config(tls, sqlite3.SQLITE_CONFIG_LOG, libc.VaList(va, fn, uintptr(0))))
	if rc == SQLITE_OK {
		logHandler.Store(h)
	}
	return rc
}

// Log writes msg to the engine error log under code.
//
// https://www.sqlite.org/c3ref/log.html
func Log(code Code, msg string) {
	tls := libc.NewTLS()
	defer tls.Close()

	cFmt, err := libc.CString("%s")
	if err != nil {
		return
	}
	defer libc.Xfree(tls, cFmt)
	cMsg, err := libc.CString(msg)
	if err != nil {
		return
	}
	defer libc.Xfree(tls, cMsg)

	va := libc.Xmalloc(tls, types.Size_t(ptrSize))
	if va == 0 {
		return
	}
	defer libc.Xfree(tls, va)

	sqlite3.Xsqlite3_log(tls, int32(code), cFmt, libc.VaList(va, cMsg))
}
