package sqlite3

import (
	"sync"

	"github.com/nsqlite/sqlite3/ffi"
)

// LogFunc receives messages from the engine error log.
//
// https://www.sqlite.org/errlog.html
type LogFunc func(code Code, msg string)

// LogRegistration is the installed engine log callback. The owner removes
// it with Close.
type LogRegistration struct {
	fn     LogFunc
	closed bool
}

var (
	logMu      sync.Mutex
	currentLog *LogRegistration
)

// ConfigureLog installs fn as the process-wide engine log callback,
// replacing any previous one.
//
// The engine is shut down and initialized again around the change, so no
// connection may be open in the process while ConfigureLog or
// LogRegistration.Close run.
//
// https://www.sqlite.org/c3ref/config.html
func ConfigureLog(fn LogFunc) (*LogRegistration, error) {
	logMu.Lock()
	defer logMu.Unlock()

	reg := &LogRegistration{fn: fn}
	if err := installLog(fn); err != nil {
		return nil, err
	}
	if currentLog != nil {
		currentLog.closed = true
	}
	currentLog = reg
	return reg, nil
}

// Close removes the callback if it is still the installed one.
func (reg *LogRegistration) Close() error {
	logMu.Lock()
	defer logMu.Unlock()

	if reg.closed {
		return nil
	}
	if err := installLog(nil); err != nil {
		return err
	}
	reg.closed = true
	currentLog = nil
	return nil
}

func installLog(fn LogFunc) error {
	if rc := ffi.Shutdown(); rc != ffi.SQLITE_OK {
		return codeError(rc)
	}

	var handler ffi.LogHandler
	if fn != nil {
		handler = ffi.LogHandler(fn)
	}
	rc := ffi.ConfigLog(handler)
	if irc := ffi.Initialize(); rc == ffi.SQLITE_OK && irc != ffi.SQLITE_OK {
		rc = irc
	}
	if rc != ffi.SQLITE_OK {
		return codeError(rc)
	}
	return nil
}

// Log writes msg to the engine error log under code.
//
// https://www.sqlite.org/c3ref/log.html
func Log(code Code, msg string) {
	ffi.Log(code, msg)
}
