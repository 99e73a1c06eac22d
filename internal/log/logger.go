package log

import (
	"io"
	"log/slog"

	"github.com/nsqlite/sqlite3"
	"github.com/nsqlite/sqlite3/ffi"
)

// Logger is a custom structured logger on top of slog.Logger
// that logs in JSON format.
type Logger struct {
	slogger *slog.Logger
}

// NewLogger creates a new Logger that writes to the given writer at info
// level. The writer is typically os.Stderr but can be any io.Writer.
func NewLogger(writer io.Writer) Logger {
	return NewLoggerLevel(writer, slog.LevelInfo)
}

// NewLoggerLevel creates a new Logger that drops entries below level.
func NewLoggerLevel(writer io.Writer, level slog.Level) Logger {
	slogger := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level: level,
	}))
	return Logger{
		slogger: slogger,
	}
}

// Info logs structured info message.
//
// Accepts a message and a list of key-value pairs to be logged.
func (l *Logger) Info(msg string, keyVals ...KV) {
	l.slogger.Info(msg, kvToArgs(keyVals...)...)
}

// InfoNs logs structured info message with a namespace.
//
// The namespace is included as the first key-value pair in the log.
func (l *Logger) InfoNs(namespace string, msg string, keyVals ...KV) {
	l.slogger.Info(msg, kvToArgsNs(namespace, keyVals...)...)
}

// Debug logs structured debug message.
func (l *Logger) Debug(msg string, keyVals ...KV) {
	l.slogger.Debug(msg, kvToArgs(keyVals...)...)
}

// DebugNs logs structured debug message with a namespace.
func (l *Logger) DebugNs(namespace string, msg string, keyVals ...KV) {
	l.slogger.Debug(msg, kvToArgsNs(namespace, keyVals...)...)
}

// Warn logs structured warning message.
func (l *Logger) Warn(msg string, keyVals ...KV) {
	l.slogger.Warn(msg, kvToArgs(keyVals...)...)
}

// WarnNs logs structured warning message with a namespace.
func (l *Logger) WarnNs(namespace string, msg string, keyVals ...KV) {
	l.slogger.Warn(msg, kvToArgsNs(namespace, keyVals...)...)
}

// Error logs structured error message.
func (l *Logger) Error(msg string, keyVals ...KV) {
	l.slogger.Error(msg, kvToArgs(keyVals...)...)
}

// ErrorNs logs structured error message with a namespace.
func (l *Logger) ErrorNs(namespace string, msg string, keyVals ...KV) {
	l.slogger.Error(msg, kvToArgsNs(namespace, keyVals...)...)
}

// Engine logs a message from the SQLite error log under NsEngine. Notices
// are logged at info level, warnings at warn level and anything else as an
// error. Its signature matches sqlite3.LogFunc.
func (l *Logger) Engine(code sqlite3.Code, msg string) {
	kv := KV{"code": code.String()}
	switch code.Primary() {
	case ffi.SQLITE_NOTICE:
		l.InfoNs(NsEngine, msg, kv)
	case ffi.SQLITE_WARNING:
		l.WarnNs(NsEngine, msg, kv)
	default:
		l.ErrorNs(NsEngine, msg, kv)
	}
}
