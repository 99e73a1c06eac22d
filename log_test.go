package sqlite3

import (
	"strings"
	"sync"
	"testing"

	"github.com/nsqlite/sqlite3/ffi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logEntry struct {
	code Code
	msg  string
}

type logRecorder struct {
	mu      sync.Mutex
	entries []logEntry
}

func (r *logRecorder) log(code Code, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, logEntry{code: code, msg: msg})
}

func (r *logRecorder) has(code Code, msg string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.code == code && e.msg == msg {
			return true
		}
	}
	return false
}

func TestConfigureLog(t *testing.T) {
	t.Run("ReceivesMessages", func(t *testing.T) {
		rec := &logRecorder{}
		reg, err := ConfigureLog(rec.log)
		require.NoError(t, err)

		Log(ffi.SQLITE_WARNING, "disk almost full")
		assert.True(t, rec.has(ffi.SQLITE_WARNING, "disk almost full"))

		require.NoError(t, reg.Close())
		Log(ffi.SQLITE_WARNING, "after close")
		assert.False(t, rec.has(ffi.SQLITE_WARNING, "after close"))
		assert.NoError(t, reg.Close())
	})

	t.Run("FormatVerbsAreLiteral", func(t *testing.T) {
		rec := &logRecorder{}
		reg, err := ConfigureLog(rec.log)
		require.NoError(t, err)
		defer reg.Close()

		Log(ffi.SQLITE_NOTICE, "100% %s %d")
		assert.True(t, rec.has(ffi.SQLITE_NOTICE, "100% %s %d"))
	})

	t.Run("EngineErrors", func(t *testing.T) {
		rec := &logRecorder{}
		reg, err := ConfigureLog(rec.log)
		require.NoError(t, err)
		defer reg.Close()

		conn, err := OpenInMemory()
		require.NoError(t, err)
		_ = conn.Exec("SELECT * FROM nowhere")
		require.NoError(t, conn.Close())

		rec.mu.Lock()
		defer rec.mu.Unlock()
		found := false
		for _, e := range rec.entries {
			if e.code == ffi.SQLITE_ERROR && strings.Contains(e.msg, "no such table: nowhere") {
				found = true
			}
		}
		assert.True(t, found, "entries: %v", rec.entries)
	})

	t.Run("ReplaceClosesPrevious", func(t *testing.T) {
		first, second := &logRecorder{}, &logRecorder{}
		regFirst, err := ConfigureLog(first.log)
		require.NoError(t, err)
		regSecond, err := ConfigureLog(second.log)
		require.NoError(t, err)

		Log(ffi.SQLITE_WARNING, "routed")
		assert.False(t, first.has(ffi.SQLITE_WARNING, "routed"))
		assert.True(t, second.has(ffi.SQLITE_WARNING, "routed"))

		// Closing a replaced registration leaves the current one installed.
		require.NoError(t, regFirst.Close())
		Log(ffi.SQLITE_WARNING, "still routed")
		assert.True(t, second.has(ffi.SQLITE_WARNING, "still routed"))
		require.NoError(t, regSecond.Close())
	})
}
