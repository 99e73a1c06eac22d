package sqlite3ex

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/nsqlite/sqlite3"
	"github.com/nsqlite/sqlite3/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestShell(t *testing.T) (*Shell, *bytes.Buffer) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	t.Cleanup(stop)

	var buf bytes.Buffer
	sh := NewShell(ctx, stop, openMem(t), log.NewLogger(io.Discard), &buf)
	sh.plain = true
	return sh, &buf
}

func TestShellHandle(t *testing.T) {
	t.Run("Quit", func(t *testing.T) {
		sh, _ := newTestShell(t)
		assert.True(t, sh.handle(".quit"))
		assert.True(t, sh.handle(".exit"))
		assert.True(t, sh.handle("exit"))
	})

	t.Run("Help", func(t *testing.T) {
		sh, buf := newTestShell(t)
		assert.False(t, sh.handle(".help"))
		assert.Contains(t, buf.String(), "Available commands:")
		assert.Contains(t, buf.String(), ".columns [table_name]")
	})

	t.Run("UnknownCommand", func(t *testing.T) {
		sh, buf := newTestShell(t)
		assert.False(t, sh.handle(".nope"))
		assert.Contains(t, buf.String(), "Unknown command")
	})

	t.Run("ScriptAndTables", func(t *testing.T) {
		sh, buf := newTestShell(t)
		sh.handle("CREATE TABLE person (id INTEGER PRIMARY KEY, name TEXT NOT NULL); INSERT INTO person (name) VALUES ('Steven')")
		assert.Contains(t, buf.String(), "Rows Affected")

		buf.Reset()
		sh.handle(".tables")
		assert.Contains(t, buf.String(), "person")

		buf.Reset()
		sh.handle("SELECT name FROM person")
		assert.Contains(t, buf.String(), "Steven")
		assert.Contains(t, buf.String(), "1 row")
	})

	t.Run("Columns", func(t *testing.T) {
		sh, buf := newTestShell(t)
		sh.handle("CREATE TABLE person (id INTEGER PRIMARY KEY, name TEXT NOT NULL)")

		buf.Reset()
		sh.handle(".columns person")
		out := buf.String()
		assert.Contains(t, out, "INTEGER")
		assert.Contains(t, out, "TEXT")
		assert.Contains(t, out, "true")

		buf.Reset()
		sh.handle(".columns missing")
		assert.Contains(t, buf.String(), "no such table: missing")

		buf.Reset()
		sh.handle(".columns")
		assert.Contains(t, buf.String(), "usage: .columns table_name")
	})

	t.Run("Detailed", func(t *testing.T) {
		sh, buf := newTestShell(t)

		sh.handle("SELECT * FROM nowhere")
		assert.NotContains(t, buf.String(), "no such table: nowhere")

		buf.Reset()
		sh.handle(".detailed on")
		assert.Contains(t, buf.String(), "detailed errors: on")
		assert.True(t, sh.conn.Detailed())

		buf.Reset()
		sh.handle("SELECT * FROM nowhere")
		assert.Contains(t, buf.String(), "no such table: nowhere")

		buf.Reset()
		sh.handle(".detailed maybe")
		assert.Contains(t, buf.String(), "usage: .detailed [on|off]")
	})

	t.Run("Version", func(t *testing.T) {
		sh, buf := newTestShell(t)
		sh.handle(".version")
		assert.Contains(t, buf.String(), "sqlite3ex")
	})
}

func TestCmdHelpCompleter(t *testing.T) {
	assert.Equal(t, []string{".tables"}, cmdHelpCompleter(".ta"))
	assert.Contains(t, cmdHelpCompleter("sel"), "SELECT * FROM ")
	assert.Empty(t, cmdHelpCompleter("zzz"))
}

func TestShellShutdown(t *testing.T) {
	ctx, stop := context.WithCancel(context.Background())
	conn, err := sqlite3.OpenInMemory()
	require.NoError(t, err)
	defer conn.Close()

	sh := NewShell(ctx, stop, conn, log.NewLogger(io.Discard), io.Discard)
	sh.Shutdown()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
