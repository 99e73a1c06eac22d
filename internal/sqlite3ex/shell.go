package sqlite3ex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/nsqlite/sqlite3"
	"github.com/nsqlite/sqlite3/internal/log"
	"github.com/nsqlite/sqlite3/internal/styled"
	"github.com/nsqlite/sqlite3/internal/util/sysutil"
	"github.com/nsqlite/sqlite3/internal/version"
	"github.com/peterh/liner"
)

// Shell is an interactive prompt that runs every input line as a script.
type Shell struct {
	ctx         context.Context
	stop        context.CancelFunc
	conn        *sqlite3.Conn
	logger      log.Logger
	out         io.Writer
	plain       bool
	historyPath string
}

// NewShell returns a Shell over conn writing to out. Tables are drawn
// without colors when the terminal does not support them.
func NewShell(
	ctx context.Context,
	stop context.CancelFunc,
	conn *sqlite3.Conn,
	logger log.Logger,
	out io.Writer,
) *Shell {
	return &Shell{
		ctx:         ctx,
		stop:        stop,
		conn:        conn,
		logger:      logger,
		out:         out,
		plain:       color.NoColor,
		historyPath: filepath.Join(os.TempDir(), ".sqlite3ex_history"),
	}
}

// Start reads lines until the user quits or the context is done.
func (s *Shell) Start(filename string) error {
	fmt.Fprintln(s.out)
	fmt.Fprintf(s.out, "Connected to %s\n", filename)
	fmt.Fprintln(s.out, `Enter ".help" for usage hints and ".quit" or "CTRL+C" to quit`)
	fmt.Fprintln(s.out)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetMultiLineMode(true)
	line.SetCompleter(cmdHelpCompleter)

	if file, err := os.Open(s.historyPath); err == nil {
		_, _ = line.ReadHistory(file)
		file.Close()
	}
	defer s.saveHistory(line)

	for {
		select {
		case <-s.ctx.Done():
			return nil
		default:
		}

		input, err := line.Prompt("sqlite3ex> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out, "Exiting...")
			s.Shutdown()
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if quit := s.handle(input); quit {
			s.Shutdown()
			return nil
		}
	}
}

// Shutdown stops the shell.
func (s *Shell) Shutdown() {
	s.stop()
}

func (s *Shell) saveHistory(line *liner.State) {
	file, err := os.Create(s.historyPath)
	if err != nil {
		s.logger.WarnNs(log.NsShell, "cannot save history", log.KV{"error": err})
		return
	}
	defer file.Close()
	_, _ = line.WriteHistory(file)
}

// handle runs one input line and reports whether the shell must quit.
func (s *Shell) handle(input string) bool {
	fields := strings.Fields(input)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "exit", ".exit", ".quit":
		return true
	case "clear", ".clear":
		sysutil.ClearTerminal(s.out)
	case "help", ".help":
		cmdHelp(s.out, s.plain)
	case ".version":
		fmt.Fprintln(s.out, version.Short())
	case ".tables":
		s.script(`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	case ".indexes":
		s.script(`SELECT name, tbl_name FROM sqlite_master WHERE type = 'index' ORDER BY name`)
	case ".schema":
		s.script(`SELECT sql FROM sqlite_master WHERE sql IS NOT NULL ORDER BY name`)
	case ".columns":
		s.columns(args)
	case ".detailed":
		s.detailed(args)
	default:
		if strings.HasPrefix(cmd, ".") {
			fmt.Fprintln(s.out, "Unknown command, type .help for usage hints")
			return false
		}
		s.script(input)
	}

	return false
}

// script runs input and renders every result, then the failure if any.
func (s *Shell) script(input string) {
	results, err := RunScript(s.ctx, s.conn, input)
	for _, res := range results {
		renderResult(s.out, res, s.plain)
	}
	if err != nil {
		s.logger.DebugNs(log.NsShell, "script failed", log.KV{"error": err})
		renderError(s.out, err)
	}
}

func (s *Shell) columns(args []string) {
	if len(args) != 1 {
		renderError(s.out, errors.New("usage: .columns table_name"))
		return
	}

	res := Result{Columns: []string{"name", "type", "not null", "primary key"}}
	err := s.conn.Query(
		`SELECT name, type, "notnull", pk FROM pragma_table_info(?1)`,
		[]sqlite3.ToSql{sqlite3.Text(args[0])},
		func(row *sqlite3.Row) error {
			var (
				name, typ   sqlite3.Text
				notNull, pk sqlite3.Int64
			)
			for _, col := range []struct {
				idx  sqlite3.Index
				dest sqlite3.FromSql
			}{
				{sqlite3.Name("name"), &name},
				{sqlite3.Name("type"), &typ},
				{sqlite3.Name("notnull"), &notNull},
				{sqlite3.Name("pk"), &pk},
			} {
				if err := row.Get(col.idx, col.dest); err != nil {
					return err
				}
			}
			res.Rows = append(res.Rows, []any{string(name), string(typ), notNull != 0, pk != 0})
			return nil
		},
	)
	if err != nil {
		renderError(s.out, err)
		return
	}
	if len(res.Rows) == 0 {
		renderError(s.out, fmt.Errorf("no such table: %s", args[0]))
		return
	}
	renderResult(s.out, res, s.plain)
}

func (s *Shell) detailed(args []string) {
	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "on":
			s.conn.SetDetailed(true)
		case "off":
			s.conn.SetDetailed(false)
		default:
			renderError(s.out, errors.New("usage: .detailed [on|off]"))
			return
		}
	}

	state := "off"
	if s.conn.Detailed() {
		state = "on"
	}
	styled.DimmedColor().Fprintf(s.out, "detailed errors: %s\n", state)
}
