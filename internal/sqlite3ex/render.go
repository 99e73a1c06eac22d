package sqlite3ex

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nsqlite/sqlite3/internal/styled"
	"github.com/nsqlite/sqlite3/internal/util/numutil"
)

func newTableWriter(plain bool) table.Writer {
	if plain {
		return styled.NewPlainTableWriter()
	}
	return styled.NewTableWriter()
}

// renderResult writes res to out as a table. Reads list their rows and
// writes their change count, other statements a single OK.
func renderResult(out io.Writer, res Result, plain bool) {
	tw := newTableWriter(plain)

	switch {
	case len(res.Columns) > 0:
		header := table.Row{}
		for _, col := range res.Columns {
			header = append(header, col)
		}
		tw.AppendHeader(header)

		for _, values := range res.Rows {
			tw.AppendRow(table.Row(values))
		}
		tw.AppendFooter(table.Row{rowCount(len(res.Rows))})

	case res.Write:
		tw.AppendHeader(table.Row{"-", "Rows Affected", "Last Insert ID"})
		tw.AppendRow(table.Row{
			"OK",
			numutil.IntWithCommas(res.Changes),
			numutil.IntWithCommas(res.LastInsertID),
		})

	default:
		tw.AppendHeader(table.Row{"OK"})
		tw.AppendRow(table.Row{"OK"})
	}

	fmt.Fprintln(out, tw.Render())
}

// renderError writes err to out in the error color.
func renderError(out io.Writer, err error) {
	styled.ErrorColor().Fprintf(out, "Error: %s\n", err)
}

func rowCount(n int) string {
	if n == 1 {
		return "1 row"
	}
	return numutil.IntWithCommas(n) + " rows"
}
