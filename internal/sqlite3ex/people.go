package sqlite3ex

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nsqlite/sqlite3"
	"github.com/nsqlite/sqlite3/internal/log"
)

// Person is a row of the person table.
type Person struct {
	ID      sqlite3.Int64
	Name    sqlite3.Text
	Created sqlite3.Timestamp
	Data    sqlite3.Opt[sqlite3.Blob]
}

// scan decodes a person row by column name.
func (p *Person) scan(row *sqlite3.Row) error {
	if err := row.Get(sqlite3.Name("id"), &p.ID); err != nil {
		return err
	}
	if err := row.Get(sqlite3.Name("name"), &p.Name); err != nil {
		return err
	}
	if err := row.Get(sqlite3.Name("time_created"), &p.Created); err != nil {
		return err
	}
	return row.Get(sqlite3.Name("data"), &p.Data)
}

const createPeopleSQL = `CREATE TABLE IF NOT EXISTS person (
	id           INTEGER PRIMARY KEY,
	name         TEXT NOT NULL,
	time_created TEXT NOT NULL,
	data         BLOB
)`

// CreatePeople creates the person table if it is missing.
func CreatePeople(conn *sqlite3.Conn) error {
	if err := conn.Exec(createPeopleSQL); err != nil {
		return fmt.Errorf("failed to create person table: %w", err)
	}
	return nil
}

// AddPerson inserts a person created now and returns it with its row ID.
func AddPerson(conn *sqlite3.Conn, name string, data sqlite3.Opt[sqlite3.Blob]) (Person, error) {
	p := Person{
		Name:    sqlite3.Text(name),
		Created: sqlite3.Timestamp{Time: time.Now().UTC().Truncate(time.Second)},
		Data:    data,
	}

	stmt, err := conn.Prepare(`INSERT INTO person (name, time_created, data) VALUES (?1, ?2, ?3)`)
	if err != nil {
		return p, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	changes, err := stmt.Update(p.Name, p.Created, p.Data)
	if err != nil {
		return p, fmt.Errorf("failed to insert %q: %w", name, err)
	}
	if changes != 1 {
		return p, fmt.Errorf("inserting %q changed %d rows", name, changes)
	}

	p.ID = sqlite3.Int64(conn.LastInsertRowID())
	return p, nil
}

// ListPeople returns every person ordered by row ID.
func ListPeople(conn *sqlite3.Conn) ([]Person, error) {
	people := []Person{}
	err := conn.Query(
		`SELECT id, name, time_created, data FROM person ORDER BY id`,
		nil,
		func(row *sqlite3.Row) error {
			var p Person
			if err := p.scan(row); err != nil {
				return err
			}
			people = append(people, p)
			return nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	return people, nil
}

func renderPeople(out io.Writer, people []Person, plain bool) {
	tw := newTableWriter(plain)
	tw.AppendHeader(table.Row{"ID", "Name", "Created", "Data"})

	for _, p := range people {
		data := "NULL"
		if p.Data.Valid {
			data = fmt.Sprintf("%d bytes", len(p.Data.V))
		}
		tw.AppendRow(table.Row{
			int64(p.ID),
			string(p.Name),
			p.Created.Format(sqlite3.TimestampLayout),
			data,
		})
	}
	tw.AppendFooter(table.Row{rowCount(len(people))})

	fmt.Fprintln(out, tw.Render())
}

// Walkthrough creates the person table, adds a person and prints every
// stored person. A read-only connection only prints.
func Walkthrough(conn *sqlite3.Conn, logger log.Logger, out io.Writer, readOnly bool) error {
	if !readOnly {
		if err := CreatePeople(conn); err != nil {
			return err
		}

		p, err := AddPerson(conn, "Steven", sqlite3.None[sqlite3.Blob]())
		if err != nil {
			return err
		}
		logger.InfoNs(log.NsPeople, "person added", log.KV{
			"id":   int64(p.ID),
			"name": string(p.Name),
		})
	}

	people, err := ListPeople(conn)
	if err != nil {
		return err
	}
	logger.DebugNs(log.NsPeople, "people listed", log.KV{"count": len(people)})

	renderPeople(out, people, color.NoColor)
	return nil
}
