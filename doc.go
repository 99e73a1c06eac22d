// Package sqlite3 is a memory-safe layer over the SQLite statement API.
//
// A Conn owns one database handle; a Stmt owns one compiled statement; a
// ResultSet is one execution of a Stmt; a Row is the current row of a
// ResultSet. Each level is only usable while the one above it is alive,
// and the package checks this at run time:
//
//   - Conn.Close finalizes every statement still open;
//   - a Stmt with an open ResultSet refuses bind, execute and clear;
//   - a Row is invalid once its ResultSet steps again or is closed.
//
// Errors are *Error values carrying the engine result code.
//
//	conn, err := sqlite3.OpenInMemory()
//	if err != nil {
//		return err
//	}
//	defer conn.Close()
//
//	stmt, err := conn.Prepare("SELECT ?1 + 1")
//	if err != nil {
//		return err
//	}
//	defer stmt.Close()
//
// The engine documentation:
//
//   - https://www.sqlite.org/cintro.html
//   - https://www.sqlite.org/c3ref/intro.html
package sqlite3
