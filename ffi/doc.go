// Package ffi provides a thin, one-to-one wrapper over the SQLite C API as
// exposed by modernc.org/sqlite/lib. Every function maps to a single C call
// and returns raw result codes; no lifetime rules are enforced here.
//
// Handles are not safe for concurrent use. Callers serialize access.
//
//   - https://www.sqlite.org/cintro.html
//   - https://www.sqlite.org/c3ref/intro.html
package ffi
