package sqlite3

import (
	"fmt"
	"time"

	"github.com/nsqlite/sqlite3/ffi"
)

// ToSql is a value that can be bound to a statement parameter.
//
// https://www.sqlite.org/c3ref/bind_blob.html
type ToSql interface {
	BindSQL(stmt *Stmt, i int) error
}

// FromSql is a destination a column value can be decoded into. It is
// implemented by pointers to the value types of this package.
//
// https://www.sqlite.org/c3ref/column_blob.html
type FromSql interface {
	ScanSQL(r *Row, col int) error
}

type (
	// Null is the SQL NULL value.
	Null struct{}
	// Int is a 32-bit INTEGER.
	Int int32
	// Int64 is a 64-bit INTEGER.
	Int64 int64
	// Float is a REAL.
	Float float64
	// Text is a UTF-8 TEXT.
	Text string
	// Blob is a BLOB.
	Blob []byte
)

func (Null) BindSQL(stmt *Stmt, i int) error    { return stmt.BindNull(i) }
func (v Int) BindSQL(stmt *Stmt, i int) error   { return stmt.BindInt(i, int32(v)) }
func (v Int64) BindSQL(stmt *Stmt, i int) error { return stmt.BindInt64(i, int64(v)) }
func (v Float) BindSQL(stmt *Stmt, i int) error { return stmt.BindDouble(i, float64(v)) }
func (v Text) BindSQL(stmt *Stmt, i int) error  { return stmt.BindText(i, string(v)) }
func (v Blob) BindSQL(stmt *Stmt, i int) error  { return stmt.BindBlob(i, []byte(v)) }

// ScanSQL succeeds only when the column is NULL.
func (*Null) ScanSQL(r *Row, col int) error {
	if t := r.ColumnType(col); t != ffi.SQLITE_NULL {
		return mismatch(fmt.Sprintf("expected NULL, got %v", t))
	}
	return nil
}

func (v *Int) ScanSQL(r *Row, col int) error {
	*v = Int(r.ColumnInt(col))
	return nil
}

func (v *Int64) ScanSQL(r *Row, col int) error {
	*v = Int64(r.ColumnInt64(col))
	return nil
}

func (v *Float) ScanSQL(r *Row, col int) error {
	*v = Float(r.ColumnDouble(col))
	return nil
}

// ScanSQL decodes NULL as "".
func (v *Text) ScanSQL(r *Row, col int) error {
	s, _ := r.ColumnText(col)
	*v = Text(s)
	return nil
}

// ScanSQL decodes NULL as a nil Blob.
func (v *Blob) ScanSQL(r *Row, col int) error {
	b, _ := r.ColumnBlob(col)
	*v = Blob(b)
	return nil
}

// Opt is a value that may be NULL.
type Opt[T ToSql] struct {
	V     T
	Valid bool
}

// Some returns a valid Opt holding v.
func Some[T ToSql](v T) Opt[T] {
	return Opt[T]{V: v, Valid: true}
}

// None returns an Opt that binds as NULL.
func None[T ToSql]() Opt[T] {
	return Opt[T]{}
}

func (o Opt[T]) BindSQL(stmt *Stmt, i int) error {
	if !o.Valid {
		return stmt.BindNull(i)
	}
	return o.V.BindSQL(stmt, i)
}

// ScanSQL leaves o invalid for NULL and otherwise decodes through *T,
// which must implement FromSql.
func (o *Opt[T]) ScanSQL(r *Row, col int) error {
	var zero T
	o.V, o.Valid = zero, false
	if r.ColumnType(col) == ffi.SQLITE_NULL {
		return nil
	}
	dest, ok := any(&o.V).(FromSql)
	if !ok {
		return mismatch(fmt.Sprintf("%T cannot be decoded", o.V))
	}
	if err := dest.ScanSQL(r, col); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// TimestampLayout is the engine's date and time text format, "%F %T".
//
// https://www.sqlite.org/lang_datefunc.html
const TimestampLayout = "2006-01-02 15:04:05"

// Timestamp is a point in time stored as TEXT in TimestampLayout, in UTC.
// Sub-second precision is dropped.
type Timestamp struct {
	time.Time
}

func (v Timestamp) BindSQL(stmt *Stmt, i int) error {
	return stmt.BindText(i, v.UTC().Format(TimestampLayout))
}

// ScanSQL fails with MISMATCH for NULL and for text not in TimestampLayout.
func (v *Timestamp) ScanSQL(r *Row, col int) error {
	s, ok := r.ColumnText(col)
	if !ok {
		return mismatch("null")
	}
	t, err := time.ParseInLocation(TimestampLayout, s, time.UTC)
	if err != nil {
		return mismatch(err.Error())
	}
	v.Time = t
	return nil
}
