package store

import "database/sql"

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx. Stores
// are constructed against it so the completion pipeline can run every store
// operation inside a single transaction.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// dayFormat is how calendar dates (as opposed to timestamps) are bound in
// queries against DATE columns.
const dayFormat = "2006-01-02"
