package repository

import (
	"database/sql"
)

// SQLExecutor is the query surface shared by *sql.DB and *sql.Tx, so the
// repositories run unchanged inside or outside a transaction.
type SQLExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

var (
	_ SQLExecutor = (*sql.DB)(nil)
	_ SQLExecutor = (*sql.Tx)(nil)
)
