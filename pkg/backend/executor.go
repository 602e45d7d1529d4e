package backend

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// Executor is the slice of sqlx that resources run against. Both *sqlx.DB
// and *sqlx.Tx satisfy it, so the same resource works inside and outside a
// transaction.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	BindNamed(query string, arg interface{}) (string, []interface{}, error)
	Rebind(query string) string
	DriverName() string
}

var (
	_ Executor = (*sqlx.DB)(nil)
	_ Executor = (*sqlx.Tx)(nil)
)
