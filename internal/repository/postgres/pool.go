// Package postgres contains PostgreSQL implementations of repository interfaces.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the slice of a Postgres pool the repositories need.
// Both *pgxpool.Pool and pgxmock.PgxPoolIface satisfy it.
type PgxPool interface {
	// Exec executes a SQL command and returns the command tag.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	// Query executes a SELECT and returns a rows iterator.
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	// QueryRow executes a query expected to return at most one row.
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB hands a pool to repository constructors; tests swap in a mock.
type DB struct{ Pool PgxPool }

// isUniqueViolation reports whether the error is a unique constraint violation.
func isUniqueViolation(err error) bool {
	var pg *pgconn.PgError
	return errors.As(err, &pg) && pg.Code == "23505"
}
