package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the minimal query surface shared by *pgxpool.Pool, pgx.Tx, and
// pgxmock. Transaction-scoped code (event handlers, recompute) takes a
// Querier so it runs against whatever connection the caller is holding.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DBTX extends Querier with transaction control. Repository constructors take
// a DBTX so tests can substitute a pgxmock pool.
type DBTX interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}
