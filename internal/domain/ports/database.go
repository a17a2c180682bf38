package ports

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is anything that can run a statement: the pool, a transaction, or a
// savepoint opened inside a transaction. Repositories accept a DBTX so the
// caller decides the unit of work; nil means "use the pool".
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, arguments ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, arguments ...interface{}) pgx.Row
}

// TransactionManager scopes multi-statement writes
type TransactionManager interface {
	// WithTransaction commits when fn returns nil and rolls back otherwise,
	// including when fn panics.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error

	// WithReadOnlyTransaction gives fn a consistent snapshot for multi-query reads
	WithReadOnlyTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error

	// WithSavepoint runs fn inside a nested transaction of tx. A failure of fn
	// rolls back only the savepoint; the outer transaction stays usable.
	WithSavepoint(ctx context.Context, tx pgx.Tx, fn func(ctx context.Context, sp pgx.Tx) error) error
}

// DBPort provides access to the pool and transaction management
type DBPort interface {
	GetDB() *pgxpool.Pool
	TransactionManager
}
