// Package mocks provides shared mock implementations of the domain ports
// for service and handler tests.
package mocks

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/mock"
)

// MockDBPort runs every unit of work with a nil transaction. Repositories
// are mocked, so they never touch it.
type MockDBPort struct {
	mock.Mock

	// ReadOnlyCalls counts WithReadOnlyTransaction invocations
	ReadOnlyCalls int
}

func (m *MockDBPort) GetDB() *pgxpool.Pool {
	return nil
}

func (m *MockDBPort) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return fn(ctx, nil)
}

func (m *MockDBPort) WithReadOnlyTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	m.ReadOnlyCalls++
	return fn(ctx, nil)
}

// WithSavepoint returns fn's error the way a rolled-back savepoint would
func (m *MockDBPort) WithSavepoint(ctx context.Context, tx pgx.Tx, fn func(ctx context.Context, sp pgx.Tx) error) error {
	return fn(ctx, tx)
}
