// internal/database/db.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps the pgx pool and implements the engine's storage ports
// (rounds, points, actions, users). One Store is built per deployment
// and injected; there is no package-level client.
type Store struct {
	pool *pgxpool.Pool
}

// Connect parses the connection string, builds the pool and verifies
// connectivity with a short ping.
func Connect(ctx context.Context, connStr string) (*Store, error) {
	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewStore wraps an existing pool. Test hook.
func NewStore(pool *pgxpool.Pool) *Store { return &Store{pool: pool} }

// WithTx runs fn inside a transaction, committing on nil and rolling
// back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, fn)
}

// Close releases the pool.
func (s *Store) Close() { s.pool.Close() }
