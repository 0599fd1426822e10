// Package database opens the read-only PostgreSQL connections used to read the
// live schema and the applied-migrations table.
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultMaxConns = 2
	applicationName = "migrationcop"
)

// NewPool creates a pgx connection pool for the given database URL. Sessions
// are read-only and tagged with the application name; the pool is pinged
// before it is returned.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidDatabaseURL)
	}

	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDatabaseURL, err)
	}

	poolCfg.MaxConns = defaultMaxConns
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	poolCfg.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return pool, nil
}
