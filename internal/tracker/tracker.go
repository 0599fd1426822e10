// Package tracker reads the versions recorded by Rails in the
// schema_migrations table so that already applied migrations can be skipped.
package tracker

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aqasim81/migrationcop/internal/migration"
)

// Tracker reads the schema_migrations table.
type Tracker struct {
	pool *pgxpool.Pool
}

// New creates a Tracker backed by the given connection pool.
func New(pool *pgxpool.Pool) *Tracker {
	return &Tracker{pool: pool}
}

// TableExists reports whether schema_migrations is visible on the search path.
func (t *Tracker) TableExists(ctx context.Context) (bool, error) {
	var exists bool

	err := t.pool.QueryRow(ctx, `SELECT to_regclass('schema_migrations') IS NOT NULL`).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}

	return exists, nil
}

// AppliedVersions returns the recorded versions. A database without the
// table has no applied migrations.
func (t *Tracker) AppliedVersions(ctx context.Context) (map[string]struct{}, error) {
	exists, err := t.TableExists(ctx)
	if err != nil {
		return nil, err
	}

	applied := make(map[string]struct{})
	if !exists {
		return applied, nil
	}

	rows, err := t.pool.Query(ctx, `SELECT version FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}

	versions, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("%w: scanning versions: %w", ErrQueryFailed, err)
	}

	for _, v := range versions {
		applied[v] = struct{}{}
	}

	return applied, nil
}

// IsApplied checks whether a migration version has been recorded.
func (t *Tracker) IsApplied(ctx context.Context, version string) (bool, error) {
	applied, err := t.AppliedVersions(ctx)
	if err != nil {
		return false, err
	}

	_, ok := applied[version]

	return ok, nil
}

// Pending filters migrations down to those not yet recorded, keeping order.
func (t *Tracker) Pending(ctx context.Context, migrations []migration.Migration) ([]migration.Migration, error) {
	applied, err := t.AppliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	return Pending(migrations, applied), nil
}

// Pending returns the migrations whose version is not in applied.
func Pending(migrations []migration.Migration, applied map[string]struct{}) []migration.Migration {
	pending := make([]migration.Migration, 0, len(migrations))

	for _, m := range migrations {
		if _, ok := applied[m.Version]; !ok {
			pending = append(pending, m)
		}
	}

	return pending
}
