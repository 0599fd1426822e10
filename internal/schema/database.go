package schema

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aqasim81/migrationcop/internal/database"
)

const columnsQuery = `
SELECT n.nspname, c.relname, a.attname::text
FROM pg_class c
JOIN pg_namespace n ON n.oid = c.relnamespace
LEFT JOIN pg_attribute a ON a.attrelid = c.oid AND a.attnum > 0 AND NOT a.attisdropped
WHERE c.relkind IN ('r', 'p')
  AND n.nspname = ANY (current_schemas(false))
ORDER BY n.nspname, c.relname, a.attnum`

const indexesQuery = `
SELECT n.nspname, t.relname, i.relname, ix.indisunique,
       array_agg(a.attname::text ORDER BY k.ord)
FROM pg_index ix
JOIN pg_class i ON i.oid = ix.indexrelid
JOIN pg_class t ON t.oid = ix.indrelid
JOIN pg_namespace n ON n.oid = t.relnamespace
CROSS JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS k(attnum, ord)
JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
WHERE NOT ix.indisprimary
  AND ix.indexprs IS NULL
  AND n.nspname = ANY (current_schemas(false))
GROUP BY n.nspname, t.relname, i.relname, ix.indisunique
ORDER BY n.nspname, t.relname, i.relname`

type columnRow struct {
	Schema string
	Table  string
	Column *string
}

type indexRow struct {
	Schema  string
	Table   string
	Name    string
	Unique  bool
	Columns []string
}

// Database reads the catalog of a live PostgreSQL database. Pool is used when
// set; otherwise a pool is opened from URL for the duration of Load.
type Database struct {
	URL  string
	Pool *pgxpool.Pool
}

func (d *Database) String() string { return "database" }

// Load queries tables, columns and indexes visible on the search path.
func (d *Database) Load(ctx context.Context) (*Snapshot, error) {
	pool := d.Pool

	if pool == nil {
		p, err := database.NewPool(ctx, d.URL)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
		}
		defer p.Close()

		pool = p
	}

	rows, err := pool.Query(ctx, columnsQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: querying columns: %w", ErrLoadFailed, err)
	}

	cols, err := pgx.CollectRows(rows, pgx.RowToStructByPos[columnRow])
	if err != nil {
		return nil, fmt.Errorf("%w: scanning columns: %w", ErrLoadFailed, err)
	}

	rows, err = pool.Query(ctx, indexesQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: querying indexes: %w", ErrLoadFailed, err)
	}

	idxs, err := pgx.CollectRows(rows, pgx.RowToStructByPos[indexRow])
	if err != nil {
		return nil, fmt.Errorf("%w: scanning indexes: %w", ErrLoadFailed, err)
	}

	s := Empty()

	for _, c := range cols {
		t := s.addTable(c.Schema + "." + c.Table)
		if c.Column != nil {
			s.addTable(t.Name, *c.Column)
		}
	}

	for _, r := range idxs {
		s.addIndex(r.Schema+"."+r.Table, Index{Name: r.Name, Unique: r.Unique, Columns: r.Columns})
	}

	return s, nil
}
