package postgres

import (
	"context"
	"fmt"

	"palma-lending/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Pool is the subset of *pgxpool.Pool the repositories use. pgxmock pools
// satisfy it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPool creates a PostgreSQL connection pool using pgx.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("dbname", cfg.DBName).
		Int32("max_conns", cfg.MaxConns).
		Msg("PostgreSQL connection pool established")

	return pool, nil
}

const schema = `CREATE TABLE IF NOT EXISTS ledger_events (
	id            UUID PRIMARY KEY,
	event_type    TEXT NOT NULL,
	account       TEXT NOT NULL,
	asset         TEXT NOT NULL,
	amount        NUMERIC(78, 0) NOT NULL,
	target        TEXT,
	debt_asset    TEXT,
	debt_repaid   NUMERIC(78, 0),
	protocol_cut  NUMERIC(78, 0),
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS ledger_events_account_idx ON ledger_events (account, created_at DESC);
CREATE INDEX IF NOT EXISTS ledger_events_target_idx ON ledger_events (target, created_at DESC) WHERE target IS NOT NULL`

// EnsureSchema creates the event journal table when missing.
func EnsureSchema(ctx context.Context, pool Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
