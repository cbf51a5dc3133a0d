package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"stockmetrics/internal/fetcher"
)

// DBTX is satisfied by pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

const createTable = `
CREATE TABLE IF NOT EXISTS stock_metrics (
	key        TEXT PRIMARY KEY,
	market     TEXT NOT NULL,
	symbol     TEXT NOT NULL,
	metrics    JSONB NOT NULL,
	data       JSONB NOT NULL,
	fetched_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const upsertMetrics = `
INSERT INTO stock_metrics (key, market, symbol, metrics, data, fetched_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (key) DO UPDATE SET
	metrics = EXCLUDED.metrics,
	data = EXCLUDED.data,
	fetched_at = EXCLUDED.fetched_at,
	updated_at = NOW()`

// Postgres upserts results into the stock_metrics table
type Postgres struct {
	pool *pgxpool.Pool
	db   DBTX
}

// NewPostgres creates a connection pool and checks it
func NewPostgres(ctx context.Context, connString string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &Postgres{pool: pool, db: pool}, nil
}

// NewPostgresWithDB creates a store on top of an existing executor
func NewPostgresWithDB(db DBTX) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the stock_metrics table if it does not exist
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create stock_metrics: %w", err)
	}
	return nil
}

// Save upserts the record. Failed results are skipped.
func (p *Postgres) Save(ctx context.Context, result fetcher.Result) error {
	if result.Error != nil {
		return nil
	}

	rec := NewRecord(result)
	metrics, err := json.Marshal(rec.Metrics)
	if err != nil {
		return fmt.Errorf("failed to encode metrics for %s: %w", rec.Key, err)
	}
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return fmt.Errorf("failed to encode data for %s: %w", rec.Key, err)
	}

	if _, err := p.db.Exec(ctx, upsertMetrics,
		rec.Key, rec.Market, rec.Symbol, metrics, data, rec.FetchedAt); err != nil {
		return fmt.Errorf("failed to upsert %s: %w", rec.Key, err)
	}
	return nil
}

// Name returns "postgres"
func (p *Postgres) Name() string {
	return "postgres"
}

// Close closes the pool, if this store owns one
func (p *Postgres) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}
