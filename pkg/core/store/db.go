// Package store caches the raw statement rows fetched for a ticker so
// repeated valuations do not hit a remote market-data API again. Only inputs
// are kept; valuation results are never persisted.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the cache table. It is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS raw_datasets (
	ticker     TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	fetched_at TIMESTAMPTZ NOT NULL
)`

// Connect opens a connection pool for dsn and makes sure the cache table
// exists. The caller owns the pool and must Close it.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database URL not configured")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	if _, err := pool.Exec(ctx, Schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return pool, nil
}
