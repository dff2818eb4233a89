package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"consensus_valuation/pkg/core/normalize"
)

// ErrCacheMiss is returned when no usable entry exists for a ticker.
var ErrCacheMiss = errors.New("cache miss")

// RawCache stores fetched datasets keyed by canonical ticker.
// Supports two backends: Postgres (primary) and JSON files (fallback/local).
// When a pool is configured the database is authoritative and files are not
// consulted.
type RawCache struct {
	pool    *pgxpool.Pool
	fileDir string
	maxAge  time.Duration
	now     func() time.Time
}

// CacheEntry is one cached dataset as written to disk.
type CacheEntry struct {
	Ticker    string               `json:"ticker"`
	Data      normalize.RawDataset `json:"data"`
	FetchedAt time.Time            `json:"fetched_at"`
}

// NewRawCache creates a cache. If pool is nil it falls back to JSON files in
// dir (".cache/raw" when empty). Entries older than maxAge are treated as
// misses; zero keeps entries forever.
func NewRawCache(pool *pgxpool.Pool, dir string, maxAge time.Duration) (*RawCache, error) {
	if pool == nil {
		if dir == "" {
			dir = filepath.Join(".cache", "raw")
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache dir: %w", err)
		}
	}
	return &RawCache{pool: pool, fileDir: dir, maxAge: maxAge, now: time.Now}, nil
}

// Get returns the cached dataset for ticker or ErrCacheMiss.
func (c *RawCache) Get(ctx context.Context, ticker string) (normalize.RawDataset, error) {
	key := normalize.CanonicalTicker(ticker)

	var entry CacheEntry
	var err error
	if c.pool != nil {
		entry, err = c.getFromDB(ctx, key)
	} else {
		entry, err = c.getFromFile(key)
	}
	if err != nil {
		return normalize.RawDataset{}, err
	}
	if c.expired(entry.FetchedAt) {
		return normalize.RawDataset{}, fmt.Errorf("%w: %s is stale", ErrCacheMiss, key)
	}
	return entry.Data, nil
}

// Put stores a dataset, replacing any previous entry for ticker.
func (c *RawCache) Put(ctx context.Context, ticker string, ds normalize.RawDataset) error {
	entry := CacheEntry{
		Ticker:    normalize.CanonicalTicker(ticker),
		Data:      ds,
		FetchedAt: c.now().UTC(),
	}

	if c.pool != nil {
		dataJSON, err := json.Marshal(entry.Data)
		if err != nil {
			return fmt.Errorf("failed to marshal dataset: %w", err)
		}
		query := `
			INSERT INTO raw_datasets (ticker, data, fetched_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (ticker)
			DO UPDATE SET
				data = EXCLUDED.data,
				fetched_at = EXCLUDED.fetched_at
		`
		if _, err := c.pool.Exec(ctx, query, entry.Ticker, dataJSON, entry.FetchedAt); err != nil {
			return fmt.Errorf("failed to save to db cache: %w", err)
		}
		return nil
	}

	fileBytes, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if err := os.WriteFile(c.path(entry.Ticker), fileBytes, 0644); err != nil {
		return fmt.Errorf("failed to save to file cache: %w", err)
	}
	return nil
}

func (c *RawCache) expired(fetchedAt time.Time) bool {
	return c.maxAge > 0 && c.now().Sub(fetchedAt) > c.maxAge
}

// Internal Backends

func (c *RawCache) getFromDB(ctx context.Context, ticker string) (CacheEntry, error) {
	query := `SELECT data, fetched_at FROM raw_datasets WHERE ticker = $1`

	var dataJSON []byte
	entry := CacheEntry{Ticker: ticker}
	err := c.pool.QueryRow(ctx, query, ticker).Scan(&dataJSON, &entry.FetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return CacheEntry{}, fmt.Errorf("%w: %s", ErrCacheMiss, ticker)
	}
	if err != nil {
		return CacheEntry{}, fmt.Errorf("failed to load cached dataset: %w", err)
	}
	if err := json.Unmarshal(dataJSON, &entry.Data); err != nil {
		return CacheEntry{}, fmt.Errorf("failed to unmarshal db cached data: %w", err)
	}
	return entry, nil
}

func (c *RawCache) getFromFile(ticker string) (CacheEntry, error) {
	bytes, err := os.ReadFile(c.path(ticker))
	if errors.Is(err, os.ErrNotExist) {
		return CacheEntry{}, fmt.Errorf("%w: %s", ErrCacheMiss, ticker)
	}
	if err != nil {
		return CacheEntry{}, fmt.Errorf("failed to read cache file: %w", err)
	}
	var entry CacheEntry
	if err := json.Unmarshal(bytes, &entry); err != nil {
		// Corrupt files count as misses.
		return CacheEntry{}, fmt.Errorf("%w: %s unreadable: %v", ErrCacheMiss, ticker, err)
	}
	return entry, nil
}

func (c *RawCache) path(ticker string) string {
	return filepath.Join(c.fileDir, ticker+".json")
}
