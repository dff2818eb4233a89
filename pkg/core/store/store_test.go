package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"consensus_valuation/pkg/core/normalize"
)

func sampleDataset() normalize.RawDataset {
	return normalize.RawDataset{
		Quotes:   []normalize.RawRow{{"symbol": "VALE3", "price": 61.2}},
		Income:   []normalize.RawRow{{"symbol": "VALE3", "period": "2023", "revenue": 1000.0}},
		Balance:  []normalize.RawRow{{"symbol": "VALE3", "period": "2023", "cash": 50.0}},
		CashFlow: []normalize.RawRow{{"symbol": "VALE3", "period": "2023", "capex": -30.0}},
	}
}

func TestRawCache_FileRoundTrip(t *testing.T) {
	cache, err := NewRawCache(nil, t.TempDir(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	if _, err := cache.Get(ctx, "VALE3"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss on empty cache, got %v", err)
	}
	if err := cache.Put(ctx, "vale3.sa", sampleDataset()); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	ds, err := cache.Get(ctx, "VALE3")
	if err != nil {
		t.Fatalf("expected hit, got %v", err)
	}
	if len(ds.Quotes) != 1 || ds.Quotes[0]["price"] != 61.2 {
		t.Errorf("unexpected cached quotes: %v", ds.Quotes)
	}
	if len(ds.Income) != 1 {
		t.Errorf("expected 1 income row, got %d", len(ds.Income))
	}
}

func TestRawCache_Expiry(t *testing.T) {
	cache, _ := NewRawCache(nil, t.TempDir(), time.Hour)
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return start }
	ctx := context.Background()

	if err := cache.Put(ctx, "PETR4", sampleDataset()); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	cache.now = func() time.Time { return start.Add(30 * time.Minute) }
	if _, err := cache.Get(ctx, "PETR4"); err != nil {
		t.Errorf("expected fresh entry, got %v", err)
	}
	cache.now = func() time.Time { return start.Add(2 * time.Hour) }
	if _, err := cache.Get(ctx, "PETR4"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected stale entry to miss, got %v", err)
	}
}

func TestRawCache_CorruptFileIsMiss(t *testing.T) {
	dir := t.TempDir()
	cache, _ := NewRawCache(nil, dir, 0)
	if err := os.WriteFile(filepath.Join(dir, "ITUB4.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Get(context.Background(), "ITUB4"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestConnect_EmptyDSN(t *testing.T) {
	if _, err := Connect(context.Background(), ""); err == nil {
		t.Error("expected error for empty DSN")
	}
}

// --- CachedSource ---

type countingSource struct {
	ds    normalize.RawDataset
	err   error
	calls int

	// partialCalls answers without cash flow rows for the first n calls.
	partialCalls int
}

func (s *countingSource) Fetch(ctx context.Context, ticker string) (normalize.RawDataset, error) {
	s.calls++
	if s.calls <= s.partialCalls {
		return s.ds.WithRows(normalize.CategoryCashFlow, nil), s.err
	}
	return s.ds, s.err
}

func TestCachedSource_FetchesOnceThenHits(t *testing.T) {
	cache, _ := NewRawCache(nil, t.TempDir(), 0)
	src := &countingSource{ds: sampleDataset()}
	cached := NewCachedSource(cache, src, zerolog.Nop())

	for i := 0; i < 3; i++ {
		ds, err := cached.Fetch(context.Background(), "VALE3")
		if err != nil {
			t.Fatalf("fetch %d failed: %v", i, err)
		}
		if len(ds.Quotes) != 1 {
			t.Errorf("fetch %d: expected 1 quote row, got %d", i, len(ds.Quotes))
		}
	}
	if src.calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", src.calls)
	}
}

func TestCachedSource_UpstreamErrorNotCached(t *testing.T) {
	cache, _ := NewRawCache(nil, t.TempDir(), 0)
	src := &countingSource{err: errors.New("upstream down")}
	cached := NewCachedSource(cache, src, zerolog.Nop())

	if _, err := cached.Fetch(context.Background(), "VALE3"); err == nil {
		t.Fatal("expected upstream error")
	}
	if _, err := cache.Get(context.Background(), "VALE3"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("failed fetch must not populate the cache, got %v", err)
	}
}

func TestCachedSource_IncompleteDatasetNotCached(t *testing.T) {
	cache, _ := NewRawCache(nil, t.TempDir(), 0)
	src := &countingSource{ds: sampleDataset(), partialCalls: 1}
	cached := NewCachedSource(cache, src, zerolog.Nop())
	ctx := context.Background()

	ds, err := cached.Fetch(ctx, "VALE3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ds.CashFlow) != 0 {
		t.Fatalf("expected the partial answer to be returned, got %d cash flow rows", len(ds.CashFlow))
	}
	if _, err := cache.Get(ctx, "VALE3"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("partial dataset must not be cached, got %v", err)
	}

	// upstream recovered
	for i := 0; i < 2; i++ {
		ds, err = cached.Fetch(ctx, "VALE3")
		if err != nil {
			t.Fatalf("fetch %d failed: %v", i, err)
		}
		if len(ds.CashFlow) != 1 {
			t.Errorf("fetch %d: expected recovered cash flow rows, got %d", i, len(ds.CashFlow))
		}
	}
	if src.calls != 2 {
		t.Errorf("expected 2 upstream calls, got %d", src.calls)
	}
}

func TestCachedSource_IncompleteCacheEntryRefetched(t *testing.T) {
	cache, _ := NewRawCache(nil, t.TempDir(), 0)
	ctx := context.Background()
	partial := sampleDataset().WithRows(normalize.CategoryBalance, nil)
	if err := cache.Put(ctx, "VALE3", partial); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	src := &countingSource{ds: sampleDataset()}
	ds, err := NewCachedSource(cache, src, zerolog.Nop()).Fetch(ctx, "VALE3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.calls != 1 || len(ds.Balance) != 1 {
		t.Errorf("expected refetch of incomplete entry, got calls=%d balance=%d", src.calls, len(ds.Balance))
	}
}
