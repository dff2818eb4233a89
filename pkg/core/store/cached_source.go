package store

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"consensus_valuation/pkg/core/ingest"
	"consensus_valuation/pkg/core/normalize"
)

// CachedSource serves datasets from a RawCache and fills it from an
// underlying source on a miss. Only datasets holding every required
// category are cached, so a partial upstream answer is retried on the next
// fetch. Cache failures never fail a fetch.
type CachedSource struct {
	cache  *RawCache
	source ingest.Source
	log    zerolog.Logger
}

// NewCachedSource wraps source with cache.
func NewCachedSource(cache *RawCache, source ingest.Source, log zerolog.Logger) *CachedSource {
	return &CachedSource{
		cache:  cache,
		source: source,
		log:    log.With().Str("module", "raw_cache").Logger(),
	}
}

// Fetch implements ingest.Source.
func (s *CachedSource) Fetch(ctx context.Context, ticker string) (normalize.RawDataset, error) {
	ds, err := s.cache.Get(ctx, ticker)
	switch {
	case err == nil && ds.RequiredComplete():
		s.log.Debug().Str("ticker", ticker).Msg("Cache hit")
		return ds, nil
	case err == nil:
		s.log.Debug().Str("ticker", ticker).Msg("Cached dataset incomplete, refetching")
	case !errors.Is(err, ErrCacheMiss):
		s.log.Warn().Err(err).Str("ticker", ticker).Msg("Cache read failed")
	}

	ds, err = s.source.Fetch(ctx, ticker)
	if err != nil {
		return normalize.RawDataset{}, err
	}
	if !ds.RequiredComplete() {
		s.log.Debug().Str("ticker", ticker).Msg("Incomplete dataset not cached")
		return ds, nil
	}
	if err := s.cache.Put(ctx, ticker, ds); err != nil {
		s.log.Warn().Err(err).Str("ticker", ticker).Msg("Cache write failed")
	}
	return ds, nil
}
