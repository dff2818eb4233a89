package pipeline

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"consensus_valuation/pkg/core/assumption"
	"consensus_valuation/pkg/core/config"
	"consensus_valuation/pkg/core/ingest"
	"consensus_valuation/pkg/core/store"
)

// FromConfig assembles an orchestrator from configuration:
// DirSource and/or HTTPSource behind a FallbackSource, optionally wrapped in
// a RawCache (Postgres when a database URL is set, JSON files otherwise),
// and the assumption catalogue. The returned func releases resources.
func FromConfig(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Orchestrator, func(), error) {
	cleanup := func() {}

	// 1. Sources
	var layers []ingest.Source
	if cfg.Source.DataDir != "" {
		layers = append(layers, ingest.NewDirSource(cfg.Source.DataDir))
	}
	if cfg.Source.HTTP.BaseURL != "" {
		httpSource, err := ingest.NewHTTPSource(cfg.Source.HTTP, log)
		if err != nil {
			return nil, cleanup, err
		}
		layers = append(layers, httpSource)
	}
	if len(layers) == 0 {
		return nil, cleanup, fmt.Errorf("no data source configured")
	}
	var source ingest.Source = ingest.NewFallbackSource(log, layers...)

	// 2. Cache
	if cfg.Cache.Enabled {
		var pool *pgxpool.Pool
		if cfg.Cache.DatabaseURL != "" {
			p, err := store.Connect(ctx, cfg.Cache.DatabaseURL)
			if err != nil {
				return nil, cleanup, err
			}
			pool = p
			cleanup = pool.Close
		}
		cache, err := store.NewRawCache(pool, cfg.Cache.Dir, cfg.Cache.MaxAge)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		source = store.NewCachedSource(cache, source, log)
	}

	// 3. Assumptions
	catalogue := assumption.NewCatalogue()
	if cfg.Assumptions != "" {
		loaded, err := assumption.LoadFile(cfg.Assumptions)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		catalogue = loaded
	}

	log.Debug().Int("sources", len(layers)).Bool("cache", cfg.Cache.Enabled).
		Strs("scenarios", catalogue.ScenarioNames()).Msg("Pipeline assembled")
	return NewOrchestrator(source, catalogue, log), cleanup, nil
}
