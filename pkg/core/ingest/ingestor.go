package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"consensus_valuation/pkg/core/normalize"
)

// FallbackSource layers several sources. For each category the first source
// returning rows wins, so a local directory of corrections can sit in front
// of a remote API.
type FallbackSource struct {
	sources []Source
	log     zerolog.Logger
}

// NewFallbackSource creates a source trying sources in order.
func NewFallbackSource(log zerolog.Logger, sources ...Source) *FallbackSource {
	return &FallbackSource{
		sources: sources,
		log:     log.With().Str("module", "ingest_fallback").Logger(),
	}
}

// Fetch implements Source. Errors from a layer are logged and skipped unless
// every layer fails; ErrNotFound is not treated as a failure.
func (f *FallbackSource) Fetch(ctx context.Context, ticker string) (normalize.RawDataset, error) {
	var merged normalize.RawDataset
	var errs []error
	answered := 0

	for i, src := range f.sources {
		if merged.Complete() {
			break
		}
		ds, err := src.Fetch(ctx, ticker)
		if err != nil {
			if ctx.Err() != nil {
				return normalize.RawDataset{}, ctx.Err()
			}
			if !errors.Is(err, ErrNotFound) {
				f.log.Warn().Err(err).Str("ticker", ticker).Int("layer", i).Msg("Source layer failed")
				errs = append(errs, err)
			}
			continue
		}
		answered++
		for _, c := range categories {
			if len(merged.Rows(c)) == 0 && len(ds.Rows(c)) > 0 {
				merged = merged.WithRows(c, ds.Rows(c))
			}
		}
	}

	if answered == 0 {
		if len(errs) > 0 {
			return normalize.RawDataset{}, fmt.Errorf("all sources failed for %s: %w", ticker, errors.Join(errs...))
		}
		return normalize.RawDataset{}, fmt.Errorf("%w: %s", ErrNotFound, ticker)
	}
	return merged, nil
}
