// Package pipeline wires a data source, the normalizer and the valuation
// engine into single and batch valuation runs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"consensus_valuation/pkg/core/assumption"
	"consensus_valuation/pkg/core/ingest"
	"consensus_valuation/pkg/core/normalize"
	"consensus_valuation/pkg/core/valuation"
	"consensus_valuation/pkg/models"
)

// DefaultWorkers bounds a batch when the caller does not.
const DefaultWorkers = 4

// Orchestrator manages the end-to-end data flow:
// Source (fetch) -> Normalizer (snapshot) -> Engine (consensus)
type Orchestrator struct {
	source    ingest.Source
	catalogue *assumption.Catalogue
	engine    *valuation.Engine
	log       zerolog.Logger
}

// NewOrchestrator creates an orchestrator. The engine is built from the
// catalogue's sector multiples.
func NewOrchestrator(source ingest.Source, catalogue *assumption.Catalogue, log zerolog.Logger) *Orchestrator {
	if catalogue == nil {
		catalogue = assumption.NewCatalogue()
	}
	return &Orchestrator{
		source:    source,
		catalogue: catalogue,
		engine:    valuation.NewEngine(catalogue.Sectors()),
		log:       log.With().Str("module", "pipeline").Logger(),
	}
}

// Catalogue returns the assumption catalogue in use.
func (o *Orchestrator) Catalogue() *assumption.Catalogue {
	return o.catalogue
}

// Request describes one valuation. Empty names select the catalogue
// defaults; non-empty overrides derive a custom scenario from the named one.
type Request struct {
	Ticker    string
	Scenario  string
	Profile   string
	Overrides assumption.Overrides
}

// Value runs the full pipeline for one ticker under a named scenario and
// weighting profile.
func (o *Orchestrator) Value(ctx context.Context, ticker, scenario, profile string) (*models.ComprehensiveValuation, error) {
	return o.Run(ctx, Request{Ticker: ticker, Scenario: scenario, Profile: profile})
}

// Run executes a request.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*models.ComprehensiveValuation, error) {
	a, w, err := o.resolve(req)
	if err != nil {
		return nil, err
	}
	return o.value(ctx, req.Ticker, a, w)
}

func (o *Orchestrator) resolve(req Request) (models.ScenarioAssumptions, models.WeightingProfile, error) {
	a, err := o.catalogue.Scenario(req.Scenario)
	if err != nil {
		return models.ScenarioAssumptions{}, models.WeightingProfile{}, err
	}
	if !req.Overrides.Empty() {
		if a, err = assumption.ApplyOverrides(a, req.Overrides); err != nil {
			return models.ScenarioAssumptions{}, models.WeightingProfile{}, err
		}
	}
	w, err := o.catalogue.Profile(req.Profile)
	if err != nil {
		return models.ScenarioAssumptions{}, models.WeightingProfile{}, err
	}
	return a, w, nil
}

func (o *Orchestrator) value(ctx context.Context, ticker string, a models.ScenarioAssumptions, w models.WeightingProfile) (*models.ComprehensiveValuation, error) {
	start := time.Now()

	// 1. Fetch
	ds, err := o.source.Fetch(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ticker, err)
	}

	// 2. Normalize
	snap, err := normalize.Normalize(ds, ticker)
	if err != nil {
		return nil, err
	}

	// 3. Valuation
	result, err := o.engine.Evaluate(snap, a, w)
	if err != nil {
		return nil, fmt.Errorf("valuation of %s failed: %w", snap.Ticker, err)
	}

	o.log.Info().
		Str("ticker", snap.Ticker).
		Str("scenario", a.Name).
		Str("profile", w.Name).
		Float64("fair_value", result.WeightedFairValue).
		Float64("upside", result.TotalUpside).
		Int("flags", len(result.Flags)).
		Bool("usable", result.Usable()).
		Dur("elapsed", time.Since(start)).
		Msg("Valuation complete")
	if !result.Usable() {
		o.log.Warn().Str("ticker", snap.Ticker).Msg("Weighted fair value is not positive; consensus unusable")
	}
	return result, nil
}

// =============================================================================
// BATCH
// =============================================================================

// BatchRequest values several tickers under one scenario and profile.
type BatchRequest struct {
	Tickers   []string
	Scenario  string
	Profile   string
	Overrides assumption.Overrides
	Workers   int
}

// Failure records a ticker that produced no valuation.
type Failure struct {
	Ticker      string `json:"ticker"`
	Error       string `json:"error"`
	MissingData bool   `json:"missing_data"`
}

// BatchReport is the outcome of RunBatch. Results and Failures keep the
// order of the requested tickers.
type BatchReport struct {
	RunID     string                           `json:"run_id"`
	Scenario  string                           `json:"scenario"`
	Profile   string                           `json:"profile"`
	StartedAt time.Time                        `json:"started_at"`
	Elapsed   time.Duration                    `json:"elapsed"`
	Results   []*models.ComprehensiveValuation `json:"results"`
	Failures  []Failure                        `json:"failures,omitempty"`
}

// Unusable counts the results whose weighted fair value is not usable.
func (r *BatchReport) Unusable() int {
	n := 0
	for _, v := range r.Results {
		if !v.Usable() {
			n++
		}
	}
	return n
}

// RunBatch values every ticker with at most Workers concurrent runs. A
// ticker that fails (missing statements, source errors) is recorded in
// Failures and skipped; only an unknown scenario or profile, or a cancelled
// context, fails the whole batch.
func (o *Orchestrator) RunBatch(ctx context.Context, req BatchRequest) (*BatchReport, error) {
	a, w, err := o.resolve(Request{Scenario: req.Scenario, Profile: req.Profile, Overrides: req.Overrides})
	if err != nil {
		return nil, err
	}
	workers := req.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	start := time.Now()
	report := &BatchReport{
		RunID:     uuid.NewString(),
		Scenario:  a.Name,
		Profile:   w.Name,
		StartedAt: start.UTC(),
	}
	log := o.log.With().Str("run_id", report.RunID).Logger()
	log.Info().Int("tickers", len(req.Tickers)).Int("workers", workers).Msg("Batch started")

	results := make([]*models.ComprehensiveValuation, len(req.Tickers))
	failures := make([]*Failure, len(req.Tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, ticker := range req.Tickers {
		i, ticker := i, ticker
		g.Go(func() error {
			res, err := o.value(gctx, ticker, a, w)
			if err == nil {
				results[i] = res
				return nil
			}
			if gctx.Err() != nil {
				return gctx.Err()
			}
			failures[i] = &Failure{
				Ticker:      ticker,
				Error:       err.Error(),
				MissingData: errors.Is(err, normalize.ErrMissingData),
			}
			log.Warn().Err(err).Str("ticker", ticker).Msg("Ticker skipped")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch %s aborted: %w", report.RunID, err)
	}

	for i := range req.Tickers {
		if results[i] != nil {
			report.Results = append(report.Results, results[i])
		}
		if failures[i] != nil {
			report.Failures = append(report.Failures, *failures[i])
		}
	}
	report.Elapsed = time.Since(start)

	log.Info().
		Int("valued", len(report.Results)).
		Int("unusable", report.Unusable()).
		Int("failed", len(report.Failures)).
		Dur("elapsed", report.Elapsed).
		Msg("Batch complete")
	return report, nil
}
