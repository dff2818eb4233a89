// Package valuation implements the consensus fair-value engine: the cost of
// capital calculator, five pricing methods, the weighted aggregator and the
// WACC × growth sensitivity grid. Everything here is a pure function of its
// inputs; an Engine may be shared between goroutines.
package valuation

import (
	"errors"
	"fmt"

	"consensus_valuation/pkg/models"
)

// Engine evaluates snapshots against a fixed sector multiple table.
type Engine struct {
	sectors SectorTable
}

// NewEngine returns an engine using sectors, or the built-in table when
// sectors is empty. The table is copied.
func NewEngine(sectors SectorTable) *Engine {
	base := DefaultSectorMultiples()
	if len(sectors) > 0 {
		base = base.Merge(sectors)
	}
	return &Engine{sectors: base}
}

// Sectors returns a copy of the engine's sector table.
func (e *Engine) Sectors() SectorTable {
	return SectorTable{}.Merge(e.sectors)
}

// Evaluate runs the full valuation of one snapshot. The only failure is an
// invalid weighting profile; degenerate methods, substituted inputs and an
// unusable consensus are reported through the result's flags.
func (e *Engine) Evaluate(s *models.FinancialSnapshot, a models.ScenarioAssumptions, w models.WeightingProfile) (*models.ComprehensiveValuation, error) {
	if s == nil {
		return nil, errors.New("valuation: nil snapshot")
	}
	if err := ValidateWeights(w); err != nil {
		return nil, err
	}

	flags := append([]models.DataQualityFlag(nil), s.Flags...)

	// 1. Cost of capital
	cc, ccFlags := CalculateCostOfCapital(s, a)
	flags = append(flags, ccFlags...)

	// 2. Methods
	multiple, found := e.sectors.Lookup(s.Sector)
	if !found {
		flags = append(flags, models.DataQualityFlag{
			Code:    models.FlagPlaceholderMultiple,
			Field:   "sector",
			Message: fmt.Sprintf("no peer multiples for sector %q; using placeholder P/E %.1f and EV/EBITDA %.1f", s.Sector, multiple.PE, multiple.EVEBITDA),
		})
	}
	results := []models.ValuationResult{
		DCF(s, cc.WACC, a.RevenueGrowth, a.PerpetualGrowth),
		Gordon(s, cc.CostOfEquity, a.PerpetualGrowth),
		Graham(s),
		EVA(s, cc.WACC, a.RevenueGrowth, cc.TaxRate),
		Multiples(s, multiple),
	}
	for _, r := range results {
		if r.Degenerate {
			flags = append(flags, models.DataQualityFlag{
				Code:    models.FlagDegenerateMethod,
				Field:   string(r.Method),
				Message: fmt.Sprintf("%s reported 0: %s", r.Method, r.Trace.Note),
			})
		}
	}

	// 3. Consensus
	consensus, err := Aggregate(s.Price, results, w)
	if err != nil {
		return nil, err
	}

	cv := &models.ComprehensiveValuation{
		Ticker:            s.Ticker,
		Currency:          s.Currency,
		CurrentPrice:      s.Price,
		WeightedFairValue: consensus.WeightedFairValue,
		TotalUpside:       consensus.TotalUpside,
		WACC:              cc.WACC,
		CostOfCapital:     cc,
		PriceRange:        consensus.PriceRange,
		Methods:           consensus.Methods,
		Sensitivity:       SensitivityGrid(s, cc.WACC, a.RevenueGrowth, a.PerpetualGrowth),
		Scenario:          a,
		Profile:           w,
		Flags:             flags,
	}
	if !cv.Usable() {
		cv.Flags = append(cv.Flags, models.DataQualityFlag{
			Code:    models.FlagUnusableConsensus,
			Field:   "weighted_fair_value",
			Message: "weighted fair value is not positive; the consensus and its upside are not meaningful",
		})
	}
	return cv, nil
}
