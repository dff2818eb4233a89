package valuation

import (
	"errors"
	"fmt"
	"math"

	"consensus_valuation/pkg/core/calc"
	"consensus_valuation/pkg/models"
)

// ErrInvalidWeights is returned when a weighting profile has a negative
// weight or does not sum to a positive number.
var ErrInvalidWeights = errors.New("invalid weighting profile")

// Consensus is the weighted combination of the method results.
type Consensus struct {
	Methods           []models.ValuationResult
	WeightedFairValue float64
	TotalUpside       float64
	PriceRange        models.PriceRange
}

// ValidateWeights checks the weighting invariants.
func ValidateWeights(w models.WeightingProfile) error {
	for _, m := range models.Methods {
		v := w.Weight(m)
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s weight %v for %s", ErrInvalidWeights, w.Name, v, m)
		}
	}
	if !(w.Sum() > 0) {
		return fmt.Errorf("%w: %s weights sum to %v", ErrInvalidWeights, w.Name, w.Sum())
	}
	return nil
}

// Aggregate combines the method results under a weighting profile.
//
// Weights are normalized by their sum, so a zero weight excludes a method
// and scaling every weight leaves the result unchanged. Degenerate methods
// keep their weight in the average but are left out of the price range.
// Upsides are 0 when there is no positive price.
func Aggregate(price float64, results []models.ValuationResult, w models.WeightingProfile) (Consensus, error) {
	if err := ValidateWeights(w); err != nil {
		return Consensus{}, err
	}
	normalized := w.Scale(1 / w.Sum())

	out := Consensus{Methods: make([]models.ValuationResult, len(results))}
	first := true
	for i, r := range results {
		r.Weight = normalized.Weight(r.Method)
		r.Upside = upside(r.FairValue, price)
		out.WeightedFairValue += r.FairValue * r.Weight
		out.Methods[i] = r

		if r.FairValue <= 0 {
			continue
		}
		if first || r.FairValue < out.PriceRange.Min {
			out.PriceRange.Min = r.FairValue
		}
		if first || r.FairValue > out.PriceRange.Max {
			out.PriceRange.Max = r.FairValue
		}
		first = false
	}
	out.WeightedFairValue = calc.Finite(out.WeightedFairValue)
	out.TotalUpside = upside(out.WeightedFairValue, price)
	return out, nil
}

// upside: fairValue / price - 1
func upside(fairValue, price float64) float64 {
	if price <= 0 {
		return 0
	}
	return calc.Finite(fairValue/price - 1)
}
