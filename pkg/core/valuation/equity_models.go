package valuation

import (
	"fmt"
	"math"

	"consensus_valuation/pkg/core/calc"
	"consensus_valuation/pkg/models"
)

// GrahamMultiplier is Graham's 15 × P/E by 1.5 × P/B ceiling.
const GrahamMultiplier = 22.5

const (
	gordonFormula = "FV = EPS × (1 + g) / (Ke - g)"
	grahamFormula = "FV = √(22.5 × EPS × BVPS)"
)

// Gordon prices the snapshot with the constant-growth dividend discount
// model, taking next year's earnings per share as the distributable stream.
//
// FORMULA: P₀ = D₁ / (Ke - g), D₁ = EPS × (1 + g)
//
// There is no solution when Ke <= g, and a non-positive EPS has no meaning
// as a dividend. Both report 0.
func Gordon(s *models.FinancialSnapshot, costOfEquity, growth float64) models.ValuationResult {
	inputs := []models.TraceInput{
		in("eps", s.EPS),
		in("cost_of_equity", costOfEquity),
		in("growth", growth),
	}
	if costOfEquity <= growth {
		return degenerate(models.MethodGordon, gordonFormula,
			fmt.Sprintf("Ke %.4f <= g %.4f", costOfEquity, growth), inputs...)
	}
	if s.EPS <= 0 {
		return degenerate(models.MethodGordon, gordonFormula, "non-positive EPS", inputs...)
	}
	d1 := s.EPS * (1 + growth)
	inputs = append(inputs, in("d1", d1))
	return result(models.MethodGordon, calc.SafeDivide(d1, costOfEquity-growth), gordonFormula, "", inputs...)
}

// Graham prices the snapshot with Benjamin Graham's intrinsic value number.
// Loss-making or negative-equity firms report 0.
func Graham(s *models.FinancialSnapshot) models.ValuationResult {
	inputs := []models.TraceInput{
		in("eps", s.EPS),
		in("bvps", s.BookValuePerShare),
	}
	if s.EPS <= 0 || s.BookValuePerShare <= 0 {
		return degenerate(models.MethodGraham, grahamFormula, "EPS or book value per share not positive", inputs...)
	}
	return result(models.MethodGraham, math.Sqrt(GrahamMultiplier*s.EPS*s.BookValuePerShare), grahamFormula, "", inputs...)
}
