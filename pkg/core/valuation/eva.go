package valuation

import (
	"fmt"

	"consensus_valuation/pkg/core/calc"
	"consensus_valuation/pkg/models"
)

// EVAProjectionYears is how far EBIT is grown before computing NOPAT.
const EVAProjectionYears = 2

const evaFormula = "EVA = EBIT(1+g)²(1-T) - IC × WACC; MVA = EVA / WACC; FV = (IC + MVA - debt + cash) / shares"

// EVA prices the snapshot with economic value added capitalised into market
// value added.
//
// FORMULA:
//
//	NOPAT = EBIT₂ × (1 - T)
//	EVA   = NOPAT - IC × WACC
//	MVA   = EVA / WACC
//	Value = IC + MVA - Debt + Cash
func EVA(s *models.FinancialSnapshot, wacc, revenueGrowth, taxRate float64) models.ValuationResult {
	inputs := []models.TraceInput{
		in("ebit", s.EBIT),
		in("invested_capital", s.InvestedCapital),
		in("wacc", wacc),
		in("revenue_growth", revenueGrowth),
		in("tax_rate", taxRate),
	}
	if wacc <= 0 {
		return degenerate(models.MethodEVA, evaFormula, fmt.Sprintf("WACC %.4f not positive", wacc), inputs...)
	}

	ebit := calc.ProjectFromGrowth(s.EBIT, revenueGrowth, EVAProjectionYears)
	nopat := ebit * (1 - taxRate)
	charge := s.InvestedCapital * wacc
	eva := nopat - charge
	mva := eva / wacc
	equity := s.InvestedCapital + mva - s.TotalDebt + s.Cash

	inputs = append(inputs,
		in("nopat", nopat),
		in("capital_charge", charge),
		in("eva", eva),
		in("mva", mva),
		in("equity_value", equity),
	)
	return result(models.MethodEVA, calc.SafeDivide(equity, s.SharesOutstanding), evaFormula, "", inputs...)
}
