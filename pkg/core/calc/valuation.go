// Package calc provides deterministic financial calculations shared by the
// normalizer and the valuation methods. Every function is pure.
package calc

import (
	"math"
)

// StatutoryTaxRate is the corporate income tax rate (IRPJ + CSLL) used when a
// scenario does not carry a usable tax rate.
const StatutoryTaxRate = 0.34

// =============================================================================
// COST OF CAPITAL
// =============================================================================

// CostOfEquityCAPM calculates required return on equity using CAPM.
//
// FORMULA: r_e = r_f + β × MRP
//
// Where:
//   - r_f = Risk-free rate
//   - β = Equity beta (market sensitivity)
//   - MRP = Market Risk Premium (expected market return - risk-free rate)
func CostOfEquityCAPM(riskFreeRate, beta, marketRiskPremium float64) float64 {
	return riskFreeRate + beta*marketRiskPremium
}

// AfterTaxCostOfDebt applies the interest tax shield.
//
// FORMULA: r_d,net = r_d × (1 - T)
func AfterTaxCostOfDebt(costOfDebt, taxRate float64) float64 {
	return costOfDebt * (1 - taxRate)
}

// WACC calculates Weighted Average Cost of Capital.
//
// FORMULA: WACC = r_d × (1 - T) × (D/V) + r_e × (E/V)
func WACC(costOfDebt, taxRate, debtWeight, costOfEquity, equityWeight float64) float64 {
	afterTaxDebtCost := AfterTaxCostOfDebt(costOfDebt, taxRate) * debtWeight
	equityCost := costOfEquity * equityWeight
	return afterTaxDebtCost + equityCost
}

// =============================================================================
// DISCOUNTING
// =============================================================================

// TerminalValueGordonGrowth calculates terminal value using Gordon Growth Model.
//
// FORMULA: TV = CF_{t+1} / (r - g)
//
// Returns 0 when r <= g (no finite solution).
func TerminalValueGordonGrowth(nextPeriodCF, discountRate, growthRate float64) float64 {
	if discountRate <= growthRate {
		return 0
	}
	return nextPeriodCF / (discountRate - growthRate)
}

// PresentValue calculates PV of a single cash flow.
//
// FORMULA: PV = CF / (1 + r)^t
func PresentValue(cashFlow, discountRate float64, periods int) float64 {
	if periods < 0 {
		return 0
	}
	return cashFlow / math.Pow(1+discountRate, float64(periods))
}

// PresentValueOfCashFlows calculates PV of a series of cash flows.
//
// FORMULA: PV = Σ [ CF_t / (1 + r)^t ]
//
// Cash flows are assumed to be at end of each period (ordinary annuity).
func PresentValueOfCashFlows(cashFlows []float64, discountRate float64) float64 {
	var pv float64
	for t, cf := range cashFlows {
		pv += cf / math.Pow(1+discountRate, float64(t+1))
	}
	return pv
}

// =============================================================================
// PROJECTIONS
// =============================================================================

// ProjectFromGrowth compounds an amount forward.
//
// FORMULA: Amount_t = Amount_0 × (1 + g)^t
func ProjectFromGrowth(amount, growthRate float64, periods int) float64 {
	return amount * math.Pow(1+growthRate, float64(periods))
}

// ProjectSeries returns Amount_1..Amount_n compounding at growthRate.
func ProjectSeries(amount, growthRate float64, periods int) []float64 {
	if periods <= 0 {
		return nil
	}
	out := make([]float64, periods)
	for t := 1; t <= periods; t++ {
		out[t-1] = ProjectFromGrowth(amount, growthRate, t)
	}
	return out
}

// =============================================================================
// NUMERIC GUARDS
// =============================================================================

// SafeDivide returns a/b, or 0 when b is zero or the result is not finite.
func SafeDivide(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return Finite(a / b)
}

// Finite maps NaN and ±Inf to 0.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// FloorZero clamps negative and non-finite values to 0.
func FloorZero(v float64) float64 {
	v = Finite(v)
	if v < 0 {
		return 0
	}
	return v
}
