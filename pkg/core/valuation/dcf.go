package valuation

import (
	"fmt"

	"consensus_valuation/pkg/core/calc"
	"consensus_valuation/pkg/models"
)

// ProjectionYears is the explicit forecast horizon of the DCF.
const ProjectionYears = 5

const dcfFormula = "EV = Σ FCF₀(1+g)ᵗ/(1+WACC)ᵗ + FCF₅(1+g∞)/(WACC-g∞)/(1+WACC)⁵; FV = (EV + cash - debt) / shares"

// DCFBreakdown holds the intermediate values of one DCF run.
type DCFBreakdown struct {
	ProjectedFCF    []float64
	PVExplicit      float64
	TerminalValue   float64
	PVTerminal      float64
	EnterpriseValue float64
	EquityValue     float64
	SharePrice      float64
}

// CalculateDCF performs the two-stage free cash flow to firm valuation.
// ok is false when WACC <= perpetual growth, where the terminal value has no
// finite solution.
func CalculateDCF(s *models.FinancialSnapshot, wacc, revenueGrowth, perpetualGrowth float64) (DCFBreakdown, bool) {
	if wacc <= perpetualGrowth {
		return DCFBreakdown{}, false
	}

	// 1. Explicit period
	flows := calc.ProjectSeries(s.FreeCashFlow, revenueGrowth, ProjectionYears)
	pvExplicit := calc.PresentValueOfCashFlows(flows, wacc)

	// 2. Terminal value on year-5 FCF grown one more period
	tv := calc.TerminalValueGordonGrowth(flows[ProjectionYears-1]*(1+perpetualGrowth), wacc, perpetualGrowth)
	pvTerminal := calc.PresentValue(tv, wacc, ProjectionYears)

	// 3. Bridge to equity
	ev := pvExplicit + pvTerminal
	equity := ev + s.Cash - s.TotalDebt

	return DCFBreakdown{
		ProjectedFCF:    flows,
		PVExplicit:      pvExplicit,
		TerminalValue:   tv,
		PVTerminal:      pvTerminal,
		EnterpriseValue: ev,
		EquityValue:     equity,
		SharePrice:      calc.SafeDivide(equity, s.SharesOutstanding),
	}, true
}

// DCF prices the snapshot by discounted free cash flow.
func DCF(s *models.FinancialSnapshot, wacc, revenueGrowth, perpetualGrowth float64) models.ValuationResult {
	inputs := []models.TraceInput{
		in("free_cash_flow", s.FreeCashFlow),
		in("wacc", wacc),
		in("revenue_growth", revenueGrowth),
		in("perpetual_growth", perpetualGrowth),
		in("cash", s.Cash),
		in("debt", s.TotalDebt),
		in("shares", s.SharesOutstanding),
	}
	b, ok := CalculateDCF(s, wacc, revenueGrowth, perpetualGrowth)
	if !ok {
		return degenerate(models.MethodDCF, dcfFormula,
			fmt.Sprintf("WACC %.4f <= perpetual growth %.4f", wacc, perpetualGrowth), inputs...)
	}
	inputs = append(inputs,
		in("pv_explicit", b.PVExplicit),
		in("pv_terminal", b.PVTerminal),
		in("enterprise_value", b.EnterpriseValue),
		in("equity_value", b.EquityValue),
	)
	return result(models.MethodDCF, b.SharePrice, dcfFormula, "", inputs...)
}
