package valuation

import (
	"fmt"

	"consensus_valuation/pkg/core/calc"
	"consensus_valuation/pkg/models"
)

// Implied cost of debt (interest / debt) is trusted only inside this band.
const (
	MinImpliedDebtRate = 0.01
	MaxImpliedDebtRate = 0.60
)

// DefaultBeta is used when neither the scenario nor the quote carries a beta.
const DefaultBeta = 1.0

// CalculateCostOfCapital computes Ke, Kd and WACC for a snapshot under a
// scenario. Substituted inputs are reported as flags.
//
// FORMULA:
//
//	Ke     = r_f + β × ERP
//	Kd_net = Kd × (1 - T)
//	WACC   = Ke × E/(E+D) + Kd_net × D/(E+D)
//
// E is market capitalisation (price × shares) and D is gross debt. When
// E + D is zero the WACC is Ke alone.
func CalculateCostOfCapital(s *models.FinancialSnapshot, a models.ScenarioAssumptions) (models.CostOfCapital, []models.DataQualityFlag) {
	var flags []models.DataQualityFlag

	// 1. Beta: scenario, then quote, then market beta
	beta := a.Beta
	if beta <= 0 {
		beta = s.Beta
	}
	if beta <= 0 {
		beta = DefaultBeta
		flags = append(flags, models.DataQualityFlag{
			Code:    models.FlagDefaultBeta,
			Field:   "beta",
			Message: fmt.Sprintf("no beta in scenario or quote; using %.2f", DefaultBeta),
		})
	}

	// 2. Tax rate
	tax := a.TaxRate
	if tax <= 0 || tax >= 1 {
		tax = calc.StatutoryTaxRate
		flags = append(flags, models.DataQualityFlag{
			Code:    models.FlagStatutoryTaxRate,
			Field:   "tax_rate",
			Message: fmt.Sprintf("scenario tax rate unusable; using statutory %.0f%%", calc.StatutoryTaxRate*100),
		})
	}

	ke := calc.CostOfEquityCAPM(a.RiskFreeRate, beta, a.EquityRiskPremium)

	// 3. Cost of debt: implied rate when sane, else scenario default
	implied := calc.SafeDivide(s.InterestExpense, s.TotalDebt)
	kd := a.CostOfDebt
	usedImplied := implied >= MinImpliedDebtRate && implied <= MaxImpliedDebtRate
	if usedImplied {
		kd = implied
	} else if s.TotalDebt > 0 {
		flags = append(flags, models.DataQualityFlag{
			Code:    models.FlagDefaultCostOfDebt,
			Field:   "cost_of_debt",
			Message: fmt.Sprintf("implied debt rate %.4f outside [%.2f, %.2f]; using scenario %.4f", implied, MinImpliedDebtRate, MaxImpliedDebtRate, a.CostOfDebt),
		})
	}

	// 4. Capital weights
	e := calc.FloorZero(s.Price * s.SharesOutstanding)
	d := calc.FloorZero(s.TotalDebt)
	cc := models.CostOfCapital{
		CostOfEquity:       ke,
		Beta:               beta,
		CostOfDebt:         kd,
		CostOfDebtAfterTax: calc.AfterTaxCostOfDebt(kd, tax),
		ImpliedDebtRate:    implied,
		UsedImpliedRate:    usedImplied,
		TaxRate:            tax,
		EquityValue:        e,
		DebtValue:          d,
	}
	if e+d == 0 {
		cc.EquityWeight = 1
		cc.WACC = ke
		return cc, flags
	}
	cc.EquityWeight = e / (e + d)
	cc.DebtWeight = d / (e + d)
	cc.WACC = calc.WACC(kd, tax, cc.DebtWeight, ke, cc.EquityWeight)
	return cc, flags
}
