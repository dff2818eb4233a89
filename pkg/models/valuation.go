package models

import "math"

// MethodID names one of the five valuation methodologies.
type MethodID string

const (
	MethodDCF       MethodID = "DCF"
	MethodGordon    MethodID = "GORDON"
	MethodGraham    MethodID = "GRAHAM"
	MethodEVA       MethodID = "EVA_MVA"
	MethodMultiples MethodID = "MULTIPLES"
)

// Methods lists every method in the order results are reported.
var Methods = []MethodID{MethodDCF, MethodGordon, MethodGraham, MethodEVA, MethodMultiples}

// ScenarioAssumptions are the macro and growth inputs of one valuation run.
type ScenarioAssumptions struct {
	Name              string  `json:"name" yaml:"name"`
	RiskFreeRate      float64 `json:"risk_free_rate" yaml:"risk_free_rate"`
	EquityRiskPremium float64 `json:"equity_risk_premium" yaml:"equity_risk_premium"`
	Beta              float64 `json:"beta" yaml:"beta"`
	CostOfDebt        float64 `json:"cost_of_debt" yaml:"cost_of_debt"`
	PerpetualGrowth   float64 `json:"perpetual_growth" yaml:"perpetual_growth"`
	RevenueGrowth     float64 `json:"revenue_growth" yaml:"revenue_growth"`
	TaxRate           float64 `json:"tax_rate" yaml:"tax_rate"`
}

// WeightingProfile holds one non-negative weight per method. Weights are
// normalized by their sum at aggregation time.
type WeightingProfile struct {
	Name      string  `json:"name" yaml:"name"`
	DCF       float64 `json:"dcf" yaml:"dcf"`
	Gordon    float64 `json:"gordon" yaml:"gordon"`
	Graham    float64 `json:"graham" yaml:"graham"`
	EVA       float64 `json:"eva" yaml:"eva"`
	Multiples float64 `json:"multiples" yaml:"multiples"`
}

// Weight returns the raw weight configured for a method.
func (w WeightingProfile) Weight(m MethodID) float64 {
	switch m {
	case MethodDCF:
		return w.DCF
	case MethodGordon:
		return w.Gordon
	case MethodGraham:
		return w.Graham
	case MethodEVA:
		return w.EVA
	case MethodMultiples:
		return w.Multiples
	}
	return 0
}

// Sum returns the total of all weights.
func (w WeightingProfile) Sum() float64 {
	return w.DCF + w.Gordon + w.Graham + w.EVA + w.Multiples
}

// Scale returns a copy with every weight multiplied by k.
func (w WeightingProfile) Scale(k float64) WeightingProfile {
	return WeightingProfile{
		Name:      w.Name,
		DCF:       w.DCF * k,
		Gordon:    w.Gordon * k,
		Graham:    w.Graham * k,
		EVA:       w.EVA * k,
		Multiples: w.Multiples * k,
	}
}

// CostOfCapital is the output of the cost-of-capital calculator.
type CostOfCapital struct {
	CostOfEquity       float64 `json:"cost_of_equity"`
	Beta               float64 `json:"beta"`
	CostOfDebt         float64 `json:"cost_of_debt"` // pre-tax
	CostOfDebtAfterTax float64 `json:"cost_of_debt_after_tax"`
	ImpliedDebtRate    float64 `json:"implied_debt_rate"`
	UsedImpliedRate    bool    `json:"used_implied_rate"`
	TaxRate            float64 `json:"tax_rate"`
	EquityValue        float64 `json:"equity_value"`
	DebtValue          float64 `json:"debt_value"`
	EquityWeight       float64 `json:"equity_weight"`
	DebtWeight         float64 `json:"debt_weight"`
	WACC               float64 `json:"wacc"`
}

// TraceInput is one named input of a derivation trace.
type TraceInput struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Trace records how a fair value was derived.
type Trace struct {
	Formula string       `json:"formula"`
	Inputs  []TraceInput `json:"inputs"`
	Result  float64      `json:"result"`
	Note    string       `json:"note,omitempty"`
}

// ValuationResult is the outcome of one pricing method.
type ValuationResult struct {
	Method     MethodID `json:"method"`
	FairValue  float64  `json:"fair_value"`
	Weight     float64  `json:"weight"` // normalized
	Upside     float64  `json:"upside"`
	Degenerate bool     `json:"degenerate"`
	Trace      Trace    `json:"trace"`
}

// PriceRange spans the positive fair values across methods.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// SensitivityCell is one point of the WACC x growth grid.
type SensitivityCell struct {
	WACC      float64 `json:"wacc"`
	Growth    float64 `json:"growth"`
	FairValue float64 `json:"fair_value"`
}

// GridSize is the side of the sensitivity grid.
const GridSize = 5

// ComprehensiveValuation is the aggregate result of one run.
type ComprehensiveValuation struct {
	Ticker            string                              `json:"ticker"`
	Currency          string                              `json:"currency"`
	CurrentPrice      float64                             `json:"current_price"`
	WeightedFairValue float64                             `json:"weighted_fair_value"`
	TotalUpside       float64                             `json:"total_upside"`
	WACC              float64                             `json:"wacc"`
	CostOfCapital     CostOfCapital                       `json:"cost_of_capital"`
	PriceRange        PriceRange                          `json:"price_range"`
	Methods           []ValuationResult                   `json:"methods"`
	Sensitivity       [GridSize][GridSize]SensitivityCell `json:"sensitivity"`
	Scenario          ScenarioAssumptions                 `json:"scenario"`
	Profile           WeightingProfile                    `json:"profile"`
	Flags             []DataQualityFlag                   `json:"flags,omitempty"`
}

// Usable reports whether the weighted fair value is finite and positive.
func (c *ComprehensiveValuation) Usable() bool {
	v := c.WeightedFairValue
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// HasFlag reports whether a data-quality flag with the given code was raised.
func (c *ComprehensiveValuation) HasFlag(code FlagCode) bool {
	for _, f := range c.Flags {
		if f.Code == code {
			return true
		}
	}
	return false
}

// Method returns the result for one method.
func (c *ComprehensiveValuation) Method(id MethodID) (ValuationResult, bool) {
	for _, r := range c.Methods {
		if r.Method == id {
			return r, true
		}
	}
	return ValuationResult{}, false
}
