package assumption

import (
	"fmt"
	"math"

	"consensus_valuation/pkg/models"
)

// Overrides replaces individual fields of a scenario. Nil fields keep the
// base value.
type Overrides struct {
	RiskFreeRate      *float64 `json:"risk_free_rate,omitempty" yaml:"risk_free_rate,omitempty"`
	EquityRiskPremium *float64 `json:"equity_risk_premium,omitempty" yaml:"equity_risk_premium,omitempty"`
	Beta              *float64 `json:"beta,omitempty" yaml:"beta,omitempty"`
	CostOfDebt        *float64 `json:"cost_of_debt,omitempty" yaml:"cost_of_debt,omitempty"`
	PerpetualGrowth   *float64 `json:"perpetual_growth,omitempty" yaml:"perpetual_growth,omitempty"`
	RevenueGrowth     *float64 `json:"revenue_growth,omitempty" yaml:"revenue_growth,omitempty"`
	TaxRate           *float64 `json:"tax_rate,omitempty" yaml:"tax_rate,omitempty"`
}

// Empty reports whether no field is set.
func (o Overrides) Empty() bool {
	return o == Overrides{}
}

// ApplyOverrides returns base with every set field of o applied. The result
// is named "<base>+CUSTOM" when anything changed.
func ApplyOverrides(base models.ScenarioAssumptions, o Overrides) (models.ScenarioAssumptions, error) {
	if o.Empty() {
		return base, nil
	}
	out := base
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&out.RiskFreeRate, o.RiskFreeRate)
	set(&out.EquityRiskPremium, o.EquityRiskPremium)
	set(&out.Beta, o.Beta)
	set(&out.CostOfDebt, o.CostOfDebt)
	set(&out.PerpetualGrowth, o.PerpetualGrowth)
	set(&out.RevenueGrowth, o.RevenueGrowth)
	set(&out.TaxRate, o.TaxRate)
	out.Name = base.Name + "+CUSTOM"

	if err := ValidateScenario(out); err != nil {
		return models.ScenarioAssumptions{}, err
	}
	return out, nil
}

// ValidateScenario rejects non-finite rates and values outside their
// economic range. WACC <= growth is not checked here: the engine reports it
// as a degenerate DCF.
func ValidateScenario(s models.ScenarioAssumptions) error {
	fields := []struct {
		name     string
		v        float64
		min, max float64
	}{
		{"risk_free_rate", s.RiskFreeRate, -0.05, 1},
		{"equity_risk_premium", s.EquityRiskPremium, 0, 1},
		{"beta", s.Beta, 0, 5},
		{"cost_of_debt", s.CostOfDebt, 0, 1},
		{"perpetual_growth", s.PerpetualGrowth, -0.5, 0.5},
		{"revenue_growth", s.RevenueGrowth, -0.9, 5},
		{"tax_rate", s.TaxRate, 0, 0.99},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w %s: %s is not finite", ErrInvalidScenario, s.Name, f.name)
		}
		if f.v < f.min || f.v > f.max {
			return fmt.Errorf("%w %s: %s %.4f outside [%g, %g]", ErrInvalidScenario, s.Name, f.name, f.v, f.min, f.max)
		}
	}
	return nil
}

// Float is a helper for building Overrides literals.
func Float(v float64) *float64 {
	return &v
}
