package valuation

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"consensus_valuation/pkg/models"
)

func near(a, b, relTol float64) bool {
	return math.Abs(a-b) <= relTol*math.Max(1, math.Abs(b))
}

func sampleSnapshot() *models.FinancialSnapshot {
	return &models.FinancialSnapshot{
		Ticker:            "VALE3",
		Currency:          "BRL",
		Sector:            "Mining",
		Price:             60,
		SharesOutstanding: 1000,
		Beta:              1.1,
		Equity:            20000,
		TotalDebt:         10000,
		Cash:              2000,
		NetDebt:           8000,
		InvestedCapital:   28000,
		FreeCashFlow:      4000,
		EBIT:              7000,
		EBITDA:            9000,
		Revenue:           40000,
		NetIncome:         4500,
		InterestExpense:   1200,
		EPS:               4.5,
		BookValuePerShare: 20,
	}
}

func baseScenario() models.ScenarioAssumptions {
	return models.ScenarioAssumptions{
		Name:              "BASE",
		RiskFreeRate:      0.105,
		EquityRiskPremium: 0.055,
		Beta:              1.0,
		CostOfDebt:        0.16,
		PerpetualGrowth:   0.04,
		RevenueGrowth:     0.06,
		TaxRate:           0.34,
	}
}

func equalWeights() models.WeightingProfile {
	return models.WeightingProfile{Name: "BALANCED", DCF: 0.2, Gordon: 0.2, Graham: 0.2, EVA: 0.2, Multiples: 0.2}
}

func hasFlag(flags []models.DataQualityFlag, code models.FlagCode) bool {
	for _, f := range flags {
		if f.Code == code {
			return true
		}
	}
	return false
}

// =============================================================================
// COST OF CAPITAL
// =============================================================================

func TestCostOfCapital_ImpliedDebtRate(t *testing.T) {
	s := &models.FinancialSnapshot{Price: 10, SharesOutstanding: 30, TotalDebt: 100, InterestExpense: 12}
	cc, flags := CalculateCostOfCapital(s, baseScenario())

	if !cc.UsedImpliedRate || cc.CostOfDebt != 0.12 {
		t.Errorf("expected implied Kd 0.12, got %f (used=%v)", cc.CostOfDebt, cc.UsedImpliedRate)
	}
	ke := 0.105 + 1.0*0.055
	want := ke*0.75 + 0.12*(1-0.34)*0.25
	if !near(cc.WACC, want, 1e-12) {
		t.Errorf("expected WACC %f, got %f", want, cc.WACC)
	}
	if hasFlag(flags, models.FlagDefaultCostOfDebt) {
		t.Error("no default cost of debt flag expected")
	}
}

func TestCostOfCapital_ImpliedRateOutsideBand(t *testing.T) {
	for _, interest := range []float64{0.5, 70} {
		s := &models.FinancialSnapshot{Price: 10, SharesOutstanding: 30, TotalDebt: 100, InterestExpense: interest}
		cc, flags := CalculateCostOfCapital(s, baseScenario())
		if cc.UsedImpliedRate {
			t.Errorf("interest %f: implied rate should have been rejected", interest)
		}
		if cc.CostOfDebt != 0.16 {
			t.Errorf("interest %f: expected scenario Kd 0.16, got %f", interest, cc.CostOfDebt)
		}
		if !hasFlag(flags, models.FlagDefaultCostOfDebt) {
			t.Errorf("interest %f: expected default cost of debt flag", interest)
		}
	}
}

func TestCostOfCapital_ZeroCapitalIsCostOfEquity(t *testing.T) {
	s := &models.FinancialSnapshot{SharesOutstanding: 1000}
	cc, _ := CalculateCostOfCapital(s, baseScenario())
	if cc.WACC != cc.CostOfEquity {
		t.Errorf("expected WACC == Ke (%f), got %f", cc.CostOfEquity, cc.WACC)
	}
	if math.IsNaN(cc.WACC) {
		t.Error("WACC must not be NaN")
	}
}

func TestCostOfCapital_BetaFallback(t *testing.T) {
	a := baseScenario()
	a.Beta = 0

	s := &models.FinancialSnapshot{Beta: 1.3, Price: 10, SharesOutstanding: 10}
	cc, flags := CalculateCostOfCapital(s, a)
	if cc.Beta != 1.3 {
		t.Errorf("expected quote beta 1.3, got %f", cc.Beta)
	}
	if hasFlag(flags, models.FlagDefaultBeta) {
		t.Error("quote beta should not be flagged")
	}

	s.Beta = 0
	cc, flags = CalculateCostOfCapital(s, a)
	if cc.Beta != DefaultBeta || !hasFlag(flags, models.FlagDefaultBeta) {
		t.Errorf("expected flagged default beta, got %f", cc.Beta)
	}
}

func TestCostOfCapital_StatutoryTaxFallback(t *testing.T) {
	a := baseScenario()
	a.TaxRate = 0
	cc, flags := CalculateCostOfCapital(sampleSnapshot(), a)
	if cc.TaxRate != 0.34 {
		t.Errorf("expected statutory 0.34, got %f", cc.TaxRate)
	}
	if !hasFlag(flags, models.FlagStatutoryTaxRate) {
		t.Error("expected statutory tax flag")
	}
}

// =============================================================================
// METHODS
// =============================================================================

// referenceDCF follows the recurrence step by step.
func referenceDCF(fcf, g, gPerp, wacc, shares, cash, debt float64) float64 {
	var pv float64
	cf := fcf
	discount := 1.0
	for t := 1; t <= 5; t++ {
		cf *= 1 + g
		discount *= 1 + wacc
		pv += cf / discount
	}
	tv := cf * (1 + gPerp) / (wacc - gPerp)
	pv += tv / discount
	return (pv + cash - debt) / shares
}

func TestDCF_WorkedExample(t *testing.T) {
	s := &models.FinancialSnapshot{FreeCashFlow: 1_000_000, SharesOutstanding: 100_000}
	got := DCF(s, 0.12, 0.05, 0.05)
	want := referenceDCF(1_000_000, 0.05, 0.05, 0.12, 100_000, 0, 0)

	if !near(got.FairValue, want, 1e-6) {
		t.Errorf("expected %f, got %f", want, got.FairValue)
	}
	// With g equal to g∞ the flows form a growing perpetuity: 1e6 × 1.05 / 0.07 / 1e5.
	if !near(got.FairValue, 150, 1e-9) {
		t.Errorf("expected 150 per share, got %f", got.FairValue)
	}
	if got.Degenerate {
		t.Error("worked example is not degenerate")
	}
	if got.Trace.Result != got.FairValue || got.Trace.Formula == "" {
		t.Errorf("trace incomplete: %+v", got.Trace)
	}
}

func TestDCF_EquityBridge(t *testing.T) {
	s := &models.FinancialSnapshot{FreeCashFlow: 1_000_000, SharesOutstanding: 100_000, Cash: 500_000, TotalDebt: 2_000_000}
	got := DCF(s, 0.12, 0.05, 0.05).FairValue
	want := referenceDCF(1_000_000, 0.05, 0.05, 0.12, 100_000, 500_000, 2_000_000)
	if !near(got, want, 1e-6) {
		t.Errorf("expected %f, got %f", want, got)
	}
}

func TestDCF_WACCBelowGrowthIsDegenerate(t *testing.T) {
	s := &models.FinancialSnapshot{FreeCashFlow: 1_000_000, SharesOutstanding: 100_000}
	for _, wacc := range []float64{0.05, 0.04} {
		r := DCF(s, wacc, 0.05, 0.05)
		if r.FairValue != 0 || !r.Degenerate {
			t.Errorf("wacc %f: expected degenerate 0, got %f", wacc, r.FairValue)
		}
	}
}

func TestGordon(t *testing.T) {
	s := &models.FinancialSnapshot{EPS: 2}
	r := Gordon(s, 0.12, 0.04)
	if !near(r.FairValue, 2.08/0.08, 1e-12) {
		t.Errorf("expected %f, got %f", 2.08/0.08, r.FairValue)
	}
}

func TestGordon_GrowthAboveCostOfEquity(t *testing.T) {
	r := Gordon(&models.FinancialSnapshot{EPS: 3}, 0.05, 0.08)
	if r.FairValue != 0 {
		t.Errorf("expected 0 when g > Ke, got %f", r.FairValue)
	}
	if !r.Degenerate {
		t.Error("expected degenerate result")
	}
	if r := Gordon(&models.FinancialSnapshot{EPS: 3}, 0.08, 0.08); r.FairValue != 0 {
		t.Errorf("expected 0 when g == Ke, got %f", r.FairValue)
	}
}

func TestGordon_NegativeEPS(t *testing.T) {
	if r := Gordon(&models.FinancialSnapshot{EPS: -2}, 0.12, 0.04); r.FairValue != 0 {
		t.Errorf("expected 0 for negative EPS, got %f", r.FairValue)
	}
}

func TestGraham(t *testing.T) {
	r := Graham(&models.FinancialSnapshot{EPS: 2, BookValuePerShare: 20})
	if !near(r.FairValue, 30, 1e-12) {
		t.Errorf("expected 30, got %f", r.FairValue)
	}
}

func TestGraham_NegativeEPS(t *testing.T) {
	r := Graham(&models.FinancialSnapshot{EPS: -1, BookValuePerShare: 10})
	if r.FairValue != 0 || math.IsNaN(r.FairValue) {
		t.Errorf("expected 0, got %f", r.FairValue)
	}
	if !r.Degenerate {
		t.Error("expected degenerate result")
	}
	if r := Graham(&models.FinancialSnapshot{EPS: 1, BookValuePerShare: -10}); r.FairValue != 0 {
		t.Errorf("expected 0 for negative book value, got %f", r.FairValue)
	}
}

func TestEVA(t *testing.T) {
	s := &models.FinancialSnapshot{EBIT: 1000, InvestedCapital: 5000, TotalDebt: 1500, Cash: 500, SharesOutstanding: 100}
	r := EVA(s, 0.1, 0.05, 0.34)

	ebit := 1000 * 1.05 * 1.05
	eva := ebit*0.66 - 5000*0.1
	want := (5000 + eva/0.1 - 1500 + 500) / 100
	if !near(r.FairValue, want, 1e-9) {
		t.Errorf("expected %f, got %f", want, r.FairValue)
	}
}

func TestEVA_FloorsAtZero(t *testing.T) {
	s := &models.FinancialSnapshot{EBIT: -1000, InvestedCapital: 5000, TotalDebt: 8000, SharesOutstanding: 100}
	if r := EVA(s, 0.1, 0.05, 0.34); r.FairValue != 0 || !r.Degenerate {
		t.Errorf("expected degenerate 0, got %f", r.FairValue)
	}
	if r := EVA(s, 0, 0.05, 0.34); r.FairValue != 0 {
		t.Errorf("expected 0 for zero WACC, got %f", r.FairValue)
	}
}

func TestMultiples(t *testing.T) {
	s := &models.FinancialSnapshot{NetIncome: 100, EBIT: 150, TotalDebt: 200, Cash: 50, SharesOutstanding: 100}
	r := Multiples(s, SectorMultiple{PE: 10, EVEBITDA: 6})
	if !near(r.FairValue, 8.75, 1e-12) {
		t.Errorf("expected 8.75, got %f", r.FairValue)
	}
}

func TestMultiples_FloorsAtZero(t *testing.T) {
	s := &models.FinancialSnapshot{NetIncome: -500, EBIT: -100, TotalDebt: 200, SharesOutstanding: 100}
	if r := Multiples(s, SectorMultiple{PE: 10, EVEBITDA: 6}); r.FairValue != 0 {
		t.Errorf("expected 0, got %f", r.FairValue)
	}
}

func TestSectorTable_Lookup(t *testing.T) {
	table := DefaultSectorMultiples()
	if m, ok := table.Lookup("technology"); !ok || m.PE != 22 {
		t.Errorf("expected case-insensitive Technology row, got %+v (found=%v)", m, ok)
	}
	m, ok := table.Lookup("Shipbuilding")
	if ok {
		t.Error("unknown sector should not be found")
	}
	if m.PE != 10 || m.EVEBITDA != 6 {
		t.Errorf("expected placeholder 10x / 6x, got %+v", m)
	}
}

func TestMethods_NonNegative(t *testing.T) {
	snaps := []*models.FinancialSnapshot{
		sampleSnapshot(),
		{SharesOutstanding: 1_000_000},
		{FreeCashFlow: -5e6, EBIT: -3e6, NetIncome: -4e6, EPS: -4, BookValuePerShare: -2, TotalDebt: 9e7, InvestedCapital: -1e6, SharesOutstanding: 1e6},
		{FreeCashFlow: 1e9, EBIT: 1e9, NetIncome: 1e9, EPS: 1e3, BookValuePerShare: 1e3, SharesOutstanding: 1},
	}
	scenarios := []models.ScenarioAssumptions{
		baseScenario(),
		{RiskFreeRate: 0.02, EquityRiskPremium: 0.01, Beta: 1, PerpetualGrowth: 0.08, RevenueGrowth: -0.3, TaxRate: 0.34},
		{RiskFreeRate: 0, EquityRiskPremium: 0, Beta: 0, PerpetualGrowth: 0, RevenueGrowth: 0, TaxRate: 0},
	}
	engine := NewEngine(nil)
	for i, s := range snaps {
		for j, a := range scenarios {
			cv, err := engine.Evaluate(s, a, equalWeights())
			if err != nil {
				t.Fatalf("snapshot %d scenario %d: unexpected error: %v", i, j, err)
			}
			for _, r := range cv.Methods {
				if r.FairValue < 0 || math.IsNaN(r.FairValue) || math.IsInf(r.FairValue, 0) {
					t.Errorf("snapshot %d scenario %d: %s fair value %f", i, j, r.Method, r.FairValue)
				}
			}
			for _, row := range cv.Sensitivity {
				for _, c := range row {
					if c.FairValue < 0 || math.IsNaN(c.FairValue) || math.IsInf(c.FairValue, 0) {
						t.Errorf("snapshot %d scenario %d: grid cell %+v", i, j, c)
					}
				}
			}
		}
	}
}

// =============================================================================
// AGGREGATION
// =============================================================================

func fixedResults(values ...float64) []models.ValuationResult {
	out := make([]models.ValuationResult, len(values))
	for i, v := range values {
		out[i] = models.ValuationResult{Method: models.Methods[i], FairValue: v, Degenerate: v == 0}
	}
	return out
}

func TestAggregate_WeightedAverage(t *testing.T) {
	w := models.WeightingProfile{DCF: 2, Gordon: 1, Graham: 1, EVA: 0, Multiples: 0}
	c, err := Aggregate(50, fixedResults(100, 40, 60, 999, 999), w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !near(c.WeightedFairValue, 75, 1e-12) {
		t.Errorf("expected 75, got %f", c.WeightedFairValue)
	}
	if !near(c.TotalUpside, 0.5, 1e-12) {
		t.Errorf("expected upside 0.5, got %f", c.TotalUpside)
	}
	if c.Methods[0].Weight != 0.5 || c.Methods[3].Weight != 0 {
		t.Errorf("unexpected normalized weights: %f, %f", c.Methods[0].Weight, c.Methods[3].Weight)
	}
	if !near(c.Methods[1].Upside, -0.2, 1e-12) {
		t.Errorf("expected Gordon upside -0.2, got %f", c.Methods[1].Upside)
	}
}

func TestAggregate_WeightScalingInvariance(t *testing.T) {
	results := fixedResults(120, 0, 45, 80, 66)
	w := models.WeightingProfile{DCF: 0.35, Gordon: 0.05, Graham: 0.10, EVA: 0.25, Multiples: 0.25}
	base, err := Aggregate(70, results, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, k := range []float64{2, 0.5, 3.7, 1000} {
		scaled, err := Aggregate(70, results, w.Scale(k))
		if err != nil {
			t.Fatalf("k=%f: unexpected error: %v", k, err)
		}
		if !near(scaled.WeightedFairValue, base.WeightedFairValue, 1e-12) {
			t.Errorf("k=%f: expected %f, got %f", k, base.WeightedFairValue, scaled.WeightedFairValue)
		}
	}
}

func TestAggregate_RangeExcludesZero(t *testing.T) {
	c, err := Aggregate(50, fixedResults(80, 0, 30, 55, 120), equalWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.PriceRange.Min != 30 || c.PriceRange.Max != 120 {
		t.Errorf("expected range [30, 120], got [%f, %f]", c.PriceRange.Min, c.PriceRange.Max)
	}
	// The degenerate method still carries its weight.
	if !near(c.WeightedFairValue, (80+0+30+55+120)/5.0, 1e-12) {
		t.Errorf("expected zero to stay in the average, got %f", c.WeightedFairValue)
	}
}

func TestAggregate_AllZero(t *testing.T) {
	c, err := Aggregate(50, fixedResults(0, 0, 0, 0, 0), equalWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.PriceRange != (models.PriceRange{}) {
		t.Errorf("expected empty range, got %+v", c.PriceRange)
	}
	if c.TotalUpside != -1 {
		t.Errorf("expected upside -1, got %f", c.TotalUpside)
	}
}

func TestAggregate_InvalidWeights(t *testing.T) {
	cases := []models.WeightingProfile{
		{},
		{DCF: 1, Gordon: -0.5},
		{DCF: math.NaN()},
	}
	for _, w := range cases {
		if _, err := Aggregate(50, fixedResults(1, 2, 3, 4, 5), w); !errors.Is(err, ErrInvalidWeights) {
			t.Errorf("%+v: expected ErrInvalidWeights, got %v", w, err)
		}
	}
}

func TestAggregate_NoPrice(t *testing.T) {
	c, err := Aggregate(0, fixedResults(10, 10, 10, 10, 10), equalWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.TotalUpside != 0 || c.Methods[0].Upside != 0 {
		t.Errorf("expected zero upside without a price, got %f", c.TotalUpside)
	}
}

// =============================================================================
// SENSITIVITY
// =============================================================================

func TestSensitivityGrid_CenterEqualsBaseDCF(t *testing.T) {
	s := sampleSnapshot()
	for _, wacc := range []float64{0.1, 0.1234567, 0.15} {
		grid := SensitivityGrid(s, wacc, 0.06, 0.04)
		base := DCF(s, wacc, 0.06, 0.04).FairValue
		if got := Center(grid).FairValue; got != base {
			t.Errorf("wacc %f: expected centre %v, got %v", wacc, base, got)
		}
		if Center(grid).WACC != wacc || Center(grid).Growth != 0.04 {
			t.Errorf("centre cell should carry the base inputs, got %+v", Center(grid))
		}
	}
}

func TestSensitivityGrid_Ordering(t *testing.T) {
	grid := SensitivityGrid(sampleSnapshot(), 0.14, 0.06, 0.04)
	for i := 0; i < models.GridSize; i++ {
		for j := 0; j < models.GridSize; j++ {
			c := grid[i][j]
			if !near(c.WACC, 0.14+float64(i-2)*SensitivityStep, 1e-12) {
				t.Errorf("[%d][%d]: unexpected WACC %f", i, j, c.WACC)
			}
			if !near(c.Growth, 0.04+float64(j-2)*SensitivityStep, 1e-12) {
				t.Errorf("[%d][%d]: unexpected growth %f", i, j, c.Growth)
			}
			if i > 0 && c.FairValue > grid[i-1][j].FairValue {
				t.Errorf("[%d][%d]: fair value should fall as WACC rises", i, j)
			}
			if j > 0 && c.FairValue < grid[i][j-1].FairValue {
				t.Errorf("[%d][%d]: fair value should rise with growth", i, j)
			}
		}
	}
}

func TestSensitivityGrid_DegenerateCells(t *testing.T) {
	s := &models.FinancialSnapshot{FreeCashFlow: 1e6, SharesOutstanding: 1e5}
	grid := SensitivityGrid(s, 0.05, 0.03, 0.05)
	// WACC 0.04 against growth 0.05 has no terminal value.
	if grid[0][2].FairValue != 0 {
		t.Errorf("expected 0 where WACC <= growth, got %f", grid[0][2].FairValue)
	}
}

func TestGenerateRateSeries(t *testing.T) {
	got := GenerateRateSeries(0.1, 0.005)
	want := [models.GridSize]float64{0.09, 0.095, 0.1, 0.105, 0.11}
	for i := range want {
		if !near(got[i], want[i], 1e-12) {
			t.Errorf("index %d: expected %f, got %f", i, want[i], got[i])
		}
	}
	if got[2] != 0.1 {
		t.Errorf("centre must be exactly the base, got %v", got[2])
	}
}

// =============================================================================
// ENGINE
// =============================================================================

func TestEngine_Evaluate(t *testing.T) {
	s := sampleSnapshot()
	cv, err := NewEngine(nil).Evaluate(s, baseScenario(), equalWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cv.Methods) != len(models.Methods) {
		t.Fatalf("expected %d methods, got %d", len(models.Methods), len(cv.Methods))
	}
	for i, m := range models.Methods {
		if cv.Methods[i].Method != m {
			t.Errorf("position %d: expected %s, got %s", i, m, cv.Methods[i].Method)
		}
	}
	dcf, _ := cv.Method(models.MethodDCF)
	if Center(cv.Sensitivity).FairValue != dcf.FairValue {
		t.Errorf("grid centre %f differs from DCF %f", Center(cv.Sensitivity).FairValue, dcf.FairValue)
	}
	if cv.WACC != cv.CostOfCapital.WACC || cv.WACC <= 0 {
		t.Errorf("unexpected WACC %f", cv.WACC)
	}
	if !cv.Usable() {
		t.Errorf("expected usable valuation, got weighted fair value %f", cv.WeightedFairValue)
	}
	if cv.CurrentPrice != 60 || cv.Ticker != "VALE3" {
		t.Errorf("unexpected identity: %s @ %f", cv.Ticker, cv.CurrentPrice)
	}
	if hasFlag(cv.Flags, models.FlagPlaceholderMultiple) {
		t.Error("Mining has sector multiples; no placeholder flag expected")
	}
}

func lossMakingSnapshot() *models.FinancialSnapshot {
	s := sampleSnapshot()
	s.FreeCashFlow = -3000
	s.EBIT = -5000
	s.EBITDA = -3000
	s.NetIncome = -4000
	s.EPS = -4
	return s
}

func TestEngine_UnusableConsensusFlagged(t *testing.T) {
	cv, err := NewEngine(nil).Evaluate(lossMakingSnapshot(), baseScenario(), equalWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cv.Usable() {
		t.Fatalf("expected unusable consensus, got weighted fair value %f", cv.WeightedFairValue)
	}
	if !hasFlag(cv.Flags, models.FlagUnusableConsensus) {
		t.Errorf("expected %s flag, got %v", models.FlagUnusableConsensus, cv.Flags)
	}

	usable, err := NewEngine(nil).Evaluate(sampleSnapshot(), baseScenario(), equalWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hasFlag(usable.Flags, models.FlagUnusableConsensus) {
		t.Error("usable consensus must not be flagged")
	}
}

func TestEngine_Idempotent(t *testing.T) {
	engine := NewEngine(nil)
	first, err := engine.Evaluate(sampleSnapshot(), baseScenario(), equalWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := engine.Evaluate(sampleSnapshot(), baseScenario(), equalWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two runs over identical inputs differ")
	}
}

func TestEngine_FlagsDegenerateAndPlaceholder(t *testing.T) {
	s := sampleSnapshot()
	s.Sector = "Shipbuilding"
	s.EPS = -1
	s.Flags = []models.DataQualityFlag{{Code: models.FlagSyntheticShares}}

	cv, err := NewEngine(nil).Evaluate(s, baseScenario(), equalWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, code := range []models.FlagCode{models.FlagPlaceholderMultiple, models.FlagDegenerateMethod, models.FlagSyntheticShares} {
		if !hasFlag(cv.Flags, code) {
			t.Errorf("expected flag %s", code)
		}
	}
	graham, _ := cv.Method(models.MethodGraham)
	if graham.FairValue != 0 {
		t.Errorf("expected Graham 0 for negative EPS, got %f", graham.FairValue)
	}
	if cv.PriceRange.Min <= 0 {
		t.Errorf("range must exclude degenerate methods, got min %f", cv.PriceRange.Min)
	}
	if len(s.Flags) != 1 {
		t.Error("evaluate must not mutate snapshot flags")
	}
}

func TestEngine_CustomSectors(t *testing.T) {
	s := sampleSnapshot()
	s.Sector = "Shipbuilding"
	engine := NewEngine(SectorTable{"Shipbuilding": {PE: 7, EVEBITDA: 5}})

	cv, err := engine.Evaluate(s, baseScenario(), equalWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hasFlag(cv.Flags, models.FlagPlaceholderMultiple) {
		t.Error("custom sector row should be used")
	}
	if _, ok := engine.Sectors().Lookup("Technology"); !ok {
		t.Error("built-in rows should survive a merge")
	}
}

func TestEngine_InvalidWeights(t *testing.T) {
	_, err := NewEngine(nil).Evaluate(sampleSnapshot(), baseScenario(), models.WeightingProfile{})
	if !errors.Is(err, ErrInvalidWeights) {
		t.Errorf("expected ErrInvalidWeights, got %v", err)
	}
}
