package assumption

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"consensus_valuation/pkg/core/valuation"
	"consensus_valuation/pkg/models"
)

func TestBuiltinScenarios(t *testing.T) {
	for _, name := range []string{"BASE", "bull", " Bear "} {
		s, err := Scenario(name)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if err := ValidateScenario(s); err != nil {
			t.Errorf("%s: built-in scenario invalid: %v", name, err)
		}
		if s.TaxRate != 0.34 {
			t.Errorf("%s: expected tax rate 0.34, got %f", name, s.TaxRate)
		}
	}
}

func TestScenario_DefaultAndUnknown(t *testing.T) {
	s, err := Scenario("")
	if err != nil || s.Name != ScenarioBase {
		t.Errorf("expected BASE as default, got %q (%v)", s.Name, err)
	}
	if _, err := Scenario("SIDEWAYS"); !errors.Is(err, ErrUnknownScenario) {
		t.Errorf("expected ErrUnknownScenario, got %v", err)
	}
}

func TestBuiltinProfiles(t *testing.T) {
	for _, p := range BuiltinProfiles() {
		if err := valuation.ValidateWeights(p); err != nil {
			t.Errorf("%s: %v", p.Name, err)
		}
	}
	d, err := Profile("distress")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Gordon != 0 {
		t.Errorf("expected DISTRESS to exclude Gordon, got %f", d.Gordon)
	}
	if p, _ := Profile(""); p.Name != ProfileBalanced {
		t.Errorf("expected BALANCED default, got %s", p.Name)
	}
	if _, err := Profile("YOLO"); !errors.Is(err, ErrUnknownProfile) {
		t.Errorf("expected ErrUnknownProfile, got %v", err)
	}
}

func TestApplyOverrides(t *testing.T) {
	base, _ := Scenario(ScenarioBase)
	out, err := ApplyOverrides(base, Overrides{RiskFreeRate: Float(0.09), Beta: Float(1.4)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.RiskFreeRate != 0.09 || out.Beta != 1.4 {
		t.Errorf("overrides not applied: %+v", out)
	}
	if out.CostOfDebt != base.CostOfDebt || out.PerpetualGrowth != base.PerpetualGrowth {
		t.Error("unset fields must keep the base value")
	}
	if out.Name != "BASE+CUSTOM" {
		t.Errorf("expected name BASE+CUSTOM, got %s", out.Name)
	}
	if base.RiskFreeRate != 0.105 {
		t.Error("base scenario must not be modified")
	}
}

func TestApplyOverrides_Empty(t *testing.T) {
	base, _ := Scenario(ScenarioBear)
	out, err := ApplyOverrides(base, Overrides{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != base {
		t.Errorf("expected unchanged scenario, got %+v", out)
	}
}

func TestApplyOverrides_Invalid(t *testing.T) {
	base, _ := Scenario(ScenarioBase)
	if _, err := ApplyOverrides(base, Overrides{TaxRate: Float(1.5)}); err == nil {
		t.Fatal("expected error for tax rate 1.5, got nil")
	}
	if _, err := ApplyOverrides(base, Overrides{EquityRiskPremium: Float(-0.01)}); err == nil {
		t.Fatal("expected error for negative ERP, got nil")
	}
}

const catalogueYAML = `
default_scenario: stress
default_profile: dividend
scenarios:
  - name: stress
    risk_free_rate: 0.14
    equity_risk_premium: 0.07
    beta: 1.3
    cost_of_debt: 0.2
    perpetual_growth: 0.02
    revenue_growth: -0.05
    tax_rate: 0.34
profiles:
  - name: dividend
    dcf: 1
    gordon: 3
    graham: 1
    eva: 0
    multiples: 1
sectors:
  Shipbuilding:
    pe: 7
    ev_ebitda: 5
`

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assumptions.yaml")
	if err := os.WriteFile(path, []byte(catalogueYAML), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s, err := c.Scenario("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name != "STRESS" || s.RevenueGrowth != -0.05 {
		t.Errorf("expected STRESS default scenario, got %+v", s)
	}
	p, err := c.Profile("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Gordon != 3 || p.Sum() != 6 {
		t.Errorf("unexpected DIVIDEND profile %+v", p)
	}
	if _, err := c.Scenario(ScenarioBull); err != nil {
		t.Error("built-in scenarios must survive loading")
	}
	if m, ok := c.Sectors().Lookup("shipbuilding"); !ok || m.PE != 7 {
		t.Errorf("expected custom sector row, got %+v", m)
	}

	names := c.ScenarioNames()
	want := []string{"BASE", "BEAR", "BULL", "STRESS"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("expected %v, got %v", want, names)
			break
		}
	}
}

func TestParse_RejectsInvalidEntries(t *testing.T) {
	cases := map[string]string{
		"negative weight": "profiles:\n  - name: bad\n    dcf: -1\n    gordon: 2\n",
		"zero weights":    "profiles:\n  - name: empty\n",
		"bad tax":         "scenarios:\n  - name: t\n    tax_rate: 2\n",
		"unknown default": "default_profile: nope\n",
		"negative sector": "sectors:\n  X:\n    pe: -3\n",
		"malformed":       "scenarios: [",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("%s: expected error, got nil", name)
		}
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestCatalogue_PutScenario(t *testing.T) {
	c := NewCatalogue()
	err := c.PutScenario(models.ScenarioAssumptions{Name: "flat", RiskFreeRate: 0.1, EquityRiskPremium: 0.05, Beta: 1, CostOfDebt: 0.12, TaxRate: 0.34})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Scenario("FLAT"); err != nil {
		t.Errorf("expected FLAT to be registered: %v", err)
	}
	if err := c.PutScenario(models.ScenarioAssumptions{}); err == nil {
		t.Error("expected error for unnamed scenario")
	}
}
