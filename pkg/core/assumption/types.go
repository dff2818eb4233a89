// Package assumption holds the named scenario presets and weighting profiles
// a valuation run is configured with, and loads custom catalogues from YAML.
package assumption

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"consensus_valuation/pkg/core/valuation"
	"consensus_valuation/pkg/models"
)

var (
	ErrUnknownScenario = errors.New("unknown scenario")
	ErrUnknownProfile  = errors.New("unknown weighting profile")
	ErrInvalidScenario = errors.New("invalid scenario")
)

// Scenario presets
const (
	ScenarioBase = "BASE"
	ScenarioBull = "BULL"
	ScenarioBear = "BEAR"
)

// Weighting profiles, named by investor archetype
const (
	ProfileGrowth   = "GROWTH"
	ProfileMature   = "MATURE"
	ProfileDistress = "DISTRESS"
	ProfileBalanced = "BALANCED"
)

// =============================================================================
// BUILT-IN PRESETS
// =============================================================================

// BuiltinScenarios returns the shipped macro scenarios (Brazilian market:
// SELIC-anchored risk-free rate, 34% IRPJ + CSLL).
func BuiltinScenarios() []models.ScenarioAssumptions {
	return []models.ScenarioAssumptions{
		{Name: ScenarioBase, RiskFreeRate: 0.105, EquityRiskPremium: 0.055, Beta: 1.0, CostOfDebt: 0.16, PerpetualGrowth: 0.04, RevenueGrowth: 0.06, TaxRate: 0.34},
		{Name: ScenarioBull, RiskFreeRate: 0.095, EquityRiskPremium: 0.050, Beta: 0.9, CostOfDebt: 0.14, PerpetualGrowth: 0.05, RevenueGrowth: 0.10, TaxRate: 0.34},
		{Name: ScenarioBear, RiskFreeRate: 0.120, EquityRiskPremium: 0.065, Beta: 1.2, CostOfDebt: 0.18, PerpetualGrowth: 0.03, RevenueGrowth: 0.02, TaxRate: 0.34},
	}
}

// BuiltinProfiles returns the shipped weighting profiles.
func BuiltinProfiles() []models.WeightingProfile {
	return []models.WeightingProfile{
		{Name: ProfileGrowth, DCF: 0.35, Gordon: 0.05, Graham: 0.10, EVA: 0.25, Multiples: 0.25},
		{Name: ProfileMature, DCF: 0.25, Gordon: 0.25, Graham: 0.15, EVA: 0.15, Multiples: 0.20},
		{Name: ProfileDistress, DCF: 0.15, Gordon: 0, Graham: 0.35, EVA: 0.20, Multiples: 0.30},
		{Name: ProfileBalanced, DCF: 0.2, Gordon: 0.2, Graham: 0.2, EVA: 0.2, Multiples: 0.2},
	}
}

// =============================================================================
// CATALOGUE
// =============================================================================

// Catalogue is the set of scenarios, profiles and sector multiples
// available to a run. Names are case-insensitive and stored upper case.
type Catalogue struct {
	DefaultScenario string
	DefaultProfile  string

	scenarios map[string]models.ScenarioAssumptions
	profiles  map[string]models.WeightingProfile
	sectors   valuation.SectorTable
}

// NewCatalogue returns a catalogue holding the built-in presets.
func NewCatalogue() *Catalogue {
	c := &Catalogue{
		DefaultScenario: ScenarioBase,
		DefaultProfile:  ProfileBalanced,
		scenarios:       make(map[string]models.ScenarioAssumptions),
		profiles:        make(map[string]models.WeightingProfile),
		sectors:         valuation.DefaultSectorMultiples(),
	}
	for _, s := range BuiltinScenarios() {
		c.scenarios[key(s.Name)] = s
	}
	for _, p := range BuiltinProfiles() {
		c.profiles[key(p.Name)] = p
	}
	return c
}

func key(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Scenario returns a scenario by name; "" selects the default.
func (c *Catalogue) Scenario(name string) (models.ScenarioAssumptions, error) {
	if strings.TrimSpace(name) == "" {
		name = c.DefaultScenario
	}
	s, ok := c.scenarios[key(name)]
	if !ok {
		return models.ScenarioAssumptions{}, fmt.Errorf("%w: %q", ErrUnknownScenario, name)
	}
	return s, nil
}

// Profile returns a weighting profile by name; "" selects the default.
func (c *Catalogue) Profile(name string) (models.WeightingProfile, error) {
	if strings.TrimSpace(name) == "" {
		name = c.DefaultProfile
	}
	p, ok := c.profiles[key(name)]
	if !ok {
		return models.WeightingProfile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return p, nil
}

// PutScenario adds or replaces a scenario after validating it.
func (c *Catalogue) PutScenario(s models.ScenarioAssumptions) error {
	if key(s.Name) == "" {
		return fmt.Errorf("scenario name cannot be empty")
	}
	if err := ValidateScenario(s); err != nil {
		return err
	}
	s.Name = key(s.Name)
	c.scenarios[s.Name] = s
	return nil
}

// PutProfile adds or replaces a weighting profile after validating it.
func (c *Catalogue) PutProfile(p models.WeightingProfile) error {
	if key(p.Name) == "" {
		return fmt.Errorf("profile name cannot be empty")
	}
	if err := valuation.ValidateWeights(p); err != nil {
		return err
	}
	p.Name = key(p.Name)
	c.profiles[p.Name] = p
	return nil
}

// Sectors returns the sector multiple table.
func (c *Catalogue) Sectors() valuation.SectorTable {
	return valuation.SectorTable{}.Merge(c.sectors)
}

// ScenarioNames lists scenario names in sorted order.
func (c *Catalogue) ScenarioNames() []string {
	return sortedKeys(c.scenarios)
}

// ProfileNames lists profile names in sorted order.
func (c *Catalogue) ProfileNames() []string {
	return sortedKeys(c.profiles)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

var builtin = NewCatalogue()

// Scenario looks a name up among the built-in scenarios.
func Scenario(name string) (models.ScenarioAssumptions, error) {
	return builtin.Scenario(name)
}

// Profile looks a name up among the built-in weighting profiles.
func Profile(name string) (models.WeightingProfile, error) {
	return builtin.Profile(name)
}
