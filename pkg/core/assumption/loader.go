package assumption

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"consensus_valuation/pkg/core/valuation"
	"consensus_valuation/pkg/models"
)

// File is the YAML layout of a custom catalogue.
type File struct {
	DefaultScenario string                       `yaml:"default_scenario"`
	DefaultProfile  string                       `yaml:"default_profile"`
	Scenarios       []models.ScenarioAssumptions `yaml:"scenarios"`
	Profiles        []models.WeightingProfile    `yaml:"profiles"`
	Sectors         valuation.SectorTable        `yaml:"sectors"`
}

// LoadFile reads a YAML catalogue and layers it on top of the built-ins.
func LoadFile(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read assumptions file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML catalogue and layers it on top of the built-ins.
func Parse(data []byte) (*Catalogue, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse assumptions: %w", err)
	}

	c := NewCatalogue()
	for _, s := range f.Scenarios {
		if err := c.PutScenario(s); err != nil {
			return nil, err
		}
	}
	for _, p := range f.Profiles {
		if err := c.PutProfile(p); err != nil {
			return nil, err
		}
	}
	for name, m := range f.Sectors {
		if m.PE < 0 || m.EVEBITDA < 0 {
			return nil, fmt.Errorf("sector %s: negative multiple", name)
		}
	}
	c.sectors = c.sectors.Merge(f.Sectors)

	if f.DefaultScenario != "" {
		if _, err := c.Scenario(f.DefaultScenario); err != nil {
			return nil, fmt.Errorf("default_scenario: %w", err)
		}
		c.DefaultScenario = key(f.DefaultScenario)
	}
	if f.DefaultProfile != "" {
		if _, err := c.Profile(f.DefaultProfile); err != nil {
			return nil, fmt.Errorf("default_profile: %w", err)
		}
		c.DefaultProfile = key(f.DefaultProfile)
	}
	return c, nil
}
