package config

import (
	"encoding/json"
	"net/http"

	"consensus_valuation/pkg/core/assumption"
	"consensus_valuation/pkg/core/valuation"
	"consensus_valuation/pkg/models"
)

type Response struct {
	DefaultScenario string                       `json:"default_scenario"`
	DefaultProfile  string                       `json:"default_profile"`
	Scenarios       []models.ScenarioAssumptions `json:"scenarios"`
	Profiles        []models.WeightingProfile    `json:"profiles"`
	Sectors         valuation.SectorTable        `json:"sectors"`
	Methods         []models.MethodID            `json:"methods"`
}

// Handler holds dependencies for config endpoints
type Handler struct {
	Catalogue *assumption.Catalogue
}

// NewHandler creates a new config handler
func NewHandler(catalogue *assumption.Catalogue) *Handler {
	return &Handler{
		Catalogue: catalogue,
	}
}

// HandleConfig serves GET /api/config: every scenario preset, weighting
// profile and sector multiple a valuation request may reference.
func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	// Add CORS headers for local dev
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method != http.MethodGet && r.Method != http.MethodOptions {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	c := h.Catalogue
	resp := Response{
		DefaultScenario: c.DefaultScenario,
		DefaultProfile:  c.DefaultProfile,
		Sectors:         c.Sectors(),
		Methods:         models.Methods,
	}
	for _, name := range c.ScenarioNames() {
		s, _ := c.Scenario(name)
		resp.Scenarios = append(resp.Scenarios, s)
	}
	for _, name := range c.ProfileNames() {
		p, _ := c.Profile(name)
		resp.Profiles = append(resp.Profiles, p)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
