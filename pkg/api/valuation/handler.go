package valuation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"consensus_valuation/pkg/core/assumption"
	"consensus_valuation/pkg/core/ingest"
	"consensus_valuation/pkg/core/normalize"
	"consensus_valuation/pkg/core/pipeline"
	"consensus_valuation/pkg/core/report"
	"consensus_valuation/pkg/core/valuation"
	"consensus_valuation/pkg/models"
)

// MaxBatchSize caps the tickers accepted by one batch request.
const MaxBatchSize = 100

// Valuer runs valuations. *pipeline.Orchestrator implements it.
type Valuer interface {
	Run(ctx context.Context, req pipeline.Request) (*models.ComprehensiveValuation, error)
	RunBatch(ctx context.Context, req pipeline.BatchRequest) (*pipeline.BatchReport, error)
}

// Handler serves the valuation endpoints.
type Handler struct {
	valuer  Valuer
	timeout time.Duration
	workers int
	log     zerolog.Logger
}

// NewHandler creates a handler. Every request is bounded by timeout, and a
// batch never runs more than workers valuations at once.
func NewHandler(valuer Valuer, timeout time.Duration, workers int, log zerolog.Logger) *Handler {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	if workers <= 0 {
		workers = pipeline.DefaultWorkers
	}
	return &Handler{
		valuer:  valuer,
		timeout: timeout,
		workers: workers,
		log:     log.With().Str("module", "api_valuation").Logger(),
	}
}

type ValuationRequest struct {
	Ticker    string               `json:"ticker"`
	Scenario  string               `json:"scenario"`
	Profile   string               `json:"profile"`
	Overrides assumption.Overrides `json:"overrides"`
	Format    string               `json:"format"` // json (default), markdown, html
}

type ValuationResponse struct {
	Valuation *models.ComprehensiveValuation `json:"valuation"`
	Usable    bool                           `json:"usable"`
	Markdown  string                         `json:"markdown,omitempty"`
	HTML      string                         `json:"html,omitempty"`
}

type BatchRequest struct {
	Tickers   []string             `json:"tickers"`
	Scenario  string               `json:"scenario"`
	Profile   string               `json:"profile"`
	Overrides assumption.Overrides `json:"overrides"`
	Workers   int                  `json:"workers"` // capped by the server's worker limit
}

// BatchResponse is the batch report plus the tickers whose consensus is
// unusable.
type BatchResponse struct {
	*pipeline.BatchReport
	UnusableTickers []string `json:"unusable,omitempty"`
}

type ErrorResponse struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing,omitempty"`
}

func cors(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return true
	}
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
		return true
	}
	return false
}

// HandleValuationReport serves POST /api/valuation/report.
func (h *Handler) HandleValuationReport(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}

	var req ValuationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Ticker) == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "ticker is required"})
		return
	}
	format := strings.ToLower(req.Format)
	if format != "" && format != "json" && format != "markdown" && format != "html" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "format must be json, markdown or html"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.log.Info().Str("ticker", req.Ticker).Str("scenario", req.Scenario).Str("profile", req.Profile).Msg("Valuation requested")
	result, err := h.valuer.Run(ctx, pipeline.Request{
		Ticker:    req.Ticker,
		Scenario:  req.Scenario,
		Profile:   req.Profile,
		Overrides: req.Overrides,
	})
	if err != nil {
		h.writeError(w, req.Ticker, err)
		return
	}

	resp := ValuationResponse{Valuation: result, Usable: result.Usable()}
	switch format {
	case "markdown":
		resp.Markdown = report.Markdown(result)
	case "html":
		html, err := report.HTML(result)
		if err != nil {
			h.writeError(w, req.Ticker, err)
			return
		}
		resp.HTML = html
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleBatch serves POST /api/valuation/batch.
func (h *Handler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}

	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if len(req.Tickers) == 0 || len(req.Tickers) > MaxBatchSize {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("tickers must hold between 1 and %d symbols", MaxBatchSize)})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	workers := req.Workers
	if workers <= 0 || workers > h.workers {
		workers = h.workers
	}

	rep, err := h.valuer.RunBatch(ctx, pipeline.BatchRequest{
		Tickers:   req.Tickers,
		Scenario:  req.Scenario,
		Profile:   req.Profile,
		Overrides: req.Overrides,
		Workers:   workers,
	})
	if err != nil {
		h.writeError(w, "", err)
		return
	}
	resp := BatchResponse{BatchReport: rep}
	for _, v := range rep.Results {
		if !v.Usable() {
			resp.UnusableTickers = append(resp.UnusableTickers, v.Ticker)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeError maps pipeline errors to HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, ticker string, err error) {
	var missing *normalize.MissingDataError
	switch {
	case errors.As(err, &missing):
		resp := ErrorResponse{Error: err.Error()}
		for _, c := range missing.Categories {
			resp.Missing = append(resp.Missing, string(c))
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	case errors.Is(err, ingest.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, assumption.ErrUnknownScenario),
		errors.Is(err, assumption.ErrUnknownProfile),
		errors.Is(err, assumption.ErrInvalidScenario),
		errors.Is(err, valuation.ErrInvalidWeights):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusGatewayTimeout, ErrorResponse{Error: err.Error()})
	default:
		h.log.Error().Err(err).Str("ticker", ticker).Msg("Valuation failed")
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
