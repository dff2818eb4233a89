package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"consensus_valuation/pkg/core/normalize"
)

// UserAgent identifies this client to market-data APIs.
const UserAgent = "ConsensusValuation/1.0"

// =============================================================================
// HTTP MARKET-DATA CLIENT
// =============================================================================

// HTTPConfig configures an HTTPSource. It is always passed explicitly; the
// source never reads the process environment.
type HTTPConfig struct {
	BaseURL           string        `yaml:"base_url"`
	APIKey            string        `yaml:"-"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Timeout           time.Duration `yaml:"timeout"`
}

// endpoints maps each category to its path under the base URL. The ticker
// is appended as the last path segment.
var endpoints = map[normalize.Category]string{
	normalize.CategoryQuote:     "quote",
	normalize.CategoryIncome:    "income-statement",
	normalize.CategoryBalance:   "balance-sheet",
	normalize.CategoryCashFlow:  "cash-flow",
	normalize.CategoryDividends: "dividends",
}

// HTTPSource fetches row sets from a JSON market-data API, one request per
// category, throttled by a shared token bucket.
type HTTPSource struct {
	cfg        HTTPConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	log        zerolog.Logger
}

// NewHTTPSource creates a source. A non-positive RequestsPerSecond disables
// throttling; a zero Timeout defaults to 30 seconds.
func NewHTTPSource(cfg HTTPConfig, log zerolog.Logger) (*HTTPSource, error) {
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &HTTPSource{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, 1),
		log:        log.With().Str("module", "ingest_http").Logger(),
	}, nil
}

// Fetch implements Source. A 404 on a category yields no rows for it; a 404
// on every category is ErrNotFound.
func (s *HTTPSource) Fetch(ctx context.Context, ticker string) (normalize.RawDataset, error) {
	name := normalize.CanonicalTicker(ticker)
	if name == "" {
		return normalize.RawDataset{}, fmt.Errorf("empty ticker")
	}

	var ds normalize.RawDataset
	found := 0
	for _, c := range categories {
		rows, ok, err := s.fetchCategory(ctx, c, name)
		if err != nil {
			return normalize.RawDataset{}, fmt.Errorf("%s %s: %w", name, c, err)
		}
		if ok {
			found++
		}
		ds = ds.WithRows(c, rows)
	}
	if found == 0 {
		return normalize.RawDataset{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	s.log.Debug().Str("ticker", name).Int("quotes", len(ds.Quotes)).Int("income", len(ds.Income)).
		Int("balance", len(ds.Balance)).Int("cash_flow", len(ds.CashFlow)).Int("dividends", len(ds.Dividends)).
		Msg("Fetched dataset")
	return ds, nil
}

func (s *HTTPSource) fetchCategory(ctx context.Context, c normalize.Category, ticker string) ([]normalize.RawRow, bool, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, false, err
	}

	endpoint := strings.TrimRight(s.cfg.BaseURL, "/") + "/" + endpoints[c] + "/" + url.PathEscape(ticker)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		s.log.Debug().Str("ticker", ticker).Str("category", string(c)).Msg("Category not available")
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read response: %w", err)
	}
	rows, err := decodeRows(string(body))
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse response: %w", err)
	}
	return rows, true, nil
}
