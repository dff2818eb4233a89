package models

import "time"

// Cadence of the statement period a snapshot was built from.
type Cadence string

const (
	CadenceYearly    Cadence = "YEARLY"
	CadenceQuarterly Cadence = "QUARTERLY"
)

// FinancialSnapshot is the canonical, strongly-typed view of one security at one
// point in time. It is built once by the normalizer and never mutated afterwards.
type FinancialSnapshot struct {
	Ticker   string `json:"ticker"`
	Currency string `json:"currency"`
	Sector   string `json:"sector,omitempty"`

	Price             float64 `json:"price"`
	SharesOutstanding float64 `json:"shares_outstanding"`
	MarketCap         float64 `json:"market_cap"`
	Beta              float64 `json:"beta,omitempty"` // quote-supplied, 0 when absent

	// Balance sheet
	Equity            float64 `json:"equity"`
	TotalDebt         float64 `json:"total_debt"` // gross interest-bearing debt
	NetDebt           float64 `json:"net_debt"`
	Cash              float64 `json:"cash"`
	InvestedCapital   float64 `json:"invested_capital"` // equity + net debt
	BookValuePerShare float64 `json:"book_value_per_share"`

	// Cash flow (capex is a negative outflow)
	OperatingCashFlow float64 `json:"operating_cash_flow"`
	Capex             float64 `json:"capex"`
	FreeCashFlow      float64 `json:"free_cash_flow"`

	// Income statement
	Revenue          float64 `json:"revenue"`
	EBIT             float64 `json:"ebit"`
	Depreciation     float64 `json:"depreciation"`
	EBITDA           float64 `json:"ebitda"`
	InterestExpense  float64 `json:"interest_expense"` // magnitude, >= 0
	NetIncome        float64 `json:"net_income"`
	EPS              float64 `json:"eps"`
	EffectiveTaxRate float64 `json:"effective_tax_rate"`

	Indicators Indicators      `json:"indicators"`
	Dividends  DividendSummary `json:"dividends"`

	BasePeriod  string    `json:"base_period"`
	BaseEndDate time.Time `json:"base_end_date"`
	BaseCadence Cadence   `json:"base_cadence"`

	Flags []DataQualityFlag `json:"flags,omitempty"`
}

// Indicators are the market ratios either supplied by the quote source or
// derived from statement data.
type Indicators struct {
	PE           float64 `json:"pe"`
	PB           float64 `json:"pb"`
	ROE          float64 `json:"roe"`
	ROIC         float64 `json:"roic"`
	NetMargin    float64 `json:"net_margin"`
	EBITDAMargin float64 `json:"ebitda_margin"`
	EV           float64 `json:"ev"`
	EVEBITDA     float64 `json:"ev_ebitda"`
	EVEBIT       float64 `json:"ev_ebit"`
	DebtEBITDA   float64 `json:"debt_ebitda"`
}

// DividendSummary condenses the optional dividend history.
type DividendSummary struct {
	Events           int       `json:"events"`
	LastPaymentDate  time.Time `json:"last_payment_date"`
	TrailingPerShare float64   `json:"trailing_per_share"`
	Yield            float64   `json:"yield"`
	Payout           float64   `json:"payout"`
}

// HasFlag reports whether a data-quality flag with the given code was raised.
func (s *FinancialSnapshot) HasFlag(code FlagCode) bool {
	for _, f := range s.Flags {
		if f.Code == code {
			return true
		}
	}
	return false
}
