package normalize

import (
	"fmt"
	"math"
	"sort"
	"time"

	"consensus_valuation/pkg/core/calc"
	"consensus_valuation/pkg/models"
)

// DefaultShares is the synthetic share count used when no source resolves
// one, so per-share division stays defined. It is always flagged.
const DefaultShares = 1_000_000

var allCategories = []Category{CategoryQuote, CategoryIncome, CategoryBalance, CategoryCashFlow, CategoryDividends}

// Normalize builds the canonical snapshot of ticker from the raw row sets.
// It fails with a *MissingDataError when any required category has no rows
// for the ticker. The result depends only on the rows and their order.
func Normalize(ds RawDataset, ticker string) (*models.FinancialSnapshot, error) {
	canonical := CanonicalTicker(ticker)
	if canonical == "" {
		return nil, fmt.Errorf("normalize: empty ticker")
	}

	var flags []models.DataQualityFlag
	selected := make(map[Category][]rowIndex, len(allCategories))
	var missing []Category

	for _, c := range allCategories {
		rows, kind := selectRows(ds.Rows(c), canonical)
		selected[c] = rows
		if kind == matchPrefix {
			flags = append(flags, models.DataQualityFlag{
				Code:    models.FlagPrefixTickerMatch,
				Field:   string(c),
				Message: fmt.Sprintf("%s rows matched by share-class prefix %s", c, SharePrefix(canonical)),
			})
		}
		if len(rows) == 0 && c != CategoryDividends {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingDataError{Ticker: canonical, Categories: missing}
	}

	quote := selected[CategoryQuote][0]
	income, ok := latestPeriod(selected[CategoryIncome])
	if !ok {
		flags = append(flags, noYearly(CategoryIncome, income))
	}
	balance, ok := latestPeriod(selected[CategoryBalance])
	if !ok {
		flags = append(flags, noYearly(CategoryBalance, balance))
	}
	cashFlow, ok := latestPeriod(selected[CategoryCashFlow])
	if !ok {
		flags = append(flags, noYearly(CategoryCashFlow, cashFlow))
	}

	s := &models.FinancialSnapshot{
		Ticker:      canonical,
		Sector:      quote.str(FieldSector),
		Currency:    quote.str(FieldCurrency),
		Beta:        quote.float(FieldBeta),
		BasePeriod:  income.label,
		BaseEndDate: income.end,
		BaseCadence: income.cadence,
	}
	if s.Currency == "" {
		s.Currency = "USD"
		if IsB3Symbol(ticker) {
			s.Currency = "BRL"
		}
	}

	// Income statement
	is := income.row
	s.Revenue = is.float(FieldRevenue)
	s.NetIncome = is.float(FieldNetIncome)
	s.InterestExpense = math.Abs(is.float(FieldInterestExpense))
	pretax := is.float(FieldPretaxIncome)
	if v, ok := is.lookup(FieldEBIT); ok {
		s.EBIT = ToFloat(v)
	} else if _, ok := is.lookup(FieldPretaxIncome); ok {
		s.EBIT = pretax + s.InterestExpense
	}
	if pretax > 0 {
		s.EffectiveTaxRate = clamp01(math.Abs(is.float(FieldTaxExpense)) / pretax)
	}

	// Balance sheet
	bs := balance.row
	s.Equity = bs.float(FieldEquity)
	if v, ok := bs.lookup(FieldTotalDebt); ok {
		s.TotalDebt = ToFloat(v)
	} else {
		s.TotalDebt = bs.float(FieldShortTermDebt) + bs.float(FieldLongTermDebt)
	}
	s.Cash = bs.float(FieldCash)
	s.NetDebt = s.TotalDebt - s.Cash
	s.InvestedCapital = s.Equity + s.NetDebt

	// Cash flow
	cf := cashFlow.row
	s.OperatingCashFlow = cf.float(FieldOperatingCashFlow)
	s.Capex = -math.Abs(cf.float(FieldCapex))
	s.FreeCashFlow = s.OperatingCashFlow + s.Capex
	s.Depreciation = math.Abs(cf.float(FieldDepreciation))
	if s.Depreciation == 0 {
		s.Depreciation = math.Abs(is.float(FieldDepreciation))
	}
	s.EBITDA = s.EBIT + s.Depreciation

	// Market data and per-share figures
	s.Price = quote.float(FieldPrice)
	s.MarketCap = quote.float(FieldMarketCap)
	before := len(flags)
	s.SharesOutstanding, flags = resolveShares(s, quote, bs, flags)
	syntheticShares := len(flags) > before
	// A price implied by a synthetic share count would be invented.
	if s.Price <= 0 && s.MarketCap > 0 && !syntheticShares {
		s.Price = s.MarketCap / s.SharesOutstanding
	}
	if s.Price <= 0 {
		flags = append(flags, models.DataQualityFlag{
			Code:    models.FlagMissingPrice,
			Field:   string(FieldPrice),
			Message: "no traded price in quote data; upside figures are undefined",
		})
	}
	if s.MarketCap <= 0 {
		s.MarketCap = s.Price * s.SharesOutstanding
	}

	s.EPS = quote.float(FieldQuoteEPS)
	if s.EPS == 0 {
		s.EPS = is.float(FieldStatementEPS)
	}
	if s.EPS == 0 {
		s.EPS = calc.SafeDivide(s.NetIncome, s.SharesOutstanding)
	}
	s.BookValuePerShare = calc.SafeDivide(s.Equity, s.SharesOutstanding)

	s.Indicators = deriveIndicators(s, quote)
	s.Dividends = summarizeDividends(selected[CategoryDividends], s.Price, s.EPS)
	s.Flags = flags
	return s, nil
}

// resolveShares walks quote, balance sheet and market cap / price before
// falling back to DefaultShares.
func resolveShares(s *models.FinancialSnapshot, quote, bs rowIndex, flags []models.DataQualityFlag) (float64, []models.DataQualityFlag) {
	if n := quote.float(FieldShares); n > 0 {
		return n, flags
	}
	if n := bs.float(FieldBalanceShares); n > 0 {
		return n, flags
	}
	if s.MarketCap > 0 && s.Price > 0 {
		return s.MarketCap / s.Price, flags
	}
	return DefaultShares, append(flags, models.DataQualityFlag{
		Code:    models.FlagSyntheticShares,
		Field:   string(FieldShares),
		Message: fmt.Sprintf("shares outstanding undeterminable; using synthetic %d", DefaultShares),
	})
}

func noYearly(c Category, p period) models.DataQualityFlag {
	return models.DataQualityFlag{
		Code:    models.FlagNoYearlyPeriod,
		Field:   string(c),
		Message: fmt.Sprintf("no yearly %s row; using most recent period %q", c, p.label),
	}
}

// summarizeDividends sums per-share payments within one year of the latest
// payment. Non-positive amounts are ignored.
func summarizeDividends(rows []rowIndex, price, eps float64) models.DividendSummary {
	type payment struct {
		amount float64
		date   time.Time
	}
	var payments []payment
	for _, r := range rows {
		amt := r.float(FieldDividendAmount)
		if amt <= 0 {
			continue
		}
		var d time.Time
		if v, ok := r.lookup(FieldDividendDate); ok {
			d, _ = ParseDate(v)
		}
		payments = append(payments, payment{amount: amt, date: d})
	}
	if len(payments) == 0 {
		return models.DividendSummary{}
	}
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].date.After(payments[j].date)
	})

	last := payments[0].date
	cutoff := last.AddDate(-1, 0, 0)
	var trailing float64
	for _, p := range payments {
		if last.IsZero() || p.date.After(cutoff) {
			trailing += p.amount
		}
	}
	return models.DividendSummary{
		Events:           len(payments),
		LastPaymentDate:  last,
		TrailingPerShare: trailing,
		Yield:            calc.SafeDivide(trailing, price),
		Payout:           calc.SafeDivide(trailing, eps),
	}
}

func clamp01(v float64) float64 {
	v = calc.Finite(v)
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
