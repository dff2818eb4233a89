package normalize

import (
	"consensus_valuation/pkg/core/calc"
	"consensus_valuation/pkg/models"
)

// deriveIndicators keeps every ratio the quote source supplies and computes
// the missing ones from statement data.
func deriveIndicators(s *models.FinancialSnapshot, quote rowIndex) models.Indicators {
	ev := calc.EnterpriseValue(s.MarketCap, s.NetDebt)
	derived := models.Indicators{
		PE:           calc.PriceEarnings(s.Price, s.EPS),
		PB:           calc.PriceBook(s.Price, s.BookValuePerShare),
		ROE:          calc.ReturnOnEquity(s.NetIncome, s.Equity),
		ROIC:         calc.ReturnOnInvestedCapital(s.EBIT, calc.StatutoryTaxRate, s.InvestedCapital),
		NetMargin:    calc.Margin(s.NetIncome, s.Revenue),
		EBITDAMargin: calc.Margin(s.EBITDA, s.Revenue),
		EV:           ev,
		EVEBITDA:     calc.Multiple(ev, s.EBITDA),
		EVEBIT:       calc.Multiple(ev, s.EBIT),
		DebtEBITDA:   calc.Multiple(s.NetDebt, s.EBITDA),
	}

	return models.Indicators{
		PE:           prefer(quote, FieldPE, derived.PE),
		PB:           prefer(quote, FieldPB, derived.PB),
		ROE:          prefer(quote, FieldROE, derived.ROE),
		ROIC:         prefer(quote, FieldROIC, derived.ROIC),
		NetMargin:    prefer(quote, FieldNetMargin, derived.NetMargin),
		EBITDAMargin: prefer(quote, FieldEBITDAMargin, derived.EBITDAMargin),
		EV:           ev,
		EVEBITDA:     prefer(quote, FieldEVEBITDA, derived.EVEBITDA),
		EVEBIT:       prefer(quote, FieldEVEBIT, derived.EVEBIT),
		DebtEBITDA:   prefer(quote, FieldDebtEBITDA, derived.DebtEBITDA),
	}
}

// prefer returns the quote-supplied value when it is present and non-zero.
func prefer(quote rowIndex, f Field, fallback float64) float64 {
	if v := quote.float(f); v != 0 {
		return v
	}
	return fallback
}
