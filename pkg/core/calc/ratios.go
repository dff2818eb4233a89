package calc

// =============================================================================
// MARKET & RETURN RATIOS
// All ratios return 0 on a zero denominator.
// =============================================================================

// PriceEarnings: P/E = Price / EPS
func PriceEarnings(price, eps float64) float64 {
	return SafeDivide(price, eps)
}

// PriceBook: P/B = Price / Book value per share
func PriceBook(price, bookValuePerShare float64) float64 {
	return SafeDivide(price, bookValuePerShare)
}

// ReturnOnEquity: ROE = Net Income / Equity
func ReturnOnEquity(netIncome, equity float64) float64 {
	return SafeDivide(netIncome, equity)
}

// ReturnOnInvestedCapital approximates ROIC with statutory tax.
//
// FORMULA: ROIC = EBIT × (1 - T) / Invested Capital
func ReturnOnInvestedCapital(ebit, taxRate, investedCapital float64) float64 {
	return SafeDivide(ebit*(1-taxRate), investedCapital)
}

// Margin: amount / revenue
func Margin(amount, revenue float64) float64 {
	return SafeDivide(amount, revenue)
}

// EnterpriseValue: EV = Market Cap + Net Debt
func EnterpriseValue(marketCap, netDebt float64) float64 {
	return marketCap + netDebt
}

// Multiple is the generic EV/x or Debt/x guard.
func Multiple(numerator, denominator float64) float64 {
	return SafeDivide(numerator, denominator)
}
