package report

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Money formats an amount in the currency's own notation, rounded to its
// minor unit ("R$61,20", "$1,234.50"). Unknown currency codes fall back to
// two decimals followed by the code.
func Money(amount float64, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	value := decimal.NewFromFloat(amount)

	cur := money.GetCurrency(code)
	if cur == nil {
		return strings.TrimSpace(value.StringFixed(2) + " " + code)
	}
	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	return money.New(value.Mul(factor).Round(0).IntPart(), code).Display()
}

// Percent formats a fraction with one decimal: 0.1234 -> "12.3%".
func Percent(v float64) string {
	return decimal.NewFromFloat(v).Mul(hundred).StringFixed(1) + "%"
}

// SignedPercent is Percent with an explicit plus sign on gains.
func SignedPercent(v float64) string {
	if v > 0 {
		return "+" + Percent(v)
	}
	return Percent(v)
}

// Number rounds a trace input to at most four decimals without trailing
// zeros.
func Number(v float64) string {
	return decimal.NewFromFloat(v).Round(4).String()
}
