package normalize

import "sort"

// Field is a canonical snapshot input resolved from raw rows.
type Field string

const (
	// identity & period (all categories)
	FieldSymbol     Field = "symbol"
	FieldPeriodType Field = "period_type"
	FieldPeriod     Field = "period"
	FieldEndDate    Field = "end_date"

	// quote / indicators
	FieldPrice        Field = "price"
	FieldShares       Field = "shares"
	FieldMarketCap    Field = "market_cap"
	FieldBeta         Field = "beta"
	FieldQuoteEPS     Field = "quote_eps"
	FieldPE           Field = "pe"
	FieldPB           Field = "pb"
	FieldROE          Field = "roe"
	FieldROIC         Field = "roic"
	FieldNetMargin    Field = "net_margin"
	FieldEBITDAMargin Field = "ebitda_margin"
	FieldEVEBITDA     Field = "ev_ebitda"
	FieldEVEBIT       Field = "ev_ebit"
	FieldDebtEBITDA   Field = "debt_ebitda"
	FieldSector       Field = "sector"
	FieldCurrency     Field = "currency"

	// income statement
	FieldRevenue         Field = "revenue"
	FieldNetIncome       Field = "net_income"
	FieldEBIT            Field = "ebit"
	FieldPretaxIncome    Field = "pretax_income"
	FieldInterestExpense Field = "interest_expense"
	FieldTaxExpense      Field = "tax_expense"
	FieldStatementEPS    Field = "statement_eps"

	// balance sheet
	FieldEquity        Field = "equity"
	FieldTotalDebt     Field = "total_debt"
	FieldShortTermDebt Field = "short_term_debt"
	FieldLongTermDebt  Field = "long_term_debt"
	FieldCash          Field = "cash"
	FieldBalanceShares Field = "balance_shares"

	// cash flow
	FieldOperatingCashFlow Field = "operating_cash_flow"
	FieldCapex             Field = "capex"
	FieldDepreciation      Field = "depreciation"

	// dividends
	FieldDividendAmount Field = "dividend_amount"
	FieldDividendDate   Field = "dividend_date"
)

// fieldAliases lists, per field, the acceptable source column names in
// priority order. Keys are lower case; rows are matched case-insensitively.
// Supporting a new data-source schema means adding aliases here.
var fieldAliases = map[Field][]string{
	FieldSymbol:     {"symbol", "ticker", "code", "papel", "stock"},
	FieldPeriodType: {"type", "period_type", "periodtype", "frequency", "report_type"},
	FieldPeriod:     {"period", "fiscal_period", "fiscalperiod", "label", "fiscal_year", "fiscalyear"},
	FieldEndDate:    {"end_date", "enddate", "period_end", "periodend", "fiscal_date_ending", "fiscaldateending", "report_date", "date"},

	FieldPrice:        {"regularmarketprice", "regular_market_price", "price", "last_price", "lastprice", "current_price", "close", "cotacao"},
	FieldShares:       {"sharesoutstanding", "shares_outstanding", "shares", "number_of_shares", "numberofshares"},
	FieldMarketCap:    {"marketcap", "market_cap", "market_value", "valor_de_mercado"},
	FieldBeta:         {"beta"},
	FieldQuoteEPS:     {"eps", "trailingeps", "trailing_eps", "lpa"},
	FieldPE:           {"pe", "p_e", "pe_ratio", "trailingpe", "price_earnings", "p_l"},
	FieldPB:           {"pb", "p_b", "pb_ratio", "pricetobook", "price_to_book", "p_vp"},
	FieldROE:          {"roe", "return_on_equity", "returnonequity"},
	FieldROIC:         {"roic", "return_on_invested_capital"},
	FieldNetMargin:    {"net_margin", "netmargin", "profitmargins", "profit_margin", "margem_liquida"},
	FieldEBITDAMargin: {"ebitda_margin", "ebitdamargin", "ebitdamargins", "margem_ebitda"},
	FieldEVEBITDA:     {"ev_ebitda", "evebitda", "enterprisetoebitda", "enterprise_to_ebitda"},
	FieldEVEBIT:       {"ev_ebit", "evebit", "enterprisetoebit"},
	FieldDebtEBITDA:   {"debt_ebitda", "debtebitda", "net_debt_ebitda", "netdebtebitda", "div_liq_ebitda"},
	FieldSector:       {"sector", "setor", "industry"},
	FieldCurrency:     {"currency", "moeda"},

	FieldRevenue:         {"total_revenue", "totalrevenue", "revenue", "net_revenue", "netrevenue", "receita_liquida", "sales"},
	FieldNetIncome:       {"net_income", "netincome", "net_income_common", "netincomeapplicabletocommonshares", "lucro_liquido"},
	FieldEBIT:            {"ebit", "operating_income", "operatingincome"},
	FieldPretaxIncome:    {"income_before_tax", "incomebeforetax", "pretax_income", "pretaxincome"},
	FieldInterestExpense: {"interest_expense", "interestexpense", "financial_expenses", "despesas_financeiras"},
	FieldTaxExpense:      {"income_tax_expense", "incometaxexpense", "tax_provision", "taxprovision"},
	FieldStatementEPS:    {"basic_eps", "basiceps", "eps", "diluted_eps", "dilutedeps"},

	FieldEquity:        {"total_stockholder_equity", "totalstockholderequity", "total_equity", "totalequity", "stockholders_equity", "shareholders_equity", "patrimonio_liquido"},
	FieldTotalDebt:     {"total_debt", "totaldebt", "gross_debt", "divida_bruta"},
	FieldShortTermDebt: {"short_term_debt", "shorttermdebt", "short_long_term_debt", "shortlongtermdebt", "current_debt"},
	FieldLongTermDebt:  {"long_term_debt", "longtermdebt"},
	FieldCash:          {"cash_and_equivalents", "cashandequivalents", "cash_and_cash_equivalents", "cashandcashequivalents", "cash"},
	FieldBalanceShares: {"common_stock_shares_outstanding", "commonstocksharesoutstanding", "shares_outstanding", "sharesoutstanding"},

	FieldOperatingCashFlow: {"total_cash_from_operating_activities", "totalcashfromoperatingactivities", "operating_cash_flow", "operatingcashflow", "cash_from_operations"},
	FieldCapex:             {"capital_expenditures", "capitalexpenditures", "capital_expenditure", "capex"},
	FieldDepreciation:      {"depreciation", "depreciation_and_amortization", "depreciationandamortization", "depreciation_amortization"},

	FieldDividendAmount: {"value", "amount", "dividend", "dividends", "rate"},
	FieldDividendDate:   {"payment_date", "paymentdate", "ex_date", "exdate", "date"},
}

// Fields returns every field with an alias list, sorted by name.
func Fields() []Field {
	fields := make([]Field, 0, len(fieldAliases))
	for f := range fieldAliases {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// Aliases returns a copy of the alias list for a field.
func Aliases(f Field) []string {
	return append([]string(nil), fieldAliases[f]...)
}
