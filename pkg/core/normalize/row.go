// Package normalize turns loosely-typed statement rows from heterogeneous
// data sources into one canonical models.FinancialSnapshot. RawRow never
// leaves this package boundary: everything downstream works on the snapshot.
package normalize

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// RawRow is one untyped record as delivered by a data source. Column names
// and casing vary between sources.
type RawRow map[string]interface{}

// Category identifies one of the raw row sets.
type Category string

const (
	CategoryQuote     Category = "quote"
	CategoryIncome    Category = "income statement"
	CategoryBalance   Category = "balance sheet"
	CategoryCashFlow  Category = "cash flow"
	CategoryDividends Category = "dividends"
)

// RequiredCategories are the row sets a snapshot cannot be built without.
var RequiredCategories = []Category{CategoryQuote, CategoryIncome, CategoryBalance, CategoryCashFlow}

// RawDataset bundles every row set fetched for a security.
type RawDataset struct {
	Quotes    []RawRow `json:"quotes"`
	Income    []RawRow `json:"income"`
	Balance   []RawRow `json:"balance"`
	CashFlow  []RawRow `json:"cash_flow"`
	Dividends []RawRow `json:"dividends,omitempty"`
}

// Rows returns the row set for a category.
func (d RawDataset) Rows(c Category) []RawRow {
	switch c {
	case CategoryQuote:
		return d.Quotes
	case CategoryIncome:
		return d.Income
	case CategoryBalance:
		return d.Balance
	case CategoryCashFlow:
		return d.CashFlow
	case CategoryDividends:
		return d.Dividends
	}
	return nil
}

// WithRows returns a copy of the dataset with one row set replaced.
func (d RawDataset) WithRows(c Category, rows []RawRow) RawDataset {
	switch c {
	case CategoryQuote:
		d.Quotes = rows
	case CategoryIncome:
		d.Income = rows
	case CategoryBalance:
		d.Balance = rows
	case CategoryCashFlow:
		d.CashFlow = rows
	case CategoryDividends:
		d.Dividends = rows
	}
	return d
}

// Empty reports whether no rows at all are present.
func (d RawDataset) Empty() bool {
	return len(d.Quotes)+len(d.Income)+len(d.Balance)+len(d.CashFlow)+len(d.Dividends) == 0
}

// Complete reports whether every category, dividends included, has rows.
func (d RawDataset) Complete() bool {
	return len(d.Quotes) > 0 && len(d.Income) > 0 && len(d.Balance) > 0 && len(d.CashFlow) > 0 && len(d.Dividends) > 0
}

// RequiredComplete reports whether every category in RequiredCategories has
// rows. Dividends are not required.
func (d RawDataset) RequiredComplete() bool {
	for _, c := range RequiredCategories {
		if len(d.Rows(c)) == 0 {
			return false
		}
	}
	return true
}

// rowIndex resolves column names case-insensitively. When a row carries two
// keys differing only by case, the lexically smallest one wins so lookups do
// not depend on map iteration order.
type rowIndex map[string]interface{}

func indexRow(r RawRow) rowIndex {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	idx := make(rowIndex, len(r))
	for _, k := range keys {
		lk := strings.ToLower(strings.TrimSpace(k))
		if _, seen := idx[lk]; !seen {
			idx[lk] = r[k]
		}
	}
	return idx
}

// lookup tries aliases in order and returns the first present, non-null value.
func (idx rowIndex) lookup(f Field) (interface{}, bool) {
	for _, alias := range fieldAliases[f] {
		if v, ok := idx[alias]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (idx rowIndex) float(f Field) float64 {
	v, ok := idx.lookup(f)
	if !ok {
		return 0
	}
	return ToFloat(v)
}

func (idx rowIndex) str(f Field) string {
	v, ok := idx.lookup(f)
	if !ok {
		return ""
	}
	return ToString(v)
}

// ToFloat coerces any raw value to a finite float64. Anything that is not a
// number (or a string holding one) becomes 0.
func ToFloat(v interface{}) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		f = parseNumericString(n)
	case bool:
		return 0
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// parseNumericString accepts plain numbers, thousands separators and a
// trailing percent sign ("12.5%" is returned as 0.125).
func parseNumericString(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0
	}
	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if percent {
		f /= 100
	}
	return f
}

// ToString renders a raw value as a trimmed string.
func ToString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case nil:
		return ""
	}
	return ""
}
