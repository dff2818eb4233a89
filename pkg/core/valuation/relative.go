package valuation

import (
	"sort"
	"strings"

	"consensus_valuation/pkg/core/calc"
	"consensus_valuation/pkg/models"
)

// DefaultSector is the table row used when a sector has no entry of its own.
const DefaultSector = "Default"

const multiplesFormula = "FV = avg(NI × P/E / shares, (EBIT × EV/EBITDA - debt + cash) / shares)"

// SectorMultiple is a pair of peer multiples for one sector.
type SectorMultiple struct {
	PE       float64 `json:"pe" yaml:"pe"`
	EVEBITDA float64 `json:"ev_ebitda" yaml:"ev_ebitda"`
}

// SectorTable maps a sector name to its peer multiples. Lookups are
// case-insensitive and fall back to the DefaultSector row.
type SectorTable map[string]SectorMultiple

// DefaultSectorMultiples returns the built-in placeholder multiples.
func DefaultSectorMultiples() SectorTable {
	return SectorTable{
		"Technology":             {PE: 22.0, EVEBITDA: 14.0},
		"Healthcare":             {PE: 18.0, EVEBITDA: 12.0},
		"Financial Services":     {PE: 10.0, EVEBITDA: 8.0},
		"Consumer Cyclical":      {PE: 16.0, EVEBITDA: 9.0},
		"Consumer Defensive":     {PE: 20.0, EVEBITDA: 11.0},
		"Energy":                 {PE: 8.0, EVEBITDA: 4.5},
		"Industrials":            {PE: 13.0, EVEBITDA: 8.0},
		"Materials":              {PE: 9.0, EVEBITDA: 5.0},
		"Mining":                 {PE: 8.0, EVEBITDA: 4.5},
		"Real Estate":            {PE: 14.0, EVEBITDA: 10.0},
		"Utilities":              {PE: 12.0, EVEBITDA: 7.0},
		"Communication Services": {PE: 18.0, EVEBITDA: 7.5},
		DefaultSector:            {PE: 10.0, EVEBITDA: 6.0},
	}
}

// Lookup returns the multiples for a sector. found is false when the
// DefaultSector row (or nothing) was used instead.
func (t SectorTable) Lookup(sector string) (m SectorMultiple, found bool) {
	sector = strings.TrimSpace(sector)
	if sector != "" && !strings.EqualFold(sector, DefaultSector) {
		if m, ok := t[sector]; ok {
			return m, true
		}
		for _, k := range t.Sectors() {
			if strings.EqualFold(k, sector) {
				return t[k], true
			}
		}
	}
	return t[DefaultSector], false
}

// Sectors lists the table keys in sorted order.
func (t SectorTable) Sectors() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge returns a copy of t with every row of other applied on top.
func (t SectorTable) Merge(other SectorTable) SectorTable {
	out := make(SectorTable, len(t)+len(other))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Multiples prices the snapshot against sector multiples as the average of a
// P/E estimate and an EV/EBITDA estimate. The EV/EBITDA multiple is applied
// to EBIT, which keeps the estimate conservative.
func Multiples(s *models.FinancialSnapshot, m SectorMultiple) models.ValuationResult {
	byEarnings := calc.SafeDivide(s.NetIncome*m.PE, s.SharesOutstanding)
	byEnterprise := calc.SafeDivide(s.EBIT*m.EVEBITDA-s.TotalDebt+s.Cash, s.SharesOutstanding)

	return result(models.MethodMultiples, (byEarnings+byEnterprise)/2, multiplesFormula, "",
		in("net_income", s.NetIncome),
		in("ebit", s.EBIT),
		in("sector_pe", m.PE),
		in("sector_ev_ebitda", m.EVEBITDA),
		in("debt", s.TotalDebt),
		in("cash", s.Cash),
		in("shares", s.SharesOutstanding),
		in("pe_estimate", byEarnings),
		in("ev_estimate", byEnterprise),
	)
}
