package normalize

import (
	"regexp"
	"strings"
)

// ExchangeSuffix is the B3 suffix some sources append to symbols.
const ExchangeSuffix = ".SA"

// shareClass matches the trailing share-class designator of a B3 symbol:
// digits optionally followed by the fractional-market "F" (PETR4, TAEE11, PETR4F).
var shareClass = regexp.MustCompile(`\d+[A-Z]?$`)

// b3Symbol matches a bare B3 equity symbol.
var b3Symbol = regexp.MustCompile(`^[A-Z]{4}\d{1,2}F?$`)

// CanonicalTicker upper-cases the ticker and strips the exchange suffix.
func CanonicalTicker(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	return strings.TrimSuffix(t, ExchangeSuffix)
}

// Candidates lists the symbol variants a row may be keyed by.
func Candidates(ticker string) []string {
	base := CanonicalTicker(ticker)
	if base == "" {
		return nil
	}
	return []string{
		base,
		base + ExchangeSuffix,
		strings.ToLower(base),
		strings.ToLower(base + ExchangeSuffix),
	}
}

// SharePrefix strips the share-class designator: PETR4 -> PETR. It returns
// "" when nothing would be stripped or nothing would remain.
func SharePrefix(ticker string) string {
	base := CanonicalTicker(ticker)
	prefix := shareClass.ReplaceAllString(base, "")
	if prefix == base || prefix == "" {
		return ""
	}
	return prefix
}

// IsB3Symbol reports whether the ticker looks like a Brazilian equity symbol.
func IsB3Symbol(ticker string) bool {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if strings.HasSuffix(t, ExchangeSuffix) {
		return true
	}
	return b3Symbol.MatchString(t)
}

type matchKind int

const (
	matchNone matchKind = iota
	matchExact
	matchPrefix
)

// selectRows filters rows belonging to ticker. Exact case-insensitive symbol
// matches win; only when there are none does the share-class prefix fallback
// apply. Rows carrying no symbol at all are assumed to have been fetched for
// the requested ticker and are always kept.
func selectRows(rows []RawRow, ticker string) ([]rowIndex, matchKind) {
	candidates := Candidates(ticker)
	var exact, unkeyed []rowIndex
	indexed := make([]rowIndex, len(rows))
	for i, r := range rows {
		idx := indexRow(r)
		indexed[i] = idx
		sym := idx.str(FieldSymbol)
		if sym == "" {
			unkeyed = append(unkeyed, idx)
			continue
		}
		for _, c := range candidates {
			if strings.EqualFold(sym, c) {
				exact = append(exact, idx)
				break
			}
		}
	}
	if len(exact) > 0 {
		return append(exact, unkeyed...), matchExact
	}

	prefix := SharePrefix(ticker)
	var byPrefix []rowIndex
	if prefix != "" {
		for _, idx := range indexed {
			sym := CanonicalTicker(idx.str(FieldSymbol))
			if sym != "" && strings.HasPrefix(sym, prefix) {
				byPrefix = append(byPrefix, idx)
			}
		}
	}
	if len(byPrefix) > 0 {
		return append(byPrefix, unkeyed...), matchPrefix
	}
	if len(unkeyed) > 0 {
		return unkeyed, matchExact
	}
	return nil, matchNone
}
