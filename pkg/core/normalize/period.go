package normalize

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"consensus_valuation/pkg/models"
)

var (
	yearLabel   = regexp.MustCompile(`^\d{4}$`)
	fyYearLabel = regexp.MustCompile(`^FY\s*'?(\d{4}|\d{2})`)
)

var yearlyTypes = map[string]bool{
	"yearly":   true,
	"annual":   true,
	"annually": true,
	"year":     true,
	"anual":    true,
	"12m":      true,
	"fy":       true,
	"a":        true,
}

// IsYearly classifies a statement row: yearly when its type field says so, or
// when its period label is a 4-digit year or starts with "FY".
func IsYearly(r RawRow) bool {
	return indexRow(r).yearly()
}

func (idx rowIndex) yearly() bool {
	if yearlyTypes[strings.ToLower(idx.str(FieldPeriodType))] {
		return true
	}
	label := strings.ToUpper(idx.str(FieldPeriod))
	return yearLabel.MatchString(label) || strings.HasPrefix(label, "FY")
}

// endDate resolves the period end. When no date column parses, a year-like
// label is read as the 31st of December of that year.
func (idx rowIndex) endDate() time.Time {
	if v, ok := idx.lookup(FieldEndDate); ok {
		if t, ok := ParseDate(v); ok {
			return t
		}
	}
	label := strings.ToUpper(idx.str(FieldPeriod))
	if yearLabel.MatchString(label) {
		y, _ := strconv.Atoi(label)
		return yearEnd(y)
	}
	if m := fyYearLabel.FindStringSubmatch(label); m != nil {
		y, _ := strconv.Atoi(m[1])
		if y < 100 {
			y += 2000
		}
		return yearEnd(y)
	}
	return time.Time{}
}

func yearEnd(y int) time.Time {
	return time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC)
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"02/01/2006",
	"2006-01",
}

// ParseDate accepts ISO dates, a handful of common layouts, bare years and
// unix timestamps (seconds or milliseconds). Results are in UTC.
func ParseDate(v interface{}) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d.UTC(), !d.IsZero()
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
		if yearLabel.MatchString(s) {
			y, _ := strconv.Atoi(s)
			return yearEnd(y), true
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return fromNumber(n)
		}
		return time.Time{}, false
	default:
		n := ToFloat(v)
		if n == 0 {
			return time.Time{}, false
		}
		return fromNumber(n)
	}
}

func fromNumber(n float64) (time.Time, bool) {
	switch {
	case n >= 1900 && n <= 2200:
		return yearEnd(int(n)), true
	case n > 1e11:
		return time.UnixMilli(int64(n)).UTC(), true
	case n > 0:
		return time.Unix(int64(n), 0).UTC(), true
	}
	return time.Time{}, false
}

// period is a statement row with its resolved classification.
type period struct {
	row     rowIndex
	label   string
	end     time.Time
	cadence models.Cadence
}

// latestPeriod picks the base period: the most recent yearly row by end date,
// or, when no yearly row exists, the most recent row of any cadence. Ties keep
// input order. The second return value is false when the fallback was used.
func latestPeriod(rows []rowIndex) (period, bool) {
	periods := make([]period, len(rows))
	for i, r := range rows {
		c := models.CadenceQuarterly
		if r.yearly() {
			c = models.CadenceYearly
		}
		periods[i] = period{row: r, label: r.str(FieldPeriod), end: r.endDate(), cadence: c}
	}
	sort.SliceStable(periods, func(i, j int) bool {
		return periods[i].end.After(periods[j].end)
	})
	for _, p := range periods {
		if p.cadence == models.CadenceYearly {
			return p, true
		}
	}
	if len(periods) == 0 {
		return period{}, false
	}
	return periods[0], false
}
