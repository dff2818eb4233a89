package ingest

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"consensus_valuation/pkg/core/normalize"
)

// =============================================================================
// HTML STATEMENT TABLES
// =============================================================================

// Table is one HTML table: the first non-empty row is the header.
type Table struct {
	Title  string
	Header []string
	Rows   [][]string
}

var (
	periodHeader = regexp.MustCompile(`(?i)(^|\D)(19|20)\d{2}(\D|$)|^FY|^\d{1,2}T\d{2}$|^Q[1-4]`)
	nonKeyChars  = regexp.MustCompile(`[^a-z0-9]+`)
)

// ParseHTMLTables extracts every table with a header and at least one data
// row. A table's title is its caption, or the text of the element right
// before it.
func ParseHTMLTables(r io.Reader) ([]Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var tables []Table
	doc.Find("table").Each(func(i int, sel *goquery.Selection) {
		t := Table{Title: tableTitle(sel)}
		sel.Find("tr").Each(func(j int, tr *goquery.Selection) {
			var cells []string
			tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.Join(strings.Fields(cell.Text()), " "))
			})
			if len(cells) == 0 || allEmpty(cells) {
				return
			}
			if t.Header == nil {
				t.Header = cells
				return
			}
			t.Rows = append(t.Rows, cells)
		})
		if t.Header != nil && len(t.Rows) > 0 {
			tables = append(tables, t)
		}
	})
	return tables, nil
}

func tableTitle(sel *goquery.Selection) string {
	if caption := strings.TrimSpace(sel.Find("caption").First().Text()); caption != "" {
		return caption
	}
	if prev := sel.Prev(); prev.Length() > 0 {
		return strings.TrimSpace(prev.Text())
	}
	return ""
}

func allEmpty(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

// IsStatement reports whether the table is laid out as a financial
// statement: line items down the first column and one column per period.
func (t Table) IsStatement() bool {
	if len(t.Header) < 2 {
		return false
	}
	for _, h := range t.Header[1:] {
		if !periodHeader.MatchString(strings.TrimSpace(h)) {
			return false
		}
	}
	return true
}

// RawRows converts the table into loosely typed rows. Statement tables are
// transposed into one row per period, with the period label under "period"
// and each line item under its snake_case label. Other tables yield one row
// per data row keyed by header.
func (t Table) RawRows() []normalize.RawRow {
	if t.IsStatement() {
		return t.periodRows()
	}
	rows := make([]normalize.RawRow, 0, len(t.Rows))
	for _, cells := range t.Rows {
		row := normalize.RawRow{}
		for j, h := range t.Header {
			if j < len(cells) && h != "" {
				row[h] = cellValue(cells[j])
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func (t Table) periodRows() []normalize.RawRow {
	rows := make([]normalize.RawRow, len(t.Header)-1)
	for i := range rows {
		rows[i] = normalize.RawRow{"period": t.Header[i+1]}
	}
	for _, cells := range t.Rows {
		key := LabelKey(cells[0])
		if key == "" {
			continue
		}
		for i := range rows {
			if i+1 < len(cells) {
				rows[i][key] = cellValue(cells[i+1])
			}
		}
	}
	return rows
}

// LabelKey turns a line-item label into a snake_case column key:
// "Total Revenue" -> "total_revenue".
func LabelKey(label string) string {
	return strings.Trim(nonKeyChars.ReplaceAllString(strings.ToLower(label), "_"), "_")
}

// cellValue returns the numeric value of a cell when it holds one, handling
// accounting negatives "(1,234)", currency prefixes and dash placeholders.
// Anything else is returned as text.
func cellValue(text string) interface{} {
	s := strings.TrimSpace(text)
	if s == "" || s == "-" || s == "—" {
		return nil
	}
	clean := s
	for _, prefix := range []string{"R$", "US$", "$"} {
		clean = strings.TrimPrefix(clean, prefix)
	}
	clean = strings.TrimSpace(clean)
	negative := strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")")
	if negative {
		clean = strings.TrimSuffix(strings.TrimPrefix(clean, "("), ")")
	}
	percent := strings.HasSuffix(clean, "%")
	clean = strings.TrimSuffix(clean, "%")
	clean = strings.ReplaceAll(clean, ",", "")

	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return s
	}
	if percent {
		f /= 100
	}
	if negative {
		f = -f
	}
	return f
}

// RowsFromHTML parses a page and returns the rows of all its tables.
// Statement tables split over several HTML tables are merged by period.
func RowsFromHTML(r io.Reader) ([]normalize.RawRow, error) {
	tables, err := ParseHTMLTables(r)
	if err != nil {
		return nil, err
	}
	var rows []normalize.RawRow
	byPeriod := make(map[string]normalize.RawRow)
	for _, t := range tables {
		if !t.IsStatement() {
			rows = append(rows, t.RawRows()...)
			continue
		}
		for _, row := range t.periodRows() {
			label := row["period"].(string)
			existing, ok := byPeriod[label]
			if !ok {
				byPeriod[label] = row
				rows = append(rows, row)
				continue
			}
			for k, v := range row {
				if _, taken := existing[k]; !taken {
					existing[k] = v
				}
			}
		}
	}
	return rows, nil
}
