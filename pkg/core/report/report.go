// Package report renders valuations as markdown documents and HTML
// fragments for the CLI and the HTTP API.
package report

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"consensus_valuation/pkg/core/pipeline"
	"consensus_valuation/pkg/core/utils"
	"consensus_valuation/pkg/models"
)

const unusableWarning = "Warning: the weighted fair value is not positive, so the consensus and its upside are not meaningful."

// Markdown renders one valuation: summary, per-method results, cost of
// capital, the sensitivity grid, derivation traces and data-quality flags.
func Markdown(v *models.ComprehensiveValuation) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Valuation Report: %s", v.Ticker))
	doc.PlainText(fmt.Sprintf("Scenario %s, weighting profile %s.", v.Scenario.Name, v.Profile.Name))

	// 1. Summary
	doc.H2("Summary")
	usable := v.Usable()
	if !usable {
		doc.PlainText(md.Bold(unusableWarning))
	}
	upside := SignedPercent(v.TotalUpside)
	if !usable {
		upside = "n/a"
	}
	rangeText := "n/a"
	if v.PriceRange.Max > 0 {
		rangeText = fmt.Sprintf("%s to %s", Money(v.PriceRange.Min, v.Currency), Money(v.PriceRange.Max, v.Currency))
	}
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Metric", "Value"},
		Rows: [][]string{
			{"Current Price", Money(v.CurrentPrice, v.Currency)},
			{md.Bold("Weighted Fair Value"), md.Bold(Money(v.WeightedFairValue, v.Currency))},
			{"Upside", upside},
			{"WACC", Percent(v.WACC)},
			{"Fair Value Range", rangeText},
		},
	})

	// 2. Methods
	doc.H2("Methods")
	methods := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignLeft},
		Header:    []string{"Method", "Fair Value", "Weight", "Upside", "Status"},
	}
	for _, r := range v.Methods {
		status := "OK"
		if r.Degenerate {
			status = "Degenerate"
		}
		methods.Rows = append(methods.Rows, []string{
			string(r.Method),
			Money(r.FairValue, v.Currency),
			Percent(r.Weight),
			SignedPercent(r.Upside),
			status,
		})
	}
	doc.Table(methods)

	// 3. Cost of capital
	c := v.CostOfCapital
	doc.H2("Cost of Capital")
	debtSource := "scenario"
	if c.UsedImpliedRate {
		debtSource = "implied"
	}
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Component", "Value"},
		Rows: [][]string{
			{"Beta", Number(c.Beta)},
			{"Cost of Equity", Percent(c.CostOfEquity)},
			{fmt.Sprintf("Cost of Debt (%s)", debtSource), Percent(c.CostOfDebt)},
			{"Cost of Debt after Tax", Percent(c.CostOfDebtAfterTax)},
			{"Tax Rate", Percent(c.TaxRate)},
			{"Equity Weight", Percent(c.EquityWeight)},
			{"Debt Weight", Percent(c.DebtWeight)},
			{md.Bold("WACC"), md.Bold(Percent(c.WACC))},
		},
	})

	// 4. Sensitivity
	doc.H2("Sensitivity")
	doc.PlainText("DCF fair value per share; rows vary WACC, columns vary perpetual growth.")
	doc.Table(sensitivityTable(v))

	// 5. Derivations
	doc.H2("Derivations")
	for _, r := range v.Methods {
		doc.H3(string(r.Method))
		doc.PlainText(md.Code(r.Trace.Formula))
		inputs := make([]string, 0, len(r.Trace.Inputs)+1)
		for _, in := range r.Trace.Inputs {
			inputs = append(inputs, fmt.Sprintf("%s = %s", in.Name, Number(in.Value)))
		}
		if r.Trace.Note != "" {
			inputs = append(inputs, md.Italic(r.Trace.Note))
		}
		if len(inputs) > 0 {
			doc.BulletList(inputs...)
		}
	}

	// 6. Data quality
	if len(v.Flags) > 0 {
		doc.H2("Data Quality")
		flags := make([]string, 0, len(v.Flags))
		for _, f := range v.Flags {
			flags = append(flags, flagLine(f))
		}
		doc.BulletList(flags...)
	}

	return doc.String()
}

func sensitivityTable(v *models.ComprehensiveValuation) md.TableSet {
	header := []string{"WACC \\ g"}
	align := []md.TableAlignment{md.AlignLeft}
	for _, cell := range v.Sensitivity[0] {
		header = append(header, Percent(cell.Growth))
		align = append(align, md.AlignRight)
	}
	table := md.TableSet{Alignment: align, Header: header}
	for i, row := range v.Sensitivity {
		line := []string{Percent(row[0].WACC)}
		for j, cell := range row {
			text := Money(cell.FairValue, v.Currency)
			if i == models.GridSize/2 && j == models.GridSize/2 {
				text = md.Bold(text)
			}
			line = append(line, text)
		}
		table.Rows = append(table.Rows, line)
	}
	return table
}

func flagLine(f models.DataQualityFlag) string {
	code := md.Code(string(f.Code))
	if f.Field != "" {
		return fmt.Sprintf("%s (%s): %s", code, f.Field, utils.EscapeCell(f.Message))
	}
	return fmt.Sprintf("%s: %s", code, utils.EscapeCell(f.Message))
}

// HTML renders the markdown report to an HTML fragment.
func HTML(v *models.ComprehensiveValuation) (string, error) {
	return utils.MarkdownToHTML(Markdown(v))
}

// =============================================================================
// BATCH
// =============================================================================

// BatchMarkdown renders a batch run: one summary row per valued ticker and
// the list of skipped tickers.
func BatchMarkdown(r *pipeline.BatchReport) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Batch Valuation %s", r.RunID))
	doc.PlainText(fmt.Sprintf("Scenario %s, weighting profile %s, started %s, %d valued (%d unusable), %d skipped.",
		r.Scenario, r.Profile, r.StartedAt.Format("2006-01-02 15:04:05 MST"), len(r.Results), r.Unusable(), len(r.Failures)))

	if len(r.Results) > 0 {
		doc.H2("Results")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignLeft},
			Header:    []string{"Ticker", "Price", "Fair Value", "Upside", "WACC", "Flags", "Status"},
		}
		for _, v := range r.Results {
			upside, status := SignedPercent(v.TotalUpside), "OK"
			if !v.Usable() {
				upside, status = "n/a", md.Bold("Unusable")
			}
			table.Rows = append(table.Rows, []string{
				v.Ticker,
				Money(v.CurrentPrice, v.Currency),
				Money(v.WeightedFairValue, v.Currency),
				upside,
				Percent(v.WACC),
				fmt.Sprintf("%d", len(v.Flags)),
				status,
			})
		}
		doc.Table(table)
	}

	if len(r.Failures) > 0 {
		doc.H2("Skipped")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft},
			Header:    []string{"Ticker", "Missing Data", "Reason"},
		}
		for _, f := range r.Failures {
			missing := "no"
			if f.MissingData {
				missing = "yes"
			}
			table.Rows = append(table.Rows, []string{f.Ticker, missing, utils.EscapeCell(f.Error)})
		}
		doc.Table(table)
	}

	return doc.String()
}
