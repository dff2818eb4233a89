package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	md "github.com/nao1215/markdown"

	"consensus_valuation/pkg/core/assumption"
	"consensus_valuation/pkg/core/normalize"
	"consensus_valuation/pkg/core/report"
)

// presetsCmd lists the assumption catalogue.
type presetsCmd struct {
	file string
}

func (*presetsCmd) Name() string { return "presets" }
func (*presetsCmd) Synopsis() string {
	return "list scenario presets, weighting profiles, sector multiples and input columns"
}
func (*presetsCmd) Usage() string {
	return `valuate presets [-a <assumptions.yaml>]

  Prints the built-in catalogue, merged with the given assumptions file.
`
}

func (c *presetsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "a", "", "Assumptions catalogue to merge over the built-ins")
}

func (c *presetsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	catalogue := assumption.NewCatalogue()
	if c.file != "" {
		loaded, err := assumption.LoadFile(c.file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		catalogue = loaded
	}
	fmt.Print(catalogueMarkdown(catalogue))
	return subcommands.ExitSuccess
}

func catalogueMarkdown(c *assumption.Catalogue) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H2("Scenarios")
	scenarios := md.TableSet{
		Header: []string{"Name", "Rf", "ERP", "Beta", "Kd", "g", "Revenue Growth", "Tax"},
	}
	for _, name := range c.ScenarioNames() {
		s, _ := c.Scenario(name)
		if name == c.DefaultScenario {
			name = md.Bold(name)
		}
		scenarios.Rows = append(scenarios.Rows, []string{
			name,
			report.Percent(s.RiskFreeRate),
			report.Percent(s.EquityRiskPremium),
			report.Number(s.Beta),
			report.Percent(s.CostOfDebt),
			report.Percent(s.PerpetualGrowth),
			report.Percent(s.RevenueGrowth),
			report.Percent(s.TaxRate),
		})
	}
	doc.Table(scenarios)

	doc.H2("Weighting Profiles")
	profiles := md.TableSet{
		Header: []string{"Name", "DCF", "Gordon", "Graham", "EVA/MVA", "Multiples"},
	}
	for _, name := range c.ProfileNames() {
		p, _ := c.Profile(name)
		if name == c.DefaultProfile {
			name = md.Bold(name)
		}
		profiles.Rows = append(profiles.Rows, []string{
			name,
			report.Number(p.DCF),
			report.Number(p.Gordon),
			report.Number(p.Graham),
			report.Number(p.EVA),
			report.Number(p.Multiples),
		})
	}
	doc.Table(profiles)

	doc.H2("Sector Multiples")
	sectors := md.TableSet{Header: []string{"Sector", "P/E", "EV/EBITDA"}}
	table := c.Sectors()
	for _, name := range table.Sectors() {
		m := table[name]
		sectors.Rows = append(sectors.Rows, []string{name, report.Number(m.PE), report.Number(m.EVEBITDA)})
	}
	doc.Table(sectors)

	doc.H2("Input Columns")
	doc.PlainText("Raw column names accepted for each input, matched case-insensitively; the first present one wins.")
	columns := md.TableSet{Header: []string{"Field", "Columns"}}
	for _, f := range normalize.Fields() {
		aliases := normalize.Aliases(f)
		for i, a := range aliases {
			aliases[i] = md.Code(a)
		}
		columns.Rows = append(columns.Rows, []string{string(f), strings.Join(aliases, ", ")})
	}
	doc.Table(columns)

	return doc.String()
}
