package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"consensus_valuation/pkg/core/assumption"
	"consensus_valuation/pkg/core/pipeline"
	"consensus_valuation/pkg/core/report"
)

// valueCmd holds the flags for the 'value' subcommand.
type valueCmd struct {
	scenario  string
	profile   string
	format    string
	overrides assumption.Overrides
}

func (*valueCmd) Name() string     { return "value" }
func (*valueCmd) Synopsis() string { return "compute the consensus fair value of one security" }
func (*valueCmd) Usage() string {
	return `valuate value [-s <scenario>] [-p <profile>] [-f markdown|json|html] [overrides] <ticker>

  Fetches the statements of <ticker>, runs the five valuation methods and
  prints the weighted consensus with its sensitivity grid.
`
}

func (c *valueCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.scenario, "s", "", "Scenario preset (BASE, BULL, BEAR or one from the catalogue)")
	f.StringVar(&c.profile, "p", "", "Weighting profile (GROWTH, MATURE, DISTRESS, BALANCED)")
	f.StringVar(&c.format, "f", "markdown", "Output format: markdown, json or html")
	overrideFlags(f, &c.overrides)
}

func (c *valueCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one ticker is required")
		return subcommands.ExitUsageError
	}

	orch, _, cleanup, err := openPipeline(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer cleanup()

	fmt.Fprintf(os.Stderr, "[VALUATION] %s...\n", f.Arg(0))
	result, err := orch.Run(ctx, pipeline.Request{
		Ticker:    f.Arg(0),
		Scenario:  c.scenario,
		Profile:   c.profile,
		Overrides: c.overrides,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error valuing %s: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}
	if !result.Usable() {
		fmt.Fprintf(os.Stderr, "[WARNING] %s: weighted fair value is not positive; the consensus is unusable\n", result.Ticker)
	}

	switch c.format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding result: %v\n", err)
			return subcommands.ExitFailure
		}
	case "html":
		html, err := report.HTML(result)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering report: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Print(html)
	case "markdown":
		fmt.Print(report.Markdown(result))
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", c.format)
		return subcommands.ExitUsageError
	}
	return subcommands.ExitSuccess
}
