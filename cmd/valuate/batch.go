package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"consensus_valuation/pkg/core/assumption"
	"consensus_valuation/pkg/core/pipeline"
	"consensus_valuation/pkg/core/report"
)

// batchCmd holds the flags for the 'batch' subcommand.
type batchCmd struct {
	scenario  string
	profile   string
	format    string
	file      string
	workers   int
	overrides assumption.Overrides
}

func (*batchCmd) Name() string     { return "batch" }
func (*batchCmd) Synopsis() string { return "value many securities in parallel" }
func (*batchCmd) Usage() string {
	return `valuate batch [-s <scenario>] [-p <profile>] [-w <workers>] [-i <file>] [ticker...]

  Values every ticker given as argument or listed in <file> (one per line,
  # starts a comment). Tickers without usable statements are reported and
  skipped.
`
}

func (c *batchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.scenario, "s", "", "Scenario preset")
	f.StringVar(&c.profile, "p", "", "Weighting profile")
	f.StringVar(&c.format, "f", "markdown", "Output format: markdown or json")
	f.StringVar(&c.file, "i", "", "File listing tickers, one per line")
	f.IntVar(&c.workers, "w", 0, "Concurrent valuations (defaults to the configured workers)")
	overrideFlags(f, &c.overrides)
}

func (c *batchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	tickers := f.Args()
	if c.file != "" {
		listed, err := readTickers(c.file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", c.file, err)
			return subcommands.ExitFailure
		}
		tickers = append(tickers, listed...)
	}
	if len(tickers) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no tickers given")
		return subcommands.ExitUsageError
	}

	orch, cfg, cleanup, err := openPipeline(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer cleanup()

	workers := c.workers
	if workers <= 0 {
		workers = cfg.Workers
	}
	fmt.Fprintf(os.Stderr, "[BATCH] Valuing %d tickers with %d workers...\n", len(tickers), workers)

	rep, err := orch.RunBatch(ctx, pipeline.BatchRequest{
		Tickers:   tickers,
		Scenario:  c.scenario,
		Profile:   c.profile,
		Overrides: c.overrides,
		Workers:   workers,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding report: %v\n", err)
			return subcommands.ExitFailure
		}
	} else {
		fmt.Print(report.BatchMarkdown(rep))
	}

	fmt.Fprintf(os.Stderr, "[BATCH] %s: %d valued (%d unusable), %d skipped in %v\n", rep.RunID, len(rep.Results), rep.Unusable(), len(rep.Failures), rep.Elapsed)
	if len(rep.Results) == 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func readTickers(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var tickers []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		tickers = append(tickers, strings.Fields(line)...)
	}
	return tickers, scanner.Err()
}
