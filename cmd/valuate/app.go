package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"consensus_valuation/pkg/core/assumption"
	"consensus_valuation/pkg/core/config"
	"consensus_valuation/pkg/core/pipeline"
)

// openPipeline loads the configuration and assembles the orchestrator.
func openPipeline(ctx context.Context) (*pipeline.Orchestrator, *config.Config, func(), error) {
	lookup, err := config.WithDotEnv(*envFile, os.LookupEnv)
	if err != nil {
		return nil, nil, nil, err
	}
	cfg, err := config.Load(*configFile, lookup)
	if err != nil {
		return nil, nil, nil, err
	}
	log := cfg.Log.Logger(os.Stderr)
	orch, cleanup, err := pipeline.FromConfig(ctx, cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return orch, cfg, cleanup, nil
}

// optionalFloat is a flag that records whether it was set.
type optionalFloat struct {
	dst **float64
}

func (o optionalFloat) String() string {
	if o.dst == nil || *o.dst == nil {
		return ""
	}
	return strconv.FormatFloat(**o.dst, 'f', -1, 64)
}

func (o optionalFloat) Set(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", s)
	}
	*o.dst = &v
	return nil
}

// overrideFlags registers one flag per scenario field.
func overrideFlags(f *flag.FlagSet, o *assumption.Overrides) {
	f.Var(optionalFloat{&o.RiskFreeRate}, "rf", "Override the risk-free rate (e.g. 0.105)")
	f.Var(optionalFloat{&o.EquityRiskPremium}, "erp", "Override the equity risk premium")
	f.Var(optionalFloat{&o.Beta}, "beta", "Override beta")
	f.Var(optionalFloat{&o.CostOfDebt}, "kd", "Override the pre-tax cost of debt")
	f.Var(optionalFloat{&o.PerpetualGrowth}, "g", "Override the perpetual growth rate")
	f.Var(optionalFloat{&o.RevenueGrowth}, "growth", "Override the explicit-period revenue growth")
	f.Var(optionalFloat{&o.TaxRate}, "tax", "Override the tax rate")
}
