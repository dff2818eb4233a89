package valuation

import (
	"fmt"

	"consensus_valuation/pkg/core/calc"
	"consensus_valuation/pkg/models"
)

func in(name string, v float64) models.TraceInput {
	return models.TraceInput{Name: name, Value: v}
}

// result builds a ValuationResult from a raw per-share value. Non-finite and
// negative values are floored to 0 and the result is marked degenerate.
func result(m models.MethodID, raw float64, formula, note string, inputs ...models.TraceInput) models.ValuationResult {
	fv := calc.FloorZero(raw)
	r := models.ValuationResult{
		Method:     m,
		FairValue:  fv,
		Degenerate: fv == 0,
		Trace: models.Trace{
			Formula: formula,
			Inputs:  inputs,
			Result:  fv,
			Note:    note,
		},
	}
	if r.Degenerate && note == "" {
		r.Trace.Note = fmt.Sprintf("raw value %.4f floored to 0", calc.Finite(raw))
	}
	return r
}

// degenerate reports a method that has no solution for the inputs.
func degenerate(m models.MethodID, formula, reason string, inputs ...models.TraceInput) models.ValuationResult {
	return result(m, 0, formula, reason, inputs...)
}
