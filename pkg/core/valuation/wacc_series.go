package valuation

import "consensus_valuation/pkg/models"

// SensitivityStep is the spacing between adjacent grid rows and columns
// (half a percentage point).
const SensitivityStep = 0.005

// GenerateRateSeries returns GridSize rates centred on base, ascending by
// step. The centre element is base itself.
func GenerateRateSeries(base, step float64) [models.GridSize]float64 {
	var series [models.GridSize]float64
	mid := models.GridSize / 2
	for i := range series {
		if i == mid {
			series[i] = base
			continue
		}
		series[i] = base + float64(i-mid)*step
	}
	return series
}
