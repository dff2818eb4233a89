package valuation

import "consensus_valuation/pkg/models"

// SensitivityGrid re-runs the DCF over a WACC × perpetual growth grid with
// the revenue growth held fixed. Rows ascend by WACC and columns by growth;
// the centre cell uses the base inputs unchanged, so it equals the base DCF.
// Cells where WACC <= growth are 0.
func SensitivityGrid(s *models.FinancialSnapshot, baseWACC, revenueGrowth, basePerpetual float64) [models.GridSize][models.GridSize]models.SensitivityCell {
	var grid [models.GridSize][models.GridSize]models.SensitivityCell
	waccs := GenerateRateSeries(baseWACC, SensitivityStep)
	growths := GenerateRateSeries(basePerpetual, SensitivityStep)

	for i, w := range waccs {
		for j, g := range growths {
			grid[i][j] = models.SensitivityCell{
				WACC:      w,
				Growth:    g,
				FairValue: DCF(s, w, revenueGrowth, g).FairValue,
			}
		}
	}
	return grid
}

// Center returns the base-case cell of a grid.
func Center(grid [models.GridSize][models.GridSize]models.SensitivityCell) models.SensitivityCell {
	mid := models.GridSize / 2
	return grid[mid][mid]
}
