package table

import (
	"math"
	"slices"

	"github.com/joseph-ayodele/invoice-analyst/internal/entity"
)

const (
	rowHeightMinSamples = 5
	rowHeightMaxRuns    = 100
	rowHeightMinGap     = 5.0
	rowHeightMaxGap     = 30.0
)

// AutoDetectRowHeight returns the most common line spacing among the first
// runs, or DefaultRowHeight when there is too little to go on.
func AutoDetectRowHeight(runs []entity.TextRun) float64 {
	if len(runs) < rowHeightMinSamples {
		return DefaultRowHeight
	}
	var ys []float64
	for _, r := range runs[:min(len(runs), rowHeightMaxRuns)] {
		ys = append(ys, r.Y)
	}
	slices.Sort(ys)
	ys = slices.Compact(ys)

	counts := map[float64]int{}
	var order []float64
	for i := 1; i < len(ys); i++ {
		gap := ys[i] - ys[i-1]
		if gap < rowHeightMinGap || gap > rowHeightMaxGap {
			continue
		}
		g := math.Round(gap*10) / 10
		if counts[g] == 0 {
			order = append(order, g)
		}
		counts[g]++
	}
	if len(order) == 0 {
		return DefaultRowHeight
	}
	// Ties go to the gap seen first.
	best := order[0]
	for _, g := range order[1:] {
		if counts[g] > counts[best] {
			best = g
		}
	}
	return best
}
