package entity

import (
	"cmp"
	"math"
	"slices"
)

// GroupLines groups runs into reading lines. A run joins the first line whose
// first run is within tolerance of its y. Lines are ordered by their topmost
// run and each line is sorted by x.
func GroupLines(runs []TextRun, tolerance float64) [][]TextRun {
	var lines [][]TextRun
	for _, r := range runs {
		placed := false
		for i, l := range lines {
			if math.Abs(l[0].Y-r.Y) < tolerance {
				lines[i] = append(l, r)
				placed = true
				break
			}
		}
		if !placed {
			lines = append(lines, []TextRun{r})
		}
	}
	top := func(l []TextRun) float64 {
		y := l[0].Y
		for _, r := range l[1:] {
			y = min(y, r.Y)
		}
		return y
	}
	slices.SortStableFunc(lines, func(a, b []TextRun) int { return cmp.Compare(top(a), top(b)) })
	for _, l := range lines {
		slices.SortStableFunc(l, func(a, b TextRun) int { return cmp.Compare(a.X, b.X) })
	}
	return lines
}

// LineBox is the union of the boxes of runs.
func LineBox(runs []TextRun) BBox {
	if len(runs) == 0 {
		return BBox{}
	}
	b := runs[0].Box()
	for _, r := range runs[1:] {
		b = b.Union(r.Box())
	}
	return b
}
