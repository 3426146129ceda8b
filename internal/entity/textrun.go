package entity

import (
	"fmt"
	"slices"
)

// BBox is an axis-aligned box in page coordinates (origin top-left).
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// MidY is the vertical centre of the box.
func (b BBox) MidY() float64 { return (b.Y0 + b.Y1) / 2 }

// Union returns the smallest box covering b and o.
func (b BBox) Union(o BBox) BBox {
	return BBox{
		X0: min(b.X0, o.X0),
		Y0: min(b.Y0, o.Y0),
		X1: max(b.X1, o.X1),
		Y1: max(b.Y1, o.Y1),
	}
}

// TextRun is one contiguous piece of styled text at a known position.
// Page is zero-based. Runs are immutable once produced.
type TextRun struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Page int     `json:"page"`
	BBox *BBox   `json:"bbox,omitempty"`
}

// Box returns the run's bounding box, or a degenerate box at its origin.
func (r TextRun) Box() BBox {
	if r.BBox != nil {
		return *r.BBox
	}
	return BBox{X0: r.X, Y0: r.Y, X1: r.X, Y1: r.Y}
}

func (r TextRun) String() string {
	return fmt.Sprintf("p%d(%.1f,%.1f)%q", r.Page, r.X, r.Y, r.Text)
}

// PageRuns returns the runs of one page, preserving order.
func PageRuns(runs []TextRun, page int) []TextRun {
	out := make([]TextRun, 0, len(runs))
	for _, r := range runs {
		if r.Page == page {
			out = append(out, r)
		}
	}
	return out
}

// Pages returns the distinct page indexes present in runs, ascending.
func Pages(runs []TextRun) []int {
	seen := map[int]struct{}{}
	var pages []int
	for _, r := range runs {
		if _, ok := seen[r.Page]; !ok {
			seen[r.Page] = struct{}{}
			pages = append(pages, r.Page)
		}
	}
	slices.Sort(pages)
	return pages
}
