package markdown

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/invoice-analyst/internal/entity"
)

const (
	// LineTolerance groups runs into one reading line.
	LineTolerance = 5.0

	tableEndMargin   = 20.0
	emptyTableMargin = 100.0
)

// FilterNonTable returns the runs that fall outside every table. A table
// covers its page from StartY down to 20 below its last row, or 100 below
// StartY when it has no rows.
func FilterNonTable(runs []entity.TextRun, tables []entity.TableRegion) []entity.TextRun {
	out := make([]entity.TextRun, 0, len(runs))
	for _, r := range runs {
		if !inAnyTable(r, tables) {
			out = append(out, r)
		}
	}
	return out
}

func inAnyTable(r entity.TextRun, tables []entity.TableRegion) bool {
	for _, t := range tables {
		if r.Page != t.Page || r.Y < t.StartY {
			continue
		}
		end := t.StartY + emptyTableMargin
		if y, ok := t.LastRowY(); ok {
			end = y + tableEndMargin
		}
		if r.Y <= end {
			return true
		}
	}
	return false
}

// Dedupe drops runs whose exact text was already seen. The first one wins.
func Dedupe(runs []entity.TextRun) []entity.TextRun {
	seen := make(map[string]struct{}, len(runs))
	out := make([]entity.TextRun, 0, len(runs))
	for _, r := range runs {
		if _, ok := seen[r.Text]; ok {
			continue
		}
		seen[r.Text] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Info renders runs in reading order, page by page, with a marker between pages.
func Info(runs []entity.TextRun) string {
	if len(runs) == 0 {
		return ""
	}
	var parts []string
	for i, page := range entity.Pages(runs) {
		if i > 0 {
			parts = append(parts, "\n---", fmt.Sprintf("# Page %d", page+1), "---\n")
		}
		parts = append(parts, Lines(entity.PageRuns(runs, page), LineTolerance)...)
	}
	return strings.Join(parts, "\n")
}

// Lines renders each reading line of runs as its texts joined by spaces.
func Lines(runs []entity.TextRun, tolerance float64) []string {
	groups := entity.GroupLines(runs, tolerance)
	out := make([]string, len(groups))
	for i, g := range groups {
		texts := make([]string, len(g))
		for j, r := range g {
			texts[j] = r.Text
		}
		out[i] = strings.Join(texts, " ")
	}
	return out
}
