package validate

import (
	"strings"

	"github.com/joseph-ayodele/invoice-analyst/internal/entity"
)

// MetadataMatches returns a highlight for every run containing a field value,
// case-insensitively. On a page where the value is absent, a value with a
// decimal point is retried with a comma.
func MetadataMatches(runs []entity.TextRun, fields []Field) []entity.HighlightMatch {
	var out []entity.HighlightMatch
	pages := entity.Pages(runs)
	for _, f := range fields {
		value := strings.TrimSpace(f.Value)
		if value == "" {
			continue
		}
		color := FieldColor(f.Name)
		for _, page := range pages {
			pageRuns := entity.PageRuns(runs, page)
			hits := runsContaining(pageRuns, value)
			if len(hits) == 0 && strings.Contains(value, ".") {
				hits = runsContaining(pageRuns, strings.ReplaceAll(value, ".", ","))
			}
			for _, r := range hits {
				out = append(out, entity.HighlightMatch{FieldName: f.Name, BBox: r.Box(), Page: page, Color: color})
			}
		}
	}
	return out
}

func runsContaining(runs []entity.TextRun, value string) []entity.TextRun {
	needle := strings.ToLower(value)
	var out []entity.TextRun
	for _, r := range runs {
		if strings.Contains(strings.ToLower(r.Text), needle) {
			out = append(out, r)
		}
	}
	return out
}
