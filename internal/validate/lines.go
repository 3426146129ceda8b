package validate

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/invoice-analyst/internal/entity"
)

const lineTolerance = 5.0

// LineRule asks for the line containing Text to also show every value of Data.
type LineRule struct {
	Text  string
	Data  []Field
	Color entity.RGB
}

// LineAnnotation is the outcome of one rule on one line.
type LineAnnotation struct {
	Page    int         `json:"page"`
	BBox    entity.BBox `json:"bbox"`
	Color   entity.RGB  `json:"color"`
	Rule    int         `json:"rule"`
	Line    string      `json:"line"`
	Note    string      `json:"note"`
	Missing []Field     `json:"missing,omitempty"`
}

// AnnotateLines applies the first rule whose text occurs in each line. The line
// keeps the rule colour when every value is found in it and turns red otherwise.
func AnnotateLines(runs []entity.TextRun, rules []LineRule) []LineAnnotation {
	if len(rules) == 0 {
		return nil
	}
	var out []LineAnnotation
	for _, page := range entity.Pages(runs) {
		for _, line := range entity.GroupLines(entity.PageRuns(runs, page), lineTolerance) {
			texts := make([]string, len(line))
			for i, r := range line {
				texts[i] = r.Text
			}
			text := strings.TrimSpace(strings.Join(texts, " "))
			if text == "" {
				continue
			}
			box := entity.LineBox(line)
			for idx, rule := range rules {
				if rule.Text == "" || !strings.Contains(text, rule.Text) {
					continue
				}
				out = append(out, annotateLine(page, box, idx, text, rule))
				break
			}
		}
	}
	return out
}

func annotateLine(page int, box entity.BBox, idx int, text string, rule LineRule) LineAnnotation {
	color := rule.Color
	if color == (entity.RGB{}) {
		color = ColorLineRule
	}
	note := make([]string, 0, len(rule.Data)+1)
	for _, f := range rule.Data {
		note = append(note, fmt.Sprintf("%s: %s", f.Name, f.Value))
	}
	missing := FindMissingValues(text, rule.Data)
	if len(missing) > 0 {
		color = ColorInvalid
		note = append(note, "Something is wrong with this row, check the values:")
		for _, f := range missing {
			note = append(note, fmt.Sprintf("- Might be %s: %s", f.Name, f.Value))
		}
	}
	return LineAnnotation{
		Page:    page,
		BBox:    box,
		Color:   color,
		Rule:    idx,
		Line:    text,
		Note:    strings.Join(note, "\n"),
		Missing: missing,
	}
}
