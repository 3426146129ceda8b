// Package markdown renders the two text artifacts handed to the structuring
// service: the merged table and everything outside it.
package markdown

import (
	"slices"
	"strings"

	"github.com/joseph-ayodele/invoice-analyst/internal/entity"
)

const blankCell = " "

// Table renders region as a pipe table. Columns whose header is listed in
// excluded are left out; order is otherwise preserved.
func Table(region entity.TableRegion, excluded []string) string {
	var keep []int
	var headers []string
	for i, h := range region.Headers {
		if !slices.Contains(excluded, h) {
			keep = append(keep, i)
			headers = append(headers, h)
		}
	}

	lines := make([]string, 0, len(region.Rows)+2)
	lines = append(lines, pipeRow(headers))
	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = "---"
	}
	lines = append(lines, pipeRow(sep))

	for _, row := range region.Rows {
		cells := make([]string, len(keep))
		for j, i := range keep {
			cells[j] = blankCell
			if i < len(row.Cells) && row.Cells[i] != "" {
				cells[j] = row.Cells[i]
			}
		}
		lines = append(lines, pipeRow(cells))
	}
	return strings.Join(lines, "\n")
}

func pipeRow(cells []string) string {
	return "| " + strings.Join(cells, " | ") + " |"
}
