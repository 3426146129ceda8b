package validate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/joseph-ayodele/invoice-analyst/constants"
	"github.com/joseph-ayodele/invoice-analyst/internal/entity"
)

// StickyNote renders discrepancies as review note text. Validated article
// fields come first in their usual order, any others follow sorted.
func StickyNote(disc map[string]entity.Discrepancy) string {
	if len(disc) == 0 {
		return ""
	}
	var names []string
	for _, n := range constants.ValidatedArticleFields {
		if _, ok := disc[n]; ok {
			names = append(names, n)
		}
	}
	var rest []string
	for n := range disc {
		if !slices.Contains(constants.ValidatedArticleFields, n) {
			rest = append(rest, n)
		}
	}
	slices.Sort(rest)
	names = append(names, rest...)

	var b strings.Builder
	for _, n := range names {
		d := disc[n]
		fmt.Fprintf(&b, "%s:\n  Extractor: %s\n  PDF: %s\n\n", n, d.Extractor, d.PDF)
	}
	return strings.TrimSpace(b.String())
}
