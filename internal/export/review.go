package export

import (
	"fmt"
	"slices"
	"strings"

	"github.com/joseph-ayodele/invoice-analyst/constants"
	"github.com/joseph-ayodele/invoice-analyst/internal/markdown"
	"github.com/joseph-ayodele/invoice-analyst/internal/validate"
)

// ReviewMarkdown summarizes d for a human reviewer: status, structured
// metadata, articles with their validation outcome and sticky notes, the
// problem lines and the extracted table.
func ReviewMarkdown(d Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Review: %s\n\n", d.Name)
	fmt.Fprintf(&b, "**Status:** %s", d.Status)
	if d.Supplier != "" {
		fmt.Fprintf(&b, " | **Template:** %s", d.Supplier)
	}
	b.WriteString("\n\n")
	if d.Error != "" {
		fmt.Fprintf(&b, "**Error:** %s\n\n", d.Error)
	}

	if inv := d.Invoice; inv != nil {
		b.WriteString("## Invoice\n\n")
		md := inv.Metadata()
		rows := [][]string{}
		for _, name := range constants.MetadataFields {
			color := ""
			if d.Report != nil {
				color = d.Report.Colors.MetadataColors[name]
			}
			rows = append(rows, []string{name, md[name], color})
		}
		writeTable(&b, []string{"Field", "Value", "Colour"}, rows)

		b.WriteString("## Articles\n\n")
		if d.Report != nil {
			fmt.Fprintf(&b, "%d of %d articles could not be confirmed.\n\n", d.Report.Invalid, len(inv.Articles))
		}
		rows = rows[:0]
		var notes []string
		for i, a := range inv.Articles {
			status := d.ArticleStatus(i)
			rows = append(rows, []string{
				a.Reference.String(), a.Designation.String(), a.Quantity.String(),
				a.UnitPrice.String(), a.Total.String(), status,
			})
			if m, ok := d.ArticleMatch(i); ok {
				if note := validate.StickyNote(m.Discrepancies); note != "" {
					notes = append(notes, fmt.Sprintf("**%s** (page %d)\n\n%s", m.Reference, m.Page+1, codeLines(note)))
				}
				if m.Warning != "" {
					notes = append(notes, "*"+m.Warning+"*")
				}
			}
		}
		writeTable(&b, []string{"Reference", "Désignation", "Quantité", "Prix Unitaire", "Total", "Validation"}, rows)
		if len(notes) > 0 {
			b.WriteString("### Notes\n\n")
			for _, n := range slices.Compact(notes) {
				b.WriteString(n)
				b.WriteString("\n\n")
			}
		}
	}

	if d.Report != nil {
		var bad []validate.LineAnnotation
		for _, l := range d.Report.Lines {
			if len(l.Missing) > 0 {
				bad = append(bad, l)
			}
		}
		if len(bad) > 0 {
			b.WriteString("## Lines to check\n\n")
			for _, l := range bad {
				fmt.Fprintf(&b, "- page %d: `%s`\n", l.Page+1, strings.ReplaceAll(l.Line, "`", "'"))
				for _, f := range l.Missing {
					fmt.Fprintf(&b, "  - might be %s: %s\n", f.Name, f.Value)
				}
			}
			b.WriteString("\n")
		}
	}

	if d.Table != nil && len(d.Table.Headers) > 0 {
		b.WriteString("## Extracted table\n\n")
		b.WriteString(markdown.Table(*d.Table, nil))
		b.WriteString("\n")
	}
	return b.String()
}

func writeTable(b *strings.Builder, headers []string, rows [][]string) {
	b.WriteString(pipe(headers))
	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = "---"
	}
	b.WriteString(pipe(sep))
	for _, r := range rows {
		b.WriteString(pipe(r))
	}
	b.WriteString("\n")
}

func pipe(cells []string) string {
	esc := make([]string, len(cells))
	for i, c := range cells {
		c = strings.ReplaceAll(c, "|", `\|`)
		if strings.TrimSpace(c) == "" {
			c = " "
		}
		esc[i] = c
	}
	return "| " + strings.Join(esc, " | ") + " |\n"
}

func codeLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "    " + l
	}
	return strings.Join(lines, "\n")
}
