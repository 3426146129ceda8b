package table

import (
	"fmt"

	"github.com/joseph-ayodele/invoice-analyst/internal/entity"
	"github.com/joseph-ayodele/invoice-analyst/internal/template"
)

var columnXs = []float64{10, 80, 200, 260, 320}

func line(page int, y float64, xs []float64, texts ...string) []entity.TextRun {
	out := make([]entity.TextRun, len(texts))
	for i, s := range texts {
		out[i] = entity.TextRun{Text: s, X: xs[i], Y: y, Page: page}
	}
	return out
}

func invoiceTemplate() *template.Template {
	return &template.Template{
		Supplier:    "Lefort",
		Identifiers: []string{"LEFORT"},
		Table: template.TableConfig{
			StartAnchor:        "DESIGNATION",
			HeaderRows:         1,
			Header:             []string{"Ref", "Désignation", "Qté", "Prix", "Total"},
			FooterKeywords:     []string{"Total général"},
			SummaryPatterns:    []string{"Sous-total"},
			DetailPatterns:     []string{"Lot:"},
			MinAlignedBlocks:   template.DefaultMinAlignedBlocks,
			AlignmentThreshold: template.DefaultAlignmentThreshold,
		},
	}
}

// invoicePage renders a header at y=100 and n data rows every 15 units from y=120.
func invoicePage(page, firstRef, n int) []entity.TextRun {
	runs := []entity.TextRun{{Text: "LEFORT DISTRIBUTION", X: 10, Y: 30, Page: page}}
	runs = append(runs, line(page, 100, columnXs, "Ref", "DESIGNATION", "Qté", "Prix", "Total")...)
	for i := 0; i < n; i++ {
		ref := firstRef + i
		runs = append(runs, line(page, 120+15*float64(i), columnXs,
			fmt.Sprintf("R%03d", ref), fmt.Sprintf("Article %d", ref), "2", "3,50", "7,00")...)
	}
	return runs
}
