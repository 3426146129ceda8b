package validate

import (
	"unicode/utf8"

	"github.com/joseph-ayodele/invoice-analyst/constants"
	"github.com/joseph-ayodele/invoice-analyst/internal/entity"
)

// run places text at (x, y) with a box 6 units per character wide and 10 high.
func run(page int, text string, x, y float64) entity.TextRun {
	w := 6 * float64(utf8.RuneCountInString(text))
	return entity.TextRun{Text: text, X: x, Y: y, Page: page, BBox: &entity.BBox{X0: x, Y0: y, X1: x + w, Y1: y + 10}}
}

func articleLine(page int, y float64, cells ...string) []entity.TextRun {
	xs := []float64{10, 80, 200, 230, 260, 320}
	out := make([]entity.TextRun, len(cells))
	for i, c := range cells {
		out[i] = run(page, c, xs[i], y)
	}
	return out
}

func article(ref, designation, price, packaging, qty, total string) Article {
	return Article{
		constants.ArticleReference:   ref,
		constants.ArticleDesignation: designation,
		constants.ArticleUnitPrice:   price,
		constants.ArticlePackaging:   packaging,
		constants.ArticleQuantity:    qty,
		constants.ArticleTotal:       total,
	}
}

func invoiceRuns() []entity.TextRun {
	var runs []entity.TextRun
	runs = append(runs, run(0, "LEFORT DISTRIBUTION", 10, 20), run(0, "Facture N° F-2025-001", 300, 20))
	runs = append(runs, articleLine(0, 100, "R001", "Vis inox M4", "2", "PCE", "3,50", "7,00")...)
	runs = append(runs, run(0, "Duplicata", 400, 101))
	runs = append(runs, run(0, "hors ligne", 700, 100))
	runs = append(runs, articleLine(0, 120, "R002", "Ecrou M4", "1", "PCE", "1,00", "1,00")...)
	runs = append(runs, run(0, "Total TTC 1234,50", 300, 600))
	runs = append(runs, run(1, "LEFORT DISTRIBUTION", 10, 20))
	runs = append(runs, articleLine(1, 100, "R001", "Vis inox M4", "4", "PCE", "3,50", "14,00")...)
	return runs
}
