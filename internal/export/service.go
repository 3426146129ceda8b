package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-analyst/internal/llm"
)

const (
	SheetSummary  = "Summary"
	SheetArticles = "Articles"
	SheetTables   = "Tables"
)

var (
	summaryHeaders = []string{
		"File", "Supplier", "Status", "Invoice Number", "Invoice Date",
		"Total HT", "TVA", "Total TTC", "Packages", "Articles", "Invalid Articles", "Error",
	}
	articleHeaders = []string{
		"File", "Reference", "Désignation", "Packaging", "Quantité",
		"Prix Unitaire", "Total", "Marque", "Catégorie", "Validation",
	}
)

// Service produces XLSX and PDF bytes for exports.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// WorkbookXLSX returns an XLSX workbook (as bytes) with one Summary row per
// document, one Articles row per structured article and every merged table.
// Invalid articles are filled red.
func (s *Service) WorkbookXLSX(docs []Document) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close_error", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}
	for _, sheet := range []string{SheetArticles, SheetTables} {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(SheetSummary)
	f.SetActiveSheet(activeIndex)

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}
	invalid, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FFC7CE"}},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}

	writeRow := func(sheet string, row int, values []any, style int) error {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
		if style != 0 && len(values) > 0 {
			last, _ := excelize.CoordinatesToCellName(len(values), row)
			return f.SetCellStyle(sheet, cell, last, style)
		}
		return nil
	}

	if err := writeRow(SheetSummary, 1, toAny(summaryHeaders), bold); err != nil {
		return nil, err
	}
	if err := writeRow(SheetArticles, 1, toAny(articleHeaders), bold); err != nil {
		return nil, err
	}

	summaryRow, articleRow, tableRow, articles := 2, 2, 1, 0
	for _, d := range docs {
		if err := writeRow(SheetSummary, summaryRow, summaryValues(d), 0); err != nil {
			return nil, err
		}
		summaryRow++

		if d.Invoice != nil {
			for i, a := range d.Invoice.Articles {
				status := d.ArticleStatus(i)
				style := 0
				if status == "invalid" {
					style = invalid
				}
				if err := writeRow(SheetArticles, articleRow, articleValues(d.Name, a, status), style); err != nil {
					return nil, err
				}
				articleRow++
				articles++
			}
		}

		if d.Table != nil && len(d.Table.Headers) > 0 {
			header := append([]any{"File", "Page"}, toAny(d.Table.Headers)...)
			if err := writeRow(SheetTables, tableRow, header, bold); err != nil {
				return nil, err
			}
			tableRow++
			for _, r := range d.Table.Rows {
				values := append([]any{d.Name, r.Page + 1}, toAny(r.Cells)...)
				if err := writeRow(SheetTables, tableRow, values, 0); err != nil {
					return nil, err
				}
				tableRow++
			}
			tableRow++ // blank line between documents
		}
	}

	_ = f.SetColWidth(SheetSummary, "A", "A", 32)
	_ = f.SetColWidth(SheetSummary, "B", "B", 28)
	_ = f.SetColWidth(SheetSummary, "C", "E", 16)
	_ = f.SetColWidth(SheetSummary, "L", "L", 48)
	_ = f.SetColWidth(SheetArticles, "A", "A", 32)
	_ = f.SetColWidth(SheetArticles, "C", "C", 40)
	_ = f.SetColWidth(SheetTables, "A", "A", 32)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"documents", len(docs),
		"articles", articles,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func summaryValues(d Document) []any {
	v := []any{d.Name, d.Supplier, string(d.Status), "", "", "", "", "", "", 0, 0, truncate(d.Error, 140)}
	if inv := d.Invoice; inv != nil {
		if inv.Supplier.Name != "" {
			v[1] = inv.Supplier.Name.String()
		}
		v[3] = inv.InvoiceNumber.String()
		v[4] = inv.InvoiceDate.String()
		v[5] = inv.Totals.TotalHT.String()
		v[6] = inv.Totals.TVA.String()
		v[7] = inv.Totals.TotalTTC.String()
		v[8] = inv.PackageCount.String()
		v[9] = len(inv.Articles)
	}
	if d.Report != nil {
		v[10] = d.Report.Invalid
	}
	return v
}

func articleValues(name string, a llm.ArticleFields, status string) []any {
	return []any{
		name,
		a.Reference.String(),
		a.Designation.String(),
		a.Packaging.String(),
		a.Quantity.String(),
		a.UnitPrice.String(),
		a.Total.String(),
		a.Brand.String(),
		a.Category.String(),
		status,
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
