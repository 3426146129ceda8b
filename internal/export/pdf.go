package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const (
	pageWidth   = 190.0 // A4 minus 10mm margins
	tableFont   = 8.0
	tableLineH  = 4.0
	maxRowLines = 6
)

// ReviewPDF renders review markdown to an A4 PDF.
func (s *Service) ReviewPDF(markdown, title string) ([]byte, error) {
	start := time.Now()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()
	pdf.SetFont("Arial", "", 9)

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	source := []byte(markdown)
	doc := md.Parser().Parse(text.NewReader(source))

	r := &pdfRenderer{
		pdf:    pdf,
		source: source,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		size:   9,
	}
	if err := ast.Walk(doc, r.walk); err != nil {
		s.logger.Error("export.pdf.render_failed", "error", err)
		return nil, fmt.Errorf("render review pdf: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		s.logger.Error("export.pdf.output_failed", "error", err)
		return nil, fmt.Errorf("review pdf output: %w", err)
	}
	s.logger.Info("export.pdf.ok",
		"title", title,
		"bytes", buf.Len(),
		"pages", pdf.PageCount(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

type pdfRenderer struct {
	pdf       *fpdf.Fpdf
	source    []byte
	tr        func(string) string
	size      float64
	bold      bool
	italic    bool
	listLevel int
}

func (r *pdfRenderer) updateFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic {
		style += "I"
	}
	r.pdf.SetFont("Arial", style, r.size)
}

func (r *pdfRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n.Kind() {
	case ast.KindHeading:
		h := n.(*ast.Heading)
		r.pdf.Ln(5)
		if entering {
			size := map[int]float64{1: 14, 2: 12, 3: 10}[h.Level]
			if size == 0 {
				size = 10
			}
			r.pdf.SetFont("Arial", "B", size)
		} else {
			r.updateFont()
		}
	case ast.KindParagraph:
		if !entering && r.listLevel == 0 {
			r.pdf.Ln(6)
		}
	case ast.KindText:
		if entering {
			t := n.(*ast.Text)
			r.pdf.Write(5, r.tr(string(t.Segment.Value(r.source))))
			if t.SoftLineBreak() || t.HardLineBreak() {
				r.pdf.Ln(5)
			}
		}
	case ast.KindEmphasis:
		if n.(*ast.Emphasis).Level == 2 {
			r.bold = entering
		} else {
			r.italic = entering
		}
		r.updateFont()
	case ast.KindCodeSpan:
		if entering {
			r.pdf.SetFont("Courier", "", r.size)
			r.pdf.Write(5, r.tr(string(n.Text(r.source))))
			r.updateFont()
		}
		return ast.WalkSkipChildren, nil
	case ast.KindCodeBlock, ast.KindFencedCodeBlock:
		if entering {
			r.codeBlock(n.Lines())
		}
		return ast.WalkSkipChildren, nil
	case ast.KindList:
		if entering {
			r.listLevel++
		} else {
			r.listLevel--
			if r.listLevel == 0 {
				r.pdf.Ln(7)
			}
		}
	case ast.KindListItem:
		if entering {
			r.pdf.Ln(5)
			r.pdf.SetX(12 + float64(r.listLevel)*5)
			r.pdf.Write(5, "- ")
		}
	case ast.KindThematicBreak:
		if entering {
			r.pdf.Ln(2)
			r.pdf.Line(10, r.pdf.GetY(), 200, r.pdf.GetY())
			r.pdf.Ln(2)
		}
	case extast.KindTable:
		if entering {
			r.table(tableRows(n.(*extast.Table), r.source))
		}
		return ast.WalkSkipChildren, nil
	}
	return ast.WalkContinue, nil
}

func (r *pdfRenderer) codeBlock(lines *text.Segments) {
	r.pdf.SetFont("Courier", "", 8)
	r.pdf.SetFillColor(245, 245, 245)
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		r.pdf.MultiCell(0, 4, r.tr(strings.TrimRight(string(seg.Value(r.source)), "\n")), "", "L", true)
	}
	r.pdf.SetFillColor(255, 255, 255)
	r.updateFont()
	r.pdf.Ln(2)
}

// tableRows returns the header row followed by the body rows.
func tableRows(n *extast.Table, source []byte) [][]string {
	var rows [][]string
	var find func(node ast.Node)
	find = func(node ast.Node) {
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			switch c := child.(type) {
			case *extast.TableHeader:
				rows = append(rows, cellTexts(c, source))
			case *extast.TableRow:
				rows = append(rows, cellTexts(c, source))
			}
		}
	}
	find(n)
	return rows
}

func cellTexts(row ast.Node, source []byte) []string {
	var out []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if _, ok := cell.(*extast.TableCell); ok {
			out = append(out, strings.TrimSpace(string(cell.Text(source))))
		}
	}
	return out
}

func (r *pdfRenderer) table(rows [][]string) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}
	cols := len(rows[0])
	widths := r.columnWidths(rows, cols)
	_, pageH := r.pdf.GetPageSize()
	_, _, _, bottom := r.pdf.GetMargins()

	r.pdf.Ln(2)
	for i, row := range rows {
		style := ""
		if i == 0 {
			style = "B"
		}
		r.pdf.SetFont("Arial", style, tableFont)

		lines := 1
		for j := 0; j < cols && j < len(row); j++ {
			lines = max(lines, len(r.pdf.SplitLines([]byte(r.tr(row[j])), widths[j]-2)))
		}
		lines = min(lines, maxRowLines)
		h := float64(lines)*tableLineH + 2

		x, y := r.pdf.GetX(), r.pdf.GetY()
		if y+h > pageH-bottom {
			r.pdf.AddPage()
			y = r.pdf.GetY()
		}
		fill := r.rowFill(i, row)
		for j := 0; j < cols; j++ {
			cell := ""
			if j < len(row) {
				cell = row[j]
			}
			if fill != nil {
				r.pdf.SetFillColor(fill[0], fill[1], fill[2])
				r.pdf.Rect(x, y, widths[j], h, "FD")
			} else {
				r.pdf.Rect(x, y, widths[j], h, "D")
			}
			r.pdf.SetXY(x+1, y+1)
			r.pdf.MultiCell(widths[j]-2, tableLineH, r.tr(cell), "", "L", false)
			x += widths[j]
		}
		r.pdf.SetXY(10, y+h)
	}
	r.pdf.SetFillColor(255, 255, 255)
	r.pdf.Ln(3)
	r.updateFont()
}

// rowFill shades the header grey and rows whose last cell reads "invalid" red.
func (r *pdfRenderer) rowFill(i int, row []string) []int {
	switch {
	case i == 0:
		return []int{230, 230, 230}
	case len(row) > 0 && row[len(row)-1] == "invalid":
		return []int{255, 199, 206}
	}
	return nil
}

// columnWidths sizes columns to their widest cell, then scales them to the page.
func (r *pdfRenderer) columnWidths(rows [][]string, cols int) []float64 {
	widths := make([]float64, cols)
	r.pdf.SetFont("Arial", "B", tableFont)
	for _, row := range rows {
		for j := 0; j < cols && j < len(row); j++ {
			widths[j] = max(widths[j], r.pdf.GetStringWidth(r.tr(row[j]))+4)
		}
	}
	total := 0.0
	for j := range widths {
		widths[j] = min(max(widths[j], 12), pageWidth/2)
		total += widths[j]
	}
	if total > pageWidth || total < pageWidth*0.6 {
		scale := pageWidth / total
		if total < pageWidth*0.6 {
			scale = min(scale, 1.5)
		}
		for j := range widths {
			widths[j] *= scale
		}
	}
	return widths
}
