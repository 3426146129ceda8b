package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/joseph-ayodele/invoice-analyst/constants"
	"github.com/joseph-ayodele/invoice-analyst/internal/entity"
	"github.com/joseph-ayodele/invoice-analyst/internal/llm"
	"github.com/joseph-ayodele/invoice-analyst/internal/validate"
)

func sampleDocument() Document {
	inv := &llm.StructuredInvoice{
		InvoiceNumber: "F-2025-001",
		InvoiceDate:   "2025-03-05",
		Supplier:      llm.Supplier{Name: "Lefort Distribution"},
		Totals:        llm.Totals{TotalHT: "1028,75", TVA: "205,75", TotalTTC: "1234,50"},
		Articles: []llm.ArticleFields{
			{Reference: "R001", Designation: "Vis inox", Quantity: "2", UnitPrice: "3,50", Total: "7,00"},
			{Reference: "R002", Designation: "Ecrou | M6", Quantity: "10", UnitPrice: "0,20", Total: "2,00"},
			{Reference: "R404", Designation: "Absent"},
		},
	}
	rep := &validate.Report{
		Articles: []validate.ArticleMatch{
			{Reference: "R001", Index: 0, Valid: true},
			{
				HighlightMatch: entity.HighlightMatch{
					Page: 0,
					Discrepancies: map[string]entity.Discrepancy{
						constants.ArticleTotal: {Extractor: "2,00", PDF: "2,50"},
					},
				},
				Reference: "R002", Index: 1, Valid: false,
			},
		},
		Colors: validate.ColorMap{
			MetadataColors: map[string]string{constants.FieldInvoiceNumber: "#ff7f00"},
			ArticleColors:  []string{"#00ff00", "#ff0000", "#00ff00"},
		},
		Invalid: 1,
	}
	return Document{
		Name:     "lefort.pdf",
		Supplier: "Lefort",
		Status:   constants.StatusOK,
		Table: &entity.TableRegion{
			Headers: []string{"Reference", "Désignation", "Total"},
			Rows: []entity.TableRow{
				{Cells: []string{"R001", "Vis inox", "7,00"}, Page: 0},
				{Cells: []string{"R002", "Ecrou M6", "2,50"}, Page: 1},
			},
		},
		Invoice: inv,
		Report:  rep,
	}
}

func TestArticleStatus(t *testing.T) {
	d := sampleDocument()
	assert.Equal(t, "valid", d.ArticleStatus(0))
	assert.Equal(t, "invalid", d.ArticleStatus(1))
	assert.Equal(t, "not located", d.ArticleStatus(2))

	_, ok := d.ArticleMatch(2)
	assert.False(t, ok)

	d.Report = nil
	assert.Equal(t, "", d.ArticleStatus(0))
}

func TestWorkbookXLSX(t *testing.T) {
	failed := Document{Name: "scan.pdf", Status: constants.StatusNoTemplate, Error: constants.ErrUnsupportedInvoice}
	b, err := NewService(nil).WorkbookXLSX([]Document{sampleDocument(), failed})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetSummary, SheetArticles, SheetTables}, f.GetSheetList())

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, summaryHeaders, summary[0])
	assert.Equal(t, "lefort.pdf", summary[1][0])
	assert.Equal(t, "Lefort Distribution", summary[1][1])
	assert.Equal(t, "OK", summary[1][2])
	assert.Equal(t, "F-2025-001", summary[1][3])
	assert.Equal(t, "1234,50", summary[1][7])
	assert.Equal(t, "3", summary[1][9])
	assert.Equal(t, "1", summary[1][10])
	assert.Equal(t, "NO_TEMPLATE", summary[2][2])
	assert.Equal(t, constants.ErrUnsupportedInvoice, summary[2][11])

	articles, err := f.GetRows(SheetArticles)
	require.NoError(t, err)
	require.Len(t, articles, 4)
	assert.Equal(t, "R002", articles[2][1])
	assert.Equal(t, "invalid", articles[2][9])
	assert.Equal(t, "not located", articles[3][9])

	style, err := f.GetCellStyle(SheetArticles, "A3")
	require.NoError(t, err)
	assert.NotZero(t, style)
	plain, err := f.GetCellStyle(SheetArticles, "A2")
	require.NoError(t, err)
	assert.NotEqual(t, style, plain)

	tables, err := f.GetRows(SheetTables)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(tables), 3)
	assert.Equal(t, []string{"File", "Page", "Reference", "Désignation", "Total"}, tables[0])
	assert.Equal(t, []string{"lefort.pdf", "2", "R002", "Ecrou M6", "2,50"}, tables[2])
}

func TestWorkbookXLSX_Empty(t *testing.T) {
	b, err := NewService(nil).WorkbookXLSX(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

// tablesOf parses md and returns the header row of every table in it.
func tablesOf(t *testing.T, md string) [][]string {
	t.Helper()
	source := []byte(md)
	doc := goldmark.New(goldmark.WithExtensions(extension.Table)).Parser().Parse(text.NewReader(source))
	var out [][]string
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if tbl, ok := n.(*extast.Table); ok && entering {
			out = append(out, tableRows(tbl, source)[0])
		}
		return ast.WalkContinue, nil
	})
	require.NoError(t, err)
	return out
}

func TestReviewMarkdown(t *testing.T) {
	md := ReviewMarkdown(sampleDocument())

	assert.Contains(t, md, "# Review: lefort.pdf")
	assert.Contains(t, md, "**Status:** OK | **Template:** Lefort")
	assert.Contains(t, md, "1 of 3 articles could not be confirmed.")
	assert.Contains(t, md, `Ecrou \| M6`)
	assert.Contains(t, md, "**R002** (page 1)")
	assert.Contains(t, md, "#ff7f00")

	tables := tablesOf(t, md)
	require.Len(t, tables, 3)
	assert.Equal(t, []string{"Field", "Value", "Colour"}, tables[0])
	assert.Equal(t, "Validation", tables[1][5])
	assert.Equal(t, []string{"Reference", "Désignation", "Total"}, tables[2])
}

func TestReviewMarkdown_FailedDocument(t *testing.T) {
	md := ReviewMarkdown(Document{Name: "x.pdf", Status: constants.StatusNoTable, Error: "no table found"})
	assert.Contains(t, md, "**Status:** NO_TABLE\n")
	assert.Contains(t, md, "**Error:** no table found")
	assert.NotContains(t, md, "## Articles")
	assert.Empty(t, tablesOf(t, md))
}

func TestReviewPDF(t *testing.T) {
	s := NewService(nil)
	b, err := s.ReviewPDF(ReviewMarkdown(sampleDocument()), "lefort.pdf")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))

	b, err = s.ReviewPDF("", "empty")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
}
