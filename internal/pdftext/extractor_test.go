package pdftext

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-analyst/internal/common"
	"github.com/joseph-ayodele/invoice-analyst/internal/entity"
	"github.com/joseph-ayodele/invoice-analyst/internal/testutil"
)

func findRun(runs []entity.TextRun, text string) (entity.TextRun, bool) {
	for _, r := range runs {
		if r.Text == text {
			return r, true
		}
	}
	return entity.TextRun{}, false
}

func TestExtractBytes_PositionsAndPages(t *testing.T) {
	data := testutil.BuildPDF(t,
		testutil.Page{
			{X: 40, Y: 100, S: "FACTURE"},
			{X: 10, Y: 200, S: "Ref"},
			{X: 200, Y: 200, S: "Total"},
		},
		testutil.Page{
			{X: 60, Y: 300, S: "Page deux"},
		},
	)

	runs, err := NewExtractor(Config{}, nil).ExtractBytes(context.Background(), data)
	require.NoError(t, err)
	require.Len(t, runs, 4)

	ref, ok := findRun(runs, "Ref")
	require.True(t, ok)
	assert.InDelta(t, 10, ref.X, 0.01)
	assert.InDelta(t, 190, ref.Y, 0.5) // baseline 200 minus the 10pt font size
	assert.Equal(t, 0, ref.Page)
	require.NotNil(t, ref.BBox)
	assert.Greater(t, ref.BBox.X1, ref.BBox.X0)

	total, ok := findRun(runs, "Total")
	require.True(t, ok)
	assert.InDelta(t, ref.Y, total.Y, 0.01)

	second, ok := findRun(runs, "Page deux")
	require.True(t, ok)
	assert.Equal(t, 1, second.Page)
}

func TestExtractBytes_Idempotent(t *testing.T) {
	data := testutil.BuildPDF(t, testutil.Page{
		{X: 10, Y: 100, S: "A1"},
		{X: 80, Y: 100, S: "Widget"},
		{X: 10, Y: 115, S: "B2  Gadget  3,50"},
	})
	ex := NewExtractor(Config{}, nil)

	first, err := ex.ExtractBytes(context.Background(), data)
	require.NoError(t, err)
	second, err := ex.ExtractBytes(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	single, ok := findRun(first, "B2  Gadget  3,50")
	require.True(t, ok, "a single string keeps its inner spacing")
	assert.InDelta(t, 10, single.X, 0.01)
}

func TestExtractBytes_Accents(t *testing.T) {
	data := testutil.BuildPDF(t, testutil.Page{{X: 10, Y: 100, S: "Désignation"}})
	runs, err := NewExtractor(Config{}, nil).ExtractBytes(context.Background(), data)
	require.NoError(t, err)
	_, ok := findRun(runs, "Désignation")
	assert.True(t, ok)
}

func TestExtract_Errors(t *testing.T) {
	ex := NewExtractor(Config{}, nil)

	_, err := ex.ExtractFile(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDocumentNotFound)

	_, err = ex.ExtractBytes(context.Background(), []byte("definitely not a pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDocumentOpen)

	_, err = ex.ExtractBytes(context.Background(), nil)
	assert.ErrorIs(t, err, common.ErrDocumentOpen)
}

func TestExtractFile(t *testing.T) {
	path := testutil.WritePDF(t, t.TempDir(), "inv.pdf", testutil.Page{{X: 10, Y: 50, S: "hello"}})
	runs, err := NewExtractor(Config{}, nil).ExtractFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "hello", runs[0].Text)
}

func TestPageCount(t *testing.T) {
	data := testutil.BuildPDF(t, testutil.Page{{X: 1, Y: 20, S: "a"}}, testutil.Page{{X: 1, Y: 20, S: "b"}})
	n, err := PageCount(data)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPageHeights(t *testing.T) {
	data := testutil.BuildPDF(t, testutil.Page{{X: 10, Y: 100, S: "A"}}, testutil.Page{{X: 10, Y: 100, S: "B"}})

	heights, err := PageHeights(data, 792)
	require.NoError(t, err)
	require.Len(t, heights, 2)
	for _, h := range heights {
		assert.InDelta(t, 841.89, h, 0.1, "A4 MediaBox")
	}

	_, err = PageHeights([]byte("not a pdf"), 792)
	assert.ErrorIs(t, err, common.ErrDocumentOpen)
}
