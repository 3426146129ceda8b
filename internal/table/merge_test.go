package table

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-analyst/internal/common"
	"github.com/joseph-ayodele/invoice-analyst/internal/entity"
)

func newTestExtractor(buf *bytes.Buffer) *Extractor {
	return NewExtractor(DefaultOptions(), slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

func TestExtractAndMerge_TwoPageInvoice(t *testing.T) {
	runs := append(invoicePage(0, 1, 20), invoicePage(1, 21, 5)...)
	var logs bytes.Buffer

	res, err := newTestExtractor(&logs).ExtractAndMerge(runs, invoiceTemplate())
	require.NoError(t, err)

	assert.Equal(t, 15.0, res.RowHeight)
	require.Len(t, res.Instances, 2)
	assert.Len(t, res.Instances[0].Rows, 20)
	assert.Len(t, res.Instances[1].Rows, 5)
	assert.Empty(t, res.Dropped)

	merged := res.Merged
	require.Len(t, merged.Rows, 25)
	for i, row := range merged.Rows {
		assert.Equal(t, fmt.Sprintf("R%03d", i+1), row.Cells[0])
		assert.Len(t, row.Cells, len(merged.Headers))
	}
	assert.Equal(t, 0, merged.Rows[19].Page)
	assert.Equal(t, 1, merged.Rows[20].Page)
	assert.Equal(t, 0, merged.Page)
	assert.Equal(t, 180.0, merged.EndY, "last row of the last merged instance")
	assert.Contains(t, logs.String(), "table.merge.ok")
}

func TestExtractAndMerge_FooterStopsInstance(t *testing.T) {
	runs := invoicePage(0, 1, 2)
	runs = append(runs, line(0, 150, []float64{200, 320}, "Total général", "14,00")...)
	runs = append(runs, line(0, 165, columnXs, "R999", "Hors table", "1", "1,00", "1,00")...)

	res, err := NewExtractor(DefaultOptions(), nil).ExtractAndMerge(runs, invoiceTemplate())
	require.NoError(t, err)
	assert.Equal(t, []string{"R001", "R002"}, refs(res.Merged.Rows))
}

func TestDetectAll_SkipsPagesWithoutTable(t *testing.T) {
	cover := []entity.TextRun{
		{Text: "LEFORT DISTRIBUTION", X: 10, Y: 30, Page: 0},
		{Text: "Conditions générales", X: 10, Y: 60, Page: 0},
	}
	runs := append(cover, invoicePage(1, 1, 3)...)
	var logs bytes.Buffer

	tables := newTestExtractor(&logs).DetectAll(runs, invoiceTemplate(), 15)
	require.Len(t, tables, 1)
	assert.Equal(t, 1, tables[0].Page)
	assert.Contains(t, logs.String(), "table.detect.skipped")
	assert.Contains(t, logs.String(), ReasonNoAnchor)
}

func TestExtractAndMerge_NoTable(t *testing.T) {
	runs := []entity.TextRun{{Text: "LEFORT", X: 10, Y: 10}}
	_, err := NewExtractor(DefaultOptions(), nil).ExtractAndMerge(runs, invoiceTemplate())
	assert.ErrorIs(t, err, common.ErrNoTableFound)
}

func region(page int, headers []string, refs ...string) entity.TableRegion {
	r := entity.TableRegion{Headers: headers, ColumnPositions: columnXs, Page: page, StartY: 115}
	for i, ref := range refs {
		r.Rows = append(r.Rows, entity.TableRow{Cells: []string{ref}, Y: 120 + float64(i), Page: page})
	}
	return r
}

func TestMerge(t *testing.T) {
	headers := []string{"Ref", "Désignation", "Qté", "Prix", "Total"}
	noisy := []string{"REF", "Designation", "Qte", "Prix (€)", "Total"}
	other := []string{"Code", "Libellé", "Nb", "PU", "Montant"}

	merged, dropped, err := Merge([]entity.TableRegion{
		region(0, headers, "a", "b"),
		region(1, other, "x"),
		region(2, noisy, "c"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, refs(merged.Rows))
	assert.Equal(t, headers, merged.Headers)
	assert.Equal(t, []Dropped{{Page: 1, Headers: other}}, dropped)

	_, _, err = Merge(nil)
	assert.ErrorIs(t, err, common.ErrNoTableFound)
}

func TestMerge_Associative(t *testing.T) {
	headers := []string{"Ref", "Désignation", "Qté", "Prix", "Total"}
	a := region(0, headers, "a1", "a2")
	b := region(1, []string{"Ref.", "DESIGNATION", "Qte", "Prix", "Total"}, "b1")
	c := region(2, headers, "c1", "c2", "c3")

	ab, _, err := Merge([]entity.TableRegion{a, b})
	require.NoError(t, err)
	abThenC, _, err := Merge([]entity.TableRegion{ab, c})
	require.NoError(t, err)
	all, _, err := Merge([]entity.TableRegion{a, b, c})
	require.NoError(t, err)

	assert.Equal(t, all.Rows, abThenC.Rows)
	assert.Equal(t, []string{"a1", "a2", "b1", "c1", "c2", "c3"}, refs(all.Rows))
}

func TestMerge_DoesNotAliasInputs(t *testing.T) {
	a := region(0, []string{"Ref"}, "a")
	merged, _, err := Merge([]entity.TableRegion{a})
	require.NoError(t, err)
	merged.Rows[0].Cells = []string{"changed"}
	merged.Headers[0] = "changed"
	assert.Equal(t, "a", a.Rows[0].Cells[0])
	assert.Equal(t, "Ref", a.Headers[0])
}

func TestNormalizeCells(t *testing.T) {
	assert.Equal(t, []string{"a", "", ""}, normalizeCells([]string{"a"}, 3))
	assert.Equal(t, []string{"a", "b c"}, normalizeCells([]string{"a", "b", "", "c"}, 2))
	assert.Equal(t, []string{"a", "b"}, normalizeCells([]string{"a", "b"}, 2))
}
