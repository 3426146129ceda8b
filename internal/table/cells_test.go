package table

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/invoice-analyst/internal/entity"
	"github.com/joseph-ayodele/invoice-analyst/internal/template"
)

func TestBuildRowCells_ByPosition(t *testing.T) {
	cfg := invoiceTemplate().Table
	runs := line(0, 130, []float64{10, 80, 120, 200, 262, 320, 400},
		"R001", "Vis", "inox  M4", "2", "3,50", "7,00", "EUR")

	got := BuildRowCells(runs, columnXs, cfg, ColumnTolerance)
	assert.Equal(t, []string{"R001", "Vis inox M4", "2", "3,50", "7,00 EUR"}, got)
}

func TestBuildRowCells_SkipChars(t *testing.T) {
	cfg := invoiceTemplate().Table
	cfg.SkipChars = []string{"|"}
	runs := line(0, 130, []float64{10, 60, 80, 200}, "R001", " | ", "Vis", "2")

	got := BuildRowCells(runs, columnXs, cfg, ColumnTolerance)
	assert.Equal(t, []string{"R001", "Vis", "2", "", ""}, got)
}

func TestBuildRowCells_DataDrivenBoundaries(t *testing.T) {
	positions := []float64{10, 50, 90}
	runs := line(0, 10, []float64{10, 70}, "A", "B")

	cfg := template.TableConfig{}
	assert.Equal(t, []string{"A", "", "B"}, BuildRowCells(runs, positions, cfg, ColumnTolerance))

	cfg.UseDataDrivenBoundaries = true
	assert.Equal(t, []string{"A", "B", ""}, BuildRowCells(runs, positions, cfg, ColumnTolerance))

	wide := []float64{10, 100, 200}
	runs = line(0, 10, []float64{10, 160}, "A", "B")
	assert.Equal(t, []string{"A", "", "B"}, BuildRowCells(runs, wide, cfg, ColumnTolerance), "wide gaps keep the midpoint")
}

func TestBuildRowCells_SingleString(t *testing.T) {
	cfg := template.TableConfig{ColumnCharOffsets: []int{0, 8, 16, 24}}
	runs := []entity.TextRun{
		{Text: "A1", X: 12, Y: 10},
		{Text: fmt.Sprintf("%-8s%-8s%-8s%s", "A1", "Bolt", "12", "4,50"), X: 10, Y: 10},
	}
	got := BuildRowCells(runs, []float64{10, 60, 110, 160}, cfg, ColumnTolerance)
	assert.Equal(t, []string{"A1", "Bolt", "12", "4,50"}, got)
}

func TestBuildRowCells_Empty(t *testing.T) {
	assert.Equal(t, []string{"", ""}, BuildRowCells(nil, []float64{1, 2}, template.TableConfig{}, ColumnTolerance))
	assert.Empty(t, BuildRowCells(line(0, 1, []float64{1}, "x"), nil, template.TableConfig{}, ColumnTolerance))
}

func TestParseTextBasedRow_VariantPrependsEmptyCell(t *testing.T) {
	positions := []float64{10, 58, 106, 154}
	variants := []template.ColumnVariant{{Offsets: []int{0, 8, 20}, DetectPattern: `REF\d+$`}}

	got := ParseTextBasedRow("REF123  Widget  10", positions, 10, []int{0, 8, 16, 24}, variants, template.RescueFirstEmpty)
	assert.Len(t, got, 4)
	assert.Equal(t, []string{"", "REF123", "Widget 10", ""}, got)

	got = ParseTextBasedRow("XYZ999  Widget  10", positions, 10, []int{0, 8, 16, 24}, variants, template.RescueFirstEmpty)
	assert.Equal(t, []string{"XYZ999", "Widget", "10", ""}, got, "no variant matches")
}

func TestParseTextBasedRow_VariantWithDefaultOffsets(t *testing.T) {
	offsets := []int{0, 8, 16, 24}
	variants := []template.ColumnVariant{{Offsets: offsets, DetectPattern: `\d{4}`}}
	text := fmt.Sprintf("%-8s%-8s%-8s%s", "1234", "Nut", "3", "0,20")

	got := ParseTextBasedRow(text, []float64{0, 1, 2, 3}, 0, offsets, variants, template.RescueFirstEmpty)
	assert.Equal(t, []string{"1234", "Nut", "3", "0,20"}, got)
}

func TestParseTextBasedRow_RoundTrip(t *testing.T) {
	offsets := []int{0, 6, 20, 44, 52}
	rows := [][]string{
		{"A1", "3017620422003", "Pâte à tartiner", "4", "12,90"},
		{"B22", "", "Eau minérale 6x1,5L", "", "3,10"},
		{"C333", "40000417", "Café moulu", "10", ""},
	}
	positions := []float64{0, 1, 2, 3, 4}
	for _, cells := range rows {
		text := fmt.Sprintf("%-6s%-14s%-24s%-8s%s", cells[0], cells[1], cells[2], cells[3], cells[4])
		got := ParseTextBasedRow(text, positions, 0, offsets, nil, template.RescueNone)
		assert.Equal(t, cells, got, text)
	}
}

func TestParseTextBasedRow_DefaultOffsetsFromPositions(t *testing.T) {
	got := ParseTextBasedRow("ab  cdef  gh", []float64{100, 104, 110}, 100, nil, nil, template.RescueFirstEmpty)
	assert.Equal(t, []string{"ab", "cdef", "gh"}, got)
}

func TestParseTextBasedRow_NumericRescue(t *testing.T) {
	offsets := []int{0, 6, 12, 40, 48}
	positions := []float64{0, 1, 2, 3, 4}
	text := "A1    EAN1  Chair 12,50 blue 3.5"

	got := ParseTextBasedRow(text, positions, 0, offsets, nil, template.RescueFirstEmpty)
	assert.Equal(t, []string{"A1", "EAN1", "Chair blue", "12,50", "3.5"}, got)

	got = ParseTextBasedRow(text, positions, 0, offsets, nil, template.RescueNone)
	assert.Equal(t, []string{"A1", "EAN1", "Chair 12,50 blue 3.5", "", ""}, got)

	got = ParseTextBasedRow("ab  cd 1,5  x", []float64{0, 4, 12}, 0, nil, nil, template.RescueFirstEmpty)
	assert.Equal(t, []string{"ab", "cd 1,5", "x"}, got, "no rescue without explicit offsets")
}

func TestRescueNumbers(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "adjacent decimals",
			in:   []string{"R1", "", "Widget 1,5 11,5", "", "", ""},
			want: []string{"R1", "", "Widget", "1,5", "11,5", ""},
		},
		{
			name: "shorter number inside a longer one is kept whole",
			in:   []string{"R1", "", "Widget 11,5 1,5", "", "", ""},
			want: []string{"R1", "", "Widget", "11,5", "1,5", ""},
		},
		{
			name: "glued to a word",
			in:   []string{"R1", "", "Lot 2x1,5 kg", "", ""},
			want: []string{"R1", "", "Lot 2x1,5 kg", "", ""},
		},
		{
			name: "filled cells are skipped",
			in:   []string{"R1", "", "Vis 0.75 2,40", "3", ""},
			want: []string{"R1", "", "Vis", "3", "0.75"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells := slices.Clone(tt.in)
			rescueNumbers(cells)
			assert.Equal(t, tt.want, cells)
		})
	}
}

func TestParseTextBasedRow_PadsToPositions(t *testing.T) {
	got := ParseTextBasedRow("A1", []float64{0, 1, 2, 3}, 0, []int{0, 4}, nil, template.RescueFirstEmpty)
	assert.Equal(t, []string{"A1", "", "", ""}, got)
}

func TestSelectColumnOffsets(t *testing.T) {
	def := []int{0, 14, 30}
	variants := []template.ColumnVariant{
		{Offsets: []int{0, 12}, DetectPattern: `\d{13}`},
		{Offsets: def, DetectPattern: `[A-Z]+\d+`},
	}

	got, prepend := selectColumnOffsets("3017620422003 Nutella", def, variants)
	assert.Equal(t, []int{0, 12}, got)
	assert.True(t, prepend)

	got, prepend = selectColumnOffsets("AB12    Vis", def, variants)
	assert.Equal(t, def, got)
	assert.False(t, prepend)

	got, prepend = selectColumnOffsets("   ", def, variants)
	assert.Equal(t, def, got)
	assert.False(t, prepend)
}
