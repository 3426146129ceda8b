package table

import (
	"math"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/invoice-analyst/internal/entity"
	"github.com/joseph-ayodele/invoice-analyst/internal/template"
	"github.com/joseph-ayodele/invoice-analyst/internal/textnorm"
)

// embeddedNumber finds decimals sitting inside the designation text.
var embeddedNumber = regexp.MustCompile(`\b\d+[,.]\d+\b`)

const (
	designationCell = 2
	firstFieldWidth = 20
)

// BuildRowCells assigns the runs of one row to columns. A row made only of
// runs at the first column is a single string and is sliced by character
// offsets instead.
func BuildRowCells(runs []entity.TextRun, positions []float64, cfg template.TableConfig, tolerance float64) []string {
	if len(runs) == 0 || len(positions) == 0 {
		return make([]string, len(positions))
	}

	filtered := make([]entity.TextRun, 0, len(runs))
	for _, r := range runs {
		if !slices.Contains(cfg.SkipChars, strings.TrimSpace(r.Text)) {
			filtered = append(filtered, r)
		}
	}

	inFirst := func(r entity.TextRun) bool { return math.Abs(r.X-positions[0]) < tolerance }

	var longest *entity.TextRun
	firstCount := 0
	for i := range filtered {
		if !inFirst(filtered[i]) {
			continue
		}
		firstCount++
		if longest == nil || utf8.RuneCountInString(filtered[i].Text) > utf8.RuneCountInString(longest.Text) {
			longest = &filtered[i]
		}
	}
	if firstCount > 0 && firstCount == len(filtered) {
		return ParseTextBasedRow(longest.Text, positions, positions[0], cfg.ColumnCharOffsets, cfg.ColumnOffsetVariants, cfg.Rescue())
	}

	bounds := boundaries(sortByX(filtered), positions, cfg.UseDataDrivenBoundaries)
	cells := make([][]entity.TextRun, len(positions))
	for _, r := range filtered {
		if inFirst(r) {
			cells[0] = append(cells[0], r)
			continue
		}
		assigned := false
		for i := 1; i < len(positions); i++ {
			var in bool
			if i == 1 {
				in = r.X > positions[0] && r.X < bounds[1]
			} else {
				in = r.X >= bounds[i-1] && r.X < bounds[i]
			}
			if in {
				cells[i] = append(cells[i], r)
				assigned = true
				break
			}
		}
		if !assigned && r.X >= positions[len(positions)-1] {
			cells[len(cells)-1] = append(cells[len(cells)-1], r)
		}
	}

	out := make([]string, len(cells))
	for i, c := range cells {
		if len(c) > 0 {
			out[i] = textnorm.Collapse(joinRunText(sortByX(c)))
		}
	}
	return out
}

// boundaries returns the right edge of every column; the last one is +Inf.
// Narrow gaps may take their edge from the runs observed between the columns.
func boundaries(sorted []entity.TextRun, positions []float64, dataDriven bool) []float64 {
	out := make([]float64, 0, len(positions))
	for i := 0; i+1 < len(positions); i++ {
		cur, next := positions[i], positions[i+1]
		b := (cur + next) / 2
		if dataDriven && next-cur < NarrowColumnGap {
			var xs []float64
			for _, r := range sorted {
				if r.X > cur && r.X < next {
					xs = append(xs, r.X)
				}
			}
			switch len(xs) {
			case 0:
			case 1:
				b = (xs[0] + next) / 2
			default:
				b = (xs[0] + xs[len(xs)-1]) / 2
			}
		}
		out = append(out, b)
	}
	return append(out, math.Inf(1))
}

// ParseTextBasedRow slices a single-string row into cells by character
// offsets. Without explicit offsets they come from the column positions
// relative to baseX. The result has at least len(positions) cells.
func ParseTextBasedRow(text string, positions []float64, baseX float64, offsets []int, variants []template.ColumnVariant, policy template.RescuePolicy) []string {
	explicit := len(offsets) > 0
	if !explicit {
		offsets = make([]int, len(positions))
		for i, p := range positions {
			offsets[i] = int(p - baseX)
		}
	}

	prepend := false
	if explicit && len(variants) > 0 {
		offsets, prepend = selectColumnOffsets(text, offsets, variants)
	}

	chars := []rune(text)
	cells := make([]string, 0, len(offsets)+1)
	if prepend {
		cells = append(cells, "")
	}
	for i, start := range offsets {
		end := len(chars)
		if i+1 < len(offsets) {
			end = offsets[i+1]
		}
		cells = append(cells, textnorm.Collapse(textnorm.SliceRunes(chars, start, end)))
	}

	if explicit && len(cells) > designationCell && policy == template.RescueFirstEmpty {
		rescueNumbers(cells)
	}

	for len(cells) < len(positions) {
		cells = append(cells, "")
	}
	return cells
}

// selectColumnOffsets picks the first variant whose pattern matches the row's
// leading word. A variant with different offsets means a column is absent from
// this row, so the caller prepends an empty cell.
func selectColumnOffsets(text string, offsets []int, variants []template.ColumnVariant) ([]int, bool) {
	width := firstFieldWidth
	if len(offsets) > 1 {
		width = offsets[1]
	}
	var firstWord string
	if fields := strings.Fields(textnorm.SliceRunes([]rune(text), 0, width)); len(fields) > 0 {
		firstWord = fields[0]
	}
	for _, v := range variants {
		re, err := template.MatchPrefix(v.DetectPattern)
		if err != nil || !re.MatchString(firstWord) {
			continue
		}
		return v.Offsets, !slices.Equal(v.Offsets, offsets)
	}
	return offsets, false
}

// rescueNumbers moves decimals embedded in the designation into the first
// empty cells to its right, in order. Only the matched spans are cut out.
func rescueNumbers(cells []string) {
	designation := cells[designationCell]
	spans := embeddedNumber.FindAllStringIndex(designation, -1)
	if len(spans) == 0 {
		return
	}
	nums := make([]string, len(spans))
	var rest strings.Builder
	last := 0
	for i, sp := range spans {
		nums[i] = designation[sp[0]:sp[1]]
		rest.WriteString(designation[last:sp[0]])
		rest.WriteByte(' ')
		last = sp[1]
	}
	rest.WriteString(designation[last:])
	cells[designationCell] = textnorm.Collapse(rest.String())

	idx := designationCell + 1
	for _, n := range nums {
		for idx < len(cells) && cells[idx] != "" {
			idx++
		}
		if idx >= len(cells) {
			return
		}
		cells[idx] = n
		idx++
	}
}
