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

var (
	headerSplit = regexp.MustCompile(`\s{2,}`)
	headerPunct = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

// FindStartAnchor returns the y of the first run matching pattern, case-insensitively.
func FindStartAnchor(runs []entity.TextRun, pattern string) (float64, bool) {
	re, err := template.SearchFold(pattern)
	if err != nil {
		return 0, false
	}
	for _, r := range runs {
		if re.MatchString(r.Text) {
			return r.Y, true
		}
	}
	return 0, false
}

// HeaderRegion returns the runs on the header line at startY.
func HeaderRegion(runs []entity.TextRun, startY float64) []entity.TextRun {
	var out []entity.TextRun
	for _, r := range runs {
		if math.Abs(r.Y-startY) < HeaderYTolerance {
			out = append(out, r)
		}
	}
	return out
}

// DetectColumnPositions returns the sorted distinct x of the header line. When
// the whole header is one run, positions come from its text instead: each
// segment separated by two or more spaces starts a column at run.X + offset.
func DetectColumnPositions(runs []entity.TextRun, startY float64) []float64 {
	header := HeaderRegion(runs, startY)
	var xs []float64
	for _, r := range header {
		xs = append(xs, r.X)
	}
	slices.Sort(xs)
	xs = slices.Compact(xs)

	if len(xs) == 1 {
		if offsets := columnsFromText(header[0].Text); len(offsets) > 0 {
			positions := make([]float64, len(offsets))
			for i, off := range offsets {
				positions[i] = xs[0] + off
			}
			return positions
		}
	}
	return xs
}

// columnsFromText returns the character offset of each header segment, or nil
// when the text has a single segment.
func columnsFromText(text string) []float64 {
	parts := headerSplit.Split(strings.TrimSpace(text), -1)
	if len(parts) <= 1 {
		return nil
	}
	var offsets []float64
	from := 0
	for _, part := range parts {
		idx := strings.Index(text[from:], part)
		if idx < 0 {
			continue
		}
		idx += from
		offsets = append(offsets, float64(utf8.RuneCountInString(text[:idx])))
		from = idx + len(part)
	}
	return offsets
}

// IsTextBasedHeader reports whether every header run starts at the first run's x.
func IsTextBasedHeader(headerRuns []entity.TextRun) bool {
	if len(headerRuns) == 0 {
		return false
	}
	x := headerRuns[0].X
	for _, r := range headerRuns {
		if math.Abs(r.X-x) >= TextHeaderTolerance {
			return false
		}
	}
	return true
}

// JoinMultiLineHeaders maps header runs onto column positions. Text-based
// headers cannot be split reliably, so expected is returned as is.
func JoinMultiLineHeaders(headerRuns []entity.TextRun, positions []float64, expected []string) []string {
	if IsTextBasedHeader(headerRuns) {
		return slices.Clone(expected)
	}
	sorted := sortByX(headerRuns)
	headers := make([]string, len(positions))
	for i, x := range positions {
		for _, r := range sorted {
			if math.Abs(r.X-x) < ColumnTolerance {
				headers[i] = r.Text
				break
			}
		}
	}
	return headers
}

func normalizeHeader(s string) string {
	s = headerPunct.ReplaceAllString(strings.ToLower(s), "")
	s = textnorm.FoldAccents(s)
	return strings.ReplaceAll(s, " ", "")
}

// FuzzyMatchHeaders reports whether at least threshold of the columns match
// after dropping punctuation, case, accents and spaces. A column matches when
// either normalized form contains the other.
func FuzzyMatchHeaders(actual, expected []string, threshold float64) bool {
	if len(actual) != len(expected) {
		return false
	}
	if len(expected) == 0 {
		return threshold <= 0
	}
	matches := 0
	for i := range expected {
		a, e := normalizeHeader(actual[i]), normalizeHeader(expected[i])
		if strings.Contains(a, e) || strings.Contains(e, a) {
			matches++
		}
	}
	return float64(matches)/float64(len(expected)) >= threshold
}
