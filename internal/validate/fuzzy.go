// Package validate re-locates values claimed by the structuring service in the
// positioned text and reports the ones that cannot be confirmed.
package validate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/joseph-ayodele/invoice-analyst/internal/textnorm"
)

const (
	similarityThreshold = 0.60
	tokenOverlapMin     = 0.8
	floatTolerance      = 1e-2
)

var numericOnly = regexp.MustCompile(`^[\d.,]+$`)

// Field is one claimed key/value pair.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func normalize(s string) string {
	return strings.ToLower(textnorm.Collapse(s))
}

// FieldMatch reports whether value can be found in line, tolerating OCR noise.
// It tries, in order: substring, substring with '.' and ',' swapped either way, a similarity
// ratio above 0.60 for values that are not purely numeric, and word overlap
// above 0.8.
func FieldMatch(value, line string) bool {
	if strings.TrimSpace(value) == "" || strings.TrimSpace(line) == "" {
		return false
	}
	search, block := normalize(value), normalize(line)

	if strings.Contains(block, search) {
		return true
	}
	if strings.Contains(block, strings.ReplaceAll(search, ".", ",")) ||
		strings.Contains(block, strings.ReplaceAll(search, ",", ".")) {
		return true
	}
	if !numericOnly.MatchString(search) && SimilarityRatio(search, block) > similarityThreshold {
		return true
	}
	return tokenOverlap(search, block) > tokenOverlapMin
}

func tokenOverlap(search, block string) float64 {
	want := map[string]struct{}{}
	for _, t := range strings.Fields(search) {
		want[t] = struct{}{}
	}
	have := map[string]struct{}{}
	for _, t := range strings.Fields(block) {
		have[t] = struct{}{}
	}
	common := 0
	for t := range want {
		if _, ok := have[t]; ok {
			common++
		}
	}
	return float64(common) / float64(max(len(want), 1))
}

// SimilarityRatio is the Ratcliff/Obershelp ratio 2*M/T over characters,
// where M is the size of the matching blocks and T the total length of both
// strings. No junk heuristic is applied.
func SimilarityRatio(a, b string) float64 {
	return difflib.NewMatcherWithJunk(chars(a), chars(b), false, nil).Ratio()
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// FloatEqual reports whether both strings parse as decimals (comma read as a
// dot) within 1e-2 of each other.
func FloatEqual(a, b string) bool {
	fa, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(a), ",", "."), 64)
	if err != nil {
		return false
	}
	fb, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(b), ",", "."), 64)
	if err != nil {
		return false
	}
	d := fa - fb
	if d < 0 {
		d = -d
	}
	return d < floatTolerance
}
