// Package textnorm holds the small string normalizations shared by the table
// analyzer, the renderers and the validator.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Collapse trims s and replaces every whitespace sequence with one space.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FoldAccents strips combining marks, so "Désignation" becomes "Designation".
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// ReplaceNBSP turns no-break spaces into plain spaces.
func ReplaceNBSP(s string) string {
	return strings.NewReplacer("\u00a0", " ", "\u202f", " ").Replace(s)
}

// SliceRunes returns the characters of r in [start, end), clamped to its length.
// An empty string is returned when start is past the end.
func SliceRunes(r []rune, start, end int) string {
	if start < 0 {
		start = 0
	}
	if start >= len(r) {
		return ""
	}
	if end > len(r) || end < 0 {
		end = len(r)
	}
	if end <= start {
		return ""
	}
	return string(r[start:end])
}
