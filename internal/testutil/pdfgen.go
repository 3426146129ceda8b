// Package testutil builds small PDF fixtures for tests.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/require"
)

// Text is one string drawn at a baseline position, in points from the top-left corner.
type Text struct {
	X, Y float64
	S    string
	Size float64
}

// Page is the text drawn on one page.
type Page []Text

// BuildPDF renders pages with the Helvetica core font and returns the PDF bytes.
func BuildPDF(t testing.TB, pages ...Page) []byte {
	t.Helper()
	doc := fpdf.New("P", "pt", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	for _, page := range pages {
		doc.AddPage()
		for _, txt := range page {
			size := txt.Size
			if size == 0 {
				size = 10
			}
			doc.SetFont("Helvetica", "", size)
			doc.Text(txt.X, txt.Y, tr(txt.S))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

// WritePDF writes BuildPDF output into dir and returns its path.
func WritePDF(t testing.TB, dir, name string, pages ...Page) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, BuildPDF(t, pages...), 0o644))
	return path
}

// Row lays out cells left to right at the given x positions on one baseline.
func Row(y float64, xs []float64, cells ...string) []Text {
	out := make([]Text, 0, len(cells))
	for i, c := range cells {
		if c == "" || i >= len(xs) {
			continue
		}
		out = append(out, Text{X: xs[i], Y: y, S: c})
	}
	return out
}
