package pdftext

import (
	"math"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/invoice-analyst/internal/entity"
)

const (
	baselineTolerance = 0.5
	// Glyphs from fonts without a Widths array report zero width.
	fallbackWidthRatio = 0.5
)

type pendingRun struct {
	text     strings.Builder
	x        float64
	baseline float64
	size     float64
	font     string
	end      float64
	lastX    float64
	lastW    float64
}

func (p *pendingRun) accepts(g pdf.Text, gapFactor float64) bool {
	if g.Font != p.font || math.Abs(g.FontSize-p.size) > 0.01 {
		return false
	}
	if math.Abs(g.Y-p.baseline) > baselineTolerance {
		return false
	}
	// Zero-advance glyph streams keep the same X for every glyph.
	if p.lastW == 0 && math.Abs(g.X-p.lastX) < 0.01 {
		return true
	}
	gap := g.X - p.end
	limit := gapFactor * p.size
	return gap <= limit && gap >= -limit
}

func (p *pendingRun) add(g pdf.Text) {
	w := glyphWidth(g)
	if p.lastW == 0 && p.text.Len() > 0 && math.Abs(g.X-p.lastX) < 0.01 {
		p.end += w
	} else {
		p.end = g.X + w
	}
	p.lastX = g.X
	p.lastW = g.W
	p.text.WriteString(g.S)
}

func glyphWidth(g pdf.Text) float64 {
	if g.W > 0 {
		return g.W
	}
	return g.FontSize * fallbackWidthRatio
}

// mergeGlyphs joins per-glyph output into styled runs and flips y to a top-left origin.
func mergeGlyphs(glyphs []pdf.Text, page int, height, gapFactor float64) []entity.TextRun {
	var (
		out []entity.TextRun
		cur *pendingRun
	)
	flush := func() {
		if cur == nil {
			return
		}
		if text := strings.TrimSpace(cur.text.String()); text != "" {
			top := height - (cur.baseline + cur.size)
			out = append(out, entity.TextRun{
				Text: text,
				X:    cur.x,
				Y:    top,
				Page: page,
				BBox: &entity.BBox{X0: cur.x, Y0: top, X1: cur.end, Y1: height - cur.baseline},
			})
		}
		cur = nil
	}

	for _, g := range glyphs {
		if g.S == "\n" || g.S == "\r" {
			flush()
			continue
		}
		if cur != nil && !cur.accepts(g, gapFactor) {
			flush()
		}
		if cur == nil {
			cur = &pendingRun{x: g.X, baseline: g.Y, size: g.FontSize, font: g.Font, lastX: g.X}
		}
		cur.add(g)
	}
	flush()
	return out
}
