package export

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
	"unicode/utf16"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/joseph-ayodele/invoice-analyst/internal/entity"
	"github.com/joseph-ayodele/invoice-analyst/internal/pdftext"
	"github.com/joseph-ayodele/invoice-analyst/internal/validate"
)

const (
	annotationTitle   = "invoice-analyst"
	fieldOpacity      = 0.3
	lineOpacity       = 0.2
	noteOpacity       = 0.8
	noteSize          = 18.0
	printAnnotFlag    = 4
	defaultPageHeight = 792.0
)

var noteColor = entity.RGB{R: 1}

// highlight marks one box of the page.
type highlight struct {
	model.Annotation
	color   entity.RGB
	opacity float64
}

func (h highlight) RenderDict(xRefTable *model.XRefTable, pageIndRef *types.IndirectRef) (types.Dict, error) {
	r := h.Rect
	d := annotDict("Highlight", r, h.Contents, h.color, h.opacity, pageIndRef)
	d["QuadPoints"] = types.Array{
		types.Float(r.LL.X), types.Float(r.UR.Y),
		types.Float(r.UR.X), types.Float(r.UR.Y),
		types.Float(r.LL.X), types.Float(r.LL.Y),
		types.Float(r.UR.X), types.Float(r.LL.Y),
	}
	return d, nil
}

// stickyNote is a closed text annotation showing the discrepancies of a row.
type stickyNote struct {
	model.Annotation
}

func (n stickyNote) RenderDict(xRefTable *model.XRefTable, pageIndRef *types.IndirectRef) (types.Dict, error) {
	d := annotDict("Text", n.Rect, n.Contents, noteColor, noteOpacity, pageIndRef)
	d["Name"] = types.Name("Note")
	d["Open"] = types.Boolean(false)
	return d, nil
}

func annotDict(subtype string, r types.Rectangle, contents string, c entity.RGB, opacity float64, pageIndRef *types.IndirectRef) types.Dict {
	d := types.Dict{
		"Type":     types.Name("Annot"),
		"Subtype":  types.Name(subtype),
		"Rect":     r.Array(),
		"C":        types.Array{types.Float(c.R), types.Float(c.G), types.Float(c.B)},
		"CA":       types.Float(opacity),
		"F":        types.Integer(printAnnotFlag),
		"T":        pdfText(annotationTitle),
		"Contents": pdfText(contents),
	}
	if pageIndRef != nil {
		d["P"] = *pageIndRef
	}
	return d
}

// pdfText encodes s as a UTF-16BE text string so accents survive.
func pdfText(s string) types.HexLiteral {
	units := utf16.Encode([]rune(s))
	b := make([]byte, 0, 2+2*len(units))
	b = append(b, 0xFE, 0xFF)
	for _, u := range units {
		b = append(b, byte(u>>8), byte(u))
	}
	return types.HexLiteral(hex.EncodeToString(b))
}

// pageRect converts a top-left box into PDF user space on a page of height h.
func pageRect(b entity.BBox, h float64) types.Rectangle {
	return *types.NewRectangle(b.X0, h-b.Y1, b.X1, h-b.Y0)
}

// AnnotatedPDF returns a copy of src with the validation report drawn on it:
// metadata fields and article rows are highlighted in their colours, rows
// with discrepancies get a sticky note at their top-right corner and checked
// lines are highlighted with their note.
func (s *Service) AnnotatedPDF(src []byte, rep *validate.Report) ([]byte, error) {
	start := time.Now()
	if rep == nil {
		return nil, errors.New("annotate: no validation report")
	}
	heights, err := pdftext.PageHeights(src, defaultPageHeight)
	if err != nil {
		return nil, fmt.Errorf("annotate: %w", err)
	}

	byPage := map[int][]model.AnnotationRenderer{}
	add := func(page int, ar model.AnnotationRenderer) {
		byPage[page+1] = append(byPage[page+1], ar)
	}
	mark := func(page int, box entity.BBox, c entity.RGB, opacity float64, contents string) {
		if page < 0 || page >= len(heights) {
			s.logger.Warn("export.annotate.page_out_of_range", "page", page, "pages", len(heights))
			return
		}
		add(page, highlight{
			Annotation: model.Annotation{SubType: model.AnnHighlight, Rect: pageRect(box, heights[page]), Contents: contents},
			color:      c,
			opacity:    opacity,
		})
	}

	for _, m := range rep.Metadata {
		mark(m.Page, m.BBox, m.Color, fieldOpacity, m.FieldName)
	}
	notes := 0
	for _, m := range rep.Articles {
		mark(m.Page, m.BBox, m.Color, fieldOpacity, m.Reference)
		note := validate.StickyNote(m.Discrepancies)
		if note == "" || m.Page < 0 || m.Page >= len(heights) {
			continue
		}
		h := heights[m.Page]
		top := h - m.BBox.Y0
		add(m.Page, stickyNote{Annotation: model.Annotation{
			SubType:  model.AnnText,
			Rect:     *types.NewRectangle(m.BBox.X1, top-noteSize, m.BBox.X1+noteSize, top),
			Contents: note,
		}})
		notes++
	}
	for _, l := range rep.Lines {
		mark(l.Page, l.BBox, l.Color, lineOpacity, l.Note)
	}

	total := 0
	for _, list := range byPage {
		total += len(list)
	}
	if total == 0 {
		return bytes.Clone(src), nil
	}

	var out bytes.Buffer
	if err := api.AddAnnotationsMap(bytes.NewReader(src), &out, byPage, false, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("annotate: %w", err)
	}
	s.logger.Info("export.annotate.ok",
		"annotations", total,
		"notes", notes,
		"pages", len(byPage),
		"bytes", out.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out.Bytes(), nil
}
