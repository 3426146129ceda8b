package validate

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/joseph-ayodele/invoice-analyst/constants"
	"github.com/joseph-ayodele/invoice-analyst/internal/entity"
)

const (
	articleRowTolerance = 5.0
	articleRowMaxWidth  = 600.0
)

// Article is one claimed line item, keyed by the constants.Article* names.
type Article map[string]string

// ArticleMatch is the validation of one claimed article against its row.
type ArticleMatch struct {
	entity.HighlightMatch
	Reference  string `json:"reference"`
	Index      int    `json:"index"`
	Occurrence int    `json:"occurrence"`
	Valid      bool   `json:"valid"`
	Warning    string `json:"warning,omitempty"`
}

// ArticleRow is the text found on the line of one reference occurrence.
type ArticleRow struct {
	Page int
	BBox entity.BBox
	Text string
}

type ArticleValidator struct {
	logger *slog.Logger
}

func NewArticleValidator(logger *slog.Logger) *ArticleValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArticleValidator{logger: logger}
}

// Validate pairs every claimed article with an occurrence of its reference, in
// order, and checks its fields against that row. Articles whose reference is
// not on any page yield no match.
func (v *ArticleValidator) Validate(runs []entity.TextRun, articles []Article) []ArticleMatch {
	type group struct {
		ref     string
		indexes []int
	}
	var groups []*group
	byRef := map[string]*group{}
	for i, a := range articles {
		ref := strings.TrimSpace(a[constants.ArticleReference])
		if ref == "" {
			v.logger.Warn("validate.article.no_reference", "index", i)
			continue
		}
		g, ok := byRef[ref]
		if !ok {
			g = &group{ref: ref}
			byRef[ref] = g
			groups = append(groups, g)
		}
		g.indexes = append(g.indexes, i)
	}

	var out []ArticleMatch
	for _, g := range groups {
		rows := FindArticleRows(runs, g.ref)
		if len(rows) == 0 {
			v.logger.Warn("validate.article.not_found", "reference", g.ref)
			continue
		}
		var warning string
		if len(rows) != len(g.indexes) {
			warning = fmt.Sprintf("article %s appears %d times in the extraction but %d times in the document", g.ref, len(g.indexes), len(rows))
			v.logger.Warn("validate.article.count_mismatch", "reference", g.ref, "claimed", len(g.indexes), "found", len(rows))
		}
		for occ, idx := range g.indexes {
			if occ >= len(rows) {
				break
			}
			row := rows[occ]
			valid, disc := ValidateArticleFields(articles[idx], row.Text)
			color := ColorValid
			if !valid {
				color = ColorInvalid
				v.logger.Info("validate.article.invalid", "reference", g.ref, "occurrence", occ+1, "fields", len(disc))
			}
			out = append(out, ArticleMatch{
				HighlightMatch: entity.HighlightMatch{
					FieldName:     fmt.Sprintf("article_%s_%d", g.ref, occ),
					BBox:          row.BBox,
					Page:          row.Page,
					Color:         color,
					Discrepancies: disc,
				},
				Reference:  g.ref,
				Index:      idx,
				Occurrence: occ,
				Valid:      valid,
				Warning:    warning,
			})
		}
	}
	return out
}

// FindArticleRows returns one row per run containing ref, page by page. A row
// is every run whose vertical centre is within 5 of the anchor's and that
// starts within 600 of it, watermark text excluded.
func FindArticleRows(runs []entity.TextRun, ref string) []ArticleRow {
	needle := strings.ToLower(ref)
	var rows []ArticleRow
	for _, page := range entity.Pages(runs) {
		pageRuns := entity.PageRuns(runs, page)
		for _, anchor := range pageRuns {
			if !strings.Contains(strings.ToLower(anchor.Text), needle) {
				continue
			}
			ab := anchor.Box()
			var members []entity.TextRun
			for _, r := range pageRuns {
				b := r.Box()
				if math.Abs(b.MidY()-ab.MidY()) >= articleRowTolerance || strings.Contains(r.Text, constants.DuplicataMarker) {
					continue
				}
				if math.Abs(b.X0-ab.X0) < articleRowMaxWidth {
					members = append(members, r)
				}
			}
			if len(members) == 0 {
				continue
			}
			texts := make([]string, len(members))
			for i, m := range members {
				texts[i] = m.Text
			}
			rows = append(rows, ArticleRow{Page: page, BBox: entity.LineBox(members), Text: strings.Join(texts, " ")})
		}
	}
	return rows
}

// ValidateArticleFields checks each validated field of a against rowText and
// returns the discrepancies of those not found.
func ValidateArticleFields(a Article, rowText string) (bool, map[string]entity.Discrepancy) {
	disc := map[string]entity.Discrepancy{}
	for _, name := range constants.ValidatedArticleFields {
		value := a[name]
		if strings.TrimSpace(value) != "" && FieldMatch(value, rowText) {
			continue
		}
		disc[name] = entity.Discrepancy{Extractor: value, PDF: constants.NotFound}
	}
	return len(disc) == 0, disc
}
