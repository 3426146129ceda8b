package validate

import (
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/invoice-analyst/constants"
	"github.com/joseph-ayodele/invoice-analyst/internal/entity"
)

// Invoice is the claimed content to check against the page text.
type Invoice struct {
	Metadata []Field
	Articles []Article
}

// ColorMap gives reviewers one colour per metadata field and per article.
type ColorMap struct {
	MetadataColors map[string]string `json:"metadata_colors"`
	ArticleColors  []string          `json:"article_colors"`
}

// Report is the full validation outcome of one document.
type Report struct {
	Metadata []entity.HighlightMatch `json:"metadata"`
	Articles []ArticleMatch          `json:"articles"`
	Lines    []LineAnnotation        `json:"lines,omitempty"`
	Colors   ColorMap                `json:"colors"`
	Invalid  int                     `json:"invalid_articles"`
}

// Validator runs every check of this package over one document.
type Validator struct {
	articles *ArticleValidator
	logger   *slog.Logger
}

func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{articles: NewArticleValidator(logger), logger: logger}
}

// Run validates inv against runs. Line rules are built from the articles:
// the reference locates the line and the numeric fields must appear on it.
func (v *Validator) Run(runs []entity.TextRun, inv Invoice, annotateLines bool) Report {
	matches := v.articles.Validate(runs, inv.Articles)
	rep := Report{
		Metadata: MetadataMatches(runs, inv.Metadata),
		Articles: matches,
		Colors:   colorMapping(inv, matches),
	}
	for _, m := range matches {
		if !m.Valid {
			rep.Invalid++
		}
	}
	if annotateLines {
		rep.Lines = AnnotateLines(runs, ArticleRules(inv.Articles))
	}
	v.logger.Info("validate.done",
		"metadata_hits", len(rep.Metadata),
		"articles", len(inv.Articles),
		"located", len(matches),
		"invalid", rep.Invalid,
		"lines", len(rep.Lines),
	)
	return rep
}

// ColorMapping returns the colour of every present metadata field and of every
// article, in article order. Articles that could not be located keep the
// valid colour.
func ColorMapping(runs []entity.TextRun, inv Invoice) ColorMap {
	return colorMapping(inv, NewArticleValidator(slog.Default()).Validate(runs, inv.Articles))
}

func colorMapping(inv Invoice, matches []ArticleMatch) ColorMap {
	cm := ColorMap{MetadataColors: map[string]string{}, ArticleColors: make([]string, len(inv.Articles))}
	for _, f := range inv.Metadata {
		if strings.TrimSpace(f.Value) != "" {
			cm.MetadataColors[f.Name] = FieldColor(f.Name).Hex()
		}
	}
	for i := range cm.ArticleColors {
		cm.ArticleColors[i] = ColorValid.Hex()
	}
	for _, m := range matches {
		if m.Index >= 0 && m.Index < len(cm.ArticleColors) {
			cm.ArticleColors[m.Index] = m.Color.Hex()
		}
	}
	return cm
}

// ArticleRules turns articles into line rules keyed on their reference.
func ArticleRules(articles []Article) []LineRule {
	keys := []string{
		constants.ArticleReference,
		constants.ArticleUnitPrice,
		constants.ArticlePackaging,
		constants.ArticleQuantity,
		constants.ArticleTotal,
	}
	var rules []LineRule
	for _, a := range articles {
		ref := strings.TrimSpace(a[constants.ArticleReference])
		if ref == "" {
			continue
		}
		var data []Field
		for _, k := range keys {
			if val := strings.TrimSpace(a[k]); val != "" {
				data = append(data, Field{Name: k, Value: val})
			}
		}
		rules = append(rules, LineRule{Text: ref, Data: data, Color: ColorLineRule})
	}
	return rules
}
