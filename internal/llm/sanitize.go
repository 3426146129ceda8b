package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/joseph-ayodele/invoice-analyst/constants"
	"github.com/joseph-ayodele/invoice-analyst/internal/textnorm"
)

// StripCodeFences removes a surrounding ``` or ```json fence from a model reply.
func StripCodeFences(content string) string {
	s := strings.TrimSpace(content)
	if rest, ok := strings.CutPrefix(s, "```json"); ok {
		s = strings.TrimLeft(rest, " \t\r\n")
	} else if rest, ok := strings.CutPrefix(s, "```"); ok {
		s = strings.TrimLeft(rest, " \t\r\n")
	}
	if rest, ok := strings.CutSuffix(s, "```"); ok {
		s = strings.TrimRight(rest, " \t\r\n")
	}
	return strings.TrimSpace(s)
}

var (
	topLevelKeys = map[string]string{
		"numero de facture":        KeyInvoiceNumber,
		"numero facture":           KeyInvoiceNumber,
		"date facture":             KeyInvoiceDate,
		"date de facture":          KeyInvoiceDate,
		"information fournisseur":  KeySupplier,
		"informations fournisseur": KeySupplier,
		"fournisseur":              KeySupplier,
		"nombre de colis":          KeyPackageCount,
		"total":                    KeyTotals,
		"totaux":                   KeyTotals,
		"articles":                 KeyArticles,
	}
	articleKeys = map[string]string{
		"reference":     constants.ArticleReference,
		"designation":   constants.ArticleDesignation,
		"packaging":     constants.ArticlePackaging,
		"quantite":      constants.ArticleQuantity,
		"prix unitaire": constants.ArticleUnitPrice,
		"total":         constants.ArticleTotal,
		"marque":        constants.ArticleBrand,
		"brand":         constants.ArticleBrand,
		"categorie":     constants.ArticleCategory,
		"category":      constants.ArticleCategory,
	}
	// markdownArticleColumns is the column order asked for when articles come back as a table.
	markdownArticleColumns = []string{
		constants.ArticleReference,
		constants.ArticleDesignation,
		constants.ArticlePackaging,
		constants.ArticleQuantity,
		constants.ArticleUnitPrice,
		constants.ArticleTotal,
		constants.ArticleBrand,
		constants.ArticleCategory,
	}
	reSeparatorCell = regexp.MustCompile(`^:?-{3,}:?$`)
)

func foldKey(k string) string {
	k = strings.ReplaceAll(k, "_", " ")
	return strings.ToLower(textnorm.Collapse(textnorm.FoldAccents(k)))
}

// NormalizeAndSanitizeJSON
// - Renames key variants (accents, case, underscores) to the response keys
// - Drops unknown top-level keys and null optionals
// - Normalizes the invoice date to YYYY-MM-DD
// - Accepts a bare supplier name and an articles markdown table
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)
	out := make(map[string]any, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		v := m[k]
		canon, ok := topLevelKeys[foldKey(k)]
		if !ok {
			dropped = append(dropped, k+"(unknown)")
			continue
		}
		if canon != k {
			dropped = append(dropped, k+"->"+canon)
		}
		// don't overwrite an exact key with a variant
		if _, exists := out[canon]; exists && canon != k {
			continue
		}
		out[canon] = v
	}

	if v, ok := out[KeyPackageCount]; ok && isBlank(v) {
		delete(out, KeyPackageCount)
		dropped = append(dropped, KeyPackageCount+"(empty)")
	}

	if s, ok := out[KeyInvoiceDate].(string); ok {
		if t, err := ParseInvoiceDate(s); err == nil {
			out[KeyInvoiceDate] = t.Format("2006-01-02")
		}
	}

	switch sup := out[KeySupplier].(type) {
	case string:
		out[KeySupplier] = map[string]any{"nom": strings.TrimSpace(sup)}
	case map[string]any:
		fixed := map[string]any{}
		for k, v := range sup {
			switch foldKey(k) {
			case "nom", "name":
				fixed["nom"] = v
			case "adresse", "address":
				fixed["adresse"] = v
			}
		}
		out[KeySupplier] = fixed
	}

	if tot, ok := out[KeyTotals].(map[string]any); ok {
		fixed := map[string]any{}
		for k, v := range tot {
			switch key := strings.ReplaceAll(foldKey(k), " ", "_"); key {
			case "total_ht", "tva", "total_ttc":
				fixed[key] = v
			}
		}
		out[KeyTotals] = fixed
	}

	switch arts := out[KeyArticles].(type) {
	case string:
		out[KeyArticles] = articlesFromMarkdown(arts)
		dropped = append(dropped, KeyArticles+"(markdown)")
	case []any:
		fixed := make([]any, 0, len(arts))
		for _, a := range arts {
			obj, ok := a.(map[string]any)
			if !ok {
				dropped = append(dropped, KeyArticles+"(item type)")
				continue
			}
			fixed = append(fixed, normalizeArticle(obj))
		}
		out[KeyArticles] = fixed
	case nil:
		if _, present := out[KeyArticles]; present {
			out[KeyArticles] = []any{}
		}
	}

	b, err := json.Marshal(out)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.structure.normalize_sanitize", "dropped", dropped)
	}
	return b, dropped, nil
}

func normalizeArticle(obj map[string]any) map[string]any {
	out := make(map[string]any, len(obj))
	for _, k := range slices.Sorted(maps.Keys(obj)) {
		canon, ok := articleKeys[foldKey(k)]
		if !ok {
			continue
		}
		if _, exists := out[canon]; exists && canon != k {
			continue
		}
		out[canon] = obj[k]
	}
	return out
}

// articlesFromMarkdown reads pipe table rows in markdownArticleColumns order.
// Header and separator rows are skipped.
func articlesFromMarkdown(s string) []any {
	var out []any
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "|") {
			continue
		}
		cells := strings.Split(strings.Trim(line, "|"), "|")
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		if len(cells) == 0 || reSeparatorCell.MatchString(cells[0]) || foldKey(cells[0]) == "reference" {
			continue
		}
		art := map[string]any{}
		for i, name := range markdownArticleColumns {
			if i < len(cells) && cells[i] != "" {
				art[name] = cells[i]
			}
		}
		out = append(out, art)
	}
	if out == nil {
		out = []any{}
	}
	return out
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		s := strings.TrimSpace(t)
		return s == "" || strings.EqualFold(s, "null")
	}
	return false
}
