package llm

import (
	"fmt"
	"os"
	"strings"
)

// DefaultPrompt asks for one JSON object built from the two markdown renderings.
// Placeholders: {info_markdown}, {table_markdown}, {known_brands}, {known_categories}.
// Literal braces are written doubled, as {{ and }}.
const DefaultPrompt = `This is the text of a supplier invoice, split in two parts.

Invoice information (everything outside the articles table):

{info_markdown}

Articles table:

{table_markdown}

Your tasks are:
1. Extract and clean only the following invoice information:
- Invoice number (Numéro de facture)
- Invoice date (Date facture), formatted YYYY-MM-DD
- Supplier information (Information fournisseur: name and address, usually located at the top of the first page)
- Number of packages (Nombre de colis)
- Total price (Total: total_ht, tva, total_ttc, usually located at the end of the last page)

2. Extract and clean every row of the articles table. For each article:
- Reference (string)
- Désignation (string)
- Packaging (integer)
- Quantité (integer)
- Prix Unitaire (decimal, price in euros)
- Total (decimal, price in euros)
- Marque: the brand found in the designation. Prefer one of the known brands: {known_brands}. Otherwise use null.
- Catégorie: a category based on the designation. Prefer one of the known categories: {known_categories}.

Copy numbers exactly as printed; do not recompute totals.

Return a single valid JSON object with this structure:
{{
  "Numéro de facture": ...,
  "Date facture": ...,
  "Information fournisseur": {{"nom": ..., "adresse": ...}},
  "Nombre de colis": ...,
  "Total": {{"total_ht": ..., "tva": ..., "total_ttc": ...}},
  "articles": [{{"Reference": ..., "Désignation": ..., "Packaging": ..., "Quantité": ..., "Prix Unitaire": ..., "Total": ..., "Marque": ..., "Catégorie": ...}}]
}}
Do not include any extra commentary or explanation.`

// LoadPrompt reads a prompt template, falling back to DefaultPrompt when path is empty.
func LoadPrompt(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultPrompt, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("prompt template: %w", err)
	}
	return string(b), nil
}

// BuildPrompt fills the template placeholders. Lists are comma-joined and an
// empty list is rendered as "None".
func BuildPrompt(tpl string, req StructureRequest) string {
	r := strings.NewReplacer(
		"{{", "{",
		"}}", "}",
		"{info_markdown}", req.InfoMarkdown,
		"{table_markdown}", req.TableMarkdown,
		"{known_brands}", joinOrNone(req.KnownBrands),
		"{known_categories}", joinOrNone(req.KnownCategories),
	)
	return r.Replace(tpl)
}

func joinOrNone(list []string) string {
	if len(list) == 0 {
		return "None"
	}
	return strings.Join(list, ", ")
}
