package constants

import "strings"

// FileTypes holds the document formats the extractor accepts.
var FileTypes = []string{"PDF"}

// AllowedExtensions holds the default allowed file extensions for invoice ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// TemplateExtensions holds the extensions recognised as supplier templates.
var TemplateExtensions = map[string]string{
	"yaml": "yaml",
	"yml":  "yaml",
	"toml": "toml",
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Output artifact names written next to each processed document.
const (
	TableMarkdownFile = "table.md"
	InfoMarkdownFile  = "info.md"
	InvoiceJSONFile   = "invoice.json"
	ValidationFile    = "validation.json"
	AnnotatedPDFFile  = "annotated.pdf"
	WorkbookFile      = "invoice.xlsx"
	ReviewPDFFile     = "review.pdf"
)
