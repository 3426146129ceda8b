package constants

// Metadata fields located on the page for highlighting.
const (
	FieldSupplierName      = "supplier_name"
	FieldInvoiceDate       = "invoice_date"
	FieldInvoiceNumber     = "invoice_number"
	FieldTotalAmount       = "total_amount"
	FieldTaxesAmount       = "taxes_amount"
	FieldTotalWithoutTaxes = "total_without_taxes"
)

// MetadataFields lists metadata fields in display order.
var MetadataFields = []string{
	FieldSupplierName,
	FieldInvoiceDate,
	FieldInvoiceNumber,
	FieldTotalAmount,
	FieldTaxesAmount,
	FieldTotalWithoutTaxes,
}

// Article keys as returned by the structuring service.
const (
	ArticleReference   = "Reference"
	ArticleDesignation = "Désignation"
	ArticlePackaging   = "Packaging"
	ArticleQuantity    = "Quantité"
	ArticleUnitPrice   = "Prix Unitaire"
	ArticleTotal       = "Total"
	ArticleBrand       = "Marque"
	ArticleCategory    = "Catégorie"
)

// ValidatedArticleFields are checked against the article row text, in this order.
var ValidatedArticleFields = []string{
	ArticleDesignation,
	ArticleUnitPrice,
	ArticlePackaging,
	ArticleQuantity,
	ArticleTotal,
}

// NotFound is the placeholder recorded when a claimed value is absent from the page.
const NotFound = "NOT FOUND"

// DuplicataMarker excludes watermark text from article rows.
const DuplicataMarker = "Duplicata"
