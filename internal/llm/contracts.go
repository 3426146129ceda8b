package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/invoice-analyst/constants"
)

// Value is a scalar from the structuring response. Models return amounts as
// numbers or strings; both decode to their literal text, null decodes to "".
type Value string

func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*v = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Value(strings.TrimSpace(s))
	case len(b) > 0 && (b[0] == '-' || (b[0] >= '0' && b[0] <= '9')):
		*v = Value(b)
	case bytes.Equal(b, []byte("true")) || bytes.Equal(b, []byte("false")):
		*v = Value(b)
	default:
		return fmt.Errorf("value: unsupported json %s", b)
	}
	return nil
}

func (v Value) String() string { return string(v) }

// Supplier is the "Information fournisseur" block.
type Supplier struct {
	Name    Value `json:"nom"`
	Address Value `json:"adresse,omitempty"`
}

// Totals is the "Total" block.
type Totals struct {
	TotalHT  Value `json:"total_ht"`
	TVA      Value `json:"tva"`
	TotalTTC Value `json:"total_ttc"`
}

// ArticleFields is one line item as returned by the structuring service.
type ArticleFields struct {
	Reference   Value `json:"Reference"`
	Designation Value `json:"Désignation"`
	Packaging   Value `json:"Packaging"`
	Quantity    Value `json:"Quantité"`
	UnitPrice   Value `json:"Prix Unitaire"`
	Total       Value `json:"Total"`
	Brand       Value `json:"Marque,omitempty"`
	Category    Value `json:"Catégorie,omitempty"`
}

// Map returns the article keyed by the constants.Article* names, empty values included.
func (a ArticleFields) Map() map[string]string {
	return map[string]string{
		constants.ArticleReference:   a.Reference.String(),
		constants.ArticleDesignation: a.Designation.String(),
		constants.ArticlePackaging:   a.Packaging.String(),
		constants.ArticleQuantity:    a.Quantity.String(),
		constants.ArticleUnitPrice:   a.UnitPrice.String(),
		constants.ArticleTotal:       a.Total.String(),
		constants.ArticleBrand:       a.Brand.String(),
		constants.ArticleCategory:    a.Category.String(),
	}
}

// StructuredInvoice is the normalized shape we want from the structuring service.
type StructuredInvoice struct {
	InvoiceNumber Value           `json:"Numéro de facture"`
	InvoiceDate   Value           `json:"Date facture"` // YYYY-MM-DD after sanitizing
	Supplier      Supplier        `json:"Information fournisseur"`
	PackageCount  Value           `json:"Nombre de colis,omitempty"`
	Totals        Totals          `json:"Total"`
	Articles      []ArticleFields `json:"articles"`
}

// Metadata returns the invoice-level values keyed by the constants.Field* names.
func (s StructuredInvoice) Metadata() map[string]string {
	return map[string]string{
		constants.FieldSupplierName:      s.Supplier.Name.String(),
		constants.FieldInvoiceDate:       s.InvoiceDate.String(),
		constants.FieldInvoiceNumber:     s.InvoiceNumber.String(),
		constants.FieldTotalAmount:       s.Totals.TotalTTC.String(),
		constants.FieldTaxesAmount:       s.Totals.TVA.String(),
		constants.FieldTotalWithoutTaxes: s.Totals.TotalHT.String(),
	}
}

// invoiceDateLayouts are tried in order; day-first layouts are common on EU invoices.
var invoiceDateLayouts = []string{"2006-1-2", "2-1-2006", "2/1/2006", "2006/1/2"}

// ParseInvoiceDate accepts Y-m-d, d-m-Y, d/m/Y and Y/m/d.
func ParseInvoiceDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range invoiceDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid invoice date %q", s)
}

type StructureRequest struct {
	InfoMarkdown    string
	TableMarkdown   string
	KnownBrands     []string
	KnownCategories []string

	// Supplier and FilePath are only used for logging.
	Supplier string
	FilePath string
}

// Structurer is the interface our pipeline depends on.
type Structurer interface {
	Structure(ctx context.Context, req StructureRequest) (StructuredInvoice, []byte /*rawJSON*/, error)
}
