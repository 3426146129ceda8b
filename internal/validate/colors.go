package validate

import (
	"github.com/joseph-ayodele/invoice-analyst/constants"
	"github.com/joseph-ayodele/invoice-analyst/internal/entity"
)

var (
	ColorValid    = entity.RGB{R: 0, G: 1, B: 0}
	ColorInvalid  = entity.RGB{R: 1, G: 0, B: 0}
	ColorDefault  = entity.RGB{R: 0, G: 0, B: 1}
	ColorLineRule = entity.RGB{R: 0, G: 0.5, B: 0}
)

var fieldColors = map[string]entity.RGB{
	constants.FieldSupplierName:      {R: 0.2, G: 0.6, B: 1.0},
	constants.FieldInvoiceDate:       {R: 1.0, G: 0.5, B: 0.0},
	constants.FieldInvoiceNumber:     {R: 0.5, G: 0.0, B: 0.8},
	constants.FieldTotalAmount:       {R: 1.0, G: 0.0, B: 0.0},
	constants.FieldTaxesAmount:       {R: 1.0, G: 0.8, B: 0.0},
	constants.FieldTotalWithoutTaxes: {R: 0.8, G: 0.0, B: 0.4},
}

// FieldColor returns the highlight colour of a metadata field, blue if unknown.
func FieldColor(name string) entity.RGB {
	if c, ok := fieldColors[name]; ok {
		return c
	}
	return ColorDefault
}
