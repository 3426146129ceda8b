package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/invoice-analyst/constants"
)

func TestValidator_Run(t *testing.T) {
	inv := Invoice{
		Metadata: []Field{
			{Name: constants.FieldSupplierName, Value: "LEFORT DISTRIBUTION"},
			{Name: constants.FieldTaxesAmount, Value: ""},
		},
		Articles: []Article{
			article("R404", "Inconnu", "1", "PCE", "1", "1"),
			article("R001", "Vis inox M4", "3.50", "PCE", "2", "7.00"),
			article("R002", "Ecrou M4", "1.00", "PCE", "1", "9,00"),
		},
	}

	rep := NewValidator(nil).Run(invoiceRuns(), inv, true)
	assert.Len(t, rep.Metadata, 2)
	assert.Len(t, rep.Articles, 2)
	assert.Equal(t, 1, rep.Invalid)
	assert.Equal(t, map[string]string{constants.FieldSupplierName: "#3399ff"}, rep.Colors.MetadataColors)
	assert.Equal(t, []string{"#00ff00", "#00ff00", "#ff0000"}, rep.Colors.ArticleColors, "article order, unlocated ones valid")
	assert.NotEmpty(t, rep.Lines)

	rep = NewValidator(nil).Run(invoiceRuns(), inv, false)
	assert.Empty(t, rep.Lines)
}

func TestColorMapping(t *testing.T) {
	inv := Invoice{Articles: []Article{article("R002", "Ecrou M4", "1.00", "PCE", "1", "1,00")}}
	cm := ColorMapping(invoiceRuns(), inv)
	assert.Equal(t, []string{"#00ff00"}, cm.ArticleColors)
	assert.Empty(t, cm.MetadataColors)
}
