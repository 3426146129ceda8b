package llm

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-analyst/constants"
)

func TestValue_UnmarshalJSON(t *testing.T) {
	var got struct {
		A Value `json:"a"`
		B Value `json:"b"`
		C Value `json:"c"`
		D Value `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 12.50, "b": " 3,5 ", "c": null, "d": -2}`), &got))
	assert.Equal(t, Value("12.50"), got.A, "number literal kept as printed")
	assert.Equal(t, Value("3,5"), got.B)
	assert.Equal(t, Value(""), got.C)
	assert.Equal(t, Value("-2"), got.D)

	assert.Error(t, json.Unmarshal([]byte(`{"a": {"x": 1}}`), &got))
}

func TestParseInvoiceDate(t *testing.T) {
	want := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2025-03-05", "05-03-2025", "05/03/2025", "2025/03/05", "5/3/2025"} {
		got, err := ParseInvoiceDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}
	_, err := ParseInvoiceDate("March 5th")
	assert.Error(t, err)
}

func TestStructuredInvoice_Maps(t *testing.T) {
	inv := StructuredInvoice{
		InvoiceNumber: "F-1",
		InvoiceDate:   "2025-03-05",
		Supplier:      Supplier{Name: "Lefort"},
		Totals:        Totals{TotalHT: "100", TVA: "20", TotalTTC: "120"},
		Articles:      []ArticleFields{{Reference: "R001", Quantity: "2", Brand: "Acme"}},
	}
	md := inv.Metadata()
	assert.Equal(t, "Lefort", md[constants.FieldSupplierName])
	assert.Equal(t, "120", md[constants.FieldTotalAmount])
	assert.Equal(t, "20", md[constants.FieldTaxesAmount])
	assert.Equal(t, "100", md[constants.FieldTotalWithoutTaxes])

	art := inv.Articles[0].Map()
	assert.Equal(t, "R001", art[constants.ArticleReference])
	assert.Equal(t, "2", art[constants.ArticleQuantity])
	assert.Equal(t, "Acme", art[constants.ArticleBrand])
	assert.Equal(t, "", art[constants.ArticleTotal])
}
