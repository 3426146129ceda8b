package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Required top-level keys of a structuring response.
const (
	KeyInvoiceNumber = "Numéro de facture"
	KeyInvoiceDate   = "Date facture"
	KeySupplier      = "Information fournisseur"
	KeyPackageCount  = "Nombre de colis"
	KeyTotals        = "Total"
	KeyArticles      = "articles"
)

// BuildInvoiceJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// Amounts are accepted as numbers or strings; nulls are allowed on optional values.
func BuildInvoiceJSONSchema() map[string]any {
	article := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"Reference":     scalarProp(),
			"Désignation":   scalarProp(),
			"Packaging":     scalarProp(),
			"Quantité":      scalarProp(),
			"Prix Unitaire": scalarProp(),
			"Total":         scalarProp(),
			"Marque":        scalarProp(),
			"Catégorie":     scalarProp(),
		},
	}
	props := map[string]any{
		KeyInvoiceNumber: map[string]any{"type": []string{"string", "number"}},
		KeyInvoiceDate:   map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
		KeySupplier: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"nom":     map[string]any{"type": "string", "minLength": 1},
				"adresse": scalarProp(),
			},
			"required": []string{"nom"},
		},
		KeyPackageCount: scalarProp(),
		KeyTotals: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"total_ht":  scalarProp(),
				"tva":       scalarProp(),
				"total_ttc": scalarProp(),
			},
			"required": []string{"total_ht", "tva", "total_ttc"},
		},
		KeyArticles: map[string]any{"type": "array", "items": article},
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   []string{KeyInvoiceNumber, KeyInvoiceDate, KeySupplier, KeyTotals, KeyArticles},
	}
}

func scalarProp() map[string]any {
	return map[string]any{"type": []string{"string", "number", "null"}}
}

var (
	invoiceSchemaOnce sync.Once
	invoiceSchema     *jsonschema.Schema
	invoiceSchemaErr  error
)

func compiledInvoiceSchema() (*jsonschema.Schema, error) {
	invoiceSchemaOnce.Do(func() {
		invoiceSchema, invoiceSchemaErr = CompileSchema(BuildInvoiceJSONSchema())
	})
	return invoiceSchema, invoiceSchemaErr
}

// CompileSchema compiles a schema map.
func CompileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	schema, err := CompileSchema(schemaMap)
	if err != nil {
		return err
	}
	return validateWith(schema, data)
}

// ValidateInvoiceJSON validates data against BuildInvoiceJSONSchema.
func ValidateInvoiceJSON(data []byte) error {
	schema, err := compiledInvoiceSchema()
	if err != nil {
		return err
	}
	return validateWith(schema, data)
}

func validateWith(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
