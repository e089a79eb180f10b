package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/faktur-tracker/constants"
)

// BuildInvoiceJSONSchema returns the JSON-Schema for a confirmed invoice as a generic map.
func BuildInvoiceJSONSchema() map[string]any {
	props := map[string]any{
		"id":          map[string]any{"type": "string"},
		"direction":   map[string]any{"type": "string", "enum": []string{string(constants.Inbound), string(constants.Outbound)}},
		"date":        map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}`},
		"description": map[string]any{"type": "string"},
		"tax_id":      map[string]any{"type": "string", "pattern": `^(\d{2}\.\d{3}\.\d{3}\.\d-\d{3}\.\d{3})?$`},
		"name":        map[string]any{"type": "string"},
		"serial":      map[string]any{"type": "string", "pattern": `^\d{3}\.\d{3}-\d{2}\.\d{6,8}$`},
		"tax_base":    decimalProp(),
		"vat":         decimalProp(),
		"created_at":  map[string]any{"type": "string"},
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   []string{"direction", "date", "serial", "tax_base", "vat"},
	}
}

func decimalProp() map[string]any {
	return map[string]any{
		"type":    "string",
		"pattern": `^\d+(\.\d+)?$`,
	}
}

var (
	invoiceSchemaOnce sync.Once
	invoiceSchema     *jsonschema.Schema
	invoiceSchemaErr  error
)

// ValidateInvoiceJSON validates a serialized Invoice.
func ValidateInvoiceJSON(data []byte) error {
	invoiceSchemaOnce.Do(func() {
		invoiceSchema, invoiceSchemaErr = compileSchema(BuildInvoiceJSONSchema())
	})
	if invoiceSchemaErr != nil {
		return invoiceSchemaErr
	}
	return validate(invoiceSchema, data)
}

func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
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

func validate(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
