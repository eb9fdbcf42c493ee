package formz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// SchemaEngine validates field values against an OpenAPI object schema.
// Each schema property constrains the field of the same name; fields listed
// in the schema's required set must be present and non-nil.
//
// Example schema document:
//
//	{
//	    "type": "object",
//	    "required": ["email"],
//	    "properties": {
//	        "email": {"type": "string", "format": "email"},
//	        "age":   {"type": "integer", "minimum": 0}
//	    }
//	}
type SchemaEngine struct {
	schema *openapi3.Schema
}

// NewSchemaEngine parses a JSON schema document describing an object with
// per-field property schemas.
func NewSchemaEngine(doc []byte) (*SchemaEngine, error) {
	var schema openapi3.Schema
	if err := json.Unmarshal(doc, &schema); err != nil {
		return nil, fmt.Errorf("schema engine: parse schema: %w", err)
	}
	if len(schema.Properties) == 0 {
		return nil, errors.New("schema engine: schema has no properties")
	}
	return &SchemaEngine{schema: &schema}, nil
}

// Validate checks required fields and each present field value against its
// property schema.
func (e *SchemaEngine) Validate(_ context.Context, values Values) (Errors, error) {
	result := Errors{}

	for _, name := range e.schema.Required {
		if v, ok := values[name]; !ok || v == nil {
			result[name] = "required"
		}
	}

	for name, ref := range e.schema.Properties {
		if _, done := result[name]; done {
			continue
		}
		if ref == nil || ref.Value == nil {
			continue
		}
		v, ok := values[name]
		if !ok || v == nil {
			continue
		}
		if err := ref.Value.VisitJSON(normalizeJSON(v)); err != nil {
			result[name] = schemaMessage(err)
		}
	}

	if len(result) == 0 {
		return nil, nil
	}
	return result, nil
}

// normalizeJSON converts Go integer values to float64, the representation
// the schema visitor expects for JSON numbers.
func normalizeJSON(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}

// schemaMessage extracts a short reason from a schema validation error.
func schemaMessage(err error) string {
	var serr *openapi3.SchemaError
	if errors.As(err, &serr) && serr.Reason != "" {
		return serr.Reason
	}
	return err.Error()
}
