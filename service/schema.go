package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Aashish23092/tax-form-engine/dto"
)

var rawDocumentSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"filename": map[string]any{"type": "string"},
		"text":     map[string]any{"type": "string"},
		"key_values": map[string]any{
			"type":                 "object",
			"additionalProperties": map[string]any{"type": "string"},
		},
		"numeric_tokens": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
	"anyOf": []any{
		map[string]any{"required": []any{"text"}},
		map[string]any{"required": []any{"key_values"}},
	},
}

var amountSchema = map[string]any{
	"type":    []any{"string", "number"},
	"pattern": `^\d+(\.\d+)?$`,
	"minimum": 0,
}

var documentsSchema = map[string]any{
	"type":     "array",
	"minItems": 1,
	"items":    rawDocumentSchema,
}

var requestSchemas = map[string]map[string]any{
	"extraction.json": {
		"type":     "object",
		"required": []any{"documents"},
		"properties": map[string]any{
			"documents": documentsSchema,
		},
	},
	"calculation.json": {
		"type":     "object",
		"required": []any{"documents", "filing_status"},
		"properties": map[string]any{
			"documents":            documentsSchema,
			"filing_status":        map[string]any{"type": "string", "minLength": 1},
			"num_dependents":       map[string]any{"type": "integer", "minimum": 0},
			"education_credits":    amountSchema,
			"earned_income_credit": amountSchema,
			"other_credits":        amountSchema,
		},
	},
	// metadata sent next to multipart uploads: pre-extracted values per file
	"metadata.json": {
		"type":     "object",
		"required": []any{"documents"},
		"properties": map[string]any{
			"documents": map[string]any{
				"type": "array",
				"items": map[string]any{
					"allOf": []any{
						rawDocumentSchema,
						map[string]any{"required": []any{"filename"}},
					},
				},
			},
		},
	},
}

var compiledSchemas = sync.OnceValues(func() (map[string]*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	for name, schema := range requestSchemas {
		b, err := json.Marshal(schema)
		if err != nil {
			return nil, fmt.Errorf("marshal schema %s: %w", name, err)
		}
		if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", name, err)
		}
	}
	out := make(map[string]*jsonschema.Schema, len(requestSchemas))
	for name := range requestSchemas {
		schema, err := compiler.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		out[name] = schema
	}
	return out, nil
})

func validateJSON(name string, data []byte) error {
	schemas, err := compiledSchemas()
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("%w: malformed json: %v", dto.ErrInvalidInput, err)
	}
	if err := schemas[name].Validate(v); err != nil {
		return fmt.Errorf("%w: %v", dto.ErrInvalidInput, err)
	}
	return nil
}

// ParseCalculationRequest validates a JSON calculation body and decodes it.
func ParseCalculationRequest(data []byte) (*dto.CalculationRequest, error) {
	if err := validateJSON("calculation.json", data); err != nil {
		return nil, err
	}
	var req dto.CalculationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrInvalidInput, err)
	}
	return &req, nil
}

// ParseExtractionRequest validates a JSON extraction body and decodes it.
func ParseExtractionRequest(data []byte) (*dto.ExtractionRequest, error) {
	if err := validateJSON("extraction.json", data); err != nil {
		return nil, err
	}
	var req dto.ExtractionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrInvalidInput, err)
	}
	return &req, nil
}

// ParseUploadMetadata validates the metadata field of a multipart upload
// and indexes its documents by filename.
func ParseUploadMetadata(data []byte) (map[string]dto.RawDocument, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]dto.RawDocument{}, nil
	}
	if err := validateJSON("metadata.json", data); err != nil {
		return nil, err
	}
	var meta dto.UploadMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrInvalidInput, err)
	}
	byName := make(map[string]dto.RawDocument, len(meta.Documents))
	for _, doc := range meta.Documents {
		byName[doc.Filename] = doc
	}
	return byName, nil
}
