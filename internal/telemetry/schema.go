package telemetry

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed sample_schema.json
var sampleSchemaJSON []byte

const schemaURL = "https://printwatch.dev/schemas/sample.schema.json"

// CompileSampleSchema compiles the embedded JSON Schema for telemetry
// samples. Used by strict consumers to reject malformed lines with a
// real diagnostic instead of silently skipping them.
func CompileSampleSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(sampleSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded sample schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to register sample schema: %w", err)
	}

	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile sample schema: %w", err)
	}
	return schema, nil
}

// ValidateLine checks one raw JSON line against the sample schema.
func ValidateLine(schema *jsonschema.Schema, line []byte) error {
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(line))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("sample failed schema validation: %w", err)
	}
	return nil
}
