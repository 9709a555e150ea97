package extract

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/dgallion1/susdigest/internal/report"
)

// compileSchema builds the record validator.
func compileSchema(strict bool) (*jsonschema.Schema, error) {
	b, err := json.Marshal(report.JSONSchema(strict))
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("record.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("record.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// decodeRecord validates obj and converts it to a Record.
func decodeRecord(schema *jsonschema.Schema, obj map[string]any) (report.Record, error) {
	var rec report.Record
	if err := schema.Validate(obj); err != nil {
		return rec, newError(ErrInvalid, err)
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return rec, newError(ErrInvalid, err)
	}
	if err := json.Unmarshal(b, &rec); err != nil {
		return rec, newError(ErrInvalid, err)
	}
	return rec, nil
}

// ValidateJSON checks one raw record object against the schema, e.g. a row
// of a JSON table before it is loaded.
func ValidateJSON(data []byte, strict bool) error {
	schema, err := compileSchema(strict)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("record does not match schema: %w", err)
	}
	return nil
}
