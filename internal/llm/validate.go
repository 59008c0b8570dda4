package llm

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// schemaCache caches compiled JSON schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// SchemaViolation reports generated JSON that parsed but does not match the
// requested schema. It travels on Response.SchemaErr and never fails a call.
type SchemaViolation struct {
	Schema string
	Err    error
}

func (e *SchemaViolation) Error() string {
	return fmt.Sprintf("response does not match schema %q: %v", e.Schema, e.Err)
}

func (e *SchemaViolation) Unwrap() error { return e.Err }

// checkResponse is the second decode stage: the generated text pulled out of
// the provider envelope must parse as JSON, or the call fails with
// *ErrInvalidResponse. Schema conformance is checked as well, but a mismatch
// only comes back as a *SchemaViolation for the caller to report. Nothing is
// checked when schema is nil.
func checkResponse(schema *Schema, raw json.RawMessage) (*SchemaViolation, error) {
	if schema == nil {
		return nil, nil
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &ErrInvalidResponse{
			Content: raw,
			Err:     err,
		}
	}

	compiled, err := getCompiledSchema(schema)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", schema.Name, err)
	}

	if err := compiled.Validate(parsed); err != nil {
		return &SchemaViolation{Schema: schema.Name, Err: err}, nil
	}

	return nil, nil
}

// getCompiledSchema returns a cached compiled schema or compiles and caches it.
func getCompiledSchema(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants generic JSON values (float64 numbers, []any), so
	// round-trip the Go literal map through encoding/json.
	defBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(schemaURL, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}

	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(schema.Name, compiled)
	return compiled, nil
}
