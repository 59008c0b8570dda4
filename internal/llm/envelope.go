package llm

import (
	"encoding/json"
	"fmt"
)

// envelopeKey is the property that carries an array-rooted payload when the
// target API only accepts object-rooted structured output.
const envelopeKey = "items"

// objectRooted returns a definition whose root is an object. Array-rooted
// definitions are wrapped as {"items": <def>}; the bool reports whether a
// wrap happened.
func objectRooted(def map[string]any) (map[string]any, bool) {
	if t, _ := def["type"].(string); t == "object" {
		return def, false
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			envelopeKey: def,
		},
		"required":             []any{envelopeKey},
		"additionalProperties": false,
	}, true
}

// unwrapEnvelope extracts the wrapped payload from {"items": ...}. Content
// that is not a JSON object is returned unchanged so that validation reports
// it against the caller's schema.
func unwrapEnvelope(content json.RawMessage) (json.RawMessage, error) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(content, &env); err != nil {
		return content, nil
	}
	inner, ok := env[envelopeKey]
	if !ok {
		return nil, &ErrInvalidResponse{
			Content: content,
			Err:     fmt.Errorf("missing %q in structured output", envelopeKey),
		}
	}
	return inner, nil
}
