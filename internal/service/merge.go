package service

import (
	"encoding/json"
	"fmt"
)

// Patch is a shallow set of caller-supplied field overrides, decoded straight
// from a request body.
type Patch map[string]json.RawMessage

// mergeJSON overlays patch onto base field-by-field (shallow) and decodes the
// result back into the typed value. Unknown fields in the patch are dropped by
// the final decode; immutable fields are re-forced by callers afterwards.
func mergeJSON[T any](base T, patch Patch) (T, error) {
	var out T

	raw, err := json.Marshal(base)
	if err != nil {
		return out, fmt.Errorf("encode base: %w", err)
	}

	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &merged); err != nil {
		return out, fmt.Errorf("decode base: %w", err)
	}
	for field, value := range patch {
		merged[field] = value
	}

	raw, err = json.Marshal(merged)
	if err != nil {
		return out, fmt.Errorf("encode merged: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode merged: %w", err)
	}
	return out, nil
}
