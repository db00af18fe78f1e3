package template

import (
	"fmt"
	"strings"

	"workloadgen/internal/core"
)

// GenerateDocument walks spec, a document shape straight out of a
// workload file's `Document:` block, and returns a fresh copy with
// every string value resolved: a whole-value "${func(...)}" is
// replaced by a freshly evaluated built-in, and anything else goes
// through Substitute so "${varName}" and "${env:VAR}" still work
// inside document fields. Called once per iteration — e.g. by the
// Insert actor's RunIterations body — so a document with "${uuid()}"
// gets a distinct value on every insert, rather than being evaluated
// once and reused across the whole phase.
//
// Numbers, bools, and nils pass through unchanged. Nested maps and
// slices are walked recursively so generators work at any depth, not
// just top level.
func GenerateDocument(spec map[string]any, vars core.Variables) (map[string]any, error) {
	out := make(map[string]any, len(spec))
	for k, v := range spec {
		generated, err := generateValue(v, vars)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = generated
	}
	return out, nil
}

func generateValue(v any, vars core.Variables) (any, error) {
	switch val := v.(type) {
	case string:
		if result, matched, err := evalFunction(asFunctionCall(val)); matched {
			if err != nil {
				return nil, err
			}
			return result, nil
		}
		return Substitute(val, vars)
	case map[string]any:
		return GenerateDocument(val, vars)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			generated, err := generateValue(elem, vars)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = generated
		}
		return out, nil
	default:
		return v, nil
	}
}

// asFunctionCall strips a string value's surrounding "${" "}" if
// present, so "${uuid()}" reaches evalFunction as "uuid()". A string
// without that wrapper yields "", which evalFunction reports as no
// match, so a bare "uuid()" stays literal text.
func asFunctionCall(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return s[2 : len(s)-1]
	}
	return ""
}
