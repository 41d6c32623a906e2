package testkit

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Any matches every present value in an expected response.
const Any = "<any>"

// AssertJSONSubset checks that every key of expected is present in actual
// with an equal value. Objects may carry extra keys; arrays must have the
// same length and are compared element-wise.
func AssertJSONSubset(t *testing.T, name string, expected, actual []byte) bool {
	t.Helper()

	var expVal, actVal any
	if !assert.NoError(t, json.Unmarshal(expected, &expVal), "[%s] expected response is not valid JSON", name) {
		return false
	}
	if !assert.NoError(t, json.Unmarshal(actual, &actVal), "[%s] actual response is not valid JSON\nbody: %s", name, actual) {
		return false
	}

	diffs := DiffJSON("", expVal, actVal)
	return assert.Empty(t, diffs, "[%s] response mismatch:\n%s\nbody: %s", name, strings.Join(diffs, "\n"), actual)
}

// DiffJSON lists the places where actual does not contain expected.
func DiffJSON(path string, expected, actual any) []string {
	if s, ok := expected.(string); ok && s == Any {
		return nil
	}

	var diffs []string
	switch exp := expected.(type) {
	case map[string]any:
		act, ok := actual.(map[string]any)
		if !ok {
			return append(diffs, fmt.Sprintf("  %s: expected object, got %T", keyPath(path), actual))
		}
		for k, ev := range exp {
			p := keyPath(path) + "." + k
			av, exists := act[k]
			if !exists {
				diffs = append(diffs, fmt.Sprintf("  %s: missing in actual", p))
				continue
			}
			diffs = append(diffs, DiffJSON(p, ev, av)...)
		}
	case []any:
		act, ok := actual.([]any)
		if !ok {
			return append(diffs, fmt.Sprintf("  %s: expected array, got %T", keyPath(path), actual))
		}
		if len(exp) != len(act) {
			diffs = append(diffs, fmt.Sprintf("  %s: array length expected=%d actual=%d", keyPath(path), len(exp), len(act)))
		}
		for i := 0; i < len(exp) && i < len(act); i++ {
			diffs = append(diffs, DiffJSON(fmt.Sprintf("%s[%d]", keyPath(path), i), exp[i], act[i])...)
		}
	default:
		if !assert.ObjectsAreEqual(expected, actual) {
			diffs = append(diffs, fmt.Sprintf("  %s:\n    - %v\n    + %v", keyPath(path), expected, actual))
		}
	}
	return diffs
}

func keyPath(path string) string {
	if path == "" {
		return "root"
	}
	return strings.TrimPrefix(path, ".")
}
