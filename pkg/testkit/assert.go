package testkit

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

// AssertJSONSubset fails t unless every value in expected is present and
// equal in actual. Objects are compared key by key, arrays element by
// element with equal length.
func AssertJSONSubset(t testing.TB, expected, actual []byte) bool {
	t.Helper()
	var exp, act any
	if err := json.Unmarshal(expected, &exp); err != nil {
		t.Errorf("expected body is not valid JSON: %v", err)
		return false
	}
	if err := json.Unmarshal(actual, &act); err != nil {
		t.Errorf("response is not valid JSON: %v\nbody: %s", err, actual)
		return false
	}
	diffs := subsetDiff("", exp, act)
	if len(diffs) > 0 {
		t.Errorf("response body mismatch:\n%s\nbody: %s", strings.Join(diffs, "\n"), actual)
		return false
	}
	return true
}

func subsetDiff(path string, exp, act any) []string {
	switch e := exp.(type) {
	case map[string]any:
		a, ok := act.(map[string]any)
		if !ok {
			return []string{fmt.Sprintf("  %s: expected object, got %T", label(path), act)}
		}
		var diffs []string
		for k, ev := range e {
			av, exists := a[k]
			if !exists {
				diffs = append(diffs, fmt.Sprintf("  %s.%s: missing", label(path), k))
				continue
			}
			diffs = append(diffs, subsetDiff(path+"."+k, ev, av)...)
		}
		return diffs
	case []any:
		a, ok := act.([]any)
		if !ok {
			return []string{fmt.Sprintf("  %s: expected array, got %T", label(path), act)}
		}
		if len(e) != len(a) {
			return []string{fmt.Sprintf("  %s: expected %d elements, got %d", label(path), len(e), len(a))}
		}
		var diffs []string
		for i := range e {
			diffs = append(diffs, subsetDiff(fmt.Sprintf("%s[%d]", path, i), e[i], a[i])...)
		}
		return diffs
	default:
		if !reflect.DeepEqual(exp, act) {
			return []string{fmt.Sprintf("  %s:\n    - %v\n    + %v", label(path), exp, act)}
		}
		return nil
	}
}

func label(path string) string {
	if path == "" {
		return "$"
	}
	return "$" + path
}
