// Package assertion implements the Assertion Evaluator from spec.md §4.4: a
// recursive comparison between a declarative expected shape and an actual
// value, reporting every failure rather than stopping at the first. New
// code — the teacher has no assertion concept — following the pack's
// preference for small value types plus a single exported entry point.
package assertion

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/katonium/testflow/internal/model"
	"github.com/katonium/testflow/internal/resolve"
)

// Result is a single comparison outcome at one dotted path.
type Result struct {
	Field    string `json:"field"`
	Expected any    `json:"expected,omitempty"`
	Actual   any    `json:"actual,omitempty"`
	Passed   bool   `json:"passed"`
	Message  string `json:"message,omitempty"`
}

const (
	tokenShouldNotBeNull  = "shouldNotBeNull"
	tokenShouldBeNull     = "shouldBeNull"
	tokenShouldBeEmpty    = "shouldBeEmpty"
	tokenShouldNotBeEmpty = "shouldNotBeEmpty"
)

// absent is a sentinel distinguishing a missing actual value (no such key,
// no such index) from an explicit JSON null.
type absent struct{}

// Evaluate compares expected against actual, walking both recursively, and
// returns every Result discovered (passed and failed alike). Variable
// references inside expected are resolved against ctx using the same
// placeholder syntax as the Value Resolver.
func Evaluate(expected any, actual any, ctx *model.ExecutionContext) []Result {
	return evalAt("", expected, actual, ctx)
}

// Passed reports whether every Result in results passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

func evalAt(path string, expected any, actual any, ctx *model.ExecutionContext) []Result {
	switch typed := expected.(type) {
	case map[string]any:
		return evalMapping(path, typed, actual, ctx)
	case []any:
		if token, ok := reservedToken(typed); ok {
			return []Result{evalToken(path, token, actual)}
		}
		return evalSequence(path, typed, actual, ctx)
	default:
		return []Result{evalPrimitive(path, typed, actual, ctx)}
	}
}

func reservedToken(expected []any) (string, bool) {
	if len(expected) != 1 {
		return "", false
	}
	s, ok := expected[0].(string)
	if !ok {
		return "", false
	}
	switch s {
	case tokenShouldNotBeNull, tokenShouldBeNull, tokenShouldBeEmpty, tokenShouldNotBeEmpty:
		return s, true
	default:
		return "", false
	}
}

func evalToken(path, token string, actual any) Result {
	var passed bool
	switch token {
	case tokenShouldNotBeNull:
		passed = actual != nil && !isAbsent(actual)
	case tokenShouldBeNull:
		passed = actual == nil || isAbsent(actual)
	case tokenShouldBeEmpty:
		passed = isEmpty(actual)
	case tokenShouldNotBeEmpty:
		passed = !isAbsent(actual) && !isEmpty(actual)
	}
	return Result{
		Field:    path,
		Expected: token,
		Actual:   displayActual(actual),
		Passed:   passed,
	}
}

func isAbsent(v any) bool {
	_, ok := v.(absent)
	return ok
}

func isEmpty(v any) bool {
	if isAbsent(v) {
		return false
	}
	switch typed := v.(type) {
	case string:
		return typed == ""
	case []any:
		return len(typed) == 0
	default:
		return false
	}
}

func evalMapping(path string, expected map[string]any, actual any, ctx *model.ExecutionContext) []Result {
	actualMap, ok := actual.(map[string]any)
	if !ok {
		return []Result{{
			Field:    path,
			Expected: "<mapping>",
			Actual:   displayActual(actual),
			Passed:   false,
			Message:  "expected a mapping",
		}}
	}

	var results []Result
	for key, childExpected := range expected {
		childPath := key
		if path != "" {
			childPath = path + "." + key
		}
		childActual, present := actualMap[key]
		var actualValue any = absent{}
		if present {
			actualValue = childActual
		}
		results = append(results, evalAt(childPath, childExpected, actualValue, ctx)...)
	}
	return results
}

func evalSequence(path string, expected []any, actual any, ctx *model.ExecutionContext) []Result {
	actualSeq, ok := actual.([]any)
	if !ok {
		return []Result{{
			Field:    path,
			Expected: "<sequence>",
			Actual:   displayActual(actual),
			Passed:   false,
			Message:  "expected a sequence",
		}}
	}

	length := len(expected)
	if len(actualSeq) > length {
		length = len(actualSeq)
	}

	var results []Result
	for i := 0; i < length; i++ {
		childPath := fmt.Sprintf("%s[%d]", path, i)

		var childActual any = absent{}
		if i < len(actualSeq) {
			childActual = actualSeq[i]
		}

		if i >= len(expected) {
			// Missing expected element: compared against undefined per
			// spec.md §4.4's "missing elements compared against undefined".
			results = append(results, evalPrimitive(childPath, nil, childActual, ctx))
			continue
		}

		results = append(results, evalAt(childPath, expected[i], childActual, ctx)...)
	}
	return results
}

func evalPrimitive(path string, expected any, actual any, ctx *model.ExecutionContext) Result {
	resolvedExpected := resolveExpected(expected, ctx)

	var actualForCompare any = actual
	if isAbsent(actual) {
		actualForCompare = nil
	}

	passed := valuesEqual(resolvedExpected, actualForCompare)
	return Result{
		Field:    path,
		Expected: resolvedExpected,
		Actual:   displayActual(actual),
		Passed:   passed,
	}
}

// resolveExpected resolves placeholders within a string expected value,
// also recognizing the "[var]" short form that resolves the named variable
// and uses it directly as the expected value (spec.md §4.4).
func resolveExpected(expected any, ctx *model.ExecutionContext) any {
	s, ok := expected.(string)
	if !ok {
		return expected
	}
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") && len(s) > 2 {
		varExpr := s[1 : len(s)-1]
		return resolve.Value("{"+varExpr+"}", ctx)
	}
	return resolve.Value(s, ctx)
}

func valuesEqual(expected, actual any) bool {
	expectedJSON, err1 := json.Marshal(normalizeNumbers(expected))
	actualJSON, err2 := json.Marshal(normalizeNumbers(actual))
	if err1 != nil || err2 != nil {
		return expected == actual
	}
	return string(expectedJSON) == string(actualJSON)
}

// normalizeNumbers re-encodes through JSON so int/float64 representations
// of the same numeric value compare equal regardless of Go type.
func normalizeNumbers(v any) any {
	encoded, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var normalized any
	if err := json.Unmarshal(encoded, &normalized); err != nil {
		return v
	}
	return normalized
}

func displayActual(v any) any {
	if isAbsent(v) {
		return nil
	}
	return v
}
