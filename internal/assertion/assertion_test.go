package assertion

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katonium/testflow/internal/model"
)

func TestEvaluatePrimitiveEquality(t *testing.T) {
	t.Parallel()

	ctx := model.NewExecutionContext("tc-1", "name")
	results := Evaluate("ok", "ok", ctx)
	require.Len(t, results, 1)
	require.True(t, results[0].Passed)
}

func TestEvaluateMappingRecursesAndIgnoresExtraActualKeys(t *testing.T) {
	t.Parallel()

	ctx := model.NewExecutionContext("tc-1", "name")
	expected := map[string]any{"status": "ok"}
	actual := map[string]any{"status": "ok", "extra": "unchecked"}

	results := Evaluate(expected, actual, ctx)
	require.True(t, Passed(results))
	require.Len(t, results, 1)
	require.Equal(t, "status", results[0].Field)
}

func TestEvaluateMappingReportsNestedFailure(t *testing.T) {
	t.Parallel()

	ctx := model.NewExecutionContext("tc-1", "name")
	expected := map[string]any{"user": map[string]any{"name": "ada"}}
	actual := map[string]any{"user": map[string]any{"name": "grace"}}

	results := Evaluate(expected, actual, ctx)
	require.False(t, Passed(results))
	require.Equal(t, "user.name", results[0].Field)
}

func TestEvaluateReportsAllFailuresNotJustFirst(t *testing.T) {
	t.Parallel()

	ctx := model.NewExecutionContext("tc-1", "name")
	expected := map[string]any{"a": "x", "b": "y"}
	actual := map[string]any{"a": "wrong", "b": "also wrong"}

	results := Evaluate(expected, actual, ctx)
	require.Len(t, results, 2)
	for _, r := range results {
		require.False(t, r.Passed)
	}
}

func TestEvaluateShouldNotBeNullToken(t *testing.T) {
	t.Parallel()

	ctx := model.NewExecutionContext("tc-1", "name")
	results := Evaluate([]any{"shouldNotBeNull"}, "present", ctx)
	require.True(t, Passed(results))

	results = Evaluate([]any{"shouldNotBeNull"}, nil, ctx)
	require.False(t, Passed(results))
}

func TestEvaluateShouldBeEmptyToken(t *testing.T) {
	t.Parallel()

	ctx := model.NewExecutionContext("tc-1", "name")
	require.True(t, Passed(Evaluate([]any{"shouldBeEmpty"}, "", ctx)))
	require.True(t, Passed(Evaluate([]any{"shouldBeEmpty"}, []any{}, ctx)))
	require.False(t, Passed(Evaluate([]any{"shouldBeEmpty"}, "nonempty", ctx)))
}

func TestEvaluateSequencePositionalComparison(t *testing.T) {
	t.Parallel()

	ctx := model.NewExecutionContext("tc-1", "name")
	expected := []any{"a", "b", "c"}
	actual := []any{"a", "wrong"}

	results := Evaluate(expected, actual, ctx)
	require.Len(t, results, 3)
	require.True(t, results[0].Passed)
	require.False(t, results[1].Passed)
	require.False(t, results[2].Passed)
}

func TestEvaluateVariableReferenceExpected(t *testing.T) {
	t.Parallel()

	ctx := model.NewExecutionContext("tc-1", "My Test")
	results := Evaluate("[testCaseName]", "My Test", ctx)
	require.True(t, Passed(results))
}

func TestEvaluateResolvesPlaceholderInExpectedString(t *testing.T) {
	t.Parallel()

	ctx := model.NewExecutionContext("tc-1", "name")
	results := Evaluate("id={testCaseId}", "id=tc-1", ctx)
	require.True(t, Passed(results))
}

func TestEvaluateMappingFailsWhenActualIsNotAMapping(t *testing.T) {
	t.Parallel()

	ctx := model.NewExecutionContext("tc-1", "name")
	results := Evaluate(map[string]any{"a": "x"}, "not a mapping", ctx)
	require.False(t, Passed(results))
}
