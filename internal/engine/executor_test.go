package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katonium/testflow/internal/action"
	"github.com/katonium/testflow/internal/actions"
	"github.com/katonium/testflow/internal/model"
	testflowerrors "github.com/katonium/testflow/pkg/errors"
)

type recordingReporter struct {
	mu            sync.Mutex
	testStarted   bool
	testEnded     bool
	testSucceeded bool
	stepStarts    []string
	stepEnds      map[string]bool
	skipped       map[string]string
}

func newRecordingReporter() *recordingReporter {
	return &recordingReporter{
		stepEnds: make(map[string]bool),
		skipped:  make(map[string]string),
	}
}

func (r *recordingReporter) TestStart(string, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.testStarted = true
}

func (r *recordingReporter) StepStart(id, _, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stepStarts = append(r.stepStarts, id)
}

func (r *recordingReporter) StepEnd(id string, success bool, _ any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stepEnds[id] = success
}

func (r *recordingReporter) StepSkipped(id, _, _, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skipped[id] = reason
}

func (r *recordingReporter) TestEnd(_ string, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.testEnded = true
	r.testSucceeded = success
}

func newRegistry(t *testing.T) *action.Registry {
	t.Helper()
	r := action.NewRegistry()
	require.NoError(t, actions.Register(r))
	return r
}

func TestExecuteTestCaseLinearSuccess(t *testing.T) {
	t.Parallel()

	tc := model.TestCase{
		Kind: "TestCase",
		Name: "linear",
		Steps: []model.Step{
			{ID: "A", Kind: "nop"},
			{ID: "B", Kind: "echo", Params: map[string]any{"message": "{A}"}},
		},
	}

	execCtx := model.NewExecutionContext("tc-1", "linear")
	reporter := newRecordingReporter()
	verdict, err := ExecuteTestCase(context.Background(), tc, execCtx, RunOptions{
		Registry: newRegistry(t),
		Reporter: reporter,
	})
	require.NoError(t, err)
	require.True(t, verdict)

	bResult, ok := execCtx.Result("B")
	require.True(t, ok)
	require.Equal(t, `{"success":true}`, bResult.Output)
	require.True(t, reporter.testEnded)
	require.True(t, reporter.testSucceeded)
}

func TestExecuteTestCaseShortCircuitConditional(t *testing.T) {
	t.Parallel()

	tc := model.TestCase{
		Kind: "TestCase",
		Name: "short-circuit",
		Steps: []model.Step{
			{ID: "A", Kind: "fail"},
			{ID: "B", Kind: "nop"},
			{ID: "C", Kind: "echo", If: "always()"},
		},
	}

	execCtx := model.NewExecutionContext("tc-2", "short-circuit")
	reporter := newRecordingReporter()
	verdict, err := ExecuteTestCase(context.Background(), tc, execCtx, RunOptions{
		Registry: newRegistry(t),
		Reporter: reporter,
	})
	require.NoError(t, err)
	require.False(t, verdict)

	aResult, _ := execCtx.Result("A")
	require.False(t, aResult.Success)

	bResult, _ := execCtx.Result("B")
	require.True(t, bResult.Success)
	require.Equal(t, "SKIPPED", bResult.Output)
	require.Contains(t, reporter.skipped["B"], "success()")

	cResult, _ := execCtx.Result("C")
	require.True(t, cResult.Success)
}

func TestExecuteTestCaseFailureBranch(t *testing.T) {
	t.Parallel()

	tc := model.TestCase{
		Kind: "TestCase",
		Name: "failure-branch",
		Steps: []model.Step{
			{ID: "A", Kind: "nop"},
			{ID: "B", Kind: "fail"},
			{ID: "C", Kind: "nop", If: "failure()"},
		},
	}

	execCtx := model.NewExecutionContext("tc-3", "failure-branch")
	verdict, err := ExecuteTestCase(context.Background(), tc, execCtx, RunOptions{
		Registry: newRegistry(t),
	})
	require.NoError(t, err)
	require.False(t, verdict)

	aResult, _ := execCtx.Result("A")
	require.True(t, aResult.Success)

	bResult, _ := execCtx.Result("B")
	require.False(t, bResult.Success)

	cResult, _ := execCtx.Result("C")
	require.True(t, cResult.Success)
	require.NotEqual(t, "SKIPPED", cResult.Output)
}

func TestExecuteTestCaseDependencyDAG(t *testing.T) {
	t.Parallel()

	tc := model.TestCase{
		Kind: "TestCase",
		Name: "dag",
		Steps: []model.Step{
			{ID: "A", Kind: "nop"},
			{ID: "B", Kind: "nop", DependsOn: []string{"A"}},
			{ID: "C", Kind: "nop", DependsOn: []string{"A"}},
			{ID: "D", Kind: "nop", DependsOn: []string{"B", "C"}},
		},
	}

	execCtx := model.NewExecutionContext("tc-4", "dag")
	verdict, err := ExecuteTestCase(context.Background(), tc, execCtx, RunOptions{
		Registry: newRegistry(t),
	})
	require.NoError(t, err)
	require.True(t, verdict)

	for _, id := range []string{"A", "B", "C", "D"} {
		result, ok := execCtx.Result(id)
		require.True(t, ok)
		require.True(t, result.Success)
	}
}

func TestExecuteTestCaseDependencyFailurePropagation(t *testing.T) {
	t.Parallel()

	invoked := false
	registry := action.NewRegistry()
	require.NoError(t, registry.Register("fail", action.ActionFunc(func(_ context.Context, _ model.Step) (model.ActionResult, error) {
		return model.Failure("boom", ""), nil
	})))
	require.NoError(t, registry.Register("nop", action.ActionFunc(func(_ context.Context, _ model.Step) (model.ActionResult, error) {
		invoked = true
		return model.ActionResult{Success: true}, nil
	})))

	tc := model.TestCase{
		Kind: "TestCase",
		Name: "dependency-failure",
		Steps: []model.Step{
			{ID: "A", Kind: "fail"},
			{ID: "B", Kind: "nop", DependsOn: []string{"A"}, If: "always()"},
		},
	}

	execCtx := model.NewExecutionContext("tc-5", "dependency-failure")
	verdict, err := ExecuteTestCase(context.Background(), tc, execCtx, RunOptions{Registry: registry})
	require.NoError(t, err)
	require.False(t, verdict)

	bResult, ok := execCtx.Result("B")
	require.True(t, ok)
	require.False(t, bResult.Success)
	output, ok := bResult.Output.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "Dependency 'A' failed", output["error"])
	require.False(t, invoked, "B's Action must never be invoked once its dependency failed")
}

func TestExecuteTestCaseRejectsBackwardReference(t *testing.T) {
	t.Parallel()

	tc := model.TestCase{
		Kind: "TestCase",
		Name: "backward-reference",
		Steps: []model.Step{
			{ID: "A", Kind: "nop", DependsOn: []string{"B"}},
			{ID: "B", Kind: "nop"},
		},
	}

	execCtx := model.NewExecutionContext("tc-6", "backward-reference")
	reporter := newRecordingReporter()
	_, err := ExecuteTestCase(context.Background(), tc, execCtx, RunOptions{
		Registry: newRegistry(t),
		Reporter: reporter,
	})
	require.Error(t, err)
	require.False(t, reporter.testStarted)
	require.Empty(t, reporter.stepStarts)
}

func TestRunStepRecordsActionErrorForUnregisteredKind(t *testing.T) {
	t.Parallel()

	step := model.Step{ID: "A", Kind: "does-not-exist"}
	execCtx := model.NewExecutionContext("tc-7", "unregistered-kind")
	reporter := newRecordingReporter()

	runStep(context.Background(), step, execCtx, RunOptions{
		Registry: action.NewRegistry(),
		Reporter: reporter,
	})

	result, ok := execCtx.Result("A")
	require.True(t, ok)
	require.False(t, result.Success)

	output, ok := result.Output.(map[string]any)
	require.True(t, ok)
	msg, ok := output["error"].(string)
	require.True(t, ok)

	wantErr := testflowerrors.NewActionError(step.ID, step.Kind, fmt.Errorf("no action registered for this kind"))
	require.Equal(t, wantErr.Error(), msg)
}

func TestInvokeWrapsActionErrorAsActionResult(t *testing.T) {
	t.Parallel()

	step := model.Step{ID: "B", Kind: "explodes"}
	underlying := fmt.Errorf("connection refused")
	act := action.ActionFunc(func(context.Context, model.Step) (model.ActionResult, error) {
		return model.ActionResult{}, underlying
	})

	result := invoke(context.Background(), act, step)
	require.False(t, result.Success)

	output, ok := result.Output.(map[string]any)
	require.True(t, ok)
	msg, ok := output["error"].(string)
	require.True(t, ok)

	wantErr := testflowerrors.NewActionError(step.ID, step.Kind, underlying)
	require.Equal(t, wantErr.Error(), msg)
}
