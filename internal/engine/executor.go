package engine

import (
	"context"
	"fmt"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"github.com/katonium/testflow/internal/action"
	"github.com/katonium/testflow/internal/model"
	"github.com/katonium/testflow/internal/resolve"
	"github.com/katonium/testflow/internal/validate"
	testflowerrors "github.com/katonium/testflow/pkg/errors"
)

// ExecuteTestCase is the Scheduler's entry point (spec.md §4.5). It runs
// the Validator, selects Sequential or DAG Mode, drives every step to a
// terminal state, and returns the aggregate verdict: AND of every step's
// perceived success, where a SKIPPED step counts as success.
func ExecuteTestCase(ctx context.Context, tc model.TestCase, execCtx *model.ExecutionContext, opts RunOptions) (bool, error) {
	tc = tc.AssignMissingIDs()

	if err := validate.TestCase(tc); err != nil {
		return false, err
	}

	plan, err := buildPlan(tc)
	if err != nil {
		return false, err
	}

	reporter := opts.reporter()
	reporter.TestStart(execCtx.TestCaseID, execCtx.TestCaseName)

	stepsByID := make(map[string]model.Step, len(tc.Steps))
	for _, step := range tc.Steps {
		stepsByID[step.ID] = step
	}

	for _, level := range plan.Levels {
		group, groupCtx := errgroup.WithContext(ctx)
		for _, id := range level.StepIDs {
			step := stepsByID[id]
			group.Go(func() error {
				runStep(groupCtx, step, execCtx, opts)
				return nil
			})
		}
		// Errors are never returned by runStep (failures are recorded as
		// results, not Go errors); Wait only serves as the level join
		// point spec.md §5 requires before the next level starts.
		_ = group.Wait()
	}

	verdict := execCtx.TestSuccess()
	reporter.TestEnd(execCtx.TestCaseID, verdict)
	return verdict, nil
}

// buildPlan selects Sequential Mode (no step declares depends_on) or DAG
// Mode, per spec.md §4.5 step 3, and produces the corresponding plan. Both
// modes are driven by the same per-level runner in ExecuteTestCase; only
// how the levels are computed differs (spec.md §9's open question,
// resolved in SPEC_FULL.md §4.5).
func buildPlan(tc model.TestCase) (*ExecutionPlan, error) {
	for _, step := range tc.Steps {
		if len(step.DependsOn) > 0 {
			graph, err := BuildDAG(tc.Steps)
			if err != nil {
				return nil, err
			}
			return PlanDAG(graph)
		}
	}
	return PlanSequential(tc.Steps), nil
}

// runStep performs the per-step procedure (spec.md §4.5.1), plus the DAG
// Mode dependency-failure short-circuit (spec.md §4.5) that precedes it
// whenever the step declares a dependency.
func runStep(ctx context.Context, step model.Step, execCtx *model.ExecutionContext, opts RunOptions) {
	if pool := opts.WorkerPool; pool != nil {
		pool <- struct{}{}
		defer func() { <-pool }()
	}

	reporter := opts.reporter()

	for _, dep := range step.DependsOn {
		if result, ok := execCtx.Result(dep); ok && !result.Success {
			failure := model.DependencyFailure(dep)
			execCtx.RecordResult(step.ID, failure)
			reporter.StepEnd(step.ID, false, failure.Output)
			return
		}
	}

	resolved := step
	resolved.Params = resolve.Params(step.Params, execCtx)

	condition, _ := resolved.Condition() // already validated; error impossible here
	switch condition {
	case model.ConditionAlways:
		// always executes
	case model.ConditionFailure:
		if execCtx.TestSuccess() {
			skipStep(execCtx, reporter, resolved, "skipped: failure() guard requires a prior failure")
			return
		}
	default: // ConditionSuccess
		if !execCtx.TestSuccess() {
			skipStep(execCtx, reporter, resolved, "skipped: success() guard requires no prior failure")
			return
		}
	}

	reporter.StepStart(resolved.ID, resolved.Name, resolved.Kind)

	act, ok := opts.Registry.Lookup(resolved.Kind)
	if !ok {
		actionErr := testflowerrors.NewActionError(resolved.ID, resolved.Kind, fmt.Errorf("no action registered for this kind"))
		result := model.Failure(actionErr.Error(), "")
		execCtx.RecordResult(resolved.ID, result)
		reporter.StepEnd(resolved.ID, false, result.Output)
		return
	}

	result := invoke(ctx, act, resolved)
	execCtx.RecordResult(resolved.ID, result)
	reporter.StepEnd(resolved.ID, result.Success, result.Output)
}

func skipStep(execCtx *model.ExecutionContext, reporter Reporter, step model.Step, reason string) {
	execCtx.RecordResult(step.ID, model.Skipped())
	reporter.StepSkipped(step.ID, step.Name, step.Kind, reason)
}

// invoke calls the Action, converting both a returned error and a recovered
// panic into a {success:false, output:{error,...}} result. Only a recovered
// panic adds a "stack" entry; a returned error carries its message alone.
// Both cases are wrapped as a
// testflowerrors.ActionError — spec.md §7 still treats them as an
// ActionResult, not a propagated Go error, so only the error's formatted
// message, never the error value itself, reaches the result.
func invoke(ctx context.Context, act action.Action, step model.Step) (result model.ActionResult) {
	defer func() {
		if r := recover(); r != nil {
			actionErr := testflowerrors.NewActionError(step.ID, step.Kind, fmt.Errorf("%v", r))
			result = model.Failure(actionErr.Error(), string(debug.Stack()))
		}
	}()

	res, err := act.Execute(ctx, step)
	if err != nil {
		actionErr := testflowerrors.NewActionError(step.ID, step.Kind, err)
		return model.Failure(actionErr.Error(), "")
	}
	return res
}
