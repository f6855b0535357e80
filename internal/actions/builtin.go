// Package actions provides reference Action implementations (spec.md §4.3's
// Action contract). Their internals are explicitly out of scope per
// spec.md §1 — only their presence as concrete Action values matters, to
// demonstrate the Registry end to end. The echo/nop/fail stubs here are new
// code in the teacher's terse style; shell and git_fixture adapt the
// teacher's command and repo plugins.
package actions

import (
	"context"
	"fmt"

	"github.com/katonium/testflow/internal/action"
	"github.com/katonium/testflow/internal/model"
)

// Echo returns its "message" param as the result output, unchanged. Useful
// for exercising the Value Resolver in tests and examples.
func Echo() action.Action {
	return action.ActionFunc(func(_ context.Context, step model.Step) (model.ActionResult, error) {
		return model.ActionResult{Success: true, Output: step.Params["message"]}, nil
	})
}

// Nop always succeeds and carries no output.
func Nop() action.Action {
	return action.ActionFunc(func(_ context.Context, _ model.Step) (model.ActionResult, error) {
		return model.ActionResult{Success: true}, nil
	})
}

// Fail always fails, carrying "message" (default "forced failure") as the
// error text. Useful for exercising failure-branch and dependency-failure
// scenarios (spec.md §8).
func Fail() action.Action {
	return action.ActionFunc(func(_ context.Context, step model.Step) (model.ActionResult, error) {
		message := "forced failure"
		if m, ok := step.Params["message"].(string); ok && m != "" {
			message = m
		}
		return model.Failure(message, ""), nil
	})
}

// Register wires every reference Action in this package into r under its
// conventional kind name.
func Register(r *action.Registry) error {
	kinds := map[string]action.Action{
		"echo":        Echo(),
		"nop":         Nop(),
		"fail":        Fail(),
		"http":        HTTP(),
		"postgres":    Postgres(),
		"grpc_health": GRPCHealth(),
		"git_fixture": GitFixture(),
		"shell":       Shell(),
	}
	for kind, a := range kinds {
		if err := r.Register(kind, a); err != nil {
			return fmt.Errorf("actions: register %q: %w", kind, err)
		}
	}
	return nil
}
