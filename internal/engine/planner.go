package engine

import (
	"fmt"
	"strings"

	"github.com/katonium/testflow/internal/model"
)

// ExecutionPlan is the ordered sequence of levels the Scheduler drives to
// completion. A level's steps are mutually independent and may run
// concurrently; levels themselves run in order.
type ExecutionPlan struct {
	Levels []ExecutionLevel
}

// ExecutionLevel is a set of steps eligible to run together.
type ExecutionLevel struct {
	StepIDs []string
}

// PlanDAG converts a dependency graph into a level-by-level plan, used for
// DAG Mode (spec.md §4.5).
func PlanDAG(graph *Graph) (*ExecutionPlan, error) {
	if graph == nil {
		return nil, fmt.Errorf("engine: graph cannot be nil")
	}
	levels := make([]ExecutionLevel, 0, len(graph.Levels))
	for _, ids := range graph.Levels {
		levels = append(levels, ExecutionLevel{StepIDs: append([]string(nil), ids...)})
	}
	return &ExecutionPlan{Levels: levels}, nil
}

// PlanSequential returns the trivial plan of one step per level, in
// declared order — Sequential Mode modeled as a degenerate case of the
// same level-runner DAG Mode uses (spec.md §9's open question, resolved in
// SPEC_FULL.md §4.5).
func PlanSequential(steps []model.Step) *ExecutionPlan {
	levels := make([]ExecutionLevel, len(steps))
	for i, step := range steps {
		levels[i] = ExecutionLevel{StepIDs: []string{step.ID}}
	}
	return &ExecutionPlan{Levels: levels}
}

// String renders a human-readable summary of the plan.
func (p *ExecutionPlan) String() string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	for i, level := range p.Levels {
		fmt.Fprintf(&b, "Level %d (%d steps): %s\n", i, len(level.StepIDs), strings.Join(level.StepIDs, ", "))
	}
	return b.String()
}
