package engine

import (
	"fmt"

	"github.com/katonium/testflow/internal/model"
	testflowerrors "github.com/katonium/testflow/pkg/errors"
)

// BuildDAG constructs the dependency graph for steps and computes its
// levels. By the time this runs, the Validator has already rejected
// unknown dependency targets and forward references (which alone
// precludes cycles), but TopologicalSort's cycle check is kept as a
// backstop rather than assumed away.
func BuildDAG(steps []model.Step) (*Graph, error) {
	graph := NewGraph()
	known := make(map[string]struct{}, len(steps))

	for i := range steps {
		step := &steps[i]
		if _, err := graph.AddNode(step); err != nil {
			return nil, err
		}
		known[step.ID] = struct{}{}
	}

	for _, step := range steps {
		for _, dependency := range step.DependsOn {
			if _, ok := known[dependency]; !ok {
				return nil, testflowerrors.NewConfigurationError(
					"steps",
					fmt.Sprintf("step %q depends on unknown step %q", step.ID, dependency),
					nil,
				)
			}
			if err := graph.AddEdge(dependency, step.ID); err != nil {
				return nil, err
			}
		}
	}

	if err := graph.TopologicalSort(); err != nil {
		return nil, err
	}

	return graph, nil
}
