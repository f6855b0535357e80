// Package engine implements the Scheduler from spec.md §4.5: DAG Mode and
// Sequential Mode execution of a validated TestCase, driving each step
// through the Value Resolver, the conditional guard, and the Action
// Registry, and reporting lifecycle events. Grounded on the teacher's
// internal/engine package (level-based planner, goroutine-per-step
// fan-out), generalized from Streamy's reconciliation steps to this spec's
// test-case steps.
package engine

import (
	"fmt"

	"github.com/katonium/testflow/internal/model"
	testflowerrors "github.com/katonium/testflow/pkg/errors"
)

// Node is a vertex in the dependency graph.
type Node struct {
	ID         string
	Step       *model.Step
	DependsOn  []*Node
	Dependents []*Node
}

// Graph holds the dependency graph and its topological levels. order
// records insertion order, which TopologicalSort relies on being the
// TestCase's declared step order.
type Graph struct {
	Nodes  map[string]*Node
	Levels [][]string
	order  []string
}

// NewGraph returns an empty Graph.
func NewGraph() *Graph {
	return &Graph{Nodes: make(map[string]*Node)}
}

// AddNode inserts step as a vertex.
func (g *Graph) AddNode(step *model.Step) (*Node, error) {
	if step == nil {
		return nil, testflowerrors.NewConfigurationError("", "step cannot be nil", nil)
	}
	if _, exists := g.Nodes[step.ID]; exists {
		return nil, testflowerrors.NewConfigurationError("steps", fmt.Sprintf("duplicate step id %q", step.ID), nil)
	}
	node := &Node{ID: step.ID, Step: step}
	g.Nodes[step.ID] = node
	g.order = append(g.order, step.ID)
	return node, nil
}

// AddEdge records that the step named to depends on the step named from.
func (g *Graph) AddEdge(from, to string) error {
	source, ok := g.Nodes[from]
	if !ok {
		return testflowerrors.NewConfigurationError("steps", fmt.Sprintf("unknown dependency %q", from), nil)
	}
	target, ok := g.Nodes[to]
	if !ok {
		return testflowerrors.NewConfigurationError("steps", fmt.Sprintf("unknown dependency target %q", to), nil)
	}
	source.Dependents = append(source.Dependents, target)
	target.DependsOn = append(target.DependsOn, source)
	return nil
}

// TopologicalSort computes dependency levels. spec.md §3 guarantees that a
// step's dependencies always appear earlier in the declared order than the
// step itself ("strictly stronger than acyclicity and obviates a cycle
// detector") — the Validator rejects any TestCase violating this before a
// Graph is ever built. TopologicalSort exploits that guarantee directly
// instead of running a general Kahn's-algorithm indegree/queue pass: a
// single forward walk over insertion order computes each node's level as
// one more than the deepest of its dependencies, since every dependency is
// guaranteed to have already been assigned a level by the time its
// dependent is reached.
func (g *Graph) TopologicalSort() error {
	level := make(map[string]int, len(g.Nodes))
	buckets := make(map[int][]string)
	deepest := -1

	for _, id := range g.order {
		node := g.Nodes[id]

		nodeLevel := 0
		for _, dep := range node.DependsOn {
			depLevel, ok := level[dep.ID]
			if !ok {
				return testflowerrors.NewConfigurationError(
					"steps",
					fmt.Sprintf("step %q depends on %q, which has not been leveled yet (ordering invariant violated)", id, dep.ID),
					nil,
				)
			}
			if depLevel+1 > nodeLevel {
				nodeLevel = depLevel + 1
			}
		}

		level[id] = nodeLevel
		buckets[nodeLevel] = append(buckets[nodeLevel], id)
		if nodeLevel > deepest {
			deepest = nodeLevel
		}
	}

	levels := make([][]string, deepest+1)
	for l := range levels {
		levels[l] = buckets[l]
	}
	g.Levels = levels
	return nil
}
