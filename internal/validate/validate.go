// Package validate implements the Validator component from spec.md §4.1:
// the fail-fast, ordered set of checks a TestCase must pass before the
// Scheduler runs a single step. It is grounded on the teacher's
// internal/config validator/cycle_detector pair, generalized from a
// fixed per-step-type schema to the spec's generic Step.Kind/Params shape.
package validate

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/katonium/testflow/internal/model"
	testflowerrors "github.com/katonium/testflow/pkg/errors"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func validatorInstance() *validator.Validate {
	once.Do(func() {
		instance = validator.New()
		_ = instance.RegisterValidation("step_id", func(fl validator.FieldLevel) bool {
			return model.StepIDPattern.MatchString(fl.Field().String())
		})
	})
	return instance
}

// TestCase runs every check spec.md §4.1 names, in order, returning on the
// first failure: struct-tag validation, unique step ids, dependency targets
// exist, dependencies only reference earlier steps, and conditional syntax
// is one of the recognized tokens.
func TestCase(tc model.TestCase) error {
	v := validatorInstance()
	if err := v.Struct(tc); err != nil {
		return convert(err)
	}

	index := make(map[string]int, len(tc.Steps))
	for i, step := range tc.Steps {
		if err := v.Struct(step); err != nil {
			return convert(err)
		}
		if _, exists := index[step.ID]; exists {
			return testflowerrors.NewConfigurationError(
				field(i, "id"),
				fmt.Sprintf("duplicate step id %q", step.ID),
				nil,
			)
		}
		index[step.ID] = i
	}

	for i, step := range tc.Steps {
		for _, dep := range step.DependsOn {
			depIndex, ok := index[dep]
			if !ok {
				return testflowerrors.NewConfigurationError(
					field(i, "depends_on"),
					fmt.Sprintf("references unknown step %q", dep),
					nil,
				)
			}
			if depIndex >= i {
				return testflowerrors.NewConfigurationError(
					field(i, "depends_on"),
					fmt.Sprintf("must reference an earlier step, got forward reference to %q", dep),
					nil,
				)
			}
		}
	}

	if cycle := detectCycle(tc.Steps); len(cycle) > 0 {
		return testflowerrors.NewConfigurationError(
			"steps",
			fmt.Sprintf("dependency cycle detected: %s", strings.Join(cycle, " -> ")),
			nil,
		)
	}

	for i, step := range tc.Steps {
		if _, err := step.Condition(); err != nil {
			return testflowerrors.NewConfigurationError(field(i, "if"), err.Error(), err)
		}
	}

	return nil
}

func convert(err error) error {
	if err == nil {
		return nil
	}
	if ves, ok := err.(validator.ValidationErrors); ok && len(ves) > 0 {
		fe := ves[0]
		fieldName := yamlishFieldName(fe)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", fieldName, fe.Tag())
		return testflowerrors.NewConfigurationError(fieldName, msg, err)
	}
	return testflowerrors.NewConfigurationError("", err.Error(), err)
}

func yamlishFieldName(fe validator.FieldError) string {
	parts := strings.Split(fe.StructNamespace(), ".")
	lowered := make([]string, 0, len(parts))
	for _, part := range parts {
		lowered = append(lowered, strings.ToLower(part))
	}
	return strings.Join(lowered, ".")
}

func field(index int, name string) string {
	return fmt.Sprintf("steps[%d].%s", index, name)
}

// detectCycle finds a dependency cycle among steps, if one exists, as a
// defense-in-depth check alongside the backward-reference rule above. That
// rule already rejects any cycle (a cycle needs at least one forward edge)
// and TestCase applies it first, so for a cycle TestCase reports the
// forward-reference error. The DFS is the one the teacher used; when it
// does find a cycle it returns the path naming every step in the loop.
func detectCycle(steps []model.Step) []string {
	graph := make(map[string][]string, len(steps))
	for _, step := range steps {
		graph[step.ID] = append([]string{}, step.DependsOn...)
	}

	visiting := make(map[string]bool, len(steps))
	visited := make(map[string]bool, len(steps))
	var stack []string
	var cycle []string

	var dfs func(string) bool
	dfs = func(node string) bool {
		visiting[node] = true
		stack = append(stack, node)

		for _, dep := range graph[node] {
			if !visited[dep] {
				if visiting[dep] {
					if idx := indexOf(stack, dep); idx >= 0 {
						cycle = append([]string{}, stack[idx:]...)
						cycle = append(cycle, dep)
					}
					return true
				}
				if dfs(dep) {
					return true
				}
			}
		}

		visiting[node] = false
		visited[node] = true
		stack = stack[:len(stack)-1]
		return false
	}

	ids := make([]string, 0, len(steps))
	for _, step := range steps {
		ids = append(ids, step.ID)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if visited[id] {
			continue
		}
		if dfs(id) {
			break
		}
	}

	return cycle
}

func indexOf(slice []string, target string) int {
	for i, v := range slice {
		if v == target {
			return i
		}
	}
	return -1
}
