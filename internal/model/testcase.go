// Package model defines the data shapes the execution engine operates on:
// test cases, steps, action results, and the per-run execution context.
package model

import (
	"fmt"
	"regexp"
	"strings"
)

// StepIDPattern is the allowed shape for a step id: either an
// author-supplied identifier, or one of the `#<n>` placeholders
// AssignMissingIDs fills in. Exported so internal/validate can register it
// as a go-playground/validator/v10 custom tag without duplicating the
// regex.
var StepIDPattern = regexp.MustCompile(`^#?[a-zA-Z0-9_-]+$`)

// Condition enumerates the conditional guards a step may declare via `if`.
type Condition string

const (
	// ConditionSuccess runs the step only while the test case is still
	// succeeding. It is the default when a step declares no condition.
	ConditionSuccess Condition = "success()"
	// ConditionFailure runs the step only once the test case has failed.
	ConditionFailure Condition = "failure()"
	// ConditionAlways runs the step regardless of the running verdict.
	ConditionAlways Condition = "always()"
)

// ParseCondition normalizes a raw `if` value and validates it against the
// allowed set. An empty string means "no condition declared" and resolves
// to ConditionSuccess, matching spec.md §3's "Absent = success()".
func ParseCondition(raw string) (Condition, error) {
	if raw == "" {
		return ConditionSuccess, nil
	}

	normalized := normalizeCondition(raw)
	switch Condition(normalized) {
	case ConditionAlways, ConditionSuccess, ConditionFailure:
		return Condition(normalized), nil
	default:
		return "", fmt.Errorf("unrecognized conditional expression %q", raw)
	}
}

func normalizeCondition(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Step is a single unit of work belonging to a TestCase. ID's "step_id"
// tag is registered by internal/validate against StepIDPattern; field-level
// checks live on the tag rather than a hand-written Validate method so the
// Validator's single `v.Struct` pass covers every step uniformly.
type Step struct {
	ID        string         `yaml:"id,omitempty" validate:"required,step_id"`
	Name      string         `yaml:"name"`
	Kind      string         `yaml:"kind" validate:"required"`
	Params    map[string]any `yaml:"params,omitempty"`
	If        string         `yaml:"if,omitempty"`
	DependsOn []string       `yaml:"depends_on,omitempty"`
}

// Condition returns the step's parsed conditional guard, defaulting to
// ConditionSuccess. Callers that already validated the step may ignore the
// error; it is returned here for completeness.
func (s Step) Condition() (Condition, error) {
	return ParseCondition(s.If)
}

// TestCase is an ordered collection of steps plus identity metadata. It is
// immutable after load: nothing in the engine mutates a TestCase in place.
type TestCase struct {
	Kind    string `yaml:"kind" validate:"required,eq=TestCase"`
	Version string `yaml:"version"`
	Name    string `yaml:"name"`
	Steps   []Step `yaml:"step"`
}

// AssignMissingIDs fills in `#<1-based-index>` for any step without an
// explicit id, per spec.md §3/§6. It returns a copy; the receiver is left
// untouched so a caller's parsed document is never mutated in place.
func (t TestCase) AssignMissingIDs() TestCase {
	steps := make([]Step, len(t.Steps))
	copy(steps, t.Steps)
	for i := range steps {
		if steps[i].ID == "" {
			steps[i].ID = fmt.Sprintf("#%d", i+1)
		}
	}
	t.Steps = steps
	return t
}

