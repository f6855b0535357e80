package model

// ActionResult is what an Action returns: a success flag plus a free-form
// output structure. Convention is a mapping, but an Action may return any
// JSON-expressible value per spec.md §3.
type ActionResult struct {
	Success bool `json:"success"`
	Output  any  `json:"output,omitempty"`
}

// Failure builds an ActionResult carrying an error message, matching the
// shape spec.md §4.3 requires when an Action raises: the engine treats a
// raised failure as equivalent to {success:false, output:{error, stack}}.
func Failure(message string, stack string) ActionResult {
	output := map[string]any{"error": message}
	if stack != "" {
		output["stack"] = stack
	}
	return ActionResult{Success: false, Output: output}
}

// DependencyFailure builds the synthetic result recorded for a step whose
// dependency failed, per spec.md §4.5/§7.
func DependencyFailure(dependencyID string) ActionResult {
	return ActionResult{
		Success: false,
		Output:  map[string]any{"error": "Dependency '" + dependencyID + "' failed"},
	}
}

// Skipped builds the synthetic result recorded for a step whose conditional
// guard excluded it from execution, per spec.md §4.5.1.
func Skipped() ActionResult {
	return ActionResult{Success: true, Output: "SKIPPED"}
}

// StepStatus is the scheduler-internal lifecycle state of a step.
type StepStatus string

const (
	StatusPending  StepStatus = "PENDING"
	StatusRunning  StepStatus = "RUNNING"
	StatusFinished StepStatus = "FINISHED"
	StatusFailed   StepStatus = "FAILED"
	StatusSkipped  StepStatus = "SKIPPED"
)

// Terminal reports whether the status is one that will not change again.
func (s StepStatus) Terminal() bool {
	switch s {
	case StatusFinished, StatusFailed, StatusSkipped:
		return true
	default:
		return false
	}
}

// Succeeded reports whether the status counts toward the aggregate verdict
// as a success: FINISHED-with-success and SKIPPED both count, per spec.md
// §4.5 step 7 ("SKIPPED counts as success for the aggregate").
func (s StepStatus) Succeeded(result *ActionResult) bool {
	if s == StatusSkipped {
		return true
	}
	return result != nil && result.Success
}
