package engine

import (
	"github.com/katonium/testflow/internal/action"
	"github.com/katonium/testflow/internal/logging"
)

// Reporter is the lifecycle-event sink contract from spec.md §4.6. Calls
// are synchronous from the Scheduler's perspective (it awaits each one
// before proceeding past it) but implementations are free to buffer
// internally, and must tolerate interleaved calls across concurrent steps
// in DAG Mode.
type Reporter interface {
	TestStart(id, name string)
	StepStart(id, name, kind string)
	StepEnd(id string, success bool, output any)
	StepSkipped(id, name, kind, reason string)
	TestEnd(id string, success bool)
}

// RunOptions configures a single ExecuteTestCase invocation.
type RunOptions struct {
	// Registry resolves an action-kind to its Action implementation.
	Registry *action.Registry
	// Reporter receives lifecycle events. A nil Reporter is treated as a
	// no-op sink.
	Reporter Reporter
	// Logger is carried for diagnostic logging, distinct from the
	// Reporter's structured test-result stream. ExecuteTestCase does not
	// write to it.
	Logger *logging.Logger
	// WorkerPool, if non-nil, bounds the number of steps dispatched
	// concurrently within a single DAG level via a buffered-channel
	// semaphore, mirroring the teacher's engine.ExecutionContext.WorkerPool.
	// A nil pool means every ready step in a level runs concurrently with
	// no admission limit, per spec.md §5.
	WorkerPool chan struct{}
}

type noopReporter struct{}

func (noopReporter) TestStart(string, string)                    {}
func (noopReporter) StepStart(string, string, string)            {}
func (noopReporter) StepEnd(string, bool, any)                   {}
func (noopReporter) StepSkipped(string, string, string, string)  {}
func (noopReporter) TestEnd(string, bool)                        {}

func (o RunOptions) reporter() Reporter {
	if o.Reporter == nil {
		return noopReporter{}
	}
	return o.Reporter
}
