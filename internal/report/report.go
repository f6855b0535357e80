// Package report provides Reporter implementations for the lifecycle-event
// sink contract (spec.md §4.6): a structured-log sink, a buffered
// Allure-style JSON writer, a Prometheus metrics sink, a NATS event
// publisher, and a fan-out combinator. Grounded on the teacher's
// event-publisher pattern (internal/infrastructure/events/
// logging_publisher.go, internal/ports/events.go — both since removed
// from the workspace as part of the hexagonal-layer cleanup, see
// DESIGN.md), generalized from Streamy's pipeline/step domain events to
// this spec's testStart/stepStart/stepEnd/stepSkipped/testEnd contract.
package report

import "github.com/katonium/testflow/internal/engine"

// MultiReporter fans a single stream of lifecycle calls out to every
// reporter it wraps, so a caller can combine e.g. a log sink with a
// metrics sink without the Scheduler knowing about composition.
type MultiReporter struct {
	reporters []engine.Reporter
}

// NewMultiReporter returns a MultiReporter fanning out to every non-nil
// reporter in reporters.
func NewMultiReporter(reporters ...engine.Reporter) *MultiReporter {
	filtered := make([]engine.Reporter, 0, len(reporters))
	for _, r := range reporters {
		if r != nil {
			filtered = append(filtered, r)
		}
	}
	return &MultiReporter{reporters: filtered}
}

var _ engine.Reporter = (*MultiReporter)(nil)

func (m *MultiReporter) TestStart(id, name string) {
	for _, r := range m.reporters {
		r.TestStart(id, name)
	}
}

func (m *MultiReporter) StepStart(id, name, kind string) {
	for _, r := range m.reporters {
		r.StepStart(id, name, kind)
	}
}

func (m *MultiReporter) StepEnd(id string, success bool, output any) {
	for _, r := range m.reporters {
		r.StepEnd(id, success, output)
	}
}

func (m *MultiReporter) StepSkipped(id, name, kind, reason string) {
	for _, r := range m.reporters {
		r.StepSkipped(id, name, kind, reason)
	}
}

func (m *MultiReporter) TestEnd(id string, success bool) {
	for _, r := range m.reporters {
		r.TestEnd(id, success)
	}
}
