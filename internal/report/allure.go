package report

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/katonium/testflow/internal/engine"
)

// AllureStep is one recorded step in the buffered Allure-style report.
type AllureStep struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	StartedAt int64  `json:"start"`
	StoppedAt int64  `json:"stop"`
	Output    any    `json:"output,omitempty"`
	Message   string `json:"statusMessage,omitempty"`
}

// AllureTestCase is the buffered document generateReport() returns.
type AllureTestCase struct {
	UUID   string       `json:"uuid"`
	Name   string       `json:"name"`
	Status string       `json:"status"`
	Steps  []AllureStep `json:"steps"`
}

// AllureReporter buffers lifecycle events in memory and assembles them into
// an AllureTestCase document on GenerateReport, rather than writing to disk
// immediately — the on-disk sink is named out of scope per spec.md §1
// ("the report sink's storage"); only the reporter's in-memory shape is
// this package's concern.
type AllureReporter struct {
	mu      sync.Mutex
	doc     AllureTestCase
	starts  map[string]time.Time
	running map[string]string // stepId -> name, for stepEnd lookups
}

// NewAllureReporter returns an empty AllureReporter.
func NewAllureReporter() *AllureReporter {
	return &AllureReporter{
		starts:  make(map[string]time.Time),
		running: make(map[string]string),
	}
}

var _ engine.Reporter = (*AllureReporter)(nil)

func (a *AllureReporter) TestStart(id, name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.doc.UUID = id
	a.doc.Name = name
}

func (a *AllureReporter) StepStart(id, name, _ string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.starts[id] = time.Now()
	a.running[id] = name
}

func (a *AllureReporter) StepEnd(id string, success bool, output any) {
	a.mu.Lock()
	defer a.mu.Unlock()

	status := "passed"
	if !success {
		status = "failed"
	}
	started := a.starts[id]
	name := a.running[id]
	if name == "" {
		name = id
	}

	a.doc.Steps = append(a.doc.Steps, AllureStep{
		Name:      name,
		Status:    status,
		StartedAt: started.UnixMilli(),
		StoppedAt: time.Now().UnixMilli(),
		Output:    output,
	})
	delete(a.starts, id)
	delete(a.running, id)
}

func (a *AllureReporter) StepSkipped(id, name, _, reason string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	now := time.Now().UnixMilli()
	a.doc.Steps = append(a.doc.Steps, AllureStep{
		Name:      name,
		Status:    "skipped",
		StartedAt: now,
		StoppedAt: now,
		Message:   reason,
	})
}

func (a *AllureReporter) TestEnd(_ string, success bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if success {
		a.doc.Status = "passed"
	} else {
		a.doc.Status = "failed"
	}
}

// GenerateReport returns the assembled document as JSON, per spec.md §4.6's
// generateReport() event.
func (a *AllureReporter) GenerateReport() ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return json.Marshal(a.doc)
}
