package report

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/katonium/testflow/internal/engine"
)

type spyReporter struct {
	mu     sync.Mutex
	events []string
}

func (s *spyReporter) record(event string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *spyReporter) TestStart(string, string)                    { s.record("testStart") }
func (s *spyReporter) StepStart(string, string, string)             { s.record("stepStart") }
func (s *spyReporter) StepEnd(string, bool, any)                    { s.record("stepEnd") }
func (s *spyReporter) StepSkipped(string, string, string, string)   { s.record("stepSkipped") }
func (s *spyReporter) TestEnd(string, bool)                         { s.record("testEnd") }

var _ engine.Reporter = (*spyReporter)(nil)

func TestMultiReporterFansOutToEveryChild(t *testing.T) {
	t.Parallel()

	a, b := &spyReporter{}, &spyReporter{}
	multi := NewMultiReporter(a, b)

	multi.TestStart("tc-1", "name")
	multi.StepStart("s1", "step", "nop")
	multi.StepEnd("s1", true, nil)
	multi.TestEnd("tc-1", true)

	for _, r := range []*spyReporter{a, b} {
		require.Equal(t, []string{"testStart", "stepStart", "stepEnd", "testEnd"}, r.events)
	}
}

func TestMultiReporterSkipsNilReporters(t *testing.T) {
	t.Parallel()

	multi := NewMultiReporter(nil, &spyReporter{})
	require.NotPanics(t, func() {
		multi.TestStart("tc-1", "name")
	})
}

func TestAllureReporterAssemblesDocument(t *testing.T) {
	t.Parallel()

	r := NewAllureReporter()
	r.TestStart("tc-1", "My Case")
	r.StepStart("s1", "step one", "nop")
	r.StepEnd("s1", true, "ok")
	r.StepSkipped("s2", "step two", "nop", "skipped: success() guard")
	r.TestEnd("tc-1", false)

	var doc AllureTestCase
	encoded, err := r.GenerateReport()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(encoded, &doc))

	require.Equal(t, "tc-1", doc.UUID)
	require.Equal(t, "failed", doc.Status)
	require.Len(t, doc.Steps, 2)
	require.Equal(t, "passed", doc.Steps[0].Status)
	require.Equal(t, "skipped", doc.Steps[1].Status)
}

func TestMetricsReporterIncrementsCounters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := NewMetricsReporter(reg)
	require.NoError(t, err)

	m.StepStart("s1", "step", "echo")
	m.StepEnd("s1", true, nil)
	m.TestEnd("tc-1", true)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}
