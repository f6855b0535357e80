package report

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/katonium/testflow/internal/engine"
)

// MetricsReporter exposes Prometheus counters for test-case and step
// outcomes, for scraping by an external collector.
type MetricsReporter struct {
	testCasesTotal *prometheus.CounterVec
	stepsTotal     *prometheus.CounterVec
	stepsSkipped   *prometheus.CounterVec

	mu    sync.Mutex
	kinds map[string]string // stepId -> kind, recorded at StepStart for StepEnd's use
}

// NewMetricsReporter registers its counters against reg and returns a
// MetricsReporter. Pass prometheus.NewRegistry() (or
// prometheus.DefaultRegisterer) for reg.
func NewMetricsReporter(reg prometheus.Registerer) (*MetricsReporter, error) {
	m := &MetricsReporter{
		testCasesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "testflow",
			Name:      "test_cases_total",
			Help:      "Total test cases executed, by verdict.",
		}, []string{"verdict"}),
		stepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "testflow",
			Name:      "steps_total",
			Help:      "Total steps executed, by kind and outcome.",
		}, []string{"kind", "success"}),
		stepsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "testflow",
			Name:      "steps_skipped_total",
			Help:      "Total steps skipped, by kind.",
		}, []string{"kind"}),
		kinds: make(map[string]string),
	}

	for _, collector := range []prometheus.Collector{m.testCasesTotal, m.stepsTotal, m.stepsSkipped} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}

	return m, nil
}

var _ engine.Reporter = (*MetricsReporter)(nil)

func (m *MetricsReporter) TestStart(string, string) {}

func (m *MetricsReporter) StepStart(id, _, kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kinds[id] = kind
}

func (m *MetricsReporter) StepEnd(id string, success bool, _ any) {
	m.mu.Lock()
	kind := m.kinds[id]
	delete(m.kinds, id)
	m.mu.Unlock()

	if kind == "" {
		kind = "unknown"
	}
	m.stepsTotal.WithLabelValues(kind, successLabel(success)).Inc()
}

func (m *MetricsReporter) StepSkipped(_, _, kind, _ string) {
	m.stepsSkipped.WithLabelValues(kind).Inc()
}

func (m *MetricsReporter) TestEnd(_ string, success bool) {
	m.testCasesTotal.WithLabelValues(successLabel(success)).Inc()
}

func successLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
