package report

import (
	"github.com/katonium/testflow/internal/engine"
	"github.com/katonium/testflow/internal/logging"
)

// LogReporter renders every lifecycle event as a structured log entry via
// internal/logging, mirroring the teacher's LoggingPublisher (one log line
// per event, fields in a fixed order for deterministic output).
type LogReporter struct {
	logger *logging.Logger
}

// NewLogReporter returns a LogReporter writing through logger.
func NewLogReporter(logger *logging.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

var _ engine.Reporter = (*LogReporter)(nil)

func (l *LogReporter) TestStart(id, name string) {
	l.logger.Info("test start", "testCaseId", id, "testCaseName", name)
}

func (l *LogReporter) StepStart(id, name, kind string) {
	l.logger.Info("step start", "stepId", id, "name", name, "kind", kind)
}

func (l *LogReporter) StepEnd(id string, success bool, output any) {
	l.logger.Info("step end", "stepId", id, "success", success, "output", output)
}

func (l *LogReporter) StepSkipped(id, name, kind, reason string) {
	l.logger.Info("step skipped", "stepId", id, "name", name, "kind", kind, "reason", reason)
}

func (l *LogReporter) TestEnd(id string, success bool) {
	l.logger.Info("test end", "testCaseId", id, "success", success)
}
