package report

import (
	"encoding/json"

	"github.com/nats-io/nats.go"

	"github.com/katonium/testflow/internal/engine"
)

// NATSReporter publishes each lifecycle event as a JSON message on subject,
// for out-of-process observers, grounded on the teacher's EventPublisher
// pattern but backed by a real broker connection instead of an in-process
// subscriber map.
type NATSReporter struct {
	conn    *nats.Conn
	subject string
}

// NewNATSReporter returns a NATSReporter publishing to subject over conn.
// The caller owns conn's lifecycle (connect/close).
func NewNATSReporter(conn *nats.Conn, subject string) *NATSReporter {
	return &NATSReporter{conn: conn, subject: subject}
}

var _ engine.Reporter = (*NATSReporter)(nil)

type natsEvent struct {
	Type         string `json:"type"`
	TestCaseID   string `json:"testCaseId,omitempty"`
	TestCaseName string `json:"testCaseName,omitempty"`
	StepID       string `json:"stepId,omitempty"`
	StepName     string `json:"stepName,omitempty"`
	Kind         string `json:"kind,omitempty"`
	Success      *bool  `json:"success,omitempty"`
	Output       any    `json:"output,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

func (n *NATSReporter) publish(event natsEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	_ = n.conn.Publish(n.subject, payload)
}

func (n *NATSReporter) TestStart(id, name string) {
	n.publish(natsEvent{Type: "testStart", TestCaseID: id, TestCaseName: name})
}

func (n *NATSReporter) StepStart(id, name, kind string) {
	n.publish(natsEvent{Type: "stepStart", StepID: id, StepName: name, Kind: kind})
}

func (n *NATSReporter) StepEnd(id string, success bool, output any) {
	n.publish(natsEvent{Type: "stepEnd", StepID: id, Success: &success, Output: output})
}

func (n *NATSReporter) StepSkipped(id, name, kind, reason string) {
	n.publish(natsEvent{Type: "stepSkipped", StepID: id, StepName: name, Kind: kind, Reason: reason})
}

func (n *NATSReporter) TestEnd(id string, success bool) {
	n.publish(natsEvent{Type: "testEnd", TestCaseID: id, Success: &success})
}
