package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// NATSReporter itself needs a live broker connection to exercise end to end;
// that's integration-test territory. Here we pin down the wire shape its
// publish() method produces, since that's the part other services integrate
// against.
func TestNATSEventOmitsUnsetFields(t *testing.T) {
	t.Parallel()

	success := true
	event := natsEvent{Type: "stepEnd", StepID: "s1", Success: &success}

	encoded, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(encoded, &decoded))

	require.Equal(t, "stepEnd", decoded["type"])
	require.Equal(t, "s1", decoded["stepId"])
	require.Equal(t, true, decoded["success"])
	require.NotContains(t, decoded, "testCaseId")
	require.NotContains(t, decoded, "output")
	require.NotContains(t, decoded, "reason")
}

func TestNATSEventDistinguishesSuccessFalseFromUnset(t *testing.T) {
	t.Parallel()

	failure := false
	event := natsEvent{Type: "testEnd", TestCaseID: "tc-1", Success: &failure}

	encoded, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(encoded, &decoded))

	require.Contains(t, decoded, "success")
	require.Equal(t, false, decoded["success"])
}
