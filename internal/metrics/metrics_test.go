package metrics

import (
	"strings"
	"testing"
)

func TestMetricsWritePrometheus(t *testing.T) {
	m := New()
	m.Inc(WirenMessagesTotal)
	m.Inc(WirenMessagesTotal)
	m.SetGauge(WirenConnected, 1)

	var sb strings.Builder
	if err := m.WritePrometheus(&sb); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}

	out := sb.String()
	if !strings.Contains(out, "wiren_messages_total 2") {
		t.Fatalf("expected counter at 2, got:\n%s", out)
	}
	if !strings.Contains(out, "wiren_connected 1") {
		t.Fatalf("expected gauge at 1, got:\n%s", out)
	}
}
