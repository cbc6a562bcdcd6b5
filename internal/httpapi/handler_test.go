package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wb-ha-bridge/internal/logger"
	"wb-ha-bridge/internal/metrics"
	"wb-ha-bridge/internal/mqttutil"
)

func TestSnapshotHandlerServesRenderedYAML(t *testing.T) {
	recorder := mqttutil.NewRecordingClient()
	recorder.Publish("homeassistant/switch/d1/k1/config", 1, true, []byte(`{"unique_id":"d1_k1","name":"K1"}`))

	h := NewSnapshotHandler(recorder, logger.NewMockLogger())

	req := httptest.NewRequest(http.MethodGet, "/snapshot", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "d1_k1") {
		t.Fatalf("expected rendered yaml to include the discovery entry, got:\n%s", rec.Body.String())
	}
}

func TestSnapshotHandlerRejectsNonGet(t *testing.T) {
	h := NewSnapshotHandler(mqttutil.NewRecordingClient(), logger.NewMockLogger())

	req := httptest.NewRequest(http.MethodPost, "/snapshot", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestMetricsHandlerServesCounters(t *testing.T) {
	m := metrics.New()
	m.Inc(metrics.WirenMessagesTotal)
	h := NewMetricsHandler(m)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "wiren_messages_total 1") {
		t.Fatalf("expected metrics body to include the counter, got:\n%s", rec.Body.String())
	}
}
