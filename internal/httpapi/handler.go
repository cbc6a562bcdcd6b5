// Package httpapi exposes the bridge's config snapshot over HTTP,
// grounded on the teacher's pkg/http/health_handler.go pattern of a thin
// net/http.Handler wrapping one piece of read-only state.
package httpapi

import (
	"net/http"

	"wb-ha-bridge/internal/logger"
	"wb-ha-bridge/internal/metrics"
	"wb-ha-bridge/internal/mqttutil"
	"wb-ha-bridge/internal/snapshot"
)

// SnapshotHandler serves the current discovery stream rendered as YAML.
type SnapshotHandler struct {
	recording *mqttutil.RecordingClient
	log       logger.ILogger
}

// NewSnapshotHandler creates a SnapshotHandler that reads its state from
// recording, the capture client mirrored alongside the HA broker's real
// client.
func NewSnapshotHandler(recording *mqttutil.RecordingClient, log logger.ILogger) *SnapshotHandler {
	return &SnapshotHandler{recording: recording, log: log}
}

func (h *SnapshotHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	doc, err := snapshot.Render(h.recording.Snapshot())
	if err != nil {
		h.log.Error("render config snapshot: %v", err)
		http.Error(w, "failed to render snapshot", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/x-yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// MetricsHandler serves the bridge's own Prometheus-format counters.
type MetricsHandler struct {
	metrics *metrics.Metrics
}

// NewMetricsHandler creates a MetricsHandler.
func NewMetricsHandler(m *metrics.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: m}
}

func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	if err := h.metrics.WritePrometheus(w); err != nil {
		http.Error(w, "failed to render metrics", http.StatusInternalServerError)
	}
}
