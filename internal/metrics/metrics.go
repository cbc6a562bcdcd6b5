// Package metrics exposes a minimal Prometheus text-exposition endpoint
// for the bridge's own health counters (spec.md's ambient stack, A5): no
// label dimensions, just a handful of monotonic counters and gauges
// guarded by a mutex, in the vein of the teacher's own hand-rolled
// pkg/metrics/prometheus.go rather than a client library dependency (see
// DESIGN.md for why no pack repo pulls in prometheus/client_golang).
package metrics

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// Metrics is the counters the bridge maintains.
type Metrics struct {
	mu       sync.Mutex
	counters map[string]float64
	gauges   map[string]float64
}

// New creates an empty Metrics registry.
func New() *Metrics {
	return &Metrics{
		counters: make(map[string]float64),
		gauges:   make(map[string]float64),
	}
}

// Inc increments a named counter by one.
func (m *Metrics) Inc(name string) {
	m.Add(name, 1)
}

// Add increments a named counter by delta.
func (m *Metrics) Add(name string, delta float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += delta
}

// SetGauge sets a named gauge's current value.
func (m *Metrics) SetGauge(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[name] = value
}

// WritePrometheus renders the current counters and gauges in Prometheus
// text exposition format.
func (m *Metrics) WritePrometheus(w io.Writer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, name := range sortedKeys(m.counters) {
		if _, err := fmt.Fprintf(w, "%s %g\n", name, m.counters[name]); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(m.gauges) {
		if _, err := fmt.Fprintf(w, "%s %g\n", name, m.gauges[name]); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Names of the counters/gauges the bridge maintains, per spec.md's ambient
// observability section.
const (
	WirenMessagesTotal   = "wiren_messages_total"
	HAPublishesTotal     = "ha_publishes_total"
	HAPublishErrorsTotal = "ha_publish_errors_total"
	CommandRoundtripsTotal = "command_roundtrips_total"
	WirenConnected       = "wiren_connected"
	HAConnected          = "ha_connected"
)
