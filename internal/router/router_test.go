package router

import (
	"testing"

	"wb-ha-bridge/internal/logger"
	"wb-ha-bridge/internal/mqttutil"
)

func TestRouterFirstMatchWins(t *testing.T) {
	client := mqttutil.NewRecordingClient()
	log := logger.NewMockLogger()
	r := New(client, log)

	var matchedSpecific, matchedWildcard bool
	if err := r.Subscribe("/devices/+/meta/name", 1, func(topic string, payload []byte) {
		matchedSpecific = true
	}); err != nil {
		t.Fatalf("subscribe specific: %v", err)
	}
	if err := r.Subscribe("/devices/+/meta/+", 1, func(topic string, payload []byte) {
		matchedWildcard = true
	}); err != nil {
		t.Fatalf("subscribe wildcard: %v", err)
	}

	r.Dispatch("/devices/wb-mr6c_123/meta/name", []byte("Relay module"))

	if !matchedSpecific {
		t.Fatalf("expected the first-registered, more specific pattern to match")
	}
	if matchedWildcard {
		t.Fatalf("expected the second pattern to be skipped once the first matched")
	}
}

func TestRouterNotFoundHandler(t *testing.T) {
	client := mqttutil.NewRecordingClient()
	log := logger.NewMockLogger()
	r := New(client, log)

	var notFoundTopic string
	r.SetNotFoundHandler(func(topic string) { notFoundTopic = topic })

	r.Dispatch("/devices/x/meta/name", nil)

	if notFoundTopic != "/devices/x/meta/name" {
		t.Fatalf("expected not-found handler invoked with the topic, got %q", notFoundTopic)
	}
}

func TestRouterAnchoring(t *testing.T) {
	client := mqttutil.NewRecordingClient()
	log := logger.NewMockLogger()
	r := New(client, log)

	var matched bool
	if err := r.Subscribe("/devices/+/meta/name", 1, func(string, []byte) { matched = true }); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	// A topic that merely contains the pattern as a substring must not
	// match, since the compiled regex is anchored at both ends.
	r.Dispatch("/devices/x/meta/name/extra", nil)
	if matched {
		t.Fatalf("expected anchored pattern not to match a longer topic")
	}
}

func TestRouterPublishPassThrough(t *testing.T) {
	client := mqttutil.NewRecordingClient()
	log := logger.NewMockLogger()
	r := New(client, log)

	if err := r.Publish("/devices/x/controls/y", []byte("1"), 1, true); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if string(client.Snapshot()["/devices/x/controls/y"]) != "1" {
		t.Fatalf("expected publish to reach the underlying client")
	}
}
