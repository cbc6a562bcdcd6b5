package command

import (
	"testing"

	"wb-ha-bridge/internal/config"
	"wb-ha-bridge/internal/logger"
	"wb-ha-bridge/internal/mqttutil"
	"wb-ha-bridge/internal/router"
)

func TestHandleCommandPublishesToWirenOnTopic(t *testing.T) {
	client := mqttutil.NewRecordingClient()
	rtr := router.New(client, logger.NewMockLogger())
	settings := config.WirenSettings{PublishQoS: 1, PublishRetain: false}
	p := New(rtr, settings, logger.NewMockLogger())

	if err := p.HandleCommand("wb-mr6c_123", "K1", "1"); err != nil {
		t.Fatalf("HandleCommand: %v", err)
	}

	payload, ok := client.Snapshot()["/devices/wb-mr6c_123/controls/K1/on"]
	if !ok {
		t.Fatalf("expected command to be published to the wiren write topic")
	}
	if string(payload) != "1" {
		t.Fatalf("expected payload 1, got %q", payload)
	}
}
