package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadConfigAppliesRetainDefaultsWhenAbsent(t *testing.T) {
	path := writeTempConfig(t, `
wirenboard:
  broker_host: 127.0.0.1
homeassistant:
  broker_host: 127.0.0.1
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.HomeAssistant.AvailabilityRetain || !cfg.HomeAssistant.ConfigRetain || !cfg.HomeAssistant.StateRetain {
		t.Fatalf("expected all retain flags to default true when absent, got %+v", cfg.HomeAssistant)
	}
}

func TestLoadConfigHonoursExplicitFalseRetain(t *testing.T) {
	path := writeTempConfig(t, `
wirenboard:
  broker_host: 127.0.0.1
homeassistant:
  broker_host: 127.0.0.1
  state_retain: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HomeAssistant.StateRetain {
		t.Fatalf("expected explicit state_retain: false to be honoured")
	}
	if !cfg.HomeAssistant.ConfigRetain {
		t.Fatalf("expected config_retain to still default true")
	}
}

func TestLoadConfigRejectsMissingBrokerHost(t *testing.T) {
	path := writeTempConfig(t, `
wirenboard:
  broker_port: 1883
homeassistant:
  broker_host: 127.0.0.1
`)

	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected LoadConfig to reject a missing wirenboard.broker_host")
	}
}

func TestLoadConfigAppliesQoSDefaults(t *testing.T) {
	path := writeTempConfig(t, `
wirenboard:
  broker_host: 127.0.0.1
homeassistant:
  broker_host: 127.0.0.1
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Wirenboard.SubscribeQoS != 1 || cfg.Wirenboard.PublishQoS != 1 {
		t.Fatalf("expected default QoS 1, got %+v", cfg.Wirenboard)
	}
	if cfg.HomeAssistant.ConfigFirstPublishDelaySeconds != 1 {
		t.Fatalf("expected default first publish delay 1s, got %d", cfg.HomeAssistant.ConfigFirstPublishDelaySeconds)
	}
}
