package config

import "testing"

func TestNewCustomisationAppliesDefaultsAndOverrides(t *testing.T) {
	trueVal := true
	cfg := &Config{
		HomeAssistant: HAConfig{
			EnableDefaultCombined: &trueVal,
			CombinedDevices: []CombinedDeviceEntry{
				{DeviceID: "wb_adc", NewDeviceID: "custom", NewName: "Custom"},
			},
		},
	}

	custom := NewCustomisation(cfg)
	cd, ok := custom.Combined("wb_adc")
	if !ok {
		t.Fatalf("expected wb_adc to be combined")
	}
	if cd.NewDeviceID != "custom" {
		t.Fatalf("expected explicit combined_devices entry to override the default, got %q", cd.NewDeviceID)
	}

	other, ok := custom.Combined("wbrules")
	if !ok || other.NewDeviceID != "wirenboard" {
		t.Fatalf("expected other default-combined devices to remain at their default target")
	}
}

func TestNewWirenSettingsAndHASettings(t *testing.T) {
	cfg := &Config{
		Wirenboard: BrokerConfig{BrokerHost: "wb.local", BrokerPort: 1883, SubscribeQoS: 1, PublishQoS: 1},
		HomeAssistant: HAConfig{
			BrokerConfig: BrokerConfig{BrokerHost: "ha.local", BrokerPort: 1884},
			StateQoS:     2,
		},
	}

	wiren := NewWirenSettings(cfg)
	if wiren.BrokerHost != "wb.local" || wiren.BrokerPort != 1883 {
		t.Fatalf("unexpected wiren settings: %+v", wiren)
	}

	ha := NewHASettings(cfg)
	if ha.BrokerHost != "ha.local" || ha.StateQoS != 2 {
		t.Fatalf("unexpected ha settings: %+v", ha)
	}
}
