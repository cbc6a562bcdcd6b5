// Package config parses and validates the bridge's YAML configuration,
// following the teacher's LoadConfig/Settings split (spec.md §6).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"wb-ha-bridge/internal/berrors"
)

// Config is the full, unmarshalled configuration document.
type Config struct {
	General       GeneralConfig `yaml:"general"`
	MQTTLog       MQTTLogConfig `yaml:"mqtt"`
	Wirenboard    BrokerConfig  `yaml:"wirenboard"`
	HomeAssistant HAConfig      `yaml:"homeassistant"`
}

// GeneralConfig holds application-wide settings.
type GeneralConfig struct {
	LogLevel string `yaml:"loglevel"`
}

// MQTTLogConfig holds the transport-logging level, kept separate from
// general.loglevel per spec.md §6.
type MQTTLogConfig struct {
	LogLevel string `yaml:"loglevel"`
}

// BrokerConfig describes one MQTT broker connection (used for both the
// Wiren Board broker and, embedded in HAConfig, the HA broker).
type BrokerConfig struct {
	BrokerHost    string `yaml:"broker_host"`
	BrokerPort    int    `yaml:"broker_port"`
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`
	MQTTClientID  string `yaml:"mqtt_client_id"`
	SubscribeQoS  byte   `yaml:"subscribe_qos"`
	PublishQoS    byte   `yaml:"publish_qos"`
	PublishRetain bool   `yaml:"publish_retain"`
}

// HAConfig holds all homeassistant.* settings from spec.md §6.
type HAConfig struct {
	BrokerConfig `yaml:",inline"`

	AvailabilityQoS    byte `yaml:"availability_qos"`
	ConfigQoS          byte `yaml:"config_qos"`
	StateQoS           byte `yaml:"state_qos"`
	AvailabilityRetain bool `yaml:"availability_retain"`
	ConfigRetain       bool `yaml:"config_retain"`
	StateRetain        bool `yaml:"state_retain"`

	ConfigFirstPublishDelaySeconds int `yaml:"config_first_publish_delay"`
	ConfigPublishDelaySeconds      int `yaml:"config_publish_delay"`

	IgnoredDeviceIDs        []string              `yaml:"ignored_device_ids"`
	IgnoredDeviceControlIDs []string              `yaml:"ignored_device_control_ids"`
	SplittedDeviceIDs       []string              `yaml:"splitted_device_ids"`
	CombinedDevices         []CombinedDeviceEntry `yaml:"combined_devices"`
	EnableDefaultCombined   *bool                 `yaml:"enable_default_combined_devices"`
}

// CombinedDeviceEntry is one entry of homeassistant.combined_devices.
type CombinedDeviceEntry struct {
	DeviceID    string `yaml:"device_id"`
	NewDeviceID string `yaml:"new_device_id"`
	NewName     string `yaml:"new_name"`
}

// applyDefaults fills in the fixed defaults named in spec.md §6.
func (c *Config) applyDefaults() {
	if c.Wirenboard.SubscribeQoS == 0 {
		c.Wirenboard.SubscribeQoS = 1
	}
	if c.Wirenboard.PublishQoS == 0 {
		c.Wirenboard.PublishQoS = 1
	}

	ha := &c.HomeAssistant
	if ha.SubscribeQoS == 0 {
		ha.SubscribeQoS = 1
	}
	if ha.AvailabilityQoS == 0 {
		ha.AvailabilityQoS = 1
	}
	if ha.ConfigQoS == 0 {
		ha.ConfigQoS = 1
	}
	if ha.StateQoS == 0 {
		ha.StateQoS = 1
	}
	if ha.ConfigFirstPublishDelaySeconds == 0 {
		ha.ConfigFirstPublishDelaySeconds = 1
	}
	if ha.EnableDefaultCombined == nil {
		t := true
		ha.EnableDefaultCombined = &t
	}
}

// LoadConfig reads and validates the configuration file at path, trying
// a couple of conventional fallback locations the way the teacher's
// LoadConfig does when path itself can't be read.
func LoadConfig(path string) (*Config, error) {
	candidates := []string{path, "/etc/wb-ha-bridge/config.yaml", "./wb-ha-bridge.yaml"}

	var data []byte
	var err error
	var used string
	for _, p := range candidates {
		if p == "" {
			continue
		}
		data, err = os.ReadFile(p)
		if err == nil {
			used = p
			break
		}
	}
	if err != nil {
		return nil, berrors.NewConfigError("load", "", fmt.Errorf("no readable config among %v: %w", candidates, err))
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, berrors.NewConfigError("parse", used, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, berrors.NewConfigError("parse", used, err)
	}

	applyRetainDefaults(&cfg, raw)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, berrors.NewConfigError("validate", used, err)
	}
	return &cfg, nil
}

// applyRetainDefaults forces the *_retain keys to true unless the raw
// document explicitly set them, since a plain bool field can't tell
// "absent" from "false" apart once yaml.v3 has unmarshalled it.
func applyRetainDefaults(cfg *Config, raw map[string]interface{}) {
	ha, ok := raw["homeassistant"].(map[string]interface{})
	if !ok {
		cfg.HomeAssistant.AvailabilityRetain = true
		cfg.HomeAssistant.ConfigRetain = true
		cfg.HomeAssistant.StateRetain = true
		return
	}
	if _, present := ha["availability_retain"]; !present {
		cfg.HomeAssistant.AvailabilityRetain = true
	}
	if _, present := ha["config_retain"]; !present {
		cfg.HomeAssistant.ConfigRetain = true
	}
	if _, present := ha["state_retain"]; !present {
		cfg.HomeAssistant.StateRetain = true
	}
}

// Validate reports the first structural error found. Per spec.md §7,
// invalid configs must be caught before any connection is attempted.
func (c *Config) Validate() error {
	if c.Wirenboard.BrokerHost == "" {
		return fmt.Errorf("wirenboard.broker_host is required")
	}
	if c.HomeAssistant.BrokerHost == "" {
		return fmt.Errorf("homeassistant.broker_host is required")
	}
	switch c.General.LogLevel {
	case "", "DEBUG", "INFO", "WARNING", "WARN", "ERROR", "FATAL":
	default:
		return fmt.Errorf("general.loglevel %q is not recognised", c.General.LogLevel)
	}
	return nil
}
