package config

import "wb-ha-bridge/internal/model"

// WirenSettings carries only the Wiren broker connection settings, for
// dependency injection into the supervisor without coupling it to the
// full Config — mirrors the teacher's NewMQTTSettings/NewGatewaySettings
// extractors.
type WirenSettings struct {
	BrokerHost    string
	BrokerPort    int
	Username      string
	Password      string
	ClientID      string
	SubscribeQoS  byte
	PublishQoS    byte
	PublishRetain bool
}

// NewWirenSettings extracts Wiren broker settings from the full config.
func NewWirenSettings(cfg *Config) WirenSettings {
	w := cfg.Wirenboard
	return WirenSettings{
		BrokerHost:    w.BrokerHost,
		BrokerPort:    w.BrokerPort,
		Username:      w.Username,
		Password:      w.Password,
		ClientID:      w.MQTTClientID,
		SubscribeQoS:  w.SubscribeQoS,
		PublishQoS:    w.PublishQoS,
		PublishRetain: w.PublishRetain,
	}
}

// HASettings carries the HA broker connection and publish-behaviour
// settings.
type HASettings struct {
	BrokerHost                     string
	BrokerPort                     int
	Username                       string
	Password                       string
	ClientID                       string
	SubscribeQoS                   byte
	AvailabilityQoS                byte
	ConfigQoS                      byte
	StateQoS                       byte
	AvailabilityRetain             bool
	ConfigRetain                   bool
	StateRetain                    bool
	ConfigFirstPublishDelaySeconds int
	ConfigPublishDelaySeconds      int
}

// NewHASettings extracts HA broker settings from the full config.
func NewHASettings(cfg *Config) HASettings {
	ha := cfg.HomeAssistant
	return HASettings{
		BrokerHost:                     ha.BrokerHost,
		BrokerPort:                     ha.BrokerPort,
		Username:                       ha.Username,
		Password:                       ha.Password,
		ClientID:                       ha.MQTTClientID,
		SubscribeQoS:                   ha.SubscribeQoS,
		AvailabilityQoS:                ha.AvailabilityQoS,
		ConfigQoS:                      ha.ConfigQoS,
		StateQoS:                       ha.StateQoS,
		AvailabilityRetain:             ha.AvailabilityRetain,
		ConfigRetain:                   ha.ConfigRetain,
		StateRetain:                    ha.StateRetain,
		ConfigFirstPublishDelaySeconds: ha.ConfigFirstPublishDelaySeconds,
		ConfigPublishDelaySeconds:      ha.ConfigPublishDelaySeconds,
	}
}

// NewCustomisation builds the immutable model.Customisation policy from
// the homeassistant.* customisation keys.
func NewCustomisation(cfg *Config) *model.Customisation {
	ha := cfg.HomeAssistant

	combined := make(map[string]model.CombinedDevice, len(ha.CombinedDevices))
	for _, entry := range ha.CombinedDevices {
		combined[entry.DeviceID] = model.CombinedDevice{
			NewDeviceID: entry.NewDeviceID,
			NewName:     entry.NewName,
		}
	}

	enableDefault := true
	if ha.EnableDefaultCombined != nil {
		enableDefault = *ha.EnableDefaultCombined
	}

	return model.NewCustomisation(model.CustomisationOptions{
		IgnoredDeviceIDs:        ha.IgnoredDeviceIDs,
		IgnoredDeviceControlIDs: ha.IgnoredDeviceControlIDs,
		SplittedDeviceIDs:       ha.SplittedDeviceIDs,
		CombinedDevices:         combined,
		EnableDefaultCombined:   enableDefault,
	})
}
