// Package haegress implements the Home Assistant egress of spec.md §4.4
// and §4.5: discovery payload construction, customisation, rate-limited
// state publishing, and per-stream task-slot coordination.
package haegress

import (
	"encoding/json"
	"fmt"
	"strings"

	"wb-ha-bridge/internal/model"
	"wb-ha-bridge/internal/typemap"
)

// DeviceInfo is the "device" object nested in every discovery payload.
type DeviceInfo struct {
	Name         string `json:"name"`
	Identifiers  string `json:"identifiers"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`
	HWVersion    string `json:"hw_version,omitempty"`
	SWVersion    string `json:"sw_version,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
}

// DiscoveryConfig is the JSON discovery payload of spec.md §4.4.
type DiscoveryConfig struct {
	Device              DeviceInfo `json:"device"`
	Name                string     `json:"name"`
	UniqueID            string     `json:"unique_id"`
	AvailabilityTopic   string     `json:"availability_topic"`
	PayloadAvailable    string     `json:"payload_available"`
	PayloadNotAvailable string     `json:"payload_not_available"`

	StateTopic   string `json:"state_topic,omitempty"`
	CommandTopic string `json:"command_topic,omitempty"`
	PayloadOn    string `json:"payload_on,omitempty"`
	PayloadOff   string `json:"payload_off,omitempty"`
	StateOn      string `json:"state_on,omitempty"`
	StateOff     string `json:"state_off,omitempty"`

	DeviceClass       string `json:"device_class,omitempty"`
	UnitOfMeasurement string `json:"unit_of_measurement,omitempty"`
}

// resolved is the outcome of applying customisation to one (device,
// control) pair, per spec.md §4.4's precedence order.
type resolved struct {
	dropped        bool
	deviceUniqueID string
	displayName    string
	entityUniqueID string
	objectID       string
	entityName     string
}

// resolve applies ignore > split > combine, in that order, per spec.md §9.
func resolve(device *model.Device, control *model.Control, custom *model.Customisation) resolved {
	deviceUniqueID := model.Normalise(device.ID)
	entityUniqueID := model.Normalise(device.ID + "_" + control.ID)
	objectID := model.Normalise(control.ID)
	displayName := device.DisplayName
	entityName := titleCase(device.ID + " " + control.ID)

	if custom.IsDeviceIgnored(deviceUniqueID) {
		return resolved{dropped: true}
	}
	if custom.IsEntityIgnored(entityUniqueID) {
		return resolved{dropped: true}
	}
	if custom.IsSplit(deviceUniqueID) {
		deviceUniqueID = entityUniqueID
		displayName = displayName + " " + titleCase(control.ID)
	}
	if cd, ok := custom.Combined(deviceUniqueID); ok {
		deviceUniqueID = cd.NewDeviceID
		displayName = cd.NewName
	}

	return resolved{
		deviceUniqueID: deviceUniqueID,
		displayName:    displayName,
		entityUniqueID: entityUniqueID,
		objectID:       objectID,
		entityName:     entityName,
	}
}

// titleCase title-cases each underscore-separated word, replacing
// underscores with spaces, per spec.md §4.4.
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) == 0 {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// buildDiscoveryConfig builds the discovery payload for (device, control)
// and the topic to publish it on, or ok=false if the control should be
// skipped (ignored by customisation, or the type mapper returns None).
func buildDiscoveryConfig(device *model.Device, control *model.Control, custom *model.Customisation) (string, *DiscoveryConfig, bool) {
	r := resolve(device, control, custom)
	if r.dropped {
		return "", nil, false
	}

	component := typemap.ComponentFor(control.Type, control.ReadOnly)
	if component == typemap.None {
		return "", nil, false
	}

	controlTopic := fmt.Sprintf("/devices/%s/controls/%s", device.ID, control.ID)

	cfg := &DiscoveryConfig{
		Device: DeviceInfo{
			Name:        r.displayName,
			Identifiers: r.deviceUniqueID,
		},
		Name:                r.entityName,
		UniqueID:            r.entityUniqueID,
		AvailabilityTopic:   controlTopic + "/availability",
		PayloadAvailable:    "1",
		PayloadNotAvailable: "0",
	}

	if device.HasModel {
		cfg.Device.Model = device.Model
	}
	if device.Manufacturer != "" {
		cfg.Device.Manufacturer = device.Manufacturer
	}
	if device.HasHWVersion {
		cfg.Device.HWVersion = device.HWVersion
	}
	if device.HasSWVersion {
		cfg.Device.SWVersion = device.SWVersion
	}
	if device.HasSerial {
		cfg.Device.SerialNumber = device.SerialNumber
	}

	switch component {
	case typemap.Switch:
		cfg.StateTopic = controlTopic
		cfg.CommandTopic = controlTopic + "/on"
		cfg.PayloadOn, cfg.PayloadOff = "1", "0"
		cfg.StateOn, cfg.StateOff = "1", "0"
	case typemap.BinarySensor:
		cfg.StateTopic = controlTopic
		cfg.PayloadOn, cfg.PayloadOff = "1", "0"
	case typemap.Sensor:
		cfg.StateTopic = controlTopic
		if control.Type == model.ControlTypeTemperature {
			cfg.DeviceClass = "temperature"
		}
		if control.HasUnits {
			cfg.UnitOfMeasurement = control.Units
		}
	case typemap.Button:
		cfg.CommandTopic = controlTopic + "/on"
	}

	topic := fmt.Sprintf("homeassistant/%s/%s/%s/config", component.String(), r.deviceUniqueID, r.objectID)
	return topic, cfg, true
}

func marshalConfig(cfg *DiscoveryConfig) ([]byte, error) {
	return json.Marshal(cfg)
}
