// Package wiren implements the Wiren Board ingress of spec.md §4.3: it
// subscribes to device/control meta and state topics, mutates the
// registry accordingly, and requests HA republishes only when something
// actually changed.
package wiren

import (
	"context"
	"strconv"
	"strings"

	"wb-ha-bridge/internal/logger"
	"wb-ha-bridge/internal/model"
	"wb-ha-bridge/internal/router"
)

// HAPublisher is the capability the Wiren ingress needs from the HA
// egress, kept narrow so internal/haegress doesn't need to import this
// package back (spec.md §9's construction-time cycle fix).
type HAPublisher interface {
	PublishDeviceConfig(ctx context.Context, deviceID string)
	PublishControlConfig(ctx context.Context, deviceID, controlID string)
	PublishAvailability(ctx context.Context, deviceID, controlID string)
	PublishControlState(ctx context.Context, deviceID, controlID string)
}

// Topic patterns subscribed on the Wiren broker, per spec.md §4.3.
const (
	DeviceMetaPattern  = "/devices/+/meta/+"
	ControlMetaPattern = "/devices/+/controls/+/meta/+"
	ControlPattern     = "/devices/+/controls/+"
)

const systemPseudoDevice = "system"

// Ingress owns the registry mutations driven by Wiren Board's telemetry.
type Ingress struct {
	registry *model.Registry
	ha       HAPublisher
	log      logger.ILogger
	ctx      context.Context
}

// New creates an Ingress bound to registry and ha. ctx bounds every HA
// republish request this ingress schedules.
func New(ctx context.Context, registry *model.Registry, ha HAPublisher, log logger.ILogger) *Ingress {
	return &Ingress{registry: registry, ha: ha, log: log, ctx: ctx}
}

// Subscribe registers the three Wiren topic patterns on rtr.
func (g *Ingress) Subscribe(rtr *router.Router, qos byte) error {
	if err := rtr.Subscribe(DeviceMetaPattern, qos, g.handleDeviceMeta); err != nil {
		return err
	}
	if err := rtr.Subscribe(ControlMetaPattern, qos, g.handleControlMeta); err != nil {
		return err
	}
	if err := rtr.Subscribe(ControlPattern, qos, g.handleControlState); err != nil {
		return err
	}
	return nil
}

// handleDeviceMeta handles "/devices/<id>/meta/<name>". Only "name" is
// currently meaningful (spec.md §4.3); anything else is ignored.
func (g *Ingress) handleDeviceMeta(topic string, payload []byte) {
	deviceID, metaName, ok := splitTwoTail(topic, "/meta/")
	if !ok {
		return
	}
	if metaName != "name" {
		return
	}

	device := g.registry.Device(deviceID)
	if device.SetDisplayName(string(payload)) {
		g.ha.PublishDeviceConfig(g.ctx, deviceID)
	}
}

// handleControlMeta handles "/devices/<id>/controls/<id>/meta/<name>".
func (g *Ingress) handleControlMeta(topic string, payload []byte) {
	deviceID, controlID, metaName, ok := splitControlMeta(topic)
	if !ok {
		return
	}

	device := g.registry.Device(deviceID)
	control, _ := device.Control(controlID)
	value := string(payload)
	changed := false

	switch metaName {
	case "type":
		t, known := model.ParseControlType(value)
		if !known {
			g.log.Warn("unknown control type %q on %s/%s", value, deviceID, controlID)
			t = model.ControlTypeUnknown
		}
		if control.SetType(t) {
			changed = true
			if unit, has := t.DefaultUnit(); has {
				if control.SetUnits(unit) {
					changed = true
				}
			}
		}
	case "readonly":
		if control.SetReadOnly(value == "1") {
			changed = true
		}
	case "units":
		if control.SetUnits(value) {
			changed = true
		}
	case "max":
		if value == "" {
			if control.SetMax(0, false) {
				changed = true
			}
			break
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			g.log.Warn("non-numeric max %q on %s/%s", value, deviceID, controlID)
			break
		}
		if control.SetMax(n, true) {
			changed = true
		}
	case "error":
		if control.SetError(isTruthy(value)) {
			changed = true
		}
		if control.EnsureErrorKnown() {
			changed = true
		}
	case "order":
		// order only affects display ordering in the original UI; no HA
		// discovery field depends on it.
		return
	default:
		return
	}

	if control.EnsureErrorKnown() {
		changed = true
	}

	if !changed {
		return
	}
	g.ha.PublishControlConfig(g.ctx, deviceID, controlID)
	g.ha.PublishAvailability(g.ctx, deviceID, controlID)
}

// handleControlState handles "/devices/<id>/controls/<id>", the raw
// state value topic, including the "system" pseudo-device's hardware
// enrichment fields (spec.md §4.3).
func (g *Ingress) handleControlState(topic string, payload []byte) {
	deviceID, controlID, ok := splitControlState(topic)
	if !ok {
		return
	}
	value := string(payload)

	if deviceID == systemPseudoDevice {
		g.handleSystemEnrichment(controlID, value)
		return
	}

	device := g.registry.Device(deviceID)
	control, _ := device.Control(controlID)

	if controlID == "serial" {
		if device.SetSerialNumber(value) {
			g.ha.PublishDeviceConfig(g.ctx, deviceID)
		}
	}

	if control.SetState(value) {
		g.ha.PublishControlState(g.ctx, deviceID, controlID)
	}
}

// handleSystemEnrichment applies the handful of "system/<control>" state
// values that enrich every device's HA discovery "device" object rather
// than producing an entity of their own (spec.md §4.3).
func (g *Ingress) handleSystemEnrichment(controlID, value string) {
	switch controlID {
	case "hw_revision":
		for _, device := range g.registry.Devices() {
			if device.SetHWVersionAndModel(value) {
				g.ha.PublishDeviceConfig(g.ctx, device.ID)
			}
		}
	case "release_name":
		for _, device := range g.registry.Devices() {
			if device.SetSWVersion(value) {
				g.ha.PublishDeviceConfig(g.ctx, device.ID)
			}
		}
	case "short_sn":
		for _, device := range g.registry.Devices() {
			if device.SetSerialNumber(value) {
				g.ha.PublishDeviceConfig(g.ctx, device.ID)
			}
		}
	default:
		// other system/* controls carry no HA-relevant enrichment.
	}
}

// isTruthy implements the preserved quirk of spec.md §9(b): any
// non-empty payload, including the literal "0", counts as true. Only an
// empty payload is false.
func isTruthy(v string) bool {
	return v != ""
}

func splitTwoTail(topic, sep string) (head, tail string, ok bool) {
	i := strings.Index(topic, sep)
	if i < 0 {
		return "", "", false
	}
	const devicesPrefix = "/devices/"
	if !strings.HasPrefix(topic, devicesPrefix) {
		return "", "", false
	}
	head = topic[len(devicesPrefix):i]
	tail = topic[i+len(sep):]
	if head == "" || tail == "" || strings.Contains(tail, "/") {
		return "", "", false
	}
	return head, tail, true
}

func splitControlMeta(topic string) (deviceID, controlID, metaName string, ok bool) {
	const prefix = "/devices/"
	if !strings.HasPrefix(topic, prefix) {
		return "", "", "", false
	}
	rest := topic[len(prefix):]
	parts := strings.Split(rest, "/")
	if len(parts) != 5 || parts[1] != "controls" || parts[3] != "meta" {
		return "", "", "", false
	}
	return parts[0], parts[2], parts[4], true
}

func splitControlState(topic string) (deviceID, controlID string, ok bool) {
	const prefix = "/devices/"
	if !strings.HasPrefix(topic, prefix) {
		return "", "", false
	}
	rest := topic[len(prefix):]
	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[1] != "controls" {
		return "", "", false
	}
	return parts[0], parts[2], true
}
