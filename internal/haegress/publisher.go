package haegress

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"wb-ha-bridge/internal/config"
	"wb-ha-bridge/internal/logger"
	"wb-ha-bridge/internal/model"
	"wb-ha-bridge/internal/router"
)

// CommandSink is the capability the HA egress needs from the reverse
// command path (internal/command), kept as a narrow interface here so
// that package doesn't need to import this one, per spec.md §9.
type CommandSink interface {
	HandleCommand(deviceID, controlID, payload string) error
}

var commandTopicRe = regexp.MustCompile(`^/devices/([^/]+)/controls/([^/]+)/on$`)

// Publisher is the HA egress (spec.md §4.4/§4.5): it turns registry state
// into discovery/availability/state publishes on the HA broker, debounced
// through task slots, and forwards inbound command topics to a
// CommandSink. It satisfies the HAPublisher capability interface the
// Wiren ingress depends on (spec.md §9) purely structurally.
type Publisher struct {
	registry *model.Registry
	custom   *model.Customisation
	router   *router.Router
	slots    *model.Slots
	settings config.HASettings
	log      logger.ILogger
	sink     CommandSink
	rate     *rateLimiter

	mu        sync.Mutex
	published map[string]bool
}

// Topic patterns subscribed on the HA broker, per spec.md §4.5/§4.6.
const (
	StatusTopic    = "hass/status"
	CommandPattern = "/devices/+/controls/+/on"
)

// NewPublisher builds a Publisher. Each Publish* call takes the context
// that bounds the task it schedules.
func NewPublisher(registry *model.Registry, custom *model.Customisation, rtr *router.Router, slots *model.Slots, settings config.HASettings, log logger.ILogger, sink CommandSink) *Publisher {
	return &Publisher{
		registry:  registry,
		custom:    custom,
		router:    rtr,
		slots:     slots,
		settings:  settings,
		log:       log,
		sink:      sink,
		rate:      newRateLimiter(time.Second),
		published: make(map[string]bool),
	}
}

// PublishDeviceConfig republishes every control's discovery config for
// deviceID, debounced on the "<device>_device_config" slot.
func (p *Publisher) PublishDeviceConfig(ctx context.Context, deviceID string) {
	key := deviceID + "_device_config"
	p.slots.Schedule(ctx, key, func(taskCtx context.Context) {
		if !p.waitDelay(taskCtx, key) {
			return
		}
		device := p.registry.Device(deviceID)
		for _, control := range device.Controls() {
			p.publishOneControlConfig(device, control)
		}
		p.markPublished(key)
	})
}

// PublishControlConfig republishes one control's discovery config,
// debounced on the "<device>_<control>_config" slot.
func (p *Publisher) PublishControlConfig(ctx context.Context, deviceID, controlID string) {
	key := deviceID + "_" + controlID + "_config"
	p.slots.Schedule(ctx, key, func(taskCtx context.Context) {
		if !p.waitDelay(taskCtx, key) {
			return
		}
		device := p.registry.Device(deviceID)
		control, _ := device.Control(controlID)
		p.publishOneControlConfig(device, control)
	})
}

// PublishAvailability republishes a control's availability payload,
// debounced per availability topic.
func (p *Publisher) PublishAvailability(ctx context.Context, deviceID, controlID string) {
	topic := fmt.Sprintf("/devices/%s/controls/%s/availability", deviceID, controlID)
	key := "publish_" + topic
	p.slots.Schedule(ctx, key, func(taskCtx context.Context) {
		if taskCtx.Err() != nil {
			return
		}
		device := p.registry.Device(deviceID)
		control, _ := device.Control(controlID)
		payload := "0"
		if control.IsAvailable() {
			payload = "1"
		}
		if err := p.router.Publish(topic, []byte(payload), p.settings.AvailabilityQoS, p.settings.AvailabilityRetain); err != nil {
			p.log.Warn("publish availability %s: %v", topic, err)
		}
	})
}

// PublishControlState republishes a control's current state, rate
// limited and debounced per "publish_state_<control>".
func (p *Publisher) PublishControlState(ctx context.Context, deviceID, controlID string) {
	key := "publish_state_" + controlID
	p.slots.Schedule(ctx, key, func(taskCtx context.Context) {
		if taskCtx.Err() != nil {
			return
		}
		if !p.rate.Allow(deviceID + "/" + controlID) {
			return
		}
		device := p.registry.Device(deviceID)
		control, _ := device.Control(controlID)
		if !control.HasState {
			return
		}
		topic := fmt.Sprintf("/devices/%s/controls/%s", deviceID, controlID)
		if err := p.router.Publish(topic, []byte(control.LastState), p.settings.StateQoS, p.settings.StateRetain); err != nil {
			p.log.Warn("publish state %s: %v", topic, err)
		}
	})
}

// PublishAllDevices republishes the discovery config and availability of
// every known device, debounced on the fixed "publish_all_devices" slot
// (spec.md §4.5's response to "hass/status" -> "online").
func (p *Publisher) PublishAllDevices(ctx context.Context) {
	const key = "publish_all_devices"
	p.slots.Schedule(ctx, key, func(taskCtx context.Context) {
		if taskCtx.Err() != nil {
			return
		}
		for _, device := range p.registry.Devices() {
			for _, control := range device.Controls() {
				if taskCtx.Err() != nil {
					return
				}
				p.publishOneControlConfig(device, control)
				topic := fmt.Sprintf("/devices/%s/controls/%s/availability", device.ID, control.ID)
				payload := "0"
				if control.IsAvailable() {
					payload = "1"
				}
				if err := p.router.Publish(topic, []byte(payload), p.settings.AvailabilityQoS, p.settings.AvailabilityRetain); err != nil {
					p.log.Warn("publish availability %s: %v", topic, err)
				}
			}
		}
	})
}

// Subscribe registers the HA status and command topics on rtr, using ctx
// as the parent for every task slot this Publisher later schedules.
func (p *Publisher) Subscribe(ctx context.Context, rtr *router.Router, qos byte) error {
	if err := rtr.Subscribe(StatusTopic, qos, func(_ string, payload []byte) {
		p.HandleStatus(ctx, string(payload))
	}); err != nil {
		return err
	}
	return rtr.Subscribe(CommandPattern, qos, func(topic string, payload []byte) {
		p.HandleCommand(topic, payload)
	})
}

// HandleStatus reacts to the HA birth/last-will topic "hass/status":
// "online" republishes everything known so far, "offline" is only logged.
func (p *Publisher) HandleStatus(ctx context.Context, payload string) {
	switch payload {
	case "online":
		p.log.Info("home assistant came online, republishing all devices")
		p.PublishAllDevices(ctx)
	case "offline":
		p.log.Info("home assistant reported offline")
	default:
		p.log.Warn("unrecognised hass/status payload %q", payload)
	}
}

// HandleCommand parses a "/devices/<id>/controls/<id>/on" command topic
// and forwards it to the CommandSink.
func (p *Publisher) HandleCommand(topic string, payload []byte) {
	m := commandTopicRe.FindStringSubmatch(topic)
	if m == nil {
		p.log.Warn("ignoring command on unrecognised topic %q", topic)
		return
	}
	if p.sink == nil {
		return
	}
	if err := p.sink.HandleCommand(m[1], m[2], string(payload)); err != nil {
		p.log.Error("forwarding command to %s/%s: %v", m[1], m[2], err)
	}
}

// publishOneControlConfig computes and publishes a single control's
// discovery config, recording whether this is its first ever publish for
// waitDelay's benefit.
func (p *Publisher) publishOneControlConfig(device *model.Device, control *model.Control) {
	topic, cfg, ok := buildDiscoveryConfig(device, control, p.custom)
	if !ok {
		return
	}
	payload, err := marshalConfig(cfg)
	if err != nil {
		p.log.Error("marshal discovery config for %s/%s: %v", device.ID, control.ID, err)
		return
	}
	if err := p.router.Publish(topic, payload, p.settings.ConfigQoS, p.settings.ConfigRetain); err != nil {
		p.log.Warn("publish discovery config %s: %v", topic, err)
		return
	}
	p.markPublished(device.ID + "_" + control.ID + "_config")
}

// waitDelay sleeps ConfigFirstPublishDelaySeconds before a slot's first
// ever publish, or ConfigPublishDelaySeconds on every later one, per
// spec.md §4.5. It returns false if taskCtx was cancelled first (the slot
// was replaced by a newer update before the delay elapsed).
func (p *Publisher) waitDelay(taskCtx context.Context, key string) bool {
	delay := time.Duration(p.settings.ConfigPublishDelaySeconds) * time.Second
	if !p.wasPublished(key) {
		delay = time.Duration(p.settings.ConfigFirstPublishDelaySeconds) * time.Second
	}
	if delay <= 0 {
		return taskCtx.Err() == nil
	}
	select {
	case <-time.After(delay):
		return true
	case <-taskCtx.Done():
		return false
	}
}

func (p *Publisher) wasPublished(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.published[key]
}

func (p *Publisher) markPublished(key string) {
	p.mu.Lock()
	p.published[key] = true
	p.mu.Unlock()
}
