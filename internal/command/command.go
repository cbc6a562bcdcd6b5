// Package command implements the reverse command path of spec.md §4.6:
// a Home Assistant command is forwarded verbatim onto the Wiren Board
// broker's write topic for the target control.
package command

import (
	"fmt"

	"wb-ha-bridge/internal/config"
	"wb-ha-bridge/internal/logger"
	"wb-ha-bridge/internal/router"
)

// Publisher forwards commands onto the Wiren Board broker. It satisfies
// the haegress.CommandSink capability interface structurally.
type Publisher struct {
	router   *router.Router
	settings config.WirenSettings
	log      logger.ILogger
}

// New creates a Publisher bound to the Wiren broker's router.
func New(rtr *router.Router, settings config.WirenSettings, log logger.ILogger) *Publisher {
	return &Publisher{router: rtr, settings: settings, log: log}
}

// HandleCommand publishes payload to "/devices/<deviceID>/controls/<controlID>/on"
// on the Wiren broker, per spec.md §4.6.
func (p *Publisher) HandleCommand(deviceID, controlID, payload string) error {
	topic := fmt.Sprintf("/devices/%s/controls/%s/on", deviceID, controlID)
	if err := p.router.Publish(topic, []byte(payload), p.settings.PublishQoS, p.settings.PublishRetain); err != nil {
		return fmt.Errorf("publish command to %s: %w", topic, err)
	}
	p.log.Debug("forwarded command %q to %s", payload, topic)
	return nil
}
