// Package snapshot renders the current Home Assistant discovery stream
// into the YAML config-snapshot format of spec.md §4.8 (C8): one
// document equivalent to what a fresh HA install would learn by
// subscribing to "homeassistant/#", with the churn-only fields removed
// so two snapshots taken seconds apart stay textually identical when
// nothing meaningful changed.
package snapshot

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

var discoveryTopicRe = regexp.MustCompile(`^homeassistant/([^/]+)/([^/]+)/([^/]+)/config$`)

// retainedByDefault lists the components whose config the renderer marks
// "retain: true" explicitly, per spec.md §4.8 — buttons and switches are
// actuators HA should remember across its own restarts even though the
// bridge's own publish already retains them on the broker.
var retainedByDefault = map[string]bool{
	"button": true,
	"switch": true,
}

// droppedFields are stripped from every entry: availability plumbing is
// an artifact of this bridge's own liveness tracking, not part of what a
// config snapshot should assert about an entity's shape.
var droppedFields = []string{"availability_topic", "payload_available", "payload_not_available"}

// Render reads a topic->payload snapshot (as produced by
// mqttutil.RecordingClient.Snapshot), filters to discovery config topics,
// and returns the equivalent YAML document.
func Render(topicPayloads map[string][]byte) ([]byte, error) {
	grouped := make(map[string][]map[string]interface{})

	for topic, payload := range topicPayloads {
		m := discoveryTopicRe.FindStringSubmatch(topic)
		if m == nil {
			continue
		}
		component := m[1]

		var entry map[string]interface{}
		if err := json.Unmarshal(payload, &entry); err != nil {
			return nil, fmt.Errorf("decode discovery payload for %s: %w", topic, err)
		}

		for _, field := range droppedFields {
			delete(entry, field)
		}
		if retainedByDefault[component] {
			entry["retain"] = true
		}

		grouped[component] = append(grouped[component], entry)
	}

	for component, entries := range grouped {
		sort.Slice(entries, func(i, j int) bool {
			return uniqueID(entries[i]) < uniqueID(entries[j])
		})
		grouped[component] = entries
	}

	doc := struct {
		MQTT map[string][]map[string]interface{} `yaml:"mqtt"`
	}{MQTT: grouped}

	return yaml.Marshal(doc)
}

func uniqueID(entry map[string]interface{}) string {
	if v, ok := entry["unique_id"].(string); ok {
		return v
	}
	return ""
}
