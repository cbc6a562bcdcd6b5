package snapshot

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestRenderGroupsByComponentAndSortsByUniqueID(t *testing.T) {
	payloads := map[string][]byte{
		"homeassistant/switch/d1/k2/config": []byte(`{"unique_id":"d1_k2","name":"K2","availability_topic":"x","payload_available":"1","payload_not_available":"0"}`),
		"homeassistant/switch/d1/k1/config": []byte(`{"unique_id":"d1_k1","name":"K1","availability_topic":"x","payload_available":"1","payload_not_available":"0"}`),
		"homeassistant/sensor/d2/temp/config": []byte(`{"unique_id":"d2_temp","name":"Temp"}`),
		"not/a/discovery/topic":               []byte(`irrelevant`),
	}

	doc, err := Render(payloads)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	var decoded struct {
		MQTT map[string][]map[string]interface{} `yaml:"mqtt"`
	}
	if err := yaml.Unmarshal(doc, &decoded); err != nil {
		t.Fatalf("decode rendered yaml: %v", err)
	}

	switches := decoded.MQTT["switch"]
	if len(switches) != 2 {
		t.Fatalf("expected 2 switch entries, got %d", len(switches))
	}
	if switches[0]["unique_id"] != "d1_k1" || switches[1]["unique_id"] != "d1_k2" {
		t.Fatalf("expected switch entries sorted by unique_id, got %+v", switches)
	}

	if _, present := switches[0]["availability_topic"]; present {
		t.Fatalf("expected availability_topic to be stripped")
	}
	if switches[0]["retain"] != true {
		t.Fatalf("expected switch entries to be marked retain: true")
	}

	sensors := decoded.MQTT["sensor"]
	if len(sensors) != 1 || sensors[0]["retain"] == true {
		t.Fatalf("expected sensor entries not to be force-retained, got %+v", sensors)
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	payloads := map[string][]byte{
		"homeassistant/button/d1/reset/config": []byte(`{"unique_id":"d1_reset","name":"Reset"}`),
	}

	first, err := Render(payloads)
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	second, err := Render(payloads)
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("expected rendering the same snapshot twice to be byte-identical:\n%s\n---\n%s", first, second)
	}
}

func TestRenderIgnoresNonDiscoveryTopics(t *testing.T) {
	doc, err := Render(map[string][]byte{
		"/devices/d1/controls/K1": []byte("1"),
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	var decoded struct {
		MQTT map[string][]map[string]interface{} `yaml:"mqtt"`
	}
	if err := yaml.Unmarshal(doc, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded.MQTT) != 0 {
		t.Fatalf("expected no mqtt components from a non-discovery topic, got %+v", decoded.MQTT)
	}
}
