// Package mqttutil narrows github.com/eclipse/paho.mqtt.golang down to the
// seam the core actually depends on (spec.md §1's "out of scope" MQTT
// transport), so the translation engine can be driven against an
// in-memory broker in tests.
package mqttutil

import (
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// MessageHandler receives one inbound message.
type MessageHandler func(topic string, payload []byte)

// Token is the subset of paho.Token the core needs to wait on.
type Token interface {
	Wait() bool
	Error() error
}

// Client is the subset of paho.Client the core needs.
type Client interface {
	Connect() Token
	Disconnect(quiesceMs uint)
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) Token
	Subscribe(topic string, qos byte, cb MessageHandler) Token
}

// pahoToken adapts a paho.Token to Token.
type pahoToken struct{ t paho.Token }

func (p pahoToken) Wait() bool   { return p.t.Wait() }
func (p pahoToken) Error() error { return p.t.Error() }

// PahoClient adapts a *paho.Client (constructed by the caller with full
// broker/TLS/session options — those concerns are out of scope here) to
// the narrow Client interface.
type PahoClient struct {
	Inner paho.Client
}

func (c *PahoClient) Connect() Token { return pahoToken{c.Inner.Connect()} }

func (c *PahoClient) Disconnect(quiesceMs uint) { c.Inner.Disconnect(quiesceMs) }

func (c *PahoClient) IsConnected() bool { return c.Inner.IsConnected() }

func (c *PahoClient) Publish(topic string, qos byte, retained bool, payload interface{}) Token {
	return pahoToken{c.Inner.Publish(topic, qos, retained, payload)}
}

func (c *PahoClient) Subscribe(topic string, qos byte, cb MessageHandler) Token {
	wrapped := func(_ paho.Client, msg paho.Message) {
		cb(msg.Topic(), msg.Payload())
	}
	return pahoToken{c.Inner.Subscribe(topic, qos, wrapped)}
}

// TeeClient wraps a real Client and mirrors every Publish into a
// RecordingClient, so the snapshot renderer (internal/snapshot) can
// observe the live discovery stream without the egress needing to know
// it is being captured.
type TeeClient struct {
	Inner    Client
	Recorder *RecordingClient
}

func (t *TeeClient) Connect() Token            { return t.Inner.Connect() }
func (t *TeeClient) Disconnect(quiesceMs uint) { t.Inner.Disconnect(quiesceMs) }
func (t *TeeClient) IsConnected() bool         { return t.Inner.IsConnected() }

func (t *TeeClient) Publish(topic string, qos byte, retained bool, payload interface{}) Token {
	t.Recorder.Publish(topic, qos, retained, payload)
	return t.Inner.Publish(topic, qos, retained, payload)
}

func (t *TeeClient) Subscribe(topic string, qos byte, cb MessageHandler) Token {
	return t.Inner.Subscribe(topic, qos, cb)
}

// doneToken is a Token that is always already resolved.
type doneToken struct{ err error }

func (d doneToken) Wait() bool   { return true }
func (d doneToken) Error() error { return d.err }

// RecordingClient is an in-memory broker stand-in: Publish stores the
// latest payload per topic and invokes any matching subscriptions
// synchronously, Subscribe registers an exact-topic or single-level/
// multi-level wildcard handler. It is used by every component's tests
// and by the config snapshot renderer (C8) to capture the discovery
// stream it renders — grounded on the original Python source's
// in-memory MQTT collaborator.
type RecordingClient struct {
	mu          sync.Mutex
	connected   bool
	LastPayload map[string][]byte
	subs        []recordingSub
}

type recordingSub struct {
	pattern string
	cb      MessageHandler
}

// NewRecordingClient creates an empty RecordingClient.
func NewRecordingClient() *RecordingClient {
	return &RecordingClient{LastPayload: make(map[string][]byte)}
}

func (r *RecordingClient) Connect() Token {
	r.mu.Lock()
	r.connected = true
	r.mu.Unlock()
	return doneToken{}
}

func (r *RecordingClient) Disconnect(uint) {
	r.mu.Lock()
	r.connected = false
	r.mu.Unlock()
}

func (r *RecordingClient) IsConnected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connected
}

func (r *RecordingClient) Publish(topic string, _ byte, _ bool, payload interface{}) Token {
	var b []byte
	switch p := payload.(type) {
	case []byte:
		b = p
	case string:
		b = []byte(p)
	default:
		b = nil
	}

	r.mu.Lock()
	r.LastPayload[topic] = b
	subs := make([]recordingSub, len(r.subs))
	copy(subs, r.subs)
	r.mu.Unlock()

	for _, s := range subs {
		if TopicMatches(s.pattern, topic) {
			s.cb(topic, b)
		}
	}
	return doneToken{}
}

func (r *RecordingClient) Subscribe(pattern string, _ byte, cb MessageHandler) Token {
	r.mu.Lock()
	r.subs = append(r.subs, recordingSub{pattern: pattern, cb: cb})
	r.mu.Unlock()
	return doneToken{}
}

// Snapshot returns a copy of the last-payload-per-topic map.
func (r *RecordingClient) Snapshot() map[string][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string][]byte, len(r.LastPayload))
	for k, v := range r.LastPayload {
		out[k] = v
	}
	return out
}

// TopicMatches reports whether an MQTT wildcard pattern matches a
// concrete topic, supporting '+' (single level) and '#' (remaining
// levels, must be the final segment).
func TopicMatches(pattern, topic string) bool {
	pParts := splitTopic(pattern)
	tParts := splitTopic(topic)

	for i, p := range pParts {
		if p == "#" {
			return true
		}
		if i >= len(tParts) {
			return false
		}
		if p == "+" {
			continue
		}
		if p != tParts[i] {
			return false
		}
	}
	return len(pParts) == len(tParts)
}

func splitTopic(topic string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(topic); i++ {
		if topic[i] == '/' {
			parts = append(parts, topic[start:i])
			start = i + 1
		}
	}
	parts = append(parts, topic[start:])
	return parts
}
