// Package router implements the topic router of spec.md §4.2: an ordered
// table of wildcard subscriptions dispatched with first-match semantics.
package router

import (
	"regexp"
	"strings"

	"wb-ha-bridge/internal/logger"
	"wb-ha-bridge/internal/mqttutil"
)

// Handler processes one matched message.
type Handler func(topic string, payload []byte)

// NotFoundHandler is invoked when no pattern matches; the default logs a
// warning, per spec.md §4.2.
type NotFoundHandler func(topic string)

type route struct {
	pattern string
	re      *regexp.Regexp
	handler Handler
	qos     byte
}

// Router holds an ordered list of (compiled pattern, handler) pairs and
// dispatches inbound messages against the underlying MQTT client.
//
// Unlike the original implementation (spec.md §9, Open Question a), the
// compiled regex here is anchored at both ends: '+' -> "[^/]+", '#' ->
// ".+", with '^' and '$' always applied, so two patterns can never match
// the same topic ambiguously by accident of an unanchored suffix.
type Router struct {
	client   mqttutil.Client
	log      logger.ILogger
	routes   []route
	notFound NotFoundHandler
}

// New creates a Router bound to client, with the default not-found
// handler (a warning log).
func New(client mqttutil.Client, log logger.ILogger) *Router {
	r := &Router{client: client, log: log}
	r.notFound = func(topic string) {
		log.Warn("no route matched topic %q", topic)
	}
	return r
}

// SetNotFoundHandler overrides the default 404 handler.
func (r *Router) SetNotFoundHandler(fn NotFoundHandler) {
	r.notFound = fn
}

// Subscribe compiles pattern, registers the handler, and also subscribes
// on the underlying client so messages actually arrive.
func (r *Router) Subscribe(pattern string, qos byte, handler Handler) error {
	re, err := compile(pattern)
	if err != nil {
		return err
	}
	r.routes = append(r.routes, route{pattern: pattern, re: re, handler: handler, qos: qos})

	token := r.client.Subscribe(pattern, qos, func(topic string, payload []byte) {
		r.Dispatch(topic, payload)
	})
	token.Wait()
	return token.Error()
}

// Publish is a pass-through to the underlying client, per spec.md §4.2.
func (r *Router) Publish(topic string, payload []byte, qos byte, retain bool) error {
	token := r.client.Publish(topic, qos, retain, payload)
	token.Wait()
	return token.Error()
}

// Dispatch finds the first pattern that matches topic and invokes its
// handler exactly once; if none match, it invokes the not-found handler.
func (r *Router) Dispatch(topic string, payload []byte) {
	for _, rt := range r.routes {
		if rt.re.MatchString(topic) {
			rt.handler(topic, payload)
			return
		}
	}
	r.notFound(topic)
}

func compile(pattern string) (*regexp.Regexp, error) {
	parts := strings.Split(pattern, "/")
	var b strings.Builder
	b.WriteString("^")
	for i, p := range parts {
		if i > 0 {
			b.WriteString("/")
		}
		switch p {
		case "+":
			b.WriteString("[^/]+")
		case "#":
			b.WriteString(".+")
		default:
			b.WriteString(regexp.QuoteMeta(p))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}
