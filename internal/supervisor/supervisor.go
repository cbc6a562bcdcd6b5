// Package supervisor owns the two broker connections (spec.md §4.7) and
// drives their connect-with-backoff loops, installing subscriptions once
// each broker is up and draining outstanding publish tasks on shutdown.
package supervisor

import (
	"context"
	"strings"
	"sync"
	"time"

	"wb-ha-bridge/internal/berrors"
	"wb-ha-bridge/internal/logger"
	"wb-ha-bridge/internal/model"
	"wb-ha-bridge/internal/mqttutil"
	"wb-ha-bridge/internal/router"
)

// backoffStep is added to the previous delay on every connection-refused
// retry, capped at backoffCap, per spec.md §4.7: min(previous+6, 30)s.
const (
	backoffStep = 6 * time.Second
	backoffCap  = 30 * time.Second
)

// OnConnect is invoked once a broker connection succeeds, so the caller
// can install subscriptions and kick off any initial publish.
type OnConnect func(rtr *router.Router) error

// broker pairs one client/router with its connect hook and a name used
// only for logging.
type broker struct {
	name      string
	client    mqttutil.Client
	router    *router.Router
	onConnect OnConnect
}

// Supervisor runs both broker connections until Stop is called.
type Supervisor struct {
	wiren   broker
	ha      broker
	log     logger.ILogger
	errs    *berrors.Handler
	slots   *model.Slots

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// New creates a Supervisor. Both routers must already be bound to their
// respective clients (see router.New).
func New(wirenClient mqttutil.Client, wirenRouter *router.Router, onWirenConnect OnConnect,
	haClient mqttutil.Client, haRouter *router.Router, onHAConnect OnConnect,
	slots *model.Slots, log logger.ILogger, errs *berrors.Handler) *Supervisor {
	return &Supervisor{
		wiren: broker{name: "wirenboard", client: wirenClient, router: wirenRouter, onConnect: onWirenConnect},
		ha:    broker{name: "homeassistant", client: haClient, router: haRouter, onConnect: onHAConnect},
		slots: slots,
		log:   log,
		errs:  errs,
	}
}

// Run connects both brokers (each in its own goroutine, retrying with
// backoff on connection refusal) and blocks until ctx is cancelled or
// Stop is called.
func (s *Supervisor) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.connectLoop(ctx, s.wiren)
	}()
	go func() {
		defer s.wg.Done()
		s.connectLoop(ctx, s.ha)
	}()

	<-ctx.Done()
}

// Stop disconnects both brokers, cancels outstanding tasks, and waits
// for everything to quiesce.
func (s *Supervisor) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wiren.client.Disconnect(250)
	s.ha.client.Disconnect(250)
	if s.slots != nil {
		s.slots.Drain()
	}
	s.wg.Wait()
}

// connectLoop connects b.client, retrying with the spec's backoff
// schedule on connection refusal, and runs b.onConnect once connected.
// Any non-refusal connect error is reported via the error handler and
// ends the loop without retrying; it does not stop the process.
func (s *Supervisor) connectLoop(ctx context.Context, b broker) {
	delay := time.Duration(0)

	for {
		if ctx.Err() != nil {
			return
		}

		token := b.client.Connect()
		token.Wait()
		if err := token.Error(); err != nil {
			if !isRefused(err) {
				s.errs.Handle(berrors.NewTransportError("connect", err, b.name, false))
				return
			}

			if delay == 0 {
				delay = backoffStep
			} else {
				delay += backoffStep
			}
			if delay > backoffCap {
				delay = backoffCap
			}

			s.log.Warn("%s broker refused connection, retrying in %s", b.name, delay)
			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return
			}
		}

		s.log.Info("%s broker connected", b.name)
		if b.onConnect != nil {
			if err := b.onConnect(b.router); err != nil {
				s.errs.Handle(berrors.NewTransportError("on-connect", err, b.name, false))
			}
		}
		return
	}
}

// isRefused reports whether err looks like a connection-refused failure,
// the only case spec.md §4.7 has the supervisor retry instead of giving
// up.
func isRefused(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "refused")
}
