// Package dispatcher runs the bus's main loop: it owns the bounded
// ingress channel every connector publishes onto, spawns one goroutine
// per incoming message to walk it through the pipeline, and forwards
// whatever the pipeline collects to each destination connector's sink
// channel.
package dispatcher

import (
	"context"

	"github.com/google/uuid"
	"github.com/yaoapp/kun/exception"
	"github.com/yaoapp/kun/log"

	"github.com/relaywire/relay/internal/connector"
	"github.com/relaywire/relay/internal/message"
	"github.com/relaywire/relay/internal/pipeline"
)

// IngressBuffer matches the bound every connector's own channels use, so
// backpressure is uniform across the whole bus rather than concentrated
// at one hidden unbounded queue. Callers construct the ingress channel
// with this capacity before building connectors, since every connector's
// SourceTx must be the same channel the Dispatcher later consumes.
const IngressBuffer = 32

// Dispatcher is the bus's fan-in/fan-out loop.
type Dispatcher struct {
	source   chan message.Message
	pipeline *pipeline.Pipeline
	handles  []*connector.Handle
	debug    bool
}

// New creates a Dispatcher over an already-constructed ingress channel.
// Source must be the same channel passed to every connector as its
// SourceTx, so connectors can start publishing before Run is called
// without construction order deadlocking on a chicken-and-egg channel.
func New(source chan message.Message, p *pipeline.Pipeline, handles []*connector.Handle, debug bool) *Dispatcher {
	return &Dispatcher{source: source, pipeline: p, handles: handles, debug: debug}
}

// Run consumes the ingress channel until ctx is canceled, spawning one
// goroutine per incoming message so a slow or stuck pipeline branch for
// one message never blocks the next.
func (d *Dispatcher) Run(ctx context.Context) {
	log.Info("[Dispatcher] ready for incoming messages")

	for {
		select {
		case incoming, ok := <-d.source:
			if !ok {
				// Every connector holds a clone of the sending side for the
				// lifetime of the process, so the ingress channel closing is
				// impossible under normal operation; treat it as the logic
				// bug it would have to be.
				exception.New("dispatcher: ingress channel closed unexpectedly", 500).Throw()
			}
			go d.dispatch(ctx, incoming)
		case <-ctx.Done():
			return
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, incoming message.Message) {
	correlationID := uuid.New().String()

	if d.debug {
		log.Debug("[Dispatcher %s] incoming message %+v", correlationID, incoming)
	} else {
		log.Info("[Dispatcher %s] incoming message on topic %q", correlationID, incoming.Topic)
	}

	if incoming.SourceConnector < 0 || incoming.SourceConnector >= len(d.handles) {
		// SourceConnector is stamped by a connector's own ingress goroutine
		// from its own index, so an out-of-range value can only mean a
		// programming error in a connector, not a runtime condition to
		// recover from.
		exception.New("dispatcher: missing connector with index %d", 500, incoming.SourceConnector).Throw()
	}
	source := d.handles[incoming.SourceConnector]

	var collected []pipeline.Collected
	if err := d.pipeline.HandleWithConnections(ctx, source.To, incoming, &collected); err != nil {
		log.Error("[Dispatcher %s] failed to handle message: %v", correlationID, err)
		return
	}

	if d.debug {
		log.Debug("[Dispatcher %s] collected %d message(s): %+v", correlationID, len(collected), collected)
	} else {
		log.Info("[Dispatcher %s] collected %d message(s)", correlationID, len(collected))
	}

	for _, c := range collected {
		if err := d.sendToSink(ctx, c); err != nil {
			log.Error("[Dispatcher %s] %v", correlationID, err)
		}
	}
}

func (d *Dispatcher) sendToSink(ctx context.Context, c pipeline.Collected) error {
	if c.SinkIndex < 0 || c.SinkIndex >= len(d.handles) {
		// Sink(i) indices are not checked against the connector table at
		// startup; an out-of-range index from the configuration is first
		// noticed here, and panics rather than being logged and dropped.
		exception.New("dispatcher: missing sink with index %d", 500, c.SinkIndex).Throw()
	}

	select {
	case d.handles[c.SinkIndex].SinkTx <- c.Message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
