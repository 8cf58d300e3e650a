// Package connector implements the bus's wire-protocol adapters: MQTT,
// OSC-over-UDP receive/send, and a bare UDP sender. Each connector is a
// long-lived goroutine pair (an ingress loop feeding the dispatcher's
// source channel, and an egress loop draining its own sink channel) that
// reports its state to the lifecycle supervisor.
package connector

import (
	"context"
	stdjson "encoding/json"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/relaywire/relay/internal/block"
	"github.com/relaywire/relay/internal/lifecycle"
	"github.com/relaywire/relay/internal/message"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config is the on-disk representation of a single connector. OSCSend and
// UDPSend are pure sinks and carry no "to" list at all.
type Config struct {
	Type   string             `json:"type"`
	To     []block.Connection `json:"to,omitempty"`
	Config stdjson.RawMessage `json:"config"`
}

// Handle is what the dispatcher holds for a running connector: where its
// ingress messages should fan out to, and the channel to push egress
// messages into. SinkTx is bounded at 32 like every other inter-goroutine
// channel in the bus, so a slow connector applies backpressure instead of
// buffering without limit.
type Handle struct {
	To     []block.Connection
	SinkTx chan message.Message
}

// SourceTx is the channel every connector's ingress goroutine publishes
// incoming messages onto.
type SourceTx chan<- message.Message

const sinkBuffer = 32

// Make constructs and starts a connector's goroutines, dispatching on the
// Type tag. idx is this connector's position in the configured connector
// list and becomes Message.SourceConnector for anything it ingests.
func Make(ctx context.Context, idx int, sourceTx SourceTx, events chan<- lifecycle.Event, cfg Config) (*Handle, error) {
	switch cfg.Type {
	case "MQTT":
		return makeMQTT(ctx, idx, sourceTx, events, cfg)
	case "OSCRecv":
		return makeOSCRecv(ctx, idx, sourceTx, events, cfg)
	case "OSCSend":
		return makeOSCSend(ctx, idx, events, cfg)
	case "UDPSend":
		return makeUDPSend(ctx, idx, events, cfg)
	default:
		return nil, fmt.Errorf("connector: unknown type %q", cfg.Type)
	}
}
