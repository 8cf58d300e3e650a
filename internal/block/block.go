// Package block implements the stateless pipeline operators that sit
// between connectors: topic rewriting, topic matching, body conversion,
// scripted filtering and artificial delay.
package block

import (
	"context"
	stdjson "encoding/json"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/relaywire/relay/internal/message"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Block is a single pipeline operator. Exec may fan a message out to zero,
// one, or many outgoing messages (MatchTopic drops, LuaFilter drops,
// everything else passes exactly one through).
type Block interface {
	Exec(ctx context.Context, msg message.Message) ([]message.Message, error)
}

// ConnectionKind distinguishes an edge to another block from an edge to a
// sink (connector egress).
type ConnectionKind string

const (
	ConnectionBlock ConnectionKind = "block"
	ConnectionSink  ConnectionKind = "sink"
)

// Connection is one outgoing edge of a block, addressed by index into
// either the pipeline's block table or the connector table. The Go encoding
// uses an explicit "kind" discriminator field (`{"kind":"block","index":1}`)
// rather than the single-key tagged object the upstream Rust enum
// serializes as, since neither encoding/json nor jsoniter has native
// support for externally tagged enums without one.
type Connection struct {
	Kind  ConnectionKind `json:"kind"`
	Index int            `json:"index"`
}

// Config is the on-disk representation of a single block: its type tag,
// its outgoing connections, and a type-specific config payload.
type Config struct {
	Type   string             `json:"type"`
	To     []Connection       `json:"to"`
	Config stdjson.RawMessage `json:"config,omitempty"`
}

// Handle pairs a constructed Block with its outgoing connections, as
// assembled by Make and consumed by the pipeline engine.
type Handle struct {
	Block Block
	To    []Connection
}

// Make constructs a Handle from a Config, dispatching on the Type tag.
// Construction errors (bad regex, unreadable script file, unknown
// ConvertBody target) are returned rather than panicking so pipeline
// assembly can report every bad block at once.
func Make(cfg Config) (*Handle, error) {
	var b Block
	var err error

	switch cfg.Type {
	case "AddLeadingSlash":
		b = AddLeadingSlash{}
	case "RemoveLeadingSlash":
		b = RemoveLeadingSlash{}
	case "RemoveBody":
		b = RemoveBody{}
	case "ReplaceBody":
		b, err = newReplaceBody(cfg.Config)
	case "MatchTopic":
		b, err = newMatchTopic(cfg.Config)
	case "ReplaceTopic":
		b, err = newReplaceTopic(cfg.Config)
	case "LuaFilter":
		b, err = newLuaFilter(cfg.Config)
	case "ConvertBody":
		b, err = newConvertBody(cfg.Config)
	case "Wait":
		b, err = newWait(cfg.Config)
	default:
		return nil, fmt.Errorf("block: unknown type %q", cfg.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("block: construct %q: %w", cfg.Type, err)
	}

	return &Handle{Block: b, To: cfg.To}, nil
}

// passthrough returns msg unchanged as the sole result, the default shape
// shared by most blocks.
func passthrough(msg message.Message) ([]message.Message, error) {
	return []message.Message{msg}, nil
}
