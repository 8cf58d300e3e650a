package connector

import (
	"fmt"

	"github.com/hypebeast/go-osc/osc"

	"github.com/relaywire/relay/internal/message"
)

// argToOSCValue converts one of our typed OSC arguments into the
// interface{} shape go-osc's Message.Arguments expects. OSC Array isn't
// part of the OSC 1.0 wire format go-osc encodes, so an Array argument
// can't be sent and fails cleanly rather than being silently flattened.
func argToOSCValue(a message.Arg) (interface{}, error) {
	switch a.Kind {
	case message.ArgKindInt32:
		return a.Int32, nil
	case message.ArgKindInt64:
		return a.Int64, nil
	case message.ArgKindFloat32:
		return a.Float32, nil
	case message.ArgKindFloat64:
		return a.Float64, nil
	case message.ArgKindString:
		return a.Str, nil
	case message.ArgKindBool:
		return a.Bool, nil
	case message.ArgKindChar:
		return a.Char, nil
	case message.ArgKindNil:
		return nil, nil
	case message.ArgKindBlob:
		return a.Blob, nil
	case message.ArgKindTime:
		return osc.NewTimetag(a.Time), nil
	default:
		return nil, fmt.Errorf("osc: argument kind %v is not a valid outgoing OSC type", a.Kind)
	}
}

// oscValueToArg converts a value decoded by go-osc into our typed OSC
// argument.
func oscValueToArg(v interface{}) (message.Arg, error) {
	switch val := v.(type) {
	case int32:
		return message.ArgInt32(val), nil
	case int64:
		return message.ArgInt64(val), nil
	case float32:
		return message.ArgFloat32(val), nil
	case float64:
		return message.ArgFloat64(val), nil
	case string:
		return message.ArgString(val), nil
	case bool:
		return message.ArgBool(val), nil
	case []byte:
		return message.ArgBlob(val), nil
	case nil:
		return message.ArgNil(), nil
	default:
		return message.Arg{}, fmt.Errorf("osc: unsupported incoming argument type %T", v)
	}
}

func argsToOSCMessage(topic string, args []message.Arg) (*osc.Message, error) {
	msg := osc.NewMessage(topic)
	for _, a := range args {
		v, err := argToOSCValue(a)
		if err != nil {
			return nil, err
		}
		msg.Append(v)
	}
	return msg, nil
}

// collectMessagesFromPacket flattens an OSC bundle recursively, exactly
// as the bus's peer implementations do, so a single UDP datagram carrying
// a bundle of messages becomes one bus Message per leaf OSC message.
func collectMessagesFromPacket(sourceIdx int, packet osc.Packet) ([]message.Message, error) {
	switch p := packet.(type) {
	case *osc.Message:
		args := make([]message.Arg, 0, len(p.Arguments))
		for _, raw := range p.Arguments {
			arg, err := oscValueToArg(raw)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		return []message.Message{{
			SourceConnector: sourceIdx,
			Topic:           p.Address,
			Data:            message.OSC(args),
		}}, nil

	case *osc.Bundle:
		var out []message.Message
		for _, m := range p.Messages {
			msgs, err := collectMessagesFromPacket(sourceIdx, m)
			if err != nil {
				return nil, err
			}
			out = append(out, msgs...)
		}
		for _, b := range p.Bundles {
			msgs, err := collectMessagesFromPacket(sourceIdx, b)
			if err != nil {
				return nil, err
			}
			out = append(out, msgs...)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("osc: unknown packet type %T", packet)
	}
}
