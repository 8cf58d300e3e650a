package block

import (
	"context"
	"fmt"

	"github.com/relaywire/relay/internal/message"
)

// RemoveBody clears the message body to Empty, preserving the topic.
type RemoveBody struct{}

func (RemoveBody) Exec(_ context.Context, msg message.Message) ([]message.Message, error) {
	msg.Data = message.Empty()
	return passthrough(msg)
}

// ReplaceBody overwrites the body with a fixed configured JSON value.
type ReplaceBody struct {
	Value interface{}
}

func newReplaceBody(raw []byte) (Block, error) {
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("ReplaceBody config: %w", err)
	}
	return ReplaceBody{Value: value}, nil
}

func (b ReplaceBody) Exec(_ context.Context, msg message.Message) ([]message.Message, error) {
	msg.Data = message.JSON(b.Value)
	return passthrough(msg)
}

// ConvertBody runs the message body through the conversion matrix to a
// fixed target kind, failing the message cleanly if that conversion is
// not supported (e.g. OSC to String).
type ConvertBody struct {
	Target message.Kind
}

func newConvertBody(raw []byte) (Block, error) {
	var target string
	if err := json.Unmarshal(raw, &target); err != nil {
		return nil, fmt.Errorf("ConvertBody config must be a string: %w", err)
	}

	kind, err := parseKind(target)
	if err != nil {
		return nil, err
	}
	return ConvertBody{Target: kind}, nil
}

func parseKind(s string) (message.Kind, error) {
	switch s {
	case "Empty":
		return message.KindEmpty, nil
	case "String":
		return message.KindString, nil
	case "Binary":
		return message.KindBinary, nil
	case "Json":
		return message.KindJSON, nil
	case "Osc":
		return message.KindOSC, nil
	default:
		return 0, fmt.Errorf("ConvertBody: unknown target kind %q", s)
	}
}

func (b ConvertBody) Exec(_ context.Context, msg message.Message) ([]message.Message, error) {
	var converted message.Data
	var err error

	switch b.Target {
	case message.KindEmpty:
		converted, err = msg.Data.ToEmpty()
	case message.KindString:
		converted, err = msg.Data.ToString()
	case message.KindBinary:
		converted, err = msg.Data.ToBinary()
	case message.KindJSON:
		converted, err = msg.Data.ToJSON()
	case message.KindOSC:
		converted, err = msg.Data.ToOSC()
	default:
		return nil, fmt.Errorf("ConvertBody: unknown target kind %v", b.Target)
	}

	if err != nil {
		return nil, fmt.Errorf("ConvertBody: %w", err)
	}

	msg.Data = converted
	return passthrough(msg)
}
