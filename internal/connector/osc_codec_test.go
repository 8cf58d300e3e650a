package connector

import (
	"testing"

	"github.com/hypebeast/go-osc/osc"
	"github.com/stretchr/testify/assert"

	"github.com/relaywire/relay/internal/message"
)

func TestArgToOSCValueRoundTrip(t *testing.T) {
	cases := []message.Arg{
		message.ArgInt32(1),
		message.ArgFloat32(1.5),
		message.ArgString("hi"),
		message.ArgBool(true),
		message.ArgNil(),
	}

	for _, arg := range cases {
		v, err := argToOSCValue(arg)
		assert.NoError(t, err)

		back, err := oscValueToArg(v)
		assert.NoError(t, err)
		assert.Equal(t, arg.Kind, back.Kind)
	}
}

func TestArgToOSCValueRejectsArray(t *testing.T) {
	_, err := argToOSCValue(message.ArgArray([]message.Arg{message.ArgInt32(1)}))
	assert.Error(t, err)
}

func TestCollectMessagesFromOSCMessagePacket(t *testing.T) {
	packet := osc.NewMessage("/foo/bar")
	packet.Append(int32(42))
	packet.Append("hello")

	messages, err := collectMessagesFromPacket(3, packet)
	assert.NoError(t, err)
	assert.Len(t, messages, 1)
	assert.Equal(t, "/foo/bar", messages[0].Topic)
	assert.Equal(t, 3, messages[0].SourceConnector)
	assert.Equal(t, message.KindOSC, messages[0].Data.Kind)
	assert.Len(t, messages[0].Data.OSCArg, 2)
}

func TestCollectMessagesFlattensBundle(t *testing.T) {
	bundle := &osc.Bundle{
		Messages: []*osc.Message{osc.NewMessage("/a"), osc.NewMessage("/b")},
	}

	messages, err := collectMessagesFromPacket(0, bundle)
	assert.NoError(t, err)
	assert.Len(t, messages, 2)
}

func TestArgsToOSCMessage(t *testing.T) {
	msg, err := argsToOSCMessage("/topic", []message.Arg{message.ArgInt32(1), message.ArgString("x")})
	assert.NoError(t, err)
	assert.Equal(t, "/topic", msg.Address)
	assert.Len(t, msg.Arguments, 2)
}
