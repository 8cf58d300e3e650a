package message_test

import (
	"math"
	"testing"

	"github.com/relaywire/relay/internal/message"
	"github.com/stretchr/testify/assert"
)

func TestConversionMatrixDiagonalIsIdentity(t *testing.T) {
	cases := []message.Data{
		message.Empty(),
		message.String("hello"),
		message.Binary([]byte("hello")),
		message.JSON(map[string]interface{}{"a": float64(1)}),
		message.OSC([]message.Arg{message.ArgString("x")}),
	}

	for _, d := range cases {
		var out message.Data
		var err error
		switch d.Kind {
		case message.KindEmpty:
			out, err = d.ToEmpty()
		case message.KindString:
			out, err = d.ToString()
		case message.KindBinary:
			out, err = d.ToBinary()
		case message.KindJSON:
			out, err = d.ToJSON()
		case message.KindOSC:
			out, err = d.ToOSC()
		}
		assert.NoError(t, err)
		assert.Equal(t, d.Kind, out.Kind)
	}
}

func TestStringToJSONToString(t *testing.T) {
	d := message.String(`{"topic":"x","count":3}`)

	asJSON, err := d.ToJSON()
	assert.NoError(t, err)
	assert.Equal(t, message.KindJSON, asJSON.Kind)

	m, ok := asJSON.JSON.(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, "x", m["topic"])
	assert.Equal(t, float64(3), m["count"])

	back, err := asJSON.ToString()
	assert.NoError(t, err)
	assert.Equal(t, message.KindString, back.Kind)
}

func TestBinaryToStringRoundTrip(t *testing.T) {
	d := message.Binary([]byte("payload"))
	asString, err := d.ToString()
	assert.NoError(t, err)
	assert.Equal(t, "payload", asString.Str)

	back, err := asString.ToBinary()
	assert.NoError(t, err)
	assert.Equal(t, []byte("payload"), back.Bin)
}

func TestOSCToStringFailsCleanly(t *testing.T) {
	d := message.OSC([]message.Arg{message.ArgInt32(1)})
	_, err := d.ToString()
	assert.Error(t, err)
}

func TestOSCToBinaryFailsCleanly(t *testing.T) {
	d := message.OSC([]message.Arg{message.ArgInt32(1)})
	_, err := d.ToBinary()
	assert.Error(t, err)
}

func TestBinaryToOSCFailsCleanly(t *testing.T) {
	d := message.Binary([]byte{0x01, 0x02})
	_, err := d.ToOSC()
	assert.Error(t, err)
}

func TestJSONArrayToOSCRoundTrip(t *testing.T) {
	d := message.JSON([]interface{}{float64(1), "two", true, nil})
	osc, err := d.ToOSC()
	assert.NoError(t, err)
	assert.Equal(t, message.KindOSC, osc.Kind)
	assert.Len(t, osc.OSCArg, 4)
	assert.Equal(t, message.ArgKindInt32, osc.OSCArg[0].Kind)
	assert.Equal(t, message.ArgKindString, osc.OSCArg[1].Kind)
	assert.Equal(t, message.ArgKindBool, osc.OSCArg[2].Kind)
	assert.Equal(t, message.ArgKindNil, osc.OSCArg[3].Kind)

	back, err := osc.ToJSON()
	assert.NoError(t, err)
	arr, ok := back.JSON.([]interface{})
	assert.True(t, ok)
	assert.Equal(t, float64(1), arr[0])
}

func TestJSONNonArrayToOSCFailsCleanly(t *testing.T) {
	d := message.JSON(map[string]interface{}{"a": 1})
	_, err := d.ToOSC()
	assert.Error(t, err)
}

func TestJSONObjectNestedInOSCArrayFailsCleanly(t *testing.T) {
	d := message.JSON([]interface{}{map[string]interface{}{"a": 1}})
	_, err := d.ToOSC()
	assert.Error(t, err)
}

func TestOSCNonConvertibleKindsFailCleanlyToJSON(t *testing.T) {
	nonConvertible := []message.Arg{
		message.ArgInfinity(),
		message.ArgColor(1, 2, 3, 4),
		message.ArgMidi(0, 1, 2, 3),
		message.ArgBlob([]byte{1, 2, 3}),
	}

	for _, arg := range nonConvertible {
		d := message.OSC([]message.Arg{arg})
		_, err := d.ToJSON()
		assert.Error(t, err)
	}
}

func TestOSCNonFiniteDoubleFailsCleanlyToJSON(t *testing.T) {
	d := message.OSC([]message.Arg{message.ArgFloat64(math.Inf(1))})
	_, err := d.ToJSON()
	assert.Error(t, err)

	d = message.OSC([]message.Arg{message.ArgFloat64(math.NaN())})
	_, err = d.ToJSON()
	assert.Error(t, err)
}

func TestGetBinaryAndGetOSC(t *testing.T) {
	b, err := message.String("hi").GetBinary()
	assert.NoError(t, err)
	assert.Equal(t, []byte("hi"), b)

	args, err := message.String("hi").GetOSC()
	assert.NoError(t, err)
	assert.Equal(t, []message.Arg{message.ArgString("hi")}, args)
}

func TestCloneIsDeep(t *testing.T) {
	original := message.Message{
		Topic: "a/b",
		Data:  message.Binary([]byte{1, 2, 3}),
	}
	clone := original.Clone()
	clone.Data.Bin[0] = 99
	assert.Equal(t, byte(1), original.Data.Bin[0])

	originalJSON := message.Message{
		Topic: "a/b",
		Data:  message.JSON(map[string]interface{}{"nested": []interface{}{float64(1)}}),
	}
	cloneJSON := originalJSON.Clone()
	cloneJSON.Data.JSON.(map[string]interface{})["nested"].([]interface{})[0] = float64(2)
	assert.Equal(t, float64(1), originalJSON.Data.JSON.(map[string]interface{})["nested"].([]interface{})[0])
}
