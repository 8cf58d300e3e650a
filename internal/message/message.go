// Package message defines the bus-internal envelope that flows between
// connectors, blocks and the dispatcher, and the conversion matrix that
// lets a value born on one wire protocol travel to another.
package message

import (
	"fmt"
	"math"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Kind discriminates the payload carried by a Message.
type Kind int

const (
	// KindEmpty carries no payload.
	KindEmpty Kind = iota
	// KindString carries a UTF-8 string.
	KindString
	// KindBinary carries an opaque byte slice.
	KindBinary
	// KindJSON carries a decoded JSON value (map/slice/string/float64/bool/nil).
	KindJSON
	// KindOSC carries a slice of typed OSC arguments.
	KindOSC
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "Empty"
	case KindString:
		return "String"
	case KindBinary:
		return "Binary"
	case KindJSON:
		return "Json"
	case KindOSC:
		return "OSC"
	default:
		return "Unknown"
	}
}

// Data is the tagged union carried by a Message. Exactly one of the
// fields matching Kind is meaningful; the others are zero.
type Data struct {
	Kind   Kind
	Str    string
	Bin    []byte
	JSON   interface{}
	OSCArg []Arg
}

// Empty returns a Data with KindEmpty.
func Empty() Data { return Data{Kind: KindEmpty} }

// String returns a Data holding a string.
func String(s string) Data { return Data{Kind: KindString, Str: s} }

// Binary returns a Data holding raw bytes.
func Binary(b []byte) Data { return Data{Kind: KindBinary, Bin: b} }

// JSON returns a Data holding a decoded JSON value.
func JSON(v interface{}) Data { return Data{Kind: KindJSON, JSON: v} }

// OSC returns a Data holding a slice of OSC arguments.
func OSC(args []Arg) Data { return Data{Kind: KindOSC, OSCArg: args} }

// Message is the envelope that moves through the pipeline. SourceConnector
// identifies the connector index the message entered the bus from; the
// dispatcher uses it to look up that connector's outgoing connections.
type Message struct {
	SourceConnector int
	Topic           string
	Data            Data
}

// Clone returns a deep copy so fan-out through multiple connections never
// shares mutable state between branches.
func (m Message) Clone() Message {
	clone := Message{SourceConnector: m.SourceConnector, Topic: m.Topic, Data: m.Data}
	switch m.Data.Kind {
	case KindBinary:
		b := make([]byte, len(m.Data.Bin))
		copy(b, m.Data.Bin)
		clone.Data.Bin = b
	case KindOSC:
		clone.Data.OSCArg = cloneArgs(m.Data.OSCArg)
	case KindJSON:
		clone.Data.JSON = cloneJSON(m.Data.JSON)
	}
	return clone
}

func cloneArgs(args []Arg) []Arg {
	out := make([]Arg, len(args))
	for i, a := range args {
		out[i] = a
		if a.Array != nil {
			out[i].Array = cloneArgs(a.Array)
		}
		if a.Blob != nil {
			out[i].Blob = append([]byte(nil), a.Blob...)
		}
	}
	return out
}

func cloneJSON(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, v := range val {
			out[k] = cloneJSON(v)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, v := range val {
			out[i] = cloneJSON(v)
		}
		return out
	default:
		return val
	}
}

// ToEmpty discards the payload entirely. Always succeeds.
func (d Data) ToEmpty() (Data, error) {
	return Empty(), nil
}

// ToString converts the payload to a string. OSC has no defined string
// rendering and fails cleanly rather than guessing a format.
func (d Data) ToString() (Data, error) {
	switch d.Kind {
	case KindEmpty:
		return String(""), nil
	case KindString:
		return d, nil
	case KindBinary:
		if !utf8.Valid(d.Bin) {
			return Data{}, fmt.Errorf("message: binary to string: invalid UTF-8")
		}
		return String(string(d.Bin)), nil
	case KindJSON:
		b, err := json.Marshal(d.JSON)
		if err != nil {
			return Data{}, fmt.Errorf("message: json to string: %w", err)
		}
		return String(string(b)), nil
	case KindOSC:
		return Data{}, fmt.Errorf("message: OSC to String is not supported")
	default:
		return Data{}, fmt.Errorf("message: unknown kind %v", d.Kind)
	}
}

// ToJSON converts the payload to a decoded JSON value.
func (d Data) ToJSON() (Data, error) {
	switch d.Kind {
	case KindEmpty:
		return JSON(nil), nil
	case KindString:
		var v interface{}
		if err := json.Unmarshal([]byte(d.Str), &v); err != nil {
			return Data{}, fmt.Errorf("message: string to json: %w", err)
		}
		return JSON(v), nil
	case KindBinary:
		if !utf8.Valid(d.Bin) {
			return Data{}, fmt.Errorf("message: binary to json: invalid UTF-8")
		}
		var v interface{}
		if err := json.Unmarshal(d.Bin, &v); err != nil {
			return Data{}, fmt.Errorf("message: binary to json: %w", err)
		}
		return JSON(v), nil
	case KindJSON:
		return d, nil
	case KindOSC:
		v, err := oscArgsToJSON(d.OSCArg)
		if err != nil {
			return Data{}, err
		}
		return JSON(v), nil
	default:
		return Data{}, fmt.Errorf("message: unknown kind %v", d.Kind)
	}
}

// ToBinary converts the payload to raw bytes. OSC has no defined binary
// encoding in this bus and fails cleanly.
func (d Data) ToBinary() (Data, error) {
	switch d.Kind {
	case KindEmpty:
		return Binary(nil), nil
	case KindString:
		return Binary([]byte(d.Str)), nil
	case KindBinary:
		return d, nil
	case KindJSON:
		b, err := json.Marshal(d.JSON)
		if err != nil {
			return Data{}, fmt.Errorf("message: json to binary: %w", err)
		}
		return Binary(b), nil
	case KindOSC:
		return Data{}, fmt.Errorf("message: OSC to Binary is not supported")
	default:
		return Data{}, fmt.Errorf("message: unknown kind %v", d.Kind)
	}
}

// ToOSC converts the payload to a slice of OSC arguments. Binary has no
// defined OSC encoding and fails cleanly; a top-level JSON value must be
// an array since OSC arguments are always a flat or nested list.
func (d Data) ToOSC() (Data, error) {
	switch d.Kind {
	case KindEmpty:
		return OSC(nil), nil
	case KindString:
		return OSC([]Arg{ArgString(d.Str)}), nil
	case KindBinary:
		return Data{}, fmt.Errorf("message: Binary to OSC is not supported")
	case KindJSON:
		arr, ok := d.JSON.([]interface{})
		if !ok {
			return Data{}, fmt.Errorf("message: can only convert a JSON array to OSC at the top level")
		}
		args := make([]Arg, len(arr))
		for i, v := range arr {
			a, err := jsonToOSC(v)
			if err != nil {
				return Data{}, err
			}
			args[i] = a
		}
		return OSC(args), nil
	case KindOSC:
		return d, nil
	default:
		return Data{}, fmt.Errorf("message: unknown kind %v", d.Kind)
	}
}

// GetBinary converts then unwraps to a byte slice, for connectors whose
// wire format is inherently raw bytes (UDP, MQTT payload).
func (d Data) GetBinary() ([]byte, error) {
	converted, err := d.ToBinary()
	if err != nil {
		return nil, err
	}
	return converted.Bin, nil
}

// GetOSC converts then unwraps to an OSC argument slice, for the OSC-Send
// connector.
func (d Data) GetOSC() ([]Arg, error) {
	converted, err := d.ToOSC()
	if err != nil {
		return nil, err
	}
	return converted.OSCArg, nil
}

func jsonToOSC(v interface{}) (Arg, error) {
	switch val := v.(type) {
	case []interface{}:
		args := make([]Arg, len(val))
		for i, item := range val {
			a, err := jsonToOSC(item)
			if err != nil {
				return Arg{}, err
			}
			args[i] = a
		}
		return ArgArray(args), nil
	case nil:
		return ArgNil(), nil
	case bool:
		return ArgBool(val), nil
	case float64:
		if val == float64(int32(val)) {
			return ArgInt32(int32(val)), nil
		}
		return ArgFloat32(float32(val)), nil
	case string:
		return ArgString(val), nil
	case map[string]interface{}:
		return Arg{}, fmt.Errorf("message: can't convert a JSON object to OSC")
	default:
		return Arg{}, fmt.Errorf("message: can't convert %T to OSC", v)
	}
}

func oscArgsToJSON(args []Arg) (interface{}, error) {
	out := make([]interface{}, len(args))
	for i, a := range args {
		v, err := oscToJSON(a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func oscToJSON(a Arg) (interface{}, error) {
	switch a.Kind {
	case ArgKindInt32:
		return float64(a.Int32), nil
	case ArgKindInt64:
		return float64(a.Int64), nil
	case ArgKindFloat32:
		return float64(a.Float32), nil
	case ArgKindFloat64:
		if math.IsInf(a.Float64, 0) || math.IsNaN(a.Float64) {
			return nil, fmt.Errorf("message: can't convert non-finite OSC double to JSON")
		}
		return a.Float64, nil
	case ArgKindString:
		return a.Str, nil
	case ArgKindBool:
		return a.Bool, nil
	case ArgKindChar:
		return string(a.Char), nil
	case ArgKindNil:
		return nil, nil
	case ArgKindArray:
		return oscArgsToJSON(a.Array)
	case ArgKindInfinity:
		return nil, fmt.Errorf("message: can't convert OSC Infinity to JSON")
	case ArgKindColor:
		return nil, fmt.Errorf("message: can't convert OSC Color to JSON")
	case ArgKindMidi:
		return nil, fmt.Errorf("message: can't convert OSC Midi to JSON")
	case ArgKindBlob:
		return nil, fmt.Errorf("message: can't convert OSC Blob to JSON")
	case ArgKindTime:
		return nil, fmt.Errorf("message: can't convert OSC Time to JSON")
	default:
		return nil, fmt.Errorf("message: unknown OSC argument kind %v", a.Kind)
	}
}
