package message

import "time"

// ArgKind discriminates the payload carried by an Arg.
type ArgKind int

const (
	ArgKindInt32 ArgKind = iota
	ArgKindInt64
	ArgKindFloat32
	ArgKindFloat64
	ArgKindString
	ArgKindBool
	ArgKindChar
	ArgKindNil
	ArgKindArray
	ArgKindInfinity
	// ArgKindColor, ArgKindMidi, ArgKindBlob and ArgKindTime round out the
	// OSC 1.0 type tag set. None of them has a defined conversion to JSON
	// or String. The OSC connectors decode incoming blobs and encode
	// outgoing blobs and times; Color and Midi are neither decoded nor
	// encoded, and an incoming time tag is not decoded.
	ArgKindColor
	ArgKindMidi
	ArgKindBlob
	ArgKindTime
)

// Arg is a single typed OSC argument, mirroring the full OSC 1.0 type tag
// set. Exactly one field matching Kind is meaningful.
type Arg struct {
	Kind    ArgKind
	Int32   int32
	Int64   int64
	Float32 float32
	Float64 float64
	Str     string
	Bool    bool
	Char    rune
	Array   []Arg
	Blob    []byte
	Color   [4]byte // r, g, b, a
	Midi    [4]byte // port id, status, data1, data2
	Time    time.Time
}

func ArgInt32(v int32) Arg     { return Arg{Kind: ArgKindInt32, Int32: v} }
func ArgInt64(v int64) Arg     { return Arg{Kind: ArgKindInt64, Int64: v} }
func ArgFloat32(v float32) Arg { return Arg{Kind: ArgKindFloat32, Float32: v} }
func ArgFloat64(v float64) Arg { return Arg{Kind: ArgKindFloat64, Float64: v} }
func ArgString(v string) Arg   { return Arg{Kind: ArgKindString, Str: v} }
func ArgBool(v bool) Arg       { return Arg{Kind: ArgKindBool, Bool: v} }
func ArgChar(v rune) Arg       { return Arg{Kind: ArgKindChar, Char: v} }
func ArgNil() Arg              { return Arg{Kind: ArgKindNil} }
func ArgArray(v []Arg) Arg     { return Arg{Kind: ArgKindArray, Array: v} }
func ArgInfinity() Arg         { return Arg{Kind: ArgKindInfinity} }
func ArgBlob(v []byte) Arg     { return Arg{Kind: ArgKindBlob, Blob: v} }
func ArgColor(r, g, b, a byte) Arg {
	return Arg{Kind: ArgKindColor, Color: [4]byte{r, g, b, a}}
}
func ArgMidi(port, status, data1, data2 byte) Arg {
	return Arg{Kind: ArgKindMidi, Midi: [4]byte{port, status, data1, data2}}
}
func ArgTime(t time.Time) Arg { return Arg{Kind: ArgKindTime, Time: t} }
