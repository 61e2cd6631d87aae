package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Kind identifies which field of Value is populated.
type Kind uint8

const (
	KindInt32 Kind = iota + 1
	KindInt64
	KindFloat32
	KindFloat64
	KindBool
	KindString
	KindBytes
)

// Value is a tagged union over the handful of primitive shapes a caller
// might want to store without writing a dedicated ValueCodec, adapted from
// the corpus's own tagged binary encoder.
type Value struct {
	Kind    Kind
	Int32   int32
	Int64   int64
	Float32 float32
	Float64 float64
	Bool    bool
	String  string
	Bytes   []byte
}

func Int32Value(v int32) Value     { return Value{Kind: KindInt32, Int32: v} }
func Int64Value(v int64) Value     { return Value{Kind: KindInt64, Int64: v} }
func Float32Value(v float32) Value { return Value{Kind: KindFloat32, Float32: v} }
func Float64Value(v float64) Value { return Value{Kind: KindFloat64, Float64: v} }
func BoolValue(v bool) Value       { return Value{Kind: KindBool, Bool: v} }
func StringValue(v string) Value   { return Value{Kind: KindString, String: v} }
func BytesValue(v []byte) Value    { return Value{Kind: KindBytes, Bytes: v} }

type valueCodec struct{}

// ValueValueCodec is the built-in ValueCodec for the tagged primitive Value type.
func ValueValueCodec() ValueCodec[Value] { return valueCodec{} }

func (valueCodec) Encode(v Value) []byte {
	buf := []byte{byte(v.Kind)}
	switch v.Kind {
	case KindInt32:
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(v.Int32))
		buf = append(buf, b[:]...)
	case KindInt64:
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], uint64(v.Int64))
		buf = append(buf, b[:]...)
	case KindFloat32:
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(v.Float32))
		buf = append(buf, b[:]...)
	case KindFloat64:
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(v.Float64))
		buf = append(buf, b[:]...)
	case KindBool:
		if v.Bool {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	case KindString:
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(v.String)))
		buf = append(buf, lenBuf[:]...)
		buf = append(buf, v.String...)
	case KindBytes:
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(v.Bytes)))
		buf = append(buf, lenBuf[:]...)
		buf = append(buf, v.Bytes...)
	}
	return buf
}

func (valueCodec) Decode(data []byte) (Value, int, error) {
	if len(data) < 1 {
		return Value{}, 0, ErrShortBuffer
	}
	kind := Kind(data[0])
	off := 1
	switch kind {
	case KindInt32:
		if len(data[off:]) < 4 {
			return Value{}, 0, ErrShortBuffer
		}
		return Value{Kind: kind, Int32: int32(binary.LittleEndian.Uint32(data[off:]))}, off + 4, nil
	case KindInt64:
		if len(data[off:]) < 8 {
			return Value{}, 0, ErrShortBuffer
		}
		return Value{Kind: kind, Int64: int64(binary.LittleEndian.Uint64(data[off:]))}, off + 8, nil
	case KindFloat32:
		if len(data[off:]) < 4 {
			return Value{}, 0, ErrShortBuffer
		}
		bits := binary.LittleEndian.Uint32(data[off:])
		return Value{Kind: kind, Float32: math.Float32frombits(bits)}, off + 4, nil
	case KindFloat64:
		if len(data[off:]) < 8 {
			return Value{}, 0, ErrShortBuffer
		}
		bits := binary.LittleEndian.Uint64(data[off:])
		return Value{Kind: kind, Float64: math.Float64frombits(bits)}, off + 8, nil
	case KindBool:
		if len(data[off:]) < 1 {
			return Value{}, 0, ErrShortBuffer
		}
		return Value{Kind: kind, Bool: data[off] != 0}, off + 1, nil
	case KindString:
		if len(data[off:]) < 4 {
			return Value{}, 0, ErrShortBuffer
		}
		n := int(binary.LittleEndian.Uint32(data[off:]))
		off += 4
		if len(data[off:]) < n {
			return Value{}, 0, ErrShortBuffer
		}
		return Value{Kind: kind, String: string(data[off : off+n])}, off + n, nil
	case KindBytes:
		if len(data[off:]) < 4 {
			return Value{}, 0, ErrShortBuffer
		}
		n := int(binary.LittleEndian.Uint32(data[off:]))
		off += 4
		if len(data[off:]) < n {
			return Value{}, 0, ErrShortBuffer
		}
		out := make([]byte, n)
		copy(out, data[off:off+n])
		return Value{Kind: kind, Bytes: out}, off + n, nil
	default:
		return Value{}, 0, fmt.Errorf("codec: unknown value kind %d", kind)
	}
}
