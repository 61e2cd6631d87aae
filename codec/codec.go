// Package codec supplies the capability records the lsm package needs to
// treat an arbitrary Go type as an orderable, hashable, byte-exact-encodable
// key or value, the way the original reference relied on trait bounds that
// Go's generics cannot express directly for user-supplied types.
package codec

import (
	"encoding/binary"
	"errors"
	"hash/fnv"
	"math"
)

// ErrShortBuffer is returned by a Decode implementation when the supplied
// byte slice ends before a complete value could be read.
var ErrShortBuffer = errors.New("codec: short buffer")

// KeyCodec is the capability record required of a key type K: byte-exact
// encode/decode, a total order, and a stable hash (stable across calls
// within one build, as required by package bloom).
type KeyCodec[K any] interface {
	Encode(k K) []byte
	Decode(b []byte) (K, int, error)
	Compare(a, b K) int
	Hash(k K) uint64
}

// ValueCodec is the capability record required of a value type V: byte-exact
// encode/decode only. Values carry no ordering requirement.
type ValueCodec[V any] interface {
	Encode(v V) []byte
	Decode(b []byte) (V, int, error)
}

// stringKeyCodec implements KeyCodec[string].
type stringKeyCodec struct{}

// StringKeyCodec is the built-in KeyCodec for plain string keys.
func StringKeyCodec() KeyCodec[string] { return stringKeyCodec{} }

func (stringKeyCodec) Encode(k string) []byte {
	b := make([]byte, 4+len(k))
	binary.LittleEndian.PutUint32(b, uint32(len(k)))
	copy(b[4:], k)
	return b
}

func (stringKeyCodec) Decode(b []byte) (string, int, error) {
	if len(b) < 4 {
		return "", 0, ErrShortBuffer
	}
	n := int(binary.LittleEndian.Uint32(b))
	if len(b[4:]) < n {
		return "", 0, ErrShortBuffer
	}
	return string(b[4 : 4+n]), 4 + n, nil
}

func (stringKeyCodec) Compare(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (stringKeyCodec) Hash(k string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(k))
	return h.Sum64()
}

// stringValueCodec implements ValueCodec[string].
type stringValueCodec struct{}

// StringValueCodec is the built-in ValueCodec for plain string values.
func StringValueCodec() ValueCodec[string] { return stringValueCodec{} }

func (stringValueCodec) Encode(v string) []byte { return stringKeyCodec{}.Encode(v) }
func (stringValueCodec) Decode(b []byte) (string, int, error) {
	return stringKeyCodec{}.Decode(b)
}

// bytesValueCodec implements ValueCodec[[]byte].
type bytesValueCodec struct{}

// BytesValueCodec is the built-in ValueCodec for raw byte-slice values.
func BytesValueCodec() ValueCodec[[]byte] { return bytesValueCodec{} }

func (bytesValueCodec) Encode(v []byte) []byte {
	b := make([]byte, 4+len(v))
	binary.LittleEndian.PutUint32(b, uint32(len(v)))
	copy(b[4:], v)
	return b
}

func (bytesValueCodec) Decode(b []byte) ([]byte, int, error) {
	if len(b) < 4 {
		return nil, 0, ErrShortBuffer
	}
	n := int(binary.LittleEndian.Uint32(b))
	if len(b[4:]) < n {
		return nil, 0, ErrShortBuffer
	}
	out := make([]byte, n)
	copy(out, b[4:4+n])
	return out, 4 + n, nil
}

// int64KeyCodec implements KeyCodec[int64].
type int64KeyCodec struct{}

// Int64KeyCodec is the built-in KeyCodec for int64 keys. The encoding flips
// the sign bit so that lexicographic byte order on the encoded form matches
// numeric order, matching the corpus's own fixed-width big-endian encodings
// for sortable binary keys.
func Int64KeyCodec() KeyCodec[int64] { return int64KeyCodec{} }

func (int64KeyCodec) Encode(k int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(k)^(1<<63))
	return b
}

func (int64KeyCodec) Decode(b []byte) (int64, int, error) {
	if len(b) < 8 {
		return 0, 0, ErrShortBuffer
	}
	u := binary.BigEndian.Uint64(b[:8])
	return int64(u ^ (1 << 63)), 8, nil
}

func (int64KeyCodec) Compare(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (int64KeyCodec) Hash(k int64) uint64 {
	h := fnv.New64a()
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(k))
	_, _ = h.Write(b[:])
	return h.Sum64()
}

// Float64ToSortableBits is exposed for codecs built on top of this package
// that need a numeric-order-preserving encoding for floating point keys.
func Float64ToSortableBits(f float64) uint64 {
	b := math.Float64bits(f)
	if b&(1<<63) != 0 {
		return ^b
	}
	return b | (1 << 63)
}
