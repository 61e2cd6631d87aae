// Package bloom implements a Bloom filter sized by planned capacity and
// target false-positive rate, backed by package bitmap.
package bloom

import (
	"encoding/binary"
	"hash/fnv"
	"io"
	"math"

	"lsmgo/bitmap"
	"lsmgo/codec"
	"lsmgo/lsmerr"
)

// Filter is a Bloom filter over keys of type T.
type Filter[T any] struct {
	bm *bitmap.BitMap
	k  int
	kc codec.KeyCodec[T]
}

// New sizes a filter for plannedCapacity items at the target false-positive
// rate, following the reference construction: bits = ceil(-(n*ln(p))/ln(2)^2),
// k = ceil((bits/n)*ln(2)) computed from the un-rounded bit estimate.
func New[T any](kc codec.KeyCodec[T], plannedCapacity int, falsePositiveRate float64) *Filter[T] {
	if plannedCapacity <= 0 || falsePositiveRate <= 0 || falsePositiveRate >= 1 {
		panic("bloom: invalid capacity or false-positive rate")
	}
	n := float64(plannedCapacity)
	bitsRaw := -(n * math.Log(falsePositiveRate)) / (math.Ln2 * math.Ln2)
	mBits := int(math.Ceil(bitsRaw))
	if mBits < 1 {
		mBits = 1
	}
	k := int(math.Ceil((bitsRaw / n) * math.Ln2))
	if k < 1 {
		k = 1
	}
	return &Filter[T]{bm: bitmap.New(mBits), k: k, kc: kc}
}

// K returns the number of hash functions used per item.
func (f *Filter[T]) K() int { return f.k }

// BitSize returns the logical size of the underlying bit vector.
func (f *Filter[T]) BitSize() int { return f.bm.BitSize() }

// ByteSize returns the number of bytes backing the filter.
func (f *Filter[T]) ByteSize() int { return f.bm.ByteSize() }

func (f *Filter[T]) bitIndex(h uint64, i int) int {
	hh := fnv.New64a()
	var b [16]byte
	binary.LittleEndian.PutUint64(b[:8], h)
	binary.LittleEndian.PutUint64(b[8:], uint64(i))
	_, _ = hh.Write(b[:])
	return int(hh.Sum64() % uint64(f.bm.BitSize()))
}

// Add records x as present. Never returns an error: Add cannot fail.
func (f *Filter[T]) Add(x T) {
	h := f.kc.Hash(x)
	for i := 0; i < f.k; i++ {
		f.bm.Set(f.bitIndex(h, i))
	}
}

// Contains reports whether x may have been added. False positives are
// possible; false negatives are not.
func (f *Filter[T]) Contains(x T) bool {
	h := f.kc.Hash(x)
	for i := 0; i < f.k; i++ {
		if !f.bm.IsSet(f.bitIndex(h, i)) {
			return false
		}
	}
	return true
}

// EncodeTo writes k (uint32), bit size (uint64), byte length (uint32), then
// the raw bit-map bytes.
func (f *Filter[T]) EncodeTo(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(f.k)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(f.bm.BitSize())); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(f.bm.ByteSize())); err != nil {
		return err
	}
	_, err := w.Write(f.bm.Bytes())
	return err
}

// Decode reads a filter previously written by EncodeTo.
func Decode[T any](r io.Reader, kc codec.KeyCodec[T]) (*Filter[T], error) {
	var k uint32
	var bitSize uint64
	var byteSize uint32
	if err := binary.Read(r, binary.LittleEndian, &k); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &bitSize); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &byteSize); err != nil {
		return nil, err
	}
	raw := make([]byte, byteSize)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, lsmerr.ErrCorruptBloom
	}
	return &Filter[T]{bm: bitmap.FromBytes(raw, int(bitSize)), k: int(k), kc: kc}, nil
}
