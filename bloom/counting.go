package bloom

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"lsmgo/codec"
)

// CountingFilter is a Bloom filter whose bits are replaced by saturating
// uint8 counters, allowing Remove at the cost of 8x the memory. It uses the
// same sizing formula as Filter but is not wired into the tree; it exists
// as a standalone, separately tested component.
type CountingFilter[T any] struct {
	counters []uint8
	k        int
	kc       codec.KeyCodec[T]
}

// NewCounting sizes a counting filter identically to New.
func NewCounting[T any](kc codec.KeyCodec[T], plannedCapacity int, falsePositiveRate float64) *CountingFilter[T] {
	if plannedCapacity <= 0 || falsePositiveRate <= 0 || falsePositiveRate >= 1 {
		panic("bloom: invalid capacity or false-positive rate")
	}
	n := float64(plannedCapacity)
	bitsRaw := -(n * math.Log(falsePositiveRate)) / (math.Ln2 * math.Ln2)
	m := int(math.Ceil(bitsRaw))
	if m < 1 {
		m = 1
	}
	k := int(math.Ceil((bitsRaw / n) * math.Ln2))
	if k < 1 {
		k = 1
	}
	return &CountingFilter[T]{counters: make([]uint8, m), k: k, kc: kc}
}

func (f *CountingFilter[T]) index(h uint64, i int) int {
	hh := fnv.New64a()
	var b [16]byte
	binary.LittleEndian.PutUint64(b[:8], h)
	binary.LittleEndian.PutUint64(b[8:], uint64(i))
	_, _ = hh.Write(b[:])
	return int(hh.Sum64() % uint64(len(f.counters)))
}

// Add increments each of the k counters for x, saturating at 255.
func (f *CountingFilter[T]) Add(x T) {
	h := f.kc.Hash(x)
	for i := 0; i < f.k; i++ {
		idx := f.index(h, i)
		if f.counters[idx] < math.MaxUint8 {
			f.counters[idx]++
		}
	}
}

// Contains reports whether x may have been added and not since removed.
func (f *CountingFilter[T]) Contains(x T) bool {
	h := f.kc.Hash(x)
	for i := 0; i < f.k; i++ {
		if f.counters[f.index(h, i)] == 0 {
			return false
		}
	}
	return true
}

// Remove decrements each of the k counters for x, but only if all of them
// are currently non-zero; it reports whether the removal took place.
func (f *CountingFilter[T]) Remove(x T) bool {
	h := f.kc.Hash(x)
	idxs := make([]int, f.k)
	for i := 0; i < f.k; i++ {
		idxs[i] = f.index(h, i)
		if f.counters[idxs[i]] == 0 {
			return false
		}
	}
	for _, idx := range idxs {
		f.counters[idx]--
	}
	return true
}
