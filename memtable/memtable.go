// Package memtable implements the ordered in-memory buffer fronting the
// tree: a map from K to entry.Entry[V], kept sorted by the caller's key
// ordering so it can be flushed straight into a sorted SSTable stream.
package memtable

import (
	"iter"

	"github.com/zhangyunhao116/skipmap"

	"lsmgo/codec"
	"lsmgo/entry"
)

// Record pairs a key with its stored entry, the unit a memtable flush or an
// SSTable build walks over.
type Record[K any, V any] struct {
	Key   K
	Value entry.Entry[V]
}

// Memtable is a concurrent skip-map-backed ordered buffer. Put, Delete, Get,
// Len and All may run concurrently with each other because the underlying
// skip map is lock-free; Reset replaces the map without synchronization and
// is not safe to call concurrently with any other method. The owning Tree
// is single-threaded and relies on none of this.
type Memtable[K any, V any] struct {
	kc codec.KeyCodec[K]
	sm *skipmap.OrderedMapFunc[K, entry.Entry[V]]
}

// New builds an empty memtable ordered by kc.Compare.
func New[K any, V any](kc codec.KeyCodec[K]) *Memtable[K, V] {
	less := func(a, b K) bool { return kc.Compare(a, b) < 0 }
	return &Memtable[K, V]{kc: kc, sm: skipmap.NewFunc[K, entry.Entry[V]](less)}
}

// Put stores a live value under k, overwriting any prior entry.
func (mt *Memtable[K, V]) Put(k K, v V) {
	mt.sm.Store(k, entry.Data(v))
}

// Delete stores a tombstone under k, overwriting any prior entry.
func (mt *Memtable[K, V]) Delete(k K) {
	mt.sm.Store(k, entry.Tombstone[V]())
}

// Get returns the entry stored under k, if any.
func (mt *Memtable[K, V]) Get(k K) (entry.Entry[V], bool) {
	return mt.sm.Load(k)
}

// Len reports the number of keys currently buffered.
func (mt *Memtable[K, V]) Len() int {
	return mt.sm.Len()
}

// All iterates every (key, entry) pair in ascending key order.
func (mt *Memtable[K, V]) All() iter.Seq2[K, entry.Entry[V]] {
	return func(yield func(K, entry.Entry[V]) bool) {
		mt.sm.Range(func(key K, value entry.Entry[V]) bool {
			return yield(key, value)
		})
	}
}

// Reset discards all buffered entries, returning the memtable to empty.
func (mt *Memtable[K, V]) Reset() {
	less := func(a, b K) bool { return mt.kc.Compare(a, b) < 0 }
	mt.sm = skipmap.NewFunc[K, entry.Entry[V]](less)
}
