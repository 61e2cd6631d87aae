// Package lsm implements the LSM tree itself: the memtable, flush policy,
// manifest, multi-level SSTable traversal, and compaction, tying together
// packages memtable, sstable, levelset, bloom and codec.
package lsm

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"lsmgo/codec"
	"lsmgo/levelset"
	"lsmgo/lsmerr"
	"lsmgo/memtable"
	"lsmgo/sstable"
)

// Tree is a persistent, ordered key-value store of generic key type K and
// value type V. It is not safe for concurrent use: callers needing shared
// access must serialize it behind their own mutex.
type Tree[K any, V any] struct {
	dir string
	cfg Config
	kc  codec.KeyCodec[K]
	vc  codec.ValueCodec[V]

	mt *memtable.Memtable[K, V]

	level0       *levelset.LevelSet
	level1       *levelset.LevelSet
	level0Tables []*sstable.Table[K, V]
	level1Tables []*sstable.Table[K, V]

	log       *slog.Logger
	closed    bool
	closeOnce sync.Once
}

func level0Dir(dir string) string { return filepath.Join(dir, "level0") }
func level1Dir(dir string) string { return filepath.Join(dir, "level1") }

// New creates a fresh tree rooted at dir, which must not already contain a
// manifest.
func New[K any, V any](dir string, cfg Config, kc codec.KeyCodec[K], vc codec.ValueCodec[V]) (*Tree[K, V], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("lsm: create %s: %w", dir, err)
	}

	level0, err := levelset.Open(level0Dir(dir))
	if err != nil {
		return nil, err
	}
	level1, err := levelset.Open(level1Dir(dir))
	if err != nil {
		return nil, err
	}

	t := &Tree[K, V]{
		dir:    dir,
		cfg:    cfg,
		kc:     kc,
		vc:     vc,
		mt:     memtable.New[K, V](kc),
		level0: level0,
		level1: level1,
		log:    slog.Default().With("component", "lsm"),
	}
	if err := t.saveManifest(); err != nil {
		return nil, err
	}
	return t, nil
}

// Load reopens a tree previously created by New, restoring configuration
// from the manifest and the level-0/level-1 table sets from the tables found
// in the level directories (the manifest's table counts are not consulted).
// The memtable always
// starts empty: this package carries no write-ahead log, so writes still
// buffered in the memtable at the moment of a prior abrupt termination are
// lost, by design (see the concurrency and resource model).
func Load[K any, V any](dir string, kc codec.KeyCodec[K], vc codec.ValueCodec[V]) (*Tree[K, V], error) {
	state, err := readManifest(dir)
	if err != nil {
		return nil, err
	}
	cfg := Config{
		BlockSize:    int(state.BlockSize),
		MemtableSize: int(state.MemtableSize),
		Level0Size:   int(state.Level0Size),
		BloomFPRate:  defaultBloomFPRateIfZero(state),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	level0, err := levelset.Open(level0Dir(dir))
	if err != nil {
		return nil, err
	}
	level1, err := levelset.Open(level1Dir(dir))
	if err != nil {
		return nil, err
	}

	t := &Tree[K, V]{
		dir:    dir,
		cfg:    cfg,
		kc:     kc,
		vc:     vc,
		mt:     memtable.New[K, V](kc),
		level0: level0,
		level1: level1,
		log:    slog.Default().With("component", "lsm"),
	}

	for _, n := range level0.NumbersAscending() {
		tbl, err := sstable.Open[K, V](level0.PathsFor(n), kc, vc)
		if err != nil {
			return nil, fmt.Errorf("lsm: open level0 table %d: %w", n, err)
		}
		t.level0Tables = append(t.level0Tables, tbl)
	}
	for _, n := range level1.NumbersAscending() {
		tbl, err := sstable.Open[K, V](level1.PathsFor(n), kc, vc)
		if err != nil {
			return nil, fmt.Errorf("lsm: open level1 table %d: %w", n, err)
		}
		t.level1Tables = append(t.level1Tables, tbl)
	}

	return t, nil
}

// defaultBloomFPRateIfZero is a defensive fallback: the manifest's binary
// layout does not persist the Bloom false-positive rate (it is not part of
// the spec's fixed field order), so Load uses a sane default. Callers that
// need an exact rate across restarts should keep cfg out-of-band.
func defaultBloomFPRateIfZero(manifestState) float64 {
	return 0.01
}

// Insert stores v under k, flushing the memtable first if it is full.
func (t *Tree[K, V]) Insert(k K, v V) error {
	if t.closed {
		return lsmerr.ErrClosed
	}
	if t.mt.Len() >= t.cfg.MemtableSize {
		if err := t.flush(); err != nil {
			return err
		}
	}
	t.mt.Put(k, v)
	return nil
}

// Get looks up k, checking the memtable, then level-0 tables newest-first,
// then level-1 tables newest-first. A tombstone anywhere along that search
// order resolves the lookup to absent immediately.
func (t *Tree[K, V]) Get(k K) (V, bool, error) {
	var zero V
	if t.closed {
		return zero, false, lsmerr.ErrClosed
	}

	if e, ok := t.mt.Get(k); ok {
		if e.IsTombstone() {
			return zero, false, nil
		}
		return e.Value, true, nil
	}

	for i := len(t.level0Tables) - 1; i >= 0; i-- {
		e, found, err := t.level0Tables[i].Get(k)
		if err != nil {
			return zero, false, err
		}
		if found {
			if e.IsTombstone() {
				return zero, false, nil
			}
			return e.Value, true, nil
		}
	}
	for i := len(t.level1Tables) - 1; i >= 0; i-- {
		e, found, err := t.level1Tables[i].Get(k)
		if err != nil {
			return zero, false, err
		}
		if found {
			if e.IsTombstone() {
				return zero, false, nil
			}
			return e.Value, true, nil
		}
	}

	return zero, false, nil
}

// Delete removes k, returning the value it held (absent if k was not
// present). A delete of an absent key is a no-op that does not touch the
// memtable.
func (t *Tree[K, V]) Delete(k K) (V, bool, error) {
	var zero V
	if t.closed {
		return zero, false, lsmerr.ErrClosed
	}

	v, ok, err := t.Get(k)
	if err != nil || !ok {
		return zero, ok, err
	}

	if t.mt.Len() >= t.cfg.MemtableSize {
		if err := t.flush(); err != nil {
			return zero, false, err
		}
	}
	t.mt.Delete(k)
	return v, true, nil
}

// Flush forces the current memtable to disk as a new level-0 SSTable, even
// if it has not reached capacity.
func (t *Tree[K, V]) Flush() error {
	if t.closed {
		return lsmerr.ErrClosed
	}
	return t.flush()
}

// Compact merges all level-0 SSTables into a single new level-1 SSTable
// and clears level 0.
func (t *Tree[K, V]) Compact() error {
	if t.closed {
		return lsmerr.ErrClosed
	}
	return t.compact()
}

// Close flushes any buffered writes and marks the tree unusable. It is
// idempotent: calling Close more than once (including from a deferred
// call after an explicit one) only flushes once.
func (t *Tree[K, V]) Close() error {
	var err error
	t.closeOnce.Do(func() {
		err = t.flush()
		t.closed = true
	})
	return err
}
