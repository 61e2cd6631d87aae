// Package sstable implements the immutable on-disk sorted table: a data
// file of fixed-entry-count blocks, a sparse block index keyed by a
// block's first key, and a Bloom filter over every key in the table. Every
// block, block 0 included, has its own index entry.
package sstable

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"os"

	"lsmgo/bloom"
	"lsmgo/codec"
	"lsmgo/entry"
	"lsmgo/levelset"
)

// Table is an opened, immutable SSTable: its index and Bloom filter are
// resident in memory, its data file is opened fresh per Get/Iterator call.
type Table[K any, V any] struct {
	paths levelset.Paths
	kc    codec.KeyCodec[K]
	vc    codec.ValueCodec[V]
	index []indexEntry[K]
	filt  *bloom.Filter[K]
}

// Build writes a new table from an ascending-order source sequence,
// grouping entries into blocks of blockSize, and returns it opened for use.
// capacityHint sizes the Bloom filter; it should be the number of entries
// the source will yield (a count that may not be known in advance is
// clamped up to 1, trading filter precision for correctness).
func Build[K any, V any](
	paths levelset.Paths,
	blockSize int,
	kc codec.KeyCodec[K],
	vc codec.ValueCodec[V],
	fpRate float64,
	capacityHint int,
	source iter.Seq2[K, entry.Entry[V]],
) (*Table[K, V], error) {
	if blockSize < 1 {
		blockSize = 1
	}
	if capacityHint < 1 {
		capacityHint = 1
	}

	dataFile, err := os.Create(paths.Data)
	if err != nil {
		return nil, fmt.Errorf("sstable: create %s: %w", paths.Data, err)
	}
	w := bufio.NewWriter(dataFile)

	filt := bloom.New[K](kc, capacityHint, fpRate)

	var index []indexEntry[K]
	var block []byte
	var offset uint64

	i := 0
	for key, e := range source {
		filt.Add(key)

		if i%blockSize == 0 {
			n, werr := w.Write(block)
			offset += uint64(n)
			if werr != nil {
				dataFile.Close()
				return nil, fmt.Errorf("sstable: write block: %w", werr)
			}
			block = block[:0]
			index = append(index, indexEntry[K]{Key: key, Offset: offset})
		}

		block = append(block, encodeRecord(kc, vc, key, e)...)
		i++
	}

	if len(block) > 0 {
		if _, err := w.Write(block); err != nil {
			dataFile.Close()
			return nil, fmt.Errorf("sstable: write final block: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		dataFile.Close()
		return nil, fmt.Errorf("sstable: flush data file: %w", err)
	}
	if err := dataFile.Close(); err != nil {
		return nil, fmt.Errorf("sstable: close data file: %w", err)
	}

	idxFile, err := os.Create(paths.Index)
	if err != nil {
		return nil, fmt.Errorf("sstable: create %s: %w", paths.Index, err)
	}
	if err := writeIndex(idxFile, kc, index); err != nil {
		idxFile.Close()
		return nil, fmt.Errorf("sstable: write index: %w", err)
	}
	if err := idxFile.Close(); err != nil {
		return nil, err
	}

	bloomFile, err := os.Create(paths.Bloom)
	if err != nil {
		return nil, fmt.Errorf("sstable: create %s: %w", paths.Bloom, err)
	}
	if err := filt.EncodeTo(bloomFile); err != nil {
		bloomFile.Close()
		return nil, fmt.Errorf("sstable: write bloom: %w", err)
	}
	if err := bloomFile.Close(); err != nil {
		return nil, err
	}

	return &Table[K, V]{paths: paths, kc: kc, vc: vc, index: index, filt: filt}, nil
}

// Open loads a previously built table's index and Bloom filter into memory.
func Open[K any, V any](paths levelset.Paths, kc codec.KeyCodec[K], vc codec.ValueCodec[V]) (*Table[K, V], error) {
	idxFile, err := os.Open(paths.Index)
	if err != nil {
		return nil, fmt.Errorf("sstable: open %s: %w", paths.Index, err)
	}
	defer idxFile.Close()
	index, err := readIndex(idxFile, kc)
	if err != nil {
		return nil, err
	}

	bloomFile, err := os.Open(paths.Bloom)
	if err != nil {
		return nil, fmt.Errorf("sstable: open %s: %w", paths.Bloom, err)
	}
	defer bloomFile.Close()
	filt, err := bloom.Decode(bloomFile, kc)
	if err != nil {
		return nil, err
	}

	return &Table[K, V]{paths: paths, kc: kc, vc: vc, index: index, filt: filt}, nil
}

// largestLE returns the index entry with the greatest key <= target.
func (t *Table[K, V]) largestLE(target K) (indexEntry[K], bool) {
	lo, hi := 0, len(t.index)
	for lo < hi {
		mid := (lo + hi) / 2
		if t.kc.Compare(t.index[mid].Key, target) <= 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		return indexEntry[K]{}, false
	}
	return t.index[lo-1], true
}

// smallestGE returns the index entry with the smallest key >= target.
func (t *Table[K, V]) smallestGE(target K) (indexEntry[K], bool) {
	lo, hi := 0, len(t.index)
	for lo < hi {
		mid := (lo + hi) / 2
		if t.kc.Compare(t.index[mid].Key, target) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == len(t.index) {
		return indexEntry[K]{}, false
	}
	return t.index[lo], true
}

// Get performs a point lookup, returning the stored entry (which may be a
// tombstone) and whether the key was found in this table at all.
func (t *Table[K, V]) Get(key K) (entry.Entry[V], bool, error) {
	if !t.filt.Contains(key) {
		return entry.Entry[V]{}, false, nil
	}

	start, ok := t.largestLE(key)
	if !ok {
		return entry.Entry[V]{}, false, nil
	}

	var stop *uint64
	if t.kc.Compare(start.Key, key) != 0 {
		if next, ok := t.smallestGE(key); ok {
			stop = &next.Offset
		}
	}

	f, err := os.Open(t.paths.Data)
	if err != nil {
		return entry.Entry[V]{}, false, fmt.Errorf("sstable: open %s: %w", t.paths.Data, err)
	}
	defer f.Close()

	if _, err := f.Seek(int64(start.Offset), io.SeekStart); err != nil {
		return entry.Entry[V]{}, false, err
	}
	r := bufio.NewReader(f)

	pos := start.Offset
	for stop == nil || pos <= *stop {
		gotKey, gotEntry, n, derr := decodeRecordFrom(r, t.kc, t.vc)
		if derr == io.EOF {
			return entry.Entry[V]{}, false, nil
		}
		if derr != nil {
			return entry.Entry[V]{}, false, derr
		}
		pos += uint64(n)
		if t.kc.Compare(gotKey, key) != 0 {
			continue
		}
		return gotEntry, true, nil
	}
	return entry.Entry[V]{}, false, nil
}

// Iterator is a lazy forward scan over every (key, entry) pair in the table.
type Iterator[K any, V any] struct {
	f   *os.File
	r   *bufio.Reader
	kc  codec.KeyCodec[K]
	vc  codec.ValueCodec[V]
	key K
	val entry.Entry[V]
	err error
}

// Iterator opens the table's data file for a full forward scan. The
// caller must Close it when done.
func (t *Table[K, V]) Iterator() (*Iterator[K, V], error) {
	f, err := os.Open(t.paths.Data)
	if err != nil {
		return nil, fmt.Errorf("sstable: open %s: %w", t.paths.Data, err)
	}
	return &Iterator[K, V]{f: f, r: bufio.NewReader(f), kc: t.kc, vc: t.vc}, nil
}

// Next advances the iterator, reporting whether a new record was read.
func (it *Iterator[K, V]) Next() bool {
	k, e, _, err := decodeRecordFrom(it.r, it.kc, it.vc)
	if err != nil {
		if err != io.EOF {
			it.err = err
		}
		return false
	}
	it.key, it.val = k, e
	return true
}

func (it *Iterator[K, V]) Key() K                { return it.key }
func (it *Iterator[K, V]) Value() entry.Entry[V] { return it.val }
func (it *Iterator[K, V]) Err() error            { return it.err }
func (it *Iterator[K, V]) Close() error          { return it.f.Close() }

// NumIndexEntries reports how many sparse index entries this table carries, for
// diagnostics and tests. It is not the number of keys in the table.
func (t *Table[K, V]) NumIndexEntries() int { return len(t.index) }

// Paths returns the companion file paths backing this table.
func (t *Table[K, V]) Paths() levelset.Paths { return t.paths }
