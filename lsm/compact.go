package lsm

import (
	"fmt"

	"lsmgo/memtable"
	"lsmgo/sstable"
)

// compact merges every level-0 table into a single new level-1 table. It
// replays each level-0 table's full sequence, oldest table first, into a
// scratch ordered map, so that last-write-wins falls out of ordinary
// overwrite semantics; tombstones are carried into the merge like any
// other entry; and then writes the result as one new level-1 SSTable.
func (t *Tree[K, V]) compact() error {
	if len(t.level0Tables) == 0 {
		return nil
	}

	scratch := memtable.New[K, V](t.kc)
	for _, tbl := range t.level0Tables {
		it, err := tbl.Iterator()
		if err != nil {
			return fmt.Errorf("lsm: open level0 table for compaction: %w", err)
		}
		for it.Next() {
			k, e := it.Key(), it.Value()
			if e.IsTombstone() {
				scratch.Delete(k)
			} else {
				scratch.Put(k, e.Value)
			}
		}
		err = it.Err()
		it.Close()
		if err != nil {
			return fmt.Errorf("lsm: read level0 table during compaction: %w", err)
		}
	}

	n := t.level1.NextNumber()
	paths := t.level1.Next()
	newTable, err := sstable.Build[K, V](paths, t.cfg.BlockSize, t.kc, t.vc, t.cfg.BloomFPRate, scratch.Len(), scratch.All())
	if err != nil {
		return fmt.Errorf("lsm: write compacted level1 table %d: %w", n, err)
	}
	t.level1.Commit(n)
	t.level1Tables = append(t.level1Tables, newTable)

	if err := t.level0.Reset(); err != nil {
		return fmt.Errorf("lsm: clear level0 after compaction: %w", err)
	}
	t.level0Tables = nil

	t.log.Info("compacted level0 into level1", "level1_table", n)
	return nil
}
