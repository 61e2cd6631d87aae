package lsm

import (
	"fmt"

	"lsmgo/sstable"
)

// flush materializes the memtable as a new level-0 SSTable, then triggers
// compaction if level 0 has reached its configured size, then rewrites the
// manifest. A flush of an empty memtable is a no-op: Close calls this
// unconditionally and must not create an empty table.
func (t *Tree[K, V]) flush() error {
	if t.mt.Len() == 0 {
		return nil
	}

	n := t.level0.NextNumber()
	paths := t.level0.Next()
	count := t.mt.Len()

	tbl, err := sstable.Build[K, V](paths, t.cfg.BlockSize, t.kc, t.vc, t.cfg.BloomFPRate, count, t.mt.All())
	if err != nil {
		return fmt.Errorf("lsm: flush memtable to table %d: %w", n, err)
	}

	t.level0.Commit(n)
	t.level0Tables = append(t.level0Tables, tbl)
	t.mt.Reset()
	t.log.Info("flushed memtable", "table", n, "entries", count)

	if t.level0.Len() >= t.cfg.Level0Size {
		if err := t.compact(); err != nil {
			return err
		}
	}

	return t.saveManifest()
}

func (t *Tree[K, V]) saveManifest() error {
	return writeManifest(t.dir, manifestState{
		BlockSize:    uint64(t.cfg.BlockSize),
		MemtableSize: uint64(t.cfg.MemtableSize),
		Level0Count:  uint64(t.level0.Len()),
		Level1Count:  uint64(t.level1.Len()),
		Level0Size:   uint64(t.cfg.Level0Size),
	})
}
