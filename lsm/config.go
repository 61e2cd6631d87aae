package lsm

import "lsmgo/lsmerr"

// Config sizes a tree instance: block boundary for SSTable builds, the
// memtable's entry capacity, and the level-0 compaction threshold.
type Config struct {
	BlockSize    int
	MemtableSize int
	Level0Size   int
	BloomFPRate  float64
}

func (c Config) validate() error {
	if c.BlockSize < 1 || c.MemtableSize < 1 || c.Level0Size < 1 {
		return lsmerr.ErrInvalidConfig
	}
	if c.BloomFPRate <= 0 || c.BloomFPRate >= 1 {
		return lsmerr.ErrInvalidConfig
	}
	return nil
}
