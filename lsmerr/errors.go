// Package lsmerr collects the sentinel errors shared across the lsm, bloom,
// sstable and levelset packages.
package lsmerr

import "errors"

var (
	ErrNotFound      = errors.New("lsmgo: not found")
	ErrClosed        = errors.New("lsmgo: closed")
	ErrInvalidConfig = errors.New("lsmgo: invalid config")
	ErrCorruptIndex  = errors.New("lsmgo: corrupt index")
	ErrCorruptBloom  = errors.New("lsmgo: corrupt bloom filter")
	ErrNonContiguous = errors.New("lsmgo: non-contiguous table sequence")
)
