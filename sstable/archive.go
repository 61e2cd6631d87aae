package sstable

import (
	"fmt"
	"os"

	"lsmgo/pkg/compression"
)

// CompressDataFile writes an LZ77-compressed copy of an existing table's
// .data file to dstPath. It is an offline archival operation only: it does
// not change paths.Data itself, and a compressed archive cannot be opened
// directly by Open/Get, since compression discards the block-seek offsets
// the sparse index relies on.
func (t *Table[K, V]) CompressDataFile(dstPath string) error {
	in, err := os.Open(t.paths.Data)
	if err != nil {
		return fmt.Errorf("sstable: open %s for archival: %w", t.paths.Data, err)
	}
	defer in.Close()

	out, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("sstable: create %s: %w", dstPath, err)
	}
	defer out.Close()

	if _, err := compression.CompressLZ77(in, out); err != nil {
		return fmt.Errorf("sstable: compress %s: %w", t.paths.Data, err)
	}
	return nil
}

// DecompressDataFile reverses CompressDataFile, restoring the original
// .data bytes from an LZ77 archive produced by it.
func DecompressDataFile(srcPath, dstPath string) error {
	in, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("sstable: open %s: %w", srcPath, err)
	}
	defer in.Close()

	out, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("sstable: create %s: %w", dstPath, err)
	}
	defer out.Close()

	if _, err := compression.DecompressLZ77(in, out); err != nil {
		return fmt.Errorf("sstable: decompress %s: %w", srcPath, err)
	}
	return nil
}
