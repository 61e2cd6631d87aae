package sstable

import (
	"os"
	"path/filepath"
	"testing"

	"lsmgo/codec"
)

func TestCompressDataFileRoundTrip(t *testing.T) {
	keys := []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot"}
	pairs := makePairs(keys)
	paths := testPaths(t)

	tbl, err := Build[string, string](paths, 2, codec.StringKeyCodec(), codec.StringValueCodec(), 0.01, len(pairs), seqFromPairs(pairs))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	archivePath := filepath.Join(filepath.Dir(paths.Data), "0.data.lz77")
	if err := tbl.CompressDataFile(archivePath); err != nil {
		t.Fatalf("CompressDataFile: %v", err)
	}

	restoredPath := filepath.Join(filepath.Dir(paths.Data), "0.data.restored")
	if err := DecompressDataFile(archivePath, restoredPath); err != nil {
		t.Fatalf("DecompressDataFile: %v", err)
	}

	want, err := os.ReadFile(paths.Data)
	if err != nil {
		t.Fatalf("read original data file: %v", err)
	}
	got, err := os.ReadFile(restoredPath)
	if err != nil {
		t.Fatalf("read restored data file: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("restored data file mismatch: got %d bytes, want %d bytes", len(got), len(want))
	}
}
