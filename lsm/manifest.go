package lsm

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// manifestState is the binary-encoded tree manifest: five little-endian
// uint64 fields in a fixed order, matching the ordering the spec fixes for
// dir/state.
type manifestState struct {
	BlockSize    uint64
	MemtableSize uint64
	Level0Count  uint64
	Level1Count  uint64
	Level0Size   uint64
}

func manifestPath(dir string) string {
	return filepath.Join(dir, "state")
}

// writeManifest durably replaces dir/state with s, via a write-to-temp,
// then rename: the corpus's own manifest-atomicity idiom, generalized here
// from JSON to this package's fixed binary layout. The spec's core
// contract only requires a truncating write; this is the permitted
// crash-safer alternative.
func writeManifest(dir string, s manifestState) error {
	tmp := filepath.Join(dir, "state.tmp-"+uuid.NewString())
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("lsm: create manifest temp file: %w", err)
	}

	fields := []uint64{s.BlockSize, s.MemtableSize, s.Level0Count, s.Level1Count, s.Level0Size}
	for _, v := range fields {
		if err := binary.Write(f, binary.LittleEndian, v); err != nil {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("lsm: write manifest: %w", err)
		}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("lsm: sync manifest: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("lsm: close manifest temp file: %w", err)
	}
	if err := os.Rename(tmp, manifestPath(dir)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("lsm: rename manifest into place: %w", err)
	}
	return nil
}

func readManifest(dir string) (manifestState, error) {
	f, err := os.Open(manifestPath(dir))
	if err != nil {
		return manifestState{}, fmt.Errorf("lsm: open manifest: %w", err)
	}
	defer f.Close()

	var s manifestState
	fields := []*uint64{&s.BlockSize, &s.MemtableSize, &s.Level0Count, &s.Level1Count, &s.Level0Size}
	for _, p := range fields {
		if err := binary.Read(f, binary.LittleEndian, p); err != nil {
			return manifestState{}, fmt.Errorf("lsm: read manifest: %w", err)
		}
	}
	return s, nil
}
