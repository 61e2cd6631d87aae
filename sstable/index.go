package sstable

import (
	"encoding/binary"
	"io"

	"lsmgo/codec"
	"lsmgo/lsmerr"
)

type indexEntry[K any] struct {
	Key    K
	Offset uint64
}

// writeIndex encodes: entry count (uint32), then that many
// (keyLen(4), key, offset(8)) records.
func writeIndex[K any](w io.Writer, kc codec.KeyCodec[K], entries []indexEntry[K]) error {
	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(entries)))
	if _, err := w.Write(countBuf[:]); err != nil {
		return err
	}
	for _, e := range entries {
		kb := kc.Encode(e.Key)
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(kb)))
		if _, err := w.Write(lenBuf[:]); err != nil {
			return err
		}
		if _, err := w.Write(kb); err != nil {
			return err
		}
		var offBuf [8]byte
		binary.LittleEndian.PutUint64(offBuf[:], e.Offset)
		if _, err := w.Write(offBuf[:]); err != nil {
			return err
		}
	}
	return nil
}

func readIndex[K any](r io.Reader, kc codec.KeyCodec[K]) ([]indexEntry[K], error) {
	var countBuf [4]byte
	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return nil, lsmerr.ErrCorruptIndex
	}
	count := binary.LittleEndian.Uint32(countBuf[:])
	out := make([]indexEntry[K], 0, count)
	for i := uint32(0); i < count; i++ {
		var lenBuf [4]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			return nil, lsmerr.ErrCorruptIndex
		}
		klen := binary.LittleEndian.Uint32(lenBuf[:])
		kb := make([]byte, klen)
		if _, err := io.ReadFull(r, kb); err != nil {
			return nil, lsmerr.ErrCorruptIndex
		}
		key, _, err := kc.Decode(kb)
		if err != nil {
			return nil, lsmerr.ErrCorruptIndex
		}
		var offBuf [8]byte
		if _, err := io.ReadFull(r, offBuf[:]); err != nil {
			return nil, lsmerr.ErrCorruptIndex
		}
		out = append(out, indexEntry[K]{Key: key, Offset: binary.LittleEndian.Uint64(offBuf[:])})
	}
	return out, nil
}
