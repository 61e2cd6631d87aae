package sstable

import (
	"bytes"
	"encoding/binary"
	"io"

	"lsmgo/codec"
	"lsmgo/entry"
)

// writeRecord encodes one (key, entry) pair as:
//
//	keyLen(4) | key | tag(1) | [valueLen(4) | value]
//
// the value fields are omitted entirely for a tombstone.
func writeRecord[K any, V any](w io.Writer, kc codec.KeyCodec[K], vc codec.ValueCodec[V], key K, e entry.Entry[V]) error {
	kb := kc.Encode(key)
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(kb)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	if _, err := w.Write(kb); err != nil {
		return err
	}
	if _, err := w.Write([]byte{byte(e.Tag)}); err != nil {
		return err
	}
	if e.Tag == entry.TagData {
		vb := vc.Encode(e.Value)
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(vb)))
		if _, err := w.Write(lenBuf[:]); err != nil {
			return err
		}
		if _, err := w.Write(vb); err != nil {
			return err
		}
	}
	return nil
}

func encodeRecord[K any, V any](kc codec.KeyCodec[K], vc codec.ValueCodec[V], key K, e entry.Entry[V]) []byte {
	var buf bytes.Buffer
	_ = writeRecord(&buf, kc, vc, key, e)
	return buf.Bytes()
}

// decodeRecordFrom reads one record previously written by writeRecord. A
// clean end of stream (no bytes at all before the key length field) is
// reported as io.EOF; any other truncation is io.ErrUnexpectedEOF.
func decodeRecordFrom[K any, V any](r io.Reader, kc codec.KeyCodec[K], vc codec.ValueCodec[V]) (K, entry.Entry[V], int, error) {
	var zeroK K
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		if err == io.EOF {
			return zeroK, entry.Entry[V]{}, 0, io.EOF
		}
		return zeroK, entry.Entry[V]{}, 0, io.ErrUnexpectedEOF
	}
	klen := binary.LittleEndian.Uint32(lenBuf[:])
	kb := make([]byte, klen)
	if _, err := io.ReadFull(r, kb); err != nil {
		return zeroK, entry.Entry[V]{}, 0, io.ErrUnexpectedEOF
	}
	key, _, err := kc.Decode(kb)
	if err != nil {
		return zeroK, entry.Entry[V]{}, 0, err
	}

	var tagBuf [1]byte
	if _, err := io.ReadFull(r, tagBuf[:]); err != nil {
		return zeroK, entry.Entry[V]{}, 0, io.ErrUnexpectedEOF
	}
	consumed := 4 + int(klen) + 1

	if entry.Tag(tagBuf[0]) == entry.TagTombstone {
		return key, entry.Tombstone[V](), consumed, nil
	}

	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return zeroK, entry.Entry[V]{}, 0, io.ErrUnexpectedEOF
	}
	vlen := binary.LittleEndian.Uint32(lenBuf[:])
	vb := make([]byte, vlen)
	if _, err := io.ReadFull(r, vb); err != nil {
		return zeroK, entry.Entry[V]{}, 0, io.ErrUnexpectedEOF
	}
	val, _, err := vc.Decode(vb)
	if err != nil {
		return zeroK, entry.Entry[V]{}, 0, err
	}
	consumed += 4 + int(vlen)

	return key, entry.Data(val), consumed, nil
}
