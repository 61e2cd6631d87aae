// Package compression implements an LZ77-family byte-stream codec. It backs
// sstable.Table's optional whole-file archival path (see
// sstable.CompressDataFile), compressing an already-built table's .data
// file without touching the block-seek format the live table reads from.
package compression

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	windowSize   = 4096 // lookback distance a match may reference
	minMatchLen  = 4    // shorter runs are cheaper to leave as literals
	maxMatchLen  = minMatchLen + 255
	hashBits     = 13
	hashTableLen = 1 << hashBits
	maxChainHops = 48 // bounds match search time per position
	groupSize    = 8  // literals/matches per control byte
)

// hash4 folds 4 bytes into a hashTableLen-sized bucket index using Knuth's
// multiplicative hash.
func hash4(b []byte) uint32 {
	v := binary.LittleEndian.Uint32(b)
	return (v * 2654435761) >> (32 - hashBits)
}

// CompressLZ77 reads all of r, finds backward matches via a hash-chained
// sliding window, and writes the result to w as a stream of literal/match
// groups prefixed by the uncompressed length.
func CompressLZ77(r io.Reader, w io.Writer) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("compression: read input: %w", err)
	}

	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(data)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return 0, err
	}
	written := int64(8)

	if len(data) == 0 {
		return written, nil
	}

	head := make([]int32, hashTableLen)
	for i := range head {
		head[i] = -1
	}
	prev := make([]int32, len(data))

	insert := func(pos int) {
		if pos+4 > len(data) {
			return
		}
		h := hash4(data[pos : pos+4])
		prev[pos] = head[h]
		head[h] = int32(pos)
	}

	findMatch := func(pos int) (distance, length int) {
		if pos+4 > len(data) {
			return 0, 0
		}
		h := hash4(data[pos : pos+4])
		cand := head[h]
		hops := 0
		limit := len(data) - pos
		if limit > maxMatchLen {
			limit = maxMatchLen
		}
		for cand >= 0 && pos-int(cand) <= windowSize && hops < maxChainHops {
			c := int(cand)
			l := 0
			for l < limit && data[c+l] == data[pos+l] {
				l++
			}
			if l > length {
				length = l
				distance = pos - c
				if l >= limit {
					break
				}
			}
			cand = prev[c]
			hops++
		}
		return distance, length
	}

	var payload []byte
	slot := 0
	var control byte

	flushGroup := func() error {
		if slot == 0 {
			return nil
		}
		if _, err := w.Write([]byte{control}); err != nil {
			return err
		}
		if _, err := w.Write(payload); err != nil {
			return err
		}
		written += 1 + int64(len(payload))
		slot = 0
		control = 0
		payload = payload[:0]
		return nil
	}

	pos := 0
	for pos < len(data) {
		dist, length := 0, 0
		if pos+minMatchLen <= len(data) {
			dist, length = findMatch(pos)
		}

		if length >= minMatchLen {
			control |= 1 << uint(slot)
			var vb [binary.MaxVarintLen64]byte
			n := binary.PutUvarint(vb[:], uint64(dist))
			payload = append(payload, vb[:n]...)
			payload = append(payload, byte(length-minMatchLen))

			for i := 0; i < length; i++ {
				insert(pos + i)
			}
			pos += length
		} else {
			payload = append(payload, data[pos])
			insert(pos)
			pos++
		}

		slot++
		if slot == groupSize {
			if err := flushGroup(); err != nil {
				return written, err
			}
		}
	}
	if err := flushGroup(); err != nil {
		return written, err
	}

	return written, nil
}

// DecompressLZ77 reverses CompressLZ77.
func DecompressLZ77(r io.Reader, w io.Writer) (int64, error) {
	var lenBuf [8]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return 0, fmt.Errorf("compression: read length prefix: %w", err)
	}
	total := binary.LittleEndian.Uint64(lenBuf[:])

	out := make([]byte, 0, total)
	var written int64

	for uint64(len(out)) < total {
		var control [1]byte
		if _, err := io.ReadFull(r, control[:]); err != nil {
			return written, fmt.Errorf("compression: read control byte: %w", err)
		}

		for bit := 0; bit < groupSize && uint64(len(out)) < total; bit++ {
			if control[0]&(1<<uint(bit)) == 0 {
				var b [1]byte
				if _, err := io.ReadFull(r, b[:]); err != nil {
					return written, fmt.Errorf("compression: read literal: %w", err)
				}
				out = append(out, b[0])
				continue
			}

			dist, err := binary.ReadUvarint(byteReader{r})
			if err != nil {
				return written, fmt.Errorf("compression: read distance: %w", err)
			}
			var lb [1]byte
			if _, err := io.ReadFull(r, lb[:]); err != nil {
				return written, fmt.Errorf("compression: read match length: %w", err)
			}
			length := int(lb[0]) + minMatchLen

			start := len(out) - int(dist)
			if start < 0 {
				return written, fmt.Errorf("compression: match distance %d exceeds %d decoded bytes", dist, len(out))
			}
			for i := 0; i < length; i++ {
				out = append(out, out[start+i])
			}
		}
	}

	if len(out) > 0 {
		n, err := w.Write(out)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// byteReader adapts an io.Reader to io.ByteReader one byte at a time, for
// binary.ReadUvarint's sake, without requiring callers to hand us a
// *bufio.Reader.
type byteReader struct {
	r io.Reader
}

func (br byteReader) ReadByte() (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(br.r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}
