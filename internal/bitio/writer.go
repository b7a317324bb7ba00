package bitio

import (
	"encoding/binary"
	"math"

	"github.com/arloliu/meshpack/internal/pool"
)

// Writer appends bits and byte-aligned fields to a pooled buffer.
//
// Note: Writer is NOT thread-safe and is single-use: after Finish or Release
// every method panics on the nil buffer.
type Writer struct {
	bitBuf   uint64 // pending bits, right-aligned
	bitCount int    // number of pending bits, always < 8 between calls
	tmp      [binary.MaxVarintLen64]byte
	buf      *pool.ByteBuffer
}

// NewWriter creates a Writer backed by a pooled section buffer.
func NewWriter() *Writer {
	return &Writer{buf: pool.GetSectionBuffer()}
}

// WriteBit appends a single bit (only the lowest bit of bit is used).
func (w *Writer) WriteBit(bit uint64) {
	w.WriteBits(bit&1, 1)
}

// WriteBits appends the low n bits of value, most significant first.
//
// n must be in [0, 64].
func (w *Writer) WriteBits(value uint64, n int) {
	if n <= 0 {
		return
	}

	if n > 32 {
		w.WriteBits(value>>32, n-32)
		value &= math.MaxUint32
		n = 32
	}

	if n < 64 {
		value &= (1 << n) - 1
	}

	w.bitBuf = (w.bitBuf << n) | value
	w.bitCount += n

	for w.bitCount >= 8 {
		w.bitCount -= 8
		w.buf.B = append(w.buf.B, byte(w.bitBuf>>w.bitCount))
	}
	w.bitBuf &= (1 << w.bitCount) - 1
}

// Align pads the pending bits with zeros up to the next byte boundary.
func (w *Writer) Align() {
	if w.bitCount == 0 {
		return
	}

	w.WriteBits(0, 8-w.bitCount)
}

// Aligned reports whether the writer is on a byte boundary.
func (w *Writer) Aligned() bool {
	return w.bitCount == 0
}

// WriteByte appends one byte. On an unaligned writer the byte is written as 8 bits.
func (w *Writer) WriteByte(c byte) error {
	if w.bitCount != 0 {
		w.WriteBits(uint64(c), 8)
		return nil
	}
	w.buf.B = append(w.buf.B, c)

	return nil
}

// WriteUvarint appends v as an unsigned LEB128 varint.
func (w *Writer) WriteUvarint(v uint64) {
	n := binary.PutUvarint(w.tmp[:], v)
	w.writeAligned(w.tmp[:n])
}

// WriteUint32 appends v as 4 little-endian bytes.
func (w *Writer) WriteUint32(v uint32) {
	binary.LittleEndian.PutUint32(w.tmp[:4], v)
	w.writeAligned(w.tmp[:4])
}

// WriteUint64 appends v as 8 little-endian bytes.
func (w *Writer) WriteUint64(v uint64) {
	binary.LittleEndian.PutUint64(w.tmp[:8], v)
	w.writeAligned(w.tmp[:8])
}

// WriteFloat32 appends the IEEE-754 bit pattern of f as 4 little-endian bytes.
func (w *Writer) WriteFloat32(f float32) {
	w.WriteUint32(math.Float32bits(f))
}

// WriteBytes appends data verbatim.
func (w *Writer) WriteBytes(data []byte) {
	w.writeAligned(data)
}

// WriteSection appends a uvarint length prefix followed by data.
func (w *Writer) WriteSection(data []byte) {
	w.WriteUvarint(uint64(len(data)))
	w.writeAligned(data)
}

// Len returns the number of bytes written, counting a partial byte as one.
func (w *Writer) Len() int {
	if w.bitCount > 0 {
		return w.buf.Len() + 1
	}

	return w.buf.Len()
}

// BitLen returns the exact number of bits written.
func (w *Writer) BitLen() int {
	return w.buf.Len()*8 + w.bitCount
}

// Bytes aligns the writer and returns the internal buffer.
//
// The returned slice is valid until the next write, Finish or Release.
func (w *Writer) Bytes() []byte {
	w.Align()
	return w.buf.Bytes()
}

// Finish aligns the writer, returns a copy of the written bytes and releases
// the pooled buffer.
func (w *Writer) Finish() []byte {
	w.Align()
	out := w.buf.Clone()
	w.Release()

	return out
}

// Release returns the pooled buffer without producing output.
func (w *Writer) Release() {
	if w.buf == nil {
		return
	}

	pool.PutSectionBuffer(w.buf)
	w.buf = nil
}

func (w *Writer) writeAligned(data []byte) {
	if w.bitCount == 0 {
		w.buf.MustWrite(data)
		return
	}

	for _, c := range data {
		w.WriteBits(uint64(c), 8)
	}
}
