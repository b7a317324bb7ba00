package bitio

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/arloliu/meshpack/errs"
)

// Reader consumes bits and byte-aligned fields from a byte slice.
//
// The reader never copies: slices returned by ReadBytes and ReadSection alias
// the input buffer.
type Reader struct {
	data   []byte
	bitPos int
}

// NewReader creates a Reader positioned at the first bit of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// RemainingBits returns the number of unread bits.
func (r *Reader) RemainingBits() int {
	return len(r.data)*8 - r.bitPos
}

// Remaining returns the number of whole unread bytes.
func (r *Reader) Remaining() int {
	return r.RemainingBits() / 8
}

// Offset returns the current byte offset, rounding a partial byte up.
func (r *Reader) Offset() int {
	return (r.bitPos + 7) / 8
}

// Aligned reports whether the reader is on a byte boundary.
func (r *Reader) Aligned() bool {
	return r.bitPos&7 == 0
}

// Align skips to the next byte boundary.
func (r *Reader) Align() {
	r.bitPos = (r.bitPos + 7) &^ 7
	if r.bitPos > len(r.data)*8 {
		r.bitPos = len(r.data) * 8
	}
}

// ReadBit reads a single bit.
func (r *Reader) ReadBit() (uint64, error) {
	return r.ReadBits(1)
}

// ReadBits reads n bits, most significant first. n must be in [0, 64].
//
// Returns errs.ErrTruncatedStream if fewer than n bits remain; the reader
// position is unchanged in that case.
func (r *Reader) ReadBits(n int) (uint64, error) {
	if n < 0 || n > 64 {
		return 0, fmt.Errorf("bitio: invalid bit count %d", n)
	}

	if n > r.RemainingBits() {
		return 0, fmt.Errorf("%w: need %d bits, have %d", errs.ErrTruncatedStream, n, r.RemainingBits())
	}

	var result uint64
	for n > 0 {
		bitOff := r.bitPos & 7
		avail := 8 - bitOff
		take := min(avail, n)

		b := uint64(r.data[r.bitPos>>3])
		chunk := (b >> (avail - take)) & ((1 << take) - 1)

		result = (result << take) | chunk
		r.bitPos += take
		n -= take
	}

	return result, nil
}

// ReadByte reads one byte, falling back to an 8-bit read when unaligned.
func (r *Reader) ReadByte() (byte, error) {
	if !r.Aligned() {
		v, err := r.ReadBits(8)
		return byte(v), err
	}

	pos := r.bitPos >> 3
	if pos >= len(r.data) {
		return 0, fmt.Errorf("%w: need 1 byte at offset %d", errs.ErrTruncatedStream, pos)
	}
	r.bitPos += 8

	return r.data[pos], nil
}

// ReadUvarint reads an unsigned LEB128 varint of at most 10 bytes.
func (r *Reader) ReadUvarint() (uint64, error) {
	var x uint64
	var s uint

	for i := 0; i < binary.MaxVarintLen64; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}

		if b < 0x80 {
			if i == binary.MaxVarintLen64-1 && b > 1 {
				return 0, fmt.Errorf("%w: malformed varint", errs.ErrTruncatedStream)
			}

			return x | uint64(b)<<s, nil
		}
		x |= uint64(b&0x7f) << s
		s += 7
	}

	return 0, fmt.Errorf("%w: malformed varint", errs.ErrTruncatedStream)
}

// ReadUint32 reads 4 little-endian bytes.
func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(b), nil
}

// ReadUint64 reads 8 little-endian bytes.
func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint64(b), nil
}

// ReadFloat32 reads a little-endian IEEE-754 float32.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}

	return math.Float32frombits(v), nil
}

// ReadBytes returns the next n bytes. The reader must be aligned.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if !r.Aligned() {
		return nil, fmt.Errorf("bitio: unaligned byte read at bit %d", r.bitPos)
	}

	if n < 0 || n > r.Remaining() {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			errs.ErrTruncatedStream, n, r.bitPos>>3, r.Remaining())
	}

	pos := r.bitPos >> 3
	r.bitPos += n * 8

	return r.data[pos : pos+n : pos+n], nil
}

// ReadSection reads a uvarint length prefix followed by that many bytes.
func (r *Reader) ReadSection() ([]byte, error) {
	n, err := r.ReadUvarint()
	if err != nil {
		return nil, err
	}

	if n > uint64(r.Remaining()) {
		return nil, fmt.Errorf("%w: section claims %d bytes, have %d", errs.ErrTruncatedStream, n, r.Remaining())
	}

	return r.ReadBytes(int(n))
}

// Rest returns all remaining bytes. The reader must be aligned.
func (r *Reader) Rest() ([]byte, error) {
	return r.ReadBytes(r.Remaining())
}
