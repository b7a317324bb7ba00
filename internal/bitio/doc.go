// Package bitio implements the bit channel every meshpack section is built on.
//
// Bits are written most-significant first: WriteBits(0b101, 3) followed by
// WriteBits(0b1, 1) produces the byte 0b1011_0000 once the writer is aligned.
// Multi-byte fixed-width fields (WriteUint32, WriteUint64, WriteFloat32) are
// little-endian and, like varints and raw byte slices, are only written at
// byte boundaries. Byte alignment happens at section boundaries chosen by the
// caller; the reader must call Align at exactly the same points as the writer.
//
// Every read is bounds-checked against the underlying buffer, so a hostile or
// truncated stream produces errs.ErrTruncatedStream instead of a panic.
package bitio
