package section

import (
	"fmt"

	"github.com/arloliu/meshpack/errs"
)

// Flag is the packed option byte of the header extension.
//
// Bit 0 marks a body checksum following the flag byte.
// Bits 1-7 are reserved and must be zero.
type Flag uint8

// HasChecksum returns whether the body checksum is present.
func (f Flag) HasChecksum() bool {
	return f&ChecksumMask != 0
}

// WithChecksum enables the body checksum.
func (f *Flag) WithChecksum() {
	*f |= ChecksumMask
}

// WithoutChecksum disables the body checksum.
func (f *Flag) WithoutChecksum() {
	*f &^= ChecksumMask
}

// Validate rejects reserved bits.
func (f Flag) Validate() error {
	if f&ReservedBitsMask != 0 {
		return fmt.Errorf("%w: reserved flag bits 0x%02x", errs.ErrUnsupportedFormat, uint8(f&ReservedBitsMask))
	}

	return nil
}
