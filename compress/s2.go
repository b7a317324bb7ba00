package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"
)

// S2Compressor provides S2 block compression, favoring speed over ratio.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates a new S2 compressor.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Compress compresses the input data using S2 compression.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

// s2MaxExpansion bounds the output per input byte; a 5 byte repeat copies
// up to about 16.8 MiB.
const s2MaxExpansion = 1 << 22

// MaxDecompressedSize returns the largest output of an n byte S2 block.
func (c S2Compressor) MaxDecompressedSize(n int) int {
	return n * s2MaxExpansion
}

// Decompress decompresses the input data using S2 decompression.
//
// The decoded length in the block header must equal size before any output
// is allocated.
func (c S2Compressor) Decompress(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return nil, checkSize("s2", 0, size)
	}

	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}

	if err := checkSize("s2", n, size); err != nil {
		return nil, err
	}

	out, err := s2.Decode(make([]byte, n), data)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}

	return out, nil
}
