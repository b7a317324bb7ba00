package compress

import (
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4MaxExpansion is the most output one byte of an LZ4 block produces, a
// length extension byte adding 255.
const lz4MaxExpansion = 255

// lz4CompressorPool pools lz4.Compressor instances for reuse.
// The lz4.Compressor maintains internal state that benefits from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor provides LZ4 block compression.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses the input data using LZ4 block compression.
//
// Uses a pooled lz4.Compressor. Returns nil for empty input.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// MaxDecompressedSize returns the largest output of an n byte LZ4 block.
func (c LZ4Compressor) MaxDecompressedSize(n int) int {
	return n * lz4MaxExpansion
}

// Decompress decompresses an LZ4 block into exactly size bytes.
//
// The block format carries no length, so the stored raw length sizes the
// output buffer directly once it is known to fit the block.
func (c LZ4Compressor) Decompress(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return nil, checkSize("lz4", 0, size)
	}

	if size < 0 || size > c.MaxDecompressedSize(len(data)) {
		return nil, fmt.Errorf("lz4: %d byte block cannot hold %d bytes", len(data), size)
	}

	buf := make([]byte, size)
	n, err := lz4.UncompressBlock(data, buf)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}

	if err := checkSize("lz4", n, size); err != nil {
		return nil, err
	}

	return buf, nil
}
