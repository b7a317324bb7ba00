package compress

import (
	"fmt"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ZstdCompressor provides Zstandard compression, favoring ratio over speed.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

// zstdMaxExpansion bounds the output per input byte; the smallest block, a
// 4 byte RLE block, expands to at most 128 KiB.
const zstdMaxExpansion = 1 << 15

// zstdMaxMemory caps what a decoder may allocate for one body.
const zstdMaxMemory = math.MaxInt32

// zstdDecoderPool pools zstd decoders; klauspost/compress/zstd decoders run
// without allocations after a warmup.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
			zstd.WithDecoderMaxMemory(zstdMaxMemory),
			zstd.WithDecodeAllCapLimit(true),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}

		return decoder
	},
}

var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderCRC(false),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}

		return encoder
	},
}

// Compress compresses the input data using a pooled Zstandard encoder.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	encoder := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(encoder)

	return encoder.EncodeAll(data, nil), nil
}

// MaxDecompressedSize returns the largest output of n bytes of Zstd frames.
func (c ZstdCompressor) MaxDecompressedSize(n int) int {
	return n * zstdMaxExpansion
}

// Decompress decompresses Zstd data using a pooled decoder.
//
// A frame that declares its content size must declare size. Output is
// limited to the size bytes of the destination buffer.
func (c ZstdCompressor) Decompress(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return nil, checkSize("zstd", 0, size)
	}

	var header zstd.Header
	if err := header.Decode(data); err != nil {
		return nil, fmt.Errorf("zstd frame header: %w", err)
	}

	if header.HasFCS && header.FrameContentSize != uint64(size) { //nolint:gosec
		return nil, checkSize("zstd", int(min(header.FrameContentSize, math.MaxInt32)), size) //nolint:gosec
	}

	decoder := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	out, err := decoder.DecodeAll(data, make([]byte, 0, size))
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	if err := checkSize("zstd", len(out), size); err != nil {
		return nil, err
	}

	return out, nil
}
