package compress

import (
	"fmt"

	"github.com/arloliu/meshpack/format"
)

// Compressor compresses an encoded meshpack body.
//
// The body is the concatenation of the connectivity and attribute sections.
// Those sections are already entropy coded, so the gain of a general purpose
// compressor comes mostly from section framing and descriptor bytes.
type Compressor interface {
	// Compress compresses data and returns the compressed result.
	//
	// The returned slice is owned by the caller; data is not modified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a body compressed by the matching Compressor.
//
// Thread Safety: implementations must be safe for concurrent use.
type Decompressor interface {
	// Decompress decompresses data into exactly size bytes.
	//
	// size is the raw body length stored in front of the compressed bytes;
	// the caller bounds it, at least by MaxDecompressedSize(len(data)).
	// Implementations allocate no more than size bytes of output and report
	// an output of any other length as an error.
	Decompress(data []byte, size int) ([]byte, error)

	// MaxDecompressedSize returns the largest output n compressed bytes can
	// decode to.
	MaxDecompressedSize(n int) int
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// CompressionStats describes one body compression, for debug logging.
type CompressionStats struct {
	Algorithm      format.CompressionType
	OriginalSize   int
	CompressedSize int
}

// CompressionRatio returns the compression ratio (compressed size / original size).
//
// Returns 0 if the original size is zero.
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space savings as a percentage.
func (s CompressionStats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves the built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}

func checkSize(algo string, got, want int) error {
	if got != want {
		return fmt.Errorf("%s: decompressed %d bytes, expected %d", algo, got, want)
	}

	return nil
}
