package compress

// NoOpCompressor stores the body as is.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a new no-operation compressor.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns data without copying.
//
// Note: The returned slice shares the same underlying memory as the input.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// MaxDecompressedSize returns n.
func (c NoOpCompressor) MaxDecompressedSize(n int) int {
	return n
}

// Decompress returns data without copying after checking its length.
func (c NoOpCompressor) Decompress(data []byte, size int) ([]byte, error) {
	if err := checkSize("none", len(data), size); err != nil {
		return nil, err
	}

	return data, nil
}
