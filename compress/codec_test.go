package compress

import (
	"bytes"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/arloliu/meshpack/format"
	"github.com/stretchr/testify/require"
)

func allTypes() []format.CompressionType {
	return []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	}
}

// testBody mimics a body: a few framed sections of dense payload bytes.
func testBody(size int, seed int64) []byte {
	rng := rand.New(rand.NewSource(seed))
	out := make([]byte, 0, size)
	for len(out) < size {
		out = append(out, 0x00, 0x07, 0x03, 0x0e, 0x02, 0x00)
		n := min(rng.Intn(64)+1, size-len(out))
		for range n {
			out = append(out, byte(rng.Intn(16)))
		}
	}

	return out[:size]
}

func TestGetCodec(t *testing.T) {
	for _, ct := range allTypes() {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)
			require.NotNil(t, codec)
		})
	}

	_, err := GetCodec(format.CompressionType(0x7f))
	require.Error(t, err)
}

func TestCodecs_RoundTrip(t *testing.T) {
	sizes := []int{1, 7, 100, 4096, 100_000}

	for _, ct := range allTypes() {
		codec, err := GetCodec(ct)
		require.NoError(t, err)

		for _, size := range sizes {
			t.Run(fmt.Sprintf("%s/%d", ct, size), func(t *testing.T) {
				data := testBody(size, int64(size))
				orig := bytes.Clone(data)

				packed, err := codec.Compress(data)
				require.NoError(t, err)
				require.Equal(t, orig, data, "input must not be modified")

				out, err := codec.Decompress(packed, len(data))
				require.NoError(t, err)
				require.Equal(t, orig, out)
			})
		}
	}
}

func TestCodecs_Empty(t *testing.T) {
	for _, ct := range allTypes() {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			packed, err := codec.Compress(nil)
			require.NoError(t, err)

			out, err := codec.Decompress(packed, 0)
			require.NoError(t, err)
			require.Empty(t, out)
		})
	}
}

func TestCodecs_SizeMismatch(t *testing.T) {
	data := testBody(2048, 1)

	for _, ct := range allTypes() {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			packed, err := codec.Compress(data)
			require.NoError(t, err)

			_, err = codec.Decompress(packed, len(data)-1)
			require.Error(t, err)

			_, err = codec.Decompress(packed, len(data)+1)
			require.Error(t, err)
		})
	}
}

func TestCodecs_MaxDecompressedSize(t *testing.T) {
	zeros := make([]byte, 1<<20)

	for _, ct := range allTypes() {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			packed, err := codec.Compress(zeros)
			require.NoError(t, err)
			require.GreaterOrEqual(t, codec.MaxDecompressedSize(len(packed)), len(zeros))
		})
	}

	lz4Codec := NewLZ4Compressor()
	_, err := lz4Codec.Decompress([]byte{0x10, 0x00}, lz4Codec.MaxDecompressedSize(2)+1)
	require.Error(t, err)
}

func TestCodecs_InvalidData(t *testing.T) {
	garbage := []byte{0xff, 0xfe, 0xfd, 0xfc, 0xfb, 0xfa, 0xf9, 0xf8}

	for _, ct := range []format.CompressionType{format.CompressionZstd, format.CompressionS2, format.CompressionLZ4} {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			_, err = codec.Decompress(garbage, 64)
			require.Error(t, err)
		})
	}
}

func TestCodecs_Concurrent(t *testing.T) {
	data := testBody(10_000, 42)

	for _, ct := range allTypes() {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			var wg sync.WaitGroup
			errCh := make(chan error, 16)
			for range 16 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					packed, err := codec.Compress(data)
					if err != nil {
						errCh <- err
						return
					}
					out, err := codec.Decompress(packed, len(data))
					if err != nil {
						errCh <- err
						return
					}
					if !bytes.Equal(out, data) {
						errCh <- fmt.Errorf("%s: round trip mismatch", ct)
					}
				}()
			}
			wg.Wait()
			close(errCh)

			for err := range errCh {
				require.NoError(t, err)
			}
		})
	}
}

func TestCompressionStats(t *testing.T) {
	s := CompressionStats{Algorithm: format.CompressionZstd, OriginalSize: 200, CompressedSize: 50}
	require.InDelta(t, 0.25, s.CompressionRatio(), 1e-12)
	require.InDelta(t, 75.0, s.SpaceSavings(), 1e-12)

	require.Zero(t, CompressionStats{}.CompressionRatio())
}
