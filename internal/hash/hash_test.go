package hash

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChecksum(t *testing.T) {
	tests := []struct {
		name string
		data string
		sum  uint64
	}{
		{"empty", "", 0xef46db3751d8e999},
		{"short", "test", 0x4fdcca5ddb678139},
		{"long", "this is a longer test string to hash", 0x69275f7f7ee59dbd},
		{"another", "another test string", 0x212a22f593810bec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.sum, Checksum([]byte(tt.data)))
		})
	}
}

func TestFloat32s(t *testing.T) {
	assert.Equal(t, Float32s([]float32{1, 2, 3}), Float32s([]float32{1, 2, 3}))
	assert.NotEqual(t, Float32s([]float32{1, 2, 3}), Float32s([]float32{1, 3, 2}))
	assert.NotEqual(t, Float32s([]float32{0}), Float32s([]float32{float32(math.Copysign(0, -1))}))

	nan := float32(math.NaN())
	assert.Equal(t, Float32s([]float32{nan}), Float32s([]float32{nan}))
}

func TestInt64s(t *testing.T) {
	assert.Equal(t, Int64s([]int64{-1, 7}), Int64s([]int64{-1, 7}))
	assert.NotEqual(t, Int64s([]int64{-1, 7}), Int64s([]int64{7, -1}))
	assert.Equal(t, Checksum(nil), Int64s(nil))
}

func randBytes(n int) []byte {
	b := make([]byte, n)
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))
	seededRand.Read(b)

	return b
}

func BenchmarkChecksum(b *testing.B) {
	data := randBytes(64 << 10)
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for b.Loop() {
		Checksum(data)
	}
}
