// Package hash wraps xxHash64 for stream checksums and value bucketing.
package hash

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Checksum computes the xxHash64 of data.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Float32s hashes the IEEE bit patterns of values, so 0 and -0 differ and
// identical NaN payloads hash equal.
func Float32s(values []float32) uint64 {
	var buf [4]byte
	d := xxhash.New()
	for _, v := range values {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
		_, _ = d.Write(buf[:])
	}

	return d.Sum64()
}

// Int64s hashes integer values.
func Int64s(values []int64) uint64 {
	var buf [8]byte
	d := xxhash.New()
	for _, v := range values {
		binary.LittleEndian.PutUint64(buf[:], uint64(v)) //nolint:gosec
		_, _ = d.Write(buf[:])
	}

	return d.Sum64()
}
