// Package quantize maps floating attribute components onto unsigned integers
// of a fixed bit depth and back.
//
// A quantizer is described by its bit depth, one minimum per component and a
// single range shared by all components. Values are mapped as
//
//	q = round((x - min) / range * (2^bits - 1))
//
// and values outside [min, min+range] are clamped. Reconstruction error per
// component is at most range / 2^bits.
package quantize

import (
	"fmt"
	"math"

	"github.com/arloliu/meshpack/errs"
)

// MaxBits is the largest supported bit depth, the float32 mantissa width.
const MaxBits = 24

// MaxValue returns the largest quantized value for bits, 2^bits - 1.
func MaxValue(bits int) int64 {
	return (int64(1) << bits) - 1
}

// ValidateBits reports errs.ErrInvalidQuantization for a depth outside [1, MaxBits].
func ValidateBits(bits int) error {
	if bits < 1 || bits > MaxBits {
		return fmt.Errorf("%w: %d bits, supported range is [1, %d]", errs.ErrInvalidQuantization, bits, MaxBits)
	}

	return nil
}

// Quantize maps x into [0, 2^bits-1] relative to [lo, lo+rng].
//
// bits must already be validated. A zero range maps everything to 0.
func Quantize(x float64, bits int, lo, rng float64) int64 {
	if rng <= 0 {
		return 0
	}

	maxQ := MaxValue(bits)
	t := (x - lo) / rng
	switch {
	case t <= 0 || math.IsNaN(t):
		return 0
	case t >= 1:
		return maxQ
	}

	return min(int64(math.Floor(t*float64(maxQ)+0.5)), maxQ)
}

// Dequantize maps q back into [lo, lo+rng].
func Dequantize(q int64, bits int, lo, rng float64) float64 {
	if rng <= 0 {
		return lo
	}

	return lo + float64(q)*rng/float64(MaxValue(bits))
}

// Quantizer quantizes interleaved multi-component values.
type Quantizer struct {
	bits int
	maxQ int64
	mins []float32
	rng  float32
}

// New creates a Quantizer for len(mins) components.
//
// Parameters:
//   - bits: bit depth in [1, MaxBits]
//   - mins: per-component minimum
//   - rng: range shared by all components, finite and >= 0
//
// Returns:
//   - *Quantizer: the quantizer
//   - error: errs.ErrInvalidQuantization for an unsupported depth or range
func New(bits int, mins []float32, rng float32) (*Quantizer, error) {
	if err := ValidateBits(bits); err != nil {
		return nil, err
	}

	if len(mins) == 0 {
		return nil, fmt.Errorf("%w: no components", errs.ErrInvalidQuantization)
	}

	if rng < 0 || math.IsNaN(float64(rng)) || math.IsInf(float64(rng), 0) {
		return nil, fmt.Errorf("%w: range %v", errs.ErrInvalidQuantization, rng)
	}

	for _, m := range mins {
		if math.IsNaN(float64(m)) || math.IsInf(float64(m), 0) {
			return nil, fmt.Errorf("%w: minimum %v", errs.ErrInvalidQuantization, m)
		}
	}

	return &Quantizer{bits: bits, maxQ: MaxValue(bits), mins: mins, rng: rng}, nil
}

// Bits returns the bit depth.
func (q *Quantizer) Bits() int { return q.bits }

// MaxValue returns the largest quantized value.
func (q *Quantizer) MaxValue() int64 { return q.maxQ }

// Mins returns the per-component minimum.
func (q *Quantizer) Mins() []float32 { return q.mins }

// Range returns the shared range.
func (q *Quantizer) Range() float32 { return q.rng }

// Components returns the number of components per value.
func (q *Quantizer) Components() int { return len(q.mins) }

// QuantizeValues quantizes interleaved values; len(values) must be a multiple
// of Components.
func (q *Quantizer) QuantizeValues(values []float32) []int64 {
	out := make([]int64, len(values))
	c := len(q.mins)
	rng := float64(q.rng)
	for i, v := range values {
		out[i] = Quantize(float64(v), q.bits, float64(q.mins[i%c]), rng)
	}

	return out
}

// DequantizeValues reverses QuantizeValues.
//
// A quantized value outside [0, MaxValue] can only come from a corrupt stream
// and is reported as errs.ErrAttributeMismatch.
func (q *Quantizer) DequantizeValues(ints []int64) ([]float32, error) {
	out := make([]float32, len(ints))
	c := len(q.mins)
	rng := float64(q.rng)
	for i, v := range ints {
		if v < 0 || v > q.maxQ {
			return nil, fmt.Errorf("%w: quantized value %d outside [0, %d]", errs.ErrAttributeMismatch, v, q.maxQ)
		}
		out[i] = float32(Dequantize(v, q.bits, float64(q.mins[i%c]), rng))
	}

	return out, nil
}

// Bounds computes the per-component minimum and the shared range of
// interleaved values.
//
// The range is the largest per-component extent, rounded up to the next
// float32 so that every value satisfies x - min <= range exactly.
// Non-finite values or an extent beyond float32 are
// errs.ErrInvalidQuantization.
func Bounds(values []float32, components int) ([]float32, float32, error) {
	if components <= 0 {
		return nil, 0, fmt.Errorf("%w: %d components", errs.ErrInvalidQuantization, components)
	}

	mins := make([]float32, components)
	maxs := make([]float32, components)
	for i := range mins {
		mins[i] = math.MaxFloat32
		maxs[i] = -math.MaxFloat32
	}

	if len(values) == 0 {
		clear(mins)
		return mins, 0, nil
	}

	for i, v := range values {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, 0, fmt.Errorf("%w: non-finite value %v at %d", errs.ErrInvalidQuantization, v, i)
		}
		c := i % components
		mins[c] = min(mins[c], v)
		maxs[c] = max(maxs[c], v)
	}

	var extent float64
	for c := range mins {
		extent = max(extent, float64(maxs[c])-float64(mins[c]))
	}

	rng := float32(extent)
	if float64(rng) < extent {
		rng = math.Nextafter32(rng, math.MaxFloat32)
	}

	if math.IsInf(float64(rng), 0) || float64(rng) < extent {
		return nil, 0, fmt.Errorf("%w: value extent %g exceeds float32", errs.ErrInvalidQuantization, extent)
	}

	return mins, rng, nil
}
