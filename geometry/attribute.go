// Package geometry holds the in-memory point cloud and mesh model that
// meshpack encodes and decodes.
//
// An Attribute stores unique values plus a point-to-value mapping, so points
// may share values. Float data is kept as []float32 and integer data as
// []int64; integer values are range-checked against the declared data type
// when they enter the attribute.
package geometry

import (
	"fmt"
	"math"
	"slices"

	"github.com/arloliu/meshpack/errs"
	"github.com/arloliu/meshpack/format"
	"github.com/arloliu/meshpack/internal/hash"
)

// MaxComponents is the largest component count an attribute can carry.
const MaxComponents = math.MaxUint8

// Attribute is one per-point data channel.
//
// Values are stored interleaved, NumValues()*Components entries. A nil
// mapping means point i uses value i.
type Attribute struct {
	Type             format.AttributeType
	DataType         format.DataType
	Components       int
	QuantizationBits int

	floats  []float32
	ints    []int64
	mapping []uint32
}

// NewFloatAttribute creates a float32 attribute with identity mapping.
//
// Parameters:
//   - typ: attribute type
//   - components: components per value, in [1, MaxComponents]
//   - values: interleaved values, copied
//
// Returns:
//   - *Attribute: the attribute
//   - error: errs.ErrInvalidGeometry for a bad component count or length
func NewFloatAttribute(typ format.AttributeType, components int, values []float32) (*Attribute, error) {
	if err := checkShape(components, len(values)); err != nil {
		return nil, err
	}

	return &Attribute{
		Type:       typ,
		DataType:   format.DataFloat32,
		Components: components,
		floats:     slices.Clone(values),
	}, nil
}

// NewIntAttribute creates an integer attribute with identity mapping.
//
// Every value must fit dt, otherwise errs.ErrInvalidGeometry is returned.
func NewIntAttribute(typ format.AttributeType, dt format.DataType, components int, values []int64) (*Attribute, error) {
	if !dt.IsValid() || dt.IsFloat() {
		return nil, fmt.Errorf("%w: %s is not an integer data type", errs.ErrInvalidGeometry, dt)
	}

	if err := checkShape(components, len(values)); err != nil {
		return nil, err
	}

	a := &Attribute{Type: typ, DataType: dt, Components: components}
	if err := a.SetInt64Values(values); err != nil {
		return nil, err
	}

	return a, nil
}

func checkShape(components, n int) error {
	if components < 1 || components > MaxComponents {
		return fmt.Errorf("%w: %d components", errs.ErrInvalidGeometry, components)
	}

	if n%components != 0 {
		return fmt.Errorf("%w: %d values is not a multiple of %d components", errs.ErrInvalidGeometry, n, components)
	}

	return nil
}

// NumValues returns the number of unique values.
func (a *Attribute) NumValues() int {
	if a.Components == 0 {
		return 0
	}

	if a.DataType.IsFloat() {
		return len(a.floats) / a.Components
	}

	return len(a.ints) / a.Components
}

// Float32Values returns the interleaved float values, nil for integer data.
func (a *Attribute) Float32Values() []float32 {
	return a.floats
}

// Int64Values returns the interleaved integer values, nil for float data.
func (a *Attribute) Int64Values() []int64 {
	return a.ints
}

// SetFloat32Values replaces the values of a float attribute.
func (a *Attribute) SetFloat32Values(values []float32) error {
	if !a.DataType.IsFloat() {
		return fmt.Errorf("%w: %s attribute holds integers", errs.ErrInvalidGeometry, a.DataType)
	}

	if err := checkShape(a.Components, len(values)); err != nil {
		return err
	}
	a.floats = slices.Clone(values)

	return nil
}

// SetInt64Values replaces the values of an integer attribute, checking each
// against the data type range.
func (a *Attribute) SetInt64Values(values []int64) error {
	if a.DataType.IsFloat() {
		return fmt.Errorf("%w: %s attribute holds floats", errs.ErrInvalidGeometry, a.DataType)
	}

	if err := checkShape(a.Components, len(values)); err != nil {
		return err
	}

	lo, hi := a.DataType.IntRange()
	for i, v := range values {
		if v < lo || v > hi {
			return fmt.Errorf("%w: value %d at %d outside %s range", errs.ErrInvalidGeometry, v, i, a.DataType)
		}
	}
	a.ints = slices.Clone(values)

	return nil
}

// SetMapping sets an explicit point-to-value mapping, copied.
func (a *Attribute) SetMapping(mapping []uint32) {
	a.mapping = slices.Clone(mapping)
}

// SetIdentityMapping makes point i use value i.
func (a *Attribute) SetIdentityMapping() {
	a.mapping = nil
}

// Mapping returns the explicit mapping, nil for identity.
func (a *Attribute) Mapping() []uint32 {
	return a.mapping
}

// IsIdentityMapping reports whether point i uses value i for every point.
func (a *Attribute) IsIdentityMapping() bool {
	for i, v := range a.mapping {
		if int(v) != i {
			return false
		}
	}

	return true
}

// MappedIndex returns the value index used by point.
func (a *Attribute) MappedIndex(point int) int {
	if a.mapping == nil {
		return point
	}

	return int(a.mapping[point])
}

// Float32Value returns the components of the value used by point.
func (a *Attribute) Float32Value(point int) []float32 {
	i := a.MappedIndex(point) * a.Components
	return a.floats[i : i+a.Components]
}

// Int64Value returns the components of the value used by point.
func (a *Attribute) Int64Value(point int) []int64 {
	i := a.MappedIndex(point) * a.Components
	return a.ints[i : i+a.Components]
}

// Validate checks the attribute against numPoints points.
func (a *Attribute) Validate(numPoints int) error {
	if !a.Type.IsValid() || !a.DataType.IsValid() {
		return fmt.Errorf("%w: attribute type %d, data type %d", errs.ErrInvalidGeometry, a.Type, a.DataType)
	}

	n := len(a.ints)
	if a.DataType.IsFloat() {
		n = len(a.floats)
	}

	if err := checkShape(a.Components, n); err != nil {
		return err
	}

	if a.mapping == nil {
		if a.NumValues() != numPoints {
			return fmt.Errorf("%w: %s has %d values for %d points without mapping", errs.ErrInvalidGeometry, a.Type, a.NumValues(), numPoints)
		}

		return nil
	}

	if len(a.mapping) != numPoints {
		return fmt.Errorf("%w: %s mapping has %d entries for %d points", errs.ErrInvalidGeometry, a.Type, len(a.mapping), numPoints)
	}

	for p, v := range a.mapping {
		if int(v) >= a.NumValues() {
			return fmt.Errorf("%w: %s point %d maps to value %d of %d", errs.ErrInvalidGeometry, a.Type, p, v, a.NumValues())
		}
	}

	return nil
}

// Deduplicate collapses identical values and rewrites the mapping.
// Floats compare by bit pattern. Value order follows first occurrence.
func (a *Attribute) Deduplicate() {
	n := a.NumValues()
	c := a.Components
	buckets := make(map[uint64][]uint32, n)
	remap := make([]uint32, n)

	var floats []float32
	var ints []int64
	unique := uint32(0)

	for i := range n {
		var key uint64
		if a.DataType.IsFloat() {
			key = hash.Float32s(a.floats[i*c : (i+1)*c])
		} else {
			key = hash.Int64s(a.ints[i*c : (i+1)*c])
		}

		found := false
		for _, u := range buckets[key] {
			if a.sameValue(int(u), i, floats, ints) {
				remap[i] = u
				found = true

				break
			}
		}

		if found {
			continue
		}

		buckets[key] = append(buckets[key], unique)
		remap[i] = unique
		unique++
		if a.DataType.IsFloat() {
			floats = append(floats, a.floats[i*c:(i+1)*c]...)
		} else {
			ints = append(ints, a.ints[i*c:(i+1)*c]...)
		}
	}

	mapping := a.mapping
	if mapping == nil {
		mapping = make([]uint32, n)
		for i := range mapping {
			mapping[i] = uint32(i) //nolint:gosec
		}
	}

	for p, v := range mapping {
		mapping[p] = remap[v]
	}

	a.floats, a.ints, a.mapping = floats, ints, mapping
}

// sameValue compares unique value u (already moved to the new buffers) with
// original value i.
func (a *Attribute) sameValue(u, i int, floats []float32, ints []int64) bool {
	c := a.Components
	if a.DataType.IsFloat() {
		for k := range c {
			if math.Float32bits(floats[u*c+k]) != math.Float32bits(a.floats[i*c+k]) {
				return false
			}
		}

		return true
	}

	return slices.Equal(ints[u*c:(u+1)*c], a.ints[i*c:(i+1)*c])
}

// Clone returns a deep copy.
func (a *Attribute) Clone() *Attribute {
	out := *a
	out.floats = slices.Clone(a.floats)
	out.ints = slices.Clone(a.ints)
	out.mapping = slices.Clone(a.mapping)

	return &out
}
