package geometry

import (
	"fmt"
	"math"

	"github.com/arloliu/meshpack/errs"
	"github.com/arloliu/meshpack/format"
)

// MaxAttributes is the largest number of attributes a stream can carry.
const MaxAttributes = math.MaxUint8

// PointCloud is a set of points described by ordered attributes.
type PointCloud struct {
	numPoints  int
	attributes []*Attribute
}

// NewPointCloud creates an empty point cloud with numPoints points.
func NewPointCloud(numPoints int) *PointCloud {
	return &PointCloud{numPoints: numPoints}
}

// NumPoints returns the number of points.
func (pc *PointCloud) NumPoints() int {
	return pc.numPoints
}

// SetNumPoints changes the number of points.
func (pc *PointCloud) SetNumPoints(n int) {
	pc.numPoints = n
}

// AddAttribute appends a and returns its index. The point cloud takes
// ownership of a.
func (pc *PointCloud) AddAttribute(a *Attribute) int {
	pc.attributes = append(pc.attributes, a)
	return len(pc.attributes) - 1
}

// NumAttributes returns the number of attributes.
func (pc *PointCloud) NumAttributes() int {
	return len(pc.attributes)
}

// Attributes returns the attributes in insertion order.
func (pc *PointCloud) Attributes() []*Attribute {
	return pc.attributes
}

// Attribute returns attribute i.
func (pc *PointCloud) Attribute(i int) *Attribute {
	return pc.attributes[i]
}

// NamedAttribute returns the first attribute of type typ, or nil.
func (pc *PointCloud) NamedAttribute(typ format.AttributeType) *Attribute {
	for _, a := range pc.attributes {
		if a.Type == typ {
			return a
		}
	}

	return nil
}

// Validate checks every attribute against the point count.
func (pc *PointCloud) Validate() error {
	if pc.numPoints < 0 || uint64(pc.numPoints) > math.MaxUint32 {
		return fmt.Errorf("%w: %d points", errs.ErrInvalidGeometry, pc.numPoints)
	}

	if len(pc.attributes) > MaxAttributes {
		return fmt.Errorf("%w: %d attributes, at most %d", errs.ErrInvalidGeometry, len(pc.attributes), MaxAttributes)
	}

	for i, a := range pc.attributes {
		if a == nil {
			return fmt.Errorf("%w: attribute %d is nil", errs.ErrInvalidGeometry, i)
		}

		if err := a.Validate(pc.numPoints); err != nil {
			return fmt.Errorf("attribute %d: %w", i, err)
		}
	}

	return nil
}
