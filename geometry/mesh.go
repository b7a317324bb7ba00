package geometry

import (
	"fmt"

	"github.com/arloliu/meshpack/errs"
)

// Mesh is a point cloud with triangle faces.
type Mesh struct {
	PointCloud
	faces [][3]uint32
}

// NewMesh creates an empty mesh with numPoints points.
func NewMesh(numPoints int) *Mesh {
	return &Mesh{PointCloud: PointCloud{numPoints: numPoints}}
}

// AddFace appends a triangle.
func (m *Mesh) AddFace(face [3]uint32) {
	m.faces = append(m.faces, face)
}

// SetFaces replaces all faces. The mesh takes ownership of faces.
func (m *Mesh) SetFaces(faces [][3]uint32) {
	m.faces = faces
}

// Faces returns the faces in order.
func (m *Mesh) Faces() [][3]uint32 {
	return m.faces
}

// NumFaces returns the number of faces.
func (m *Mesh) NumFaces() int {
	return len(m.faces)
}

// Validate checks the attributes and that every face index is below NumPoints.
func (m *Mesh) Validate() error {
	if err := m.PointCloud.Validate(); err != nil {
		return err
	}

	for i, f := range m.faces {
		for _, v := range f {
			if int(v) >= m.numPoints {
				return fmt.Errorf("%w: face %d references point %d of %d", errs.ErrInvalidGeometry, i, v, m.numPoints)
			}
		}
	}

	return nil
}
