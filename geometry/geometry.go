package geometry

import (
	"fmt"

	"github.com/arloliu/meshpack/errs"
	"github.com/arloliu/meshpack/format"
)

// Geometry is either a point cloud or a mesh, tagged by Kind.
//
// Exactly one of PointCloud and Mesh is set, matching Kind.
type Geometry struct {
	Kind       format.GeometryKind
	PointCloud *PointCloud
	Mesh       *Mesh
}

// FromPointCloud wraps a point cloud.
func FromPointCloud(pc *PointCloud) Geometry {
	return Geometry{Kind: format.KindPointCloud, PointCloud: pc}
}

// FromMesh wraps a mesh.
func FromMesh(m *Mesh) Geometry {
	return Geometry{Kind: format.KindMesh, Mesh: m}
}

// Points returns the point data of either variant, or nil.
func (g Geometry) Points() *PointCloud {
	switch g.Kind {
	case format.KindPointCloud:
		return g.PointCloud
	case format.KindMesh:
		if g.Mesh == nil {
			return nil
		}

		return &g.Mesh.PointCloud
	default:
		return nil
	}
}

// Validate checks that the variant matches Kind and is well formed.
func (g Geometry) Validate() error {
	switch g.Kind {
	case format.KindPointCloud:
		if g.PointCloud == nil || g.Mesh != nil {
			return fmt.Errorf("%w: point cloud geometry without point cloud", errs.ErrInvalidGeometry)
		}

		return g.PointCloud.Validate()
	case format.KindMesh:
		if g.Mesh == nil || g.PointCloud != nil {
			return fmt.Errorf("%w: mesh geometry without mesh", errs.ErrInvalidGeometry)
		}

		return g.Mesh.Validate()
	default:
		return fmt.Errorf("%w: geometry kind %d", errs.ErrInvalidGeometry, g.Kind)
	}
}
