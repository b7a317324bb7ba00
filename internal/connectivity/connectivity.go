// Package connectivity compresses triangle face lists.
//
// Two methods are supported, identified on the wire by
// format.ConnectivityMethod:
//
//   - Sequential stores the flattened face indices as zig-zagged deltas.
//     Point order and face order are kept as is.
//   - Traversal walks the mesh face by face across manifold edges and
//     stores one topology symbol per face plus point references. Points are
//     renumbered in order of first appearance and faces are stored in
//     traversal order.
//
// Encode returns the faces and point order exactly as Decode will rebuild
// them, so the caller can lay out attribute values in decode order.
package connectivity

import (
	"fmt"

	"github.com/arloliu/meshpack/errs"
	"github.com/arloliu/meshpack/format"
)

// Result is the outcome of encoding or decoding a face list.
type Result struct {
	// Payload is the encoded connectivity section (encode only).
	Payload []byte
	// Faces are the faces in decode order, using decoded point indices.
	Faces [][3]uint32
	// Order maps a decoded point index to the original point index,
	// order[new] = old. Decode always returns the identity.
	Order []uint32
}

// IsIdentityOrder reports whether the result keeps the original point order.
func (r *Result) IsIdentityOrder() bool {
	for i, old := range r.Order {
		if int(old) != i {
			return false
		}
	}

	return true
}

// Encode compresses faces over numPoints points.
//
// Parameters:
//   - method: connectivity method
//   - entropyMethod: entropy backend for every stream of the payload
//   - faces: triangles as point indices
//   - numPoints: number of points, every index must be below it
//
// Returns:
//   - *Result: payload, faces in decode order and the point order
//   - error: errs.ErrInvalidGeometry for out-of-range indices,
//     errs.ErrInvalidOption for an unknown method
func Encode(method format.ConnectivityMethod, entropyMethod format.EntropyMethod, faces [][3]uint32, numPoints int) (*Result, error) {
	for i, face := range faces {
		for _, v := range face {
			if int(v) >= numPoints {
				return nil, fmt.Errorf("%w: face %d references point %d of %d", errs.ErrInvalidGeometry, i, v, numPoints)
			}
		}
	}

	switch method {
	case format.ConnectivitySequential:
		return encodeSequential(entropyMethod, faces, numPoints)
	case format.ConnectivityTraversal:
		return encodeTraversal(entropyMethod, faces, numPoints)
	default:
		return nil, fmt.Errorf("%w: connectivity method %d", errs.ErrInvalidOption, method)
	}
}

// Decode rebuilds numFaces faces from payload.
//
// Every decoded index is below numPoints. Malformed payloads are reported as
// errs.ErrConnectivityInconsistency, errs.ErrEntropyTableCorrupt or
// errs.ErrTruncatedStream.
func Decode(method format.ConnectivityMethod, payload []byte, numFaces, numPoints int) (*Result, error) {
	if numFaces < 0 || numPoints < 0 {
		return nil, fmt.Errorf("%w: %d faces over %d points", errs.ErrConnectivityInconsistency, numFaces, numPoints)
	}

	switch method {
	case format.ConnectivitySequential:
		return decodeSequential(payload, numFaces, numPoints)
	case format.ConnectivityTraversal:
		return decodeTraversal(payload, numFaces, numPoints)
	default:
		return nil, fmt.Errorf("%w: unknown connectivity method %d", errs.ErrUnsupportedFormat, method)
	}
}

func identityOrder(n int) []uint32 {
	order := make([]uint32, n)
	for i := range order {
		order[i] = uint32(i) //nolint:gosec
	}

	return order
}
