package connectivity

import (
	"fmt"

	"github.com/arloliu/meshpack/errs"
	"github.com/arloliu/meshpack/format"
	"github.com/arloliu/meshpack/internal/entropy"
)

func encodeSequential(method format.EntropyMethod, faces [][3]uint32, numPoints int) (*Result, error) {
	deltas := make([]int64, 0, len(faces)*3)
	var prev int64
	for _, face := range faces {
		for _, v := range face {
			deltas = append(deltas, int64(v)-prev)
			prev = int64(v)
		}
	}

	payload, err := entropy.EncodeSigned(method, deltas)
	if err != nil {
		return nil, err
	}

	out := make([][3]uint32, len(faces))
	copy(out, faces)

	return &Result{Payload: payload, Faces: out, Order: identityOrder(numPoints)}, nil
}

func decodeSequential(payload []byte, numFaces, numPoints int) (*Result, error) {
	deltas, err := entropy.DecodeSigned(payload, numFaces*3)
	if err != nil {
		return nil, err
	}

	faces := make([][3]uint32, numFaces)
	var prev int64
	for i := range deltas {
		v := prev + deltas[i]
		if v < 0 || v >= int64(numPoints) {
			return nil, fmt.Errorf("%w: face %d index %d outside [0, %d)", errs.ErrConnectivityInconsistency, i/3, v, numPoints)
		}
		faces[i/3][i%3] = uint32(v) //nolint:gosec
		prev = v
	}

	return &Result{Faces: faces, Order: identityOrder(numPoints)}, nil
}
