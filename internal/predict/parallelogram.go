package predict

import "github.com/arloliu/meshpack/format"

// Parallelogram predicts a mesh vertex as a + b - c, completing the
// parallelogram spanned by a face (a, b, p) and its neighbor (a, b, c)
// across edge (a, b).
//
// For value p the first face in face order that contains p is used whose
// other vertices a and b precede p and whose edge (a, b) borders another face
// with a third vertex c that also precedes p. Without such a face the
// predictor falls back to Difference.
type Parallelogram struct {
	// triangles[p] holds (a, b, c) for p, or noTriangle.
	triangles [][3]uint32
	maxValue  int64
}

var noTriangle = [3]uint32{^uint32(0), ^uint32(0), ^uint32(0)}

// NewParallelogram precomputes the prediction triangle of every value.
//
// faces must use value indices; maxValue > 0 clamps predictions to
// [0, maxValue].
func NewParallelogram(faces [][3]uint32, numValues int, maxValue int64) *Parallelogram {
	triangles := make([][3]uint32, numValues)
	for i := range triangles {
		triangles[i] = noTriangle
	}

	edgeFaces := make(map[uint64][]int32, len(faces)*3/2)
	for f, face := range faces {
		for k := range 3 {
			u, v := face[k], face[(k+1)%3]
			if u == v {
				continue
			}
			key := edgeKey(u, v)
			edgeFaces[key] = append(edgeFaces[key], int32(f)) //nolint:gosec
		}
	}

	for f, face := range faces {
		for k := range 3 {
			p := face[k]
			if int(p) >= numValues || triangles[p] != noTriangle {
				continue
			}

			a, b := face[(k+1)%3], face[(k+2)%3]
			if a >= p || b >= p || a == b {
				continue
			}

			for _, g := range edgeFaces[edgeKey(a, b)] {
				if int(g) == f {
					continue
				}
				c := thirdVertex(faces[g], a, b)
				if c < p && c != a && c != b {
					triangles[p] = [3]uint32{a, b, c}
					break
				}
			}
		}
	}

	return &Parallelogram{triangles: triangles, maxValue: maxValue}
}

func (*Parallelogram) Type() format.PredictorType { return format.PredictorParallelogram }

func (p *Parallelogram) Predict(values []int64, index int, out []int64) {
	if index >= len(p.triangles) || p.triangles[index] == noTriangle {
		Difference{}.Predict(values, index, out)
		return
	}

	n := len(out)
	t := p.triangles[index]
	a, b, c := int(t[0])*n, int(t[1])*n, int(t[2])*n
	for i := range out {
		v := values[a+i] + values[b+i] - values[c+i]
		if p.maxValue > 0 {
			v = max(0, min(v, p.maxValue))
		}
		out[i] = v
	}
}

// Covered returns how many values have a parallelogram prediction.
func (p *Parallelogram) Covered() int {
	n := 0
	for _, t := range p.triangles {
		if t != noTriangle {
			n++
		}
	}

	return n
}

func edgeKey(u, v uint32) uint64 {
	if u > v {
		u, v = v, u
	}

	return uint64(u)<<32 | uint64(v)
}

// thirdVertex returns the vertex of face that is neither a nor b, or a when
// there is none.
func thirdVertex(face [3]uint32, a, b uint32) uint32 {
	for _, v := range face {
		if v != a && v != b {
			return v
		}
	}

	return a
}
