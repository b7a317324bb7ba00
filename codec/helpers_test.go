package codec

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/meshpack/format"
	"github.com/arloliu/meshpack/geometry"
	"github.com/arloliu/meshpack/internal/quantize"
)

var cubeCorners = []float32{
	0, 0, 0,
	1, 0, 0,
	1, 1, 0,
	0, 1, 0,
	0, 0, 1,
	1, 0, 1,
	1, 1, 1,
	0, 1, 1,
}

var cubeFaces = [][3]uint32{
	{0, 2, 1}, {0, 3, 2},
	{4, 5, 6}, {4, 6, 7},
	{0, 1, 5}, {0, 5, 4},
	{1, 2, 6}, {1, 6, 5},
	{2, 3, 7}, {2, 7, 6},
	{3, 0, 4}, {3, 4, 7},
}

func cubeMesh(t *testing.T, bits int) *geometry.Mesh {
	t.Helper()

	m := geometry.NewMesh(8)
	m.SetFaces(cubeFaces)
	pos, err := geometry.NewFloatAttribute(format.AttrPosition, 3, cubeCorners)
	require.NoError(t, err)
	pos.QuantizationBits = bits
	m.AddAttribute(pos)

	return m
}

// gridMesh builds an n×n vertex height field with float positions, float
// normals, integer colors and texture coordinates.
func gridMesh(t *testing.T, n int) *geometry.Mesh {
	t.Helper()

	numPoints := n * n
	m := geometry.NewMesh(numPoints)
	for y := range n - 1 {
		for x := range n - 1 {
			v := uint32(y*n + x) //nolint:gosec
			w := uint32(n)       //nolint:gosec
			m.AddFace([3]uint32{v, v + 1, v + w})
			m.AddFace([3]uint32{v + 1, v + w + 1, v + w})
		}
	}

	positions := make([]float32, 0, numPoints*3)
	normals := make([]float32, 0, numPoints*3)
	colors := make([]int64, 0, numPoints*4)
	uvs := make([]float32, 0, numPoints*2)
	for y := range n {
		for x := range n {
			z := float32(math.Sin(float64(x)*0.3) * math.Cos(float64(y)*0.2))
			positions = append(positions, float32(x), float32(y), z)

			nx, ny := float32(-0.3*math.Cos(float64(x)*0.3)), float32(0.2*math.Sin(float64(y)*0.2))
			l := float32(math.Sqrt(float64(nx*nx + ny*ny + 1)))
			normals = append(normals, nx/l, ny/l, 1/l)

			colors = append(colors, int64(x*255/n), int64(y*255/n), 128, 255)
			uvs = append(uvs, float32(x)/float32(n-1), float32(y)/float32(n-1))
		}
	}

	pos, err := geometry.NewFloatAttribute(format.AttrPosition, 3, positions)
	require.NoError(t, err)
	pos.QuantizationBits = 16
	m.AddAttribute(pos)

	nrm, err := geometry.NewFloatAttribute(format.AttrNormal, 3, normals)
	require.NoError(t, err)
	nrm.QuantizationBits = 12
	m.AddAttribute(nrm)

	col, err := geometry.NewIntAttribute(format.AttrColor, format.DataUint8, 4, colors)
	require.NoError(t, err)
	m.AddAttribute(col)

	uv, err := geometry.NewFloatAttribute(format.AttrTexCoord, 2, uvs)
	require.NoError(t, err)
	m.AddAttribute(uv)

	return m
}

// scatterCloud builds a point cloud with lossless float positions and a
// shared palette of int16 labels.
func scatterCloud(t *testing.T, numPoints int) *geometry.PointCloud {
	t.Helper()

	pc := geometry.NewPointCloud(numPoints)
	positions := make([]float32, 0, numPoints*3)
	for i := range numPoints {
		f := float64(i)
		positions = append(positions, float32(f*0.5), float32(math.Sin(f)*10), float32(i%7))
	}

	pos, err := geometry.NewFloatAttribute(format.AttrPosition, 3, positions)
	require.NoError(t, err)
	pc.AddAttribute(pos)

	labels, err := geometry.NewIntAttribute(format.AttrGeneric, format.DataInt16, 1, []int64{-300, 0, 7, 12000, 5})
	require.NoError(t, err)
	mapping := make([]uint32, numPoints)
	for i := range mapping {
		mapping[i] = uint32((i * 7) % 4) //nolint:gosec
	}
	labels.SetMapping(mapping)
	pc.AddAttribute(labels)

	return pc
}

// pointPermutation matches every decoded point to the original point with
// the nearest position, returning perm[decoded] = original.
func pointPermutation(t *testing.T, orig, dec *geometry.PointCloud) []int {
	t.Helper()

	op := orig.NamedAttribute(format.AttrPosition)
	dp := dec.NamedAttribute(format.AttrPosition)
	require.NotNil(t, op)
	require.NotNil(t, dp)

	perm := make([]int, dec.NumPoints())
	used := make([]bool, orig.NumPoints())
	for i := range perm {
		best, bestDist := -1, math.Inf(1)
		d := dp.Float32Value(i)
		for j := range orig.NumPoints() {
			o := op.Float32Value(j)
			dist := 0.0
			for k := range o {
				diff := float64(o[k]) - float64(d[k])
				dist += diff * diff
			}
			if dist < bestDist {
				best, bestDist = j, dist
			}
		}
		require.False(t, used[best], "decoded point %d matches original %d twice", i, best)
		used[best] = true
		perm[i] = best
	}

	return perm
}

// tolerance is the largest error a decoded component of attr may show.
func tolerance(t *testing.T, attr *geometry.Attribute, bits int) float64 {
	t.Helper()

	if bits == 0 {
		return 0
	}

	_, rng, err := quantize.Bounds(attr.Float32Values(), attr.Components)
	require.NoError(t, err)

	return float64(rng)/float64(int64(1)<<bits) + 1e-6
}

// requireEquivalent checks that dec holds the geometry of orig up to point
// renumbering, face reordering and corner rotation. bits gives the
// quantization depth used for each attribute.
func requireEquivalent(t *testing.T, orig, dec geometry.Geometry, bits []int) {
	t.Helper()

	require.Equal(t, orig.Kind, dec.Kind)
	op, dp := orig.Points(), dec.Points()
	require.Equal(t, op.NumPoints(), dp.NumPoints())
	require.Equal(t, op.NumAttributes(), dp.NumAttributes())

	perm := pointPermutation(t, op, dp)

	if orig.Kind == format.KindMesh {
		require.Equal(t, orig.Mesh.NumFaces(), dec.Mesh.NumFaces())
		remapped := make([][3]uint32, 0, dec.Mesh.NumFaces())
		for _, f := range dec.Mesh.Faces() {
			remapped = append(remapped, [3]uint32{uint32(perm[f[0]]), uint32(perm[f[1]]), uint32(perm[f[2]])}) //nolint:gosec
		}
		require.Equal(t, canonicalFaces(orig.Mesh.Faces()), canonicalFaces(remapped))
	}

	for j, oa := range op.Attributes() {
		da := dp.Attribute(j)
		require.Equal(t, oa.Type, da.Type)
		require.Equal(t, oa.DataType, da.DataType)
		require.Equal(t, oa.Components, da.Components)

		if !oa.DataType.IsFloat() {
			for i := range dp.NumPoints() {
				require.Equal(t, oa.Int64Value(perm[i]), da.Int64Value(i), "attribute %d point %d", j, i)
			}

			continue
		}

		tol := tolerance(t, oa, bits[j])
		for i := range dp.NumPoints() {
			want, got := oa.Float32Value(perm[i]), da.Float32Value(i)
			if tol == 0 {
				requireSameBits(t, want, got)
				continue
			}
			for k := range want {
				require.InDelta(t, want[k], got[k], tol, "attribute %d point %d component %d", j, i, k)
			}
		}
	}
}

func requireSameBits(t *testing.T, want, got []float32) {
	t.Helper()

	require.Len(t, got, len(want))
	for k := range want {
		require.Equal(t, math.Float32bits(want[k]), math.Float32bits(got[k]))
	}
}

// canonicalFaces rotates each face so its smallest index comes first,
// keeping orientation, and sorts the list.
func canonicalFaces(faces [][3]uint32) [][3]uint32 {
	out := make([][3]uint32, len(faces))
	for i, f := range faces {
		r := 0
		if f[1] < f[r] {
			r = 1
		}
		if f[2] < f[r] {
			r = 2
		}
		out[i] = [3]uint32{f[r], f[(r+1)%3], f[(r+2)%3]}
	}

	slices.SortFunc(out, func(a, b [3]uint32) int {
		for k := range a {
			if a[k] != b[k] {
				if a[k] < b[k] {
					return -1
				}

				return 1
			}
		}

		return 0
	})

	return out
}

func encode(t *testing.T, g geometry.Geometry, opts ...EncodeOption) []byte {
	t.Helper()

	enc, err := NewEncoder(opts...)
	require.NoError(t, err)
	data, err := enc.Encode(g)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	return data
}

func decode(t *testing.T, data []byte, opts ...DecodeOption) geometry.Geometry {
	t.Helper()

	dec, err := NewDecoder(opts...)
	require.NoError(t, err)
	g, err := dec.Decode(data)
	require.NoError(t, err)

	return g
}
