package connectivity

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/arloliu/meshpack/errs"
	"github.com/arloliu/meshpack/format"
	"github.com/arloliu/meshpack/internal/bitio"
	"github.com/arloliu/meshpack/internal/entropy"
	"github.com/stretchr/testify/require"
)

var (
	methods        = []format.ConnectivityMethod{format.ConnectivitySequential, format.ConnectivityTraversal}
	entropyMethods = []format.EntropyMethod{format.EntropyArithmetic, format.EntropyHuffman, format.EntropyFSE}
)

func cubeFaces() [][3]uint32 {
	return [][3]uint32{
		{0, 2, 1}, {0, 3, 2}, // bottom
		{4, 5, 6}, {4, 6, 7}, // top
		{0, 1, 5}, {0, 5, 4}, // front
		{3, 7, 6}, {3, 6, 2}, // back
		{0, 4, 7}, {0, 7, 3}, // left
		{1, 2, 6}, {1, 6, 5}, // right
	}
}

func gridFaces(n int) [][3]uint32 {
	var faces [][3]uint32
	for y := 0; y < n-1; y++ {
		for x := 0; x < n-1; x++ {
			v := uint32(y*n + x) //nolint:gosec
			w := uint32(n)       //nolint:gosec
			faces = append(faces, [3]uint32{v, v + 1, v + w}, [3]uint32{v + 1, v + w + 1, v + w})
		}
	}

	return faces
}

type meshCase struct {
	name      string
	faces     [][3]uint32
	numPoints int
}

func meshCases() []meshCase {
	octa := [][3]uint32{{0, 2, 4}, {2, 1, 4}, {1, 3, 4}, {3, 0, 4}, {2, 0, 5}, {1, 2, 5}, {3, 1, 5}, {0, 3, 5}}

	flipped := gridFaces(5)
	for i := 0; i < len(flipped); i += 3 {
		flipped[i][1], flipped[i][2] = flipped[i][2], flipped[i][1]
	}

	rng := rand.New(rand.NewSource(9))
	soup := make([][3]uint32, 60)
	for i := range soup {
		for k := range 3 {
			soup[i][k] = uint32(rng.Intn(20)) //nolint:gosec
		}
	}

	return []meshCase{
		{"empty", nil, 4},
		{"single triangle", [][3]uint32{{0, 1, 2}}, 3},
		{"cube", cubeFaces(), 8},
		{"grid", gridFaces(12), 144},
		{"octahedron", octa, 6},
		{"two components", append(slices.Clone(octa), [3]uint32{6, 7, 8}, [3]uint32{8, 7, 9}), 10},
		{"non-manifold fan", [][3]uint32{{0, 1, 2}, {1, 0, 3}, {0, 1, 4}}, 5},
		{"degenerate faces", [][3]uint32{{0, 0, 1}, {0, 1, 2}, {2, 2, 2}, {2, 1, 3}}, 4},
		{"duplicate faces", [][3]uint32{{0, 1, 2}, {0, 1, 2}, {0, 2, 1}}, 3},
		{"isolated points", [][3]uint32{{5, 3, 1}, {1, 3, 0}}, 9},
		{"flipped orientation", flipped, 25},
		{"soup", soup, 20},
	}
}

// canonical maps faces through order and rotates each so the smallest
// rotation comes first, then sorts the list.
func canonical(faces [][3]uint32, order []uint32) [][3]uint32 {
	out := make([][3]uint32, len(faces))
	for i, f := range faces {
		if order != nil {
			f = [3]uint32{order[f[0]], order[f[1]], order[f[2]]}
		}
		best := f
		for _, r := range [][3]uint32{{f[1], f[2], f[0]}, {f[2], f[0], f[1]}} {
			if slices.Compare(r[:], best[:]) < 0 {
				best = r
			}
		}
		out[i] = best
	}
	slices.SortFunc(out, func(a, b [3]uint32) int { return slices.Compare(a[:], b[:]) })

	return out
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	for _, tc := range meshCases() {
		for _, method := range methods {
			for _, em := range entropyMethods {
				t.Run(tc.name+"/"+method.String()+"/"+em.String(), func(t *testing.T) {
					res, err := Encode(method, em, tc.faces, tc.numPoints)
					require.NoError(t, err)
					require.Len(t, res.Faces, len(tc.faces))
					require.Len(t, res.Order, tc.numPoints)

					perm := slices.Clone(res.Order)
					slices.Sort(perm)
					for i, v := range perm {
						require.Equal(t, uint32(i), v) //nolint:gosec
					}

					require.Equal(t, canonical(tc.faces, nil), canonical(res.Faces, res.Order))

					dec, err := Decode(method, res.Payload, len(tc.faces), tc.numPoints)
					require.NoError(t, err)
					require.Equal(t, len(res.Faces), len(dec.Faces))
					if len(res.Faces) > 0 {
						require.Equal(t, res.Faces, dec.Faces)
					}
					require.True(t, dec.IsIdentityOrder())

					for _, f := range dec.Faces {
						for _, v := range f {
							require.Less(t, int(v), tc.numPoints)
						}
					}
				})
			}
		}
	}
}

func TestEncode_Idempotent(t *testing.T) {
	for _, tc := range meshCases() {
		for _, method := range methods {
			t.Run(tc.name+"/"+method.String(), func(t *testing.T) {
				first, err := Encode(method, format.EntropyArithmetic, tc.faces, tc.numPoints)
				require.NoError(t, err)
				dec, err := Decode(method, first.Payload, len(tc.faces), tc.numPoints)
				require.NoError(t, err)

				second, err := Encode(method, format.EntropyArithmetic, dec.Faces, tc.numPoints)
				require.NoError(t, err)
				require.True(t, second.IsIdentityOrder())
				require.Equal(t, first.Payload, second.Payload)

				again, err := Decode(method, second.Payload, len(tc.faces), tc.numPoints)
				require.NoError(t, err)
				require.Equal(t, dec.Faces, again.Faces)
			})
		}
	}
}

func TestTraversal_Cube(t *testing.T) {
	res, err := Encode(format.ConnectivityTraversal, format.EntropyArithmetic, cubeFaces(), 8)
	require.NoError(t, err)

	require.Equal(t, [][3]uint32{
		{0, 1, 2}, {0, 2, 3}, {0, 3, 4}, {0, 4, 5}, {0, 5, 6}, {0, 6, 1},
		{1, 6, 7}, {1, 7, 2}, {2, 7, 3}, {3, 7, 4}, {4, 7, 5}, {5, 7, 6},
	}, res.Faces)
	require.Equal(t, []uint32{0, 2, 1, 5, 4, 7, 3, 6}, res.Order)

	r := bitio.NewReader(res.Payload)
	refCount, err := r.ReadUvarint()
	require.NoError(t, err)
	seedCount, err := r.ReadUvarint()
	require.NoError(t, err)
	require.Equal(t, uint64(9), refCount)
	require.Equal(t, uint64(1), seedCount)

	topoData, err := r.ReadSection()
	require.NoError(t, err)
	topology, err := entropy.DecodeSymbols(topoData, 12)
	require.NoError(t, err)
	require.Equal(t, []uint64{symS, symC, symC, symC, symC, symR, symC, symR, symR, symR, symR, symE}, topology)
}

func TestTraversal_SmallerThanSequentialOnGrid(t *testing.T) {
	faces := gridFaces(40)
	seq, err := Encode(format.ConnectivitySequential, format.EntropyArithmetic, faces, 1600)
	require.NoError(t, err)
	trav, err := Encode(format.ConnectivityTraversal, format.EntropyArithmetic, faces, 1600)
	require.NoError(t, err)

	require.Less(t, len(trav.Payload), len(seq.Payload))
}

func TestEncode_Invalid(t *testing.T) {
	_, err := Encode(format.ConnectivityTraversal, format.EntropyArithmetic, [][3]uint32{{0, 1, 3}}, 3)
	require.ErrorIs(t, err, errs.ErrInvalidGeometry)

	_, err = Encode(format.ConnectivityMethod(7), format.EntropyArithmetic, [][3]uint32{{0, 1, 2}}, 3)
	require.ErrorIs(t, err, errs.ErrInvalidOption)

	_, err = Decode(format.ConnectivityMethod(7), nil, 1, 3)
	require.ErrorIs(t, err, errs.ErrUnsupportedFormat)
}

func TestDecode_Truncated(t *testing.T) {
	for _, method := range methods {
		res, err := Encode(method, format.EntropyArithmetic, cubeFaces(), 8)
		require.NoError(t, err)

		for cut := 0; cut < len(res.Payload); cut++ {
			_, err := Decode(method, res.Payload[:cut], 12, 8)
			require.Error(t, err, "%s cut at %d", method, cut)
		}
	}
}

func TestDecode_TooFewPoints(t *testing.T) {
	for _, method := range methods {
		res, err := Encode(method, format.EntropyArithmetic, cubeFaces(), 8)
		require.NoError(t, err)

		_, err = Decode(method, res.Payload, 12, 7)
		require.ErrorIs(t, err, errs.ErrConnectivityInconsistency, method.String())
	}
}

func traversalPayload(t *testing.T, topology, refs, seeds []uint64) []byte {
	t.Helper()

	w := bitio.NewWriter()
	w.WriteUvarint(uint64(len(refs)))
	w.WriteUvarint(uint64(len(seeds)))
	for _, stream := range [][]uint64{topology, refs, seeds} {
		data, err := entropy.EncodeSymbols(format.EntropyArithmetic, stream)
		require.NoError(t, err)
		w.WriteSection(data)
	}

	return w.Finish()
}

func TestTraversal_DecodeHandcrafted(t *testing.T) {
	t.Run("single seed", func(t *testing.T) {
		res, err := Decode(format.ConnectivityTraversal, traversalPayload(t, []uint64{symE}, []uint64{0, 0, 0}, []uint64{0}), 1, 3)
		require.NoError(t, err)
		require.Equal(t, [][3]uint32{{0, 1, 2}}, res.Faces)
	})

	t.Run("two faces through a gate", func(t *testing.T) {
		payload := traversalPayload(t, []uint64{symR, symE}, []uint64{0, 0, 0, 0}, []uint64{0})
		res, err := Decode(format.ConnectivityTraversal, payload, 2, 4)
		require.NoError(t, err)
		require.Equal(t, [][3]uint32{{0, 1, 2}, {2, 1, 3}}, res.Faces)
	})

	tests := []struct {
		name      string
		topology  []uint64
		refs      []uint64
		seeds     []uint64
		numFaces  int
		numPoints int
	}{
		{"seed with C", []uint64{symC}, []uint64{0, 0, 0}, []uint64{0}, 1, 3},
		{"candidate reference in seed", []uint64{symE}, []uint64{0, refRight, 0}, []uint64{0}, 1, 3},
		{"explicit reference beyond points", []uint64{symE}, []uint64{0, refExplicit + 1, 0}, []uint64{0}, 1, 3},
		{"too many points", []uint64{symE}, []uint64{0, 0, 0}, []uint64{0}, 1, 2},
		{"gate left open", []uint64{symE}, []uint64{0, 0, 0}, []uint64{1}, 1, 3},
		{"references exhausted", []uint64{symE, symE}, []uint64{0, 0, 0}, []uint64{0, 0}, 2, 6},
		{"seeds exhausted", []uint64{symE, symE}, []uint64{0, 0, 0, 0, 0, 0}, []uint64{0}, 2, 6},
		{"unused references", []uint64{symE}, []uint64{0, 0, 0, 0}, []uint64{0}, 1, 4},
		{"unknown symbol", []uint64{numSymbols}, []uint64{0, 0, 0}, []uint64{0}, 1, 3},
		{"bad seed flag", []uint64{symE}, []uint64{0, 0, 0}, []uint64{2}, 1, 3},
		{"degenerate gate", []uint64{symS}, []uint64{0, refExplicit, 0}, []uint64{0}, 1, 3},
		{"face collapses onto gate", []uint64{symR, symE}, []uint64{0, 0, 0, refExplicit}, []uint64{0}, 2, 4},
		{"candidate without gate", []uint64{symR, symE}, []uint64{0, 0, 0, refLeft}, []uint64{0}, 2, 4},
		{"counts exceed faces", []uint64{symE}, []uint64{0, 0, 0, 0}, []uint64{0, 0}, 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := traversalPayload(t, tt.topology, tt.refs, tt.seeds)
			_, err := Decode(format.ConnectivityTraversal, payload, tt.numFaces, tt.numPoints)
			require.ErrorIs(t, err, errs.ErrConnectivityInconsistency)
		})
	}
}

func TestSequential_DecodeOutOfRange(t *testing.T) {
	payload, err := entropy.EncodeSigned(format.EntropyArithmetic, []int64{0, 1, 5})
	require.NoError(t, err)

	_, err = Decode(format.ConnectivitySequential, payload, 1, 5)
	require.ErrorIs(t, err, errs.ErrConnectivityInconsistency)

	payload, err = entropy.EncodeSigned(format.EntropyArithmetic, []int64{0, -1, 2})
	require.NoError(t, err)

	_, err = Decode(format.ConnectivitySequential, payload, 1, 5)
	require.ErrorIs(t, err, errs.ErrConnectivityInconsistency)
}
