package codec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/meshpack/errs"
	"github.com/arloliu/meshpack/format"
	"github.com/arloliu/meshpack/geometry"
	"github.com/arloliu/meshpack/internal/entropy"
	"github.com/arloliu/meshpack/internal/predict"
)

func TestOrderValues(t *testing.T) {
	attr, err := geometry.NewIntAttribute(format.AttrGeneric, format.DataInt32, 1, []int64{10, 20, 30, 40})
	require.NoError(t, err)
	attr.SetMapping([]uint32{2, 2, 0, 2, 0, 1})

	t.Run("identity point order", func(t *testing.T) {
		mapping, valueOrder := orderValues(attr, identityOrder(6))
		require.Equal(t, []uint32{0, 0, 1, 0, 1, 2}, mapping)
		require.Equal(t, []uint32{2, 0, 1, 3}, valueOrder, "unreferenced value 3 goes last")
		require.False(t, isIdentityMapping(mapping, len(valueOrder)))
	})

	t.Run("reordered points", func(t *testing.T) {
		mapping, valueOrder := orderValues(attr, []uint32{5, 4, 3, 2, 1, 0})
		require.Equal(t, []uint32{0, 1, 2, 1, 2, 2}, mapping)
		require.Equal(t, []uint32{1, 0, 2, 3}, valueOrder)
	})

	t.Run("identity", func(t *testing.T) {
		plain, err := geometry.NewIntAttribute(format.AttrGeneric, format.DataInt32, 1, []int64{1, 2, 3})
		require.NoError(t, err)

		mapping, valueOrder := orderValues(plain, identityOrder(3))
		require.True(t, isIdentityMapping(mapping, len(valueOrder)))
	})
}

func TestMappingSymbols_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		mapping []uint32
		values  int
		symbols []uint64
	}{
		{"all new", []uint32{0, 1, 2}, 3, []uint64{0, 0, 0}},
		{"repeats", []uint32{0, 0, 1, 0, 2, 1}, 3, []uint64{0, 1, 0, 2, 0, 2}},
		{"spare values", []uint32{0, 1, 1}, 5, []uint64{0, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			symbols := mappingSymbols(tt.mapping)
			require.Equal(t, tt.symbols, symbols)

			payload, err := entropy.EncodeSymbols(format.EntropyArithmetic, symbols)
			require.NoError(t, err)

			mapping, err := decodeMapping(payload, len(tt.mapping), tt.values)
			require.NoError(t, err)
			require.Equal(t, tt.mapping, mapping)
		})
	}
}

func TestDecodeMapping_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		symbols []uint64
		values  int
	}{
		{"reference before any value", []uint64{1}, 3},
		{"reference too far back", []uint64{0, 0, 3}, 3},
		{"more new values than declared", []uint64{0, 0, 0}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := entropy.EncodeSymbols(format.EntropyHuffman, tt.symbols)
			require.NoError(t, err)

			_, err = decodeMapping(payload, len(tt.symbols), tt.values)
			require.ErrorIs(t, err, errs.ErrAttributeMismatch)
		})
	}
}

func TestResolveBits(t *testing.T) {
	enc, err := NewEncoder(WithQuantization(format.AttrNormal, 9), WithQuantization(format.AttrColor, 6))
	require.NoError(t, err)

	normal, err := geometry.NewFloatAttribute(format.AttrNormal, 3, []float32{0, 0, 1})
	require.NoError(t, err)
	normal.QuantizationBits = 14

	bits, err := enc.resolveBits(normal)
	require.NoError(t, err)
	require.Equal(t, 9, bits, "option overrides the attribute")

	color, err := geometry.NewIntAttribute(format.AttrColor, format.DataUint8, 3, []int64{1, 2, 3})
	require.NoError(t, err)

	bits, err = enc.resolveBits(color)
	require.NoError(t, err)
	require.Zero(t, bits, "integer attributes ignore float overrides")
}

func TestPredictorCandidates(t *testing.T) {
	faces := [][3]uint32{{0, 1, 2}, {2, 1, 3}}

	types := func(t *testing.T, level int, faces [][3]uint32) []format.PredictorType {
		t.Helper()

		enc, err := NewEncoder(WithCompressionLevel(level))
		require.NoError(t, err)

		var out []format.PredictorType
		for _, p := range enc.predictorCandidates(format.AttrPosition, predictContext(faces)) {
			out = append(out, p.Type())
		}

		return out
	}

	require.Equal(t, []format.PredictorType{format.PredictorDifference}, types(t, 0, faces))
	require.Equal(t, []format.PredictorType{format.PredictorParallelogram}, types(t, 5, faces))
	require.Equal(t, []format.PredictorType{format.PredictorDifference}, types(t, 5, nil))
	require.Equal(t, []format.PredictorType{
		format.PredictorParallelogram, format.PredictorDifference, format.PredictorNone,
	}, types(t, 7, faces))
	require.Equal(t, []format.PredictorType{format.PredictorDifference, format.PredictorNone}, types(t, 10, nil))

	lone := [][3]uint32{{0, 1, 2}}
	require.Equal(t, []format.PredictorType{format.PredictorDifference}, types(t, 5, lone))
	require.Equal(t, []format.PredictorType{format.PredictorDifference, format.PredictorNone}, types(t, 10, lone))
}

func predictContext(faces [][3]uint32) predict.Context {
	return predict.Context{Components: 3, Faces: faces, NumValues: 4}
}
