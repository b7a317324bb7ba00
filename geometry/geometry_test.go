package geometry

import (
	"math"
	"testing"

	"github.com/arloliu/meshpack/errs"
	"github.com/arloliu/meshpack/format"
	"github.com/stretchr/testify/require"
)

func TestNewFloatAttribute(t *testing.T) {
	values := []float32{1, 2, 3, 4, 5, 6}
	a, err := NewFloatAttribute(format.AttrPosition, 3, values)
	require.NoError(t, err)
	require.Equal(t, 2, a.NumValues())
	require.Equal(t, format.DataFloat32, a.DataType)
	require.Nil(t, a.Int64Values())
	require.Equal(t, []float32{4, 5, 6}, a.Float32Value(1))

	values[0] = 100
	require.Equal(t, float32(1), a.Float32Values()[0], "values are copied")

	_, err = NewFloatAttribute(format.AttrPosition, 4, values)
	require.ErrorIs(t, err, errs.ErrInvalidGeometry)

	_, err = NewFloatAttribute(format.AttrPosition, 0, nil)
	require.ErrorIs(t, err, errs.ErrInvalidGeometry)

	_, err = NewFloatAttribute(format.AttrPosition, MaxComponents+1, nil)
	require.ErrorIs(t, err, errs.ErrInvalidGeometry)
}

func TestNewIntAttribute(t *testing.T) {
	tests := []struct {
		name   string
		dt     format.DataType
		values []int64
		ok     bool
	}{
		{"uint8 in range", format.DataUint8, []int64{0, 255}, true},
		{"uint8 overflow", format.DataUint8, []int64{256, 0}, false},
		{"int8 underflow", format.DataInt8, []int64{-129, 0}, false},
		{"int16 bounds", format.DataInt16, []int64{math.MinInt16, math.MaxInt16}, true},
		{"uint32 max", format.DataUint32, []int64{math.MaxUint32, 0}, true},
		{"uint32 negative", format.DataUint32, []int64{-1, 0}, false},
		{"int32 overflow", format.DataInt32, []int64{math.MaxInt32 + 1, 0}, false},
		{"float data type", format.DataFloat32, []int64{0, 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewIntAttribute(format.AttrGeneric, tt.dt, 2, tt.values)
			if !tt.ok {
				require.ErrorIs(t, err, errs.ErrInvalidGeometry)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.values, a.Int64Value(0))
			require.Nil(t, a.Float32Values())
		})
	}
}

func TestAttribute_SetValuesTypeChecks(t *testing.T) {
	f, err := NewFloatAttribute(format.AttrNormal, 1, []float32{1})
	require.NoError(t, err)
	require.ErrorIs(t, f.SetInt64Values([]int64{1}), errs.ErrInvalidGeometry)
	require.NoError(t, f.SetFloat32Values([]float32{2, 3}))
	require.Equal(t, 2, f.NumValues())

	i, err := NewIntAttribute(format.AttrColor, format.DataUint8, 1, []int64{1})
	require.NoError(t, err)
	require.ErrorIs(t, i.SetFloat32Values([]float32{1}), errs.ErrInvalidGeometry)
}

func TestAttribute_Mapping(t *testing.T) {
	a, err := NewFloatAttribute(format.AttrNormal, 1, []float32{10, 20})
	require.NoError(t, err)
	require.True(t, a.IsIdentityMapping())
	require.NoError(t, a.Validate(2))
	require.ErrorIs(t, a.Validate(3), errs.ErrInvalidGeometry)

	a.SetMapping([]uint32{1, 1, 0})
	require.False(t, a.IsIdentityMapping())
	require.Equal(t, 1, a.MappedIndex(0))
	require.Equal(t, []float32{10}, a.Float32Value(2))
	require.NoError(t, a.Validate(3))
	require.ErrorIs(t, a.Validate(2), errs.ErrInvalidGeometry)

	a.SetMapping([]uint32{0, 2, 0})
	require.ErrorIs(t, a.Validate(3), errs.ErrInvalidGeometry)

	a.SetMapping([]uint32{0, 1})
	require.True(t, a.IsIdentityMapping())

	a.SetIdentityMapping()
	require.Nil(t, a.Mapping())
}

func TestAttribute_Deduplicate(t *testing.T) {
	t.Run("float", func(t *testing.T) {
		negZero := float32(math.Copysign(0, -1))
		a, err := NewFloatAttribute(format.AttrNormal, 2, []float32{
			0, 1,
			1, 0,
			0, 1,
			negZero, 1,
			1, 0,
		})
		require.NoError(t, err)

		a.Deduplicate()
		require.Equal(t, 3, a.NumValues())
		require.Equal(t, []uint32{0, 1, 0, 2, 1}, a.Mapping())
		require.NoError(t, a.Validate(5))
		require.Equal(t, []float32{1, 0}, a.Float32Value(4))
	})

	t.Run("int with mapping", func(t *testing.T) {
		a, err := NewIntAttribute(format.AttrColor, format.DataUint8, 1, []int64{7, 7, 9})
		require.NoError(t, err)
		a.SetMapping([]uint32{2, 1, 0, 2})

		a.Deduplicate()
		require.Equal(t, []int64{7, 9}, a.Int64Values())
		require.Equal(t, []uint32{1, 0, 0, 1}, a.Mapping())
	})
}

func TestAttribute_Clone(t *testing.T) {
	a, err := NewFloatAttribute(format.AttrPosition, 1, []float32{1, 2})
	require.NoError(t, err)
	a.SetMapping([]uint32{1, 0})

	b := a.Clone()
	b.Float32Values()[0] = 9
	b.Mapping()[0] = 0
	require.Equal(t, float32(1), a.Float32Values()[0])
	require.Equal(t, uint32(1), a.Mapping()[0])
}

func TestPointCloud(t *testing.T) {
	pc := NewPointCloud(2)
	pos, err := NewFloatAttribute(format.AttrPosition, 3, []float32{0, 0, 0, 1, 1, 1})
	require.NoError(t, err)
	col, err := NewIntAttribute(format.AttrColor, format.DataUint8, 3, []int64{255, 0, 0, 0, 255, 0})
	require.NoError(t, err)

	require.Equal(t, 0, pc.AddAttribute(pos))
	require.Equal(t, 1, pc.AddAttribute(col))
	require.Equal(t, 2, pc.NumAttributes())
	require.Same(t, col, pc.Attribute(1))
	require.Same(t, col, pc.NamedAttribute(format.AttrColor))
	require.Nil(t, pc.NamedAttribute(format.AttrTexCoord))
	require.NoError(t, pc.Validate())

	pc.SetNumPoints(3)
	require.ErrorIs(t, pc.Validate(), errs.ErrInvalidGeometry)

	pc.SetNumPoints(-1)
	require.ErrorIs(t, pc.Validate(), errs.ErrInvalidGeometry)
}

func TestMesh(t *testing.T) {
	m := NewMesh(3)
	m.AddFace([3]uint32{0, 1, 2})
	require.Equal(t, 1, m.NumFaces())
	require.NoError(t, m.Validate())

	m.AddFace([3]uint32{0, 1, 3})
	require.ErrorIs(t, m.Validate(), errs.ErrInvalidGeometry)

	m.SetFaces(nil)
	require.Zero(t, m.NumFaces())
}

func TestGeometry(t *testing.T) {
	pc := NewPointCloud(1)
	g := FromPointCloud(pc)
	require.Equal(t, format.KindPointCloud, g.Kind)
	require.Same(t, pc, g.Points())
	require.NoError(t, g.Validate())

	m := NewMesh(3)
	g = FromMesh(m)
	require.Equal(t, format.KindMesh, g.Kind)
	require.Same(t, &m.PointCloud, g.Points())
	require.NoError(t, g.Validate())

	require.ErrorIs(t, Geometry{Kind: format.KindMesh}.Validate(), errs.ErrInvalidGeometry)
	require.ErrorIs(t, Geometry{Kind: format.KindPointCloud, Mesh: m}.Validate(), errs.ErrInvalidGeometry)
	require.ErrorIs(t, Geometry{Kind: 7}.Validate(), errs.ErrInvalidGeometry)
	require.Nil(t, Geometry{Kind: 7}.Points())
}
