// Package format defines the enumerations stored on the wire.
//
// Every enum is a single byte in the bitstream; the numeric values are part
// of the format and must never be renumbered.
package format

type (
	GeometryKind       uint8
	AttributeType      uint8
	DataType           uint8
	PredictorType      uint8
	ConnectivityMethod uint8
	EntropyMethod      uint8
	CompressionType    uint8
	MappingMode        uint8
)

const (
	KindPointCloud GeometryKind = 0x0 // KindPointCloud represents a bare point cloud.
	KindMesh       GeometryKind = 0x1 // KindMesh represents a triangle mesh.
)

const (
	AttrPosition AttributeType = 0x0 // AttrPosition represents vertex positions.
	AttrNormal   AttributeType = 0x1 // AttrNormal represents vertex normals.
	AttrColor    AttributeType = 0x2 // AttrColor represents vertex colors.
	AttrTexCoord AttributeType = 0x3 // AttrTexCoord represents texture coordinates.
	AttrGeneric  AttributeType = 0x4 // AttrGeneric represents any other per-point data.
)

const (
	DataInt8    DataType = 0x1
	DataUint8   DataType = 0x2
	DataInt16   DataType = 0x3
	DataUint16  DataType = 0x4
	DataInt32   DataType = 0x5
	DataUint32  DataType = 0x6
	DataFloat32 DataType = 0x7
)

const (
	PredictorNone          PredictorType = 0x0 // PredictorNone predicts zero for every value.
	PredictorDifference    PredictorType = 0x1 // PredictorDifference predicts the previous value.
	PredictorParallelogram PredictorType = 0x2 // PredictorParallelogram completes the opposite triangle.
)

const (
	ConnectivitySequential ConnectivityMethod = 0x0 // ConnectivitySequential stores index deltas.
	ConnectivityTraversal  ConnectivityMethod = 0x1 // ConnectivityTraversal stores a CLERS traversal.
)

const (
	EntropyArithmetic EntropyMethod = 0x1 // EntropyArithmetic is a static order-0 arithmetic coder.
	EntropyHuffman    EntropyMethod = 0x2 // EntropyHuffman uses huff0 over token bytes.
	EntropyFSE        EntropyMethod = 0x3 // EntropyFSE uses finite state entropy over token bytes.
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

const (
	MappingIdentity MappingMode = 0x0 // MappingIdentity means point i uses value i.
	MappingExplicit MappingMode = 0x1 // MappingExplicit means a mapping stream follows.
)

func (k GeometryKind) String() string {
	switch k {
	case KindPointCloud:
		return "PointCloud"
	case KindMesh:
		return "Mesh"
	default:
		return "Unknown"
	}
}

// IsValid reports whether k is a known geometry kind.
func (k GeometryKind) IsValid() bool {
	return k == KindPointCloud || k == KindMesh
}

func (a AttributeType) String() string {
	switch a {
	case AttrPosition:
		return "Position"
	case AttrNormal:
		return "Normal"
	case AttrColor:
		return "Color"
	case AttrTexCoord:
		return "TexCoord"
	case AttrGeneric:
		return "Generic"
	default:
		return "Unknown"
	}
}

// IsValid reports whether a is a known attribute type.
func (a AttributeType) IsValid() bool {
	return a <= AttrGeneric
}

func (d DataType) String() string {
	switch d {
	case DataInt8:
		return "Int8"
	case DataUint8:
		return "Uint8"
	case DataInt16:
		return "Int16"
	case DataUint16:
		return "Uint16"
	case DataInt32:
		return "Int32"
	case DataUint32:
		return "Uint32"
	case DataFloat32:
		return "Float32"
	default:
		return "Unknown"
	}
}

// IsValid reports whether d is a known data type.
func (d DataType) IsValid() bool {
	return d >= DataInt8 && d <= DataFloat32
}

// IsFloat reports whether d stores floating point values.
func (d DataType) IsFloat() bool {
	return d == DataFloat32
}

// IntRange returns the inclusive value range of an integer data type.
// For DataFloat32 it returns the range of the IEEE bit pattern as int32.
func (d DataType) IntRange() (lo, hi int64) {
	switch d {
	case DataInt8:
		return -1 << 7, 1<<7 - 1
	case DataUint8:
		return 0, 1<<8 - 1
	case DataInt16:
		return -1 << 15, 1<<15 - 1
	case DataUint16:
		return 0, 1<<16 - 1
	case DataUint32:
		return 0, 1<<32 - 1
	default:
		return -1 << 31, 1<<31 - 1
	}
}

func (p PredictorType) String() string {
	switch p {
	case PredictorNone:
		return "None"
	case PredictorDifference:
		return "Difference"
	case PredictorParallelogram:
		return "Parallelogram"
	default:
		return "Unknown"
	}
}

// IsValid reports whether p is a known predictor.
func (p PredictorType) IsValid() bool {
	return p <= PredictorParallelogram
}

func (m ConnectivityMethod) String() string {
	switch m {
	case ConnectivitySequential:
		return "Sequential"
	case ConnectivityTraversal:
		return "Traversal"
	default:
		return "Unknown"
	}
}

func (e EntropyMethod) String() string {
	switch e {
	case EntropyArithmetic:
		return "Arithmetic"
	case EntropyHuffman:
		return "Huffman"
	case EntropyFSE:
		return "FSE"
	default:
		return "Unknown"
	}
}

// IsValid reports whether e is a known entropy method.
func (e EntropyMethod) IsValid() bool {
	return e >= EntropyArithmetic && e <= EntropyFSE
}

// IsValid reports whether m is a known connectivity method.
func (m ConnectivityMethod) IsValid() bool {
	return m <= ConnectivityTraversal
}

// IsValid reports whether c is a known compression type.
func (c CompressionType) IsValid() bool {
	return c >= CompressionNone && c <= CompressionLZ4
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

func (m MappingMode) String() string {
	switch m {
	case MappingIdentity:
		return "Identity"
	case MappingExplicit:
		return "Explicit"
	default:
		return "Unknown"
	}
}

// IsValid reports whether m is a known mapping mode.
func (m MappingMode) IsValid() bool {
	return m <= MappingExplicit
}
