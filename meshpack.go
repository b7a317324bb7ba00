// Package meshpack compresses 3D point clouds and triangle meshes into a
// compact binary stream and reconstructs them.
//
// # Core Features
//
//   - Per-attribute quantization (1-24 bits) or lossless storage
//   - Difference and parallelogram prediction, chosen per attribute
//   - Traversal based connectivity coding of triangle meshes
//   - Arithmetic, Huffman or FSE entropy coding
//   - Optional body compression (Zstd, S2, LZ4) and xxHash64 checksum
//
// # Basic Usage
//
//	mesh := geometry.NewMesh(8)
//	mesh.SetFaces(faces)
//	pos, _ := geometry.NewFloatAttribute(format.AttrPosition, 3, corners)
//	pos.QuantizationBits = 14
//	mesh.AddAttribute(pos)
//
//	data, err := meshpack.EncodeMesh(mesh)
//	if err != nil {
//	    return err
//	}
//
//	g, err := meshpack.Decode(data)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(g.Mesh.NumFaces())
//
// # Package Structure
//
// This package provides thin wrappers around the codec package. Use codec
// directly to reuse a configured Encoder or Decoder across many calls.
package meshpack

import (
	"github.com/arloliu/meshpack/codec"
	"github.com/arloliu/meshpack/geometry"
)

// Encode compresses g with the given options.
//
// Parameters:
//   - g: point cloud or mesh to encode
//   - opts: encoder options, see codec.WithCompressionLevel and friends
//
// Returns:
//   - []byte: the encoded stream
//   - error: see codec.Encoder.Encode
func Encode(g geometry.Geometry, opts ...codec.EncodeOption) ([]byte, error) {
	enc, err := codec.NewEncoder(opts...)
	if err != nil {
		return nil, err
	}

	return enc.Encode(g)
}

// EncodePointCloud compresses a point cloud.
func EncodePointCloud(pc *geometry.PointCloud, opts ...codec.EncodeOption) ([]byte, error) {
	return Encode(geometry.FromPointCloud(pc), opts...)
}

// EncodeMesh compresses a triangle mesh.
func EncodeMesh(m *geometry.Mesh, opts ...codec.EncodeOption) ([]byte, error) {
	return Encode(geometry.FromMesh(m), opts...)
}

// Decode rebuilds the geometry stored in data.
//
// The returned geometry's Kind tells whether PointCloud or Mesh is set.
func Decode(data []byte, opts ...codec.DecodeOption) (geometry.Geometry, error) {
	dec, err := codec.NewDecoder(opts...)
	if err != nil {
		return geometry.Geometry{}, err
	}

	return dec.Decode(data)
}
