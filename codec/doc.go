// Package codec encodes point clouds and meshes into meshpack streams and
// decodes them back.
//
// # Pipeline
//
// Encoding runs connectivity first. For meshes the connectivity coder fixes
// the decoded point order and face order; attribute values are then laid out
// in that order, renumbered by first reference, quantized (float attributes
// with a bit depth), predicted, zig-zagged and entropy coded. Attributes are
// independent once connectivity is known and are encoded in parallel.
//
//	enc, err := codec.NewEncoder(
//	    codec.WithCompressionLevel(7),
//	    codec.WithQuantization(format.AttrPosition, 14),
//	    codec.WithEntropyMethod(format.EntropyArithmetic),
//	)
//	data, err := enc.Encode(geometry.FromMesh(mesh))
//
//	dec, err := codec.NewDecoder(codec.WithMaxPoints(1 << 20))
//	g, err := dec.Decode(data)
//
// A decoded mesh holds the same triangles over the same per-point values,
// but points and faces may come back renumbered and reordered, and face
// corners rotated. Quantized values come back within range/2^bits of the
// input; everything else is exact.
//
// # Compression Levels
//
//	Level | Connectivity          | Predictors
//	------|-----------------------|--------------------------------------
//	0-2   | sequential            | difference
//	3-6   | traversal             | parallelogram (meshes) or difference
//	7-8   | traversal             | smallest of parallelogram, difference, none
//	9-10  | smaller of both       | smallest of parallelogram, difference, none
//
// WithConnectivityMethod and WithPredictor override the level choice.
//
// # Decoder Limits
//
// WithMaxPoints, WithMaxFaces and WithMaxAttributes reject headers with
// larger counts. A compressed body must also fit the largest body the header
// counts allow, the WithMaxBodySize limit and the codec's expansion of the
// stored bytes; all are checked before the body is decompressed.
//
// # Errors
//
// Every error wraps one sentinel from package errs. Encoding validates the
// whole geometry before producing output, and decoding returns either a
// complete geometry or an error.
package codec
