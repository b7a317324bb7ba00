// Package compress provides the body compression codecs of a meshpack stream.
//
// The connectivity and attribute sections are already entropy coded; body
// compression is an optional second stage selected with
// codec.WithBodyCompression and recorded in the header extension. The stored
// body is then
//
//	uvarint rawLength | compressed bytes
//
// # Supported Algorithms
//
//	Type                    | Library                      | Use when
//	------------------------|------------------------------|---------------------------
//	format.CompressionNone  | (none)                       | default; payloads are dense
//	format.CompressionZstd  | klauspost/compress/zstd      | storage size matters most
//	format.CompressionS2    | klauspost/compress/s2        | fast decode
//	format.CompressionLZ4   | pierrec/lz4/v4 (block mode)  | fastest decode
//
// # Usage
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	packed, _ := codec.Compress(body)
//	body, err = codec.Decompress(packed, len(body))
//
// Decompress always receives the raw length and fails when the output size
// differs. Callers bound the raw length first, at least by
// MaxDecompressedSize of the compressed length; the decoder also bounds it by
// the counts in the stream header.
//
// # Thread Safety
//
// All codecs are stateless values backed by sync.Pool encoders and decoders
// and are safe for concurrent use.
package compress
