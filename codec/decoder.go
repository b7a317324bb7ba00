package codec

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/meshpack/compress"
	"github.com/arloliu/meshpack/errs"
	"github.com/arloliu/meshpack/format"
	"github.com/arloliu/meshpack/geometry"
	"github.com/arloliu/meshpack/internal/bitio"
	"github.com/arloliu/meshpack/internal/connectivity"
	"github.com/arloliu/meshpack/internal/hash"
	"github.com/arloliu/meshpack/section"
)

// Decoder rebuilds geometries from meshpack streams.
//
// A Decoder is immutable after construction and safe for concurrent use.
type Decoder struct {
	cfg *DecoderConfig
}

// NewDecoder creates a decoder configured by opts.
func NewDecoder(opts ...DecodeOption) (*Decoder, error) {
	cfg, err := NewDecoderConfig(opts...)
	if err != nil {
		return nil, err
	}

	return &Decoder{cfg: cfg}, nil
}

// body is the parsed, not yet decoded, content of a stream.
type body struct {
	connectivity section.ConnectivitySection
	attributes   []section.AttributeSection
}

// Decode parses data and rebuilds the geometry it holds.
//
// Either the complete geometry is returned or an error; bytes after the
// stored body are ignored.
//
// Returns:
//   - geometry.Geometry: the decoded point cloud or mesh
//   - error: wraps one of errs.ErrTruncatedStream, errs.ErrUnsupportedFormat,
//     errs.ErrLimitExceeded, errs.ErrChecksumMismatch,
//     errs.ErrEntropyTableCorrupt, errs.ErrConnectivityInconsistency,
//     errs.ErrAttributeMismatch or errs.ErrInvalidQuantization
func (d *Decoder) Decode(data []byte) (geometry.Geometry, error) {
	header, n, err := section.ParseHeader(data)
	if err != nil {
		return geometry.Geometry{}, err
	}

	if err := d.checkLimits(&header); err != nil {
		return geometry.Geometry{}, err
	}

	b, err := d.parseBody(&header, data[n:])
	if err != nil {
		return geometry.Geometry{}, err
	}

	numPoints := int(header.NumPoints)
	var conn *connectivity.Result
	if header.Kind == format.KindMesh {
		conn, err = connectivity.Decode(b.connectivity.Method, b.connectivity.Payload, int(header.NumFaces), numPoints)
		if err != nil {
			return geometry.Geometry{}, err
		}
	}

	var faces [][3]uint32
	if conn != nil {
		faces = conn.Faces
	}

	attrs := make([]*geometry.Attribute, len(b.attributes))
	var eg errgroup.Group
	eg.SetLimit(d.cfg.concurrency)
	for i := range b.attributes {
		eg.Go(func() error {
			attr, err := d.decodeAttribute(&b.attributes[i], numPoints, faces)
			if err != nil {
				return fmt.Errorf("attribute %d: %w", i, err)
			}
			attrs[i] = attr

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return geometry.Geometry{}, err
	}

	d.cfg.logger.Debug("geometry decoded",
		zap.Stringer("kind", header.Kind),
		zap.Int("points", numPoints),
		zap.Uint32("faces", header.NumFaces),
		zap.Int("attributes", len(attrs)),
	)

	if header.Kind == format.KindMesh {
		m := geometry.NewMesh(numPoints)
		m.SetFaces(faces)
		for _, attr := range attrs {
			m.AddAttribute(attr)
		}

		return geometry.FromMesh(m), nil
	}

	pc := geometry.NewPointCloud(numPoints)
	for _, attr := range attrs {
		pc.AddAttribute(attr)
	}

	return geometry.FromPointCloud(pc), nil
}

func (d *Decoder) checkLimits(h *section.Header) error {
	switch {
	case h.NumPoints == 0:
		return fmt.Errorf("%w: stream declares no points", errs.ErrEmptyGeometry)
	case uint64(h.NumPoints) > uint64(d.cfg.maxPoints):
		return fmt.Errorf("%w: %d points, limit %d", errs.ErrLimitExceeded, h.NumPoints, d.cfg.maxPoints)
	case uint64(h.NumFaces) > uint64(d.cfg.maxFaces):
		return fmt.Errorf("%w: %d faces, limit %d", errs.ErrLimitExceeded, h.NumFaces, d.cfg.maxFaces)
	case int(h.NumAttributes) > d.cfg.maxAttributes:
		return fmt.Errorf("%w: %d attributes, limit %d", errs.ErrLimitExceeded, h.NumAttributes, d.cfg.maxAttributes)
	}

	return nil
}

// Worst-case encoded sizes used to bound a compressed body before it is
// decompressed.
const (
	maxStreamOverhead = 1 << 12 // length prefix, entropy table and block headers of one stream
	maxSymbolSize     = 12      // one entropy-coded symbol with its extra bits
	maxDescriptorSize = 32 + 4*geometry.MaxComponents
	symbolsPerFace    = 5 // topology, three references and a seed flag
)

// maxBodySize returns the largest body the encoder can produce for the
// given counts. Each point may carry up to geometry.MaxComponents
// components per attribute, which also leaves room for values no point
// references.
func maxBodySize(points, faces, attributes uint64) uint64 {
	points = min(points, math.MaxUint32)
	faces = min(faces, math.MaxUint32)
	attributes = min(attributes, math.MaxUint8)

	const (
		perAttribute = maxDescriptorSize + 2*maxStreamOverhead
		perPoint     = (1 + geometry.MaxComponents) * maxSymbolSize
	)

	connectivity := 1 + 3*maxStreamOverhead + (faces*symbolsPerFace+points)*maxSymbolSize

	return connectivity + attributes*(perAttribute+points*perPoint)
}

// bodyLimit returns the largest raw body accepted for the stream of h.
func (d *Decoder) bodyLimit(h *section.Header) int {
	bound := maxBodySize(uint64(h.NumPoints), uint64(h.NumFaces), uint64(h.NumAttributes))
	return int(min(bound, uint64(d.cfg.maxBodySize))) //nolint:gosec
}

// parseBody verifies the checksum, undoes body compression and parses the
// sections of the body. Payload slices alias data or the decompressed body.
func (d *Decoder) parseBody(h *section.Header, data []byte) (*body, error) {
	stored := bitio.NewReader(data)

	if h.Compression == format.CompressionNone {
		b, err := d.parseSections(h, stored)
		if err != nil {
			return nil, err
		}

		if err := verifyChecksum(h, data[:stored.Offset()]); err != nil {
			return nil, err
		}

		return b, nil
	}

	rawLen, err := stored.ReadUvarint()
	if err != nil {
		return nil, err
	}

	if limit := d.bodyLimit(h); rawLen > uint64(limit) { //nolint:gosec
		return nil, fmt.Errorf("%w: body of %d bytes, limit %d", errs.ErrLimitExceeded, rawLen, limit)
	}

	packed, err := stored.ReadSection()
	if err != nil {
		return nil, err
	}

	if err := verifyChecksum(h, data[:stored.Offset()]); err != nil {
		return nil, err
	}

	raw, err := d.decompressBody(h.Compression, packed, int(rawLen))
	if err != nil {
		return nil, err
	}

	return d.parseSections(h, bitio.NewReader(raw))
}

func verifyChecksum(h *section.Header, stored []byte) error {
	if !h.Flag.HasChecksum() {
		return nil
	}

	if got := hash.Checksum(stored); got != h.Checksum {
		return fmt.Errorf("%w: body checksum %016x, header %016x", errs.ErrChecksumMismatch, got, h.Checksum)
	}

	return nil
}

func (d *Decoder) decompressBody(ct format.CompressionType, packed []byte, rawLen int) ([]byte, error) {
	codec, err := compress.GetCodec(ct)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrUnsupportedFormat, err)
	}

	if rawLen > codec.MaxDecompressedSize(len(packed)) {
		return nil, fmt.Errorf("%w: %s body of %d bytes cannot hold %d bytes", errs.ErrTruncatedStream, ct, len(packed), rawLen)
	}

	raw, err := codec.Decompress(packed, rawLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %s body: %w", errs.ErrTruncatedStream, ct, err)
	}

	d.cfg.logger.Debug("body decompressed",
		zap.Stringer("algorithm", ct),
		zap.Int("compressed", len(packed)),
		zap.Int("raw", len(raw)),
	)

	return raw, nil
}

func (d *Decoder) parseSections(h *section.Header, r *bitio.Reader) (*body, error) {
	b := &body{attributes: make([]section.AttributeSection, h.NumAttributes)}

	if h.Kind == format.KindMesh {
		if err := b.connectivity.Parse(r); err != nil {
			return nil, fmt.Errorf("connectivity: %w", err)
		}
	}

	for i := range b.attributes {
		if err := b.attributes[i].Parse(r); err != nil {
			return nil, fmt.Errorf("attribute %d: %w", i, err)
		}

		if err := d.checkAttribute(&b.attributes[i].Descriptor, int(h.NumPoints)); err != nil {
			return nil, fmt.Errorf("attribute %d: %w", i, err)
		}
	}

	return b, nil
}
