package codec

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/meshpack/compress"
	"github.com/arloliu/meshpack/errs"
	"github.com/arloliu/meshpack/format"
	"github.com/arloliu/meshpack/geometry"
	"github.com/arloliu/meshpack/internal/bitio"
	"github.com/arloliu/meshpack/internal/connectivity"
	"github.com/arloliu/meshpack/internal/hash"
	"github.com/arloliu/meshpack/internal/pool"
	"github.com/arloliu/meshpack/section"
)

// Encoder turns geometries into meshpack streams.
//
// An Encoder is immutable after construction and safe for concurrent use.
type Encoder struct {
	cfg *EncoderConfig
}

// NewEncoder creates an encoder configured by opts.
func NewEncoder(opts ...EncodeOption) (*Encoder, error) {
	cfg, err := NewEncoderConfig(opts...)
	if err != nil {
		return nil, err
	}

	return &Encoder{cfg: cfg}, nil
}

// Config returns the encoder configuration.
func (e *Encoder) Config() *EncoderConfig {
	return e.cfg
}

// Encode compresses g into a new byte slice.
//
// Encoding is deterministic: the same geometry and options always produce
// the same bytes.
//
// Returns:
//   - []byte: the encoded stream
//   - error: errs.ErrEmptyGeometry for zero points, errs.ErrInvalidGeometry
//     when g violates its own invariants, errs.ErrInvalidQuantization for an
//     unsupported bit depth or non-finite quantized values
func (e *Encoder) Encode(g geometry.Geometry) ([]byte, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	pc := g.Points()
	if pc.NumPoints() == 0 {
		return nil, errs.ErrEmptyGeometry
	}

	attrs := pc.Attributes()
	bits := make([]int, len(attrs))
	for i, attr := range attrs {
		b, err := e.resolveBits(attr)
		if err != nil {
			return nil, fmt.Errorf("attribute %d: %w", i, err)
		}
		bits[i] = b
	}

	header := section.NewHeader(g.Kind)
	header.NumPoints = uint32(pc.NumPoints()) //nolint:gosec
	header.NumAttributes = uint8(len(attrs))  //nolint:gosec
	header.Compression = e.cfg.compression

	body := bitio.NewWriter()
	defer body.Release()

	lay := &layout{order: identityOrder(pc.NumPoints())}
	if g.Kind == format.KindMesh {
		conn, res, err := e.encodeConnectivity(g.Mesh)
		if err != nil {
			return nil, err
		}
		header.NumFaces = uint32(g.Mesh.NumFaces()) //nolint:gosec
		lay.order, lay.faces = res.Order, res.Faces
		conn.Write(body)
	}

	sections := make([]section.AttributeSection, len(attrs))
	var eg errgroup.Group
	eg.SetLimit(e.cfg.concurrency)
	for i, attr := range attrs {
		eg.Go(func() error {
			sec, err := e.encodeAttribute(attr, bits[i], lay)
			if err != nil {
				return fmt.Errorf("attribute %d: %w", i, err)
			}
			sections[i] = sec

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	for i := range sections {
		sections[i].Write(body)
	}

	stored, err := e.compressBody(body.Bytes())
	if err != nil {
		return nil, err
	}

	if e.cfg.checksum {
		header.Flag.WithChecksum()
		header.Checksum = hash.Checksum(stored)
	}

	out := pool.GetStreamBuffer()
	defer pool.PutStreamBuffer(out)

	headerBytes := header.Bytes()
	out.Grow(len(headerBytes) + len(stored))
	out.MustWrite(headerBytes)
	out.MustWrite(stored)

	e.cfg.logger.Debug("geometry encoded",
		zap.Stringer("kind", g.Kind),
		zap.Int("points", pc.NumPoints()),
		zap.Int("attributes", len(attrs)),
		zap.Int("header", len(headerBytes)),
		zap.Int("body", len(stored)),
	)

	return out.Clone(), nil
}

// encodeConnectivity compresses the faces of m with the configured or
// level selected method.
func (e *Encoder) encodeConnectivity(m *geometry.Mesh) (section.ConnectivitySection, *connectivity.Result, error) {
	methods := e.connectivityCandidates()

	var (
		best       *connectivity.Result
		bestMethod format.ConnectivityMethod
	)
	for _, method := range methods {
		res, err := connectivity.Encode(method, e.cfg.entropy, m.Faces(), m.NumPoints())
		if err != nil {
			return section.ConnectivitySection{}, nil, err
		}

		e.cfg.logger.Debug("connectivity candidate",
			zap.Stringer("method", method),
			zap.Int("faces", m.NumFaces()),
			zap.Int("payload", len(res.Payload)),
			zap.Bool("renumbered", !res.IsIdentityOrder()),
		)

		if best == nil || len(res.Payload) < len(best.Payload) {
			best, bestMethod = res, method
		}
	}

	return section.ConnectivitySection{Method: bestMethod, Payload: best.Payload}, best, nil
}

// connectivityCandidates lists the methods tried in preference order;
// the first wins ties.
func (e *Encoder) connectivityCandidates() []format.ConnectivityMethod {
	switch {
	case e.cfg.forceConn:
		return []format.ConnectivityMethod{e.cfg.connectivity}
	case e.cfg.level < 3:
		return []format.ConnectivityMethod{format.ConnectivitySequential}
	case e.cfg.level < 9:
		return []format.ConnectivityMethod{format.ConnectivityTraversal}
	default:
		return []format.ConnectivityMethod{format.ConnectivityTraversal, format.ConnectivitySequential}
	}
}

// compressBody applies body compression. A compressed body is stored as
// the raw length followed by the length-prefixed compressed bytes.
func (e *Encoder) compressBody(raw []byte) ([]byte, error) {
	if e.cfg.compression == format.CompressionNone {
		return append([]byte(nil), raw...), nil
	}

	codec, err := compress.GetCodec(e.cfg.compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidOption, err)
	}

	packed, err := codec.Compress(raw)
	if err != nil {
		return nil, fmt.Errorf("body compression: %w", err)
	}

	stats := compress.CompressionStats{
		Algorithm:      e.cfg.compression,
		OriginalSize:   len(raw),
		CompressedSize: len(packed),
	}
	e.cfg.logger.Debug("body compressed",
		zap.Stringer("algorithm", stats.Algorithm),
		zap.Int("raw", stats.OriginalSize),
		zap.Int("compressed", stats.CompressedSize),
		zap.Float64("ratio", stats.CompressionRatio()),
	)

	w := bitio.NewWriter()
	w.WriteUvarint(uint64(len(raw)))
	w.WriteSection(packed)

	return w.Finish(), nil
}

func identityOrder(n int) []uint32 {
	order := make([]uint32, n)
	for i := range order {
		order[i] = uint32(i) //nolint:gosec
	}

	return order
}
