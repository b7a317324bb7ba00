package codec

import (
	"fmt"
	"math"
	"runtime"

	"go.uber.org/zap"

	"github.com/arloliu/meshpack/errs"
	"github.com/arloliu/meshpack/format"
	"github.com/arloliu/meshpack/internal/options"
	"github.com/arloliu/meshpack/internal/quantize"
)

// Compression level bounds. Higher levels spend more CPU searching for a
// smaller stream; every level decodes with the same decoder.
const (
	MinCompressionLevel     = 0
	MaxCompressionLevel     = 10
	DefaultCompressionLevel = 7
)

// Default decoder limits.
const (
	DefaultMaxPoints     = 1 << 28
	DefaultMaxFaces      = 1 << 29
	DefaultMaxAttributes = math.MaxUint8

	// DefaultMaxBodySize caps the raw size of a compressed body when the
	// configured limits allow more.
	DefaultMaxBodySize = math.MaxInt32
)

// EncoderConfig holds the encoder settings. It is immutable once the
// Encoder is built.
type EncoderConfig struct {
	level        int
	quantization map[format.AttributeType]int
	predictors   map[format.AttributeType]format.PredictorType
	entropy      format.EntropyMethod
	connectivity format.ConnectivityMethod
	forceConn    bool
	compression  format.CompressionType
	checksum     bool
	concurrency  int
	logger       *zap.Logger
}

// EncodeOption configures an EncoderConfig.
type EncodeOption = options.Option[*EncoderConfig]

// NewEncoderConfig creates an encoder configuration from opts.
//
// Returns errs.ErrInvalidOption or errs.ErrInvalidQuantization for values out
// of range.
func NewEncoderConfig(opts ...EncodeOption) (*EncoderConfig, error) {
	cfg := &EncoderConfig{
		level:        DefaultCompressionLevel,
		quantization: make(map[format.AttributeType]int),
		predictors:   make(map[format.AttributeType]format.PredictorType),
		entropy:      format.EntropyArithmetic,
		compression:  format.CompressionNone,
		concurrency:  runtime.GOMAXPROCS(0),
		logger:       zap.NewNop(),
	}

	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Level returns the compression level.
func (c *EncoderConfig) Level() int { return c.level }

// EntropyMethod returns the entropy backend of every coded stream.
func (c *EncoderConfig) EntropyMethod() format.EntropyMethod { return c.entropy }

// BodyCompression returns the body compression type.
func (c *EncoderConfig) BodyCompression() format.CompressionType { return c.compression }

// Checksum reports whether a body checksum is written.
func (c *EncoderConfig) Checksum() bool { return c.checksum }

// QuantizationBits returns the bit depth override for typ, if any.
func (c *EncoderConfig) QuantizationBits(typ format.AttributeType) (int, bool) {
	bits, ok := c.quantization[typ]
	return bits, ok
}

// WithCompressionLevel sets the compression level in [0, 10].
//
// Levels 0-2 store faces sequentially and use difference prediction only.
// Levels 3-8 use the traversal connectivity coder and parallelogram
// prediction where available. From level 7 every applicable predictor is
// tried per attribute, and from level 9 both connectivity methods are tried.
func WithCompressionLevel(level int) EncodeOption {
	return options.New("WithCompressionLevel", func(c *EncoderConfig) error {
		if level < MinCompressionLevel || level > MaxCompressionLevel {
			return fmt.Errorf("%w: compression level %d outside [%d, %d]",
				errs.ErrInvalidOption, level, MinCompressionLevel, MaxCompressionLevel)
		}
		c.level = level

		return nil
	})
}

// WithQuantization sets the quantization bit depth of every float attribute
// of type typ, overriding the attribute's own QuantizationBits. Zero keeps
// the values lossless.
func WithQuantization(typ format.AttributeType, bits int) EncodeOption {
	return options.New("WithQuantization", func(c *EncoderConfig) error {
		if !typ.IsValid() {
			return fmt.Errorf("%w: attribute type %d", errs.ErrInvalidOption, typ)
		}

		if bits != 0 {
			if err := quantize.ValidateBits(bits); err != nil {
				return err
			}
		}
		c.quantization[typ] = bits

		return nil
	})
}

// WithPredictor forces predictor p for attributes of type typ.
//
// A parallelogram predictor falls back to difference prediction for
// attributes that have no usable faces.
func WithPredictor(typ format.AttributeType, p format.PredictorType) EncodeOption {
	return options.New("WithPredictor", func(c *EncoderConfig) error {
		if !typ.IsValid() || !p.IsValid() {
			return fmt.Errorf("%w: predictor %d for attribute type %d", errs.ErrInvalidOption, p, typ)
		}
		c.predictors[typ] = p

		return nil
	})
}

// WithEntropyMethod selects the entropy backend.
func WithEntropyMethod(m format.EntropyMethod) EncodeOption {
	return options.New("WithEntropyMethod", func(c *EncoderConfig) error {
		if !m.IsValid() {
			return fmt.Errorf("%w: entropy method %d", errs.ErrInvalidOption, m)
		}
		c.entropy = m

		return nil
	})
}

// WithConnectivityMethod forces the connectivity method of meshes,
// bypassing the level based selection.
func WithConnectivityMethod(m format.ConnectivityMethod) EncodeOption {
	return options.New("WithConnectivityMethod", func(c *EncoderConfig) error {
		if !m.IsValid() {
			return fmt.Errorf("%w: connectivity method %d", errs.ErrInvalidOption, m)
		}
		c.connectivity = m
		c.forceConn = true

		return nil
	})
}

// WithBodyCompression compresses the stream body with ct.
func WithBodyCompression(ct format.CompressionType) EncodeOption {
	return options.New("WithBodyCompression", func(c *EncoderConfig) error {
		if !ct.IsValid() {
			return fmt.Errorf("%w: compression type %d", errs.ErrInvalidOption, ct)
		}
		c.compression = ct

		return nil
	})
}

// WithChecksum enables or disables the xxHash64 body checksum.
func WithChecksum(enabled bool) EncodeOption {
	return options.NoError("WithChecksum", func(c *EncoderConfig) {
		c.checksum = enabled
	})
}

// WithConcurrency bounds the number of attributes encoded in parallel.
func WithConcurrency(n int) EncodeOption {
	return options.New("WithConcurrency", func(c *EncoderConfig) error {
		if n < 1 {
			return fmt.Errorf("%w: concurrency %d", errs.ErrInvalidOption, n)
		}
		c.concurrency = n

		return nil
	})
}

// WithLogger sets the debug logger. A nil logger disables logging.
func WithLogger(logger *zap.Logger) EncodeOption {
	return options.NoError("WithLogger", func(c *EncoderConfig) {
		if logger == nil {
			logger = zap.NewNop()
		}
		c.logger = logger
	})
}

// DecoderConfig holds the decoder settings.
type DecoderConfig struct {
	maxPoints     int
	maxFaces      int
	maxAttributes int
	maxBodySize   int // 0 derives the limit from the count limits
	concurrency   int
	logger        *zap.Logger
}

// DecodeOption configures a DecoderConfig.
type DecodeOption = options.Option[*DecoderConfig]

// NewDecoderConfig creates a decoder configuration from opts.
func NewDecoderConfig(opts ...DecodeOption) (*DecoderConfig, error) {
	cfg := &DecoderConfig{
		maxPoints:     DefaultMaxPoints,
		maxFaces:      DefaultMaxFaces,
		maxAttributes: DefaultMaxAttributes,
		concurrency:   runtime.GOMAXPROCS(0),
		logger:        zap.NewNop(),
	}

	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	if cfg.maxBodySize == 0 {
		bound := maxBodySize(uint64(cfg.maxPoints), uint64(cfg.maxFaces), uint64(cfg.maxAttributes)) //nolint:gosec
		cfg.maxBodySize = int(min(bound, DefaultMaxBodySize))
	}

	return cfg, nil
}

// MaxBodySize returns the largest raw compressed-body size the decoder
// accepts.
func (c *DecoderConfig) MaxBodySize() int {
	return c.maxBodySize
}

// WithMaxPoints limits the point count, and the value count of every
// attribute, accepted by the decoder.
func WithMaxPoints(n int) DecodeOption {
	return options.New("WithMaxPoints", func(c *DecoderConfig) error {
		if n < 1 {
			return fmt.Errorf("%w: max points %d", errs.ErrInvalidOption, n)
		}
		c.maxPoints = n

		return nil
	})
}

// WithMaxFaces limits the face count accepted by the decoder.
func WithMaxFaces(n int) DecodeOption {
	return options.New("WithMaxFaces", func(c *DecoderConfig) error {
		if n < 0 {
			return fmt.Errorf("%w: max faces %d", errs.ErrInvalidOption, n)
		}
		c.maxFaces = n

		return nil
	})
}

// WithMaxAttributes limits the attribute count accepted by the decoder.
func WithMaxAttributes(n int) DecodeOption {
	return options.New("WithMaxAttributes", func(c *DecoderConfig) error {
		if n < 0 || n > math.MaxUint8 {
			return fmt.Errorf("%w: max attributes %d", errs.ErrInvalidOption, n)
		}
		c.maxAttributes = n

		return nil
	})
}

// WithMaxBodySize limits the raw size of a compressed body, checked before
// the body is decompressed. By default the limit follows from the point,
// face and attribute limits, capped at DefaultMaxBodySize.
func WithMaxBodySize(n int) DecodeOption {
	return options.New("WithMaxBodySize", func(c *DecoderConfig) error {
		if n < 1 {
			return fmt.Errorf("%w: max body size %d", errs.ErrInvalidOption, n)
		}
		c.maxBodySize = n

		return nil
	})
}

// WithDecodeConcurrency bounds the number of attributes decoded in parallel.
func WithDecodeConcurrency(n int) DecodeOption {
	return options.New("WithDecodeConcurrency", func(c *DecoderConfig) error {
		if n < 1 {
			return fmt.Errorf("%w: concurrency %d", errs.ErrInvalidOption, n)
		}
		c.concurrency = n

		return nil
	})
}

// WithDecodeLogger sets the debug logger. A nil logger disables logging.
func WithDecodeLogger(logger *zap.Logger) DecodeOption {
	return options.NoError("WithDecodeLogger", func(c *DecoderConfig) {
		if logger == nil {
			logger = zap.NewNop()
		}
		c.logger = logger
	})
}
