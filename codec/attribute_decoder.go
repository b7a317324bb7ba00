package codec

import (
	"fmt"
	"math"

	"github.com/arloliu/meshpack/errs"
	"github.com/arloliu/meshpack/format"
	"github.com/arloliu/meshpack/geometry"
	"github.com/arloliu/meshpack/internal/entropy"
	"github.com/arloliu/meshpack/internal/predict"
	"github.com/arloliu/meshpack/internal/quantize"
	"github.com/arloliu/meshpack/section"
)

// checkAttribute validates a parsed descriptor against the header before any
// payload is decoded.
func (d *Decoder) checkAttribute(desc *section.AttributeDescriptor, numPoints int) error {
	numValues := int(desc.NumValues)
	if numValues > d.cfg.maxPoints {
		return fmt.Errorf("%w: %s attribute declares %d values, limit %d",
			errs.ErrLimitExceeded, desc.Type, numValues, d.cfg.maxPoints)
	}

	if numValues == 0 {
		return fmt.Errorf("%w: %s attribute without values", errs.ErrAttributeMismatch, desc.Type)
	}

	if desc.Mapping == format.MappingIdentity && numValues != numPoints {
		return fmt.Errorf("%w: %s attribute has %d values for %d points without mapping",
			errs.ErrAttributeMismatch, desc.Type, numValues, numPoints)
	}

	return nil
}

// decodeAttribute rebuilds one attribute from its section. faces are the
// decoded mesh faces, nil for point clouds.
func (d *Decoder) decodeAttribute(sec *section.AttributeSection, numPoints int, faces [][3]uint32) (*geometry.Attribute, error) {
	desc := &sec.Descriptor
	c := int(desc.Components)
	numValues := int(desc.NumValues)

	var mapping []uint32
	if desc.Mapping == format.MappingExplicit {
		var err error
		if mapping, err = decodeMapping(sec.MappingPayload, numPoints, numValues); err != nil {
			return nil, fmt.Errorf("%s mapping: %w", desc.Type, err)
		}
	}

	residuals, err := entropy.DecodeSigned(sec.Payload, numValues*c)
	if err != nil {
		return nil, fmt.Errorf("%s values: %w", desc.Type, err)
	}

	var q *quantize.Quantizer
	ctx := predict.Context{Components: c, NumValues: numValues}
	if desc.Quantized() {
		if q, err = quantize.New(int(desc.QuantizationBits), desc.Mins, desc.Range); err != nil {
			return nil, err
		}
		ctx.MaxValue = q.MaxValue()
	}
	if mapping == nil {
		ctx.Faces = faces
	}

	pred, err := predict.New(desc.Predictor, ctx)
	if err != nil {
		return nil, err
	}
	values := predict.DecodeResiduals(pred, residuals, c)

	attr, err := buildAttribute(desc, values, q)
	if err != nil {
		return nil, err
	}

	if mapping != nil {
		attr.SetMapping(mapping)
	}

	return attr, nil
}

func buildAttribute(desc *section.AttributeDescriptor, values []int64, q *quantize.Quantizer) (*geometry.Attribute, error) {
	c := int(desc.Components)

	switch {
	case q != nil:
		floats, err := q.DequantizeValues(values)
		if err != nil {
			return nil, err
		}

		attr, err := geometry.NewFloatAttribute(desc.Type, c, floats)
		if err != nil {
			return nil, err
		}
		attr.QuantizationBits = int(desc.QuantizationBits)

		return attr, nil

	case desc.DataType.IsFloat():
		floats := make([]float32, len(values))
		for i, v := range values {
			if v < math.MinInt32 || v > math.MaxInt32 {
				return nil, fmt.Errorf("%w: float bit pattern %d out of range", errs.ErrAttributeMismatch, v)
			}
			floats[i] = math.Float32frombits(uint32(int32(v))) //nolint:gosec
		}

		return geometry.NewFloatAttribute(desc.Type, c, floats)

	default:
		lo, hi := desc.DataType.IntRange()
		for i, v := range values {
			if v < lo || v > hi {
				return nil, fmt.Errorf("%w: value %d at %d outside %s range", errs.ErrAttributeMismatch, v, i, desc.DataType)
			}
		}

		return geometry.NewIntAttribute(desc.Type, desc.DataType, c, values)
	}
}

// decodeMapping inverts mappingSymbols.
func decodeMapping(payload []byte, numPoints, numValues int) ([]uint32, error) {
	symbols, err := entropy.DecodeSymbols(payload, numPoints)
	if err != nil {
		return nil, err
	}

	mapping := make([]uint32, numPoints)
	next := uint64(0)
	for p, s := range symbols {
		if s == 0 {
			if next >= uint64(numValues) {
				return nil, fmt.Errorf("%w: point %d introduces value %d of %d", errs.ErrAttributeMismatch, p, next, numValues)
			}
			mapping[p] = uint32(next) //nolint:gosec
			next++

			continue
		}

		if s > next {
			return nil, fmt.Errorf("%w: point %d repeats value %d back, only %d seen", errs.ErrAttributeMismatch, p, s-1, next)
		}
		mapping[p] = uint32(next - s) //nolint:gosec
	}

	return mapping, nil
}
