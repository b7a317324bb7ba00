package codec

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/arloliu/meshpack/errs"
	"github.com/arloliu/meshpack/format"
	"github.com/arloliu/meshpack/geometry"
	"github.com/arloliu/meshpack/internal/entropy"
	"github.com/arloliu/meshpack/internal/pool"
	"github.com/arloliu/meshpack/internal/predict"
	"github.com/arloliu/meshpack/internal/quantize"
	"github.com/arloliu/meshpack/section"
)

// unassigned marks a value that no point has referenced yet.
const unassigned = math.MaxUint32

// layout is the point order and face list attributes are encoded against.
type layout struct {
	// order maps a decoded point index to the original one.
	order []uint32
	// faces are the faces in decode order, nil for point clouds.
	faces [][3]uint32
}

// resolveBits returns the quantization bit depth of attr.
func (e *Encoder) resolveBits(attr *geometry.Attribute) (int, error) {
	bits := attr.QuantizationBits
	if override, ok := e.cfg.quantization[attr.Type]; ok && attr.DataType.IsFloat() {
		bits = override
	}

	if bits == 0 {
		return 0, nil
	}

	if !attr.DataType.IsFloat() {
		return 0, fmt.Errorf("%w: %s %s attribute cannot be quantized", errs.ErrInvalidQuantization, attr.Type, attr.DataType)
	}

	if err := quantize.ValidateBits(bits); err != nil {
		return 0, err
	}

	return bits, nil
}

// encodeAttribute builds the section of one attribute.
func (e *Encoder) encodeAttribute(attr *geometry.Attribute, bits int, lay *layout) (section.AttributeSection, error) {
	mapping, valueOrder := orderValues(attr, lay.order)
	identity := isIdentityMapping(mapping, len(valueOrder))

	desc := section.AttributeDescriptor{
		Type:             attr.Type,
		DataType:         attr.DataType,
		Components:       uint8(attr.Components), //nolint:gosec
		QuantizationBits: uint8(bits),            //nolint:gosec
		Mapping:          format.MappingIdentity,
		NumValues:        uint32(len(valueOrder)), //nolint:gosec
	}

	values, maxValue, release, err := attributeInts(attr, valueOrder, bits, &desc)
	if err != nil {
		return section.AttributeSection{}, err
	}
	defer release()

	ctx := predict.Context{
		Components: attr.Components,
		MaxValue:   maxValue,
		NumValues:  len(valueOrder),
	}
	if identity {
		ctx.Faces = lay.faces
	}

	choice, err := predict.Choose(e.predictorCandidates(attr.Type, ctx), values, attr.Components, e.cfg.entropy)
	if err != nil {
		return section.AttributeSection{}, err
	}
	desc.Predictor = choice.Predictor.Type()

	sec := section.AttributeSection{Descriptor: desc, Payload: choice.Payload}
	if !identity {
		sec.Descriptor.Mapping = format.MappingExplicit
		sec.MappingPayload, err = entropy.EncodeSymbols(e.cfg.entropy, mappingSymbols(mapping))
		if err != nil {
			return section.AttributeSection{}, err
		}
	}

	e.cfg.logger.Debug("attribute encoded",
		zap.Stringer("type", attr.Type),
		zap.Stringer("predictor", desc.Predictor),
		zap.Stringer("mapping", sec.Descriptor.Mapping),
		zap.Int("bits", bits),
		zap.Int("values", len(valueOrder)),
		zap.Int("payload", len(sec.Payload)),
		zap.Int("mappingPayload", len(sec.MappingPayload)),
	)

	return sec, nil
}

// orderValues renumbers the values of attr in order of first reference by
// the decoded points. Values no point references keep their relative order
// after the referenced ones.
//
// Returns mapping[point] = new value index and valueOrder[new] = old index.
func orderValues(attr *geometry.Attribute, order []uint32) ([]uint32, []uint32) {
	numValues := attr.NumValues()
	newIndex := make([]uint32, numValues)
	for i := range newIndex {
		newIndex[i] = unassigned
	}

	mapping := make([]uint32, len(order))
	valueOrder := make([]uint32, 0, numValues)
	for p, old := range order {
		v := attr.MappedIndex(int(old))
		if newIndex[v] == unassigned {
			newIndex[v] = uint32(len(valueOrder))      //nolint:gosec
			valueOrder = append(valueOrder, uint32(v)) //nolint:gosec
		}
		mapping[p] = newIndex[v]
	}

	for v, idx := range newIndex {
		if idx == unassigned {
			valueOrder = append(valueOrder, uint32(v)) //nolint:gosec
		}
	}

	return mapping, valueOrder
}

func isIdentityMapping(mapping []uint32, numValues int) bool {
	if len(mapping) != numValues {
		return false
	}

	for p, v := range mapping {
		if int(v) != p {
			return false
		}
	}

	return true
}

// mappingSymbols codes a first-reference ordered mapping: 0 introduces the
// next new value, d+1 repeats value next-1-d.
func mappingSymbols(mapping []uint32) []uint64 {
	symbols := make([]uint64, len(mapping))
	next := uint32(0)
	for i, v := range mapping {
		if v == next {
			next++
			continue
		}
		symbols[i] = uint64(next-1-v) + 1
	}

	return symbols
}

// attributeInts lays out the values of attr in valueOrder as integers.
//
// Quantized floats fill in the descriptor bounds; lossless floats are carried
// as their IEEE-754 bit pattern read as int32. The release function returns
// pooled memory and must be called once the values are no longer used.
func attributeInts(attr *geometry.Attribute, valueOrder []uint32, bits int, desc *section.AttributeDescriptor) ([]int64, int64, func(), error) {
	c := attr.Components
	n := len(valueOrder) * c

	if attr.DataType.IsFloat() && bits > 0 {
		src := attr.Float32Values()
		ordered := make([]float32, n)
		for i, old := range valueOrder {
			copy(ordered[i*c:(i+1)*c], src[int(old)*c:(int(old)+1)*c])
		}

		mins, rng, err := quantize.Bounds(ordered, c)
		if err != nil {
			return nil, 0, nil, fmt.Errorf("%s attribute: %w", attr.Type, err)
		}

		q, err := quantize.New(bits, mins, rng)
		if err != nil {
			return nil, 0, nil, err
		}
		desc.Mins, desc.Range = mins, rng

		return q.QuantizeValues(ordered), q.MaxValue(), func() {}, nil
	}

	values, release := pool.GetInt64Slice(n)
	if attr.DataType.IsFloat() {
		src := attr.Float32Values()
		for i, old := range valueOrder {
			for k := range c {
				values[i*c+k] = int64(int32(math.Float32bits(src[int(old)*c+k]))) //nolint:gosec
			}
		}

		return values, 0, release, nil
	}

	src := attr.Int64Values()
	for i, old := range valueOrder {
		copy(values[i*c:(i+1)*c], src[int(old)*c:(int(old)+1)*c])
	}

	return values, 0, release, nil
}

// predictorCandidates returns the predictors tried for an attribute of type
// typ at the configured level. Earlier candidates win ties.
func (e *Encoder) predictorCandidates(typ format.AttributeType, ctx predict.Context) []predict.Predictor {
	if forced, ok := e.cfg.predictors[typ]; ok {
		p, err := predict.New(forced, ctx)
		if err != nil {
			e.cfg.logger.Debug("forced predictor unavailable, using difference",
				zap.Stringer("type", typ), zap.Stringer("predictor", forced), zap.Error(err))

			return []predict.Predictor{predict.Difference{}}
		}

		return []predict.Predictor{p}
	}

	if e.cfg.level < 3 {
		return []predict.Predictor{predict.Difference{}}
	}

	// A parallelogram that predicts no value degenerates to Difference.
	candidates := make([]predict.Predictor, 0, 3)
	if ctx.Faces != nil {
		if p := predict.NewParallelogram(ctx.Faces, ctx.NumValues, ctx.MaxValue); p.Covered() > 0 {
			candidates = append(candidates, p)
		}
	}

	if e.cfg.level < 7 {
		if len(candidates) == 0 {
			candidates = append(candidates, predict.Difference{})
		}

		return candidates
	}

	return append(candidates, predict.Difference{}, predict.None{})
}
