// Package predict turns attribute values into small residuals by predicting
// each value from values earlier in decode order.
//
// Values are held as one flat []int64 buffer of count*components entries.
// A Predictor only ever reads values with a smaller index than the one being
// predicted, so the decoder can rebuild value i before predicting value i+1.
package predict

import (
	"fmt"

	"github.com/arloliu/meshpack/errs"
	"github.com/arloliu/meshpack/format"
)

// Predictor predicts one multi-component value from earlier values.
type Predictor interface {
	// Type returns the wire identifier of the predictor.
	Type() format.PredictorType
	// Predict writes the prediction for value index into out, which has one
	// entry per component. Only values[:index*len(out)] may be read.
	Predict(values []int64, index int, out []int64)
}

// Context describes what a predictor may rely on.
type Context struct {
	// Components is the number of components per value.
	Components int
	// MaxValue is the largest valid quantized value, or 0 when values are
	// not quantized and predictions must not be clamped.
	MaxValue int64
	// Faces holds the mesh faces in decode order with point indices equal to
	// value indices. Nil for point clouds or non-identity mappings.
	Faces [][3]uint32
	// NumValues is the number of values the predictor runs over.
	NumValues int
}

// New creates the predictor identified by typ.
//
// Returns errs.ErrAttributeMismatch when typ is unknown or when a
// parallelogram predictor is requested without mesh faces.
func New(typ format.PredictorType, ctx Context) (Predictor, error) {
	switch typ {
	case format.PredictorNone:
		return None{}, nil
	case format.PredictorDifference:
		return Difference{}, nil
	case format.PredictorParallelogram:
		if ctx.Faces == nil {
			return nil, fmt.Errorf("%w: parallelogram prediction needs mesh faces with identity mapping", errs.ErrAttributeMismatch)
		}

		return NewParallelogram(ctx.Faces, ctx.NumValues, ctx.MaxValue), nil
	default:
		return nil, fmt.Errorf("%w: unknown predictor %d", errs.ErrAttributeMismatch, typ)
	}
}

// None predicts zero for every component.
type None struct{}

func (None) Type() format.PredictorType { return format.PredictorNone }

func (None) Predict(_ []int64, _ int, out []int64) {
	clear(out)
}

// Difference predicts the previous value in decode order, zero for the first.
type Difference struct{}

func (Difference) Type() format.PredictorType { return format.PredictorDifference }

func (Difference) Predict(values []int64, index int, out []int64) {
	if index == 0 {
		clear(out)
		return
	}

	c := len(out)
	copy(out, values[(index-1)*c:index*c])
}

// EncodeResiduals returns value - prediction for every component.
func EncodeResiduals(p Predictor, values []int64, components int) []int64 {
	residuals := make([]int64, len(values))
	pred := make([]int64, components)
	for i := 0; i < len(values)/components; i++ {
		p.Predict(values, i, pred)
		base := i * components
		for c := range pred {
			residuals[base+c] = values[base+c] - pred[c]
		}
	}

	return residuals
}

// DecodeResiduals reverses EncodeResiduals, writing value i before
// predicting value i+1.
func DecodeResiduals(p Predictor, residuals []int64, components int) []int64 {
	values := make([]int64, len(residuals))
	pred := make([]int64, components)
	for i := 0; i < len(residuals)/components; i++ {
		p.Predict(values, i, pred)
		base := i * components
		for c := range pred {
			values[base+c] = residuals[base+c] + pred[c]
		}
	}

	return values
}
