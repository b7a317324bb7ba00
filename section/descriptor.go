package section

import (
	"fmt"

	"github.com/arloliu/meshpack/errs"
	"github.com/arloliu/meshpack/format"
	"github.com/arloliu/meshpack/internal/bitio"
	"github.com/arloliu/meshpack/internal/quantize"
)

// AttributeDescriptor describes one attribute section.
//
// Layout:
//
//	type | data type | components | quantization bits | predictor |
//	uvarint value count | mapping mode |
//	[bits > 0: components x float32 min | float32 range]
type AttributeDescriptor struct {
	Type             format.AttributeType
	DataType         format.DataType
	Components       uint8
	QuantizationBits uint8
	Predictor        format.PredictorType
	Mapping          format.MappingMode
	NumValues        uint32

	// Quantization bounds, present when QuantizationBits > 0.
	Mins  []float32
	Range float32
}

// Quantized reports whether the attribute carries quantized floats.
func (d *AttributeDescriptor) Quantized() bool {
	return d.QuantizationBits > 0
}

// Write serializes the descriptor.
func (d *AttributeDescriptor) Write(w *bitio.Writer) {
	_ = w.WriteByte(byte(d.Type))
	_ = w.WriteByte(byte(d.DataType))
	_ = w.WriteByte(d.Components)
	_ = w.WriteByte(d.QuantizationBits)
	_ = w.WriteByte(byte(d.Predictor))
	w.WriteUvarint(uint64(d.NumValues))
	_ = w.WriteByte(byte(d.Mapping))

	if d.Quantized() {
		for _, m := range d.Mins {
			w.WriteFloat32(m)
		}
		w.WriteFloat32(d.Range)
	}
}

// Parse reads and validates a descriptor.
//
// Unknown enum values are errs.ErrUnsupportedFormat; inconsistent shapes are
// errs.ErrAttributeMismatch; an unsupported bit depth is
// errs.ErrInvalidQuantization.
func (d *AttributeDescriptor) Parse(r *bitio.Reader) error {
	var raw [5]byte
	for i := range raw {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		raw[i] = b
	}

	d.Type = format.AttributeType(raw[0])
	d.DataType = format.DataType(raw[1])
	d.Components = raw[2]
	d.QuantizationBits = raw[3]
	d.Predictor = format.PredictorType(raw[4])

	switch {
	case !d.Type.IsValid():
		return fmt.Errorf("%w: attribute type %d", errs.ErrUnsupportedFormat, raw[0])
	case !d.DataType.IsValid():
		return fmt.Errorf("%w: data type %d", errs.ErrUnsupportedFormat, raw[1])
	case !d.Predictor.IsValid():
		return fmt.Errorf("%w: predictor %d", errs.ErrUnsupportedFormat, raw[4])
	case d.Components == 0:
		return fmt.Errorf("%w: zero components", errs.ErrAttributeMismatch)
	case d.QuantizationBits > quantize.MaxBits:
		return fmt.Errorf("%w: %d bits", errs.ErrInvalidQuantization, d.QuantizationBits)
	case d.Quantized() && !d.DataType.IsFloat():
		return fmt.Errorf("%w: quantized %s attribute", errs.ErrAttributeMismatch, d.DataType)
	}

	n, err := readCount(r, "values")
	if err != nil {
		return err
	}
	d.NumValues = n

	mapping, err := r.ReadByte()
	if err != nil {
		return err
	}

	d.Mapping = format.MappingMode(mapping)
	if !d.Mapping.IsValid() {
		return fmt.Errorf("%w: mapping mode %d", errs.ErrUnsupportedFormat, mapping)
	}

	d.Mins, d.Range = nil, 0
	if !d.Quantized() {
		return nil
	}

	d.Mins = make([]float32, d.Components)
	for i := range d.Mins {
		if d.Mins[i], err = r.ReadFloat32(); err != nil {
			return err
		}
	}

	d.Range, err = r.ReadFloat32()

	return err
}

// AttributeSection is a descriptor with its mapping and residual payloads.
type AttributeSection struct {
	Descriptor AttributeDescriptor
	// MappingPayload is the entropy-coded mapping stream, MappingExplicit only.
	MappingPayload []byte
	// Payload is the entropy-coded residual stream.
	Payload []byte
}

// Write serializes the section.
func (s *AttributeSection) Write(w *bitio.Writer) {
	s.Descriptor.Write(w)
	if s.Descriptor.Mapping == format.MappingExplicit {
		w.WriteSection(s.MappingPayload)
	}
	w.WriteSection(s.Payload)
}

// Parse reads a section. Payload slices alias the reader's buffer.
func (s *AttributeSection) Parse(r *bitio.Reader) error {
	if err := s.Descriptor.Parse(r); err != nil {
		return err
	}

	var err error
	s.MappingPayload = nil
	if s.Descriptor.Mapping == format.MappingExplicit {
		if s.MappingPayload, err = r.ReadSection(); err != nil {
			return err
		}
	}

	s.Payload, err = r.ReadSection()

	return err
}

// ConnectivitySection is the method tag and payload of a mesh's faces.
type ConnectivitySection struct {
	Method  format.ConnectivityMethod
	Payload []byte
}

// Write serializes the section.
func (s *ConnectivitySection) Write(w *bitio.Writer) {
	_ = w.WriteByte(byte(s.Method))
	w.WriteSection(s.Payload)
}

// Parse reads a section. The payload aliases the reader's buffer.
func (s *ConnectivitySection) Parse(r *bitio.Reader) error {
	method, err := r.ReadByte()
	if err != nil {
		return err
	}

	s.Method = format.ConnectivityMethod(method)
	if !s.Method.IsValid() {
		return fmt.Errorf("%w: connectivity method %d", errs.ErrUnsupportedFormat, method)
	}

	s.Payload, err = r.ReadSection()

	return err
}
