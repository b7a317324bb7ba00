package entropy

import (
	"fmt"

	"github.com/arloliu/meshpack/errs"
	"github.com/arloliu/meshpack/internal/bitio"
)

const (
	// stateBits is the precision of the arithmetic coding state.
	stateBits = 32
	// stateMax is the maximum value of the state (2^32 - 1).
	stateMax uint64 = (1 << stateBits) - 1
	// half is the midpoint of the state range.
	half uint64 = 1 << (stateBits - 1)
	// quarter is one quarter of the state range.
	quarter uint64 = 1 << (stateBits - 2)

	// rawChunkBits is the widest group of extra bits coded as one uniform symbol.
	rawChunkBits = 16
)

// arithEncoder narrows an interval per coded symbol and emits settled bits
// to a bitio.Writer.
type arithEncoder struct {
	out         *bitio.Writer
	low         uint64
	high        uint64
	pendingBits int
}

func newArithEncoder(w *bitio.Writer) *arithEncoder {
	return &arithEncoder{out: w, high: stateMax}
}

// encode narrows the interval to [symLow, symHigh) out of total.
func (e *arithEncoder) encode(symLow, symHigh, total uint64) {
	rangeSize := e.high - e.low + 1
	e.high = e.low + (rangeSize*symHigh)/total - 1
	e.low += (rangeSize * symLow) / total

	for {
		switch {
		case e.high < half:
			e.emit(0)
		case e.low >= half:
			e.emit(1)
			e.low -= half
			e.high -= half
		case e.low >= quarter && e.high < 3*quarter:
			e.pendingBits++
			e.low -= quarter
			e.high -= quarter
		default:
			return
		}

		e.low = (e.low << 1) & stateMax
		e.high = ((e.high << 1) & stateMax) | 1
	}
}

// encodeRaw codes the low n bits of v with a uniform model.
func (e *arithEncoder) encodeRaw(v uint64, n int) {
	for n > 0 {
		k := min(n, rawChunkBits)
		n -= k
		chunk := (v >> n) & ((1 << k) - 1)
		e.encode(chunk, chunk+1, 1<<k)
	}
}

// emit writes bit followed by any pending underflow bits of the opposite value.
func (e *arithEncoder) emit(bit uint64) {
	e.out.WriteBit(bit)
	for ; e.pendingBits > 0; e.pendingBits-- {
		e.out.WriteBit(bit ^ 1)
	}
}

// close writes enough bits to disambiguate the final interval.
func (e *arithEncoder) close() {
	e.pendingBits++
	if e.low < quarter {
		e.emit(0)
	} else {
		e.emit(1)
	}
	e.out.Align()
}

// arithDecoder mirrors arithEncoder. Bits past the end of the input read as zero.
type arithDecoder struct {
	in    *bitio.Reader
	low   uint64
	high  uint64
	value uint64
}

func newArithDecoder(r *bitio.Reader) *arithDecoder {
	d := &arithDecoder{in: r, high: stateMax}
	for range stateBits {
		d.value = (d.value << 1) | d.nextBit()
	}

	return d
}

func (d *arithDecoder) nextBit() uint64 {
	bit, err := d.in.ReadBit()
	if err != nil {
		return 0
	}

	return bit
}

// target returns the cumulative frequency the current value points at.
func (d *arithDecoder) target(total uint64) (uint64, error) {
	if d.value < d.low || d.value > d.high {
		return 0, fmt.Errorf("%w: arithmetic state out of interval", errs.ErrEntropyTableCorrupt)
	}
	rangeSize := d.high - d.low + 1

	return ((d.value-d.low+1)*total - 1) / rangeSize, nil
}

// consume narrows the interval exactly like arithEncoder.encode.
func (d *arithDecoder) consume(symLow, symHigh, total uint64) {
	rangeSize := d.high - d.low + 1
	d.high = d.low + (rangeSize*symHigh)/total - 1
	d.low += (rangeSize * symLow) / total

	for {
		switch {
		case d.high < half:
		case d.low >= half:
			d.low -= half
			d.high -= half
			d.value -= half
		case d.low >= quarter && d.high < 3*quarter:
			d.low -= quarter
			d.high -= quarter
			d.value -= quarter
		default:
			return
		}

		d.low = (d.low << 1) & stateMax
		d.high = ((d.high << 1) & stateMax) | 1
		d.value = ((d.value << 1) & stateMax) | d.nextBit()
	}
}

// decodeToken decodes one token against table.
func (d *arithDecoder) decodeToken(t *freqTable) (uint8, error) {
	cum, err := d.target(t.total())
	if err != nil {
		return 0, err
	}

	tok, ok := t.find(cum)
	if !ok {
		return 0, fmt.Errorf("%w: cumulative frequency %d out of table", errs.ErrEntropyTableCorrupt, cum)
	}
	low, high := t.rangeOf(tok)
	d.consume(low, high, t.total())

	return tok, nil
}

// decodeRaw decodes n bits coded by encodeRaw.
func (d *arithDecoder) decodeRaw(n int) (uint64, error) {
	var v uint64
	for n > 0 {
		k := min(n, rawChunkBits)
		n -= k
		total := uint64(1) << k
		chunk, err := d.target(total)
		if err != nil {
			return 0, err
		}
		d.consume(chunk, chunk+1, total)
		v = v<<k | chunk
	}

	return v, nil
}

// encodeArithmetic writes the frequency table followed by a section holding
// the coded tokens and their extra bits.
func encodeArithmetic(w *bitio.Writer, symbols []uint64) {
	tokens := make([]uint8, len(symbols))
	for i, s := range symbols {
		tokens[i], _, _ = tokenize(s)
	}

	table := buildTable(tokens)
	table.write(w)

	coded := bitio.NewWriter()
	defer coded.Release()

	enc := newArithEncoder(coded)
	total := table.total()
	for i, s := range symbols {
		_, extra, n := tokenize(s)
		low, high := table.rangeOf(tokens[i])
		enc.encode(low, high, total)
		if n > 0 {
			enc.encodeRaw(extra, n)
		}
	}
	enc.close()

	w.WriteSection(coded.Bytes())
}

func decodeArithmetic(r *bitio.Reader, out []uint64) error {
	table, err := readTable(r)
	if err != nil {
		return err
	}

	coded, err := r.ReadSection()
	if err != nil {
		return err
	}

	dec := newArithDecoder(bitio.NewReader(coded))
	for i := range out {
		tok, err := dec.decodeToken(table)
		if err != nil {
			return err
		}

		var extra uint64
		if n := extraBitsOf(tok); n > 0 {
			if extra, err = dec.decodeRaw(n); err != nil {
				return err
			}
		}
		out[i] = detokenize(tok, extra)
	}

	return nil
}
