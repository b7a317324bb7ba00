package entropy

import (
	"fmt"

	"github.com/arloliu/meshpack/errs"
	"github.com/arloliu/meshpack/format"
	"github.com/arloliu/meshpack/internal/bitio"
)

// EncodeSymbols entropy-codes symbols with the given method.
//
// The returned payload starts with the method byte and is self-describing:
// DecodeSymbols needs only the payload and the symbol count.
//
// Parameters:
//   - method: the backend to use
//   - symbols: the symbol stream, any uint64 values
//
// Returns:
//   - []byte: the payload, owned by the caller
//   - error: errs.ErrInvalidOption for an unknown method
func EncodeSymbols(method format.EntropyMethod, symbols []uint64) ([]byte, error) {
	if !method.IsValid() {
		return nil, fmt.Errorf("%w: entropy method %d", errs.ErrInvalidOption, method)
	}

	w := bitio.NewWriter()
	_ = w.WriteByte(byte(method))

	if len(symbols) == 0 {
		return w.Finish(), nil
	}

	switch method {
	case format.EntropyArithmetic:
		encodeArithmetic(w, symbols)
	case format.EntropyHuffman:
		encodeBlocks(w, symbols, huffmanCodec)
	case format.EntropyFSE:
		encodeBlocks(w, symbols, fseCodec)
	}

	return w.Finish(), nil
}

// DecodeSymbols decodes exactly count symbols from a payload produced by
// EncodeSymbols. Bytes after the coded symbols are ignored.
//
// Returns errs.ErrTruncatedStream when the payload ends early and
// errs.ErrEntropyTableCorrupt when the stored model is inconsistent.
func DecodeSymbols(payload []byte, count int) ([]uint64, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: negative symbol count %d", errs.ErrEntropyTableCorrupt, count)
	}

	r := bitio.NewReader(payload)
	tag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}

	method := format.EntropyMethod(tag)
	if !method.IsValid() {
		return nil, fmt.Errorf("%w: unknown entropy method %d", errs.ErrEntropyTableCorrupt, tag)
	}

	out := make([]uint64, count)
	if count == 0 {
		return out, nil
	}

	switch method {
	case format.EntropyArithmetic:
		err = decodeArithmetic(r, out)
	case format.EntropyHuffman:
		err = decodeBlocks(r, out, huffmanCodec)
	case format.EntropyFSE:
		err = decodeBlocks(r, out, fseCodec)
	}

	if err != nil {
		return nil, err
	}

	return out, nil
}

// EncodeSigned zigzags residuals and encodes them.
func EncodeSigned(method format.EntropyMethod, values []int64) ([]byte, error) {
	return EncodeSymbols(method, ZigZagSlice(values))
}

// DecodeSigned decodes count symbols and un-zigzags them.
func DecodeSigned(payload []byte, count int) ([]int64, error) {
	symbols, err := DecodeSymbols(payload, count)
	if err != nil {
		return nil, err
	}

	return UnZigZagSlice(symbols), nil
}
