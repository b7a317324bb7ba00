package entropy

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/fse"
	"github.com/klauspost/compress/huff0"

	"github.com/arloliu/meshpack/errs"
	"github.com/arloliu/meshpack/internal/bitio"
)

// maxBlockTokens is the largest token block handed to huff0 or fse.
const maxBlockTokens = huff0.BlockSizeMax

const fseLimitSlack = 1024

// blockMode tags how a token block is stored.
type blockMode uint8

const (
	blockRaw  blockMode = 0 // tokens stored verbatim
	blockRLE  blockMode = 1 // single token repeated
	blockCode blockMode = 2 // backend-compressed tokens
)

// blockCodec is one backend able to compress a token block.
type blockCodec struct {
	name       string
	compress   func(in []byte) ([]byte, error)
	decompress func(in []byte, n int) ([]byte, error)
}

var huffmanCodec = blockCodec{
	name: "huffman",
	compress: func(in []byte) ([]byte, error) {
		s := &huff0.Scratch{Reuse: huff0.ReusePolicyNone}
		out, _, err := huff0.Compress1X(in, s)

		return out, mapBlockErr(err, huff0.ErrUseRLE)
	},
	decompress: func(in []byte, n int) ([]byte, error) {
		s, remain, err := huff0.ReadTable(in, &huff0.Scratch{})
		if err != nil {
			return nil, err
		}

		return s.Decoder().Decompress1X(make([]byte, 0, n), remain)
	},
}

var fseCodec = blockCodec{
	name: "fse",
	compress: func(in []byte) ([]byte, error) {
		out, err := fse.Compress(in, &fse.Scratch{})

		return out, mapBlockErr(err, fse.ErrUseRLE)
	},
	decompress: func(in []byte, n int) ([]byte, error) {
		// fse checks its limit per flushed chunk, so leave one chunk of headroom.
		return fse.Decompress(in, &fse.Scratch{DecompressLimit: n + fseLimitSlack})
	},
}

var (
	errUseRaw = errors.New("block stored raw")
	errUseRLE = errors.New("block stored as run")
)

// mapBlockErr folds backend refusals into raw or run-length storage.
func mapBlockErr(err, rle error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, rle):
		return errUseRLE
	default:
		return errUseRaw
	}
}

// encodeBlocks writes tokens as a series of blocks followed by a section of
// raw extra bits.
//
// Each block is: mode byte, uvarint token count, then
//   - raw:  count bytes
//   - rle:  one byte
//   - code: uvarint length + backend bytes
func encodeBlocks(w *bitio.Writer, symbols []uint64, codec blockCodec) {
	tokens := make([]uint8, len(symbols))
	extra := bitio.NewWriter()
	defer extra.Release()

	for i, s := range symbols {
		tok, bits, n := tokenize(s)
		tokens[i] = tok
		extra.WriteBits(bits, n)
	}

	for start := 0; start < len(tokens); start += maxBlockTokens {
		block := tokens[start:min(start+maxBlockTokens, len(tokens))]
		out, err := codec.compress(block)
		switch {
		case errors.Is(err, errUseRLE):
			_ = w.WriteByte(byte(blockRLE))
			w.WriteUvarint(uint64(len(block)))
			_ = w.WriteByte(block[0])
		case err != nil || len(out) >= len(block):
			_ = w.WriteByte(byte(blockRaw))
			w.WriteUvarint(uint64(len(block)))
			w.WriteBytes(block)
		default:
			_ = w.WriteByte(byte(blockCode))
			w.WriteUvarint(uint64(len(block)))
			w.WriteSection(out)
		}
	}

	w.WriteSection(extra.Bytes())
}

// decodeBlocks reverses encodeBlocks, filling out completely.
func decodeBlocks(r *bitio.Reader, out []uint64, codec blockCodec) error {
	tokens := make([]uint8, 0, len(out))
	for len(tokens) < len(out) {
		mode, err := r.ReadByte()
		if err != nil {
			return err
		}

		n, err := r.ReadUvarint()
		if err != nil {
			return err
		}

		remaining := uint64(len(out) - len(tokens))
		if n == 0 || n > remaining || n > maxBlockTokens {
			return fmt.Errorf("%w: %s block of %d tokens, %d remaining", errs.ErrEntropyTableCorrupt, codec.name, n, remaining)
		}

		switch blockMode(mode) {
		case blockRaw:
			raw, err := r.ReadBytes(int(n))
			if err != nil {
				return err
			}
			tokens = append(tokens, raw...)
		case blockRLE:
			tok, err := r.ReadByte()
			if err != nil {
				return err
			}
			for range n {
				tokens = append(tokens, tok)
			}
		case blockCode:
			comp, err := r.ReadSection()
			if err != nil {
				return err
			}

			dec, err := codec.decompress(comp, int(n))
			if err != nil {
				return fmt.Errorf("%w: %s block: %w", errs.ErrEntropyTableCorrupt, codec.name, err)
			}

			if len(dec) != int(n) {
				return fmt.Errorf("%w: %s block decoded %d of %d tokens", errs.ErrEntropyTableCorrupt, codec.name, len(dec), n)
			}
			tokens = append(tokens, dec...)
		default:
			return fmt.Errorf("%w: unknown block mode %d", errs.ErrEntropyTableCorrupt, mode)
		}
	}

	extraData, err := r.ReadSection()
	if err != nil {
		return err
	}

	extra := bitio.NewReader(extraData)
	for i, tok := range tokens {
		if tok >= MaxTokens {
			return fmt.Errorf("%w: token %d out of alphabet", errs.ErrEntropyTableCorrupt, tok)
		}

		bits, err := extra.ReadBits(extraBitsOf(tok))
		if err != nil {
			return err
		}
		out[i] = detokenize(tok, bits)
	}

	return nil
}
