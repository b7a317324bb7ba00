package entropy

import (
	"fmt"
	"sort"

	"github.com/arloliu/meshpack/errs"
	"github.com/arloliu/meshpack/internal/bitio"
)

// maxTableTotal bounds the sum of scaled frequencies. The arithmetic coder
// needs total <= quarter of its state range; 2^16 keeps every product of
// range and frequency inside 64 bits.
const maxTableTotal = 1 << 16

// freqTable is a static order-0 model over tokens.
type freqTable struct {
	freqs []uint64 // per-token frequency, zero for unused tokens
	cum   []uint64 // cum[i] = sum(freqs[:i]), len(freqs)+1 entries
}

// buildTable scans tokens and returns a table scaled to maxTableTotal.
func buildTable(tokens []uint8) *freqTable {
	alphabet := 0
	counts := make([]uint64, MaxTokens)
	for _, tok := range tokens {
		counts[tok]++
		if int(tok)+1 > alphabet {
			alphabet = int(tok) + 1
		}
	}
	counts = counts[:alphabet]

	total := uint64(len(tokens))
	if total > maxTableTotal-MaxTokens {
		target := uint64(maxTableTotal - MaxTokens)
		for i, c := range counts {
			if c == 0 {
				continue
			}
			scaled := c * target / total
			if scaled == 0 {
				scaled = 1
			}
			counts[i] = scaled
		}
	}

	return newFreqTable(counts)
}

func newFreqTable(freqs []uint64) *freqTable {
	cum := make([]uint64, len(freqs)+1)
	for i, f := range freqs {
		cum[i+1] = cum[i] + f
	}

	return &freqTable{freqs: freqs, cum: cum}
}

// total returns the sum of all frequencies.
func (t *freqTable) total() uint64 {
	return t.cum[len(t.freqs)]
}

// rangeOf returns the cumulative range [low, high) of tok.
func (t *freqTable) rangeOf(tok uint8) (low, high uint64) {
	return t.cum[tok], t.cum[tok+1]
}

// find returns the token whose cumulative range contains target.
func (t *freqTable) find(target uint64) (uint8, bool) {
	if target >= t.total() {
		return 0, false
	}
	i := sort.Search(len(t.freqs), func(i int) bool {
		return t.cum[i+1] > target
	})

	return uint8(i), i < len(t.freqs) //nolint:gosec
}

// write stores the table as uvarint alphabet size followed by uvarint frequencies.
func (t *freqTable) write(w *bitio.Writer) {
	w.WriteUvarint(uint64(len(t.freqs)))
	for _, f := range t.freqs {
		w.WriteUvarint(f)
	}
}

// readTable parses a table written by write and validates its bounds.
func readTable(r *bitio.Reader) (*freqTable, error) {
	alphabet, err := r.ReadUvarint()
	if err != nil {
		return nil, err
	}

	if alphabet == 0 || alphabet > MaxTokens {
		return nil, fmt.Errorf("%w: alphabet size %d", errs.ErrEntropyTableCorrupt, alphabet)
	}

	freqs := make([]uint64, alphabet)
	var total uint64
	for i := range freqs {
		f, err := r.ReadUvarint()
		if err != nil {
			return nil, err
		}

		if f > maxTableTotal {
			return nil, fmt.Errorf("%w: frequency %d exceeds %d", errs.ErrEntropyTableCorrupt, f, maxTableTotal)
		}
		freqs[i] = f
		total += f
	}

	if total == 0 || total > maxTableTotal {
		return nil, fmt.Errorf("%w: frequency total %d", errs.ErrEntropyTableCorrupt, total)
	}

	return newFreqTable(freqs), nil
}
