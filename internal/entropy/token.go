package entropy

import "math/bits"

const (
	// directTokens is the number of symbols that are their own token.
	directTokens = 16
	// MaxTokens is the size of the largest possible token alphabet.
	MaxTokens = directTokens + 64 - 4
)

// tokenize splits a symbol into its token and extra bits.
func tokenize(s uint64) (tok uint8, extra uint64, nExtra int) {
	if s < directTokens {
		return uint8(s), 0, 0
	}

	n := bits.Len64(s)
	nExtra = n - 1

	return uint8(directTokens + n - 5), s &^ (1 << nExtra), nExtra
}

// extraBitsOf returns the number of extra bits that follow tok.
func extraBitsOf(tok uint8) int {
	if tok < directTokens {
		return 0
	}

	return int(tok) - directTokens + 4
}

// detokenize rebuilds a symbol from its token and extra bits.
func detokenize(tok uint8, extra uint64) uint64 {
	if tok < directTokens {
		return uint64(tok)
	}

	return 1<<extraBitsOf(tok) | extra
}
