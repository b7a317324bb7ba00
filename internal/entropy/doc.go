// Package entropy implements the order-0 entropy coders used for every symbol
// stream in meshpack: attribute residuals, mapping streams and connectivity.
//
// Symbols are arbitrary uint64 values. Before coding, each symbol is split
// into a token from a bounded alphabet and a number of raw extra bits:
//
//	symbol 0..15          -> token = symbol, no extra bits
//	symbol with n >= 5 bits -> token = 16 + n - 5, n-1 extra bits
//
// so the token alphabet never exceeds 76 entries regardless of the symbol
// range, which keeps every coding table small.
//
// Three backends share that tokenization and are selected per payload by a
// leading method byte:
//
//   - Arithmetic: a 32-bit binary arithmetic coder driven by a static
//     frequency table that is scanned from the input and stored in the payload.
//   - Huffman: huff0 blocks from github.com/klauspost/compress.
//   - FSE: finite state entropy blocks from github.com/klauspost/compress.
//
// Decoding rebuilds the table from the payload alone. Any inconsistency is
// reported as errs.ErrEntropyTableCorrupt. The package holds no mutable
// package-level state.
package entropy
