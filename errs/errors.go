// Package errs defines the sentinel errors returned by meshpack.
//
// Every failure surfaced by the encoder or decoder wraps exactly one of these
// sentinels, so callers can classify errors with errors.Is:
//
//	g, err := meshpack.Decode(data)
//	if errors.Is(err, errs.ErrTruncatedStream) {
//	    // input was cut short
//	}
package errs

import "errors"

// Decode-side errors.
var (
	// ErrTruncatedStream indicates the buffer is shorter than a section claims.
	ErrTruncatedStream = errors.New("truncated stream")
	// ErrUnsupportedFormat indicates a bad magic tag, major version or geometry kind.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrEntropyTableCorrupt indicates an entropy table or coded stream that is
	// inconsistent with the declared symbol count.
	ErrEntropyTableCorrupt = errors.New("entropy table corrupt")
	// ErrConnectivityInconsistency indicates an invalid face/corner reference or
	// an illegal traversal symbol.
	ErrConnectivityInconsistency = errors.New("connectivity inconsistency")
	// ErrAttributeMismatch indicates a declared value count or descriptor that is
	// inconsistent with the point or face count.
	ErrAttributeMismatch = errors.New("attribute mismatch")
	// ErrChecksumMismatch indicates the stored body checksum does not match.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrLimitExceeded indicates a header count above the decoder's configured limit.
	ErrLimitExceeded = errors.New("limit exceeded")
)

// Encode-side errors.
var (
	// ErrInvalidQuantization indicates a quantization bit depth out of the supported range.
	ErrInvalidQuantization = errors.New("invalid quantization")
	// ErrEmptyGeometry indicates an attempt to encode a geometry with zero points.
	ErrEmptyGeometry = errors.New("empty geometry")
	// ErrInvalidGeometry indicates a geometry that violates its own invariants.
	ErrInvalidGeometry = errors.New("invalid geometry")
	// ErrInvalidOption indicates an out-of-range encoder or decoder option.
	ErrInvalidOption = errors.New("invalid option")
)
