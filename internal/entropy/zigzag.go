package entropy

// ZigZag maps a signed value to an unsigned one so that values of small
// magnitude produce small symbols: 0, -1, 1, -2, 2 ... map to 0, 1, 2, 3, 4 ...
func ZigZag(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63)) //nolint:gosec
}

// UnZigZag reverses ZigZag.
func UnZigZag(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1) //nolint:gosec
}

// ZigZagSlice converts signed residuals into symbols.
func ZigZagSlice(values []int64) []uint64 {
	out := make([]uint64, len(values))
	for i, v := range values {
		out[i] = ZigZag(v)
	}

	return out
}

// UnZigZagSlice converts symbols back into signed residuals.
func UnZigZagSlice(symbols []uint64) []int64 {
	out := make([]int64, len(symbols))
	for i, s := range symbols {
		out[i] = UnZigZag(s)
	}

	return out
}
