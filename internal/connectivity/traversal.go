package connectivity

// Topology symbols, one per face.
//
// A face is entered through a gate (a, b) and has third vertex x. Its right
// edge is (b, x) and its left edge is (x, a).
const (
	symC uint64 = iota // x is a new point, both edges become gates
	symS               // both edges become gates, x is referenced
	symL               // only the left edge becomes a gate
	symR               // only the right edge becomes a gate
	symE               // no new gates
	numSymbols
)

// Point references, used for every vertex that is not introduced by C.
const (
	refNew      uint64 = 0 // next unused point
	refRight    uint64 = 1 // other end of the latest live gate at b
	refLeft     uint64 = 2 // other end of the latest live gate at a
	refExplicit uint64 = 3 // refExplicit + k is point count-1-k
)

func pushesRight(sym uint64) bool {
	return sym == symC || sym == symS || sym == symR
}

func pushesLeft(sym uint64) bool {
	return sym == symC || sym == symS || sym == symL
}

// topologySymbol maps the gates a face opens to its symbol.
func topologySymbol(right, left, newVertex bool) uint64 {
	switch {
	case right && left && newVertex:
		return symC
	case right && left:
		return symS
	case left:
		return symL
	case right:
		return symR
	default:
		return symE
	}
}
