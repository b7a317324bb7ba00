package connectivity

import (
	"github.com/arloliu/meshpack/format"
	"github.com/arloliu/meshpack/internal/bitio"
	"github.com/arloliu/meshpack/internal/entropy"
)

// edgeUse records one directed use of an undirected edge.
type edgeUse struct {
	face    int32
	corner  int8 // edge runs from face[corner] to face[corner+1]
	forward bool // face[corner] < face[corner+1]
}

// buildOpposites returns, per face and edge, the face across that edge, or -1.
//
// An edge is traversable only when exactly two distinct faces use it with
// opposite orientation. Degenerate faces contribute no edges.
func buildOpposites(faces [][3]uint32) [][3]int32 {
	uses := make(map[uint64][]edgeUse, len(faces)*3/2)
	for f, face := range faces {
		if face[0] == face[1] || face[1] == face[2] || face[2] == face[0] {
			continue
		}

		for k := range 3 {
			u, v := face[k], face[(k+1)%3]
			key := pairKey(u, v)
			uses[key] = append(uses[key], edgeUse{face: int32(f), corner: int8(k), forward: u < v}) //nolint:gosec
		}
	}

	opp := make([][3]int32, len(faces))
	for i := range opp {
		opp[i] = [3]int32{-1, -1, -1}
	}

	for _, list := range uses {
		if len(list) != 2 {
			continue
		}

		x, y := list[0], list[1]
		if x.face == y.face || x.forward == y.forward {
			continue
		}
		opp[x.face][x.corner] = y.face
		opp[y.face][y.corner] = x.face
	}

	return opp
}

type traversalEncoder struct {
	faces    [][3]uint32
	opp      [][3]int32
	visited  []bool
	newIndex []int32
	order    []uint32
	gates    *gateTable
	gateFace []int32

	topology []uint64
	refs     []uint64
	seeds    []uint64
	out      [][3]uint32
}

func encodeTraversal(method format.EntropyMethod, faces [][3]uint32, numPoints int) (*Result, error) {
	e := &traversalEncoder{
		faces:    faces,
		opp:      buildOpposites(faces),
		visited:  make([]bool, len(faces)),
		newIndex: make([]int32, numPoints),
		order:    make([]uint32, 0, numPoints),
		gates:    newGateTable(numPoints),
		topology: make([]uint64, 0, len(faces)),
		out:      make([][3]uint32, 0, len(faces)),
	}
	for i := range e.newIndex {
		e.newIndex[i] = -1
	}

	nextSeed := 0
	for len(e.out) < len(faces) {
		id, g, ok := e.gates.pop()
		if !ok {
			for e.visited[nextSeed] {
				nextSeed++
			}
			e.seed(nextSeed)

			continue
		}
		e.enter(int(e.gateFace[id]), g.a, g.b)
	}

	// Points no face references keep their relative order at the end.
	for old, idx := range e.newIndex {
		if idx < 0 {
			e.assign(uint32(old)) //nolint:gosec
		}
	}

	payload, err := e.payload(method)
	if err != nil {
		return nil, err
	}

	return &Result{Payload: payload, Faces: e.out, Order: e.order}, nil
}

func (e *traversalEncoder) assign(old uint32) {
	e.newIndex[old] = int32(len(e.order)) //nolint:gosec
	e.order = append(e.order, old)
}

func (e *traversalEncoder) unvisitedOpposite(f, corner int) (int32, bool) {
	g := e.opp[f][corner]
	return g, g >= 0 && !e.visited[g]
}

// reference returns the reference symbol for point x of a face entered
// through gate (a, b), numbering x when it is new.
func (e *traversalEncoder) reference(x, a, b uint32, candidates bool) uint64 {
	if e.newIndex[x] < 0 {
		e.assign(x)
		return refNew
	}

	if candidates {
		if c, ok := e.gates.candidate(b); ok && c == x {
			return refRight
		}
		if c, ok := e.gates.candidate(a); ok && c == x {
			return refLeft
		}
	}

	return refExplicit + uint64(len(e.order)-1-int(e.newIndex[x])) //nolint:gosec
}

func (e *traversalEncoder) emit(a, b, x uint32) {
	e.out = append(e.out, [3]uint32{
		uint32(e.newIndex[a]), //nolint:gosec
		uint32(e.newIndex[b]), //nolint:gosec
		uint32(e.newIndex[x]), //nolint:gosec
	})
}

func (e *traversalEncoder) open(a, b uint32, face int32) {
	e.gates.push(a, b)
	e.gateFace = append(e.gateFace, face)
}

// seed starts a new region at face f, keeping its stored rotation.
func (e *traversalEncoder) seed(f int) {
	e.visited[f] = true
	v0, v1, v2 := e.faces[f][0], e.faces[f][1], e.faces[f][2]

	entry, entryOpen := e.unvisitedOpposite(f, 0)
	right, rightOpen := e.unvisitedOpposite(f, 1)
	left, leftOpen := e.unvisitedOpposite(f, 2)

	e.topology = append(e.topology, topologySymbol(rightOpen, leftOpen, false))
	for _, v := range [3]uint32{v0, v1, v2} {
		e.refs = append(e.refs, e.reference(v, 0, 0, false))
	}

	var flag uint64
	if entryOpen {
		flag = 1
	}
	e.seeds = append(e.seeds, flag)
	e.emit(v0, v1, v2)

	if entryOpen {
		e.open(v1, v0, entry)
	}
	if rightOpen {
		e.open(v2, v1, right)
	}
	if leftOpen {
		e.open(v0, v2, left)
	}
}

// enter visits face f through gate (a, b).
func (e *traversalEncoder) enter(f int, a, b uint32) {
	e.visited[f] = true
	face := e.faces[f]
	k := 0
	for face[k] != a || face[(k+1)%3] != b {
		k++
	}
	x := face[(k+2)%3]

	right, rightOpen := e.unvisitedOpposite(f, (k+1)%3)
	left, leftOpen := e.unvisitedOpposite(f, (k+2)%3)

	sym := topologySymbol(rightOpen, leftOpen, e.newIndex[x] < 0)
	e.topology = append(e.topology, sym)
	if sym == symC {
		e.assign(x)
	} else {
		e.refs = append(e.refs, e.reference(x, a, b, true))
	}
	e.emit(a, b, x)

	e.gates.closePair(b, x)
	e.gates.closePair(x, a)
	if rightOpen {
		e.open(x, b, right)
	}
	if leftOpen {
		e.open(a, x, left)
	}
}

// payload lays out uvarint reference count, uvarint seed count and the
// topology, reference and seed-flag streams as entropy sections.
func (e *traversalEncoder) payload(method format.EntropyMethod) ([]byte, error) {
	w := bitio.NewWriter()
	defer w.Release()

	w.WriteUvarint(uint64(len(e.refs)))
	w.WriteUvarint(uint64(len(e.seeds)))
	for _, stream := range [][]uint64{e.topology, e.refs, e.seeds} {
		data, err := entropy.EncodeSymbols(method, stream)
		if err != nil {
			return nil, err
		}
		w.WriteSection(data)
	}

	out := make([]byte, w.Len())
	copy(out, w.Bytes())

	return out, nil
}
