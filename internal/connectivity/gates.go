package connectivity

// gate is a boundary edge of the region built so far. The face beyond the
// gate has not been visited yet and contains the directed edge a -> b.
type gate struct {
	a, b uint32
}

// gateTable is an arena of gates with a LIFO stack, a lookup by undirected
// vertex pair and per-vertex lists used to resolve candidate references.
// Encoder and decoder drive identical tables, so their states never diverge.
type gateTable struct {
	gates    []gate
	alive    []bool
	stack    []int32
	byPair   map[uint64]int32
	byVertex [][]int32
	live     int
}

func newGateTable(numPoints int) *gateTable {
	return &gateTable{
		byPair:   make(map[uint64]int32),
		byVertex: make([][]int32, numPoints),
	}
}

// push opens gate (a, b) and returns its id.
func (t *gateTable) push(a, b uint32) int32 {
	id := int32(len(t.gates)) //nolint:gosec
	t.gates = append(t.gates, gate{a: a, b: b})
	t.alive = append(t.alive, true)
	t.stack = append(t.stack, id)
	t.byPair[pairKey(a, b)] = id
	t.byVertex[a] = append(t.byVertex[a], id)
	t.byVertex[b] = append(t.byVertex[b], id)
	t.live++

	return id
}

// pop removes and returns the most recently opened live gate.
func (t *gateTable) pop() (int32, gate, bool) {
	for len(t.stack) > 0 {
		id := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		if t.alive[id] {
			t.kill(id)
			return id, t.gates[id], true
		}
	}

	return -1, gate{}, false
}

// pending reports whether a live gate spans the undirected pair {u, v}.
func (t *gateTable) pending(u, v uint32) bool {
	_, ok := t.byPair[pairKey(u, v)]
	return ok
}

// closePair closes the live gate spanning {u, v}, if any.
func (t *gateTable) closePair(u, v uint32) bool {
	id, ok := t.byPair[pairKey(u, v)]
	if ok {
		t.kill(id)
	}

	return ok
}

// candidate returns the other endpoint of the latest live gate at v.
func (t *gateTable) candidate(v uint32) (uint32, bool) {
	list := t.byVertex[v]
	for len(list) > 0 && !t.alive[list[len(list)-1]] {
		list = list[:len(list)-1]
	}
	t.byVertex[v] = list

	if len(list) == 0 {
		return 0, false
	}

	g := t.gates[list[len(list)-1]]
	if g.a == v {
		return g.b, true
	}

	return g.a, true
}

func (t *gateTable) kill(id int32) {
	t.alive[id] = false
	g := t.gates[id]
	delete(t.byPair, pairKey(g.a, g.b))
	t.live--
}

func pairKey(u, v uint32) uint64 {
	if u > v {
		u, v = v, u
	}

	return uint64(u)<<32 | uint64(v)
}
