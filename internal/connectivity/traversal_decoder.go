package connectivity

import (
	"fmt"

	"github.com/arloliu/meshpack/errs"
	"github.com/arloliu/meshpack/internal/bitio"
	"github.com/arloliu/meshpack/internal/entropy"
)

type traversalDecoder struct {
	numPoints int
	count     int
	gates     *gateTable

	topology []uint64
	refs     []uint64
	seeds    []uint64
	ri, si   int
	faces    [][3]uint32
}

func decodeTraversal(payload []byte, numFaces, numPoints int) (*Result, error) {
	r := bitio.NewReader(payload)
	refCount, err := r.ReadUvarint()
	if err != nil {
		return nil, err
	}

	seedCount, err := r.ReadUvarint()
	if err != nil {
		return nil, err
	}

	if refCount > 3*uint64(numFaces) || seedCount > uint64(numFaces) {
		return nil, fmt.Errorf("%w: %d references and %d seeds for %d faces",
			errs.ErrConnectivityInconsistency, refCount, seedCount, numFaces)
	}

	var streams [3][]byte
	for i := range streams {
		if streams[i], err = r.ReadSection(); err != nil {
			return nil, err
		}
	}

	d := &traversalDecoder{
		numPoints: numPoints,
		gates:     newGateTable(numPoints),
		faces:     make([][3]uint32, 0, numFaces),
	}

	if d.topology, err = entropy.DecodeSymbols(streams[0], numFaces); err != nil {
		return nil, err
	}
	if d.refs, err = entropy.DecodeSymbols(streams[1], int(refCount)); err != nil { //nolint:gosec
		return nil, err
	}
	if d.seeds, err = entropy.DecodeSymbols(streams[2], int(seedCount)); err != nil { //nolint:gosec
		return nil, err
	}

	for _, sym := range d.topology {
		if sym >= numSymbols {
			return nil, inconsistent("unknown topology symbol %d at face %d", sym, len(d.faces))
		}

		if _, g, ok := d.gates.pop(); ok {
			err = d.enter(sym, g.a, g.b)
		} else {
			err = d.seed(sym)
		}

		if err != nil {
			return nil, err
		}
	}

	switch {
	case d.gates.live != 0:
		return nil, inconsistent("%d gates left open", d.gates.live)
	case d.ri != len(d.refs):
		return nil, inconsistent("%d of %d references used", d.ri, len(d.refs))
	case d.si != len(d.seeds):
		return nil, inconsistent("%d of %d seeds used", d.si, len(d.seeds))
	}

	return &Result{Faces: d.faces, Order: identityOrder(numPoints)}, nil
}

func inconsistent(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errs.ErrConnectivityInconsistency}, args...)...)
}

func (d *traversalDecoder) newPoint() (uint32, error) {
	if d.count >= d.numPoints {
		return 0, inconsistent("more than %d points referenced", d.numPoints)
	}
	d.count++

	return uint32(d.count - 1), nil //nolint:gosec
}

// reference resolves the next reference symbol for a face entered through
// gate (a, b). Seeds have no gate and may not use candidates.
func (d *traversalDecoder) reference(a, b uint32, seed bool) (uint32, error) {
	if d.ri >= len(d.refs) {
		return 0, inconsistent("reference stream exhausted at face %d", len(d.faces))
	}
	ref := d.refs[d.ri]
	d.ri++

	switch {
	case ref == refNew:
		return d.newPoint()
	case ref == refRight && !seed:
		if c, ok := d.gates.candidate(b); ok {
			return c, nil
		}
	case ref == refLeft && !seed:
		if c, ok := d.gates.candidate(a); ok {
			return c, nil
		}
	case ref >= refExplicit:
		if k := ref - refExplicit; k < uint64(d.count) {
			return uint32(uint64(d.count) - 1 - k), nil //nolint:gosec
		}
	}

	return 0, inconsistent("reference %d cannot be resolved at face %d", ref, len(d.faces))
}

func (d *traversalDecoder) seed(sym uint64) error {
	if sym == symC {
		return inconsistent("region starts with C at face %d", len(d.faces))
	}

	var v [3]uint32
	for i := range v {
		p, err := d.reference(0, 0, true)
		if err != nil {
			return err
		}
		v[i] = p
	}

	if d.si >= len(d.seeds) {
		return inconsistent("seed stream exhausted at face %d", len(d.faces))
	}
	flag := d.seeds[d.si]
	d.si++

	if flag > 1 {
		return inconsistent("seed flag %d", flag)
	}
	d.faces = append(d.faces, v)

	if flag == 1 {
		if err := d.open(v[1], v[0]); err != nil {
			return err
		}
	}
	if pushesRight(sym) {
		if err := d.open(v[2], v[1]); err != nil {
			return err
		}
	}
	if pushesLeft(sym) {
		if err := d.open(v[0], v[2]); err != nil {
			return err
		}
	}

	return nil
}

func (d *traversalDecoder) enter(sym uint64, a, b uint32) error {
	var (
		x   uint32
		err error
	)
	if sym == symC {
		x, err = d.newPoint()
	} else {
		x, err = d.reference(a, b, false)
	}

	if err != nil {
		return err
	}

	if x == a || x == b {
		return inconsistent("face %d collapses onto its gate", len(d.faces))
	}
	d.faces = append(d.faces, [3]uint32{a, b, x})

	rightClosed := d.gates.closePair(b, x)
	leftClosed := d.gates.closePair(x, a)
	if pushesRight(sym) {
		if rightClosed {
			return inconsistent("face %d reopens a closed right edge", len(d.faces)-1)
		}
		if err := d.open(x, b); err != nil {
			return err
		}
	}
	if pushesLeft(sym) {
		if leftClosed {
			return inconsistent("face %d reopens a closed left edge", len(d.faces)-1)
		}
		if err := d.open(a, x); err != nil {
			return err
		}
	}

	return nil
}

func (d *traversalDecoder) open(a, b uint32) error {
	if a == b || d.gates.pending(a, b) {
		return inconsistent("invalid gate (%d, %d) at face %d", a, b, len(d.faces)-1)
	}
	d.gates.push(a, b)

	return nil
}
