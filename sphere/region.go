package sphere

import (
	"fmt"
	"math"
)

// Region is a set of shells, each one holding its holes,
// assembled from independently given rings.
//
// Rings must be added so that a containing ring always comes before
// the rings it contains: previously added boundaries are never
// reclassified or moved.
// A Region is not safe for concurrent use.
type Region struct {
	shells []*Boundary
}

// Add classifies `ring` and inserts it in the region.
//
// The first vertex of the ring is tested against every boundary already
// added. When an even number of them contains it, the ring is a new
// top-level shell. Otherwise it is a hole, attached to the smallest
// enclosing shell, as measured by the squared magnitude of the normals.
// Holes are attached to shells only: a ring nested in a hole is counted
// at an even depth and becomes a new top-level shell.
//
// An empty ring yields ErrInvalidRing. Classification failures yield
// ErrDegenerateGeometry. In both cases the region is unchanged.
func (rg *Region) Add(ring *Ring) (*Boundary, error) {
	if ring == nil || ring.Len() == 0 {
		return nil, ErrInvalidRing
	}
	b := newBoundary(ring)
	probe := b.ring.At(0)

	var (
		depth    int
		parent   *Boundary
		smallest = math.Inf(1)
	)
	for _, shell := range rg.shells {
		in, err := shell.Contains(probe)
		if err != nil {
			return nil, fmt.Errorf("classifying ring %d: %w", rg.Len()+1, err)
		}
		if in {
			depth++
			if area := shell.Normal().Norm2(); area < smallest {
				smallest, parent = area, shell
			}
		}
		for _, hole := range shell.children {
			in, err := hole.Contains(probe)
			if err != nil {
				return nil, fmt.Errorf("classifying ring %d: %w", rg.Len()+1, err)
			}
			if in {
				depth++
			}
		}
	}

	isHole := depth%2 == 1
	if isHole && parent == nil {
		return nil, fmt.Errorf("classifying ring %d: hole outside of every shell: %w", rg.Len()+1, ErrDegenerateGeometry)
	}
	if err := b.SetHole(isHole); err != nil {
		return nil, fmt.Errorf("classifying ring %d: %w", rg.Len()+1, err)
	}

	if isHole {
		parent.children = append(parent.children, b)
	} else {
		rg.shells = append(rg.shells, b)
	}
	return b, nil
}

// Shells returns the top-level shells, in insertion order.
func (rg *Region) Shells() []*Boundary { return rg.shells }

// Boundaries returns every boundary, each shell followed
// by its holes.
func (rg *Region) Boundaries() []*Boundary {
	out := make([]*Boundary, 0, rg.Len())
	rg.Walk(func(b, _ *Boundary) { out = append(out, b) })
	return out
}

// Walk calls fn for each shell, with a nil parent, then for each
// of its holes, with the shell as parent.
func (rg *Region) Walk(fn func(b, parent *Boundary)) {
	for _, shell := range rg.shells {
		fn(shell, nil)
		for _, hole := range shell.children {
			fn(hole, shell)
		}
	}
}

// Len returns the total number of boundaries.
func (rg *Region) Len() int {
	n := len(rg.shells)
	for _, shell := range rg.shells {
		n += len(shell.children)
	}
	return n
}
