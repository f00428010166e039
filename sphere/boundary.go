package sphere

// Boundary is a closed ring acting as the outer shell of a region
// or as a hole inside a shell.
// Shells and holes carry opposite windings: shells are Negative
// (counter-clockwise on the map) and holes Positive.
type Boundary struct {
	ring        *Ring
	hole        bool
	orientation Orientation
	children    []*Boundary
}

// NewBoundary wraps a copy of `ring`, closed, with the given role.
func NewBoundary(ring *Ring, hole bool) (*Boundary, error) {
	b := newBoundary(ring)
	if err := b.SetHole(hole); err != nil {
		return nil, err
	}
	return b, nil
}

func newBoundary(ring *Ring) *Boundary {
	r := ring.Clone()
	r.Closed = true
	return &Boundary{ring: r}
}

// SetHole sets the role of the boundary, reversing the ring when its
// orientation does not match the role.
// An Ambiguous ring is kept as it is.
// On error, the boundary is left unchanged.
func (b *Boundary) SetHole(hole bool) error {
	o, err := b.ring.Orientation()
	if err != nil {
		return err
	}
	if (hole && o == Negative) || (!hole && o == Positive) {
		b.ring.Reverse()
		o = -o
	}
	b.hole = hole
	b.orientation = o
	return nil
}

// IsHole is true for inner boundaries.
func (b *Boundary) IsHole() bool { return b.hole }

// Orientation returns the orientation of the ring, after normalization.
// It is Ambiguous when the ring winding could not be classified.
func (b *Boundary) Orientation() Orientation { return b.orientation }

// Ring returns the wrapped ring. It must not be modified.
func (b *Boundary) Ring() *Ring { return b.ring }

// Children returns the boundaries directly nested in `b`.
func (b *Boundary) Children() []*Boundary { return b.children }

// Contains reports whether `p` is enclosed by the boundary ring.
func (b *Boundary) Contains(p Point) (bool, error) { return b.ring.Contains(p) }

// Normal returns the ring normal, whose squared magnitude
// is used as an area proxy.
func (b *Boundary) Normal() Vector { return b.ring.Normal() }
