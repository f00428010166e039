package sphere

import (
	"fmt"
	"math"
	"strings"
)

// degenerateTolerance bounds the sine of the angle under which two
// directions are considered aligned by the winding computation.
const degenerateTolerance = 1e-12

// Orientation classifies the winding of a ring.
type Orientation int8

const (
	Negative  Orientation = -1
	Ambiguous Orientation = 0
	Positive  Orientation = 1
)

func (o Orientation) String() string {
	switch o {
	case Negative:
		return "negative"
	case Ambiguous:
		return "ambiguous"
	case Positive:
		return "positive"
	default:
		return fmt.Sprintf("Orientation(%d)", int8(o))
	}
}

// Ring is an ordered sequence of points. When Closed is true,
// the last vertex is implicitly connected to the first one;
// the stored sequence never repeats the first vertex.
// Edges are the short great circle arcs between consecutive vertices.
type Ring struct {
	points []Point
	Closed bool
}

// NewRing returns a ring using the given vertices.
func NewRing(closed bool, points ...Point) *Ring {
	return &Ring{points: append([]Point(nil), points...), Closed: closed}
}

// NewRingFromDegrees builds a ring from (lon, lat) pairs, in degrees.
func NewRingFromDegrees(closed bool, lonLat ...[2]float64) *Ring {
	r := &Ring{points: make([]Point, len(lonLat)), Closed: closed}
	for i, ll := range lonLat {
		r.points[i] = PointFromDegrees(ll[0], ll[1])
	}
	return r
}

// Len returns the number of vertices.
func (r *Ring) Len() int { return len(r.points) }

// At returns the i-th vertex.
func (r *Ring) At(i int) Point { return r.points[i] }

// Set replaces the i-th vertex.
func (r *Ring) Set(i int, p Point) { r.points[i] = p }

// Points returns the vertices. The slice is shared with the ring.
func (r *Ring) Points() []Point { return r.points }

func (r *Ring) Append(p Point) { r.points = append(r.points, p) }

func (r *Ring) Extend(ps ...Point) { r.points = append(r.points, ps...) }

// Insert inserts `p` before the vertex at index `i`.
func (r *Ring) Insert(i int, p Point) {
	r.points = append(r.points, Point{})
	copy(r.points[i+1:], r.points[i:])
	r.points[i] = p
}

// Index returns the index of the first vertex equal to `p`, or -1.
func (r *Ring) Index(p Point) int {
	for i, q := range r.points {
		if q.Equal(p) {
			return i
		}
	}
	return -1
}

// Remove deletes the first vertex equal to `p`.
func (r *Ring) Remove(p Point) error {
	i := r.Index(p)
	if i < 0 {
		return fmt.Errorf("removing %s: %w", p, ErrVertexNotFound)
	}
	r.Delete(i)
	return nil
}

// Delete removes the vertex at index `i`.
func (r *Ring) Delete(i int) {
	r.points = append(r.points[:i], r.points[i+1:]...)
}

// Pop removes and returns the vertex at index `i`.
// Negative indices count from the end, so that Pop(-1) returns the last vertex.
func (r *Ring) Pop(i int) Point {
	if i < 0 {
		i += len(r.points)
	}
	p := r.points[i]
	r.Delete(i)
	return p
}

// Reverse reverses the vertex order in place,
// flipping the sign of the winding computations.
func (r *Ring) Reverse() {
	for i, j := 0, len(r.points)-1; i < j; i, j = i+1, j-1 {
		r.points[i], r.points[j] = r.points[j], r.points[i]
	}
}

// Clear removes every vertex.
func (r *Ring) Clear() { r.points = r.points[:0] }

// Clone returns a deep copy of the ring.
func (r *Ring) Clone() *Ring {
	return &Ring{points: append([]Point(nil), r.points...), Closed: r.Closed}
}

// InsertRing inserts the vertices of `other` before index `at`,
// in their order or reversed.
func (r *Ring) InsertRing(at int, other *Ring, reversed bool) {
	src := other.points
	if reversed {
		src = other.Clone().points
		for i, j := 0, len(src)-1; i < j; i, j = i+1, j-1 {
			src[i], src[j] = src[j], src[i]
		}
	}
	out := make([]Point, 0, len(r.points)+len(src))
	out = append(out, r.points[:at]...)
	out = append(out, src...)
	out = append(out, r.points[at:]...)
	r.points = out
}

// InsertRingAt inserts the vertices of `other` before the first
// vertex equal to `vertex`.
func (r *Ring) InsertRingAt(vertex Point, other *Ring, reversed bool) error {
	i := r.Index(vertex)
	if i < 0 {
		return fmt.Errorf("joining at %s: %w", vertex, ErrVertexNotFound)
	}
	r.InsertRing(i, other, reversed)
	return nil
}

func (r *Ring) String() string {
	chunks := make([]string, len(r.points))
	for i, p := range r.points {
		chunks[i] = p.String()
	}
	return "[" + strings.Join(chunks, ", ") + "]"
}

// edges calls fn for each pair of consecutive vertices,
// including the closing pair when the ring is closed.
func (r *Ring) edges(fn func(a, b Point)) {
	n := len(r.points)
	for i := 0; i+1 < n; i++ {
		fn(r.points[i], r.points[i+1])
	}
	if r.Closed && n > 1 {
		fn(r.points[n-1], r.points[0])
	}
}

// Normal returns the sum of the cross products of consecutive vertices.
// Its direction approximates the area weighted centroid of the ring,
// on the side the ring turns positively around, and its magnitude
// grows with the enclosed area.
// Symmetric rings, such as a great circle split in halves, have a null normal.
func (r *Ring) Normal() Vector {
	var n Vector
	r.edges(func(a, b Point) { n.AddInPlace(a.Cross(b.Vector)) })
	return n
}

// Centroid returns the unit direction of the normal.
// A null normal yields ErrDegenerateGeometry.
func (r *Ring) Centroid() (Point, error) {
	c, err := PointFromVector(r.Normal())
	if err != nil {
		return Point{}, fmt.Errorf("centroid of ring with %d vertices: %w", len(r.points), err)
	}
	return c, nil
}

// WindingArgument returns the signed angle, in radians, swept by the
// vertices around the axis `reference`, measured in the plane
// orthogonal to `reference`. A point enclosed by the ring collects a full
// turn (±2π) while an exterior point collects about zero.
//
// The vertices are projected as c_i = reference × p_i, and each step adds
// the signed angle between c_i and c_{i+1}. A null projection (reference
// aligned with a vertex) or two anti-parallel projections (an edge crossing
// the antipode of reference) have no defined angle and yield
// ErrDegenerateGeometry.
func (r *Ring) WindingArgument(reference Vector) (float64, error) {
	refNorm := reference.Norm()
	if refNorm == 0 {
		return 0, fmt.Errorf("winding around null reference: %w", ErrDegenerateGeometry)
	}
	n := len(r.points)
	if n == 0 {
		return 0, nil
	}
	projected := make([]Vector, n, n+1)
	for i, p := range r.points {
		c := reference.Cross(p.Vector)
		limit := degenerateTolerance * refNorm * p.Norm()
		if c.Norm2() <= limit*limit {
			return 0, fmt.Errorf("winding around %s, aligned with vertex %d: %w",
				Point{reference}, i, ErrDegenerateGeometry)
		}
		projected[i] = c
	}
	if r.Closed {
		projected = append(projected, projected[0])
	}

	var arg float64
	for i := 0; i+1 < len(projected); i++ {
		ci, cj := projected[i], projected[i+1]
		sin := reference.Dot(ci.Cross(cj)) / refNorm
		cos := ci.Dot(cj)
		if cos < 0 && math.Abs(sin) <= degenerateTolerance*ci.Norm()*cj.Norm() {
			return 0, fmt.Errorf("winding around %s, anti-parallel step %d: %w",
				Point{reference}, i, ErrDegenerateGeometry)
		}
		arg += math.Atan2(sin, cos)
	}
	return arg, nil
}

// WindingArgumentAtCentroid is WindingArgument around the ring Centroid.
func (r *Ring) WindingArgumentAtCentroid() (float64, error) {
	c, err := r.Centroid()
	if err != nil {
		return 0, err
	}
	return r.WindingArgument(c.Vector)
}

// orientationReference returns the centroid, taken on the hemisphere
// holding the vertices.
func (r *Ring) orientationReference() (Vector, error) {
	c, err := r.Centroid()
	if err != nil {
		return Vector{}, err
	}
	var sum Vector
	for _, p := range r.points {
		sum.AddInPlace(p.Vector)
	}
	if c.Dot(sum) < 0 {
		return c.Mul(-1), nil
	}
	return c.Vector, nil
}

// Orientation classifies the ring by its winding around its centroid.
// The centroid is taken on the vertex side: around the raw normal
// direction every ring turns positively.
// A winding smaller than π in magnitude is Ambiguous, which should not
// happen for a simple ring and hints at bad input data.
// Seen from outside the sphere, clockwise rings are Positive and
// counter-clockwise rings are Negative: on the map (north up, east right),
// a counter-clockwise outline is Negative.
func (r *Ring) Orientation() (Orientation, error) {
	ref, err := r.orientationReference()
	if err != nil {
		return Ambiguous, err
	}
	arg, err := r.WindingArgument(ref)
	if err != nil {
		return Ambiguous, err
	}
	switch {
	case math.Abs(arg) < math.Pi:
		return Ambiguous, nil
	case arg > 0:
		return Positive, nil
	default:
		return Negative, nil
	}
}

// Contains returns true if `p` is enclosed by the ring,
// that is if the ring winds around `p` by more than half a turn.
// The axis through `p` also passes through its antipode, around which
// the ring winds the opposite way: the winding must have the sign of
// the winding around the centroid, taken on the vertex side.
// When that winding is ambiguous, only its magnitude is checked.
func (r *Ring) Contains(p Point) (bool, error) {
	arg, err := r.WindingArgument(p.Vector)
	if err != nil {
		return false, err
	}
	if math.Abs(arg) <= math.Pi {
		return false, nil
	}
	ref, err := r.orientationReference()
	if err != nil {
		return false, err
	}
	self, err := r.WindingArgument(ref)
	if err != nil {
		return false, err
	}
	if math.Abs(self) < math.Pi {
		return true, nil
	}
	return (arg > 0) == (self > 0), nil
}
