package sphere

import "errors"

var (
	// ErrInvalidRing is returned when an empty ring is given
	// where vertices are required.
	ErrInvalidRing = errors.New("invalid ring: no vertices")

	// ErrDegenerateGeometry is returned when a computation has no
	// meaningful result: a null normal (no centroid), or a reference
	// direction aligned with a vertex or crossing between two
	// anti-parallel projected vertices.
	ErrDegenerateGeometry = errors.New("degenerate geometry")

	// ErrVertexNotFound is returned when a vertex lookup fails.
	ErrVertexNotFound = errors.New("vertex not found in ring")
)
