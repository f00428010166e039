// Package geotag defines the geographic features drawn on maps:
// points, lines, polygons, composite regions with holes and groups.
// Each feature holds a Tag (identity and style) alongside its geometry,
// taken from package sphere.
package geotag

import (
	"fmt"

	"github.com/benoitkugler/geomap/sphere"
)

// Kind identifies the concrete type of a Feature.
type Kind uint8

const (
	KindPoint Kind = iota
	KindLine
	KindPolygon
	KindComposite
	KindGroup
	KindDocument
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindLine:
		return "line"
	case KindPolygon:
		return "polygon"
	case KindComposite:
		return "composite"
	case KindGroup:
		return "group"
	case KindDocument:
		return "document"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Tag is the identity of a feature.
// Tags are created by an IDRegistry, which guarantees id uniqueness.
type Tag struct {
	Name        string
	Description string
	Style       Style

	id string
}

// ID returns the unique identifier of the tag.
func (t *Tag) ID() string { return t.id }

func (t *Tag) String() string { return fmt.Sprintf("[%s %s]", t.Name, t.id) }

// Feature is implemented by every element of a document.
type Feature interface {
	Tag() *Tag
	Kind() Kind
}

// Point is a single located place.
type Point struct {
	tag      Tag
	Position sphere.Point
}

func NewPoint(tag Tag, position sphere.Point) *Point {
	return &Point{tag: tag, Position: position}
}

func (p *Point) Tag() *Tag  { return &p.tag }
func (p *Point) Kind() Kind { return KindPoint }

// Line is an open polyline.
type Line struct {
	tag  Tag
	Ring *sphere.Ring
}

// NewLine returns a line through `points`.
func NewLine(tag Tag, points ...sphere.Point) *Line {
	return &Line{tag: tag, Ring: sphere.NewRing(false, points...)}
}

func (l *Line) Tag() *Tag  { return &l.tag }
func (l *Line) Kind() Kind { return KindLine }

// Polygon is a single closed ring, either an outer boundary
// or a hole.
type Polygon struct {
	tag      Tag
	Boundary *sphere.Boundary
}

// NewPolygon wraps a copy of `ring`, oriented according to `inner`.
func NewPolygon(tag Tag, ring *sphere.Ring, inner bool) (*Polygon, error) {
	b, err := sphere.NewBoundary(ring, inner)
	if err != nil {
		return nil, fmt.Errorf("polygon %s: %w", tag.id, err)
	}
	return &Polygon{tag: tag, Boundary: b}, nil
}

func (p *Polygon) Tag() *Tag  { return &p.tag }
func (p *Polygon) Kind() Kind { return KindPolygon }

// Inner is true for holes.
func (p *Polygon) Inner() bool { return p.Boundary.IsHole() }
