package geotag

import (
	"errors"
	"fmt"
	"sync"

	"github.com/benoitkugler/geomap/sphere"
)

// ErrEmptyComposite is returned when serializing a composite
// without any ring.
var ErrEmptyComposite = errors.New("empty composite")

// Observer is notified of the classification of the rings
// added to composites.
type Observer interface {
	RingClassified(hole bool)
	RingRejected(err error)
	OrientationAmbiguous()
}

// Composite is a filled region made of several rings: outer shells,
// each with its holes. Rings are classified as they are added.
// Add may be called from several goroutines.
type Composite struct {
	tag Tag

	mu       sync.Mutex
	region   sphere.Region
	observer Observer
}

// NewComposite returns an empty composite. `observer` may be nil.
func NewComposite(tag Tag, observer Observer) *Composite {
	return &Composite{tag: tag, observer: observer}
}

func (c *Composite) Tag() *Tag  { return &c.tag }
func (c *Composite) Kind() Kind { return KindComposite }

// Add classifies `ring` as a shell or a hole; see sphere.Region.Add.
// Containing rings must be added before the rings they contain.
func (c *Composite) Add(ring *sphere.Ring) (*sphere.Boundary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := c.region.Add(ring)
	if err != nil {
		if c.observer != nil {
			c.observer.RingRejected(err)
		}
		return nil, fmt.Errorf("composite %s: %w", c.tag.id, err)
	}
	if c.observer != nil {
		c.observer.RingClassified(b.IsHole())
		if b.Orientation() == sphere.Ambiguous {
			c.observer.OrientationAmbiguous()
		}
	}
	return b, nil
}

// Len returns the number of rings.
func (c *Composite) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.region.Len()
}

// Shells returns the outer boundaries, each carrying its holes.
func (c *Composite) Shells() []*sphere.Boundary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*sphere.Boundary(nil), c.region.Shells()...)
}

// Boundaries returns every ring, each shell followed by its holes.
func (c *Composite) Boundaries() []*sphere.Boundary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.region.Boundaries()
}
