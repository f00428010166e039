package geodraw

import (
	"io"
	"log/slog"
	"math"

	"github.com/benoitkugler/geomap/geotag"
	"github.com/benoitkugler/geomap/projection"
	"github.com/benoitkugler/geomap/sphere"
)

// Scene is a document compiled through a projection:
// the styled paths are expressed in window pixels.
type Scene struct {
	Title         string
	Width, Height int // window size
	Paths         []StyledPath
}

// window gathers the projection settings used to build paths.
type window struct {
	pr         projection.Projection
	mapWidth   float64
	minX, maxX float64
	offset     pixel
}

func newWindow(pr projection.Projection) window {
	params := pr.Params()
	w := params.Window()
	return window{
		pr:       pr,
		mapWidth: float64(params.MapSize.X),
		minX:     float64(w.Min.X),
		maxX:     float64(w.Max.X),
		offset:   pixel{float64(w.Min.X), float64(w.Min.Y)},
	}
}

func (w window) project(p sphere.Point) pixel {
	x, y := w.pr.CoordToPixel(p)
	return pixel{x, y}
}

func (w window) poleY(north bool) float64 {
	lat := -90.
	if north {
		lat = 90
	}
	_, y := w.pr.CoordToPixel(sphere.PointFromDegrees(0, lat))
	return y
}

func (w window) addRing(p *Path, ring *sphere.Ring, closed bool) {
	points := make([]pixel, ring.Len())
	for i, pt := range ring.Points() {
		points[i] = w.project(pt)
	}
	rp := newRingPath(points, w.mapWidth, closed, w.poleY)
	rp.addTo(p, w.mapWidth, w.minX, w.maxX, w.offset)
}

func (w window) addMarker(p *Path, pos sphere.Point, radius float64) {
	c := w.project(pos)
	for k := -1.; k <= 1; k++ {
		x := c.x + k*w.mapWidth
		if x+radius < w.minX || x-radius > w.maxX {
			continue
		}
		p.addCircle(x-w.offset.x, c.y-w.offset.y, radius)
	}
}

// FeaturePath returns the outline of `f` in the window of `pr`.
// Points are drawn as circles of radius `style.Radius()`.
// Groups and empty composites have an empty path.
func FeaturePath(f geotag.Feature, style geotag.Style, pr projection.Projection) Path {
	w := newWindow(pr)
	var out Path
	switch f := f.(type) {
	case *geotag.Point:
		w.addMarker(&out, f.Position, style.Radius())
	case *geotag.Line:
		w.addRing(&out, f.Ring, false)
	case *geotag.Polygon:
		w.addRing(&out, f.Boundary.Ring(), true)
	case *geotag.Composite:
		for _, b := range f.Boundaries() {
			w.addRing(&out, b.Ring(), true)
		}
	}
	return out
}

// Compile projects every drawable feature of `doc`, in document order.
// Styles are inherited from the enclosing groups. Empty composites are
// skipped. `logger` may be nil.
func Compile(doc *geotag.Document, pr projection.Projection, logger *slog.Logger) *Scene {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	win := pr.Params().Window()
	scene := &Scene{Title: doc.Tag().Name, Width: win.Dx(), Height: win.Dy()}
	doc.Walk(func(f geotag.Feature, inherited geotag.Style) {
		switch f.Kind() {
		case geotag.KindGroup, geotag.KindDocument:
			return
		}
		style := f.Tag().Style.Inherit(inherited)
		if c, ok := f.(*geotag.Composite); ok && c.Len() == 0 {
			logger.Warn("skipping empty composite", "id", f.Tag().ID())
			return
		}
		path := FeaturePath(f, style, pr)
		if len(path) == 0 {
			logger.Debug("feature outside of the window", "id", f.Tag().ID())
			return
		}
		sp := StyledPath{ID: f.Tag().ID(), Kind: f.Kind(), Path: path, Style: NewPathStyle(style)}
		switch f.Kind() {
		case geotag.KindComposite:
			sp.Style.UseNonZeroWinding = false
		case geotag.KindLine:
			// open polylines are only stroked, black by default
			if style.Fill().Kind == geotag.PaintUnset {
				sp.Style.FillerColor = nil
			}
			if style.Stroke().Kind == geotag.PaintUnset {
				sp.Style.LinerColor = &black
			}
		}
		scene.Paths = append(scene.Paths, sp)
	})
	logger.Info("compiled scene", "projection", pr.Name(), "paths", len(scene.Paths))
	return scene
}

// Draw draws every path of the scene, with a global `opacity`.
func (sc *Scene) Draw(d Driver, opacity float64) {
	for i := range sc.Paths {
		sc.Paths[i].Draw(d, opacity)
	}
}

// Bounds returns the union of the path extents, in window pixels.
func (sc *Scene) Bounds() (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, sp := range sc.Paths {
		b := sp.Path.Bounds()
		minX = math.Min(minX, float64(b.Min.X)/64)
		minY = math.Min(minY, float64(b.Min.Y)/64)
		maxX = math.Max(maxX, float64(b.Max.X)/64)
		maxY = math.Max(maxY, float64(b.Max.Y)/64)
	}
	return
}
