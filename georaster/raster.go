// Implements a raster backend to render maps,
// by wrapping rasterx.
package georaster

import (
	"image"
	"image/color"

	"github.com/benoitkugler/geomap/geodraw"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"
)

var _ geodraw.Driver = (*Renderer)(nil) // assert interface conformance

type Renderer struct {
	dasher *rasterx.Dasher // to avoid shared state
	filler *rasterx.Filler // we use separated instance
}

// NewRenderer returns a renderer with default values.
// In addition to rasterizing lines like a Scanner,
// it can also rasterize cubic bezier curves.
// If scanner is nil, a default scanner rasterx.ScannerGV is used,
// drawing on a new image.
func NewRenderer(width, height int, scanner rasterx.Scanner) *Renderer {
	if scanner == nil {
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		scanner = rasterx.NewScannerGV(width, height, img, img.Bounds())
	}
	return &Renderer{dasher: rasterx.NewDasher(width, height, scanner), filler: rasterx.NewFiller(width, height, scanner)}
}

func (rd *Renderer) SetupDrawers(willFill, willStroke bool) (f geodraw.Filler, s geodraw.Stroker) {
	if willFill {
		f = filler{rd.filler}
	}
	if willStroke {
		s = stroker{rd.dasher}
	}
	return f, s
}

// RenderScene uses a ScannerGV instance to render the scene over `base`
// and returns the image. `base` is scaled to the scene size; if it is nil,
// the background is transparent.
func RenderScene(scene *geodraw.Scene, base image.Image) *image.RGBA {
	w, h := scene.Width, scene.Height
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if base != nil {
		if base.Bounds().Size() == img.Bounds().Size() {
			draw.Draw(img, img.Bounds(), base, base.Bounds().Min, draw.Src)
		} else {
			draw.ApproxBiLinear.Scale(img, img.Bounds(), base, base.Bounds(), draw.Src, nil)
		}
	}

	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	renderer := NewRenderer(w, h, scanner)
	scene.Draw(renderer, 1.0)
	return img
}

type filler struct {
	*rasterx.Filler
}

func (f filler) Clear()                             { f.Filler.Clear() }
func (f filler) Start(a fixed.Point26_6)            { f.Filler.Start(a) }
func (f filler) Line(b fixed.Point26_6)             { f.Filler.Line(b) }
func (f filler) CubeBezier(b, c, d fixed.Point26_6) { f.Filler.CubeBezier(b, c, d) }
func (f filler) Stop(closeLoop bool)                { f.Filler.Stop(closeLoop) }
func (f filler) Draw()                              { f.Filler.Draw() }
func (f filler) SetWinding(useNonZeroWinding bool)  { f.Filler.SetWinding(useNonZeroWinding) }

func (f filler) SetColor(c color.NRGBA, opacity float64) {
	f.Filler.SetColor(rasterx.ApplyOpacity(c, opacity))
}

type stroker struct {
	*rasterx.Dasher
}

var (
	joinToJoin = [...]rasterx.JoinMode{
		geodraw.Round:     rasterx.Round,
		geodraw.Bevel:     rasterx.Bevel,
		geodraw.Miter:     rasterx.Miter,
		geodraw.MiterClip: rasterx.MiterClip,
		geodraw.Arc:       rasterx.Arc,
		geodraw.ArcClip:   rasterx.ArcClip,
	}

	capToFunc = [...]rasterx.CapFunc{
		geodraw.NilCap:    rasterx.ButtCap,
		geodraw.ButtCap:   rasterx.ButtCap,
		geodraw.SquareCap: rasterx.SquareCap,
		geodraw.RoundCap:  rasterx.RoundCap,
	}
)

func (s stroker) SetStrokeOptions(options geodraw.StrokeOptions) {
	capFunc := capToFunc[options.Join.LineCap]
	s.Dasher.SetStroke(
		options.LineWidth, options.Join.MiterLimit, capFunc, capFunc, rasterx.FlatGap,
		joinToJoin[options.Join.LineJoin], options.Dash.Dash, options.Dash.DashOffset,
	)
}

func (s stroker) Clear()                             { s.Dasher.Clear() }
func (s stroker) Start(a fixed.Point26_6)            { s.Dasher.Start(a) }
func (s stroker) Line(b fixed.Point26_6)             { s.Dasher.Line(b) }
func (s stroker) CubeBezier(b, c, d fixed.Point26_6) { s.Dasher.CubeBezier(b, c, d) }
func (s stroker) Stop(closeLoop bool)                { s.Dasher.Stop(closeLoop) }
func (s stroker) Draw()                              { s.Dasher.Draw() }

func (s stroker) SetColor(c color.NRGBA, opacity float64) {
	s.Dasher.SetColor(rasterx.ApplyOpacity(c, opacity))
}
