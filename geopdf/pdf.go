// Implements a PDF backend to render maps,
// by wrapping github.com/jung-kurt/gofpdf.
package geopdf

import (
	"bytes"
	"image"
	"image/color"
	"io"

	"github.com/benoitkugler/geomap/geodraw"
	"github.com/benoitkugler/geomap/georaster"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/math/fixed"
)

// assert interface conformance
var (
	_ geodraw.Driver  = (*Renderer)(nil)
	_ geodraw.Filler  = (*filler)(nil)
	_ geodraw.Stroker = (*stroker)(nil)
)

const baseMapName = "basemap"

type Renderer struct {
	pdf         *gofpdf.Fpdf
	boundingBox BoundingBox // extent of every path drawn
}

// implements the common path commands,
// shared by the filler and the stroker
type pather struct {
	pdf         *gofpdf.Fpdf
	boundingBox *BoundingBox
}

// implements the filling operation
type filler struct {
	pather
	useNonZeroWinding bool
}

// implements the stroking operation
type stroker struct {
	pather
}

// NewRenderer return a renderer which will
// write to the given `pdf`.
func NewRenderer(pdf *gofpdf.Fpdf) *Renderer {
	return &Renderer{pdf: pdf}
}

// Bounds returns the extent of the paths drawn so far,
// in page units.
func (r *Renderer) Bounds() (fixed.Rectangle26_6, bool) { return r.boundingBox.Extent() }

func (r *Renderer) SetupDrawers(willFill, willStroke bool) (f geodraw.Filler, s geodraw.Stroker) {
	if willFill {
		f = &filler{pather: pather{pdf: r.pdf, boundingBox: &r.boundingBox}, useNonZeroWinding: true}
	}
	if willStroke {
		s = &stroker{pather: pather{pdf: r.pdf, boundingBox: &r.boundingBox}}
	}
	return f, s
}

// NewDocument returns a one page document sized to the scene,
// using points as units: one window pixel is one point.
func NewDocument(scene *geodraw.Scene) *gofpdf.Fpdf {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: float64(scene.Width), Ht: float64(scene.Height)},
	})
	pdf.SetTitle(scene.Title, true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	return pdf
}

// RenderScene draws `scene` over `base` (which may be nil)
// and writes the PDF document to `out`.
func RenderScene(scene *geodraw.Scene, base image.Image, out io.Writer) error {
	pdf := NewDocument(scene)
	if base != nil {
		var buf bytes.Buffer
		if err := georaster.EncodePNG(&buf, base); err != nil {
			return err
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(baseMapName, opts, &buf)
		pdf.ImageOptions(baseMapName, 0, 0, float64(scene.Width), float64(scene.Height), false, opts, 0, "")
	}
	scene.Draw(NewRenderer(pdf), 1.0)
	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(out)
}

func fixedTof(a fixed.Point26_6) (float64, float64) {
	return float64(a.X) / 64, float64(a.Y) / 64
}

func fToFixed(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
}

// the bounding box is shared by every path
func (p *pather) Clear() {}

func (p *pather) Start(a fixed.Point26_6) {
	p.pdf.MoveTo(fixedTof(a))
	p.boundingBox.Start(a)
}

func (p *pather) Line(b fixed.Point26_6) {
	p.pdf.LineTo(fixedTof(b))
	p.boundingBox.Line(b)
}

func (p *pather) CubeBezier(b fixed.Point26_6, c fixed.Point26_6, d fixed.Point26_6) {
	cx0, cy0 := fixedTof(b)
	cx1, cy1 := fixedTof(c)
	x, y := fixedTof(d)
	p.pdf.CurveBezierCubicTo(cx0, cy0, cx1, cy1, x, y)
	p.boundingBox.CubeBezier(b, c, d)
}

func (p *pather) Stop(closeLoop bool) {
	if closeLoop {
		p.pdf.ClosePath()
	}
}

func (f *filler) SetColor(c color.NRGBA, opacity float64) {
	f.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
	f.pdf.SetAlpha(opacity*float64(c.A)/255., "Normal")
}

func (f *filler) Draw() {
	styleStr := "f*"
	if f.useNonZeroWinding {
		styleStr = "f"
	}
	f.pdf.DrawPath(styleStr)
}

func (f *filler) SetWinding(useNonZeroWinding bool) {
	f.useNonZeroWinding = useNonZeroWinding
}

func (s *stroker) SetColor(c color.NRGBA, opacity float64) {
	s.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	s.pdf.SetAlpha(opacity*float64(c.A)/255., "Normal")
}

var (
	joinToStyle = [...]string{
		geodraw.Round:     "round",
		geodraw.Bevel:     "bevel",
		geodraw.Miter:     "miter",
		geodraw.MiterClip: "miter",
		geodraw.Arc:       "round",
		geodraw.ArcClip:   "round",
	}

	capToStyle = [...]string{
		geodraw.NilCap:    "butt",
		geodraw.ButtCap:   "butt",
		geodraw.SquareCap: "square",
		geodraw.RoundCap:  "round",
	}
)

func (s *stroker) SetStrokeOptions(options geodraw.StrokeOptions) {
	s.pdf.SetLineWidth(float64(options.LineWidth) / 64)
	s.pdf.SetLineJoinStyle(joinToStyle[options.Join.LineJoin])
	s.pdf.SetLineCapStyle(capToStyle[options.Join.LineCap])
	s.pdf.SetDashPattern(options.Dash.Dash, options.Dash.DashOffset)
}

func (s *stroker) Draw() {
	s.pdf.DrawPath("D")
}
