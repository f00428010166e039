// Package geodraw compiles geographic documents into projected,
// styled paths, and implements how to draw them.
// This requires a driver implementing the actual draw operations,
// such as a rasterizer to output .png images or a pdf writer.
// See for example geomap/georaster or geomap/geopdf.
package geodraw

import (
	"image/color"

	"github.com/benoitkugler/geomap/geotag"
	"golang.org/x/image/math/fixed"
)

// Drawer knows how to do the actual draw operations
// but doesn't need any geographic knowledge.
// In particular, the projection is already applied to the points
// before sending them to the Drawer.
type Drawer interface {
	// Clear must reset the internal state (used before starting a new path painting)
	Clear()

	// Start starts a new path at the given point.
	Start(a fixed.Point26_6)

	// Line adds a line from the current point to `b`
	Line(b fixed.Point26_6)

	// CubeBezier adds a cubic bezier curve to the path
	CubeBezier(b, c, d fixed.Point26_6)

	// Stop closes the path to the start point if `closeLoop` is true
	Stop(closeLoop bool)

	// SetColor sets the color for the current path
	SetColor(c color.NRGBA, opacity float64)

	// Draw fills or strokes the accumulated path using the current settings
	Draw()
}

type Filler interface {
	Drawer

	// Decide to use or not the NonZeroWinding rule for the current path
	SetWinding(useNonZeroWinding bool)
}

type Stroker interface {
	Drawer

	// Parametrize the stroking style for the current path
	SetStrokeOptions(options StrokeOptions)
}

type Driver interface {
	// SetupDrawers returns the backend painters, and
	// will be called at the begining of every path.
	// If the `willXXX` boolean is false, the returned drawer should be nil
	// to avoid useless operations.
	// When both booleans are true, one can assume that the exact same draw operations
	// will be performed on the Filler first and then on the Stroker.
	SetupDrawers(willFill, willStroke bool) (Filler, Stroker)
}

type DashOptions struct {
	Dash       []float64 // values for the dash pattern (nil or an empty slice for no dashes)
	DashOffset float64   // starting offset into the dash array
}

// JoinMode type to specify how segments join.
type JoinMode uint8

const (
	Arc JoinMode = iota
	Round
	Bevel
	Miter
	MiterClip
	ArcClip
)

func (s JoinMode) String() string {
	switch s {
	case Round:
		return "Round"
	case Bevel:
		return "Bevel"
	case Miter:
		return "Miter"
	case MiterClip:
		return "MiterClip"
	case Arc:
		return "Arc"
	case ArcClip:
		return "ArcClip"
	default:
		return "<unknown JoinMode>"
	}
}

// CapMode defines how to draw caps on the ends of lines
type CapMode uint8

const (
	NilCap CapMode = iota // default value
	ButtCap
	SquareCap
	RoundCap
)

func (c CapMode) String() string {
	switch c {
	case NilCap:
		return "NilCap"
	case ButtCap:
		return "ButtCap"
	case SquareCap:
		return "SquareCap"
	case RoundCap:
		return "RoundCap"
	default:
		return "<unknown CapMode>"
	}
}

type JoinOptions struct {
	MiterLimit fixed.Int26_6 // the miter cutoff value for miter, arc, miterclip and arcClip joinModes
	LineJoin   JoinMode
	LineCap    CapMode
}

type StrokeOptions struct {
	LineWidth fixed.Int26_6 // width of the line
	Join      JoinOptions
	Dash      DashOptions
}

// PathStyle holds the resolved drawing style of a path.
// A nil color disables the corresponding operation.
type PathStyle struct {
	FillOpacity, LineOpacity float64
	LineWidth                float64
	UseNonZeroWinding        bool

	Join                    JoinOptions
	Dash                    DashOptions
	FillerColor, LinerColor *color.NRGBA
}

var black = color.NRGBA{A: 0xff}

// DefaultStyle sets the default PathStyle to fill black, winding rule,
// full opacity, no stroke, ButtCap line end and Miter line connect.
var DefaultStyle = PathStyle{
	FillOpacity:       1.0,
	LineOpacity:       1.0,
	LineWidth:         1.0,
	UseNonZeroWinding: true,
	Join: JoinOptions{
		MiterLimit: fToFixed(4),
		LineJoin:   Miter,
		LineCap:    ButtCap,
	},
	FillerColor: &black,
}

func fToFixed(f float64) fixed.Int26_6 {
	return fixed.Int26_6(f * 64)
}

func paintColor(p geotag.Paint, def *color.NRGBA) *color.NRGBA {
	switch p.Kind {
	case geotag.PaintNone:
		return nil
	case geotag.PaintColor:
		c := p.Color
		return &c
	default:
		return def
	}
}

// NewPathStyle resolves the presentation attributes of `s`,
// using the SVG defaults for the missing ones.
func NewPathStyle(s geotag.Style) PathStyle {
	out := DefaultStyle
	out.FillerColor = paintColor(s.Fill(), DefaultStyle.FillerColor)
	out.LinerColor = paintColor(s.Stroke(), nil)
	out.FillOpacity = s.FillOpacity() * s.Opacity()
	out.LineOpacity = s.StrokeOpacity() * s.Opacity()
	out.LineWidth = s.StrokeWidth()
	out.UseNonZeroWinding = !s.EvenOdd()
	out.Join.MiterLimit = fToFixed(s.MiterLimit())
	switch s.LineJoin() {
	case "miter":
		out.Join.LineJoin = Miter
	case "miter-clip":
		out.Join.LineJoin = MiterClip
	case "arc-clip":
		out.Join.LineJoin = ArcClip
	case "round":
		out.Join.LineJoin = Round
	case "arc":
		out.Join.LineJoin = Arc
	case "bevel":
		out.Join.LineJoin = Bevel
	}
	switch s.LineCap() {
	case "butt":
		out.Join.LineCap = ButtCap
	case "round":
		out.Join.LineCap = RoundCap
	case "square":
		out.Join.LineCap = SquareCap
	}
	out.Dash = DashOptions{Dash: s.DashArray(), DashOffset: s.DashOffset()}
	return out
}

// StyledPath binds a style to a path.
type StyledPath struct {
	ID    string // id of the feature the path comes from
	Kind  geotag.Kind
	Path  Path
	Style PathStyle
}

// Draw draws the path into the driver `d`.
func (svgp *StyledPath) Draw(d Driver, opacity float64) {
	filler, stroker := d.SetupDrawers(svgp.Style.FillerColor != nil, svgp.Style.LinerColor != nil)
	if filler != nil { // nil color disable filling
		filler.Clear()
		filler.SetWinding(svgp.Style.UseNonZeroWinding)

		for _, op := range svgp.Path {
			op.drawTo(filler)
		}
		filler.Stop(false)

		filler.SetColor(*svgp.Style.FillerColor, svgp.Style.FillOpacity*opacity)
		filler.Draw()
		filler.SetWinding(true) // default is true
	}

	if stroker != nil { // nil color disable lining
		stroker.Clear()

		lineCap := svgp.Style.Join.LineCap
		if lineCap == NilCap {
			lineCap = DefaultStyle.Join.LineCap
		}
		stroker.SetStrokeOptions(StrokeOptions{
			LineWidth: fToFixed(svgp.Style.LineWidth),
			Join: JoinOptions{
				MiterLimit: svgp.Style.Join.MiterLimit,
				LineJoin:   svgp.Style.Join.LineJoin,
				LineCap:    lineCap,
			},
			Dash: svgp.Style.Dash,
		})

		for _, op := range svgp.Path {
			op.drawTo(stroker)
		}
		stroker.Stop(false)

		stroker.SetColor(*svgp.Style.LinerColor, svgp.Style.LineOpacity*opacity)
		stroker.Draw()
	}
}
