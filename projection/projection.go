// Package projection maps geographic coordinates to map pixels.
//
// A map is the image of the whole globe; a window is the part of the map
// actually rendered, given by its size and its offset in the map.
package projection

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/benoitkugler/geomap/sphere"
	"golang.org/x/image/math/fixed"
)

var ErrInvalidParams = errors.New("invalid projection parameters")

// Params are the settings shared by all projections.
type Params struct {
	CentralMeridian  float64 `mapstructure:"central_meridian"`
	CentralLatitude  float64 `mapstructure:"central_latitude"`
	ViewpointAzimuth float64 `mapstructure:"viewpoint_azimuth"`

	MapSize image.Point `mapstructure:"map_size"`
	// WindowSize defaults to MapSize when zero.
	WindowSize   image.Point `mapstructure:"window_size"`
	WindowOffset image.Point `mapstructure:"window_offset"`
}

// DefaultParams renders the whole globe at four pixels per degree.
var DefaultParams = Params{MapSize: image.Pt(1440, 720)}

// Window returns the rendered rectangle, in map pixels.
func (p Params) Window() image.Rectangle {
	size := p.WindowSize
	if size == (image.Point{}) {
		size = p.MapSize
	}
	return image.Rectangle{Min: p.WindowOffset, Max: p.WindowOffset.Add(size)}
}

// Validate checks that the sizes are positive.
func (p Params) Validate() error {
	if p.MapSize.X <= 0 || p.MapSize.Y <= 0 {
		return fmt.Errorf("map size %v: %w", p.MapSize, ErrInvalidParams)
	}
	if p.WindowSize.X < 0 || p.WindowSize.Y < 0 {
		return fmt.Errorf("window size %v: %w", p.WindowSize, ErrInvalidParams)
	}
	if math.IsNaN(p.CentralMeridian) || math.IsNaN(p.CentralLatitude) {
		return fmt.Errorf("central point: %w", ErrInvalidParams)
	}
	return nil
}

// CentralPoint returns the point drawn at the map center.
func (p Params) CentralPoint() sphere.Point {
	return sphere.PointFromDegrees(p.CentralMeridian, p.CentralLatitude)
}

// Projection converts between coordinates and pixels.
type Projection interface {
	Name() string
	Params() Params

	// CoordToPixel returns the map pixel of `p`.
	CoordToPixel(p sphere.Point) (x, y float64)
	// PixelToCoord is the inverse of CoordToPixel.
	PixelToCoord(x, y float64) sphere.Point

	// Mapless is true for projections which cannot resample
	// a base map.
	Mapless() bool
}

// CoordToWindow returns the window pixel of `p`, and whether it falls
// outside of the window.
func CoordToWindow(pr Projection, p sphere.Point) (x, y float64, outside bool) {
	x, y = pr.CoordToPixel(p)
	w := pr.Params().Window()
	x -= float64(w.Min.X)
	y -= float64(w.Min.Y)
	outside = x < 0 || x >= float64(w.Dx()) || y < 0 || y >= float64(w.Dy())
	return x, y, outside
}

// WindowToCoord is the inverse of CoordToWindow.
func WindowToCoord(pr Projection, x, y float64) sphere.Point {
	off := pr.Params().WindowOffset
	return pr.PixelToCoord(x+float64(off.X), y+float64(off.Y))
}

// Fixed returns the window pixel of `p` in 26.6 fixed point,
// as expected by the drawing backends.
func Fixed(pr Projection, p sphere.Point) fixed.Point26_6 {
	x, y, _ := CoordToWindow(pr, p)
	return fixed.Point26_6{X: fixed.Int26_6(math.Round(x * 64)), Y: fixed.Int26_6(math.Round(y * 64))}
}

// Equirectangular maps longitude and latitude linearly
// to the horizontal and vertical axis.
type Equirectangular struct {
	name   string
	params Params
}

// NewEquirectangular returns an equirectangular projection.
func NewEquirectangular(name string, params Params) (*Equirectangular, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Equirectangular{name: name, params: params}, nil
}

func (e *Equirectangular) Name() string   { return e.name }
func (e *Equirectangular) Params() Params { return e.params }
func (e *Equirectangular) Mapless() bool  { return false }

// CoordToPixel wraps longitudes so that x is in [0, width).
func (e *Equirectangular) CoordToPixel(p sphere.Point) (x, y float64) {
	u := 0.5 + (p.Longitude()-e.params.CentralMeridian)/360
	v := 0.5 - (p.Latitude()-e.params.CentralLatitude)/180
	u -= math.Floor(u)
	return u * float64(e.params.MapSize.X), v * float64(e.params.MapSize.Y)
}

func (e *Equirectangular) PixelToCoord(x, y float64) sphere.Point {
	lon := (x/float64(e.params.MapSize.X)-0.5)*360 + e.params.CentralMeridian
	lat := (0.5-y/float64(e.params.MapSize.Y))*180 + e.params.CentralLatitude
	return sphere.PointFromDegrees(lon, lat)
}
