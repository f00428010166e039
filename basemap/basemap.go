// Package basemap resamples a global raster map, given in
// equirectangular coordinates, into the window of a projection.
package basemap

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"os"
	"strings"

	"github.com/benoitkugler/geomap/projection"
	"github.com/benoitkugler/geomap/sphere"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var ErrUnknownInterpolation = errors.New("unknown interpolation")

// Interpolation selects how source pixels are resampled.
type Interpolation uint8

const (
	Nearest Interpolation = iota
	Bilinear
	Bicubic
)

var interpolationNames = [...]string{Nearest: "nearest", Bilinear: "bilinear", Bicubic: "bicubic"}

func (i Interpolation) String() string {
	if int(i) < len(interpolationNames) {
		return interpolationNames[i]
	}
	return fmt.Sprintf("Interpolation(%d)", uint8(i))
}

// ParseInterpolation accepts nearest, bilinear and bicubic.
func ParseInterpolation(s string) (Interpolation, error) {
	for i, name := range interpolationNames {
		if strings.EqualFold(s, name) {
			return Interpolation(i), nil
		}
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownInterpolation)
}

func (i Interpolation) interpolator() draw.Interpolator {
	switch i {
	case Bilinear:
		return draw.BiLinear
	case Bicubic:
		return draw.CatmullRom
	default:
		return draw.NearestNeighbor
	}
}

// MapImage is a raster of the whole globe: longitudes span the width,
// starting at CentralMeridian - 180, latitudes span the height from 90
// to -90.
type MapImage struct {
	Image           image.Image
	CentralMeridian float64
	Interpolation   Interpolation
}

// Decode reads a png, jpeg, bmp, tiff or webp image.
func Decode(r io.Reader) (*MapImage, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return &MapImage{Image: img}, nil
}

// Open decodes the named image file.
func Open(path string) (*MapImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open image file: %w", err)
	}
	defer f.Close()
	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("image file %s: %w", path, err)
	}
	return m, nil
}

func (m *MapImage) size() (w, h float64) {
	s := m.Image.Bounds().Size()
	return float64(s.X), float64(s.Y)
}

// CoordToImage returns the image pixel of the given coordinates,
// in degrees.
func (m *MapImage) CoordToImage(lon, lat float64) (x, y float64) {
	w, h := m.size()
	u := (lon - m.CentralMeridian + 180) / 360
	u -= math.Floor(u)
	return u * w, (90 - lat) / 180 * h
}

// SpatialToCoord returns the longitude and latitude, in degrees,
// of the direction `v`.
func (m *MapImage) SpatialToCoord(v sphere.Vector) (lon, lat float64) {
	return v.Theta() * 180 / math.Pi, v.Phi() * 180 / math.Pi
}

// SpatialToImage returns the image pixel of the direction `v`.
func (m *MapImage) SpatialToImage(v sphere.Vector) (x, y float64) {
	return m.CoordToImage(m.SpatialToCoord(v))
}

// Value samples the image at (x, y), using the image interpolation.
func (m *MapImage) Value(x, y float64) color.Color {
	dst := image.NewRGBA(image.Rect(0, 0, 1, 1))
	s2d := f64.Aff3{1, 0, 0.5 - x, 0, 1, 0.5 - y}
	origin := m.Image.Bounds().Min
	s2d[2] -= float64(origin.X)
	s2d[5] -= float64(origin.Y)
	m.Interpolation.interpolator().Transform(dst, s2d, m.Image, m.Image.Bounds(), draw.Src, nil)
	return dst.At(0, 0)
}

// Project resamples the image into the window of `pr`.
// Pixels outside of the globe are transparent.
func (m *MapImage) Project(pr projection.Projection) *image.RGBA {
	params := pr.Params()
	win := params.Window()
	dst := image.NewRGBA(image.Rect(0, 0, win.Dx(), win.Dy()))

	sw, sh := m.size()
	mapW, mapH := float64(params.MapSize.X), float64(params.MapSize.Y)
	d := (params.CentralMeridian - m.CentralMeridian) / 360
	d -= math.Floor(d)
	tx := -mapW*d - float64(win.Min.X)
	ty := mapH*params.CentralLatitude/180 - float64(win.Min.Y)
	bounds := m.Image.Bounds()
	tx -= float64(bounds.Min.X) * mapW / sw
	ty -= float64(bounds.Min.Y) * mapH / sh

	// one copy of the image per map width, covering the seam
	interp := m.Interpolation.interpolator()
	kMin := math.Floor((-tx - mapW) / mapW)
	kMax := math.Ceil((float64(win.Dx()) - tx) / mapW)
	for k := kMin; k <= kMax; k++ {
		s2d := f64.Aff3{mapW / sw, 0, tx + k*mapW, 0, mapH / sh, ty}
		interp.Transform(dst, s2d, m.Image, bounds, draw.Over, nil)
	}
	return dst
}

// Crop returns a copy of the `r` part of `img`, translated
// to the origin.
func Crop(img image.Image, r image.Rectangle) *image.RGBA {
	r = r.Intersect(img.Bounds())
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), img, r.Min, draw.Src)
	return out
}
