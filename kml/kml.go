// Package kml reads and writes geographic documents in the
// Keyhole Markup Language.
//
// Documents map to kml Document, groups to Folder, and each other
// feature to a Placemark: points to Point, lines to LineString,
// polygons to Polygon and composites to a MultiGeometry made of
// one Polygon per outer boundary.
package kml

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/benoitkugler/geomap/geotag"
	"github.com/benoitkugler/geomap/sphere"
)

const Namespace = "http://www.opengis.net/kml/2.2"

var (
	ErrNoSource           = errors.New("no KML source provided")
	ErrMultipleSources    = errors.New("more than one KML source provided")
	ErrUnsupportedElement = errors.New("unsupported KML element")
	ErrInvalidCoordinates = errors.New("invalid KML coordinates")
)

// ErrorMode determines how the decoder handles elements
// it does not support, and invalid geometries.
type ErrorMode uint8

const (
	// IgnoreErrorMode silently skips the element.
	IgnoreErrorMode ErrorMode = iota
	// WarnErrorMode logs a warning and skips the element.
	WarnErrorMode
	// StrictErrorMode aborts the decoding.
	StrictErrorMode
)

func (m ErrorMode) String() string {
	switch m {
	case IgnoreErrorMode:
		return "ignore"
	case WarnErrorMode:
		return "warn"
	case StrictErrorMode:
		return "strict"
	default:
		return fmt.Sprintf("ErrorMode(%d)", uint8(m))
	}
}

// ParseErrorMode accepts ignore, warn and strict.
func ParseErrorMode(s string) (ErrorMode, error) {
	switch strings.ToLower(s) {
	case "ignore":
		return IgnoreErrorMode, nil
	case "warn", "":
		return WarnErrorMode, nil
	case "strict":
		return StrictErrorMode, nil
	}
	return 0, fmt.Errorf("unknown error mode %q", s)
}

// parseCoordinates reads whitespace separated `lon,lat[,alt]` tuples.
func parseCoordinates(text string) ([]sphere.Point, error) {
	fields := strings.Fields(text)
	out := make([]sphere.Point, 0, len(fields))
	for _, tuple := range fields {
		parts := strings.Split(tuple, ",")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("%q: %w", tuple, ErrInvalidCoordinates)
		}
		lon, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", tuple, ErrInvalidCoordinates)
		}
		lat, err := strconv.ParseFloat(parts[1], 64)
		if err != nil || lat < -90 || lat > 90 {
			return nil, fmt.Errorf("%q: %w", tuple, ErrInvalidCoordinates)
		}
		out = append(out, sphere.PointFromDegrees(lon, lat))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty list: %w", ErrInvalidCoordinates)
	}
	return out, nil
}

// formatCoordinates writes the points of `ring`, repeating the first
// one at the end for closed rings.
func formatCoordinates(ring *sphere.Ring, closed bool, lonPrec, latPrec int) string {
	points := ring.Points()
	chunks := make([]string, 0, len(points)+1)
	for _, p := range points {
		chunks = append(chunks, p.KMLCoordinate(lonPrec, latPrec))
	}
	if closed && len(points) > 0 {
		chunks = append(chunks, chunks[0])
	}
	return strings.Join(chunks, " ")
}

func hexColor(c color.NRGBA) string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

func withAlpha(c color.NRGBA, opacity float64) color.NRGBA {
	c.A = uint8(opacity*float64(c.A) + 0.5)
	return c
}

func fmtOpacity(a uint8) string { return strconv.FormatFloat(float64(a)/255, 'f', 3, 64) }

// kmlStyle is the subset of the KML Style element supported.
type kmlStyle struct {
	lineColor, lineWidth string
	polyColor, polyFill  string // empty when unset
	outline              string
}

func (ks kmlStyle) isEmpty() bool { return ks == kmlStyle{} }

// toKMLStyle converts the presentation attributes of `s`.
// The KML `color` and `width` attributes take precedence over the
// SVG stroke attributes.
func toKMLStyle(s geotag.Style) kmlStyle {
	var ks kmlStyle
	if c, ok := s.KMLColor(); ok {
		ks.lineColor = geotag.KMLColor(c)
	} else if p := s.Stroke(); p.Kind == geotag.PaintColor {
		ks.lineColor = geotag.KMLColor(withAlpha(p.Color, s.StrokeOpacity()))
	} else if p.Kind == geotag.PaintNone {
		ks.outline = "0"
	}
	if w, ok := s.Width(); ok {
		ks.lineWidth = strconv.FormatFloat(w, 'f', -1, 64)
	} else if s.Has("stroke-width") {
		ks.lineWidth = s.Value("stroke-width")
	}
	switch p := s.Fill(); p.Kind {
	case geotag.PaintColor:
		ks.polyColor = geotag.KMLColor(withAlpha(p.Color, s.FillOpacity()))
	case geotag.PaintNone:
		ks.polyFill = "0"
	}
	return ks
}

// attributes returns the style attributes equivalent to `ks`.
func (ks kmlStyle) attributes() (map[string]string, error) {
	out := map[string]string{}
	if ks.lineColor != "" {
		c, err := geotag.ParseKMLColor(ks.lineColor)
		if err != nil {
			return nil, err
		}
		out["color"] = geotag.KMLColor(c)
		out["stroke"] = hexColor(c)
		out["stroke-opacity"] = fmtOpacity(c.A)
	}
	if ks.lineWidth != "" {
		out["width"] = ks.lineWidth
		out["stroke-width"] = ks.lineWidth
	}
	if ks.outline == "0" {
		out["stroke"] = "none"
	}
	if ks.polyColor != "" {
		c, err := geotag.ParseKMLColor(ks.polyColor)
		if err != nil {
			return nil, err
		}
		out["fill"] = hexColor(c)
		out["fill-opacity"] = fmtOpacity(c.A)
	}
	if ks.polyFill == "0" {
		out["fill"] = "none"
	}
	return out, nil
}
