package geotag

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

var errParamMismatch = errors.New("invalid color value")

// PaintKind tells whether a paint is inherited, disabled or set.
type PaintKind uint8

const (
	PaintUnset PaintKind = iota // inherit from the parent group
	PaintNone                   // explicitly disabled
	PaintColor
)

// Paint is a fill or stroke color.
type Paint struct {
	Kind  PaintKind
	Color color.NRGBA
}

// NewPaint returns a plain color paint.
func NewPaint(r, g, b, a uint8) Paint {
	return Paint{Kind: PaintColor, Color: color.NRGBA{R: r, G: g, B: b, A: a}}
}

// String returns the SVG representation of the paint,
// or an empty string when unset.
func (p Paint) String() string {
	switch p.Kind {
	case PaintNone:
		return "none"
	case PaintColor:
		return fmt.Sprintf("#%02x%02x%02x", p.Color.R, p.Color.G, p.Color.B)
	default:
		return ""
	}
}

// ParsePaint reads an SVG color: `none`, `#rgb`, `#rrggbb`,
// `rgb(r, g, b)` (with integer or percent components) or a named color.
func ParsePaint(v string) (Paint, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "none" {
		return Paint{Kind: PaintNone}, nil
	}
	c, err := parseSVGColor(v)
	if err != nil {
		return Paint{}, fmt.Errorf("color %q: %w", v, err)
	}
	return Paint{Kind: PaintColor, Color: c}, nil
}

func parseSVGColor(v string) (color.NRGBA, error) {
	switch {
	case strings.HasPrefix(v, "#"):
		hex := v[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return color.NRGBA{}, errParamMismatch
		}
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, errParamMismatch
		}
		return color.NRGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, nil
	case strings.HasPrefix(v, "rgb(") && strings.HasSuffix(v, ")"):
		parts := strings.Split(v[len("rgb("):len(v)-1], ",")
		if len(parts) != 3 {
			return color.NRGBA{}, errParamMismatch
		}
		var comps [3]uint8
		for i, part := range parts {
			part = strings.TrimSpace(part)
			var (
				f   float64
				err error
			)
			if strings.HasSuffix(part, "%") {
				f, err = strconv.ParseFloat(strings.TrimSuffix(part, "%"), 64)
				f = f * 255 / 100
			} else {
				f, err = strconv.ParseFloat(part, 64)
			}
			if err != nil || f < 0 || f > 255.5 {
				return color.NRGBA{}, errParamMismatch
			}
			comps[i] = uint8(f + 0.5)
		}
		return color.NRGBA{R: comps[0], G: comps[1], B: comps[2], A: 0xff}, nil
	default:
		c, ok := colornames.Map[v]
		if !ok {
			return color.NRGBA{}, errParamMismatch
		}
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}
}

// ParseKMLColor reads a KML `aabbggrr` hexadecimal color.
func ParseKMLColor(v string) (color.NRGBA, error) {
	v = strings.TrimPrefix(strings.TrimSpace(v), "#")
	if len(v) != 8 {
		return color.NRGBA{}, fmt.Errorf("kml color %q: %w", v, errParamMismatch)
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("kml color %q: %w", v, errParamMismatch)
	}
	return color.NRGBA{A: uint8(n >> 24), B: uint8(n >> 16), G: uint8(n >> 8), R: uint8(n)}, nil
}

// KMLColor formats `c` as `aabbggrr`.
func KMLColor(c color.NRGBA) string {
	return fmt.Sprintf("%02x%02x%02x%02x", c.A, c.B, c.G, c.R)
}
