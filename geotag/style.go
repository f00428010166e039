package geotag

import (
	"errors"
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"
)

// ErrUnknownStyleKey is returned when a style key is not
// recognized by any output format.
var ErrUnknownStyleKey = errors.New("unknown style key")

// DataPrefix marks the style keys stored as KML extended data.
const DataPrefix = "data:"

// svgKeys lists the SVG presentation attributes, in output order.
// The point radius `r` is written on circles only.
var svgKeys = []string{
	"fill", "fill-opacity", "fill-rule",
	"stroke", "stroke-width", "stroke-opacity",
	"stroke-linejoin", "stroke-linecap", "stroke-miterlimit",
	"stroke-dasharray", "stroke-dashoffset",
	"opacity",
}

// PlacemarkKeys are written as attributes of KML placemarks.
var PlacemarkKeys = []string{"visibility", "altitudeMode", "drawOrder"}

var altitudeModes = map[string]bool{
	"clampToGround": true, "relativeToGround": true, "absolute": true,
	"clampToSeaFloor": true, "relativeToSeaFloor": true,
}

// DataPair is one KML extended data entry.
type DataPair struct {
	Name, Value string
}

// Style holds the presentation attributes of a feature.
// Only the recognized keys can be set, and values are validated
// when set, so that writers never meet malformed values.
// The zero value is an empty style; unset attributes take the
// SVG defaults when read.
type Style struct {
	values map[string]string
}

// ParseStyle builds a style from key/value pairs.
func ParseStyle(attrs map[string]string) (Style, error) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var s Style
	for _, k := range keys {
		if err := s.Set(k, attrs[k]); err != nil {
			return Style{}, err
		}
	}
	return s, nil
}

// MustParseStyle is like ParseStyle but panics on invalid input.
// It is meant for literal styles.
func MustParseStyle(attrs map[string]string) Style {
	s, err := ParseStyle(attrs)
	if err != nil {
		panic(err)
	}
	return s
}

// canonicalKey resolves aliases.
func canonicalKey(k string) string {
	switch k {
	case "radius":
		return "r"
	case "style":
		return "styleUrl"
	}
	return k
}

// Set validates and stores one attribute.
// The style is not modified on error.
func (s *Style) Set(key, value string) error {
	key = canonicalKey(strings.TrimSpace(key))
	value = strings.TrimSpace(value)
	if err := validateStyleAttr(key, value); err != nil {
		return err
	}
	values := make(map[string]string, len(s.values)+1)
	for k, v := range s.values {
		values[k] = v
	}
	values[key] = value
	s.values = values
	return nil
}

// SetData adds a KML extended data entry.
func (s *Style) SetData(name, value string) error {
	return s.Set(DataPrefix+name, value)
}

func validateStyleAttr(k, v string) error {
	var err error
	switch k {
	case "fill", "stroke":
		_, err = ParsePaint(v)
	case "fill-opacity", "stroke-opacity", "opacity":
		var f float64
		f, err = readFraction(v)
		if err == nil && (f < 0 || f > 1) {
			err = fmt.Errorf("opacity %v out of [0, 1]", f)
		}
	case "stroke-width", "stroke-miterlimit", "r", "width":
		var f float64
		f, err = strconv.ParseFloat(v, 64)
		if err == nil && f < 0 {
			err = fmt.Errorf("negative value %v", f)
		}
	case "stroke-dashoffset":
		_, err = strconv.ParseFloat(v, 64)
	case "stroke-dasharray":
		_, err = parseDashes(v)
	case "stroke-linejoin":
		switch v {
		case "miter", "miter-clip", "round", "bevel", "arc", "arc-clip":
		default:
			err = fmt.Errorf("unsupported line join %q", v)
		}
	case "stroke-linecap":
		switch v {
		case "butt", "round", "square":
		default:
			err = fmt.Errorf("unsupported line cap %q", v)
		}
	case "fill-rule":
		if v != "nonzero" && v != "evenodd" {
			err = fmt.Errorf("unsupported fill rule %q", v)
		}
	case "color":
		_, err = ParseKMLColor(v)
	case "visibility":
		if v != "0" && v != "1" {
			err = fmt.Errorf("visibility must be 0 or 1, got %q", v)
		}
	case "altitudeMode":
		if !altitudeModes[v] {
			err = fmt.Errorf("unsupported altitude mode %q", v)
		}
	case "drawOrder":
		_, err = strconv.Atoi(v)
	case "styleUrl":
	default:
		if !strings.HasPrefix(k, DataPrefix) || len(k) == len(DataPrefix) {
			return fmt.Errorf("%q: %w", k, ErrUnknownStyleKey)
		}
	}
	if err != nil {
		return fmt.Errorf("style attribute %s: %w", k, err)
	}
	return nil
}

func readFraction(v string) (float64, error) {
	d := 1.0
	if strings.HasSuffix(v, "%") {
		d = 100
		v = strings.TrimSuffix(v, "%")
	}
	f, err := strconv.ParseFloat(v, 64)
	return f / d, err
}

// splitOnCommaOrSpace returns a list of strings after splitting the input on comma and space delimiters
func splitOnCommaOrSpace(s string) []string {
	return strings.FieldsFunc(s,
		func(r rune) bool {
			return r == ',' || r == ' '
		})
}

func parseDashes(v string) ([]float64, error) {
	if v == "none" {
		return nil, nil
	}
	dashes := splitOnCommaOrSpace(v)
	out := make([]float64, len(dashes))
	for i, dstr := range dashes {
		d, err := strconv.ParseFloat(dstr, 64)
		if err != nil {
			return nil, err
		}
		if d < 0 {
			return nil, fmt.Errorf("negative dash length %v", d)
		}
		out[i] = d
	}
	return out, nil
}

// Has reports whether `key` is set.
func (s Style) Has(key string) bool {
	_, ok := s.values[canonicalKey(key)]
	return ok
}

// Value returns the raw value of `key`, or an empty string.
func (s Style) Value(key string) string { return s.values[canonicalKey(key)] }

// Len returns the number of attributes set.
func (s Style) Len() int { return len(s.values) }

// Inherit returns the style where the attributes of `parent`
// missing in `s` are filled in.
func (s Style) Inherit(parent Style) Style {
	if len(parent.values) == 0 {
		return s
	}
	values := make(map[string]string, len(s.values)+len(parent.values))
	for k, v := range parent.values {
		values[k] = v
	}
	for k, v := range s.values {
		values[k] = v
	}
	return Style{values: values}
}

func (s Style) float(key string, def float64) float64 {
	v, ok := s.values[key]
	if !ok {
		return def
	}
	f, _ := strconv.ParseFloat(v, 64)
	return f
}

func (s Style) fraction(key string) float64 {
	v, ok := s.values[key]
	if !ok {
		return 1
	}
	f, _ := readFraction(v)
	return f
}

func (s Style) paint(key string) Paint {
	v, ok := s.values[key]
	if !ok {
		return Paint{}
	}
	p, _ := ParsePaint(v)
	return p
}

func (s Style) Fill() Paint            { return s.paint("fill") }
func (s Style) Stroke() Paint          { return s.paint("stroke") }
func (s Style) FillOpacity() float64   { return s.fraction("fill-opacity") }
func (s Style) StrokeOpacity() float64 { return s.fraction("stroke-opacity") }
func (s Style) Opacity() float64       { return s.fraction("opacity") }
func (s Style) StrokeWidth() float64   { return s.float("stroke-width", 1) }
func (s Style) MiterLimit() float64    { return s.float("stroke-miterlimit", 4) }
func (s Style) DashOffset() float64    { return s.float("stroke-dashoffset", 0) }

// Radius is the radius of point markers, in pixels.
func (s Style) Radius() float64 { return s.float("r", 3) }

// LineJoin defaults to "miter".
func (s Style) LineJoin() string {
	if v, ok := s.values["stroke-linejoin"]; ok {
		return v
	}
	return "miter"
}

// LineCap defaults to "butt".
func (s Style) LineCap() string {
	if v, ok := s.values["stroke-linecap"]; ok {
		return v
	}
	return "butt"
}

func (s Style) DashArray() []float64 {
	d, _ := parseDashes(s.values["stroke-dasharray"])
	return d
}

// EvenOdd is true when the fill rule is "evenodd".
func (s Style) EvenOdd() bool { return s.values["fill-rule"] == "evenodd" }

// KMLColor returns the KML `color` attribute.
func (s Style) KMLColor() (color.NRGBA, bool) {
	v, ok := s.values["color"]
	if !ok {
		return color.NRGBA{}, false
	}
	c, _ := ParseKMLColor(v)
	return c, true
}

// Width returns the KML line width.
func (s Style) Width() (float64, bool) {
	_, ok := s.values["width"]
	return s.float("width", 0), ok
}

func (s Style) StyleURL() string { return s.values["styleUrl"] }

// SVGAttributes returns the SVG presentation attributes set,
// in a fixed order.
func (s Style) SVGAttributes() [][2]string {
	var out [][2]string
	for _, k := range svgKeys {
		if v, ok := s.values[k]; ok {
			out = append(out, [2]string{k, v})
		}
	}
	return out
}

// PlacemarkAttributes returns the KML placemark attributes set.
func (s Style) PlacemarkAttributes() [][2]string {
	var out [][2]string
	for _, k := range PlacemarkKeys {
		if v, ok := s.values[k]; ok {
			out = append(out, [2]string{k, v})
		}
	}
	return out
}

// Data returns the extended data entries, sorted by name.
func (s Style) Data() []DataPair {
	var out []DataPair
	for k, v := range s.values {
		if strings.HasPrefix(k, DataPrefix) {
			out = append(out, DataPair{Name: k[len(DataPrefix):], Value: v})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
