package kml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/benoitkugler/geomap/geotag"
	"github.com/benoitkugler/geomap/sphere"
)

// EncodeOptions tunes the KML output.
type EncodeOptions struct {
	// Decimal digits of the longitudes and latitudes.
	// A negative value selects the shortest representation.
	LonPrecision, LatPrecision int

	// Indent is used for each nesting level; no indentation when empty.
	Indent string
}

// DefaultEncodeOptions writes the shortest coordinates, indented.
var DefaultEncodeOptions = EncodeOptions{LonPrecision: -1, LatPrecision: -1, Indent: "  "}

// encoder writes tokens, keeping the first error.
type encoder struct {
	xml  *xml.Encoder
	opts EncodeOptions
	err  error
}

func (e *encoder) token(t xml.Token) {
	if e.err != nil {
		return
	}
	e.err = e.xml.EncodeToken(t)
}

func (e *encoder) start(name string, attrs ...xml.Attr) {
	e.token(xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs})
}

func (e *encoder) end(name string) { e.token(xml.EndElement{Name: xml.Name{Local: name}}) }

// text writes <name>value</name>
func (e *encoder) text(name, value string) {
	e.start(name)
	e.token(xml.CharData(value))
	e.end(name)
}

// Encode writes `doc` as a KML document.
// An empty composite is an error (see geotag.ErrEmptyComposite).
func Encode(w io.Writer, doc *geotag.Document, opts EncodeOptions) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	e := encoder{xml: xml.NewEncoder(w), opts: opts}
	e.xml.Indent("", opts.Indent)

	e.start("kml", xml.Attr{Name: xml.Name{Local: "xmlns"}, Value: Namespace})
	if err := e.feature(doc); err != nil {
		return err
	}
	e.end("kml")
	if e.err != nil {
		return e.err
	}
	if err := e.xml.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Marshal returns the KML document as bytes.
func Marshal(doc *geotag.Document, opts EncodeOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func idAttr(t *geotag.Tag) xml.Attr { return xml.Attr{Name: xml.Name{Local: "id"}, Value: t.ID()} }

func (e *encoder) feature(f geotag.Feature) error {
	switch f := f.(type) {
	case *geotag.Document:
		return e.container("Document", f.Tag(), f.Elements())
	case *geotag.Group:
		return e.container("Folder", f.Tag(), f.Elements())
	case *geotag.Composite:
		if f.Len() == 0 {
			return fmt.Errorf("composite %s: %w", f.Tag().ID(), geotag.ErrEmptyComposite)
		}
	}
	tag := f.Tag()
	e.start("Placemark", idAttr(tag))
	e.header(tag)
	for _, kv := range tag.Style.PlacemarkAttributes() {
		if kv[0] != "altitudeMode" {
			e.text(kv[0], kv[1])
		}
	}
	e.geometry(f)
	e.end("Placemark")
	return e.err
}

func (e *encoder) container(name string, tag *geotag.Tag, elements []geotag.Feature) error {
	e.start(name, idAttr(tag))
	e.header(tag)
	for _, child := range elements {
		if err := e.feature(child); err != nil {
			return err
		}
	}
	e.end(name)
	return e.err
}

// header writes the common Feature elements.
func (e *encoder) header(tag *geotag.Tag) {
	e.text("name", tag.Name)
	if tag.Description != "" {
		e.text("description", tag.Description)
	}
	if url := tag.Style.StyleURL(); url != "" {
		if url[0] != '#' && !isRemote(url) {
			url = "#" + url
		}
		e.text("styleUrl", url)
	}
	if ks := toKMLStyle(tag.Style); !ks.isEmpty() {
		e.style(ks)
	}
	if data := tag.Style.Data(); len(data) != 0 {
		e.start("ExtendedData")
		for _, d := range data {
			e.start("Data", xml.Attr{Name: xml.Name{Local: "name"}, Value: d.Name})
			e.text("value", d.Value)
			e.end("Data")
		}
		e.end("ExtendedData")
	}
}

func (e *encoder) style(ks kmlStyle) {
	e.start("Style")
	if ks.lineColor != "" || ks.lineWidth != "" {
		e.start("LineStyle")
		if ks.lineColor != "" {
			e.text("color", ks.lineColor)
		}
		if ks.lineWidth != "" {
			e.text("width", ks.lineWidth)
		}
		e.end("LineStyle")
	}
	if ks.polyColor != "" || ks.polyFill != "" || ks.outline != "" {
		e.start("PolyStyle")
		if ks.polyColor != "" {
			e.text("color", ks.polyColor)
		}
		if ks.polyFill != "" {
			e.text("fill", ks.polyFill)
		}
		if ks.outline != "" {
			e.text("outline", ks.outline)
		}
		e.end("PolyStyle")
	}
	e.end("Style")
}

func (e *encoder) coordinates(ring *sphere.Ring, closed bool) {
	e.text("coordinates", formatCoordinates(ring, closed, e.opts.LonPrecision, e.opts.LatPrecision))
}

func (e *encoder) altitudeMode(s geotag.Style) {
	if s.Has("altitudeMode") {
		e.text("altitudeMode", s.Value("altitudeMode"))
	}
}

func (e *encoder) geometry(f geotag.Feature) {
	style := f.Tag().Style
	switch f := f.(type) {
	case *geotag.Point:
		e.start("Point")
		e.altitudeMode(style)
		e.coordinates(sphere.NewRing(false, f.Position), false)
		e.end("Point")
	case *geotag.Line:
		e.start("LineString")
		e.altitudeMode(style)
		e.coordinates(f.Ring, false)
		e.end("LineString")
	case *geotag.Polygon:
		// a lone hole has no outer ring to attach to
		e.polygon(f.Boundary, nil, style)
	case *geotag.Composite:
		e.start("MultiGeometry")
		for _, shell := range f.Shells() {
			e.polygon(shell, shell.Children(), style)
		}
		e.end("MultiGeometry")
	}
}

func (e *encoder) polygon(outer *sphere.Boundary, inner []*sphere.Boundary, style geotag.Style) {
	e.start("Polygon")
	e.altitudeMode(style)
	e.start("outerBoundaryIs")
	e.start("LinearRing")
	e.coordinates(outer.Ring(), true)
	e.end("LinearRing")
	e.end("outerBoundaryIs")
	for _, b := range inner {
		e.start("innerBoundaryIs")
		e.start("LinearRing")
		e.coordinates(b.Ring(), true)
		e.end("LinearRing")
		e.end("innerBoundaryIs")
	}
	e.end("Polygon")
}

// isRemote is true for urls pointing to another file.
func isRemote(url string) bool { return strings.ContainsAny(url, "#:/") }
