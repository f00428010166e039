// Package geosvg writes geographic documents as SVG images,
// projected in the window of a projection.
package geosvg

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"image"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/benoitkugler/geomap/geodraw"
	"github.com/benoitkugler/geomap/georaster"
	"github.com/benoitkugler/geomap/geotag"
	"github.com/benoitkugler/geomap/projection"
)

const svgNamespace = "http://www.w3.org/2000/svg"

// Options tunes the SVG output.
type Options struct {
	// BaseMap is embedded as a PNG image below the features,
	// when not nil.
	BaseMap image.Image

	// Indent is used for each nesting level; no indentation when empty.
	Indent string

	Logger *slog.Logger
}

type encoder struct {
	xml    *xml.Encoder
	pr     projection.Projection
	logger *slog.Logger
}

// fmtFloat rounds to 3 decimals, trimming the trailing zeros.
func fmtFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', 3, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" {
		return "0"
	}
	return s
}

// splitText cuts `text` in lines of `chunkSize` characters,
// the first one being `firstChunkSize` long.
func splitText(text string, chunkSize, firstChunkSize int) string {
	if len(text) <= firstChunkSize {
		return text
	}
	chunks := []string{text[:firstChunkSize]}
	for text = text[firstChunkSize:]; len(text) > chunkSize; text = text[chunkSize:] {
		chunks = append(chunks, text[:chunkSize])
	}
	chunks = append(chunks, text)
	return strings.Join(chunks, "\n")
}

func attr(name, value string) xml.Attr { return xml.Attr{Name: xml.Name{Local: name}, Value: value} }

// styleAttrs returns the id of `f` followed by its presentation attributes.
func styleAttrs(f geotag.Feature) []xml.Attr {
	attrs := []xml.Attr{attr("id", f.Tag().ID())}
	for _, kv := range f.Tag().Style.SVGAttributes() {
		attrs = append(attrs, attr(kv[0], kv[1]))
	}
	return attrs
}

func (e *encoder) element(name string, attrs []xml.Attr) error {
	start := xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs}
	if err := e.xml.EncodeToken(start); err != nil {
		return err
	}
	return e.xml.EncodeToken(start.End())
}

// Encode writes `doc`, projected by `pr`, as an SVG document.
// An empty composite is an error (see geotag.ErrEmptyComposite).
func Encode(w io.Writer, doc *geotag.Document, pr projection.Projection, opts Options) error {
	e := encoder{xml: xml.NewEncoder(w), pr: pr, logger: opts.Logger}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	e.xml.Indent("", opts.Indent)

	params := pr.Params()
	win := params.Window()
	width, height := strconv.Itoa(win.Dx()), strconv.Itoa(win.Dy())
	if doc.Width != "" {
		width = doc.Width
	}
	if doc.Height != "" {
		height = doc.Height
	}
	attrs := append([]xml.Attr{attr("xmlns", svgNamespace)}, styleAttrs(doc)...)
	attrs = append(attrs, attr("width", width), attr("height", height))
	if win.Size() != params.MapSize {
		attrs = append(attrs, attr("viewBox", fmt.Sprintf("0 0 %d %d", win.Dx(), win.Dy())))
	}
	root := xml.StartElement{Name: xml.Name{Local: "svg"}, Attr: attrs}
	if err := e.xml.EncodeToken(root); err != nil {
		return err
	}

	if opts.BaseMap != nil {
		if err := e.encodeBaseMap(opts.BaseMap); err != nil {
			return err
		}
	}
	for _, f := range doc.Elements() {
		if err := e.encodeFeature(f, doc.Tag().Style); err != nil {
			return err
		}
	}

	if err := e.xml.EncodeToken(root.End()); err != nil {
		return err
	}
	return e.xml.Flush()
}

// Marshal returns the SVG document as bytes.
func Marshal(doc *geotag.Document, pr projection.Projection, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc, pr, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *encoder) encodeBaseMap(img image.Image) error {
	var buf bytes.Buffer
	if err := georaster.EncodePNG(&buf, img); err != nil {
		return fmt.Errorf("embedding base map: %w", err)
	}
	data := splitText(base64.StdEncoding.EncodeToString(buf.Bytes()), 120, 80)
	size := img.Bounds().Size()
	e.logger.Debug("embedding base map", "width", size.X, "height", size.Y, "bytes", buf.Len())
	return e.element("image", []xml.Attr{
		attr("x", "0"), attr("y", "0"),
		attr("width", strconv.Itoa(size.X)), attr("height", strconv.Itoa(size.Y)),
		attr("href", "data:image/png;base64,"+data),
	})
}

func (e *encoder) encodeFeature(f geotag.Feature, inherited geotag.Style) error {
	style := f.Tag().Style.Inherit(inherited)
	attrs := styleAttrs(f)
	switch f := f.(type) {
	case *geotag.Group:
		start := xml.StartElement{Name: xml.Name{Local: "g"}, Attr: attrs}
		if err := e.xml.EncodeToken(start); err != nil {
			return err
		}
		for _, child := range f.Elements() {
			if err := e.encodeFeature(child, style); err != nil {
				return err
			}
		}
		return e.xml.EncodeToken(start.End())
	case *geotag.Document:
		return e.encodeFeature(&f.Group, inherited)
	case *geotag.Point:
		x, y, outside := projection.CoordToWindow(e.pr, f.Position)
		if outside {
			e.logger.Debug("point outside of the window", "id", f.Tag().ID())
		}
		attrs = append(attrs, attr("cx", fmtFloat(x)), attr("cy", fmtFloat(y)), attr("r", fmtFloat(style.Radius())))
		return e.element("circle", attrs)
	case *geotag.Line:
		// open polylines are only stroked, black by default
		if style.Fill().Kind == geotag.PaintUnset {
			attrs = append(attrs, attr("fill", "none"))
		}
		if style.Stroke().Kind == geotag.PaintUnset {
			attrs = append(attrs, attr("stroke", "black"))
		}
		return e.path(f, style, attrs)
	case *geotag.Polygon:
		return e.path(f, style, attrs)
	case *geotag.Composite:
		if f.Len() == 0 {
			return fmt.Errorf("composite %s: %w", f.Tag().ID(), geotag.ErrEmptyComposite)
		}
		// rings are always combined with the even-odd rule
		kept := attrs[:0]
		for _, a := range attrs {
			if a.Name.Local != "fill-rule" {
				kept = append(kept, a)
			}
		}
		return e.path(f, style, append(kept, attr("fill-rule", "evenodd")))
	default:
		return fmt.Errorf("unsupported feature %s", f.Kind())
	}
}

func (e *encoder) path(f geotag.Feature, style geotag.Style, attrs []xml.Attr) error {
	p := geodraw.FeaturePath(f, style, e.pr)
	if len(p) == 0 {
		e.logger.Debug("feature outside of the window", "id", f.Tag().ID())
	}
	return e.element("path", append(attrs, attr("d", p.ToSVGPath())))
}
