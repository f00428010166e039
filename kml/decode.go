package kml

import (
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/benoitkugler/geomap/geotag"
	"github.com/benoitkugler/geomap/sphere"
	"golang.org/x/net/html/charset"
)

// DecodeOptions tunes the KML input.
type DecodeOptions struct {
	ErrorMode ErrorMode
	Logger    *slog.Logger

	// IDs allocates the feature identifiers. A new registry
	// is used when nil.
	IDs *geotag.IDRegistry

	// Observer is notified of the composite ring classifications.
	Observer geotag.Observer
}

// node is a generic XML element.
type node struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Text    string     `xml:",chardata"`
	Nodes   []node     `xml:",any"`
}

func (n *node) name() string { return n.XMLName.Local }

func (n *node) attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func (n *node) child(name string) *node {
	for i := range n.Nodes {
		if n.Nodes[i].name() == name {
			return &n.Nodes[i]
		}
	}
	return nil
}

func (n *node) children(name string) []*node {
	var out []*node
	for i := range n.Nodes {
		if n.Nodes[i].name() == name {
			out = append(out, &n.Nodes[i])
		}
	}
	return out
}

func (n *node) childText(name string) string {
	if c := n.child(name); c != nil {
		return strings.TrimSpace(c.Text)
	}
	return ""
}

// walk calls fn on n and all its descendants, depth first.
func (n *node) walk(fn func(*node)) {
	fn(n)
	for i := range n.Nodes {
		n.Nodes[i].walk(fn)
	}
}

// metadata lists the Feature elements without geographic content.
var metadata = map[string]bool{
	"name": true, "description": true, "open": true, "visibility": true,
	"Snippet": true, "snippet": true, "author": true, "link": true, "address": true,
	"phoneNumber": true, "LookAt": true, "Camera": true, "Region": true,
	"TimeStamp": true, "TimeSpan": true, "styleUrl": true, "Style": true,
	"StyleMap": true, "Schema": true, "ExtendedData": true, "drawOrder": true,
	"AddressDetails": true,
}

type decoder struct {
	opts   DecodeOptions
	ids    *geotag.IDRegistry
	logger *slog.Logger
	shared map[string]geotag.Style // document styles, by id
}

// Decode reads a KML document.
// When the root element holds a single Document, it is returned;
// otherwise a document named after the root wraps its content.
func Decode(r io.Reader, opts DecodeOptions) (*geotag.Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	var root node
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("invalid KML: %w", err)
	}

	d := decoder{opts: opts, ids: opts.IDs, logger: opts.Logger, shared: map[string]geotag.Style{}}
	if d.ids == nil {
		d.ids = geotag.NewIDRegistry()
	}
	if d.logger == nil {
		d.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := d.collectStyles(&root); err != nil {
		return nil, err
	}

	content := &root
	if root.name() == "kml" {
		var containers []*node
		for i := range root.Nodes {
			if n := root.Nodes[i].name(); n == "Document" || n == "Folder" {
				containers = append(containers, &root.Nodes[i])
			}
		}
		if len(containers) == 1 && len(root.Nodes) == 1 {
			content = containers[0]
		}
	}
	tag, err := d.tag(content)
	if err != nil {
		return nil, err
	}
	doc := geotag.NewDocument(tag)
	if err := d.container(content, &doc.Group); err != nil {
		return nil, err
	}
	d.logger.Debug("decoded KML document", "id", doc.Tag().ID(), "elements", doc.Len())
	return doc, nil
}

// fail handles a recoverable error according to the error mode.
func (d *decoder) fail(err error) error {
	switch d.opts.ErrorMode {
	case StrictErrorMode:
		return err
	case WarnErrorMode:
		d.logger.Warn("skipping KML content", "error", err)
	}
	return nil
}

func (d *decoder) unsupported(n *node) error {
	return d.fail(fmt.Errorf("<%s>: %w", n.name(), ErrUnsupportedElement))
}

// collectStyles registers the shared Style and StyleMap elements,
// the latter resolved through their "normal" pair.
func (d *decoder) collectStyles(root *node) error {
	var (
		maps []*node
		err  error
	)
	root.walk(func(n *node) {
		if err != nil {
			return
		}
		switch id := n.attr("id"); {
		case id == "":
		case n.name() == "Style":
			var s geotag.Style
			if s, err = d.style(n); err == nil {
				d.shared[id] = s
			}
		case n.name() == "StyleMap":
			maps = append(maps, n)
		}
	})
	if err != nil {
		return err
	}
	for _, m := range maps {
		for _, pair := range m.children("Pair") {
			if pair.childText("key") != "normal" {
				continue
			}
			target := strings.TrimPrefix(pair.childText("styleUrl"), "#")
			if s, ok := d.shared[target]; ok {
				d.shared[m.attr("id")] = s
			}
		}
	}
	return nil
}

// style converts a KML Style element.
func (d *decoder) style(n *node) (geotag.Style, error) {
	var ks kmlStyle
	if line := n.child("LineStyle"); line != nil {
		ks.lineColor = line.childText("color")
		ks.lineWidth = line.childText("width")
	}
	if poly := n.child("PolyStyle"); poly != nil {
		ks.polyColor = poly.childText("color")
		ks.polyFill = poly.childText("fill")
		ks.outline = poly.childText("outline")
	}
	attrs, err := ks.attributes()
	if err == nil {
		var s geotag.Style
		if s, err = geotag.ParseStyle(attrs); err == nil {
			return s, nil
		}
	}
	return geotag.Style{}, d.fail(fmt.Errorf("style %q: %w", n.attr("id"), err))
}

// tag reads the common Feature elements of `n`.
// Features are identified by their id attribute, or by their name.
func (d *decoder) tag(n *node) (geotag.Tag, error) {
	var style geotag.Style
	set := func(key, value string) error {
		if err := style.Set(key, value); err != nil {
			return d.fail(fmt.Errorf("<%s>: %w", n.name(), err))
		}
		return nil
	}

	if url := n.childText("styleUrl"); url != "" {
		local := strings.TrimPrefix(url, "#")
		if shared, ok := d.shared[local]; ok && !isRemote(local) {
			style = shared
		}
		if err := set("styleUrl", local); err != nil {
			return geotag.Tag{}, err
		}
	}
	if s := n.child("Style"); s != nil && s.attr("id") == "" {
		inline, err := d.style(s)
		if err != nil {
			return geotag.Tag{}, err
		}
		style = inline.Inherit(style)
	}
	for _, key := range geotag.PlacemarkKeys {
		if v := n.childText(key); v != "" {
			if err := set(key, v); err != nil {
				return geotag.Tag{}, err
			}
		}
	}
	if ext := n.child("ExtendedData"); ext != nil {
		for _, data := range ext.children("Data") {
			if name := data.attr("name"); name != "" {
				if err := set(geotag.DataPrefix+name, data.childText("value")); err != nil {
					return geotag.Tag{}, err
				}
			}
		}
	}

	name := n.childText("name")
	id := n.attr("id")
	if name == "" && id == "" {
		id = strings.ToLower(n.name())
	}
	tag := d.ids.NewTag(name, id)
	tag.Description = n.childText("description")
	tag.Style = style
	return tag, nil
}

// container decodes the children of a Document or Folder into `g`.
func (d *decoder) container(n *node, g *geotag.Group) error {
	for i := range n.Nodes {
		child := &n.Nodes[i]
		switch child.name() {
		case "Document", "Folder":
			tag, err := d.tag(child)
			if err != nil {
				return err
			}
			sub := geotag.NewGroup(tag)
			if err := d.container(child, sub); err != nil {
				return err
			}
			g.Append(sub)
		case "Placemark":
			f, err := d.placemark(child)
			if err != nil {
				return err
			}
			if f != nil {
				g.Append(f)
			}
		default:
			if metadata[child.name()] {
				continue
			}
			if err := d.unsupported(child); err != nil {
				return err
			}
		}
	}
	return nil
}

var geometries = map[string]bool{
	"Point": true, "LineString": true, "LinearRing": true, "Polygon": true,
	"MultiGeometry": true, "Model": true, "Track": true, "MultiTrack": true,
}

// placemark returns nil when the placemark is skipped.
func (d *decoder) placemark(n *node) (geotag.Feature, error) {
	var geom *node
	for i := range n.Nodes {
		if geometries[n.Nodes[i].name()] {
			geom = &n.Nodes[i]
			break
		}
	}
	if geom == nil {
		return nil, d.fail(fmt.Errorf("placemark %q without geometry: %w", n.childText("name"), ErrUnsupportedElement))
	}
	tag, err := d.tag(n)
	if err != nil {
		return nil, err
	}
	f, err := d.geometry(tag, geom)
	if f == nil {
		d.ids.Release(tag.ID())
	}
	return f, err
}

// geometry returns nil when the geometry is skipped.
func (d *decoder) geometry(tag geotag.Tag, n *node) (geotag.Feature, error) {
	if mode := n.childText("altitudeMode"); mode != "" {
		if err := tag.Style.Set("altitudeMode", mode); err != nil {
			if err := d.fail(err); err != nil {
				return nil, err
			}
		}
	}
	switch n.name() {
	case "Point":
		points, err := d.coordinates(n)
		if points == nil {
			return nil, err
		}
		return geotag.NewPoint(tag, points[0]), nil
	case "LineString":
		points, err := d.coordinates(n)
		if points == nil {
			return nil, err
		}
		return geotag.NewLine(tag, points...), nil
	case "LinearRing":
		ring, err := d.ring(n)
		if ring == nil {
			return nil, err
		}
		p, err := geotag.NewPolygon(tag, ring, false)
		if err != nil {
			return nil, d.fail(err)
		}
		return p, nil
	case "Polygon":
		rings, err := d.polygonRings(n)
		if rings == nil {
			return nil, err
		}
		if len(rings) == 1 {
			p, err := geotag.NewPolygon(tag, rings[0], false)
			if err != nil {
				return nil, d.fail(err)
			}
			return p, nil
		}
		return d.composite(tag, rings)
	case "MultiGeometry":
		return d.multiGeometry(tag, n)
	default:
		return nil, d.unsupported(n)
	}
}

func (d *decoder) coordinates(n *node) ([]sphere.Point, error) {
	c := n.child("coordinates")
	if c == nil {
		return nil, d.fail(fmt.Errorf("<%s> without coordinates: %w", n.name(), ErrInvalidCoordinates))
	}
	points, err := parseCoordinates(c.Text)
	if err != nil {
		return nil, d.fail(fmt.Errorf("<%s>: %w", n.name(), err))
	}
	return points, nil
}

// ring reads a LinearRing, dropping the repeated closing vertex.
func (d *decoder) ring(n *node) (*sphere.Ring, error) {
	points, err := d.coordinates(n)
	if points == nil {
		return nil, err
	}
	if last := len(points) - 1; last > 0 && points[last].Equal(points[0]) {
		points = points[:last]
	}
	return sphere.NewRing(true, points...), nil
}

// polygonRings returns the outer ring of a Polygon followed by its inner rings.
func (d *decoder) polygonRings(n *node) ([]*sphere.Ring, error) {
	var rings []*sphere.Ring
	read := func(boundary *node) error {
		lr := boundary.child("LinearRing")
		if lr == nil {
			return d.unsupported(boundary)
		}
		ring, err := d.ring(lr)
		if ring != nil {
			rings = append(rings, ring)
		}
		return err
	}
	outer := n.child("outerBoundaryIs")
	if outer == nil {
		return nil, d.fail(fmt.Errorf("polygon without outer boundary: %w", ErrUnsupportedElement))
	}
	if err := read(outer); err != nil || len(rings) == 0 {
		return nil, err
	}
	for _, inner := range n.children("innerBoundaryIs") {
		if err := read(inner); err != nil {
			return nil, err
		}
	}
	return rings, nil
}

// composite adds `rings`, containing rings first.
// A ring failing to classify drops the whole composite: the
// classification of the next rings depends on it.
func (d *decoder) composite(tag geotag.Tag, rings []*sphere.Ring) (geotag.Feature, error) {
	c := geotag.NewComposite(tag, d.opts.Observer)
	for i, ring := range rings {
		if _, err := c.Add(ring); err != nil {
			return nil, d.fail(fmt.Errorf("composite %q, ring %d: %w", tag.ID(), i+1, err))
		}
	}
	if c.Len() == 0 {
		return nil, nil
	}
	return c, nil
}

// multiGeometry returns a composite when made of polygons only,
// and a group of the sub geometries otherwise.
func (d *decoder) multiGeometry(tag geotag.Tag, n *node) (geotag.Feature, error) {
	areas := true
	for i := range n.Nodes {
		if name := n.Nodes[i].name(); name != "Polygon" && name != "LinearRing" {
			areas = false
		}
	}
	if areas && len(n.Nodes) != 0 {
		var rings []*sphere.Ring
		for i := range n.Nodes {
			child := &n.Nodes[i]
			if child.name() == "LinearRing" {
				ring, err := d.ring(child)
				if err != nil {
					return nil, err
				}
				if ring != nil {
					rings = append(rings, ring)
				}
				continue
			}
			pr, err := d.polygonRings(child)
			if err != nil {
				return nil, err
			}
			rings = append(rings, pr...)
		}
		return d.composite(tag, rings)
	}

	g := geotag.NewGroup(tag)
	for i := range n.Nodes {
		child := &n.Nodes[i]
		if !geometries[child.name()] {
			if err := d.unsupported(child); err != nil {
				return nil, err
			}
			continue
		}
		sub := d.ids.NewTag(tag.Name, tag.ID())
		f, err := d.geometry(sub, child)
		if err != nil {
			return nil, err
		}
		if f == nil {
			d.ids.Release(sub.ID())
			continue
		}
		g.Append(f)
	}
	return g, nil
}
