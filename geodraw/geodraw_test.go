package geodraw

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/benoitkugler/geomap/geotag"
	"github.com/benoitkugler/geomap/projection"
	"github.com/benoitkugler/geomap/sphere"
	"golang.org/x/image/math/fixed"
)

func square(lon, lat, half float64) *sphere.Ring {
	return sphere.NewRingFromDegrees(true,
		[2]float64{lon - half, lat - half},
		[2]float64{lon + half, lat - half},
		[2]float64{lon + half, lat + half},
		[2]float64{lon - half, lat + half},
	)
}

// subpaths splits the path on MoveTo and returns the points of each part.
func subpaths(p Path) [][]fixed.Point26_6 {
	var out [][]fixed.Point26_6
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			out = append(out, []fixed.Point26_6{fixed.Point26_6(op)})
		case LineTo:
			out[len(out)-1] = append(out[len(out)-1], fixed.Point26_6(op))
		case CubicTo:
			out[len(out)-1] = append(out[len(out)-1], op[2])
		}
	}
	return out
}

func TestToSVGPath(t *testing.T) {
	p := Path{
		MoveTo(toFixedP(1, 2)),
		LineTo(toFixedP(3.5, 4)),
		CubicTo{toFixedP(0, 0), toFixedP(-1.25, 0), toFixedP(10, 20)},
		Close{},
	}
	if s := p.ToSVGPath(); s != "M1,2 L3.5,4 C0,0,-1.25,0,10,20 Z" {
		t.Errorf("unexpected svg path %q", s)
	}
	b := p.Bounds()
	if b.Min != toFixedP(-1.25, 0) || b.Max != toFixedP(10, 20) {
		t.Errorf("unexpected bounds %v", b)
	}
	p.Clear()
	if len(p) != 0 || p.Bounds() != (fixed.Rectangle26_6{}) {
		t.Error("expected empty path")
	}
}

func TestCircle(t *testing.T) {
	var p Path
	p.addCircle(10, 10, 5)
	if _, ok := p[0].(MoveTo); !ok {
		t.Fatal("expected MoveTo")
	}
	if _, ok := p[len(p)-1].(Close); !ok {
		t.Fatal("expected Close")
	}
	if len(p) != 2+16 {
		t.Errorf("expected 16 cubic segments, got %d operations", len(p))
	}
	b := p.Bounds()
	for _, v := range []struct{ got, want float64 }{
		{float64(b.Min.X) / 64, 5}, {float64(b.Min.Y) / 64, 5},
		{float64(b.Max.X) / 64, 15}, {float64(b.Max.Y) / 64, 15},
	} {
		if math.Abs(v.got-v.want) > 0.1 {
			t.Errorf("unexpected circle bounds %v", b)
		}
	}
	// every on-curve point is on the circle
	for _, pt := range subpaths(p)[0] {
		r := math.Hypot(float64(pt.X)/64-10, float64(pt.Y)/64-10)
		if math.Abs(r-5) > 0.02 {
			t.Errorf("point %v at distance %v", pt, r)
		}
	}
}

func TestUnwrap(t *testing.T) {
	points := []pixel{{1400, 10}, {40, 10}, {60, 20}}
	if drift := unwrap(points, 1440, false); drift != 0 {
		t.Errorf("open rings have no drift, got %v", drift)
	}
	if want := []pixel{{1400, 10}, {1480, 10}, {1500, 20}}; !reflect.DeepEqual(points, want) {
		t.Errorf("expected %v, got %v", want, points)
	}

	around := make([]pixel, 24)
	for i := range around {
		around[i] = pixel{float64(60*i) + 5, 80}
	}
	around[10].x -= 1440
	if drift := unwrap(around, 1440, true); drift != 1440 {
		t.Errorf("expected a full turn, got %v", drift)
	}
	for i := 1; i < len(around); i++ {
		if around[i].x-around[i-1].x != 60 {
			t.Fatalf("unexpected step at %d: %v", i, around)
		}
	}
}

func newProjection(t *testing.T, params projection.Params) projection.Projection {
	t.Helper()
	pr, err := projection.Default().New("equirectangular", params)
	if err != nil {
		t.Fatal(err)
	}
	return pr
}

func checkSteps(t *testing.T, p Path, maxStep float64) {
	t.Helper()
	for _, sub := range subpaths(p) {
		for i := 1; i < len(sub); i++ {
			if dx := math.Abs(float64(sub[i].X-sub[i-1].X)) / 64; dx > maxStep {
				t.Errorf("step of %v pixels in %v", dx, sub)
			}
		}
	}
}

func TestLineAcrossAntimeridian(t *testing.T) {
	pr := newProjection(t, projection.DefaultParams)
	line := geotag.NewLine(geotag.Tag{}, sphere.PointFromDegrees(170, 0), sphere.PointFromDegrees(-170, 0))
	p := FeaturePath(line, geotag.Style{}, pr)
	subs := subpaths(p)
	if len(subs) != 2 {
		t.Fatalf("expected two copies, got %s", p)
	}
	checkSteps(t, p, 100)
	// the first copy is the unwrapped line, the second one is shifted by a map
	if subs[0][0] != toFixedP(-40, 360) || subs[0][1] != toFixedP(40, 360) {
		t.Errorf("unexpected shifted copy %v", subs[0])
	}
	if subs[1][0] != toFixedP(1400, 360) || subs[1][1] != toFixedP(1480, 360) {
		t.Errorf("unexpected copy %v", subs[1])
	}
	for _, op := range p {
		if _, ok := op.(Close); ok {
			t.Error("lines should not be closed")
		}
	}
}

func TestPolarCap(t *testing.T) {
	pr := newProjection(t, projection.DefaultParams)
	ring := sphere.NewRing(true)
	for i := 0; i < 24; i++ {
		ring.Append(sphere.PointFromDegrees(-180+15*float64(i), 70))
	}
	poly, err := geotag.NewPolygon(geotag.Tag{}, ring, false)
	if err != nil {
		t.Fatal(err)
	}
	p := FeaturePath(poly, geotag.Style{}, pr)
	var reachesPole bool
	for _, sub := range subpaths(p) {
		for i, pt := range sub {
			if pt.Y == 0 {
				reachesPole = true
			}
			if pt.Y != 0 && pt.Y != 80*64 {
				t.Errorf("unexpected point %v", pt)
			}
			// only the pole line may span the map
			if i > 0 && pt.Y != 0 && math.Abs(float64(pt.X-sub[i-1].X))/64 > 61 {
				t.Errorf("step of %v in %v", pt.X-sub[i-1].X, sub)
			}
		}
	}
	if !reachesPole {
		t.Errorf("cap should be closed through the north pole: %s", p)
	}
}

func TestWindowOffset(t *testing.T) {
	params := projection.DefaultParams
	params.WindowSize = image.Pt(200, 100)
	params.WindowOffset = image.Pt(700, 300)
	pr := newProjection(t, params)
	pt := geotag.NewPoint(geotag.Tag{}, sphere.PointFromDegrees(0, 0))
	p := FeaturePath(pt, geotag.MustParseStyle(map[string]string{"r": "4"}), pr)
	if len(subpaths(p)) != 1 {
		t.Fatalf("expected one marker, got %s", p)
	}
	b := p.Bounds()
	cx, cy := float64(b.Min.X+b.Max.X)/128, float64(b.Min.Y+b.Max.Y)/128
	if math.Abs(cx-20) > 0.05 || math.Abs(cy-60) > 0.05 {
		t.Errorf("marker centered on (%v, %v)", cx, cy)
	}
	far := geotag.NewPoint(geotag.Tag{}, sphere.PointFromDegrees(90, 0))
	if p := FeaturePath(far, geotag.Style{}, pr); len(p) != 0 {
		t.Errorf("marker outside of the window should be dropped, got %s", p)
	}
}

func testDocument(t *testing.T) *geotag.Document {
	t.Helper()
	ids := geotag.NewIDRegistry()
	doc := geotag.NewDocument(ids.NewTag("World", ""))

	countries := ids.NewTag("Countries", "")
	countries.Style = geotag.MustParseStyle(map[string]string{"fill": "red", "stroke": "blue"})
	group := geotag.NewGroup(countries)
	poly, err := geotag.NewPolygon(ids.NewTag("Square", ""), square(0, 0, 20), false)
	if err != nil {
		t.Fatal(err)
	}
	lake := geotag.NewComposite(ids.NewTag("Lake", ""), nil)
	for _, r := range []*sphere.Ring{square(60, 0, 20), square(60, 0, 5)} {
		if _, err := lake.Add(r); err != nil {
			t.Fatal(err)
		}
	}
	group.Append(poly, lake)

	river := geotag.NewLine(ids.NewTag("River", ""), sphere.PointFromDegrees(-60, 0), sphere.PointFromDegrees(-50, 10))
	city := geotag.NewPoint(ids.NewTag("City", ""), sphere.PointFromDegrees(100, 40))
	empty := geotag.NewComposite(ids.NewTag("Empty", ""), nil)
	doc.Append(group, river, city, empty)
	return doc
}

func TestCompile(t *testing.T) {
	pr := newProjection(t, projection.DefaultParams)
	scene := Compile(testDocument(t), pr, nil)
	if scene.Width != 1440 || scene.Height != 720 || scene.Title != "World" {
		t.Errorf("unexpected scene header %+v", scene)
	}
	var ids []string
	for _, sp := range scene.Paths {
		ids = append(ids, sp.ID)
	}
	if want := []string{"square", "lake", "river", "city"}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	red := color.NRGBA{R: 0xff, A: 0xff}
	square, lake, river, city := scene.Paths[0], scene.Paths[1], scene.Paths[2], scene.Paths[3]
	if square.Style.FillerColor == nil || *square.Style.FillerColor != red || square.Style.LinerColor == nil {
		t.Errorf("style should be inherited: %+v", square.Style)
	}
	if !square.Style.UseNonZeroWinding || lake.Style.UseNonZeroWinding {
		t.Error("composites are filled with the even-odd rule")
	}
	if len(subpaths(lake.Path)) != 2 {
		t.Errorf("expected shell and hole, got %s", lake.Path)
	}
	if river.Style.FillerColor != nil || river.Style.LinerColor == nil || *river.Style.LinerColor != black {
		t.Errorf("lines should be stroked only: %+v", river.Style)
	}
	if city.Kind != geotag.KindPoint || *city.Style.FillerColor != black {
		t.Errorf("unexpected marker %+v", city)
	}
}

type recordingDrawer struct {
	name   string
	log    *[]string
	colors *[]color.NRGBA
}

func (d recordingDrawer) record(format string, args ...interface{}) {
	*d.log = append(*d.log, d.name+" "+fmt.Sprintf(format, args...))
}

func (d recordingDrawer) Clear()                             { d.record("clear") }
func (d recordingDrawer) Start(a fixed.Point26_6)            { d.record("start") }
func (d recordingDrawer) Line(b fixed.Point26_6)             { d.record("line") }
func (d recordingDrawer) CubeBezier(b, c, e fixed.Point26_6) { d.record("cube") }
func (d recordingDrawer) Stop(closeLoop bool)                { d.record("stop %v", closeLoop) }
func (d recordingDrawer) Draw()                              { d.record("draw") }
func (d recordingDrawer) SetWinding(nonZero bool)            { d.record("winding %v", nonZero) }

func (d recordingDrawer) SetColor(c color.NRGBA, opacity float64) {
	*d.colors = append(*d.colors, c)
	d.record("opacity %.2f", opacity)
}

func (d recordingDrawer) SetStrokeOptions(options StrokeOptions) {
	d.record("width %d %s %s", options.LineWidth.Round(), options.Join.LineJoin, options.Join.LineCap)
}

type recordingDriver struct {
	log    []string
	colors []color.NRGBA
}

func (r *recordingDriver) SetupDrawers(willFill, willStroke bool) (f Filler, s Stroker) {
	if willFill {
		f = recordingDrawer{"fill", &r.log, &r.colors}
	}
	if willStroke {
		s = recordingDrawer{"stroke", &r.log, &r.colors}
	}
	return f, s
}

func TestStyledPathDraw(t *testing.T) {
	style := NewPathStyle(geotag.MustParseStyle(map[string]string{
		"fill": "red", "fill-opacity": "0.5", "stroke": "#00f", "stroke-width": "2",
		"stroke-linejoin": "round", "fill-rule": "evenodd",
	}))
	sp := StyledPath{Path: Path{MoveTo(toFixedP(0, 0)), LineTo(toFixedP(10, 0)), LineTo(toFixedP(0, 10)), Close{}}, Style: style}
	var d recordingDriver
	sp.Draw(&d, 0.5)
	want := []string{
		"fill clear", "fill winding false",
		"fill stop false", "fill start", "fill line", "fill line", "fill stop true", "fill stop false",
		"fill opacity 0.25", "fill draw", "fill winding true",
		"stroke clear", "stroke width 2 Round ButtCap",
		"stroke stop false", "stroke start", "stroke line", "stroke line", "stroke stop true", "stroke stop false",
		"stroke opacity 0.50", "stroke draw",
	}
	if !reflect.DeepEqual(d.log, want) {
		t.Errorf("unexpected draw calls:\n%s", strings.Join(d.log, "\n"))
	}
	if want := []color.NRGBA{{R: 0xff, A: 0xff}, {B: 0xff, A: 0xff}}; !reflect.DeepEqual(d.colors, want) {
		t.Errorf("unexpected colors %v", d.colors)
	}

	d = recordingDriver{}
	sp.Style.LinerColor = nil
	sp.Style.FillerColor = nil
	sp.Draw(&d, 1)
	if len(d.log) != 0 {
		t.Errorf("nothing should be drawn, got %v", d.log)
	}
}

func TestSceneDraw(t *testing.T) {
	pr := newProjection(t, projection.DefaultParams)
	scene := Compile(testDocument(t), pr, nil)
	var d recordingDriver
	scene.Draw(&d, 1)
	var draws int
	for _, l := range d.log {
		if strings.HasSuffix(l, " draw") {
			draws++
		}
	}
	// square and lake are filled and stroked, the river stroked, the city filled
	if draws != 6 {
		t.Errorf("expected 6 draw calls, got %d", draws)
	}
	minX, minY, maxX, maxY := scene.Bounds()
	if minX < 0 || minY < 0 || maxX > 1440 || maxY > 720 || minX >= maxX || minY >= maxY {
		t.Errorf("unexpected scene bounds %v %v %v %v", minX, minY, maxX, maxY)
	}
}
