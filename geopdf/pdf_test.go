package geopdf

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"

	"github.com/benoitkugler/geomap/geodraw"
	"github.com/benoitkugler/geomap/geotag"
	"github.com/benoitkugler/geomap/projection"
	"github.com/benoitkugler/geomap/sphere"
	"golang.org/x/image/math/fixed"
)

func randPoint(x, y float64) fixed.Point26_6 {
	return fToFixed(x+rand.Float64()*10, y+rand.Float64()*10)
}

func TestBoundingBox(t *testing.T) {
	var bb BoundingBox
	if _, ok := bb.Extent(); ok {
		t.Fatal("empty box expected")
	}
	bb.Start(fToFixed(10, 5))
	bb.Line(fToFixed(20, 5)) // horizontal lines are kept
	box, _ := bb.Extent()
	if box != (fixed.Rectangle26_6{Min: fToFixed(10, 5), Max: fToFixed(20, 5)}) {
		t.Errorf("unexpected box %v", box)
	}

	for i := 0; i < 50; i++ {
		curve := cubicBezier{randPoint(40, 40), randPoint(35, 35), randPoint(45, 45), randPoint(30, 30)}
		box := computeBoundingBox(curve)
		minX, minY := math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		for j := 0; j <= 1000; j++ {
			x, y := curve.evaluateCurve(float64(j) / 1000)
			minX, minY = math.Min(minX, x), math.Min(minY, y)
			maxX, maxY = math.Max(maxX, x), math.Max(maxY, y)
		}
		for _, v := range [...][2]float64{
			{float64(box.Min.X) / 64, minX}, {float64(box.Min.Y) / 64, minY},
			{float64(box.Max.X) / 64, maxX}, {float64(box.Max.Y) / 64, maxY},
		} {
			if math.Abs(v[0]-v[1]) > 0.05 {
				t.Fatalf("curve %v: box %v, sampled extent (%v %v %v %v)", curve, box, minX, minY, maxX, maxY)
			}
		}
	}
}

func TestQuadraticRoots(t *testing.T) {
	if r := quadraticRoots(0, 0, 1); r != nil {
		t.Errorf("expected no root, got %v", r)
	}
	if r := quadraticRoots(0, 2, -1); len(r) != 1 || r[0] != 0.5 {
		t.Errorf("unexpected roots %v", r)
	}
	if r := quadraticRoots(1, 0, -4); len(r) != 2 || r[0] != 2 || r[1] != -2 {
		t.Errorf("unexpected roots %v", r)
	}
	if r := quadraticRoots(1, 0, 4); r != nil {
		t.Errorf("expected no real root, got %v", r)
	}
}

func square(lon, lat, half float64) *sphere.Ring {
	return sphere.NewRingFromDegrees(true,
		[2]float64{lon - half, lat - half},
		[2]float64{lon + half, lat - half},
		[2]float64{lon + half, lat + half},
		[2]float64{lon - half, lat + half},
	)
}

func testScene(t *testing.T) *geodraw.Scene {
	t.Helper()
	ids := geotag.NewIDRegistry()
	doc := geotag.NewDocument(ids.NewTag("Lakes", ""))
	tag := ids.NewTag("lake", "")
	tag.Style = geotag.MustParseStyle(map[string]string{"fill": "#3366cc", "stroke": "black", "fill-opacity": "0.5"})
	lake := geotag.NewComposite(tag, nil)
	for _, r := range []*sphere.Ring{square(0, 0, 30), square(0, 0, 10)} {
		if _, err := lake.Add(r); err != nil {
			t.Fatal(err)
		}
	}
	doc.Append(lake, geotag.NewPoint(ids.NewTag("city", ""), sphere.PointFromDegrees(90, 45)))

	params := projection.DefaultParams
	params.MapSize = image.Pt(360, 180)
	pr, err := projection.NewEquirectangular("equirectangular", params)
	if err != nil {
		t.Fatal(err)
	}
	return geodraw.Compile(doc, pr, nil)
}

func TestRenderer(t *testing.T) {
	scene := testScene(t)
	pdf := NewDocument(scene)
	r := NewRenderer(pdf)
	scene.Draw(r, 1)
	if err := pdf.Error(); err != nil {
		t.Fatal(err)
	}
	box, ok := r.Bounds()
	if !ok {
		t.Fatal("expected a bounding box")
	}
	// lake from (150, 60) to (210, 120), city around (270, 45)
	if math.Abs(float64(box.Min.X)/64-150) > 0.1 || math.Abs(float64(box.Max.Y)/64-120) > 0.1 {
		t.Errorf("unexpected bounds %v", box)
	}
	if maxX := float64(box.Max.X) / 64; maxX < 272 || maxX > 274 {
		t.Errorf("unexpected bounds %v", box)
	}
}

func TestRenderScene(t *testing.T) {
	base := image.NewNRGBA(image.Rect(0, 0, 36, 18))
	for i := range base.Pix {
		base.Pix[i] = 0xff
	}
	base.SetNRGBA(0, 0, color.NRGBA{R: 0x80, A: 0xff})
	for _, img := range []image.Image{nil, base} {
		var buf bytes.Buffer
		if err := RenderScene(testScene(t), img, &buf); err != nil {
			t.Fatal(err)
		}
		if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
			t.Errorf("invalid PDF output")
		}
	}
}
