package projection

import (
	"errors"
	"image"
	"testing"

	"github.com/benoitkugler/geomap/sphere"
	"gonum.org/v1/gonum/floats/scalar"
	"golang.org/x/image/math/fixed"
)

func TestCoordToPixel(t *testing.T) {
	pr, err := NewEquirectangular("test", DefaultParams)
	if err != nil {
		t.Fatal(err)
	}
	for _, test := range []struct {
		lon, lat, x, y float64
	}{
		{0, 0, 720, 360},
		{-90, 45, 360, 180},
		{90, -45, 1080, 540},
		{179.75, 0, 1439, 360},
		{180, 0, 0, 360}, // wraps
	} {
		x, y := pr.CoordToPixel(sphere.PointFromDegrees(test.lon, test.lat))
		if !scalar.EqualWithinAbs(x, test.x, 1e-6) || !scalar.EqualWithinAbs(y, test.y, 1e-6) {
			// the seam may land on either side
			if !(test.lon == 180 && scalar.EqualWithinAbs(x, 1440, 1e-6)) {
				t.Errorf("(%v, %v): got (%v, %v), want (%v, %v)", test.lon, test.lat, x, y, test.x, test.y)
			}
		}
	}
}

func TestRoundTrip(t *testing.T) {
	params := DefaultParams
	params.CentralMeridian = 150
	params.CentralLatitude = 10
	pr, err := NewEquirectangular("test", params)
	if err != nil {
		t.Fatal(err)
	}
	for _, ll := range [][2]float64{{150, 10}, {-170, 40}, {100, -30}, {0, 0}} {
		p := sphere.PointFromDegrees(ll[0], ll[1])
		x, y := pr.CoordToPixel(p)
		if x < 0 || x >= 1440 {
			t.Errorf("x out of map: %v", x)
		}
		back := pr.PixelToCoord(x, y)
		if !back.ApproxEqual(p, 1e-9) {
			t.Errorf("round trip of %v: got %s", ll, back)
		}
	}
	x, y := pr.CoordToPixel(params.CentralPoint())
	if !scalar.EqualWithinAbs(x, 720, 1e-6) || !scalar.EqualWithinAbs(y, 360, 1e-6) {
		t.Errorf("central point not centered: (%v, %v)", x, y)
	}
}

func TestWindow(t *testing.T) {
	params := DefaultParams
	params.WindowSize = image.Pt(200, 100)
	params.WindowOffset = image.Pt(700, 300)
	pr, err := NewEquirectangular("test", params)
	if err != nil {
		t.Fatal(err)
	}
	if w := params.Window(); w != image.Rect(700, 300, 900, 400) {
		t.Errorf("unexpected window %v", w)
	}
	x, y, outside := CoordToWindow(pr, sphere.PointFromDegrees(0, 0))
	if outside || !scalar.EqualWithinAbs(x, 20, 1e-6) || !scalar.EqualWithinAbs(y, 60, 1e-6) {
		t.Errorf("unexpected window pixel (%v, %v, %v)", x, y, outside)
	}
	if _, _, outside := CoordToWindow(pr, sphere.PointFromDegrees(90, 0)); !outside {
		t.Error("point should be outside of the window")
	}
	back := WindowToCoord(pr, x, y)
	if !back.ApproxEqual(sphere.PointFromDegrees(0, 0), 1e-9) {
		t.Errorf("unexpected %s", back)
	}
	if f := Fixed(pr, sphere.PointFromDegrees(0, 0)); f != (fixed.Point26_6{X: 20 * 64, Y: 60 * 64}) {
		t.Errorf("unexpected fixed point %v", f)
	}
	if DefaultParams.Window() != image.Rect(0, 0, 1440, 720) {
		t.Error("window should default to the map")
	}
}

func TestRegistry(t *testing.T) {
	reg := Default()
	for _, name := range []string{"equirectangular", "Plate Carree", "LatLong"} {
		pr, err := reg.New(name, DefaultParams)
		if err != nil {
			t.Fatal(err)
		}
		if pr.Mapless() {
			t.Errorf("%s should accept maps", name)
		}
	}
	if _, err := reg.New("mercator", DefaultParams); !errors.Is(err, ErrUnknownProjection) {
		t.Errorf("expected ErrUnknownProjection, got %v", err)
	}
	if _, err := reg.New("latlong", Params{}); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams, got %v", err)
	}
	if names := reg.Names(); len(names) != 3 || names[0] != "equirectangular" {
		t.Errorf("unexpected names %v", names)
	}
}
