package sphere

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/s2"
	"gonum.org/v1/gonum/floats/scalar"
)

// square returns the closed ring with corners at (lon ± half, lat ± half),
// counter-clockwise on the map.
func square(lon, lat, half float64) *Ring {
	return NewRingFromDegrees(true,
		[2]float64{lon - half, lat - half},
		[2]float64{lon + half, lat - half},
		[2]float64{lon + half, lat + half},
		[2]float64{lon - half, lat + half},
	)
}

// parallel returns the closed ring along the given latitude,
// heading east.
func parallel(lat float64, n int) *Ring {
	r := &Ring{Closed: true}
	for i := 0; i < n; i++ {
		r.Append(PointFromDegrees(-180+360*float64(i)/float64(n), lat))
	}
	return r
}

func toS2Loop(r *Ring) *s2.Loop {
	pts := make([]s2.Point, r.Len())
	for i, p := range r.Points() {
		pts[i] = s2.PointFromLatLng(s2.LatLngFromDegrees(p.Latitude(), p.Longitude()))
	}
	loop := s2.LoopFromPoints(pts)
	loop.Normalize()
	return loop
}

var testRings = []struct {
	name string
	ring *Ring
}{
	{"square", square(0, 0, 30)},
	{"small square", square(12, -40, 3)},
	{"antimeridian", square(180, 10, 15)},
	{"polar cap", parallel(70, 24)},
	{"southern cap", parallel(-60, 8)},
	{"triangle", NewRingFromDegrees(true, [2]float64{-70, -10}, [2]float64{-40, 5}, [2]float64{-65, 30})},
	{"concave", NewRingFromDegrees(true,
		[2]float64{0, 0}, [2]float64{40, 0}, [2]float64{40, 40}, [2]float64{20, 30}, [2]float64{0, 40})},
}

// TestContainsMatchesS2 compares the winding test with s2 loops on a grid
// which never hits a vertex.
func TestContainsMatchesS2(t *testing.T) {
	for _, test := range testRings {
		loop := toS2Loop(test.ring)
		inside := 0
		for lat := -87.5; lat < 90; lat += 5 {
			for lon := -177.5; lon < 180; lon += 5 {
				p := PointFromDegrees(lon, lat)
				got, err := test.ring.Contains(p)
				if errors.Is(err, ErrDegenerateGeometry) {
					t.Logf("%s: skipping degenerate probe %s", test.name, p)
					continue
				}
				if err != nil {
					t.Fatal(err)
				}
				want := loop.ContainsPoint(s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lon)))
				if got != want {
					t.Errorf("%s: Contains(%s) = %v, want %v", test.name, p, got, want)
				}
				if got {
					inside++
				}
			}
		}
		if inside == 0 {
			t.Errorf("%s: no grid point inside, the test is meaningless", test.name)
		}
	}
}

func TestContainsAcrossAntimeridian(t *testing.T) {
	r := square(180, 0, 10)
	for _, test := range []struct {
		lon, lat float64
		want     bool
	}{
		{180, 0, true},
		{-175, 5, true},
		{175, -5, true},
		{90, 0, false},
		{160, 0, false},
		{-150, 20, false},
	} {
		got, err := r.Contains(PointFromDegrees(test.lon, test.lat))
		if err != nil {
			t.Fatal(err)
		}
		if got != test.want {
			t.Errorf("Contains(%v, %v) = %v", test.lon, test.lat, got)
		}
	}
}

func TestContainsAntipode(t *testing.T) {
	for _, test := range []struct {
		ring   *Ring
		inside Point
	}{
		{square(0, 0, 10), PointFromDegrees(0, 0)},
		{parallel(60, 12), PointFromDegrees(0, 90)},
	} {
		for _, reversed := range []bool{false, true} {
			ring := test.ring.Clone()
			if reversed {
				ring.Reverse()
			}
			in, err := ring.Contains(test.inside)
			if err != nil {
				t.Fatal(err)
			}
			out, err := ring.Contains(Point{test.inside.Mul(-1)})
			if err != nil {
				t.Fatal(err)
			}
			if !in || out {
				t.Errorf("%s (reversed: %v): inside %v, antipode %v", ring, reversed, in, out)
			}
		}
	}

	r := square(0, 0, 10)
	for _, test := range []struct {
		lon, lat float64
		want     bool
	}{
		{0, 0, true},
		{5, -5, true},
		{180, 0, false},
		{176, 3, false},
		{-175, -5, false},
	} {
		got, err := r.Contains(PointFromDegrees(test.lon, test.lat))
		if err != nil {
			t.Fatal(err)
		}
		if got != test.want {
			t.Errorf("Contains(%v, %v) = %v", test.lon, test.lat, got)
		}
	}
}

func TestContainsPole(t *testing.T) {
	r := parallel(80, 12)
	in, err := r.Contains(PointFromDegrees(0, 90))
	if err != nil {
		t.Fatal(err)
	}
	if !in {
		t.Error("cap around the north pole should contain the pole")
	}
	in, err = r.Contains(PointFromDegrees(33, 10))
	if err != nil {
		t.Fatal(err)
	}
	if in {
		t.Error("cap around the north pole should not contain the equator")
	}
}

func TestWindingArgument(t *testing.T) {
	r := square(0, 0, 20)
	arg, err := r.WindingArgument(PointFromDegrees(0, 0).Vector)
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(math.Abs(arg), 2*math.Pi, 1e-9) {
		t.Errorf("enclosed reference: expected a full turn, got %v", arg)
	}
	// the winding does not depend on the reference magnitude
	arg2, err := r.WindingArgument(PointFromDegrees(0, 0).Mul(7))
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(arg, arg2, 1e-9) {
		t.Errorf("scaled reference: %v != %v", arg, arg2)
	}
	arg, err = r.WindingArgument(PointFromDegrees(60, 10).Vector)
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(arg, 0, 1e-9) {
		t.Errorf("exterior reference: expected no turn, got %v", arg)
	}

	// an open ring does not take the closing edge
	polar := parallel(45, 4)
	polar.Closed = false
	arg, err = polar.WindingArgument(J())
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(math.Abs(arg), 1.5*math.Pi, 1e-9) {
		t.Errorf("open ring: expected three quarters of a turn, got %v", arg)
	}
}

func TestWindingArgumentDegenerate(t *testing.T) {
	r := square(0, 0, 20)
	for _, ref := range []Vector{
		r.At(2).Vector,  // on a vertex
		r.At(0).Mul(-1), // antipode of a vertex
		Zero(),
	} {
		if _, err := r.WindingArgument(ref); !errors.Is(err, ErrDegenerateGeometry) {
			t.Errorf("reference %v: expected ErrDegenerateGeometry, got %v", ref, err)
		}
	}
	// the antipode of the reference lies on the meridian edge lon = 20
	ref := PointFromDegrees(-160, 0).Vector
	if _, err := r.WindingArgument(ref); !errors.Is(err, ErrDegenerateGeometry) {
		t.Errorf("edge through the antipode: expected ErrDegenerateGeometry, got %v", err)
	}
}

func TestCentroid(t *testing.T) {
	r := square(25, 35, 5)
	c, err := r.Centroid()
	if err != nil {
		t.Fatal(err)
	}
	// the normal points away from a counter-clockwise ring
	if !scalar.EqualWithinAbs(c.Longitude(), 25-180, 1e-6) || c.Latitude() > -30 || c.Latitude() < -40 {
		t.Errorf("unexpected centroid %s", c)
	}
	r.Reverse()
	c, err = r.Centroid()
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(c.Longitude(), 25, 1e-6) || c.Latitude() < 30 || c.Latitude() > 40 {
		t.Errorf("unexpected centroid %s", c)
	}

	// back and forth along a great circle arc
	flat := NewRingFromDegrees(true, [2]float64{0, 0}, [2]float64{40, 0})
	if n := flat.Normal(); !n.IsZero() {
		t.Errorf("expected a null normal, got %v", n)
	}
	if _, err := flat.Centroid(); !errors.Is(err, ErrDegenerateGeometry) {
		t.Errorf("expected ErrDegenerateGeometry, got %v", err)
	}
	if _, err := flat.WindingArgumentAtCentroid(); !errors.Is(err, ErrDegenerateGeometry) {
		t.Errorf("expected ErrDegenerateGeometry, got %v", err)
	}
	if _, err := flat.Orientation(); !errors.Is(err, ErrDegenerateGeometry) {
		t.Errorf("expected ErrDegenerateGeometry, got %v", err)
	}
}

func TestNormalReversed(t *testing.T) {
	for _, test := range testRings {
		r := test.ring.Clone()
		n := r.Normal()
		r.Reverse()
		m := r.Normal()
		if !scalar.EqualWithinAbs(n.X, -m.X, 1e-12) || !scalar.EqualWithinAbs(n.Y, -m.Y, 1e-12) ||
			!scalar.EqualWithinAbs(n.Z, -m.Z, 1e-12) {
			t.Errorf("%s: normals %v and %v are not opposite", test.name, n, m)
		}
	}
}

func TestOrientation(t *testing.T) {
	r := square(10, 10, 10)
	o, err := r.Orientation()
	if err != nil {
		t.Fatal(err)
	}
	if o != Negative {
		t.Errorf("counter-clockwise ring: expected negative, got %s", o)
	}

	for _, test := range testRings {
		r := test.ring.Clone()
		before := append([]Point(nil), r.Points()...)
		o1, err := r.Orientation()
		if err != nil {
			t.Fatal(err)
		}
		if o1 == Ambiguous {
			t.Errorf("%s: unexpected ambiguous orientation", test.name)
		}
		r.Reverse()
		o2, err := r.Orientation()
		if err != nil {
			t.Fatal(err)
		}
		if o2 != -o1 {
			t.Errorf("%s: reversed orientation %s, original %s", test.name, o2, o1)
		}
		r.Reverse()
		o3, err := r.Orientation()
		if err != nil {
			t.Fatal(err)
		}
		if o3 != o1 {
			t.Errorf("%s: double reverse changed orientation to %s", test.name, o3)
		}
		for i, p := range r.Points() {
			if !p.Equal(before[i]) {
				t.Fatalf("%s: double reverse changed vertex %d", test.name, i)
			}
		}
	}
}

func TestRingEditing(t *testing.T) {
	a, b, c, d := PointFromDegrees(0, 0), PointFromDegrees(10, 0), PointFromDegrees(10, 10), PointFromDegrees(0, 10)
	r := NewRing(false, a, c)
	r.Insert(1, b)
	r.Append(d)
	if r.Len() != 4 || !r.At(1).Equal(b) || !r.At(3).Equal(d) {
		t.Fatalf("unexpected ring %s", r)
	}
	if i := r.Index(c); i != 2 {
		t.Errorf("Index: got %d", i)
	}
	if err := r.Remove(b); err != nil {
		t.Fatal(err)
	}
	if err := r.Remove(b); !errors.Is(err, ErrVertexNotFound) {
		t.Errorf("expected ErrVertexNotFound, got %v", err)
	}
	if p := r.Pop(-1); !p.Equal(d) || r.Len() != 2 {
		t.Errorf("Pop: got %s, ring %s", p, r)
	}

	other := NewRing(false, b, d)
	r.InsertRing(1, other, false)
	want := []Point{a, b, d, c}
	for i, p := range r.Points() {
		if !p.Equal(want[i]) {
			t.Fatalf("InsertRing: got %s", r)
		}
	}
	r2 := NewRing(false, a, c)
	if err := r2.InsertRingAt(c, other, true); err != nil {
		t.Fatal(err)
	}
	want = []Point{a, d, b, c}
	for i, p := range r2.Points() {
		if !p.Equal(want[i]) {
			t.Fatalf("InsertRingAt: got %s", r2)
		}
	}
	if err := r2.InsertRingAt(PointFromDegrees(50, 50), other, false); !errors.Is(err, ErrVertexNotFound) {
		t.Errorf("expected ErrVertexNotFound, got %v", err)
	}

	cl := r2.Clone()
	cl.Set(0, d)
	if r2.At(0).Equal(d) {
		t.Error("Clone shares its vertices")
	}
	r2.Clear()
	if r2.Len() != 0 {
		t.Error("Clear left vertices")
	}
}
