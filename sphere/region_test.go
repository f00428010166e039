package sphere

import (
	"errors"
	"testing"
)

func TestRegionNesting(t *testing.T) {
	var rg Region
	a, err := rg.Add(square(0, 0, 40))
	if err != nil {
		t.Fatal(err)
	}
	if a.IsHole() {
		t.Error("first ring should be a shell")
	}

	// given clockwise, the hole is stored as is
	cw := square(0, 0, 25)
	cw.Reverse()
	b, err := rg.Add(cw)
	if err != nil {
		t.Fatal(err)
	}
	if !b.IsHole() {
		t.Error("ring inside a shell should be a hole")
	}
	if len(a.Children()) != 1 || a.Children()[0] != b {
		t.Errorf("hole not attached to its shell: %v", a.Children())
	}

	c, err := rg.Add(square(0, 0, 15))
	if err != nil {
		t.Fatal(err)
	}
	if c.IsHole() {
		t.Error("ring inside a hole should be a shell")
	}
	d, err := rg.Add(square(0, 0, 5))
	if err != nil {
		t.Fatal(err)
	}
	if !d.IsHole() {
		t.Error("ring inside the inner shell should be a hole")
	}
	if len(c.Children()) != 1 || c.Children()[0] != d {
		t.Error("hole should be attached to the smallest enclosing shell")
	}
	if len(a.Children()) != 1 {
		t.Error("outer shell should keep a single hole")
	}

	if rg.Len() != 4 || len(rg.Shells()) != 2 {
		t.Fatalf("unexpected region size %d (%d shells)", rg.Len(), len(rg.Shells()))
	}
	want := []*Boundary{a, b, c, d}
	for i, got := range rg.Boundaries() {
		if got != want[i] {
			t.Errorf("boundary %d out of order", i)
		}
	}
	parents := map[*Boundary]*Boundary{}
	rg.Walk(func(b, parent *Boundary) { parents[b] = parent })
	if parents[a] != nil || parents[b] != a || parents[c] != nil || parents[d] != c {
		t.Errorf("unexpected parents %v", parents)
	}

	for _, shell := range []*Boundary{a, c} {
		if shell.Orientation() != Negative {
			t.Errorf("shell orientation: %s", shell.Orientation())
		}
	}
	for _, hole := range []*Boundary{b, d} {
		if hole.Orientation() != Positive {
			t.Errorf("hole orientation: %s", hole.Orientation())
		}
		o, err := hole.Ring().Orientation()
		if err != nil {
			t.Fatal(err)
		}
		if o != hole.Orientation() {
			t.Errorf("stored ring orientation %s does not match %s", o, hole.Orientation())
		}
	}
	// the input ring is copied, not modified
	if o, _ := cw.Orientation(); o != Positive {
		t.Errorf("input ring modified: %s", o)
	}
}

func TestRegionDisjointShells(t *testing.T) {
	var rg Region
	for _, lon := range []float64{-60, 60, 150} {
		b, err := rg.Add(square(lon, 0, 10))
		if err != nil {
			t.Fatal(err)
		}
		if b.IsHole() {
			t.Errorf("disjoint ring at %v should be a shell", lon)
		}
	}
	if len(rg.Shells()) != 3 || rg.Len() != 3 {
		t.Errorf("expected 3 shells, got %d", len(rg.Shells()))
	}
}

func TestRegionOppositeShells(t *testing.T) {
	var rg Region
	if _, err := rg.Add(square(0, 0, 10)); err != nil {
		t.Fatal(err)
	}
	b, err := rg.Add(square(176, 3, 2))
	if err != nil {
		t.Fatal(err)
	}
	if b.IsHole() {
		t.Error("ring on the opposite side of the globe should be a shell")
	}
	if len(rg.Shells()) != 2 || len(rg.Shells()[0].Children()) != 0 {
		t.Errorf("expected 2 shells without children, got %d", len(rg.Shells()))
	}
}

func TestRegionErrors(t *testing.T) {
	var rg Region
	if _, err := rg.Add(square(0, 0, 40)); err != nil {
		t.Fatal(err)
	}
	if _, err := rg.Add(NewRing(true)); !errors.Is(err, ErrInvalidRing) {
		t.Errorf("expected ErrInvalidRing, got %v", err)
	}
	if _, err := rg.Add(nil); !errors.Is(err, ErrInvalidRing) {
		t.Errorf("expected ErrInvalidRing, got %v", err)
	}

	// the probe vertex lies on the shell
	shared := NewRingFromDegrees(true, [2]float64{-40, -40}, [2]float64{-30, -20}, [2]float64{-20, -30})
	if _, err := rg.Add(shared); !errors.Is(err, ErrDegenerateGeometry) {
		t.Errorf("expected ErrDegenerateGeometry, got %v", err)
	}

	// a flat ring cannot be oriented
	flat := NewRingFromDegrees(true, [2]float64{100, 0}, [2]float64{120, 0})
	if _, err := rg.Add(flat); !errors.Is(err, ErrDegenerateGeometry) {
		t.Errorf("expected ErrDegenerateGeometry, got %v", err)
	}

	if rg.Len() != 1 || len(rg.Shells()[0].Children()) != 0 {
		t.Errorf("failed additions modified the region: %d boundaries", rg.Len())
	}
}

func TestNewBoundary(t *testing.T) {
	open := square(30, 30, 5)
	open.Closed = false
	b, err := NewBoundary(open, true)
	if err != nil {
		t.Fatal(err)
	}
	if !b.Ring().Closed {
		t.Error("boundary ring should be closed")
	}
	if open.Closed {
		t.Error("input ring modified")
	}
	if b.Orientation() != Positive {
		t.Errorf("hole orientation: %s", b.Orientation())
	}
	if err := b.SetHole(false); err != nil {
		t.Fatal(err)
	}
	if b.IsHole() || b.Orientation() != Negative {
		t.Errorf("shell orientation: %s", b.Orientation())
	}
	in, err := b.Contains(PointFromDegrees(30, 30))
	if err != nil {
		t.Fatal(err)
	}
	if !in {
		t.Error("boundary should contain its center")
	}
}
