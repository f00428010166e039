package geodraw

import (
	"fmt"
	"strings"

	"golang.org/x/image/math/fixed"
)

// This file defines the basic path structure

// Operation groups the different path commands
type Operation interface {
	// add itself on the driver `d`
	drawTo(d Drawer)
}

type MoveTo fixed.Point26_6

type LineTo fixed.Point26_6

type CubicTo [3]fixed.Point26_6

type Close struct{}

// starts a new path at the given point.
func (op MoveTo) drawTo(d Drawer) {
	d.Stop(false) // implicit close if currently in path.
	d.Start(fixed.Point26_6(op))
}

// draw a line
func (op LineTo) drawTo(d Drawer) {
	d.Line(fixed.Point26_6(op))
}

// draw a cubic bezier curve
func (op CubicTo) drawTo(d Drawer) {
	d.CubeBezier(op[0], op[1], op[2])
}

func (op Close) drawTo(d Drawer) {
	d.Stop(true)
}

// Path describes a sequence of basic operations, which should not be nil
// Higher-level shapes may be reduced to a path.
type Path []Operation

func fmtFixed(v fixed.Int26_6) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.3f", float64(v)/64), "0"), ".")
}

// ToSVGPath returns a string representation of the path
func (p Path) ToSVGPath() string {
	chunks := make([]string, len(p))
	for i, op := range p {
		switch op := op.(type) {
		case MoveTo:
			chunks[i] = "M" + fmtFixed(op.X) + "," + fmtFixed(op.Y)
		case LineTo:
			chunks[i] = "L" + fmtFixed(op.X) + "," + fmtFixed(op.Y)
		case CubicTo:
			chunks[i] = fmt.Sprintf("C%s,%s,%s,%s,%s,%s", fmtFixed(op[0].X), fmtFixed(op[0].Y),
				fmtFixed(op[1].X), fmtFixed(op[1].Y), fmtFixed(op[2].X), fmtFixed(op[2].Y))
		case Close:
			chunks[i] = "Z"
		}
	}
	return strings.Join(chunks, " ")
}

// String returns a readable representation of a Path.
func (p Path) String() string {
	return p.ToSVGPath()
}

// Clear zeros the path slice
func (p *Path) Clear() {
	*p = (*p)[:0]
}

// Start starts a new curve at the given point.
func (p *Path) Start(a fixed.Point26_6) {
	*p = append(*p, MoveTo{a.X, a.Y})
}

// Line adds a linear segment to the current curve.
func (p *Path) Line(b fixed.Point26_6) {
	*p = append(*p, LineTo{b.X, b.Y})
}

// CubeBezier adds a cubic segment to the current curve.
func (p *Path) CubeBezier(b, c, d fixed.Point26_6) {
	*p = append(*p, CubicTo{b, c, d})
}

// Stop joins the ends of the path
func (p *Path) Stop(closeLoop bool) {
	if closeLoop {
		*p = append(*p, Close{})
	}
}

// Bounds returns the extent of the path control points.
// It is empty when the path has no point.
func (p Path) Bounds() fixed.Rectangle26_6 {
	var (
		out   fixed.Rectangle26_6
		first = true
	)
	add := func(q fixed.Point26_6) {
		if first {
			out = fixed.Rectangle26_6{Min: q, Max: q}
			first = false
			return
		}
		if q.X < out.Min.X {
			out.Min.X = q.X
		}
		if q.Y < out.Min.Y {
			out.Min.Y = q.Y
		}
		if q.X > out.Max.X {
			out.Max.X = q.X
		}
		if q.Y > out.Max.Y {
			out.Max.Y = q.Y
		}
	}
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			add(fixed.Point26_6(op))
		case LineTo:
			add(fixed.Point26_6(op))
		case CubicTo:
			add(op[0])
			add(op[1])
			add(op[2])
		}
	}
	return out
}
