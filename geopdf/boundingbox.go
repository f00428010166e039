package geopdf

import (
	"math"

	"golang.org/x/image/math/fixed"
)

// compute the bouding box of a path, so that the renderer
// can report the extent of what it drew

// BoundingBox accumulates the extent of a path.
type BoundingBox struct {
	current fixed.Point26_6 // used for the curves
	box     fixed.Rectangle26_6
	set     bool
}

// Extent returns the accumulated box, and false if
// no point has been added.
func (bb BoundingBox) Extent() (fixed.Rectangle26_6, bool) { return bb.box, bb.set }

// Union grows the box so that it contains `r`.
// Degenerate rectangles (horizontal or vertical lines) are kept.
func (bb *BoundingBox) Union(r fixed.Rectangle26_6) {
	if !bb.set {
		bb.box, bb.set = r, true
		return
	}
	if r.Min.X < bb.box.Min.X {
		bb.box.Min.X = r.Min.X
	}
	if r.Min.Y < bb.box.Min.Y {
		bb.box.Min.Y = r.Min.Y
	}
	if r.Max.X > bb.box.Max.X {
		bb.box.Max.X = r.Max.X
	}
	if r.Max.Y > bb.box.Max.Y {
		bb.box.Max.Y = r.Max.Y
	}
}

func (bb *BoundingBox) Start(a fixed.Point26_6) {
	bb.current = a
	bb.Union(fixed.Rectangle26_6{Min: a, Max: a})
}

func (bb *BoundingBox) Line(b fixed.Point26_6) {
	bb.Union(computeBoundingBox(line{bb.current, b}))
	bb.current = b
}

func (bb *BoundingBox) CubeBezier(b, c, d fixed.Point26_6) {
	bb.Union(computeBoundingBox(cubicBezier{bb.current, b, c, d}))
	bb.current = d
}

type line [2]fixed.Point26_6

func (l line) criticalPoints() (tX, tY []float64) {
	return nil, nil
}

func (l line) evaluateCurve(t float64) (x, y float64) {
	p0x, p0y := fixedTof(l[0])
	p1x, p1y := fixedTof(l[1])
	return bezierLine(p0x, p1x, t), bezierLine(p0y, p1y, t)
}

func bezierLine(p0, p1, t float64) float64 {
	return (p1-p0)*t + p0
}

type cubicBezier [4]fixed.Point26_6

func (cu cubicBezier) criticalPoints() (tX, tY []float64) {
	p1x, p1y := fixedTof(cu[0])
	c1x, c1y := fixedTof(cu[1])
	c2x, c2y := fixedTof(cu[2])
	p2x, p2y := fixedTof(cu[3])

	aX, bX, cX := cubicDerivative(p1x, c1x, c2x, p2x)
	aY, bY, cY := cubicDerivative(p1y, c1y, c2y, p2y)

	return quadraticRoots(aX, bX, cX), quadraticRoots(aY, bY, cY)
}

func (cu cubicBezier) evaluateCurve(t float64) (x, y float64) {
	p0x, p0y := fixedTof(cu[0])
	p1x, p1y := fixedTof(cu[1])
	p2x, p2y := fixedTof(cu[2])
	p3x, p3y := fixedTof(cu[3])
	return bezierSpline(p0x, p1x, p2x, p3x, t), bezierSpline(p0y, p1y, p2y, p3y, t)
}

// cubic polinomial
// x = At^3 + Bt^2 + Ct + D
// where A,B,C,D:
// A = p3 -3 * p2 + 3 * p1 - p0
// B = 3 * p2 - 6 * p1 +3 * p0
// C = 3 * p1 - 3 * p0
// D = p0
func bezierSpline(p0, p1, p2, p3, t float64) float64 {
	return (p3-3*p2+3*p1-p0)*t*t*t +
		(3*p2-6*p1+3*p0)*t*t +
		(3*p1-3*p0)*t +
		(p0)
}

// derivative of the cubic polinomial, taken as at^2 + bt + c
func cubicDerivative(p0, p1, p2, p3 float64) (a, b, c float64) {
	return 3*p3 - 9*p2 + 9*p1 - 3*p0, 6*p2 - 12*p1 + 6*p0, 3*p1 - 3*p0
}

func solveQuadratic(a, b, c float64, positive bool) float64 {
	sign := 1.
	if !positive {
		sign = -1.
	}
	return (-b + (math.Sqrt(b*b-4*a*c) * sign)) / (2 * a)
}

func quadraticRoots(a, b, c float64) []float64 {
	if a == 0 {
		if b == 0 {
			return nil
		}
		// simple line
		return []float64{-c / b}
	}

	d := b*b - 4*a*c
	if d < 0 {
		return nil
	}
	if d == 0 {
		return []float64{solveQuadratic(a, b, c, true)}
	}
	return []float64{
		solveQuadratic(a, b, c, true),
		solveQuadratic(a, b, c, false),
	}
}

type bezier interface {
	// compute the t zeroing the derivative
	criticalPoints() (tX, tY []float64)
	// compute the point a time t
	evaluateCurve(t float64) (x, y float64)
}

func computeBoundingBox(curve bezier) fixed.Rectangle26_6 {
	resX, resY := curve.criticalPoints()

	minX := math.Inf(1)
	minY := math.Inf(1)
	maxX := math.Inf(-1)
	maxY := math.Inf(-1)

	// add begin and end point
	for _, t := range append(append(resX, 0, 1), resY...) {
		// filter invalid value
		if !(0 <= t && t <= 1) {
			continue
		}
		x, y := curve.evaluateCurve(t)
		minX = math.Min(x, minX)
		minY = math.Min(y, minY)
		maxX = math.Max(x, maxX)
		maxY = math.Max(y, maxY)
	}
	return fixed.Rectangle26_6{Min: fToFixed(minX, minY), Max: fToFixed(maxX, maxY)}
}
