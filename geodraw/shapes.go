package geodraw

import (
	"math"

	"golang.org/x/image/math/fixed"
)

// This file implements the transformation from
// high level shapes to their path equivalent

// maxDx is the maximum radians a cubic splice is allowed to span
// in ellipse parametric when approximating an ellipse.
const maxDx float64 = math.Pi / 8

// toFixedP converts two floats to a fixed point.
func toFixedP(x, y float64) (p fixed.Point26_6) {
	p.X = fixed.Int26_6(math.Round(x * 64))
	p.Y = fixed.Int26_6(math.Round(y * 64))
	return
}

// addCircle adds a closed circle of center (cx, cy) and radius r.
func (p *Path) addCircle(cx, cy, r float64) {
	p.addEllipse(cx, cy, r, r)
}

// addEllipse adds an axis aligned ellipse, made of cubic bezier curves.
func (p *Path) addEllipse(cx, cy, rx, ry float64) {
	nSegs := 2*math.Pi/maxDx + 0.5
	segs := int(nSegs)
	dEta := 2 * math.Pi / float64(segs) // span of each segment
	// Approximate the ellipse using a set of cubic bezier curves by the method of
	// L. Maisonobe, "Drawing an elliptical arc using polylines, quadratic
	// or cubic Bezier curves", 2003
	// https://www.spaceroots.org/documents/elllipse/elliptical-arc.pdf
	tde := math.Tan(dEta / 2)
	alpha := math.Sin(dEta) * (math.Sqrt(4+3*tde*tde) - 1) / 3
	lx, ly := ellipsePointAt(rx, ry, 0, cx, cy)
	ldx, ldy := ellipsePrime(rx, ry, 0)
	p.Start(toFixedP(lx, ly))
	for i := 1; i <= segs; i++ {
		eta := dEta * float64(i)
		px, py := ellipsePointAt(rx, ry, eta, cx, cy)
		if i == segs {
			px, py = cx+rx, cy // Just makes the end point exact; no roundoff error
		}
		dx, dy := ellipsePrime(rx, ry, eta)
		p.CubeBezier(toFixedP(lx+alpha*ldx, ly+alpha*ldy),
			toFixedP(px-alpha*dx, py-alpha*dy), toFixedP(px, py))
		lx, ly, ldx, ldy = px, py, dx, dy
	}
	p.Stop(true)
}

// ellipsePrime gives tangent vectors for parameterized elipse; a, b, radii, eta parameter
func ellipsePrime(a, b, eta float64) (px, py float64) {
	return -a * math.Sin(eta), b * math.Cos(eta)
}

// ellipsePointAt gives points for parameterized elipse; a, b, radii, eta parameter, center cx, cy
func ellipsePointAt(a, b, eta, cx, cy float64) (px, py float64) {
	return cx + a*math.Cos(eta), cy + b*math.Sin(eta)
}

// pixel is a point in map coordinates.
type pixel struct{ x, y float64 }

// unwrap shifts the points by multiples of `width` so that consecutive
// points are never more than half a map apart. For closed rings, it
// returns the horizontal drift accumulated when going back to the
// first point: a ring around a pole drifts by ±width.
func unwrap(points []pixel, width float64, closed bool) (drift float64) {
	for i := 1; i < len(points); i++ {
		points[i].x += width * math.Round((points[i-1].x-points[i].x)/width)
	}
	if closed && len(points) > 1 {
		last, first := points[len(points)-1], points[0]
		drift = width * math.Round((last.x-first.x)/width)
	}
	return drift
}

// ringPath is a projected ring, ready to be drawn at several
// horizontal shifts.
type ringPath struct {
	points     []pixel
	closed     bool
	minX, maxX float64
}

// newRingPath unwraps `points` and, for rings around a pole, closes the
// outline along the pole line given by `poleY`.
func newRingPath(points []pixel, width float64, closed bool, poleY func(north bool) float64) ringPath {
	drift := unwrap(points, width, closed)
	if drift != 0 {
		var meanY float64
		for _, pt := range points {
			meanY += pt.y
		}
		meanY /= float64(len(points))
		y := poleY(meanY < (poleY(true)+poleY(false))/2)

		// split the closing segment in its middle, and go round
		// through the pole line
		first, last := points[0], points[len(points)-1]
		mid := pixel{(last.x + first.x + drift) / 2, (last.y + first.y) / 2}
		points = append(points, mid, pixel{mid.x, y}, pixel{mid.x - drift, y}, pixel{mid.x - drift, mid.y})
	}
	rp := ringPath{points: points, closed: closed, minX: math.Inf(1), maxX: math.Inf(-1)}
	for _, pt := range points {
		rp.minX = math.Min(rp.minX, pt.x)
		rp.maxX = math.Max(rp.maxX, pt.x)
	}
	return rp
}

// addTo appends the ring at every horizontal shift by a multiple of
// `width` for which it meets the [minX, maxX] range. Window offsets
// are subtracted from the points.
func (rp ringPath) addTo(p *Path, width, minX, maxX float64, offset pixel) {
	if len(rp.points) == 0 {
		return
	}
	kMin := math.Floor((minX - rp.maxX) / width)
	kMax := math.Ceil((maxX - rp.minX) / width)
	for k := kMin; k <= kMax; k++ {
		shift := k * width
		if rp.maxX+shift < minX || rp.minX+shift > maxX {
			continue
		}
		for i, pt := range rp.points {
			q := toFixedP(pt.x+shift-offset.x, pt.y-offset.y)
			if i == 0 {
				p.Start(q)
			} else {
				p.Line(q)
			}
		}
		p.Stop(rp.closed)
	}
}
