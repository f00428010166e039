package sphere

import (
	"fmt"
	"math"

	"github.com/golang/geo/s1"
)

func degrees(rad float64) float64 { return s1.Angle(rad).Degrees() }

func radians(deg float64) float64 { return (s1.Angle(deg) * s1.Degree).Radians() }

// Point is a direction of the unit sphere, given by its geographic
// coordinates. The unit length is a convention of the constructors,
// it is not enforced.
type Point struct {
	Vector
}

// PointFromDegrees returns the unit direction at
// longitude `lon` and latitude `lat`, in degrees.
func PointFromDegrees(lon, lat float64) Point {
	lonR, latR := radians(lon), radians(lat)
	cosLat := math.Cos(latR)
	return Point{Vector{
		X: cosLat * math.Cos(lonR),
		Y: math.Sin(latR),
		Z: cosLat * math.Sin(lonR),
	}}
}

// PointFromPolar returns the point at angles theta (in the equatorial plane)
// and phi (elevation), in radians, scaled to `radius`.
func PointFromPolar(theta, phi, radius float64) Point {
	return Point{Vector{
		X: radius * math.Cos(theta) * math.Cos(phi),
		Y: radius * math.Sin(phi),
		Z: radius * math.Sin(theta) * math.Cos(phi),
	}}
}

// PointFromVector returns the unit direction of `v`.
// The null vector has no direction and yields ErrDegenerateGeometry.
func PointFromVector(v Vector) (Point, error) {
	n := v.Norm()
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return Point{}, fmt.Errorf("direction of %s: %w", v, ErrDegenerateGeometry)
	}
	return Point{v.Div(n)}, nil
}

// Longitude returns the longitude in degrees, in ]-180, 180].
func (p Point) Longitude() float64 { return degrees(p.Theta()) }

// Latitude returns the latitude in degrees, in [-90, 90].
func (p Point) Latitude() float64 { return degrees(p.Phi()) }

// Equal compares the components exactly.
func (p Point) Equal(o Point) bool { return p.Vector == o.Vector }

// ApproxEqual compares the components with the absolute tolerance `eps`.
func (p Point) ApproxEqual(o Point, eps float64) bool {
	return math.Abs(p.X-o.X) <= eps && math.Abs(p.Y-o.Y) <= eps && math.Abs(p.Z-o.Z) <= eps
}

// String returns "lon,lat" in degrees.
func (p Point) String() string {
	return fmtG(p.Longitude()) + "," + fmtG(p.Latitude())
}

// Format implements fmt.Formatter. Supported verbs:
//
//	%v, %s   lon,lat
//	%g       (lon, lat)
//	%f       (lon, lat), honoring the precision
//	%p, %P   (lon°, lat°)
//	%r       (theta, phi) in radians
func (p Point) Format(f fmt.State, verb rune) {
	prec, hasPrec := f.Precision()
	if !hasPrec {
		prec = 6
	}
	ff := func(x float64) string { return fmt.Sprintf("%.*f", prec, x) }
	var s string
	switch verb {
	case 'v', 's':
		s = p.String()
	case 'g':
		s = fmt.Sprintf("(%s, %s)", fmtG(p.Longitude()), fmtG(p.Latitude()))
	case 'f':
		s = fmt.Sprintf("(%s, %s)", ff(p.Longitude()), ff(p.Latitude()))
	case 'p', 'P':
		s = fmt.Sprintf("(%s°, %s°)", ff(p.Longitude()), ff(p.Latitude()))
	case 'r':
		s = fmt.Sprintf("(%s, %s)", ff(p.Theta()), ff(p.Phi()))
	default:
		fmt.Fprintf(f, "%%!%c(sphere.Point=%s)", verb, p.String())
		return
	}
	fmt.Fprint(f, s)
}

// KMLFormat returns the printf format used for KML coordinates
// "lon,lat,0". A negative precision selects the shortest representation
// with 10 significant digits; when only one of the precisions is given
// it is used for both.
func KMLFormat(lonPrec, latPrec int) string {
	if lonPrec < 0 && latPrec < 0 {
		return "%.10g,%.10g,0"
	}
	if latPrec < 0 {
		latPrec = lonPrec
	} else if lonPrec < 0 {
		lonPrec = latPrec
	}
	return fmt.Sprintf("%%.%df,%%.%df,0", lonPrec, latPrec)
}

// KMLCoordinate formats the point as a KML coordinate tuple.
// Angles below 1e-10 degree are written as 0.
func (p Point) KMLCoordinate(lonPrec, latPrec int) string {
	return fmt.Sprintf(KMLFormat(lonPrec, latPrec), snapZero(p.Longitude()), snapZero(p.Latitude()))
}

func snapZero(deg float64) float64 {
	if math.Abs(deg) < 1e-10 {
		return 0
	}
	return deg
}
