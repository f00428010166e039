// Implements the spherical polygon topology used by the map renderers:
// vectors and directions on the unit sphere, rings of such directions,
// and the assembly of rings into shells and holes.
// Longitudes wrap and rings may enclose a pole, so nothing here relies
// on planar geometry.
package sphere

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/golang/geo/r3"
)

// Vector is a 3 component vector. The y axis points to the north pole,
// x to the (0°, 0°) direction and z to (90°E, 0°).
// Operations return new values, except the explicit in-place helpers.
type Vector r3.Vector

// Zero returns the null vector.
func Zero() Vector { return Vector{} }

// I, J and K return the unit vectors along the axes.
func I() Vector { return Vector{X: 1} }
func J() Vector { return Vector{Y: 1} }
func K() Vector { return Vector{Z: 1} }

func (v Vector) r3() r3.Vector { return r3.Vector(v) }

func (v Vector) Add(o Vector) Vector { return Vector(v.r3().Add(o.r3())) }
func (v Vector) Sub(o Vector) Vector { return Vector(v.r3().Sub(o.r3())) }
func (v Vector) Mul(k float64) Vector { return Vector(v.r3().Mul(k)) }

// Div divides every component by k.
// k must not be zero: the result would not be finite.
func (v Vector) Div(k float64) Vector { return Vector{X: v.X / k, Y: v.Y / k, Z: v.Z / k} }

func (v Vector) Cross(o Vector) Vector { return Vector(v.r3().Cross(o.r3())) }
func (v Vector) Dot(o Vector) float64  { return v.r3().Dot(o.r3()) }

// Norm is the magnitude of the vector.
func (v Vector) Norm() float64 { return v.r3().Norm() }

// Norm2 is the squared magnitude, cheaper than Norm.
func (v Vector) Norm2() float64 { return v.r3().Norm2() }

// IsZero is true for the null vector.
func (v Vector) IsZero() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// AddInPlace accumulates o into v.
func (v *Vector) AddInPlace(o Vector) {
	v.X += o.X
	v.Y += o.Y
	v.Z += o.Z
}

// ScaleInPlace multiplies v by k.
func (v *Vector) ScaleInPlace(k float64) {
	v.X *= k
	v.Y *= k
	v.Z *= k
}

// Theta is the angle in the equatorial plane, atan2(z, x), in radians.
func (v Vector) Theta() float64 { return math.Atan2(v.Z, v.X) }

// Rho is the distance to the polar axis.
func (v Vector) Rho() float64 { return math.Hypot(v.X, v.Z) }

// Phi is the elevation over the equatorial plane, in radians.
func (v Vector) Phi() float64 { return math.Atan2(v.Y, v.Rho()) }

// Radius is an alias for Norm.
func (v Vector) Radius() float64 { return v.Norm() }

func (v Vector) String() string {
	return fmt.Sprintf("(%s, %s, %s)", fmtG(v.X), fmtG(v.Y), fmtG(v.Z))
}

func fmtG(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

// Format implements fmt.Formatter. Supported verbs:
//
//	%v, %s   (x, y, z)
//	%g       (x, y, z) with %g components
//	%f       (x, y, z), honoring the precision
//	%p       radius@(theta; phi) in radians
//	%P       radius@(lon°; lat°)
func (v Vector) Format(f fmt.State, verb rune) {
	prec, hasPrec := f.Precision()
	num := func(x float64) string {
		switch {
		case verb == 'g' || !hasPrec && verb != 'f':
			return strconv.FormatFloat(x, 'g', -1, 64)
		case hasPrec:
			return strconv.FormatFloat(x, 'f', prec, 64)
		default:
			return strconv.FormatFloat(x, 'f', 6, 64)
		}
	}
	var s string
	switch verb {
	case 'p':
		s = fmt.Sprintf("%s@(%s; %s)", num(v.Radius()), num(v.Theta()), num(v.Phi()))
	case 'P':
		s = fmt.Sprintf("%s@(%s°; %s°)", num(v.Radius()), num(degrees(v.Theta())), num(degrees(v.Phi())))
	case 'g', 'f', 'v', 's':
		s = fmt.Sprintf("(%s, %s, %s)", num(v.X), num(v.Y), num(v.Z))
	default:
		fmt.Fprintf(f, "%%!%c(sphere.Vector=%s)", verb, v.String())
		return
	}
	if w, ok := f.Width(); ok {
		if n := utf8.RuneCountInString(s); n < w {
			pad := strings.Repeat(" ", w-n)
			if f.Flag('-') {
				s += pad
			} else {
				s = pad + s
			}
		}
	}
	fmt.Fprint(f, s)
}
