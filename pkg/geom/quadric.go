package geom

import (
	gomath "math"

	"github.com/Faultbox/softrender/pkg/math"
)

// QuadraticRoots solves a*x^2 + b*x + c = 0 for real x.
// It returns the number of distinct real roots (0, 1 or 2) and their values.
// A zero leading coefficient degrades to the linear equation b*x + c = 0.
//
// The larger-magnitude root comes from q = -(b + sign(b)*sqrt(D))/2, which
// never subtracts nearly equal values; the other root is c/q from the
// product of roots.
func QuadraticRoots(a, b, c float64) (int, [2]float64) {
	var roots [2]float64

	if a == 0 {
		if b == 0 {
			return 0, roots
		}
		roots[0] = -c / b
		return 1, roots
	}

	d := b*b - 4*a*c
	if d < 0 {
		return 0, roots
	}

	sign := 1.0
	if b < 0 {
		sign = -1.0
	}
	q := -(b + sign*gomath.Sqrt(d)) / 2.0
	roots[0] = q / a
	if d == 0 {
		roots[1] = roots[0]
		return 1, roots
	}
	if q != 0 {
		roots[1] = c / q
	} else {
		roots[1] = roots[0]
	}
	return 2, roots
}

// Sphere is a quadric surface used for picking and bounding volumes.
type Sphere struct {
	Center math.Vec3
	Radius float32
}

// Intersect returns the nearest non-negative ray parameter at which r meets
// the sphere surface. A ray starting inside the sphere reports the exit point.
func (s Sphere) Intersect(r Ray) (float32, bool) {
	oc := r.Origin.Sub(s.Center)
	a := float64(r.Direction.Dot(r.Direction))
	b := 2 * float64(oc.Dot(r.Direction))
	c := float64(oc.Dot(oc)) - float64(s.Radius)*float64(s.Radius)

	n, roots := QuadraticRoots(a, b, c)
	best := gomath.Inf(1)
	for i := 0; i < n; i++ {
		if roots[i] >= 0 && roots[i] < best {
			best = roots[i]
		}
	}
	if gomath.IsInf(best, 1) {
		return 0, false
	}
	return float32(best), true
}
