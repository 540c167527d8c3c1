package geom

import (
	gomath "math"

	"github.com/Faultbox/softrender/pkg/math"
)

// parallelEpsilon is the direction magnitude below which a ray is treated as
// parallel to a slab.
const parallelEpsilon = 1e-8

// Ray is a half-line with precomputed inverse direction and per-axis sign
// bits. Build it once with NewRay and test it against many boxes.
type Ray struct {
	Origin       math.Vec3
	Direction    math.Vec3
	InvDirection math.Vec3
	// Sign[i] is 1 when the direction is negative on axis i. It selects the
	// near corner of a box on that axis.
	Sign [3]int
	// Parallel[i] is set when the direction is (nearly) zero on axis i.
	Parallel [3]bool
}

// NewRay creates a ray and precomputes its inverse direction and sign bits.
func NewRay(origin, direction math.Vec3) Ray {
	r := Ray{Origin: origin, Direction: direction}

	inv := [3]float32{}
	for axis := 0; axis < 3; axis++ {
		d := direction.Axis(axis)
		if gomath.Abs(float64(d)) < parallelEpsilon {
			r.Parallel[axis] = true
			continue
		}
		inv[axis] = 1 / d
		if inv[axis] < 0 {
			r.Sign[axis] = 1
		}
	}
	r.InvDirection = math.Vec3{X: inv[0], Y: inv[1], Z: inv[2]}
	return r
}

// At returns the point origin + t*direction.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// ScreenRay converts pixel coordinates to a world-space ray.
// invViewProj is the inverse of projection*view for a [0,w] depth range
// projection; the ray starts on the near plane.
func ScreenRay(screenX, screenY, viewportW, viewportH float32, invViewProj math.Mat4) Ray {
	ndcX := 2.0*screenX/viewportW - 1.0
	ndcY := 1.0 - 2.0*screenY/viewportH // Flip Y

	nearWorld := unproject(invViewProj, math.Vec4{ndcX, ndcY, 0, 1})
	farWorld := unproject(invViewProj, math.Vec4{ndcX, ndcY, 1, 1})

	return NewRay(nearWorld, farWorld.Sub(nearWorld).Normalize())
}

func unproject(invViewProj math.Mat4, ndc math.Vec4) math.Vec3 {
	p := invViewProj.MulVec4(ndc)
	if p[3] != 0 {
		return math.Vec3{X: p[0] / p[3], Y: p[1] / p[3], Z: p[2] / p[3]}
	}
	return p.XYZ()
}
