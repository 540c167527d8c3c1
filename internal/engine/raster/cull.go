// Package raster turns clip-space triangles into shaded pixels: backface
// culling, the clip test, screen mapping, barycentric traversal and the
// depth gate in front of the pixel shader.
package raster

import (
	"github.com/Faultbox/softrender/pkg/math"
)

// Default tolerances.
const (
	DefaultClipEpsilon        = 1e-5
	DefaultBarycentricEpsilon = 1e-4
	DefaultDepthEpsilon       = 1e-6
)

// BackfaceCulled reports whether the triangle a, b, c faces away from eye.
// The face normal is (b-a)x(c-a), so counter-clockwise triangles seen from
// eye are front facing. The triangle is culled when the normal points away
// from the camera at all three vertices.
func BackfaceCulled(a, b, c, eye math.Vec3) bool {
	n := b.Sub(a).Cross(c.Sub(a))
	return n.Dot(a.Sub(eye)) > 0 &&
		n.Dot(b.Sub(eye)) > 0 &&
		n.Dot(c.Sub(eye)) > 0
}

// InsideClip reports whether a clip-space position lies in the view volume
// -w <= x,y <= w, 0 <= z <= w, widened by eps*|w|. Positions with w <= 0
// are behind the camera and never inside.
func InsideClip(p math.Vec4, eps float32) bool {
	w := p[3]
	if w <= 0 {
		return false
	}
	e := eps * w
	return p[0] >= -w-e && p[0] <= w+e &&
		p[1] >= -w-e && p[1] <= w+e &&
		p[2] >= -e && p[2] <= w+e
}

// TriangleVisible reports whether at least one vertex passes InsideClip.
// Triangles partially outside the volume are kept whole.
func TriangleVisible(a, b, c math.Vec4, eps float32) bool {
	return InsideClip(a, eps) || InsideClip(b, eps) || InsideClip(c, eps)
}
