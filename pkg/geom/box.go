// Package geom provides geometric primitives shared by culling and picking:
// axis-aligned bounding boxes, rays, slab intersection, and quadric surfaces.
package geom

import (
	gomath "math"

	"github.com/Faultbox/softrender/pkg/math"
)

// BoundingBox is an axis-aligned box given by its min and max corners.
// Bounds[0] is the min corner and Bounds[1] the max corner so a ray's sign
// bits can index the near and far corner directly.
type BoundingBox struct {
	Bounds [2]math.Vec3
}

// NewBoundingBox creates a box from two corners, ordering each axis so that
// Min() <= Max() even for negative scales.
func NewBoundingBox(a, b math.Vec3) BoundingBox {
	return BoundingBox{Bounds: [2]math.Vec3{a.Min(b), a.Max(b)}}
}

// BoundingBoxFromPoints returns the smallest box containing all points.
// An empty point list yields an empty box at the origin.
func BoundingBoxFromPoints(points ...math.Vec3) BoundingBox {
	if len(points) == 0 {
		return BoundingBox{}
	}
	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return BoundingBox{Bounds: [2]math.Vec3{lo, hi}}
}

// Min returns the min corner.
func (b BoundingBox) Min() math.Vec3 { return b.Bounds[0] }

// Max returns the max corner.
func (b BoundingBox) Max() math.Vec3 { return b.Bounds[1] }

// Center returns the center point of the box.
func (b BoundingBox) Center() math.Vec3 {
	return b.Bounds[0].Add(b.Bounds[1]).Scale(0.5)
}

// Contains reports whether p lies inside or on the box.
func (b BoundingBox) Contains(p math.Vec3) bool {
	lo, hi := b.Bounds[0], b.Bounds[1]
	return p.X >= lo.X && p.X <= hi.X &&
		p.Y >= lo.Y && p.Y <= hi.Y &&
		p.Z >= lo.Z && p.Z <= hi.Z
}

// Transform returns the box enclosing all eight corners of b after applying m.
func (b BoundingBox) Transform(m math.Mat4) BoundingBox {
	lo, hi := b.Bounds[0], b.Bounds[1]
	corners := make([]math.Vec3, 0, 8)
	for i := 0; i < 8; i++ {
		c := math.Vec3{X: lo.X, Y: lo.Y, Z: lo.Z}
		if i&1 != 0 {
			c.X = hi.X
		}
		if i&2 != 0 {
			c.Y = hi.Y
		}
		if i&4 != 0 {
			c.Z = hi.Z
		}
		corners = append(corners, m.TransformPoint(c))
	}
	return BoundingBoxFromPoints(corners...)
}

// Intersect tests the ray against the box with the slab method.
// It returns the parametric entry and exit distances of the overlap of the
// three per-axis intervals. A hit requires tmin <= tmax and tmax >= 0, so a
// ray starting inside the box hits with tmin <= 0 <= tmax and boxes entirely
// behind the origin are rejected.
func (b BoundingBox) Intersect(r Ray) (tmin, tmax float32, hit bool) {
	tmin = float32(-gomath.MaxFloat32)
	tmax = float32(gomath.MaxFloat32)

	for axis := 0; axis < 3; axis++ {
		origin := r.Origin.Axis(axis)

		// Parallel to this slab: inside it or no hit at all.
		if r.Parallel[axis] {
			if origin < b.Bounds[0].Axis(axis) || origin > b.Bounds[1].Axis(axis) {
				return 0, 0, false
			}
			continue
		}

		inv := r.InvDirection.Axis(axis)
		near := (b.Bounds[r.Sign[axis]].Axis(axis) - origin) * inv
		far := (b.Bounds[1-r.Sign[axis]].Axis(axis) - origin) * inv

		if tmin > far || near > tmax {
			return 0, 0, false
		}
		if near > tmin {
			tmin = near
		}
		if far < tmax {
			tmax = far
		}
	}

	if tmax < 0 {
		return 0, 0, false
	}
	return tmin, tmax, true
}
