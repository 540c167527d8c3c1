// Package math provides vector, matrix and quaternion types for the rendering pipeline.
package math

// Vec2 is a 2D vector: a texture coordinate or a screen-space point.
type Vec2 struct {
	X, Y float32
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Scale returns v * s.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Cross returns the z component of the 3D cross product, twice the signed
// area of the triangle (0, v, other). Positive when other lies
// counter-clockwise of v in a y-up frame.
func (v Vec2) Cross(other Vec2) float32 {
	return v.X*other.Y - v.Y*other.X
}

// Blend2 returns the weighted sum a*w.X + b*w.Y + c*w.Z, the barycentric
// interpolation of three corner values.
func Blend2(a, b, c Vec2, w Vec3) Vec2 {
	return Vec2{
		X: a.X*w.X + b.X*w.Y + c.X*w.Z,
		Y: a.Y*w.X + b.Y*w.Y + c.Y*w.Z,
	}
}
