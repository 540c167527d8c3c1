// Package camera provides the perspective camera used by the rasterizer.
package camera

import (
	gomath "math"

	"github.com/Faultbox/softrender/pkg/geom"
	"github.com/Faultbox/softrender/pkg/math"
)

// maxPitch keeps LookAt away from the world up vector.
const maxPitch = 89 * gomath.Pi / 180

// Camera is a free-flying perspective camera. Yaw 0, pitch 0 looks down -Z;
// positive yaw turns toward +X, positive pitch looks up.
type Camera struct {
	Name string

	Position math.Vec3
	Yaw      float32 // radians
	Pitch    float32 // radians

	FovY   float32 // vertical field of view, radians
	Aspect float32
	Near   float32
	Far    float32
}

// New creates a camera at position looking down -Z.
func New(name string, position math.Vec3, fovY, aspect, near, far float32) *Camera {
	return &Camera{
		Name:     name,
		Position: position,
		FovY:     fovY,
		Aspect:   aspect,
		Near:     near,
		Far:      far,
	}
}

// Forward returns the unit view direction.
func (c *Camera) Forward() math.Vec3 {
	cy, sy := gomath.Cos(float64(c.Yaw)), gomath.Sin(float64(c.Yaw))
	cp, sp := gomath.Cos(float64(c.Pitch)), gomath.Sin(float64(c.Pitch))
	return math.Vec3{
		X: float32(sy * cp),
		Y: float32(sp),
		Z: float32(-cy * cp),
	}
}

// Right returns the unit vector to the right of the view direction.
func (c *Camera) Right() math.Vec3 {
	return c.Forward().Cross(math.Vec3{Y: 1}).Normalize()
}

// Up returns the camera-local up vector.
func (c *Camera) Up() math.Vec3 {
	return c.Right().Cross(c.Forward())
}

// ViewMatrix returns the world-to-camera transform.
func (c *Camera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position, c.Position.Add(c.Forward()), math.Vec3{Y: 1})
}

// ProjectionMatrix returns the camera-to-clip transform. Clip z spans [0, w].
func (c *Camera) ProjectionMatrix() math.Mat4 {
	return math.PerspectiveZO(c.FovY, c.Aspect, c.Near, c.Far)
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() math.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}

// SetAspect updates the aspect ratio from a viewport size.
func (c *Camera) SetAspect(width, height int) {
	if height > 0 {
		c.Aspect = float32(width) / float32(height)
	}
}

// Shift moves the camera along the world axes.
func (c *Camera) Shift(delta math.Vec3) {
	c.Position = c.Position.Add(delta)
}

// Move moves the camera along its local right, up and forward axes.
func (c *Camera) Move(right, up, forward float32) {
	d := c.Right().Scale(right).Add(c.Up().Scale(up)).Add(c.Forward().Scale(forward))
	c.Position = c.Position.Add(d)
}

// Rotate adds to yaw and pitch. Pitch is clamped short of straight up or down.
func (c *Camera) Rotate(deltaYaw, deltaPitch float32) {
	c.Yaw += deltaYaw
	c.Pitch += deltaPitch
	if c.Pitch > maxPitch {
		c.Pitch = maxPitch
	}
	if c.Pitch < -maxPitch {
		c.Pitch = -maxPitch
	}
}

// LookAt points the camera at target.
func (c *Camera) LookAt(target math.Vec3) {
	d := target.Sub(c.Position)
	if d.Dot(d) == 0 {
		return
	}
	d = d.Normalize()
	c.Yaw = float32(gomath.Atan2(float64(d.X), float64(-d.Z)))
	c.Pitch = 0
	c.Rotate(0, float32(gomath.Asin(float64(d.Y))))
}

// ScreenRay returns the world-space ray through a pixel of a viewport.
func (c *Camera) ScreenRay(x, y float32, width, height int) geom.Ray {
	return geom.ScreenRay(x, y, float32(width), float32(height), c.ViewProjection().Inverse())
}

// FitToBounds places the camera on the +Z side of the box, looking at its
// center from a distance that keeps the whole box in view.
func (c *Camera) FitToBounds(b geom.BoundingBox) {
	center := b.Center()
	radius := b.Max().Sub(center).Length()
	if radius == 0 {
		radius = 1
	}
	dist := radius / float32(gomath.Sin(float64(c.FovY)/2))
	c.Position = center.Add(math.Vec3{Z: dist})
	c.LookAt(center)
}
