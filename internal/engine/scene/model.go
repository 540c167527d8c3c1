package scene

import (
	"github.com/Faultbox/softrender/internal/engine/lighting"
	"github.com/Faultbox/softrender/internal/engine/mesh"
	"github.com/Faultbox/softrender/internal/engine/texture"
	"github.com/Faultbox/softrender/pkg/geom"
	"github.com/Faultbox/softrender/pkg/math"
)

// ID identifies a model for the lifetime of a scene. Zero is never assigned.
type ID uint32

// Kind tags the Model variant.
type Kind int

const (
	KindMesh Kind = iota
	KindAmbientLight
	KindPointLight
	KindDirectionalLight
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindMesh:
		return "mesh"
	case KindAmbientLight:
		return "ambient"
	case KindPointLight:
		return "point"
	case KindDirectionalLight:
		return "directional"
	default:
		return "unknown"
	}
}

// IsLight reports whether the kind is one of the light variants.
func (k Kind) IsLight() bool {
	return k != KindMesh
}

func kindOf(l lighting.Kind) Kind {
	switch l {
	case lighting.Point:
		return KindPointLight
	case lighting.Directional:
		return KindDirectionalLight
	default:
		return KindAmbientLight
	}
}

// lightDirection is the direction a directional light with no rotation travels.
var lightDirection = math.Vec3{Z: -1}

// Transform is a rigid transform with per-axis scale.
type Transform struct {
	Position math.Vec3
	Rotation math.Quat
	Scale    math.Vec3
}

// Identity returns the transform that leaves a mesh where it is.
func Identity() Transform {
	return Transform{
		Rotation: math.QuatIdentity(),
		Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
	}
}

// Matrix returns the object-to-world matrix T * R * S.
func (t Transform) Matrix() math.Mat4 {
	return math.Translate(t.Position.X, t.Position.Y, t.Position.Z).
		Mul(t.Rotation.ToMat4()).
		Mul(math.Scale(t.Scale.X, t.Scale.Y, t.Scale.Z))
}

// Material holds the surface parameters of a mesh.
type Material struct {
	Color      math.Vec3 // base color, 0-1 range
	Specular   float32   // Phong exponent; 0 disables highlights
	Reflective float32
	Refractive float32
	Opacity    float32

	Texture  *texture.Texture
	Textured bool // sample Texture instead of Color
}

// DefaultMaterial returns an opaque light grey material.
func DefaultMaterial() Material {
	return Material{
		Color:   math.Vec3{X: 0.8, Y: 0.8, Z: 0.8},
		Opacity: 1,
	}
}

// Model is an entry of the scene: a mesh or a light. Lights may carry a gizmo
// mesh drawn unlit in the light's color; ambient lights are never drawn.
type Model struct {
	ID        ID
	Name      string
	Kind      Kind
	Mesh      *mesh.Mesh
	Transform Transform
	Material  Material

	// Light color and intensity for the light kinds.
	LightColor math.Vec3
	Intensity  float32
}

// Light resolves the model into a world-space light. Point lights sit at the
// model's position; directional lights travel along the model's rotated -Z.
func (m *Model) Light() lighting.Light {
	l := lighting.Light{Color: m.LightColor, Intensity: m.Intensity}
	switch m.Kind {
	case KindPointLight:
		l.Kind = lighting.Point
		l.Position = m.Transform.Position
	case KindDirectionalLight:
		l.Kind = lighting.Directional
		l.Direction = m.Transform.Rotation.Rotate(lightDirection).Normalize()
	default:
		l.Kind = lighting.Ambient
	}
	return l
}

// Drawable reports whether the model has geometry to rasterize.
func (m *Model) Drawable() bool {
	return m.Kind != KindAmbientLight && m.Mesh != nil && len(m.Mesh.Faces) > 0
}

// WorldBounds returns the world-space box of the model's geometry.
func (m *Model) WorldBounds() (geom.BoundingBox, bool) {
	if !m.Drawable() {
		return geom.BoundingBox{}, false
	}
	return m.Mesh.Bounds.Transform(m.Transform.Matrix()), true
}
