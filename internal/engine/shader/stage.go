// Package shader provides the programmable stages of the software pipeline:
// the vertex and geometry stages that carry a mesh vertex into clip space,
// and the pixel shaders that color a rasterized fragment.
package shader

import (
	"github.com/Faultbox/softrender/internal/engine/mesh"
	"github.com/Faultbox/softrender/pkg/math"
)

// wEpsilon is the smallest |w| for which a perspective divide is performed.
const wEpsilon = 1e-7

// Vertex is a triangle corner after the vertex and geometry stages.
type Vertex struct {
	World  math.Vec3 // world-space position
	Normal math.Vec3 // world-space unit normal
	UV     math.Vec2

	// Clip is the clip-space position. The perspective divide has not been
	// performed; InvW is 1/Clip.w, or 0 when w is too close to zero.
	Clip math.Vec4
	InvW float32
}

// Uniforms are the per-draw inputs shared by every vertex of a model.
type Uniforms struct {
	Model      math.Mat4 // object to world
	Normal     math.Mat4 // inverse-transpose of Model
	View       math.Mat4
	Projection math.Mat4
	Eye        math.Vec3 // camera position in world space

	viewProj math.Mat4
}

// NewUniforms derives the normal and view-projection matrices.
func NewUniforms(model, view, projection math.Mat4, eye math.Vec3) *Uniforms {
	return &Uniforms{
		Model:      model,
		Normal:     model.NormalMatrix(),
		View:       view,
		Projection: projection,
		Eye:        eye,
		viewProj:   projection.Mul(view),
	}
}

// ViewProjection returns Projection * View.
func (u *Uniforms) ViewProjection() math.Mat4 {
	return u.viewProj
}

// VertexStage moves an object-space vertex into world space and prepares
// its lighting inputs.
type VertexStage interface {
	Process(in mesh.Vertex, u *Uniforms) Vertex
}

// GeometryStage applies view and projection, filling Clip and InvW.
type GeometryStage interface {
	Project(v *Vertex, u *Uniforms)
}

// WorldStage is the default VertexStage.
type WorldStage struct{}

// Process implements VertexStage.
func (WorldStage) Process(in mesh.Vertex, u *Uniforms) Vertex {
	return Vertex{
		World:  u.Model.TransformPoint(in.Position),
		Normal: u.Normal.TransformDirection(in.Normal).Normalize(),
		UV:     in.TexCoord,
	}
}

// PerspectiveStage is the default GeometryStage.
type PerspectiveStage struct{}

// Project implements GeometryStage.
func (PerspectiveStage) Project(v *Vertex, u *Uniforms) {
	v.Clip = u.viewProj.MulVec4(math.Point(v.World))
	w := v.Clip[3]
	if w > wEpsilon || w < -wEpsilon {
		v.InvW = 1 / w
	} else {
		v.InvW = 0
	}
}

// NDC returns the perspective-divided position. Only meaningful when InvW != 0.
func (v *Vertex) NDC() math.Vec3 {
	return v.Clip.XYZ().Scale(v.InvW)
}
