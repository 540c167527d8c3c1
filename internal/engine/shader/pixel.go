package shader

import (
	"github.com/Faultbox/softrender/internal/engine/lighting"
	"github.com/Faultbox/softrender/internal/engine/texture"
	"github.com/Faultbox/softrender/pkg/math"
)

// PixelShader colors one fragment. a, b and c are the triangle's vertices
// before screen mapping; bary holds the screen-space barycentric weights of
// the fragment. The result is clamped to [0,1] by the caller.
type PixelShader interface {
	Shade(a, b, c *Vertex, bary math.Vec3) math.Vec3
}

// Lighting is the light state a lit shader evaluates. A nil Model leaves the
// base color unlit.
type Lighting struct {
	Model     lighting.Evaluator
	Lights    *lighting.Set
	Eye       math.Vec3
	Shininess float32
}

func (l *Lighting) apply(base math.Vec3, a, b, c *Vertex, w math.Vec3) math.Vec3 {
	if l.Model == nil || l.Lights == nil {
		return base
	}
	s := lighting.Surface{
		Position:  interp3(a.World, b.World, c.World, w),
		Normal:    interp3(a.Normal, b.Normal, c.Normal, w).Normalize(),
		Eye:       l.Eye,
		Shininess: l.Shininess,
	}
	return base.Mul(l.Model.Evaluate(s, l.Lights))
}

// Flat returns the material color modulated by the aggregated light. It
// ignores texture coordinates.
type Flat struct {
	Color math.Vec3
	Lighting
}

// Shade implements PixelShader.
func (f *Flat) Shade(a, b, c *Vertex, bary math.Vec3) math.Vec3 {
	if f.Model == nil {
		return f.Color
	}
	return f.apply(f.Color, a, b, c, PerspectiveWeights(a, b, c, bary))
}

// Textured samples the bound texture at the perspective-correct texture
// coordinate and modulates it by the aggregated light. A nil Texture falls
// back to Tint.
type Textured struct {
	Texture *texture.Texture
	Tint    math.Vec3
	Lighting
}

// Shade implements PixelShader.
func (t *Textured) Shade(a, b, c *Vertex, bary math.Vec3) math.Vec3 {
	w := PerspectiveWeights(a, b, c, bary)
	base := t.Tint
	if t.Texture != nil {
		uv := math.Blend2(a.UV, b.UV, c.UV, w)
		base = t.Texture.Sample(uv)
	}
	return t.apply(base, a, b, c, w)
}

// PerspectiveWeights converts screen-space barycentric weights into weights
// that interpolate attributes linearly in world space:
// w_i = b_i*invW_i / sum_j(b_j*invW_j). When the sum vanishes the screen
// weights are returned unchanged.
func PerspectiveWeights(a, b, c *Vertex, bary math.Vec3) math.Vec3 {
	w := math.Vec3{X: bary.X * a.InvW, Y: bary.Y * b.InvW, Z: bary.Z * c.InvW}
	sum := w.X + w.Y + w.Z
	if sum > -1e-12 && sum < 1e-12 {
		return bary
	}
	return w.Scale(1 / sum)
}

func interp3(a, b, c, w math.Vec3) math.Vec3 {
	return a.Scale(w.X).Add(b.Scale(w.Y)).Add(c.Scale(w.Z))
}
