package raster

import (
	"image"

	"github.com/Faultbox/softrender/internal/engine/framebuffer"
)

// Stats counts pipeline work for one frame.
type Stats struct {
	Submitted  int // faces handed to Assemble
	Culled     int // rejected by the backface test
	Clipped    int // no vertex inside the view volume
	Degenerate int // zero area or undividable
	Drawn      int // triangles that reached traversal
	Fragments  int // pixels inside a triangle
	Shaded     int // fragments that passed the depth test
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Submitted += other.Submitted
	s.Culled += other.Culled
	s.Clipped += other.Clipped
	s.Degenerate += other.Degenerate
	s.Drawn += other.Drawn
	s.Fragments += other.Fragments
	s.Shaded += other.Shaded
}

// Rasterizer draws prepared triangles into a framebuffer. A Rasterizer is not
// safe for concurrent use; concurrent workers each use their own and draw
// into disjoint rectangles of the shared framebuffer.
type Rasterizer struct {
	fb *framebuffer.Framebuffer

	BarycentricEpsilon float32
	DepthEpsilon       float32

	Stats Stats
}

// New creates a rasterizer with default tolerances.
func New(fb *framebuffer.Framebuffer) *Rasterizer {
	return &Rasterizer{
		fb:                 fb,
		BarycentricEpsilon: DefaultBarycentricEpsilon,
		DepthEpsilon:       DefaultDepthEpsilon,
	}
}

// Draw rasterizes t restricted to clip. Pixels are sampled at their centers;
// the depth test uses the integer pixel coordinates and gates the shader.
func (r *Rasterizer) Draw(t *Triangle, clip image.Rectangle) {
	area := t.Bounds.Intersect(clip)
	if area.Empty() {
		return
	}

	a, b, c := &t.V[0], &t.V[1], &t.V[2]
	s0, s1, s2 := t.Screen[0].Z, t.Screen[1].Z, t.Screen[2].Z

	for y := area.Min.Y; y < area.Max.Y; y++ {
		py := float32(y) + 0.5
		for x := area.Min.X; x < area.Max.X; x++ {
			w := t.Barycentric(float32(x)+0.5, py)
			if !Inside(w, r.BarycentricEpsilon) {
				continue
			}
			r.Stats.Fragments++

			z := w.X*s0 + w.Y*s1 + w.Z*s2
			if !r.fb.DepthTest(x, y, z, r.DepthEpsilon) {
				continue
			}
			r.Stats.Shaded++

			col := t.Shader.Shade(a, b, c, w).Clamp01()
			r.fb.Set(x, y, toByte(col.X), toByte(col.Y), toByte(col.Z))
		}
	}
}

// DrawAll rasterizes every triangle restricted to clip.
func (r *Rasterizer) DrawAll(tris []Triangle, clip image.Rectangle) {
	for i := range tris {
		r.Draw(&tris[i], clip)
	}
}

func toByte(v float32) uint8 {
	return uint8(v*255 + 0.5)
}
