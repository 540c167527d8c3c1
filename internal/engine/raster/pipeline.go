package raster

import (
	"github.com/Faultbox/softrender/internal/engine/mesh"
	"github.com/Faultbox/softrender/internal/engine/shader"
)

// Pipeline runs the per-vertex stages and the cull and clip tests, turning
// mesh faces into Triangles ready for traversal.
type Pipeline struct {
	Vertex   shader.VertexStage
	Geometry shader.GeometryStage

	Cull        bool
	ClipEpsilon float32

	Width  int
	Height int
}

// NewPipeline creates a pipeline with the default stages for a frame size.
func NewPipeline(width, height int) *Pipeline {
	return &Pipeline{
		Vertex:      shader.WorldStage{},
		Geometry:    shader.PerspectiveStage{},
		Cull:        true,
		ClipEpsilon: DefaultClipEpsilon,
		Width:       width,
		Height:      height,
	}
}

// Assemble appends the visible triangles of faces to out and returns it.
func (p *Pipeline) Assemble(faces []mesh.Face, u *shader.Uniforms, ps shader.PixelShader, out []Triangle, st *Stats) []Triangle {
	var v [3]shader.Vertex
	for i := range faces {
		st.Submitted++
		f := &faces[i]

		for k := range v {
			v[k] = p.Vertex.Process(f[k], u)
		}
		if p.Cull && BackfaceCulled(v[0].World, v[1].World, v[2].World, u.Eye) {
			st.Culled++
			continue
		}

		for k := range v {
			p.Geometry.Project(&v[k], u)
		}
		if !TriangleVisible(v[0].Clip, v[1].Clip, v[2].Clip, p.ClipEpsilon) {
			st.Clipped++
			continue
		}

		t, ok := Setup(&v[0], &v[1], &v[2], ps, p.Width, p.Height)
		if !ok {
			st.Degenerate++
			continue
		}
		st.Drawn++
		out = append(out, t)
	}
	return out
}
