// Package mesh provides triangle meshes for the software rasterizer: building
// them from parsed OBJ data, smoothing normals and generating primitives.
package mesh

import (
	"github.com/Faultbox/softrender/pkg/geom"
	"github.com/Faultbox/softrender/pkg/math"
)

// Vertex is one triangle corner in object space.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	TexCoord math.Vec2
}

// Face is a triangle. Front faces wind counter-clockwise seen from outside.
type Face [3]Vertex

// Group is a run of faces sharing a material.
type Group struct {
	Name     string
	Material string
	Start    int
	Count    int
}

// Mesh holds the faces of one model.
type Mesh struct {
	Name   string
	Faces  []Face
	Groups []Group
	Bounds geom.BoundingBox
}

// New creates a single-group mesh from faces and computes its bounds.
func New(name string, faces []Face) *Mesh {
	m := &Mesh{
		Name:   name,
		Faces:  faces,
		Groups: []Group{{Name: name, Start: 0, Count: len(faces)}},
	}
	m.UpdateBounds()
	return m
}

// UpdateBounds recomputes the object-space bounding box.
func (m *Mesh) UpdateBounds() {
	if len(m.Faces) == 0 {
		m.Bounds = geom.BoundingBox{}
		return
	}
	lo := m.Faces[0][0].Position
	hi := lo
	for i := range m.Faces {
		for _, v := range m.Faces[i] {
			lo = lo.Min(v.Position)
			hi = hi.Max(v.Position)
		}
	}
	m.Bounds = geom.NewBoundingBox(lo, hi)
}

// TriangleCount returns the number of faces.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// Material returns the material of the first group, or "".
func (m *Mesh) Material() string {
	if len(m.Groups) == 0 {
		return ""
	}
	return m.Groups[0].Material
}
