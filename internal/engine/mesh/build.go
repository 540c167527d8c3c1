package mesh

import (
	"github.com/Faultbox/softrender/pkg/formats"
	"github.com/Faultbox/softrender/pkg/math"
)

// degenerateArea is the cross-product magnitude below which a face is dropped.
const degenerateArea = 1e-10

// BuildOptions contains options for mesh building.
type BuildOptions struct {
	// Smooth averages normals at shared positions for faces that had none in the file.
	Smooth bool
	// Center moves the bounding box center to the origin.
	Center bool
}

// FromOBJ converts every group of a parsed OBJ into one mesh. Corners
// without a normal get the face normal. Degenerate faces are dropped.
// Returns nil when nothing survives.
func FromOBJ(name string, obj *formats.OBJ, opts BuildOptions) *Mesh {
	m := &Mesh{Name: name}
	var generated []int

	for _, g := range obj.Groups {
		start := len(m.Faces)
		for _, tri := range g.Triangles {
			var f Face
			for i := range tri {
				f[i] = Vertex{
					Position: vec3(tri[i].Position),
					TexCoord: math.Vec2{X: tri[i].TexCoord[0], Y: tri[i].TexCoord[1]},
				}
			}

			n, ok := FaceNormal(f)
			if !ok {
				continue
			}
			missing := false
			for i := range tri {
				if tri[i].HasNormal {
					f[i].Normal = vec3(tri[i].Normal).Normalize()
				} else {
					f[i].Normal = n
					missing = true
				}
			}
			if missing {
				generated = append(generated, len(m.Faces))
			}
			m.Faces = append(m.Faces, f)
		}
		if count := len(m.Faces) - start; count > 0 {
			m.Groups = append(m.Groups, Group{Name: g.Name, Material: g.Material, Start: start, Count: count})
		}
	}

	if len(m.Faces) == 0 {
		return nil
	}

	if opts.Smooth && len(generated) > 0 {
		sub := make([]Face, len(generated))
		for i, fi := range generated {
			sub[i] = m.Faces[fi]
		}
		SmoothNormals(sub)
		for i, fi := range generated {
			m.Faces[fi] = sub[i]
		}
	}

	m.UpdateBounds()
	if opts.Center {
		m.Center()
	}
	return m
}

// FaceNormal returns the unit normal (b-a)x(c-a), or false for a degenerate face.
func FaceNormal(f Face) (math.Vec3, bool) {
	n := f[1].Position.Sub(f[0].Position).Cross(f[2].Position.Sub(f[0].Position))
	if n.Dot(n) < degenerateArea {
		return math.Vec3{}, false
	}
	return n.Normalize(), true
}

// Center translates the mesh so its bounding box is centered on the origin.
// Returns the offset that was subtracted.
func (m *Mesh) Center() math.Vec3 {
	c := m.Bounds.Center()
	for i := range m.Faces {
		for j := range m.Faces[i] {
			m.Faces[i][j].Position = m.Faces[i][j].Position.Sub(c)
		}
	}
	m.UpdateBounds()
	return c
}

// SmoothNormals averages normals at shared vertex positions.
func SmoothNormals(faces []Face) {
	const epsilon float32 = 0.001

	type ref struct{ face, corner int }

	// Group corners by quantized position
	posMap := make(map[[3]int32][]ref)
	for i := range faces {
		for j := range faces[i] {
			p := faces[i][j].Position
			key := [3]int32{
				int32(p.X / epsilon),
				int32(p.Y / epsilon),
				int32(p.Z / epsilon),
			}
			posMap[key] = append(posMap[key], ref{i, j})
		}
	}

	for _, refs := range posMap {
		if len(refs) < 2 {
			continue
		}

		var sum math.Vec3
		for _, r := range refs {
			sum = sum.Add(faces[r.face][r.corner].Normal)
		}
		if sum.Dot(sum) == 0 {
			continue
		}
		avg := sum.Normalize()

		for _, r := range refs {
			faces[r.face][r.corner].Normal = avg
		}
	}
}

func vec3(a [3]float32) math.Vec3 {
	return math.Vec3{X: a[0], Y: a[1], Z: a[2]}
}
