package mesh

import (
	gomath "math"

	"github.com/Faultbox/softrender/pkg/math"
)

// Cube returns an axis-aligned cube of edge length size centered on the origin.
func Cube(size float32) *Mesh {
	h := size / 2
	// normal, then two in-plane axes with u x v == normal
	sides := [6][3]math.Vec3{
		{{X: 1}, {Y: 1}, {Z: 1}},
		{{X: -1}, {Z: 1}, {Y: 1}},
		{{Y: 1}, {Z: 1}, {X: 1}},
		{{Y: -1}, {X: 1}, {Z: 1}},
		{{Z: 1}, {X: 1}, {Y: 1}},
		{{Z: -1}, {Y: 1}, {X: 1}},
	}

	faces := make([]Face, 0, 12)
	for _, s := range sides {
		n, u, v := s[0], s[1], s[2]
		c := n.Scale(h)
		corner := func(su, sv float32) Vertex {
			return Vertex{
				Position: c.Add(u.Scale(su * h)).Add(v.Scale(sv * h)),
				Normal:   n,
				TexCoord: math.Vec2{X: (su + 1) / 2, Y: (sv + 1) / 2},
			}
		}
		a, b, cc, d := corner(-1, -1), corner(1, -1), corner(1, 1), corner(-1, 1)
		faces = append(faces, Face{a, b, cc}, Face{a, cc, d})
	}
	return New("cube", faces)
}

// Sphere returns a UV sphere centered on the origin.
func Sphere(radius float32, segments, rings int) *Mesh {
	segments = max(segments, 3)
	rings = max(rings, 2)

	at := func(i, j int) Vertex {
		theta := gomath.Pi * float64(i) / float64(rings)
		phi := 2 * gomath.Pi * float64(j) / float64(segments)
		n := math.Vec3{
			X: float32(gomath.Sin(theta) * gomath.Cos(phi)),
			Y: float32(gomath.Cos(theta)),
			Z: float32(gomath.Sin(theta) * gomath.Sin(phi)),
		}
		return Vertex{
			Position: n.Scale(radius),
			Normal:   n,
			TexCoord: math.Vec2{X: float32(j) / float32(segments), Y: 1 - float32(i)/float32(rings)},
		}
	}

	var faces []Face
	for i := 0; i < rings; i++ {
		for j := 0; j < segments; j++ {
			p00, p01 := at(i, j), at(i, j+1)
			p10, p11 := at(i+1, j), at(i+1, j+1)
			// p00 == p01 on the top ring, p10 == p11 on the bottom one
			if i != rings-1 {
				faces = append(faces, outward(Face{p00, p10, p11}))
			}
			if i != 0 {
				faces = append(faces, outward(Face{p00, p11, p01}))
			}
		}
	}
	return New("sphere", faces)
}

// Arrow returns a thin box along -Z with a pyramid tip, used to show a direction.
func Arrow(length float32) *Mesh {
	w := length * 0.05
	shaft := Cube(1)
	faces := make([]Face, 0, len(shaft.Faces)+4)
	for _, f := range shaft.Faces {
		for i := range f {
			p := f[i].Position
			f[i].Position = math.Vec3{X: p.X * w, Y: p.Y * w, Z: (p.Z - 0.5) * length * 0.8}
		}
		faces = append(faces, f)
	}

	tip := math.Vec3{Z: -length}
	base := -length * 0.8
	r := w * 3
	ring := [4]math.Vec3{
		{X: -r, Y: -r, Z: base},
		{X: r, Y: -r, Z: base},
		{X: r, Y: r, Z: base},
		{X: -r, Y: r, Z: base},
	}
	centroid := math.Vec3{Z: (base*4 + tip.Z) / 5}
	for i := range ring {
		f := Face{{Position: ring[i]}, {Position: ring[(i+1)%4]}, {Position: tip}}
		if n, ok := FaceNormal(f); ok {
			mid := f[0].Position.Add(f[1].Position).Add(f[2].Position).Scale(1.0 / 3)
			if n.Dot(mid.Sub(centroid)) < 0 {
				f[1], f[2] = f[2], f[1]
				n = n.Negate()
			}
			for k := range f {
				f[k].Normal = n
			}
			faces = append(faces, f)
		}
	}
	return New("arrow", faces)
}

// outward flips a face of an origin-centered convex shape so its winding
// normal points away from the origin.
func outward(f Face) Face {
	n := f[1].Position.Sub(f[0].Position).Cross(f[2].Position.Sub(f[0].Position))
	mid := f[0].Position.Add(f[1].Position).Add(f[2].Position)
	if n.Dot(mid) < 0 {
		f[1], f[2] = f[2], f[1]
	}
	return f
}
