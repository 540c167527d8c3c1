package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/Faultbox/softrender/internal/engine/framebuffer"
	"github.com/Faultbox/softrender/internal/engine/lighting"
	"github.com/Faultbox/softrender/internal/engine/mesh"
	"github.com/Faultbox/softrender/internal/engine/shader"
	"github.com/Faultbox/softrender/pkg/math"
)

var clearColor = color.RGBA{A: 255}

// solid is a PixelShader returning a constant color.
type solid math.Vec3

func (s solid) Shade(_, _, _ *shader.Vertex, _ math.Vec3) math.Vec3 {
	return math.Vec3(s)
}

// screenVertex builds a clip-space vertex that lands on pixel (x, y) of a
// width x height frame with w = 1.
func screenVertex(x, y, z float32, width, height int) shader.Vertex {
	return shader.Vertex{
		Clip: math.Vec4{x/float32(width)*2 - 1, 1 - y/float32(height)*2, z, 1},
		InvW: 1,
	}
}

func newFrame(t *testing.T, w, h int) *framebuffer.Framebuffer {
	t.Helper()
	fb, err := framebuffer.New(w, h)
	if err != nil {
		t.Fatalf("framebuffer.New failed: %v", err)
	}
	fb.Clear(clearColor)
	return fb
}

func mustSetup(t *testing.T, a, b, c shader.Vertex, ps shader.PixelShader, w, h int) Triangle {
	t.Helper()
	tri, ok := Setup(&a, &b, &c, ps, w, h)
	if !ok {
		t.Fatal("Setup rejected a valid triangle")
	}
	return tri
}

func TestBarycentric_PartitionOfUnity(t *testing.T) {
	a := math.Vec2{X: 0, Y: 0}
	b := math.Vec2{X: 10, Y: 0}
	c := math.Vec2{X: 0, Y: 10}

	for y := float32(-2); y <= 12; y += 0.5 {
		for x := float32(-2); x <= 12; x += 0.5 {
			w, ok := Barycentric(a, b, c, math.Vec2{X: x, Y: y})
			if !ok {
				t.Fatal("non-degenerate triangle reported degenerate")
			}
			if sum := w.X + w.Y + w.Z; sum < 0.9999 || sum > 1.0001 {
				t.Fatalf("weights at (%v,%v) sum to %v", x, y, sum)
			}

			strictlyInside := x > 0 && y > 0 && x+y < 10
			strictlyOutside := x < 0 || y < 0 || x+y > 10
			switch {
			case strictlyInside && !Inside(w, 0):
				t.Errorf("(%v,%v) inside but weights %v", x, y, w)
			case strictlyOutside && Inside(w, 0):
				t.Errorf("(%v,%v) outside but weights %v", x, y, w)
			}
		}
	}

	if _, ok := Barycentric(a, b, math.Vec2{X: 20, Y: 0}, math.Vec2{}); ok {
		t.Error("collinear triangle should be degenerate")
	}
}

func TestBackfaceCulled_Symmetry(t *testing.T) {
	a := math.Vec3{X: -1, Y: -1}
	b := math.Vec3{X: 1, Y: -1}
	c := math.Vec3{Y: 1}

	tests := []struct {
		name string
		eye  math.Vec3
	}{
		{"in front", math.Vec3{Z: 5}},
		{"behind", math.Vec3{Z: -5}},
		{"off axis", math.Vec3{X: 3, Y: -2, Z: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ccw := BackfaceCulled(a, b, c, tt.eye)
			cw := BackfaceCulled(a, c, b, tt.eye)
			if ccw == cw {
				t.Errorf("reversing winding did not flip the decision (both %v)", ccw)
			}
		})
	}

	if BackfaceCulled(a, b, c, math.Vec3{Z: 5}) {
		t.Error("counter-clockwise triangle facing the camera was culled")
	}
}

func TestInsideClip(t *testing.T) {
	const eps = 1e-4
	tests := []struct {
		name string
		p    math.Vec4
		want bool
	}{
		{"center", math.Vec4{0, 0, 0.5, 1}, true},
		{"corner exactly", math.Vec4{2, -2, 2, 2}, true},
		{"near plane exactly", math.Vec4{0, 0, 0, 1}, true},
		{"just past edge within eps", math.Vec4{1 + eps/2, 0, 0.5, 1}, true},
		{"past edge", math.Vec4{1.01, 0, 0.5, 1}, false},
		{"in front of near plane", math.Vec4{0, 0, -0.01, 1}, false},
		{"beyond far plane", math.Vec4{0, 0, 1.01, 1}, false},
		{"behind camera", math.Vec4{0, 0, -0.5, -1}, false},
		{"w zero", math.Vec4{0, 0, 0, 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InsideClip(tt.p, eps); got != tt.want {
				t.Errorf("InsideClip(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}

	out := math.Vec4{5, 5, 0.5, 1}
	in := math.Vec4{0, 0, 0.5, 1}
	if !TriangleVisible(out, out, in, eps) {
		t.Error("triangle with one inside vertex should be visible")
	}
	if TriangleVisible(out, out, out, eps) {
		t.Error("triangle with no inside vertex should be rejected")
	}
}

// A white right triangle at (10,10), (50,10), (10,50) under a single ambient
// light of intensity 1 paints exactly the pixels whose centers it covers.
func TestDraw_RightTriangle(t *testing.T) {
	const size = 100
	fb := newFrame(t, size, size)

	lights := lighting.NewSet()
	lights.Add(lighting.Light{Kind: lighting.Ambient, Color: math.Vec3{X: 1, Y: 1, Z: 1}, Intensity: 1})
	white := &shader.Flat{
		Color:    math.Vec3{X: 1, Y: 1, Z: 1},
		Lighting: shader.Lighting{Model: lighting.Phong{}, Lights: lights},
	}

	tri := mustSetup(t,
		screenVertex(10, 10, 0.5, size, size),
		screenVertex(50, 10, 0.5, size, size),
		screenVertex(10, 50, 0.5, size, size),
		white, size, size)

	r := New(fb)
	r.Draw(&tri, fb.Bounds())

	want := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	painted := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			inside := x >= 10 && y >= 10 && x+y <= 59
			got := fb.At(x, y)
			switch {
			case inside && got != want:
				t.Fatalf("pixel (%d,%d) = %v, want white", x, y, got)
			case !inside && got != clearColor:
				t.Fatalf("pixel (%d,%d) = %v, want clear color", x, y, got)
			}
			if inside {
				painted++
			}
		}
	}
	if r.Stats.Shaded != painted {
		t.Errorf("Stats.Shaded = %d, want %d", r.Stats.Shaded, painted)
	}
}

// The nearer of two overlapping triangles wins regardless of draw order.
func TestDraw_DepthOrderIndependent(t *testing.T) {
	const size = 32
	quad := func(z float32, col math.Vec3) []Triangle {
		v := func(x, y float32) shader.Vertex { return screenVertex(x, y, z, size, size) }
		return []Triangle{
			mustSetup(t, v(0, 0), v(32, 0), v(32, 32), solid(col), size, size),
			mustSetup(t, v(0, 0), v(32, 32), v(0, 32), solid(col), size, size),
		}
	}
	near := quad(0.2, math.Vec3{X: 1})
	far := quad(0.8, math.Vec3{Z: 1})

	for _, order := range [][]Triangle{append(near, far...), append(far, near...)} {
		fb := newFrame(t, size, size)
		r := New(fb)
		r.DrawAll(order, fb.Bounds())
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				if got := fb.At(x, y); got.R != 255 || got.B != 0 {
					t.Fatalf("pixel (%d,%d) = %v, want near red", x, y, got)
				}
				if d := fb.Depth(x, y); d < 0.2-1e-5 || d > 0.2+1e-5 {
					t.Fatalf("depth (%d,%d) = %v, want 0.2", x, y, d)
				}
			}
		}
	}
}

// Drawing tile by tile produces the same frame as a single full-frame pass.
func TestDraw_TilesMatchFullFrame(t *testing.T) {
	const w, h = 70, 45
	tris := []Triangle{
		mustSetup(t, screenVertex(3, 2, 0.3, w, h), screenVertex(66, 10, 0.6, w, h), screenVertex(20, 44, 0.1, w, h),
			solid(math.Vec3{X: 1, Y: 0.5}), w, h),
		mustSetup(t, screenVertex(-10, 40, 0.2, w, h), screenVertex(80, 30, 0.2, w, h), screenVertex(35, -5, 0.9, w, h),
			solid(math.Vec3{Y: 1}), w, h),
	}

	full := newFrame(t, w, h)
	New(full).DrawAll(tris, full.Bounds())

	tiled := newFrame(t, w, h)
	for _, tile := range Tiles(w, h, 16) {
		New(tiled).DrawAll(tris, tile)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if a, b := full.At(x, y), tiled.At(x, y); a != b {
				t.Fatalf("pixel (%d,%d): full %v, tiled %v", x, y, a, b)
			}
		}
	}
}

func TestSetup_Rejects(t *testing.T) {
	const size = 10
	ps := solid{}
	tests := []struct {
		name    string
		a, b, c shader.Vertex
	}{
		{"collinear", screenVertex(1, 1, 0, size, size), screenVertex(5, 5, 0, size, size), screenVertex(9, 9, 0, size, size)},
		{"off screen", screenVertex(20, 20, 0, size, size), screenVertex(30, 20, 0, size, size), screenVertex(20, 30, 0, size, size)},
		{"zero inverse w", shader.Vertex{}, screenVertex(5, 1, 0, size, size), screenVertex(1, 5, 0, size, size)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := Setup(&tt.a, &tt.b, &tt.c, ps, size, size); ok {
				t.Error("Setup accepted the triangle")
			}
		})
	}
}

func TestSetup_Bounds(t *testing.T) {
	const size = 100
	tri := mustSetup(t,
		screenVertex(10.5, 10.2, 0, size, size),
		screenVertex(50.1, 10.2, 0, size, size),
		screenVertex(10.5, 120, 0, size, size),
		solid{}, size, size)
	if want := image.Rect(10, 10, 51, 100); tri.Bounds != want {
		t.Errorf("Bounds = %v, want %v", tri.Bounds, want)
	}
}

func TestTiles(t *testing.T) {
	tests := []struct {
		w, h, size int
		count      int
	}{
		{128, 128, 64, 4},
		{130, 64, 64, 3},
		{10, 10, 64, 1},
		{100, 50, 0, 2}, // default size
		{0, 10, 64, 0},
	}
	for _, tt := range tests {
		tiles := Tiles(tt.w, tt.h, tt.size)
		if len(tiles) != tt.count {
			t.Errorf("Tiles(%d,%d,%d) = %d tiles, want %d", tt.w, tt.h, tt.size, len(tiles), tt.count)
			continue
		}
		area := 0
		for i, a := range tiles {
			area += a.Dx() * a.Dy()
			for _, b := range tiles[i+1:] {
				if a.Overlaps(b) {
					t.Errorf("tiles %v and %v overlap", a, b)
				}
			}
		}
		if area != tt.w*tt.h && tt.count > 0 {
			t.Errorf("tiles cover %d pixels, want %d", area, tt.w*tt.h)
		}
	}
}

func TestAssemble(t *testing.T) {
	const size = 64
	view := math.LookAt(math.Vec3{Z: 5}, math.Vec3{}, math.Vec3{Y: 1})
	proj := math.PerspectiveZO(1, 1, 0.1, 100)

	cube := mesh.Cube(1)
	u := shader.NewUniforms(math.Identity(), view, proj, math.Vec3{Z: 5})

	p := NewPipeline(size, size)
	var st Stats
	tris := p.Assemble(cube.Faces, u, solid{X: 1}, nil, &st)

	if st.Submitted != 12 {
		t.Errorf("Submitted = %d, want 12", st.Submitted)
	}
	// From straight down the axis only the two +Z triangles face the camera.
	if st.Culled != 10 {
		t.Errorf("Culled = %d, want 10", st.Culled)
	}
	if st.Drawn != 2 || len(tris) != 2 {
		t.Errorf("Drawn = %d, triangles = %d, want 2", st.Drawn, len(tris))
	}
	if st.Submitted != st.Culled+st.Clipped+st.Degenerate+st.Drawn {
		t.Errorf("stats do not add up: %+v", st)
	}

	// The same cube behind the camera is clipped entirely.
	behind := shader.NewUniforms(math.Translate(0, 0, 20), view, proj, math.Vec3{Z: 5})
	p.Cull = false
	st = Stats{}
	if tris := p.Assemble(cube.Faces, behind, solid{}, nil, &st); len(tris) != 0 {
		t.Errorf("cube behind camera produced %d triangles", len(tris))
	}
	if st.Clipped != 12 {
		t.Errorf("Clipped = %d, want 12", st.Clipped)
	}
}
