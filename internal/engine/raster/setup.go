package raster

import (
	"image"
	gomath "math"

	"github.com/Faultbox/softrender/internal/engine/shader"
	"github.com/Faultbox/softrender/pkg/math"
)

// minArea is the smallest |signed area| in pixels^2 a triangle may have.
const minArea = 1e-8

// Triangle is a triangle ready for traversal. It is read-only once built and
// may be drawn by several workers concurrently into disjoint rectangles.
type Triangle struct {
	V      [3]shader.Vertex
	Screen [3]math.Vec3 // pixels, z is NDC depth
	Shader shader.PixelShader

	Bounds image.Rectangle // integer pixel bounds, clamped to the frame
	area   float32
}

// ToScreen maps a clip-space position to pixel coordinates. x and y are
// divided by w and mapped from [-1,1] with y flipped so row 0 is at the top;
// z is divided by w and kept as depth.
func ToScreen(clip math.Vec4, invW float32, width, height int) math.Vec3 {
	x := clip[0] * invW
	y := clip[1] * invW
	return math.Vec3{
		X: (x + 1) * float32(width) / 2,
		Y: (1 - y) * float32(height) / 2,
		Z: clip[2] * invW,
	}
}

// Setup maps a clipped triangle to the screen and computes its pixel
// bounds. It returns false for degenerate triangles, vertices that cannot be
// divided by w, and triangles entirely off the frame.
func Setup(a, b, c *shader.Vertex, ps shader.PixelShader, width, height int) (Triangle, bool) {
	t := Triangle{V: [3]shader.Vertex{*a, *b, *c}, Shader: ps}
	for i := range t.V {
		if t.V[i].InvW == 0 {
			return Triangle{}, false
		}
		t.Screen[i] = ToScreen(t.V[i].Clip, t.V[i].InvW, width, height)
	}

	p0, p1, p2 := t.Screen[0], t.Screen[1], t.Screen[2]
	t.area = edge(p0.X, p0.Y, p1.X, p1.Y, p2.X, p2.Y)
	if (t.area > -minArea && t.area < minArea) || isNaN(t.area) {
		return Triangle{}, false
	}

	minX := min(p0.X, p1.X, p2.X)
	minY := min(p0.Y, p1.Y, p2.Y)
	maxX := max(p0.X, p1.X, p2.X)
	maxY := max(p0.Y, p1.Y, p2.Y)
	r := image.Rect(
		int(gomath.Floor(float64(clampCoord(minX)))),
		int(gomath.Floor(float64(clampCoord(minY)))),
		int(gomath.Ceil(float64(clampCoord(maxX)))),
		int(gomath.Ceil(float64(clampCoord(maxY)))),
	)
	t.Bounds = r.Intersect(image.Rect(0, 0, width, height))
	if t.Bounds.Empty() {
		return Triangle{}, false
	}
	return t, true
}

// Barycentric returns the weights of (px, py) relative to the triangle's
// screen vertices. The weights always sum to one.
func (t *Triangle) Barycentric(px, py float32) math.Vec3 {
	p0, p1, p2 := t.Screen[0], t.Screen[1], t.Screen[2]
	w0 := edge(p1.X, p1.Y, p2.X, p2.Y, px, py) / t.area
	w1 := edge(p2.X, p2.Y, p0.X, p0.Y, px, py) / t.area
	return math.Vec3{X: w0, Y: w1, Z: 1 - w0 - w1}
}

// Barycentric returns the weights of p relative to the 2D triangle a, b, c,
// and false when the triangle is degenerate.
func Barycentric(a, b, c, p math.Vec2) (math.Vec3, bool) {
	area := b.Sub(a).Cross(c.Sub(a))
	if area > -minArea && area < minArea {
		return math.Vec3{}, false
	}
	w0 := c.Sub(b).Cross(p.Sub(b)) / area
	w1 := a.Sub(c).Cross(p.Sub(c)) / area
	return math.Vec3{X: w0, Y: w1, Z: 1 - w0 - w1}, true
}

// Inside reports whether every weight lies in [0,1] within eps.
func Inside(w math.Vec3, eps float32) bool {
	lo, hi := -eps, 1+eps
	return w.X >= lo && w.X <= hi &&
		w.Y >= lo && w.Y <= hi &&
		w.Z >= lo && w.Z <= hi
}

// edge is twice the signed area of (a, b, p).
func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// clampCoord keeps far off-screen coordinates within int range.
func clampCoord(v float32) float32 {
	const limit = 1 << 24
	if v < -limit {
		return -limit
	}
	if v > limit {
		return limit
	}
	return v
}

func isNaN(f float32) bool {
	return f != f
}
