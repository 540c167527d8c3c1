package debug

import (
	"image/color"

	"github.com/Faultbox/softrender/internal/engine/framebuffer"
	"github.com/Faultbox/softrender/pkg/geom"
	"github.com/Faultbox/softrender/pkg/math"
)

// BoxEdges returns the 12 edges of a box as endpoint pairs: bottom face,
// top face, then the vertical edges.
func BoxEdges(b geom.BoundingBox) [12][2]math.Vec3 {
	lo, hi := b.Min(), b.Max()
	c := func(x, y, z bool) math.Vec3 {
		p := lo
		if x {
			p.X = hi.X
		}
		if y {
			p.Y = hi.Y
		}
		if z {
			p.Z = hi.Z
		}
		return p
	}
	return [12][2]math.Vec3{
		{c(false, false, false), c(true, false, false)},
		{c(true, false, false), c(true, false, true)},
		{c(true, false, true), c(false, false, true)},
		{c(false, false, true), c(false, false, false)},
		{c(false, true, false), c(true, true, false)},
		{c(true, true, false), c(true, true, true)},
		{c(true, true, true), c(false, true, true)},
		{c(false, true, true), c(false, true, false)},
		{c(false, false, false), c(false, true, false)},
		{c(true, false, false), c(true, true, false)},
		{c(true, false, true), c(true, true, true)},
		{c(false, false, true), c(false, true, true)},
	}
}

// DrawBox draws the wireframe of a world-space box over the frame, ignoring
// depth. Edges with an endpoint behind the eye are skipped.
func DrawBox(fb *framebuffer.Framebuffer, b geom.BoundingBox, viewProj math.Mat4, c color.RGBA) {
	w, h := fb.Size()
	project := func(p math.Vec3) (int, int, bool) {
		clip := viewProj.MulVec4(math.Point(p))
		if clip[3] <= 0 {
			return 0, 0, false
		}
		x := (clip[0]/clip[3] + 1) * float32(w) / 2
		y := (1 - clip[1]/clip[3]) * float32(h) / 2
		return int(x), int(y), true
	}
	for _, e := range BoxEdges(b) {
		x0, y0, ok0 := project(e[0])
		x1, y1, ok1 := project(e[1])
		if ok0 && ok1 {
			DrawLine(fb, x0, y0, x1, y1, c)
		}
	}
}

// DrawLine draws a one-pixel line with Bresenham's algorithm. Pixels outside
// the frame are dropped.
func DrawLine(fb *framebuffer.Framebuffer, x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}

	// Long off-screen edges would walk millions of pixels.
	w, h := fb.Size()
	if dx > 4*(w+h) || -dy > 4*(w+h) {
		return
	}

	err := dx + dy
	for {
		fb.Set(x0, y0, c.R, c.G, c.B)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// DefaultSelectionColor is the wireframe color of the selected model.
var DefaultSelectionColor = color.RGBA{R: 255, G: 200, B: 0, A: 255}
