// Package framebuffer provides the CPU color and depth targets the rasterizer writes into.
package framebuffer

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
)

// ErrInvalidSize is returned when a buffer would have no pixels.
var ErrInvalidSize = errors.New("invalid framebuffer size")

// Framebuffer holds one frame: an RGBA color grid and a float32 depth grid of
// the same dimensions. Depth resets to +Inf so the first write always wins.
type Framebuffer struct {
	width  int
	height int

	color *image.RGBA
	depth []float32
}

// New creates a framebuffer with the specified dimensions.
func New(width, height int) (*Framebuffer, error) {
	fb := &Framebuffer{}
	if err := fb.Resize(width, height); err != nil {
		return nil, err
	}
	return fb, nil
}

// Resize reallocates both buffers if the dimensions have changed.
// Contents are undefined until the next Clear.
func (fb *Framebuffer) Resize(width, height int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if width == fb.width && height == fb.height {
		return nil
	}

	fb.width = width
	fb.height = height
	fb.color = image.NewRGBA(image.Rect(0, 0, width, height))
	fb.depth = make([]float32, width*height)
	return nil
}

// Clear overwrites every pixel with c and resets depth to +Inf.
func (fb *Framebuffer) Clear(c color.RGBA) {
	pix := fb.color.Pix
	if len(pix) == 0 {
		return
	}
	pix[0], pix[1], pix[2], pix[3] = c.R, c.G, c.B, c.A
	fill(pix, 4)

	fb.depth[0] = float32(math.Inf(1))
	fill(fb.depth, 1)
}

// fill replicates the first n elements across s by repeated doubling.
func fill[T any](s []T, n int) {
	for n < len(s) {
		n += copy(s[n:], s[:n])
	}
}

// Size returns the framebuffer dimensions.
func (fb *Framebuffer) Size() (width, height int) {
	return fb.width, fb.height
}

// Bounds returns the pixel rectangle of the frame.
func (fb *Framebuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, fb.width, fb.height)
}

// Image returns the color buffer. The caller must not retain it across frames.
func (fb *Framebuffer) Image() *image.RGBA {
	return fb.color
}

// Pix returns the raw RGBA bytes, row-major from the top-left corner.
func (fb *Framebuffer) Pix() []byte {
	return fb.color.Pix
}

// Set writes an opaque pixel. Out-of-bounds writes are ignored.
func (fb *Framebuffer) Set(x, y int, r, g, b uint8) {
	if x < 0 || y < 0 || x >= fb.width || y >= fb.height {
		return
	}
	i := (y*fb.width + x) * 4
	p := fb.color.Pix[i : i+4 : i+4]
	p[0], p[1], p[2], p[3] = r, g, b, 0xFF
}

// At returns the color at (x, y).
func (fb *Framebuffer) At(x, y int) color.RGBA {
	return fb.color.RGBAAt(x, y)
}

// Depth returns the stored depth at (x, y), +Inf outside the frame.
func (fb *Framebuffer) Depth(x, y int) float32 {
	if x < 0 || y < 0 || x >= fb.width || y >= fb.height {
		return float32(math.Inf(1))
	}
	return fb.depth[y*fb.width+x]
}

// DepthTest compares z against the stored depth at (x, y). A fragment passes
// when it is strictly nearer or within eps of the stored value; a passing
// fragment overwrites the stored depth. Out-of-bounds fragments fail.
func (fb *Framebuffer) DepthTest(x, y int, z, eps float32) bool {
	if x < 0 || y < 0 || x >= fb.width || y >= fb.height {
		return false
	}
	i := y*fb.width + x
	stored := fb.depth[i]
	if z < stored || abs32(z-stored) < eps {
		fb.depth[i] = z
		return true
	}
	return false
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
