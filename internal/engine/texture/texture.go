package texture

import (
	"errors"
	"fmt"
	"image"
	gomath "math"
	"strings"

	"github.com/Faultbox/softrender/pkg/math"
)

// ErrUnknownFilter is returned by ParseFilter for an unrecognised name.
var ErrUnknownFilter = errors.New("unknown texture filter")

// Filter selects how texels are combined.
type Filter int

const (
	Nearest Filter = iota
	Bilinear
)

// ParseFilter returns the filter for a config name.
func ParseFilter(name string) (Filter, error) {
	switch strings.ToLower(name) {
	case "nearest", "":
		return Nearest, nil
	case "bilinear", "linear":
		return Bilinear, nil
	}
	return Nearest, fmt.Errorf("%w: %s", ErrUnknownFilter, name)
}

// Texture is an immutable RGBA image sampled with repeat wrapping. Texture
// coordinate v=0 is the bottom row of the image.
type Texture struct {
	Name   string
	Filter Filter

	pix    []uint8
	stride int
	width  int
	height int
}

// New wraps an RGBA image. The image must not be modified afterwards.
func New(name string, img *image.RGBA) *Texture {
	img = ImageToRGBA(img)
	b := img.Bounds()
	return &Texture{
		Name:   name,
		pix:    img.Pix,
		stride: img.Stride,
		width:  b.Dx(),
		height: b.Dy(),
	}
}

// Size returns the texture dimensions.
func (t *Texture) Size() (width, height int) {
	return t.width, t.height
}

// Sample returns the color at (u, v) with components in [0,1].
func (t *Texture) Sample(uv math.Vec2) math.Vec3 {
	if t.width == 0 || t.height == 0 {
		return math.Vec3{}
	}
	u := wrap(uv.X)
	v := 1 - wrap(uv.Y)

	if t.Filter == Bilinear {
		return t.bilinear(u, v)
	}
	x := min(int(u*float32(t.width)), t.width-1)
	y := min(int(v*float32(t.height)), t.height-1)
	return t.texel(x, y)
}

func (t *Texture) bilinear(u, v float32) math.Vec3 {
	fx := u*float32(t.width) - 0.5
	fy := v*float32(t.height) - 0.5
	x0 := int(gomath.Floor(float64(fx)))
	y0 := int(gomath.Floor(float64(fy)))
	ax := fx - float32(x0)
	ay := fy - float32(y0)

	x1 := mod(x0+1, t.width)
	y1 := mod(y0+1, t.height)
	x0 = mod(x0, t.width)
	y0 = mod(y0, t.height)

	top := lerp(t.texel(x0, y0), t.texel(x1, y0), ax)
	bottom := lerp(t.texel(x0, y1), t.texel(x1, y1), ax)
	return lerp(top, bottom, ay)
}

func (t *Texture) texel(x, y int) math.Vec3 {
	i := y*t.stride + x*4
	return math.Vec3{
		X: float32(t.pix[i]) / 255,
		Y: float32(t.pix[i+1]) / 255,
		Z: float32(t.pix[i+2]) / 255,
	}
}

// wrap maps any coordinate into [0,1).
func wrap(f float32) float32 {
	f -= float32(gomath.Floor(float64(f)))
	if f >= 1 {
		f = 0
	}
	return f
}

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}

func lerp(a, b math.Vec3, t float32) math.Vec3 {
	return a.Add(b.Sub(a).Scale(t))
}
