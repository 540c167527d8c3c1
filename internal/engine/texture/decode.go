package texture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp" // register BMP
	"golang.org/x/image/draw"
)

// Decode decodes texture bytes. TGA is chosen by extension since it has no
// magic number; PNG, JPEG and BMP are sniffed.
func Decode(name string, data []byte) (*image.RGBA, error) {
	var (
		img image.Image
		err error
	)
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		img, err = DecodeTGA(data)
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("decoding texture %s: %w", name, err)
	}
	return ImageToRGBA(img), nil
}

// ImageToRGBA converts any image.Image to an *image.RGBA anchored at (0,0).
func ImageToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// Downscale returns img scaled so neither side exceeds maxSize, preserving
// aspect ratio. Images already within bounds are returned unchanged.
func Downscale(img *image.RGBA, maxSize int) *image.RGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return img
	}
	if w >= h {
		h = max(1, h*maxSize/w)
		w = maxSize
	} else {
		w = max(1, w*maxSize/h)
		h = maxSize
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
