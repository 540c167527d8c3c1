// Package texture provides image decoding and texture sampling for the textured pixel shader.
package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA errors.
var (
	ErrTGATruncated   = errors.New("TGA data truncated")
	ErrTGAUnsupported = errors.New("unsupported TGA variant")
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeRLE          = 10 // RLE compressed true-color
)

// tgaReader walks TGA pixel data and writes decoded pixels in file order.
type tgaReader struct {
	img         *image.RGBA
	data        []byte
	pos         int
	bpp         int
	width       int
	height      int
	topToBottom bool
	next        int
}

// DecodeTGA decodes uncompressed (type 2) and RLE (type 10) true-color TGA
// files with 24 or 32 bits per pixel.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < 18 {
		return nil, fmt.Errorf("%w: header", ErrTGATruncated)
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bits := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("%w: color-mapped", ErrTGAUnsupported)
	}
	if imageType != TGATypeUncompressed && imageType != TGATypeRLE {
		return nil, fmt.Errorf("%w: type %d", ErrTGAUnsupported, imageType)
	}
	if bits != 24 && bits != 32 {
		return nil, fmt.Errorf("%w: %d bits per pixel", ErrTGAUnsupported, bits)
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, fmt.Errorf("%w: id field", ErrTGATruncated)
	}

	r := &tgaReader{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		data:        data[offset:],
		bpp:         bits / 8,
		width:       width,
		height:      height,
		topToBottom: descriptor&0x20 != 0, // bit 5: origin at top
	}

	if imageType == TGATypeUncompressed {
		if len(r.data) < width*height*r.bpp {
			return nil, fmt.Errorf("%w: pixel data", ErrTGATruncated)
		}
		for r.next < width*height {
			r.put(r.read())
		}
	} else {
		r.decodeRLE()
	}
	return r.img, nil
}

// decodeRLE stops quietly on truncated input, leaving the rest transparent.
func (r *tgaReader) decodeRLE() {
	total := r.width * r.height
	for r.next < total && r.pos < len(r.data) {
		packet := r.data[r.pos]
		r.pos++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			if r.pos+r.bpp > len(r.data) {
				return
			}
			c := r.read()
			for i := 0; i < count && r.next < total; i++ {
				r.put(c)
			}
			continue
		}
		for i := 0; i < count && r.next < total; i++ {
			if r.pos+r.bpp > len(r.data) {
				return
			}
			r.put(r.read())
		}
	}
}

// read consumes one BGR(A) pixel.
func (r *tgaReader) read() color.RGBA {
	p := r.data[r.pos : r.pos+r.bpp]
	r.pos += r.bpp
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if r.bpp == 4 {
		c.A = p[3]
	}
	return c
}

// put stores c at the next pixel in file order.
func (r *tgaReader) put(c color.RGBA) {
	x := r.next % r.width
	y := r.next / r.width
	if !r.topToBottom {
		y = r.height - 1 - y
	}
	r.img.SetRGBA(x, y, c)
	r.next++
}
