package debug

import (
	"image/color"

	"github.com/Faultbox/softrender/internal/engine/framebuffer"
	"github.com/Faultbox/softrender/internal/engine/raster"
)

// DrawTileGrid outlines the worker tiles of a tiled frame.
func DrawTileGrid(fb *framebuffer.Framebuffer, tileSize int, c color.RGBA) {
	w, h := fb.Size()
	for _, t := range raster.Tiles(w, h, tileSize) {
		// Left and top edges only, so shared borders are drawn once.
		DrawLine(fb, t.Min.X, t.Min.Y, t.Max.X-1, t.Min.Y, c)
		DrawLine(fb, t.Min.X, t.Min.Y, t.Min.X, t.Max.Y-1, c)
	}
}
