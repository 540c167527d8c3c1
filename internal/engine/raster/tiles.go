package raster

import "image"

// DefaultTileSize is the edge length of a square tile in pixels.
const DefaultTileSize = 64

// Tiles divides a width x height frame into row-major rectangles of at most
// size x size pixels. Edge tiles are smaller when the frame is not evenly
// divisible. The tiles are disjoint and cover the frame exactly.
func Tiles(width, height, size int) []image.Rectangle {
	if width <= 0 || height <= 0 {
		return nil
	}
	if size <= 0 {
		size = DefaultTileSize
	}

	tilesX := (width + size - 1) / size
	tilesY := (height + size - 1) / size
	out := make([]image.Rectangle, 0, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			out = append(out, image.Rect(
				tx*size, ty*size,
				min((tx+1)*size, width), min((ty+1)*size, height),
			))
		}
	}
	return out
}
