package viewer

import (
	"image/color"

	"github.com/Faultbox/softrender/internal/engine/debug"
	"github.com/Faultbox/softrender/internal/engine/framebuffer"
	"github.com/Faultbox/softrender/internal/engine/scene"
)

// DefaultGridColor is the tile grid line color.
var DefaultGridColor = color.RGBA{R: 0, G: 160, B: 255, A: 255}

// Overlay is a scene.Presenter that draws the selection box and the tile
// grid over each finished frame before passing it on.
type Overlay struct {
	Next  scene.Presenter
	Scene *scene.Scene

	ShowSelection bool
	ShowTileGrid  bool
	TileSize      int

	SelectionColor color.RGBA
	GridColor      color.RGBA
}

// NewOverlay creates an overlay in front of next with the selection box on.
func NewOverlay(s *scene.Scene, next scene.Presenter, tileSize int) *Overlay {
	return &Overlay{
		Next:           next,
		Scene:          s,
		ShowSelection:  true,
		TileSize:       tileSize,
		SelectionColor: debug.DefaultSelectionColor,
		GridColor:      DefaultGridColor,
	}
}

// Present implements scene.Presenter.
func (o *Overlay) Present(fb *framebuffer.Framebuffer) error {
	if o.ShowSelection && o.Scene != nil {
		if m, err := o.Scene.Current(); err == nil {
			if b, ok := m.WorldBounds(); ok {
				debug.DrawBox(fb, b, o.Scene.Camera().ViewProjection(), o.SelectionColor)
			}
		}
	}
	if o.ShowTileGrid && o.TileSize > 0 {
		debug.DrawTileGrid(fb, o.TileSize, o.GridColor)
	}
	if o.Next == nil {
		return nil
	}
	return o.Next.Present(fb)
}
