package window

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/softrender/internal/engine/framebuffer"
)

// Presenter uploads finished software frames into a texture attached to a
// read framebuffer and blits it onto the window, letterboxed to keep the
// frame's aspect ratio.
type Presenter struct {
	win *Window

	fbo          uint32
	colorTexture uint32
	width        int32
	height       int32
}

// NewPresenter creates the GL objects for presenting frames to win. The
// window's GL context must be current on the calling thread.
func NewPresenter(win *Window) (*Presenter, error) {
	p := &Presenter{win: win}

	gl.GenFramebuffers(1, &p.fbo)
	gl.GenTextures(1, &p.colorTexture)
	gl.BindTexture(gl.TEXTURE_2D, p.colorTexture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)

	if err := p.resize(1, 1); err != nil {
		p.Destroy()
		return nil, fmt.Errorf("creating presenter: %w", err)
	}
	return p, nil
}

// resize reallocates the texture storage and checks completeness.
func (p *Presenter) resize(width, height int32) error {
	p.width = width
	p.height = height

	gl.BindTexture(gl.TEXTURE_2D, p.colorTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, width, height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)

	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, p.fbo)
	gl.FramebufferTexture2D(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, p.colorTexture, 0)
	status := gl.CheckFramebufferStatus(gl.READ_FRAMEBUFFER)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}
	return nil
}

// Present implements scene.Presenter: upload, blit, swap.
func (p *Presenter) Present(fb *framebuffer.Framebuffer) error {
	w, h := fb.Size()
	if int32(w) != p.width || int32(h) != p.height {
		if err := p.resize(int32(w), int32(h)); err != nil {
			return err
		}
	}

	gl.BindTexture(gl.TEXTURE_2D, p.colorTexture)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, p.width, p.height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(fb.Pix()))

	dw, dh := p.win.DrawableSize()
	x0, y0, x1, y1 := Letterbox(w, h, dw, dh)

	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(dw), int32(dh))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	// Frame rows run top-down, GL rows bottom-up: blit with the source
	// rectangle flipped vertically.
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, p.fbo)
	gl.BlitFramebuffer(0, p.height, p.width, 0, x0, y0, x1, y1, gl.COLOR_BUFFER_BIT, gl.NEAREST)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("presenting frame: gl error 0x%x", code)
	}
	p.win.SwapBuffers()
	return nil
}

// Letterbox fits a frame of fw x fh into a drawable of dw x dh, centered and
// keeping the frame's aspect ratio. It returns the destination rectangle.
func Letterbox(fw, fh, dw, dh int) (x0, y0, x1, y1 int32) {
	if fw <= 0 || fh <= 0 || dw <= 0 || dh <= 0 {
		return 0, 0, 0, 0
	}
	w, h := dw, dw*fh/fw
	if h > dh {
		w, h = dh*fw/fh, dh
	}
	x := (dw - w) / 2
	y := (dh - h) / 2
	return int32(x), int32(y), int32(x + w), int32(y + h)
}

// Destroy releases all OpenGL resources.
func (p *Presenter) Destroy() {
	if p.fbo != 0 {
		gl.DeleteFramebuffers(1, &p.fbo)
		p.fbo = 0
	}
	if p.colorTexture != 0 {
		gl.DeleteTextures(1, &p.colorTexture)
		p.colorTexture = 0
	}
}
