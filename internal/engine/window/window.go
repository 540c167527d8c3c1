// Package window handles the SDL2 window and OpenGL context a finished
// software frame is presented to.
package window

import (
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/softrender/internal/logger"
)

func init() {
	// SDL and GL calls must stay on the main thread
	runtime.LockOSThread()
}

// Config holds window configuration. Width and Height are the initial
// client size; the frame keeps its own resolution and is letterboxed.
type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
	HighDPI    bool
}

// Window is an SDL window with a GL 4.1 core context used only as a blit
// target: no depth or stencil buffer is requested.
type Window struct {
	sdl *sdl.Window
	ctx sdl.GLContext
	log *zap.Logger
}

// New initialises SDL video, opens the window and makes its GL context
// current on the calling thread.
func New(cfg Config) (*Window, error) {
	w := &Window{log: logger.Named("window")}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}
	for attr, v := range contextAttributes() {
		if err := sdl.GLSetAttribute(attr, v); err != nil {
			sdl.Quit()
			return nil, fmt.Errorf("setting GL attribute %d: %w", attr, err)
		}
	}

	var err error
	w.sdl, err = sdl.CreateWindow(cfg.Title,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width), int32(cfg.Height), windowFlags(cfg))
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	w.ctx, err = w.sdl.GLCreateContext()
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}
	if err := gl.Init(); err != nil {
		w.Close()
		return nil, fmt.Errorf("gl.Init failed: %w", err)
	}
	w.setVSync(cfg.VSync)

	dw, dh := w.DrawableSize()
	w.log.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Int("drawable_width", dw),
		zap.Int("drawable_height", dh),
		zap.Bool("vsync", cfg.VSync),
		zap.String("gl", gl.GoStr(gl.GetString(gl.VERSION))))
	return w, nil
}

// contextAttributes requests GL 4.1 core (the newest macOS offers), double
// buffered, color only.
func contextAttributes() map[sdl.GLattr]int {
	return map[sdl.GLattr]int{
		sdl.GL_CONTEXT_MAJOR_VERSION: 4,
		sdl.GL_CONTEXT_MINOR_VERSION: 1,
		sdl.GL_CONTEXT_PROFILE_MASK:  sdl.GL_CONTEXT_PROFILE_CORE,
		sdl.GL_DOUBLEBUFFER:          1,
		sdl.GL_DEPTH_SIZE:            0,
		sdl.GL_STENCIL_SIZE:          0,
	}
}

func windowFlags(cfg Config) uint32 {
	flags := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_RESIZABLE)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}
	if cfg.HighDPI {
		flags |= sdl.WINDOW_ALLOW_HIGHDPI
	}
	return flags
}

func (w *Window) setVSync(on bool) {
	interval := 0
	if on {
		interval = 1
	}
	if err := sdl.GLSetSwapInterval(interval); err != nil {
		w.log.Warn("failed to set swap interval", zap.Int("interval", interval), zap.Error(err))
	}
}

// Close destroys the context and window and shuts SDL down.
func (w *Window) Close() {
	w.log.Info("closing window")

	if w.ctx != nil {
		sdl.GLDeleteContext(w.ctx)
		w.ctx = nil
	}
	if w.sdl != nil {
		w.sdl.Destroy()
		w.sdl = nil
	}
	sdl.Quit()
}

// SwapBuffers shows the back buffer.
func (w *Window) SwapBuffers() {
	w.sdl.GLSwap()
}

// GetSize returns the window size in screen coordinates, the space mouse
// events are reported in.
func (w *Window) GetSize() (int, int) {
	width, height := w.sdl.GetSize()
	return int(width), int(height)
}

// DrawableSize returns the size of the GL drawable in pixels, which differs
// from GetSize on high-DPI displays.
func (w *Window) DrawableSize() (int, int) {
	width, height := w.sdl.GLGetDrawableSize()
	return int(width), int(height)
}

// SetTitle sets the window title.
func (w *Window) SetTitle(title string) {
	w.sdl.SetTitle(title)
}
