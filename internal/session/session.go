// Package session runs the interactive viewer: an SDL window showing the
// software-rendered scene, driven by keyboard and mouse.
package session

import (
	"errors"
	"fmt"
	gomath "math"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/softrender/internal/app"
	"github.com/Faultbox/softrender/internal/assets"
	"github.com/Faultbox/softrender/internal/config"
	"github.com/Faultbox/softrender/internal/engine/debug"
	"github.com/Faultbox/softrender/internal/engine/input"
	"github.com/Faultbox/softrender/internal/engine/scene"
	"github.com/Faultbox/softrender/internal/engine/window"
	"github.com/Faultbox/softrender/internal/logger"
	"github.com/Faultbox/softrender/internal/viewer"
)

const (
	// idleDelay is how long the loop sleeps when no input arrived.
	idleDelay = 5 * time.Millisecond
	// shiftRepeat is how many steps a key applies with Shift held.
	shiftRepeat = 4
)

// Session is the viewer instance.
type Session struct {
	cfg *config.Config
	log *zap.Logger

	window     *window.Window
	presenter  *window.Presenter
	input      *input.Input
	scene      *scene.Scene
	assets     *assets.Manager
	overlay    *viewer.Overlay
	controller *viewer.Controller
}

// New opens the window and builds the configured scene.
func New(cfg *config.Config) (*Session, error) {
	s := &Session{
		cfg: cfg,
		log: logger.Named("session"),
	}
	s.log.Info("initializing viewer",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Render.Width),
		zap.Int("height", cfg.Render.Height),
		zap.Int("workers", cfg.Render.Workers))

	bindings, err := viewer.DefaultBindings().Merge(cfg.Window.Keys)
	if err != nil {
		return nil, fmt.Errorf("key bindings: %w", err)
	}

	// Create window (this also creates OpenGL context)
	s.window, err = window.New(window.Config{
		Title:   cfg.Window.Title,
		Width:   cfg.Render.Width,
		Height:  cfg.Render.Height,
		VSync:   cfg.Window.VSync,
		HighDPI: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Presenter needs the GL context created above
	s.presenter, err = window.NewPresenter(s.window)
	if err != nil {
		s.Close()
		return nil, err
	}

	s.overlay = viewer.NewOverlay(nil, s.presenter, cfg.Render.TileSize)
	s.scene, s.assets, err = app.BuildScene(cfg, s.overlay)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to build scene: %w", err)
	}
	s.overlay.Scene = s.scene

	s.controller = viewer.NewController(s.scene, s.overlay,
		debug.NewScreenshotCapture(cfg.Window.ScreenshotDir, "softrender"),
		bindings, settings(cfg.Window))

	s.input = input.New()

	s.log.Info("viewer initialized", zap.Int("models", s.scene.Len()))
	return s, nil
}

func settings(w config.WindowConfig) viewer.Settings {
	st := viewer.DefaultSettings()
	if w.MoveStep > 0 {
		st.MoveStep = w.MoveStep
	}
	if w.TurnStep > 0 {
		st.TurnStep = w.TurnStep * gomath.Pi / 180
	}
	if w.ScaleStep > 1 {
		st.ScaleStep = w.ScaleStep
	}
	return st
}

// Run shows the first frame and processes input until quit.
func (s *Session) Run() error {
	if err := s.redraw(); err != nil {
		return err
	}

	s.log.Info("starting viewer loop")
	for {
		// 1. Process input
		if s.input.Update() {
			return nil
		}

		events := s.input.Events()
		for _, ev := range events {
			err := s.handle(ev)
			if errors.Is(err, viewer.ErrQuit) {
				return nil
			}
			if err != nil {
				return err
			}
		}

		if len(events) == 0 {
			time.Sleep(idleDelay)
		}
	}
}

// handle dispatches one input event. Scene changes redraw inside the
// controller; the title is refreshed with the stats of the last frame.
func (s *Session) handle(ev input.Event) error {
	switch ev.Type {
	case input.EventWindowResize:
		return s.redraw()

	case input.EventKeyDown:
		before := s.scene.Stats()
		n := 1
		if ev.Shift {
			n = shiftRepeat
		}
		if err := s.controller.Batch(func() error {
			for range n {
				if err := s.controller.Key(ev.KeyName); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
			return err
		}
		s.updateTitle(before)

	case input.EventMouseWheel:
		a := viewer.CameraForward
		if ev.WheelY < 0 {
			a = viewer.CameraBack
		}
		before := s.scene.Stats()
		if err := s.controller.Apply(a); err != nil {
			return err
		}
		s.updateTitle(before)

	case input.EventMouseDown:
		if ev.Button != 1 {
			return nil
		}
		x, y, ok := s.toFrame(ev.MouseX, ev.MouseY)
		if !ok {
			return nil
		}
		before := s.scene.Stats()
		if _, err := s.controller.Click(x, y); err != nil {
			return err
		}
		s.updateTitle(before)
	}
	return nil
}

// redraw renders and presents the current scene.
func (s *Session) redraw() error {
	st, err := s.scene.Render()
	if err != nil {
		return err
	}
	s.setTitle(st)
	return nil
}

func (s *Session) updateTitle(before scene.FrameStats) {
	if st := s.scene.Stats(); st != before {
		s.setTitle(st)
	}
}

func (s *Session) setTitle(st scene.FrameStats) {
	s.window.SetTitle(fmt.Sprintf("%s | %d tris drawn, %d culled | %s",
		s.cfg.Window.Title, st.Drawn, st.Culled, st.Duration.Round(time.Microsecond)))
}

// toFrame maps window coordinates to frame pixels through the letterbox.
func (s *Session) toFrame(wx, wy int) (int, int, bool) {
	fw, fh := s.scene.Size()
	ww, wh := s.window.GetSize()
	x0, y0, x1, y1 := window.Letterbox(fw, fh, ww, wh)
	if x1 <= x0 || y1 <= y0 {
		return 0, 0, false
	}
	x := (wx - int(x0)) * fw / int(x1-x0)
	y := (wy - int(y0)) * fh / int(y1-y0)
	if x < 0 || y < 0 || x >= fw || y >= fh {
		return 0, 0, false
	}
	return x, y, true
}

// Close releases the presenter and window.
func (s *Session) Close() {
	s.log.Info("closing viewer")

	if s.assets != nil {
		s.assets.Close()
	}
	if s.presenter != nil {
		s.presenter.Destroy()
	}
	if s.window != nil {
		s.window.Close()
	}
}
