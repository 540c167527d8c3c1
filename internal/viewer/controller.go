package viewer

import (
	"errors"
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/softrender/internal/engine/debug"
	"github.com/Faultbox/softrender/internal/engine/scene"
	"github.com/Faultbox/softrender/internal/logger"
	"github.com/Faultbox/softrender/pkg/math"
)

// ErrQuit is returned by Apply for the quit action.
var ErrQuit = errors.New("quit requested")

// Settings holds the step sizes of the controller.
type Settings struct {
	MoveStep      float32 // world units
	TurnStep      float32 // radians
	ScaleStep     float32 // factor, > 1
	AmbientStep   float32
	IntensityStep float32
}

// DefaultSettings returns the stock step sizes.
func DefaultSettings() Settings {
	return Settings{
		MoveStep:      0.25,
		TurnStep:      5 * gomath.Pi / 180,
		ScaleStep:     1.1,
		AmbientStep:   0.05,
		IntensityStep: 0.1,
	}
}

// Controller applies user actions to a scene. Each action that changes the
// scene triggers one redraw through the scene's presenter.
type Controller struct {
	scene    *scene.Scene
	overlay  *Overlay
	shots    *debug.ScreenshotCapture
	bindings Bindings
	settings Settings
	log      *zap.Logger
}

// NewController creates a controller. overlay and shots may be nil.
func NewController(s *scene.Scene, overlay *Overlay, shots *debug.ScreenshotCapture, b Bindings, settings Settings) *Controller {
	if b == nil {
		b = DefaultBindings()
	}
	return &Controller{
		scene:    s,
		overlay:  overlay,
		shots:    shots,
		bindings: b,
		settings: settings,
		log:      logger.Named("viewer"),
	}
}

// Key applies the action bound to a key name. Unbound keys are ignored.
func (c *Controller) Key(name string) error {
	a, ok := c.bindings.Lookup(name)
	if !ok {
		return nil
	}
	return c.Apply(a)
}

// Click picks the model under pixel (x, y) and redraws so the selection
// shows. It reports whether anything was hit.
func (c *Controller) Click(x, y int) (bool, error) {
	id, ok := c.scene.Pick(x, y)
	if !ok {
		return false, nil
	}
	c.log.Debug("model picked", zap.Uint32("id", uint32(id)), zap.Int("x", x), zap.Int("y", y))
	return true, c.scene.Redraw()
}

// Batch runs fn with redraws deferred until it returns.
func (c *Controller) Batch(fn func() error) error {
	return c.scene.Batch(fn)
}

// Apply performs one action. Actions that need a current model, light or
// texture and find none are logged and skipped; render and present
// failures are returned.
func (c *Controller) Apply(a Action) error {
	err := c.apply(a)
	if isRecoverable(err) {
		c.log.Info("action skipped", zap.Stringer("action", a), zap.Error(err))
		return nil
	}
	return err
}

func isRecoverable(err error) bool {
	return errors.Is(err, scene.ErrNoCurrentModel) ||
		errors.Is(err, scene.ErrNotALight) ||
		errors.Is(err, scene.ErrNotAMesh) ||
		errors.Is(err, scene.ErrNoTexture)
}

func (c *Controller) apply(a Action) error {
	st := c.settings
	s := c.scene

	switch a {
	case CameraForward:
		return s.MoveCamera(0, 0, st.MoveStep)
	case CameraBack:
		return s.MoveCamera(0, 0, -st.MoveStep)
	case CameraLeft:
		return s.MoveCamera(-st.MoveStep, 0, 0)
	case CameraRight:
		return s.MoveCamera(st.MoveStep, 0, 0)
	case CameraUp:
		return s.MoveCamera(0, st.MoveStep, 0)
	case CameraDown:
		return s.MoveCamera(0, -st.MoveStep, 0)
	case CameraYawLeft:
		return s.RotateCamera(-st.TurnStep, 0)
	case CameraYawRight:
		return s.RotateCamera(st.TurnStep, 0)
	case CameraPitchUp:
		return s.RotateCamera(0, st.TurnStep)
	case CameraPitchDown:
		return s.RotateCamera(0, -st.TurnStep)
	case NextCamera:
		return c.nextCamera()

	case ModelLeft:
		return s.Shift(math.Vec3{X: -st.MoveStep})
	case ModelRight:
		return s.Shift(math.Vec3{X: st.MoveStep})
	case ModelUp:
		return s.Shift(math.Vec3{Y: st.MoveStep})
	case ModelDown:
		return s.Shift(math.Vec3{Y: -st.MoveStep})
	case ModelNear:
		return s.Shift(math.Vec3{Z: st.MoveStep})
	case ModelFar:
		return s.Shift(math.Vec3{Z: -st.MoveStep})
	case ModelYawLeft:
		return s.Rotate(math.Vec3{Y: 1}, st.TurnStep)
	case ModelYawRight:
		return s.Rotate(math.Vec3{Y: 1}, -st.TurnStep)
	case ModelPitchUp:
		return s.Rotate(math.Vec3{X: 1}, -st.TurnStep)
	case ModelPitchDown:
		return s.Rotate(math.Vec3{X: 1}, st.TurnStep)
	case ModelGrow:
		f := st.ScaleStep
		return s.Scale(math.Vec3{X: f, Y: f, Z: f})
	case ModelShrink:
		f := 1 / st.ScaleStep
		return s.Scale(math.Vec3{X: f, Y: f, Z: f})
	case NextModel:
		return c.nextModel()
	case RemoveModel:
		return s.RemoveCurrent()
	case ToggleTexture:
		return c.toggleTexture()

	case AmbientUp:
		return s.SetAmbientIntensity(c.ambient() + st.AmbientStep)
	case AmbientDown:
		return s.SetAmbientIntensity(max(0, c.ambient()-st.AmbientStep))
	case IntensityUp:
		return c.adjustIntensity(st.IntensityStep)
	case IntensityDown:
		return c.adjustIntensity(-st.IntensityStep)

	case ToggleSelection:
		if c.overlay == nil {
			return nil
		}
		c.overlay.ShowSelection = !c.overlay.ShowSelection
		return s.Redraw()
	case ToggleTileGrid:
		if c.overlay == nil {
			return nil
		}
		c.overlay.ShowTileGrid = !c.overlay.ShowTileGrid
		return s.Redraw()
	case Screenshot:
		return c.screenshot()
	case Quit:
		return ErrQuit
	}
	return nil
}

// nextModel cycles the current model through the pickable models in draw
// order. Ambient lights are skipped.
func (c *Controller) nextModel() error {
	var ids []scene.ID
	for _, m := range c.scene.Models() {
		if m.Kind != scene.KindAmbientLight {
			ids = append(ids, m.ID)
		}
	}
	if len(ids) == 0 {
		return scene.ErrNoCurrentModel
	}

	next := ids[0]
	if cur, err := c.scene.Current(); err == nil {
		for i, id := range ids {
			if id == cur.ID {
				next = ids[(i+1)%len(ids)]
				break
			}
		}
	}
	if err := c.scene.SetCurrentModel(next); err != nil {
		return err
	}
	return c.scene.Redraw()
}

func (c *Controller) nextCamera() error {
	names := c.scene.CameraNames()
	cur := c.scene.CurrentCameraName()
	for i, n := range names {
		if n == cur {
			return c.scene.SetCurrentCamera(names[(i+1)%len(names)])
		}
	}
	return nil
}

func (c *Controller) toggleTexture() error {
	m, err := c.scene.Current()
	if err != nil {
		return err
	}
	if m.Material.Textured {
		return c.scene.SetTextured(false, scene.DefaultMaterial().Color)
	}
	return c.scene.SetTextured(true, math.Vec3{X: 1, Y: 1, Z: 1})
}

// ambient returns the intensity of the first ambient light.
func (c *Controller) ambient() float32 {
	for _, m := range c.scene.Models() {
		if m.Kind == scene.KindAmbientLight {
			return m.Intensity
		}
	}
	return 0
}

func (c *Controller) adjustIntensity(delta float32) error {
	m, err := c.scene.Current()
	if err != nil {
		return err
	}
	if !m.Kind.IsLight() {
		return scene.ErrNotALight
	}
	return c.scene.SetIntensity(max(0, m.Intensity+delta))
}

func (c *Controller) screenshot() error {
	if c.shots == nil {
		return nil
	}
	path, err := c.shots.Capture(c.scene.Framebuffer())
	if err != nil {
		return err
	}
	c.log.Info("screenshot saved", zap.String("path", path))
	return nil
}
