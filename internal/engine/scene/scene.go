// Package scene owns the models, lights and cameras of a software-rendered
// scene and drives one full frame through the raster pipeline per change.
package scene

import (
	"errors"
	"fmt"
	"image/color"
	gomath "math"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/softrender/internal/engine/camera"
	"github.com/Faultbox/softrender/internal/engine/framebuffer"
	"github.com/Faultbox/softrender/internal/engine/lighting"
	"github.com/Faultbox/softrender/internal/engine/raster"
	"github.com/Faultbox/softrender/internal/logger"
	"github.com/Faultbox/softrender/pkg/math"
)

// Scene errors.
var (
	ErrNoCurrentModel = errors.New("no current model")
	ErrUnknownModel   = errors.New("unknown model")
	ErrUnknownCamera  = errors.New("unknown camera")
	ErrNotALight      = errors.New("model is not a light")
	ErrNotAMesh       = errors.New("model is not a mesh")
	ErrEmptyMesh      = errors.New("mesh has no faces")
	ErrNoTexture      = errors.New("model has no texture")
)

// DefaultCamera is the name of the camera every scene starts with.
const DefaultCamera = "main"

// Presenter receives each finished frame. It runs after every worker has
// finished writing the framebuffer.
type Presenter interface {
	Present(fb *framebuffer.Framebuffer) error
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(fb *framebuffer.Framebuffer) error

// Present implements Presenter.
func (f PresenterFunc) Present(fb *framebuffer.Framebuffer) error {
	return f(fb)
}

// Options configures a scene.
type Options struct {
	Width  int
	Height int

	// Workers is the number of goroutines rasterizing tiles. Zero or less
	// renders on the calling goroutine.
	Workers  int
	TileSize int

	ClearColor      color.RGBA
	BackfaceCulling bool

	DepthEpsilon       float32
	BarycentricEpsilon float32
	ClipEpsilon        float32

	// Lighting evaluates every lit fragment. Nil draws meshes unlit.
	Lighting         lighting.Evaluator
	AmbientIntensity float32

	// Camera replaces the default camera when set.
	Camera *camera.Camera
}

// DefaultOptions returns options for a sequential 800x600 Phong-lit frame.
func DefaultOptions() Options {
	return Options{
		Width:              800,
		Height:             600,
		TileSize:           raster.DefaultTileSize,
		ClearColor:         color.RGBA{A: 0xFF},
		BackfaceCulling:    true,
		DepthEpsilon:       raster.DefaultDepthEpsilon,
		BarycentricEpsilon: raster.DefaultBarycentricEpsilon,
		ClipEpsilon:        raster.DefaultClipEpsilon,
		Lighting:           lighting.Phong{},
		AmbientIntensity:   0.2,
	}
}

// Scene is the render context: it owns the frame and depth buffers, the
// model collection and the cameras. A Scene is not safe for concurrent use;
// rendering parallelism is internal to Render.
type Scene struct {
	opts Options
	log  *zap.Logger

	fb        *framebuffer.Framebuffer
	pipeline  *raster.Pipeline
	presenter Presenter

	models  map[ID]*Model
	order   []ID
	nextID  ID
	current ID

	cameras       map[string]*camera.Camera
	currentCamera string

	lights *lighting.Set

	batch int
	dirty bool
	stats FrameStats
}

// New creates a scene with one ambient light and one camera. The presenter
// may be nil. No frame is rendered until the first change or Render call.
func New(opts Options, presenter Presenter) (*Scene, error) {
	fb, err := framebuffer.New(opts.Width, opts.Height)
	if err != nil {
		return nil, fmt.Errorf("creating framebuffer: %w", err)
	}
	if opts.TileSize < 1 {
		opts.TileSize = raster.DefaultTileSize
	}

	p := raster.NewPipeline(opts.Width, opts.Height)
	p.Cull = opts.BackfaceCulling
	p.ClipEpsilon = opts.ClipEpsilon

	s := &Scene{
		opts:      opts,
		log:       logger.Named("scene"),
		fb:        fb,
		pipeline:  p,
		presenter: presenter,
		models:    make(map[ID]*Model),
		nextID:    1,
		cameras:   make(map[string]*camera.Camera),
		lights:    lighting.NewSet(),
	}

	cam := opts.Camera
	if cam == nil {
		cam = camera.New(DefaultCamera, math.Vec3{Z: 5}, gomath.Pi/3, 1, 0.1, 100)
	}
	cam.SetAspect(opts.Width, opts.Height)
	s.cameras[cam.Name] = cam
	s.currentCamera = cam.Name

	ambient := &Model{
		Name:       "ambient",
		Kind:       KindAmbientLight,
		Transform:  Identity(),
		LightColor: math.Vec3{X: 1, Y: 1, Z: 1},
		Intensity:  opts.AmbientIntensity,
	}
	s.insert(ambient)

	return s, nil
}

// insert assigns the next id and appends m to the draw order.
func (s *Scene) insert(m *Model) ID {
	m.ID = s.nextID
	s.nextID++
	s.models[m.ID] = m
	s.order = append(s.order, m.ID)
	return m.ID
}

// Framebuffer returns the frame the scene renders into.
func (s *Scene) Framebuffer() *framebuffer.Framebuffer {
	return s.fb
}

// Size returns the frame dimensions.
func (s *Scene) Size() (width, height int) {
	return s.fb.Size()
}

// SetPresenter replaces the presenter. Nil disables presentation.
func (s *Scene) SetPresenter(p Presenter) {
	s.presenter = p
}

// Model returns the model with the given id.
func (s *Scene) Model(id ID) (*Model, bool) {
	m, ok := s.models[id]
	return m, ok
}

// Models returns the models in draw order.
func (s *Scene) Models() []*Model {
	out := make([]*Model, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.models[id])
	}
	return out
}

// Len returns the number of models, lights included.
func (s *Scene) Len() int {
	return len(s.order)
}

// Current returns the current model.
func (s *Scene) Current() (*Model, error) {
	if s.current == 0 {
		return nil, ErrNoCurrentModel
	}
	m, ok := s.models[s.current]
	if !ok {
		return nil, ErrNoCurrentModel
	}
	return m, nil
}

// SetCurrentModel makes id the target of the model mutators. It does not
// redraw.
func (s *Scene) SetCurrentModel(id ID) error {
	if _, ok := s.models[id]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownModel, id)
	}
	s.current = id
	return nil
}

// Camera returns the current camera.
func (s *Scene) Camera() *camera.Camera {
	return s.cameras[s.currentCamera]
}

// AddCamera registers a camera under its name, replacing any camera of the
// same name. It does not change the current camera.
func (s *Scene) AddCamera(c *camera.Camera) {
	c.SetAspect(s.fb.Size())
	s.cameras[c.Name] = c
}

// CameraNames returns the registered camera names, sorted.
func (s *Scene) CameraNames() []string {
	var names []string
	for name := range s.cameras {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// CurrentCameraName returns the name of the current camera.
func (s *Scene) CurrentCameraName() string {
	return s.currentCamera
}

// SetCurrentCamera switches to a registered camera and redraws.
func (s *Scene) SetCurrentCamera(name string) error {
	if _, ok := s.cameras[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCamera, name)
	}
	s.currentCamera = name
	return s.changed()
}

// Resize reallocates the buffers for a new frame size and redraws.
func (s *Scene) Resize(width, height int) error {
	if err := s.fb.Resize(width, height); err != nil {
		return err
	}
	s.opts.Width, s.opts.Height = width, height
	s.pipeline.Width, s.pipeline.Height = width, height
	for _, c := range s.cameras {
		c.SetAspect(width, height)
	}
	return s.changed()
}

// Batch runs fn with redraws suppressed and redraws once afterwards if fn
// changed anything. Batches nest.
func (s *Scene) Batch(fn func() error) error {
	s.batch++
	err := fn()
	s.batch--
	if s.batch > 0 || !s.dirty {
		return err
	}
	if rerr := s.changed(); err == nil {
		err = rerr
	}
	return err
}

// Redraw renders a frame now, or once when the enclosing batch ends. Use it
// after changing something the scene does not track, such as an overlay.
func (s *Scene) Redraw() error {
	return s.changed()
}

// changed redraws now, or marks the scene dirty inside a batch.
func (s *Scene) changed() error {
	if s.batch > 0 {
		s.dirty = true
		return nil
	}
	s.dirty = false
	_, err := s.Render()
	return err
}
