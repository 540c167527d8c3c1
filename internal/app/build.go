// Package app assembles a scene from configuration for the command-line
// renderer and the interactive viewer.
package app

import (
	"errors"
	"fmt"
	"image/color"
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/softrender/internal/assets"
	"github.com/Faultbox/softrender/internal/config"
	"github.com/Faultbox/softrender/internal/engine/camera"
	"github.com/Faultbox/softrender/internal/engine/lighting"
	"github.com/Faultbox/softrender/internal/engine/mesh"
	"github.com/Faultbox/softrender/internal/engine/scene"
	"github.com/Faultbox/softrender/internal/engine/texture"
	"github.com/Faultbox/softrender/internal/logger"
	"github.com/Faultbox/softrender/pkg/geom"
	"github.com/Faultbox/softrender/pkg/math"
)

// ErrUnknownPrimitive is returned for a model primitive other than cube or sphere.
var ErrUnknownPrimitive = errors.New("unknown primitive")

const (
	sphereSegments = 32
	sphereRings    = 16
)

// Options converts the render and camera sections into scene options.
func Options(cfg *config.Config) (scene.Options, error) {
	r := cfg.Render
	eval, err := lighting.Parse(r.Lighting)
	if err != nil {
		return scene.Options{}, err
	}

	c := cfg.Camera
	cam := camera.New(scene.DefaultCamera,
		vec3(c.Position),
		radians(c.FovDegrees), 1, c.Near, c.Far)
	cam.Rotate(radians(c.Yaw), radians(c.Pitch))

	return scene.Options{
		Width:              r.Width,
		Height:             r.Height,
		Workers:            r.Workers,
		TileSize:           r.TileSize,
		ClearColor:         color.RGBA{R: r.ClearColor[0], G: r.ClearColor[1], B: r.ClearColor[2], A: 255},
		BackfaceCulling:    r.BackfaceCulling,
		DepthEpsilon:       r.DepthEpsilon,
		BarycentricEpsilon: r.BarycentricEpsilon,
		ClipEpsilon:        r.ClipEpsilon,
		Lighting:           eval,
		AmbientIntensity:   cfg.Scene.AmbientIntensity,
		Camera:             cam,
	}, nil
}

// NewAssets creates the asset manager described by the assets section.
func NewAssets(cfg *config.Config) (*assets.Manager, error) {
	filter, err := texture.ParseFilter(cfg.Render.TextureFilter)
	if err != nil {
		return nil, err
	}
	return assets.NewManager(assets.Options{
		SearchPaths:   cfg.Assets.SearchPaths,
		TextEncoding:  cfg.Assets.TextEncoding,
		TextureFilter: filter,
	})
}

// BuildScene creates a scene from cfg and populates it inside one batch, so
// the presenter sees a single frame once everything is in place.
func BuildScene(cfg *config.Config, presenter scene.Presenter) (*scene.Scene, *assets.Manager, error) {
	opts, err := Options(cfg)
	if err != nil {
		return nil, nil, err
	}
	am, err := NewAssets(cfg)
	if err != nil {
		return nil, nil, err
	}
	s, err := scene.New(opts, presenter)
	if err != nil {
		return nil, nil, err
	}

	err = s.Batch(func() error {
		if err := Populate(s, am, cfg.Scene); err != nil {
			return err
		}
		if cfg.Camera.FitScene {
			if b, ok := SceneBounds(s); ok {
				s.Camera().FitToBounds(b)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return s, am, nil
}

// Populate adds the configured models and lights to s. The last configured
// model is left current.
func Populate(s *scene.Scene, am *assets.Manager, sc config.SceneConfig) error {
	log := logger.Named("app")

	for i, mc := range sc.Models {
		id, err := addModel(s, am, mc)
		if err != nil {
			return fmt.Errorf("model %d: %w", i, err)
		}
		log.Debug("configured model added", zap.Int("index", i), zap.Uint32("id", uint32(id)))
	}

	for i, lc := range sc.Lights {
		if _, err := s.AddLight(lightFromConfig(lc), lc.Gizmo); err != nil {
			return fmt.Errorf("light %d: %w", i, err)
		}
	}
	return nil
}

func addModel(s *scene.Scene, am *assets.Manager, mc config.ModelConfig) (scene.ID, error) {
	var (
		id  scene.ID
		err error
	)
	if mc.Path != "" {
		loader := am.Loader(mesh.BuildOptions{Smooth: mc.Smooth, Center: mc.Center})
		id, err = s.Upload(loader, mc.Path)
	} else {
		var m *mesh.Mesh
		m, err = primitive(mc)
		if err != nil {
			return 0, err
		}
		id, err = s.AddMesh(m, scene.DefaultMaterial(), scene.Identity())
	}
	if err != nil {
		return 0, err
	}

	model, _ := s.Model(id)
	if mc.Name != "" {
		model.Name = mc.Name
	}

	if err := s.SetCurrentModel(id); err != nil {
		return 0, err
	}
	if err := configureModel(s, am, mc); err != nil {
		return 0, err
	}
	return id, nil
}

// configureModel applies transform and material overrides to the current
// model.
func configureModel(s *scene.Scene, am *assets.Manager, mc config.ModelConfig) error {
	t := scene.Identity()
	t.Position = vec3(mc.Position)
	t.Rotation = math.QuatFromEuler(radians(mc.Rotation[0]), radians(mc.Rotation[1]), radians(mc.Rotation[2]))
	t.Scale = scale(mc.Scale)
	if err := s.SetTransform(t); err != nil {
		return err
	}

	if mc.Texture != "" {
		tex, err := am.LoadTexture(mc.Texture)
		if err != nil {
			return err
		}
		if err := s.SetTexture(tex); err != nil {
			return err
		}
	}
	if mc.Color != nil {
		if err := s.SetColor(vec3(*mc.Color)); err != nil {
			return err
		}
	}
	if mc.Specular != 0 {
		if err := s.SetSpecular(mc.Specular); err != nil {
			return err
		}
	}
	if mc.Reflective != 0 {
		if err := s.SetReflective(mc.Reflective); err != nil {
			return err
		}
	}
	if mc.Refractive != 0 {
		if err := s.SetRefractive(mc.Refractive); err != nil {
			return err
		}
	}
	return nil
}

func primitive(mc config.ModelConfig) (*mesh.Mesh, error) {
	size := mc.Size
	if size <= 0 {
		size = 1
	}
	var m *mesh.Mesh
	switch mc.Primitive {
	case "cube":
		m = mesh.Cube(size)
	case "sphere":
		m = mesh.Sphere(size/2, sphereSegments, sphereRings)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPrimitive, mc.Primitive)
	}
	if mc.Smooth {
		mesh.SmoothNormals(m.Faces)
	}
	return m, nil
}

func lightFromConfig(lc config.LightConfig) lighting.Light {
	l := lighting.Light{
		Kind:      lighting.Point,
		Color:     vec3(lc.Color),
		Intensity: lc.Intensity,
		Position:  vec3(lc.Position),
	}
	if lc.Kind == "directional" {
		l.Kind = lighting.Directional
		if lc.Sun != nil {
			l.Direction = lighting.SunDirection(lc.Sun[0], lc.Sun[1])
		} else {
			q := math.QuatFromEuler(radians(lc.Rotation[0]), radians(lc.Rotation[1]), radians(lc.Rotation[2]))
			l.Direction = q.Rotate(math.Vec3{Z: -1})
		}
	}
	return l
}

// SceneBounds returns the union of the world bounds of every mesh model.
func SceneBounds(s *scene.Scene) (geom.BoundingBox, bool) {
	var (
		lo, hi math.Vec3
		found  bool
	)
	for _, m := range s.Models() {
		if m.Kind != scene.KindMesh {
			continue
		}
		b, ok := m.WorldBounds()
		if !ok {
			continue
		}
		if !found {
			lo, hi, found = b.Min(), b.Max(), true
			continue
		}
		lo = lo.Min(b.Min())
		hi = hi.Max(b.Max())
	}
	if !found {
		return geom.BoundingBox{}, false
	}
	return geom.NewBoundingBox(lo, hi), true
}

func vec3(a [3]float32) math.Vec3 {
	return math.Vec3{X: a[0], Y: a[1], Z: a[2]}
}

func scale(a [3]float32) math.Vec3 {
	v := vec3(a)
	if v.X == 0 {
		v.X = 1
	}
	if v.Y == 0 {
		v.Y = 1
	}
	if v.Z == 0 {
		v.Z = 1
	}
	return v
}

func radians(deg float32) float32 {
	return deg * gomath.Pi / 180
}
