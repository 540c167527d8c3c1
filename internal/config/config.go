// Package config handles renderer configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalid is returned by Validate for settings the renderer cannot use.
var ErrInvalid = errors.New("invalid config")

// Config holds all renderer settings.
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	Camera  CameraConfig  `yaml:"camera"`
	Scene   SceneConfig   `yaml:"scene"`
	Assets  AssetsConfig  `yaml:"assets"`
	Output  OutputConfig  `yaml:"output"`
	Window  WindowConfig  `yaml:"window"`
	Logging LoggingConfig `yaml:"logging"`
}

// RenderConfig holds frame and pipeline settings.
type RenderConfig struct {
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
	Workers  int `yaml:"workers"`   // 0 renders on the calling goroutine
	TileSize int `yaml:"tile_size"` // edge of a square worker tile in pixels

	ClearColor      [3]uint8 `yaml:"clear_color"`
	BackfaceCulling bool     `yaml:"backface_culling"`

	DepthEpsilon       float32 `yaml:"depth_epsilon"`
	BarycentricEpsilon float32 `yaml:"barycentric_epsilon"`
	ClipEpsilon        float32 `yaml:"clip_epsilon"`

	Lighting      string `yaml:"lighting"`       // ambient, lambert or phong
	TextureFilter string `yaml:"texture_filter"` // nearest or bilinear
}

// CameraConfig holds the initial camera.
type CameraConfig struct {
	Position   [3]float32 `yaml:"position"`
	Yaw        float32    `yaml:"yaw"`   // degrees
	Pitch      float32    `yaml:"pitch"` // degrees
	FovDegrees float32    `yaml:"fov_degrees"`
	Near       float32    `yaml:"near"`
	Far        float32    `yaml:"far"`
	FitScene   bool       `yaml:"fit_scene"`
}

// SceneConfig lists what gets uploaded at startup.
type SceneConfig struct {
	AmbientIntensity float32       `yaml:"ambient_intensity"`
	Models           []ModelConfig `yaml:"models"`
	Lights           []LightConfig `yaml:"lights"`
}

// ModelConfig describes one mesh. Exactly one of Path or Primitive is set.
type ModelConfig struct {
	Name      string  `yaml:"name"`
	Path      string  `yaml:"path"`
	Primitive string  `yaml:"primitive"` // cube or sphere
	Size      float32 `yaml:"size"`
	Smooth    bool    `yaml:"smooth"`
	Center    bool    `yaml:"center"`

	Position [3]float32 `yaml:"position"`
	Rotation [3]float32 `yaml:"rotation"` // degrees around x, y, z
	Scale    [3]float32 `yaml:"scale"`    // zero components mean 1

	Color      *[3]float32 `yaml:"color"`
	Specular   float32     `yaml:"specular"`
	Reflective float32     `yaml:"reflective"`
	Refractive float32     `yaml:"refractive"`
	Texture    string      `yaml:"texture"`
}

// LightConfig describes one point or directional light.
type LightConfig struct {
	Kind      string      `yaml:"kind"` // point or directional
	Color     [3]float32  `yaml:"color"`
	Intensity float32     `yaml:"intensity"`
	Position  [3]float32  `yaml:"position"`
	Rotation  [3]float32  `yaml:"rotation"` // degrees; rotates the default -Z direction
	Sun       *[2]float32 `yaml:"sun"`      // longitude, latitude in degrees; overrides rotation
	Gizmo     bool        `yaml:"gizmo"`
}

// AssetsConfig holds asset lookup settings.
type AssetsConfig struct {
	SearchPaths  []string `yaml:"search_paths"`
	TextEncoding string   `yaml:"text_encoding"` // encoding of OBJ/MTL text, empty for UTF-8
}

// OutputConfig holds headless output settings.
type OutputConfig struct {
	Path string `yaml:"path"`
}

// WindowConfig holds viewer window settings.
type WindowConfig struct {
	Title         string            `yaml:"title"`
	VSync         bool              `yaml:"vsync"`
	MoveStep      float32           `yaml:"move_step"`  // world units per key press
	TurnStep      float32           `yaml:"turn_step"`  // degrees per key press
	ScaleStep     float32           `yaml:"scale_step"` // factor per key press
	ScreenshotDir string            `yaml:"screenshot_dir"`
	Keys          map[string]string `yaml:"keys"` // key name -> action, merged over the defaults
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Width:              800,
			Height:             600,
			Workers:            0,
			TileSize:           64,
			ClearColor:         [3]uint8{0, 0, 0},
			BackfaceCulling:    true,
			DepthEpsilon:       1e-6,
			BarycentricEpsilon: 1e-4,
			ClipEpsilon:        1e-5,
			Lighting:           "phong",
			TextureFilter:      "bilinear",
		},
		Camera: CameraConfig{
			Position:   [3]float32{0, 0, 5},
			FovDegrees: 60,
			Near:       0.1,
			Far:        100,
		},
		Scene: SceneConfig{
			AmbientIntensity: 0.2,
		},
		Assets: AssetsConfig{
			SearchPaths: []string{"."},
		},
		Output: OutputConfig{
			Path: "frame.png",
		},
		Window: WindowConfig{
			Title:         "softrender",
			VSync:         true,
			MoveStep:      0.25,
			TurnStep:      5,
			ScaleStep:     1.1,
			ScreenshotDir: "screenshots",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports the first setting the renderer cannot use.
func (c *Config) Validate() error {
	r := c.Render
	switch {
	case r.Width < 1 || r.Height < 1:
		return fmt.Errorf("%w: render size %dx%d", ErrInvalid, r.Width, r.Height)
	case r.Workers < 0:
		return fmt.Errorf("%w: workers %d", ErrInvalid, r.Workers)
	case r.TileSize < 1:
		return fmt.Errorf("%w: tile_size %d", ErrInvalid, r.TileSize)
	case r.DepthEpsilon < 0 || r.BarycentricEpsilon < 0 || r.ClipEpsilon < 0:
		return fmt.Errorf("%w: negative epsilon", ErrInvalid)
	}

	cam := c.Camera
	if cam.Near <= 0 || cam.Far <= cam.Near {
		return fmt.Errorf("%w: camera near %v far %v", ErrInvalid, cam.Near, cam.Far)
	}
	if cam.FovDegrees <= 0 || cam.FovDegrees >= 180 {
		return fmt.Errorf("%w: camera fov %v", ErrInvalid, cam.FovDegrees)
	}

	for i, m := range c.Scene.Models {
		if (m.Path == "") == (m.Primitive == "") {
			return fmt.Errorf("%w: model %d needs exactly one of path or primitive", ErrInvalid, i)
		}
	}
	for i, l := range c.Scene.Lights {
		if l.Kind != "point" && l.Kind != "directional" {
			return fmt.Errorf("%w: light %d kind %q", ErrInvalid, i, l.Kind)
		}
	}
	return nil
}
