package viewer

import (
	"errors"
	"image"
	gomath "math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/softrender/internal/engine/debug"
	"github.com/Faultbox/softrender/internal/engine/framebuffer"
	"github.com/Faultbox/softrender/internal/engine/lighting"
	"github.com/Faultbox/softrender/internal/engine/mesh"
	"github.com/Faultbox/softrender/internal/engine/scene"
	"github.com/Faultbox/softrender/internal/engine/texture"
	"github.com/Faultbox/softrender/pkg/math"
)

type countingPresenter struct {
	frames int
}

func (p *countingPresenter) Present(*framebuffer.Framebuffer) error {
	p.frames++
	return nil
}

const eps = 1e-4

func near(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < eps
}

// newTestController builds a 64x64 scene with one unit cube at the origin
// behind an overlay, with the selection box off.
func newTestController(t *testing.T) (*Controller, *scene.Scene, *Overlay, *countingPresenter) {
	t.Helper()
	opts := scene.DefaultOptions()
	opts.Width, opts.Height = 64, 64
	opts.Lighting = lighting.AmbientOnly{}
	opts.AmbientIntensity = 1

	s, err := scene.New(opts, nil)
	if err != nil {
		t.Fatalf("scene.New failed: %v", err)
	}
	p := &countingPresenter{}
	o := NewOverlay(s, p, 16)
	o.ShowSelection = false
	s.SetPresenter(o)

	if _, err := s.AddMesh(mesh.Cube(1), scene.DefaultMaterial(), scene.Identity()); err != nil {
		t.Fatalf("AddMesh failed: %v", err)
	}
	c := NewController(s, o, debug.NewScreenshotCapture(t.TempDir(), "shot"), nil, DefaultSettings())
	p.frames = 0
	return c, s, o, p
}

func newWhiteImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		name    string
		want    Action
		wantErr bool
	}{
		{"camera_forward", CameraForward, false},
		{" Quit ", Quit, false},
		{"none", ActionNone, false},
		{"toggle_tile_grid", ToggleTileGrid, false},
		{"fly", ActionNone, true},
	}
	for _, tt := range tests {
		got, err := ParseAction(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAction(%q) error = %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAction(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}

	for a := range actionNames {
		got, err := ParseAction(a.String())
		if err != nil || got != a {
			t.Errorf("round trip of %v gave %v, %v", a, got, err)
		}
	}
}

func TestBindings(t *testing.T) {
	b, err := DefaultBindings().Merge(map[string]string{
		"Space": "screenshot",
		"W":     "none",
		"F1":    "quit",
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	tests := []struct {
		key  string
		want Action
		ok   bool
	}{
		{"space", Screenshot, true},
		{"W", ActionNone, false},
		{"f1", Quit, true},
		{"Escape", Quit, true},
		{"Left", CameraYawLeft, true},
		{"F7", ActionNone, false},
	}
	for _, tt := range tests {
		got, ok := b.Lookup(tt.key)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Lookup(%q) = %v, %v; want %v, %v", tt.key, got, ok, tt.want, tt.ok)
		}
	}

	if _, ok := DefaultBindings().Lookup("w"); !ok {
		t.Error("Merge modified the receiver")
	}
	if _, err := DefaultBindings().Merge(map[string]string{"x": "jump"}); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("expected ErrUnknownAction, got %v", err)
	}
}

func TestControllerCamera(t *testing.T) {
	c, s, _, p := newTestController(t)
	start := s.Camera().Position

	if err := c.Key("w"); err != nil {
		t.Fatal(err)
	}
	if got := s.Camera().Position; !near(got.Z, start.Z-0.25) {
		t.Errorf("expected camera moved forward to z=%v, got %v", start.Z-0.25, got)
	}
	if err := c.Apply(CameraYawRight); err != nil {
		t.Fatal(err)
	}
	if f := s.Camera().Forward(); f.X <= 0 {
		t.Errorf("expected yaw right to turn towards +X, forward %v", f)
	}
	if p.frames != 2 {
		t.Errorf("expected one frame per action, got %d", p.frames)
	}
}

func TestControllerModel(t *testing.T) {
	c, s, _, p := newTestController(t)

	// Without a current model the action is skipped, not fatal.
	if err := c.Apply(ModelRight); err != nil {
		t.Fatalf("expected skipped action, got %v", err)
	}
	if p.frames != 0 {
		t.Errorf("skipped action rendered %d frames", p.frames)
	}

	if err := c.Apply(NextModel); err != nil {
		t.Fatal(err)
	}
	m, err := s.Current()
	if err != nil || m.Kind != scene.KindMesh {
		t.Fatalf("expected the cube to be current, got %v %v", m, err)
	}

	steps := []Action{ModelRight, ModelUp, ModelFar, ModelGrow}
	for _, a := range steps {
		if err := c.Apply(a); err != nil {
			t.Fatalf("%v: %v", a, err)
		}
	}
	tr := m.Transform
	if !near(tr.Position.X, 0.25) || !near(tr.Position.Y, 0.25) || !near(tr.Position.Z, -0.25) {
		t.Errorf("unexpected position %v", tr.Position)
	}
	if !near(tr.Scale.X, 1.1) {
		t.Errorf("unexpected scale %v", tr.Scale)
	}

	if err := c.Apply(ModelYawLeft); err != nil {
		t.Fatal(err)
	}
	if m.Transform.Rotation == math.QuatIdentity() {
		t.Error("expected a rotation")
	}

	if err := c.Apply(RemoveModel); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 {
		t.Errorf("expected only the ambient light left, got %d", s.Len())
	}
	if err := c.Apply(NextModel); err != nil {
		t.Errorf("expected NextModel on an empty scene to be skipped, got %v", err)
	}
}

func TestControllerTexture(t *testing.T) {
	c, s, _, _ := newTestController(t)
	if err := c.Apply(NextModel); err != nil {
		t.Fatal(err)
	}

	// No texture bound: skipped.
	if err := c.Apply(ToggleTexture); err != nil {
		t.Fatalf("expected skipped action, got %v", err)
	}
	m, _ := s.Current()
	if m.Material.Textured {
		t.Fatal("textured mode enabled without a texture")
	}

	if err := s.SetTexture(texture.New("white", newWhiteImage())); err != nil {
		t.Fatal(err)
	}
	if err := c.Apply(ToggleTexture); err != nil {
		t.Fatal(err)
	}
	if m.Material.Textured || m.Material.Color != scene.DefaultMaterial().Color {
		t.Errorf("expected flat default color, got textured=%v color=%v", m.Material.Textured, m.Material.Color)
	}
	if err := c.Apply(ToggleTexture); err != nil {
		t.Fatal(err)
	}
	if !m.Material.Textured {
		t.Error("expected textured mode back on")
	}
}

func TestControllerLights(t *testing.T) {
	c, s, _, _ := newTestController(t)

	if err := c.Apply(AmbientDown); err != nil {
		t.Fatal(err)
	}
	if got := c.ambient(); !near(got, 0.95) {
		t.Errorf("expected ambient 0.95, got %v", got)
	}

	id, err := s.AddLight(lighting.Light{
		Kind:      lighting.Point,
		Color:     math.Vec3{X: 1, Y: 1, Z: 1},
		Intensity: 0.5,
		Position:  math.Vec3{Y: 2},
	}, true)
	if err != nil {
		t.Fatal(err)
	}

	// Current model is none yet: skipped.
	if err := c.Apply(IntensityUp); err != nil {
		t.Fatal(err)
	}
	if err := s.SetCurrentModel(id); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		if err := c.Apply(IntensityDown); err != nil {
			t.Fatal(err)
		}
	}
	light, _ := s.Model(id)
	if light.Intensity != 0 {
		t.Errorf("expected intensity clamped at 0, got %v", light.Intensity)
	}

	// Intensity on a mesh is skipped.
	if err := c.Apply(NextModel); err != nil {
		t.Fatal(err)
	}
	if err := c.Apply(IntensityUp); err != nil {
		t.Errorf("expected skipped action, got %v", err)
	}
}

func TestControllerNextCamera(t *testing.T) {
	c, s, _, _ := newTestController(t)
	if err := c.Apply(NextCamera); err != nil {
		t.Fatal(err)
	}
	if s.CurrentCameraName() != scene.DefaultCamera {
		t.Errorf("single camera should stay current, got %q", s.CurrentCameraName())
	}

	side := *s.Camera()
	side.Name = "side"
	s.AddCamera(&side)
	if err := c.Apply(NextCamera); err != nil {
		t.Fatal(err)
	}
	if s.CurrentCameraName() != "side" {
		t.Errorf("expected side camera, got %q", s.CurrentCameraName())
	}
	if err := c.Apply(NextCamera); err != nil {
		t.Fatal(err)
	}
	if s.CurrentCameraName() != scene.DefaultCamera {
		t.Errorf("expected wrap to %q, got %q", scene.DefaultCamera, s.CurrentCameraName())
	}
}

func TestControllerClick(t *testing.T) {
	c, s, o, p := newTestController(t)
	o.ShowSelection = true

	hit, err := c.Click(32, 32)
	if err != nil || !hit {
		t.Fatalf("expected a hit, got %v %v", hit, err)
	}
	m, err := s.Current()
	if err != nil || m.Kind != scene.KindMesh {
		t.Fatalf("expected the cube to be current, got %v", err)
	}
	if p.frames != 1 {
		t.Errorf("expected one redraw after a hit, got %d", p.frames)
	}

	hit, err = c.Click(0, 0)
	if err != nil || hit {
		t.Errorf("expected a miss, got %v %v", hit, err)
	}
	if p.frames != 1 {
		t.Errorf("a miss should not redraw, got %d frames", p.frames)
	}
}

func TestOverlay(t *testing.T) {
	c, s, o, _ := newTestController(t)
	fb := s.Framebuffer()

	countColor := func(col [4]uint8) int {
		n := 0
		pix := fb.Pix()
		for i := 0; i < len(pix); i += 4 {
			if pix[i] == col[0] && pix[i+1] == col[1] && pix[i+2] == col[2] {
				n++
			}
		}
		return n
	}
	sel := o.SelectionColor
	grid := o.GridColor

	if err := c.Apply(NextModel); err != nil {
		t.Fatal(err)
	}
	if n := countColor([4]uint8{sel.R, sel.G, sel.B}); n != 0 {
		t.Errorf("selection drawn while hidden: %d pixels", n)
	}

	if err := c.Apply(ToggleSelection); err != nil {
		t.Fatal(err)
	}
	if n := countColor([4]uint8{sel.R, sel.G, sel.B}); n == 0 {
		t.Error("expected selection box pixels")
	}

	if err := c.Apply(ToggleTileGrid); err != nil {
		t.Fatal(err)
	}
	if got := fb.At(16, 5); got != grid {
		t.Errorf("expected grid line at x=16, got %v", got)
	}
}

func TestControllerScreenshotAndQuit(t *testing.T) {
	dir := t.TempDir()
	c, s, o, _ := newTestController(t)
	c = NewController(s, o, debug.NewScreenshotCapture(dir, "shot"), nil, DefaultSettings())

	if _, err := s.Render(); err != nil {
		t.Fatal(err)
	}
	if err := c.Key("F12"); err != nil {
		t.Fatalf("screenshot failed: %v", err)
	}
	files, err := os.ReadDir(dir)
	if err != nil || len(files) != 1 || filepath.Ext(files[0].Name()) != ".png" {
		t.Errorf("expected one png in %s, got %v %v", dir, files, err)
	}

	if err := c.Key("escape"); !errors.Is(err, ErrQuit) {
		t.Errorf("expected ErrQuit, got %v", err)
	}
	if err := c.Key("F7"); err != nil {
		t.Errorf("unbound key returned %v", err)
	}
}

func TestControllerBatch(t *testing.T) {
	c, s, _, p := newTestController(t)
	start := s.Camera().Position

	err := c.Batch(func() error {
		for i := 0; i < 4; i++ {
			if err := c.Key("d"); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.frames != 1 {
		t.Errorf("expected a single frame for the batch, got %d", p.frames)
	}
	if got := s.Camera().Position; !near(got.X, start.X+1) {
		t.Errorf("expected camera moved right by 1, got %v", got)
	}
}
