package scene

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	gomath "math"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/softrender/internal/engine/framebuffer"
	"github.com/Faultbox/softrender/internal/engine/lighting"
	"github.com/Faultbox/softrender/internal/engine/mesh"
	"github.com/Faultbox/softrender/internal/engine/texture"
	"github.com/Faultbox/softrender/internal/logger"
	"github.com/Faultbox/softrender/pkg/math"
)

type countingPresenter struct {
	frames int
	last   []byte
}

func (p *countingPresenter) Present(fb *framebuffer.Framebuffer) error {
	p.frames++
	p.last = append(p.last[:0], fb.Pix()...)
	return nil
}

type fakeLoader struct {
	mesh *mesh.Mesh
	mat  Material
	err  error
}

func (l fakeLoader) LoadModel(string) (*mesh.Mesh, Material, error) {
	return l.mesh, l.mat, l.err
}

var red = math.Vec3{X: 1}

// newTestScene builds a 64x64 scene lit by a single full-strength ambient
// light, with the default camera at (0,0,5) looking down -Z.
func newTestScene(t *testing.T, mutate func(*Options)) (*Scene, *countingPresenter) {
	t.Helper()
	opts := DefaultOptions()
	opts.Width, opts.Height = 64, 64
	opts.Lighting = lighting.AmbientOnly{}
	opts.AmbientIntensity = 1
	if mutate != nil {
		mutate(&opts)
	}
	p := &countingPresenter{}
	s, err := New(opts, p)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s, p
}

func addRedCube(t *testing.T, s *Scene, pos math.Vec3) ID {
	t.Helper()
	tr := Identity()
	tr.Position = pos
	mat := DefaultMaterial()
	mat.Color = red
	id, err := s.AddMesh(mesh.Cube(1), mat, tr)
	if err != nil {
		t.Fatalf("AddMesh failed: %v", err)
	}
	return id
}

func TestNew(t *testing.T) {
	s, p := newTestScene(t, nil)

	if s.Len() != 1 {
		t.Fatalf("expected only the ambient light, got %d models", s.Len())
	}
	if m := s.Models()[0]; m.Kind != KindAmbientLight || m.ID != 1 {
		t.Errorf("unexpected initial model: kind=%v id=%d", m.Kind, m.ID)
	}
	if _, err := s.Current(); !errors.Is(err, ErrNoCurrentModel) {
		t.Errorf("expected ErrNoCurrentModel, got %v", err)
	}
	if s.Camera().Name != DefaultCamera {
		t.Errorf("expected default camera, got %q", s.Camera().Name)
	}
	if p.frames != 0 {
		t.Errorf("expected no frame before the first change, got %d", p.frames)
	}

	if _, err := New(Options{Width: 0, Height: 10}, nil); !errors.Is(err, framebuffer.ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}
}

func TestRender_FlatCube(t *testing.T) {
	s, p := newTestScene(t, func(o *Options) {
		o.ClearColor = color.RGBA{R: 1, G: 2, B: 3, A: 255}
	})
	addRedCube(t, s, math.Vec3{})

	if p.frames != 1 {
		t.Fatalf("expected one frame after AddMesh, got %d", p.frames)
	}
	fb := s.Framebuffer()
	if got := fb.At(32, 32); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("center pixel = %v, want opaque red", got)
	}
	if got := fb.At(0, 0); got != (color.RGBA{R: 1, G: 2, B: 3, A: 255}) {
		t.Errorf("corner pixel = %v, want clear color", got)
	}

	st := s.Stats()
	if st.Submitted != 12 || st.Culled != 10 || st.Drawn != 2 {
		t.Errorf("unexpected stats: %+v", st.Stats)
	}
	if st.Models != 1 || st.Tiles != 1 {
		t.Errorf("expected one model in one tile, got models=%d tiles=%d", st.Models, st.Tiles)
	}
	if st.Shaded == 0 || st.Shaded > st.Fragments {
		t.Errorf("shaded %d of %d fragments", st.Shaded, st.Fragments)
	}
}

func TestRender_TilesMatchSequential(t *testing.T) {
	build := func(workers int) (*Scene, *countingPresenter) {
		s, p := newTestScene(t, func(o *Options) {
			o.Workers = workers
			o.TileSize = 16
			o.Lighting = lighting.Phong{}
			o.AmbientIntensity = 0.3
		})
		err := s.Batch(func() error {
			addRedCube(t, s, math.Vec3{X: -0.4})
			addRedCube(t, s, math.Vec3{X: 0.5, Y: 0.3, Z: -1})
			_, err := s.AddLight(lighting.Light{
				Kind:      lighting.Point,
				Color:     math.Vec3{X: 1, Y: 1, Z: 1},
				Intensity: 0.8,
				Position:  math.Vec3{X: 2, Y: 2, Z: 3},
			}, true)
			return err
		})
		if err != nil {
			t.Fatalf("Batch failed: %v", err)
		}
		return s, p
	}

	seq, seqP := build(0)
	par, parP := build(4)

	if !bytes.Equal(seqP.last, parP.last) {
		t.Error("tiled frame differs from the sequential frame")
	}
	if seq.Stats().Shaded != par.Stats().Shaded {
		t.Errorf("shaded counts differ: %d vs %d", seq.Stats().Shaded, par.Stats().Shaded)
	}
	if par.Stats().Tiles != 16 {
		t.Errorf("expected 16 tiles, got %d", par.Stats().Tiles)
	}
}

func TestBatch(t *testing.T) {
	s, p := newTestScene(t, nil)

	err := s.Batch(func() error {
		id := addRedCube(t, s, math.Vec3{})
		if err := s.SetCurrentModel(id); err != nil {
			return err
		}
		if err := s.Shift(math.Vec3{X: 0.1}); err != nil {
			return err
		}
		return s.Batch(func() error {
			return s.SetSpecular(16)
		})
	})
	if err != nil {
		t.Fatalf("Batch failed: %v", err)
	}
	if p.frames != 1 {
		t.Errorf("expected a single frame for the batch, got %d", p.frames)
	}

	// A batch that changes nothing does not redraw.
	if err := s.Batch(func() error { return nil }); err != nil {
		t.Fatal(err)
	}
	if p.frames != 1 {
		t.Errorf("expected no redraw for an empty batch, got %d frames", p.frames)
	}

	// Each mutator outside a batch redraws.
	if err := s.Scale(math.Vec3{X: 2, Y: 2, Z: 2}); err != nil {
		t.Fatal(err)
	}
	if err := s.MoveCamera(0, 0, 1); err != nil {
		t.Fatal(err)
	}
	if p.frames != 3 {
		t.Errorf("expected 3 frames, got %d", p.frames)
	}
}

func TestUpload(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	defer logger.Replace(zap.New(core))()

	s, p := newTestScene(t, nil)

	bad := fakeLoader{err: errors.New("unsupported extension")}
	if _, err := s.Upload(bad, "model.stl"); err == nil {
		t.Fatal("expected upload error")
	}
	if s.Len() != 1 || p.frames != 0 {
		t.Errorf("failed upload changed the scene: len=%d frames=%d", s.Len(), p.frames)
	}

	empty := fakeLoader{mesh: mesh.New("empty", nil)}
	if _, err := s.Upload(empty, "empty.obj"); !errors.Is(err, ErrEmptyMesh) {
		t.Errorf("expected ErrEmptyMesh, got %v", err)
	}

	good := fakeLoader{mesh: mesh.Cube(1), mat: DefaultMaterial()}
	id, err := s.Upload(good, "cube.obj")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if id != 2 {
		t.Errorf("expected id 2 after failed uploads, got %d", id)
	}

	if n := logs.FilterMessage("model upload rejected").Len(); n != 1 {
		t.Errorf("expected 1 rejected upload warning, got %d", n)
	}
	if n := logs.FilterMessage("model added").Len(); n != 1 {
		t.Errorf("expected 1 model added entry, got %d", n)
	}
}

func TestMutatorErrors(t *testing.T) {
	s, _ := newTestScene(t, nil)
	ambient := s.Models()[0].ID

	if err := s.SetSpecular(4); !errors.Is(err, ErrNoCurrentModel) {
		t.Errorf("SetSpecular without current: got %v", err)
	}
	if err := s.SetCurrentModel(999); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("SetCurrentModel(999): got %v", err)
	}
	if err := s.SetCurrentCamera("side"); !errors.Is(err, ErrUnknownCamera) {
		t.Errorf("SetCurrentCamera: got %v", err)
	}

	if err := s.SetCurrentModel(ambient); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		op   func() error
		want error
	}{
		{"specular on light", func() error { return s.SetSpecular(1) }, ErrNotAMesh},
		{"reflective on light", func() error { return s.SetReflective(1) }, ErrNotAMesh},
		{"refractive on light", func() error { return s.SetRefractive(1) }, ErrNotAMesh},
		{"textured on light", func() error { return s.SetTextured(false, red) }, ErrNotAMesh},
		{"nil texture", func() error { return s.SetTexture(nil) }, ErrNoTexture},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.op(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	id := addRedCube(t, s, math.Vec3{})
	if err := s.SetCurrentModel(id); err != nil {
		t.Fatal(err)
	}
	if err := s.SetIntensity(1); !errors.Is(err, ErrNotALight) {
		t.Errorf("SetIntensity on mesh: got %v", err)
	}
	if err := s.SetTextured(true, red); !errors.Is(err, ErrNoTexture) {
		t.Errorf("SetTextured without texture: got %v", err)
	}
}

func TestMaterialSetters(t *testing.T) {
	s, _ := newTestScene(t, nil)
	id := addRedCube(t, s, math.Vec3{})
	if err := s.SetCurrentModel(id); err != nil {
		t.Fatal(err)
	}

	steps := []func() error{
		func() error { return s.SetSpecular(32) },
		func() error { return s.SetReflective(0.25) },
		func() error { return s.SetRefractive(1.5) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			t.Fatal(err)
		}
	}
	m, _ := s.Model(id)
	if m.Material.Specular != 32 || m.Material.Reflective != 0.25 || m.Material.Refractive != 1.5 {
		t.Errorf("unexpected material: %+v", m.Material)
	}

	tex := texture.New("green", solidImage(2, 2, color.RGBA{G: 255, A: 255}))
	if err := s.SetTexture(tex); err != nil {
		t.Fatalf("SetTexture failed: %v", err)
	}
	if !m.Material.Textured || m.Material.Color != (math.Vec3{X: 1, Y: 1, Z: 1}) {
		t.Errorf("expected textured white material, got %+v", m.Material)
	}
	if got := s.Framebuffer().At(32, 32); got.G != 255 || got.R != 0 {
		t.Errorf("center pixel = %v, want texture green", got)
	}

	if err := s.SetTextured(false, math.Vec3{Z: 1}); err != nil {
		t.Fatal(err)
	}
	if got := s.Framebuffer().At(32, 32); got.B != 255 || got.G != 0 {
		t.Errorf("center pixel = %v, want flat blue", got)
	}
}

func TestAmbientIntensity(t *testing.T) {
	s, _ := newTestScene(t, func(o *Options) { o.Lighting = lighting.Phong{} })
	addRedCube(t, s, math.Vec3{})

	if err := s.SetAmbientIntensity(0); err != nil {
		t.Fatal(err)
	}
	if got := s.Framebuffer().At(32, 32); got.R != 0 {
		t.Errorf("center pixel = %v, want black without light", got)
	}

	if err := s.SetAmbientIntensity(0.5); err != nil {
		t.Fatal(err)
	}
	if got := s.Framebuffer().At(32, 32); got.R != 128 {
		t.Errorf("center pixel = %v, want half red", got)
	}
}

func TestLights(t *testing.T) {
	s, _ := newTestScene(t, func(o *Options) {
		o.Lighting = lighting.Lambert{}
		o.AmbientIntensity = 0
	})
	addRedCube(t, s, math.Vec3{})

	pid, err := s.AddLight(lighting.Light{
		Kind:      lighting.Point,
		Color:     math.Vec3{X: 1, Y: 1, Z: 1},
		Intensity: 1,
		Position:  math.Vec3{Z: 3},
	}, false)
	if err != nil {
		t.Fatalf("AddLight failed: %v", err)
	}
	if got := s.Framebuffer().At(32, 32); got.R < 200 || got.G != 0 {
		t.Errorf("center pixel = %v, want lit red", got)
	}

	if err := s.SetCurrentModel(pid); err != nil {
		t.Fatal(err)
	}
	if err := s.SetIntensity(0); err != nil {
		t.Fatal(err)
	}
	if got := s.Framebuffer().At(32, 32); got.R != 0 {
		t.Errorf("center pixel = %v, want black with the light off", got)
	}

	// Moving a point light moves its position.
	if err := s.Shift(math.Vec3{X: 1}); err != nil {
		t.Fatal(err)
	}
	m, _ := s.Model(pid)
	if got := m.Light().Position; got != (math.Vec3{X: 1, Z: 3}) {
		t.Errorf("point light position = %v", got)
	}

	did, err := s.AddLight(lighting.Light{
		Kind:      lighting.Directional,
		Color:     math.Vec3{X: 1, Y: 1, Z: 1},
		Intensity: 1,
		Direction: math.Vec3{X: 1},
	}, true)
	if err != nil {
		t.Fatal(err)
	}
	d, _ := s.Model(did)
	if dir := d.Light().Direction; dir.Sub(math.Vec3{X: 1}).Length() > 1e-4 {
		t.Errorf("directional light direction = %v, want +X", dir)
	}
	if d.Mesh == nil {
		t.Error("expected an arrow gizmo")
	}

	// Rotating a directional light turns its direction.
	if err := s.SetCurrentModel(did); err != nil {
		t.Fatal(err)
	}
	if err := s.Rotate(math.Vec3{Y: 1}, gomath.Pi/2); err != nil {
		t.Fatal(err)
	}
	if dir := d.Light().Direction; dir.Sub(math.Vec3{Z: -1}).Length() > 1e-4 {
		t.Errorf("rotated direction = %v, want -Z", dir)
	}
}

func TestLightGizmo(t *testing.T) {
	s, _ := newTestScene(t, nil)
	_, err := s.AddLight(lighting.Light{
		Kind:      lighting.Point,
		Color:     math.Vec3{Y: 1},
		Intensity: 1,
		Position:  math.Vec3{X: 1.5},
	}, true)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Framebuffer().At(48, 32); got != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("gizmo pixel = %v, want unlit green", got)
	}
	// The ambient light has no geometry.
	if s.Stats().Models != 1 {
		t.Errorf("expected only the gizmo to be drawn, got %d models", s.Stats().Models)
	}
}

func TestRemove(t *testing.T) {
	s, p := newTestScene(t, nil)
	id := addRedCube(t, s, math.Vec3{})
	if err := s.SetCurrentModel(id); err != nil {
		t.Fatal(err)
	}

	if err := s.RemoveCurrent(); err != nil {
		t.Fatalf("RemoveCurrent failed: %v", err)
	}
	if p.frames != 2 {
		t.Errorf("expected redraw after removal, got %d frames", p.frames)
	}
	if _, ok := s.Model(id); ok {
		t.Error("model still present")
	}
	if _, err := s.Current(); !errors.Is(err, ErrNoCurrentModel) {
		t.Errorf("expected no current model, got %v", err)
	}
	if got := s.Framebuffer().At(32, 32); got.R != 0 {
		t.Errorf("center pixel = %v, want clear color", got)
	}
	if err := s.Remove(id); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("expected ErrUnknownModel, got %v", err)
	}
	if err := s.RemoveCurrent(); !errors.Is(err, ErrNoCurrentModel) {
		t.Errorf("expected ErrNoCurrentModel, got %v", err)
	}
}

func TestPick(t *testing.T) {
	s, _ := newTestScene(t, nil)
	far := addRedCube(t, s, math.Vec3{})
	near := addRedCube(t, s, math.Vec3{Z: 2})
	side := addRedCube(t, s, math.Vec3{X: -2})

	tests := []struct {
		name   string
		x, y   int
		want   ID
		wantOK bool
	}{
		{"nearest of two", 32, 32, near, true},
		{"side cube", 9, 32, side, true},
		{"empty corner", 0, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.Pick(tt.x, tt.y)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Pick(%d,%d) = %d,%v, want %d,%v", tt.x, tt.y, got, ok, tt.want, tt.wantOK)
			}
		})
	}

	if err := s.Remove(near); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Pick(32, 32); got != far {
		t.Errorf("after removal picked %d, want %d", got, far)
	}
	if m, err := s.Current(); err != nil || m.ID != far {
		t.Errorf("expected pick to set current model")
	}
}

func TestCameras(t *testing.T) {
	s, p := newTestScene(t, nil)
	addRedCube(t, s, math.Vec3{})

	side := *s.Camera()
	side.Name = "side"
	side.Position = math.Vec3{X: 5}
	side.LookAt(math.Vec3{})
	s.AddCamera(&side)

	if s.Camera().Name != DefaultCamera {
		t.Error("AddCamera changed the current camera")
	}
	if err := s.SetCurrentCamera("side"); err != nil {
		t.Fatal(err)
	}
	if p.frames != 2 {
		t.Errorf("expected redraw on camera switch, got %d frames", p.frames)
	}
	// The +X face is now the only front face.
	if st := s.Stats(); st.Drawn != 2 {
		t.Errorf("expected 2 drawn triangles from the side, got %d", st.Drawn)
	}

	if err := s.Resize(32, 16); err != nil {
		t.Fatal(err)
	}
	if w, h := s.Size(); w != 32 || h != 16 {
		t.Errorf("Size() = %dx%d", w, h)
	}
	if s.Camera().Aspect != 2 {
		t.Errorf("expected aspect 2 after resize, got %v", s.Camera().Aspect)
	}
}

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
