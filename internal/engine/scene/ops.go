package scene

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/softrender/internal/engine/lighting"
	"github.com/Faultbox/softrender/internal/engine/mesh"
	"github.com/Faultbox/softrender/internal/engine/texture"
	"github.com/Faultbox/softrender/pkg/math"
)

// Gizmo sizes in world units.
const (
	pointGizmoRadius = 0.1
	arrowGizmoLength = 0.5
)

// Loader reads a mesh and its material from a file.
type Loader interface {
	LoadModel(path string) (*mesh.Mesh, Material, error)
}

// Upload loads a mesh through l and adds it. On failure the scene is left
// unchanged and no id is consumed.
func (s *Scene) Upload(l Loader, path string) (ID, error) {
	m, mat, err := l.LoadModel(path)
	if err != nil {
		s.log.Warn("model upload rejected", zap.String("path", path), zap.Error(err))
		return 0, fmt.Errorf("uploading %s: %w", path, err)
	}
	return s.AddMesh(m, mat, Identity())
}

// AddMesh adds a mesh model and redraws.
func (s *Scene) AddMesh(m *mesh.Mesh, mat Material, t Transform) (ID, error) {
	if m == nil || len(m.Faces) == 0 {
		return 0, ErrEmptyMesh
	}
	id := s.insert(&Model{
		Name:      m.Name,
		Kind:      KindMesh,
		Mesh:      m,
		Transform: t,
		Material:  mat,
	})
	s.log.Info("model added",
		zap.Uint32("id", uint32(id)),
		zap.String("name", m.Name),
		zap.Int("triangles", m.TriangleCount()))
	return id, s.changed()
}

// AddLight adds a light and redraws. Point lights take l.Position as their
// model position; directional lights take the rotation that turns -Z onto
// l.Direction. With gizmo set, point and directional lights get a small
// sphere or arrow drawn at the light.
func (s *Scene) AddLight(l lighting.Light, gizmo bool) (ID, error) {
	m := &Model{
		Kind:       kindOf(l.Kind),
		Transform:  Identity(),
		LightColor: l.Color,
		Intensity:  l.Intensity,
	}
	m.Name = m.Kind.String()

	switch m.Kind {
	case KindPointLight:
		m.Transform.Position = l.Position
		if gizmo {
			m.Mesh = mesh.Sphere(pointGizmoRadius, 12, 8)
		}
	case KindDirectionalLight:
		if l.Direction.Dot(l.Direction) > 0 {
			m.Transform.Rotation = math.QuatFromTo(lightDirection, l.Direction)
		}
		m.Transform.Position = l.Position
		if gizmo {
			m.Mesh = mesh.Arrow(arrowGizmoLength)
		}
	}

	id := s.insert(m)
	s.log.Info("light added",
		zap.Uint32("id", uint32(id)),
		zap.Stringer("kind", m.Kind),
		zap.Float32("intensity", m.Intensity))
	return id, s.changed()
}

// Remove deletes a model and redraws. Removing the current model leaves no
// current model.
func (s *Scene) Remove(id ID) error {
	if _, ok := s.models[id]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownModel, id)
	}
	delete(s.models, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.current == id {
		s.current = 0
	}
	s.log.Info("model removed", zap.Uint32("id", uint32(id)))
	return s.changed()
}

// RemoveCurrent deletes the current model and redraws.
func (s *Scene) RemoveCurrent() error {
	m, err := s.Current()
	if err != nil {
		return err
	}
	return s.Remove(m.ID)
}

// Shift moves the current model by delta in world space.
func (s *Scene) Shift(delta math.Vec3) error {
	return s.mutate(func(m *Model) error {
		m.Transform.Position = m.Transform.Position.Add(delta)
		return nil
	})
}

// Rotate turns the current model by angle radians around a world axis.
func (s *Scene) Rotate(axis math.Vec3, angle float32) error {
	return s.mutate(func(m *Model) error {
		q := math.QuatFromAxisAngle(axis.Normalize(), angle)
		m.Transform.Rotation = q.Mul(m.Transform.Rotation).Normalize()
		return nil
	})
}

// Scale multiplies the current model's scale per axis.
func (s *Scene) Scale(factor math.Vec3) error {
	return s.mutate(func(m *Model) error {
		m.Transform.Scale = m.Transform.Scale.Mul(factor)
		return nil
	})
}

// SetTransform replaces the current model's transform.
func (s *Scene) SetTransform(t Transform) error {
	return s.mutate(func(m *Model) error {
		m.Transform = t
		return nil
	})
}

// MoveCamera moves the current camera along its own right, up and forward
// axes and redraws.
func (s *Scene) MoveCamera(right, up, forward float32) error {
	s.Camera().Move(right, up, forward)
	return s.changed()
}

// ShiftCamera moves the current camera along the world axes and redraws.
func (s *Scene) ShiftCamera(delta math.Vec3) error {
	s.Camera().Shift(delta)
	return s.changed()
}

// RotateCamera turns the current camera by yaw and pitch radians and redraws.
func (s *Scene) RotateCamera(yaw, pitch float32) error {
	s.Camera().Rotate(yaw, pitch)
	return s.changed()
}

// SetColor sets the base color of the current mesh, or the color of the
// current light.
func (s *Scene) SetColor(c math.Vec3) error {
	return s.mutate(func(m *Model) error {
		if m.Kind.IsLight() {
			m.LightColor = c
		} else {
			m.Material.Color = c
		}
		return nil
	})
}

// SetSpecular sets the Phong exponent of the current mesh.
func (s *Scene) SetSpecular(v float32) error {
	return s.mutateMesh(func(mat *Material) { mat.Specular = v })
}

// SetReflective sets the reflectivity of the current mesh.
func (s *Scene) SetReflective(v float32) error {
	return s.mutateMesh(func(mat *Material) { mat.Reflective = v })
}

// SetRefractive sets the refraction index of the current mesh.
func (s *Scene) SetRefractive(v float32) error {
	return s.mutateMesh(func(mat *Material) { mat.Refractive = v })
}

// SetTexture binds tex to the current mesh and switches it to textured mode
// with a white base color.
func (s *Scene) SetTexture(tex *texture.Texture) error {
	if tex == nil {
		return ErrNoTexture
	}
	return s.mutateMesh(func(mat *Material) {
		mat.Texture = tex
		mat.Textured = true
		mat.Color = math.Vec3{X: 1, Y: 1, Z: 1}
	})
}

// SetTextured toggles textured mode on the current mesh and sets its base
// color. Enabling requires a bound texture.
func (s *Scene) SetTextured(on bool, c math.Vec3) error {
	return s.mutate(func(m *Model) error {
		if m.Kind != KindMesh {
			return ErrNotAMesh
		}
		if on && m.Material.Texture == nil {
			return ErrNoTexture
		}
		m.Material.Textured = on
		m.Material.Color = c
		return nil
	})
}

// SetIntensity sets the intensity of the current light.
func (s *Scene) SetIntensity(v float32) error {
	return s.mutate(func(m *Model) error {
		if !m.Kind.IsLight() {
			return ErrNotALight
		}
		m.Intensity = v
		return nil
	})
}

// SetAmbientIntensity sets the intensity of every ambient light and redraws.
func (s *Scene) SetAmbientIntensity(v float32) error {
	for _, id := range s.order {
		if m := s.models[id]; m.Kind == KindAmbientLight {
			m.Intensity = v
		}
	}
	return s.changed()
}

// mutate applies fn to the current model and redraws if fn succeeds.
func (s *Scene) mutate(fn func(m *Model) error) error {
	m, err := s.Current()
	if err != nil {
		return err
	}
	if err := fn(m); err != nil {
		return err
	}
	return s.changed()
}

func (s *Scene) mutateMesh(fn func(mat *Material)) error {
	return s.mutate(func(m *Model) error {
		if m.Kind != KindMesh {
			return ErrNotAMesh
		}
		fn(&m.Material)
		return nil
	})
}
