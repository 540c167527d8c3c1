package scene

import (
	"github.com/Faultbox/softrender/pkg/geom"
)

// Pick casts a ray through the center of pixel (x, y) and makes the nearest
// model it hits current. Boxes are tested with the slab method; point lights
// are refined against their bounding sphere. Ambient lights cannot be picked.
func (s *Scene) Pick(x, y int) (ID, bool) {
	w, h := s.fb.Size()
	ray := s.Camera().ScreenRay(float32(x)+0.5, float32(y)+0.5, w, h)

	var (
		best   ID
		bestT  float32
		picked bool
	)
	for _, id := range s.order {
		m := s.models[id]
		box, ok := m.WorldBounds()
		if !ok {
			continue
		}
		tmin, tmax, hit := box.Intersect(ray)
		if !hit {
			continue
		}
		t := tmin
		if t < 0 {
			t = tmax
		}

		if m.Kind == KindPointLight {
			sphere := geom.Sphere{
				Center: box.Center(),
				Radius: box.Max().Sub(box.Center()).Length(),
			}
			st, ok := sphere.Intersect(ray)
			if !ok {
				continue
			}
			t = st
		}

		if !picked || t < bestT {
			best, bestT, picked = id, t, true
		}
	}

	if picked {
		s.current = best
	}
	return best, picked
}
