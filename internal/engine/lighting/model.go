package lighting

import (
	"errors"
	"fmt"
	gomath "math"
	"strings"

	"github.com/Faultbox/softrender/pkg/math"
)

// ErrUnknownModel is returned by Parse for an unrecognised lighting model name.
var ErrUnknownModel = errors.New("unknown lighting model")

// Surface describes the shaded point.
type Surface struct {
	Position math.Vec3
	Normal   math.Vec3 // unit length
	Eye      math.Vec3 // camera position
	// Shininess is the Phong exponent; 0 or less disables highlights.
	Shininess float32
}

// Evaluator aggregates the lights reaching a surface into an RGB multiplier
// for the base color. Results are not clamped.
type Evaluator interface {
	Name() string
	Evaluate(s Surface, lights *Set) math.Vec3
}

// Parse returns the evaluator for a config name: "ambient", "lambert" or "phong".
func Parse(name string) (Evaluator, error) {
	switch strings.ToLower(name) {
	case "ambient", "ambient_only":
		return AmbientOnly{}, nil
	case "lambert", "diffuse":
		return Lambert{}, nil
	case "phong", "":
		return Phong{}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownModel, name)
}

// AmbientOnly treats every light as ambient: each contributes its full
// radiance regardless of position or direction.
type AmbientOnly struct{}

// Name implements Evaluator.
func (AmbientOnly) Name() string { return "ambient" }

// Evaluate implements Evaluator.
func (AmbientOnly) Evaluate(_ Surface, lights *Set) math.Vec3 {
	sum := lights.Ambient
	for _, l := range lights.Lights {
		sum = sum.Add(l.Radiance())
	}
	return sum
}

// Lambert adds a diffuse term proportional to the cosine between the normal
// and the direction to each light.
type Lambert struct{}

// Name implements Evaluator.
func (Lambert) Name() string { return "lambert" }

// Evaluate implements Evaluator.
func (Lambert) Evaluate(s Surface, lights *Set) math.Vec3 {
	sum := lights.Ambient
	for _, l := range lights.Lights {
		if ndl, _, ok := diffuse(s, l); ok {
			sum = sum.Add(l.Radiance().Scale(ndl))
		}
	}
	return sum
}

// Phong is Lambert plus a specular highlight for surfaces with positive shininess.
// There is no distance falloff.
type Phong struct{}

// Name implements Evaluator.
func (Phong) Name() string { return "phong" }

// Evaluate implements Evaluator.
func (Phong) Evaluate(s Surface, lights *Set) math.Vec3 {
	sum := lights.Ambient
	var view math.Vec3
	if s.Shininess > 0 {
		view = s.Eye.Sub(s.Position).Normalize()
	}
	for _, l := range lights.Lights {
		ndl, toLight, ok := diffuse(s, l)
		if !ok {
			continue
		}
		rad := l.Radiance()
		sum = sum.Add(rad.Scale(ndl))

		if s.Shininess > 0 {
			// reflect toLight about the normal
			r := s.Normal.Scale(2 * ndl).Sub(toLight)
			if rdv := r.Dot(view); rdv > 0 {
				spec := float32(gomath.Pow(float64(rdv), float64(s.Shininess)))
				sum = sum.Add(rad.Scale(spec))
			}
		}
	}
	return sum
}

// diffuse returns N.L and L when the light faces the surface.
func diffuse(s Surface, l Light) (float32, math.Vec3, bool) {
	toLight, ok := l.ToLight(s.Position)
	if !ok {
		return 0, math.Vec3{}, false
	}
	ndl := s.Normal.Dot(toLight)
	if ndl <= 0 {
		return 0, math.Vec3{}, false
	}
	return ndl, toLight, true
}
