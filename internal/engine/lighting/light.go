// Package lighting provides light sources and the lighting models used by the pixel shaders.
package lighting

import (
	"github.com/Faultbox/softrender/pkg/math"
)

// Kind identifies a light variant.
type Kind int

const (
	Ambient Kind = iota
	Point
	Directional
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case Ambient:
		return "ambient"
	case Point:
		return "point"
	case Directional:
		return "directional"
	default:
		return "unknown"
	}
}

// Light is a light source in world space.
type Light struct {
	Kind      Kind
	Color     math.Vec3 // RGB, 0-1 range
	Intensity float32

	// Position is used by point lights.
	Position math.Vec3
	// Direction is the direction light travels, used by directional lights.
	Direction math.Vec3
}

// Radiance returns Color scaled by Intensity.
func (l Light) Radiance() math.Vec3 {
	return l.Color.Scale(l.Intensity)
}

// ToLight returns the unit vector from p toward the light, and false for
// ambient lights or a point light sitting on p.
func (l Light) ToLight(p math.Vec3) (math.Vec3, bool) {
	switch l.Kind {
	case Point:
		d := l.Position.Sub(p)
		if d.Dot(d) == 0 {
			return math.Vec3{}, false
		}
		return d.Normalize(), true
	case Directional:
		if l.Direction.Dot(l.Direction) == 0 {
			return math.Vec3{}, false
		}
		return l.Direction.Negate().Normalize(), true
	}
	return math.Vec3{}, false
}

// Set is the per-frame light list handed to an Evaluator. Ambient lights are
// folded into a single term when added.
type Set struct {
	Ambient math.Vec3
	Lights  []Light
}

// NewSet creates an empty light set.
func NewSet() *Set {
	return &Set{}
}

// Clear removes all lights.
func (s *Set) Clear() {
	s.Ambient = math.Vec3{}
	s.Lights = s.Lights[:0]
}

// Add adds a light to the set.
func (s *Set) Add(l Light) {
	if l.Kind == Ambient {
		s.Ambient = s.Ambient.Add(l.Radiance())
		return
	}
	s.Lights = append(s.Lights, l)
}

// Len returns the number of non-ambient lights.
func (s *Set) Len() int {
	return len(s.Lights)
}
