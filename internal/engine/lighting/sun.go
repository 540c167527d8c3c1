package lighting

import (
	gomath "math"

	"github.com/Faultbox/softrender/pkg/math"
)

// SunDirection converts longitude/latitude angles in degrees to the direction
// a directional light travels. Longitude is rotation around Y, latitude is
// elevation of the sun above the horizon; the returned vector points from
// the sun toward the scene.
func SunDirection(longitude, latitude float32) math.Vec3 {
	lonRad := float64(longitude) * gomath.Pi / 180.0
	latRad := float64(latitude) * gomath.Pi / 180.0

	// Spherical to Cartesian, toward the sun
	x := float32(gomath.Cos(latRad) * gomath.Sin(lonRad))
	y := float32(gomath.Sin(latRad))
	z := float32(gomath.Cos(latRad) * gomath.Cos(lonRad))

	return math.Vec3{X: -x, Y: -y, Z: -z}
}
