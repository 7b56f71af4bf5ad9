package integrator

import (
	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// SkyGradient is the background returned for rays that escape the scene.
// It blends vertically from Bottom (looking straight down) to Top (straight up).
type SkyGradient struct {
	Top    core.Color `json:"top"`
	Bottom core.Color `json:"bottom"`
}

// DefaultSky returns the white to sky-blue gradient
func DefaultSky() SkyGradient {
	return SkyGradient{
		Top:    core.NewColor(0.5, 0.7, 1.0),
		Bottom: core.NewColor(1.0, 1.0, 1.0),
	}
}

// Color returns the gradient color for the ray direction
func (g SkyGradient) Color(ray core.Ray) core.Color {
	unitDirection := ray.Direction.Normalize()

	// Map y from [-1,1] to [0,1]
	t := 0.5 * (unitDirection.Y + 1.0)

	return g.Bottom.Lerp(g.Top, t)
}
