package material

import (
	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	Albedo core.Color // Base color/reflectance
}

// NewLambertian creates a new lambertian material
func NewLambertian(albedo core.Color) *Lambertian {
	return &Lambertian{Albedo: albedo}
}

// Scatter implements the Material interface for lambertian scattering.
// It never absorbs.
func (l *Lambertian) Scatter(rayIn core.Ray, hit HitRecord, random core.Random) (ScatterResult, bool) {
	scatterDirection := hit.Normal.Add(core.RandomInUnitSphere(random))

	// Catch degenerate scatter direction
	if scatterDirection.NearZero() {
		scatterDirection = hit.Normal
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, scatterDirection),
		Attenuation: l.Albedo,
	}, true
}
