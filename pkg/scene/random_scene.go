package scene

import (
	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

// NewRandomScene creates the cover scene: a huge ground sphere, a field of
// small randomly placed spheres and three large feature spheres. The layout
// is drawn from random, so a fixed seed gives a fixed scene.
func NewRandomScene(random core.Random) *Scene {
	// FocusDistance is left at zero so the focal plane passes through LookAt
	cameraConfig := geometry.CameraConfig{
		LookFrom:    core.NewVec3(13, 2, 3),
		LookAt:      core.NewVec3(0, 0, 0),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        10,
		AspectRatio: 3.0 / 2.0,
		Aperture:    0.1,
	}

	s := newScene("random", cameraConfig, DefaultSamplingConfig())

	ground := material.NewLambertian(core.NewColor(0.5, 0.5, 0.5))
	s.AddSphere(core.NewVec3(0, -1000, 0), 1000, ground)

	// Glass is shared by every small glass sphere and the large one
	glass := material.NewDielectric(1.5)
	keepClear := core.NewVec3(4, 0.2, 0)

	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			center := core.NewVec3(
				float64(a)+0.9*random.Float64(),
				0.2,
				float64(b)+0.9*random.Float64(),
			)
			chooseMat := random.Float64()

			if center.Subtract(keepClear).Length() <= 0.9 {
				continue
			}

			switch {
			case chooseMat < 0.8:
				albedo := core.RandomVec3(random).MultiplyVec(core.RandomVec3(random))
				s.AddSphere(center, 0.2, material.NewLambertian(albedo))
			case chooseMat < 0.95:
				albedo := core.RandomVec3Range(random, 0.5, 1)
				fuzz := core.RandomRange(random, 0, 0.5)
				s.AddSphere(center, 0.2, material.NewMetal(albedo, fuzz))
			default:
				s.AddSphere(center, 0.2, glass)
			}
		}
	}

	s.AddSphere(core.NewVec3(0, 1, 0), 1.0, glass)
	s.AddSphere(core.NewVec3(-4, 1, 0), 1.0, material.NewLambertian(core.NewColor(0.4, 0.2, 0.1)))
	s.AddSphere(core.NewVec3(4, 1, 0), 1.0, material.NewMetal(core.NewColor(0.4, 0.2, 0.1), 0.0))

	return s
}
