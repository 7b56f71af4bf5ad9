package scene

import (
	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

// NewDefaultScene creates a small scene with one sphere of each material
// resting on a large ground sphere
func NewDefaultScene() *Scene {
	cameraConfig := geometry.CameraConfig{
		LookFrom:    core.NewVec3(-2, 2, 1),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        20,
		AspectRatio: 16.0 / 9.0,
		Aperture:    0.1,
		// FocusDistance 0 focuses on LookAt
	}

	sampling := DefaultSamplingConfig()
	sampling.Width = 400

	s := newScene("default", cameraConfig, sampling)

	ground := material.NewLambertian(core.NewColor(0.8, 0.8, 0.0))
	center := material.NewLambertian(core.NewColor(0.1, 0.2, 0.5))
	glass := material.NewDielectric(1.5)
	bubble := material.NewDielectric(1.0 / 1.5)
	gold := material.NewMetal(core.NewColor(0.8, 0.6, 0.2), 0.3)

	s.AddSphere(core.NewVec3(0, -100.5, -1), 100, ground)
	s.AddSphere(core.NewVec3(0, 0, -1), 0.5, center)
	// Hollow glass: an air bubble inside a glass sphere
	s.AddSphere(core.NewVec3(-1, 0, -1), 0.5, glass)
	s.AddSphere(core.NewVec3(-1, 0, -1), 0.4, bubble)
	s.AddSphere(core.NewVec3(1, 0, -1), 0.5, gold)

	return s
}

// NewMirrorsScene creates two perfect mirrors facing each other with the
// camera between them, the worst case for the bounce limit
func NewMirrorsScene() *Scene {
	cameraConfig := geometry.CameraConfig{
		LookFrom:    core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        60,
		AspectRatio: 1,
	}

	sampling := DefaultSamplingConfig()
	sampling.Width = 200
	sampling.SamplesPerPixel = 16

	s := newScene("mirrors", cameraConfig, sampling)

	mirror := material.NewMetal(core.NewColor(0.95, 0.95, 0.95), 0)
	s.AddSphere(core.NewVec3(0, 0, -1001), 1000, mirror)
	s.AddSphere(core.NewVec3(0, 0, 1001), 1000, mirror)
	s.AddSphere(core.NewVec3(0, 0, -0.6), 0.2, material.NewLambertian(core.NewColor(0.8, 0.3, 0.3)))

	return s
}
