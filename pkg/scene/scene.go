package scene

import (
	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/integrator"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name           string
	Camera         *geometry.Camera
	CameraConfig   geometry.CameraConfig
	World          *geometry.HittableList // Spheres in the scene
	Background     integrator.SkyGradient
	SamplingConfig SamplingConfig
}

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int `json:"width"`           // Image width
	Height          int `json:"height"`          // Image height, 0 = derived from the camera aspect ratio
	SamplesPerPixel int `json:"samplesPerPixel"` // Number of rays per pixel
	MaxDepth        int `json:"maxDepth"`        // Maximum ray bounce depth
}

// DefaultSamplingConfig returns the settings of the original cover render
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:           1200,
		SamplesPerPixel: 100,
		MaxDepth:        integrator.DefaultMaxDepth,
	}
}

// MergeSamplingConfig returns base with every non-zero field of override applied
func MergeSamplingConfig(base, override SamplingConfig) SamplingConfig {
	if override.Width > 0 {
		base.Width = override.Width
		// a new width invalidates a derived height
		base.Height = 0
	}
	if override.Height > 0 {
		base.Height = override.Height
	}
	if override.SamplesPerPixel > 0 {
		base.SamplesPerPixel = override.SamplesPerPixel
	}
	if override.MaxDepth > 0 {
		base.MaxDepth = override.MaxDepth
	}
	return base
}

// MergeCameraConfig returns base with every non-zero field of override applied
func MergeCameraConfig(base, override geometry.CameraConfig) geometry.CameraConfig {
	zero := core.Vec3{}
	if override.LookFrom != zero {
		base.LookFrom = override.LookFrom
	}
	if override.LookAt != zero {
		base.LookAt = override.LookAt
	}
	if override.Up != zero {
		base.Up = override.Up
	}
	if override.VFov > 0 {
		base.VFov = override.VFov
	}
	if override.AspectRatio > 0 {
		base.AspectRatio = override.AspectRatio
	}
	if override.Aperture > 0 {
		base.Aperture = override.Aperture
	}
	if override.FocusDistance > 0 {
		base.FocusDistance = override.FocusDistance
	}
	return base
}

// newScene assembles an empty scene and builds its camera
func newScene(name string, cameraConfig geometry.CameraConfig, sampling SamplingConfig) *Scene {
	return &Scene{
		Name:           name,
		Camera:         geometry.NewCamera(cameraConfig),
		CameraConfig:   cameraConfig,
		World:          geometry.NewHittableList(),
		Background:     integrator.DefaultSky(),
		SamplingConfig: sampling,
	}
}

// ApplyOverrides merges camera and sampling overrides and rebuilds the camera
func (s *Scene) ApplyOverrides(cameraOverride geometry.CameraConfig, samplingOverride SamplingConfig) {
	s.CameraConfig = MergeCameraConfig(s.CameraConfig, cameraOverride)
	s.SamplingConfig = MergeSamplingConfig(s.SamplingConfig, samplingOverride)
	s.Camera = geometry.NewCamera(s.CameraConfig)
}

// ImageSize returns the output resolution. A zero height is derived from
// the width and the camera aspect ratio.
func (s *Scene) ImageSize() (width, height int) {
	width = s.SamplingConfig.Width
	height = s.SamplingConfig.Height
	if height <= 0 {
		height = int(float64(width) / s.CameraConfig.AspectRatio)
	}
	return width, max(height, 1)
}

// AddSphere adds a sphere to the world
func (s *Scene) AddSphere(center core.Vec3, radius float64, mat material.Material) {
	s.World.Add(geometry.NewSphere(center, radius, mat))
}
