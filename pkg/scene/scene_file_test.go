package scene

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

func TestLoadFile_YAML(t *testing.T) {
	s, err := LoadFile(filepath.Join("testdata", "three-spheres.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "three-spheres", s.Name)
	assert.Equal(t, 4, s.World.Len())
	assert.Equal(t, core.NewVec3(3, 3, 2), s.CameraConfig.LookFrom)
	assert.Equal(t, 2.0, s.CameraConfig.Aperture)

	width, height := s.ImageSize()
	assert.Equal(t, 400, width)
	assert.Equal(t, 225, height)
	assert.Equal(t, 100, s.SamplingConfig.SamplesPerPixel)

	gold := s.World.Objects[3].(*geometry.Sphere)
	require.IsType(t, &material.Metal{}, gold.Material)
	assert.Equal(t, core.NewColor(0.8, 0.6, 0.2), gold.Material.(*material.Metal).Albedo)

	glass := s.World.Objects[2].(*geometry.Sphere)
	require.IsType(t, &material.Dielectric{}, glass.Material)
	assert.Equal(t, 1.5, glass.Material.(*material.Dielectric).RefractiveIndex)
}

func TestLoadFile_JSONSharesMaterials(t *testing.T) {
	s, err := LoadFile(filepath.Join("testdata", "shared.json"))
	require.NoError(t, err)

	first := s.World.Objects[0].(*geometry.Sphere)
	second := s.World.Objects[1].(*geometry.Sphere)
	assert.Same(t, first.Material, second.Material)

	assert.Equal(t, core.NewColor(1, 0, 0), s.Background.Top)
	assert.Equal(t, core.NewColor(0, 0, 1), s.Background.Bottom)

	// unset sampling falls back to the defaults
	assert.Equal(t, DefaultSamplingConfig(), s.SamplingConfig)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join("testdata", "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.yaml")
}

func TestParse_WithoutName(t *testing.T) {
	s, err := Parse([]byte(minimalDescriptor))
	require.NoError(t, err)
	assert.Equal(t, "", s.Name)
	assert.Equal(t, 1, s.World.Len())
}

const minimalDescriptor = `
camera:
  lookFrom: [0, 0, 0]
  lookAt: [0, 0, -1]
  up: [0, 1, 0]
  vfov: 90
  aspectRatio: 1
materials:
  red: {type: lambertian, albedo: [1, 0, 0]}
spheres:
  - {center: [0, 0, -1], radius: 0.5, material: red}
`

func TestParse_Errors(t *testing.T) {
	camera := `
camera:
  lookFrom: [0, 0, 0]
  lookAt: [0, 0, -1]
  up: [0, 1, 0]
  vfov: 90
  aspectRatio: 1
`
	tests := []struct {
		name     string
		yaml     string
		contains string
	}{
		{
			name:     "malformed yaml",
			yaml:     "camera: [",
			contains: "decoding scene descriptor",
		},
		{
			name:     "unknown field",
			yaml:     camera + "lights: []\n",
			contains: "decoding scene descriptor",
		},
		{
			name:     "vector with two components",
			yaml:     "camera:\n  lookFrom: [0, 0]\n",
			contains: "3 components",
		},
		{
			name:     "unknown material type",
			yaml:     camera + "materials:\n  x: {type: plastic}\n",
			contains: `unknown material type "plastic"`,
		},
		{
			name:     "fuzz out of range",
			yaml:     camera + "materials:\n  x: {type: metal, fuzz: 2}\n",
			contains: "fuzz must be in [0, 1]",
		},
		{
			name:     "non-positive refractive index",
			yaml:     camera + "materials:\n  x: {type: dielectric, refractiveIndex: 0}\n",
			contains: "refractiveIndex must be positive",
		},
		{
			name:     "non-positive radius",
			yaml:     camera + "materials:\n  x: {type: lambertian}\nspheres:\n  - {center: [0,0,0], radius: 0, material: x}\n",
			contains: "radius must be positive",
		},
		{
			name:     "unknown material reference",
			yaml:     camera + "spheres:\n  - {center: [0,0,0], radius: 1, material: z}\n",
			contains: `unknown material "z"`,
		},
		{
			name:     "bare boolean reference",
			yaml:     camera + "spheres:\n  - {center: [0,0,0], radius: 1, material: y}\n",
			contains: `unknown material "true" (bare y, yes, on, n, no and off read as booleans)`,
		},
		{
			name:     "quoted boolean material name",
			yaml:     camera + "materials:\n  \"y\": {type: lambertian}\nspheres:\n  - {center: [0,0,0], radius: 1, material: y}\n",
			contains: `material "y": name reads as a YAML boolean`,
		},
		{
			name:     "quoted on material name",
			yaml:     camera + "materials:\n  \"On\": {type: lambertian}\n",
			contains: `material "On": name reads as a YAML boolean`,
		},
		{
			name:     "bare boolean material name",
			yaml:     camera + "materials:\n  off: {type: lambertian}\n",
			contains: `material "false": name reads as a YAML boolean`,
		},
		{
			name:     "camera looks at itself",
			yaml:     "camera: {lookFrom: [1,1,1], lookAt: [1,1,1], up: [0,1,0], vfov: 90, aspectRatio: 1}\n",
			contains: "lookFrom and lookAt must differ",
		},
		{
			name:     "up parallel to view",
			yaml:     "camera: {lookFrom: [0,0,0], lookAt: [0,1,0], up: [0,1,0], vfov: 90, aspectRatio: 1}\n",
			contains: "parallel",
		},
		{
			name:     "zero field of view",
			yaml:     "camera: {lookFrom: [0,0,0], lookAt: [0,0,-1], up: [0,1,0], vfov: 0, aspectRatio: 1}\n",
			contains: "vfov",
		},
		{
			name:     "missing aspect ratio",
			yaml:     "camera: {lookFrom: [0,0,0], lookAt: [0,0,-1], up: [0,1,0], vfov: 90}\n",
			contains: "aspectRatio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}
