package scene

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/integrator"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

// Material kinds accepted in scene descriptors
const (
	KindLambertian = "lambertian"
	KindMetal      = "metal"
	KindDielectric = "dielectric"
)

// yamlBooleans are the plain scalars YAML 1.1 resolves to true or false.
// A material named like this cannot be referenced reliably: a bare
// reference decodes as "true" or "false" before it reaches the name lookup.
var yamlBooleans = map[string]bool{
	"y": true, "yes": true, "on": true, "true": true,
	"n": true, "no": true, "off": true, "false": true,
}

// Descriptor is the on-disk form of a scene
type Descriptor struct {
	Name        string                        `json:"name"`
	Description string                        `json:"description,omitempty"`
	Camera      geometry.CameraConfig         `json:"camera"`
	Sampling    SamplingConfig                `json:"sampling,omitempty"`
	Background  *integrator.SkyGradient       `json:"background,omitempty"`
	Materials   map[string]MaterialDescriptor `json:"materials"`
	Spheres     []SphereDescriptor            `json:"spheres"`
}

// MaterialDescriptor describes one shared material
type MaterialDescriptor struct {
	Type            string     `json:"type"`
	Albedo          core.Color `json:"albedo,omitempty"`
	Fuzz            float64    `json:"fuzz,omitempty"`
	RefractiveIndex float64    `json:"refractiveIndex,omitempty"`
}

// SphereDescriptor places a sphere and names its material
type SphereDescriptor struct {
	Center   core.Vec3 `json:"center"`
	Radius   float64   `json:"radius"`
	Material string    `json:"material"`
}

// LoadFile reads and builds a scene descriptor from a YAML or JSON file
func LoadFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading scene file %s", path)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "loading scene file %s", path)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Parse builds a scene from YAML (or JSON) descriptor bytes
func Parse(data []byte) (*Scene, error) {
	var d Descriptor
	if err := yaml.UnmarshalStrict(data, &d); err != nil {
		return nil, errors.Wrap(err, "decoding scene descriptor")
	}
	return d.Build()
}

// Build validates the descriptor and constructs the scene. Each named
// material is instantiated once and shared by every sphere that uses it.
func (d Descriptor) Build() (*Scene, error) {
	if err := d.validateCamera(); err != nil {
		return nil, err
	}

	materials := make(map[string]material.Material, len(d.Materials))
	// sorted for deterministic error messages
	names := make([]string, 0, len(d.Materials))
	for name := range d.Materials {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if yamlBooleans[strings.ToLower(name)] {
			return nil, errors.Errorf("material %q: name reads as a YAML boolean, choose another name", name)
		}
		m, err := d.Materials[name].build()
		if err != nil {
			return nil, errors.Wrapf(err, "material %q", name)
		}
		materials[name] = m
	}

	sampling := MergeSamplingConfig(DefaultSamplingConfig(), d.Sampling)
	s := newScene(d.Name, d.Camera, sampling)
	if d.Background != nil {
		s.Background = *d.Background
	}

	for i, sd := range d.Spheres {
		if sd.Radius <= 0 {
			return nil, errors.Errorf("sphere %d: radius must be positive, got %g", i, sd.Radius)
		}
		m, ok := materials[sd.Material]
		if !ok && yamlBooleans[strings.ToLower(sd.Material)] {
			return nil, errors.Errorf("sphere %d: unknown material %q (bare y, yes, on, n, no and off read as booleans)", i, sd.Material)
		}
		if !ok {
			return nil, errors.Errorf("sphere %d: unknown material %q", i, sd.Material)
		}
		s.AddSphere(sd.Center, sd.Radius, m)
	}

	return s, nil
}

func (d Descriptor) validateCamera() error {
	c := d.Camera
	if c.LookFrom == c.LookAt {
		return errors.New("camera: lookFrom and lookAt must differ")
	}
	if c.Up.NearZero() {
		return errors.New("camera: up vector must be non-zero")
	}
	if c.Up.Cross(c.LookFrom.Subtract(c.LookAt)).NearZero() {
		return errors.New("camera: up vector must not be parallel to the view direction")
	}
	if c.VFov <= 0 || c.VFov >= 180 {
		return errors.Errorf("camera: vfov must be in (0, 180), got %g", c.VFov)
	}
	if c.AspectRatio <= 0 {
		return errors.Errorf("camera: aspectRatio must be positive, got %g", c.AspectRatio)
	}
	if c.Aperture < 0 {
		return errors.Errorf("camera: aperture must not be negative, got %g", c.Aperture)
	}
	return nil
}

func (m MaterialDescriptor) build() (material.Material, error) {
	switch strings.ToLower(m.Type) {
	case KindLambertian:
		return material.NewLambertian(m.Albedo), nil
	case KindMetal:
		if m.Fuzz < 0 || m.Fuzz > 1 {
			return nil, errors.Errorf("fuzz must be in [0, 1], got %g", m.Fuzz)
		}
		return material.NewMetal(m.Albedo, m.Fuzz), nil
	case KindDielectric:
		if m.RefractiveIndex <= 0 {
			return nil, errors.Errorf("refractiveIndex must be positive, got %g", m.RefractiveIndex)
		}
		return material.NewDielectric(m.RefractiveIndex), nil
	default:
		return nil, errors.Errorf("unknown material type %q", m.Type)
	}
}
