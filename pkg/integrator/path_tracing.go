package integrator

import (
	"math"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
)

// ShadowAcneEpsilon is the minimum hit distance, so scattered rays do not
// re-hit the surface they leave because of floating point error.
const ShadowAcneEpsilon = 0.001

// DefaultMaxDepth is the default bounce budget
const DefaultMaxDepth = 50

// PathTracingIntegrator implements recursive unidirectional path tracing
type PathTracingIntegrator struct {
	maxDepth   int
	background SkyGradient
	recorder   TerminationRecorder
}

// Option configures a PathTracingIntegrator
type Option func(*PathTracingIntegrator)

// WithBackground replaces the default sky gradient
func WithBackground(background SkyGradient) Option {
	return func(pt *PathTracingIntegrator) {
		pt.background = background
	}
}

// WithTerminationRecorder reports every finished path to recorder
func WithTerminationRecorder(recorder TerminationRecorder) Option {
	return func(pt *PathTracingIntegrator) {
		pt.recorder = recorder
	}
}

// NewPathTracingIntegrator creates a new path tracing integrator with the
// given bounce budget
func NewPathTracingIntegrator(maxDepth int, opts ...Option) *PathTracingIntegrator {
	pt := &PathTracingIntegrator{
		maxDepth:   maxDepth,
		background: DefaultSky(),
	}
	for _, opt := range opts {
		opt(pt)
	}
	return pt
}

// MaxDepth returns the bounce budget
func (pt *PathTracingIntegrator) MaxDepth() int {
	return pt.maxDepth
}

// RayColor computes the color for a single ray
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, world geometry.Hittable, random core.Random) core.Color {
	return pt.rayColorRecursive(ray, world, random, pt.maxDepth)
}

// rayColorRecursive returns the color for a given ray with material support
func (pt *PathTracingIntegrator) rayColorRecursive(ray core.Ray, world geometry.Hittable, random core.Random, depth int) core.Color {
	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth <= 0 {
		pt.record(TerminationDepth, depth)
		return core.Color{}
	}

	hit, isHit := world.Hit(ray, ShadowAcneEpsilon, math.Inf(1))
	if !isHit {
		pt.record(TerminationSky, depth)
		return pt.background.Color(ray)
	}

	scatter, didScatter := hit.Material.Scatter(ray, hit, random)
	if !didScatter {
		pt.record(TerminationAbsorbed, depth)
		return core.Color{}
	}

	return scatter.Attenuation.MultiplyVec(
		pt.rayColorRecursive(scatter.Scattered, world, random, depth-1))
}

func (pt *PathTracingIntegrator) record(reason Termination, depth int) {
	if pt.recorder != nil {
		pt.recorder.RecordTermination(reason, pt.maxDepth-depth)
	}
}
