package integrator

import (
	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor computes the radiance arriving along ray
	RayColor(ray core.Ray, world geometry.Hittable, random core.Random) core.Color
}

// Termination is the reason a path stopped bouncing
type Termination int

const (
	// TerminationSky means the path escaped the scene
	TerminationSky Termination = iota
	// TerminationAbsorbed means a material absorbed the path
	TerminationAbsorbed
	// TerminationDepth means the bounce budget ran out
	TerminationDepth
)

// String returns the metric label for the termination reason
func (t Termination) String() string {
	switch t {
	case TerminationSky:
		return "sky"
	case TerminationAbsorbed:
		return "absorbed"
	case TerminationDepth:
		return "depth"
	default:
		return "unknown"
	}
}

// TerminationRecorder observes how paths end. Implementations must be safe
// for concurrent use when the integrator is shared by render workers.
type TerminationRecorder interface {
	RecordTermination(reason Termination, bounces int)
}
