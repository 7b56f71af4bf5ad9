package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// fixedRandom always returns the same value
type fixedRandom float64

func (f fixedRandom) Float64() float64 { return float64(f) }

func TestLambertian_AlwaysScattersAboveSurface(t *testing.T) {
	albedo := core.NewColor(0.5, 0.7, 0.9)
	lambertian := NewLambertian(albedo)
	random := core.NewRandom(42)

	normal := core.NewVec3(0, 0, 1)
	hit := HitRecord{
		Point:     core.NewVec3(1, 2, 3),
		Normal:    normal,
		FrontFace: true,
		Material:  lambertian,
	}
	ray := core.NewRay(core.NewVec3(1, 2, 4), core.NewVec3(0, 0, -1))

	for i := 0; i < 1000; i++ {
		scatter, didScatter := lambertian.Scatter(ray, hit, random)
		require.True(t, didScatter, "Lambertian should always scatter")

		assert.Equal(t, hit.Point, scatter.Scattered.Origin)
		assert.Equal(t, albedo, scatter.Attenuation)

		// normal + point in unit sphere stays in the closed upper hemisphere
		require.GreaterOrEqual(t, scatter.Scattered.Direction.Dot(normal), 0.0)
		require.False(t, scatter.Scattered.Direction.NearZero())
	}
}

func TestLambertian_DegenerateDirectionFallsBackToNormal(t *testing.T) {
	lambertian := NewLambertian(core.NewColor(0.8, 0.8, 0.8))
	normal := core.NewVec3(0, 0, 1)
	hit := HitRecord{Point: core.NewVec3(0, 0, 0), Normal: normal, FrontFace: true}
	ray := core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1))

	// The sampled point is (0, 0, -0.999999995), almost exactly opposite the normal
	random := &sequence{values: []float64{0.5, 0.5, 0.0000000025}}
	scatter, didScatter := lambertian.Scatter(ray, hit, random)
	require.True(t, didScatter)
	assert.Equal(t, normal, scatter.Scattered.Direction)
}

// sequence replays values in order, wrapping around
type sequence struct {
	values []float64
	index  int
}

func (s *sequence) Float64() float64 {
	v := s.values[s.index%len(s.values)]
	s.index++
	return v
}
