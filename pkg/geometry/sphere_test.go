package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

func TestSphere_Hit_Miss(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)
	ray := core.NewRay(core.NewVec3(2, 0, 0), core.NewVec3(0, 1, 0))

	hit, isHit := sphere.Hit(ray, 0.001, 1000.0)
	assert.False(t, isHit)
	assert.Equal(t, material.HitRecord{}, hit)
}

func TestSphere_Hit_HeadOn(t *testing.T) {
	mat := material.NewLambertian(core.NewColor(0.5, 0.5, 0.5))
	sphere := NewSphere(core.NewVec3(0, 0, -1), 0.5, mat)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	hit, isHit := sphere.Hit(ray, 0.001, math.Inf(1))
	require.True(t, isHit)

	assert.InDelta(t, 0.5, hit.T, 1e-12)
	assert.True(t, hit.Point.ApproxEquals(core.NewVec3(0, 0, -0.5), 1e-12), "point %v", hit.Point)
	assert.True(t, hit.Normal.ApproxEquals(core.NewVec3(0, 0, 1), 1e-12), "normal %v", hit.Normal)
	assert.True(t, hit.FrontFace)
	assert.Same(t, mat, hit.Material)
}

func TestSphere_Hit_FrontAndBackFace(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)

	tests := []struct {
		name           string
		rayOrigin      core.Vec3
		rayDirection   core.Vec3
		expectedT      float64
		expectedFront  bool
		expectedNormal core.Vec3
	}{
		{
			name:           "front face hit",
			rayOrigin:      core.NewVec3(0, 0, 2),
			rayDirection:   core.NewVec3(0, 0, -1),
			expectedT:      1.0,
			expectedFront:  true,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			name:           "back face hit from inside",
			rayOrigin:      core.NewVec3(0, 0, 0),
			rayDirection:   core.NewVec3(0, 0, 1),
			expectedT:      1.0,
			expectedFront:  false,
			expectedNormal: core.NewVec3(0, 0, -1),
		},
		{
			name:           "unnormalized direction scales t",
			rayOrigin:      core.NewVec3(0, 0, 3),
			rayDirection:   core.NewVec3(0, 0, -2),
			expectedT:      1.0,
			expectedFront:  true,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(tt.rayOrigin, tt.rayDirection)
			hit, isHit := sphere.Hit(ray, 0.001, 1000.0)
			require.True(t, isHit, "Expected hit, but got miss")

			assert.InDelta(t, tt.expectedT, hit.T, 1e-9)
			assert.Equal(t, tt.expectedFront, hit.FrontFace)
			assert.True(t, hit.Normal.ApproxEquals(tt.expectedNormal, 1e-9),
				"Expected normal %v, got %v", tt.expectedNormal, hit.Normal)

			// the stored normal always opposes the ray and has unit length
			assert.Less(t, hit.Normal.Dot(ray.Direction), 0.0)
			assert.InDelta(t, 1.0, hit.Normal.Length(), 1e-9)
		})
	}
}

func TestSphere_Hit_Tangent(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)
	ray := core.NewRay(core.NewVec3(0, 1, 2), core.NewVec3(0, 0, -1))

	hit, isHit := sphere.Hit(ray, 0.001, 1000.0)
	require.True(t, isHit)
	assert.InDelta(t, 2.0, hit.T, 1e-12)

	// the single root is consumed: restricting the range past it finds nothing
	_, isHit = sphere.Hit(ray, 2.0+1e-9, 1000.0)
	assert.False(t, isHit)
}

func TestSphere_Hit_RangeSelection(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, -5), 1.0, nil)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	tests := []struct {
		name      string
		tMin      float64
		tMax      float64
		expectHit bool
		expectedT float64
	}{
		{"both roots in range picks nearer", 0.001, 100, true, 4},
		{"near root below tMin uses far root", 4.5, 100, true, 6},
		{"both roots below tMin", 6.5, 100, false, 0},
		{"both roots above tMax", 0.001, 3.9, false, 0},
		{"range between roots", 4.1, 5.9, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, isHit := sphere.Hit(ray, tt.tMin, tt.tMax)
			require.Equal(t, tt.expectHit, isHit)
			if tt.expectHit {
				assert.InDelta(t, tt.expectedT, hit.T, 1e-12)
			}
		})
	}
}

func TestSphere_Hit_BehindRay(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 5), 1.0, nil)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	_, isHit := sphere.Hit(ray, 0.001, math.Inf(1))
	assert.False(t, isHit)
}
