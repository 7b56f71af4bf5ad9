package core

import (
	"golang.org/x/exp/rand"
)

// Random is the uniform random source used by scattering, lens sampling and
// pixel jitter. Float64 returns values in [0, 1).
//
// A Random is not safe for concurrent use; every render worker owns its own.
type Random interface {
	Float64() float64
}

// NewRandom returns a PCG-backed generator seeded with seed
func NewRandom(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// RandomRange returns a uniform value in [minVal, maxVal)
func RandomRange(random Random, minVal, maxVal float64) float64 {
	return minVal + (maxVal-minVal)*random.Float64()
}

// RandomVec3 returns a vector with every component uniform in [0, 1)
func RandomVec3(random Random) Vec3 {
	return NewVec3(random.Float64(), random.Float64(), random.Float64())
}

// RandomVec3Range returns a vector with every component uniform in [minVal, maxVal)
func RandomVec3Range(random Random, minVal, maxVal float64) Vec3 {
	return NewVec3(
		RandomRange(random, minVal, maxVal),
		RandomRange(random, minVal, maxVal),
		RandomRange(random, minVal, maxVal),
	)
}

// RandomInUnitSphere returns a point uniformly distributed inside the unit
// sphere by rejection sampling the [-1,1]³ cube.
func RandomInUnitSphere(random Random) Vec3 {
	for {
		p := RandomVec3Range(random, -1, 1)
		if p.LengthSquared() < 1 {
			return p
		}
	}
}

// RandomUnitVector returns a uniformly distributed direction on the unit sphere
func RandomUnitVector(random Random) Vec3 {
	for {
		p := RandomInUnitSphere(random)
		// reject points too close to the origin to normalize safely
		if !p.NearZero() {
			return p.Normalize()
		}
	}
}

// RandomInUnitDisk returns a point uniformly distributed inside the unit disk
// in the z=0 plane (for depth of field)
func RandomInUnitDisk(random Random) Vec3 {
	for {
		p := NewVec3(RandomRange(random, -1, 1), RandomRange(random, -1, 1), 0)
		if p.LengthSquared() < 1 {
			return p
		}
	}
}
