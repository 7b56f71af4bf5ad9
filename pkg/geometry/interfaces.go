package geometry

import (
	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

// Hittable is anything a ray can intersect. Hit reports the nearest
// intersection with t in [tMin, tMax]; a miss is a normal outcome and the
// record is then the zero value.
type Hittable interface {
	Hit(ray core.Ray, tMin, tMax float64) (material.HitRecord, bool)
}
