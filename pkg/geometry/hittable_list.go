package geometry

import (
	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

// HittableList is an ordered collection of objects tested linearly.
// Order only affects how quickly the search range narrows.
type HittableList struct {
	Objects []Hittable
}

// NewHittableList creates a list holding the given objects
func NewHittableList(objects ...Hittable) *HittableList {
	return &HittableList{Objects: objects}
}

// Add appends an object to the list
func (l *HittableList) Add(object Hittable) {
	l.Objects = append(l.Objects, object)
}

// Clear removes every object
func (l *HittableList) Clear() {
	l.Objects = nil
}

// Len returns the number of objects
func (l *HittableList) Len() int {
	return len(l.Objects)
}

// Hit returns the closest intersection across all objects
func (l *HittableList) Hit(ray core.Ray, tMin, tMax float64) (material.HitRecord, bool) {
	hit, object := l.HitObject(ray, tMin, tMax)
	return hit, object != nil
}

// HitObject returns the closest intersection together with the object that
// produced it. The object is nil on a miss.
func (l *HittableList) HitObject(ray core.Ray, tMin, tMax float64) (material.HitRecord, Hittable) {
	var closestHit material.HitRecord
	var closestObject Hittable
	closestSoFar := tMax

	for _, object := range l.Objects {
		if hit, isHit := object.Hit(ray, tMin, closestSoFar); isHit {
			closestSoFar = hit.T
			closestHit = hit
			closestObject = object
		}
	}

	return closestHit, closestObject
}
