package geometry

import (
	"math"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// CameraConfig contains the view parameters a camera is built from
type CameraConfig struct {
	LookFrom      core.Vec3 `json:"lookFrom"`      // Camera position
	LookAt        core.Vec3 `json:"lookAt"`        // Point the camera looks at
	Up            core.Vec3 `json:"up"`            // View-up vector
	VFov          float64   `json:"vfov"`          // Vertical field of view in degrees
	AspectRatio   float64   `json:"aspectRatio"`   // Width / height
	Aperture      float64   `json:"aperture"`      // Lens diameter, 0 = pinhole
	FocusDistance float64   `json:"focusDistance"` // Distance to the focal plane, 0 = |LookFrom-LookAt|
}

// Camera generates rays for rendering. It is immutable after construction.
type Camera struct {
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	u, v, w         core.Vec3 // orthonormal basis, w points backwards
	lensRadius      float64
}

// NewCamera creates a camera with defocus blur from the given configuration
func NewCamera(config CameraConfig) *Camera {
	focusDistance := config.FocusDistance
	if focusDistance <= 0 {
		focusDistance = config.LookFrom.Subtract(config.LookAt).Length()
	}

	theta := config.VFov * math.Pi / 180
	h := math.Tan(theta / 2)
	viewportHeight := 2.0 * h
	viewportWidth := config.AspectRatio * viewportHeight

	w := config.LookFrom.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	origin := config.LookFrom
	horizontal := u.Multiply(focusDistance * viewportWidth)
	vertical := v.Multiply(focusDistance * viewportHeight)
	lowerLeftCorner := origin.
		Subtract(horizontal.Divide(2)).
		Subtract(vertical.Divide(2)).
		Subtract(w.Multiply(focusDistance))

	return &Camera{
		origin:          origin,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      horizontal,
		vertical:        vertical,
		u:               u,
		v:               v,
		w:               w,
		lensRadius:      config.Aperture / 2,
	}
}

// GetRay generates a ray for screen coordinates (s, t) where 0 <= s,t <= 1.
// The origin is jittered across the lens for depth of field.
func (c *Camera) GetRay(s, t float64, random core.Random) core.Ray {
	offset := core.Vec3{}
	if c.lensRadius > 0 {
		rd := core.RandomInUnitDisk(random).Multiply(c.lensRadius)
		offset = c.u.Multiply(rd.X).Add(c.v.Multiply(rd.Y))
	}

	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(c.origin).
		Subtract(offset)

	return core.NewRay(c.origin.Add(offset), direction)
}

// Origin returns the camera position
func (c *Camera) Origin() core.Vec3 {
	return c.origin
}

// GetCameraForward returns the unit view direction
func (c *Camera) GetCameraForward() core.Vec3 {
	return c.w.Negate()
}

// LensRadius returns the aperture radius
func (c *Camera) LensRadius() float64 {
	return c.lensRadius
}
