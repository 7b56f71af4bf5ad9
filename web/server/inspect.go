package server

import (
	"fmt"
	"math"
	"net/http"

	"github.com/pkg/errors"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/integrator"
	"github.com/df07/go-sphere-raytracer/pkg/material"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType,omitempty"`
	Point        core.Vec3              `json:"point"`
	Normal       core.Vec3              `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Center       core.Vec3              `json:"center"`
	Radius       float64                `json:"radius"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

// materialInfo extracts the type name and parameters of a material
func materialInfo(mat material.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch m := mat.(type) {
	case *material.Lambertian:
		properties["albedo"] = m.Albedo
		properties["color"] = hexColor(m.Albedo)
		return scene.KindLambertian, properties

	case *material.Metal:
		properties["albedo"] = m.Albedo
		properties["color"] = hexColor(m.Albedo)
		properties["fuzzness"] = m.Fuzzness
		return scene.KindMetal, properties

	case *material.Dielectric:
		properties["refractiveIndex"] = m.RefractiveIndex
		properties["color"] = "#ffffff" // Clear glass
		return scene.KindDielectric, properties

	default:
		return "unknown", properties
	}
}

func hexColor(c core.Color) string {
	c = c.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// inspectPixel casts an unjittered ray through the centre of pixel (x, y)
// and returns the nearest object it hits, nil on a miss
func inspectPixel(sceneObj *scene.Scene, x, y int) (material.HitRecord, geometry.Hittable) {
	width, height := sceneObj.ImageSize()
	s, t := renderer.ViewportCoords(x, y, width, height, 0.5, 0.5)
	// lens sampling is deterministic for inspection
	ray := sceneObj.Camera.GetRay(s, t, core.NewRandom(0))
	return sceneObj.World.HitObject(ray, integrator.ShadowAcneEpsilon, math.Inf(1))
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	width, err := parseIntParam(query, "width", 400, minWidth, maxWidth)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	sceneObj, err := s.createScene(sceneParam(query), 0)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	sceneObj.ApplyOverrides(geometry.CameraConfig{}, scene.SamplingConfig{Width: width})
	_, height := sceneObj.ImageSize()

	x, err := parseIntParam(query, "x", -1, 0, width-1)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	y, err := parseIntParam(query, "y", -1, 0, height-1)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if x < 0 || y < 0 {
		s.writeError(w, http.StatusBadRequest, errors.New("x and y are required"))
		return
	}

	s.writeInspection(w, sceneObj, x, y)
}

func (s *Server) writeInspection(w http.ResponseWriter, sceneObj *scene.Scene, x, y int) {
	hit, object := inspectPixel(sceneObj, x, y)
	if object == nil {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false})
		return
	}

	materialType, properties := materialInfo(hit.Material)
	response := InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		Point:        hit.Point,
		Normal:       hit.Normal,
		Distance:     hit.T,
		FrontFace:    hit.FrontFace,
		Properties:   properties,
	}
	if sphere, ok := object.(*geometry.Sphere); ok {
		response.Center = sphere.Center
		response.Radius = sphere.Radius
	}
	writeJSON(w, http.StatusOK, response)
}
