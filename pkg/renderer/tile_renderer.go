package renderer

import (
	"context"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/integrator"
)

// TileRenderer handles the actual rendering of individual tiles using an integrator
type TileRenderer struct {
	camera        *geometry.Camera
	world         geometry.Hittable
	integrator    integrator.Integrator
	width, height int
}

// NewTileRenderer creates a tile renderer for a width x height image
func NewTileRenderer(camera *geometry.Camera, world geometry.Hittable, integratorInst integrator.Integrator, width, height int) *TileRenderer {
	return &TileRenderer{
		camera:     camera,
		world:      world,
		integrator: integratorInst,
		width:      width,
		height:     height,
	}
}

// RenderTile adds samples samples to every pixel inside the tile,
// accumulating into fb on top of earlier passes. Cancellation is checked
// between rows; a cancelled tile keeps the rows it finished.
func (tr *TileRenderer) RenderTile(ctx context.Context, tile Tile, fb *Framebuffer, samples int, random core.Random) (RenderStats, error) {
	stats := RenderStats{SamplesPerPixel: samples}

	for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
			tr.samplePixel(x, y, fb.At(x, y), samples, random)
			stats.TotalPixels++
			stats.TotalSamples += samples
		}
	}

	stats.Tiles = 1
	return stats, nil
}

// samplePixel jitters samples camera rays inside pixel (x, y)
func (tr *TileRenderer) samplePixel(x, y int, ps *PixelStats, samples int, random core.Random) {
	for sample := 0; sample < samples; sample++ {
		s, t := ViewportCoords(x, y, tr.width, tr.height, random.Float64(), random.Float64())
		ray := tr.camera.GetRay(s, t, random)
		ps.AddSample(tr.integrator.RayColor(ray, tr.world, random))
	}
}

// ViewportCoords maps pixel (x, y) of a width x height image, offset by a
// jitter in [0, 1), onto the camera's (s, t) viewport coordinates. Image
// rows run top to bottom while t runs bottom to top.
func ViewportCoords(x, y, width, height int, jitterX, jitterY float64) (s, t float64) {
	i := float64(x)
	j := float64(height - 1 - y)
	return (i + jitterX) / viewportSpan(width), (j + jitterY) / viewportSpan(height)
}

// viewportSpan is the divisor that maps pixel indices onto [0, 1]. A one
// pixel wide image spans the whole viewport.
func viewportSpan(pixels int) float64 {
	return float64(max(pixels-1, 1))
}
