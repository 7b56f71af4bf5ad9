package renderer

import (
	"time"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels     int           // Total number of pixels rendered
	TotalSamples    int           // Total number of samples taken
	SamplesPerPixel int           // Samples requested for every pixel
	Tiles           int           // Number of tiles completed, counted once per pass
	Passes          int           // Number of progressive passes completed
	Workers         int           // Number of workers that rendered tiles
	Duration        time.Duration // Wall-clock render time
}

// Add folds the pixel and sample counts of a completed tile into s
func (s *RenderStats) Add(tile RenderStats) {
	s.TotalPixels += tile.TotalPixels
	s.TotalSamples += tile.TotalSamples
	s.Tiles += tile.Tiles
}

// AddPass folds a completed pass into s. Every pass revisits the same
// pixels, so pixels are not summed while samples are.
func (s *RenderStats) AddPass(pass RenderStats) {
	s.TotalPixels = max(s.TotalPixels, pass.TotalPixels)
	s.TotalSamples += pass.TotalSamples
	s.SamplesPerPixel += pass.SamplesPerPixel
	s.Tiles += pass.Tiles
	s.Passes++
}

// AverageSamples returns the mean number of samples per pixel
func (s RenderStats) AverageSamples() float64 {
	if s.TotalPixels == 0 {
		return 0
	}
	return float64(s.TotalSamples) / float64(s.TotalPixels)
}

// PixelStats accumulates the samples taken for a single pixel
type PixelStats struct {
	ColorAccum  core.Color // Sum of every sample's color
	SampleCount int        // Number of samples taken
}

// AddSample adds a new color sample to the pixel statistics
func (ps *PixelStats) AddSample(color core.Color) {
	ps.ColorAccum.AddInPlace(color)
	ps.SampleCount++
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Color {
	if ps.SampleCount == 0 {
		return core.Color{}
	}
	return ps.ColorAccum.Divide(float64(ps.SampleCount))
}
