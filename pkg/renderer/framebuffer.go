package renderer

import "github.com/df07/go-sphere-raytracer/pkg/core"

// Framebuffer holds the accumulated samples of every pixel. Row 0 is the
// top of the image.
type Framebuffer struct {
	Width  int
	Height int
	Pixels [][]PixelStats // indexed [y][x]
}

// NewFramebuffer allocates an empty width x height framebuffer
func NewFramebuffer(width, height int) *Framebuffer {
	pixels := make([][]PixelStats, height)
	for y := range pixels {
		pixels[y] = make([]PixelStats, width)
	}
	return &Framebuffer{Width: width, Height: height, Pixels: pixels}
}

// At returns the accumulator for pixel (x, y)
func (fb *Framebuffer) At(x, y int) *PixelStats {
	return &fb.Pixels[y][x]
}

// Color returns the average color of pixel (x, y) before gamma correction
func (fb *Framebuffer) Color(x, y int) core.Color {
	return fb.Pixels[y][x].GetColor()
}

// Clone returns a deep copy of the framebuffer
func (fb *Framebuffer) Clone() *Framebuffer {
	clone := NewFramebuffer(fb.Width, fb.Height)
	for y := range fb.Pixels {
		copy(clone.Pixels[y], fb.Pixels[y])
	}
	return clone
}
