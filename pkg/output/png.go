package output

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/pkg/errors"

	"github.com/df07/go-sphere-raytracer/pkg/renderer"
)

// ToRGBA converts fb into an image using the same quantization as the PPM
// writer
func ToRGBA(fb *renderer.Framebuffer) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			ps := fb.At(x, y)
			r, g, b := QuantizeColor(ps.ColorAccum, ps.SampleCount)
			img.SetRGBA(x, y, color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255})
		}
	}
	return img
}

// WritePNG encodes fb as a PNG image
func WritePNG(w io.Writer, fb *renderer.Framebuffer) error {
	return errors.Wrap(png.Encode(w, ToRGBA(fb)), "encoding PNG")
}
