package output

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
)

// QuantizeColor averages an accumulated color over samples, applies gamma 2
// and maps each channel to an integer in [0, 255]
func QuantizeColor(sum core.Color, samples int) (r, g, b int) {
	if samples <= 0 {
		return 0, 0, 0
	}
	c := sum.Divide(float64(samples))
	return quantizeChannel(c.X), quantizeChannel(c.Y), quantizeChannel(c.Z)
}

func quantizeChannel(linear float64) int {
	// NaN and negative samples render black
	if !(linear > 0) {
		return 0
	}
	return int(256 * min(math.Sqrt(linear), 0.999))
}

// WritePPM writes fb as a plain-text (P3) portable pixmap, top row first
func WritePPM(w io.Writer, fb *renderer.Framebuffer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P3\n%d %d\n255\n", fb.Width, fb.Height); err != nil {
		return errors.Wrap(err, "writing PPM header")
	}
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			ps := fb.At(x, y)
			r, g, b := QuantizeColor(ps.ColorAccum, ps.SampleCount)
			if _, err := fmt.Fprintf(bw, "%d %d %d\n", r, g, b); err != nil {
				return errors.Wrap(err, "writing PPM pixels")
			}
		}
	}
	return errors.Wrap(bw.Flush(), "writing PPM pixels")
}
