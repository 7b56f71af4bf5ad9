package output

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/df07/go-sphere-raytracer/pkg/renderer"
)

// Image formats
const (
	FormatPPM = "ppm"
	FormatPNG = "png"
)

// Stdout is the output path that writes a PPM image to standard output
const Stdout = "-"

// ErrUnsupportedFormat is returned for an image format that cannot be written
var ErrUnsupportedFormat = errors.New("unsupported image format")

// FormatFor infers the image format from path, ignoring a trailing .gz
func FormatFor(path string) (format string, compressed bool, err error) {
	if path == Stdout {
		return FormatPPM, false, nil
	}
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".gz") {
		compressed = true
		name = strings.TrimSuffix(name, ".gz")
	}
	switch ext := filepath.Ext(name); ext {
	case ".ppm":
		return FormatPPM, compressed, nil
	case ".png":
		return FormatPNG, compressed, nil
	default:
		return "", compressed, errors.Wrapf(ErrUnsupportedFormat, "%q", ext)
	}
}

// Encode writes fb to w in the named format
func Encode(w io.Writer, fb *renderer.Framebuffer, format string) error {
	switch format {
	case FormatPPM:
		return WritePPM(w, fb)
	case FormatPNG:
		return WritePNG(w, fb)
	default:
		return errors.Wrapf(ErrUnsupportedFormat, "%q", format)
	}
}

// Save writes fb to path. The format comes from the extension unless format
// is set; a .gz suffix gzips the encoded image. Parent directories are
// created as needed.
func Save(path string, fb *renderer.Framebuffer, format string) error {
	inferred, compressed, err := FormatFor(path)
	if format == "" {
		if err != nil {
			return err
		}
		format = inferred
	}

	if path == Stdout {
		return Encode(os.Stdout, fb, format)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "creating output directory %s", dir)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer file.Close()

	var w io.Writer = file
	var zw *gzip.Writer
	if compressed {
		zw = gzip.NewWriter(file)
		w = zw
	}

	if err := Encode(w, fb, format); err != nil {
		return errors.Wrapf(err, "saving %s", path)
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return errors.Wrapf(err, "compressing %s", path)
		}
	}
	return errors.Wrapf(file.Close(), "closing %s", path)
}
