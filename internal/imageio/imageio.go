// Package imageio loads input images for scanning.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEmptyInput is returned for a zero-length image.
var ErrEmptyInput = errors.New("empty input")

// LoadError describes a failure to open or decode an image.
type LoadError struct {
	Op   string
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("image %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("image %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load opens and decodes the image at path, applying any EXIF orientation.
func Load(path string) (image.Image, error) {
	if path == "" {
		return nil, &LoadError{Op: "open", Err: errors.New("empty path")}
	}
	data, err := os.ReadFile(path) //nolint:gosec // reading a user-supplied image path is the point
	if err != nil {
		return nil, &LoadError{Op: "open", Path: path, Err: err}
	}
	img, err := decode(data)
	if err != nil {
		return nil, &LoadError{Op: "decode", Path: path, Err: err}
	}
	return img, nil
}

// Read decodes an image from r.
func Read(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Op: "read", Err: err}
	}
	img, err := decode(data)
	if err != nil {
		return nil, &LoadError{Op: "decode", Err: err}
	}
	return img, nil
}

func decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	return imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
}

// Fit scales img down so neither side exceeds maxDimension. Images already
// within bounds, and any image when maxDimension is not positive, are
// returned unchanged.
func Fit(img image.Image, maxDimension int) image.Image {
	if maxDimension <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= maxDimension && b.Dy() <= maxDimension {
		return img
	}
	return imaging.Fit(img, maxDimension, maxDimension, imaging.Box)
}

// Formats lists the image formats the package can decode.
func Formats() []string {
	return []string{"bmp", "gif", "jpeg", "png", "tiff", "webp"}
}
