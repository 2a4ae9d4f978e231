package imageio

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func checker(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/4+y/4)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

func TestReadFormats(t *testing.T) {
	src := checker(16, 12)
	encoders := map[string]func(*bytes.Buffer) error{
		"png":  func(b *bytes.Buffer) error { return png.Encode(b, src) },
		"bmp":  func(b *bytes.Buffer) error { return bmp.Encode(b, src) },
		"tiff": func(b *bytes.Buffer) error { return tiff.Encode(b, src, nil) },
	}
	for name, encode := range encoders {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, encode(&buf))
			img, err := Read(&buf)
			require.NoError(t, err)
			assert.Equal(t, 16, img.Bounds().Dx())
			assert.Equal(t, 12, img.Bounds().Dy())
			r, _, _, _ := img.At(0, 0).RGBA()
			assert.Equal(t, uint32(0xffff), r)
			r, _, _, _ = img.At(4, 0).RGBA()
			assert.Equal(t, uint32(0), r)
		})
	}
}

func TestReadErrors(t *testing.T) {
	_, err := Read(bytes.NewReader(nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyInput))

	_, err = Read(strings.NewReader("not an image"))
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "decode", loadErr.Op)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checker.png")
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, checker(8, 8)))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	img, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 8), img.Bounds())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)

	missing := filepath.Join(t.TempDir(), "missing.png")
	_, err = Load(missing)
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "open", loadErr.Op)
	assert.Equal(t, missing, loadErr.Path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), missing)
}

func TestFit(t *testing.T) {
	img := checker(400, 200)

	assert.Same(t, img, Fit(img, 0))
	assert.Same(t, img, Fit(img, 400))

	fitted := Fit(img, 100)
	assert.Equal(t, 100, fitted.Bounds().Dx())
	assert.Equal(t, 50, fitted.Bounds().Dy())
}
