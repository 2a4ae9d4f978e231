package qrscan

import "image"

// ImageLuminanceSource is a LuminanceSource over a greyscale copy of an
// image.Image.
type ImageLuminanceSource struct {
	luminances []byte
	width      int
	height     int
}

// NewImageLuminanceSource converts img to 8-bit luminance using
// (306*R + 601*G + 117*B + 0x200) >> 10. Fully transparent pixels read as
// white. *image.Gray input is copied without conversion.
func NewImageLuminanceSource(img image.Image) *ImageLuminanceSource {
	if g, ok := img.(*image.Gray); ok {
		return NewGrayImageLuminanceSource(g)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	luminances := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			if a == 0 {
				luminances[y*w+x] = 0xFF
				continue
			}
			luminances[y*w+x] = byte((306*(r>>8) + 601*(g>>8) + 117*(b>>8) + 0x200) >> 10)
		}
	}
	return &ImageLuminanceSource{luminances: luminances, width: w, height: h}
}

// NewGrayImageLuminanceSource copies the pixels of a greyscale image.
func NewGrayImageLuminanceSource(img *image.Gray) *ImageLuminanceSource {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	luminances := make([]byte, w*h)
	for y := 0; y < h; y++ {
		off := img.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		copy(luminances[y*w:(y+1)*w], img.Pix[off:off+w])
	}
	return &ImageLuminanceSource{luminances: luminances, width: w, height: h}
}

// Row returns a row of luminance data.
func (s *ImageLuminanceSource) Row(y int, row []byte) []byte {
	if y < 0 || y >= s.height {
		return nil
	}
	if len(row) < s.width {
		row = make([]byte, s.width)
	}
	copy(row, s.luminances[y*s.width:(y+1)*s.width])
	return row
}

// Matrix returns a copy of the entire luminance matrix.
func (s *ImageLuminanceSource) Matrix() []byte {
	out := make([]byte, len(s.luminances))
	copy(out, s.luminances)
	return out
}

// Width returns the width of the image.
func (s *ImageLuminanceSource) Width() int { return s.width }

// Height returns the height of the image.
func (s *ImageLuminanceSource) Height() int { return s.height }
