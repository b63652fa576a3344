package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
)

// Viewer renders a real-valued matrix, typically a sinogram, as a grayscale
// image. Rows map to image rows and columns to image columns; values are
// stretched linearly so that the smallest maps to black and the largest to
// white.
type Viewer struct {
	// data is the matrix being displayed
	data mat.Matrix

	// lo and hi bound the displayed value range
	lo float64
	hi float64
}

// NewViewer creates a viewer for m
func NewViewer(m mat.Matrix) *Viewer {
	v := &Viewer{data: m, lo: math.Inf(1), hi: math.Inf(-1)}
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			value := m.At(i, j)
			if math.IsNaN(value) || math.IsInf(value, 0) {
				continue
			}
			v.lo = math.Min(v.lo, value)
			v.hi = math.Max(v.hi, value)
		}
	}
	return v
}

// Range returns the smallest and largest finite value of the matrix
func (v *Viewer) Range() (lo, hi float64) {
	return v.lo, v.hi
}

// Image renders the matrix. A constant matrix renders black; non-finite
// values render black as well.
func (v *Viewer) Image() (image.Image, error) {
	rows, cols := v.data.Dims()
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("cannot render an empty %dx%d matrix", rows, cols)
	}

	img := image.NewGray16(image.Rect(0, 0, cols, rows))
	span := v.hi - v.lo
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			value := v.data.At(y, x)
			if span <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
				continue
			}
			scaled := (value - v.lo) / span
			img.SetGray16(x, y, color.Gray16{Y: uint16(math.Max(0, math.Min(65535, scaled*65535)))})
		}
	}
	return img, nil
}

// Save writes the rendered matrix as a PNG image
func (v *Viewer) Save(filename string) error {
	img, err := v.Image()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// SaveSinogram renders m into filename
func SaveSinogram(filename string, m mat.Matrix) error {
	return NewViewer(m).Save(filename)
}
