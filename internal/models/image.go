package models

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Image is a host-resident grayscale image with real-valued intensities.
// The core never modifies an Image it is handed.
type Image struct {
	// Data holds the intensities in row-major order
	Data []float64

	// Width is the number of columns
	Width int

	// Height is the number of rows
	Height int
}

// NewImage allocates a zero-filled image of the given dimensions
func NewImage(width, height int) *Image {
	return &Image{
		Data:   make([]float64, width*height),
		Width:  width,
		Height: height,
	}
}

// At returns the intensity at column x, row y
func (img *Image) At(x, y int) float64 {
	return img.Data[y*img.Width+x]
}

// Set stores the intensity at column x, row y
func (img *Image) Set(x, y int, v float64) {
	img.Data[y*img.Width+x] = v
}

// Validate reports whether the image dimensions agree with its data
func (img *Image) Validate() error {
	if img == nil {
		return fmt.Errorf("image is nil")
	}
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("image dimensions must be positive, got %dx%d", img.Width, img.Height)
	}
	if len(img.Data) != img.Width*img.Height {
		return fmt.Errorf("image data has %d samples, expected %d", len(img.Data), img.Width*img.Height)
	}
	return nil
}

// FeatureMatrix is the terminal artifact of a trace transform run.
// Rows are angle indices; there is one column per (T-functional, P-functional)
// combination, T outer and P inner.
type FeatureMatrix struct {
	// Headers labels each column as "<T-name>-<P-name>"
	Headers []string

	// Data holds the feature values, angles x combinations
	Data *mat.Dense

	angles int
}

// NewFeatureMatrix allocates a zeroed feature matrix for the given headers
func NewFeatureMatrix(angles int, headers []string) *FeatureMatrix {
	fm := &FeatureMatrix{
		Headers: append([]string(nil), headers...),
		angles:  angles,
	}
	// gonum refuses zero-sized dense matrices
	if angles > 0 && len(headers) > 0 {
		fm.Data = mat.NewDense(angles, len(headers), nil)
	}
	return fm
}

// Dims returns the number of angles and combinations
func (fm *FeatureMatrix) Dims() (rows, cols int) {
	return fm.angles, len(fm.Headers)
}

// SetColumn copies values into column j
func (fm *FeatureMatrix) SetColumn(j int, values []float64) error {
	if j < 0 || j >= len(fm.Headers) {
		return fmt.Errorf("column %d out of range [0,%d)", j, len(fm.Headers))
	}
	if len(values) != fm.angles {
		return fmt.Errorf("column %s has %d values, expected %d", fm.Headers[j], len(values), fm.angles)
	}
	fm.Data.SetCol(j, values)
	return nil
}

// Column returns a copy of column j
func (fm *FeatureMatrix) Column(j int) []float64 {
	return mat.Col(nil, j, fm.Data)
}
