// Package imageio loads grayscale input images into models.Image with
// intensities normalized to [0, 1].
package imageio

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"tracetransform/internal/models"
)

// Read loads the image stored in filename
func Read(filename string) (*models.Image, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}
	return img, nil
}

// Decode reads a PGM, PNG, JPEG, GIF, TIFF or BMP image. Color images are
// converted to luminance.
func Decode(r io.Reader) (*models.Image, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}
	if magic[0] == 'P' && (magic[1] == '2' || magic[1] == '5') {
		return DecodePGM(br)
	}

	img, _, err := image.Decode(br)
	if err != nil {
		return nil, err
	}
	return FromImage(img), nil
}

// FromImage converts img to a normalized grayscale image
func FromImage(img image.Image) *models.Image {
	bounds := img.Bounds()
	out := models.NewImage(bounds.Dx(), bounds.Dy())
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			gray := color.Gray16Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray16)
			out.Set(x, y, float64(gray.Y)/65535)
		}
	}
	return out
}
