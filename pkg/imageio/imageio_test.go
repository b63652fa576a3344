package imageio

import (
	"bytes"
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
)

func TestDecodePlainPGM(t *testing.T) {
	src := "P2\n# a 3x2 ramp\n3 2\n4\n0 1 2\n3 4 4\n"
	img, err := DecodePGM(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 3, img.Width)
	assert.Equal(t, 2, img.Height)
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1, 1}, img.Data)
}

func TestDecodeRawPGM(t *testing.T) {
	src := append([]byte("P5 2 2 255\n"), 0, 51, 255, 102)
	img, err := Decode(bytes.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 2, img.Width)
	assert.InDeltaSlice(t, []float64{0, 0.2, 1, 0.4}, img.Data, 1e-12)
}

func TestDecodeRawPGM16(t *testing.T) {
	src := append([]byte("P5\n2 1\n1000\n"), 0x01, 0xF4, 0x03, 0xE8)
	img, err := DecodePGM(bytes.NewReader(src))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 1}, img.Data, 1e-12)
}

func TestDecodePGMErrors(t *testing.T) {
	for name, src := range map[string]string{
		"bad magic":        "P3 1 1 255 0",
		"zero width":       "P2 0 1 255",
		"sample too large": "P2 1 1 10 11",
		"short raster":     "P5 2 2 255\n\x00",
		"missing samples":  "P2 2 1 255 7",
	} {
		_, err := DecodePGM(strings.NewReader(src))
		assert.Error(t, err, name)
	}
}

func createGray(width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x*50 + y)})
		}
	}
	return img
}

func TestDecodePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, createGray(4, 3)))

	img, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Width)
	assert.Equal(t, 3, img.Height)
	assert.InDelta(t, 0.0, img.At(0, 0), 1e-12)
	assert.InDelta(t, 152.0/255, img.At(3, 2), 1e-9)
}

func TestReadBMP(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "input.bmp")
	file, err := os.Create(filename)
	require.NoError(t, err)
	require.NoError(t, bmp.Encode(file, createGray(5, 2)))
	require.NoError(t, file.Close())

	img, err := Read(filename)
	require.NoError(t, err)
	assert.Equal(t, 5, img.Width)
	assert.InDelta(t, 201.0/255, img.At(4, 1), 1e-9)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "absent.pgm"))
	assert.Error(t, err)
}

func TestFromImageNormalizesColor(t *testing.T) {
	img := image.NewRGBA(image.Rect(2, 2, 4, 3))
	img.Set(2, 2, color.White)
	img.Set(3, 2, color.Black)

	out := FromImage(img)
	assert.Equal(t, 2, out.Width)
	assert.Equal(t, 1, out.Height)
	assert.Equal(t, []float64{1, 0}, out.Data)
}
