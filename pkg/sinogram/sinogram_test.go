package sinogram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"tracetransform/internal/models"
	"tracetransform/pkg/backend"
	"tracetransform/pkg/functional"
)

// createTestImage draws a filled square on a dark background
func createTestImage(size int) *models.Image {
	img := models.NewImage(size, size)
	for y := size / 4; y < 3*size/4; y++ {
		for x := size / 4; x < 3*size/4; x++ {
			img.Set(x, y, 1)
		}
	}
	img.Set(1, 1, 0.5)
	return img
}

func TestAngles(t *testing.T) {
	angles, err := Angles(1)
	require.NoError(t, err)
	assert.Len(t, angles, 360)
	assert.Equal(t, 0.0, angles[0])
	assert.Equal(t, 359.0, angles[359])

	angles, err = Angles(90)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 90, 180, 270}, angles)

	angles, err = Angles(0.5)
	require.NoError(t, err)
	assert.Len(t, angles, 720)

	angles, err = Angles(7)
	require.NoError(t, err)
	assert.Len(t, angles, 52)

	for _, bad := range []float64{0, -1, 361} {
		_, err := Angles(bad)
		assert.Error(t, err, "%v", bad)
	}
}

func TestGenerateShape(t *testing.T) {
	dev := backend.NewCPU(backend.CPUOptions{Workers: 2})
	angles, err := Angles(30)
	require.NoError(t, err)
	gen := NewGenerator(dev, angles, nil)

	radon, err := functional.ParseT("radon")
	require.NoError(t, err)

	img := createTestImage(8)
	sino, err := gen.Generate(img, radon)
	require.NoError(t, err)
	assert.Equal(t, 8, sino.Rows())
	assert.Equal(t, 12, sino.Cols())

	host, err := sino.Host(dev)
	require.NoError(t, err)

	// at 0 degrees the Radon column is the plain column sum
	for p := 0; p < img.Width; p++ {
		want := 0.0
		for y := 0; y < img.Height; y++ {
			want += img.At(p, y)
		}
		assert.InDelta(t, want, host.At(p, 0), 1e-12)
	}

	// the image buffer is private to Generate
	require.NoError(t, sino.Release(dev))
	assert.Equal(t, 0, dev.Stats().LiveBuffers)
}

func TestGenerateDeterministic(t *testing.T) {
	dev := backend.NewCPU(backend.CPUOptions{Workers: 4})
	angles, err := Angles(45)
	require.NoError(t, err)
	gen := NewGenerator(dev, angles, nil)
	t3, err := functional.ParseT("T3")
	require.NoError(t, err)

	img := createTestImage(10)
	a, err := gen.Generate(img, t3)
	require.NoError(t, err)
	b, err := gen.Generate(img, t3)
	require.NoError(t, err)

	ha, err := a.Host(dev)
	require.NoError(t, err)
	hb, err := b.Host(dev)
	require.NoError(t, err)
	assert.True(t, mat.Equal(ha, hb))
}

func TestGenerateOutOfMemory(t *testing.T) {
	// room for the image but not for the sinogram
	dev := backend.NewCPU(backend.CPUOptions{MemoryLimit: 8 * 8 * 8})
	angles, err := Angles(1)
	require.NoError(t, err)
	gen := NewGenerator(dev, angles, nil)

	_, err = gen.Generate(createTestImage(8), functional.T{})
	require.Error(t, err)
	assert.ErrorIs(t, err, backend.ErrOutOfMemory)
	assert.Equal(t, 0, dev.Stats().LiveBuffers)
}

func TestGenerateInvalidImage(t *testing.T) {
	dev := backend.NewCPU(backend.CPUOptions{})
	gen := NewGenerator(dev, []float64{0}, nil)
	_, err := gen.Generate(&models.Image{Width: 2, Height: 2}, functional.T{})
	assert.Error(t, err)
	assert.Equal(t, 0, dev.Stats().Allocations)
}

func TestUploadRoundTrip(t *testing.T) {
	dev := backend.NewCPU(backend.CPUOptions{})
	m := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})

	sino, err := Upload(dev, m)
	require.NoError(t, err)
	host, err := sino.Host(dev)
	require.NoError(t, err)
	assert.True(t, mat.Equal(m, host))
}
