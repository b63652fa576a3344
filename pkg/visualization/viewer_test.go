package visualization

import (
	"bytes"
	"encoding/csv"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"tracetransform/internal/models"
)

func TestViewerRange(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{-1, 0, 1, 2, 3, 4})
	lo, hi := NewViewer(m).Range()
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 4.0, hi)
}

func TestViewerImage(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{
		0, 1, 2,
		3, 4, 8,
	})
	img, err := NewViewer(m).Image()
	require.NoError(t, err)

	gray, ok := img.(*image.Gray16)
	require.True(t, ok)
	// columns map to x, rows to y
	assert.Equal(t, image.Rect(0, 0, 3, 2), gray.Bounds())
	assert.Equal(t, uint16(0), gray.Gray16At(0, 0).Y)
	assert.Equal(t, uint16(65535), gray.Gray16At(2, 1).Y)
	assert.Equal(t, uint16(32767), gray.Gray16At(1, 1).Y)
}

func TestViewerConstantMatrix(t *testing.T) {
	img, err := NewViewer(mat.NewDense(2, 2, []float64{5, 5, 5, 5})).Image()
	require.NoError(t, err)
	assert.Equal(t, uint16(0), img.(*image.Gray16).Gray16At(1, 1).Y)
}

func TestSaveSinogram(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "sinograms", "Radon.png")
	m := mat.NewDense(4, 6, nil)
	m.Set(2, 5, 1)
	require.NoError(t, SaveSinogram(filename, m))

	file, err := os.Open(filename)
	require.NoError(t, err)
	defer file.Close()
	img, err := png.Decode(file)
	require.NoError(t, err)
	assert.Equal(t, 6, img.Bounds().Dx())
	assert.Equal(t, 4, img.Bounds().Dy())
}

func TestWriteFeatures(t *testing.T) {
	fm := models.NewFeatureMatrix(3, []string{"Radon-P1", "T1-P2"})
	require.NoError(t, fm.SetColumn(0, []float64{1, 2.5, 3}))
	require.NoError(t, fm.SetColumn(1, []float64{-1, 0, 1e-7}))

	var buf bytes.Buffer
	require.NoError(t, WriteFeatures(&buf, fm))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Radon-P1", "T1-P2"},
		{"1", "-1"},
		{"2.5", "0"},
		{"3", "1e-07"},
	}, records)
}

func TestSaveFeaturesAndTrace(t *testing.T) {
	dir := t.TempDir()

	fm := models.NewFeatureMatrix(2, []string{"Radon-H1"})
	require.NoError(t, fm.SetColumn(0, []float64{0.5, 0.25}))
	require.NoError(t, SaveFeatures(filepath.Join(dir, "features.csv"), fm))

	data, err := os.ReadFile(filepath.Join(dir, "features.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Radon-H1\n0.5\n0.25\n", string(data))

	trace := filepath.Join(dir, "traces", "trace_Radon-H1.csv")
	require.NoError(t, WriteTrace(trace, "Radon-H1", []float64{1, 2}))
	data, err = os.ReadFile(trace)
	require.NoError(t, err)
	assert.Equal(t, "Radon-H1\n1\n2\n", string(data))
}
