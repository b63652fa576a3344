// Package sinogram generates trace transform sinograms: for every projection
// angle, a T-functional is applied to each projection line of the image.
package sinogram

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"tracetransform/internal/models"
	"tracetransform/pkg/backend"
	"tracetransform/pkg/functional"
	"tracetransform/pkg/logging"
)

// Sinogram is a device-resident matrix: rows are projection-line positions,
// columns are projection angles. A Sinogram has a single owner; stages that
// need a different sinogram produce a new one instead of mutating it.
type Sinogram struct {
	buf *backend.Buffer
}

// Wrap adopts a device buffer as a sinogram
func Wrap(buf *backend.Buffer) *Sinogram {
	return &Sinogram{buf: buf}
}

// Buffer returns the device buffer backing the sinogram
func (s *Sinogram) Buffer() *backend.Buffer { return s.buf }

// Rows is the number of samples per projection angle
func (s *Sinogram) Rows() int { return s.buf.Shape().Rows }

// Cols is the number of projection angles
func (s *Sinogram) Cols() int { return s.buf.Shape().Cols }

// Host downloads a copy of the sinogram
func (s *Sinogram) Host(b backend.Backend) (*mat.Dense, error) {
	data := make([]float64, s.Rows()*s.Cols())
	if err := b.Download(data, s.buf); err != nil {
		return nil, fmt.Errorf("failed to download sinogram: %w", err)
	}
	return mat.NewDense(s.Rows(), s.Cols(), data), nil
}

// Upload places a host matrix on the device as a new sinogram
func Upload(b backend.Backend, m *mat.Dense) (*Sinogram, error) {
	rows, cols := m.Dims()
	buf, err := b.Allocate(backend.Matrix(rows, cols))
	if err != nil {
		return nil, fmt.Errorf("failed to allocate sinogram: %w", err)
	}
	// Dense may be a strided view; copy row by row
	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		data = append(data, m.RawRowView(i)...)
	}
	if err := b.Upload(buf, data); err != nil {
		b.Free(buf)
		return nil, fmt.Errorf("failed to upload sinogram: %w", err)
	}
	return Wrap(buf), nil
}

// Release frees the device memory of the sinogram
func (s *Sinogram) Release(b backend.Backend) error {
	if s == nil || s.buf == nil {
		return nil
	}
	err := b.Free(s.buf)
	s.buf = nil
	return err
}

// Angles returns the projection angles, in degrees, sampled every step
// degrees over [0, 360).
func Angles(step float64) ([]float64, error) {
	if !(step > 0) || step > 360 {
		return nil, fmt.Errorf("angle step must be in (0, 360], got %v", step)
	}
	n := int(math.Ceil(360/step - 1e-9))
	angles := make([]float64, n)
	for i := range angles {
		angles[i] = float64(i) * step
	}
	return angles, nil
}

// Generator produces sinograms on a backend
type Generator struct {
	backend backend.Backend
	angles  []float64
	log     *logging.Logger
}

// NewGenerator creates a generator sampling the given angles
func NewGenerator(b backend.Backend, angles []float64, log *logging.Logger) *Generator {
	if log == nil {
		log = logging.Discard()
	}
	return &Generator{
		backend: b,
		angles:  append([]float64(nil), angles...),
		log:     log,
	}
}

// Angles returns the sampled projection angles
func (g *Generator) Angles() []float64 { return g.angles }

// Generate computes the sinogram of img under t: column j holds t applied to
// every projection line of img rotated by the j-th angle.
//
// The image is uploaded into a buffer private to this call, so concurrent
// calls never share device memory. Any backend failure aborts the whole
// sinogram; no partial result is returned.
func (g *Generator) Generate(img *models.Image, t functional.T) (*Sinogram, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if len(g.angles) == 0 {
		return nil, fmt.Errorf("no projection angles to sample")
	}

	in, err := g.backend.Allocate(backend.Matrix(img.Height, img.Width))
	if err != nil {
		return nil, fmt.Errorf("failed to allocate image: %w", err)
	}
	defer g.backend.Free(in)

	if err := g.backend.Upload(in, img.Data); err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	out, err := g.backend.Allocate(backend.Matrix(img.Width, len(g.angles)))
	if err != nil {
		return nil, fmt.Errorf("failed to allocate sinogram: %w", err)
	}

	for j, angle := range g.angles {
		k := backend.TraceKernel{Functional: t, Angle: angle, Column: j}
		if err := g.backend.Launch(k, in, out); err != nil {
			g.backend.Free(out)
			return nil, fmt.Errorf("failed to trace %s at %.2f degrees: %w", t.Name(), angle, err)
		}
	}

	g.log.Debugf("Generated %s sinogram (%dx%d)", t.Name(), img.Width, len(g.angles))
	return Wrap(out), nil
}
