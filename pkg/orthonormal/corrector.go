// Package orthonormal replaces a sinogram by the nearest orthonormal matrix of
// its column-aligned version, the input required by the Hermite circus
// functionals.
package orthonormal

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"tracetransform/pkg/backend"
	"tracetransform/pkg/kernels"
	"tracetransform/pkg/logging"
	"tracetransform/pkg/sinogram"
)

var (
	// ErrDegenerateAlignment is returned when every column's weighted
	// median lies strictly on the same side of the sinogram center
	ErrDegenerateAlignment = errors.New("degenerate sinogram alignment")

	// ErrFactorization is returned when the singular value decomposition
	// does not converge
	ErrFactorization = errors.New("singular value decomposition failed")
)

// Result is a corrected sinogram together with its alignment
type Result struct {
	// Sinogram is the nearest orthonormal sinogram, a new device buffer
	Sinogram *sinogram.Sinogram

	// Center is the row every column's weighted median was moved to
	Center int

	// Offsets is the displacement of each column's weighted median from
	// the nominal center of the input
	Offsets []int

	// Padding is the number of rows added by the alignment
	Padding int
}

// Corrector orthonormalizes sinograms
type Corrector struct {
	backend backend.Backend
	log     *logging.Logger
}

// NewCorrector creates a corrector working on the given backend
func NewCorrector(b backend.Backend, log *logging.Logger) *Corrector {
	if log == nil {
		log = logging.Discard()
	}
	return &Corrector{backend: b, log: log}
}

// Correct computes the nearest orthonormal sinogram of the aligned input.
// The input is left untouched; the caller keeps ownership of it.
func (c *Corrector) Correct(s *sinogram.Sinogram) (*Result, error) {
	host, err := s.Host(c.backend)
	if err != nil {
		return nil, err
	}

	offsets := ColumnOffsets(host)
	aligned, shift, err := Align(host, offsets)
	if err != nil {
		return nil, err
	}
	nearest, err := NearestOrthonormal(aligned)
	if err != nil {
		return nil, err
	}

	out, err := sinogram.Upload(c.backend, nearest)
	if err != nil {
		return nil, err
	}

	rows, _ := aligned.Dims()
	res := &Result{
		Sinogram: out,
		Center:   Center(s.Rows()) + shift,
		Offsets:  offsets,
		Padding:  rows - s.Rows(),
	}
	c.log.Debugf("Orthonormalized sinogram: %d rows padded to %d, center row %d",
		s.Rows(), rows, res.Center)
	return res, nil
}

// Center is the nominal center row of a sinogram with the given row count
func Center(rows int) int {
	return int(math.Floor(float64(rows-1) / 2))
}

// ColumnOffsets returns, for every column, the signed distance between its
// weighted median row and the nominal center row.
func ColumnOffsets(m mat.Matrix) []int {
	rows, cols := m.Dims()
	center := Center(rows)
	offsets := make([]int, cols)
	column := make([]float64, rows)
	for j := range offsets {
		mat.Col(column, j, m)
		offsets[j] = kernels.WeightedMedian(column) - center
	}
	return offsets
}

// Align shifts every column so that all weighted medians land on one row.
//
// With min and max the extreme offsets, the result has max-min extra rows
// and sample (i, j) moves to row max+i-offsets[j]. It returns the aligned
// matrix and max, the displacement of the center row. The offsets must
// straddle the center (min <= 0 <= max).
func Align(m mat.Matrix, offsets []int) (*mat.Dense, int, error) {
	rows, cols := m.Dims()
	if len(offsets) != cols {
		return nil, 0, fmt.Errorf("got %d offsets for %d columns", len(offsets), cols)
	}
	if cols == 0 {
		return nil, 0, fmt.Errorf("%w: sinogram has no columns", ErrDegenerateAlignment)
	}

	lo, hi := offsets[0], offsets[0]
	for _, o := range offsets[1:] {
		lo = min(lo, o)
		hi = max(hi, o)
	}
	if lo > 0 || hi < 0 {
		return nil, 0, fmt.Errorf("%w: column offsets range over [%d, %d]", ErrDegenerateAlignment, lo, hi)
	}

	padding := hi - lo
	aligned := mat.NewDense(rows+padding, cols, nil)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			aligned.Set(hi+i-offsets[j], j, m.At(i, j))
		}
	}
	return aligned, hi, nil
}

// NearestOrthonormal returns U·I·Vᵀ for the full singular value decomposition
// U·Σ·Vᵀ of m, with I the identity of m's (generally rectangular) shape. This
// is the matrix with orthonormal columns (or rows) closest to m in Frobenius
// norm; the singular values are discarded.
func NearestOrthonormal(m mat.Matrix) (*mat.Dense, error) {
	rows, cols := m.Dims()

	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDFull); !ok {
		return nil, ErrFactorization
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	identity := mat.NewDense(rows, cols, nil)
	for i := 0; i < min(rows, cols); i++ {
		identity.Set(i, i, 1)
	}

	var nearest mat.Dense
	nearest.Product(&u, identity, v.T())
	return &nearest, nil
}
