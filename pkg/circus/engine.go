// Package circus reduces sinogram columns with P-functionals and assembles
// the resulting circus functions into the feature matrix.
package circus

import (
	"fmt"

	"tracetransform/internal/models"
	"tracetransform/pkg/backend"
	"tracetransform/pkg/functional"
	"tracetransform/pkg/logging"
	"tracetransform/pkg/sinogram"
)

// Engine evaluates circus functions on a backend
type Engine struct {
	backend backend.Backend
	log     *logging.Logger
}

// NewEngine creates an engine working on the given backend
func NewEngine(b backend.Backend, log *logging.Logger) *Engine {
	if log == nil {
		log = logging.Discard()
	}
	return &Engine{backend: b, log: log}
}

// Evaluate applies p to every column of s and returns one value per column.
// center is the alignment row reported by the orthonormal corrector; it is
// only consulted by orthonormal functionals. s is not modified, so several
// functionals may be evaluated against the same sinogram.
func (e *Engine) Evaluate(s *sinogram.Sinogram, p functional.P, center int) ([]float64, error) {
	out, err := e.backend.Allocate(backend.Vector(s.Cols()))
	if err != nil {
		return nil, fmt.Errorf("failed to allocate circus function: %w", err)
	}
	defer e.backend.Free(out)

	k := backend.CircusKernel{Functional: p, Center: center}
	if err := e.backend.Launch(k, s.Buffer(), out); err != nil {
		return nil, fmt.Errorf("failed to evaluate %s: %w", p.Name(), err)
	}

	values := make([]float64, s.Cols())
	if err := e.backend.Download(values, out); err != nil {
		return nil, fmt.Errorf("failed to download circus function: %w", err)
	}
	e.log.Tracef("Evaluated circus function %s over %d angles", p.Name(), len(values))
	return values, nil
}

// Assembler collects circus functions into a feature matrix. Column order is
// T-functional outer, P-functional inner.
type Assembler struct {
	ts     []functional.T
	ps     []functional.P
	matrix *models.FeatureMatrix
}

// NewAssembler prepares a feature matrix for every (T, P) combination
func NewAssembler(angles int, ts []functional.T, ps []functional.P) *Assembler {
	return &Assembler{
		ts:     ts,
		ps:     ps,
		matrix: models.NewFeatureMatrix(angles, Headers(ts, ps)),
	}
}

// Headers returns the "<T>-<P>" labels in feature matrix column order
func Headers(ts []functional.T, ps []functional.P) []string {
	headers := make([]string, 0, len(ts)*len(ps))
	for _, t := range ts {
		for _, p := range ps {
			headers = append(headers, functional.Label(t, p))
		}
	}
	return headers
}

// Column returns the feature matrix column of the ti-th T-functional and
// pi-th P-functional
func (a *Assembler) Column(ti, pi int) int {
	return ti*len(a.ps) + pi
}

// Set stores the circus function of the (ti, pi) combination
func (a *Assembler) Set(ti, pi int, values []float64) error {
	if ti < 0 || ti >= len(a.ts) || pi < 0 || pi >= len(a.ps) {
		return fmt.Errorf("combination (%d, %d) outside %dx%d functionals", ti, pi, len(a.ts), len(a.ps))
	}
	return a.matrix.SetColumn(a.Column(ti, pi), values)
}

// Matrix returns the assembled feature matrix
func (a *Assembler) Matrix() *models.FeatureMatrix {
	return a.matrix
}
