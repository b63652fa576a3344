// Package tracetransform runs the complete trace transform pipeline: one
// sinogram per T-functional, optional orthonormal correction, and one circus
// function per P-functional, assembled into a feature matrix.
package tracetransform

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"tracetransform/internal/models"
	"tracetransform/pkg/backend"
	"tracetransform/pkg/circus"
	"tracetransform/pkg/functional"
	"tracetransform/pkg/interpolation"
	"tracetransform/pkg/logging"
	"tracetransform/pkg/orthonormal"
	"tracetransform/pkg/sinogram"
)

// Stage names passed to Params.OnSinogram
const (
	StageRaw       = "raw"
	StageCorrected = "corrected"
)

// Params holds the transform configuration.
type Params struct {
	// AngleStep is the angular sampling step in degrees. The default of 1
	// samples 360 projection angles.
	AngleStep float64

	// Parallel evaluates the T-functionals concurrently. Every T-functional
	// then works on its own image upload and its own sinograms.
	Parallel bool

	// OnSinogram, when set, receives a host copy of every sinogram the run
	// produces, tagged with StageRaw or StageCorrected. It is called from
	// the goroutine evaluating t.
	OnSinogram func(t functional.T, stage string, m *mat.Dense)
}

// Transformer runs trace transforms on a backend.
//
// The pipeline per T-functional is:
//  1. Generate the sinogram of the padded image
//  2. In the orthonormal regime, replace it by its nearest orthonormal sinogram
//  3. Evaluate every P-functional on it
//
// after which the circus functions are assembled into the feature matrix.
type Transformer struct {
	backend backend.Backend
	params  Params
	angles  []float64
	log     *logging.Logger

	generator *sinogram.Generator
	corrector *orthonormal.Corrector
	engine    *circus.Engine
}

// NewTransformer creates a transformer with the provided parameters
func NewTransformer(b backend.Backend, params *Params, log *logging.Logger) (*Transformer, error) {
	if b == nil {
		return nil, fmt.Errorf("a compute backend is required")
	}
	if params == nil {
		params = &Params{}
	}
	if log == nil {
		log = logging.Discard()
	}
	p := *params
	if p.AngleStep == 0 {
		p.AngleStep = 1
	}
	angles, err := sinogram.Angles(p.AngleStep)
	if err != nil {
		return nil, err
	}

	return &Transformer{
		backend:   b,
		params:    p,
		angles:    angles,
		log:       log,
		generator: sinogram.NewGenerator(b, angles, log),
		corrector: orthonormal.NewCorrector(b, log),
		engine:    circus.NewEngine(b, log),
	}, nil
}

// Angles returns the sampled projection angles in degrees
func (tr *Transformer) Angles() []float64 {
	return tr.angles
}

// Transform computes the feature matrix of img for every (T, P) combination.
//
// The selection is validated before the backend is touched: an empty
// T-functional list, a mix of orthonormal and regular P-functionals or an
// invalid image fail without any device work. Any later failure aborts the
// whole run and no partial feature matrix is returned.
func (tr *Transformer) Transform(img *models.Image, ts []functional.T, ps []functional.P) (*models.FeatureMatrix, error) {
	regime, err := validate(img, ts, ps)
	if err != nil {
		return nil, &PipelineError{State: StateValidationFailed, Err: err}
	}
	tr.log.Debugf("Transforming %dx%d image with %d T- and %d %s P-functionals over %d angles",
		img.Width, img.Height, len(ts), len(ps), regime, len(tr.angles))

	padded := interpolation.PadToDiagonal(img)
	tr.log.Debugf("Padded image to %dx%d", padded.Width, padded.Height)

	traces := make([][][]float64, len(ts))
	if tr.params.Parallel && len(ts) > 1 {
		var g errgroup.Group
		for ti, t := range ts {
			g.Go(func() error {
				cols, err := tr.trace(padded, t, ps, regime)
				traces[ti] = cols
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for ti, t := range ts {
			cols, err := tr.trace(padded, t, ps, regime)
			if err != nil {
				return nil, err
			}
			traces[ti] = cols
		}
	}

	tr.log.Debugf("State %s", StateAssemble)
	asm := circus.NewAssembler(len(tr.angles), ts, ps)
	for ti := range ts {
		for pi := range ps {
			if err := asm.Set(ti, pi, traces[ti][pi]); err != nil {
				return nil, &PipelineError{State: StateBackendFailed, Stage: StateAssemble, Err: err}
			}
		}
	}

	fm := asm.Matrix()
	tr.logSummary(fm)
	tr.log.Debugf("State %s", StateDone)
	return fm, nil
}

// trace runs the per-T-functional part of the pipeline and returns one
// circus function per P-functional. Every device buffer it creates is
// released before it returns.
func (tr *Transformer) trace(img *models.Image, t functional.T, ps []functional.P, regime functional.Regime) ([][]float64, error) {
	tr.log.Infof("Calculating %s sinogram...", t.Name())
	sino, err := tr.generator.Generate(img, t)
	if err != nil {
		return nil, fail(StateGenerate, t, err)
	}
	defer func() { sino.Release(tr.backend) }()
	tr.emit(t, StageRaw, sino)

	center := 0
	if regime == functional.Orthonormal {
		tr.log.Infof("Orthonormalizing %s sinogram...", t.Name())
		res, err := tr.corrector.Correct(sino)
		if err != nil {
			return nil, fail(StateCorrect, t, err)
		}
		// hand ownership to the corrected sinogram
		if err := sino.Release(tr.backend); err != nil {
			res.Sinogram.Release(tr.backend)
			return nil, fail(StateCorrect, t, err)
		}
		sino, center = res.Sinogram, res.Center
		tr.emit(t, StageCorrected, sino)
	}

	cols := make([][]float64, len(ps))
	for pi, p := range ps {
		tr.log.Debugf("Calculating circus function %s", functional.Label(t, p))
		values, err := tr.engine.Evaluate(sino, p, center)
		if err != nil {
			return nil, fail(StateReduce, t, err)
		}
		cols[pi] = values
	}
	return cols, nil
}

func (tr *Transformer) emit(t functional.T, stage string, s *sinogram.Sinogram) {
	if tr.params.OnSinogram == nil {
		return
	}
	host, err := s.Host(tr.backend)
	if err != nil {
		tr.log.Warnf("Failed to download %s %s sinogram: %v", stage, t.Name(), err)
		return
	}
	tr.params.OnSinogram(t, stage, host)
}

// logSummary reports the mean and spread of every feature column
func (tr *Transformer) logSummary(fm *models.FeatureMatrix) {
	if !tr.log.Enabled(logging.Debug) {
		return
	}
	for j, header := range fm.Headers {
		mean, std := stat.MeanStdDev(fm.Column(j), nil)
		tr.log.Debugf("%s: mean %.6g, std-dev %.6g", header, mean, std)
	}
}

func validate(img *models.Image, ts []functional.T, ps []functional.P) (functional.Regime, error) {
	if len(ts) == 0 {
		return functional.Regular, &functional.SpecError{Family: "T", Cause: functional.ErrNoTFunctionals}
	}
	regime, err := functional.ResolveRegime(ps)
	if err != nil {
		return functional.Regular, err
	}
	if err := img.Validate(); err != nil {
		return functional.Regular, fmt.Errorf("invalid input image: %w", err)
	}
	return regime, nil
}

// fail classifies an error raised while processing t
func fail(stage State, t functional.T, err error) error {
	state := StateBackendFailed
	if errors.Is(err, orthonormal.ErrDegenerateAlignment) || errors.Is(err, orthonormal.ErrFactorization) {
		state = StatePreconditionFailed
	}
	return &PipelineError{State: state, Stage: stage, Functional: t.Name(), Err: err}
}
