// Package fit selects an empirical formula for a set of observations by
// fitting every candidate model with nonlinear least squares and ranking the
// fits by their sum of squared errors.
package fit

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
)

var (
	ErrInsufficientData = errors.New("at least 2 observations are required")
	ErrLengthMismatch   = errors.New("x and y must have the same length")
)

// Result is the outcome of fitting one model.
type Result struct {
	Model     Model
	Params    []float64
	Equation  string
	SSE       float64
	MSE       float64
	RMSE      float64
	MAE       float64
	RSquared  float64
	Predicted []float64

	Evaluations int
	Iterations  int
}

// Predict evaluates the fitted model at x.
func (r Result) Predict(x float64) float64 {
	return r.Model.Eval(x, r.Params)
}

// Fitter fits the model catalog against observation sets. The zero value is
// not usable; use NewFitter.
type Fitter struct {
	logger         *zap.Logger
	maxEvaluations int
	models         []Model
}

// Option configures a Fitter.
type Option func(*Fitter)

// WithLogger sets the logger receiving per-model diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(f *Fitter) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithMaxEvaluations caps the residual evaluations spent on each model.
func WithMaxEvaluations(n int) Option {
	return func(f *Fitter) {
		if n > 0 {
			f.maxEvaluations = n
		}
	}
}

// WithModels replaces the candidate models.
func WithModels(models ...Model) Option {
	return func(f *Fitter) {
		f.models = models
	}
}

func NewFitter(opts ...Option) *Fitter {
	f := &Fitter{
		logger:         zap.NewNop(),
		maxEvaluations: DefaultMaxEvaluations,
		models:         Catalog(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Models fits the full catalog with default settings and returns the
// converged fits, best first.
func Models(x, y []float64) ([]Result, error) {
	return NewFitter().Fit(x, y)
}

// Fit fits every model against (x, y) and returns the ranked results. Models
// that do not apply to the data or fail to converge are left out, so the
// result may be empty.
func (f *Fitter) Fit(x, y []float64) ([]Result, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: got %d x and %d y values", ErrLengthMismatch, len(x), len(y))
	}
	if len(x) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientData, len(x))
	}

	solver := newLevenbergMarquardt(f.maxEvaluations)
	sst := computeSST(y)

	results := make([]Result, 0, len(f.models))
	for _, m := range f.models {
		if !m.Applicable(x) {
			f.logger.Debug("model not applicable", zap.String("model", m.Name))
			continue
		}
		res, err := f.fitModel(solver, m, x, y, sst)
		if err != nil {
			f.logger.Debug("model skipped", zap.String("model", m.Name), zap.Error(err))
			continue
		}
		f.logger.Debug("model fitted",
			zap.String("model", m.Name),
			zap.Float64s("params", res.Params),
			zap.Float64("sse", res.SSE),
			zap.Int("evaluations", res.Evaluations),
		)
		results = append(results, res)
	}

	Rank(results)
	return results, nil
}

func (f *Fitter) fitModel(solver levenbergMarquardt, m Model, x, y []float64, sst float64) (Result, error) {
	p0 := m.Initial
	if len(p0) != m.Params {
		p0 = make([]float64, m.Params)
		for i := range p0 {
			p0[i] = 1
		}
	}

	residuals := func(dst, p []float64) {
		for i := range x {
			dst[i] = m.Eval(x[i], p) - y[i]
		}
	}

	sol, err := solver.solve(residuals, len(x), p0)
	if err != nil {
		return Result{}, err
	}

	pred := make([]float64, len(x))
	for i := range x {
		pred[i] = m.Eval(x[i], sol.params)
	}
	sse := computeSSE(y, pred)
	if !isFinite(sse) {
		return Result{}, ErrNonFinite
	}
	if sse <= noiseFloor(y) {
		sse = 0
	}
	mse := sse / float64(len(y))

	return Result{
		Model:       m,
		Params:      sol.params,
		Equation:    m.Equation(sol.params),
		SSE:         sse,
		MSE:         mse,
		RMSE:        math.Sqrt(mse),
		MAE:         computeMAE(y, pred),
		RSquared:    computeRSquared(sse, sst),
		Predicted:   pred,
		Evaluations: sol.evaluations,
		Iterations:  sol.iterations,
	}, nil
}
