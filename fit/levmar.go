package fit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrMaxEvaluations  = errors.New("maximum number of function evaluations exceeded")
	ErrNonFinite       = errors.New("non-finite residual or jacobian")
	ErrSingular        = errors.New("normal equations could not be solved")
	ErrUnderdetermined = errors.New("fewer observations than parameters")
)

const (
	// DefaultMaxEvaluations bounds the residual evaluations spent on one model.
	DefaultMaxEvaluations = 5000

	tolerance      = 1.49012e-8
	initialDamping = 1e-3
	minDamping     = 1e-12
	maxDamping     = 1e32
	minDiagonal    = 1e-12
)

// residualFunc writes f(x_i; p) - y_i into dst.
type residualFunc func(dst, p []float64)

type levenbergMarquardt struct {
	maxEvaluations int
	ftol           float64
	xtol           float64
}

func newLevenbergMarquardt(maxEvaluations int) levenbergMarquardt {
	if maxEvaluations <= 0 {
		maxEvaluations = DefaultMaxEvaluations
	}
	return levenbergMarquardt{
		maxEvaluations: maxEvaluations,
		ftol:           tolerance,
		xtol:           tolerance,
	}
}

type solution struct {
	params      []float64
	cost        float64
	evaluations int
	iterations  int
}

// solve minimises the sum of squared residuals over m observations starting from p0.
func (lm levenbergMarquardt) solve(f residualFunc, m int, p0 []float64) (solution, error) {
	n := len(p0)
	s := solution{params: append([]float64(nil), p0...)}
	if m < n {
		return s, fmt.Errorf("%w: %d points for %d parameters", ErrUnderdetermined, m, n)
	}

	evaluate := func(dst, p []float64) {
		s.evaluations++
		f(dst, p)
	}

	r := make([]float64, m)
	evaluate(r, s.params)
	s.cost = floats.Dot(r, r)
	if !isFinite(s.cost) {
		return s, ErrNonFinite
	}

	var (
		jac    = mat.NewDense(m, n, nil)
		damped = mat.NewSymDense(n, nil)
		step   = mat.NewVecDense(n, nil)
		trial  = make([]float64, n)
		rTrial = make([]float64, m)
		jtj    mat.SymDense
		jstep  mat.VecDense
		grad   mat.VecDense
		chol   mat.Cholesky
		lambda = initialDamping
	)

	for {
		if s.cost == 0 {
			return s, nil
		}
		s.iterations++

		fd.Jacobian(jac, evaluate, s.params, &fd.JacobianSettings{OriginValue: r})
		if !allFinite(jac.RawMatrix().Data) {
			return s, ErrNonFinite
		}
		jtj.Reset()
		jtj.SymOuterK(1, jac.T())
		grad.MulVec(jac.T(), mat.NewVecDense(m, r))

		for {
			if s.evaluations >= lm.maxEvaluations {
				return s, fmt.Errorf("%w: %d", ErrMaxEvaluations, lm.maxEvaluations)
			}

			damped.CopySym(&jtj)
			for i := 0; i < n; i++ {
				d := math.Max(jtj.At(i, i), minDiagonal)
				damped.SetSym(i, i, jtj.At(i, i)+lambda*d)
			}

			if !lm.solveStep(&chol, damped, step, &grad) {
				lambda *= 10
				if lambda > maxDamping {
					return s, ErrSingular
				}
				continue
			}

			for i := range trial {
				trial[i] = s.params[i] + step.AtVec(i)
			}
			evaluate(rTrial, trial)
			cost := floats.Dot(rTrial, rTrial)
			small := floats.Norm(step.RawVector().Data, 2) <= lm.xtol*(lm.xtol+floats.Norm(s.params, 2))

			if isFinite(cost) && cost < s.cost {
				jstep.MulVec(jac, step)
				predicted := s.cost - linearizedCost(r, jstep.RawVector().Data)
				reduction := s.cost - cost
				previous := s.cost
				copy(s.params, trial)
				copy(r, rTrial)
				s.cost = cost
				lambda = math.Max(lambda/10, minDamping)
				if (reduction <= lm.ftol*previous && predicted <= lm.ftol*previous) || small {
					return s, nil
				}
				break
			}

			// No step this short can improve the cost; p is a local minimum.
			if small {
				return s, nil
			}
			lambda *= 10
			if lambda > maxDamping {
				return s, ErrSingular
			}
		}
	}
}

// solveStep writes the Levenberg-Marquardt step -A⁻¹g into step.
func (lm levenbergMarquardt) solveStep(chol *mat.Cholesky, a *mat.SymDense, step, grad *mat.VecDense) bool {
	if !chol.Factorize(a) {
		return false
	}
	if err := chol.SolveVecTo(step, grad); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return false
		}
	}
	step.ScaleVec(-1, step)
	return allFinite(step.RawVector().Data)
}

// linearizedCost is ||r + Jδ||², the cost the linear model predicts after a step.
func linearizedCost(r, jstep []float64) float64 {
	s := 0.0
	for i := range r {
		d := r[i] + jstep[i]
		s += d * d
	}
	return s
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(s []float64) bool {
	for _, v := range s {
		if !isFinite(v) {
			return false
		}
	}
	return true
}
