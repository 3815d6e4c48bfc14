package fit

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// relativeNoise is the RMSE, relative to the magnitude of y, below which a
// fit is exact up to rounding.
const relativeNoise = 1e-7

// noiseFloor is the SSE of a fit whose RMSE is relativeNoise·max(1, max|y|).
func noiseFloor(y []float64) float64 {
	scale := math.Max(1, math.Max(math.Abs(floats.Max(y)), math.Abs(floats.Min(y))))
	e := relativeNoise * scale
	return float64(len(y)) * e * e
}

// Sum Square Errors
func computeSSE(y, yPred []float64) float64 {
	s := 0.0
	for i := range y {
		d := y[i] - yPred[i]
		s += d * d
	}
	return s
}

// Sum Square of Total
func computeSST(y []float64) float64 {
	m := stat.Mean(y, nil)
	s := 0.0
	for i := range y {
		d := y[i] - m
		s += d * d
	}
	return s
}

// Mean Absolute Error
func computeMAE(y, yPred []float64) float64 {
	s := 0.0
	for i := range y {
		s += math.Abs(y[i] - yPred[i])
	}
	return s / float64(len(y))
}

// computeRSquared returns NaN when y is constant, since the explained
// fraction of zero variance is undefined.
func computeRSquared(sse, sst float64) float64 {
	if sst == 0 {
		return math.NaN()
	}
	return 1 - sse/sst
}
