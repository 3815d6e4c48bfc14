package fit

import (
	"math"
	"sort"
)

// Rank orders results by ascending SSE. Results with equal SSE keep their
// catalog order.
func Rank(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SSE < results[j].SSE
	})
}

// Best returns the first result of a ranked list.
func Best(results []Result) (Result, bool) {
	if len(results) == 0 {
		return Result{}, false
	}
	return results[0], true
}

// Quality grades a fit by its coefficient of determination.
type Quality int

const (
	Poor Quality = iota
	Satisfactory
	Good
	VeryGood
	Excellent
	Indeterminate
)

func (q Quality) String() string {
	switch q {
	case Excellent:
		return "excellent"
	case VeryGood:
		return "very good"
	case Good:
		return "good"
	case Satisfactory:
		return "satisfactory"
	case Indeterminate:
		return "indeterminate"
	}
	return "poor"
}

// Classify maps R² into a quality band. Band boundaries belong to the lower band.
func Classify(r2 float64) Quality {
	switch {
	case math.IsNaN(r2):
		return Indeterminate
	case r2 > 0.95:
		return Excellent
	case r2 > 0.85:
		return VeryGood
	case r2 > 0.70:
		return Good
	case r2 > 0.50:
		return Satisfactory
	}
	return Poor
}

// Quality grades the fit by its R².
func (r Result) Quality() Quality {
	return Classify(r.RSquared)
}
