package fit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func model(t *testing.T, k Kind) Model {
	t.Helper()
	for _, m := range Catalog() {
		if m.Kind == k {
			return m
		}
	}
	t.Fatalf("kind %v not in catalog", k)
	return Model{}
}

func TestCatalogOrder(t *testing.T) {
	var kinds []Kind
	for _, m := range Catalog() {
		kinds = append(kinds, m.Kind)
		assert.Len(t, m.Initial, m.Params, m.Name)
	}
	assert.Equal(t, []Kind{Linear, Quadratic, Power, Exponential, Logarithmic}, kinds)
}

func TestCatalogReturnsCopy(t *testing.T) {
	c := Catalog()
	c[0].Initial[0] = 42
	c[0].Name = "changed"

	fresh := Catalog()
	assert.Equal(t, "Linear", fresh[0].Name)
	assert.Equal(t, 1.0, fresh[0].Initial[0])
}

func TestModelEval(t *testing.T) {
	tests := []struct {
		kind   Kind
		x      float64
		params []float64
		want   float64
	}{
		{Linear, 3, []float64{2, 1}, 7},
		{Quadratic, 2, []float64{1, -2, 3}, 3},
		{Power, 4, []float64{3, 0.5}, 6},
		{Exponential, 1, []float64{2, 1}, 2 * math.E},
		{Logarithmic, math.E, []float64{1, 2}, 3},
		{Logarithmic, 0, []float64{0, 1}, math.Log(logFloor)},
		{Logarithmic, -5, []float64{0, 1}, math.Log(logFloor)},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.InDelta(t, tt.want, model(t, tt.kind).Eval(tt.x, tt.params), 1e-12)
		})
	}
}

func TestModelApplicable(t *testing.T) {
	withZero := []float64{0, 1, 2}
	positive := []float64{0.5, 1, 2}

	assert.False(t, model(t, Logarithmic).Applicable(withZero))
	assert.False(t, model(t, Logarithmic).Applicable([]float64{1, -1}))
	assert.True(t, model(t, Logarithmic).Applicable(positive))
	for _, k := range []Kind{Linear, Quadratic, Power, Exponential} {
		assert.True(t, model(t, k).Applicable(withZero), k.String())
	}
}

func TestModelEquation(t *testing.T) {
	assert.Equal(t, "y = 2.000000x + 0.500000", model(t, Linear).Equation([]float64{2, 0.5}))
	assert.Equal(t, "y = 1.000000x² + -2.000000x + 3.250000", model(t, Quadratic).Equation([]float64{1, -2, 3.25}))
	assert.Equal(t, "y = 1.234568x^2.000000", model(t, Power).Equation([]float64{1.2345678, 2}))
	assert.Equal(t, "y = 1.000000e^(0.500000x)", model(t, Exponential).Equation([]float64{1, 0.5}))
	assert.Equal(t, "y = 1.000000 + 2.000000·ln(x)", model(t, Logarithmic).Equation([]float64{1, 2}))
}

func TestKindString(t *testing.T) {
	require.Equal(t, "Exponential", Exponential.String())
	require.Equal(t, "Kind(9)", Kind(9).String())
}
