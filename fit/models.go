package fit

import (
	"fmt"
	"math"
	"strings"
)

// Kind tags a model shape in the catalog.
type Kind int

const (
	Linear Kind = iota
	Quadratic
	Power
	Exponential
	Logarithmic
)

// logFloor replaces non-positive x before taking the logarithm.
const logFloor = 1e-10

func (k Kind) String() string {
	switch k {
	case Linear:
		return "Linear"
	case Quadratic:
		return "Quadratic"
	case Power:
		return "Power"
	case Exponential:
		return "Exponential"
	case Logarithmic:
		return "Logarithmic"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Model is a candidate regression form.
type Model struct {
	Kind     Kind
	Name     string
	Params   int
	Template string
	// Initial is the starting point handed to the solver.
	Initial []float64
}

var catalog = []Model{
	{Kind: Linear, Name: "Linear", Params: 2, Template: "y = {a}x + {b}", Initial: []float64{1, 1}},
	{Kind: Quadratic, Name: "Quadratic", Params: 3, Template: "y = {a}x² + {b}x + {c}", Initial: []float64{1, 1, 1}},
	{Kind: Power, Name: "Power", Params: 2, Template: "y = {a}x^{b}", Initial: []float64{1, 1}},
	{Kind: Exponential, Name: "Exponential", Params: 2, Template: "y = {a}e^({b}x)", Initial: []float64{1, 0.5}},
	{Kind: Logarithmic, Name: "Logarithmic", Params: 2, Template: "y = {a} + {b}·ln(x)", Initial: []float64{1, 1}},
}

// Catalog returns the candidate models in evaluation order.
func Catalog() []Model {
	out := make([]Model, len(catalog))
	for i, m := range catalog {
		m.Initial = append([]float64(nil), m.Initial...)
		out[i] = m
	}
	return out
}

// Eval computes the model at x for the parameters p.
func (m Model) Eval(x float64, p []float64) float64 {
	switch m.Kind {
	case Linear:
		return p[0]*x + p[1]
	case Quadratic:
		return p[0]*x*x + p[1]*x + p[2]
	case Power:
		return p[0] * math.Pow(x, p[1])
	case Exponential:
		return p[0] * math.Exp(p[1]*x)
	case Logarithmic:
		if x <= 0 {
			x = logFloor
		}
		return p[0] + p[1]*math.Log(x)
	}
	panic(fmt.Sprintf("fit: unknown model kind %d", int(m.Kind)))
}

// Applicable reports whether the model's domain admits every x.
func (m Model) Applicable(x []float64) bool {
	if m.Kind != Logarithmic {
		return true
	}
	for _, v := range x {
		if v <= 0 {
			return false
		}
	}
	return true
}

var paramNames = []string{"a", "b", "c"}

// Equation renders the display template with p formatted to six decimals.
func (m Model) Equation(p []float64) string {
	pairs := make([]string, 0, 2*len(p))
	for i, v := range p {
		if i >= len(paramNames) {
			break
		}
		pairs = append(pairs, "{"+paramNames[i]+"}", formatParam(v))
	}
	return strings.NewReplacer(pairs...).Replace(m.Template)
}

func formatParam(v float64) string {
	s := fmt.Sprintf("%.6f", v)
	if s == "-0.000000" {
		return "0.000000"
	}
	return s
}
