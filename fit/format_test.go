package fit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	r := Result{
		Model:    Catalog()[0],
		Equation: "y = 2.000000x + 0.000000",
		SSE:      0.25,
		RMSE:     0.5,
		MAE:      0.125,
		RSquared: 0.9,
	}

	want := "Linear function:\n" +
		"Equation: y = 2.000000x + 0.000000\n" +
		"R² = 0.900000 (90.00%)\n" +
		"Sum of squared errors = 0.250000\n" +
		"Root mean squared error = 0.500000\n" +
		"Mean absolute error = 0.125000\n" +
		"Fit quality: very good\n" +
		strings.Repeat("-", 50) + "\n"
	assert.Equal(t, want, Format(r))
}

func TestFormatUndefinedRSquared(t *testing.T) {
	results, err := Models([]float64{1, 2, 3}, []float64{5, 5, 5})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	out := Format(results[0])
	assert.Contains(t, out, "R² = undefined\n")
	assert.NotContains(t, out, "NaN")
	assert.Contains(t, out, "Fit quality: indeterminate\n")
}

func TestReport(t *testing.T) {
	assert.Equal(t, "No model could be fitted.\n", Report(nil))

	results, err := Models(variantX, variantY)
	if err != nil {
		t.Fatal(err)
	}
	out := Report(results)

	assert.True(t, strings.HasPrefix(out, "* BEST MODEL *\n\n"+Format(results[0])))
	for i := range results {
		assert.Contains(t, out, "Place #"+string(rune('1'+i))+":\n")
	}
	assert.Equal(t, len(results)+1, strings.Count(out, strings.Repeat("-", 50)))
}
