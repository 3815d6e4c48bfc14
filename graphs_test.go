package main

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stojg/empirical/fit"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestPlotFits(t *testing.T) {
	results, err := fit.Models(defaultObservations.x, defaultObservations.y)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	for _, mode := range []string{plotBest, plotAll} {
		t.Run(mode, func(t *testing.T) {
			p := createPlot("sample")
			require.NoError(t, plotFits(p, defaultObservations, results, mode))

			var buf bytes.Buffer
			require.NoError(t, writePlot(&buf, p, 400, 300, "png"))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
		})
	}
}

func TestWritePlotUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, writePlot(&buf, createPlot("x"), 100, 100, "bmp"))
}

func TestCurveRange(t *testing.T) {
	lo, hi := curveRange([]float64{1, 4, 2})
	assert.InDelta(t, 0.9, lo, 1e-12)
	assert.InDelta(t, 4.4, hi, 1e-12)

	lo, hi = curveRange([]float64{-2, 3})
	assert.InDelta(t, -2.2, lo, 1e-12)
	assert.InDelta(t, 3.3, hi, 1e-12)
}

func TestCurveXYsDropsNonFinite(t *testing.T) {
	logarithmic := fit.Catalog()[4]
	r := fit.Result{Model: logarithmic, Params: []float64{0, 1}}

	pts := curveXYs(r, -1, 1, 5)
	require.Len(t, pts, 5)
	assert.Equal(t, -1.0, pts[0].X)
	assert.Equal(t, 1.0, pts[4].X)

	power := fit.Result{Model: fit.Catalog()[2], Params: []float64{1, 0.5}}
	pts = curveXYs(power, -1, 1, 5)
	for _, p := range pts {
		assert.False(t, math.IsNaN(p.Y))
		assert.GreaterOrEqual(t, p.X, 0.0)
	}
	assert.Len(t, pts, 3)
}
