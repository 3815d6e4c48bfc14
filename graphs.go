package main

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/stojg/empirical/fit"
)

const curveSamples = 200

var curveColors = []color.RGBA{
	{R: 220, G: 20, B: 20, A: 255},  // red
	{R: 20, G: 60, B: 230, A: 255},  // blue
	{R: 20, G: 160, B: 40, A: 255},  // green
	{R: 255, G: 140, B: 0, A: 255},  // orange
	{R: 130, G: 30, B: 170, A: 255}, // purple
	{R: 140, G: 80, B: 30, A: 255},  // brown
}

// plotFits draws the observations and the fitted curves of results, which
// must be ranked. Mode plotBest draws only the first result.
func plotFits(p *plot.Plot, data xy, results []fit.Result, mode string) error {
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	points, err := plotter.NewScatter(data)
	if err != nil {
		return fmt.Errorf("could not create scatter plot: %v", err)
	}
	points.GlyphStyle.Shape = draw.CircleGlyph{}
	points.GlyphStyle.Radius = vg.Points(3)
	points.Color = color.RGBA{A: 255}
	p.Legend.Add("observations", points)
	p.Add(points)

	if mode == plotBest && len(results) > 1 {
		results = results[:1]
	}
	if len(results) > len(curveColors) {
		results = results[:len(curveColors)]
	}

	lo, hi := curveRange(data.x)
	for i, r := range results {
		line, err := addFitLine(p, r, lo, hi)
		if err != nil {
			return err
		}
		if line == nil {
			continue
		}
		line.Color = curveColors[i]
		line.Width = vg.Points(2)
		p.Legend.Add(fmt.Sprintf("%s (R²=%.4f)", r.Model.Name, r.RSquared), line)
	}

	addLabel(p, fmt.Sprintf("data points: %d", data.Len()))
	return nil
}

func addLabel(p *plot.Plot, text string) {
	p.Legend.Add(text)
}

// curveRange widens [min x, max x] by a tenth of each bound's magnitude.
func curveRange(x []float64) (lo, hi float64) {
	lo, hi = floats.Min(x), floats.Max(x)
	return lo - 0.1*math.Abs(lo), hi + 0.1*math.Abs(hi)
}

// curveXYs samples r over [lo, hi], dropping points the model cannot evaluate.
func curveXYs(r fit.Result, lo, hi float64, samples int) plotter.XYs {
	pts := make(plotter.XYs, 0, samples)
	for i := 0; i < samples; i++ {
		x := lo
		if samples > 1 {
			x = lo + (hi-lo)*float64(i)/float64(samples-1)
		}
		y := r.Predict(x)
		if math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: x, Y: y})
	}
	return pts
}

// addFitLine returns nil when the model has no finite value in range.
func addFitLine(p *plot.Plot, r fit.Result, lo, hi float64) (*plotter.Line, error) {
	pts := curveXYs(r, lo, hi, curveSamples)
	if len(pts) == 0 {
		return nil, nil
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("could not create %s line: %v", r.Model.Name, err)
	}
	p.Add(l)
	return l, nil
}

func createPlot(label string) *plot.Plot {
	p := plot.New()
	p.Title.Text = label
	p.Legend.Left = true
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	return p
}

func writePlot(w io.Writer, p *plot.Plot, width, height vg.Length, format string) error {
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return fmt.Errorf("could not create writer: %v", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("could not write plot: %v", err)
	}
	return nil
}
