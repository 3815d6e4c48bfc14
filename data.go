package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// xy is an observation set. It satisfies plotter.XYer.
type xy struct{ x, y []float64 }

func (a xy) Len() int                { return len(a.x) }
func (a xy) XY(i int) (x, y float64) { return a.x[i], a.y[i] }

// defaultObservations is the sample dataset used when no data is supplied.
var defaultObservations = xy{
	x: []float64{1, 1.3, 1.6, 1.9, 2.2, 2.5, 2.8, 3.1, 3.4, 3.7, 4},
	y: []float64{1.000, 1.428, 2.090, 2.968, 4.052, 5.334, 6.810, 8.479, 10.336, 12.382, 14.614},
}

var errRaggedData = errors.New("x and y must have the same number of values")

// loadObservations reads a .yaml/.yml file with x and y lists, or a two
// column CSV file with an optional header row.
func loadObservations(path string) (xy, error) {
	f, err := os.Open(path)
	if err != nil {
		return xy{}, fmt.Errorf("could not open %s: %w", path, err)
	}
	defer f.Close()

	var data xy
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = parseYAML(f)
	default:
		data, err = parseCSV(f)
	}
	if err != nil {
		return xy{}, fmt.Errorf("could not load %s: %w", path, err)
	}
	return data, nil
}

func parseCSV(r io.Reader) (xy, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var data xy
	for record := 1; ; record++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return xy{}, err
		}
		x, xErr := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		y, yErr := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if xErr != nil || yErr != nil {
			if record == 1 {
				continue // header
			}
			return xy{}, fmt.Errorf("record %d: non-numeric value in %q", record, strings.Join(rec, ","))
		}
		data.x = append(data.x, x)
		data.y = append(data.y, y)
	}
	return data, nil
}

func parseYAML(r io.Reader) (xy, error) {
	var doc struct {
		X []float64 `yaml:"x"`
		Y []float64 `yaml:"y"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return xy{}, err
	}
	if len(doc.X) != len(doc.Y) {
		return xy{}, fmt.Errorf("%w: %d x, %d y", errRaggedData, len(doc.X), len(doc.Y))
	}
	return xy{x: doc.X, y: doc.Y}, nil
}

// parseValues reads comma separated x and y lists given on the command line.
func parseValues(xs, ys string) (xy, error) {
	x, err := parseList(xs)
	if err != nil {
		return xy{}, fmt.Errorf("x: %w", err)
	}
	y, err := parseList(ys)
	if err != nil {
		return xy{}, fmt.Errorf("y: %w", err)
	}
	if len(x) != len(y) {
		return xy{}, fmt.Errorf("%w: %d x, %d y", errRaggedData, len(x), len(y))
	}
	return xy{x: x, y: y}, nil
}

func parseList(s string) ([]float64, error) {
	var out []float64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", field)
		}
		out = append(out, v)
	}
	return out, nil
}
