package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stojg/empirical/fit"
)

const (
	plotBest = "best"
	plotAll  = "all"
)

// Config holds the settings read from the --config file.
type Config struct {
	Region         string     `yaml:"region"`
	Bucket         string     `yaml:"bucket"`
	MaxEvaluations int        `yaml:"max_evaluations"`
	Plot           PlotConfig `yaml:"plot"`
}

// PlotConfig sizes are in points.
type PlotConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Format string  `yaml:"format"`
	Mode   string  `yaml:"mode"`
}

func defaultConfig() Config {
	return Config{
		Region:         "ap-southeast-2",
		MaxEvaluations: fit.DefaultMaxEvaluations,
		Plot: PlotConfig{
			// w/h - A4 (1:1.414)
			Width:  1024,
			Height: 1024 * (1 / 1.414),
			Format: "png",
			Mode:   plotBest,
		},
	}
}

// loadConfig reads path over the defaults. An empty path yields the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("could not read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("could not parse config %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.MaxEvaluations <= 0 {
		return fmt.Errorf("max_evaluations must be positive, got %d", c.MaxEvaluations)
	}
	if c.Plot.Width <= 0 || c.Plot.Height <= 0 {
		return fmt.Errorf("plot size must be positive, got %gx%g", c.Plot.Width, c.Plot.Height)
	}
	switch c.Plot.Format {
	case "png", "svg", "pdf", "jpg", "jpeg", "eps", "tif", "tiff":
	default:
		return fmt.Errorf("unsupported plot format %q", c.Plot.Format)
	}
	if c.Plot.Mode != plotBest && c.Plot.Mode != plotAll {
		return fmt.Errorf("plot mode must be %q or %q, got %q", plotBest, plotAll, c.Plot.Mode)
	}
	return nil
}
