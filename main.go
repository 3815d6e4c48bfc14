package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"

	"github.com/stojg/empirical/fit"
)

// Exit codes
const (
	ExitError = 1 // usage, configuration or data error
	ExitNoFit = 2 // no model converged
)

var errNoFit = errors.New("no model could be fitted")

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errNoFit) {
			os.Exit(ExitNoFit)
		}
		os.Exit(ExitError)
	}
}

func execute() error {
	return newRootCommand().Execute()
}

// app carries the state shared by the subcommands once the root command has
// parsed its flags.
type app struct {
	cfg    Config
	logger *zap.Logger
	out    io.Writer
}

// outputOptions controls what happens to the results besides the report.
type outputOptions struct {
	plotPath string
	upload   bool
}

func newRootCommand() *cobra.Command {
	a := &app{}

	var (
		configPath     string
		debug          bool
		region         string
		maxEvaluations int
	)

	cmd := &cobra.Command{
		Use:   "empirical",
		Short: "Select the empirical formula that best fits a set of observations",
		Long: `empirical fits linear, quadratic, power, exponential and logarithmic
models to (x, y) observations with nonlinear least squares and ranks them by
their sum of squared errors.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("region") {
				cfg.Region = region
			}
			if cmd.Flags().Changed("max-evaluations") {
				cfg.MaxEvaluations = maxEvaluations
			}
			if err := cfg.validate(); err != nil {
				return err
			}

			logger, err := newLogger(debug)
			if err != nil {
				return fmt.Errorf("could not create logger: %w", err)
			}
			a.cfg = cfg
			a.logger = logger
			a.out = cmd.OutOrStdout()
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "path to a yaml config file")
	flags.BoolVarP(&debug, "debug", "d", false, "debug logging")
	flags.StringVar(&region, "region", "ap-southeast-2", "AWS region")
	flags.IntVar(&maxEvaluations, "max-evaluations", fit.DefaultMaxEvaluations, "function evaluations allowed per model")

	cmd.AddCommand(newFitCommand(a))
	cmd.AddCommand(newCloudWatchCommand(a))

	return cmd
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func addOutputFlags(cmd *cobra.Command, opts *outputOptions, all *bool, bucket *string) {
	cmd.Flags().StringVar(&opts.plotPath, "plot", "", "write a plot of the fits to this file")
	cmd.Flags().BoolVar(all, "all", false, "plot every model instead of only the best")
	cmd.Flags().BoolVar(&opts.upload, "upload", false, "upload the plot to S3 and print a presigned link")
	cmd.Flags().StringVar(bucket, "bucket", "", "S3 bucket for --upload")
}

func (a *app) applyOutputFlags(all bool, bucket string) {
	if all {
		a.cfg.Plot.Mode = plotAll
	}
	if bucket != "" {
		a.cfg.Bucket = bucket
	}
}

func newFitCommand(a *app) *cobra.Command {
	var (
		opts   outputOptions
		all    bool
		bucket string
		xs, ys string
	)

	cmd := &cobra.Command{
		Use:   "fit [file]",
		Short: "Fit the models to observations from a CSV or YAML file, flags, or the sample dataset",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.applyOutputFlags(all, bucket)

			var (
				data xy
				name = "sample"
				err  error
			)
			switch {
			case len(args) == 1:
				name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
				data, err = loadObservations(args[0])
			case xs != "" || ys != "":
				name = "observations"
				data, err = parseValues(xs, ys)
			default:
				data = defaultObservations
			}
			if err != nil {
				return err
			}
			return a.analyse(name, data, opts)
		},
	}

	cmd.Flags().StringVar(&xs, "x", "", "comma separated x values")
	cmd.Flags().StringVar(&ys, "y", "", "comma separated y values")
	addOutputFlags(cmd, &opts, &all, &bucket)
	return cmd
}

func newCloudWatchCommand(a *app) *cobra.Command {
	var (
		opts       outputOptions
		all        bool
		bucket     string
		q          metricQuery
		dimensions []string
		days       float64
	)

	cmd := &cobra.Command{
		Use:   "cloudwatch",
		Short: "Fit the models to a CloudWatch metric, x being minutes ago",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.applyOutputFlags(all, bucket)

			dims, err := parseDimensions(dimensions)
			if err != nil {
				return err
			}
			q.Dimensions = dims

			metric, err := getMetric(newCloudWatchClient(a.cfg.Region), q, NewPeriod(time.Duration(days*float64(Day))), time.Now())
			if err != nil {
				return fmt.Errorf("failed to get %s metrics: %w", q.Metric, err)
			}
			return a.analyse(q.Namespace+"."+q.Metric, metricSeries(metric), opts)
		},
	}

	cmd.Flags().StringVar(&q.Namespace, "namespace", "AWS/EC2", "metric namespace")
	cmd.Flags().StringVar(&q.Metric, "metric", "CPUUtilization", "metric name")
	cmd.Flags().StringVar(&q.Statistic, "statistic", "Average", "Sum, Average, Maximum, Minimum or SampleCount")
	cmd.Flags().StringArrayVar(&dimensions, "dimension", nil, "metric dimension as name=value, repeatable")
	cmd.Flags().Float64Var(&days, "days", 7, "days of history to fetch")
	addOutputFlags(cmd, &opts, &all, &bucket)
	return cmd
}

// analyse fits data, prints the report and produces the requested plot.
func (a *app) analyse(name string, data xy, opts outputOptions) error {
	fitter := fit.NewFitter(
		fit.WithLogger(a.logger.With(zap.String("dataset", name))),
		fit.WithMaxEvaluations(a.cfg.MaxEvaluations),
	)
	results, err := fitter.Fit(data.x, data.y)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return errNoFit
	}

	fmt.Fprint(a.out, fit.Report(results))

	render := func(w io.Writer) error {
		p := createPlot(name)
		if err := plotFits(p, data, results, a.cfg.Plot.Mode); err != nil {
			return err
		}
		return writePlot(w, p, vg.Length(a.cfg.Plot.Width), vg.Length(a.cfg.Plot.Height), a.cfg.Plot.Format)
	}

	if opts.plotPath != "" {
		if err := writePlotFile(opts.plotPath, render); err != nil {
			return err
		}
		a.logger.Info("plot written", zap.String("path", opts.plotPath))
	}

	if opts.upload {
		if a.cfg.Bucket == "" {
			return errors.New("--upload needs a bucket, set --bucket or bucket in the config")
		}
		key := objectKey(time.Now(), name, a.cfg.Plot.Format)
		link, err := newPublisher(a.cfg.Region, a.logger).publish(a.cfg.Bucket, key, render)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "plot: %s\n", link)
	}

	return nil
}

func writePlotFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %v", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("could not close output file %v", err)
	}
	return nil
}
