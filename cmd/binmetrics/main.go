package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	binmetrics "github.com/jamesainslie/go-binmetrics"
	"github.com/jamesainslie/go-binmetrics/inference"
	"github.com/jamesainslie/go-binmetrics/internal/bench"
	"github.com/jamesainslie/go-binmetrics/internal/config"
	"github.com/jamesainslie/go-binmetrics/internal/export"
	"github.com/jamesainslie/go-binmetrics/internal/labels"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("binmetrics", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: binmetrics [-config RUN.yaml] [-truth FILE (-pred FILE | -scores FILE | -model MODEL -features CSV)] [OPTIONS]")
		fmt.Fprintln(stderr, "With no inputs, evaluates the built-in readmission example.")
		fs.PrintDefaults()
	}

	var (
		configPath   = fs.String("config", "", "Path to YAML run configuration")
		envFile      = fs.String("env", ".env", "Path to .env file (ignored if missing)")
		truthPath    = fs.String("truth", "", "Ground-truth label file")
		predPath     = fs.String("pred", "", "Prediction label file")
		scoresPath   = fs.String("scores", "", "Per-sample score file, thresholded at -threshold")
		modelPath    = fs.String("model", "", "ONNX classifier producing predictions")
		featuresPath = fs.String("features", "", "Feature CSV for -model")
		threshold    = fs.Float64("threshold", config.DefaultThreshold, "Positive-class decision threshold")
		zeroDiv      = fs.String("zero-division", "undefined", "Zero-denominator policy: undefined, zero or one")
		format       = fs.String("format", config.DefaultFormat, "Output format: text, json, proto or prom")
		dataset      = fs.String("dataset", "", "Dataset name recorded in exported metadata")
		poolSize     = fs.Int("pool-size", 0, "ONNX session pool size (0 = one per CPU)")
		verbose      = fs.Bool("v", false, "Enable debug logging")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if err := config.LoadEnv(*envFile); err != nil {
		return err
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}

	// Explicit flags override the file and the environment
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "truth":
			cfg.Truth = *truthPath
		case "pred":
			cfg.Pred = *predPath
		case "scores":
			cfg.Scores = *scoresPath
		case "model":
			cfg.Model.Path = *modelPath
		case "features":
			cfg.Model.Features = *featuresPath
		case "threshold":
			cfg.Threshold = float32(*threshold)
		case "zero-division":
			cfg.ZeroDivision = *zeroDiv
		case "format":
			cfg.Format = *format
		case "dataset":
			cfg.Dataset = *dataset
		case "pool-size":
			cfg.Model.PoolSize = *poolSize
		}
	})

	if err := cfg.ValidateSettings(); err != nil {
		return err
	}

	var yTrue, yPred []int
	if cfg.Truth == "" && cfg.Pred == "" && cfg.Scores == "" && cfg.Model.Path == "" {
		yTrue, yPred = labels.Sample()
		if cfg.Dataset == config.DefaultDataset {
			cfg.Dataset = "readmission"
		}
		logger.Debug("no inputs given, using built-in example", "samples", len(yTrue))
	} else {
		if err := cfg.Validate(); err != nil {
			return err
		}
		yTrue, yPred, err = loadInputs(ctx, cfg, logger)
		if err != nil {
			return err
		}
	}

	ev := binmetrics.NewEvaluator(
		binmetrics.WithZeroDivision(cfg.ZeroDivisionPolicy()),
		binmetrics.WithLogger(logger),
	)
	report, err := ev.Report(yTrue, yPred)
	if err != nil {
		return err
	}

	meta := export.NewMeta(cfg.Dataset)
	if cfg.Pred == "" && cfg.Truth != "" {
		threshold := cfg.Threshold
		meta.Threshold = &threshold
	}
	return export.Write(stdout, cfg.Format, report, meta)
}

// loadInputs reads the ground truth and produces predictions from whichever
// source the config names.
func loadInputs(ctx context.Context, cfg *config.Config, logger *slog.Logger) (yTrue, yPred []int, err error) {
	truth, err := labels.LoadFile(cfg.Truth)
	if err != nil {
		return nil, nil, fmt.Errorf("loading truth: %w", err)
	}
	logger.Debug("loaded truth", "path", cfg.Truth, "samples", len(truth.Labels))

	switch {
	case cfg.Pred != "":
		pred, err := labels.LoadFile(cfg.Pred)
		if err != nil {
			return nil, nil, fmt.Errorf("loading predictions: %w", err)
		}
		return truth.Labels, pred.Labels, nil

	case cfg.Scores != "":
		scores, err := labels.LoadScores(cfg.Scores)
		if err != nil {
			return nil, nil, fmt.Errorf("loading scores: %w", err)
		}
		return truth.Labels, bench.Binarize(scores, cfg.Threshold), nil

	default:
		scores, err := modelScores(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return truth.Labels, bench.Binarize(scores, cfg.Threshold), nil
	}
}

// modelScores runs the configured ONNX model over the feature CSV.
func modelScores(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]float32, error) {
	inference.SetLibraryPath(cfg.Model.Library)

	features, err := labels.LoadFeatures(cfg.Model.Features)
	if err != nil {
		return nil, fmt.Errorf("loading features: %w", err)
	}

	opts := []binmetrics.Option{
		binmetrics.WithThreshold(cfg.Threshold),
		binmetrics.WithPoolSize(cfg.Model.PoolSize),
		binmetrics.WithTensorNames(cfg.Model.InputTensor, cfg.Model.OutputTensor),
		binmetrics.WithLogger(logger),
	}
	if cfg.Model.Probabilities {
		opts = append(opts, binmetrics.WithProbabilities())
	}

	p, err := binmetrics.NewPredictor(cfg.Model.Path, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating predictor: %w", err)
	}
	defer func() { _ = p.Close() }() // Cleanup error ignored in CLI

	return p.Scores(ctx, features)
}
