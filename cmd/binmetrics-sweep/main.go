package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	binmetrics "github.com/jamesainslie/go-binmetrics"
	"github.com/jamesainslie/go-binmetrics/inference"
	"github.com/jamesainslie/go-binmetrics/internal/bench"
	"github.com/jamesainslie/go-binmetrics/internal/config"
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
	fs := flag.NewFlagSet("binmetrics-sweep", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		envFile      = fs.String("env", ".env", "Path to .env file (ignored if missing)")
		truthPath    = fs.String("truth", "", "Ground-truth label file (required)")
		scoresPath   = fs.String("scores", "", "Per-sample score file")
		modelPath    = fs.String("model", "", "ONNX classifier to score -features with")
		featuresPath = fs.String("features", "", "Feature CSV for -model")
		probs        = fs.Bool("probabilities", false, "Model outputs probabilities, not logits")
		wp           = fs.Float64("wp", 1.0, "Precision weight")
		wr           = fs.Float64("wr", 1.0, "Recall weight")
		sweepMin     = fs.Float64("sweep-min", 0.05, "Sweep minimum threshold")
		sweepMax     = fs.Float64("sweep-max", 0.96, "Sweep maximum threshold")
		sweepStep    = fs.Float64("sweep-step", 0.05, "Sweep step size")
		top          = fs.Int("top", 0, "Print only the N best thresholds (0 = all)")
		verbose      = fs.Bool("v", false, "Enable debug logging")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *truthPath == "" {
		fs.Usage()
		return errors.New("-truth required")
	}
	if (*scoresPath == "") == (*modelPath == "") {
		fs.Usage()
		return errors.New("exactly one of -scores or -model required")
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if err := config.LoadEnv(*envFile); err != nil {
		return err
	}
	inference.SetLibraryPath(os.Getenv(config.EnvORTLibrary))

	truth, err := labels.LoadFile(*truthPath)
	if err != nil {
		return fmt.Errorf("loading truth: %w", err)
	}

	var scores []float32
	if *scoresPath != "" {
		scores, err = labels.LoadScores(*scoresPath)
	} else {
		scores, err = scoreModel(ctx, *modelPath, *featuresPath, *probs, logger)
	}
	if err != nil {
		return fmt.Errorf("loading scores: %w", err)
	}
	logger.Debug("loaded inputs", "truth", *truthPath, "samples", len(truth.Labels), "scores", len(scores))
	fmt.Fprintf(stdout, "Loaded %d samples from %s\n\n", len(truth.Labels), *truthPath)

	cfg := bench.DefaultConfig()
	cfg.PrecisionWeight = *wp
	cfg.RecallWeight = *wr

	thresholds := bench.SweepThresholds(float32(*sweepMin), float32(*sweepMax), float32(*sweepStep))
	results, err := bench.Sweep(truth.Labels, scores, cfg, thresholds)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	printSweep(stdout, results, cfg, *top)
	return nil
}

func scoreModel(ctx context.Context, modelPath, featuresPath string, probabilities bool, logger *slog.Logger) ([]float32, error) {
	if featuresPath == "" {
		return nil, fmt.Errorf("-features required with -model")
	}
	features, err := labels.LoadFeatures(featuresPath)
	if err != nil {
		return nil, err
	}

	opts := []binmetrics.Option{binmetrics.WithLogger(logger)}
	if probabilities {
		opts = append(opts, binmetrics.WithProbabilities())
	}

	p, err := binmetrics.NewPredictor(modelPath, opts...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = p.Close() }()

	return p.Scores(ctx, features)
}

func printSweep(w io.Writer, results []bench.SweepResult, cfg bench.Config, top int) {
	fmt.Fprintf(w, "Threshold Sweep Results (wp=%.1f, wr=%.1f)\n", cfg.PrecisionWeight, cfg.RecallWeight)
	fmt.Fprintln(w, strings.Repeat("-", 58))
	fmt.Fprintf(w, "%-8s %-10s %-10s %-10s %-8s\n", "Thresh", "Prec", "Rec", "F1", "Weighted")

	shown := results
	if top > 0 && top < len(shown) {
		shown = shown[:top]
	}

	// Print sorted by threshold for readability
	byThreshold := append([]bench.SweepResult(nil), shown...)
	sort.Slice(byThreshold, func(i, j int) bool {
		return byThreshold[i].Threshold < byThreshold[j].Threshold
	})
	for _, r := range byThreshold {
		rep := r.Metrics.Report
		fmt.Fprintf(w, "%-8.3f %-10s %-10s %-10s %-8.3f\n",
			r.Threshold, short(rep.Precision), short(rep.Recall), short(rep.F1), r.Metrics.WeightedScore)
	}

	fmt.Fprintln(w, strings.Repeat("-", 58))
	if len(results) > 0 {
		best := results[0]
		fmt.Fprintf(w, "Optimal: %.3f (Weighted: %.3f)\n", best.Threshold, best.Metrics.WeightedScore)
		fmt.Fprintln(w, best.Metrics.Report.Matrix)
	}
}

// short formats a score to three decimals, or "undef".
func short(s binmetrics.Score) string {
	v, ok := s.Float64()
	if !ok {
		return "undef"
	}
	return fmt.Sprintf("%.3f", v)
}
