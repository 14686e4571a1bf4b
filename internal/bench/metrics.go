// Package bench evaluates classifier scores against ground truth and sweeps
// decision thresholds.
package bench

import (
	binmetrics "github.com/jamesainslie/go-binmetrics"
)

// Config holds evaluation parameters.
type Config struct {
	Threshold       float32
	PrecisionWeight float64
	RecallWeight    float64
	ZeroDivision    binmetrics.ZeroDivision
}

// DefaultConfig returns default evaluation configuration.
func DefaultConfig() Config {
	return Config{
		Threshold:       0.5,
		PrecisionWeight: 1.0,
		RecallWeight:    1.0,
	}
}

// Metrics holds evaluation results.
type Metrics struct {
	Report        *binmetrics.MetricReport
	WeightedScore float64
}

// Binarize labels each score above threshold as 1, else 0.
func Binarize(scores []float32, threshold float32) []int {
	labels := make([]int, len(scores))
	for i, s := range scores {
		if s > threshold {
			labels[i] = 1
		}
	}
	return labels
}

// Evaluate thresholds scores at cfg.Threshold and compares them to truth.
func Evaluate(truth []int, scores []float32, cfg Config) (Metrics, error) {
	ev := binmetrics.NewEvaluator(binmetrics.WithZeroDivision(cfg.ZeroDivision))

	report, err := ev.Report(truth, Binarize(scores, cfg.Threshold))
	if err != nil {
		return Metrics{}, err
	}

	return Metrics{
		Report:        report,
		WeightedScore: WeightedScore(report, cfg),
	}, nil
}

// WeightedScore is the weighted mean of precision and recall.
// Undefined scores count as 0.
func WeightedScore(r *binmetrics.MetricReport, cfg Config) float64 {
	wp := cfg.PrecisionWeight
	wr := cfg.RecallWeight
	if wp+wr <= 0 {
		return 0
	}

	var p, rec float64
	if v, ok := r.Precision.Float64(); ok {
		p = v
	}
	if v, ok := r.Recall.Float64(); ok {
		rec = v
	}
	return (wp*p + wr*rec) / (wp + wr)
}
