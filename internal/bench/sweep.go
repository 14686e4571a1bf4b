package bench

import (
	"math"
	"sort"
	"strconv"

	"github.com/samber/lo"
)

// SweepResult holds metrics for one threshold value.
type SweepResult struct {
	Threshold float32
	Metrics   Metrics
}

// SweepThresholds generates threshold values from min (inclusive) to max
// (exclusive) with given step. Each value is min + i*step computed from
// the decimal inputs, so errors do not accumulate across the range.
func SweepThresholds(min, max, step float32) []float32 {
	if step <= 0 || max <= min {
		return nil
	}
	from, to, st := decimal(min), decimal(max), decimal(step)

	steps := (to - from) / st
	n := int(math.Ceil(steps))
	if r := math.Round(steps); math.Abs(steps-r) < 1e-6 {
		n = int(r)
	}

	thresholds := make([]float32, 0, n)
	for i := range n {
		thresholds = append(thresholds, float32(from+float64(i)*st))
	}
	return thresholds
}

// decimal widens f to the float64 nearest its shortest decimal form,
// so 0.1 becomes 0.1 rather than 0.10000000149011612.
func decimal(f float32) float64 {
	d, _ := strconv.ParseFloat(strconv.FormatFloat(float64(f), 'g', -1, 32), 64)
	return d
}

// Sweep evaluates each threshold and returns results sorted by weighted
// score, best first. Ties keep the lower threshold first.
func Sweep(truth []int, scores []float32, cfg Config, thresholds []float32) ([]SweepResult, error) {
	results := make([]SweepResult, 0, len(thresholds))

	for _, threshold := range lo.Uniq(thresholds) {
		cfg.Threshold = threshold
		m, err := Evaluate(truth, scores, cfg)
		if err != nil {
			return nil, err
		}
		results = append(results, SweepResult{
			Threshold: threshold,
			Metrics:   m,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		wi, wj := results[i].Metrics.WeightedScore, results[j].Metrics.WeightedScore
		if wi != wj {
			return wi > wj
		}
		return results[i].Threshold < results[j].Threshold
	})

	return results, nil
}
