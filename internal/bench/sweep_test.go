package bench

import (
	"testing"
)

func TestSweepThresholds(t *testing.T) {
	thresholds := SweepThresholds(0.01, 0.1, 0.02)

	want := []float32{0.01, 0.03, 0.05, 0.07, 0.09}
	if len(thresholds) != len(want) {
		t.Errorf("got %d thresholds, want %d", len(thresholds), len(want))
		t.Logf("got: %v", thresholds)
		return
	}

	for i := range want {
		diff := thresholds[i] - want[i]
		if diff < -0.001 || diff > 0.001 {
			t.Errorf("threshold[%d] = %v, want %v", i, thresholds[i], want[i])
		}
	}
}

func TestSweepThresholds_NoDrift(t *testing.T) {
	tests := []struct {
		name           string
		min, max, step float32
		want           []float32
	}{
		{"tenths", 0.1, 1.0, 0.1, []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9}},
		{"from zero", 0, 0.5, 0.1, []float32{0, 0.1, 0.2, 0.3, 0.4}},
		{"max on grid is excluded", 0.2, 0.65, 0.15, []float32{0.2, 0.35, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SweepThresholds(tt.min, tt.max, tt.step)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("threshold[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSweepThresholds_LongRangeCount(t *testing.T) {
	got := SweepThresholds(0, 1, 0.001)
	if len(got) != 1000 {
		t.Fatalf("got %d thresholds, want 1000", len(got))
	}
	if last := got[len(got)-1]; last != 0.999 {
		t.Errorf("last threshold = %v, want 0.999", last)
	}
}

func TestSweepThresholds_NonPositiveStep(t *testing.T) {
	if got := SweepThresholds(0, 1, 0); got != nil {
		t.Errorf("expected nil for zero step, got %v", got)
	}
}

func TestSweep(t *testing.T) {
	truth := []int{1, 1, 1, 0, 0, 0}
	scores := []float32{0.9, 0.7, 0.4, 0.6, 0.2, 0.1}

	results, err := Sweep(truth, scores, DefaultConfig(), []float32{0.05, 0.3, 0.5, 0.8, 0.5})
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}

	// Duplicate thresholds are evaluated once
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}

	for i := 1; i < len(results); i++ {
		if results[i].Metrics.WeightedScore > results[i-1].Metrics.WeightedScore {
			t.Errorf("results not sorted: [%d]=%v > [%d]=%v", i,
				results[i].Metrics.WeightedScore, i-1, results[i-1].Metrics.WeightedScore)
		}
	}

	// 0.3: TP=3 FP=1 -> P=0.75 R=1 -> 0.875
	if best := results[0]; best.Threshold != 0.3 {
		t.Errorf("best threshold = %v, want 0.3", best.Threshold)
	}
}

func TestSweep_TiesPreferLowerThreshold(t *testing.T) {
	truth := []int{1, 0}
	scores := []float32{0.9, 0.1}

	results, err := Sweep(truth, scores, DefaultConfig(), []float32{0.6, 0.2, 0.4})
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}

	want := []float32{0.2, 0.4, 0.6}
	for i, r := range results {
		if r.Threshold != want[i] {
			t.Errorf("results[%d].Threshold = %v, want %v", i, r.Threshold, want[i])
		}
	}
}
