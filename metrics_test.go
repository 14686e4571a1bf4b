package binmetrics

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
)

func TestComputePrecisionRecall_Example(t *testing.T) {
	cm := ConfusionMatrix{TN: 750, FP: 50, FN: 50, TP: 150}

	p, err := ComputePrecision(cm)
	if err != nil {
		t.Fatalf("ComputePrecision() error = %v", err)
	}
	if p != 0.75 {
		t.Errorf("precision = %v, want 0.75", p)
	}

	r, err := ComputeRecall(cm)
	if err != nil {
		t.Fatalf("ComputeRecall() error = %v", err)
	}
	if r != 0.75 {
		t.Errorf("recall = %v, want 0.75", r)
	}

	f1, _ := ComputeF1(cm)
	if f1 != 0.75 {
		t.Errorf("f1 = %v, want 0.75", f1)
	}
	acc, _ := ComputeAccuracy(cm)
	if acc != 0.9 {
		t.Errorf("accuracy = %v, want 0.9", acc)
	}
}

func TestComputeMetrics_Undefined(t *testing.T) {
	tests := []struct {
		name string
		fn   func(ConfusionMatrix) (float64, error)
		cm   ConfusionMatrix
	}{
		{"precision without positive predictions", ComputePrecision, ConfusionMatrix{TN: 5, FN: 3}},
		{"recall without actual positives", ComputeRecall, ConfusionMatrix{TN: 5, FP: 3}},
		{"f1 with only negatives", ComputeF1, ConfusionMatrix{TN: 5}},
		{"accuracy of nothing", ComputeAccuracy, ConfusionMatrix{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fn(tt.cm)
			if !errors.Is(err, ErrUndefinedMetric) {
				t.Errorf("expected ErrUndefinedMetric, got: %v", err)
			}
		})
	}
}

func TestComputeMetrics_Bounded(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))

	for trial := 0; trial < 100; trial++ {
		cm := ConfusionMatrix{TN: r.IntN(20), FP: r.IntN(20), FN: r.IntN(20), TP: r.IntN(20)}
		for name, fn := range map[string]func(ConfusionMatrix) (float64, error){
			"precision": ComputePrecision,
			"recall":    ComputeRecall,
		} {
			v, err := fn(cm)
			if err != nil {
				continue
			}
			if v < 0 || v > 1 {
				t.Errorf("%s of %+v = %v, outside [0,1]", name, cm, v)
			}
		}
	}
}

func TestReport_Example(t *testing.T) {
	yTrue, yPred := readmissionExample()

	r, err := Report(yTrue, yPred)
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	if r.Matrix != (ConfusionMatrix{TN: 750, FP: 50, FN: 50, TP: 150}) {
		t.Errorf("Matrix = %+v", r.Matrix)
	}
	if v, ok := r.Precision.Float64(); !ok || v != 0.75 {
		t.Errorf("Precision = %v", r.Precision)
	}
	if v, ok := r.Recall.Float64(); !ok || v != 0.75 {
		t.Errorf("Recall = %v", r.Recall)
	}
}

func TestReport_NeverPredictsPositive(t *testing.T) {
	yTrue, _ := readmissionExample()
	yPred := repeat(0, len(yTrue))

	r, err := Report(yTrue, yPred)
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	if r.Matrix.TP != 0 || r.Matrix.FP != 0 {
		t.Errorf("Matrix = %+v", r.Matrix)
	}
	if r.Precision.Defined {
		t.Errorf("Precision should be undefined, got %v", r.Precision)
	}
	if v, ok := r.Recall.Float64(); !ok || v != 0 {
		t.Errorf("Recall = %v, want defined 0", r.Recall)
	}
}

func TestReport_LengthMismatch(t *testing.T) {
	r, err := Report([]int{1, 0}, []int{1})
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got: %v", err)
	}
	if r != nil {
		t.Errorf("expected no report on error, got %+v", r)
	}
}

func TestEvaluator_ZeroDivision(t *testing.T) {
	yTrue := []int{1, 1, 0}
	yPred := []int{0, 0, 0}

	tests := []struct {
		name        string
		policy      ZeroDivision
		wantDefined bool
		wantValue   float64
		wantLog     bool
	}{
		{"undefined", ZeroDivisionUndefined, false, 0, false},
		{"zero", ZeroDivisionZero, true, 0, true},
		{"one", ZeroDivisionOne, true, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			e := NewEvaluator(WithZeroDivision(tt.policy), WithLogger(logger))
			r, err := e.Report(yTrue, yPred)
			if err != nil {
				t.Fatalf("Report() error = %v", err)
			}

			if r.Precision.Defined != tt.wantDefined || r.Precision.Value != tt.wantValue {
				t.Errorf("Precision = %+v, want defined=%v value=%v", r.Precision, tt.wantDefined, tt.wantValue)
			}
			if v, ok := r.Recall.Float64(); !ok || v != 0 {
				t.Errorf("Recall = %+v, want defined 0", r.Recall)
			}

			logged := strings.Contains(buf.String(), "metric=precision")
			if logged != tt.wantLog {
				t.Errorf("logged = %v, want %v (log: %q)", logged, tt.wantLog, buf.String())
			}
		})
	}
}

func TestEvaluator_Concurrent(t *testing.T) {
	yTrue, yPred := readmissionExample()
	e := NewEvaluator()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := e.Report(yTrue, yPred)
			if err != nil {
				t.Errorf("Report() error = %v", err)
				return
			}
			if r.Matrix.TP != 150 {
				t.Errorf("TP = %d, want 150", r.Matrix.TP)
			}
		}()
	}
	wg.Wait()
}

func TestScore_String(t *testing.T) {
	tests := []struct {
		score Score
		want  string
	}{
		{Score{Value: 0.75, Defined: true}, "0.75"},
		{Score{Value: 1, Defined: true}, "1.0"},
		{Score{Value: 0, Defined: true}, "0.0"},
		{Score{Value: 1.0 / 3, Defined: true}, "0.3333333333333333"},
		{Score{Value: math.Inf(1), Defined: true}, "+Inf"},
		{Score{}, "undefined"},
	}

	for _, tt := range tests {
		if got := tt.score.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseZeroDivision(t *testing.T) {
	tests := []struct {
		in     string
		want   ZeroDivision
		wantOK bool
	}{
		{"", ZeroDivisionUndefined, true},
		{"undefined", ZeroDivisionUndefined, true},
		{"zero", ZeroDivisionZero, true},
		{"0", ZeroDivisionZero, true},
		{"one", ZeroDivisionOne, true},
		{"warn", ZeroDivisionUndefined, false},
	}

	for _, tt := range tests {
		got, ok := ParseZeroDivision(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseZeroDivision(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
		if ok && tt.in != "" && tt.in != "0" && got.String() != tt.in {
			t.Errorf("%v.String() = %q, want %q", got, got.String(), tt.in)
		}
	}
}
