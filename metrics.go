package binmetrics

import (
	"log/slog"
	"strconv"
	"strings"
)

// Score is a derived metric. Defined is false when the metric's
// denominator was zero and no substitute value was requested.
type Score struct {
	Value   float64
	Defined bool
}

// Float64 returns the value and whether it is defined.
func (s Score) Float64() (float64, bool) {
	return s.Value, s.Defined
}

// String formats the score as the shortest decimal that round-trips,
// keeping a ".0" on integral values, or "undefined".
func (s Score) String() string {
	if !s.Defined {
		return "undefined"
	}
	out := strconv.FormatFloat(s.Value, 'g', -1, 64)
	if !strings.ContainsAny(out, ".eIN") {
		out += ".0"
	}
	return out
}

// MetricReport is the result of evaluating one pair of label sequences.
type MetricReport struct {
	Matrix    ConfusionMatrix
	Precision Score
	Recall    Score
	F1        Score
	Accuracy  Score
}

// ComputePrecision returns TP / (TP + FP).
// Returns ErrUndefinedMetric when nothing was predicted positive.
func ComputePrecision(cm ConfusionMatrix) (float64, error) {
	return ratio(cm.TP, cm.TP+cm.FP)
}

// ComputeRecall returns TP / (TP + FN).
// Returns ErrUndefinedMetric when nothing is actually positive.
func ComputeRecall(cm ConfusionMatrix) (float64, error) {
	return ratio(cm.TP, cm.TP+cm.FN)
}

// ComputeF1 returns the harmonic mean of precision and recall,
// 2TP / (2TP + FP + FN).
func ComputeF1(cm ConfusionMatrix) (float64, error) {
	return ratio(2*cm.TP, 2*cm.TP+cm.FP+cm.FN)
}

// ComputeAccuracy returns (TP + TN) / n.
func ComputeAccuracy(cm ConfusionMatrix) (float64, error) {
	return ratio(cm.TP+cm.TN, cm.Total())
}

func ratio(num, den int) (float64, error) {
	if den == 0 {
		return 0, ErrUndefinedMetric
	}
	return float64(num) / float64(den), nil
}

// Evaluator produces MetricReports under a fixed zero-division policy.
// It is safe for concurrent use.
type Evaluator struct {
	zeroDivision ZeroDivision
	logger       *slog.Logger
}

// NewEvaluator creates an Evaluator. Only WithZeroDivision and WithLogger
// apply; other options are ignored.
func NewEvaluator(opts ...Option) *Evaluator {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Evaluator{
		zeroDivision: cfg.zeroDivision,
		logger:       cfg.logger,
	}
}

// Report tabulates yTrue against yPred and derives the metrics.
func (e *Evaluator) Report(yTrue, yPred []int) (*MetricReport, error) {
	cm, err := ComputeConfusionMatrix(yTrue, yPred)
	if err != nil {
		return nil, err
	}
	return e.FromMatrix(cm), nil
}

// FromMatrix derives the metrics of an already tabulated matrix.
func (e *Evaluator) FromMatrix(cm ConfusionMatrix) *MetricReport {
	return &MetricReport{
		Matrix:    cm,
		Precision: e.score("precision", cm, ComputePrecision),
		Recall:    e.score("recall", cm, ComputeRecall),
		F1:        e.score("f1", cm, ComputeF1),
		Accuracy:  e.score("accuracy", cm, ComputeAccuracy),
	}
}

func (e *Evaluator) score(name string, cm ConfusionMatrix, fn func(ConfusionMatrix) (float64, error)) Score {
	v, err := fn(cm)
	if err == nil {
		return Score{Value: v, Defined: true}
	}

	switch e.zeroDivision {
	case ZeroDivisionZero:
		v = 0
	case ZeroDivisionOne:
		v = 1
	default:
		return Score{}
	}
	e.logger.Warn("metric undefined, substituting value",
		"metric", name,
		"value", v,
		"tp", cm.TP, "fp", cm.FP, "fn", cm.FN, "tn", cm.TN)
	return Score{Value: v, Defined: true}
}

var defaultEvaluator = NewEvaluator()

// Report evaluates yTrue against yPred with the default policy:
// zero-denominator metrics are left undefined.
func Report(yTrue, yPred []int) (*MetricReport, error) {
	return defaultEvaluator.Report(yTrue, yPred)
}
