package export

import (
	"fmt"
	"io"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	binmetrics "github.com/jamesainslie/go-binmetrics"
)

// Metric family names written by WritePrometheus.
const (
	MetricConfusion = "binmetrics_confusion_count"
	MetricScore     = "binmetrics_score"
	MetricSamples   = "binmetrics_samples"
)

// MetricFamilies converts r into Prometheus gauge families. Undefined
// scores are omitted rather than written as 0.
func MetricFamilies(r *binmetrics.MetricReport, meta Meta) []*dto.MetricFamily {
	cm := r.Matrix

	confusion := gaugeFamily(MetricConfusion, "Confusion matrix cell counts by outcome.")
	for _, cell := range []struct {
		name  string
		value int
	}{
		{"tn", cm.TN}, {"fp", cm.FP}, {"fn", cm.FN}, {"tp", cm.TP},
	} {
		confusion.Metric = append(confusion.Metric, gauge(float64(cell.value), meta, "cell", cell.name))
	}

	scores := gaugeFamily(MetricScore, "Derived classification metrics.")
	for _, s := range []struct {
		name  string
		score binmetrics.Score
	}{
		{"precision", r.Precision}, {"recall", r.Recall}, {"f1", r.F1}, {"accuracy", r.Accuracy},
	} {
		if v, ok := s.score.Float64(); ok {
			scores.Metric = append(scores.Metric, gauge(v, meta, "metric", s.name))
		}
	}

	samples := gaugeFamily(MetricSamples, "Number of evaluated samples.")
	samples.Metric = append(samples.Metric, gauge(float64(cm.Total()), meta))

	return []*dto.MetricFamily{confusion, scores, samples}
}

// WritePrometheus writes r in the Prometheus text exposition format.
func WritePrometheus(w io.Writer, r *binmetrics.MetricReport, meta Meta) error {
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range MetricFamilies(r, meta) {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encoding %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

func gaugeFamily(name, help string) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_GAUGE.Enum(),
	}
}

// gauge builds a sample labelled with the run metadata plus extra
// name/value label pairs.
func gauge(value float64, meta Meta, extra ...string) *dto.Metric {
	labels := []*dto.LabelPair{
		{Name: proto.String("dataset"), Value: proto.String(meta.Dataset)},
		{Name: proto.String("run_id"), Value: proto.String(meta.RunID)},
	}
	for i := 0; i+1 < len(extra); i += 2 {
		labels = append(labels, &dto.LabelPair{
			Name:  proto.String(extra[i]),
			Value: proto.String(extra[i+1]),
		})
	}
	return &dto.Metric{
		Label: labels,
		Gauge: &dto.Gauge{Value: proto.Float64(value)},
	}
}
