package export

import (
	"fmt"
	"io"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	binmetrics "github.com/jamesainslie/go-binmetrics"
)

// ToStruct converts r into a protobuf Struct. Undefined scores become null.
func ToStruct(r *binmetrics.MetricReport, meta Meta) (*structpb.Struct, error) {
	cm := r.Matrix
	fields := map[string]any{
		"run_id":  meta.RunID,
		"dataset": meta.Dataset,
		"samples": cm.Total(),
		"confusion_matrix": map[string]any{
			"tn": cm.TN,
			"fp": cm.FP,
			"fn": cm.FN,
			"tp": cm.TP,
		},
		"precision": scoreValue(r.Precision),
		"recall":    scoreValue(r.Recall),
		"f1":        scoreValue(r.F1),
		"accuracy":  scoreValue(r.Accuracy),
	}
	if meta.Threshold != nil {
		fields["threshold"] = float64(*meta.Threshold)
	}
	if !meta.GeneratedAt.IsZero() {
		fields["generated_at"] = meta.GeneratedAt.Format(time.RFC3339)
	}

	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("building struct: %w", err)
	}
	return s, nil
}

func scoreValue(s binmetrics.Score) any {
	if v, ok := s.Float64(); ok {
		return v
	}
	return nil
}

// WriteProtoJSON writes r as indented protobuf JSON.
func WriteProtoJSON(w io.Writer, r *binmetrics.MetricReport, meta Meta) error {
	s, err := ToStruct(r, meta)
	if err != nil {
		return err
	}

	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling json: %w", err)
	}
	data = append(data, '\n')

	_, err = w.Write(data)
	return err
}

// WriteProto writes r in the protobuf binary wire format.
func WriteProto(w io.Writer, r *binmetrics.MetricReport, meta Meta) error {
	s, err := ToStruct(r, meta)
	if err != nil {
		return err
	}

	data, err := proto.MarshalOptions{Deterministic: true}.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling protobuf: %w", err)
	}

	_, err = w.Write(data)
	return err
}
