// Package export renders metric reports as text, protobuf and Prometheus
// exposition output.
package export

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	binmetrics "github.com/jamesainslie/go-binmetrics"
)

// ErrUnknownFormat is returned by Write for an unsupported format name.
var ErrUnknownFormat = errors.New("export: unknown format")

// Supported output formats.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatProto = "proto"
	FormatProm  = "prom"
)

// Meta identifies the run a report belongs to.
type Meta struct {
	RunID       string
	Dataset     string
	Threshold   *float32 // nil when predictions were given directly
	GeneratedAt time.Time
}

// NewRunID returns a fresh random run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// NewMeta returns metadata for a run over dataset, stamped now.
func NewMeta(dataset string) Meta {
	return Meta{
		RunID:       NewRunID(),
		Dataset:     dataset,
		GeneratedAt: time.Now().UTC(),
	}
}

// WriteText writes the confusion matrix, precision and recall.
func WriteText(w io.Writer, r *binmetrics.MetricReport) error {
	_, err := fmt.Fprintf(w, "Confusion Matrix:\n%s\nPrecision: %s\nRecall: %s\n",
		r.Matrix, r.Precision, r.Recall)
	return err
}

// Write renders r in the named format.
func Write(w io.Writer, format string, r *binmetrics.MetricReport, meta Meta) error {
	switch format {
	case FormatText, "":
		return WriteText(w, r)
	case FormatJSON:
		return WriteProtoJSON(w, r, meta)
	case FormatProto:
		return WriteProto(w, r, meta)
	case FormatProm:
		return WritePrometheus(w, r, meta)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
