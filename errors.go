package binmetrics

import "errors"

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrLengthMismatch indicates y_true and y_pred have different lengths.
	ErrLengthMismatch = errors.New("binmetrics: label sequences differ in length")

	// ErrInvalidLabel indicates a label outside {0, 1}.
	ErrInvalidLabel = errors.New("binmetrics: label must be 0 or 1")

	// ErrUndefinedMetric indicates a metric whose denominator is zero.
	ErrUndefinedMetric = errors.New("binmetrics: metric undefined (zero denominator)")

	// ErrModelNotFound indicates the model file does not exist.
	ErrModelNotFound = errors.New("binmetrics: model file not found")

	// ErrInvalidModel indicates the model file exists but could not be loaded.
	ErrInvalidModel = errors.New("binmetrics: invalid model")

	// ErrFeatureShape indicates feature rows of differing or zero width.
	ErrFeatureShape = errors.New("binmetrics: inconsistent feature shape")
)
