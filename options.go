package binmetrics

import (
	"log/slog"
	"runtime"
)

// ZeroDivision selects how a zero-denominator metric is reported.
type ZeroDivision int

const (
	// ZeroDivisionUndefined reports the score with Defined set to false.
	ZeroDivisionUndefined ZeroDivision = iota
	// ZeroDivisionZero reports 0.0 and logs a warning.
	ZeroDivisionZero
	// ZeroDivisionOne reports 1.0 and logs a warning.
	ZeroDivisionOne
)

// String returns the policy name as accepted by ParseZeroDivision.
func (z ZeroDivision) String() string {
	switch z {
	case ZeroDivisionZero:
		return "zero"
	case ZeroDivisionOne:
		return "one"
	default:
		return "undefined"
	}
}

// ParseZeroDivision parses "undefined", "zero" ("0") or "one" ("1").
// The empty string maps to ZeroDivisionUndefined.
func ParseZeroDivision(s string) (ZeroDivision, bool) {
	switch s {
	case "", "undefined":
		return ZeroDivisionUndefined, true
	case "zero", "0":
		return ZeroDivisionZero, true
	case "one", "1":
		return ZeroDivisionOne, true
	}
	return ZeroDivisionUndefined, false
}

// Option configures an Evaluator or a Predictor.
type Option func(*config)

type config struct {
	zeroDivision  ZeroDivision
	threshold     float32
	poolSize      int
	probabilities bool
	inputName     string
	outputName    string
	logger        *slog.Logger
}

func defaultConfig() config {
	return config{
		zeroDivision: ZeroDivisionUndefined,
		threshold:    0.5,
		poolSize:     runtime.NumCPU(),
		inputName:    "input",
		outputName:   "output",
		logger:       slog.Default(),
	}
}

// WithZeroDivision sets the zero-denominator policy (default: ZeroDivisionUndefined).
func WithZeroDivision(z ZeroDivision) Option {
	return func(c *config) {
		c.zeroDivision = z
	}
}

// WithThreshold sets the positive-class decision threshold (default: 0.5).
func WithThreshold(t float32) Option {
	return func(c *config) {
		c.threshold = t
	}
}

// WithPoolSize sets the ONNX session pool size (default: runtime.NumCPU()).
func WithPoolSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.poolSize = n
		}
	}
}

// WithProbabilities marks model outputs as probabilities, skipping the sigmoid.
func WithProbabilities() Option {
	return func(c *config) {
		c.probabilities = true
	}
}

// WithTensorNames sets the model's input and output tensor names
// (default: "input" and "output").
func WithTensorNames(input, output string) Option {
	return func(c *config) {
		if input != "" {
			c.inputName = input
		}
		if output != "" {
			c.outputName = output
		}
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
