package binmetrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/jamesainslie/go-binmetrics/inference"
)

// maxBatch is the largest number of feature rows sent to the model in a
// single run.
const maxBatch = 256

// Predictor produces binary predictions from an ONNX classifier.
// It is safe for concurrent use.
type Predictor struct {
	pool          *inference.Pool
	threshold     float32
	probabilities bool
	logger        *slog.Logger
}

// NewPredictor creates a Predictor for the model at modelPath.
func NewPredictor(modelPath string, opts ...Option) (*Predictor, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	// Check model file exists
	if _, err := os.Stat(modelPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelPath)
		}
		return nil, fmt.Errorf("checking model file: %w", err)
	}

	pool, err := inference.NewPool(modelPath, cfg.inputName, cfg.outputName, cfg.poolSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}

	cfg.logger.Debug("predictor ready",
		"model", modelPath,
		"pool_size", pool.Size(),
		"threshold", cfg.threshold)

	return &Predictor{
		pool:          pool,
		threshold:     cfg.threshold,
		probabilities: cfg.probabilities,
		logger:        cfg.logger,
	}, nil
}

// Threshold returns the decision threshold used by Predict.
func (p *Predictor) Threshold() float32 {
	return p.threshold
}

// Scores returns the positive-class probability for each feature row.
func (p *Predictor) Scores(ctx context.Context, features [][]float32) ([]float32, error) {
	if len(features) == 0 {
		return nil, nil
	}
	if err := checkShape(features); err != nil {
		return nil, err
	}

	// Acquire session from pool
	session, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.pool.Release(session)

	scores := make([]float32, 0, len(features))
	batches := 0
	for start := 0; start < len(features); start += maxBatch {
		end := min(start+maxBatch, len(features))

		out, err := session.Infer(ctx, features[start:end])
		if err != nil {
			return nil, err
		}
		if len(out) != end-start {
			return nil, fmt.Errorf("model returned %d scores for %d rows", len(out), end-start)
		}
		scores = append(scores, out...)
		batches++
	}

	if !p.probabilities {
		for i, s := range scores {
			scores[i] = sigmoid(s)
		}
	}

	p.logger.Debug("scored features", "rows", len(features), "batches", batches)
	return scores, nil
}

// Predict returns 1 for each row whose score exceeds the threshold, else 0.
func (p *Predictor) Predict(ctx context.Context, features [][]float32) ([]int, error) {
	scores, err := p.Scores(ctx, features)
	if err != nil {
		return nil, err
	}

	labels := make([]int, len(scores))
	for i, s := range scores {
		if s > p.threshold {
			labels[i] = 1
		}
	}
	return labels, nil
}

// Close releases all resources.
func (p *Predictor) Close() error {
	if p.pool == nil {
		return nil
	}
	return p.pool.Close()
}

func checkShape(features [][]float32) error {
	width := len(features[0])
	if width == 0 {
		return fmt.Errorf("%w: row 0 is empty", ErrFeatureShape)
	}
	for i, row := range features {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d values, want %d", ErrFeatureShape, i, len(row), width)
		}
	}
	return nil
}

func sigmoid(x float32) float32 {
	return float32(1.0 / (1.0 + math.Exp(float64(-x))))
}
