// Package inference provides ONNX Runtime integration for binary classifier
// inference.
package inference

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ErrOutputShape is returned when a model output cannot be read as one
// score per row.
var ErrOutputShape = errors.New("inference: unexpected output shape")

var (
	ortEnvOnce sync.Once
	ortEnvErr  error
)

// SetLibraryPath selects the onnxruntime shared library to load.
// It must be called before the first session is created.
func SetLibraryPath(path string) {
	if path != "" {
		ort.SetSharedLibraryPath(path)
	}
}

// initORT initializes ONNX Runtime environment once.
func initORT() error {
	ortEnvOnce.Do(func() {
		ortEnvErr = ort.InitializeEnvironment()
	})
	return ortEnvErr
}

// Session wraps an ONNX Runtime session for a classifier taking a
// [batch, features] float32 input and producing one or two scores per row.
type Session struct {
	session *ort.DynamicAdvancedSession
	mu      sync.Mutex
	closed  bool
}

// NewSession creates a new ONNX session from a model file.
func NewSession(modelPath, inputName, outputName string) (*Session, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}

	if err := initORT(); err != nil {
		return nil, fmt.Errorf("initializing ONNX runtime: %w", err)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("creating session options: %w", err)
	}
	defer func() { _ = options.Destroy() }() // Cleanup error doesn't affect success

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{inputName},
		[]string{outputName},
		options,
	)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	return &Session{session: session}, nil
}

// Infer runs the model on a batch of feature rows, all of width
// len(features[0]), and returns one raw score per row. For two-column
// outputs the second (positive class) column is returned.
func (s *Session) Infer(ctx context.Context, features [][]float32) ([]float32, error) {
	// Check context before expensive operation
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if len(features) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("session is closed")
	}

	batchSize := int64(len(features))
	width := int64(len(features[0]))

	flat := make([]float32, 0, batchSize*width)
	for _, row := range features {
		flat = append(flat, row...)
	}

	input, err := ort.NewTensor(ort.NewShape(batchSize, width), flat)
	if err != nil {
		return nil, fmt.Errorf("creating input tensor: %w", err)
	}
	defer func() { _ = input.Destroy() }()

	// nil entries will be allocated by Run
	outputs := []ort.Value{nil}

	if err := s.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("running inference: %w", err)
	}

	if outputs[0] == nil {
		return nil, fmt.Errorf("no output produced")
	}
	defer func() { _ = outputs[0].Destroy() }()

	scoresTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output tensor type")
	}

	return pickScores(scoresTensor.GetData(), int(batchSize))
}

// pickScores extracts one score per row from a flattened output of shape
// [rows], [rows, 1] or [rows, 2]. A two-column output is read as
// (negative, positive) and yields the positive column.
func pickScores(data []float32, rows int) ([]float32, error) {
	if rows <= 0 || len(data) == 0 || len(data)%rows != 0 {
		return nil, fmt.Errorf("%w: %d values for %d rows", ErrOutputShape, len(data), rows)
	}
	cols := len(data) / rows
	if cols > 2 {
		return nil, fmt.Errorf("%w: %d columns, want 1 or 2", ErrOutputShape, cols)
	}
	col := cols - 1

	scores := make([]float32, rows)
	for i := range scores {
		scores[i] = data[i*cols+col]
	}
	return scores, nil
}

// Close releases ONNX resources.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	if s.session != nil {
		return s.session.Destroy()
	}
	return nil
}
