package binmetrics

import (
	"fmt"
	"strconv"
	"strings"
)

// ConfusionMatrix holds the four outcome counts of a binary classifier,
// indexed by (actual, predicted).
type ConfusionMatrix struct {
	TN int // actual 0, predicted 0
	FP int // actual 0, predicted 1
	FN int // actual 1, predicted 0
	TP int // actual 1, predicted 1
}

// ComputeConfusionMatrix tabulates yTrue against yPred.
// Both sequences must have the same length and contain only 0 and 1.
// On error the zero ConfusionMatrix is returned.
func ComputeConfusionMatrix(yTrue, yPred []int) (ConfusionMatrix, error) {
	if len(yTrue) != len(yPred) {
		return ConfusionMatrix{}, fmt.Errorf("%w: y_true has %d, y_pred has %d",
			ErrLengthMismatch, len(yTrue), len(yPred))
	}
	if err := validateLabels("y_true", yTrue); err != nil {
		return ConfusionMatrix{}, err
	}
	if err := validateLabels("y_pred", yPred); err != nil {
		return ConfusionMatrix{}, err
	}

	var cm ConfusionMatrix
	for i, actual := range yTrue {
		switch predicted := yPred[i]; {
		case actual == 0 && predicted == 0:
			cm.TN++
		case actual == 0:
			cm.FP++
		case predicted == 0:
			cm.FN++
		default:
			cm.TP++
		}
	}
	return cm, nil
}

func validateLabels(name string, labels []int) error {
	for i, v := range labels {
		if v != 0 && v != 1 {
			return fmt.Errorf("%w: %s[%d] = %d", ErrInvalidLabel, name, i, v)
		}
	}
	return nil
}

// Total returns the number of samples tabulated.
func (cm ConfusionMatrix) Total() int {
	return cm.TN + cm.FP + cm.FN + cm.TP
}

// Rows returns the matrix in row-major order: rows are the actual class,
// columns the predicted class.
func (cm ConfusionMatrix) Rows() [2][2]int {
	return [2][2]int{
		{cm.TN, cm.FP},
		{cm.FN, cm.TP},
	}
}

// Add returns the elementwise sum of two matrices.
func (cm ConfusionMatrix) Add(other ConfusionMatrix) ConfusionMatrix {
	return ConfusionMatrix{
		TN: cm.TN + other.TN,
		FP: cm.FP + other.FP,
		FN: cm.FN + other.FN,
		TP: cm.TP + other.TP,
	}
}

// String renders the matrix as a 2x2 integer array with cells
// right-aligned to the widest value, e.g.
//
//	[[750  50]
//	 [ 50 150]]
func (cm ConfusionMatrix) String() string {
	rows := cm.Rows()

	width := 0
	for _, row := range rows {
		for _, v := range row {
			width = max(width, len(strconv.Itoa(v)))
		}
	}

	var b strings.Builder
	b.WriteString("[")
	for i, row := range rows {
		if i > 0 {
			b.WriteString("\n ")
		}
		fmt.Fprintf(&b, "[%*d %*d]", width, row[0], width, row[1])
	}
	b.WriteString("]")
	return b.String()
}
