// Package binmetrics computes confusion matrices and precision/recall for
// binary classifiers.
//
// # Quick Start
//
//	yTrue := []int{1, 1, 0, 0}
//	yPred := []int{1, 0, 1, 0}
//
//	r, err := binmetrics.Report(yTrue, yPred)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(r.Matrix)
//	fmt.Printf("Precision: %s\nRecall: %s\n", r.Precision, r.Recall)
//
// # Undefined Metrics
//
// Precision is undefined when nothing is predicted positive, and recall is
// undefined when nothing is actually positive. By default such scores are
// reported with Defined set to false rather than as 0. WithZeroDivision
// selects the 0.0 (or 1.0) convention instead; every substitution is logged
// as a warning.
//
// # Predictions From a Model
//
// Predictor runs an ONNX binary classifier over feature rows to produce the
// prediction sequence. It is safe for concurrent use and keeps an internal
// pool of ONNX sessions, sized via WithPoolSize.
//
// # Thread Safety
//
// The engine functions and Evaluator hold no mutable state and may be called
// concurrently.
package binmetrics
