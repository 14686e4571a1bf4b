//go:build ignore

// Generate the readmission example as label and score files.
// Writes y_true.txt and y_pred.txt in run-length form and a scores.txt whose
// values threshold at 0.5 to exactly y_pred.
// Usage: go run ./scripts/gen-sample.go
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Run is a value repeated Count times.
type Run struct {
	Value int
	Count int
}

const (
	outDir = "testdata/sample"
	name   = "readmission"
	source = "hypothetical 30-day readmission cohort"
)

func main() {
	truth := []Run{{1, 200}, {0, 800}}
	pred := []Run{{1, 150}, {0, 50}, {1, 50}, {0, 750}}

	files := []struct {
		file string
		kind string
		body string
	}{
		{"y_true.txt", "truth", runLength(truth)},
		{"y_pred.txt", "pred", runLength(pred)},
		{"scores.txt", "scores", scores(pred)},
	}

	for _, f := range files {
		path := filepath.Join(outDir, f.file)
		if err := writeFile(path, f.kind, f.body); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("  -> %s\n", path)
	}

	fmt.Printf("\nDone! Sample files created in %s/\n", outDir)
}

// runLength renders runs as "[v]*n + [v]*n".
func runLength(runs []Run) string {
	parts := make([]string, len(runs))
	for i, r := range runs {
		parts[i] = fmt.Sprintf("[%d]*%d", r.Value, r.Count)
	}
	return strings.Join(parts, " + ")
}

// scores spreads positive predictions over 0.51-0.99 and negative ones over
// 0.01-0.49, ten per line.
func scores(runs []Run) string {
	var b strings.Builder
	i := 0
	for _, r := range runs {
		for j := 0; j < r.Count; j++ {
			k := 1 + (i*37)%49
			if r.Value == 1 {
				k += 50
			}
			if i > 0 {
				if i%10 == 0 {
					b.WriteString("\n")
				} else {
					b.WriteString(" ")
				}
			}
			fmt.Fprintf(&b, "%.2f", float64(k)/100)
			i++
		}
	}
	return b.String()
}

func writeFile(path, kind, body string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	_, err = fmt.Fprintf(file, "# Name: %s\n# Source: %s\n# Kind: %s\n\n%s\n", name, source, kind, body)
	return err
}
