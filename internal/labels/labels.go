// Package labels loads label sequences, feature rows and scores for evaluation.
package labels

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/samber/lo"
)

// Header contains metadata parsed from a label file's header comments.
type Header struct {
	Name   string
	Source string
	Kind   string // truth | pred | scores
}

// ParseHeader extracts metadata from leading "#" comment lines.
// Returns the header and the remaining text after it. A file without
// header lines yields an empty Header and the whole text.
func ParseHeader(text string) (Header, string, error) {
	var h Header
	rest := text

	for rest != "" {
		raw, next, _ := strings.Cut(rest, "\n")
		line := strings.TrimSpace(raw)

		if !strings.HasPrefix(line, "#") {
			if line == "" {
				rest = next
				continue
			}
			break
		}
		rest = next

		line = strings.TrimSpace(strings.TrimPrefix(line, "#"))
		if value, ok := strings.CutPrefix(line, "Name:"); ok {
			h.Name = strings.TrimSpace(value)
		} else if value, ok := strings.CutPrefix(line, "Source:"); ok {
			h.Source = strings.TrimSpace(value)
		} else if value, ok := strings.CutPrefix(line, "Kind:"); ok {
			h.Kind = strings.TrimSpace(value)
		}
	}

	return h, strings.TrimSpace(rest), nil
}

// splitTokens breaks a body into tokens on whitespace, commas and "+".
// Surrounding brackets are dropped, so "[1]*200 + [0]*800" reads as
// "1*200 0*800".
func splitTokens(body string) []string {
	fields := strings.FieldsFunc(body, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == '+'
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.NewReplacer("[", "", "]", "").Replace(f)
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// ParseLabels parses integer labels. A token "v*n" expands to n copies of v.
// Values are not range-checked; that is left to the evaluator.
func ParseLabels(body string) ([]int, error) {
	var out []int
	for _, tok := range splitTokens(body) {
		value, count, err := parseRun(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, Repeat(value, count)...)
	}
	return out, nil
}

func parseRun(tok string) (value, count int, err error) {
	v, n, isRun := strings.Cut(tok, "*")

	value, err = strconv.Atoi(v)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid label %q", tok)
	}
	if !isRun {
		return value, 1, nil
	}

	count, err = strconv.Atoi(n)
	if err != nil || count < 0 {
		return 0, 0, fmt.Errorf("invalid repeat count in %q", tok)
	}
	return value, count, nil
}

// ParseScores parses whitespace- or comma-separated floating point scores.
func ParseScores(body string) ([]float32, error) {
	tokens := splitTokens(body)
	scores := make([]float32, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.ParseFloat(tok, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid score %q at %d", tok, i)
		}
		scores[i] = float32(v)
	}
	return scores, nil
}

// Sequence is a loaded label file.
type Sequence struct {
	ID     string // filename without extension
	Name   string
	Source string
	Kind   string
	Labels []int
}

// LoadFile loads and parses a label file.
func LoadFile(path string) (*Sequence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	header, body, err := ParseHeader(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}

	labels, err := ParseLabels(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	base := filepath.Base(path)

	return &Sequence{
		ID:     strings.TrimSuffix(base, filepath.Ext(base)),
		Name:   header.Name,
		Source: header.Source,
		Kind:   header.Kind,
		Labels: labels,
	}, nil
}

// LoadDir loads all .txt label files from a directory.
func LoadDir(dir string) ([]*Sequence, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var seqs []*Sequence
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) != ".txt" {
			continue
		}

		seq, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", entry.Name(), err)
		}
		seqs = append(seqs, seq)
	}

	return seqs, nil
}

// LoadScores loads a score file. Header comments are allowed.
func LoadScores(path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	_, body, err := ParseHeader(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}

	scores, err := ParseScores(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scores, nil
}

// LoadFeatures reads a CSV of feature rows. A first row that does not parse
// as numbers is treated as a header and skipped.
func LoadFeatures(path string) ([][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open features: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comment = '#'
	r.TrimLeadingSpace = true

	var rows [][]float32
	for line := 1; ; line++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read features: %w", err)
		}

		row, err := parseRow(record)
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("features line %d: %w", line, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func parseRow(record []string) ([]float32, error) {
	row := make([]float32, len(record))
	for i, field := range record {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+1, err)
		}
		row[i] = float32(v)
	}
	return row, nil
}

// Repeat returns n copies of v.
func Repeat(v, n int) []int {
	return lo.Times(n, func(int) int { return v })
}

// Concat joins sequences in order.
func Concat(parts ...[]int) []int {
	return lo.Flatten(parts)
}

// Sample returns the readmission example: 200 positives followed by 800
// negatives, predicted with TP=150, FN=50, FP=50, TN=750.
func Sample() (yTrue, yPred []int) {
	yTrue = Concat(Repeat(1, 200), Repeat(0, 800))
	yPred = Concat(Repeat(1, 150), Repeat(0, 50), Repeat(1, 50), Repeat(0, 750))
	return yTrue, yPred
}
