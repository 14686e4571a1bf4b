// Package config loads evaluation run settings from YAML, .env files and
// the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	binmetrics "github.com/jamesainslie/go-binmetrics"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultThreshold    = 0.5
	DefaultFormat       = "text"
	DefaultDataset      = "default"
	DefaultInputTensor  = "input"
	DefaultOutputTensor = "output"
)

// Environment variables that override file values.
const (
	EnvModel      = "BINMETRICS_MODEL"
	EnvFeatures   = "BINMETRICS_FEATURES"
	EnvORTLibrary = "BINMETRICS_ORT_LIBRARY"
	EnvFormat     = "BINMETRICS_FORMAT"
	EnvThreshold  = "BINMETRICS_THRESHOLD"
)

// Config describes one evaluation run.
type Config struct {
	// Dataset names the run in exported metadata.
	Dataset string `yaml:"dataset"`

	// Truth is the path of the ground-truth label file.
	Truth string `yaml:"truth"`

	// Pred is the path of a prediction label file. Exactly one of Pred,
	// Scores or Model supplies predictions.
	Pred string `yaml:"pred"`

	// Scores is the path of a per-sample score file, thresholded at Threshold.
	Scores string `yaml:"scores"`

	// Model configures ONNX inference over a feature CSV.
	Model ModelConfig `yaml:"model"`

	// Threshold is the positive-class decision threshold for scores.
	Threshold float32 `yaml:"threshold"`

	// ZeroDivision is one of: undefined | zero | one.
	ZeroDivision string `yaml:"zero_division"`

	// Format is one of: text | json | proto | prom.
	Format string `yaml:"format"`
}

// ModelConfig holds Predictor settings.
type ModelConfig struct {
	// Path is the ONNX model file.
	Path string `yaml:"path"`

	// Features is the CSV of feature rows, one per sample.
	Features string `yaml:"features"`

	// Library is the onnxruntime shared library path.
	Library string `yaml:"library"`

	// PoolSize is the number of ONNX sessions; 0 means one per CPU.
	PoolSize int `yaml:"pool_size"`

	// Probabilities marks model outputs as probabilities rather than logits.
	Probabilities bool `yaml:"probabilities"`

	InputTensor  string `yaml:"input_tensor"`
	OutputTensor string `yaml:"output_tensor"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with defaults. An empty path returns
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	return cfg, nil
}

// Defaults returns a Config pre-populated with default values.
func Defaults() *Config {
	return &Config{
		Dataset:      DefaultDataset,
		Threshold:    DefaultThreshold,
		ZeroDivision: binmetrics.ZeroDivisionUndefined.String(),
		Format:       DefaultFormat,
		Model: ModelConfig{
			InputTensor:  DefaultInputTensor,
			OutputTensor: DefaultOutputTensor,
		},
	}
}

// LoadEnv loads variables from the given .env files (default ".env") into
// the process environment. Missing files are ignored; variables already
// set are not overwritten.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from BINMETRICS_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvModel); v != "" {
		c.Model.Path = v
	}
	if v := os.Getenv(EnvFeatures); v != "" {
		c.Model.Features = v
	}
	if v := os.Getenv(EnvORTLibrary); v != "" {
		c.Model.Library = v
	}
	if v := os.Getenv(EnvFormat); v != "" {
		c.Format = v
	}
	if v := os.Getenv(EnvThreshold); v != "" {
		t, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvThreshold, err)
		}
		c.Threshold = float32(t)
	}
	return nil
}

// Validate checks required fields and structural constraints.
func (c *Config) Validate() error {
	if c.Truth == "" {
		return fmt.Errorf("config: truth is required")
	}

	sources := 0
	for _, set := range []bool{c.Pred != "", c.Scores != "", c.Model.Path != ""} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return fmt.Errorf("config: exactly one of pred, scores or model.path is required (got %d)", sources)
	}
	if c.Model.Path != "" && c.Model.Features == "" {
		return fmt.Errorf("config: model.features is required with model.path")
	}

	return c.ValidateSettings()
}

// ValidateSettings checks the evaluation settings that apply with or
// without input files: threshold, zero_division and pool size.
func (c *Config) ValidateSettings() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("config: threshold must be within [0, 1]")
	}
	if _, ok := binmetrics.ParseZeroDivision(c.ZeroDivision); !ok {
		return fmt.Errorf("config: unknown zero_division %q", c.ZeroDivision)
	}
	if c.Model.PoolSize < 0 {
		return fmt.Errorf("config: model.pool_size must not be negative")
	}
	return nil
}

// ZeroDivisionPolicy returns the parsed zero-division policy.
// Call Validate first; unknown values map to ZeroDivisionUndefined.
func (c *Config) ZeroDivisionPolicy() binmetrics.ZeroDivision {
	z, _ := binmetrics.ParseZeroDivision(c.ZeroDivision)
	return z
}
