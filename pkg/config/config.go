// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Corpus, Analysis, Output, Loader, Logging, Metrics).
package config

import (
	"fmt"
	"os"
	"strconv"

	apperrors "github.com/MTG/Jingju-Scores-Analysis/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Corpus   CorpusConfig   `yaml:"corpus"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Output   OutputConfig   `yaml:"output"`
	Loader   LoaderConfig   `yaml:"loader"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// CorpusConfig locates the line catalog. Score paths in the catalog are
// resolved against the catalog's directory.
type CorpusConfig struct {
	Catalog string `yaml:"catalog"`
}

// AnalysisConfig holds the defaults shared by every statistic.
type AnalysisConfig struct {
	// SilenceThreshold is the longest rest, in quarter lengths, that does
	// not break an interval.
	SilenceThreshold  float64       `yaml:"silenceThreshold"`
	GraceNoteCap      float64       `yaml:"graceNoteCap"`
	CountGraceNotes   bool          `yaml:"countGraceNotes"`
	CountBy           string        `yaml:"countBy"`
	IgnoreGraceNotes  bool          `yaml:"ignoreGraceNotes"`
	IncludeGraceNotes bool          `yaml:"includeGraceNotes"`
	Normalization     string        `yaml:"normalization"`
	Density           string        `yaml:"density"`
	Markers           MarkersConfig `yaml:"markers"`
	Validation        string        `yaml:"validation"`
}

// MarkersConfig names the lyric characters that bracket padding syllables.
type MarkersConfig struct {
	Open  string `yaml:"open"`
	Close string `yaml:"close"`
}

// OutputConfig controls where tables and figures are written.
type OutputConfig struct {
	Dir     string  `yaml:"dir"`
	Figures bool    `yaml:"figures"`
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
}

// LoaderConfig bounds concurrent score parsing. Zero means GOMAXPROCS.
type LoaderConfig struct {
	Workers int `yaml:"workers"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus textfile written after a run.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Textfile string `yaml:"textfile"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with defaults for any missing
// values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration without reading files or the
// environment.
func Default() *Config {
	return defaultConfig()
}

func defaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Catalog: "lines_data.csv",
		},
		Analysis: AnalysisConfig{
			SilenceThreshold:  0.25,
			GraceNoteCap:      0.25,
			CountGraceNotes:   true,
			CountBy:           "duration",
			IgnoreGraceNotes:  false,
			IncludeGraceNotes: true,
			Normalization:     "sum",
			Density:           "duration",
			Markers: MarkersConfig{
				Open:  "（",
				Close: "）",
			},
			Validation: "strict",
		},
		Output: OutputConfig{
			Dir:     ".",
			Figures: true,
			Width:   10,
			Height:  6,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:  false,
			Textfile: "jingju.prom",
		},
	}
}

// Validate rejects values the analysis cannot run with.
func (c *Config) Validate() error {
	a := c.Analysis
	if a.SilenceThreshold < 0 {
		return apperrors.Newf(apperrors.ErrInvalidInput, "analysis.silenceThreshold must be >= 0, got %v", a.SilenceThreshold)
	}
	if a.GraceNoteCap <= 0 {
		return apperrors.Newf(apperrors.ErrInvalidInput, "analysis.graceNoteCap must be > 0, got %v", a.GraceNoteCap)
	}
	switch a.Normalization {
	case "sum", "max", "abs":
	default:
		return apperrors.Newf(apperrors.ErrAmbiguousAggregationMode, "analysis.normalization %q, want sum, max or abs", a.Normalization)
	}
	switch a.CountBy {
	case "duration", "notes":
	default:
		return apperrors.Newf(apperrors.ErrAmbiguousAggregationMode, "analysis.countBy %q, want duration or notes", a.CountBy)
	}
	switch a.Density {
	case "notes", "duration":
	default:
		return apperrors.Newf(apperrors.ErrAmbiguousAggregationMode, "analysis.density %q, want notes or duration", a.Density)
	}
	switch a.Validation {
	case "strict", "lenient":
	default:
		return apperrors.Newf(apperrors.ErrInvalidInput, "analysis.validation %q, want strict or lenient", a.Validation)
	}
	if a.Markers.Open == "" || a.Markers.Close == "" {
		return apperrors.New(apperrors.ErrInvalidInput, "analysis.markers.open and analysis.markers.close must be set")
	}
	if c.Loader.Workers < 0 {
		return apperrors.Newf(apperrors.ErrInvalidInput, "loader.workers must be >= 0, got %d", c.Loader.Workers)
	}
	return nil
}

// applyEnvOverrides reads JSA_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("JSA_CATALOG"); v != "" {
		cfg.Corpus.Catalog = v
	}
	if v := os.Getenv("JSA_SILENCE_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Analysis.SilenceThreshold = f
		}
	}
	if v := os.Getenv("JSA_NORMALIZATION"); v != "" {
		cfg.Analysis.Normalization = v
	}
	if v := os.Getenv("JSA_COUNT_BY"); v != "" {
		cfg.Analysis.CountBy = v
	}
	if v := os.Getenv("JSA_DENSITY"); v != "" {
		cfg.Analysis.Density = v
	}
	if v := os.Getenv("JSA_VALIDATION"); v != "" {
		cfg.Analysis.Validation = v
	}
	if v := os.Getenv("JSA_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("JSA_OUTPUT_FIGURES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Output.Figures = b
		}
	}
	if v := os.Getenv("JSA_LOADER_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Loader.Workers = n
		}
	}
	if v := os.Getenv("JSA_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("JSA_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("JSA_METRICS_TEXTFILE"); v != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Textfile = v
	}
}
