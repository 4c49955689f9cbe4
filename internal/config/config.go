// Package config holds the engine settings and loads them from an optional
// YAML file overlaid with AIMTUNE_ environment variables.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig wraps every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// maxHistoryLimit matches the largest page the HTTP API serves.
const maxHistoryLimit = 500

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// StoreDriver selects result and feedback storage: memory or sqlite.
	StoreDriver string `koanf:"store_driver"`

	// DataDir holds the sqlite database.
	DataDir string `koanf:"data_dir"`

	// WriterQueueSize bounds the store writer queue.
	WriterQueueSize int `koanf:"writer_queue_size"`

	// DedupeSize sets the size of the feedback deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// SentimentMinSamples is the post count below which sentiment is ignored.
	SentimentMinSamples int `koanf:"sentiment_min_samples"`

	// FeedbackHalfLifeHours is the age at which feedback counts half.
	FeedbackHalfLifeHours float64 `koanf:"feedback_half_life_hours"`

	// ConfidenceBaseline is the confidence of a result with no signals.
	ConfidenceBaseline float64 `koanf:"confidence_baseline"`

	// GamesFile replaces the built-in game table when set.
	GamesFile string `koanf:"games_file"`

	// HistoryLimit is the default page size for result listings.
	HistoryLimit int `koanf:"history_limit"`

	// MaxResults caps the results the memory store keeps. Zero keeps all.
	MaxResults int `koanf:"max_results"`

	// ReferenceDPI and ReferenceDiagonalInches describe the phone every
	// device is normalized against.
	ReferenceDPI            float64 `koanf:"reference_dpi"`
	ReferenceDiagonalInches float64 `koanf:"reference_diagonal_inches"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		Addr:                    ":9080",
		StoreDriver:             StoreMemory,
		DataDir:                 "data",
		WriterQueueSize:         1024,
		DedupeSize:              50_000,
		SentimentMinSamples:     5,
		FeedbackHalfLifeHours:   168,
		ConfidenceBaseline:      0.6,
		HistoryLimit:            20,
		ReferenceDPI:            440,
		ReferenceDiagonalInches: 6.67,
	}
}

// FeedbackHalfLife returns the half-life as a duration.
func (c *Config) FeedbackHalfLife() time.Duration {
	return time.Duration(c.FeedbackHalfLifeHours * float64(time.Hour))
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.StoreDriver != StoreMemory && c.StoreDriver != StoreSQLite:
		return fmt.Errorf("%w: store_driver must be %s or %s, got %q", ErrInvalidConfig, StoreMemory, StoreSQLite, c.StoreDriver)
	case c.WriterQueueSize <= 0:
		return fmt.Errorf("%w: writer_queue_size must be positive", ErrInvalidConfig)
	case c.DedupeSize <= 0:
		return fmt.Errorf("%w: dedupe_size must be positive", ErrInvalidConfig)
	case c.SentimentMinSamples < 1:
		return fmt.Errorf("%w: sentiment_min_samples must be at least 1", ErrInvalidConfig)
	case c.FeedbackHalfLifeHours <= 0:
		return fmt.Errorf("%w: feedback_half_life_hours must be positive", ErrInvalidConfig)
	case c.ConfidenceBaseline <= 0 || c.ConfidenceBaseline > 1:
		return fmt.Errorf("%w: confidence_baseline must be in (0, 1]", ErrInvalidConfig)
	case c.HistoryLimit < 1 || c.HistoryLimit > maxHistoryLimit:
		return fmt.Errorf("%w: history_limit must be in [1, %d]", ErrInvalidConfig, maxHistoryLimit)
	case c.MaxResults < 0:
		return fmt.Errorf("%w: max_results must not be negative", ErrInvalidConfig)
	case c.ReferenceDPI <= 0 || c.ReferenceDiagonalInches <= 0:
		return fmt.Errorf("%w: reference_dpi and reference_diagonal_inches must be positive", ErrInvalidConfig)
	}
	return nil
}
