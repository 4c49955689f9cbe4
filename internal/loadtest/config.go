// Package loadtest drives a running aimtune server with generated
// calculations and feedback and checks every answer it gets back.
package loadtest

import (
	"errors"
	"time"
)

// Defaults for a run.
const (
	DefaultBaseURL       = "http://localhost:9080"
	DefaultCalculations  = 1000
	DefaultWorkers       = 8
	DefaultTimeout       = 30 * time.Second
	DefaultFeedbackRatio = 0.25
)

// ErrInvalidConfig is returned by Run for unusable settings.
var ErrInvalidConfig = errors.New("invalid load test config")

// ErrVerification is returned when at least one answer broke an invariant.
var ErrVerification = errors.New("verification failed")

// Config holds configuration for a load test run.
type Config struct {
	BaseURL       string        // Base URL of the service
	Calculations  int           // Number of calculations to submit
	Workers       int           // Number of concurrent workers
	Timeout       time.Duration // HTTP request timeout
	FeedbackRatio float64       // Share of results that get a feedback submission
	Seed          uint64        // Seed for the request generator
	Verbose       bool          // Log every violation
}

// NewConfig returns a Config with defaults.
func NewConfig() Config {
	return Config{
		BaseURL:       DefaultBaseURL,
		Calculations:  DefaultCalculations,
		Workers:       DefaultWorkers,
		Timeout:       DefaultTimeout,
		FeedbackRatio: DefaultFeedbackRatio,
		Seed:          1,
	}
}

func (c Config) validate() error {
	switch {
	case c.BaseURL == "":
		return errors.Join(ErrInvalidConfig, errors.New("base url is empty"))
	case c.Calculations <= 0:
		return errors.Join(ErrInvalidConfig, errors.New("calculations must be positive"))
	case c.Workers <= 0:
		return errors.Join(ErrInvalidConfig, errors.New("workers must be positive"))
	case c.FeedbackRatio < 0 || c.FeedbackRatio > 1:
		return errors.Join(ErrInvalidConfig, errors.New("feedback ratio must be in [0, 1]"))
	}
	return nil
}

// Report holds run statistics.
type Report struct {
	Calculations      int           `json:"calculations"`
	CalculationFailed int           `json:"calculation_failed"`
	Rejected          int           `json:"rejected"`
	Feedback          int           `json:"feedback"`
	FeedbackDuplicate int           `json:"feedback_duplicate"`
	FeedbackFailed    int           `json:"feedback_failed"`
	Violations        []string      `json:"violations,omitempty"`
	Duration          time.Duration `json:"duration"`
}

// PerSecond returns the calculation throughput.
func (r Report) PerSecond() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Calculations) / r.Duration.Seconds()
}
