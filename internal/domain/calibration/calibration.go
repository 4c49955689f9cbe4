// Package calibration derives a per-axis bias from past user feedback.
//
// The bias is recomputed from history on every call. Each record is weighted
// by exponential decay so recent verdicts dominate and stale ones fade out.
package calibration

import (
	"math"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/okian/aimtune/internal/domain/model"
)

const (
	// DefaultHalfLife is the age at which a record counts half.
	DefaultHalfLife = 7 * 24 * time.Hour
	// biasScale converts a mean rating delta into a relative correction.
	biasScale = 0.1
	maxBias   = 0.2
)

// Option applies a configuration option to the Calibrator.
type Option func(*Calibrator)

// WithClock sets the clock used to age records.
func WithClock(c clockwork.Clock) Option {
	return func(cal *Calibrator) {
		if c != nil {
			cal.clock = c
		}
	}
}

// WithHalfLife sets the decay half-life. Non-positive values are ignored.
func WithHalfLife(d time.Duration) Option {
	return func(cal *Calibrator) {
		if d > 0 {
			cal.halfLife = d
		}
	}
}

// Calibrator turns feedback history into a CalibrationBias.
type Calibrator struct {
	clock    clockwork.Clock
	halfLife time.Duration
}

// NewCalibrator creates a Calibrator on the real clock.
func NewCalibrator(opts ...Option) *Calibrator {
	c := &Calibrator{
		clock:    clockwork.NewRealClock(),
		halfLife: DefaultHalfLife,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HalfLife returns the configured half-life.
func (c *Calibrator) HalfLife() time.Duration {
	return c.halfLife
}

// CalibrationBias computes the bias for gameID as of now.
func (c *Calibrator) CalibrationBias(history []model.FeedbackRecord, gameID string) model.CalibrationBias {
	return c.BiasAt(history, gameID, c.clock.Now())
}

// BiasAt computes the bias for gameID as of now. Records of other games are
// ignored and records without an axis count towards general.
func (c *Calibrator) BiasAt(history []model.FeedbackRecord, gameID string, now time.Time) model.CalibrationBias {
	sums := make(map[model.Axis]float64)
	weights := make(map[model.Axis]float64)

	bias := model.NeutralBias()
	for _, rec := range history {
		if !strings.EqualFold(rec.GameID, gameID) {
			continue
		}
		axis := rec.Axis
		if !axis.Valid() {
			parsed, err := model.ParseAxis(string(axis))
			if err != nil {
				continue
			}
			axis = parsed
		}
		delta := math.Max(model.MinRatingDelta, math.Min(model.MaxRatingDelta, float64(rec.RatingDelta)))

		w := c.weight(now.Sub(rec.Timestamp))
		sums[axis] += w * delta
		weights[axis] += w
		bias.HistoryWeight += w
		bias.Records++
	}

	for axis, sum := range sums {
		mean := sum / math.Max(1, weights[axis])
		bias.PerAxis[axis] = math.Max(-maxBias, math.Min(maxBias, biasScale*mean))
	}
	return bias
}

// weight is 2^(-age/halfLife). Future records count as fresh.
func (c *Calibrator) weight(age time.Duration) float64 {
	if age < 0 {
		age = 0
	}
	return math.Exp2(-float64(age) / float64(c.halfLife))
}
