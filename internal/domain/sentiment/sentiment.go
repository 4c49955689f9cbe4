// Package sentiment turns community mood into a bounded sensitivity nudge.
package sentiment

import (
	"math"
	"time"

	"github.com/okian/aimtune/internal/domain/model"
)

const (
	// DefaultMinSamples is the sample count below which a signal is ignored.
	DefaultMinSamples = 5
	// maxSwing is the largest relative change sentiment may cause.
	maxSwing = 0.1
)

// Option configures an Adjuster.
type Option func(*Adjuster)

// WithMinSamples overrides the sample threshold. Non-positive values are ignored.
func WithMinSamples(n int) Option {
	return func(a *Adjuster) {
		if n > 0 {
			a.minSamples = n
		}
	}
}

// Adjuster converts a SentimentSignal into a multiplier in [0.9, 1.1].
type Adjuster struct {
	minSamples int
}

// NewAdjuster creates an Adjuster.
func NewAdjuster(opts ...Option) *Adjuster {
	a := &Adjuster{minSamples: DefaultMinSamples}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// MinSamples returns the active threshold.
func (a *Adjuster) MinSamples() int {
	return a.minSamples
}

// Adjust returns exactly 1.0 for thin or malformed signals.
func (a *Adjuster) Adjust(signal model.SentimentSignal) model.SentimentMultiplier {
	if signal.SampleCount < a.minSamples || math.IsNaN(signal.Score) || math.IsInf(signal.Score, 0) {
		return model.SentimentMultiplier{Value: 1, SampleCount: signal.SampleCount}
	}
	score := math.Max(-1, math.Min(1, signal.Score))
	return model.SentimentMultiplier{
		Value:       1 + maxSwing*score,
		SampleCount: signal.SampleCount,
		Applied:     true,
	}
}

// Label is the polarity of one community post.
type Label string

const (
	Positive Label = "positive"
	Neutral  Label = "neutral"
	Negative Label = "negative"
)

// Score maps a label to +1, 0 or -1. Unknown labels score 0.
func (l Label) Score() float64 {
	switch l {
	case Positive:
		return 1
	case Negative:
		return -1
	default:
		return 0
	}
}

// Valid reports whether l is a known label.
func (l Label) Valid() bool {
	return l == Positive || l == Neutral || l == Negative
}

// FromLabels averages labelled posts into a signal stamped with ts.
func FromLabels(labels []Label, ts time.Time) model.SentimentSignal {
	if len(labels) == 0 {
		return model.SentimentSignal{Timestamp: ts}
	}
	var sum float64
	for _, l := range labels {
		sum += l.Score()
	}
	return model.SentimentSignal{
		Score:       sum / float64(len(labels)),
		SampleCount: len(labels),
		Timestamp:   ts,
	}
}
