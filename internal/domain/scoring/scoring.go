// Package scoring composes per-axis sensitivities from normalized factors.
package scoring

import (
	"fmt"
	"math"

	"github.com/okian/aimtune/internal/domain/model"
)

// Default composition constants.
const (
	// DefaultConfidenceBaseline is the confidence of a result with no signal and no history.
	DefaultConfidenceBaseline = 0.6
	sentimentConfidenceBonus  = 0.2
	historyConfidenceBonus    = 0.2
	// sentimentSaturation is the sample count at which sentiment adds its full bonus.
	sentimentSaturation = 50.0
	// historySaturation is the decayed history weight at which history adds its full bonus.
	historySaturation = 3.0
	maxConfidence     = 1.0
)

// Explanation factor names, in the order they are emitted per axis.
const (
	FactorBase        = "base"
	FactorDevice      = "device"
	FactorStyle       = "style"
	FactorSentiment   = "sentiment"
	FactorCalibration = "calibration"
	FactorClamp       = "clamp"
)

// Option applies a configuration option to the Composer.
type Option func(*Composer)

// WithConfidenceBaseline sets the confidence reported without any sentiment or history.
func WithConfidenceBaseline(baseline float64) Option {
	return func(c *Composer) {
		if baseline >= 0 && baseline <= maxConfidence {
			c.baseline = baseline
		}
	}
}

// Composer merges device, style, game, sentiment and calibration inputs.
// It holds no mutable state and is safe for concurrent use.
type Composer struct {
	baseline float64
}

// NewComposer creates a Composer with configuration options.
func NewComposer(opts ...Option) *Composer {
	c := &Composer{baseline: DefaultConfidenceBaseline}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Baseline returns the configured confidence baseline.
func (c *Composer) Baseline() float64 {
	return c.baseline
}

// Compose computes every axis present in both the game profile and the device
// factors. The caller fills identity fields such as ID and CreatedAt.
func (c *Composer) Compose(
	device model.DeviceFactors,
	style model.StyleWeights,
	game model.GameProfile,
	sentiment model.SentimentMultiplier,
	bias model.CalibrationBias,
) (model.CalculationResult, error) {
	for axis, b := range game.AxisBounds {
		if !b.Valid() {
			return model.CalculationResult{}, fmt.Errorf("%w: %s.%s min %v > max %v", model.ErrInvalidGameProfile, game.GameID, axis, b.Min, b.Max)
		}
	}

	m := sentiment.Value
	if !(m > 0) || math.IsInf(m, 0) {
		m = 1
	}

	result := model.CalculationResult{
		GameID:             game.GameID,
		PerAxisSensitivity: make(map[model.Axis]float64, len(game.BaseCoefficients)),
	}

	for _, axis := range model.Axes() {
		base, ok := game.BaseCoefficients[axis]
		if !ok {
			continue
		}
		d, ok := device.PerAxis[axis]
		if !ok {
			continue
		}
		bounds, ok := game.AxisBounds[axis]
		if !ok {
			return model.CalculationResult{}, fmt.Errorf("%w: %s.%s has no bounds", model.ErrInvalidGameProfile, game.GameID, axis)
		}
		if !(base > 0) {
			return model.CalculationResult{}, fmt.Errorf("%w: %s.%s base %v must be positive", model.ErrInvalidGameProfile, game.GameID, axis, base)
		}

		s, ok := style.PerAxis[axis]
		if !ok {
			s = 1
		}
		calibration := 1 + bias.For(axis)

		raw := base * d * s * m * calibration
		final := bounds.Clamp(raw)
		result.PerAxisSensitivity[axis] = final
		result.ExplanationFactors = append(result.ExplanationFactors, explain(axis, base, raw, final, d, s, m, calibration)...)
	}

	result.Confidence = c.confidence(sentiment, bias)
	return result, nil
}

// explain attributes the final value of one axis to each input. The base and
// clamp entries are shares of final; each term t contributes (1-1/t).
func explain(axis model.Axis, base, raw, final float64, terms ...float64) []model.ExplanationFactor {
	names := []string{FactorDevice, FactorStyle, FactorSentiment, FactorCalibration}

	factors := make([]model.ExplanationFactor, 0, len(names)+2)
	factors = append(factors, model.ExplanationFactor{Axis: axis, Name: FactorBase, Contribution: percent(base, final)})
	for i, t := range terms {
		factors = append(factors, model.ExplanationFactor{Axis: axis, Name: names[i], Contribution: termContribution(t)})
	}
	if final != raw {
		factors = append(factors, model.ExplanationFactor{Axis: axis, Name: FactorClamp, Contribution: percent(final-raw, final)})
	}
	return factors
}

// termContribution is the share of the value added (or removed) by a
// multiplicative term.
func termContribution(t float64) float64 {
	if t == 0 {
		return 0
	}
	return (1 - 1/t) * 100
}

func percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

func (c *Composer) confidence(sentiment model.SentimentMultiplier, bias model.CalibrationBias) float64 {
	confidence := c.baseline
	if sentiment.Applied {
		confidence += sentimentConfidenceBonus * math.Min(1, float64(sentiment.SampleCount)/sentimentSaturation)
	}
	if bias.HasHistory() {
		confidence += historyConfidenceBonus * math.Min(1, bias.HistoryWeight/historySaturation)
	}
	return math.Min(maxConfidence, confidence)
}
