// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
	"time"
)

// DeviceProfile describes the touchscreen a player uses. It is produced by a
// device detector and never mutated afterwards.
type DeviceProfile struct {
	ResolutionWidth  int     `json:"resolution_width"`
	ResolutionHeight int     `json:"resolution_height"`
	DPI              float64 `json:"dpi"`
	RefreshRateHz    int     `json:"refresh_rate_hz"`
	HasGyro          bool    `json:"has_gyro"`
}

// SkillLevel is the player's self-reported skill.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
	SkillPro          SkillLevel = "pro"
)

// Valid reports whether s is a known skill level.
func (s SkillLevel) Valid() bool {
	switch s {
	case SkillBeginner, SkillIntermediate, SkillAdvanced, SkillPro:
		return true
	default:
		return false
	}
}

// ParseSkillLevel resolves a skill level case-insensitively.
func ParseSkillLevel(s string) (SkillLevel, error) {
	level := SkillLevel(strings.ToLower(strings.TrimSpace(s)))
	if !level.Valid() {
		return "", fmt.Errorf("%w: unknown skill level %q", ErrInvalidPlayerStyle, s)
	}
	return level, nil
}

// AimingFinger is the finger used to drag the aim.
type AimingFinger string

const (
	AimLeft  AimingFinger = "left"
	AimRight AimingFinger = "right"
	AimThumb AimingFinger = "thumb"
)

// Valid reports whether f is a known aiming finger.
func (f AimingFinger) Valid() bool {
	switch f {
	case AimLeft, AimRight, AimThumb:
		return true
	default:
		return false
	}
}

// ParseAimingFinger resolves an aiming finger case-insensitively.
func ParseAimingFinger(s string) (AimingFinger, error) {
	finger := AimingFinger(strings.ToLower(strings.TrimSpace(s)))
	if !finger.Valid() {
		return "", fmt.Errorf("%w: unknown aiming finger %q", ErrInvalidPlayerStyle, s)
	}
	return finger, nil
}

// PlayerStyle captures how a player holds and aims.
type PlayerStyle struct {
	FingerCount  int          `json:"finger_count"`
	SkillLevel   SkillLevel   `json:"skill_level"`
	AimingFinger AimingFinger `json:"aiming_finger"`
	ClawGrip     bool         `json:"claw_grip"`
}

// GameProfile is one row of the game coefficient table.
type GameProfile struct {
	GameID           string           `json:"game_id"`
	Name             string           `json:"name"`
	Modes            []string         `json:"modes,omitempty"`
	BaseCoefficients map[Axis]float64 `json:"base_coefficients"`
	AxisBounds       map[Axis]Bounds  `json:"axis_bounds"`
}

// HasGyro reports whether the game exposes any gyro axis.
func (g GameProfile) HasGyro() bool {
	for axis := range g.BaseCoefficients {
		if axis.IsGyro() {
			return true
		}
	}
	return false
}

// ResolveMode returns the game's spelling of mode. An empty mode stays empty.
func (g GameProfile) ResolveMode(mode string) (string, error) {
	mode = strings.TrimSpace(mode)
	if mode == "" {
		return "", nil
	}
	for _, m := range g.Modes {
		if strings.EqualFold(m, mode) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not a mode of %s", ErrUnknownMode, mode, g.Name)
}

// SentimentSignal is an already aggregated community mood reading.
// A zero score with zero samples means no signal.
type SentimentSignal struct {
	Score       float64   `json:"score"`
	SampleCount int       `json:"sample_count"`
	Timestamp   time.Time `json:"timestamp"`
}

// SentimentMultiplier is the bounded nudge derived from a SentimentSignal.
type SentimentMultiplier struct {
	Value       float64 `json:"value"`
	SampleCount int     `json:"sample_count"`
	// Applied is false when the signal was too thin to be used.
	Applied bool `json:"applied"`
}

// NeutralSentiment is the multiplier used when no signal is available.
func NeutralSentiment() SentimentMultiplier {
	return SentimentMultiplier{Value: 1}
}

// DeviceFactors are the dimensionless per-axis multipliers from the device.
// Gyro axes are absent when the device has no gyroscope.
type DeviceFactors struct {
	DPIFactor     float64          `json:"dpi_factor"`
	RefreshFactor float64          `json:"refresh_factor"`
	GyroEnabled   bool             `json:"gyro_enabled"`
	PerAxis       map[Axis]float64 `json:"per_axis"`
}

// StyleWeights are the per-axis multipliers derived from a PlayerStyle.
type StyleWeights struct {
	FingerBonus     float64          `json:"finger_bonus"`
	SkillMultiplier float64          `json:"skill_multiplier"`
	PerAxis         map[Axis]float64 `json:"per_axis"`
}

// CalibrationBias is the additive per-axis correction learnt from feedback.
type CalibrationBias struct {
	PerAxis map[Axis]float64 `json:"per_axis"`
	// HistoryWeight is the total decayed weight of the records that were used.
	HistoryWeight float64 `json:"history_weight"`
	Records       int     `json:"records"`
}

// NeutralBias is the bias used when no history is available.
func NeutralBias() CalibrationBias {
	return CalibrationBias{PerAxis: map[Axis]float64{}}
}

// historyEpsilon is the decayed weight below which history counts as absent.
const historyEpsilon = 1e-3

// HasHistory reports whether any non-negligible feedback contributed.
func (b CalibrationBias) HasHistory() bool {
	return b.HistoryWeight > historyEpsilon
}

// For returns the bias of axis, zero when absent.
func (b CalibrationBias) For(axis Axis) float64 {
	return b.PerAxis[axis]
}

// CalculationRequest is one user-initiated calculation.
type CalculationRequest struct {
	Device DeviceProfile `json:"device"`
	Style  PlayerStyle   `json:"style"`
	GameID string        `json:"game_id"`
	Mode   string        `json:"mode,omitempty"`
}

// ExplanationFactor attributes part of an axis value to one input.
// Contribution is a percentage of the final axis value.
type ExplanationFactor struct {
	Axis         Axis    `json:"axis"`
	Name         string  `json:"name"`
	Contribution float64 `json:"contribution"`
}

// CalculationResult is the engine output. It is immutable once produced.
type CalculationResult struct {
	ID                 string              `json:"id"`
	GameID             string              `json:"game_id"`
	Mode               string              `json:"mode,omitempty"`
	PerAxisSensitivity map[Axis]float64    `json:"per_axis_sensitivity"`
	Confidence         float64             `json:"confidence"`
	ExplanationFactors []ExplanationFactor `json:"explanation_factors"`
	Device             DeviceProfile       `json:"device"`
	Style              PlayerStyle         `json:"style"`
	CreatedAt          time.Time           `json:"created_at"`
}

// Axes returns the axes present in the result in canonical order.
func (r CalculationResult) Axes() []Axis {
	out := make([]Axis, 0, len(r.PerAxisSensitivity))
	for _, axis := range axisOrder {
		if _, ok := r.PerAxisSensitivity[axis]; ok {
			out = append(out, axis)
		}
	}
	return out
}

// FactorsFor returns the explanation factors of one axis, in order.
func (r CalculationResult) FactorsFor(axis Axis) []ExplanationFactor {
	var out []ExplanationFactor
	for _, f := range r.ExplanationFactors {
		if f.Axis == axis {
			out = append(out, f)
		}
	}
	return out
}

// Rating deltas accepted in feedback.
const (
	MinRatingDelta = -2
	MaxRatingDelta = 2
)

// FeedbackRecord is a user's verdict on one axis of a past result.
// Positive deltas mean "too low", negative deltas mean "too high".
type FeedbackRecord struct {
	ID          string    `json:"id"`
	ResultID    string    `json:"result_id"`
	GameID      string    `json:"game_id"`
	Axis        Axis      `json:"axis"`
	RatingDelta int       `json:"rating_delta"`
	Note        string    `json:"note,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
