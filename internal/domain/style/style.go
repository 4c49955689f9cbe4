// Package style maps subjective player attributes to per-axis weights.
package style

import (
	"fmt"

	"github.com/okian/aimtune/internal/domain/model"
)

// Finger count limits.
const (
	minFingers = 1
	maxFingers = 5
	// fingerBonusCap is the finger count past which extra fingers add nothing.
	fingerBonusCap = 4
)

// fingerBonus applies to aim axes only.
var fingerBonus = map[int]float64{
	1: 1.00,
	2: 1.05,
	3: 1.10,
	4: 1.15,
}

// skillMultiplier is a global step per self-reported level.
var skillMultiplier = map[model.SkillLevel]float64{
	model.SkillBeginner:     0.90,
	model.SkillIntermediate: 1.00,
	model.SkillAdvanced:     1.08,
	model.SkillPro:          1.15,
}

// Claw grip trades free-look stability for scoped precision.
const (
	clawPrecisionBonus  = 1.05
	clawFreeLookPenalty = 0.92
	thumbDamping        = 0.95
)

// Weighter converts a PlayerStyle into StyleWeights.
type Weighter struct{}

// NewWeighter creates a Weighter.
func NewWeighter() *Weighter {
	return &Weighter{}
}

// Validate rejects styles outside the supported ranges.
func Validate(s model.PlayerStyle) error {
	if s.FingerCount < minFingers || s.FingerCount > maxFingers {
		return fmt.Errorf("%w: finger count %d outside [%d,%d]", model.ErrInvalidPlayerStyle, s.FingerCount, minFingers, maxFingers)
	}
	if !s.SkillLevel.Valid() {
		return fmt.Errorf("%w: unknown skill level %q", model.ErrInvalidPlayerStyle, s.SkillLevel)
	}
	if !s.AimingFinger.Valid() {
		return fmt.Errorf("%w: unknown aiming finger %q", model.ErrInvalidPlayerStyle, s.AimingFinger)
	}
	return nil
}

// FingerBonus returns the aim-axis bonus for a finger count.
func FingerBonus(fingers int) float64 {
	if fingers > fingerBonusCap {
		fingers = fingerBonusCap
	}
	if bonus, ok := fingerBonus[fingers]; ok {
		return bonus
	}
	return 1
}

// Weight returns one multiplier per known axis.
func (w *Weighter) Weight(s model.PlayerStyle) (model.StyleWeights, error) {
	if err := Validate(s); err != nil {
		return model.StyleWeights{}, err
	}

	finger := FingerBonus(s.FingerCount)
	skill := skillMultiplier[s.SkillLevel]

	perAxis := make(map[model.Axis]float64, len(model.Axes()))
	for _, axis := range model.Axes() {
		weight := skill
		if axis.IsAim() {
			weight *= finger
		}
		if s.ClawGrip {
			switch {
			case axis.IsPrecision():
				weight *= clawPrecisionBonus
			case axis == model.AxisFreeLook:
				weight *= clawFreeLookPenalty
			}
		}
		if s.AimingFinger == model.AimThumb {
			weight *= thumbDamping
		}
		perAxis[axis] = weight
	}

	return model.StyleWeights{
		FingerBonus:     finger,
		SkillMultiplier: skill,
		PerAxis:         perAxis,
	}, nil
}
