package model

import (
	"fmt"
	"strings"
)

// Axis names one sensitivity slider exposed by a game.
type Axis string

// Camera axes exist in every game. Gyro axes exist only where the game
// supports gyroscope aiming and are skipped for devices without a gyro.
const (
	AxisGeneral     Axis = "general"
	AxisRedDot      Axis = "redDot"
	AxisScope2x     Axis = "scope2x"
	AxisScope4x     Axis = "scope4x"
	AxisSniperScope Axis = "sniperScope"
	AxisFreeLook    Axis = "freeLook"
	AxisGyroGeneral Axis = "gyroGeneral"
	AxisGyroScope   Axis = "gyroScope"
)

// axisOrder is the canonical output order.
var axisOrder = []Axis{
	AxisGeneral,
	AxisRedDot,
	AxisScope2x,
	AxisScope4x,
	AxisSniperScope,
	AxisFreeLook,
	AxisGyroGeneral,
	AxisGyroScope,
}

// Axes returns every known axis in canonical order.
func Axes() []Axis {
	out := make([]Axis, len(axisOrder))
	copy(out, axisOrder)
	return out
}

// Valid reports whether a is a known axis.
func (a Axis) Valid() bool {
	for _, known := range axisOrder {
		if a == known {
			return true
		}
	}
	return false
}

// IsGyro reports whether the axis depends on a gyroscope.
func (a Axis) IsGyro() bool {
	return a == AxisGyroGeneral || a == AxisGyroScope
}

// IsAim reports whether the axis is used to put the crosshair on target.
// Free look only rotates the camera.
func (a Axis) IsAim() bool {
	return a.Valid() && a != AxisFreeLook
}

// IsPrecision reports whether the axis is an aim-down-sights axis.
func (a Axis) IsPrecision() bool {
	switch a {
	case AxisRedDot, AxisScope2x, AxisScope4x, AxisSniperScope:
		return true
	default:
		return false
	}
}

// ParseAxis resolves an axis tag case-insensitively. An empty tag means general.
func ParseAxis(s string) (Axis, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return AxisGeneral, nil
	}
	for _, known := range axisOrder {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown axis %q", s)
}

// Bounds is the closed slider range of an axis.
type Bounds struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Valid reports whether the range is well formed.
func (b Bounds) Valid() bool {
	return b.Min <= b.Max
}

// Clamp limits v to the range.
func (b Bounds) Clamp(v float64) float64 {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}
