// Package device maps raw device hardware to dimensionless sensitivity factors.
package device

import (
	"fmt"
	"math"

	"github.com/okian/aimtune/internal/domain/model"
)

// Reference device: a 6.67" phone at 440 dpi has a DPI factor of exactly 1.
const (
	defaultReferenceDPI      = 440.0
	defaultReferenceDiagonal = 6.67

	minDPIFactor = 0.5
	maxDPIFactor = 1.5

	gyroFactor = 1.0
)

// refreshPlateaus maps refresh-rate breakpoints to factors, highest first.
var refreshPlateaus = []struct {
	minHz  int
	factor float64
}{
	{minHz: 144, factor: 1.3},
	{minHz: 120, factor: 1.2},
	{minHz: 90, factor: 1.1},
	{minHz: 60, factor: 1.0},
}

// belowPlateauFactor applies to panels slower than 60 Hz.
const belowPlateauFactor = 0.9

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithReferenceDevice sets the device that maps to a neutral DPI factor.
func WithReferenceDevice(dpi, diagonalInches float64) Option {
	return func(n *Normalizer) {
		if dpi > 0 && diagonalInches > 0 {
			n.referenceDensity = dpi / diagonalInches
		}
	}
}

// Normalizer converts a DeviceProfile into DeviceFactors.
type Normalizer struct {
	referenceDensity float64
}

// NewNormalizer creates a Normalizer calibrated on the reference device.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		referenceDensity: defaultReferenceDPI / defaultReferenceDiagonal,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Validate rejects profiles the normalizer cannot reason about.
func Validate(p model.DeviceProfile) error {
	switch {
	case p.ResolutionWidth <= 0 || p.ResolutionHeight <= 0:
		return fmt.Errorf("%w: resolution %dx%d must be positive", model.ErrInvalidDeviceProfile, p.ResolutionWidth, p.ResolutionHeight)
	case p.DPI <= 0 || math.IsNaN(p.DPI) || math.IsInf(p.DPI, 0):
		return fmt.Errorf("%w: dpi %v must be a positive number", model.ErrInvalidDeviceProfile, p.DPI)
	case p.RefreshRateHz <= 0:
		return fmt.Errorf("%w: refresh rate %d must be positive", model.ErrInvalidDeviceProfile, p.RefreshRateHz)
	}
	return nil
}

// DiagonalInches derives the physical screen diagonal from resolution and dpi.
func DiagonalInches(p model.DeviceProfile) float64 {
	w := float64(p.ResolutionWidth)
	h := float64(p.ResolutionHeight)
	return math.Sqrt(w*w+h*h) / p.DPI
}

// RefreshFactor returns the plateau value for a refresh rate.
func RefreshFactor(hz int) float64 {
	for _, p := range refreshPlateaus {
		if hz >= p.minHz {
			return p.factor
		}
	}
	return belowPlateauFactor
}

// DPIFactor returns the density factor: a denser screen than the reference
// yields a factor below 1.
func (n *Normalizer) DPIFactor(p model.DeviceProfile) float64 {
	density := p.DPI / DiagonalInches(p)
	return clamp(n.referenceDensity/density, minDPIFactor, maxDPIFactor)
}

// Normalize maps a device profile to per-axis factors. Gyro axes are left out
// entirely when the device has no gyroscope.
func (n *Normalizer) Normalize(p model.DeviceProfile) (model.DeviceFactors, error) {
	if err := Validate(p); err != nil {
		return model.DeviceFactors{}, err
	}

	dpi := n.DPIFactor(p)
	refresh := RefreshFactor(p.RefreshRateHz)
	camera := dpi * refresh

	perAxis := make(map[model.Axis]float64, len(model.Axes()))
	for _, axis := range model.Axes() {
		if axis.IsGyro() {
			if p.HasGyro {
				perAxis[axis] = gyroFactor
			}
			continue
		}
		perAxis[axis] = camera
	}

	return model.DeviceFactors{
		DPIFactor:     dpi,
		RefreshFactor: refresh,
		GyroEnabled:   p.HasGyro,
		PerAxis:       perAxis,
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
