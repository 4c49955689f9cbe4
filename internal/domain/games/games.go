// Package games holds the static per-game coefficient table.
package games

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/okian/aimtune/internal/domain/model"
)

//go:embed games.yaml
var embeddedTable []byte

// Extreme products of the non-base terms on the freeLook axis: DPI factor
// [0.5, 1.5], refresh [0.9, 1.3], skill [0.9, 1.15], thumb 0.95, claw 0.92,
// sentiment [0.9, 1.1] and calibration [0.8, 1.2]. A freeLook base must stay
// strictly inside its bounds across this range.
const (
	MaxFreeLookGain = 1.5 * 1.3 * 1.15 * 1.1 * 1.2
	MinFreeLookGain = 0.5 * 0.9 * 0.9 * 0.95 * 0.92 * 0.9 * 0.8
)

type axisFile struct {
	Base float64 `yaml:"base"`
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
}

type gameFile struct {
	ID      string              `yaml:"id"`
	Name    string              `yaml:"name"`
	Aliases []string            `yaml:"aliases"`
	Modes   []string            `yaml:"modes"`
	Axes    map[string]axisFile `yaml:"axes"`
}

type tableFile struct {
	Games []gameFile `yaml:"games"`
}

// Table is an immutable, validated set of game profiles.
type Table struct {
	profiles map[string]model.GameProfile
	// index maps lower-cased ids, names and aliases to ids.
	index map[string]string
	order []string
}

// Default returns the table compiled into the binary.
func Default() (*Table, error) {
	return Parse(embeddedTable)
}

// Load reads a replacement table from a YAML file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read game table %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("game table %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes and validates a YAML table.
func Parse(data []byte) (*Table, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", model.ErrInvalidGameProfile, err)
	}
	if len(file.Games) == 0 {
		return nil, fmt.Errorf("%w: table has no games", model.ErrInvalidGameProfile)
	}

	t := &Table{
		profiles: make(map[string]model.GameProfile, len(file.Games)),
		index:    make(map[string]string),
	}
	for _, g := range file.Games {
		profile, err := g.toProfile()
		if err != nil {
			return nil, err
		}
		if _, dup := t.profiles[profile.GameID]; dup {
			return nil, fmt.Errorf("%w: duplicate game id %q", model.ErrInvalidGameProfile, profile.GameID)
		}
		t.profiles[profile.GameID] = profile
		t.order = append(t.order, profile.GameID)

		keys := append([]string{profile.GameID, profile.Name}, g.Aliases...)
		for _, key := range keys {
			key = normalizeKey(key)
			if key == "" {
				continue
			}
			if owner, taken := t.index[key]; taken && owner != profile.GameID {
				return nil, fmt.Errorf("%w: key %q used by %s and %s", model.ErrInvalidGameProfile, key, owner, profile.GameID)
			}
			t.index[key] = profile.GameID
		}
	}
	return t, nil
}

func (g gameFile) toProfile() (model.GameProfile, error) {
	id := strings.TrimSpace(g.ID)
	if id == "" {
		return model.GameProfile{}, fmt.Errorf("%w: game without id", model.ErrInvalidGameProfile)
	}
	name := strings.TrimSpace(g.Name)
	if name == "" {
		name = id
	}

	p := model.GameProfile{
		GameID:           id,
		Name:             name,
		Modes:            append([]string(nil), g.Modes...),
		BaseCoefficients: make(map[model.Axis]float64, len(g.Axes)),
		AxisBounds:       make(map[model.Axis]model.Bounds, len(g.Axes)),
	}
	for tag, a := range g.Axes {
		axis, err := model.ParseAxis(tag)
		if err != nil || strings.TrimSpace(tag) == "" {
			return model.GameProfile{}, fmt.Errorf("%w: %s: axis %q", model.ErrInvalidGameProfile, id, tag)
		}
		p.BaseCoefficients[axis] = a.Base
		p.AxisBounds[axis] = model.Bounds{Min: a.Min, Max: a.Max}
	}
	if err := Validate(p); err != nil {
		return model.GameProfile{}, err
	}
	return p, nil
}

// Validate checks that every axis has a positive base and well-formed bounds,
// and that no freeLook value can be clamped.
func Validate(p model.GameProfile) error {
	if len(p.BaseCoefficients) == 0 {
		return fmt.Errorf("%w: %s defines no axes", model.ErrInvalidGameProfile, p.GameID)
	}
	if _, ok := p.BaseCoefficients[model.AxisGeneral]; !ok {
		return fmt.Errorf("%w: %s has no general axis", model.ErrInvalidGameProfile, p.GameID)
	}
	for axis, base := range p.BaseCoefficients {
		if !(base > 0) {
			return fmt.Errorf("%w: %s.%s base %v must be positive", model.ErrInvalidGameProfile, p.GameID, axis, base)
		}
		b, ok := p.AxisBounds[axis]
		if !ok {
			return fmt.Errorf("%w: %s.%s has no bounds", model.ErrInvalidGameProfile, p.GameID, axis)
		}
		if !b.Valid() {
			return fmt.Errorf("%w: %s.%s min %v > max %v", model.ErrInvalidGameProfile, p.GameID, axis, b.Min, b.Max)
		}
	}
	for axis, b := range p.AxisBounds {
		if !b.Valid() {
			return fmt.Errorf("%w: %s.%s min %v > max %v", model.ErrInvalidGameProfile, p.GameID, axis, b.Min, b.Max)
		}
	}
	if base, ok := p.BaseCoefficients[model.AxisFreeLook]; ok {
		b := p.AxisBounds[model.AxisFreeLook]
		if base*MaxFreeLookGain >= b.Max || base*MinFreeLookGain <= b.Min {
			return fmt.Errorf("%w: %s.freeLook base %v can reach its bounds [%v, %v]; keep it within (%.2f, %.2f)",
				model.ErrInvalidGameProfile, p.GameID, base, b.Min, b.Max, b.Min/MinFreeLookGain, b.Max/MaxFreeLookGain)
		}
	}
	return nil
}

// CoefficientsFor looks a game up by id, name or alias, case-insensitively.
// The returned profile is a copy.
func (t *Table) CoefficientsFor(gameID string) (model.GameProfile, error) {
	id, ok := t.index[normalizeKey(gameID)]
	if !ok {
		return model.GameProfile{}, fmt.Errorf("%w: %q", model.ErrUnknownGame, gameID)
	}
	return clone(t.profiles[id]), nil
}

// List returns every profile in table order.
func (t *Table) List() []model.GameProfile {
	out := make([]model.GameProfile, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, clone(t.profiles[id]))
	}
	return out
}

// Len returns the number of games.
func (t *Table) Len() int {
	return len(t.order)
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clone(p model.GameProfile) model.GameProfile {
	out := p
	out.Modes = append([]string(nil), p.Modes...)
	out.BaseCoefficients = make(map[model.Axis]float64, len(p.BaseCoefficients))
	for k, v := range p.BaseCoefficients {
		out.BaseCoefficients[k] = v
	}
	out.AxisBounds = make(map[model.Axis]model.Bounds, len(p.AxisBounds))
	for k, v := range p.AxisBounds {
		out.AxisBounds[k] = v
	}
	return out
}
