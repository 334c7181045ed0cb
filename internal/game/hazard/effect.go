// Package hazard evaluates environmental fields and resolves per-room stage layouts.
package hazard

import "fmt"

// Effect is the closed set of environmental effects.
type Effect uint8

const (
	EffectNone Effect = iota
	EffectLava
	EffectIce
	EffectToxic
	EffectMagnet
	EffectVoid
)

var effectNames = []string{"none", "lava", "ice", "toxic", "magnet", "void"}

func (e Effect) String() string {
	if int(e) < len(effectNames) {
		return effectNames[e]
	}
	return fmt.Sprintf("effect(%d)", uint8(e))
}

// ParseEffect maps a content tag to an effect.
func ParseEffect(s string) (Effect, error) {
	for i, name := range effectNames {
		if name == s {
			return Effect(i), nil
		}
	}
	return EffectNone, fmt.Errorf("unknown hazard type %q", s)
}

// Params are the tunable strengths of a floor region. Zero fields take the
// effect's default when the region is resolved.
type Params struct {
	DPS           float64 `yaml:"dps"`
	FrictionMul   float64 `yaml:"friction_mul"`
	SpeedMul      float64 `yaml:"speed_mul"`
	AntiFriction  float64 `yaml:"anti_friction"`
	MaxSpeed      float64 `yaml:"max_speed"`
	Slow          float64 `yaml:"slow"`
	FocusDrain    float64 `yaml:"focus_drain"`
	FocusRegenMul float64 `yaml:"focus_regen_mul"`
	FocusCostMul  float64 `yaml:"focus_cost_mul"`
}

// DefaultParams returns the stock strengths for e.
func DefaultParams(e Effect) Params {
	switch e {
	case EffectLava:
		return Params{DPS: 18}
	case EffectIce:
		return Params{FrictionMul: 0.05, SpeedMul: 1.18, AntiFriction: 9, MaxSpeed: 640}
	case EffectToxic:
		return Params{DPS: 5, Slow: 0.82, FocusDrain: 10, FocusRegenMul: 0.35, FocusCostMul: 1.9}
	}
	return Params{}
}

// WithDefaults fills zero fields of p from DefaultParams(e).
func (p Params) WithDefaults(e Effect) Params {
	d := DefaultParams(e)
	fill := func(v *float64, def float64) {
		if *v == 0 {
			*v = def
		}
	}
	fill(&p.DPS, d.DPS)
	fill(&p.FrictionMul, d.FrictionMul)
	fill(&p.SpeedMul, d.SpeedMul)
	fill(&p.AntiFriction, d.AntiFriction)
	fill(&p.MaxSpeed, d.MaxSpeed)
	fill(&p.Slow, d.Slow)
	fill(&p.FocusDrain, d.FocusDrain)
	fill(&p.FocusRegenMul, d.FocusRegenMul)
	fill(&p.FocusCostMul, d.FocusCostMul)
	return p
}
