// Package ai drives adversary steering, attacks, and boss phases.
//
// Per-type tuning is data (Profile records loaded from YAML); per-type code is
// a closed behavior table indexed by entity.AdversaryType.
package ai

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/arena/internal/game/entity"
)

// Attack patterns.
const (
	PatternAimed = "aimed"
	PatternFan   = "fan"
	PatternRing  = "ring"
)

// Motion tunes an adversary's integrator. Accel and MaxSpeed grow with AI level.
type Motion struct {
	Accel            float64 `yaml:"accel"`
	AccelPerLevel    float64 `yaml:"accel_per_level"`
	MaxSpeed         float64 `yaml:"max_speed"`
	MaxSpeedPerLevel float64 `yaml:"max_speed_per_level"`
	Friction         float64 `yaml:"friction"`
}

// AccelAt returns the acceleration at AI level.
func (m Motion) AccelAt(level float64) float64 { return m.Accel * (1 + level*m.AccelPerLevel) }

// MaxSpeedAt returns the speed cap at AI level.
func (m Motion) MaxSpeedAt(level float64) float64 {
	return m.MaxSpeed * (1 + level*m.MaxSpeedPerLevel)
}

// Steering holds the weights of the composed steering vector.
type Steering struct {
	Avoid       float64 `yaml:"avoid"`
	HazardBase  float64 `yaml:"hazard_base"`
	HazardSmart float64 `yaml:"hazard_smart"`
	// Group weights the screen (ranged) or guard (melee) term once the AI is smart enough.
	Group float64 `yaml:"group"`

	// The perpendicular wobble is Bias + Amp*sin(t*Freq + x*PhaseX).
	WobbleBias   float64 `yaml:"wobble_bias"`
	WobbleAmp    float64 `yaml:"wobble_amp"`
	WobbleFreq   float64 `yaml:"wobble_freq"`
	WobblePhaseX float64 `yaml:"wobble_phase_x"`

	// PreferredRange > 0 makes the type kite: approach when farther, retreat when closer.
	PreferredRange      float64 `yaml:"preferred_range"`
	PreferredRangeSmart float64 `yaml:"preferred_range_smart"`
}

// Attack describes a ranged volley.
type Attack struct {
	Pattern          string  `yaml:"pattern"`
	Range            float64 `yaml:"range"`
	CooldownMin      float64 `yaml:"cooldown_min"`
	CooldownMax      float64 `yaml:"cooldown_max"`
	CooldownPerLevel float64 `yaml:"cooldown_per_level"`

	Speed  float64 `yaml:"speed"`
	Damage float64 `yaml:"damage"`
	Radius float64 `yaml:"radius"`
	Life   float64 `yaml:"life"`
	Muzzle float64 `yaml:"muzzle"`

	Count         int     `yaml:"count"`
	CountElevated int     `yaml:"count_elevated"`
	ElevatedLevel float64 `yaml:"elevated_level"`
	Spread        float64 `yaml:"spread"`
	Jitter        float64 `yaml:"jitter"`

	// Lead prediction applies once the AI level reaches LeadLevel. LeadScale 0 disables it.
	LeadLevel float64 `yaml:"lead_level"`
	LeadScale float64 `yaml:"lead_scale"`

	ExplodeR       float64 `yaml:"explode_radius"`
	ExplodeFalloff float64 `yaml:"explode_falloff"`

	// Windup > 0 telegraphs the shot: the shooter enters the aim state first.
	Windup float64 `yaml:"windup"`
}

// CountAt returns the projectile count at AI level.
func (a *Attack) CountAt(level float64) int {
	if a.CountElevated > 0 && a.ElevatedLevel > 0 && level >= a.ElevatedLevel {
		return a.CountElevated
	}
	if a.Count < 1 {
		return 1
	}
	return a.Count
}

// Charge describes a telegraphed dash attack.
type Charge struct {
	TriggerRange float64 `yaml:"trigger_range"`
	Windup       float64 `yaml:"windup"`
	Speed        float64 `yaml:"speed"`
	Duration     float64 `yaml:"duration"`
	Decay        float64 `yaml:"decay"`
	LeadLevel    float64 `yaml:"lead_level"`
	LeadTime     float64 `yaml:"lead_time"`
	CooldownMin  float64 `yaml:"cooldown_min"`
	CooldownMax  float64 `yaml:"cooldown_max"`
	PerLevel     float64 `yaml:"cooldown_per_level"`
}

// Profile is the tuning record of one adversary type.
//
// Invariant: Radius > 0 and HP > 0 after Validate.
type Profile struct {
	Name        string               `yaml:"type"`
	Type        entity.AdversaryType `yaml:"-"`
	Radius      float64              `yaml:"radius"`
	HP          float64              `yaml:"hp"`
	Score       float64              `yaml:"score"`
	Force       float64              `yaml:"force"`
	TouchDamage float64              `yaml:"touch_damage"`
	Motion      Motion               `yaml:"motion"`
	Steering    Steering             `yaml:"steering"`
	Attack      *Attack              `yaml:"attack"`
	Charge      *Charge              `yaml:"charge"`
	Boss        *BossTuning          `yaml:"boss"`
}

// Baseline is used for any type without a loaded profile.
func Baseline(t entity.AdversaryType) *Profile {
	p := &Profile{
		Name:        t.String(),
		Type:        t,
		Radius:      15,
		HP:          38,
		Score:       32,
		Force:       2,
		TouchDamage: 16,
		Motion:      Motion{Accel: 1200, AccelPerLevel: 0.03, MaxSpeed: 240, MaxSpeedPerLevel: 0.02, Friction: 8},
		Steering:    Steering{Avoid: 1.35, HazardBase: 0.2, HazardSmart: 1.15, Group: 0.85},
	}
	if t.IsBoss() {
		p.Boss = baselineBoss()
	}
	return p
}

// Validate checks the profile's invariants.
//
// Postcondition: nil return guarantees a known type, positive radius and hp,
// and a well-formed attack when one is present.
func (p *Profile) Validate() error {
	var errs []string
	t, ok := entity.ParseAdversaryType(p.Name)
	if !ok {
		return fmt.Errorf("ai.Profile: unknown adversary type %q", p.Name)
	}
	p.Type = t
	if p.Radius <= 0 {
		errs = append(errs, "radius must be > 0")
	}
	if p.HP <= 0 {
		errs = append(errs, "hp must be > 0")
	}
	if a := p.Attack; a != nil {
		switch a.Pattern {
		case PatternAimed, PatternFan, PatternRing:
		default:
			errs = append(errs, fmt.Sprintf("attack pattern %q must be one of [aimed, fan, ring]", a.Pattern))
		}
		if a.Speed <= 0 {
			errs = append(errs, "attack speed must be > 0")
		}
		if a.CooldownMax < a.CooldownMin {
			errs = append(errs, "attack cooldown_max must not be less than cooldown_min")
		}
	}
	if c := p.Charge; c != nil && (c.Speed <= 0 || c.Duration <= 0) {
		errs = append(errs, "charge speed and duration must be > 0")
	}
	switch {
	case p.Boss != nil && !t.IsBoss():
		errs = append(errs, "boss tuning is only valid on boss types")
	case p.Boss != nil:
		if err := p.Boss.validate(); err != nil {
			errs = append(errs, err.Error())
		}
	case t.IsBoss():
		p.Boss = baselineBoss()
	}
	if len(errs) > 0 {
		return fmt.Errorf("ai.Profile %q: %s", p.Name, strings.Join(errs, "; "))
	}
	return nil
}

var errNoProfiles = errors.New("ai: no adversary profiles defined")
