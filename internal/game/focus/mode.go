// Package focus implements the time-distortion resource gate and its modes.
//
// A Mode is a fixed-schema record; the Controller reads only declared fields
// and substitutes defaults for anything a mode leaves unset.
package focus

import (
	"fmt"
	"strings"
)

// Floors applied to every mode regardless of its authored thresholds.
const (
	minActivateFloor = 10.0
	minSustainFloor  = 2.0
	costMulFloor     = 0.70
	regenMulCap      = 3.0
	baseRegen        = 7.5
	defaultEase      = 12.0
	defaultScale     = 0.28
	defaultCost      = 32.0
	playerDtBase     = 0.82
	playerDtFollow   = 0.18
	pierceDecay      = 0.85
)

// Radial is a radius and strength pair used by repel fields.
type Radial struct {
	Radius   float64 `yaml:"radius"`
	Strength float64 `yaml:"strength"`
}

// Reflect flips hostile projectiles that enter the inner core.
type Reflect struct {
	Inner     float64 `yaml:"inner"`
	SpeedMul  float64 `yaml:"speed_mul"`
	DamageMul float64 `yaml:"damage_mul"`
}

// Homing steers avatar projectiles toward the nearest adversary in Radius.
type Homing struct {
	Radius float64 `yaml:"radius"`
	Turn   float64 `yaml:"turn"`
}

// OnHit is the meter gain per avatar hit while the mode is active.
type OnHit struct {
	Focus float64 `yaml:"focus"`
	HP    float64 `yaml:"hp"`
}

// OnHitCap bounds OnHit gains per one-second budget window.
type OnHitCap struct {
	FocusPerSec float64 `yaml:"focus_per_sec"`
	HPPerSec    float64 `yaml:"hp_per_sec"`
}

// Barrier is the keep-away window opened by each pulse.
type Barrier struct {
	Duration float64 `yaml:"duration"`
	Radius   float64 `yaml:"radius"`
	Strength float64 `yaml:"strength"`
}

// Pulse is a radial burst fired on activation and periodically while sustained.
type Pulse struct {
	Period         float64  `yaml:"period"`
	Radius         float64  `yaml:"radius"`
	Damage         float64  `yaml:"damage"`
	Mul            float64  `yaml:"mul"`
	Falloff        float64  `yaml:"falloff"`
	Knock          float64  `yaml:"knock"`
	Shake          float64  `yaml:"shake"`
	ClearBullets   bool     `yaml:"clear_bullets"`
	ClearRadiusMul float64  `yaml:"clear_radius_mul"`
	IFrames        float64  `yaml:"iframes"`
	Cost           float64  `yaml:"cost"`
	TapCooldown    float64  `yaml:"tap_cooldown"`
	Immediate      *bool    `yaml:"immediate"`
	Barrier        *Barrier `yaml:"barrier"`
}

// FiresOnActivate reports whether the first pulse fires on the activation frame.
func (p *Pulse) FiresOnActivate() bool { return p.Immediate == nil || *p.Immediate }

// Mode is one focus playstyle.
type Mode struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Tagline string `yaml:"tagline"`

	TimeScale   float64 `yaml:"time_scale"`
	Ease        float64 `yaml:"ease"`
	CostPerSec  float64 `yaml:"cost_per_sec"`
	StartCost   float64 `yaml:"start_cost"`
	MinActivate float64 `yaml:"min_activate"`
	MinSustain  float64 `yaml:"min_sustain"`
	Recover     float64 `yaml:"recover"`

	MoveMul         float64 `yaml:"move_mul"`
	FireMul         float64 `yaml:"fire_mul"`
	BulletSpeedMul  float64 `yaml:"bullet_speed_mul"`
	BulletLifeMul   float64 `yaml:"bullet_life_mul"`
	DmgMul          float64 `yaml:"dmg_mul"`
	DmgTakenMul     float64 `yaml:"dmg_taken_mul"`
	SpreadMul       float64 `yaml:"spread_mul"`
	CritAdd         float64 `yaml:"crit_add"`
	PierceAdd       int     `yaml:"pierce_add"`
	PierceDamageMul float64 `yaml:"pierce_damage_mul"`

	Shield       *Radial   `yaml:"shield"`
	RepelEnemies *Radial   `yaml:"repel_enemies"`
	RepelBullets *Radial   `yaml:"repel_bullets"`
	Reflect      *Reflect  `yaml:"reflect"`
	Homing       *Homing   `yaml:"homing"`
	DenyRadius   float64   `yaml:"deny_radius"`
	Drag         float64   `yaml:"drag"`
	OnHit        *OnHit    `yaml:"on_hit"`
	OnHitCap     *OnHitCap `yaml:"on_hit_cap"`
	Pulse        *Pulse    `yaml:"pulse"`
}

func orOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

func orValue(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// applyDefaults fills every unset field.
//
// Postcondition: MinActivate >= 10, MinSustain >= 2, Recover >= MinActivate, all
// multipliers non-zero.
func (m *Mode) applyDefaults() {
	m.TimeScale = orValue(m.TimeScale, defaultScale)
	m.Ease = orValue(m.Ease, defaultEase)
	m.CostPerSec = orValue(m.CostPerSec, defaultCost)
	m.MinActivate = max(m.MinActivate, minActivateFloor)
	m.MinSustain = max(m.MinSustain, minSustainFloor)
	m.Recover = max(m.Recover, m.MinActivate)

	m.MoveMul = orOne(m.MoveMul)
	m.FireMul = orOne(m.FireMul)
	m.BulletSpeedMul = orOne(m.BulletSpeedMul)
	m.BulletLifeMul = orOne(m.BulletLifeMul)
	m.DmgMul = orOne(m.DmgMul)
	m.DmgTakenMul = orOne(m.DmgTakenMul)
	m.SpreadMul = orOne(m.SpreadMul)
	m.PierceDamageMul = orValue(m.PierceDamageMul, pierceDecay)

	if s := m.Shield; s != nil {
		s.Radius = orValue(s.Radius, 150)
	}
	if r := m.RepelEnemies; r != nil {
		r.Radius = orValue(r.Radius, 180)
		r.Strength = orValue(r.Strength, 4200)
	}
	if r := m.RepelBullets; r != nil {
		r.Radius = orValue(r.Radius, 210)
		r.Strength = orValue(r.Strength, 5200)
	}
	if r := m.Reflect; r != nil {
		if r.Inner == 0 && m.RepelBullets != nil {
			r.Inner = m.RepelBullets.Radius * 0.55
		}
		r.SpeedMul = orValue(r.SpeedMul, 1.05)
		r.DamageMul = orValue(r.DamageMul, 0.75)
	}
	if h := m.Homing; h != nil {
		h.Radius = orValue(h.Radius, 520)
		h.Turn = orValue(h.Turn, 6)
	}
	if p := m.Pulse; p != nil {
		p.Period = orValue(p.Period, 0.65)
		p.Radius = orValue(p.Radius, 170)
		p.Damage = orValue(p.Damage, 14)
		p.Mul = orOne(p.Mul)
		p.Falloff = orOne(p.Falloff)
		p.ClearRadiusMul = orValue(p.ClearRadiusMul, 1.05)
		if b := p.Barrier; b != nil {
			b.Duration = orValue(b.Duration, 0.22)
			b.Radius = orValue(b.Radius, p.Radius*0.70)
			b.Strength = orValue(b.Strength, 8200)
		}
	}
}

// Validate applies defaults and checks the mode.
//
// Postcondition: nil return guarantees a non-empty id, a time scale in (0, 1],
// and a positive pulse period when a pulse is declared.
func (m *Mode) Validate() error {
	var errs []string
	if m.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	m.ID = strings.ToLower(m.ID)
	if m.TimeScale < 0 || m.TimeScale > 1 {
		errs = append(errs, fmt.Sprintf("time_scale must be in (0, 1], got %g", m.TimeScale))
	}
	if m.CostPerSec < 0 || m.StartCost < 0 {
		errs = append(errs, "costs must not be negative")
	}
	if p := m.Pulse; p != nil && p.Period < 0 {
		errs = append(errs, "pulse period must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("focus.Mode %q: %s", m.ID, strings.Join(errs, "; "))
	}
	m.applyDefaults()
	return nil
}
