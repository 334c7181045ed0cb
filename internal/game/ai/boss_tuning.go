package ai

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/arena/internal/game/entity"
)

// PatternSway fires a mirrored pair whose angle oscillates with the body's clock.
const PatternSway = "sway"

const (
	defaultEnrage = 0.45
	bossMuzzle    = 8.0
	bossFalloff   = 0.78
)

// Phased is a boss value for the normal and enraged phases. In YAML it is
// either a scalar used by both phases or a two-element sequence.
type Phased [2]float64

// UnmarshalYAML accepts a scalar or a two-element sequence.
func (p *Phased) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		var v float64
		if err := n.Decode(&v); err != nil {
			return err
		}
		*p = Phased{v, v}
		return nil
	}
	var vs []float64
	if err := n.Decode(&vs); err != nil {
		return err
	}
	if len(vs) != 2 {
		return fmt.Errorf("line %d: phased value needs 2 entries, got %d", n.Line, len(vs))
	}
	*p = Phased{vs[0], vs[1]}
	return nil
}

// At returns the value for phase (1 or 2).
func (p Phased) At(phase int) float64 {
	if phase >= 2 {
		return p[1]
	}
	return p[0]
}

// N returns the value for phase truncated to an integer.
func (p Phased) N(phase int) int { return int(p.At(phase)) }

// BossMotion is the preferred-range movement of a boss.
type BossMotion struct {
	Want     float64 `yaml:"want"`
	Accel    float64 `yaml:"accel"`
	MaxSpeed float64 `yaml:"max_speed"`
	Friction float64 `yaml:"friction"`
	Wobble   float64 `yaml:"wobble"`
}

// Volley is one boss attack on its own cooldown. Range > 0 holds fire while
// the avatar is at least that far away.
type Volley struct {
	Pattern  string  `yaml:"pattern"`
	Cooldown Phased  `yaml:"cooldown"`
	Range    float64 `yaml:"range"`
	Count    Phased  `yaml:"count"`
	Spread   Phased  `yaml:"spread"`
	Jitter   float64 `yaml:"jitter"`
	Sway     float64 `yaml:"sway"`
	SwayFreq float64 `yaml:"sway_freq"`
	Speed    Phased  `yaml:"speed"`
	Damage   Phased  `yaml:"damage"`
	Radius   float64 `yaml:"radius"`
	Life     float64 `yaml:"life"`
	ExplodeR Phased  `yaml:"explode_radius"`
	Pierce   Phased  `yaml:"pierce"`
}

// Blink is the warden's sidestep.
type Blink struct {
	Cooldown Phased  `yaml:"cooldown"`
	Distance Phased  `yaml:"distance"`
	Range    float64 `yaml:"range"`
}

// Swap times the warden's weapon changes: each wait is drawn from [Min, Max].
type Swap struct {
	Min Phased `yaml:"min"`
	Max Phased `yaml:"max"`
}

// GravityPulse pulls the avatar toward the boss, fading to zero at Reach.
type GravityPulse struct {
	Cooldown Phased  `yaml:"cooldown"`
	Strength Phased  `yaml:"strength"`
	Reach    float64 `yaml:"reach"`
}

// Orbit circles the nearest magnet core at Distance.
type Orbit struct {
	Distance float64 `yaml:"distance"`
	Gain     float64 `yaml:"gain"`
	Spin     float64 `yaml:"spin"`
	Avoid    float64 `yaml:"avoid"`
	Accel    float64 `yaml:"accel"`
	MaxSpeed float64 `yaml:"max_speed"`
	Friction float64 `yaml:"friction"`
}

// BossTuning is the data half of a boss. Primary runs on the fire timer and
// Secondary on the burst timer (the ring timer for the warden).
type BossTuning struct {
	// Enrage is the hp fraction below which phase 2 begins.
	Enrage float64    `yaml:"enrage"`
	Motion BossMotion `yaml:"motion"`
	// RageMotion replaces Motion below RageAt of max hp.
	RageAt     float64     `yaml:"rage_at"`
	RageMotion *BossMotion `yaml:"rage_motion"`

	Primary   *Volley       `yaml:"primary"`
	Secondary *Volley       `yaml:"secondary"`
	Blink     *Blink        `yaml:"blink"`
	Swap      *Swap         `yaml:"swap"`
	Pulse     *GravityPulse `yaml:"pulse"`
	Orbit     *Orbit        `yaml:"orbit"`
	// Arsenal maps weapon names to the volley mimicking them.
	Arsenal map[string]*Volley `yaml:"arsenal"`

	mimic [entity.NumWeapons]*Volley
}

// Mimic returns the volley imitating w, falling back to Primary.
func (b *BossTuning) Mimic(w entity.WeaponID) *Volley {
	if w < entity.NumWeapons && b.mimic[w] != nil {
		return b.mimic[w]
	}
	return b.Primary
}

// baselineBoss is used by boss types without tuning data.
func baselineBoss() *BossTuning {
	b := &BossTuning{
		Enrage: defaultEnrage,
		Motion: BossMotion{Want: 450, Accel: 720, MaxSpeed: 230, Friction: 7.2, Wobble: 0.75},
		Primary: &Volley{
			Pattern: PatternFan, Cooldown: Phased{0.8, 0.6}, Range: 1100, Count: Phased{3, 4},
			Spread: Phased{0.1, 0.1}, Speed: Phased{760, 800}, Damage: Phased{10, 12}, Radius: 4.2, Life: 1.1,
		},
		Secondary: &Volley{
			Pattern: PatternRing, Cooldown: Phased{3.4, 2.8}, Count: Phased{10, 14},
			Speed: Phased{480, 520}, Damage: Phased{10, 12}, Radius: 4.2, Life: 1.4,
		},
	}
	_ = b.validate()
	return b
}

func (v *Volley) validate(name string) []string {
	if v == nil {
		return nil
	}
	var errs []string
	switch v.Pattern {
	case PatternAimed, PatternFan, PatternRing, PatternSway:
	default:
		errs = append(errs, fmt.Sprintf("%s pattern %q must be one of [aimed, fan, ring, sway]", name, v.Pattern))
	}
	if v.Speed[0] <= 0 || v.Speed[1] <= 0 {
		errs = append(errs, name+" speed must be > 0")
	}
	if v.Cooldown[0] <= 0 || v.Cooldown[1] <= 0 {
		errs = append(errs, name+" cooldown must be > 0")
	}
	return errs
}

// validate applies defaults and resolves the arsenal.
func (b *BossTuning) validate() error {
	var errs []string
	if b.Enrage <= 0 {
		b.Enrage = defaultEnrage
	}
	if b.Motion.Accel <= 0 || b.Motion.MaxSpeed <= 0 {
		errs = append(errs, "boss motion accel and max_speed must be > 0")
	}
	errs = append(errs, b.Primary.validate("primary")...)
	errs = append(errs, b.Secondary.validate("secondary")...)
	for name, v := range b.Arsenal {
		w, ok := entity.ParseWeapon(name)
		if !ok {
			errs = append(errs, fmt.Sprintf("arsenal weapon %q is unknown", name))
			continue
		}
		errs = append(errs, v.validate("arsenal "+name)...)
		b.mimic[w] = v
	}
	if p := b.Pulse; p != nil && p.Reach <= 0 {
		errs = append(errs, "pulse reach must be > 0")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
