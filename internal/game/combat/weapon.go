// Package combat turns avatar input into projectiles and resolves every damaging
// contact of a frame: projectile hits, explosions, chains, touch damage and the
// avatar's active skills.
package combat

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/arena/internal/game/entity"
)

// Fan spreads pellets evenly around the aim line.
type Fan struct {
	Wide      float64 `yaml:"wide"`
	FocusWide float64 `yaml:"focus_wide"`
	// Step is the pellet spacing as a share of the width.
	Step float64 `yaml:"step"`
	// Jitter is the random offset as a share of the width.
	Jitter float64 `yaml:"jitter"`
}

// Weapon is the tuning record of one avatar weapon.
//
// Invariant: Cooldown, Speed, Radius and Life are positive and Pellets >= 1 after Validate.
type Weapon struct {
	Tag         string          `yaml:"id"`
	ID          entity.WeaponID `yaml:"-"`
	Name        string          `yaml:"name"`
	Tagline     string          `yaml:"tagline"`
	Rarity      string          `yaml:"rarity"`
	Cost        float64         `yaml:"cost"`
	CostPerRoom float64         `yaml:"cost_per_room"`

	Cooldown float64 `yaml:"cooldown"`
	Speed    float64 `yaml:"speed"`
	Damage   float64 `yaml:"damage"`
	Radius   float64 `yaml:"radius"`
	Life     float64 `yaml:"life"`

	// Spread and FocusSpread scale the base aim jitter; 0 means 1 and
	// FocusSpread falls back to Spread.
	Spread      float64 `yaml:"spread"`
	FocusSpread float64 `yaml:"focus_spread"`
	CritBonus   float64 `yaml:"crit_bonus"`
	Pierce      int     `yaml:"pierce"`
	NoPierce    bool    `yaml:"no_pierce"`

	Pellets        int       `yaml:"pellets"`
	Fan            *Fan      `yaml:"fan"`
	Angles         []float64 `yaml:"angles"`
	AngleJitter    float64   `yaml:"angle_jitter"`
	FocusJitterMul float64   `yaml:"focus_jitter_mul"`

	Burst      int     `yaml:"burst"`
	BurstDelay float64 `yaml:"burst_delay"`

	ExplodeR       float64 `yaml:"explode_radius"`
	ExplodeFalloff float64 `yaml:"explode_falloff"`
}

// Price returns the shop price in room.
func (w *Weapon) Price(room int) int {
	return int(math.Floor(w.Cost + float64(room)*w.CostPerRoom))
}

// Validate resolves the weapon tag and fills defaults.
//
// Postcondition: nil return guarantees a known weapon and positive motion values.
func (w *Weapon) Validate() error {
	id, ok := entity.ParseWeapon(w.Tag)
	if !ok {
		return fmt.Errorf("combat.Weapon: unknown weapon %q", w.Tag)
	}
	w.ID = id
	var errs []string
	if w.Cooldown <= 0 {
		errs = append(errs, "cooldown must be > 0")
	}
	if w.Speed <= 0 {
		errs = append(errs, "speed must be > 0")
	}
	if w.Radius <= 0 || w.Life <= 0 {
		errs = append(errs, "radius and life must be > 0")
	}
	if w.Pellets < 0 || w.Burst < 0 {
		errs = append(errs, "pellets and burst must not be negative")
	}
	if len(w.Angles) > 0 && w.Pellets > len(w.Angles) {
		errs = append(errs, fmt.Sprintf("%d pellets but only %d angles", w.Pellets, len(w.Angles)))
	}
	if len(errs) > 0 {
		return fmt.Errorf("combat.Weapon %q: %s", w.Tag, strings.Join(errs, "; "))
	}
	if w.Pellets == 0 {
		w.Pellets = 1
	}
	if w.Spread == 0 {
		w.Spread = 1
	}
	if w.FocusSpread == 0 {
		w.FocusSpread = w.Spread
	}
	if w.FocusJitterMul == 0 {
		w.FocusJitterMul = 1
	}
	if w.Burst > 0 && w.BurstDelay <= 0 {
		w.BurstDelay = 0.055
	}
	if w.ExplodeR > 0 && w.ExplodeFalloff == 0 {
		w.ExplodeFalloff = 0.75
	}
	return nil
}

// Arsenal holds one record per weapon.
//
// Invariant: every entity.WeaponID has a record.
type Arsenal struct {
	weapons [entity.NumWeapons]*Weapon
}

// NewArsenal validates ws and indexes them.
//
// Postcondition: returns error on an invalid record, a duplicate, or a missing weapon.
func NewArsenal(ws []*Weapon) (*Arsenal, error) {
	if len(ws) == 0 {
		return nil, errors.New("combat.NewArsenal: no weapons defined")
	}
	a := &Arsenal{}
	for _, w := range ws {
		if err := w.Validate(); err != nil {
			return nil, err
		}
		if a.weapons[w.ID] != nil {
			return nil, fmt.Errorf("combat.NewArsenal: weapon %q already defined", w.Tag)
		}
		a.weapons[w.ID] = w
	}
	var missing []string
	for i, w := range a.weapons {
		if w == nil {
			missing = append(missing, entity.WeaponID(i).String())
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("combat.NewArsenal: missing weapons [%s]", strings.Join(missing, ", "))
	}
	return a, nil
}

// Weapon returns the record for id; unknown ids resolve to Pulse.
func (a *Arsenal) Weapon(id entity.WeaponID) *Weapon {
	if id >= entity.NumWeapons {
		id = entity.Pulse
	}
	return a.weapons[id]
}

// All returns the records in weapon order.
func (a *Arsenal) All() []*Weapon {
	out := make([]*Weapon, 0, len(a.weapons))
	for _, w := range a.weapons {
		out = append(out, w)
	}
	return out
}

type yamlWeaponFile struct {
	Weapons []*Weapon `yaml:"weapons"`
}

// LoadArsenalFromBytes parses a YAML weapon list.
func LoadArsenalFromBytes(data []byte) (*Arsenal, error) {
	var f yamlWeaponFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("combat.LoadArsenal: parsing: %w", err)
	}
	return NewArsenal(f.Weapons)
}

// LoadArsenalFromFile reads and parses a YAML weapon list from path.
func LoadArsenalFromFile(path string) (*Arsenal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("combat.LoadArsenal: reading %s: %w", path, err)
	}
	return LoadArsenalFromBytes(data)
}
