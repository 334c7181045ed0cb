package reward

import (
	"fmt"
	"math"
	"strings"

	"github.com/cory-johannsen/arena/internal/game/entity"
)

// Effect operators.
const (
	OpMul = "mul"
	OpAdd = "add"
	OpMax = "max"
	OpSet = "set"
)

// Stats outside the modifier table.
const (
	StatHPMax    = "hp_max"
	StatFocusMax = "focus_max"
	StatHP       = "hp"
	StatFocus    = "focus"
	StatWeapon   = "weapon"
)

// Effect changes one avatar stat. Stat is a modifier name (see entity.StatNames)
// or one of the Stat constants; a weapon effect equips Weapon.
type Effect struct {
	Stat   string  `yaml:"stat"`
	Op     string  `yaml:"op"`
	Value  float64 `yaml:"value"`
	Weapon string  `yaml:"weapon"`
	// Floor rounds the result down; Min bounds it from below when non-zero.
	Floor bool    `yaml:"floor"`
	Min   float64 `yaml:"min"`

	// IfWeapon and UnlessWeapon restrict the effect to the equipped weapon.
	IfWeapon     string `yaml:"if_weapon"`
	UnlessWeapon string `yaml:"unless_weapon"`
}

func knownStat(name string) bool {
	switch name {
	case StatHPMax, StatFocusMax, StatHP, StatFocus, StatWeapon:
		return true
	}
	var m entity.Mods
	_, ok := m.Stat(name)
	return ok
}

// Validate checks the stat, operator and weapon tags.
func (e *Effect) Validate() error {
	var errs []string
	if !knownStat(e.Stat) {
		errs = append(errs, fmt.Sprintf("unknown stat %q", e.Stat))
	}
	if e.Stat == StatWeapon {
		if _, ok := entity.ParseWeapon(e.Weapon); !ok {
			errs = append(errs, fmt.Sprintf("unknown weapon %q", e.Weapon))
		}
	} else {
		switch e.Op {
		case OpMul, OpAdd, OpMax, OpSet:
		default:
			errs = append(errs, fmt.Sprintf("op %q must be one of [mul, add, max, set]", e.Op))
		}
	}
	for _, w := range []string{e.IfWeapon, e.UnlessWeapon} {
		if _, ok := entity.ParseWeapon(w); w != "" && !ok {
			errs = append(errs, fmt.Sprintf("unknown weapon condition %q", w))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("effect %s: %s", e.Stat, strings.Join(errs, "; "))
	}
	return nil
}

// Applies reports whether the effect's weapon condition holds for w.
func (e *Effect) Applies(w entity.WeaponID) bool {
	if e.IfWeapon != "" && e.IfWeapon != w.String() {
		return false
	}
	if e.UnlessWeapon != "" && e.UnlessWeapon == w.String() {
		return false
	}
	return true
}

func (e *Effect) combine(v float64) float64 {
	switch e.Op {
	case OpMul:
		v *= e.Value
	case OpAdd:
		v += e.Value
	case OpMax:
		v = math.Max(v, e.Value)
	case OpSet:
		v = e.Value
	}
	if e.Floor {
		v = math.Floor(v)
	}
	if e.Min != 0 {
		v = math.Max(v, e.Min)
	}
	return v
}

// Apply runs effects against av in order, skipping those whose weapon
// condition fails.
//
// Precondition: every effect passed Validate.
// Postcondition: the meter invariant holds.
func Apply(av *entity.Avatar, effects []Effect) {
	for i := range effects {
		e := &effects[i]
		if !e.Applies(av.Weapon) {
			continue
		}
		switch e.Stat {
		case StatHPMax:
			av.HPMax = e.combine(av.HPMax)
		case StatFocusMax:
			av.FocusMax = e.combine(av.FocusMax)
		case StatHP:
			av.HP = e.combine(av.HP)
		case StatFocus:
			av.Focus = e.combine(av.Focus)
		case StatWeapon:
			if w, ok := entity.ParseWeapon(e.Weapon); ok {
				av.SetWeapon(w)
			}
		default:
			if p, ok := av.Mods.Stat(e.Stat); ok {
				*p = e.combine(*p)
			}
		}
		av.ClampMeters()
	}
}
