package entity

import (
	"math"

	"github.com/cory-johannsen/arena/internal/game/geom"
)

// AvatarTuning is the avatar's base movement and survivability data.
type AvatarTuning struct {
	Radius        float64 `yaml:"radius"`
	HP            float64 `yaml:"hp"`
	Focus         float64 `yaml:"focus"`
	Accel         float64 `yaml:"accel"`
	MaxSpeed      float64 `yaml:"max_speed"`
	Friction      float64 `yaml:"friction"`
	FireCooldown  float64 `yaml:"fire_cooldown"`
	DashCooldown  float64 `yaml:"dash_cooldown"`
	DashDistance  float64 `yaml:"dash_distance"`
	DashDuration  float64 `yaml:"dash_duration"`
	DashDeadzone  float64 `yaml:"dash_deadzone"`
	InvulnOnHit   float64 `yaml:"invuln_on_hit"`
	ComboWindow   float64 `yaml:"combo_window"`
	ComboCap      int     `yaml:"combo_cap"`
	StartWeapon   string  `yaml:"start_weapon"`
	NovaRadius    float64 `yaml:"nova_radius"`
	NovaDamage    float64 `yaml:"nova_damage"`
	BladeRadius   float64 `yaml:"blade_radius"`
	BladeOrbit    float64 `yaml:"blade_orbit"`
	BladeDamage   float64 `yaml:"blade_damage"`
	BladeCooldown float64 `yaml:"blade_cooldown"`
}

// DefaultAvatarTuning returns the stock avatar.
func DefaultAvatarTuning() AvatarTuning {
	return AvatarTuning{
		Radius:        16,
		HP:            100,
		Focus:         100,
		Accel:         2200,
		MaxSpeed:      360,
		Friction:      11,
		FireCooldown:  0.11,
		DashCooldown:  0.9,
		DashDistance:  280,
		DashDuration:  0.09,
		DashDeadzone:  0.18,
		InvulnOnHit:   0.22,
		ComboWindow:   2,
		ComboCap:      12,
		StartWeapon:   "pulse",
		NovaRadius:    300,
		NovaDamage:    46,
		BladeRadius:   10,
		BladeOrbit:    54,
		BladeDamage:   14,
		BladeCooldown: 0.18,
	}
}

// Dash tracks a fixed-distance burst. Displacement is bounded by Remain, not by Time.
type Dash struct {
	Time   float64
	Remain float64
	Speed  float64
	Dir    geom.Vec2
}

// Active reports whether the dash still has time and distance left.
func (d Dash) Active() bool { return d.Time > 0 && d.Remain > 0 }

// BurstFire tracks queued follow-up shots of a burst weapon.
type BurstFire struct {
	Remain int
	Delay  float64
	Dir    geom.Vec2
}

// Avatar is the player-controlled body.
//
// Invariant: 0 <= HP <= HPMax and 0 <= Focus <= FocusMax after every mutation.
type Avatar struct {
	Body
	Tuning AvatarTuning

	HP, HPMax       float64
	Focus, FocusMax float64
	Aim             geom.Vec2
	Weapon          WeaponID
	Upgrades        map[string]int
	Mods            Mods

	FireCd float64
	DashCd float64
	NovaCd float64
	Invuln float64
	Dash   Dash
	Burst  BurstFire

	Score      float64
	Combo      int
	ComboTimer float64
	Force      int
	ForceSpent int

	Env     Env
	FocusFx FocusFx
	T       float64
}

// NewAvatar returns a fresh avatar at the origin.
//
// Postcondition: meters are full, mods neutral, combo 1.
func NewAvatar(tuning AvatarTuning) *Avatar {
	w, _ := ParseWeapon(tuning.StartWeapon)
	return &Avatar{
		Body:     Body{R: tuning.Radius},
		Tuning:   tuning,
		HP:       tuning.HP,
		HPMax:    tuning.HP,
		Focus:    tuning.Focus,
		FocusMax: tuning.Focus,
		Aim:      geom.V(1, 0),
		Weapon:   w,
		Upgrades: map[string]int{},
		Mods:     DefaultMods(),
		Combo:    1,
		Env:      NeutralEnv(),
		FocusFx:  NeutralFocusFx(),
	}
}

// TakeDamage applies dmg unless the avatar is invulnerable.
//
// Postcondition: Returns false and leaves the avatar untouched while Invuln > 0.
// Otherwise HP drops by dmg scaled by the focus damage-taken multiplier (clamped at 0),
// Invuln is set to the on-hit window, and the combo resets.
func (a *Avatar) TakeDamage(dmg float64) bool {
	if a.Invuln > 0 {
		return false
	}
	dmg = math.Max(0, dmg*a.FocusFx.DamageTaken)
	a.HP = geom.Clamp(a.HP-dmg, 0, a.HPMax)
	a.Invuln = a.Tuning.InvulnOnHit
	a.Combo = 1
	a.ComboTimer = 0
	return true
}

// Heal adds v HP, clamped to HPMax.
func (a *Avatar) Heal(v float64) {
	a.HP = geom.Clamp(a.HP+v, 0, a.HPMax)
}

// AddFocus adds v to the focus meter, clamped to [0, FocusMax].
func (a *Avatar) AddFocus(v float64) {
	a.Focus = geom.Clamp(a.Focus+v, 0, a.FocusMax)
}

// AddScore awards base points scaled by the current combo and advances the combo.
func (a *Avatar) AddScore(base float64) {
	a.Score += base * float64(a.Combo)
	a.ComboTimer = a.Tuning.ComboWindow
	if a.Combo < a.Tuning.ComboCap {
		a.Combo++
	}
}

// TickCombo decays the combo window and resets the multiplier when it lapses.
func (a *Avatar) TickCombo(dt float64) {
	if a.ComboTimer <= 0 {
		return
	}
	a.ComboTimer = math.Max(0, a.ComboTimer-dt)
	if a.ComboTimer == 0 {
		a.Combo = 1
	}
}

// ClampMeters restores the meter invariant after direct field writes.
func (a *Avatar) ClampMeters() {
	if a.HPMax < 1 {
		a.HPMax = 1
	}
	if a.FocusMax < 0 {
		a.FocusMax = 0
	}
	a.HP = geom.Clamp(a.HP, 0, a.HPMax)
	a.Focus = geom.Clamp(a.Focus, 0, a.FocusMax)
}

// SetWeapon equips w and drops any queued burst shots.
func (a *Avatar) SetWeapon(w WeaponID) {
	a.Weapon = w
	a.Burst = BurstFire{}
}

// Dead reports whether HP is exhausted.
func (a *Avatar) Dead() bool { return a.HP <= 0 }

// Stacks returns how many times the upgrade id has been taken.
func (a *Avatar) Stacks(id string) int { return a.Upgrades[id] }
