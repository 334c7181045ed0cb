package entity

import (
	"math"

	"github.com/cory-johannsen/arena/internal/game/geom"
)

// BossState holds timers used only by boss variants.
type BossState struct {
	// Phase is 1 normally and 2 once enraged.
	Phase   int
	RingCd  float64
	BurstCd float64
	StepCd  float64
	FireCd  float64
	SwapCd  float64
	PulseCd float64
	Weapon  WeaponID
	Spin    float64
}

// Adversary is a hostile body.
//
// Invariant: 0 <= HP <= MaxHP; State is always legal for Type.
type Adversary struct {
	Body
	ID        string
	Type      AdversaryType
	Elite     bool
	HP, MaxHP float64
	DamageMul float64

	State AIState
	T     float64

	HitFlash  float64
	ShootCd   float64
	TouchCd   float64
	Windup    float64
	ChargeDir geom.Vec2
	DashTime  float64
	LineT     float64
	LineAngle float64

	// Stuck accumulates while the body makes no progress; it drives the
	// steering nudge and the obstacle shove.
	Stuck float64
	Last  geom.Vec2

	Boss BossState
}

// TakeDamage subtracts d from HP, clamping at zero, and flashes the body.
func (a *Adversary) TakeDamage(d float64) {
	a.HP = geom.Clamp(a.HP-math.Max(0, d), 0, a.MaxHP)
	a.HitFlash = 0.12
}

// Dead reports whether HP is exhausted.
func (a *Adversary) Dead() bool { return a.HP <= 0 }

// Transition moves the adversary into s when s is legal for its type.
//
// Postcondition: Returns false and leaves State unchanged for illegal states.
func (a *Adversary) Transition(s AIState) bool {
	if !IsLegalState(a.Type, s) {
		return false
	}
	a.State = s
	return true
}

// Telegraph returns the visible wind-up progress in [0, 1] for chargers and snipers.
func (a *Adversary) Telegraph(windup float64) float64 {
	if windup <= 0 {
		return 0
	}
	switch {
	case a.Type == Charger && a.State == StateWindup:
		return geom.Clamp01(a.Windup / windup)
	case a.Type == Sniper && a.State == StateAim:
		return geom.Clamp01(a.Windup / windup)
	}
	return 0
}
