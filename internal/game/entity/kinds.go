// Package entity defines the concrete records advanced by the simulation.
//
// Records share scalar fields through Body but have no common behavior; each
// package that moves or damages them works on the concrete type.
package entity

import "fmt"

// AdversaryType is the closed set of adversary variants.
type AdversaryType uint8

const (
	Stalker AdversaryType = iota
	Mote
	Shooter
	Bomber
	Weaver
	Sniper
	Charger
	Splitter
	Pylon
	Warden
	BossLava
	BossIce
	BossMagnet
	BossVoid

	NumAdversaryTypes
)

var adversaryNames = [NumAdversaryTypes]string{
	"stalker", "mote", "shooter", "bomber", "weaver", "sniper", "charger",
	"splitter", "pylon", "warden", "boss_lava", "boss_ice", "boss_magnet", "boss_void",
}

func (t AdversaryType) String() string {
	if t < NumAdversaryTypes {
		return adversaryNames[t]
	}
	return fmt.Sprintf("adversary(%d)", uint8(t))
}

// ParseAdversaryType maps a content tag to its type.
//
// Postcondition: ok is false and t is Stalker when s names no type.
func ParseAdversaryType(s string) (t AdversaryType, ok bool) {
	for i, name := range adversaryNames {
		if name == s {
			return AdversaryType(i), true
		}
	}
	return Stalker, false
}

// IsBoss reports whether t is one of the boss variants.
func (t AdversaryType) IsBoss() bool {
	return t >= Warden && t < NumAdversaryTypes
}

// Role is an adversary's group-steering role.
type Role uint8

const (
	RoleNone Role = iota
	RoleMelee
	RoleRanged
)

// RoleOf returns the group role of t. Elemental bosses have no role.
func RoleOf(t AdversaryType) Role {
	switch t {
	case Stalker, Mote, Charger, Splitter, Warden:
		return RoleMelee
	case Shooter, Bomber, Sniper, Pylon, Weaver:
		return RoleRanged
	}
	return RoleNone
}

// AIState is an adversary's behavior state.
type AIState uint8

const (
	StateRoam AIState = iota
	StateWindup
	StateDash
	StateAim
)

func (s AIState) String() string {
	switch s {
	case StateRoam:
		return "roam"
	case StateWindup:
		return "windup"
	case StateDash:
		return "dash"
	case StateAim:
		return "aim"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// LegalStates returns the states t may occupy. Every type may roam.
func LegalStates(t AdversaryType) []AIState {
	switch t {
	case Charger:
		return []AIState{StateRoam, StateWindup, StateDash}
	case Sniper:
		return []AIState{StateRoam, StateAim}
	}
	return []AIState{StateRoam}
}

// IsLegalState reports whether s is declared for t.
func IsLegalState(t AdversaryType, s AIState) bool {
	for _, l := range LegalStates(t) {
		if l == s {
			return true
		}
	}
	return false
}

// WeaponID is the closed set of avatar weapons. Bosses mimic the same set.
type WeaponID uint8

const (
	Pulse WeaponID = iota
	Needle
	Scatter
	Burst
	Prism
	Launcher
	Rail

	NumWeapons
)

var weaponNames = [NumWeapons]string{"pulse", "needle", "scatter", "burst", "prism", "launcher", "rail"}

func (w WeaponID) String() string {
	if w < NumWeapons {
		return weaponNames[w]
	}
	return fmt.Sprintf("weapon(%d)", uint8(w))
}

// ParseWeapon maps a content tag to its weapon.
//
// Postcondition: ok is false and w is Pulse when s names no weapon.
func ParseWeapon(s string) (w WeaponID, ok bool) {
	for i, name := range weaponNames {
		if name == s {
			return WeaponID(i), true
		}
	}
	return Pulse, false
}

// Team identifies a projectile's owning side.
type Team uint8

const (
	TeamAvatar Team = iota
	TeamHostile
)

// PickupKind is the closed set of pickups.
type PickupKind uint8

const (
	PickupHealth PickupKind = iota
	PickupFocus
)

// Shape is an obstacle's collision shape.
type Shape uint8

const (
	ShapeCircle Shape = iota
	ShapeRect
)
